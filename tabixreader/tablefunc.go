// Copyright (C) 2026 RGenomicsETL
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package tabixreader

import "github.com/RGenomicsETL/duckhts-sub000/scan"

func GenericBind(path string, o scan.Options) (scan.BindState, *scan.GlobalState, error) {
	return bind(modeGeneric, path, o)
}

func GTFBind(path string, o scan.Options) (scan.BindState, *scan.GlobalState, error) {
	return bind(modeGTF, path, o)
}

func GFFBind(path string, o scan.Options) (scan.BindState, *scan.GlobalState, error) {
	return bind(modeGFF, path, o)
}

// GenericTableFunction is the scan.TableFunction descriptor for read_tabix.
var GenericTableFunction = scan.TableFunction{
	Name:      GenericName,
	Bind:      GenericBind,
	LocalInit: localInit,
}

// GTFTableFunction is the scan.TableFunction descriptor for read_gtf.
var GTFTableFunction = scan.TableFunction{
	Name:      GTFName,
	Bind:      GTFBind,
	LocalInit: localInit,
}

// GFFTableFunction is the scan.TableFunction descriptor for read_gff.
var GFFTableFunction = scan.TableFunction{
	Name:      GFFName,
	Bind:      GFFBind,
	LocalInit: localInit,
}
