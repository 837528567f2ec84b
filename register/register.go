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

// Package register is the one place that knows about every reader
// package, so a host can mount every table function this module exposes
// without depending on vcfreader/bamreader/fastareader/tabixreader/
// htsmeta individually. It is a small name-indexed descriptor table
// populated once, rather than an init()-time side-effecting registry.
package register

import (
	"fmt"

	"github.com/RGenomicsETL/duckhts-sub000/bamreader"
	"github.com/RGenomicsETL/duckhts-sub000/fastareader"
	"github.com/RGenomicsETL/duckhts-sub000/htsmeta"
	"github.com/RGenomicsETL/duckhts-sub000/scan"
	"github.com/RGenomicsETL/duckhts-sub000/tabixreader"
	"github.com/RGenomicsETL/duckhts-sub000/vcfreader"
)

// All returns every table-valued function this module exposes. The
// BCF/VCF reader is mounted under both of its conventional names, since
// the file's own magic bytes (not the name it was called by) decide how
// it is parsed.
func All() []scan.TableFunction {
	readVCF := vcfreader.TableFunction
	readVCF.Name = "read_vcf"
	return []scan.TableFunction{
		vcfreader.TableFunction,
		readVCF,
		bamreader.TableFunction,
		fastareader.FastaTableFunction,
		fastareader.BuildIndexTableFunction,
		fastareader.FastqTableFunction,
		tabixreader.GenericTableFunction,
		tabixreader.GTFTableFunction,
		tabixreader.GFFTableFunction,
		htsmeta.HeaderTableFunction,
		htsmeta.IndexTableFunction,
		htsmeta.SpansTableFunction,
		htsmeta.RawTableFunction,
	}
}

// Lookup returns the table function registered under name, or an error
// a host's CREATE TABLE FUNCTION binding can surface directly.
func Lookup(name string) (scan.TableFunction, error) {
	for _, tf := range All() {
		if tf.Name == name {
			return tf, nil
		}
	}
	return scan.TableFunction{}, fmt.Errorf("register: no table function named %q", name)
}
