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

package fastareader

import (
	"os"

	"github.com/biogo/hts/fai"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
	"github.com/RGenomicsETL/duckhts-sub000/scan"
)

// BuildIndexName is the fasta_index table function entry point: it
// builds a FAI index and returns a one-row (success, index_path) result.
const BuildIndexName = "fasta_index"

func buildIndexSchema() chunk.Schema {
	var b chunk.Builder
	b.Add("success", chunk.Boolean)
	b.Add("index_path", chunk.Varchar)
	return b.Schema()
}

type buildIndexBindState struct {
	schema    chunk.Schema
	success   bool
	indexPath string
}

func (b *buildIndexBindState) Schema() chunk.Schema { return b.schema }
func (b *buildIndexBindState) Close() error         { return nil }

// BuildIndexBind builds the FAI index at bind time (there being exactly
// one output row, there is no per-worker scan work to defer).
func BuildIndexBind(path string, o scan.Options) (scan.BindState, *scan.GlobalState, error) {
	idxPath := o.String("index_path", "")
	if idxPath == "" {
		idxPath = path + ".fai"
	}

	bs := &buildIndexBindState{schema: buildIndexSchema(), indexPath: idxPath}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, scan.BindError("open", err)
	}
	idx, err := fai.NewIndex(f)
	f.Close()
	if err != nil {
		return nil, nil, scan.BindError("build-index", err)
	}

	out, err := os.Create(idxPath)
	if err != nil {
		return nil, nil, scan.BindError("write-index", err)
	}
	werr := fai.WriteTo(out, idx)
	out.Close()
	bs.success = werr == nil
	if werr != nil {
		return nil, nil, scan.BindError("write-index", werr)
	}

	global := scan.NewGlobalState(false, nil, false)
	return bs, global, nil
}

type buildIndexReader struct {
	bind *buildIndexBindState
	proj scan.Projection
	done bool
}

func BuildIndexLocalInit(bindAny scan.BindState, global *scan.GlobalState, workerID int, regions []string, proj scan.Projection, warn scan.WarnFunc) (scan.Reader, error) {
	return &buildIndexReader{bind: bindAny.(*buildIndexBindState), proj: proj}, nil
}

func (r *buildIndexReader) Fill(c *chunk.Chunk) (bool, error) {
	if r.done || c.Cap() == 0 {
		c.SetLen(0)
		return true, nil
	}
	if r.proj.Has(0) {
		c.Column(0).SetBool(0, r.bind.success)
	}
	if r.proj.Has(1) {
		c.Column(1).SetString(0, r.bind.indexPath)
	}
	c.SetLen(1)
	r.done = true
	return true, nil
}

func (r *buildIndexReader) Close() error { return nil }

// BuildIndexTableFunction is the scan.TableFunction descriptor for
// fasta_index.
var BuildIndexTableFunction = scan.TableFunction{
	Name:      BuildIndexName,
	Bind:      BuildIndexBind,
	LocalInit: BuildIndexLocalInit,
}
