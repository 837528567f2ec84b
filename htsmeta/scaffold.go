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

package htsmeta

import (
	"github.com/RGenomicsETL/duckhts-sub000/chunk"
	"github.com/RGenomicsETL/duckhts-sub000/scan"
)

// pagedBindState is the Bind result shared by every metadata table
// function: unlike the per-format readers, the whole result set is
// small and cheap to materialize once at bind time (a file's header
// records or its per-reference index stats), so local_init/scan reduces
// to paging a precomputed row count out through write.
type pagedBindState struct {
	schema chunk.Schema
	count  int
	write  func(c *chunk.Chunk, outRow, srcIdx int, proj scan.Projection)
}

func (b *pagedBindState) Schema() chunk.Schema { return b.schema }
func (b *pagedBindState) Close() error         { return nil }

type pagedReader struct {
	bind *pagedBindState
	proj scan.Projection
	pos  int
}

func pagedLocalInit(bindAny scan.BindState, global *scan.GlobalState, workerID int, regions []string, proj scan.Projection, warn scan.WarnFunc) (scan.Reader, error) {
	return &pagedReader{bind: bindAny.(*pagedBindState), proj: proj}, nil
}

func (r *pagedReader) Fill(c *chunk.Chunk) (bool, error) {
	n := 0
	for n < c.Cap() && r.pos < r.bind.count {
		r.bind.write(c, n, r.pos, r.proj)
		n++
		r.pos++
	}
	c.SetLen(n)
	return r.pos >= r.bind.count, nil
}

func (r *pagedReader) Close() error { return nil }
