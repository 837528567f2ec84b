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

package chunk

// VectorSize is the engine's chunk row cap. It must stay a power of two;
// callers that need a different cap (tests, mostly) construct a Chunk with
// NewChunk directly rather than mutating this constant.
const VectorSize = 2048

// Chunk is one fixed-capacity batch of output rows: one Vector per schema
// column, plus the number of rows actually filled this round. A reader's
// scan step writes into Columns by logical index (so that unprojected
// columns, whose Vector is left nil, are never touched) and finishes by
// calling SetLen.
type Chunk struct {
	Schema  Schema
	Columns []*Vector // parallel to Schema; nil entries are unprojected
	n       int       // rows filled so far this round
	cap     int
}

// NewChunk allocates a Chunk with capacity cap, materializing a Vector
// only for the columns named in projection (indices into schema). An
// empty/nil projection materializes every column, matching a full
// "SELECT *" scan.
func NewChunk(schema Schema, projection []int, cap int) *Chunk {
	c := &Chunk{Schema: schema, Columns: make([]*Vector, len(schema)), cap: cap}
	if len(projection) == 0 {
		for i := range schema {
			c.Columns[i] = NewVector(schema[i].Type, schema[i].Elem, cap)
		}
		return c
	}
	for _, idx := range projection {
		c.Columns[idx] = NewVector(schema[idx].Type, schema[idx].Elem, cap)
	}
	return c
}

// Cap returns the chunk's row capacity.
func (c *Chunk) Cap() int { return c.cap }

// Len returns the number of rows filled so far.
func (c *Chunk) Len() int { return c.n }

// Full reports whether the chunk has reached its row capacity.
func (c *Chunk) Full() bool { return c.n >= c.cap }

// SetLen records how many rows this chunk-fill round produced. Scan calls
// this once per chunk, immediately before returning control to the host.
func (c *Chunk) SetLen(n int) { c.n = n }

// Projected reports whether logical column idx has a materialized Vector
// (i.e. was requested by the projection pushdown list).
func (c *Chunk) Projected(idx int) bool {
	return idx >= 0 && idx < len(c.Columns) && c.Columns[idx] != nil
}

// Column returns the Vector for logical column idx, or nil if it is not
// projected. Callers must check Projected (or a nil return) before
// writing, since skipping the write entirely is the whole point of
// projection pushdown.
func (c *Chunk) Column(idx int) *Vector {
	if idx < 0 || idx >= len(c.Columns) {
		return nil
	}
	return c.Columns[idx]
}

// Reset clears the row count so the same Chunk's backing arrays can be
// reused for the next fill round without a fresh allocation. Every row is
// marked valid again, List offsets and child vectors and Map keys/values
// are emptied, and scalar typed slices keep their length and old contents
// (they are not zeroed); callers always write every row's value before
// relying on it, or mark it NULL.
func (c *Chunk) Reset() {
	c.n = 0
	for _, v := range c.Columns {
		if v == nil {
			continue
		}
		for i := range v.valid {
			v.valid[i] = true
		}
		if v.Type == List {
			v.Offsets = v.Offsets[:1]
			v.Offsets[0] = 0
			resetChildLen(v.Child)
		}
		if v.Type == Map {
			v.Keys = v.Keys[:0]
			v.Values = v.Values[:0]
		}
	}
}

func resetChildLen(c *Vector) {
	switch c.Type {
	case Integer:
		c.Int32s = c.Int32s[:0]
	case BigInt:
		c.Int64s = c.Int64s[:0]
	case Float:
		c.Float32s = c.Float32s[:0]
	case Double:
		c.Float64s = c.Float64s[:0]
	case Varchar:
		c.Strings = c.Strings[:0]
	}
	c.valid = c.valid[:0]
}
