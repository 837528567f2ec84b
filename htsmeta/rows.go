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

// headerRow is one read_hts_header output row, format-agnostic.
type headerRow struct {
	fileFormat  string
	compression string
	recordType  string
	id          string
	number      string
	valueType   string
	length      *int64
	description string
	idx         int64
	kvKeys      []string
	kvVals      []string
	raw         string
}

// indexRow is one read_hts_index output row, format-agnostic.
type indexRow struct {
	fileFormat string
	seqname    string
	tid        int64
	length     *int64
	mapped     *int64
	unmapped   *int64
	nNoCoor    *int64
	indexType  string
	indexPath  string
	meta       []byte
}

// writeHeaderRow fills one row of headerSchema() into c at row, honoring
// projection. Column indices here must track headerSchema()'s order.
func writeHeaderRow(c *chunk.Chunk, row int, d headerRow, proj scan.Projection) {
	if proj.Has(0) {
		c.Column(0).SetString(row, d.fileFormat)
	}
	if proj.Has(1) {
		c.Column(1).SetString(row, d.compression)
	}
	if proj.Has(2) {
		c.Column(2).SetString(row, d.recordType)
	}
	if proj.Has(3) {
		c.Column(3).SetString(row, d.id)
	}
	if proj.Has(4) {
		c.Column(4).SetString(row, d.number)
	}
	if proj.Has(5) {
		c.Column(5).SetString(row, d.valueType)
	}
	if proj.Has(6) {
		v := c.Column(6)
		if d.length == nil {
			v.SetNull(row)
		} else {
			v.SetInt64(row, *d.length)
		}
	}
	if proj.Has(7) {
		c.Column(7).SetString(row, d.description)
	}
	if proj.Has(8) {
		c.Column(8).SetInt64(row, d.idx)
	}
	if proj.Has(9) {
		c.Column(9).AppendMapRow(d.kvKeys, d.kvVals)
	}
	if proj.Has(10) {
		c.Column(10).SetString(row, d.raw)
	}
}

// writeIndexRow fills one row of indexSchema() into c at row.
func writeIndexRow(c *chunk.Chunk, row int, d indexRow, proj scan.Projection) {
	if proj.Has(0) {
		c.Column(0).SetString(row, d.fileFormat)
	}
	if proj.Has(1) {
		c.Column(1).SetString(row, d.seqname)
	}
	if proj.Has(2) {
		c.Column(2).SetInt64(row, d.tid)
	}
	setNullableInt64(c, 3, row, d.length, proj)
	setNullableInt64(c, 4, row, d.mapped, proj)
	setNullableInt64(c, 5, row, d.unmapped, proj)
	setNullableInt64(c, 6, row, d.nNoCoor, proj)
	if proj.Has(7) {
		c.Column(7).SetString(row, d.indexType)
	}
	if proj.Has(8) {
		c.Column(8).SetString(row, d.indexPath)
	}
	if proj.Has(9) {
		v := c.Column(9)
		if d.meta == nil {
			v.SetNull(row)
		} else {
			v.SetBlob(row, d.meta)
		}
	}
}

func setNullableInt64(c *chunk.Chunk, col, row int, p *int64, proj scan.Projection) {
	if !proj.Has(col) {
		return
	}
	v := c.Column(col)
	if p == nil {
		v.SetNull(row)
		return
	}
	v.SetInt64(row, *p)
}

// writeSpanRow fills one row of spansSchema(): the 10 read_hts_index
// columns plus four always-NULL span columns.
func writeSpanRow(c *chunk.Chunk, row int, d indexRow, proj scan.Projection) {
	writeIndexRow(c, row, d, proj)
	for _, col := range []int{10, 11, 12, 13} {
		if proj.Has(col) {
			c.Column(col).SetNull(row)
		}
	}
}

// rawRow is one read_hts_index_raw output row.
type rawRow struct {
	indexType string
	indexPath string
	raw       []byte
}

func writeRawRow(c *chunk.Chunk, row int, d rawRow, proj scan.Projection) {
	if proj.Has(0) {
		c.Column(0).SetString(row, d.indexType)
	}
	if proj.Has(1) {
		c.Column(1).SetString(row, d.indexPath)
	}
	if proj.Has(2) {
		c.Column(2).SetBlob(row, d.raw)
	}
}
