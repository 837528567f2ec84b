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

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
)

func trimEOL(s string) string {
	return strings.TrimRight(s, "\n\r")
}

func atoiOr(row []string, idx, def int) int {
	if idx < 0 || idx >= len(row) {
		return def
	}
	n, err := strconv.Atoi(row[idx])
	if err != nil {
		return def
	}
	return n
}

// writeRow decodes one chopped line into row n of c, dispatching on mode.
func (r *tabixReader) writeRow(c *chunk.Chunk, n int, fields []string) error {
	switch r.bind.mode {
	case modeGTF:
		return r.writeGTFGFFRow(c, n, fields, parseGTFAttributes)
	case modeGFF:
		return r.writeGTFGFFRow(c, n, fields, parseGFF3Attributes)
	default:
		return r.writeGenericRow(c, n, fields)
	}
}

func (r *tabixReader) writeGenericRow(c *chunk.Chunk, n int, fields []string) error {
	proj := r.proj
	for i, col := range r.bind.schema {
		if !proj.Has(i) {
			continue
		}
		v := c.Column(i)
		var tok string
		if i < len(fields) {
			tok = fields[i]
		}
		if tok == "." {
			v.SetNull(n)
			continue
		}
		switch col.Type {
		case chunk.BigInt:
			x, err := strconv.ParseInt(tok, 10, 64)
			if err != nil {
				v.SetNull(n)
				continue
			}
			v.SetInt64(n, x)
		case chunk.Double:
			x, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				v.SetNull(n)
				continue
			}
			v.SetFloat64(n, x)
		case chunk.Boolean:
			x, err := strconv.ParseBool(tok)
			if err != nil {
				v.SetNull(n)
				continue
			}
			v.SetBool(n, x)
		default:
			v.SetString(n, tok)
		}
	}
	return nil
}

// writeGTFGFFRow writes the fixed 9-column GTF/GFF schema, parsing the
// attributes column with attrParse when attributes_map was requested.
func (r *tabixReader) writeGTFGFFRow(c *chunk.Chunk, n int, fields []string, attrParse func(string) ([]string, []string)) error {
	if len(fields) < 9 {
		return fmt.Errorf("expected 9 columns, got %d", len(fields))
	}
	proj := r.proj
	if proj.Has(0) {
		c.Column(0).SetString(n, fields[0])
	}
	if proj.Has(1) {
		c.Column(1).SetString(n, fields[1])
	}
	if proj.Has(2) {
		c.Column(2).SetString(n, fields[2])
	}
	if proj.Has(3) {
		start, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return fmt.Errorf("bad start %q: %w", fields[3], err)
		}
		c.Column(3).SetInt64(n, start)
	}
	if proj.Has(4) {
		end, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return fmt.Errorf("bad end %q: %w", fields[4], err)
		}
		c.Column(4).SetInt64(n, end)
	}
	if proj.Has(5) {
		if fields[5] == "." {
			c.Column(5).SetNull(n)
		} else {
			score, err := strconv.ParseFloat(fields[5], 64)
			if err != nil {
				return fmt.Errorf("bad score %q: %w", fields[5], err)
			}
			c.Column(5).SetFloat64(n, score)
		}
	}
	if proj.Has(6) {
		c.Column(6).SetString(n, fields[6])
	}
	if proj.Has(7) {
		c.Column(7).SetString(n, fields[7])
	}
	if proj.Has(8) {
		c.Column(8).SetString(n, fields[8])
	}
	if r.bind.attributesMap && proj.Has(9) {
		keys, values := attrParse(fields[8])
		c.Column(9).AppendMapRow(keys, values)
	}
	return nil
}
