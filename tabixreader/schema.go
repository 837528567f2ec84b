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

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
	"github.com/RGenomicsETL/duckhts-sub000/scan"
)

type mode int

const (
	modeGeneric mode = iota
	modeGTF
	modeGFF
)

// canonToChunkType maps scan.NormalizeTypeName's canonical vocabulary onto
// this module's logical column types.
func canonToChunkType(canon string) chunk.Type {
	switch canon {
	case "INTEGER":
		return chunk.Integer
	case "BIGINT":
		return chunk.BigInt
	case "DOUBLE":
		return chunk.Double
	case "BOOLEAN":
		return chunk.Boolean
	default:
		return chunk.Varchar
	}
}

// gtfGffSchema builds the fixed 9-column GTF/GFF schema, appending
// attributes_map when requested.
func gtfGffSchema(attributesMap bool) chunk.Schema {
	var b chunk.Builder
	b.Add("seqname", chunk.Varchar)
	b.Add("source", chunk.Varchar)
	b.Add("feature", chunk.Varchar)
	b.Add("start", chunk.BigInt)
	b.Add("end", chunk.BigInt)
	b.Add("score", chunk.Double)
	b.Add("strand", chunk.Varchar)
	b.Add("frame", chunk.Varchar)
	b.Add("attributes", chunk.Varchar)
	if attributesMap {
		b.AddMap("attributes_map")
	}
	return b.Schema()
}

// genericSchema builds the auto-discovered schema for read_tabix: names
// default to column0, column1, ... unless headerNames/the sampled header
// line supplies them; types default to VARCHAR unless columnTypes or
// auto-detection (over sample) tightens them.
func genericSchema(names []string, types []chunk.Type) (chunk.Schema, error) {
	n := len(names)
	if n == 0 {
		n = len(types)
	}
	if n == 0 {
		return nil, fmt.Errorf("unable to determine column count: file has no data lines")
	}
	var b chunk.Builder
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("column%d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		t := chunk.Varchar
		if i < len(types) {
			t = types[i]
		}
		b.Add(name, t)
	}
	return b.Schema(), nil
}

// resolveColumnTypes normalizes an explicit column_types option against
// scan.NormalizeTypeName, failing bind when the count mismatches or a
// name is unrecognized.
func resolveColumnTypes(names []string, want int) ([]chunk.Type, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if len(names) != want {
		return nil, fmt.Errorf("column_types has %d entries, want %d (one per column)", len(names), want)
	}
	out := make([]chunk.Type, len(names))
	for i, n := range names {
		canon, ok := scan.NormalizeTypeName(n)
		if !ok {
			return nil, fmt.Errorf("column_types[%d]: unrecognized type %q", i, n)
		}
		out[i] = canonToChunkType(canon)
	}
	return out, nil
}
