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

package bamreader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
)

// standardTag is one entry of the built-in standard-SAM-tag table: a
// compile-time data table rather than code, per the shared decoder's
// "tag-typed dispatch" design note. The BAM aux type codes (A, Z, H, i,
// f, B<sub>) drive both the output column type and the decode path.
type standardTag struct {
	id       string // two-letter SAM tag, e.g. "NM"
	col      chunk.Type
	elem     chunk.Type // meaningful only when col == chunk.List
	intArray bool       // true when a projected B-array tag decodes as LIST<BIGINT> rather than LIST<DOUBLE>
}

// standardTags is the built-in table of typed standard tag columns
// materialized when standard_tags=true. Unlisted tags always fall
// through to AUXILIARY_TAGS when auxiliary_tags=true.
var standardTags = []standardTag{
	{id: "NM", col: chunk.BigInt},
	{id: "AS", col: chunk.BigInt},
	{id: "XS", col: chunk.BigInt},
	{id: "MD", col: chunk.Varchar},
	{id: "RG", col: chunk.Varchar},
	{id: "BC", col: chunk.Varchar},
	{id: "PG", col: chunk.Varchar},
	{id: "SA", col: chunk.Varchar},
	{id: "MC", col: chunk.Varchar},
	{id: "ML", col: chunk.List, elem: chunk.BigInt, intArray: true},
	{id: "MM", col: chunk.Varchar},
	{id: "CB", col: chunk.Varchar},
	{id: "CR", col: chunk.Varchar},
	{id: "UR", col: chunk.Varchar},
	{id: "UB", col: chunk.Varchar},
	{id: "XA", col: chunk.Varchar},
}

func standardTagIndex(id string) int {
	for i := range standardTags {
		if standardTags[i].id == id {
			return i
		}
	}
	return -1
}

// decodeStandardTag writes one standard-tag value into vec at row, per
// the column type the tag table declared.
func decodeStandardTag(vec *chunk.Vector, row int, a sam.Aux, spec standardTag) {
	switch spec.col {
	case chunk.BigInt:
		vec.SetInt64(row, auxInt64(a))
	case chunk.Double:
		vec.SetFloat64(row, auxFloat64(a))
	case chunk.Varchar:
		vec.SetString(row, auxString(a))
	case chunk.List:
		writeAuxListColumn(vec, row, a)
	}
}

func auxInt64(a sam.Aux) int64 {
	switch v := a.Value().(type) {
	case int8:
		return int64(v)
	case uint8:
		return int64(v)
	case int16:
		return int64(v)
	case uint16:
		return int64(v)
	case int32:
		return int64(v)
	case uint32:
		return int64(v)
	}
	return 0
}

func auxFloat64(a sam.Aux) float64 {
	if v, ok := a.Value().(float32); ok {
		return float64(v)
	}
	return 0
}

func auxString(a sam.Aux) string {
	switch v := a.Value().(type) {
	case string:
		return v
	case byte:
		return string(rune(v))
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// writeAuxListColumn decodes a B-array aux tag into the LIST<BIGINT> or
// LIST<DOUBLE> child vector of a standard-tag column.
func writeAuxListColumn(vec *chunk.Vector, row int, a sam.Aux) {
	switch v := a.Value().(type) {
	case []int8:
		base := vec.AppendListRow(len(v))
		for i, x := range v {
			vec.Child.SetInt64(base+i, int64(x))
		}
	case []uint8:
		base := vec.AppendListRow(len(v))
		for i, x := range v {
			vec.Child.SetInt64(base+i, int64(x))
		}
	case []int16:
		base := vec.AppendListRow(len(v))
		for i, x := range v {
			vec.Child.SetInt64(base+i, int64(x))
		}
	case []uint16:
		base := vec.AppendListRow(len(v))
		for i, x := range v {
			vec.Child.SetInt64(base+i, int64(x))
		}
	case []int32:
		base := vec.AppendListRow(len(v))
		for i, x := range v {
			vec.Child.SetInt64(base+i, int64(x))
		}
	case []uint32:
		base := vec.AppendListRow(len(v))
		for i, x := range v {
			vec.Child.SetInt64(base+i, int64(x))
		}
	case []float32:
		base := vec.AppendListRow(len(v))
		for i, x := range v {
			vec.Child.SetFloat64(base+i, float64(x))
		}
	default:
		vec.AppendListRow(0)
	}
}

// auxCanonicalString serializes one aux field to the canonical VARCHAR
// form used by the AUXILIARY_TAGS map: scalars as printed numbers or the
// raw Z string, arrays as "<subtype>,v1,v2,...".
func auxCanonicalString(a sam.Aux) string {
	switch a.Kind() {
	case 'B':
		return auxCanonicalArray(a)
	default:
		return auxString(a)
	}
}

func auxCanonicalArray(a sam.Aux) string {
	sub := a[3] // B-array element subtype; Value() dispatches on this same byte
	var parts []string
	switch v := a.Value().(type) {
	case []int8:
		for _, x := range v {
			parts = append(parts, strconv.FormatInt(int64(x), 10))
		}
	case []uint8:
		for _, x := range v {
			parts = append(parts, strconv.FormatInt(int64(x), 10))
		}
	case []int16:
		for _, x := range v {
			parts = append(parts, strconv.FormatInt(int64(x), 10))
		}
	case []uint16:
		for _, x := range v {
			parts = append(parts, strconv.FormatInt(int64(x), 10))
		}
	case []int32:
		for _, x := range v {
			parts = append(parts, strconv.FormatInt(int64(x), 10))
		}
	case []uint32:
		for _, x := range v {
			parts = append(parts, strconv.FormatInt(int64(x), 10))
		}
	case []float32:
		for _, x := range v {
			parts = append(parts, strconv.FormatFloat(float64(x), 'g', -1, 32))
		}
	}
	return string(sub) + "," + strings.Join(parts, ",")
}
