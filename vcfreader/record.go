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

package vcfreader

import (
	"strconv"
	"strings"
)

// fieldValue is the common shape every INFO/FORMAT value is normalized
// to, regardless of whether it came from a text VCF line or a decoded
// BCF typed value. This lets schema-driven chunk writing (writeFieldValue,
// in reader_fill.go) stay oblivious to which source format produced it.
type fieldValue struct {
	present bool
	flag    bool
	ints    []int64
	floats  []float64
	strs    []string
}

// row is one fully decoded record, source-agnostic.
type row struct {
	chrom     string
	pos       int64 // 1-based
	id        string
	ref       string
	alt       []string
	qualValid bool
	qual      float64
	filters   []string
	info      map[string]fieldValue   // key: INFO field ID
	vepRaw    string                  // raw CSQ/BCSQ/ANN value, unsplit
	format    map[string][]fieldValue // key: FORMAT field ID, one fieldValue per sample in header.Samples order
}

// materializeFilters applies the PASS-materialization rule to a record's
// already-resolved filter names: a record with no filters recorded
// becomes a single-element ["PASS"].
func materializeFilters(names []string) []string {
	if len(names) == 0 {
		return []string{"PASS"}
	}
	return names
}

// fromText builds a fieldValue from a raw VCF text value given the
// field's declared kind and arity. String INFO list fields are split at
// ',' in a single pass, matching the "split the raw value at ','" rule.
func fromText(raw string, kind ValueKind, arity Arity, fixedN int) fieldValue {
	if kind == KindFlag {
		return fieldValue{present: true, flag: true}
	}
	if raw == "" || raw == "." {
		return fieldValue{present: false}
	}
	list := isList(arity, fixedN)
	parts := []string{raw}
	if list {
		parts = strings.Split(raw, ",")
	}
	fv := fieldValue{present: true}
	switch kind {
	case KindInteger:
		fv.ints = make([]int64, 0, len(parts))
		for _, p := range parts {
			if p == "." {
				continue
			}
			n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
			if err == nil {
				fv.ints = append(fv.ints, n)
			}
		}
	case KindFloat:
		fv.floats = make([]float64, 0, len(parts))
		for _, p := range parts {
			if p == "." {
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err == nil {
				fv.floats = append(fv.floats, f)
			}
		}
	default:
		fv.strs = parts
	}
	return fv
}

// fromDecoded builds a fieldValue from an already BCF-typed decodedValue,
// filtering missing/vector-end sentinels for numeric lists per the
// decoding contract.
func fromDecoded(dv decodedValue, kind ValueKind) fieldValue {
	if !dv.present {
		return fieldValue{present: false}
	}
	if kind == KindFlag {
		return fieldValue{present: true, flag: true}
	}
	fv := fieldValue{present: true}
	switch dv.t {
	case bcfInt8, bcfInt16, bcfInt32:
		ints := filteredInts(dv.ints)
		fv.ints = make([]int64, len(ints))
		for i, v := range ints {
			fv.ints[i] = int64(v)
		}
	case bcfFloat:
		floats := filteredFloats(dv.floats)
		fv.floats = make([]float64, len(floats))
		for i, v := range floats {
			fv.floats[i] = float64(v)
		}
	case bcfChar:
		fv.strs = strings.Split(dv.str, ",")
	}
	if len(fv.ints) == 0 && len(fv.floats) == 0 && len(fv.strs) == 0 {
		fv.present = false
	}
	return fv
}
