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
	"strconv"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
)

const autoDetectSampleLines = 100

// columnKind tracks how tight a column's inferred type can still be as
// more sample tokens are folded in; it only ever narrows, matching the
// "only integer tokens -> BIGINT; integer or float -> DOUBLE; otherwise
// VARCHAR" rule.
type columnKind int

const (
	kindUnknown columnKind = iota
	kindInteger
	kindFloat
	kindString
)

func detectTypes(sample [][]string, ncols int) []chunk.Type {
	kinds := make([]columnKind, ncols)
	for i := range kinds {
		kinds[i] = kindUnknown
	}
	for _, row := range sample {
		for i := 0; i < ncols && i < len(row); i++ {
			tok := row[i]
			if tok == "." || tok == "" {
				continue // NULL tokens don't narrow the inferred type
			}
			kinds[i] = narrow(kinds[i], tok)
		}
	}
	out := make([]chunk.Type, ncols)
	for i, k := range kinds {
		switch k {
		case kindInteger:
			out[i] = chunk.BigInt
		case kindFloat:
			out[i] = chunk.Double
		default:
			out[i] = chunk.Varchar
		}
	}
	return out
}

func narrow(k columnKind, tok string) columnKind {
	if k == kindString {
		return kindString
	}
	if _, err := strconv.ParseInt(tok, 10, 64); err == nil {
		if k == kindUnknown {
			return kindInteger
		}
		return k
	}
	if _, err := strconv.ParseFloat(tok, 64); err == nil {
		if k == kindUnknown || k == kindInteger {
			return kindFloat
		}
		return k
	}
	return kindString
}
