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

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
)

// Arity is the VCF header "Number=" class, tagged rather than modeled as
// a type hierarchy per the shared decoder's dispatch-on-tag design.
type Arity int

const (
	ArityFixed Arity = iota // Number=<integer>
	ArityVar                // Number=.
	ArityA                  // one value per ALT allele
	ArityR                  // one value per allele (REF+ALT)
	ArityG                  // one value per genotype
)

// ValueKind is the VCF header "Type=" field, also tag-dispatched.
type ValueKind int

const (
	KindInteger ValueKind = iota
	KindFloat
	KindFlag
	KindCharacter
	KindString
)

func ParseValueKind(s string) ValueKind {
	switch s {
	case "Integer":
		return KindInteger
	case "Float":
		return KindFloat
	case "Flag":
		return KindFlag
	case "Character":
		return KindCharacter
	default:
		return KindString
	}
}

func ParseArity(s string) (Arity, int) {
	switch s {
	case "A":
		return ArityA, 0
	case "R":
		return ArityR, 0
	case "G":
		return ArityG, 0
	case ".":
		return ArityVar, 0
	default:
		if n, err := strconv.Atoi(s); err == nil {
			return ArityFixed, n
		}
		return ArityVar, 0
	}
}

// isList reports whether a field of this arity/fixed-number combination
// should be materialized as a LIST<T> column rather than a scalar T.
func isList(a Arity, fixedN int) bool {
	if a == ArityFixed {
		return fixedN != 1
	}
	return true
}

// columnType maps a validated (kind, arity) pair to the output chunk.Type,
// following the schema rule "the validated (type, arity) pair drives
// schema type creation."
func columnType(kind ValueKind, a Arity, fixedN int) (t chunk.Type, elem chunk.Type) {
	var scalar chunk.Type
	switch kind {
	case KindInteger:
		scalar = chunk.BigInt
	case KindFloat:
		scalar = chunk.Double
	case KindFlag:
		return chunk.Boolean, chunk.Invalid
	case KindCharacter, KindString:
		scalar = chunk.Varchar
	default:
		scalar = chunk.Varchar
	}
	if isList(a, fixedN) {
		return chunk.List, scalar
	}
	return scalar, chunk.Invalid
}
