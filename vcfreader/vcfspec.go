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

// specEntry is one row of the built-in standard VCF INFO/FORMAT table,
// encoded as data rather than code per the "standard-tag table as data"
// design note; validation is then a lookup instead of a cascade of ifs.
type specEntry struct {
	arity  Arity
	fixedN int
	kind   ValueKind
}

// standardInfo and standardFormat are deliberately small: they cover the
// reserved keys the VCF 4.x spec defines, which is exactly the set a
// header commonly gets wrong in the wild (the motivating case for this
// validation step at all).
var standardInfo = map[string]specEntry{
	"AF":      {arity: ArityA, kind: KindFloat},
	"AC":      {arity: ArityA, kind: KindInteger},
	"AN":      {arity: ArityFixed, fixedN: 1, kind: KindInteger},
	"DP":      {arity: ArityFixed, fixedN: 1, kind: KindInteger},
	"MQ":      {arity: ArityFixed, fixedN: 1, kind: KindFloat},
	"END":     {arity: ArityFixed, fixedN: 1, kind: KindInteger},
	"NS":      {arity: ArityFixed, fixedN: 1, kind: KindInteger},
	"BQ":      {arity: ArityFixed, fixedN: 1, kind: KindFloat},
	"CIGAR":   {arity: ArityA, kind: KindString},
	"SVTYPE":  {arity: ArityFixed, fixedN: 1, kind: KindString},
	"SVLEN":   {arity: ArityA, kind: KindInteger},
	"DB":      {arity: ArityFixed, fixedN: 0, kind: KindFlag},
	"H2":      {arity: ArityFixed, fixedN: 0, kind: KindFlag},
	"H3":      {arity: ArityFixed, fixedN: 0, kind: KindFlag},
	"SOMATIC": {arity: ArityFixed, fixedN: 0, kind: KindFlag},
}

var standardFormat = map[string]specEntry{
	"GT": {arity: ArityFixed, fixedN: 1, kind: KindString},
	"GQ": {arity: ArityFixed, fixedN: 1, kind: KindInteger},
	"DP": {arity: ArityFixed, fixedN: 1, kind: KindInteger},
	"HQ": {arity: ArityFixed, fixedN: 2, kind: KindInteger},
	"PS": {arity: ArityFixed, fixedN: 1, kind: KindInteger},
	"PL": {arity: ArityG, kind: KindInteger},
	"AD": {arity: ArityR, kind: KindInteger},
}

// validate cross-checks a header-declared field against the standard
// table. On mismatch it returns the VCF standard's Arity/fixedN (adopted)
// plus a warning describing the discrepancy; the header's declared Type
// is kept either way. mismatched is false when the field is not a reserved
// key at all, in which case the header's own declaration is authoritative
// and no warning is produced, and also when the declaration agrees with
// the table.
func validate(isInfo bool, id string, declaredArity Arity, declaredFixedN int) (arity Arity, fixedN int, warning string, mismatched bool) {
	table := standardFormat
	if isInfo {
		table = standardInfo
	}
	spec, ok := table[id]
	if !ok {
		return declaredArity, declaredFixedN, "", false
	}
	if spec.arity != declaredArity || (spec.arity == ArityFixed && spec.fixedN != declaredFixedN) {
		return spec.arity, spec.fixedN, fieldMismatchWarning(isInfo, id, declaredArity, declaredFixedN, spec.arity, spec.fixedN), true
	}
	return declaredArity, declaredFixedN, "", false
}

func fieldMismatchWarning(isInfo bool, id string, declaredArity Arity, declaredFixedN int, specArity Arity, specFixedN int) string {
	kind := "FORMAT"
	if isInfo {
		kind = "INFO"
	}
	return kind + "/" + id + " header Number disagrees with the VCF standard; adopting the standard arity"
}
