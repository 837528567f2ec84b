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

// DecodeGenotype turns the BCF-encoded FORMAT/GT integer vector for one
// sample into its textual form: alleles joined with '|' if phased, '/'
// otherwise, missing alleles rendered as '.', and ploidy truncated at the
// first vector-end sentinel.
//
// Each encoded allele value is ((allele_index+1)<<1)|phased_bit; an
// allele_index of -1 (encoded value < 2) denotes a missing allele.
func DecodeGenotype(raw []int32) string {
	var b strings.Builder
	for i, enc := range raw {
		if enc == int32VectorEnd {
			break // vector-end truncates ploidy
		}
		if i > 0 {
			phased := enc&1 == 1
			if phased {
				b.WriteByte('|')
			} else {
				b.WriteByte('/')
			}
		}
		if enc == int32Missing {
			b.WriteByte('.')
			continue
		}
		alleleIdx := int(enc>>1) - 1
		if alleleIdx < 0 {
			b.WriteByte('.')
		} else {
			b.WriteString(strconv.Itoa(alleleIdx))
		}
	}
	return b.String()
}

// DecodeGenotypeText normalizes an already-textual GT value (as found in a
// text VCF record) by trimming surrounding whitespace and returning it
// unchanged otherwise: a pass-through step for the text-VCF ingest path
// (no BCF integers exist to decode in that path; the raw string is
// already in the form DecodeGenotype produces, modulo whitespace).
func DecodeGenotypeText(raw string) string {
	return strings.TrimSpace(raw)
}
