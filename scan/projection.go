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

package scan

import "golang.org/x/exp/slices"

// Projection is the list of logical column indices the host engine wants
// populated for a scan. An empty Projection means "all columns" (e.g. a
// bare SELECT *). It is captured once in LocalInit and consulted on every
// row of the scan loop to decide which sub-parsers (VEP, per-sample
// FORMAT fetch, CIGAR/SEQ decoding, ...) can be skipped entirely.
type Projection []int

// All reports whether p requests every column in a schema of size n.
func (p Projection) All(n int) bool { return len(p) == 0 }

// Has reports whether logical column idx is requested.
func (p Projection) Has(idx int) bool {
	if len(p) == 0 {
		return true
	}
	return slices.Contains(p, idx)
}

// HasAny reports whether any of idxs is requested; used by readers to
// decide whether a whole family of columns (e.g. all VEP_* columns, or
// all FORMAT_* columns for one sample) needs any work this scan at all.
func (p Projection) HasAny(idxs ...int) bool {
	for _, idx := range idxs {
		if p.Has(idx) {
			return true
		}
	}
	return false
}
