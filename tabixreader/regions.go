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
	"strings"
)

type regionSpec struct {
	contig   string
	beg, end int // 0-based, half-open; end == -1 means "to the end of the reference"
}

// parseRegion parses one "contig" or "contig:beg-end" region token,
// converting the 1-based inclusive user range to a 0-based half-open one.
func parseRegion(s string) regionSpec {
	contig := s
	beg, end := 0, -1
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		contig = s[:idx]
		rng := s[idx+1:]
		if dash := strings.IndexByte(rng, '-'); dash >= 0 {
			b, _ := strconv.Atoi(rng[:dash])
			e, _ := strconv.Atoi(rng[dash+1:])
			beg, end = b-1, e
		} else if b, err := strconv.Atoi(rng); err == nil {
			beg, end = b-1, b // single 1-based position
		}
	}
	return regionSpec{contig: contig, beg: beg, end: end}
}
