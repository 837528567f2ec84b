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

import "strings"

// parseGFF3Attributes splits the 9th GFF3 column on ';', each pair
// "KEY=VAL", preserving declaration order and duplicate-free keys.
func parseGFF3Attributes(s string) (keys, values []string) {
	seen := map[string]bool{}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if seen[k] {
			continue // a repeated key keeps its first value
		}
		seen[k] = true
		keys = append(keys, k)
		values = append(values, strings.TrimSpace(v))
	}
	return keys, values
}

// parseGTFAttributes splits the 9th GTF column on ';', each pair
// `KEY "VAL"` (quoted) or `KEY VAL` (unquoted).
func parseGTFAttributes(s string) (keys, values []string) {
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sp := strings.IndexByte(part, ' ')
		if sp < 0 {
			continue
		}
		k := part[:sp]
		v := strings.TrimSpace(part[sp+1:])
		v = strings.Trim(v, `"`)
		keys = append(keys, k)
		values = append(values, v)
	}
	return keys, values
}
