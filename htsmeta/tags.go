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

package htsmeta

import "strings"

// parseOrderedTags parses the `<K=V,K2="quoted, value",...>` tag list of
// a VCF structured meta line into parallel, declaration-ordered key/value
// slices (rather than a map) so a MAP<VARCHAR,VARCHAR> key_values column
// preserves source order. Grounded on vcfreader/header.go's
// parseAngleTags, which needs only a lookup map for its own purposes;
// read_hts_header needs the order too.
func parseOrderedTags(s string) (keys, vals []string) {
	s = strings.TrimPrefix(strings.TrimSuffix(strings.TrimSpace(s), ">"), "<")
	i := 0
	for i < len(s) {
		eq := strings.IndexByte(s[i:], '=')
		if eq < 0 {
			break
		}
		key := strings.TrimSpace(s[i : i+eq])
		i += eq + 1
		var val string
		if i < len(s) && s[i] == '"' {
			end := i + 1
			for end < len(s) {
				if s[end] == '"' && (end == 0 || s[end-1] != '\\') {
					break
				}
				end++
			}
			val = s[i+1 : end]
			i = end + 1
			if i < len(s) && s[i] == ',' {
				i++
			}
		} else {
			end := strings.IndexByte(s[i:], ',')
			if end < 0 {
				val = s[i:]
				i = len(s)
			} else {
				val = s[i : i+end]
				i += end + 1
			}
		}
		keys = append(keys, key)
		vals = append(vals, val)
	}
	return keys, vals
}

// tagValue looks up a key's value from parallel key/value slices built by
// parseOrderedTags, returning "" if absent.
func tagValue(keys, vals []string, key string) string {
	for i, k := range keys {
		if k == key {
			return vals[i]
		}
	}
	return ""
}
