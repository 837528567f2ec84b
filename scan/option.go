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

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Options is the named-parameter bag a table function's Bind receives.
// Each reader package normalizes it into its own small typed options
// struct rather than threading a free-form map through its own code.
type Options map[string]any

// String returns the named option as a string, or def if absent/wrong type.
func (o Options) String(name, def string) string {
	if v, ok := o[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the named option as a bool, or def if absent/wrong type.
func (o Options) Bool(name string, def bool) bool {
	if v, ok := o[name]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// StringList returns the named option as a []string, or nil if absent.
func (o Options) StringList(name string) []string {
	if v, ok := o[name]; ok {
		if l, ok := v.([]string); ok {
			return l
		}
	}
	return nil
}

// Has reports whether name was explicitly supplied.
func (o Options) Has(name string) bool {
	_, ok := o[name]
	return ok
}

// SplitRegions splits a user region option on commas and trims whitespace,
// matching the region-scan rule shared by every format: "split by commas,
// trim whitespace, construct iterators [...] one after another."
func SplitRegions(region string) []string {
	if region == "" {
		return nil
	}
	parts := strings.Split(region, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeTypeName maps a user-supplied column_types entry (case
// insensitive, with common ecosystem aliases such as "character"/"numeric"
// and R/pandas-ish spellings) onto the reader's logical type vocabulary.
// ok is false for anything unrecognized, so the caller can fail bind.
func NormalizeTypeName(name string) (canon string, ok bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	aliases := map[string][]string{
		"INTEGER": {"INT", "INT4", "INTEGER"},
		"BIGINT":  {"BIGINT", "INT8", "LONG"},
		"DOUBLE":  {"DOUBLE", "FLOAT", "FLOAT8", "NUMERIC", "REAL"},
		"VARCHAR": {"VARCHAR", "STRING", "TEXT", "CHARACTER"},
		"BOOLEAN": {"BOOLEAN", "BOOL", "LOGICAL"},
	}
	for canon, forms := range aliases {
		if slices.Contains(forms, n) {
			return canon, true
		}
	}
	return "", false
}
