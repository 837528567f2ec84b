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

import "testing"

func TestParseVEPSchemaSplitsPipeDelimitedFormat(t *testing.T) {
	desc := `Consequence annotations from Ensembl VEP. Format: Allele|Consequence|IMPACT|STRAND|DISTANCE`
	fields := ParseVEPSchema(desc)
	if len(fields) != 5 {
		t.Fatalf("got %d fields, want 5: %+v", len(fields), fields)
	}
	if fields[0].name != "Allele" || fields[0].kind != KindString {
		t.Fatalf("field 0 = %+v", fields[0])
	}
	if fields[3].name != "STRAND" || fields[3].kind != KindInteger {
		t.Fatalf("STRAND should classify as integer: %+v", fields[3])
	}
	if fields[4].name != "DISTANCE" || fields[4].kind != KindInteger {
		t.Fatalf("DISTANCE should classify as integer: %+v", fields[4])
	}
}

func TestParseVEPSchemaNoColonReturnsNil(t *testing.T) {
	if got := ParseVEPSchema("no format marker here"); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestParseVEPSchemaCachesByDescription(t *testing.T) {
	desc := `Format: Allele|IMPACT`
	first := ParseVEPSchema(desc)
	key := vepSchemaCacheKey(desc)
	cached, ok := vepSchemaCache.Load(key)
	if !ok {
		t.Fatalf("expected a cache entry for %q", desc)
	}
	second := ParseVEPSchema(desc)
	// Same backing slice comes back from the cache rather than being
	// re-derived from the description text.
	if &first[0] != &cached.([]vepSubfield)[0] {
		t.Fatalf("cache did not store the first call's result")
	}
	if len(second) != len(first) {
		t.Fatalf("second call diverged from cached schema")
	}
}

func TestIsVEPInfoIDRecognizesAllThreeFamilies(t *testing.T) {
	for _, id := range []string{"CSQ", "BCSQ", "ANN"} {
		if !IsVEPInfoID(id) {
			t.Fatalf("%s should be recognized as a VEP-family annotation ID", id)
		}
	}
	if IsVEPInfoID("DP") {
		t.Fatalf("DP should not be recognized as a VEP-family annotation ID")
	}
}
