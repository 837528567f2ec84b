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

package chunk

import "testing"

func testSchema() Schema {
	var b Builder
	b.Add("CHROM", Varchar)
	b.Add("POS", BigInt)
	b.AddList("ALT", Varchar)
	return b.Schema()
}

func TestProjectionSkipsUnrequestedColumns(t *testing.T) {
	schema := testSchema()
	c := NewChunk(schema, []int{0, 1}, 8)
	if c.Projected(2) {
		t.Fatalf("column 2 should not be materialized under projection [0,1]")
	}
	if !c.Projected(0) || !c.Projected(1) {
		t.Fatalf("projected columns must be materialized")
	}
	c.Column(0).SetString(0, "chr1")
	c.Column(1).SetInt64(0, 100)
	c.SetLen(1)
	if c.Len() != 1 {
		t.Fatalf("expected len 1, got %d", c.Len())
	}
}

func TestNullNeverZero(t *testing.T) {
	schema := testSchema()
	c := NewChunk(schema, nil, 4)
	pos := c.Column(1)
	pos.SetInt64(0, 0)
	pos.SetNull(0)
	if pos.IsValid(0) {
		t.Fatalf("row 0 should be NULL, not a zero value")
	}
	pos.SetInt64(1, 42)
	if !pos.IsValid(1) {
		t.Fatalf("row 1 should remain valid")
	}
}

func TestListChildAppend(t *testing.T) {
	schema := testSchema()
	c := NewChunk(schema, nil, 4)
	alt := c.Column(2)
	base := alt.AppendListRow(2)
	alt.Child.SetString(base, "A")
	alt.Child.SetString(base+1, "G")
	if alt.Offsets[len(alt.Offsets)-1] != 2 {
		t.Fatalf("expected offset 2, got %d", alt.Offsets[len(alt.Offsets)-1])
	}
	if alt.Child.Strings[0] != "A" || alt.Child.Strings[1] != "G" {
		t.Fatalf("unexpected child contents: %v", alt.Child.Strings)
	}
}

func TestResetReusesBackingArrays(t *testing.T) {
	schema := testSchema()
	c := NewChunk(schema, []int{1}, 4)
	pos := c.Column(1)
	pos.SetInt64(0, 7)
	pos.SetNull(0)
	c.SetLen(1)
	c.Reset()
	if c.Len() != 0 {
		t.Fatalf("expected len 0 after reset, got %d", c.Len())
	}
	if !pos.IsValid(0) {
		t.Fatalf("reset should clear validity back to all-valid")
	}
}
