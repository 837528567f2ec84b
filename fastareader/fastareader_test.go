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

package fastareader

import "testing"

func TestSplitHeaderLine(t *testing.T) {
	name, desc := splitHeaderLine("chr1 Homo sapiens chromosome 1")
	if name != "chr1" || desc != "Homo sapiens chromosome 1" {
		t.Fatalf("got (%q,%q)", name, desc)
	}
	name, desc = splitHeaderLine("chr1")
	if name != "chr1" || desc != "" {
		t.Fatalf("got (%q,%q), want no description", name, desc)
	}
}

func TestParseFastaRegion(t *testing.T) {
	name, beg, end, whole, err := parseFastaRegion("chr1:10-20")
	if err != nil || whole || name != "chr1" || beg != 9 || end != 20 {
		t.Fatalf("parseFastaRegion = (%q,%d,%d,%v,%v), want (chr1,9,20,false,nil)", name, beg, end, whole, err)
	}
	name, _, _, whole, err = parseFastaRegion("chr2")
	if err != nil || !whole || name != "chr2" {
		t.Fatalf("bare contig = (%q,%v,%v), want (chr2,true,nil)", name, whole, err)
	}
	if _, _, _, _, err = parseFastaRegion("chr1:10"); err == nil {
		t.Fatalf("expected an error for a range with no dash")
	}
}

func TestPairIDStripsMateSuffix(t *testing.T) {
	if got := pairID("read42/1"); got != "read42" {
		t.Fatalf("pairID(read42/1) = %q, want read42", got)
	}
	if got := pairID("read42/2"); got != "read42" {
		t.Fatalf("pairID(read42/2) = %q, want read42", got)
	}
	if got := pairID("read42"); got != "read42" {
		t.Fatalf("pairID(read42) = %q, want read42", got)
	}
}

func TestFastqBindRejectsMutuallyExclusiveOptions(t *testing.T) {
	_, _, err := FastqBind("x.fq", map[string]any{"mate_path": "y.fq", "interleaved": true})
	if err == nil {
		t.Fatalf("expected a bind error for mate_path + interleaved")
	}
}

func TestFastqSchemaAddsPairColumnsOnlyWhenPaired(t *testing.T) {
	schema, mateIdx, pairIdx := fastqSchema(false)
	if len(schema) != 4 || mateIdx != -1 || pairIdx != -1 {
		t.Fatalf("unpaired schema = %v, mateIdx=%d pairIdx=%d", schema, mateIdx, pairIdx)
	}
	schema, mateIdx, pairIdx = fastqSchema(true)
	if len(schema) != 6 || mateIdx != 4 || pairIdx != 5 {
		t.Fatalf("paired schema = %v, mateIdx=%d pairIdx=%d", schema, mateIdx, pairIdx)
	}
}
