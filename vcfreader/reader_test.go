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
	"strings"
	"testing"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
)

const testHeaderText = `##fileformat=VCFv4.2
##contig=<ID=chr1>
##contig=<ID=chr2>
##INFO=<ID=DP,Number=1,Type=Integer,Description="Depth">
##INFO=<ID=AF,Number=A,Type=Float,Description="Allele Frequency">
##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">
##FORMAT=<ID=GQ,Number=1,Type=Integer,Description="Genotype Quality">
##FILTER=<ID=PASS,Description="All filters passed">
##FILTER=<ID=LowQual,Description="Low quality">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	NA001	NA002
`

func newTestReader(t *testing.T, tidy bool) *vcfReader {
	t.Helper()
	h, _, err := ParseHeader(strings.NewReader(testHeaderText))
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	l := buildLayout(h, tidy)
	return &vcfReader{bind: &bindState{header: h, layout: l, opts: options{tidy: tidy}}}
}

func TestMaterializeFiltersPassDefault(t *testing.T) {
	if got := materializeFilters(nil); len(got) != 1 || got[0] != "PASS" {
		t.Fatalf("materializeFilters(nil) = %v, want [PASS]", got)
	}
	if got := materializeFilters([]string{"LowQual"}); len(got) != 1 || got[0] != "LowQual" {
		t.Fatalf("materializeFilters([LowQual]) = %v, want [LowQual]", got)
	}
}

func TestDecodeGenotypePhasing(t *testing.T) {
	if got := DecodeGenotype([]int32{2, 2}); got != "0/0" {
		t.Fatalf("DecodeGenotype hom ref = %q, want 0/0", got)
	}
	if got := DecodeGenotype([]int32{2, 4}); got != "0/1" {
		t.Fatalf("DecodeGenotype unphased het = %q, want 0/1", got)
	}
	if got := DecodeGenotype([]int32{2, 5}); got != "0|1" {
		t.Fatalf("DecodeGenotype phased het = %q, want 0|1", got)
	}
	if got := DecodeGenotype([]int32{0, int32VectorEnd}); got != "." {
		t.Fatalf("DecodeGenotype haploid missing = %q, want .", got)
	}
	if got := DecodeGenotype([]int32{int32Missing, 2}); got != "./0" {
		t.Fatalf("DecodeGenotype missing first allele = %q, want ./0", got)
	}
}

func TestDecodeTextRowCoreFields(t *testing.T) {
	r := newTestReader(t, false)
	line := "chr1\t100\trs1\tA\tG,T\t50.5\tPASS\tDP=10;AF=0.1,0.2\tGT:GQ\t0/1:30\t1/1:40"
	rw, rid, pos0, err := r.decodeTextRow(line)
	if err != nil {
		t.Fatalf("decodeTextRow: %v", err)
	}
	if rid != 0 {
		t.Fatalf("rid = %d, want 0 (chr1)", rid)
	}
	if pos0 != 99 {
		t.Fatalf("pos0 = %d, want 99 (0-based for 1-based POS 100)", pos0)
	}
	if rw.pos != 100 {
		t.Fatalf("rw.pos = %d, want 100 (1-based invariant)", rw.pos)
	}
	if rw.ref != "A" || len(rw.alt) != 2 || rw.alt[0] != "G" || rw.alt[1] != "T" {
		t.Fatalf("ref/alt = %q/%v, want A/[G T]", rw.ref, rw.alt)
	}
	if !rw.qualValid || rw.qual != 50.5 {
		t.Fatalf("qual = %v/%v, want 50.5/true", rw.qual, rw.qualValid)
	}
	if len(rw.filters) != 1 || rw.filters[0] != "PASS" {
		t.Fatalf("filters = %v, want [PASS]", rw.filters)
	}
	if dp := rw.info["DP"]; !dp.present || len(dp.ints) != 1 || dp.ints[0] != 10 {
		t.Fatalf("INFO/DP = %+v, want present int64{10}", dp)
	}
	gt0 := rw.format["GT"][0]
	if !gt0.present || gt0.strs[0] != "0/1" {
		t.Fatalf("sample 0 GT = %+v, want 0/1", gt0)
	}
}

func TestDecodeTextRowMissingAltAndFilter(t *testing.T) {
	r := newTestReader(t, false)
	line := "chr1\t5\t.\tA\t.\t.\t.\t.\tGT\t0/0\t0/0"
	rw, _, _, err := r.decodeTextRow(line)
	if err != nil {
		t.Fatalf("decodeTextRow: %v", err)
	}
	if rw.id != "" {
		t.Fatalf("id = %q, want empty for '.'", rw.id)
	}
	if len(rw.alt) != 0 {
		t.Fatalf("alt = %v, want empty for '.'", rw.alt)
	}
	if rw.qualValid {
		t.Fatalf("qualValid = true, want false for '.'")
	}
	if len(rw.filters) != 1 || rw.filters[0] != "PASS" {
		t.Fatalf("filters = %v, want [PASS] (no filters recorded)", rw.filters)
	}
}

// TestTidyRowMultiplication verifies that tidy mode spreads one decoded
// record's two samples across two distinct output rows keyed by SAMPLE_ID,
// rather than one row with per-sample column blocks.
func TestTidyRowMultiplication(t *testing.T) {
	r := newTestReader(t, true)
	line := "chr1\t10\t.\tA\tG\t.\t.\t.\tGT:GQ\t0/1:20\t1/1:30"
	rw, _, _, err := r.decodeTextRow(line)
	if err != nil {
		t.Fatalf("decodeTextRow: %v", err)
	}

	c := chunk.NewChunk(r.bind.layout.schema, nil, 4)
	r.writeTidyRow(c, 0, rw, 0)
	r.writeTidyRow(c, 1, rw, 1)
	c.SetLen(2)

	sampleCol := c.Column(r.bind.layout.sampleIDIdx)
	if sampleCol.Strings[0] != "NA001" || sampleCol.Strings[1] != "NA002" {
		t.Fatalf("SAMPLE_ID = %v, want [NA001 NA002]", sampleCol.Strings[:2])
	}
	chromCol := c.Column(r.bind.layout.chromIdx)
	if chromCol.Strings[0] != "chr1" || chromCol.Strings[1] != "chr1" {
		t.Fatalf("CHROM should repeat across the two sample rows, got %v", chromCol.Strings[:2])
	}
}

func TestAppendVEPListOneElementPerTranscript(t *testing.T) {
	col := chunk.NewVector(chunk.List, chunk.BigInt, 2)
	transcripts := splitVEPTranscripts("a|5|x,b||y,c|7|z")
	appendVEPList(col, KindInteger, transcripts, 1)
	if got := col.Offsets[1] - col.Offsets[0]; got != 3 {
		t.Fatalf("expected one element per transcript, got %d", got)
	}
	if !col.Child.IsValid(0) || col.Child.Int64s[0] != 5 {
		t.Fatalf("transcript 0 should decode to 5")
	}
	if col.Child.IsValid(1) {
		t.Fatalf("transcript 1's missing subfield should be a child NULL")
	}
	if !col.Child.IsValid(2) || col.Child.Int64s[2] != 7 {
		t.Fatalf("transcript 2 should decode to 7")
	}
}

func TestWriteFieldValueListNullVsEmpty(t *testing.T) {
	col := chunk.NewVector(chunk.List, chunk.BigInt, 2)
	writeFieldValue(col, true, KindInteger, fieldValue{}, 0)
	writeFieldValue(col, true, KindInteger, fieldValue{present: true, ints: []int64{1, 2}}, 1)
	if col.IsValid(0) {
		t.Fatalf("row 0 should be NULL for an absent list field")
	}
	if !col.IsValid(1) {
		t.Fatalf("row 1 should be valid")
	}
	if col.Offsets[2]-col.Offsets[1] != 2 {
		t.Fatalf("row 1 should have 2 list elements, got offsets %v", col.Offsets)
	}
}
