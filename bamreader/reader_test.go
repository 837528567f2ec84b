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

package bamreader

import (
	"testing"

	"github.com/biogo/hts/sam"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
)

func TestBuildLayoutCoreColumns(t *testing.T) {
	l := buildLayout(false, false)
	want := []string{"QNAME", "FLAG", "RNAME", "POS", "MAPQ", "CIGAR", "RNEXT",
		"PNEXT", "TLEN", "SEQ", "QUAL", "READ_GROUP_ID", "SAMPLE_ID"}
	if len(l.schema) != len(want) {
		t.Fatalf("got %d core columns, want %d", len(l.schema), len(want))
	}
	for i, name := range want {
		if l.schema[i].Name != name {
			t.Errorf("column %d = %q, want %q", i, l.schema[i].Name, name)
		}
	}
	if l.auxIdx != -1 {
		t.Errorf("auxIdx = %d, want -1 when auxiliary_tags=false", l.auxIdx)
	}
}

func TestBuildLayoutStandardAndAuxColumns(t *testing.T) {
	l := buildLayout(true, true)
	if len(l.stdTags) != len(standardTags) {
		t.Fatalf("got %d standard tag columns, want %d", len(l.stdTags), len(standardTags))
	}
	if l.auxIdx != len(l.schema)-1 {
		t.Fatalf("auxIdx = %d, want last column %d", l.auxIdx, len(l.schema)-1)
	}
	if l.schema[l.auxIdx].Name != "AUXILIARY_TAGS" || l.schema[l.auxIdx].Type != chunk.Map {
		t.Fatalf("unexpected AUXILIARY_TAGS column: %+v", l.schema[l.auxIdx])
	}
}

func TestOnebasedPositionConversion(t *testing.T) {
	if got := onebased(-1); got != 0 {
		t.Errorf("onebased(-1) = %d, want 0 (unmapped)", got)
	}
	if got := onebased(0); got != 1 {
		t.Errorf("onebased(0) = %d, want 1", got)
	}
	if got := onebased(999); got != 1000 {
		t.Errorf("onebased(999) = %d, want 1000", got)
	}
}

func TestQualStringAllMissingSentinel(t *testing.T) {
	r := &bamReaderState{}
	if got := r.qualString([]byte{0xff, 0xff, 0xff}); got != "*" {
		t.Errorf("all-0xFF qual = %q, want *", got)
	}
	if got := r.qualString(nil); got != "*" {
		t.Errorf("empty qual = %q, want *", got)
	}
	got := r.qualString([]byte{0, 1, 2})
	want := string([]byte{33, 34, 35})
	if got != want {
		t.Errorf("qualString([0,1,2]) = %q, want %q", got, want)
	}
}

func TestSeqStringRoundTripsNibbleAlphabet(t *testing.T) {
	r := &bamReaderState{}
	rec := &sam.Record{Seq: sam.NewSeq([]byte("ACGTN"))}
	if got := r.seqString(rec); got != "ACGTN" {
		t.Errorf("seqString = %q, want ACGTN", got)
	}
	rec = &sam.Record{}
	if got := r.seqString(rec); got != "*" {
		t.Errorf("empty seq = %q, want *", got)
	}
}

func TestCigarStringConcatenatesOps(t *testing.T) {
	r := &bamReaderState{}
	cig := sam.Cigar{
		sam.NewCigarOp(sam.CigarMatch, 5),
		sam.NewCigarOp(sam.CigarSoftClipped, 2),
	}
	if got := r.cigarString(cig); got != "5M2S" {
		t.Errorf("cigarString = %q, want 5M2S", got)
	}
	if got := r.cigarString(nil); got != "*" {
		t.Errorf("empty cigar = %q, want *", got)
	}
}

func TestParseRegion(t *testing.T) {
	r := parseRegion("CHROMOSOME_I:1-1000")
	if r.contig != "CHROMOSOME_I" || r.beg != 0 || r.end != 1000 {
		t.Fatalf("parseRegion = %+v, want {CHROMOSOME_I 0 1000}", r)
	}
	r = parseRegion("chr2")
	if r.contig != "chr2" || r.beg != 0 || r.end != -1 {
		t.Fatalf("parseRegion(no range) = %+v", r)
	}
}

func TestStandardTagIndex(t *testing.T) {
	if standardTagIndex("NM") < 0 {
		t.Fatalf("expected NM to be a known standard tag")
	}
	if standardTagIndex("ZZ") >= 0 {
		t.Fatalf("ZZ should not be a known standard tag")
	}
}
