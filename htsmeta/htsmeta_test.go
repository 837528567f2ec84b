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

import (
	"reflect"
	"testing"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
	"github.com/RGenomicsETL/duckhts-sub000/scan"
)

func TestParseOrderedTagsPreservesDeclarationOrder(t *testing.T) {
	keys, vals := parseOrderedTags(`<ID=DP,Number=1,Type=Integer,Description="Read depth">`)
	wantKeys := []string{"ID", "Number", "Type", "Description"}
	wantVals := []string{"DP", "1", "Integer", "Read depth"}
	if !reflect.DeepEqual(keys, wantKeys) {
		t.Fatalf("keys = %v, want %v", keys, wantKeys)
	}
	if !reflect.DeepEqual(vals, wantVals) {
		t.Fatalf("vals = %v, want %v", vals, wantVals)
	}
}

func TestParseOrderedTagsHandlesCommaInsideQuotes(t *testing.T) {
	keys, vals := parseOrderedTags(`<ID=AF,Description="Allele freq, estimated">`)
	if got := tagValue(keys, vals, "Description"); got != "Allele freq, estimated" {
		t.Fatalf("Description = %q", got)
	}
}

func TestTagValueMissingKey(t *testing.T) {
	keys, vals := parseOrderedTags(`<ID=AF>`)
	if got := tagValue(keys, vals, "Number"); got != "" {
		t.Fatalf("expected empty string for missing key, got %q", got)
	}
}

func TestClassifyVCFLineContig(t *testing.T) {
	row := classifyVCFLine("VCF", "none", `##contig=<ID=chr1,length=248956422>`, 0)
	if row.recordType != "contig" || row.id != "chr1" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.length == nil || *row.length != 248956422 {
		t.Fatalf("length = %v, want 248956422", row.length)
	}
}

func TestClassifyVCFLineInfo(t *testing.T) {
	row := classifyVCFLine("VCF", "none", `##INFO=<ID=DP,Number=1,Type=Integer,Description="Total depth">`, 1)
	if row.recordType != "info" || row.id != "DP" || row.number != "1" || row.valueType != "Integer" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.description != "Total depth" {
		t.Fatalf("description = %q", row.description)
	}
}

func TestClassifyVCFLinePlainMeta(t *testing.T) {
	row := classifyVCFLine("VCF", "none", `##fileformat=VCFv4.2`, 2)
	if row.recordType != "meta" {
		t.Fatalf("recordType = %q, want meta", row.recordType)
	}
	if got := tagValue(row.kvKeys, row.kvVals, "fileformat"); got != "VCFv4.2" {
		t.Fatalf("fileformat = %q", got)
	}
}

func TestClassifySAMLineSQRecordsLengthAndID(t *testing.T) {
	row := classifySAMLine("SAM", "none", "@SQ\tSN:chr1\tLN:248956422", 0)
	if row.recordType != "SQ" || row.id != "chr1" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.length == nil || *row.length != 248956422 {
		t.Fatalf("length = %v", row.length)
	}
}

func TestClassifySAMLineCommentCarriesRawText(t *testing.T) {
	row := classifySAMLine("SAM", "none", "@CO\tassembled with tool X", 0)
	if row.recordType != "CO" || row.description != "assembled with tool X" {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestDetectFormatTrustsExplicitHint(t *testing.T) {
	format, err := detectFormat("/does/not/exist.xyz", "bcf")
	if err != nil {
		t.Fatalf("detectFormat: %v", err)
	}
	if format != "bcf" {
		t.Fatalf("format = %q, want bcf", format)
	}
}

func TestDetectFormatSniffsByExtension(t *testing.T) {
	cases := map[string]string{
		"sample.vcf":     "vcf",
		"sample.vcf.gz":  "vcf",
		"sample.bam":     "bam",
		"sample.fasta":   "fasta",
		"sample.fa":      "fasta",
		"sample.fastq":   "fastq",
		"sample.gff3":    "tabix",
		"sample.gtf":     "tabix",
		"sample.bed":     "tabix",
	}
	for path, want := range cases {
		got, err := detectFormat(path, "")
		if err != nil {
			t.Fatalf("detectFormat(%q): %v", path, err)
		}
		if got != want {
			t.Fatalf("detectFormat(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestCompressionOfBCFAlwaysBGZF(t *testing.T) {
	if got := compressionOf("bcf", false); got != "BGZF" {
		t.Fatalf("compressionOf(bcf, false) = %q, want BGZF", got)
	}
}

func TestCompressionOfTextFormatFollowsSniff(t *testing.T) {
	if got := compressionOf("vcf", false); got != "none" {
		t.Fatalf("compressionOf(vcf, false) = %q, want none", got)
	}
	if got := compressionOf("vcf", true); got != "BGZF" {
		t.Fatalf("compressionOf(vcf, true) = %q, want BGZF", got)
	}
}

func TestPagedReaderPagesAcrossMultipleFillsRespectingCap(t *testing.T) {
	schema := chunk.Schema{{Name: "idx", Type: chunk.BigInt}}
	bind := &pagedBindState{
		schema: schema,
		count:  5,
		write: func(c *chunk.Chunk, outRow, srcIdx int, proj scan.Projection) {
			c.Column(0).SetInt64(outRow, int64(srcIdx))
		},
	}
	r, err := pagedLocalInit(bind, scan.NewGlobalState(false, nil, false), 0, nil, nil, nil)
	if err != nil {
		t.Fatalf("pagedLocalInit: %v", err)
	}

	var got []int64
	for {
		c := chunk.NewChunk(schema, nil, 2)
		done, err := r.Fill(c)
		if err != nil {
			t.Fatalf("Fill: %v", err)
		}
		for i := 0; i < c.Len(); i++ {
			got = append(got, c.Column(0).Int64s[i])
		}
		if done {
			break
		}
	}
	want := []int64{0, 1, 2, 3, 4}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
