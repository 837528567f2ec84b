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
	"fmt"
	"strings"

	"github.com/RGenomicsETL/duckhts-sub000/bamreader"
	"github.com/RGenomicsETL/duckhts-sub000/vcfreader"
)

// detectFormat resolves the `format` option's {auto,vcf,bcf,sam,bam,
// cram,fasta,fastq,tabix} hint. An explicit, non-"auto" hint is trusted
// verbatim; "auto" (or an absent option) falls back to an extension
// sniff and, failing that, a content sniff via the per-format readers'
// own magic-byte detection.
func detectFormat(path, hint string) (string, error) {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint != "" && hint != "auto" {
		return hint, nil
	}

	trim := strings.ToLower(path)
	trim = strings.TrimSuffix(trim, ".gz")
	trim = strings.TrimSuffix(trim, ".bgz")
	switch {
	case strings.HasSuffix(trim, ".bcf"):
		return "bcf", nil
	case strings.HasSuffix(trim, ".vcf"):
		return "vcf", nil
	case strings.HasSuffix(trim, ".cram"):
		return "cram", nil
	case strings.HasSuffix(trim, ".bam"):
		return "bam", nil
	case strings.HasSuffix(trim, ".sam"):
		return "sam", nil
	case strings.HasSuffix(trim, ".fasta"), strings.HasSuffix(trim, ".fa"), strings.HasSuffix(trim, ".fna"):
		return "fasta", nil
	case strings.HasSuffix(trim, ".fastq"), strings.HasSuffix(trim, ".fq"):
		return "fastq", nil
	case strings.HasSuffix(trim, ".gff"), strings.HasSuffix(trim, ".gff3"), strings.HasSuffix(trim, ".gtf"),
		strings.HasSuffix(trim, ".bed"), strings.HasSuffix(trim, ".tab"), strings.HasSuffix(trim, ".tsv"):
		return "tabix", nil
	}

	// No recognized extension: try the binary/text sniffs the per-format
	// readers already perform, cheapest (header-only) first.
	if _, isBCF, err := vcfreader.DetectAndParseHeader(path); err == nil {
		if isBCF {
			return "bcf", nil
		}
		return "vcf", nil
	}
	if _, isBAM, err := bamreader.DetectHeader(path); err == nil {
		if isBAM {
			return "bam", nil
		}
		return "sam", nil
	}
	return "", fmt.Errorf("cannot determine HTS format of %s; pass format explicitly", path)
}

// compressionOf reports the compression label read_hts_header/index
// report for a given resolved format: every format family here is
// either BGZF-able or plain text, never anything else.
func compressionOf(format string, bgzfDetected bool) string {
	switch format {
	case "bcf":
		return "BGZF"
	case "vcf", "sam", "gtf", "gff", "tabix":
		if bgzfDetected {
			return "BGZF"
		}
		return "none"
	case "bam", "cram":
		return "BGZF"
	default:
		if bgzfDetected {
			return "BGZF"
		}
		return "none"
	}
}
