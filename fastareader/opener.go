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

// Package fastareader implements read_fasta, fasta_index and read_fastq:
// FASTA/FASTQ text ingestion with paired/interleaved FASTQ semantics and
// FASTA region fetch via github.com/biogo/hts/fai. Unlike BCF/VCF and
// BAM, FASTA/FASTQ records are plain ASCII text in this pack (biogo/hts
// has no pseudo-BAM view over them the way htslib does), so sequence and
// quality are read directly from the text rather than through a 4-bit
// packed/repacked round trip; see DESIGN.md for this deviation.
package fastareader

import (
	"bufio"
	"fmt"
	"os"

	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/gzip"
)

// openText opens path and returns a bufio.Reader transparently
// decompressing .gz/.bgz FASTA/FASTQ input.
func openText(path string) (*os.File, *bufio.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	magic := make([]byte, 2)
	n, _ := f.Read(magic)
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return nil, nil, err
	}
	if n == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		if bg, err := bgzf.NewReader(f, 2); err == nil {
			return f, bufio.NewReader(bg), nil
		}
		if _, err := f.Seek(0, 0); err != nil {
			f.Close()
			return nil, nil, err
		}
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("not BGZF or plain gzip: %w", err)
		}
		return f, bufio.NewReader(gz), nil
	}
	return f, bufio.NewReader(f), nil
}
