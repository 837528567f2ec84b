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
	"bufio"
	"fmt"
	"os"

	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/gzip"
)

// openText opens path and returns a bufio.Reader transparently
// decompressing BGZF or plain gzip, plus whether BGZF was detected
// (read_hts_header's "compression" column). Mirrors
// fastareader.openText; duplicated rather than imported because that
// helper is package-private and this package reads every text format,
// not just FASTA/FASTQ.
func openText(path string) (*os.File, *bufio.Reader, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, false, err
	}
	magic := make([]byte, 2)
	n, _ := f.Read(magic)
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return nil, nil, false, err
	}
	if n == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		if bg, err := bgzf.NewReader(f, 1); err == nil {
			return f, bufio.NewReader(bg), true, nil
		}
		if _, err := f.Seek(0, 0); err != nil {
			f.Close()
			return nil, nil, false, err
		}
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, false, fmt.Errorf("not BGZF or plain gzip: %w", err)
		}
		return f, bufio.NewReader(gz), false, nil
	}
	return f, bufio.NewReader(f), false, nil
}
