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

package tabixreader

import (
	"bufio"
	"fmt"
	"os"

	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/gzip"
)

// openText opens path for sequential (unrestricted) scanning, transparently
// decompressing BGZF and falling back to plain gzip (no random access, so
// this path only ever feeds the sequential scan, never the region path).
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
