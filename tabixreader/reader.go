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
	"io"
	"os"
	"sort"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/bgzf/index"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
	"github.com/RGenomicsETL/duckhts-sub000/scan"
)

const regionEnd = 1 << 30

// tabixReader is the per-worker Reader shared by read_tabix/read_gtf/read_gff.
type tabixReader struct {
	bind *bindState
	proj scan.Projection
	warn scan.WarnFunc

	// sequential path
	rc  io.Closer
	br  *bufio.Reader
	eof bool

	// region path
	regionRC  io.Closer
	regionBR  *bufio.Reader
	regions   []chunkWithSpec
	regionEOF bool
}

func localInit(bindAny scan.BindState, global *scan.GlobalState, workerID int, regions []string, proj scan.Projection, warn scan.WarnFunc) (scan.Reader, error) {
	bind := bindAny.(*bindState)
	r := &tabixReader{bind: bind, proj: proj, warn: warn}

	if len(regions) > 0 {
		if !bind.hasIndex {
			return nil, scan.InitError("region", fmt.Errorf("region requested but no tabix index is available for %s", bind.path))
		}
		br, err := r.openRegionReader(regions)
		if err != nil {
			return nil, scan.InitError("open-region", err)
		}
		r.regionBR = br
		return r, nil
	}

	f, br, err := openText(bind.path)
	if err != nil {
		return nil, scan.InitError("open", err)
	}
	r.rc = f
	r.br = br
	if err := skipLeading(r.br, bind.lineSkip); err != nil && err != io.EOF {
		return nil, scan.InitError("skip", err)
	}
	if bind.opts.header {
		if _, err := skipMetaLines(r.br, bind.metaChar); err != nil && err != io.EOF {
			return nil, scan.InitError("skip-header", err)
		}
	}
	return r, nil
}

// openRegionReader resolves every comma-split region to merged bgzf
// chunks and wraps the underlying bgzf.Reader in a bgzf/index.ChunkReader
// restricted to exactly those chunks.
func (r *tabixReader) openRegionReader(regions []string) (*bufio.Reader, error) {
	f, err := os.Open(r.bind.path)
	if err != nil {
		return nil, err
	}
	r.regionRC = f
	bg, err := bgzf.NewReader(f, 2)
	if err != nil {
		return nil, err
	}

	var all []chunkWithSpec
	for _, rg := range regions {
		spec := parseRegion(rg)
		end := spec.end
		if end < 0 {
			end = regionEnd
		}
		chunks, err := r.bind.tbi.Chunks(spec.contig, spec.beg, end)
		if err != nil {
			warnf(r.warn, "region %q produced no index chunks; skipping", rg)
			continue
		}
		for _, c := range chunks {
			all = append(all, chunkWithSpec{c, spec, end})
		}
	}
	sort.Sort(byBegin(all))
	plain := make([]bgzf.Chunk, len(all))
	for i, c := range all {
		plain[i] = c.Chunk
	}
	merged := index.Adjacent(plain)

	cr, err := index.NewChunkReader(bg, merged)
	if err != nil {
		return nil, err
	}
	r.regions = all
	return bufio.NewReader(cr), nil
}

type chunkWithSpec struct {
	bgzf.Chunk
	spec regionSpec
	end  int
}

type byBegin []chunkWithSpec

func (b byBegin) Len() int      { return len(b) }
func (b byBegin) Swap(i, j int) { b[i], b[j] = b[j], b[i] }
func (b byBegin) Less(i, j int) bool {
	return voffset(b[i].Begin) < voffset(b[j].Begin)
}

func voffset(o bgzf.Offset) int64 { return o.File<<16 | int64(o.Block) }

func warnf(w scan.WarnFunc, format string, args ...any) {
	if w != nil {
		w(format, args...)
		return
	}
	log.Warnf(format, args...)
}

func (r *tabixReader) Fill(c *chunk.Chunk) (done bool, err error) {
	if r.regionBR != nil {
		return r.fillRegion(c)
	}
	return r.fillSequential(c)
}

func (r *tabixReader) fillSequential(c *chunk.Chunk) (bool, error) {
	n := 0
	for n < c.Cap() {
		if r.eof {
			break
		}
		line, lerr := skipMetaLines(r.br, r.bind.metaChar)
		if lerr != nil {
			r.eof = true
			break
		}
		if err := r.writeRow(c, n, chop(line)); err != nil {
			c.SetLen(n)
			return true, scan.ScanError("decode-record", err)
		}
		n++
	}
	c.SetLen(n)
	return r.eof, nil
}

// fillRegion filters every row read from the chunk-restricted stream
// against the region spec it was claimed under, since bin-level chunk
// merging is coarser than the exact query interval.
func (r *tabixReader) fillRegion(c *chunk.Chunk) (bool, error) {
	n := 0
	for n < c.Cap() {
		if r.regionEOF {
			break
		}
		line, lerr := r.regionBR.ReadString('\n')
		if lerr != nil && line == "" {
			r.regionEOF = true
			break
		}
		line = trimEOL(line)
		if lerr != nil {
			r.regionEOF = true
		}
		if line == "" || rune(line[0]) == r.bind.metaChar {
			continue
		}
		row := chop(line)
		if !r.rowInAnyRegion(row) {
			continue
		}
		if err := r.writeRow(c, n, row); err != nil {
			c.SetLen(n)
			return true, scan.ScanError("decode-record", err)
		}
		n++
	}
	c.SetLen(n)
	return r.regionEOF, nil
}

// rowInAnyRegion re-checks the exact region columns the tabix index
// describes (NameColumn/BeginColumn/EndColumn are 1-based), since the
// bgzf chunk itself only guarantees the row falls within the queried
// bin, not the queried interval.
func (r *tabixReader) rowInAnyRegion(row []string) bool {
	nameCol := int(r.bind.tbi.NameColumn) - 1
	begCol := int(r.bind.tbi.BeginColumn) - 1
	endCol := int(r.bind.tbi.EndColumn) - 1
	if nameCol < 0 || nameCol >= len(row) || begCol < 0 || begCol >= len(row) {
		return true
	}
	name := row[nameCol]
	beg := atoiOr(row, begCol, 0)
	end := beg + 1
	if endCol >= 0 && endCol < len(row) {
		end = atoiOr(row, endCol, beg+1)
	}
	for _, want := range r.regions {
		if want.spec.contig != name {
			continue
		}
		if beg < want.end && end > want.spec.beg {
			return true
		}
	}
	return false
}

func (r *tabixReader) Close() error {
	if r.regionRC != nil {
		return r.regionRC.Close()
	}
	if r.rc != nil {
		return r.rc.Close()
	}
	return nil
}
