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

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/fai"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
	"github.com/RGenomicsETL/duckhts-sub000/scan"
)

// FastaName is the read_fasta table function entry point.
const FastaName = "read_fasta"

func fastaSchema() chunk.Schema {
	var b chunk.Builder
	b.Add("NAME", chunk.Varchar)
	b.Add("DESCRIPTION", chunk.Varchar)
	b.Add("SEQUENCE", chunk.Varchar)
	return b.Schema()
}

type fastaOptions struct {
	region    string
	indexPath string
}

func parseFastaOptions(o scan.Options) fastaOptions {
	return fastaOptions{
		region:    o.String("region", ""),
		indexPath: o.String("index_path", ""),
	}
}

type fastaBindState struct {
	path   string
	opts   fastaOptions
	schema chunk.Schema
	faiIdx fai.Index
}

func (b *fastaBindState) Schema() chunk.Schema { return b.schema }
func (b *fastaBindState) Close() error         { return nil }

// FastaBind opens path, and (when a region is requested) loads its FAI
// index so region fetch can seek into the sequence file.
func FastaBind(path string, o scan.Options) (scan.BindState, *scan.GlobalState, error) {
	opts := parseFastaOptions(o)
	if _, err := os.Stat(path); err != nil {
		return nil, nil, scan.BindError("open", err)
	}

	bs := &fastaBindState{path: path, opts: opts, schema: fastaSchema()}

	if opts.region != "" {
		idxPath := opts.indexPath
		if idxPath == "" {
			idxPath = path + ".fai"
		}
		f, err := os.Open(idxPath)
		if err != nil {
			return nil, nil, scan.BindError("load-index", err)
		}
		defer f.Close()
		idx, err := fai.ReadFrom(f)
		if err != nil {
			return nil, nil, scan.BindError("load-index", err)
		}
		bs.faiIdx = idx
	}

	global := scan.NewGlobalState(false, nil, opts.region != "")
	return bs, global, nil
}

// fastaReader is the per-worker Reader.
type fastaReader struct {
	bind *fastaBindState
	proj scan.Projection
	warn scan.WarnFunc

	// sequential (no region) path
	rc            io.Closer
	br            *bufio.Reader
	pendingHeader string
	eof           bool

	// region-fetch path
	faiFile       *fai.File
	faiFileHandle *os.File
	regions       []string
	regionIx      int
}

// FastaLocalInit opens a private handle and either prepares the
// sequential FASTA scanner or (region mode) opens the faidx-backed file.
func FastaLocalInit(bindAny scan.BindState, global *scan.GlobalState, workerID int, regions []string, proj scan.Projection, warn scan.WarnFunc) (scan.Reader, error) {
	bind := bindAny.(*fastaBindState)
	r := &fastaReader{bind: bind, proj: proj, warn: warn}

	if len(regions) > 0 {
		fh, err := os.Open(bind.path)
		if err != nil {
			return nil, scan.InitError("open", err)
		}
		r.faiFileHandle = fh
		r.faiFile = fai.NewFile(fh, bind.faiIdx)
		r.regions = regions
		return r, nil
	}

	f, br, err := openText(bind.path)
	if err != nil {
		return nil, scan.InitError("open", err)
	}
	r.rc = f
	r.br = br
	return r, nil
}

func (r *fastaReader) Fill(c *chunk.Chunk) (done bool, err error) {
	if r.faiFile != nil {
		return r.fillRegions(c)
	}
	return r.fillSequential(c)
}

// fillRegions implements FASTA region fetch: one row per comma-split
// region, NAME = contig portion before ':', DESCRIPTION NULL, SEQUENCE =
// fetched bases.
func (r *fastaReader) fillRegions(c *chunk.Chunk) (bool, error) {
	n := 0
	for n < c.Cap() && r.regionIx < len(r.regions) {
		rg := r.regions[r.regionIx]
		r.regionIx++
		name, beg, end, whole, err := parseFastaRegion(rg)
		if err != nil {
			c.SetLen(n)
			return true, scan.ScanError("region", err)
		}
		var seq *fai.Seq
		if whole {
			seq, err = r.faiFile.Seq(name)
		} else {
			seq, err = r.faiFile.SeqRange(name, beg, end)
		}
		if err != nil {
			c.SetLen(n)
			return true, scan.ScanError("region", fmt.Errorf("invalid region %q: %w", rg, err))
		}
		data, err := io.ReadAll(seq)
		if err != nil {
			c.SetLen(n)
			return true, scan.ScanError("region", err)
		}
		if r.proj.Has(0) {
			c.Column(0).SetString(n, name)
		}
		if r.proj.Has(1) {
			c.Column(1).SetNull(n)
		}
		if r.proj.Has(2) {
			c.Column(2).SetString(n, string(data))
		}
		n++
	}
	c.SetLen(n)
	return r.regionIx >= len(r.regions), nil
}

// parseFastaRegion parses "contig:beg-end" (1-based inclusive) into a
// 0-based half-open [beg,end) range; "contig" alone fetches the whole
// sequence (whole == true, beg/end unused).
func parseFastaRegion(s string) (name string, beg, end int, whole bool, err error) {
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		return s, 0, 0, true, nil
	}
	name = s[:idx]
	rng := s[idx+1:]
	dash := strings.IndexByte(rng, '-')
	if dash < 0 {
		return "", 0, 0, false, fmt.Errorf("malformed region %q", s)
	}
	b, err1 := strconv.Atoi(rng[:dash])
	e, err2 := strconv.Atoi(rng[dash+1:])
	if err1 != nil || err2 != nil {
		return "", 0, 0, false, fmt.Errorf("malformed region %q", s)
	}
	return name, b - 1, e, false, nil
}

// fillSequential scans the whole FASTA file record by record, with no
// region restriction.
func (r *fastaReader) fillSequential(c *chunk.Chunk) (bool, error) {
	n := 0
	for n < c.Cap() {
		name, desc, seq, ok, err := r.nextRecord()
		if err != nil {
			c.SetLen(n)
			return true, scan.ScanError("decode-record", err)
		}
		if !ok {
			c.SetLen(n)
			return true, nil
		}
		if r.proj.Has(0) {
			c.Column(0).SetString(n, name)
		}
		if r.proj.Has(1) {
			if desc == "" {
				c.Column(1).SetNull(n)
			} else {
				c.Column(1).SetString(n, desc)
			}
		}
		if r.proj.Has(2) {
			c.Column(2).SetString(n, seq)
		}
		n++
	}
	c.SetLen(n)
	return false, nil
}

// nextRecord reads one '>'-delimited FASTA record from the sequential
// scanner, accumulating sequence lines until the next header or EOF.
func (r *fastaReader) nextRecord() (name, desc, seq string, ok bool, err error) {
	if r.eof && r.pendingHeader == "" {
		return "", "", "", false, nil
	}
	header := r.pendingHeader
	r.pendingHeader = ""
	if header == "" {
		header, err = r.readLine()
		if err == io.EOF {
			return "", "", "", false, nil
		}
		if err != nil {
			return "", "", "", false, err
		}
	}
	if !strings.HasPrefix(header, ">") {
		return "", "", "", false, fmt.Errorf("expected FASTA header, got %q", header)
	}
	name, desc = splitHeaderLine(header[1:])

	var sb strings.Builder
	for {
		line, lerr := r.readLine()
		if lerr == io.EOF {
			r.eof = true
			break
		}
		if lerr != nil {
			return "", "", "", false, lerr
		}
		if strings.HasPrefix(line, ">") {
			r.pendingHeader = line
			break
		}
		sb.WriteString(line)
	}
	return name, desc, sb.String(), true, nil
}

func splitHeaderLine(s string) (name, desc string) {
	s = strings.TrimRight(s, "\r")
	if sp := strings.IndexByte(s, ' '); sp >= 0 {
		return s[:sp], s[sp+1:]
	}
	return s, ""
}

func (r *fastaReader) readLine() (string, error) {
	line, err := r.br.ReadString('\n')
	line = strings.TrimRight(line, "\n\r")
	if err != nil {
		if err == io.EOF && line != "" {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

func (r *fastaReader) Close() error {
	if r.faiFileHandle != nil {
		return r.faiFileHandle.Close()
	}
	if r.rc != nil {
		return r.rc.Close()
	}
	return nil
}

// FastaTableFunction is the scan.TableFunction descriptor for read_fasta.
var FastaTableFunction = scan.TableFunction{
	Name:      FastaName,
	Bind:      FastaBind,
	LocalInit: FastaLocalInit,
}
