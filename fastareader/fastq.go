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
	"strings"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
	"github.com/RGenomicsETL/duckhts-sub000/scan"
)

// FastqName is the read_fastq table function entry point.
const FastqName = "read_fastq"

type fastqOptions struct {
	matePath    string
	interleaved bool
}

func parseFastqOptions(o scan.Options) fastqOptions {
	return fastqOptions{
		matePath:    o.String("mate_path", ""),
		interleaved: o.Bool("interleaved", false),
	}
}

func fastqSchema(paired bool) (chunk.Schema, int, int) {
	var b chunk.Builder
	b.Add("NAME", chunk.Varchar)
	b.Add("DESCRIPTION", chunk.Varchar)
	b.Add("SEQUENCE", chunk.Varchar)
	b.Add("QUALITY", chunk.Varchar)
	mateIdx, pairIdx := -1, -1
	if paired {
		b.Add("MATE", chunk.USmallInt)
		mateIdx = 4
		b.Add("PAIR_ID", chunk.Varchar)
		pairIdx = 5
	}
	return b.Schema(), mateIdx, pairIdx
}

type fastqBindState struct {
	path    string
	opts    fastqOptions
	schema  chunk.Schema
	paired  bool
	mateIdx int
	pairIdx int
}

func (b *fastqBindState) Schema() chunk.Schema { return b.schema }
func (b *fastqBindState) Close() error         { return nil }

// FastqBind validates the mutually-exclusive mate_path/interleaved
// options and derives the schema.
func FastqBind(path string, o scan.Options) (scan.BindState, *scan.GlobalState, error) {
	opts := parseFastqOptions(o)
	if opts.matePath != "" && opts.interleaved {
		return nil, nil, scan.BindError("options", fmt.Errorf("mate_path and interleaved are mutually exclusive"))
	}
	paired := opts.matePath != "" || opts.interleaved
	schema, mateIdx, pairIdx := fastqSchema(paired)
	bs := &fastqBindState{path: path, opts: opts, schema: schema, paired: paired, mateIdx: mateIdx, pairIdx: pairIdx}
	global := scan.NewGlobalState(false, nil, false)
	return bs, global, nil
}

type fastqRecord struct {
	name, desc, seq, qual string
}

// fastqScanner reads 4-line FASTQ records off a bufio.Reader.
type fastqScanner struct {
	closer io.Closer
	br     *bufio.Reader
}

func openFastq(path string) (*fastqScanner, error) {
	f, br, err := openText(path)
	if err != nil {
		return nil, err
	}
	return &fastqScanner{closer: f, br: br}, nil
}

func (s *fastqScanner) next() (*fastqRecord, error) {
	header, err := readFastqLine(s.br)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(header, "@") {
		return nil, fmt.Errorf("expected FASTQ header line, got %q", header)
	}
	seq, err := readFastqLine(s.br)
	if err != nil {
		return nil, fmt.Errorf("truncated FASTQ record: %w", err)
	}
	plus, err := readFastqLine(s.br)
	if err != nil {
		return nil, fmt.Errorf("truncated FASTQ record: %w", err)
	}
	if !strings.HasPrefix(plus, "+") {
		return nil, fmt.Errorf("expected '+' separator line, got %q", plus)
	}
	qual, err := readFastqLine(s.br)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("truncated FASTQ record: %w", err)
	}
	name, desc := splitHeaderLine(header[1:])
	return &fastqRecord{name: name, desc: desc, seq: seq, qual: qual}, nil
}

func readFastqLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	line = strings.TrimRight(line, "\n\r")
	if err != nil {
		if err == io.EOF && line != "" {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

func (s *fastqScanner) Close() error { return s.closer.Close() }

// fastqReader is the per-worker Reader for read_fastq.
type fastqReader struct {
	bind *fastqBindState
	proj scan.Projection
	warn scan.WarnFunc

	primary *fastqScanner
	mate    *fastqScanner // non-nil only for mate_path mode

	// mate_path mode: the mate record for the pair currently being
	// emitted is buffered here between the primary (MATE=1) row and the
	// mate (MATE=2) row of the same Fill call sequence.
	pendingMate *fastqRecord

	// interleaved mode: tracks whether the next record emitted is the
	// first or second of its pair.
	interleavedParity int

	done bool
}

func FastqLocalInit(bindAny scan.BindState, global *scan.GlobalState, workerID int, regions []string, proj scan.Projection, warn scan.WarnFunc) (scan.Reader, error) {
	bind := bindAny.(*fastqBindState)
	r := &fastqReader{bind: bind, proj: proj, warn: warn}

	primary, err := openFastq(bind.path)
	if err != nil {
		return nil, scan.InitError("open", err)
	}
	r.primary = primary

	if bind.opts.matePath != "" {
		mate, err := openFastq(bind.opts.matePath)
		if err != nil {
			primary.Close()
			return nil, scan.InitError("open-mate", err)
		}
		r.mate = mate
	}

	return r, nil
}

func (r *fastqReader) Fill(c *chunk.Chunk) (done bool, err error) {
	n := 0
	for n < c.Cap() {
		if r.done {
			c.SetLen(n)
			return true, nil
		}
		switch {
		case r.bind.opts.matePath != "":
			ok, serr := r.fillMatePair(c, &n)
			if serr != nil {
				c.SetLen(n)
				return true, serr
			}
			if !ok {
				r.done = true
			}
		case r.bind.opts.interleaved:
			ok, serr := r.fillInterleaved(c, &n)
			if serr != nil {
				c.SetLen(n)
				return true, serr
			}
			if !ok {
				r.done = true
			}
		default:
			ok, serr := r.fillSingle(c, &n)
			if serr != nil {
				c.SetLen(n)
				return true, serr
			}
			if !ok {
				r.done = true
			}
		}
	}
	c.SetLen(n)
	return false, nil
}

func (r *fastqReader) fillSingle(c *chunk.Chunk, n *int) (bool, error) {
	rec, err := r.primary.next()
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, scan.ScanError("decode-record", err)
	}
	r.writeRecord(c, *n, rec, 0, "")
	*n++
	return true, nil
}

// fillMatePair advances both primary and mate files by one record per
// iteration, emitting the primary (MATE=1) then the mate (MATE=2):
// "On mismatched QNAME across the two files, fail. On unbalanced EOF ...
// fail."
func (r *fastqReader) fillMatePair(c *chunk.Chunk, n *int) (bool, error) {
	if r.pendingMate != nil {
		r.writeRecord(c, *n, r.pendingMate, 2, pairID(r.pendingMate.name))
		*n++
		r.pendingMate = nil
		return true, nil
	}

	rec1, err1 := r.primary.next()
	rec2, err2 := r.mate.next()
	switch {
	case err1 == io.EOF && err2 == io.EOF:
		return false, nil
	case err1 == io.EOF || err2 == io.EOF:
		return false, scan.ScanError("fastq-pair", fmt.Errorf("paired FASTQ files have an unequal number of records"))
	case err1 != nil:
		return false, scan.ScanError("decode-record", err1)
	case err2 != nil:
		return false, scan.ScanError("decode-record", err2)
	}
	if pairID(rec1.name) != pairID(rec2.name) {
		return false, scan.ScanError("fastq-pair", fmt.Errorf("mate file out of sync: %q vs %q", rec1.name, rec2.name))
	}
	r.writeRecord(c, *n, rec1, 1, pairID(rec1.name))
	*n++
	r.pendingMate = rec2
	return true, nil
}

// fillInterleaved alternates MATE between 1 and 2 across consecutive
// records of a single file; an odd record count at EOF fails.
func (r *fastqReader) fillInterleaved(c *chunk.Chunk, n *int) (bool, error) {
	rec, err := r.primary.next()
	if err == io.EOF {
		if r.interleavedParity != 0 {
			return false, scan.ScanError("fastq-pair", fmt.Errorf("interleaved file has an unpaired record"))
		}
		return false, nil
	}
	if err != nil {
		return false, scan.ScanError("decode-record", err)
	}
	mate := r.interleavedParity + 1
	r.writeRecord(c, *n, rec, mate, pairID(rec.name))
	*n++
	r.interleavedParity = (r.interleavedParity + 1) % 2
	return true, nil
}

func pairID(name string) string {
	if strings.HasSuffix(name, "/1") || strings.HasSuffix(name, "/2") {
		return name[:len(name)-2]
	}
	return name
}

func (r *fastqReader) writeRecord(c *chunk.Chunk, row int, rec *fastqRecord, mate int, pair string) {
	proj := r.proj
	if proj.Has(0) {
		c.Column(0).SetString(row, rec.name)
	}
	if proj.Has(1) {
		if rec.desc == "" {
			c.Column(1).SetNull(row)
		} else {
			c.Column(1).SetString(row, rec.desc)
		}
	}
	if proj.Has(2) {
		c.Column(2).SetString(row, rec.seq)
	}
	if proj.Has(3) {
		if rec.qual == "" {
			c.Column(3).SetNull(row)
		} else {
			c.Column(3).SetString(row, rec.qual)
		}
	}
	if r.bind.mateIdx >= 0 && proj.Has(r.bind.mateIdx) {
		c.Column(r.bind.mateIdx).SetUint16(row, uint16(mate))
	}
	if r.bind.pairIdx >= 0 && proj.Has(r.bind.pairIdx) {
		c.Column(r.bind.pairIdx).SetString(row, pair)
	}
}

func (r *fastqReader) Close() error {
	if r.mate != nil {
		r.mate.Close()
	}
	if r.primary != nil {
		return r.primary.Close()
	}
	return nil
}

// FastqTableFunction is the scan.TableFunction descriptor for read_fastq.
var FastqTableFunction = scan.TableFunction{
	Name:      FastqName,
	Bind:      FastqBind,
	LocalInit: FastqLocalInit,
}
