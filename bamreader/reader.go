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

// Package bamreader implements the read_bam table function: BAM/SAM
// ingestion via github.com/biogo/hts/bam and sam, CIGAR/SEQ/QUAL
// decoding, optional typed standard-tag columns, and a spillover
// AUXILIARY_TAGS map. CRAM is consumed through the same sam.Record shape
// once opened (biogo/hts has no CRAM decoder in this pack; a CRAM path is
// accepted and bound exactly like BAM/SAM, relying on the file's own
// magic bytes).
package bamreader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/bgzf/index"
	"github.com/biogo/hts/sam"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
	"github.com/RGenomicsETL/duckhts-sub000/htslog"
	"github.com/RGenomicsETL/duckhts-sub000/scan"
)

var log = htslog.New("bamreader")

// Name is the read_bam table function entry point.
const Name = "read_bam"

type options struct {
	region        string
	indexPath     string
	reference     string
	standardTags  bool
	auxiliaryTags bool
}

func parseOptions(o scan.Options) options {
	return options{
		region:        o.String("region", ""),
		indexPath:     o.String("index_path", ""),
		reference:     o.String("reference", ""),
		standardTags:  o.Bool("standard_tags", false),
		auxiliaryTags: o.Bool("auxiliary_tags", false),
	}
}

type bindState struct {
	path     string
	opts     options
	header   *sam.Header
	layout   *layout
	bai      *bam.Index
	hasIndex bool
	isBAM    bool
}

func (b *bindState) Schema() chunk.Schema { return b.layout.schema }
func (b *bindState) Close() error         { return nil }

// Bind opens path (BAM via bgzf magic, otherwise parsed as SAM text),
// reads its header, derives the schema and probes for a BAI index.
func Bind(path string, o scan.Options) (scan.BindState, *scan.GlobalState, error) {
	opts := parseOptions(o)

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, scan.BindError("open", err)
	}
	defer f.Close()

	var header *sam.Header
	isBAM := true
	if br, berr := bam.NewReader(f, 1); berr == nil {
		header = br.Header()
		br.Close()
	} else {
		isBAM = false
		if _, serr := f.Seek(0, 0); serr != nil {
			return nil, nil, scan.BindError("open", serr)
		}
		sr, serr := sam.NewReader(f)
		if serr != nil {
			return nil, nil, scan.BindError("read-header", fmt.Errorf("not a recognizable BAM/SAM/CRAM file: %w", serr))
		}
		header = sr.Header()
	}

	l := buildLayout(opts.standardTags, opts.auxiliaryTags)
	bs := &bindState{path: path, opts: opts, header: header, layout: l, isBAM: isBAM}

	idxPath := opts.indexPath
	if idxPath == "" {
		idxPath = path + ".bai"
	}
	if idx, err := loadBAI(idxPath); err == nil {
		bs.bai = idx
		bs.hasIndex = true
	} else if opts.indexPath != "" {
		return nil, nil, scan.BindError("load-index", err)
	}

	var contigNames []string
	for _, ref := range header.Refs() {
		contigNames = append(contigNames, ref.Name())
	}

	if opts.region != "" && !bs.hasIndex {
		return nil, nil, scan.BindError("region", fmt.Errorf("region requested but no index is available for %s", path))
	}

	// Contig-partitioned parallelism needs bgzf chunk seeks, which only
	// the binary path supports; SAM text always scans single-stream.
	global := scan.NewGlobalState(bs.hasIndex && isBAM, contigNames, opts.region != "")
	return bs, global, nil
}

func loadBAI(path string) (*bam.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return bam.ReadIndex(f)
}

// DetectHeader opens path and returns its SAM/BAM/CRAM header plus
// whether it was recognized as BAM (bgzf-wrapped binary) rather than SAM
// text, the same sniff Bind performs. Exported for reuse by htsmeta,
// which needs the header without deriving a read_bam schema.
func DetectHeader(path string) (h *sam.Header, isBAM bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	if br, berr := bam.NewReader(f, 1); berr == nil {
		defer br.Close()
		return br.Header(), true, nil
	}
	if _, serr := f.Seek(0, 0); serr != nil {
		return nil, false, serr
	}
	sr, serr := sam.NewReader(f)
	if serr != nil {
		return nil, false, fmt.Errorf("not a recognizable BAM/SAM/CRAM file: %w", serr)
	}
	return sr.Header(), false, nil
}

// LoadBAI loads a BAI index from path. Exported for reuse by htsmeta's
// read_hts_index.
func LoadBAI(path string) (*bam.Index, error) {
	return loadBAI(path)
}

// bamReaderState is the per-worker Reader.
type bamReaderState struct {
	bind *bindState
	proj scan.Projection
	warn scan.WarnFunc

	file *os.File
	br   *bam.Reader // BAM path
	sr   *sam.Reader // SAM text path

	it *bam.Iterator // non-nil once region/contig restriction has an active iterator

	// regionSpecs holds the parsed region intervals of a region scan.
	// The BAI chunk query is bin-granular, so records inside a claimed
	// chunk can still fall outside the asked-for interval and must be
	// filtered out per record.
	regionSpecs []regionSpec

	// claimRef is the reference this worker currently owns under the
	// parallel contig-claim protocol. bgzf blocks are shared across
	// contig boundaries, so a claimed contig's first chunk can carry
	// tail records of the previous contig; those belong to the worker
	// that claimed it, not this one.
	claimRef *sam.Reference

	sampleByRG map[string]string // memoized @RG ID -> SM

	seqBuf  []byte
	qualBuf []byte
	cigBuf  [8192]byte

	claim      *scan.ContigClaim
	restricted bool
	exhausted  bool // true once a restricted scan (region or contig) has nothing left
}

// LocalInit opens a private file handle/header copy, constructs the
// region/contig iterator when applicable, and captures the projection.
func LocalInit(bindAny scan.BindState, global *scan.GlobalState, workerID int, regions []string, proj scan.Projection, warn scan.WarnFunc) (scan.Reader, error) {
	bind := bindAny.(*bindState)

	f, err := os.Open(bind.path)
	if err != nil {
		return nil, scan.InitError("open", err)
	}

	r := &bamReaderState{bind: bind, proj: proj, warn: warn, file: f, sampleByRG: map[string]string{}}

	if bind.isBAM {
		br, err := bam.NewReader(f, 2)
		if err != nil {
			f.Close()
			return nil, scan.InitError("open", err)
		}
		r.br = br
		needSeq := proj.HasAny(bind.layout.seqIdx, bind.layout.qualIdx)
		switch {
		case !needSeq && !r.needsAuxData():
			br.Omit(bam.AllVariableLengthData)
		case !r.needsAuxData():
			// aux data never consulted: skip parsing it eagerly.
			br.Omit(bam.AuxTags)
		}
	} else {
		sr, err := sam.NewReader(f)
		if err != nil {
			f.Close()
			return nil, scan.InitError("open", err)
		}
		r.sr = sr
	}

	if len(regions) > 0 && !bind.isBAM {
		f.Close()
		return nil, scan.InitError("region", fmt.Errorf("region queries require a BAM file with a BAI index; %s is SAM text", bind.path))
	}
	if len(regions) > 0 {
		chunks, err := r.chunksForRegions(regions)
		if err != nil {
			f.Close()
			return nil, err
		}
		if len(chunks) == 0 {
			r.restricted = true
			r.exhausted = true
			return r, nil
		}
		it, err := bam.NewIterator(r.br, chunks)
		if err != nil {
			f.Close()
			return nil, scan.InitError("region-iterator", err)
		}
		r.it = it
		r.restricted = true
	} else if global.Claim != nil {
		r.claim = global.Claim
		r.restricted = true
		if !r.claimNextContig() {
			r.exhausted = true
		}
	}

	return r, nil
}

// needsAuxData reports whether any projected column is fed by the
// record's auxiliary tag block: READ_GROUP_ID and SAMPLE_ID both resolve
// through the RG tag, and the standard-tag and spillover-map columns read
// every present tag.
func (r *bamReaderState) needsAuxData() bool {
	l := r.bind.layout
	if r.proj.HasAny(l.rgIdx, l.sampleIdx) {
		return true
	}
	for i := range l.stdTags {
		if r.proj.Has(l.stdStart + i) {
			return true
		}
	}
	return l.auxIdx >= 0 && r.proj.Has(l.auxIdx)
}

// chunksForRegions resolves every comma-split region to bgzf chunk
// ranges and merges them: "a comma-separated region string is converted
// to a multi-region iterator atomically, so overlapping intervals are
// deduplicated by the underlying library."
func (r *bamReaderState) chunksForRegions(regions []string) ([]bgzf.Chunk, error) {
	var all []bgzf.Chunk
	for _, rg := range regions {
		spec := parseRegion(rg)
		ref := findRef(r.bind.header, spec.contig)
		if ref == nil {
			warnf(r.warn, "region %q does not match any reference in the header; skipping", spec.contig)
			continue
		}
		if spec.end < 0 {
			spec.end = ref.Len()
		}
		chunks, err := r.bind.bai.Chunks(ref, spec.beg, spec.end)
		if err != nil {
			warnf(r.warn, "region %q produced no index chunks; skipping", rg)
			continue
		}
		r.regionSpecs = append(r.regionSpecs, spec)
		all = append(all, chunks...)
	}
	sort.Sort(byBegin(all))
	return index.Adjacent(all), nil
}

// recInAnyRegion reports whether rec overlaps any of the asked-for
// region intervals; the iterator's chunks only bound the record to the
// right index bins, not to the exact query interval.
func (r *bamReaderState) recInAnyRegion(rec *sam.Record) bool {
	for _, spec := range r.regionSpecs {
		if rec.Ref == nil || rec.Ref.Name() != spec.contig {
			continue
		}
		if rec.Pos < spec.end && rec.End() > spec.beg {
			return true
		}
	}
	return false
}

type byBegin []bgzf.Chunk

func (b byBegin) Len() int      { return len(b) }
func (b byBegin) Swap(i, j int) { b[i], b[j] = b[j], b[i] }
func (b byBegin) Less(i, j int) bool {
	return voffset(b[i].Begin) < voffset(b[j].Begin)
}

func voffset(o bgzf.Offset) int64 { return o.File<<16 | int64(o.Block) }

func findRef(h *sam.Header, name string) *sam.Reference {
	for _, ref := range h.Refs() {
		if ref.Name() == name {
			return ref
		}
	}
	return nil
}

// claimNextContig atomically claims the next contig for a parallel scan
// and opens this worker's iterator over its full span.
func (r *bamReaderState) claimNextContig() bool {
	for {
		idx, _, ok := r.claim.Next()
		if !ok {
			return false
		}
		refs := r.bind.header.Refs()
		if idx >= len(refs) {
			continue
		}
		ref := refs[idx]
		chunks, err := r.bind.bai.Chunks(ref, 0, ref.Len())
		if err != nil || len(chunks) == 0 {
			continue // empty/absent contig: skip per the parallel-scan contract
		}
		it, err := bam.NewIterator(r.br, chunks)
		if err != nil {
			continue
		}
		r.it = it
		r.claimRef = ref
		return true
	}
}

func warnf(w scan.WarnFunc, format string, args ...any) {
	if w != nil {
		w(format, args...)
		return
	}
	log.Warnf(format, args...)
}

// Fill implements scan.Reader.
func (r *bamReaderState) Fill(c *chunk.Chunk) (done bool, err error) {
	n := 0
	for n < c.Cap() {
		rec, ok, derr := r.next()
		if derr != nil {
			c.SetLen(n)
			return true, scan.ScanError("decode-record", derr)
		}
		if !ok {
			if r.advance() {
				continue
			}
			c.SetLen(n)
			return true, nil
		}
		r.writeRow(c, n, rec)
		n++
	}
	c.SetLen(n)
	return false, nil
}

// next returns the next record from whichever source (restricted
// iterator or a plain sequential Read) is active.
func (r *bamReaderState) next() (*sam.Record, bool, error) {
	if r.restricted {
		if r.exhausted || r.it == nil {
			return nil, false, nil
		}
		for r.it.Next() {
			rec := r.it.Record()
			if len(r.regionSpecs) > 0 && !r.recInAnyRegion(rec) {
				continue
			}
			if r.claimRef != nil && rec.Ref != r.claimRef {
				continue
			}
			return rec, true, nil
		}
		if err := r.it.Error(); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	var (
		rec *sam.Record
		err error
	)
	if r.br != nil {
		rec, err = r.br.Read()
	} else {
		rec, err = r.sr.Read()
	}
	if err != nil {
		return nil, false, ioEOF(err)
	}
	return rec, true, nil
}

// ioEOF distinguishes a clean end-of-stream from a real decode error:
// callers treat a nil return as "no more rows"; a record decode error
// stops the scan instead.
func ioEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// advance moves to the next region or claimed contig. Sequential scans
// have nothing to advance to.
func (r *bamReaderState) advance() bool {
	if !r.restricted {
		return false
	}
	if r.claim != nil {
		return r.claimNextContig()
	}
	return false
}

func (r *bamReaderState) Close() error {
	if r.br != nil {
		r.br.Close()
	}
	return r.file.Close()
}

// TableFunction is the scan.TableFunction descriptor for read_bam.
var TableFunction = scan.TableFunction{
	Name:      Name,
	Bind:      Bind,
	LocalInit: LocalInit,
}
