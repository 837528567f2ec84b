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

package vcfreader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/biogo/hts/bgzf"
)

// BCF files are, like BAM, a BGZF-compressed stream: a magic-prefixed
// text header followed by a sequence of binary records. This reader
// reuses biogo/hts's bgzf.Reader for the block layer and implements only
// the BCF2 record shape itself, which htslib does not expose through any
// package in this pack.
var bcfMagic = []byte("BCF\x02\x02")

// bcfFile wraps the BGZF stream and the decoded header/samples needed to
// interpret records.
type bcfFile struct {
	bg     *bgzf.Reader
	header *Header
}

func openBCF(r io.Reader, threads int) (*bcfFile, error) {
	bg, err := bgzf.NewReader(r, threads)
	if err != nil {
		return nil, fmt.Errorf("open bgzf stream: %w", err)
	}
	magic := make([]byte, 5)
	if _, err := io.ReadFull(bg, magic); err != nil {
		return nil, fmt.Errorf("read BCF magic: %w", err)
	}
	if !bytes.Equal(magic, bcfMagic) {
		return nil, errors.New("not a BCF2 file (bad magic)")
	}
	var lText uint32
	if err := binary.Read(bg, binary.LittleEndian, &lText); err != nil {
		return nil, fmt.Errorf("read header length: %w", err)
	}
	text := make([]byte, lText)
	if _, err := io.ReadFull(bg, text); err != nil {
		return nil, fmt.Errorf("read header text: %w", err)
	}
	h, _, err := ParseHeader(bytes.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse embedded VCF header: %w", err)
	}
	return &bcfFile{bg: bg, header: h}, nil
}

// bcfRecord is the decoded shared+indiv portion of one binary record,
// still lazily interpreted (raw bytes for INFO/FORMAT are decoded
// on-demand by the per-record decode cache in reader.go).
type bcfRecord struct {
	rid     int32
	pos     int32 // 0-based
	rlen    int32
	qual    float32
	qualSet bool

	id      string
	alleles []string
	filters []int32 // filter dictionary indices; empty means unfiltered (PASS)

	sharedInfo []byte // remaining shared bytes: INFO key/value pairs
	nInfo      int
	indiv      []byte // FORMAT block
	nFmt       int
	nSample    int
}

// next reads and decodes the next record from the stream.
func (f *bcfFile) next() (*bcfRecord, error) {
	var lShared, lIndiv uint32
	if err := binary.Read(f.bg, binary.LittleEndian, &lShared); err != nil {
		return nil, err // io.EOF on clean end of stream
	}
	if err := binary.Read(f.bg, binary.LittleEndian, &lIndiv); err != nil {
		return nil, fmt.Errorf("read l_indiv: %w", err)
	}
	shared := make([]byte, lShared)
	if _, err := io.ReadFull(f.bg, shared); err != nil {
		return nil, fmt.Errorf("read shared block: %w", err)
	}
	indiv := make([]byte, lIndiv)
	if _, err := io.ReadFull(f.bg, indiv); err != nil {
		return nil, fmt.Errorf("read indiv block: %w", err)
	}

	bf := &buffer{b: shared}
	r := &bcfRecord{}
	r.rid = bf.readInt32()
	r.pos = bf.readInt32()
	r.rlen = bf.readInt32()
	qbits := bf.readUint32()
	r.qual = math.Float32frombits(qbits)
	r.qualSet = !isFloatMissing(qbits)

	nAlleleInfo := bf.readUint32()
	nAllele := int(nAlleleInfo >> 16)
	nInfo := int(nAlleleInfo & 0xffff)
	nFmtSample := bf.readUint32()
	nFmt := int(nFmtSample >> 24)
	nSample := int(nFmtSample & 0xffffff)

	idVal := bf.readTypedValue()
	r.id = idVal.str

	r.alleles = make([]string, nAllele)
	for i := 0; i < nAllele; i++ {
		av := bf.readTypedValue()
		r.alleles[i] = av.str
	}

	filterVal := bf.readTypedValue()
	if len(filterVal.ints) > 0 {
		r.filters = filteredInts(filterVal.ints)
	}

	r.nInfo = nInfo
	r.sharedInfo = shared[bf.pos:]
	r.nFmt = nFmt
	r.nSample = nSample
	r.indiv = indiv

	return r, nil
}

// decodeInfoValues walks the record's INFO block (key = typed dictionary
// index into the header's shared string dictionary, value = typed value)
// once and returns them indexed by the field's position in the header's
// Info table, matching the "per-record decode cache keyed by field index"
// rule.
func (r *bcfRecord) decodeInfoValues(h *Header) map[int]decodedValue {
	out := make(map[int]decodedValue, r.nInfo)
	bf := &buffer{b: r.sharedInfo}
	for i := 0; i < r.nInfo; i++ {
		keyVal := bf.readTypedValue()
		dictIdx := -1
		if len(keyVal.ints) > 0 {
			dictIdx = int(keyVal.ints[0])
		}
		val := bf.readTypedValue()
		if pos, ok := h.infoByDict[dictIdx]; ok {
			out[pos] = val
		}
	}
	return out
}

// decodeFormatValues walks the record's FORMAT/indiv block, returning,
// for each FORMAT field dictionary index, one decodedValue per sample
// (each already split to its own slice of length matching that field's
// declared arity for the sample).
func (r *bcfRecord) decodeFormatValues(h *Header) map[int][]decodedValue {
	out := make(map[int][]decodedValue, r.nFmt)
	bf := &buffer{b: r.indiv}
	for i := 0; i < r.nFmt; i++ {
		keyVal := bf.readTypedValue()
		dictIdx := -1
		if len(keyVal.ints) > 0 {
			dictIdx = int(keyVal.ints[0])
		}
		t, nPer := bf.typeDescriptor()
		perSample := make([]decodedValue, r.nSample)
		for s := 0; s < r.nSample; s++ {
			perSample[s] = bf.readTypedValueBody(t, nPer)
		}
		if pos, ok := h.formatByDict[dictIdx]; ok {
			out[pos] = perSample
		}
	}
	return out
}

func (f *bcfFile) close() error { return f.bg.Close() }
