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

package bamreader

import (
	"strconv"

	"github.com/biogo/hts/sam"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
)

var rgTag = sam.NewTag("RG")
var smTag = sam.NewTag("SM")

// writeRow decodes one sam.Record into row n of c, honoring projection
// pushdown: SEQ/QUAL expansion, CIGAR stringification and the aux
// scan are all skipped when no projected column needs them.
func (r *bamReaderState) writeRow(c *chunk.Chunk, n int, rec *sam.Record) {
	l := r.bind.layout
	proj := r.proj

	if proj.Has(l.qnameIdx) {
		c.Column(l.qnameIdx).SetString(n, rec.Name)
	}
	if proj.Has(l.flagIdx) {
		c.Column(l.flagIdx).SetUint16(n, uint16(rec.Flags))
	}
	if proj.Has(l.rnameIdx) {
		if rec.Ref != nil {
			c.Column(l.rnameIdx).SetString(n, rec.Ref.Name())
		} else {
			c.Column(l.rnameIdx).SetString(n, "*")
		}
	}
	if proj.Has(l.posIdx) {
		c.Column(l.posIdx).SetInt64(n, onebased(rec.Pos))
	}
	if proj.Has(l.mapqIdx) {
		c.Column(l.mapqIdx).SetInt32(n, int32(rec.MapQ))
	}
	if proj.Has(l.cigarIdx) {
		c.Column(l.cigarIdx).SetString(n, r.cigarString(rec.Cigar))
	}
	if proj.Has(l.rnextIdx) {
		if rec.MateRef != nil {
			c.Column(l.rnextIdx).SetString(n, rec.MateRef.Name())
		} else {
			c.Column(l.rnextIdx).SetString(n, "*")
		}
	}
	if proj.Has(l.pnextIdx) {
		c.Column(l.pnextIdx).SetInt64(n, onebased(rec.MatePos))
	}
	if proj.Has(l.tlenIdx) {
		c.Column(l.tlenIdx).SetInt64(n, int64(rec.TempLen))
	}
	if proj.Has(l.seqIdx) {
		c.Column(l.seqIdx).SetString(n, r.seqString(rec))
	}
	if proj.Has(l.qualIdx) {
		c.Column(l.qualIdx).SetString(n, r.qualString(rec.Qual))
	}

	needsAux := proj.Has(l.rgIdx) || proj.Has(l.sampleIdx) || len(l.stdTags) > 0 || l.auxIdx >= 0
	var rg sam.Aux
	var hasRG bool
	if needsAux {
		rg, hasRG = rec.Tag(rgTag[:])
	}

	if proj.Has(l.rgIdx) {
		if hasRG {
			c.Column(l.rgIdx).SetString(n, auxString(rg))
		} else {
			c.Column(l.rgIdx).SetNull(n)
		}
	}
	if proj.Has(l.sampleIdx) {
		if hasRG {
			sample, ok := r.sampleFor(auxString(rg))
			if ok {
				c.Column(l.sampleIdx).SetString(n, sample)
			} else {
				c.Column(l.sampleIdx).SetNull(n)
			}
		} else {
			c.Column(l.sampleIdx).SetNull(n)
		}
	}

	for i, spec := range l.stdTags {
		colIdx := l.stdStart + i
		if !proj.Has(colIdx) {
			continue
		}
		if a, ok := rec.Tag([]byte(spec.id)); ok {
			decodeStandardTag(c.Column(colIdx), n, a, spec)
		} else {
			c.Column(colIdx).SetNull(n)
		}
	}

	if l.auxIdx >= 0 && proj.Has(l.auxIdx) {
		var keys, values []string
		for _, a := range rec.AuxFields {
			id := a.Tag().String()
			if len(l.stdTags) > 0 && standardTagIndex(id) >= 0 {
				continue // already emitted as a typed standard column
			}
			keys = append(keys, id)
			values = append(values, auxCanonicalString(a))
		}
		c.Column(l.auxIdx).AppendMapRow(keys, values)
	}
}

// onebased converts a 0-based binary position (-1 for unmapped/absent)
// to the 1-based output convention, reporting 0 when unmapped.
func onebased(pos int) int64 {
	if pos < 0 {
		return 0
	}
	return int64(pos) + 1
}

// nibbleAlphabet is the canonical 4-bit packed base encoding shared by
// BAM SEQ and the FASTA/FASTQ pseudo-records layered over it.
const nibbleAlphabet = "=ACMGRSVTWYHKDBN"

// seqString decodes a record's 4-bit packed sequence using the canonical
// nibble alphabet, returning "*" for a zero-length sequence. The decode
// scratch buffer is owned by the worker and doubled on overflow rather
// than reallocated per record.
func (r *bamReaderState) seqString(rec *sam.Record) string {
	n := rec.Seq.Length
	if n == 0 {
		return "*"
	}
	if cap(r.seqBuf) < n {
		r.seqBuf = make([]byte, 2*n)
	}
	buf := r.seqBuf[:n]
	for i := 0; i < n; i++ {
		d := rec.Seq.Seq[i>>1]
		if i&1 == 0 {
			buf[i] = nibbleAlphabet[d>>4]
		} else {
			buf[i] = nibbleAlphabet[d&0xf]
		}
	}
	return string(buf)
}

// qualString renders Phred+33 quality, or "*" when every byte is the
// "no quality" sentinel 0xFF.
func (r *bamReaderState) qualString(q []byte) string {
	allMissing := true
	for _, v := range q {
		if v != 0xff {
			allMissing = false
			break
		}
	}
	if len(q) == 0 || allMissing {
		return "*"
	}
	if cap(r.qualBuf) < len(q) {
		r.qualBuf = make([]byte, 2*len(q))
	}
	buf := r.qualBuf[:len(q)]
	for i, v := range q {
		buf[i] = v + 33
	}
	return string(buf)
}

// cigarString concatenates <oplen><opchar> tokens into the worker's fixed
// CIGAR buffer, or "*" when the record has no alignment.
func (r *bamReaderState) cigarString(cig sam.Cigar) string {
	if len(cig) == 0 {
		return "*"
	}
	buf := r.cigBuf[:0]
	for _, op := range cig {
		buf = strconv.AppendInt(buf, int64(op.Len()), 10)
		buf = append(buf, op.Type().String()...)
	}
	return string(buf)
}

// sampleFor resolves a record's SM sample name from its RG identifier,
// memoizing the @RG header lookup to amortize cost across consecutive
// reads sharing the same read group.
func (r *bamReaderState) sampleFor(rgID string) (string, bool) {
	if s, ok := r.sampleByRG[rgID]; ok {
		return s, s != ""
	}
	for _, grp := range r.bind.header.RGs() {
		if grp.Name() == rgID {
			sm := grp.Get(smTag)
			r.sampleByRG[rgID] = sm
			return sm, sm != ""
		}
	}
	r.sampleByRG[rgID] = ""
	return "", false
}
