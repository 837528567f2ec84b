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
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
)

// nextRow decodes the next record this worker is allowed to see, applying
// the active contig/region restriction (if any) by skipping or declaring
// exhaustion as appropriate. It never advances to a different region or
// contig itself; Fill's advance() does that once errNoMoreRows surfaces.
func (r *vcfReader) nextRow() (*row, error) {
	for {
		if r.restricted && !r.linear && r.curRid < 0 {
			return nil, errNoMoreRows
		}
		if r.restricted && r.bind.isBCF && r.chunkEnd != 0 && voffset(r.bg.LastChunk().End) >= r.chunkEnd {
			if !r.advanceChunk() {
				return nil, errNoMoreRows
			}
		}

		rw, rid, pos0, err := r.readOne()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errNoMoreRows
			}
			return nil, err
		}

		if r.linear {
			if !r.rowInAnyRegion(rw.chrom, pos0) {
				continue
			}
			return rw, nil
		}
		if r.restricted {
			// bgzf blocks are shared across contig boundaries, so the
			// claimed/queried contig's chunks can carry records that
			// belong to a neighboring contig; the chunk list itself
			// bounds iteration, so skipping them is safe.
			if rid != r.curRid {
				continue
			}
			if r.curRegion != nil {
				if pos0 < r.curRegion.beg {
					continue
				}
				if r.curRegion.end >= 0 && pos0 >= r.curRegion.end {
					return nil, errNoMoreRows
				}
			}
		}
		return rw, nil
	}
}

// rowInAnyRegion is the linear-mode region filter: a record passes if it
// falls inside any of the comma-split regions.
func (r *vcfReader) rowInAnyRegion(chrom string, pos0 int) bool {
	for _, rg := range r.regions {
		if rg.contig != chrom {
			continue
		}
		if pos0 < rg.beg {
			continue
		}
		if rg.end >= 0 && pos0 >= rg.end {
			continue
		}
		return true
	}
	return false
}

// readOne decodes exactly one record from whichever source this worker
// was bound to, returning its 0-based contig index and position alongside
// the already-normalized row.
func (r *vcfReader) readOne() (*row, int, int, error) {
	if r.bf != nil {
		rec, err := r.bf.next()
		if err != nil {
			return nil, 0, 0, err
		}
		return r.decodeBCFRow(rec), int(rec.rid), int(rec.pos), nil
	}
	return r.readTextLine()
}

func (r *vcfReader) decodeBCFRow(rec *bcfRecord) *row {
	h := r.bind.header
	rw := &row{}
	if int(rec.rid) >= 0 && int(rec.rid) < len(h.Contigs) {
		rw.chrom = h.Contigs[rec.rid]
	}
	rw.pos = int64(rec.pos) + 1
	rw.id = rec.id
	if vepMissing(rw.id) {
		rw.id = ""
	}
	if len(rec.alleles) > 0 {
		rw.ref = rec.alleles[0]
		rw.alt = append([]string(nil), rec.alleles[1:]...)
	}
	rw.qualValid = rec.qualSet
	rw.qual = float64(rec.qual)

	names := make([]string, 0, len(rec.filters))
	for _, idx := range rec.filters {
		if name, ok := h.filterName(int(idx)); ok {
			names = append(names, name)
		}
	}
	rw.filters = materializeFilters(names)

	infoVals := rec.decodeInfoValues(h)
	rw.info = make(map[string]fieldValue, len(h.Info))
	for i := range h.Info {
		f := h.Info[i]
		if IsVEPInfoID(f.ID) {
			if dv, ok := infoVals[i]; ok {
				rw.vepRaw = dv.str
			}
			continue
		}
		if dv, ok := infoVals[i]; ok {
			rw.info[f.ID] = fromDecoded(dv, f.Kind)
		} else {
			rw.info[f.ID] = fieldValue{}
		}
	}

	fmtVals := rec.decodeFormatValues(h)
	rw.format = make(map[string][]fieldValue, len(h.Format))
	for i := range h.Format {
		f := h.Format[i]
		perSample := fmtVals[i]
		vals := make([]fieldValue, len(h.Samples))
		for s := range vals {
			if s >= len(perSample) {
				continue
			}
			if f.ID == "GT" {
				gt := DecodeGenotype(perSample[s].ints)
				vals[s] = fieldValue{present: gt != "", strs: []string{gt}}
				continue
			}
			vals[s] = fromDecoded(perSample[s], f.Kind)
		}
		rw.format[f.ID] = vals
	}
	return rw
}

// readTextLine reads and decodes the next tab-separated VCF data line.
func (r *vcfReader) readTextLine() (*row, int, int, error) {
	for {
		if !r.textScanner.Scan() {
			if err := r.textScanner.Err(); err != nil {
				return nil, 0, 0, err
			}
			return nil, 0, 0, io.EOF
		}
		line := r.textScanner.Text()
		if line == "" {
			continue
		}
		return r.decodeTextRow(line)
	}
}

func (r *vcfReader) decodeTextRow(line string) (*row, int, int, error) {
	h := r.bind.header
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, 0, 0, errors.New("vcf: short data line")
	}
	rw := &row{}
	rw.chrom = fields[0]
	pos, _ := strconv.ParseInt(fields[1], 10, 64)
	rw.pos = pos
	rw.id = fields[2]
	if rw.id == "." {
		rw.id = ""
	}
	rw.ref = fields[3]
	if fields[4] != "." {
		rw.alt = strings.Split(fields[4], ",")
	}
	if fields[5] != "." {
		if q, err := strconv.ParseFloat(fields[5], 64); err == nil {
			rw.qual, rw.qualValid = q, true
		}
	}
	var names []string
	if fields[6] != "." && fields[6] != "PASS" {
		names = strings.Split(fields[6], ";")
	} else if fields[6] == "PASS" {
		names = []string{"PASS"}
	}
	rw.filters = materializeFilters(names)

	rw.info = make(map[string]fieldValue, len(h.Info))
	for i := range h.Info {
		rw.info[h.Info[i].ID] = fieldValue{}
	}
	if fields[7] != "." {
		for _, kv := range strings.Split(fields[7], ";") {
			if kv == "" {
				continue
			}
			key, val := kv, ""
			if eq := strings.IndexByte(kv, '='); eq >= 0 {
				key, val = kv[:eq], kv[eq+1:]
			}
			if IsVEPInfoID(key) {
				rw.vepRaw = val
				continue
			}
			meta := findFieldMeta(h.Info, key)
			if meta == nil {
				continue // not declared in the header: ignored, matching header-driven schema derivation
			}
			rw.info[key] = fromText(val, meta.Kind, meta.Arity, meta.FixedN)
		}
	}

	rw.format = make(map[string][]fieldValue, len(h.Format))
	if len(fields) > 9 {
		fmtIDs := strings.Split(fields[8], ":")
		for sIdx, sampleField := range fields[9:] {
			if sIdx >= len(h.Samples) {
				break
			}
			sampleVals := strings.Split(sampleField, ":")
			for fi, id := range fmtIDs {
				meta := findFieldMeta(h.Format, id)
				if meta == nil {
					continue
				}
				if _, ok := rw.format[id]; !ok {
					rw.format[id] = make([]fieldValue, len(h.Samples))
				}
				if fi >= len(sampleVals) {
					continue
				}
				raw := sampleVals[fi]
				if id == "GT" {
					gt := DecodeGenotypeText(raw)
					rw.format[id][sIdx] = fieldValue{present: gt != "" && gt != ".", strs: []string{gt}}
					continue
				}
				rw.format[id][sIdx] = fromText(raw, meta.Kind, meta.Arity, meta.FixedN)
			}
		}
	}

	rid := contigRid(h.Contigs, rw.chrom)
	return rw, rid, int(rw.pos) - 1, nil
}

func findFieldMeta(fields []FieldMeta, id string) *FieldMeta {
	for i := range fields {
		if fields[i].ID == id {
			return &fields[i]
		}
	}
	return nil
}

// writeWideRow writes one record as one output row, with FORMAT fields
// spread across one column block per sample.
func (r *vcfReader) writeWideRow(c *chunk.Chunk, n int, rw *row) {
	l := r.bind.layout
	r.writeCore(c, n, rw)
	for i, meta := range l.formatCols {
		col := c.Column(l.formatStart + i)
		if col == nil {
			continue
		}
		sample := l.formatSamples[i]
		sIdx := indexOfSample(r.bind.header.Samples, sample)
		var fv fieldValue
		if sIdx >= 0 {
			if vals, ok := rw.format[meta.ID]; ok && sIdx < len(vals) {
				fv = vals[sIdx]
			}
		}
		writeFieldValue(col, meta.List, meta.Kind, fv, n)
	}
}

// writeTidyRow writes one (record, sample) pair as one output row: the
// core/VEP/INFO columns are repeated verbatim and FORMAT fields are keyed
// by a single SAMPLE_ID column instead of being spread across columns.
func (r *vcfReader) writeTidyRow(c *chunk.Chunk, n int, rw *row, sampleIdx int) {
	l := r.bind.layout
	r.writeCore(c, n, rw)
	if col := c.Column(l.sampleIDIdx); col != nil {
		col.SetString(n, r.bind.header.Samples[sampleIdx])
	}
	for i, meta := range l.formatCols {
		col := c.Column(l.formatStart + 1 + i)
		if col == nil {
			continue
		}
		var fv fieldValue
		if vals, ok := rw.format[meta.ID]; ok && sampleIdx < len(vals) {
			fv = vals[sampleIdx]
		}
		writeFieldValue(col, meta.List, meta.Kind, fv, n)
	}
}

func indexOfSample(samples []string, name string) int {
	for i, s := range samples {
		if s == name {
			return i
		}
	}
	return -1
}

// writeCore writes the columns shared by both tidy and wide output shapes:
// CHROM..FILTER, the VEP_* columns, and the INFO_* columns.
func (r *vcfReader) writeCore(c *chunk.Chunk, n int, rw *row) {
	l := r.bind.layout
	if col := c.Column(l.chromIdx); col != nil {
		col.SetString(n, rw.chrom)
	}
	if col := c.Column(l.posIdx); col != nil {
		col.SetInt64(n, rw.pos)
	}
	if col := c.Column(l.idIdx); col != nil {
		if rw.id == "" {
			col.SetNull(n)
		} else {
			col.SetString(n, rw.id)
		}
	}
	if col := c.Column(l.refIdx); col != nil {
		col.SetString(n, rw.ref)
	}
	if col := c.Column(l.altIdx); col != nil {
		base := col.AppendListRow(len(rw.alt))
		for i, a := range rw.alt {
			col.Child.SetString(base+i, a)
		}
	}
	if col := c.Column(l.qualIdx); col != nil {
		if !rw.qualValid {
			col.SetNull(n)
		} else {
			col.SetFloat64(n, rw.qual)
		}
	}
	if col := c.Column(l.filterIdx); col != nil {
		base := col.AppendListRow(len(rw.filters))
		for i, f := range rw.filters {
			col.Child.SetString(base+i, f)
		}
	}

	vepWanted := false
	for i := l.vepStart; i < l.vepEnd; i++ {
		if r.proj.Has(i) {
			vepWanted = true
			break
		}
	}
	if l.vepEnd > l.vepStart && rw.vepRaw != "" && vepWanted {
		transcripts := splitVEPTranscripts(rw.vepRaw)
		for i, sf := range r.bind.header.VEPSubfields {
			col := c.Column(l.vepStart + i)
			if col == nil {
				continue
			}
			appendVEPList(col, sf.kind, transcripts, i)
		}
	} else {
		for i := l.vepStart; i < l.vepEnd; i++ {
			if col := c.Column(i); col != nil {
				col.AppendListRow(0)
				col.SetNull(n)
			}
		}
	}

	for i, meta := range l.infoCols {
		col := c.Column(l.infoStart + i)
		if col == nil {
			continue
		}
		writeFieldValue(col, meta.List, meta.Kind, rw.info[meta.ID], n)
	}
}

// appendVEPList extracts the subIdx'th '|'-delimited subfield across every
// transcript in a split CSQ/BCSQ/ANN value and appends it as one LIST row
// with exactly one element per transcript; elements carrying the per-VCF
// missing marker ("" or "."), or that fail numeric conversion, become
// child-vector NULLs rather than being dropped.
func appendVEPList(col *chunk.Vector, kind ValueKind, transcripts [][]string, subIdx int) {
	base := col.AppendListRow(len(transcripts))
	for i, t := range transcripts {
		idx := base + i
		if subIdx >= len(t) || vepMissing(t[subIdx]) {
			col.SetChildNull(idx)
			continue
		}
		v := t[subIdx]
		switch kind {
		case KindInteger:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				col.SetChildNull(idx)
				continue
			}
			col.Child.SetInt64(idx, n)
		case KindFloat:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				col.SetChildNull(idx)
				continue
			}
			col.Child.SetFloat64(idx, f)
		default:
			col.Child.SetString(idx, v)
		}
	}
}

// writeFieldValue is the shared INFO/FORMAT value writer: scalar or list
// shape per meta.List, NULL when the value was absent from the record.
func writeFieldValue(col *chunk.Vector, isList bool, kind ValueKind, fv fieldValue, row int) {
	if kind == KindFlag {
		col.SetBool(row, fv.present && fv.flag)
		return
	}
	if isList {
		n := len(fv.ints) + len(fv.floats) + len(fv.strs)
		base := col.AppendListRow(n)
		switch kind {
		case KindInteger:
			for i, v := range fv.ints {
				col.Child.SetInt64(base+i, v)
			}
		case KindFloat:
			for i, v := range fv.floats {
				col.Child.SetFloat64(base+i, v)
			}
		default:
			for i, v := range fv.strs {
				col.Child.SetString(base+i, v)
			}
		}
		if !fv.present {
			col.SetNull(row)
		}
		return
	}
	if !fv.present {
		col.SetNull(row)
		return
	}
	switch kind {
	case KindInteger:
		if len(fv.ints) > 0 {
			col.SetInt64(row, fv.ints[0])
		}
	case KindFloat:
		if len(fv.floats) > 0 {
			col.SetFloat64(row, fv.floats[0])
		}
	default:
		if len(fv.strs) > 0 {
			col.SetString(row, fv.strs[0])
		}
	}
}
