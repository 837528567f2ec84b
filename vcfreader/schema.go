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

import "github.com/RGenomicsETL/duckhts-sub000/chunk"

// layout is the fully resolved column plan derived at Bind time: fixed
// offsets for the core columns, the VEP column range, the INFO column
// range, and the FORMAT column range (shaped differently for tidy vs.
// wide output).
type layout struct {
	schema chunk.Schema

	// core columns are always at these fixed indices.
	chromIdx, posIdx, idIdx, refIdx, altIdx, qualIdx, filterIdx int

	vepStart, vepEnd int // [start,end) into schema; vepEnd==vepStart if no VEP column

	infoStart int
	infoCols  []FieldMeta // parallel, one per INFO column, ColIndex set

	tidy          bool
	sampleIDIdx   int // only valid when tidy
	formatStart   int
	formatCols    []FieldMeta // one per FORMAT field (tidy) or per (field,sample) (wide)
	formatSamples []string    // wide mode only: sample name per formatCols-derived block
}

// buildLayout derives the schema: core columns, then VEP columns (one
// LIST<T> per VEP subfield), then INFO columns, then FORMAT columns
// shaped according to tidy.
func buildLayout(h *Header, tidy bool) *layout {
	var b chunk.Builder
	l := &layout{tidy: tidy}

	b.Add("CHROM", chunk.Varchar)
	l.chromIdx = 0
	b.Add("POS", chunk.BigInt)
	l.posIdx = 1
	b.Add("ID", chunk.Varchar)
	l.idIdx = 2
	b.Add("REF", chunk.Varchar)
	l.refIdx = 3
	b.AddList("ALT", chunk.Varchar)
	l.altIdx = 4
	b.Add("QUAL", chunk.Double)
	l.qualIdx = 5
	b.AddList("FILTER", chunk.Varchar)
	l.filterIdx = 6

	l.vepStart = 7
	if h.VEPInfoID != "" {
		h.VEPSubfields = ParseVEPSchema(vepDescription(h, h.VEPInfoID))
		for _, sf := range h.VEPSubfields {
			elem := chunk.Varchar
			switch sf.kind {
			case KindInteger:
				elem = chunk.BigInt
			case KindFloat:
				elem = chunk.Double
			}
			b.AddList("VEP_"+sf.name, elem)
		}
	}
	l.vepEnd = l.vepStart + len(h.VEPSubfields)

	l.infoStart = l.vepEnd
	for i := range h.Info {
		f := &h.Info[i]
		if IsVEPInfoID(f.ID) {
			continue // the raw annotation string itself is not re-emitted as INFO_CSQ etc.
		}
		t, elem := columnType(f.Kind, f.Arity, f.FixedN)
		f.ColIndex = len(b.Schema())
		if t == chunk.List {
			b.AddList("INFO_"+f.ID, elem)
		} else {
			b.Add("INFO_"+f.ID, t)
		}
		l.infoCols = append(l.infoCols, *f)
	}

	l.formatStart = len(b.Schema())
	if tidy {
		b.Add("SAMPLE_ID", chunk.Varchar)
		l.sampleIDIdx = l.formatStart
		for i := range h.Format {
			f := &h.Format[i]
			t, elem := columnType(f.Kind, f.Arity, f.FixedN)
			f.ColIndex = len(b.Schema())
			if t == chunk.List {
				b.AddList("FORMAT_"+f.ID, elem)
			} else {
				b.Add("FORMAT_"+f.ID, t)
			}
			l.formatCols = append(l.formatCols, *f)
		}
	} else {
		for _, sample := range h.Samples {
			for i := range h.Format {
				f := h.Format[i]
				t, elem := columnType(f.Kind, f.Arity, f.FixedN)
				f.ColIndex = len(b.Schema())
				name := "FORMAT_" + f.ID + "_" + sample
				if t == chunk.List {
					b.AddList(name, elem)
				} else {
					b.Add(name, t)
				}
				l.formatCols = append(l.formatCols, f)
				l.formatSamples = append(l.formatSamples, sample)
			}
		}
	}

	l.schema = b.Schema()
	return l
}

// vepDescription re-derives the Description text of the CSQ/BCSQ/ANN
// INFO header line. The Number/Type fields are retained in FieldMeta but
// the free-text Description is not, so this walks the raw header lines
// ParseHeader kept around.
func vepDescription(h *Header, id string) string {
	const prefix = "##INFO=<"
	for _, line := range h.RawLines {
		if len(line) <= len(prefix) || line[:len(prefix)] != prefix {
			continue
		}
		tags := parseAngleTags(line[len(prefix):])
		if tags["ID"] == id {
			return tags["Description"]
		}
	}
	return ""
}
