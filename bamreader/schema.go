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

import "github.com/RGenomicsETL/duckhts-sub000/chunk"

// layout is the bind-time resolved column plan: the fixed 13-column
// core, followed by an optional run of typed standard-tag columns and an
// optional trailing AUXILIARY_TAGS map column.
type layout struct {
	schema chunk.Schema

	// core column indices, always present in this order.
	qnameIdx, flagIdx, rnameIdx, posIdx, mapqIdx, cigarIdx int
	rnextIdx, pnextIdx, tlenIdx, seqIdx, qualIdx           int
	rgIdx, sampleIdx                                       int

	stdStart int         // index of the first standard-tag column, or len(schema) if none
	stdTags  []standardTag

	auxIdx int // index of AUXILIARY_TAGS, or -1 if absent
}

// buildLayout derives the schema: the fixed 13-column core, then
// (if requested) one typed column per standard SAM tag, then (if
// requested) the AUXILIARY_TAGS spillover map.
func buildLayout(standardTagsOn, auxTagsOn bool) *layout {
	var b chunk.Builder
	l := &layout{}

	b.Add("QNAME", chunk.Varchar)
	l.qnameIdx = 0
	b.Add("FLAG", chunk.USmallInt)
	l.flagIdx = 1
	b.Add("RNAME", chunk.Varchar)
	l.rnameIdx = 2
	b.Add("POS", chunk.BigInt)
	l.posIdx = 3
	b.Add("MAPQ", chunk.Integer)
	l.mapqIdx = 4
	b.Add("CIGAR", chunk.Varchar)
	l.cigarIdx = 5
	b.Add("RNEXT", chunk.Varchar)
	l.rnextIdx = 6
	b.Add("PNEXT", chunk.BigInt)
	l.pnextIdx = 7
	b.Add("TLEN", chunk.BigInt)
	l.tlenIdx = 8
	b.Add("SEQ", chunk.Varchar)
	l.seqIdx = 9
	b.Add("QUAL", chunk.Varchar)
	l.qualIdx = 10
	b.Add("READ_GROUP_ID", chunk.Varchar)
	l.rgIdx = 11
	b.Add("SAMPLE_ID", chunk.Varchar)
	l.sampleIdx = 12

	l.stdStart = len(b.Schema())
	if standardTagsOn {
		for _, t := range standardTags {
			if t.col == chunk.List {
				b.AddList(t.id, t.elem)
			} else {
				b.Add(t.id, t.col)
			}
			l.stdTags = append(l.stdTags, t)
		}
	}

	l.auxIdx = -1
	if auxTagsOn {
		l.auxIdx = len(b.Schema())
		b.AddMap("AUXILIARY_TAGS")
	}

	l.schema = b.Schema()
	return l
}
