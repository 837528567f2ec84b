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

// This file implements two macros layered atop read_hts_index:
// read_hts_index_spans (a projecting view adding NULL span columns) and
// read_hts_index_raw (the per-file raw index blob, reshaped). Both reuse
// IndexBind's per-format row builders rather than re-deriving them, so
// they can never disagree with read_hts_index about what references
// and index a file has.
package htsmeta

import (
	"github.com/RGenomicsETL/duckhts-sub000/chunk"
	"github.com/RGenomicsETL/duckhts-sub000/scan"
)

// SpansName is the read_hts_index_spans macro's entry point.
const SpansName = "read_hts_index_spans"

// RawName is the read_hts_index_raw macro's entry point.
const RawName = "read_hts_index_raw"

func indexRowsFor(path string, o scan.Options) ([]indexRow, error) {
	format, err := detectFormat(path, o.String("format", ""))
	if err != nil {
		return nil, err
	}
	indexPathOpt := o.String("index_path", "")
	switch format {
	case "vcf", "bcf":
		return vcfIndexRows(path, format, indexPathOpt)
	case "sam", "bam", "cram":
		return samIndexRows(path, format, indexPathOpt)
	case "fasta":
		return faiIndexRows(path, "FASTA", indexPathOpt, ".fai")
	case "fastq":
		return faiIndexRows(path, "FASTQ", indexPathOpt, ".fqi")
	default:
		return tabixIndexRows(path, indexPathOpt)
	}
}

// SpansBind builds the same rows as read_hts_index under the
// bin/chunk_beg/chunk_end/seq_start-augmented schema.
func SpansBind(path string, o scan.Options) (scan.BindState, *scan.GlobalState, error) {
	rows, err := indexRowsFor(path, o)
	if err != nil {
		return nil, nil, scan.BindError("read-index", err)
	}
	return pagedIndexBind(spansSchema(), rows, writeSpanRow), scan.NewGlobalState(false, nil, false), nil
}

// RawBind reshapes read_hts_index's per-file raw index blob (set once,
// on the first row per file, by the index builders in index.go) into
// (index_type, index_path, raw) rows — one per file whose meta is
// present.
func RawBind(path string, o scan.Options) (scan.BindState, *scan.GlobalState, error) {
	rows, err := indexRowsFor(path, o)
	if err != nil {
		return nil, nil, scan.BindError("read-index", err)
	}

	var raws []rawRow
	for _, r := range rows {
		if len(r.meta) == 0 {
			continue
		}
		raws = append(raws, rawRow{indexType: r.indexType, indexPath: r.indexPath, raw: r.meta})
	}

	bs := pagedIndexRawBind(raws)
	return bs, scan.NewGlobalState(false, nil, false), nil
}

func pagedIndexRawBind(rows []rawRow) *pagedBindState {
	return &pagedBindState{
		schema: rawSchema(),
		count:  len(rows),
		write: func(c *chunk.Chunk, outRow, srcIdx int, proj scan.Projection) {
			writeRawRow(c, outRow, rows[srcIdx], proj)
		},
	}
}

// SpansTableFunction is the scan.TableFunction descriptor for
// read_hts_index_spans.
var SpansTableFunction = scan.TableFunction{
	Name:      SpansName,
	Bind:      SpansBind,
	LocalInit: pagedLocalInit,
}

// RawTableFunction is the scan.TableFunction descriptor for
// read_hts_index_raw.
var RawTableFunction = scan.TableFunction{
	Name:      RawName,
	Bind:      RawBind,
	LocalInit: pagedLocalInit,
}
