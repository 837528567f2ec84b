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

package htsmeta

import (
	"os"
	"sort"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/csi"
	"github.com/biogo/hts/fai"
	"github.com/biogo/hts/tabix"

	"github.com/RGenomicsETL/duckhts-sub000/bamreader"
	"github.com/RGenomicsETL/duckhts-sub000/chunk"
	"github.com/RGenomicsETL/duckhts-sub000/scan"
	"github.com/RGenomicsETL/duckhts-sub000/vcfreader"
)

// IndexName is the read_hts_index table function entry point.
const IndexName = "read_hts_index"

// IndexBind resolves path's format and materializes one indexRow per
// reference sequence the relevant index (or, absent an index, the
// header alone) names.
func IndexBind(path string, o scan.Options) (scan.BindState, *scan.GlobalState, error) {
	format, err := detectFormat(path, o.String("format", ""))
	if err != nil {
		return nil, nil, scan.BindError("detect-format", err)
	}
	indexPathOpt := o.String("index_path", "")

	var rows []indexRow
	switch format {
	case "vcf", "bcf":
		rows, err = vcfIndexRows(path, format, indexPathOpt)
	case "sam", "bam", "cram":
		rows, err = samIndexRows(path, format, indexPathOpt)
	case "fasta":
		rows, err = faiIndexRows(path, "FASTA", indexPathOpt, ".fai")
	case "fastq":
		rows, err = faiIndexRows(path, "FASTQ", indexPathOpt, ".fqi")
	default:
		rows, err = tabixIndexRows(path, indexPathOpt)
	}
	if err != nil {
		return nil, nil, scan.BindError("read-index", err)
	}

	return pagedIndexBind(indexSchema(), rows, writeIndexRow), scan.NewGlobalState(false, nil, false), nil
}

func pagedIndexBind(schema chunk.Schema, rows []indexRow, write func(*chunk.Chunk, int, indexRow, scan.Projection)) *pagedBindState {
	return &pagedBindState{
		schema: schema,
		count:  len(rows),
		write: func(c *chunk.Chunk, outRow, srcIdx int, proj scan.Projection) {
			write(c, outRow, rows[srcIdx], proj)
		},
	}
}

func loadCSI(path string) (*csi.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	bg, err := bgzf.NewReader(f, 1)
	if err != nil {
		return nil, err
	}
	return csi.ReadFrom(bg)
}

func loadTBI(path string) (*tabix.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	bg, err := bgzf.NewReader(f, 1)
	if err != nil {
		return nil, err
	}
	return tabix.ReadFrom(bg)
}

func ptrInt64(n int64) *int64 { return &n }

func vcfIndexRows(path, format, indexPathOpt string) ([]indexRow, error) {
	h, _, err := vcfreader.DetectAndParseHeader(path)
	if err != nil {
		return nil, err
	}
	fileFormat := strings.ToUpper(format)
	idxPath := indexPathOpt
	if idxPath == "" {
		idxPath = path + ".csi"
	}
	idx, idxErr := loadCSI(idxPath)
	indexType := "UNKNOWN"
	if idxErr == nil {
		indexType = "CSI"
	}

	rows := make([]indexRow, 0, len(h.Contigs))
	for i, name := range h.Contigs {
		row := indexRow{fileFormat: fileFormat, seqname: name, tid: int64(i), indexType: indexType, indexPath: idxPath}
		if idxErr == nil {
			if stats, ok := idx.ReferenceStats(i); ok {
				row.mapped = ptrInt64(int64(stats.Mapped))
				row.unmapped = ptrInt64(int64(stats.Unmapped))
			}
		}
		if i == 0 && idxErr == nil {
			if raw, rerr := os.ReadFile(idxPath); rerr == nil {
				row.meta = raw
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func samIndexRows(path, format, indexPathOpt string) ([]indexRow, error) {
	header, _, err := bamreader.DetectHeader(path)
	if err != nil {
		return nil, err
	}
	fileFormat := strings.ToUpper(format)
	idxPath := indexPathOpt
	if idxPath == "" {
		idxPath = path + ".bai"
	}
	bai, idxErr := bamreader.LoadBAI(idxPath)
	indexType := "UNKNOWN"
	var nNoCoor *int64
	if idxErr == nil {
		indexType = "BAI"
		if n, ok := bai.Unmapped(); ok {
			nNoCoor = ptrInt64(int64(n))
		}
	}

	refs := header.Refs()
	rows := make([]indexRow, 0, len(refs))
	for i, ref := range refs {
		row := indexRow{
			fileFormat: fileFormat,
			seqname:    ref.Name(),
			tid:        int64(i),
			length:     ptrInt64(int64(ref.Len())),
			indexType:  indexType,
			indexPath:  idxPath,
			nNoCoor:    nNoCoor,
		}
		if idxErr == nil {
			if stats, ok := bai.ReferenceStats(i); ok {
				row.mapped = ptrInt64(int64(stats.Mapped))
				row.unmapped = ptrInt64(int64(stats.Unmapped))
			}
			if i == 0 {
				if raw, rerr := os.ReadFile(idxPath); rerr == nil {
					row.meta = raw
				}
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func tabixIndexRows(path, indexPathOpt string) ([]indexRow, error) {
	idxPath := indexPathOpt
	if idxPath == "" {
		idxPath = path + ".tbi"
	}
	idx, err := loadTBI(idxPath)
	if err != nil {
		return nil, nil // no index: read_hts_index reports zero rows for an unindexed tabix file
	}
	names := idx.Names()
	rows := make([]indexRow, 0, len(names))
	for i, name := range names {
		row := indexRow{fileFormat: "TABIX", seqname: name, tid: int64(i), indexType: "TBI", indexPath: idxPath}
		if stats, ok := idx.ReferenceStats(i); ok {
			row.mapped = ptrInt64(int64(stats.Mapped))
			row.unmapped = ptrInt64(int64(stats.Unmapped))
		}
		if i == 0 {
			if raw, rerr := os.ReadFile(idxPath); rerr == nil {
				row.meta = raw
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func faiIndexRows(path, fileFormat, indexPathOpt, defaultSuffix string) ([]indexRow, error) {
	idxPath := indexPathOpt
	if idxPath == "" {
		idxPath = path + defaultSuffix
	}
	f, err := os.Open(idxPath)
	if err != nil {
		return nil, nil // no index: reports zero rows when no index is present
	}
	defer f.Close()
	idx, err := fai.ReadFrom(f)
	if err != nil {
		return nil, nil
	}

	recs := make([]fai.Record, 0, len(idx))
	for _, rec := range idx {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Start < recs[j].Start })

	rows := make([]indexRow, 0, len(recs))
	for i, rec := range recs {
		rows = append(rows, indexRow{
			fileFormat: fileFormat,
			seqname:    rec.Name,
			tid:        int64(i),
			length:     ptrInt64(int64(rec.Length)),
			indexType:  "FAI",
			indexPath:  idxPath,
		})
	}
	return rows, nil
}

// IndexTableFunction is the scan.TableFunction descriptor for read_hts_index.
var IndexTableFunction = scan.TableFunction{
	Name:      IndexName,
	Bind:      IndexBind,
	LocalInit: pagedLocalInit,
}

// HeaderTableFunction is the scan.TableFunction descriptor for
// read_hts_header.
var HeaderTableFunction = scan.TableFunction{
	Name:      HeaderName,
	Bind:      HeaderBind,
	LocalInit: pagedLocalInit,
}
