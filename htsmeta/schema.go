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

// Package htsmeta implements the two HTS metadata readers,
// read_hts_header and read_hts_index, plus the read_hts_index_spans and
// read_hts_index_raw macros layered on top of the latter. Unlike the
// per-format readers, these two table functions read every format
// family (VCF/BCF, SAM/BAM/CRAM, FASTA/FASTQ, tabix) behind one name, so
// this package imports every other reader package for their header/index
// loading helpers rather than the other way around.
package htsmeta

import "github.com/RGenomicsETL/duckhts-sub000/chunk"

// headerSchema is the read_hts_header row shape, identical regardless
// of the underlying format.
func headerSchema() chunk.Schema {
	var b chunk.Builder
	b.Add("file_format", chunk.Varchar)
	b.Add("compression", chunk.Varchar)
	b.Add("record_type", chunk.Varchar)
	b.Add("id", chunk.Varchar)
	b.Add("number", chunk.Varchar)
	b.Add("value_type", chunk.Varchar)
	b.Add("length", chunk.BigInt)
	b.Add("description", chunk.Varchar)
	b.Add("idx", chunk.BigInt)
	b.AddMap("key_values")
	b.Add("raw", chunk.Varchar)
	return b.Schema()
}

// indexSchema is the read_hts_index row shape.
func indexSchema() chunk.Schema {
	var b chunk.Builder
	b.Add("file_format", chunk.Varchar)
	b.Add("seqname", chunk.Varchar)
	b.Add("tid", chunk.BigInt)
	b.Add("length", chunk.BigInt)
	b.Add("mapped", chunk.BigInt)
	b.Add("unmapped", chunk.BigInt)
	b.Add("n_no_coor", chunk.BigInt)
	b.Add("index_type", chunk.Varchar)
	b.Add("index_path", chunk.Varchar)
	b.Add("meta", chunk.Blob)
	return b.Schema()
}

// spansSchema is read_hts_index_spans: indexSchema plus four NULL
// span-annotation columns — a macro layered atop read_hts_index, a view
// rather than a new source of truth.
func spansSchema() chunk.Schema {
	s := indexSchema()
	var b chunk.Builder
	for _, c := range s {
		b.Add(c.Name, c.Type)
	}
	b.Add("bin", chunk.BigInt)
	b.Add("chunk_beg", chunk.BigInt)
	b.Add("chunk_end", chunk.BigInt)
	b.Add("seq_start", chunk.BigInt)
	return b.Schema()
}

// rawSchema is read_hts_index_raw: one row per reference that has a
// non-empty meta blob, reshaped to (index_type, index_path, raw).
func rawSchema() chunk.Schema {
	var b chunk.Builder
	b.Add("index_type", chunk.Varchar)
	b.Add("index_path", chunk.Varchar)
	b.Add("raw", chunk.Blob)
	return b.Schema()
}
