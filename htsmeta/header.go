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
	"strconv"
	"strings"

	"github.com/RGenomicsETL/duckhts-sub000/bamreader"
	"github.com/RGenomicsETL/duckhts-sub000/chunk"
	"github.com/RGenomicsETL/duckhts-sub000/scan"
	"github.com/RGenomicsETL/duckhts-sub000/vcfreader"
)

// HeaderName is the read_hts_header table function entry point.
const HeaderName = "read_hts_header"

// HeaderBind opens path, resolves its format (explicit hint or sniffed),
// and materializes every header row up front: a file's header is always
// small relative to its body, so there is no benefit to streaming it
// lazily across chunk-fill rounds the way record data is.
func HeaderBind(path string, o scan.Options) (scan.BindState, *scan.GlobalState, error) {
	format, err := detectFormat(path, o.String("format", ""))
	if err != nil {
		return nil, nil, scan.BindError("detect-format", err)
	}

	var rows []headerRow
	switch format {
	case "vcf", "bcf":
		rows, err = vcfHeaderRows(path, format)
	case "sam", "bam", "cram":
		rows, err = samHeaderRows(path, format)
	case "fasta", "fastq":
		rows = nil // no header present for these formats
	case "tabix", "gtf", "gff":
		rows, err = tabixHeaderRows(path, format, o.String("index_path", ""))
	default:
		rows, err = tabixHeaderRows(path, format, o.String("index_path", ""))
	}
	if err != nil {
		return nil, nil, scan.BindError("read-header", err)
	}

	bs := &pagedBindState{
		schema: headerSchema(),
		count:  len(rows),
		write: func(c *chunk.Chunk, outRow, srcIdx int, proj scan.Projection) {
			writeHeaderRow(c, outRow, rows[srcIdx], proj)
		},
	}
	return bs, scan.NewGlobalState(false, nil, false), nil
}

func vcfHeaderRows(path, format string) ([]headerRow, error) {
	h, isBCF, err := vcfreader.DetectAndParseHeader(path)
	if err != nil {
		return nil, err
	}
	fileFormat := strings.ToUpper(format)
	compression := "none"
	if isBCF {
		compression = "BGZF"
		fileFormat = "BCF"
	} else {
		fileFormat = "VCF"
	}
	rows := make([]headerRow, 0, len(h.RawLines))
	for i, line := range h.RawLines {
		rows = append(rows, classifyVCFLine(fileFormat, compression, line, int64(i)))
	}
	return rows, nil
}

func classifyVCFLine(fileFormat, compression, line string, idx int64) headerRow {
	row := headerRow{fileFormat: fileFormat, compression: compression, raw: line, idx: idx}
	switch {
	case strings.HasPrefix(line, "##contig=<"):
		keys, vals := parseOrderedTags(line[len("##contig="):])
		row.recordType = "contig"
		row.id = tagValue(keys, vals, "ID")
		row.kvKeys, row.kvVals = keys, vals
		if n, err := strconv.ParseInt(tagValue(keys, vals, "length"), 10, 64); err == nil {
			row.length = &n
		}
	case strings.HasPrefix(line, "##INFO=<"):
		keys, vals := parseOrderedTags(line[len("##INFO="):])
		row.recordType = "info"
		row.id = tagValue(keys, vals, "ID")
		row.number = tagValue(keys, vals, "Number")
		row.valueType = tagValue(keys, vals, "Type")
		row.description = tagValue(keys, vals, "Description")
		row.kvKeys, row.kvVals = keys, vals
	case strings.HasPrefix(line, "##FORMAT=<"):
		keys, vals := parseOrderedTags(line[len("##FORMAT="):])
		row.recordType = "format"
		row.id = tagValue(keys, vals, "ID")
		row.number = tagValue(keys, vals, "Number")
		row.valueType = tagValue(keys, vals, "Type")
		row.description = tagValue(keys, vals, "Description")
		row.kvKeys, row.kvVals = keys, vals
	case strings.HasPrefix(line, "##FILTER=<"):
		keys, vals := parseOrderedTags(line[len("##FILTER="):])
		row.recordType = "filter"
		row.id = tagValue(keys, vals, "ID")
		row.description = tagValue(keys, vals, "Description")
		row.kvKeys, row.kvVals = keys, vals
	default:
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			row.recordType = "meta"
			break
		}
		key := strings.TrimPrefix(line[:eq], "##")
		rest := line[eq+1:]
		if strings.HasPrefix(rest, "<") {
			keys, vals := parseOrderedTags(rest)
			row.recordType = "structured"
			row.id = tagValue(keys, vals, "ID")
			row.kvKeys, row.kvVals = keys, vals
		} else {
			row.recordType = "meta"
			row.kvKeys = []string{key}
			row.kvVals = []string{rest}
		}
	}
	return row
}

func samHeaderRows(path, format string) ([]headerRow, error) {
	header, isBAM, err := bamreader.DetectHeader(path)
	if err != nil {
		return nil, err
	}
	fileFormat := strings.ToUpper(format)
	compression := "none"
	if isBAM {
		compression = "BGZF"
	}
	text, err := header.MarshalText()
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(text), "\n"), "\n")
	rows := make([]headerRow, 0, len(lines))
	for i, line := range lines {
		if line == "" {
			continue
		}
		rows = append(rows, classifySAMLine(fileFormat, compression, line, int64(i)))
	}
	return rows, nil
}

func classifySAMLine(fileFormat, compression, line string, idx int64) headerRow {
	fields := strings.Split(line, "\t")
	tag := fields[0]
	row := headerRow{
		fileFormat:  fileFormat,
		compression: compression,
		recordType:  strings.TrimPrefix(tag, "@"),
		raw:         line,
		idx:         idx,
	}
	if tag == "@CO" {
		if len(fields) > 1 {
			row.description = strings.Join(fields[1:], "\t")
		}
		return row
	}
	for _, f := range fields[1:] {
		parts := strings.SplitN(f, ":", 2)
		if len(parts) != 2 {
			continue
		}
		k, v := parts[0], parts[1]
		row.kvKeys = append(row.kvKeys, k)
		row.kvVals = append(row.kvVals, v)
		switch {
		case tag == "@SQ" && k == "SN":
			row.id = v
		case (tag == "@RG" || tag == "@PG") && k == "ID":
			row.id = v
		case tag == "@SQ" && k == "LN":
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				row.length = &n
			}
		}
	}
	return row
}

func tabixHeaderRows(path, format, indexPathOpt string) ([]headerRow, error) {
	f, br, bgzfDetected, err := openText(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fileFormat := strings.ToUpper(format)
	compression := compressionOf(format, bgzfDetected)

	var rows []headerRow
	for {
		line, rerr := br.ReadString('\n')
		trimmed := strings.TrimRight(line, "\n\r")
		if trimmed != "" {
			if !strings.HasPrefix(trimmed, "#") {
				break
			}
			rows = append(rows, headerRow{
				fileFormat:  fileFormat,
				compression: compression,
				recordType:  "META",
				raw:         trimmed,
				idx:         int64(len(rows)),
			})
		}
		if rerr != nil {
			break
		}
	}
	return rows, nil
}
