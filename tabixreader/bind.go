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

package tabixreader

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/tabix"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
	"github.com/RGenomicsETL/duckhts-sub000/htslog"
	"github.com/RGenomicsETL/duckhts-sub000/scan"
)

// Entry point names for the three table functions sharing this bind.
const (
	GenericName = "read_tabix"
	GTFName     = "read_gtf"
	GFFName     = "read_gff"
)

var log = htslog.New("tabixreader")

type bindState struct {
	path          string
	mode          mode
	opts          options
	schema        chunk.Schema
	tbi           *tabix.Index
	hasIndex      bool
	metaChar      rune
	lineSkip      int
	headerNames   []string // resolved header (explicit or sampled), generic mode only
	attributesMap bool
}

func (b *bindState) Schema() chunk.Schema { return b.schema }
func (b *bindState) Close() error         { return nil }

func bind(mode mode, path string, o scan.Options) (scan.BindState, *scan.GlobalState, error) {
	opts, err := parseOptions(o)
	if err != nil {
		return nil, nil, scan.BindError("options", err)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil, scan.BindError("open", err)
	}

	bs := &bindState{path: path, mode: mode, opts: opts, metaChar: '#', attributesMap: opts.attributesMap}

	idxPath := opts.indexPath
	if idxPath == "" {
		idxPath = path + ".tbi"
	}
	if idx, err := loadTBI(idxPath); err == nil && idx != nil {
		bs.tbi = idx
		bs.hasIndex = true
		bs.metaChar = idx.MetaChar
		bs.lineSkip = int(idx.Skip)
	} else if opts.indexPath != "" && err != nil {
		return nil, nil, scan.BindError("load-index", err)
	}

	switch mode {
	case modeGTF, modeGFF:
		bs.schema = gtfGffSchema(opts.attributesMap)
	default:
		schema, headerNames, err := bs.sampleGenericSchema()
		if err != nil {
			return nil, nil, scan.BindError("sample", err)
		}
		bs.schema = schema
		bs.headerNames = headerNames
	}

	var contigNames []string
	if bs.hasIndex {
		contigNames = bs.tbi.Names()
	}
	global := scan.NewGlobalState(bs.hasIndex, contigNames, opts.region != "")
	return bs, global, nil
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

// sampleGenericSchema opens a fresh handle and replays the header/skip
// rules to derive read_tabix's auto-discovered schema: skip lineSkip
// lines, skip metaChar-prefixed lines, optionally consume a header line,
// then sample up to 100 data lines for type auto-detection.
func (b *bindState) sampleGenericSchema() (chunk.Schema, []string, error) {
	f, br, err := openText(b.path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	if err := skipLeading(br, b.lineSkip); err != nil && err != io.EOF {
		return nil, nil, err
	}

	headerNames := b.opts.headerNames
	if b.opts.header {
		line, err := skipMetaLines(br, b.metaChar)
		if err != nil && err != io.EOF {
			return nil, nil, err
		}
		if line != "" && len(headerNames) == 0 {
			fields := chop(line)
			headerNames = make([]string, len(fields))
			for i, f := range fields {
				headerNames[i] = strings.TrimSpace(f)
			}
		}
	}

	var sample [][]string
	ncols := len(headerNames)
	for len(sample) < autoDetectSampleLines {
		line, err := skipMetaLines(br, b.metaChar)
		if err != nil {
			break
		}
		row := chop(line)
		if len(row) > ncols {
			ncols = len(row)
		}
		sample = append(sample, row)
	}

	want := ncols
	if len(b.opts.columnTypes) > want {
		want = len(b.opts.columnTypes)
	}
	explicit, err := resolveColumnTypes(b.opts.columnTypes, want)
	if err != nil {
		return nil, nil, err
	}
	var types []chunk.Type
	if explicit != nil {
		types = explicit
	} else if b.opts.autoDetect {
		types = detectTypes(sample, ncols)
	}

	schema, err := genericSchema(headerNames, types)
	return schema, headerNames, err
}

// skipLeading discards n lines unconditionally (the tabix line_skip rule).
func skipLeading(br *bufio.Reader, n int) error {
	for i := 0; i < n; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return err
		}
	}
	return nil
}

// skipMetaLines returns the next line not prefixed by metaChar.
func skipMetaLines(br *bufio.Reader, metaChar rune) (string, error) {
	for {
		line, err := br.ReadString('\n')
		line = strings.TrimRight(line, "\n\r")
		if line == "" && err != nil {
			return "", err
		}
		if line != "" && rune(line[0]) != metaChar {
			return line, nil
		}
		if err != nil {
			return "", err
		}
	}
}
