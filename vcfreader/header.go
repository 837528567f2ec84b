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
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
)

// FieldMeta is the per-INFO/FORMAT field metadata table entry: declared
// header values, the validated (possibly corrected) arity, and the
// output column index it was assigned.
type FieldMeta struct {
	Name           string
	ID             string
	Kind           ValueKind
	DeclaredArity  Arity
	DeclaredFixedN int
	Arity          Arity
	FixedN         int
	List           bool
	ColIndex       int
	Warning        string
}

// Header is the parsed VCF/BCF header: contig order, the INFO/FORMAT
// field metadata tables, filter IDs, and sample names in declaration
// order. It is shared, read-only state once Bind has produced it.
type Header struct {
	Contigs      []string
	Info         []FieldMeta
	Format       []FieldMeta
	FilterIDs    []string
	Samples      []string
	VEPInfoID    string // "CSQ", "BCSQ", "ANN", or "" if none present
	VEPSubfields []vepSubfield
	RawLines     []string // every "##..." meta line, verbatim, for read_hts_header

	// The BCF2 shared string dictionary: FILTER/INFO/FORMAT IDs in order
	// of appearance (honoring explicit IDX= overrides), with PASS always
	// at index 0. Typed dictionary indices inside binary records resolve
	// against this, not against the per-type Info/Format tables directly.
	dict      []string
	dictIndex map[string]int

	infoByDict   map[int]int // dictionary index -> position in Info
	formatByDict map[int]int // dictionary index -> position in Format
}

// ParseHeader reads VCF header lines ("##..." and the final "#CHROM..."
// column line) from r, stopping at the first non-header line (which it
// does not consume further than peeking is unnecessary: callers always
// pass a header-only prefix, e.g. the embedded text block of a BCF file,
// or feed the whole text VCF and rely on the returned Header plus the
// *bufio.Scanner's position to keep reading data lines).
func ParseHeader(r io.Reader) (*Header, *bufio.Scanner, error) {
	h := &Header{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "##") {
			h.RawLines = append(h.RawLines, line)
			parseMetaLine(h, line)
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				h.Samples = append(h.Samples, fields[9:]...)
			}
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	h.resolveVEP()
	h.assignArities()
	h.buildDictMaps()
	return h, sc, nil
}

// DetectAndParseHeader opens path, detects BCF binary vs. VCF text by
// magic bytes (the same sniff Bind performs), and returns the parsed
// Header plus whether the file was BCF. htsmeta's read_hts_header and
// read_hts_index reuse this so the format sniff is not duplicated.
func DetectAndParseHeader(path string) (h *Header, isBCF bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	magic := make([]byte, 5)
	n, _ := f.Read(magic)
	isBCF = n == 5 && magic[0] == 0x1f && magic[1] == 0x8b
	if _, err := f.Seek(0, 0); err != nil {
		return nil, false, err
	}

	if isBCF {
		bf, berr := openBCF(f, 1)
		if berr != nil {
			if _, err := f.Seek(0, 0); err != nil {
				return nil, false, err
			}
			bg, gerr := bgzf.NewReader(f, 1)
			if gerr != nil {
				return nil, false, berr
			}
			h, _, herr := ParseHeader(bg)
			return h, false, herr
		}
		defer bf.close()
		return bf.header, true, nil
	}
	h, _, herr := ParseHeader(f)
	return h, false, herr
}

func parseMetaLine(h *Header, line string) {
	switch {
	case strings.HasPrefix(line, "##contig=<"):
		tags := parseAngleTags(line[len("##contig="):])
		if id, ok := tags["ID"]; ok {
			h.Contigs = append(h.Contigs, id)
		}
	case strings.HasPrefix(line, "##INFO=<"):
		tags := parseAngleTags(line[len("##INFO="):])
		h.Info = append(h.Info, fieldMetaFromTags(tags))
		h.addDictEntry(tags)
	case strings.HasPrefix(line, "##FORMAT=<"):
		tags := parseAngleTags(line[len("##FORMAT="):])
		h.Format = append(h.Format, fieldMetaFromTags(tags))
		h.addDictEntry(tags)
	case strings.HasPrefix(line, "##FILTER=<"):
		tags := parseAngleTags(line[len("##FILTER="):])
		if id, ok := tags["ID"]; ok {
			h.FilterIDs = append(h.FilterIDs, id)
		}
		h.addDictEntry(tags)
	}
}

// addDictEntry grows the shared BCF2 string dictionary with one
// FILTER/INFO/FORMAT ID. PASS is reserved at index 0 whether or not the
// header declares it; an explicit IDX= tag pins the entry at that slot.
func (h *Header) addDictEntry(tags map[string]string) {
	id, ok := tags["ID"]
	if !ok {
		return
	}
	if h.dictIndex == nil {
		h.dictIndex = map[string]int{"PASS": 0}
		h.dict = []string{"PASS"}
	}
	if _, seen := h.dictIndex[id]; seen {
		return
	}
	if idxStr, ok := tags["IDX"]; ok {
		if idx, err := strconv.Atoi(idxStr); err == nil && idx >= 0 {
			for len(h.dict) <= idx {
				h.dict = append(h.dict, "")
			}
			h.dict[idx] = id
			h.dictIndex[id] = idx
			return
		}
	}
	h.dictIndex[id] = len(h.dict)
	h.dict = append(h.dict, id)
}

// buildDictMaps resolves the typed dictionary indices binary records carry
// into positions in the Info/Format metadata tables.
func (h *Header) buildDictMaps() {
	h.infoByDict = make(map[int]int, len(h.Info))
	for i := range h.Info {
		if d, ok := h.dictIndex[h.Info[i].ID]; ok {
			h.infoByDict[d] = i
		}
	}
	h.formatByDict = make(map[int]int, len(h.Format))
	for i := range h.Format {
		if d, ok := h.dictIndex[h.Format[i].ID]; ok {
			h.formatByDict[d] = i
		}
	}
}

// filterName resolves a record's filter dictionary index to its ID.
func (h *Header) filterName(idx int) (string, bool) {
	if idx < 0 || idx >= len(h.dict) || h.dict[idx] == "" {
		return "", false
	}
	return h.dict[idx], true
}

func fieldMetaFromTags(tags map[string]string) FieldMeta {
	arity, fixedN := ParseArity(tags["Number"])
	return FieldMeta{
		Name:           tags["ID"],
		ID:             tags["ID"],
		Kind:           ParseValueKind(tags["Type"]),
		DeclaredArity:  arity,
		DeclaredFixedN: fixedN,
	}
}

func (h *Header) resolveVEP() {
	for _, f := range h.Info {
		if IsVEPInfoID(f.ID) {
			h.VEPInfoID = f.ID
			break
		}
	}
}

func (h *Header) assignArities() {
	for i := range h.Info {
		f := &h.Info[i]
		arity, fixedN, warn, _ := validate(true, f.ID, f.DeclaredArity, f.DeclaredFixedN)
		f.Arity, f.FixedN, f.Warning = arity, fixedN, warn
		f.List = isList(arity, fixedN)
	}
	for i := range h.Format {
		f := &h.Format[i]
		arity, fixedN, warn, _ := validate(false, f.ID, f.DeclaredArity, f.DeclaredFixedN)
		f.Arity, f.FixedN, f.Warning = arity, fixedN, warn
		f.List = isList(arity, fixedN)
	}
}

// parseAngleTags parses the `<K=V,K2="quoted, value",...>` tag list found
// in a VCF structured meta line, respecting double-quoted values that may
// themselves contain commas (e.g. Description="...").
func parseAngleTags(s string) map[string]string {
	s = strings.TrimPrefix(strings.TrimSuffix(strings.TrimSpace(s), ">"), "<")
	tags := map[string]string{}
	i := 0
	for i < len(s) {
		eq := strings.IndexByte(s[i:], '=')
		if eq < 0 {
			break
		}
		key := strings.TrimSpace(s[i : i+eq])
		i += eq + 1
		var val string
		if i < len(s) && s[i] == '"' {
			end := i + 1
			for end < len(s) {
				if s[end] == '"' && (end == 0 || s[end-1] != '\\') {
					break
				}
				end++
			}
			val = s[i+1 : end]
			i = end + 1
			if i < len(s) && s[i] == ',' {
				i++
			}
		} else {
			end := strings.IndexByte(s[i:], ',')
			if end < 0 {
				val = s[i:]
				i = len(s)
			} else {
				val = s[i : i+end]
				i += end + 1
			}
		}
		tags[key] = val
	}
	return tags
}
