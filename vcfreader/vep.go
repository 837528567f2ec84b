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
	"strings"
	"sync"

	"github.com/dchest/siphash"
)

// vepIntegerNames are the well-known VEP/BCSQ/ANN subfield names that are
// always Integer, regardless of the generic pattern rules below.
var vepIntegerNames = map[string]bool{
	"DISTANCE": true,
	"STRAND":   true,
	"TSL":      true,
}

// vepStringListNames force a String element type (with list semantics
// coming from the VEP column always being a LIST<T>) even though their
// name would otherwise match a numeric-looking pattern.
var vepStringListNames = map[string]bool{
	"Consequence": true,
	"FLAGS":       true,
	"CLIN_SIG":    true,
}

// vepSubfield describes one '|'-delimited position of a CSQ/BCSQ/ANN
// annotation string.
type vepSubfield struct {
	name string
	kind ValueKind
}

// classifyVEPSubfield is the small classified predicate set the design
// notes call for: pattern-match the subfield name, don't build a parser
// generator for it.
func classifyVEPSubfield(name string) ValueKind {
	if vepIntegerNames[name] {
		return KindInteger
	}
	if vepStringListNames[name] {
		return KindString
	}
	if strings.Contains(name, "_AF") || strings.Contains(name, "AF_") ||
		name == "MAX_AF" || name == "MOTIF_SCORE_CHANGE" ||
		strings.HasPrefix(name, "SpliceAI_pred_DS_") {
		return KindFloat
	}
	return KindString
}

// vepSchemaCache memoizes ParseVEPSchema by a stable hash of the raw
// Description string, keyed with siphash rather than a crypto hash since
// the only property needed is "two equal descriptions collide, with
// negligible accidental collisions for unequal ones" and the HTS header
// an indexed scan's parallel workers each parse independently is
// typically identical across every worker's private header copy.
var vepSchemaCache sync.Map // map[uint64][]vepSubfield

func vepSchemaCacheKey(description string) uint64 {
	return siphash.Hash(0, 0, []byte(description))
}

// ParseVEPSchema derives the ordered VEP subfield schema from the
// Description of a CSQ/BCSQ/ANN INFO header line. VEP/BCSQ/ANN
// descriptions conventionally end with
// `Format: Allele|Consequence|IMPACT|...`; everything before the final
// colon is free text and is ignored.
func ParseVEPSchema(description string) []vepSubfield {
	key := vepSchemaCacheKey(description)
	if cached, ok := vepSchemaCache.Load(key); ok {
		return cached.([]vepSubfield)
	}

	idx := strings.LastIndex(description, ":")
	if idx < 0 {
		return nil
	}
	spec := strings.TrimSpace(description[idx+1:])
	spec = strings.Trim(spec, "\"")
	names := strings.Split(spec, "|")
	out := make([]vepSubfield, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		out = append(out, vepSubfield{name: n, kind: classifyVEPSubfield(n)})
	}
	vepSchemaCache.Store(key, out)
	return out
}

// IsVEPInfoID reports whether id is one of the recognized VEP-family
// annotation INFO keys.
func IsVEPInfoID(id string) bool {
	return id == "CSQ" || id == "BCSQ" || id == "ANN"
}

// splitVEPTranscripts splits a raw CSQ/BCSQ/ANN value into one record per
// transcript (comma-delimited) and each record into its '|'-delimited
// subfields.
func splitVEPTranscripts(raw string) [][]string {
	if raw == "" {
		return nil
	}
	transcripts := strings.Split(raw, ",")
	out := make([][]string, len(transcripts))
	for i, t := range transcripts {
		out[i] = strings.Split(t, "|")
	}
	return out
}

// vepMissing reports whether a VEP subfield value is the "unset" marker.
func vepMissing(v string) bool {
	return v == "" || v == "."
}
