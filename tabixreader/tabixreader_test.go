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
	"reflect"
	"testing"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
)

func TestChop(t *testing.T) {
	got := chop("chr1\t100\t200\tfoo")
	want := []string{"chr1", "100", "200", "foo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("chop = %v, want %v", got, want)
	}
}

func TestParseGFF3Attributes(t *testing.T) {
	keys, values := parseGFF3Attributes("ID=gene1;Name=BRCA2; Note=some note")
	if !reflect.DeepEqual(keys, []string{"ID", "Name", "Note"}) {
		t.Fatalf("keys = %v", keys)
	}
	if !reflect.DeepEqual(values, []string{"gene1", "BRCA2", "some note"}) {
		t.Fatalf("values = %v", values)
	}
}

func TestParseGTFAttributes(t *testing.T) {
	keys, values := parseGTFAttributes(`gene_id "ENSG1"; transcript_id "ENST1"; exon_number 3`)
	if !reflect.DeepEqual(keys, []string{"gene_id", "transcript_id", "exon_number"}) {
		t.Fatalf("keys = %v", keys)
	}
	if !reflect.DeepEqual(values, []string{"ENSG1", "ENST1", "3"}) {
		t.Fatalf("values = %v", values)
	}
}

func TestDetectTypesNarrowsToTightestCommonType(t *testing.T) {
	sample := [][]string{
		{"chr1", "100", "1.5"},
		{"chr2", "200", "2"},
		{"chr3", ".", "3.25"},
	}
	types := detectTypes(sample, 3)
	want := []chunk.Type{chunk.Varchar, chunk.BigInt, chunk.Double}
	if !reflect.DeepEqual(types, want) {
		t.Fatalf("detectTypes = %v, want %v", types, want)
	}
}

func TestResolveColumnTypesRejectsCountMismatch(t *testing.T) {
	if _, err := resolveColumnTypes([]string{"varchar", "bigint"}, 3); err == nil {
		t.Fatalf("expected a count-mismatch error")
	}
}

func TestResolveColumnTypesNormalizesAliases(t *testing.T) {
	types, err := resolveColumnTypes([]string{"text", "int8", "float", "bool"}, 4)
	if err != nil {
		t.Fatalf("resolveColumnTypes: %v", err)
	}
	want := []chunk.Type{chunk.Varchar, chunk.BigInt, chunk.Double, chunk.Boolean}
	if !reflect.DeepEqual(types, want) {
		t.Fatalf("got %v, want %v", types, want)
	}
}

func TestGtfGffSchemaAppendsAttributesMap(t *testing.T) {
	schema := gtfGffSchema(false)
	if len(schema) != 9 {
		t.Fatalf("len(schema) = %d, want 9", len(schema))
	}
	schema = gtfGffSchema(true)
	if len(schema) != 10 || schema[9].Type != chunk.Map {
		t.Fatalf("schema with attributes_map = %v", schema)
	}
}

func TestGenericSchemaDefaultsColumnNames(t *testing.T) {
	schema, err := genericSchema(nil, []chunk.Type{chunk.Varchar, chunk.BigInt, chunk.Double})
	if err != nil {
		t.Fatalf("genericSchema: %v", err)
	}
	if schema[0].Name != "column0" || schema[1].Type != chunk.BigInt || schema[2].Type != chunk.Double {
		t.Fatalf("schema = %v", schema)
	}
}

func TestParseRegion(t *testing.T) {
	spec := parseRegion("chr1:101-200")
	if spec.contig != "chr1" || spec.beg != 100 || spec.end != 200 {
		t.Fatalf("parseRegion = %+v", spec)
	}
	spec = parseRegion("chr2")
	if spec.contig != "chr2" || spec.beg != 0 || spec.end != -1 {
		t.Fatalf("parseRegion whole contig = %+v", spec)
	}
}
