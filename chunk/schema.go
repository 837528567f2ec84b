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

// Package chunk is the minimal "engine side" contract every reader in this
// module is written against: a fixed-size, typed, columnar output container
// plus the logical type system used to describe it. It stands in for the
// host analytic engine's chunk-vector API (out of scope for this core; see
// the top-level README of the surrounding module) the same way a table
// function plugin is written against a fixed vector ABI rather than against
// the engine's full query executor.
package chunk

// Type is a logical column type. The set intentionally mirrors what an
// analytic columnar engine exposes at the table-function boundary: fixed
// width scalars, two string-ish shapes, and two nested container shapes.
type Type int

const (
	Invalid Type = iota
	Boolean
	Integer   // 32-bit signed
	BigInt    // 64-bit signed
	USmallInt // 16-bit unsigned
	Float     // 32-bit
	Double    // 64-bit
	Varchar
	Blob
	List // element type carried out-of-band in Column.Elem
	Map  // always MAP<VARCHAR,VARCHAR> in this module
)

func (t Type) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case Integer:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case USmallInt:
		return "USMALLINT"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case Varchar:
		return "VARCHAR"
	case Blob:
		return "BLOB"
	case List:
		return "LIST"
	case Map:
		return "MAP<VARCHAR,VARCHAR>"
	default:
		return "INVALID"
	}
}

// Column describes one output column: its name, its logical type, and
// (when Type == List) the logical type of its elements.
type Column struct {
	Name string
	Type Type
	Elem Type // meaningful only when Type == List
}

// ListOf builds a LIST<elem> column descriptor.
func ListOf(name string, elem Type) Column {
	return Column{Name: name, Type: List, Elem: elem}
}

// Schema is the ordered, immutable-after-bind column list a reader derives
// during Bind. Index position in Schema is the column's logical index,
// referenced by a Projection (see package scan).
type Schema []Column

// IndexOf returns the logical column index for name, or -1.
func (s Schema) IndexOf(name string) int {
	for i := range s {
		if s[i].Name == name {
			return i
		}
	}
	return -1
}

// Builder accumulates columns in declared order, mirroring the host
// engine's add_result_column(name, type) bind-time call sequence.
type Builder struct {
	cols Schema
}

func (b *Builder) Add(name string, t Type) *Builder {
	b.cols = append(b.cols, Column{Name: name, Type: t})
	return b
}

func (b *Builder) AddList(name string, elem Type) *Builder {
	b.cols = append(b.cols, ListOf(name, elem))
	return b
}

func (b *Builder) AddMap(name string) *Builder {
	b.cols = append(b.cols, Column{Name: name, Type: Map})
	return b
}

func (b *Builder) Schema() Schema {
	out := make(Schema, len(b.cols))
	copy(out, b.cols)
	return out
}
