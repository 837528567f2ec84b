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

package chunk

// Vector is one typed, validity-bitmapped output column of a Chunk. Only
// the fields relevant to its Type are populated; readers address a Vector
// by logical row index within the current chunk.
//
// List and Map vectors store their child data densely (one run per row)
// alongside an Offsets array delimiting each row's slice of the child
// vector, the conventional "offsets + flat child" layout for nested
// columns in a columnar engine.
type Vector struct {
	Type Type
	Elem Type // element type when Type == List

	valid []bool // validity bitmap; rows at or past len(valid) are valid

	Bools    []bool
	Int32s   []int32
	Int64s   []int64
	Uint16s  []uint16
	Float32s []float32
	Float64s []float64
	Strings  []string // also backs Blob as raw bytes via string conversion
	Blobs    [][]byte

	// nested containers
	Offsets []int  // len == nrows+1
	Child   *Vector
	Keys    [][]string // Map: one []string of keys per row
	Values  [][]string // Map: one []string of values per row, aligned with Keys
}

// NewVector allocates a Vector able to hold up to n rows of type t (and,
// for List columns, elem for the child).
func NewVector(t, elem Type, n int) *Vector {
	v := &Vector{Type: t, Elem: elem}
	switch t {
	case Boolean:
		v.Bools = make([]bool, n)
	case Integer:
		v.Int32s = make([]int32, n)
	case BigInt:
		v.Int64s = make([]int64, n)
	case USmallInt:
		v.Uint16s = make([]uint16, n)
	case Float:
		v.Float32s = make([]float32, n)
	case Double:
		v.Float64s = make([]float64, n)
	case Varchar:
		v.Strings = make([]string, n)
	case Blob:
		v.Blobs = make([][]byte, n)
	case List:
		v.Offsets = make([]int, 1, n+1)
		v.Child = &Vector{Type: elem}
	case Map:
		v.Keys = make([][]string, 0, n)
		v.Values = make([][]string, 0, n)
	}
	return v
}

// SetNull marks row as NULL. Per the missing-data invariant, this is the
// only way a field-level missing sentinel should ever surface; it is never
// acceptable to write a zero value in its place.
func (v *Vector) SetNull(row int) {
	n := len(v.rowCap())
	if row >= n {
		n = row + 1
	}
	v.ensureValid(n)
	v.valid[row] = false
}

// IsValid reports whether row is non-NULL (defaults to true until a NULL
// has been recorded for that row).
func (v *Vector) IsValid(row int) bool {
	if row >= len(v.valid) {
		return true
	}
	return v.valid[row]
}

func (v *Vector) ensureValid(n int) {
	if v.valid == nil {
		v.valid = make([]bool, 0, n)
	}
	for len(v.valid) < n {
		v.valid = append(v.valid, true)
	}
}

// rowCap returns a slice whose length is the vector's row capacity,
// regardless of which typed backing slice is populated.
func (v *Vector) rowCap() []struct{} {
	switch v.Type {
	case Boolean:
		return make([]struct{}, len(v.Bools))
	case Integer:
		return make([]struct{}, len(v.Int32s))
	case BigInt:
		return make([]struct{}, len(v.Int64s))
	case USmallInt:
		return make([]struct{}, len(v.Uint16s))
	case Float:
		return make([]struct{}, len(v.Float32s))
	case Double:
		return make([]struct{}, len(v.Float64s))
	case Varchar:
		return make([]struct{}, len(v.Strings))
	case Blob:
		return make([]struct{}, len(v.Blobs))
	case Map:
		return make([]struct{}, len(v.Keys))
	case List:
		return make([]struct{}, cap(v.Offsets)-1)
	}
	return nil
}

// SetBool/SetInt32/... write a value; they leave the row's validity flag
// as it is, so a row marked by SetNull stays NULL.
func (v *Vector) SetBool(row int, x bool)       { v.Bools[row] = x }
func (v *Vector) SetInt32(row int, x int32)     { v.Int32s[row] = x }
func (v *Vector) SetInt64(row int, x int64)     { v.Int64s[row] = x }
func (v *Vector) SetUint16(row int, x uint16)   { v.Uint16s[row] = x }
func (v *Vector) SetFloat32(row int, x float32) { v.Float32s[row] = x }
func (v *Vector) SetFloat64(row int, x float64) { v.Float64s[row] = x }
func (v *Vector) SetString(row int, x string)   { v.Strings[row] = x }
func (v *Vector) SetBlob(row int, x []byte)     { v.Blobs[row] = x }

// AppendListRow appends a new row of n elements to a List vector, growing
// the child vector to hold them, and returns the base index of the row's
// element range (n may be zero for an empty, non-NULL list). Callers write
// the elements at Child indices base..base+n-1, or mark individual
// elements NULL via SetChildNull.
func (v *Vector) AppendListRow(n int) (base int) {
	base = v.growChild(n)
	v.Offsets = append(v.Offsets, base+n)
	return base
}

// AppendMapRow appends one MAP<VARCHAR,VARCHAR> row.
func (v *Vector) AppendMapRow(keys, values []string) {
	v.Keys = append(v.Keys, keys)
	v.Values = append(v.Values, values)
}

// growChild grows the child vector of a List column to hold n more
// elements, returning the base index of the newly available region. This
// is the nested-column analogue of the growable scratch buffers readers
// keep for SEQ/QUAL/CIGAR decoding: we double on overflow rather than
// reallocate one element at a time.
func (v *Vector) growChild(n int) int {
	base := 0
	switch v.Child.Type {
	case Integer:
		base = len(v.Child.Int32s)
		v.Child.Int32s = append(v.Child.Int32s, make([]int32, n)...)
	case BigInt:
		base = len(v.Child.Int64s)
		v.Child.Int64s = append(v.Child.Int64s, make([]int64, n)...)
	case Float:
		base = len(v.Child.Float32s)
		v.Child.Float32s = append(v.Child.Float32s, make([]float32, n)...)
	case Double:
		base = len(v.Child.Float64s)
		v.Child.Float64s = append(v.Child.Float64s, make([]float64, n)...)
	case Varchar:
		base = len(v.Child.Strings)
		v.Child.Strings = append(v.Child.Strings, make([]string, n)...)
	}
	return base
}

// SetChildNull marks a child element (addressed by the absolute index
// returned via AppendListRow) as NULL.
func (v *Vector) SetChildNull(idx int) {
	v.Child.ensureValid(idx + 1)
	v.Child.valid[idx] = false
}
