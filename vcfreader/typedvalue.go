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
	"encoding/binary"
	"fmt"
	"math"
)

// bcfType is the low 4 bits of a BCF typed-value descriptor byte: the
// tagged variant the shared decoder dispatches on, per the "tag-typed
// dispatch" design note. It is deliberately not a Go interface hierarchy.
type bcfType byte

const (
	bcfMissing bcfType = 0
	bcfInt8    bcfType = 1
	bcfInt16   bcfType = 2
	bcfInt32   bcfType = 3
	bcfFloat   bcfType = 5
	bcfChar    bcfType = 7
)

// Missing/vector-end sentinels per the BCF2 encoding, one per width.
// Narrow-width sentinels are normalized to their 32-bit forms during
// decode (readTypedValueBody), so downstream filtering and genotype
// decoding only ever see the int32 pair.
const (
	int8Missing, int8VectorEnd   = int8(-128), int8(-127)
	int16Missing, int16VectorEnd = int16(-32768), int16(-32767)
	int32Missing, int32VectorEnd = int32(-2147483648), int32(-2147483647)
)

var floatMissingBits uint32 = 0x7F800001
var floatVectorEndBits uint32 = 0x7F800002

func isFloatMissing(bits uint32) bool   { return bits == floatMissingBits }
func isFloatVectorEnd(bits uint32) bool { return bits == floatVectorEndBits }

// buffer is a small cursor over a BCF byte slice, offering the same
// bounds-checked fixed-width reads biogo/hts's bam.Reader uses internally
// for its binary record decode.
type buffer struct {
	b   []byte
	pos int
}

func (bf *buffer) bytes(n int) []byte {
	if bf.pos+n > len(bf.b) {
		panic(fmt.Sprintf("bcf: short record: want %d bytes at %d, have %d", n, bf.pos, len(bf.b)))
	}
	r := bf.b[bf.pos : bf.pos+n]
	bf.pos += n
	return r
}

func (bf *buffer) readUint8() uint8   { return bf.bytes(1)[0] }
func (bf *buffer) readInt8() int8     { return int8(bf.readUint8()) }
func (bf *buffer) readUint16() uint16 { return binary.LittleEndian.Uint16(bf.bytes(2)) }
func (bf *buffer) readInt16() int16   { return int16(bf.readUint16()) }
func (bf *buffer) readUint32() uint32 { return binary.LittleEndian.Uint32(bf.bytes(4)) }
func (bf *buffer) readInt32() int32   { return int32(bf.readUint32()) }
func (bf *buffer) readFloat32() float32 {
	return math.Float32frombits(bf.readUint32())
}

// typeDescriptor decodes one type/length byte (and any overflow length
// that follows it): low nibble is the bcfType, high nibble is the element
// count, or 15 meaning "read the real count as a following typed int."
func (bf *buffer) typeDescriptor() (t bcfType, n int) {
	b := bf.readUint8()
	t = bcfType(b & 0x0f)
	n = int(b >> 4)
	if n == 15 {
		lt, _ := bf.typeDescriptor()
		switch lt {
		case bcfInt8:
			n = int(bf.readInt8())
		case bcfInt16:
			n = int(bf.readInt16())
		case bcfInt32:
			n = int(bf.readInt32())
		}
	}
	return t, n
}

// decodedValue is the generic result of decoding one BCF typed value: at
// most one of the slices is populated, per t.
type decodedValue struct {
	t       bcfType
	ints    []int32 // sentinels normalized to int32Missing/int32VectorEnd, NOT yet filtered out
	floats  []float32
	str     string
	present bool // false only for bcfMissing with n == 0 (field entirely absent)
}

// readTypedValue decodes one typed value (scalar or vector) starting at
// the current cursor.
func (bf *buffer) readTypedValue() decodedValue {
	t, n := bf.typeDescriptor()
	return bf.readTypedValueBody(t, n)
}

func (bf *buffer) readTypedValueBody(t bcfType, n int) decodedValue {
	dv := decodedValue{t: t, present: true}
	switch t {
	case bcfMissing:
		dv.present = n > 0
	case bcfInt8:
		dv.ints = make([]int32, n)
		for i := 0; i < n; i++ {
			switch v := bf.readInt8(); v {
			case int8Missing:
				dv.ints[i] = int32Missing
			case int8VectorEnd:
				dv.ints[i] = int32VectorEnd
			default:
				dv.ints[i] = int32(v)
			}
		}
	case bcfInt16:
		dv.ints = make([]int32, n)
		for i := 0; i < n; i++ {
			switch v := bf.readInt16(); v {
			case int16Missing:
				dv.ints[i] = int32Missing
			case int16VectorEnd:
				dv.ints[i] = int32VectorEnd
			default:
				dv.ints[i] = int32(v)
			}
		}
	case bcfInt32:
		dv.ints = make([]int32, n)
		for i := 0; i < n; i++ {
			dv.ints[i] = bf.readInt32()
		}
	case bcfFloat:
		dv.floats = make([]float32, n)
		for i := 0; i < n; i++ {
			dv.floats[i] = bf.readFloat32()
		}
	case bcfChar:
		dv.str = string(bf.bytes(n))
	default:
		panic(fmt.Sprintf("bcf: unsupported typed value tag %d", t))
	}
	return dv
}

// filteredInts drops the (already width-normalized) missing and
// vector-end sentinels, per the list-field decoding contract: "Integer
// list fields are filtered to exclude the missing and vector-end
// sentinels before writing."
func filteredInts(raw []int32) []int32 {
	out := raw[:0:0]
	for _, v := range raw {
		if v == int32Missing || v == int32VectorEnd {
			continue
		}
		out = append(out, v)
	}
	return out
}

func filteredFloats(raw []float32) []float32 {
	out := raw[:0:0]
	for _, v := range raw {
		bits := math.Float32bits(v)
		if isFloatMissing(bits) || isFloatVectorEnd(bits) {
			continue
		}
		out = append(out, v)
	}
	return out
}
