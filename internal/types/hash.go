// Copyright 2021 FerretDB Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// numeric hash tags
const (
	hashInt byte = iota + 1
	hashFloat
	hashNaN
	hashRat
)

// Hash returns a hash of v.
//
// Values that are equal according to Compare have equal hashes,
// including numbers of different types.
func (v Value) Hash() uint64 {
	return v.HashCombine(0)
}

// HashCombine mixes v's hash into seed and returns the result.
func (v Value) HashCombine(seed uint64) uint64 {
	h := hasher{d: xxhash.New()}
	h.value(v)

	return hashCombine(seed, h.d.Sum64())
}

// HashCombine mixes the document's hash into seed and returns the result.
//
// Metadata is not hashed.
func (d Document) HashCombine(seed uint64) uint64 {
	h := hasher{d: xxhash.New()}
	h.document(d.s)

	return hashCombine(seed, h.d.Sum64())
}

// hashCombine mixes h into seed.
func hashCombine(seed, h uint64) uint64 {
	return seed ^ (h + 0x9e3779b97f4a7c15 + (seed << 6) + (seed >> 2))
}

// hasher writes canonical representation of values into a digest.
type hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func (h *hasher) byte(b byte) {
	h.buf[0] = b
	_, _ = h.d.Write(h.buf[:1])
}

func (h *hasher) uint64(u uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], u)
	_, _ = h.d.Write(h.buf[:])
}

func (h *hasher) string(s string) {
	h.uint64(uint64(len(s)))
	_, _ = h.d.WriteString(s)
}

// value writes v. Types that compare as one class are written the same way.
func (h *hasher) value(v Value) {
	h.byte(byte(v.t.canonical()))

	switch v.t {
	case TypeMissing, TypeMinKey, TypeMaxKey, TypeNull, TypeUndefined:
		// canonical type is enough

	case TypeInt32, TypeInt64, TypeDouble, TypeDecimal128:
		h.number(v)

	case TypeString, TypeSymbol, TypeCode:
		h.string(v.str())

	case TypeObject:
		h.document(v.docStorage())

	case TypeArray:
		arr := v.array()
		h.uint64(uint64(len(arr)))

		for _, e := range arr {
			h.value(e)
		}

	case TypeBinData:
		h.byte(byte(v.sub))
		h.uint64(uint64(len(v.s.bin)))
		_, _ = h.d.Write(v.s.bin)

	case TypeObjectID, TypeBool, TypeDate, TypeTimestamp:
		h.uint64(v.n)
		h.uint64(v.n2)

	case TypeRegex:
		h.string(v.s.str)
		h.string(v.s.str2)

	case TypeDBRef:
		h.string(v.s.str)
		h.uint64(v.n)
		h.uint64(v.n2)

	case TypeCodeWithScope:
		h.string(v.s.str)
		h.document(v.s.doc)

	default:
		panic("not reached")
	}
}

// document writes live fields of storage.
func (h *hasher) document(s *documentStorage) {
	h.uint64(uint64(s.len()))

	for _, f := range s.slots() {
		if f.value.Missing() {
			continue
		}

		h.string(f.name)
		h.value(f.value)
	}
}

// number writes a numeric value so that equal numbers of different types produce the same bytes:
// integers in int64 range are written as integers, other values exactly representable as float64 as floats,
// and the rest as exact rationals.
func (h *hasher) number(v Value) {
	switch v.t {
	case TypeInt32, TypeInt64:
		h.byte(hashInt)
		h.uint64(v.n)
		return

	case TypeDouble:
		f := v.float()

		switch {
		case math.IsNaN(f):
			h.byte(hashNaN)
		case f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64:
			h.byte(hashInt)
			h.uint64(uint64(int64(f)))
		default:
			h.byte(hashFloat)
			h.uint64(math.Float64bits(f))
		}

		return
	}

	k := numKeyOf(v)

	switch {
	case k.nan:
		h.byte(hashNaN)
	case k.inf != 0:
		h.byte(hashFloat)
		h.uint64(math.Float64bits(math.Inf(k.inf)))
	case k.isInt() && k.r.Num().IsInt64():
		h.byte(hashInt)
		h.uint64(uint64(k.r.Num().Int64()))
	default:
		if f, exact := k.r.Float64(); exact {
			h.byte(hashFloat)
			h.uint64(math.Float64bits(f))

			return
		}

		h.byte(hashRat)
		h.string(k.r.RatString())
	}
}
