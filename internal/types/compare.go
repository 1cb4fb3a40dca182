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
	"bytes"
	"math"
	"math/big"

	"golang.org/x/exp/constraints"
)

// CompareResult represents the result of a comparison.
type CompareResult int8

// Values match results of comparison functions such as bytes.Compare.
const (
	Equal   CompareResult = 0  // ==
	Less    CompareResult = -1 // <
	Greater CompareResult = 1  // >
)

// String implements fmt.Stringer.
func (r CompareResult) String() string {
	switch r {
	case Equal:
		return "=="
	case Less:
		return "<"
	case Greater:
		return ">"
	default:
		panic("unexpected CompareResult")
	}
}

// Compare compares two values using the canonical total order.
//
// Values of different types are ordered by type:
//
//	MinKey < Missing < Undefined < Null < numbers < strings and symbols < Object < Array <
//	BinData < ObjectID < Bool < Date < Timestamp < Regex < DBRef < Code < CodeWithScope < MaxKey
//
// Numbers of different types are compared by their exact values; NaN equals NaN and is less than any other number.
// Strings are compared byte-wise.
func Compare(a, b Value) CompareResult {
	ca, cb := a.t.canonical(), b.t.canonical()
	if ca != cb {
		return compareOrdered(ca, cb)
	}

	switch a.t {
	case TypeMissing, TypeMinKey, TypeMaxKey, TypeNull, TypeUndefined:
		return Equal

	case TypeInt32, TypeInt64, TypeDouble, TypeDecimal128:
		return compareNumbers(a, b)

	case TypeString, TypeSymbol, TypeCode:
		return compareOrdered(a.str(), b.str())

	case TypeObject:
		return CompareDocuments(Document{s: a.docStorage()}, Document{s: b.docStorage()})

	case TypeArray:
		return compareArrays(a.array(), b.array())

	case TypeBinData:
		ab, bb := a.s.bin, b.s.bin
		if len(ab) != len(bb) {
			return compareOrdered(len(ab), len(bb))
		}

		if a.sub != b.sub {
			return compareOrdered(a.sub, b.sub)
		}

		return CompareResult(bytes.Compare(ab, bb))

	case TypeObjectID:
		if a.n != b.n {
			return compareOrdered(a.n, b.n)
		}

		return compareOrdered(a.n2, b.n2)

	case TypeBool, TypeTimestamp:
		return compareOrdered(a.n, b.n)

	case TypeDate:
		return compareOrdered(a.int64(), b.int64())

	case TypeRegex:
		if res := compareOrdered(a.s.str, b.s.str); res != Equal {
			return res
		}

		return compareOrdered(a.s.str2, b.s.str2)

	case TypeDBRef:
		if res := compareOrdered(a.s.str, b.s.str); res != Equal {
			return res
		}

		if a.n != b.n {
			return compareOrdered(a.n, b.n)
		}

		return compareOrdered(a.n2, b.n2)

	case TypeCodeWithScope:
		if res := compareOrdered(a.s.str, b.s.str); res != Equal {
			return res
		}

		return CompareDocuments(Document{s: a.s.doc}, Document{s: b.s.doc})
	}

	panic("not reached")
}

// CompareDocuments compares documents field by field in order, skipping tombstoned fields.
//
// Fields are compared by the canonical type of their values first, then by names, then by values.
// A document that is a prefix of another one is less. Metadata is not compared.
func CompareDocuments(a, b Document) CompareResult {
	as, bs := a.s.slots(), b.s.slots()

	var i, j int

	for {
		for i < len(as) && as[i].value.Missing() {
			i++
		}

		for j < len(bs) && bs[j].value.Missing() {
			j++
		}

		switch {
		case i == len(as) && j == len(bs):
			return Equal
		case i == len(as):
			return Less
		case j == len(bs):
			return Greater
		}

		af, bf := as[i], bs[j]

		if res := compareOrdered(af.value.t.canonical(), bf.value.t.canonical()); res != Equal {
			return res
		}

		if res := compareOrdered(af.name, bf.name); res != Equal {
			return res
		}

		if res := Compare(af.value, bf.value); res != Equal {
			return res
		}

		i++
		j++
	}
}

// compareArrays compares arrays element by element; a prefix is less.
func compareArrays(a, b []Value) CompareResult {
	for i := 0; i < len(a) && i < len(b); i++ {
		if res := Compare(a[i], b[i]); res != Equal {
			return res
		}
	}

	return compareOrdered(len(a), len(b))
}

// compareNumbers compares numbers of any numeric types.
func compareNumbers(a, b Value) CompareResult {
	switch {
	case a.t == TypeDecimal128 || b.t == TypeDecimal128:
		return numKeyOf(a).compare(numKeyOf(b))

	case a.t == TypeDouble && b.t == TypeDouble:
		return compareDoubles(a.float(), b.float())

	case a.t == TypeDouble:
		return compareDoubleInt(a.float(), b.int64())

	case b.t == TypeDouble:
		return compareInvert(compareDoubleInt(b.float(), a.int64()))

	default:
		return compareOrdered(a.int64(), b.int64())
	}
}

// compareDoubles compares doubles; NaN equals NaN and is less than any other number.
func compareDoubles(a, b float64) CompareResult {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)

	switch {
	case aNaN && bNaN:
		return Equal
	case aNaN:
		return Less
	case bNaN:
		return Greater
	default:
		return compareOrdered(a, b)
	}
}

// compareDoubleInt compares double and integer exactly.
func compareDoubleInt(a float64, b int64) CompareResult {
	switch {
	case math.IsNaN(a):
		return Less
	case math.IsInf(a, 1):
		return Greater
	case math.IsInf(a, -1):
		return Less
	}

	bigA := new(big.Float).SetFloat64(a)
	bigB := new(big.Float).SetInt64(b)

	return CompareResult(bigA.Cmp(bigB))
}

// compareInvert swaps Less and Greater, keeping Equal.
func compareInvert(res CompareResult) CompareResult {
	return -res
}

// compareOrdered compares values of the same type using ==, <, > operators.
func compareOrdered[T constraints.Ordered](a, b T) CompareResult {
	switch {
	case a == b:
		return Equal
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		panic("unsupported order")
	}
}
