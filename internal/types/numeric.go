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
	"math"
	"math/big"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// numKey is an exact representation of a numeric value of any type.
type numKey struct {
	r   *big.Rat // nil for NaN and infinities
	inf int      // +1 or -1 for infinities
	nan bool
}

// numKeyOf returns the exact representation of numeric v.
func numKeyOf(v Value) numKey {
	switch v.t {
	case TypeInt32, TypeInt64:
		return numKey{r: new(big.Rat).SetInt64(v.int64())}

	case TypeDouble:
		f := v.float()

		switch {
		case math.IsNaN(f):
			return numKey{nan: true}
		case math.IsInf(f, 1):
			return numKey{inf: 1}
		case math.IsInf(f, -1):
			return numKey{inf: -1}
		}

		return numKey{r: new(big.Rat).SetFloat64(f)}

	case TypeDecimal128:
		return decimalKey(v.decimal())

	default:
		panic("types.numKeyOf: not a number: " + v.t.String())
	}
}

// decimalKey returns the exact representation of d.
func decimalKey(d primitive.Decimal128) numKey {
	if d.IsNaN() {
		return numKey{nan: true}
	}

	if inf := d.IsInf(); inf != 0 {
		return numKey{inf: inf}
	}

	bi, exp, err := d.BigInt()
	if err != nil {
		return numKey{nan: true}
	}

	r := new(big.Rat).SetInt(bi)

	switch {
	case exp > 0:
		r.Mul(r, new(big.Rat).SetInt(pow10(exp)))
	case exp < 0:
		r.Quo(r, new(big.Rat).SetInt(pow10(-exp)))
	}

	return numKey{r: r}
}

// pow10 returns 10**n.
func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// compare compares two numeric keys; NaN is equal to NaN and less than any other number.
func (k numKey) compare(o numKey) CompareResult {
	switch {
	case k.nan && o.nan:
		return Equal
	case k.nan:
		return Less
	case o.nan:
		return Greater
	case k.inf != 0 || o.inf != 0:
		return compareOrdered(k.inf, o.inf)
	default:
		return CompareResult(k.r.Cmp(o.r))
	}
}

// isInt returns true if k is a finite integer.
func (k numKey) isInt() bool {
	return k.r != nil && k.r.IsInt()
}

// GetWidestNumeric returns the widest of two numeric types
// using Int32 < Int64 < Double < Decimal128 order.
//
// It returns TypeUndefined if any of types is not numeric.
func GetWidestNumeric(a, b Type) Type {
	rank := func(t Type) int {
		switch t {
		case TypeInt32:
			return 1
		case TypeInt64:
			return 2
		case TypeDouble:
			return 3
		case TypeDecimal128:
			return 4
		default:
			return 0
		}
	}

	ra, rb := rank(a), rank(b)
	if ra == 0 || rb == 0 {
		return TypeUndefined
	}

	if ra >= rb {
		return a
	}

	return b
}

// Integral returns true if v is a number that exactly represents an integer in int32 range.
func (v Value) Integral() bool {
	switch v.t {
	case TypeInt32:
		return true
	case TypeInt64:
		i := v.int64()
		return i >= math.MinInt32 && i <= math.MaxInt32
	case TypeDouble, TypeDecimal128:
		k := numKeyOf(v)
		if !k.isInt() {
			return false
		}

		n := k.r.Num()

		return n.IsInt64() && n.Int64() >= math.MinInt32 && n.Int64() <= math.MaxInt32
	default:
		return false
	}
}

// Integral64Bit returns true if v is a number that exactly represents an integer in int64 range.
func (v Value) Integral64Bit() bool {
	switch v.t {
	case TypeInt32, TypeInt64:
		return true
	case TypeDouble, TypeDecimal128:
		k := numKeyOf(v)
		return k.isInt() && k.r.Num().IsInt64()
	default:
		return false
	}
}
