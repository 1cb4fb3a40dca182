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
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// dateLayout is used for Date to String coercion.
const dateLayout = "2006-01-02T15:04:05.000Z"

// CoerceToBool converts v to bool.
//
// It returns false for false, numeric zeros, Null, Undefined and Missing, and true for everything else,
// including empty strings, empty objects and arrays, zero dates and NaN.
func (v Value) CoerceToBool() bool {
	switch v.t {
	case TypeBool:
		return v.n != 0
	case TypeInt32, TypeInt64:
		return v.int64() != 0
	case TypeDouble:
		return v.float() != 0
	case TypeDecimal128:
		k := numKeyOf(v)
		return k.r == nil || k.r.Sign() != 0
	case TypeMissing, TypeNull, TypeUndefined:
		return false
	default:
		return true
	}
}

// CoerceToInt32 converts numeric v to int32, truncating fractional part toward zero.
//
// It fails with ErrOverflow for values out of int32 range, NaN and infinities,
// and with ErrTypeMismatch for non-numeric values.
func (v Value) CoerceToInt32() (int32, error) {
	i, err := v.coerceToInteger("CoerceToInt32", math.MinInt32, math.MaxInt32)
	if err != nil {
		return 0, err
	}

	return int32(i), nil
}

// CoerceToInt64 converts numeric v to int64, truncating fractional part toward zero.
//
// It fails with ErrOverflow for values out of int64 range, NaN and infinities,
// and with ErrTypeMismatch for non-numeric values.
func (v Value) CoerceToInt64() (int64, error) {
	return v.coerceToInteger("CoerceToInt64", math.MinInt64, math.MaxInt64)
}

// coerceToInteger implements integer coercions for [lo, hi] range.
func (v Value) coerceToInteger(method string, lo, hi int64) (int64, error) {
	overflow := func() error {
		return newErrorf(ErrOverflow, "types.Value.%s: can't coerce out of range value %s", method, v)
	}

	switch v.t {
	case TypeInt32, TypeInt64:
		i := v.int64()
		if i < lo || i > hi {
			return 0, overflow()
		}

		return i, nil

	case TypeDouble:
		f := v.float()

		// float64(hi) is rounded up to the next power of two for int64
		if math.IsNaN(f) || f < float64(lo) || f > float64(hi) || (hi == math.MaxInt64 && f >= float64(hi)) {
			return 0, overflow()
		}

		return int64(f), nil

	case TypeDecimal128:
		k := numKeyOf(v)
		if k.r == nil || k.r.Cmp(new(big.Rat).SetInt64(lo)) < 0 || k.r.Cmp(new(big.Rat).SetInt64(hi)) > 0 {
			return 0, overflow()
		}

		return new(big.Int).Quo(k.r.Num(), k.r.Denom()).Int64(), nil

	default:
		return 0, newErrorf(ErrTypeMismatch, "types.Value.%s: can't convert from %s", method, v.t)
	}
}

// CoerceToDouble converts numeric v to float64.
//
// It fails with ErrTypeMismatch for non-numeric values.
func (v Value) CoerceToDouble() (float64, error) {
	switch v.t {
	case TypeDouble:
		return v.float(), nil
	case TypeInt32, TypeInt64:
		return float64(v.int64()), nil
	case TypeDecimal128:
		k := numKeyOf(v)

		switch {
		case k.nan:
			return math.NaN(), nil
		case k.inf != 0:
			return math.Inf(k.inf), nil
		}

		f, _ := k.r.Float64()

		return f, nil
	default:
		return 0, newErrorf(ErrTypeMismatch, "types.Value.CoerceToDouble: can't convert from %s", v.t)
	}
}

// CoerceToDecimal128 converts numeric v to Decimal128.
//
// Doubles are converted using their shortest decimal representation.
// It fails with ErrTypeMismatch for non-numeric values.
func (v Value) CoerceToDecimal128() (primitive.Decimal128, error) {
	var s string

	switch v.t {
	case TypeDecimal128:
		return v.decimal(), nil
	case TypeInt32, TypeInt64:
		s = strconv.FormatInt(v.int64(), 10)
	case TypeDouble:
		f := v.float()

		switch {
		case math.IsNaN(f):
			s = "NaN"
		case math.IsInf(f, 1):
			s = "Infinity"
		case math.IsInf(f, -1):
			s = "-Infinity"
		default:
			s = strconv.FormatFloat(f, 'E', -1, 64)
		}
	default:
		return primitive.Decimal128{}, newErrorf(ErrTypeMismatch, "types.Value.CoerceToDecimal128: can't convert from %s", v.t)
	}

	d, err := primitive.ParseDecimal128(s)
	if err != nil {
		return primitive.Decimal128{}, newErrorf(ErrOverflow, "types.Value.CoerceToDecimal128: %s", err)
	}

	return d, nil
}

// CoerceToDate converts v to time.Time.
//
// Timestamps are converted using their seconds part only.
// It fails with ErrTypeMismatch for other types.
func (v Value) CoerceToDate() (time.Time, error) {
	switch v.t {
	case TypeDate:
		return time.UnixMilli(v.int64()).UTC(), nil
	case TypeTimestamp:
		return time.UnixMilli(int64(Timestamp(v.n).Secs()) * 1000).UTC(), nil
	default:
		return time.Time{}, newErrorf(ErrTypeMismatch, "types.Value.CoerceToDate: can't convert from %s", v.t)
	}
}

// CoerceToString converts v to string.
//
// Numbers, dates and timestamps are rendered in canonical text form;
// Null, Undefined and Missing are rendered as empty strings.
// It fails with ErrTypeMismatch for objects, arrays and other types.
func (v Value) CoerceToString() (string, error) {
	switch v.t {
	case TypeDouble:
		return formatDouble(v.float()), nil
	case TypeInt32, TypeInt64:
		return strconv.FormatInt(v.int64(), 10), nil
	case TypeDecimal128:
		return v.decimal().String(), nil
	case TypeString, TypeSymbol, TypeCode:
		return v.str(), nil
	case TypeDate:
		return time.UnixMilli(v.int64()).UTC().Format(dateLayout), nil
	case TypeTimestamp:
		return Timestamp(v.n).String(), nil
	case TypeNull, TypeUndefined, TypeMissing:
		return "", nil
	default:
		return "", newErrorf(ErrTypeMismatch, "types.Value.CoerceToString: can't convert from %s", v.t)
	}
}

// CoerceToTimestamp returns Timestamp payload.
//
// It fails with ErrTypeMismatch for other types, including Date.
func (v Value) CoerceToTimestamp() (Timestamp, error) {
	if v.t != TypeTimestamp {
		return 0, newErrorf(ErrTypeMismatch, "types.Value.CoerceToTimestamp: can't convert from %s", v.t)
	}

	return Timestamp(v.n), nil
}

// formatDouble returns the shortest representation of f.
func formatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
