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
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValueOf converts a Go value to Value.
//
// Supported types are Value, Document, []Value, []any, nil (Null),
// float64, int (Int32 if it fits, Int64 otherwise), int32, int64, string, bool, time.Time,
// Binary, uuid.UUID, ObjectID, Regex, Timestamp, DBRef, CodeWithScope and primitive.Decimal128.
// Other types fail with ErrBadValue.
func ValueOf(x any) (Value, error) {
	switch x := x.(type) {
	case Value:
		return x, nil
	case nil:
		return Null, nil
	case Document:
		return NewDocumentValue(x), nil
	case []Value:
		return NewArray(x...), nil
	case []any:
		values := make([]Value, len(x))

		for i, e := range x {
			v, err := ValueOf(e)
			if err != nil {
				return Value{}, err
			}

			values[i] = v
		}

		return NewArray(values...), nil
	case float64:
		return NewDouble(x), nil
	case int:
		if x >= math.MinInt32 && x <= math.MaxInt32 {
			return NewInt32(int32(x)), nil
		}

		return NewInt64(int64(x)), nil
	case int32:
		return NewInt32(x), nil
	case int64:
		return NewInt64(x), nil
	case string:
		return NewString(x), nil
	case bool:
		return NewBool(x), nil
	case time.Time:
		return NewDate(x), nil
	case Binary:
		return NewBinary(x), nil
	case uuid.UUID:
		return NewUUID(x), nil
	case ObjectID:
		return NewObjectID(x), nil
	case Regex:
		return NewRegex(x), nil
	case Timestamp:
		return NewTimestamp(x), nil
	case DBRef:
		return NewDBRef(x), nil
	case CodeWithScope:
		return NewCodeWithScope(x), nil
	case primitive.Decimal128:
		return NewDecimal128(x), nil
	default:
		return Value{}, NewError(ErrBadValue, fmt.Sprintf("types.ValueOf: unsupported type %T", x))
	}
}
