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

// Package types provides the in-memory value and document model.
//
// Value is an immutable tagged union over all BSON types plus Missing.
// Scalars are stored inline; strings, binary data, documents, arrays and other heap-resident
// payloads are shared between copies of the same Value.
//
// Document is an immutable ordered sequence of fields (duplicate names are allowed)
// with an attached Metadata block.
// New documents are produced by MutableDocument, which copies shared storage
// only on the first divergent write.
//
// # Mapping
//
//	Type               Constructor         Accessor
//	TypeMinKey         MinKey              -
//	TypeMissing        Value{}             -
//	TypeDouble         NewDouble           AsDouble
//	TypeString         NewString           AsString
//	TypeObject         NewDocumentValue    AsDocument
//	TypeArray          NewArray            AsArray
//	TypeBinData        NewBinary           AsBinary
//	TypeUndefined      Undefined           -
//	TypeObjectID       NewObjectID         AsObjectID
//	TypeBool           NewBool             AsBool
//	TypeDate           NewDate             AsDate
//	TypeNull           Null                -
//	TypeRegex          NewRegex            AsRegex
//	TypeDBRef          NewDBRef            AsDBRef
//	TypeCode           NewCode             AsCode
//	TypeSymbol         NewSymbol           AsSymbol
//	TypeCodeWithScope  NewCodeWithScope    AsCodeWithScope
//	TypeInt32          NewInt32            AsInt32
//	TypeTimestamp      NewTimestamp        AsTimestamp
//	TypeInt64          NewInt64            AsInt64
//	TypeDecimal128     NewDecimal128       AsDecimal128
//	TypeMaxKey         MaxKey              -
package types

import "fmt"

// Type represents a Value variant.
//
// Values match BSON type bytes; Missing has no BSON representation.
type Type int8

const (
	TypeMinKey        Type = -1  // minKey
	TypeMissing       Type = 0   // missing
	TypeDouble        Type = 1   // double
	TypeString        Type = 2   // string
	TypeObject        Type = 3   // object
	TypeArray         Type = 4   // array
	TypeBinData       Type = 5   // binData
	TypeUndefined     Type = 6   // undefined
	TypeObjectID      Type = 7   // objectId
	TypeBool          Type = 8   // bool
	TypeDate          Type = 9   // date
	TypeNull          Type = 10  // null
	TypeRegex         Type = 11  // regex
	TypeDBRef         Type = 12  // dbPointer
	TypeCode          Type = 13  // javascript
	TypeSymbol        Type = 14  // symbol
	TypeCodeWithScope Type = 15  // javascriptWithScope
	TypeInt32         Type = 16  // int
	TypeTimestamp     Type = 17  // timestamp
	TypeInt64         Type = 18  // long
	TypeDecimal128    Type = 19  // decimal
	TypeMaxKey        Type = 127 // maxKey
)

// String returns the type alias used in query languages.
func (t Type) String() string {
	switch t {
	case TypeMinKey:
		return "minKey"
	case TypeMissing:
		return "missing"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeBinData:
		return "binData"
	case TypeUndefined:
		return "undefined"
	case TypeObjectID:
		return "objectId"
	case TypeBool:
		return "bool"
	case TypeDate:
		return "date"
	case TypeNull:
		return "null"
	case TypeRegex:
		return "regex"
	case TypeDBRef:
		return "dbPointer"
	case TypeCode:
		return "javascript"
	case TypeSymbol:
		return "symbol"
	case TypeCodeWithScope:
		return "javascriptWithScope"
	case TypeInt32:
		return "int"
	case TypeTimestamp:
		return "timestamp"
	case TypeInt64:
		return "long"
	case TypeDecimal128:
		return "decimal"
	case TypeMaxKey:
		return "maxKey"
	default:
		return fmt.Sprintf("Type(%d)", int8(t))
	}
}

// Valid returns true if t is one of the known variants.
func (t Type) Valid() bool {
	switch t {
	case TypeMinKey, TypeMaxKey:
		return true
	default:
		return t >= TypeMissing && t <= TypeDecimal128
	}
}

// Numeric returns true for Int32, Int64, Double and Decimal128.
func (t Type) Numeric() bool {
	switch t {
	case TypeInt32, TypeInt64, TypeDouble, TypeDecimal128:
		return true
	default:
		return false
	}
}

// canonical returns the rank of the type in the cross-type order.
//
// Types with the same rank are compared by value as one class.
func (t Type) canonical() int {
	switch t {
	case TypeMinKey:
		return -1
	case TypeMissing:
		return 0
	case TypeUndefined:
		return 2
	case TypeNull:
		return 5
	case TypeInt32, TypeInt64, TypeDouble, TypeDecimal128:
		return 10
	case TypeString, TypeSymbol:
		return 15
	case TypeObject:
		return 20
	case TypeArray:
		return 25
	case TypeBinData:
		return 30
	case TypeObjectID:
		return 35
	case TypeBool:
		return 40
	case TypeDate:
		return 45
	case TypeTimestamp:
		return 47
	case TypeRegex:
		return 50
	case TypeDBRef:
		return 55
	case TypeCode:
		return 60
	case TypeCodeWithScope:
		return 65
	case TypeMaxKey:
		return 127
	default:
		panic(fmt.Sprintf("types.Type.canonical: unexpected type %d", int8(t)))
	}
}
