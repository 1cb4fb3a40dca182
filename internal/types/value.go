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
	"slices"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Value represents a single value of any Type.
//
// Values are immutable and cheap to copy: heap-resident payloads are shared between copies.
// The zero value is Missing.
type Value struct {
	s   *valueStorage
	n   uint64 // Int32, Int64, Double bits, Bool, Date, Timestamp; Decimal128 low bits; ObjectID prefix
	n2  uint64 // Decimal128 high bits; ObjectID suffix
	t   Type
	sub BinarySubtype
}

// valueStorage holds payloads shared between copies of a Value.
//
// It is never modified after construction.
type valueStorage struct {
	str  string           // String, Symbol, Code, Regex pattern, DBRef namespace, CodeWithScope code
	str2 string           // Regex options
	bin  []byte           // BinData
	doc  *documentStorage // Object, CodeWithScope scope
	arr  []Value          // Array
}

var (
	// Null represents BSON value Null.
	Null = Value{t: TypeNull}

	// Undefined represents deprecated BSON value Undefined.
	Undefined = Value{t: TypeUndefined}

	// MinKey represents BSON value MinKey.
	MinKey = Value{t: TypeMinKey}

	// MaxKey represents BSON value MaxKey.
	MaxKey = Value{t: TypeMaxKey}
)

// NewInt32 returns a new Int32 value.
func NewInt32(i int32) Value {
	return Value{t: TypeInt32, n: uint64(int64(i))}
}

// NewInt64 returns a new Int64 value.
func NewInt64(i int64) Value {
	return Value{t: TypeInt64, n: uint64(i)}
}

// NewDouble returns a new Double value.
func NewDouble(f float64) Value {
	return Value{t: TypeDouble, n: math.Float64bits(f)}
}

// NewDecimal128 returns a new Decimal128 value.
func NewDecimal128(d primitive.Decimal128) Value {
	h, l := d.GetBytes()
	return Value{t: TypeDecimal128, n: l, n2: h}
}

// NewString returns a new String value.
func NewString(s string) Value {
	return Value{t: TypeString, s: &valueStorage{str: s}}
}

// NewSymbol returns a new Symbol value.
func NewSymbol(s string) Value {
	return Value{t: TypeSymbol, s: &valueStorage{str: s}}
}

// NewCode returns a new Code value.
func NewCode(code string) Value {
	return Value{t: TypeCode, s: &valueStorage{str: code}}
}

// NewBool returns a new Bool value.
func NewBool(b bool) Value {
	var n uint64
	if b {
		n = 1
	}

	return Value{t: TypeBool, n: n}
}

// NewDate returns a new Date value with millisecond precision.
func NewDate(t time.Time) Value {
	return NewDateMillis(t.UnixMilli())
}

// NewDateMillis returns a new Date value from milliseconds since the Unix epoch.
func NewDateMillis(ms int64) Value {
	return Value{t: TypeDate, n: uint64(ms)}
}

// NewTimestamp returns a new Timestamp value.
func NewTimestamp(ts Timestamp) Value {
	return Value{t: TypeTimestamp, n: uint64(ts)}
}

// NewObjectID returns a new ObjectID value.
func NewObjectID(id ObjectID) Value {
	hi, lo := id.pack()
	return Value{t: TypeObjectID, n: hi, n2: lo}
}

// NewBinary returns a new BinData value. b.B is copied.
func NewBinary(b Binary) Value {
	return Value{t: TypeBinData, sub: b.Subtype, s: &valueStorage{bin: bytes.Clone(b.B)}}
}

// NewUUID returns a new BinData value with UUID subtype.
func NewUUID(u uuid.UUID) Value {
	return NewBinary(Binary{Subtype: BinaryUUID, B: u[:]})
}

// NewRegex returns a new Regex value.
func NewRegex(r Regex) Value {
	return Value{t: TypeRegex, s: &valueStorage{str: r.Pattern, str2: r.Options}}
}

// NewDBRef returns a new DBRef value.
func NewDBRef(ref DBRef) Value {
	hi, lo := ref.ID.pack()
	return Value{t: TypeDBRef, n: hi, n2: lo, s: &valueStorage{str: ref.Namespace}}
}

// NewCodeWithScope returns a new CodeWithScope value.
func NewCodeWithScope(c CodeWithScope) Value {
	c.Scope.s.markShared()
	return Value{t: TypeCodeWithScope, s: &valueStorage{str: c.Code, doc: c.Scope.s}}
}

// NewDocumentValue returns a new Object value that shares d's storage.
func NewDocumentValue(d Document) Value {
	d.s.markShared()
	return newObjectValue(d.s)
}

// newObjectValue returns a new Object value for the given storage without marking it shared.
func newObjectValue(s *documentStorage) Value {
	return Value{t: TypeObject, s: &valueStorage{doc: s}}
}

// NewArray returns a new Array value. The values slice is copied.
func NewArray(values ...Value) Value {
	for _, v := range values {
		v.markShared()
	}

	return Value{t: TypeArray, s: &valueStorage{arr: slices.Clone(values)}}
}

// markShared marks document storage referenced by v as shared,
// so builders that reach it copy it before writing.
func (v Value) markShared() {
	if v.s != nil {
		v.s.doc.markShared()
	}
}

// Type returns the variant of v.
func (v Value) Type() Type {
	return v.t
}

// Missing returns true if v is Missing.
func (v Value) Missing() bool {
	return v.t == TypeMissing
}

// Nullish returns true for Missing, Null and Undefined.
func (v Value) Nullish() bool {
	switch v.t {
	case TypeMissing, TypeNull, TypeUndefined:
		return true
	default:
		return false
	}
}

// Numeric returns true for Int32, Int64, Double and Decimal128.
func (v Value) Numeric() bool {
	return v.t.Numeric()
}

// mismatch returns TypeMismatch error for the given accessor.
func (v Value) mismatch(method string, expected Type) error {
	return newErrorf(ErrTypeMismatch, "types.Value.%s: expected %s, got %s", method, expected, v.t)
}

// int64 returns Int32 and Int64 payload.
func (v Value) int64() int64 {
	return int64(v.n)
}

// float returns Double payload.
func (v Value) float() float64 {
	return math.Float64frombits(v.n)
}

// decimal returns Decimal128 payload.
func (v Value) decimal() primitive.Decimal128 {
	return primitive.NewDecimal128(v.n2, v.n)
}

// str returns string payload.
func (v Value) str() string {
	if v.s == nil {
		return ""
	}

	return v.s.str
}

// docStorage returns Object or CodeWithScope scope storage; it may be nil.
func (v Value) docStorage() *documentStorage {
	if v.s == nil {
		return nil
	}

	return v.s.doc
}

// array returns Array payload.
func (v Value) array() []Value {
	if v.s == nil {
		return nil
	}

	return v.s.arr
}

// AsInt32 returns Int32 payload.
func (v Value) AsInt32() (int32, error) {
	if v.t != TypeInt32 {
		return 0, v.mismatch("AsInt32", TypeInt32)
	}

	return int32(v.int64()), nil
}

// AsInt64 returns Int64 payload. Int32 values are widened.
func (v Value) AsInt64() (int64, error) {
	switch v.t {
	case TypeInt32, TypeInt64:
		return v.int64(), nil
	default:
		return 0, v.mismatch("AsInt64", TypeInt64)
	}
}

// AsDouble returns Double payload. Int32 and Int64 values are converted.
func (v Value) AsDouble() (float64, error) {
	switch v.t {
	case TypeDouble:
		return v.float(), nil
	case TypeInt32, TypeInt64:
		return float64(v.int64()), nil
	default:
		return 0, v.mismatch("AsDouble", TypeDouble)
	}
}

// AsDecimal128 returns Decimal128 payload.
func (v Value) AsDecimal128() (primitive.Decimal128, error) {
	if v.t != TypeDecimal128 {
		return primitive.Decimal128{}, v.mismatch("AsDecimal128", TypeDecimal128)
	}

	return v.decimal(), nil
}

// AsString returns String payload.
func (v Value) AsString() (string, error) {
	if v.t != TypeString {
		return "", v.mismatch("AsString", TypeString)
	}

	return v.str(), nil
}

// AsSymbol returns Symbol payload.
func (v Value) AsSymbol() (string, error) {
	if v.t != TypeSymbol {
		return "", v.mismatch("AsSymbol", TypeSymbol)
	}

	return v.str(), nil
}

// AsCode returns Code payload.
func (v Value) AsCode() (string, error) {
	if v.t != TypeCode {
		return "", v.mismatch("AsCode", TypeCode)
	}

	return v.str(), nil
}

// AsDocument returns Object payload. The returned document shares storage with v.
func (v Value) AsDocument() (Document, error) {
	if v.t != TypeObject {
		return Document{}, v.mismatch("AsDocument", TypeObject)
	}

	return Document{s: v.docStorage()}, nil
}

// AsArray returns Array payload.
//
// The returned slice is shared with v and should not be modified.
func (v Value) AsArray() ([]Value, error) {
	if v.t != TypeArray {
		return nil, v.mismatch("AsArray", TypeArray)
	}

	return v.array(), nil
}

// AsBinary returns BinData payload.
//
// The returned B slice is shared with v and should not be modified.
func (v Value) AsBinary() (Binary, error) {
	if v.t != TypeBinData {
		return Binary{}, v.mismatch("AsBinary", TypeBinData)
	}

	return Binary{Subtype: v.sub, B: v.s.bin}, nil
}

// AsObjectID returns ObjectID payload.
func (v Value) AsObjectID() (ObjectID, error) {
	if v.t != TypeObjectID {
		return ObjectID{}, v.mismatch("AsObjectID", TypeObjectID)
	}

	return unpackObjectID(v.n, v.n2), nil
}

// AsBool returns Bool payload.
func (v Value) AsBool() (bool, error) {
	if v.t != TypeBool {
		return false, v.mismatch("AsBool", TypeBool)
	}

	return v.n != 0, nil
}

// AsDate returns Date payload in UTC.
func (v Value) AsDate() (time.Time, error) {
	ms, err := v.AsDateMillis()
	if err != nil {
		return time.Time{}, err
	}

	return time.UnixMilli(ms).UTC(), nil
}

// AsDateMillis returns Date payload as milliseconds since the Unix epoch.
func (v Value) AsDateMillis() (int64, error) {
	if v.t != TypeDate {
		return 0, v.mismatch("AsDate", TypeDate)
	}

	return v.int64(), nil
}

// AsTimestamp returns Timestamp payload.
func (v Value) AsTimestamp() (Timestamp, error) {
	if v.t != TypeTimestamp {
		return 0, v.mismatch("AsTimestamp", TypeTimestamp)
	}

	return Timestamp(v.n), nil
}

// AsRegex returns Regex payload.
func (v Value) AsRegex() (Regex, error) {
	if v.t != TypeRegex {
		return Regex{}, v.mismatch("AsRegex", TypeRegex)
	}

	return Regex{Pattern: v.s.str, Options: v.s.str2}, nil
}

// AsDBRef returns DBRef payload.
func (v Value) AsDBRef() (DBRef, error) {
	if v.t != TypeDBRef {
		return DBRef{}, v.mismatch("AsDBRef", TypeDBRef)
	}

	return DBRef{Namespace: v.s.str, ID: unpackObjectID(v.n, v.n2)}, nil
}

// AsCodeWithScope returns CodeWithScope payload.
func (v Value) AsCodeWithScope() (CodeWithScope, error) {
	if v.t != TypeCodeWithScope {
		return CodeWithScope{}, v.mismatch("AsCodeWithScope", TypeCodeWithScope)
	}

	return CodeWithScope{Code: v.s.str, Scope: Document{s: v.s.doc}}, nil
}

// ArrayLen returns the number of Array elements, or 0 for other types.
func (v Value) ArrayLen() int {
	if v.t != TypeArray {
		return 0
	}

	return len(v.array())
}

// Field returns the value of the first field with the given name of an Object.
// It returns Missing if v is not an Object or there is no such field.
func (v Value) Field(name string) Value {
	if v.t != TypeObject {
		return Value{}
	}

	return Document{s: v.docStorage()}.Get(name)
}

// Index returns the Array element at the given index.
// It returns Missing if v is not an Array or the index is out of range.
func (v Value) Index(i int) Value {
	arr := v.array()
	if v.t != TypeArray || i < 0 || i >= len(arr) {
		return Value{}
	}

	return arr[i]
}
