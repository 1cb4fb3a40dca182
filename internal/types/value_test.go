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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/FerretDB/docvalue/internal/util/must"
)

func TestValueAccessors(t *testing.T) {
	t.Parallel()

	oid := must.NotFail(ParseObjectID("0123456789abcdef01234567"))
	dec := must.NotFail(primitive.ParseDecimal128("1.25"))
	date := time.Date(2009, 2, 13, 23, 31, 30, 123000000, time.UTC)

	assert.Equal(t, int32(42), must.NotFail(NewInt32(42).AsInt32()))
	assert.Equal(t, int64(-7), must.NotFail(NewInt32(-7).AsInt64()))
	assert.Equal(t, int64(math.MaxInt64), must.NotFail(NewInt64(math.MaxInt64).AsInt64()))
	assert.Equal(t, 5.0, must.NotFail(NewInt64(5).AsDouble()))
	assert.Equal(t, 3.5, must.NotFail(NewDouble(3.5).AsDouble()))
	assert.Equal(t, dec, must.NotFail(NewDecimal128(dec).AsDecimal128()))
	assert.Equal(t, "foo\x00bar", must.NotFail(NewString("foo\x00bar").AsString()))
	assert.Equal(t, "sym", must.NotFail(NewSymbol("sym").AsSymbol()))
	assert.Equal(t, "function() {}", must.NotFail(NewCode("function() {}").AsCode()))
	assert.Equal(t, oid, must.NotFail(NewObjectID(oid).AsObjectID()))
	assert.True(t, must.NotFail(NewBool(true).AsBool()))
	assert.False(t, must.NotFail(NewBool(false).AsBool()))
	assert.Equal(t, date, must.NotFail(NewDate(date).AsDate()))
	assert.Equal(t, int64(-1), must.NotFail(NewDateMillis(-1).AsDateMillis()))
	assert.Equal(t, MakeTimestamp(777, 666), must.NotFail(NewTimestamp(MakeTimestamp(777, 666)).AsTimestamp()))
	assert.Equal(t, Regex{Pattern: "^a", Options: "i"}, must.NotFail(NewRegex(Regex{Pattern: "^a", Options: "i"}).AsRegex()))
	assert.Equal(t, DBRef{Namespace: "db.c", ID: oid}, must.NotFail(NewDBRef(DBRef{Namespace: "db.c", ID: oid}).AsDBRef()))

	bin := Binary{Subtype: BinaryUser, B: []byte{0, 1, 2}}
	assert.Equal(t, bin, must.NotFail(NewBinary(bin).AsBinary()))

	scope := must.NotFail(NewDocument("x", int32(1)))
	cws := must.NotFail(NewCodeWithScope(CodeWithScope{Code: "x", Scope: scope}).AsCodeWithScope())
	assert.Equal(t, "x", cws.Code)
	assert.True(t, IdenticalDocuments(scope, cws.Scope))

	u := uuid.New()
	assert.Equal(t, u, must.NotFail(must.NotFail(NewUUID(u).AsBinary()).UUID()))
}

func TestValueTypeMismatch(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		f func() error
	}{
		"Int32FromInt64":    {f: func() error { _, err := NewInt64(1).AsInt32(); return err }},
		"Int64FromDouble":   {f: func() error { _, err := NewDouble(1).AsInt64(); return err }},
		"DoubleFromString":  {f: func() error { _, err := NewString("1").AsDouble(); return err }},
		"StringFromSymbol":  {f: func() error { _, err := NewSymbol("a").AsString(); return err }},
		"DocumentFromArray": {f: func() error { _, err := NewArray().AsDocument(); return err }},
		"ArrayFromMissing":  {f: func() error { _, err := Value{}.AsArray(); return err }},
		"DateFromTimestamp": {f: func() error { _, err := NewTimestamp(1).AsDate(); return err }},
		"BoolFromNull":      {f: func() error { _, err := Null.AsBool(); return err }},
	} {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := tc.f()
			require.Error(t, err)
			assert.Equal(t, ErrTypeMismatch, ErrorCodeOf(err))
		})
	}
}

func TestValueMissing(t *testing.T) {
	t.Parallel()

	var v Value
	assert.True(t, v.Missing())
	assert.Equal(t, TypeMissing, v.Type())
	assert.True(t, v.Nullish())
	assert.True(t, Null.Nullish())
	assert.True(t, Undefined.Nullish())
	assert.False(t, NewInt32(0).Nullish())
	assert.False(t, Null.Missing())
}

func TestValueSubFields(t *testing.T) {
	t.Parallel()

	inner := must.NotFail(NewDocument("c", "foo"))
	val := must.NotFail(ValueOf(must.NotFail(NewDocument(
		"a", []any{
			must.NotFail(NewDocument("b", []any{int32(1), inner})),
		},
	))))

	assert.Equal(t, "foo", must.NotFail(val.Field("a").Index(0).Field("b").Index(1).Field("c").AsString()))
	assert.True(t, val.Field("a").Index(999).Missing())
	assert.True(t, val.Field("a").Index(-1).Missing())
	assert.True(t, val.Field("x").Missing())
	assert.True(t, val.Index(0).Missing())
	assert.True(t, NewInt32(1).Field("a").Missing())
	assert.Equal(t, 1, val.Field("a").ArrayLen())
}

func TestNewArrayCopies(t *testing.T) {
	t.Parallel()

	values := []Value{NewInt32(1), NewInt32(2)}
	arr := NewArray(values...)
	values[0] = NewString("changed")

	assert.Equal(t, int32(1), must.NotFail(arr.Index(0).AsInt32()))
}

func TestNewBinaryCopies(t *testing.T) {
	t.Parallel()

	b := []byte{1, 2, 3}
	v := NewBinary(Binary{B: b})
	b[0] = 42

	assert.Equal(t, []byte{1, 2, 3}, must.NotFail(v.AsBinary()).B)
}

func TestValueOf(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		in       any
		expected Type
	}{
		"Nil":       {in: nil, expected: TypeNull},
		"Int":       {in: 42, expected: TypeInt32},
		"IntLarge":  {in: math.MaxInt32 + 1, expected: TypeInt64},
		"Int32":     {in: int32(1), expected: TypeInt32},
		"Int64":     {in: int64(1), expected: TypeInt64},
		"Float":     {in: 1.5, expected: TypeDouble},
		"String":    {in: "s", expected: TypeString},
		"Bool":      {in: true, expected: TypeBool},
		"Time":      {in: time.Unix(0, 0), expected: TypeDate},
		"Document":  {in: Document{}, expected: TypeObject},
		"Values":    {in: []Value{Null}, expected: TypeArray},
		"Any":       {in: []any{1, "a"}, expected: TypeArray},
		"Regex":     {in: Regex{Pattern: "a"}, expected: TypeRegex},
		"Timestamp": {in: Timestamp(1), expected: TypeTimestamp},
		"ObjectID":  {in: ObjectID{}, expected: TypeObjectID},
		"Decimal":   {in: primitive.NewDecimal128(0, 1), expected: TypeDecimal128},
		"UUID":      {in: uuid.Nil, expected: TypeBinData},
		"Value":     {in: MaxKey, expected: TypeMaxKey},
	} {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			v, err := ValueOf(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, v.Type())
		})
	}

	_, err := ValueOf(struct{}{})
	assert.Equal(t, ErrBadValue, ErrorCodeOf(err))

	_, err = ValueOf([]any{1, uint8(1)})
	assert.Equal(t, ErrBadValue, ErrorCodeOf(err))
}

func TestTypeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "int", TypeInt32.String())
	assert.Equal(t, "missing", TypeMissing.String())
	assert.Equal(t, "maxKey", TypeMaxKey.String())
	assert.Equal(t, "Type(42)", Type(42).String())

	assert.True(t, TypeMinKey.Valid())
	assert.True(t, TypeDecimal128.Valid())
	assert.False(t, Type(20).Valid())
	assert.False(t, Type(-2).Valid())
}

func TestBinaryUUID(t *testing.T) {
	t.Parallel()

	_, err := Binary{Subtype: BinaryGeneric, B: make([]byte, 16)}.UUID()
	assert.Equal(t, ErrTypeMismatch, ErrorCodeOf(err))

	_, err = Binary{Subtype: BinaryUUID, B: make([]byte, 3)}.UUID()
	assert.Equal(t, ErrTypeMismatch, ErrorCodeOf(err))
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	ts := MakeTimestamp(math.MaxUint32, 2)
	assert.Equal(t, uint32(math.MaxUint32), ts.Secs())
	assert.Equal(t, uint32(2), ts.Inc())
	assert.Equal(t, "Timestamp(4294967295, 2)", ts.String())
	assert.Equal(t, time.Unix(777, 0).UTC(), MakeTimestamp(777, 666).Time())
}
