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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FerretDB/docvalue/internal/util/iterator"
	"github.com/FerretDB/docvalue/internal/util/must"
)

func TestDocumentEmpty(t *testing.T) {
	t.Parallel()

	var doc Document
	assert.Equal(t, 0, doc.Len())
	assert.True(t, doc.Empty())
	assert.Equal(t, TypeMissing, doc.Get("a").Type())
	assert.False(t, doc.Has("a"))
	assert.False(t, doc.PositionOf("a").Found())
	assert.Empty(t, doc.Keys())
	assert.Empty(t, doc.Values())
	assert.False(t, doc.HasMetadata())
	assert.Equal(t, "{}", doc.String())

	empty := must.NotFail(NewDocument())
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, Equal, CompareDocuments(doc, empty))
	assert.Equal(t, Less, CompareDocuments(empty, must.NotFail(NewDocument("a", int32(1)))))

	ar := must.NotFail(NewDocument("a", int32(1), "r", int32(2)))
	assert.Equal(t, Equal, CompareDocuments(ar, ar))
}

func TestNewDocumentErrors(t *testing.T) {
	t.Parallel()

	_, err := NewDocument("a")
	assert.Equal(t, ErrBadValue, ErrorCodeOf(err))

	_, err = NewDocument(42, "a")
	assert.Equal(t, ErrBadValue, ErrorCodeOf(err))

	_, err = NewDocument("a", struct{}{})
	assert.Equal(t, ErrBadValue, ErrorCodeOf(err))
}

func TestDocumentDuplicates(t *testing.T) {
	t.Parallel()

	md := NewMutableDocument(0)
	md.AddField("a", NewInt32(1))
	md.AddField("a", NewInt32(2))
	assert.Equal(t, 2, md.Len())

	doc := md.Freeze()
	assert.Equal(t, []string{"a", "a"}, doc.Keys())
	assert.Equal(t, NewInt32(1), doc.Get("a"), "first match wins")
	assert.Equal(t, "{a: 1, a: 2}", doc.String())
}

func TestDocumentTombstones(t *testing.T) {
	t.Parallel()

	doc := must.NotFail(NewDocument("a", int32(1), "b", int32(2), "c", int32(3)))
	pa, pb, pc := doc.PositionOf("a"), doc.PositionOf("b"), doc.PositionOf("c")
	require.True(t, pb.Found())

	md := NewMutableDocumentFrom(doc)
	md.SetField("b", Value{})

	res := md.Freeze()
	assert.Equal(t, 2, res.Len())
	assert.Equal(t, []string{"a", "c"}, res.Keys())
	assert.False(t, res.Has("b"))
	assert.Equal(t, TypeMissing, res.GetAt(pb).Type())

	assert.Equal(t, NewInt32(1), res.GetAt(pa))
	assert.Equal(t, NewInt32(3), res.GetAt(pc))
	assert.Equal(t, pa, res.PositionOf("a"))
	assert.Equal(t, pc, res.PositionOf("c"))

	// source is not modified
	assert.Equal(t, 3, doc.Len())
	assert.Equal(t, NewInt32(2), doc.Get("b"))

	var names []string
	iter := res.Iterator()
	defer iter.Close()

	for {
		name, _, err := iter.Next()
		if errors.Is(err, iterator.ErrIteratorDone) {
			break
		}

		require.NoError(t, err)
		names = append(names, name)
	}

	assert.Equal(t, []string{"a", "c"}, names)

	// re-adding the field reuses the tombstoned slot
	md.Reset(res)
	md.SetField("b", NewString("x"))
	res = md.Freeze()
	assert.Equal(t, []string{"a", "b", "c"}, res.Keys())
	assert.Equal(t, pb, res.PositionOf("b"))
}

func TestDocumentPositionsForeign(t *testing.T) {
	t.Parallel()

	doc := must.NotFail(NewDocument("a", int32(1), "b", int32(2)))
	other := must.NotFail(NewDocument("x", int32(1), "y", int32(2)))

	p := doc.PositionOf("b")
	assert.Equal(t, TypeMissing, other.GetAt(p).Type())
	assert.Equal(t, TypeMissing, doc.GetAt(Position{}).Type())

	md := NewMutableDocumentFrom(other)
	err := md.SetAt(p, NewInt32(3))
	assert.Equal(t, ErrInvariantViolation, ErrorCodeOf(err))
	assert.Equal(t, NewInt32(2), md.GetField("y"))
}

func TestDocumentClone(t *testing.T) {
	t.Parallel()

	doc := must.NotFail(NewDocument(
		"a", must.NotFail(NewDocument("b", int32(1))),
		"arr", []any{int32(1), "x"},
	))

	clone := doc.Clone()
	require.Equal(t, Equal, CompareDocuments(doc, clone))

	assert.NotSame(t, doc.s, clone.s)
	assert.Same(t, doc.Get("a").docStorage(), clone.Get("a").docStorage())
	assert.Same(t, &doc.Get("arr").array()[0], &clone.Get("arr").array()[0])

	md := NewMutableDocumentFrom(clone)
	md.Field("a").Field("b").Set(NewInt32(2))
	clone = md.Freeze()

	assert.Equal(t, NewInt32(1), doc.Get("a").Field("b"))
	assert.Equal(t, NewInt32(2), clone.Get("a").Field("b"))
	assert.NotSame(t, doc.Get("a").docStorage(), clone.Get("a").docStorage())
}

func TestDocumentGetNestedField(t *testing.T) {
	t.Parallel()

	doc := must.NotFail(NewDocument(
		"a", must.NotFail(NewDocument(
			"b", must.NotFail(NewDocument("c", "found")),
			"arr", []any{"zero", must.NotFail(NewDocument("d", int32(42)))},
		)),
		"s", "scalar",
	))

	for name, tc := range map[string]struct {
		path     string
		expected Value
	}{
		"TopLevel":        {path: "s", expected: NewString("scalar")},
		"Nested":          {path: "a.b.c", expected: NewString("found")},
		"ArrayIndex":      {path: "a.arr.0", expected: NewString("zero")},
		"ArrayNested":     {path: "a.arr.1.d", expected: NewInt32(42)},
		"ArrayOutOfRange": {path: "a.arr.2", expected: Value{}},
		"ArrayBadIndex":   {path: "a.arr.x", expected: Value{}},
		"ArraySign":       {path: "a.arr.+1", expected: Value{}},
		"ThroughScalar":   {path: "s.x", expected: Value{}},
		"MissingTop":      {path: "x.y", expected: Value{}},
	} {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			actual := doc.GetNestedField(must.NotFail(NewFieldPath(tc.path)))
			assert.True(t, Identical(tc.expected, actual), "expected %s, got %s", tc.expected, actual)
		})
	}
}

func TestDocumentGetNestedFieldPositions(t *testing.T) {
	t.Parallel()

	doc := must.NotFail(NewDocument(
		"x", int32(0),
		"a", must.NotFail(NewDocument("y", int32(0), "b", "found")),
		"arr", []any{must.NotFail(NewDocument("c", int32(1)))},
	))

	v, positions := doc.GetNestedFieldPositions(must.NotFail(NewFieldPath("a.b")))
	assert.Equal(t, NewString("found"), v)
	require.Len(t, positions, 2)
	assert.Equal(t, doc.PositionOf("a"), positions[0])

	v, positions = doc.GetNestedFieldPositions(must.NotFail(NewFieldPath("a.z")))
	assert.True(t, v.Missing())
	assert.Nil(t, positions)

	// arrays are not traversed
	v, positions = doc.GetNestedFieldPositions(must.NotFail(NewFieldPath("arr.0.c")))
	assert.True(t, v.Missing())
	assert.Nil(t, positions)
}

func TestDocumentApproximateSize(t *testing.T) {
	t.Parallel()

	var empty Document
	assert.Positive(t, empty.ApproximateSize())
	assert.Equal(t, 0, empty.MetadataApproximateSize())

	small := must.NotFail(NewDocument("a", int32(1)))
	big := must.NotFail(NewDocument("a", string(make([]byte, 1000))))
	assert.Greater(t, big.ApproximateSize(), small.ApproximateSize()+1000-1)

	assert.Greater(t, small.ApproximateSize(), small.Len())

	md := NewMutableDocumentFrom(small)
	md.Metadata().SetTextScore(1)
	md.Metadata().SetSearchHighlights(NewArray(NewString("highlight")))

	withMeta := md.Freeze()
	assert.Equal(t, 1, withMeta.Len())
	assert.Positive(t, withMeta.MetadataApproximateSize())
	assert.Less(t, withMeta.MetadataApproximateSize(), 250)
	assert.Equal(t, small.ApproximateSize()+withMeta.MetadataApproximateSize(), withMeta.ApproximateSize())
}
