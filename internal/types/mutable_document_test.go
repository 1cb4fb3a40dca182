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
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FerretDB/docvalue/internal/util/must"
)

func TestMutableDocumentSetField(t *testing.T) {
	t.Parallel()

	md := NewMutableDocument(0)
	md.SetField("a", NewInt32(1))
	md.SetField("b", NewInt32(2))
	md.SetField("a", NewString("x"))
	assert.Equal(t, 2, md.Len())

	// setting Missing to a non-existing field does nothing
	md.SetField("c", Value{})
	assert.Equal(t, 2, md.Len())

	md.Remove("a")
	md.Remove("nothing")
	assert.Equal(t, 1, md.Len())
	assert.True(t, md.GetField("a").Missing())

	doc := md.Freeze()
	assert.Equal(t, "{b: 2}", doc.String())
}

func TestMutableDocumentFreeze(t *testing.T) {
	t.Parallel()

	md := NewMutableDocument(1)
	md.AddField("a", NewInt32(1))

	doc := md.Freeze()
	assert.Equal(t, 1, doc.Len())

	expected := "InvariantViolation: types.MutableDocument.AddField: builder is frozen, call Reset first"
	assert.PanicsWithError(t, expected, func() { md.AddField("b", NewInt32(2)) })
	assert.Panics(t, func() { md.Freeze() })
	assert.Panics(t, func() { md.Peek() })
	assert.Panics(t, func() { md.Field("a").Set(Null) })

	// frozen document is not affected by Reset and further changes
	md.Reset(doc)
	md.SetField("a", NewInt32(2))
	md.AddField("b", NewInt32(3))
	assert.Equal(t, 2, md.Len())
	assert.Equal(t, NewInt32(1), doc.Get("a"))
	assert.Equal(t, 1, doc.Len())
}

func TestMutableMetadataFrozen(t *testing.T) {
	t.Parallel()

	md := NewMutableDocument(0)
	m := md.Metadata()
	m.SetTextScore(1)

	doc := md.Freeze()

	expected := "InvariantViolation: types.MutableDocument.Metadata.SetTextScore: builder is frozen, call Reset first"
	assert.PanicsWithError(t, expected, func() { m.SetTextScore(99) })
	assert.Panics(t, func() { m.SetIndexKey(doc) })
	assert.Panics(t, func() { m.CopyFrom(doc.Metadata()) })
	assert.Panics(t, func() { m.Get() })
	assert.Panics(t, func() { md.Metadata() })

	assert.Equal(t, 1.0, doc.Metadata().TextScore())

	// handle works again after Reset, without affecting the frozen document
	md.Reset(doc)
	m.SetTextScore(2)
	assert.Equal(t, 2.0, m.Get().TextScore())
	assert.Equal(t, 1.0, doc.Metadata().TextScore())
}

func TestMutableMetadataPeek(t *testing.T) {
	t.Parallel()

	md := NewMutableDocument(0)
	m := md.Metadata()
	m.SetRandVal(0.5)

	peeked := md.Peek()

	m.SetRandVal(0.75)
	m.SetSearchScore(3)

	assert.Equal(t, 0.5, peeked.Metadata().RandVal())
	assert.False(t, peeked.Metadata().HasSearchScore())

	doc := md.Freeze()
	assert.Equal(t, 0.75, doc.Metadata().RandVal())
	assert.Equal(t, 3.0, doc.Metadata().SearchScore())
}

func TestMutableMetadataSelfReference(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		set func(md *MutableDocument)
	}{
		"HandleFirst": {
			set: func(md *MutableDocument) { md.Metadata().SetIndexKey(md.Peek()) },
		},
		"PeekFirst": {
			set: func(md *MutableDocument) {
				peeked := md.Peek()
				md.Metadata().SetIndexKey(peeked)
			},
		},
		"HandleBeforePeek": {
			set: func(md *MutableDocument) {
				m := md.Metadata()
				m.SetIndexKey(md.Peek())
			},
		},
		"SortKey": {
			set: func(md *MutableDocument) { md.Metadata().SetSortKey(NewDocumentValue(md.Peek()), true) },
		},
	} {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			md := NewMutableDocument(1)
			md.AddField("a", NewInt32(1))
			tc.set(md)

			doc := md.Freeze()
			meta := doc.Metadata()

			var inner Document
			if meta.HasIndexKey() {
				inner = meta.IndexKey()
			} else {
				inner = must.NotFail(meta.SortKey().AsDocument())
			}

			require.NotSame(t, doc.s, inner.s)
			assert.False(t, inner.HasMetadata())
			assert.Equal(t, "{a: 1}", inner.String())

			// traversals terminate
			assert.Positive(t, doc.ApproximateSize())
			assert.NotZero(t, NewDocumentValue(doc).Hash())
			assert.Equal(t, "{a: 1}", doc.String())
		})
	}
}

func TestMutableDocumentPeek(t *testing.T) {
	t.Parallel()

	md := NewMutableDocument(0)
	md.AddField("a", NewInt32(1))

	peeked := md.Peek()
	assert.Equal(t, 1, peeked.Len())

	md.SetField("a", NewInt32(2))
	md.Field("n").Field("x").Set(NewBool(true))

	assert.Equal(t, NewInt32(1), peeked.Get("a"))
	assert.False(t, peeked.Has("n"))

	doc := md.Freeze()
	assert.Equal(t, NewInt32(2), doc.Get("a"))
	assert.Equal(t, NewBool(true), doc.Get("n").Field("x"))
}

func TestMutableDocumentInPlace(t *testing.T) {
	t.Parallel()

	md := NewMutableDocument(0)
	md.Field("a").Field("b").Set(NewInt32(1))

	s := md.s
	child := md.s.fields[0].value.docStorage()

	md.Field("a").Field("c").Set(NewInt32(2))
	md.SetField("d", NewInt32(3))

	assert.Same(t, s, md.s, "exclusive storage is modified in place")
	assert.Same(t, child, md.s.fields[0].value.docStorage())

	// value that escaped the builder is not modified
	a := md.GetField("a")
	md.Field("a").Field("b").Set(NewInt32(5))

	assert.Equal(t, NewInt32(1), a.Field("b"))
	assert.Equal(t, NewInt32(5), md.Peek().GetNestedField(must.NotFail(NewFieldPath("a.b"))))
}

func TestMutableDocumentFieldChain(t *testing.T) {
	t.Parallel()

	md := NewMutableDocumentFrom(must.NotFail(NewDocument("x", "scalar", "y", int32(1))))

	md.Field("x").Field("y").Field("z").Set(NewInt32(42))
	assert.Equal(t, NewInt32(42), md.Field("x").Field("y").Field("z").Get())
	assert.True(t, md.Field("x").Field("nope").Get().Missing())
	assert.True(t, md.Field("y").Field("nope").Get().Missing())

	md.SetNestedField(must.NotFail(NewFieldPath("p.q")), NewString("v"))
	assert.Equal(t, NewString("v"), md.GetNestedField(must.NotFail(NewFieldPath("p.q"))))

	md.SetNestedField(must.NotFail(NewFieldPath("p.q")), Value{})
	assert.True(t, md.GetNestedField(must.NotFail(NewFieldPath("p.q"))).Missing())

	doc := md.Freeze()
	assert.Equal(t, `{x: {y: {z: 42}}, y: 1, p: {}}`, doc.String())

	assert.Panics(t, func() { NewMutableDocument(0).SetNestedField(FieldPath{}, Null) })
}

func TestMutableDocumentSetNestedFieldPositions(t *testing.T) {
	t.Parallel()

	doc := must.NotFail(NewDocument(
		"x", int32(0),
		"a", must.NotFail(NewDocument("y", int32(0), "b", "old")),
	))

	_, positions := doc.GetNestedFieldPositions(must.NotFail(NewFieldPath("a.b")))
	require.Len(t, positions, 2)

	md := NewMutableDocumentFrom(doc)
	require.NoError(t, md.SetNestedFieldPositions(positions, NewString("new")))

	res := md.Freeze()
	assert.Equal(t, NewString("new"), res.GetNestedField(must.NotFail(NewFieldPath("a.b"))))
	assert.Equal(t, NewString("old"), doc.GetNestedField(must.NotFail(NewFieldPath("a.b"))))

	// positions stay valid for the new generation
	md.Reset(res)
	require.NoError(t, md.SetNestedFieldPositions(positions, NewString("newer")))
	assert.Equal(t, NewString("newer"), md.Peek().GetNestedField(must.NotFail(NewFieldPath("a.b"))))

	// but not for unrelated documents
	md.Reset(must.NotFail(NewDocument("x", int32(0), "a", int32(1))))

	err := md.SetNestedFieldPositions(positions, NewString("bad"))
	assert.Equal(t, ErrInvariantViolation, ErrorCodeOf(err))

	err = md.SetNestedFieldPositions(nil, NewString("bad"))
	assert.Equal(t, ErrInvariantViolation, ErrorCodeOf(err))

	assert.Equal(t, "{x: 0, a: 1}", md.Freeze().String(), "document is not modified on error")
}

func TestMutableDocumentMetadata(t *testing.T) {
	t.Parallel()

	src := NewMutableDocument(0)
	src.Metadata().SetTextScore(1.5)
	src.Metadata().SetSortKey(NewInt32(7), true)
	src.Metadata().SetIndexKey(must.NotFail(NewDocument("k", int32(1))))
	srcDoc := src.Freeze()

	md := NewMutableDocument(0)
	md.AddField("a", NewInt32(1))
	md.Metadata().SetTextScore(0.5)
	md.Metadata().SetTextScore(2.5)
	md.Metadata().SetRandVal(0.25)
	assert.Equal(t, 2.5, md.Metadata().Get().TextScore(), "last write wins")

	md.CopyMetadataFrom(srcDoc)

	doc := md.Freeze()
	assert.Equal(t, 1, doc.Len(), "metadata is not a field")

	meta := doc.Metadata()
	assert.True(t, meta.HasTextScore())
	assert.Equal(t, 1.5, meta.TextScore())
	assert.True(t, meta.HasRandVal(), "absent fields are left as is")
	assert.Equal(t, 0.25, meta.RandVal())
	assert.True(t, meta.HasSortKey())
	assert.True(t, meta.IsSingleElementSortKey())
	assert.Equal(t, NewInt32(7), meta.SortKey())
	assert.True(t, meta.HasIndexKey())
	assert.Equal(t, "{k: 1}", meta.IndexKey().String())
	assert.False(t, meta.HasGeoNearDistance())
	assert.False(t, meta.HasGeoNearPoint())
	assert.False(t, meta.HasSearchScore())
	assert.False(t, meta.HasSearchHighlights())

	// source metadata is unchanged
	assert.False(t, srcDoc.Metadata().HasRandVal())
	assert.False(t, meta.Equal(srcDoc.Metadata()))

	md.Reset(Document{})
	md.CopyMetadataFrom(doc)
	assert.True(t, md.Freeze().Metadata().Equal(meta))
}

// TestMutableDocumentPositionsStable checks that tombstoning and updating fields
// never changes positions of other fields, for random sequences of operations.
func TestMutableDocumentPositionsStable(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(1, 2))

	for run := 0; run < 100; run++ {
		md := NewMutableDocument(0)
		for i := 0; i < 10; i++ {
			md.AddField("f"+strconv.Itoa(i), NewInt32(int32(i)))
		}

		initial := md.Peek()

		positions := make([]Position, 10)
		for i := range positions {
			positions[i] = initial.PositionOf("f" + strconv.Itoa(i))
		}

		live := make([]bool, 10)
		for i := range live {
			live[i] = true
		}

		for op := 0; op < 30; op++ {
			i := r.IntN(10)
			name := "f" + strconv.Itoa(i)

			switch r.IntN(4) {
			case 0:
				md.Remove(name)
				live[i] = false
			case 1:
				md.SetField(name, NewInt32(int32(i)))
				live[i] = true
			case 2:
				if live[i] {
					require.NoError(t, md.SetAt(positions[i], NewInt32(int32(i))))
				}
			case 3:
				_ = md.Peek()
			}

			doc := md.Peek()
			for j, p := range positions {
				v := doc.GetAt(p)
				if !live[j] {
					assert.True(t, v.Missing())
					continue
				}

				assert.Equal(t, NewInt32(int32(j)), v)
				assert.Equal(t, p, doc.PositionOf("f"+strconv.Itoa(j)))
			}
		}
	}
}
