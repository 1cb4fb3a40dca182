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

package bson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/FerretDB/docvalue/internal/types"
	"github.com/FerretDB/docvalue/internal/util/must"
	"github.com/FerretDB/docvalue/internal/util/testutil"
)

func TestMetadataIndexKey(t *testing.T) {
	t.Parallel()

	md := types.NewMutableDocumentFrom(must.NotFail(types.NewDocument("a", int32(1))))
	md.Metadata().SetIndexKey(must.NotFail(types.NewDocument("b", int32(1))))
	doc := md.Freeze()

	actual, err := EncodeDocumentWithMetadata(doc)
	require.NoError(t, err)

	expected := buildDocument(
		func(b []byte) []byte { return bsoncore.AppendInt32Element(b, "a", 1) },
		func(b []byte) []byte {
			key := buildDocument(func(b []byte) []byte { return bsoncore.AppendInt32Element(b, "b", 1) })
			return bsoncore.AppendDocumentElement(b, "$indexKey", key)
		},
	)
	assert.Equal(t, []byte(expected), []byte(actual))

	decoded, err := DecodeDocumentWithMetadata(actual)
	require.NoError(t, err)
	testutil.AssertEqual(t, doc, decoded)

	plain, err := EncodeDocument(decoded)
	require.NoError(t, err)
	assert.Equal(t, []byte(must.NotFail(EncodeDocument(must.NotFail(types.NewDocument("a", int32(1)))))), []byte(plain))

	withoutMeta, err := DecodeDocument(actual)
	require.NoError(t, err)
	assert.Equal(t, 2, withoutMeta.Len(), "plain decoding keeps reserved names as fields")
	assert.False(t, withoutMeta.HasMetadata())
}

func TestMetadataAllFields(t *testing.T) {
	t.Parallel()

	raw := buildDocument(
		func(b []byte) []byte { return bsoncore.AppendInt32Element(b, "a", 1) },
		func(b []byte) []byte { return bsoncore.AppendDoubleElement(b, "$textScore", 9.9) },
		func(b []byte) []byte { return bsoncore.AppendInt32Element(b, "b", 1) },
		func(b []byte) []byte { return bsoncore.AppendInt64Element(b, "$randVal", 42) },
		func(b []byte) []byte { return bsoncore.AppendInt32Element(b, "c", 1) },
		func(b []byte) []byte {
			key := buildDocument(func(b []byte) []byte { return bsoncore.AppendInt32Element(b, "x", 1) })
			return bsoncore.AppendDocumentElement(b, "$sortKey", key)
		},
		func(b []byte) []byte { return bsoncore.AppendInt32Element(b, "d", 1) },
		func(b []byte) []byte { return bsoncore.AppendDoubleElement(b, "$dis", 3.2) },
		func(b []byte) []byte { return bsoncore.AppendInt32Element(b, "e", 1) },
		func(b []byte) []byte {
			pt := buildDocument(
				func(b []byte) []byte { return bsoncore.AppendInt32Element(b, "0", 1) },
				func(b []byte) []byte { return bsoncore.AppendInt32Element(b, "1", 2) },
			)
			return bsoncore.AppendArrayElement(b, "$pt", pt)
		},
		func(b []byte) []byte { return bsoncore.AppendInt32Element(b, "f", 1) },
		func(b []byte) []byte { return bsoncore.AppendDoubleElement(b, "$searchScore", 5.4) },
		func(b []byte) []byte { return bsoncore.AppendInt32Element(b, "g", 1) },
		func(b []byte) []byte { return bsoncore.AppendStringElement(b, "$searchHighlights", "foo") },
		func(b []byte) []byte { return bsoncore.AppendInt32Element(b, "h", 1) },
		func(b []byte) []byte {
			key := buildDocument(func(b []byte) []byte { return bsoncore.AppendInt32Element(b, "y", 1) })
			return bsoncore.AppendDocumentElement(b, "$indexKey", key)
		},
	)

	source, err := DecodeDocumentWithMetadata(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h"}, source.Keys())

	md := types.NewMutableDocument(0)
	md.CopyMetadataFrom(source)
	result := md.Freeze()

	meta := result.Metadata()
	assert.Equal(t, 9.9, meta.TextScore())
	assert.Equal(t, 42.0, meta.RandVal())
	testutil.AssertEqual(t, types.NewInt32(1), meta.SortKey())
	assert.True(t, meta.IsSingleElementSortKey())
	assert.Equal(t, 3.2, meta.GeoNearDistance())
	testutil.AssertEqual(t, types.NewArray(types.NewInt32(1), types.NewInt32(2)), meta.GeoNearPoint())
	assert.Equal(t, 5.4, meta.SearchScore())
	testutil.AssertEqual(t, types.NewString("foo"), meta.SearchHighlights())
	testutil.AssertEqual(t, must.NotFail(types.NewDocument("y", int32(1))), meta.IndexKey())
	assert.Equal(t, 0, result.Len())
}

func TestMetadataRoundTrip(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		fields []any
		set    func(m *types.MutableMetadata)
	}{
		"NoValues": {
			set: func(m *types.MutableMetadata) {
				m.SetTextScore(10)
				m.SetRandVal(20)
				m.SetSearchScore(30)
				m.SetSearchHighlights(types.NewArray(types.NewString("abc"), types.NewString("def")))
			},
		},
		"WithValues": {
			fields: []any{"foo", int32(10)},
			set: func(m *types.MutableMetadata) {
				m.SetTextScore(10)
				m.SetRandVal(20)
				m.SetSearchScore(30)
				m.SetSearchHighlights(types.NewArray(types.NewString("abc"), types.NewString("def")))
				m.SetIndexKey(must.NotFail(types.NewDocument("key", int32(42))))
			},
		},
		"SearchHighlightsNonArray": {
			set: func(m *types.MutableMetadata) {
				m.SetSearchHighlights(types.NewDouble(1.23))
			},
		},
		"SortKeyCompound": {
			fields: []any{"a", "b"},
			set: func(m *types.MutableMetadata) {
				m.SetSortKey(types.NewArray(types.NewInt32(1), types.NewString("x")), false)
			},
		},
		"SortKeySingleArray": {
			set: func(m *types.MutableMetadata) {
				m.SetSortKey(types.NewArray(types.NewInt32(1), types.NewString("x")), true)
			},
		},
		"GeoNear": {
			set: func(m *types.MutableMetadata) {
				m.SetGeoNearDistance(1.5)
				m.SetGeoNearPoint(must.NotFail(types.ValueOf(must.NotFail(types.NewDocument("type", "Point")))))
			},
		},
	} {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			md := types.NewMutableDocumentFrom(must.NotFail(types.NewDocument(tc.fields...)))
			tc.set(md.Metadata())
			doc := md.Freeze()

			raw, err := EncodeDocumentWithMetadata(doc)
			require.NoError(t, err)

			actual, err := DecodeDocumentWithMetadata(raw)
			require.NoError(t, err)
			testutil.AssertEqual(t, doc, actual)

			expected, err := EncodeDocument(doc)
			require.NoError(t, err)

			plain, err := EncodeDocument(actual)
			require.NoError(t, err)
			assert.Equal(t, []byte(expected), []byte(plain))
		})
	}
}

func TestMetadataDepth(t *testing.T) {
	t.Parallel()

	enc := &Encoder{MaxDepth: 2}

	nested := types.NewDocumentValue(nest(2))

	_, err := enc.EncodeDocument(must.NotFail(types.NewDocument("a", nested)))
	assert.Equal(t, types.ErrOverflow, types.ErrorCodeOf(err))

	for name, set := range map[string]func(m *types.MutableMetadata){
		"SearchHighlights": func(m *types.MutableMetadata) { m.SetSearchHighlights(nested) },
		"GeoNearPoint":     func(m *types.MutableMetadata) { m.SetGeoNearPoint(nested) },
		"IndexKey":         func(m *types.MutableMetadata) { m.SetIndexKey(nest(2)) },
		"SortKey":          func(m *types.MutableMetadata) { m.SetSortKey(nested, true) },
	} {
		name, set := name, set
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			md := types.NewMutableDocument(0)
			set(md.Metadata())

			_, err := enc.EncodeDocumentWithMetadata(md.Freeze())
			assert.Equal(t, types.ErrOverflow, types.ErrorCodeOf(err))
		})
	}

	md := types.NewMutableDocument(0)
	md.Metadata().SetSearchHighlights(types.NewDocumentValue(nest(1)))

	_, err = enc.EncodeDocumentWithMetadata(md.Freeze())
	require.NoError(t, err)
}

func TestMetadataSortKeyNonArray(t *testing.T) {
	t.Parallel()

	compound := types.NewMutableDocument(0)
	compound.Metadata().SetSortKey(types.NewInt32(1), false)

	single := types.NewMutableDocument(0)
	single.Metadata().SetSortKey(types.NewInt32(1), true)

	actual, err := EncodeDocumentWithMetadata(compound.Freeze())
	require.NoError(t, err)

	expected, err := EncodeDocumentWithMetadata(single.Freeze())
	require.NoError(t, err)

	assert.Equal(t, []byte(expected), []byte(actual))
}

func TestMetadataErrors(t *testing.T) {
	t.Parallel()

	for name, raw := range map[string]bsoncore.Document{
		"TextScoreString": buildDocument(func(b []byte) []byte {
			return bsoncore.AppendStringElement(b, "$textScore", "x")
		}),
		"SortKeyScalar": buildDocument(func(b []byte) []byte {
			return bsoncore.AppendInt32Element(b, "$sortKey", 1)
		}),
		"IndexKeyArray": buildDocument(func(b []byte) []byte {
			return bsoncore.AppendArrayElement(b, "$indexKey", buildDocument())
		}),
	} {
		name, raw := name, raw
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeDocumentWithMetadata(raw)
			assert.Equal(t, types.ErrTypeMismatch, types.ErrorCodeOf(err))
		})
	}

	_, err := DecodeDocumentWithMetadata(bsoncore.Document{0x05, 0, 0, 0})
	assert.Equal(t, types.ErrParse, types.ErrorCodeOf(err))
}
