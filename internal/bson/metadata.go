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
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/FerretDB/docvalue/internal/types"
	"github.com/FerretDB/docvalue/internal/util/iterator"
	"github.com/FerretDB/docvalue/internal/util/lazyerrors"
	"github.com/FerretDB/docvalue/internal/util/must"
)

// Reserved field names used for metadata.
const (
	MetaFieldTextScore        = "$textScore"
	MetaFieldRandVal          = "$randVal"
	MetaFieldSortKey          = "$sortKey"
	MetaFieldGeoNearDistance  = "$dis"
	MetaFieldGeoNearPoint     = "$pt"
	MetaFieldSearchScore      = "$searchScore"
	MetaFieldSearchHighlights = "$searchHighlights"
	MetaFieldIndexKey         = "$indexKey"
)

// EncodeDocumentWithMetadata encodes document to BSON,
// appending every set metadata field after regular fields using reserved names.
//
// Sort key is encoded as a document with empty field names:
// {"": key} for single-element keys, {"": k1, "": k2, ...} for others.
func (e *Encoder) EncodeDocumentWithMetadata(doc types.Document) (bsoncore.Document, error) {
	b, err := e.EncodeDocument(doc)
	if err != nil {
		return nil, err
	}

	meta := doc.Metadata()
	if meta.Empty() {
		return b, nil
	}

	// reopen the document to append metadata fields
	dst := b[:len(b)-1]

	if meta.HasTextScore() {
		dst = bsoncore.AppendDoubleElement(dst, MetaFieldTextScore, meta.TextScore())
	}

	if meta.HasRandVal() {
		dst = bsoncore.AppendDoubleElement(dst, MetaFieldRandVal, meta.RandVal())
	}

	if meta.HasSortKey() {
		key := types.NewMutableDocument(1)

		if meta.IsSingleElementSortKey() {
			key.AddField("", meta.SortKey())
		} else {
			// a compound key set from a non-array value has a single component
			arr, err := meta.SortKey().AsArray()
			if err != nil {
				arr = []types.Value{meta.SortKey()}
			}

			for _, v := range arr {
				key.AddField("", v)
			}
		}

		if dst, err = e.appendElement(dst, MetaFieldSortKey, types.NewDocumentValue(key.Freeze()), 1); err != nil {
			return nil, err
		}
	}

	if meta.HasGeoNearDistance() {
		dst = bsoncore.AppendDoubleElement(dst, MetaFieldGeoNearDistance, meta.GeoNearDistance())
	}

	if meta.HasGeoNearPoint() {
		if dst, err = e.appendElement(dst, MetaFieldGeoNearPoint, meta.GeoNearPoint(), 1); err != nil {
			return nil, err
		}
	}

	if meta.HasSearchScore() {
		dst = bsoncore.AppendDoubleElement(dst, MetaFieldSearchScore, meta.SearchScore())
	}

	if meta.HasSearchHighlights() {
		if dst, err = e.appendElement(dst, MetaFieldSearchHighlights, meta.SearchHighlights(), 1); err != nil {
			return nil, err
		}
	}

	if meta.HasIndexKey() {
		if dst, err = e.appendElement(dst, MetaFieldIndexKey, types.NewDocumentValue(meta.IndexKey()), 1); err != nil {
			return nil, err
		}
	}

	dst = append(dst, 0)
	bsoncore.UpdateLength(dst, 0, int32(len(dst)))

	return bsoncore.Document(dst), nil
}

// DecodeDocumentWithMetadata decodes BSON document,
// moving top-level fields with reserved names into metadata.
//
// Numeric metadata fields accept any numeric type. It fails with types.ErrTypeMismatch
// if a reserved field has unexpected type, and with types.ErrParse if the document is not valid.
func DecodeDocumentWithMetadata(raw bsoncore.Document) (types.Document, error) {
	doc, err := DecodeDocument(raw)
	if err != nil {
		return types.Document{}, err
	}

	md := types.NewMutableDocument(doc.Len())

	var meta types.Metadata

	iter := doc.Iterator()
	defer iter.Close()

	for {
		name, v, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.ErrIteratorDone) {
				break
			}

			return types.Document{}, lazyerrors.Error(err)
		}

		switch name {
		case MetaFieldTextScore:
			err = setDouble(v, name, meta.SetTextScore)

		case MetaFieldRandVal:
			err = setDouble(v, name, meta.SetRandVal)

		case MetaFieldSortKey:
			var key types.Document
			if key, err = v.AsDocument(); err != nil {
				err = metaTypeError(name, v)
				break
			}

			if key.Len() == 1 {
				meta.SetSortKey(key.Values()[0], true)
				break
			}

			meta.SetSortKey(types.NewArray(key.Values()...), false)

		case MetaFieldGeoNearDistance:
			err = setDouble(v, name, meta.SetGeoNearDistance)

		case MetaFieldGeoNearPoint:
			meta.SetGeoNearPoint(v)

		case MetaFieldSearchScore:
			err = setDouble(v, name, meta.SetSearchScore)

		case MetaFieldSearchHighlights:
			meta.SetSearchHighlights(v)

		case MetaFieldIndexKey:
			var key types.Document
			if key, err = v.AsDocument(); err != nil {
				err = metaTypeError(name, v)
				break
			}

			meta.SetIndexKey(key)

		default:
			md.AddField(name, v)
		}

		if err != nil {
			return types.Document{}, err
		}
	}

	if !meta.Empty() {
		md.Metadata().CopyFrom(meta)
	}

	return md.Freeze(), nil
}

// setDouble coerces numeric v and passes it to the setter.
func setDouble(v types.Value, name string, set func(float64)) error {
	if !v.Numeric() {
		return metaTypeError(name, v)
	}

	set(must.NotFail(v.CoerceToDouble()))

	return nil
}

// metaTypeError returns types.ErrTypeMismatch error for the metadata field.
func metaTypeError(name string, v types.Value) error {
	msg := fmt.Sprintf("bson: unexpected type %s of metadata field %q", v.Type(), name)
	return lazyerrors.Error(types.NewError(types.ErrTypeMismatch, msg))
}
