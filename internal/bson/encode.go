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
	"strconv"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/FerretDB/docvalue/internal/types"
	"github.com/FerretDB/docvalue/internal/util/iterator"
	"github.com/FerretDB/docvalue/internal/util/lazyerrors"
	"github.com/FerretDB/docvalue/internal/util/must"
)

// EncodeDocument encodes document to BSON.
//
// Metadata is not encoded.
// It fails with types.ErrOverflow if the document is nested deeper than MaxDepth.
func (e *Encoder) EncodeDocument(doc types.Document) (bsoncore.Document, error) {
	b, err := e.appendDocument(nil, doc, 1)
	if err != nil {
		return nil, err
	}

	return bsoncore.Document(b), nil
}

// AppendValueElement appends value as a BSON element with the given key.
//
// Missing value is not appended; dst is returned as is.
// Documents and arrays inside the value have depth 1.
func (e *Encoder) AppendValueElement(dst []byte, key string, v types.Value) ([]byte, error) {
	return e.appendElement(dst, key, v, 0)
}

// checkDepth returns an error if depth exceeds the limit.
func (e *Encoder) checkDepth(depth int) error {
	if depth <= e.maxDepth() {
		return nil
	}

	msg := "bson.Encoder: document is nested deeper than " + strconv.Itoa(e.maxDepth()) + " levels"

	return types.NewError(types.ErrOverflow, msg)
}

// appendDocument appends fields of the document at the given depth.
func (e *Encoder) appendDocument(dst []byte, doc types.Document, depth int) ([]byte, error) {
	if err := e.checkDepth(depth); err != nil {
		return nil, err
	}

	idx, dst := bsoncore.AppendDocumentStart(dst)

	iter := doc.Iterator()
	defer iter.Close()

	for {
		name, v, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.ErrIteratorDone) {
				break
			}

			return nil, lazyerrors.Error(err)
		}

		if dst, err = e.appendElement(dst, name, v, depth); err != nil {
			return nil, err
		}
	}

	return appendEnd(dst, idx)
}

// appendArray appends array elements at the given depth, skipping Missing values.
func (e *Encoder) appendArray(dst []byte, arr []types.Value, depth int) ([]byte, error) {
	if err := e.checkDepth(depth); err != nil {
		return nil, err
	}

	idx, dst := bsoncore.AppendArrayStart(dst)

	var i int

	for _, v := range arr {
		if v.Missing() {
			continue
		}

		var err error
		if dst, err = e.appendElement(dst, strconv.Itoa(i), v, depth); err != nil {
			return nil, err
		}

		i++
	}

	return appendEnd(dst, idx)
}

// appendEnd finishes document or array started at idx.
func appendEnd(dst []byte, idx int32) ([]byte, error) {
	dst, err := bsoncore.AppendDocumentEnd(dst, idx)
	if err != nil {
		return nil, lazyerrors.Error(err)
	}

	return dst, nil
}

// appendElement appends a single element for a value stored in a container of the given depth.
//
// It panics if v has unexpected type.
func (e *Encoder) appendElement(dst []byte, key string, v types.Value, depth int) ([]byte, error) {
	switch t := v.Type(); t {
	case types.TypeMissing:
		return dst, nil

	case types.TypeObject:
		dst = bsoncore.AppendHeader(dst, bsontype.EmbeddedDocument, key)
		return e.appendDocument(dst, must.NotFail(v.AsDocument()), depth+1)

	case types.TypeArray:
		dst = bsoncore.AppendHeader(dst, bsontype.Array, key)
		return e.appendArray(dst, must.NotFail(v.AsArray()), depth+1)

	case types.TypeCodeWithScope:
		cws := must.NotFail(v.AsCodeWithScope())

		scope, err := e.appendDocument(nil, cws.Scope, depth+1)
		if err != nil {
			return nil, err
		}

		return bsoncore.AppendCodeWithScopeElement(dst, key, cws.Code, scope), nil

	case types.TypeDouble:
		return bsoncore.AppendDoubleElement(dst, key, must.NotFail(v.AsDouble())), nil

	case types.TypeString:
		return bsoncore.AppendStringElement(dst, key, must.NotFail(v.AsString())), nil

	case types.TypeBinData:
		b := must.NotFail(v.AsBinary())
		return bsoncore.AppendBinaryElement(dst, key, byte(b.Subtype), b.B), nil

	case types.TypeUndefined:
		return bsoncore.AppendUndefinedElement(dst, key), nil

	case types.TypeObjectID:
		return bsoncore.AppendObjectIDElement(dst, key, primitive.ObjectID(must.NotFail(v.AsObjectID()))), nil

	case types.TypeBool:
		return bsoncore.AppendBooleanElement(dst, key, must.NotFail(v.AsBool())), nil

	case types.TypeDate:
		return bsoncore.AppendDateTimeElement(dst, key, must.NotFail(v.AsDateMillis())), nil

	case types.TypeNull:
		return bsoncore.AppendNullElement(dst, key), nil

	case types.TypeRegex:
		re := must.NotFail(v.AsRegex())
		return bsoncore.AppendRegexElement(dst, key, re.Pattern, re.Options), nil

	case types.TypeDBRef:
		ref := must.NotFail(v.AsDBRef())
		return bsoncore.AppendDBPointerElement(dst, key, ref.Namespace, primitive.ObjectID(ref.ID)), nil

	case types.TypeCode:
		return bsoncore.AppendJavaScriptElement(dst, key, must.NotFail(v.AsCode())), nil

	case types.TypeSymbol:
		return bsoncore.AppendSymbolElement(dst, key, must.NotFail(v.AsSymbol())), nil

	case types.TypeInt32:
		return bsoncore.AppendInt32Element(dst, key, must.NotFail(v.AsInt32())), nil

	case types.TypeTimestamp:
		ts := must.NotFail(v.AsTimestamp())
		return bsoncore.AppendTimestampElement(dst, key, ts.Secs(), ts.Inc()), nil

	case types.TypeInt64:
		return bsoncore.AppendInt64Element(dst, key, must.NotFail(v.AsInt64())), nil

	case types.TypeDecimal128:
		return bsoncore.AppendDecimal128Element(dst, key, must.NotFail(v.AsDecimal128())), nil

	case types.TypeMinKey:
		return bsoncore.AppendMinKeyElement(dst, key), nil

	case types.TypeMaxKey:
		return bsoncore.AppendMaxKeyElement(dst, key), nil

	default:
		panic("bson.Encoder: unexpected type " + t.String())
	}
}
