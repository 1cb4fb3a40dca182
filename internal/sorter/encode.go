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

package sorter

import (
	"time"

	"github.com/cristalhq/bson/bsonproto"

	"github.com/FerretDB/docvalue/internal/types"
	"github.com/FerretDB/docvalue/internal/util/must"
)

// AppendDocument appends encoded document with its metadata to dst and returns the extended buffer.
//
// Tombstoned fields are not encoded.
func AppendDocument(dst []byte, doc types.Document, s Settings) []byte {
	dst = appendInt32(dst, int32(doc.Len()))

	iter := doc.Iterator()
	defer iter.Close()

	for {
		name, v, err := iter.Next()
		if err != nil {
			break
		}

		dst = append(dst, byte(v.Type()))
		dst = appendString(dst, name)
		dst = appendPayload(dst, v, s)
	}

	if !s.SkipMetadata && doc.HasMetadata() {
		dst = appendMetadata(dst, doc.Metadata(), s)
	}

	return append(dst, tagEnd)
}

// AppendValue appends encoded value to dst and returns the extended buffer.
func AppendValue(dst []byte, v types.Value, s Settings) []byte {
	dst = append(dst, byte(v.Type()))
	return appendPayload(dst, v, s)
}

// appendMetadata appends every set metadata field; the end tag is not appended.
func appendMetadata(dst []byte, m types.Metadata, s Settings) []byte {
	if m.HasTextScore() {
		dst = appendFloat64(append(dst, tagTextScore), m.TextScore())
	}

	if m.HasRandVal() {
		dst = appendFloat64(append(dst, tagRandVal), m.RandVal())
	}

	if m.HasSortKey() {
		var single byte
		if m.IsSingleElementSortKey() {
			single = 1
		}

		dst = AppendValue(append(dst, tagSortKey, single), m.SortKey(), s)
	}

	if m.HasGeoNearDistance() {
		dst = appendFloat64(append(dst, tagGeoNearDistance), m.GeoNearDistance())
	}

	if m.HasGeoNearPoint() {
		dst = AppendValue(append(dst, tagGeoNearPoint), m.GeoNearPoint(), s)
	}

	if m.HasSearchScore() {
		dst = appendFloat64(append(dst, tagSearchScore), m.SearchScore())
	}

	if m.HasSearchHighlights() {
		dst = AppendValue(append(dst, tagSearchHighlights), m.SearchHighlights(), s)
	}

	if m.HasIndexKey() {
		dst = AppendDocument(append(dst, tagIndexKey), m.IndexKey(), s)
	}

	return dst
}

// appendPayload appends value payload without type byte.
//
// It panics if v has unexpected type.
func appendPayload(dst []byte, v types.Value, s Settings) []byte {
	switch t := v.Type(); t {
	case types.TypeMissing, types.TypeMinKey, types.TypeMaxKey, types.TypeNull, types.TypeUndefined:
		return dst

	case types.TypeDouble:
		return appendFloat64(dst, must.NotFail(v.AsDouble()))

	case types.TypeString:
		return appendString(dst, must.NotFail(v.AsString()))

	case types.TypeSymbol:
		return appendString(dst, must.NotFail(v.AsSymbol()))

	case types.TypeCode:
		return appendString(dst, must.NotFail(v.AsCode()))

	case types.TypeObject:
		return AppendDocument(dst, must.NotFail(v.AsDocument()), s)

	case types.TypeArray:
		arr := must.NotFail(v.AsArray())

		dst = appendInt32(dst, int32(len(arr)))
		for _, e := range arr {
			dst = AppendValue(dst, e, s)
		}

		return dst

	case types.TypeBinData:
		b := must.NotFail(v.AsBinary())
		bin := bsonproto.Binary{B: b.B, Subtype: bsonproto.BinarySubtype(b.Subtype)}

		return appendSized(dst, bsonproto.SizeBinary(bin), func(b []byte) { bsonproto.EncodeBinary(b, bin) })

	case types.TypeObjectID:
		return appendObjectID(dst, must.NotFail(v.AsObjectID()))

	case types.TypeBool:
		b := must.NotFail(v.AsBool())
		return appendSized(dst, bsonproto.SizeBool, func(buf []byte) { bsonproto.EncodeBool(buf, b) })

	case types.TypeDate:
		d := time.UnixMilli(must.NotFail(v.AsDateMillis()))
		return appendSized(dst, bsonproto.SizeTime, func(b []byte) { bsonproto.EncodeTime(b, d) })

	case types.TypeRegex:
		re := must.NotFail(v.AsRegex())
		return appendString(appendString(dst, re.Pattern), re.Options)

	case types.TypeDBRef:
		ref := must.NotFail(v.AsDBRef())
		return appendObjectID(appendString(dst, ref.Namespace), ref.ID)

	case types.TypeCodeWithScope:
		cws := must.NotFail(v.AsCodeWithScope())
		return AppendDocument(appendString(dst, cws.Code), cws.Scope, s)

	case types.TypeInt32:
		return appendInt32(dst, must.NotFail(v.AsInt32()))

	case types.TypeTimestamp:
		ts := bsonproto.Timestamp(must.NotFail(v.AsTimestamp()))
		return appendSized(dst, bsonproto.SizeTimestamp, func(b []byte) { bsonproto.EncodeTimestamp(b, ts) })

	case types.TypeInt64:
		i := must.NotFail(v.AsInt64())
		return appendSized(dst, bsonproto.SizeInt64, func(b []byte) { bsonproto.EncodeInt64(b, i) })

	case types.TypeDecimal128:
		h, l := must.NotFail(v.AsDecimal128()).GetBytes()
		d := bsonproto.Decimal128{L: l, H: h}

		return appendSized(dst, bsonproto.SizeDecimal128, func(b []byte) { bsonproto.EncodeDecimal128(b, d) })

	default:
		panic("sorter.appendPayload: unexpected type " + t.String())
	}
}

// appendSized grows dst by size bytes and calls encode for them.
func appendSized(dst []byte, size int, encode func([]byte)) []byte {
	l := len(dst)
	dst = append(dst, make([]byte, size)...)
	encode(dst[l:])

	return dst
}

func appendInt32(dst []byte, v int32) []byte {
	return appendSized(dst, bsonproto.SizeInt32, func(b []byte) { bsonproto.EncodeInt32(b, v) })
}

func appendFloat64(dst []byte, v float64) []byte {
	return appendSized(dst, bsonproto.SizeFloat64, func(b []byte) { bsonproto.EncodeFloat64(b, v) })
}

func appendString(dst []byte, v string) []byte {
	return appendSized(dst, bsonproto.SizeString(v), func(b []byte) { bsonproto.EncodeString(b, v) })
}

func appendObjectID(dst []byte, v types.ObjectID) []byte {
	return appendSized(dst, bsonproto.SizeObjectID, func(b []byte) { bsonproto.EncodeObjectID(b, bsonproto.ObjectID(v)) })
}
