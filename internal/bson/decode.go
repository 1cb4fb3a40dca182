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
	"fmt"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/FerretDB/docvalue/internal/types"
	"github.com/FerretDB/docvalue/internal/util/lazyerrors"
)

// parseError returns types.ErrParse error wrapping the given cause.
func parseError(cause error) error {
	return lazyerrors.Error(types.NewError(types.ErrParse, "bson: "+cause.Error()))
}

// DecodeDocument decodes BSON document.
//
// It fails with types.ErrParse if the document is not valid.
func DecodeDocument(raw bsoncore.Document) (types.Document, error) {
	if err := raw.Validate(); err != nil {
		return types.Document{}, parseError(err)
	}

	return decodeDocument(raw)
}

// DecodeValue decodes BSON value.
//
// It fails with types.ErrParse if the value is not valid.
func DecodeValue(raw bsoncore.Value) (types.Value, error) {
	if err := raw.Validate(); err != nil {
		return types.Value{}, parseError(err)
	}

	return decodeValue(raw)
}

// decodeDocument decodes validated document.
func decodeDocument(raw bsoncore.Document) (types.Document, error) {
	elements, err := raw.Elements()
	if err != nil {
		return types.Document{}, parseError(err)
	}

	md := types.NewMutableDocument(len(elements))

	for _, e := range elements {
		v, err := decodeValue(e.Value())
		if err != nil {
			return types.Document{}, err
		}

		md.AddField(e.Key(), v)
	}

	return md.Freeze(), nil
}

// decodeArray decodes validated array.
func decodeArray(raw bsoncore.Array) (types.Value, error) {
	values, err := raw.Values()
	if err != nil {
		return types.Value{}, parseError(err)
	}

	res := make([]types.Value, len(values))

	for i, rv := range values {
		if res[i], err = decodeValue(rv); err != nil {
			return types.Value{}, err
		}
	}

	return types.NewArray(res...), nil
}

// decodeValue decodes validated value.
func decodeValue(raw bsoncore.Value) (types.Value, error) {
	var ok bool
	var res types.Value

	switch raw.Type {
	case bsontype.Double:
		var f float64
		if f, ok = raw.DoubleOK(); ok {
			res = types.NewDouble(f)
		}

	case bsontype.String:
		var s string
		if s, ok = raw.StringValueOK(); ok {
			res = types.NewString(s)
		}

	case bsontype.EmbeddedDocument:
		var d bsoncore.Document
		if d, ok = raw.DocumentOK(); ok {
			doc, err := decodeDocument(d)
			if err != nil {
				return types.Value{}, err
			}

			res = types.NewDocumentValue(doc)
		}

	case bsontype.Array:
		var a bsoncore.Array
		if a, ok = raw.ArrayOK(); ok {
			return decodeArray(a)
		}

	case bsontype.Binary:
		var subtype byte
		var b []byte
		if subtype, b, ok = raw.BinaryOK(); ok {
			res = types.NewBinary(types.Binary{Subtype: types.BinarySubtype(subtype), B: b})
		}

	case bsontype.Undefined:
		res, ok = types.Undefined, true

	case bsontype.ObjectID:
		var oid [12]byte
		if oid, ok = raw.ObjectIDOK(); ok {
			res = types.NewObjectID(types.ObjectID(oid))
		}

	case bsontype.Boolean:
		var b bool
		if b, ok = raw.BooleanOK(); ok {
			res = types.NewBool(b)
		}

	case bsontype.DateTime:
		var ms int64
		if ms, ok = raw.DateTimeOK(); ok {
			res = types.NewDateMillis(ms)
		}

	case bsontype.Null:
		res, ok = types.Null, true

	case bsontype.Regex:
		var pattern, options string
		if pattern, options, ok = raw.RegexOK(); ok {
			res = types.NewRegex(types.Regex{Pattern: pattern, Options: options})
		}

	case bsontype.DBPointer:
		var ns string
		var oid [12]byte
		if ns, oid, ok = raw.DBPointerOK(); ok {
			res = types.NewDBRef(types.DBRef{Namespace: ns, ID: types.ObjectID(oid)})
		}

	case bsontype.JavaScript:
		var code string
		if code, ok = raw.JavaScriptOK(); ok {
			res = types.NewCode(code)
		}

	case bsontype.Symbol:
		var s string
		if s, ok = raw.SymbolOK(); ok {
			res = types.NewSymbol(s)
		}

	case bsontype.CodeWithScope:
		var code string
		var scope bsoncore.Document
		if code, scope, ok = raw.CodeWithScopeOK(); ok {
			doc, err := decodeDocument(scope)
			if err != nil {
				return types.Value{}, err
			}

			res = types.NewCodeWithScope(types.CodeWithScope{Code: code, Scope: doc})
		}

	case bsontype.Int32:
		var i int32
		if i, ok = raw.Int32OK(); ok {
			res = types.NewInt32(i)
		}

	case bsontype.Timestamp:
		var t, i uint32
		if t, i, ok = raw.TimestampOK(); ok {
			res = types.NewTimestamp(types.MakeTimestamp(t, i))
		}

	case bsontype.Int64:
		var i int64
		if i, ok = raw.Int64OK(); ok {
			res = types.NewInt64(i)
		}

	case bsontype.Decimal128:
		if d, dOK := raw.Decimal128OK(); dOK {
			res, ok = types.NewDecimal128(d), true
		}

	case bsontype.MinKey:
		res, ok = types.MinKey, true

	case bsontype.MaxKey:
		res, ok = types.MaxKey, true

	default:
		return types.Value{}, parseError(fmt.Errorf("unexpected type 0x%02x", byte(raw.Type)))
	}

	if !ok {
		return types.Value{}, parseError(fmt.Errorf("malformed %s value", raw.Type))
	}

	return res, nil
}
