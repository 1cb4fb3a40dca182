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
	"fmt"

	"github.com/cristalhq/bson/bsonproto"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/FerretDB/docvalue/internal/types"
	"github.com/FerretDB/docvalue/internal/util/lazyerrors"
)

// Reader decodes documents and values from a buffer produced by AppendDocument and AppendValue.
//
// Reader does not copy the buffer; decoded strings are copies, decoded binary data is a copy.
type Reader struct {
	b   []byte
	off int
	s   Settings
}

// NewReader creates a new reader for the given buffer.
func NewReader(b []byte, s Settings) *Reader {
	return &Reader{
		b: b,
		s: s,
	}
}

// Done returns true if the whole buffer was consumed.
func (r *Reader) Done() bool {
	return r.off >= len(r.b)
}

// Offset returns the number of consumed bytes.
func (r *Reader) Offset() int {
	return r.off
}

// ReadDocument decodes the next document.
//
// It fails with types.ErrParse on malformed or truncated input.
func (r *Reader) ReadDocument() (types.Document, error) {
	n, err := r.readCount()
	if err != nil {
		return types.Document{}, err
	}

	md := types.NewMutableDocument(n)

	for range n {
		t, err := r.readType()
		if err != nil {
			return types.Document{}, err
		}

		name, err := r.readString()
		if err != nil {
			return types.Document{}, err
		}

		v, err := r.readPayload(t)
		if err != nil {
			return types.Document{}, err
		}

		md.AddField(name, v)
	}

	var m types.Metadata
	if err = r.readMetadata(&m); err != nil {
		return types.Document{}, err
	}

	if !r.s.SkipMetadata && !m.Empty() {
		md.Metadata().CopyFrom(m)
	}

	return md.Freeze(), nil
}

// ReadValue decodes the next value.
//
// It fails with types.ErrParse on malformed or truncated input.
func (r *Reader) ReadValue() (types.Value, error) {
	t, err := r.readType()
	if err != nil {
		return types.Value{}, err
	}

	return r.readPayload(t)
}

// readMetadata reads metadata section up to and including the end tag.
func (r *Reader) readMetadata(m *types.Metadata) error {
	for {
		tag, err := r.readByte()
		if err != nil {
			return err
		}

		switch tag {
		case tagEnd:
			return nil

		case tagTextScore, tagRandVal, tagGeoNearDistance, tagSearchScore:
			f, err := r.readFloat64()
			if err != nil {
				return err
			}

			switch tag {
			case tagTextScore:
				m.SetTextScore(f)
			case tagRandVal:
				m.SetRandVal(f)
			case tagGeoNearDistance:
				m.SetGeoNearDistance(f)
			case tagSearchScore:
				m.SetSearchScore(f)
			}

		case tagSortKey:
			single, err := r.readByte()
			if err != nil {
				return err
			}

			if single > 1 {
				return r.errorf("invalid sort key flag %d", single)
			}

			v, err := r.ReadValue()
			if err != nil {
				return err
			}

			m.SetSortKey(v, single == 1)

		case tagGeoNearPoint, tagSearchHighlights:
			v, err := r.ReadValue()
			if err != nil {
				return err
			}

			if tag == tagGeoNearPoint {
				m.SetGeoNearPoint(v)
			} else {
				m.SetSearchHighlights(v)
			}

		case tagIndexKey:
			doc, err := r.ReadDocument()
			if err != nil {
				return err
			}

			m.SetIndexKey(doc)

		default:
			return r.errorf("unknown metadata tag %d", tag)
		}
	}
}

// readPayload reads payload of the value with the given type.
func (r *Reader) readPayload(t types.Type) (types.Value, error) {
	switch t {
	case types.TypeMissing:
		return types.Value{}, nil

	case types.TypeMinKey:
		return types.MinKey, nil

	case types.TypeMaxKey:
		return types.MaxKey, nil

	case types.TypeNull:
		return types.Null, nil

	case types.TypeUndefined:
		return types.Undefined, nil

	case types.TypeDouble:
		f, err := r.readFloat64()
		return types.NewDouble(f), err

	case types.TypeString, types.TypeSymbol, types.TypeCode:
		s, err := r.readString()
		if err != nil {
			return types.Value{}, err
		}

		switch t {
		case types.TypeSymbol:
			return types.NewSymbol(s), nil
		case types.TypeCode:
			return types.NewCode(s), nil
		default:
			return types.NewString(s), nil
		}

	case types.TypeObject:
		doc, err := r.ReadDocument()
		if err != nil {
			return types.Value{}, err
		}

		return types.NewDocumentValue(doc), nil

	case types.TypeArray:
		n, err := r.readCount()
		if err != nil {
			return types.Value{}, err
		}

		arr := make([]types.Value, n)
		for i := range arr {
			if arr[i], err = r.ReadValue(); err != nil {
				return types.Value{}, err
			}
		}

		return types.NewArray(arr...), nil

	case types.TypeBinData:
		b, err := bsonproto.DecodeBinary(r.b[r.off:])
		if err != nil {
			return types.Value{}, r.wrap(err)
		}

		r.off += bsonproto.SizeBinary(b)

		return types.NewBinary(types.Binary{Subtype: types.BinarySubtype(b.Subtype), B: b.B}), nil

	case types.TypeObjectID:
		id, err := r.readObjectID()
		return types.NewObjectID(id), err

	case types.TypeBool:
		b, err := bsonproto.DecodeBool(r.b[r.off:])
		if err != nil {
			return types.Value{}, r.wrap(err)
		}

		r.off += bsonproto.SizeBool

		return types.NewBool(b), nil

	case types.TypeDate:
		d, err := bsonproto.DecodeTime(r.b[r.off:])
		if err != nil {
			return types.Value{}, r.wrap(err)
		}

		r.off += bsonproto.SizeTime

		return types.NewDateMillis(d.UnixMilli()), nil

	case types.TypeRegex:
		pattern, err := r.readString()
		if err != nil {
			return types.Value{}, err
		}

		options, err := r.readString()
		if err != nil {
			return types.Value{}, err
		}

		return types.NewRegex(types.Regex{Pattern: pattern, Options: options}), nil

	case types.TypeDBRef:
		ns, err := r.readString()
		if err != nil {
			return types.Value{}, err
		}

		id, err := r.readObjectID()
		if err != nil {
			return types.Value{}, err
		}

		return types.NewDBRef(types.DBRef{Namespace: ns, ID: id}), nil

	case types.TypeCodeWithScope:
		code, err := r.readString()
		if err != nil {
			return types.Value{}, err
		}

		scope, err := r.ReadDocument()
		if err != nil {
			return types.Value{}, err
		}

		return types.NewCodeWithScope(types.CodeWithScope{Code: code, Scope: scope}), nil

	case types.TypeInt32:
		i, err := r.readInt32()
		return types.NewInt32(i), err

	case types.TypeTimestamp:
		ts, err := bsonproto.DecodeTimestamp(r.b[r.off:])
		if err != nil {
			return types.Value{}, r.wrap(err)
		}

		r.off += bsonproto.SizeTimestamp

		return types.NewTimestamp(types.Timestamp(ts)), nil

	case types.TypeInt64:
		i, err := bsonproto.DecodeInt64(r.b[r.off:])
		if err != nil {
			return types.Value{}, r.wrap(err)
		}

		r.off += bsonproto.SizeInt64

		return types.NewInt64(i), nil

	case types.TypeDecimal128:
		d, err := bsonproto.DecodeDecimal128(r.b[r.off:])
		if err != nil {
			return types.Value{}, r.wrap(err)
		}

		r.off += bsonproto.SizeDecimal128

		return types.NewDecimal128(primitive.NewDecimal128(d.H, d.L)), nil

	default:
		return types.Value{}, r.errorf("unknown type %d", int8(t))
	}
}

func (r *Reader) readByte() (byte, error) {
	if r.off >= len(r.b) {
		return 0, r.errorf("unexpected end of input")
	}

	b := r.b[r.off]
	r.off++

	return b, nil
}

func (r *Reader) readType() (types.Type, error) {
	b, err := r.readByte()
	if err != nil {
		return 0, err
	}

	t := types.Type(int8(b))
	if !t.Valid() {
		return 0, r.errorf("unknown type %d", int8(t))
	}

	return t, nil
}

func (r *Reader) readInt32() (int32, error) {
	i, err := bsonproto.DecodeInt32(r.b[r.off:])
	if err != nil {
		return 0, r.wrap(err)
	}

	r.off += bsonproto.SizeInt32

	return i, nil
}

// readCount reads non-negative element count.
//
// Each element takes at least one byte, so counts larger than the rest of the input are rejected early.
func (r *Reader) readCount() (int, error) {
	n, err := r.readInt32()
	if err != nil {
		return 0, err
	}

	if n < 0 || int(n) > len(r.b)-r.off {
		return 0, r.errorf("invalid element count %d", n)
	}

	return int(n), nil
}

func (r *Reader) readFloat64() (float64, error) {
	f, err := bsonproto.DecodeFloat64(r.b[r.off:])
	if err != nil {
		return 0, r.wrap(err)
	}

	r.off += bsonproto.SizeFloat64

	return f, nil
}

func (r *Reader) readString() (string, error) {
	s, err := bsonproto.DecodeString(r.b[r.off:])
	if err != nil {
		return "", r.wrap(err)
	}

	r.off += bsonproto.SizeString(s)

	return s, nil
}

func (r *Reader) readObjectID() (types.ObjectID, error) {
	id, err := bsonproto.DecodeObjectID(r.b[r.off:])
	if err != nil {
		return types.ObjectID{}, r.wrap(err)
	}

	r.off += bsonproto.SizeObjectID

	return types.ObjectID(id), nil
}

// errorf returns types.ErrParse error with the current offset.
func (r *Reader) errorf(format string, a ...any) error {
	msg := fmt.Sprintf("sorter: offset %d: ", r.off) + fmt.Sprintf(format, a...)
	return lazyerrors.Error(types.NewError(types.ErrParse, msg))
}

// wrap converts decoding error to types.ErrParse error.
func (r *Reader) wrap(err error) error {
	return r.errorf("%s", err)
}
