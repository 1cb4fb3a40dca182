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
	"fmt"
	"strconv"
)

// Document represents an immutable ordered sequence of fields with attached metadata.
//
// Field names are not required to be unique; lookups by name return the first match.
// Documents are cheap to copy: copies share the same storage.
// The zero value is a valid empty document.
//
// Use MutableDocument to build new documents.
type Document struct {
	s *documentStorage
}

// NewDocument creates a document with the given field name/value pairs.
//
// Values are converted with ValueOf.
func NewDocument(pairs ...any) (Document, error) {
	l := len(pairs)
	if l%2 != 0 {
		return Document{}, newErrorf(ErrBadValue, "types.NewDocument: invalid number of arguments: %d", l)
	}

	md := NewMutableDocument(l / 2)

	for i := 0; i < l; i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			return Document{}, newErrorf(ErrBadValue, "types.NewDocument: invalid field name type: %T", pairs[i])
		}

		v, err := ValueOf(pairs[i+1])
		if err != nil {
			return Document{}, fmt.Errorf("types.NewDocument: %w", err)
		}

		md.AddField(name, v)
	}

	return md.Freeze(), nil
}

// Len returns the number of fields, not counting tombstoned ones.
func (d Document) Len() int {
	return d.s.len()
}

// Empty returns true if the document has no fields.
func (d Document) Empty() bool {
	return d.Len() == 0
}

// Get returns the value of the first field with the given name, or Missing.
func (d Document) Get(name string) Value {
	i := d.s.find(name)
	if i < 0 {
		return Value{}
	}

	return d.s.fields[i].value
}

// Has returns true if the document has a field with the given name.
func (d Document) Has(name string) bool {
	return d.s.find(name) >= 0
}

// PositionOf returns the position of the first field with the given name,
// or the zero Position if there is no such field.
func (d Document) PositionOf(name string) Position {
	i := d.s.find(name)
	if i < 0 {
		return Position{}
	}

	return newPosition(i, name)
}

// GetAt returns the value at the given position.
// It returns Missing if the position does not belong to this document.
func (d Document) GetAt(p Position) Value {
	i := d.s.resolve(p)
	if i < 0 {
		return Value{}
	}

	return d.s.fields[i].value
}

// GetNestedField returns the value at the given path, or Missing.
//
// Path components are field names for objects and decimal indexes for arrays.
func (d Document) GetNestedField(path FieldPath) Value {
	if path.Len() == 0 {
		return Value{}
	}

	v := d.Get(path.Part(0))

	for _, p := range path.parts[1:] {
		switch v.t {
		case TypeObject:
			v = v.Field(p)

		case TypeArray:
			i, err := strconv.ParseUint(p, 10, 31)
			if err != nil {
				return Value{}
			}

			v = v.Index(int(i))

		default:
			return Value{}
		}
	}

	return v
}

// GetNestedFieldPositions returns the value at the given path through objects,
// and positions of each path component.
//
// Positions can be used with MutableDocument.SetNestedFieldPositions.
// If the value is not found, it returns Missing and nil.
func (d Document) GetNestedFieldPositions(path FieldPath) (Value, []Position) {
	if path.Len() == 0 {
		return Value{}, nil
	}

	s := d.s
	positions := make([]Position, 0, path.Len())

	for i, name := range path.parts {
		idx := s.find(name)
		if idx < 0 {
			return Value{}, nil
		}

		positions = append(positions, newPosition(idx, name))

		v := s.fields[idx].value
		if i == path.Len()-1 {
			return v, positions
		}

		if v.t != TypeObject {
			return Value{}, nil
		}

		s = v.docStorage()
	}

	panic("not reached")
}

// Keys returns names of all fields in order, including duplicates.
func (d Document) Keys() []string {
	res := make([]string, 0, d.Len())

	for _, f := range d.s.slots() {
		if !f.value.Missing() {
			res = append(res, f.name)
		}
	}

	return res
}

// Values returns values of all fields in order.
func (d Document) Values() []Value {
	res := make([]Value, 0, d.Len())

	for _, f := range d.s.slots() {
		if !f.value.Missing() {
			res = append(res, f.value)
		}
	}

	return res
}

// Clone returns a shallow copy of the document.
//
// The top-level field array is copied;
// nested documents, arrays and other payloads are shared until modified through MutableDocument.
func (d Document) Clone() Document {
	return Document{s: d.s.clone()}
}

// Metadata returns a copy of the document's metadata.
func (d Document) Metadata() Metadata {
	if d.s == nil || d.s.meta == nil {
		return Metadata{}
	}

	return *d.s.meta
}

// HasMetadata returns true if any metadata field is set.
func (d Document) HasMetadata() bool {
	return d.s != nil && d.s.meta != nil && !d.s.meta.Empty()
}

// ApproximateSize returns the estimated memory footprint of the document,
// including nested values and metadata.
func (d Document) ApproximateSize() int {
	if d.s == nil {
		return documentStorageSize
	}

	return d.s.approximateSize()
}

// MetadataApproximateSize returns the estimated memory footprint of the document's metadata.
func (d Document) MetadataApproximateSize() int {
	return d.Metadata().ApproximateSize()
}
