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

import "slices"

// MutableDocument builds new documents.
//
// It wraps an existing document (or an empty one) and copies shared storage
// only on the first write that diverges from it. Nested documents are copied
// the same way when they are modified through field paths.
//
// Freeze finalizes the document and spends the builder: any further use panics
// with *Error of ErrInvariantViolation code until Reset is called.
//
// MutableDocument is not safe for concurrent use.
type MutableDocument struct {
	s     *documentStorage
	owned bool // s was created by this builder and could be modified in place if it is not shared
	spent bool
}

// NewMutableDocument returns a builder for a new empty document with the given capacity.
func NewMutableDocument(capacity int) *MutableDocument {
	return &MutableDocument{
		s:     newDocumentStorage(capacity),
		owned: true,
	}
}

// NewMutableDocumentFrom returns a builder that starts from the given document.
//
// The document itself is never modified.
func NewMutableDocumentFrom(doc Document) *MutableDocument {
	md := new(MutableDocument)
	md.Reset(doc)

	return md
}

// Reset makes the builder start from the given document, making it usable again after Freeze.
func (md *MutableDocument) Reset(doc Document) {
	doc.s.markShared()

	md.s = doc.s
	md.owned = false
	md.spent = false
}

// checkActive panics if the builder is spent.
func (md *MutableDocument) checkActive(method string) {
	if md.spent {
		panic(newErrorf(ErrInvariantViolation, "types.MutableDocument.%s: builder is frozen, call Reset first", method))
	}
}

// storage returns top-level storage that could be modified in place.
func (md *MutableDocument) storage() *documentStorage {
	if !md.owned || md.s == nil || md.s.isShared() {
		md.s = md.s.clone()
		md.owned = true
	}

	return md.s
}

// Len returns the number of fields, not counting tombstoned ones.
func (md *MutableDocument) Len() int {
	md.checkActive("Len")

	return md.s.len()
}

// AddField appends a new field. Duplicate names are not checked.
func (md *MutableDocument) AddField(name string, v Value) {
	md.checkActive("AddField")

	v.markShared()
	md.storage().append(name, v)
}

// SetField sets the value of the first field with the given name, or appends a new field.
//
// Setting Missing tombstones the field: it is no longer visible,
// but positions of all fields stay the same.
func (md *MutableDocument) SetField(name string, v Value) {
	md.checkActive("SetField")

	v.markShared()
	md.storage().set(name, v)
}

// Remove tombstones the first field with the given name.
func (md *MutableDocument) Remove(name string) {
	md.checkActive("Remove")

	if md.s.find(name) < 0 {
		return
	}

	md.storage().set(name, Value{})
}

// GetField returns the value of the first field with the given name, or Missing.
func (md *MutableDocument) GetField(name string) Value {
	md.checkActive("GetField")

	v := Document{s: md.s}.Get(name)
	v.markShared()

	return v
}

// GetAt returns the value at the given position, or Missing.
func (md *MutableDocument) GetAt(p Position) Value {
	md.checkActive("GetAt")

	v := Document{s: md.s}.GetAt(p)
	v.markShared()

	return v
}

// SetAt sets the value at the given position.
//
// It fails with ErrInvariantViolation if the position does not belong to the document.
func (md *MutableDocument) SetAt(p Position, v Value) error {
	md.checkActive("SetAt")

	if md.s.resolve(p) < 0 {
		return newErrorf(ErrInvariantViolation, "types.MutableDocument.SetAt: invalid position for field %q", p.name)
	}

	v.markShared()

	s := md.storage()
	s.setAt(s.resolve(p), v)

	return nil
}

// Field returns a handle to the field with the given name
// that can be used to access nested fields.
func (md *MutableDocument) Field(name string) *MutableValue {
	md.checkActive("Field")

	return &MutableValue{
		md:   md,
		path: []string{name},
	}
}

// GetNestedField returns the value at the given path, or Missing.
func (md *MutableDocument) GetNestedField(path FieldPath) Value {
	md.checkActive("GetNestedField")

	v := Document{s: md.s}.GetNestedField(path)
	v.markShared()

	return v
}

// SetNestedField sets the value at the given path.
//
// Missing intermediate fields are created as empty objects;
// intermediate fields of other types are replaced by empty objects.
// Setting Missing tombstones the last field.
func (md *MutableDocument) SetNestedField(path FieldPath, v Value) {
	md.checkActive("SetNestedField")

	if path.Len() == 0 {
		panic(NewError(ErrInvariantViolation, "types.MutableDocument.SetNestedField: empty path"))
	}

	md.setNested(path.parts, v)
}

// setNested implements nested field setting for the given path components.
func (md *MutableDocument) setNested(parts []string, v Value) {
	v.markShared()

	s := md.storage()

	for _, name := range parts[:len(parts)-1] {
		i := s.findForWrite(name)
		if i < 0 {
			i = s.append(name, Value{})
		}

		s = s.writableChild(i)
	}

	s.set(parts[len(parts)-1], v)
}

// SetNestedFieldPositions sets the value at the path identified by positions
// previously returned by Document.GetNestedFieldPositions for the document this builder started from
// (or for a document produced by this builder).
//
// It fails with ErrInvariantViolation if any position is not valid,
// or if any intermediate field is not an object.
// The document is not modified in that case.
func (md *MutableDocument) SetNestedFieldPositions(positions []Position, v Value) error {
	md.checkActive("SetNestedFieldPositions")

	if len(positions) == 0 {
		return NewError(ErrInvariantViolation, "types.MutableDocument.SetNestedFieldPositions: no positions")
	}

	// validate first to keep the document intact on error
	s := md.s
	for i, p := range positions {
		idx := s.resolve(p)
		if idx < 0 {
			return newErrorf(ErrInvariantViolation, "types.MutableDocument.SetNestedFieldPositions: invalid position %d for field %q", i, p.name)
		}

		if i == len(positions)-1 {
			break
		}

		child := s.fields[idx].value
		if child.t != TypeObject {
			return newErrorf(ErrInvariantViolation, "types.MutableDocument.SetNestedFieldPositions: field %q is %s, not object", p.name, child.t)
		}

		s = child.docStorage()
	}

	v.markShared()

	s = md.storage()
	for _, p := range positions[:len(positions)-1] {
		s = s.writableChild(s.resolve(p))
	}

	s.setAt(s.resolve(positions[len(positions)-1]), v)

	return nil
}

// Metadata returns a handle to the metadata of the document being built.
func (md *MutableDocument) Metadata() *MutableMetadata {
	md.checkActive("Metadata")

	return &MutableMetadata{md: md}
}

// CopyMetadataFrom sets every metadata field present in doc, leaving other fields as they are.
func (md *MutableDocument) CopyMetadataFrom(doc Document) {
	md.checkActive("CopyMetadataFrom")

	if !doc.HasMetadata() {
		return
	}

	md.Metadata().CopyFrom(doc.Metadata())
}

// Peek returns a read-only view of the document being built without finalizing it.
func (md *MutableDocument) Peek() Document {
	md.checkActive("Peek")

	md.s.markShared()

	return Document{s: md.s}
}

// Freeze returns the built document and spends the builder.
func (md *MutableDocument) Freeze() Document {
	md.checkActive("Freeze")

	md.s.markShared()
	doc := Document{s: md.s}

	md.s = nil
	md.owned = false
	md.spent = true

	return doc
}

// writableChild returns storage of the nested object at slot i that could be modified in place,
// replacing the slot value with an empty object if it is not an object,
// or with a copy of the object if it is shared. s must be exclusive.
func (s *documentStorage) writableChild(i int) *documentStorage {
	v := s.fields[i].value

	if v.t == TypeObject {
		child := v.docStorage()
		if child != nil && !child.isShared() {
			return child
		}

		child = child.clone()
		s.setAt(i, newObjectValue(child))

		return child
	}

	child := newDocumentStorage(0)
	s.setAt(i, newObjectValue(child))

	return child
}

// MutableValue is a handle to a possibly nested field of MutableDocument.
type MutableValue struct {
	md   *MutableDocument
	path []string
}

// Field returns a handle to the nested field with the given name.
func (mv *MutableValue) Field(name string) *MutableValue {
	return &MutableValue{
		md:   mv.md,
		path: append(slices.Clip(mv.path), name),
	}
}

// Set sets the field value, creating intermediate objects as needed.
func (mv *MutableValue) Set(v Value) {
	mv.md.checkActive("Set")

	mv.md.setNested(mv.path, v)
}

// Get returns the field value, or Missing.
func (mv *MutableValue) Get() Value {
	mv.md.checkActive("Get")

	s := mv.md.s

	for i, name := range mv.path {
		idx := s.find(name)
		if idx < 0 {
			return Value{}
		}

		v := s.fields[idx].value
		if i == len(mv.path)-1 {
			v.markShared()
			return v
		}

		if v.t != TypeObject {
			return Value{}
		}

		s = v.docStorage()
	}

	panic("not reached")
}
