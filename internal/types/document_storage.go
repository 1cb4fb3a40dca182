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
	"sync/atomic"
	"unsafe"
)

// field is a single document slot.
//
// A slot with Missing value is tombstoned: it is kept in place so positions of other slots don't change,
// but it is skipped by iteration, counting and serialization.
type field struct {
	name  string
	value Value
}

// documentStorage is the backing store of Document and MutableDocument.
//
// Storage that may be observed by more than one party is marked shared;
// it is never modified after that and builders copy it on the first write.
type documentStorage struct {
	fields []field
	meta   *Metadata
	live   int
	shared atomic.Bool
}

// newDocumentStorage returns new exclusive storage with the given capacity.
func newDocumentStorage(capacity int) *documentStorage {
	return &documentStorage{
		fields: make([]field, 0, capacity),
	}
}

// markShared marks storage as shared. It is safe to call on nil storage.
func (s *documentStorage) markShared() {
	if s == nil {
		return
	}

	s.shared.Store(true)
}

// isShared returns true if storage is shared.
func (s *documentStorage) isShared() bool {
	return s.shared.Load()
}

// clone returns a shallow copy of storage; nil storage is cloned to empty one.
//
// Nested documents are not copied; they are marked shared instead,
// so the copy and the original could diverge independently.
func (s *documentStorage) clone() *documentStorage {
	if s == nil {
		return newDocumentStorage(0)
	}

	res := &documentStorage{
		fields: make([]field, len(s.fields), cap(s.fields)),
		live:   s.live,
	}
	copy(res.fields, s.fields)

	for _, f := range res.fields {
		f.value.markShared()
	}

	if s.meta != nil {
		m := *s.meta
		res.meta = &m
	}

	return res
}

// len returns the number of live fields. It is safe to call on nil storage.
func (s *documentStorage) len() int {
	if s == nil {
		return 0
	}

	return s.live
}

// slots returns all slots including tombstoned ones. It is safe to call on nil storage.
func (s *documentStorage) slots() []field {
	if s == nil {
		return nil
	}

	return s.fields
}

// find returns the index of the first live slot with the given name, or -1.
func (s *documentStorage) find(name string) int {
	for i, f := range s.slots() {
		if f.name == name && !f.value.Missing() {
			return i
		}
	}

	return -1
}

// findForWrite returns the index of the first live slot with the given name,
// the first tombstoned slot with that name if there is no live one, or -1.
func (s *documentStorage) findForWrite(name string) int {
	tombstone := -1

	for i, f := range s.slots() {
		if f.name != name {
			continue
		}

		if !f.value.Missing() {
			return i
		}

		if tombstone < 0 {
			tombstone = i
		}
	}

	return tombstone
}

// resolve returns the slot index for the given position, or -1 if the position is not valid for s.
func (s *documentStorage) resolve(p Position) int {
	i := p.slot()
	if i < 0 || i >= len(s.slots()) || s.fields[i].name != p.name {
		return -1
	}

	return i
}

// append adds a new slot and returns its index. s must be exclusive.
func (s *documentStorage) append(name string, v Value) int {
	s.fields = append(s.fields, field{name: name, value: v})
	if !v.Missing() {
		s.live++
	}

	return len(s.fields) - 1
}

// setAt replaces the value of the existing slot. s must be exclusive.
func (s *documentStorage) setAt(i int, v Value) {
	if !s.fields[i].value.Missing() {
		s.live--
	}

	if !v.Missing() {
		s.live++
	}

	s.fields[i].value = v
}

// set updates the first live (or tombstoned) slot with the given name, or appends a new one.
// Setting Missing to a non-existing field does nothing. s must be exclusive.
func (s *documentStorage) set(name string, v Value) int {
	if i := s.findForWrite(name); i >= 0 {
		s.setAt(i, v)
		return i
	}

	if v.Missing() {
		return -1
	}

	return s.append(name, v)
}

const (
	valueSize           = int(unsafe.Sizeof(Value{}))
	fieldSize           = int(unsafe.Sizeof(field{}))
	documentStorageSize = int(unsafe.Sizeof(documentStorage{}))
)

// approximateSize returns the estimated memory footprint of storage, including metadata.
func (s *documentStorage) approximateSize() int {
	if s == nil {
		return 0
	}

	size := documentStorageSize + (cap(s.fields)-len(s.fields))*fieldSize

	for _, f := range s.fields {
		size += fieldSize - valueSize + len(f.name) + f.value.ApproximateSize()
	}

	if s.meta != nil {
		size += s.meta.ApproximateSize()
	}

	return size
}

// ApproximateSize returns the estimated memory footprint of v, including shared payloads.
func (v Value) ApproximateSize() int {
	size := valueSize
	if v.s == nil {
		return size
	}

	size += len(v.s.str) + len(v.s.str2) + len(v.s.bin)

	for _, e := range v.s.arr {
		size += e.ApproximateSize()
	}

	size += v.s.doc.approximateSize()

	return size
}
