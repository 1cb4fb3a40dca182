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

import "github.com/FerretDB/docvalue/internal/util/iterator"

// documentIterator implements iterator.Interface over live document fields.
type documentIterator struct {
	s *documentStorage
	n int
}

// Iterator returns an iterator over field names and values, skipping tombstoned fields.
func (d Document) Iterator() iterator.Interface[string, Value] {
	return &documentIterator{
		s: d.s,
	}
}

// Next implements iterator.Interface.
func (iter *documentIterator) Next() (string, Value, error) {
	slots := iter.s.slots()

	for iter.n < len(slots) {
		f := slots[iter.n]
		iter.n++

		if !f.value.Missing() {
			return f.name, f.value, nil
		}
	}

	return "", Value{}, iterator.ErrIteratorDone
}

// Close implements iterator.Interface.
func (iter *documentIterator) Close() {
	iter.n = len(iter.s.slots())
}

// check interfaces
var (
	_ iterator.Interface[string, Value] = (*documentIterator)(nil)
)
