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

// Position is a handle to a document slot.
//
// It is obtained from Document.PositionOf or Document.GetNestedFieldPositions
// and stays valid for that document and for documents derived from it by MutableDocument,
// even if fields are tombstoned or added.
// Positions are verified on use: a position that does not match the document
// reads as Missing and fails writes with ErrInvariantViolation.
//
// The zero value represents "not found".
type Position struct {
	name  string
	index int32 // slot index + 1
}

// newPosition returns a position for the given slot.
func newPosition(i int, name string) Position {
	return Position{name: name, index: int32(i) + 1}
}

// Found returns true if p refers to a slot.
func (p Position) Found() bool {
	return p.index > 0
}

// slot returns the slot index, or -1 for "not found".
func (p Position) slot() int {
	return int(p.index) - 1
}
