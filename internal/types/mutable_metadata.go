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

// MutableMetadata modifies metadata of the document being built by MutableDocument.
//
// Every call goes through the builder: it panics after Freeze,
// and writes copy storage shared with documents returned by Peek.
type MutableMetadata struct {
	md *MutableDocument
}

// Get returns the current metadata.
func (mm *MutableMetadata) Get() Metadata {
	mm.md.checkActive("Metadata.Get")

	if mm.md.s == nil || mm.md.s.meta == nil {
		return Metadata{}
	}

	return *mm.md.s.meta
}

// update calls f with metadata of storage that could be modified in place.
func (mm *MutableMetadata) update(method string, f func(m *Metadata)) {
	mm.md.checkActive("Metadata." + method)

	s := mm.md.storage()
	if s.meta == nil {
		s.meta = new(Metadata)
	}

	f(s.meta)
}

// SetTextScore sets text score.
func (mm *MutableMetadata) SetTextScore(score float64) {
	mm.update("SetTextScore", func(m *Metadata) { m.SetTextScore(score) })
}

// SetRandVal sets random value.
func (mm *MutableMetadata) SetRandVal(v float64) {
	mm.update("SetRandVal", func(m *Metadata) { m.SetRandVal(v) })
}

// SetSortKey sets sort key.
func (mm *MutableMetadata) SetSortKey(key Value, singleElement bool) {
	mm.update("SetSortKey", func(m *Metadata) { m.SetSortKey(key, singleElement) })
}

// SetGeoNearDistance sets geoNear distance.
func (mm *MutableMetadata) SetGeoNearDistance(d float64) {
	mm.update("SetGeoNearDistance", func(m *Metadata) { m.SetGeoNearDistance(d) })
}

// SetGeoNearPoint sets geoNear point.
func (mm *MutableMetadata) SetGeoNearPoint(p Value) {
	mm.update("SetGeoNearPoint", func(m *Metadata) { m.SetGeoNearPoint(p) })
}

// SetSearchScore sets search score.
func (mm *MutableMetadata) SetSearchScore(score float64) {
	mm.update("SetSearchScore", func(m *Metadata) { m.SetSearchScore(score) })
}

// SetSearchHighlights sets search highlights.
func (mm *MutableMetadata) SetSearchHighlights(h Value) {
	mm.update("SetSearchHighlights", func(m *Metadata) { m.SetSearchHighlights(h) })
}

// SetIndexKey sets index key.
func (mm *MutableMetadata) SetIndexKey(key Document) {
	mm.update("SetIndexKey", func(m *Metadata) { m.SetIndexKey(key) })
}

// CopyFrom sets every field present in other, leaving other fields as they are.
func (mm *MutableMetadata) CopyFrom(other Metadata) {
	if other.Empty() {
		mm.md.checkActive("Metadata.CopyFrom")
		return
	}

	mm.update("CopyFrom", func(m *Metadata) { m.CopyFrom(other) })
}
