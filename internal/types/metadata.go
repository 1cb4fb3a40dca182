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

import "math"

// metadataField is a bit in Metadata presence mask.
type metadataField uint8

const (
	metaTextScore metadataField = 1 << iota
	metaRandVal
	metaSortKey
	metaGeoNearDistance
	metaGeoNearPoint
	metaSearchScore
	metaSearchHighlights
	metaIndexKey
)

// metadataHeaderSize is the approximate size of the presence mask and flags.
const metadataHeaderSize = 8

// Metadata represents optional out-of-band fields attached to a document.
//
// Metadata is not a part of document's fields: it is not counted by Document.Len,
// not returned by iteration, and not encoded by plain BSON serialization.
// Each field has a presence flag; getters return zero values for absent fields.
//
// The zero value has no fields set.
type Metadata struct {
	sortKey          Value
	geoNearPoint     Value
	searchHighlights Value
	indexKey         Document
	textScore        float64
	randVal          float64
	geoNearDistance  float64
	searchScore      float64
	present          metadataField
	sortKeySingle    bool
}

// has returns true if the field is present.
func (m Metadata) has(f metadataField) bool {
	return m.present&f != 0
}

// Empty returns true if no field is set.
func (m Metadata) Empty() bool {
	return m.present == 0
}

// HasTextScore returns true if text score is set.
func (m Metadata) HasTextScore() bool { return m.has(metaTextScore) }

// TextScore returns text score.
func (m Metadata) TextScore() float64 { return m.textScore }

// SetTextScore sets text score.
func (m *Metadata) SetTextScore(score float64) {
	m.textScore = score
	m.present |= metaTextScore
}

// HasRandVal returns true if random value is set.
func (m Metadata) HasRandVal() bool { return m.has(metaRandVal) }

// RandVal returns random value.
func (m Metadata) RandVal() float64 { return m.randVal }

// SetRandVal sets random value.
func (m *Metadata) SetRandVal(v float64) {
	m.randVal = v
	m.present |= metaRandVal
}

// HasSortKey returns true if sort key is set.
func (m Metadata) HasSortKey() bool { return m.has(metaSortKey) }

// SortKey returns sort key.
//
// For single-element keys it is the key value itself;
// otherwise it is an Array of key values.
func (m Metadata) SortKey() Value { return m.sortKey }

// IsSingleElementSortKey returns true if the sort key was set as a single element key.
func (m Metadata) IsSingleElementSortKey() bool { return m.sortKeySingle }

// SetSortKey sets sort key.
func (m *Metadata) SetSortKey(key Value, singleElement bool) {
	key.markShared()
	m.sortKey = key
	m.sortKeySingle = singleElement
	m.present |= metaSortKey
}

// HasGeoNearDistance returns true if geoNear distance is set.
func (m Metadata) HasGeoNearDistance() bool { return m.has(metaGeoNearDistance) }

// GeoNearDistance returns geoNear distance.
func (m Metadata) GeoNearDistance() float64 { return m.geoNearDistance }

// SetGeoNearDistance sets geoNear distance.
func (m *Metadata) SetGeoNearDistance(d float64) {
	m.geoNearDistance = d
	m.present |= metaGeoNearDistance
}

// HasGeoNearPoint returns true if geoNear point is set.
func (m Metadata) HasGeoNearPoint() bool { return m.has(metaGeoNearPoint) }

// GeoNearPoint returns geoNear point.
func (m Metadata) GeoNearPoint() Value { return m.geoNearPoint }

// SetGeoNearPoint sets geoNear point.
func (m *Metadata) SetGeoNearPoint(p Value) {
	p.markShared()
	m.geoNearPoint = p
	m.present |= metaGeoNearPoint
}

// HasSearchScore returns true if search score is set.
func (m Metadata) HasSearchScore() bool { return m.has(metaSearchScore) }

// SearchScore returns search score.
func (m Metadata) SearchScore() float64 { return m.searchScore }

// SetSearchScore sets search score.
func (m *Metadata) SetSearchScore(score float64) {
	m.searchScore = score
	m.present |= metaSearchScore
}

// HasSearchHighlights returns true if search highlights are set.
func (m Metadata) HasSearchHighlights() bool { return m.has(metaSearchHighlights) }

// SearchHighlights returns search highlights.
func (m Metadata) SearchHighlights() Value { return m.searchHighlights }

// SetSearchHighlights sets search highlights.
func (m *Metadata) SetSearchHighlights(h Value) {
	h.markShared()
	m.searchHighlights = h
	m.present |= metaSearchHighlights
}

// HasIndexKey returns true if index key is set.
func (m Metadata) HasIndexKey() bool { return m.has(metaIndexKey) }

// IndexKey returns index key.
func (m Metadata) IndexKey() Document { return m.indexKey }

// SetIndexKey sets index key.
func (m *Metadata) SetIndexKey(key Document) {
	key.s.markShared()
	m.indexKey = key
	m.present |= metaIndexKey
}

// CopyFrom sets every field present in other, leaving other fields as they are.
func (m *Metadata) CopyFrom(other Metadata) {
	if other.HasTextScore() {
		m.SetTextScore(other.textScore)
	}

	if other.HasRandVal() {
		m.SetRandVal(other.randVal)
	}

	if other.HasSortKey() {
		m.SetSortKey(other.sortKey, other.sortKeySingle)
	}

	if other.HasGeoNearDistance() {
		m.SetGeoNearDistance(other.geoNearDistance)
	}

	if other.HasGeoNearPoint() {
		m.SetGeoNearPoint(other.geoNearPoint)
	}

	if other.HasSearchScore() {
		m.SetSearchScore(other.searchScore)
	}

	if other.HasSearchHighlights() {
		m.SetSearchHighlights(other.searchHighlights)
	}

	if other.HasIndexKey() {
		m.SetIndexKey(other.indexKey)
	}
}

// Equal returns true if both metadata blocks have the same fields set to identical values.
func (m Metadata) Equal(other Metadata) bool {
	if m.present != other.present {
		return false
	}

	sameFloat := func(a, b float64) bool {
		return math.Float64bits(a) == math.Float64bits(b) || (math.IsNaN(a) && math.IsNaN(b))
	}

	switch {
	case m.HasTextScore() && !sameFloat(m.textScore, other.textScore):
		return false
	case m.HasRandVal() && !sameFloat(m.randVal, other.randVal):
		return false
	case m.HasSortKey() && (m.sortKeySingle != other.sortKeySingle || !Identical(m.sortKey, other.sortKey)):
		return false
	case m.HasGeoNearDistance() && !sameFloat(m.geoNearDistance, other.geoNearDistance):
		return false
	case m.HasGeoNearPoint() && !Identical(m.geoNearPoint, other.geoNearPoint):
		return false
	case m.HasSearchScore() && !sameFloat(m.searchScore, other.searchScore):
		return false
	case m.HasSearchHighlights() && !Identical(m.searchHighlights, other.searchHighlights):
		return false
	case m.HasIndexKey() && !IdenticalDocuments(m.indexKey, other.indexKey):
		return false
	}

	return true
}

// ApproximateSize returns the estimated memory footprint of set fields.
func (m Metadata) ApproximateSize() int {
	if m.Empty() {
		return 0
	}

	size := metadataHeaderSize

	for _, f := range []metadataField{metaTextScore, metaRandVal, metaGeoNearDistance, metaSearchScore} {
		if m.has(f) {
			size += 8
		}
	}

	if m.HasSortKey() {
		size += m.sortKey.ApproximateSize()
	}

	if m.HasGeoNearPoint() {
		size += m.geoNearPoint.ApproximateSize()
	}

	if m.HasSearchHighlights() {
		size += m.searchHighlights.ApproximateSize()
	}

	if m.HasIndexKey() {
		size += m.indexKey.ApproximateSize()
	}

	return size
}
