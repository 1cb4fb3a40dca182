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

// Package sorter implements a compact self-describing binary format of documents and values
// used to spill them to disk during external sorting, and block containers for spilled documents.
//
// # Format
//
// All integers are little-endian.
//
//	document    = count:int32 field* metadata
//	field       = type:byte name:string payload
//	value       = type:byte payload
//	metadata    = (tag:byte metapayload)* 0x00
//	string      = length:int32 bytes 0x00   (length includes the trailing zero)
//
// Payloads depend on the type byte (types.Type):
//
//	Missing, MinKey, MaxKey, Null, Undefined   none
//	Double                                     float64
//	String, Symbol, Code                       string
//	Object                                     document
//	Array                                      count:int32 value*
//	BinData                                    length:int32 subtype:byte bytes
//	ObjectID                                   12 bytes
//	Bool                                       byte
//	Date                                       milliseconds:int64
//	Regex                                      pattern:string options:string
//	DBRef                                      namespace:string 12 bytes
//	CodeWithScope                              code:string document
//	Int32                                      int32
//	Timestamp                                  uint64
//	Int64                                      int64
//	Decimal128                                 low:uint64 high:uint64
//
// Metadata tags:
//
//	1 textScore          float64
//	2 randVal            float64
//	3 sortKey            single:byte value
//	4 geoNearDistance    float64
//	5 geoNearPoint       value
//	6 searchScore        float64
//	7 searchHighlights   value
//	8 indexKey           document
//
// Unlike BSON, the format preserves Missing values (including Missing array elements),
// and metadata of nested documents.
package sorter

// Settings controls encoding and decoding.
type Settings struct {
	// SkipMetadata disables metadata encoding; when decoding, metadata is read and discarded.
	SkipMetadata bool
}

// metadata section tags
const (
	tagEnd byte = iota
	tagTextScore
	tagRandVal
	tagSortKey
	tagGeoNearDistance
	tagGeoNearPoint
	tagSearchScore
	tagSearchHighlights
	tagIndexKey
)
