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

// Package bson provides convertors between BSON (as implemented by bsoncore) and types packages.
//
// # Mapping
//
// The following BSON types are mapped to types.Value variants:
//
//	BSON                 types
//
//	Double               TypeDouble
//	String               TypeString
//	Embedded document    TypeObject
//	Array                TypeArray
//	Binary data          TypeBinData
//	Undefined            TypeUndefined
//	ObjectId             TypeObjectID
//	Boolean              TypeBool
//	UTC datetime         TypeDate
//	Null                 TypeNull
//	Regular expression   TypeRegex
//	DBPointer            TypeDBRef
//	JavaScript code      TypeCode
//	Symbol               TypeSymbol
//	Code with scope      TypeCodeWithScope
//	32-bit integer       TypeInt32
//	Timestamp            TypeTimestamp
//	64-bit integer       TypeInt64
//	128-bit decimal      TypeDecimal128
//	Min key              TypeMinKey
//	Max key              TypeMaxKey
//
// Missing values have no BSON representation: Missing fields and array elements are skipped.
package bson

import (
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/FerretDB/docvalue/internal/types"
)

// DefaultMaxDepth is the default maximum nesting depth of encoded documents.
const DefaultMaxDepth = 200

// Encoder encodes documents and values to BSON.
//
// The zero value is ready to use.
type Encoder struct {
	// MaxDepth is the maximum nesting depth of documents and arrays;
	// the top-level document has depth 1.
	// Zero means DefaultMaxDepth.
	MaxDepth int
}

// maxDepth returns the effective depth limit.
func (e *Encoder) maxDepth() int {
	if e.MaxDepth <= 0 {
		return DefaultMaxDepth
	}

	return e.MaxDepth
}

// EncodeDocument encodes document to BSON using the default Encoder.
func EncodeDocument(doc types.Document) (bsoncore.Document, error) {
	return new(Encoder).EncodeDocument(doc)
}

// AppendValueElement appends value as a BSON element with the given key using the default Encoder.
func AppendValueElement(dst []byte, key string, v types.Value) ([]byte, error) {
	return new(Encoder).AppendValueElement(dst, key, v)
}

// EncodeDocumentWithMetadata encodes document and its metadata to BSON using the default Encoder.
func EncodeDocumentWithMetadata(doc types.Document) (bsoncore.Document, error) {
	return new(Encoder).EncodeDocumentWithMetadata(doc)
}
