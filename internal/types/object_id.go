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
	"encoding/binary"
	"encoding/hex"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectID represents BSON type ObjectID.
type ObjectID [12]byte

// GenerateObjectID returns a new unique ObjectID.
func GenerateObjectID() ObjectID {
	return ObjectID(primitive.NewObjectID())
}

// ParseObjectID parses a 24-character hex string.
func ParseObjectID(s string) (ObjectID, error) {
	var res ObjectID

	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(res) {
		return res, newErrorf(ErrBadValue, "types.ParseObjectID: invalid ObjectID %q", s)
	}

	copy(res[:], b)

	return res, nil
}

// Hex returns the hex encoding of id.
func (id ObjectID) Hex() string {
	return hex.EncodeToString(id[:])
}

// pack splits id into two integers that keep the byte order.
func (id ObjectID) pack() (hi uint64, lo uint64) {
	hi = binary.BigEndian.Uint64(id[:8])
	lo = uint64(binary.BigEndian.Uint32(id[8:]))

	return
}

// unpackObjectID is the inverse of ObjectID.pack.
func unpackObjectID(hi, lo uint64) ObjectID {
	var id ObjectID
	binary.BigEndian.PutUint64(id[:8], hi)
	binary.BigEndian.PutUint32(id[8:], uint32(lo))

	return id
}

// DBRef represents deprecated BSON type DBPointer.
type DBRef struct {
	Namespace string
	ID        ObjectID
}

// CodeWithScope represents deprecated BSON type JavaScript code with scope.
type CodeWithScope struct {
	Code  string
	Scope Document
}
