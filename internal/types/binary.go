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

	"github.com/google/uuid"
)

// BinarySubtype represents BSON Binary's subtype.
type BinarySubtype byte

const (
	BinaryGeneric    = BinarySubtype(0x00) // generic
	BinaryFunction   = BinarySubtype(0x01) // function
	BinaryGenericOld = BinarySubtype(0x02) // generic-old
	BinaryUUIDOld    = BinarySubtype(0x03) // uuid-old
	BinaryUUID       = BinarySubtype(0x04) // uuid
	BinaryMD5        = BinarySubtype(0x05) // md5
	BinaryEncrypted  = BinarySubtype(0x06) // encrypted
	BinaryUser       = BinarySubtype(0x80) // user
)

// String implements fmt.Stringer.
func (s BinarySubtype) String() string {
	switch s {
	case BinaryGeneric:
		return "generic"
	case BinaryFunction:
		return "function"
	case BinaryGenericOld:
		return "generic-old"
	case BinaryUUIDOld:
		return "uuid-old"
	case BinaryUUID:
		return "uuid"
	case BinaryMD5:
		return "md5"
	case BinaryEncrypted:
		return "encrypted"
	case BinaryUser:
		return "user"
	default:
		return fmt.Sprintf("BinarySubtype(%d)", byte(s))
	}
}

// Binary represents BSON type Binary.
type Binary struct {
	Subtype BinarySubtype
	B       []byte
}

// UUID returns the UUID stored in b.
//
// It fails with TypeMismatch if b is not a 16-byte UUID subtype value.
func (b Binary) UUID() (uuid.UUID, error) {
	if b.Subtype != BinaryUUID && b.Subtype != BinaryUUIDOld {
		return uuid.Nil, newErrorf(ErrTypeMismatch, "types.Binary.UUID: unexpected subtype %s", b.Subtype)
	}

	u, err := uuid.FromBytes(b.B)
	if err != nil {
		return uuid.Nil, newErrorf(ErrTypeMismatch, "types.Binary.UUID: %s", err)
	}

	return u, nil
}
