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
	"encoding/base64"
	"strconv"
	"strings"
)

// String returns a human-readable representation of v for logging and debugging.
func (v Value) String() string {
	var sb strings.Builder
	writeValue(&sb, v)

	return sb.String()
}

// String returns a human-readable representation of d for logging and debugging.
//
// Metadata is not included.
func (d Document) String() string {
	var sb strings.Builder
	writeDocument(&sb, d.s)

	return sb.String()
}

func writeDocument(sb *strings.Builder, s *documentStorage) {
	if s.len() == 0 {
		sb.WriteString("{}")
		return
	}

	sb.WriteString("{")

	first := true

	for _, f := range s.slots() {
		if f.value.Missing() {
			continue
		}

		if !first {
			sb.WriteString(", ")
		}

		first = false

		sb.WriteString(f.name)
		sb.WriteString(": ")
		writeValue(sb, f.value)
	}

	sb.WriteString("}")
}

func writeValue(sb *strings.Builder, v Value) {
	switch v.t {
	case TypeMissing:
		sb.WriteString("MISSING")
	case TypeMinKey:
		sb.WriteString("MinKey")
	case TypeMaxKey:
		sb.WriteString("MaxKey")
	case TypeNull:
		sb.WriteString("null")
	case TypeUndefined:
		sb.WriteString("undefined")
	case TypeDouble:
		sb.WriteString(formatDouble(v.float()))
	case TypeInt32:
		sb.WriteString(strconv.FormatInt(v.int64(), 10))
	case TypeInt64:
		sb.WriteString("NumberLong(" + strconv.FormatInt(v.int64(), 10) + ")")
	case TypeDecimal128:
		sb.WriteString(`NumberDecimal("` + v.decimal().String() + `")`)
	case TypeString:
		sb.WriteString(strconv.Quote(v.str()))
	case TypeSymbol:
		sb.WriteString("Symbol(" + strconv.Quote(v.str()) + ")")
	case TypeCode:
		sb.WriteString("Code(" + strconv.Quote(v.str()) + ")")
	case TypeObject:
		writeDocument(sb, v.docStorage())
	case TypeArray:
		sb.WriteString("[")

		for i, e := range v.array() {
			if i > 0 {
				sb.WriteString(", ")
			}

			writeValue(sb, e)
		}

		sb.WriteString("]")
	case TypeBinData:
		sb.WriteString("BinData(" + strconv.Itoa(int(v.sub)) + ", " + base64.StdEncoding.EncodeToString(v.s.bin) + ")")
	case TypeObjectID:
		sb.WriteString(`ObjectId("` + unpackObjectID(v.n, v.n2).Hex() + `")`)
	case TypeBool:
		sb.WriteString(strconv.FormatBool(v.n != 0))
	case TypeDate:
		sb.WriteString("new Date(" + strconv.FormatInt(v.int64(), 10) + ")")
	case TypeTimestamp:
		sb.WriteString(Timestamp(v.n).String())
	case TypeRegex:
		sb.WriteString("/" + v.s.str + "/" + v.s.str2)
	case TypeDBRef:
		sb.WriteString(`DBPointer(` + strconv.Quote(v.s.str) + `, ObjectId("` + unpackObjectID(v.n, v.n2).Hex() + `"))`)
	case TypeCodeWithScope:
		sb.WriteString("CodeWScope(" + strconv.Quote(v.s.str) + ", ")
		writeDocument(sb, v.s.doc)
		sb.WriteString(")")
	default:
		sb.WriteString("Type(" + strconv.Itoa(int(v.t)) + ")")
	}
}
