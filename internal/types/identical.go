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

// Identical returns true if a and b have the same type and the same value.
//
// Unlike Compare, it does not consider values of different types equal
// (for example, int32 1 and double 1.0 are not identical), and distinguishes -0.0 from 0.0.
// NaN is identical to NaN. Documents are compared by their live fields; metadata is ignored.
func Identical(a, b Value) bool {
	if a.t != b.t {
		return false
	}

	switch a.t {
	case TypeDouble:
		af, bf := a.float(), b.float()
		if math.IsNaN(af) && math.IsNaN(bf) {
			return true
		}

		return math.Float64bits(af) == math.Float64bits(bf)

	case TypeDecimal128:
		return a.n == b.n && a.n2 == b.n2

	case TypeObject:
		return IdenticalDocuments(Document{s: a.docStorage()}, Document{s: b.docStorage()})

	case TypeArray:
		aa, ba := a.array(), b.array()
		if len(aa) != len(ba) {
			return false
		}

		for i := range aa {
			if !Identical(aa[i], ba[i]) {
				return false
			}
		}

		return true

	case TypeCodeWithScope:
		return a.s.str == b.s.str && IdenticalDocuments(Document{s: a.s.doc}, Document{s: b.s.doc})

	default:
		return Compare(a, b) == Equal
	}
}

// IdenticalDocuments returns true if documents have the same live fields
// with the same names in the same order and identical values.
func IdenticalDocuments(a, b Document) bool {
	if a.Len() != b.Len() {
		return false
	}

	ak, av := a.Keys(), a.Values()
	bk, bv := b.Keys(), b.Values()

	for i := range ak {
		if ak[i] != bk[i] || !Identical(av[i], bv[i]) {
			return false
		}
	}

	return true
}
