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
	"slices"
	"strings"
)

// FieldPath represents a dot-delimited path to a nested field, like "a.b.c".
//
// The zero value is an empty path that can't be used for lookups.
type FieldPath struct {
	s     string
	parts []string
}

// NewFieldPath parses a dot-delimited path.
//
// It fails with ErrBadValue if the path or any of its components is empty,
// or if it contains a NUL byte.
func NewFieldPath(s string) (FieldPath, error) {
	if s == "" {
		return FieldPath{}, NewError(ErrBadValue, "types.NewFieldPath: empty path")
	}

	return NewFieldPathFromParts(strings.Split(s, ".")...)
}

// NewFieldPathFromParts returns a path consisting of the given components.
//
// Components may contain dots; they are not split.
func NewFieldPathFromParts(parts ...string) (FieldPath, error) {
	if len(parts) == 0 {
		return FieldPath{}, NewError(ErrBadValue, "types.NewFieldPathFromParts: empty path")
	}

	for i, p := range parts {
		if p == "" {
			return FieldPath{}, newErrorf(ErrBadValue, "types.NewFieldPath: empty component at %d", i)
		}

		if strings.IndexByte(p, 0) >= 0 {
			return FieldPath{}, newErrorf(ErrBadValue, "types.NewFieldPath: NUL byte in component %d", i)
		}
	}

	return FieldPath{
		s:     strings.Join(parts, "."),
		parts: slices.Clone(parts),
	}, nil
}

// Len returns the number of path components.
func (p FieldPath) Len() int {
	return len(p.parts)
}

// Part returns the path component at the given index.
func (p FieldPath) Part(i int) string {
	return p.parts[i]
}

// Parts returns a copy of path components.
func (p FieldPath) Parts() []string {
	return slices.Clone(p.parts)
}

// Prefix returns the path without its last component.
//
// It returns the zero value for single-component paths.
func (p FieldPath) Prefix() FieldPath {
	if len(p.parts) < 2 {
		return FieldPath{}
	}

	parts := p.parts[:len(p.parts)-1]

	return FieldPath{
		s:     strings.Join(parts, "."),
		parts: parts,
	}
}

// Suffix returns the last path component.
func (p FieldPath) Suffix() string {
	if len(p.parts) == 0 {
		return ""
	}

	return p.parts[len(p.parts)-1]
}

// String returns the dot-delimited representation.
func (p FieldPath) String() string {
	return p.s
}
