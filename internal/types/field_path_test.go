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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldPath(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		path  string
		parts []string
		err   bool
	}{
		"Single":      {path: "a", parts: []string{"a"}},
		"Nested":      {path: "a.b.c", parts: []string{"a", "b", "c"}},
		"Numeric":     {path: "arr.0", parts: []string{"arr", "0"}},
		"Dollar":      {path: "$a.b", parts: []string{"$a", "b"}},
		"Empty":       {path: "", err: true},
		"EmptyPart":   {path: "a..b", err: true},
		"TrailingDot": {path: "a.", err: true},
		"LeadingDot":  {path: ".a", err: true},
		"NUL":         {path: "a\x00b", err: true},
	} {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			fp, err := NewFieldPath(tc.path)
			if tc.err {
				assert.Equal(t, ErrBadValue, ErrorCodeOf(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.parts, fp.Parts())
			assert.Equal(t, len(tc.parts), fp.Len())
			assert.Equal(t, tc.path, fp.String())
			assert.Equal(t, tc.parts[len(tc.parts)-1], fp.Suffix())
		})
	}
}

func TestFieldPathParts(t *testing.T) {
	t.Parallel()

	fp, err := NewFieldPathFromParts("a.b", "c")
	require.NoError(t, err)
	assert.Equal(t, 2, fp.Len())
	assert.Equal(t, "a.b", fp.Part(0))
	assert.Equal(t, "a.b.c", fp.String())

	parts := fp.Parts()
	parts[0] = "changed"
	assert.Equal(t, "a.b", fp.Part(0))

	prefix := fp.Prefix()
	assert.Equal(t, 1, prefix.Len())
	assert.Equal(t, "a.b", prefix.String())
	assert.Equal(t, 0, prefix.Prefix().Len())

	_, err = NewFieldPathFromParts()
	assert.Equal(t, ErrBadValue, ErrorCodeOf(err))

	_, err = NewFieldPathFromParts("a", "")
	assert.Equal(t, ErrBadValue, ErrorCodeOf(err))
}
