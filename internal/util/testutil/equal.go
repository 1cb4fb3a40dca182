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

package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FerretDB/docvalue/internal/types"
)

// Type is a constraint for values that could be compared with AssertEqual.
type Type interface {
	types.Value | types.Document
}

// identical returns true if values have the same types and values.
// Documents should also have the same metadata.
func identical[T Type](expected, actual T) bool {
	switch expected := any(expected).(type) {
	case types.Value:
		return types.Identical(expected, any(actual).(types.Value))
	case types.Document:
		actual := any(actual).(types.Document)
		return types.IdenticalDocuments(expected, actual) && expected.Metadata().Equal(actual.Metadata())
	default:
		panic(fmt.Sprintf("unexpected type %T", expected))
	}
}

// AssertEqual asserts that two values or documents are identical.
//
// Unlike types.Compare, values of different numeric types are not considered equal.
func AssertEqual[T Type](t testing.TB, expected, actual T) bool {
	t.Helper()

	if identical(expected, actual) {
		return true
	}

	expectedS, actualS, diff := diffValues(t, expected, actual)
	msg := fmt.Sprintf("Not equal: \nexpected: %s\nactual  : %s\n%s", expectedS, actualS, diff)
	return assert.Fail(t, msg)
}

// AssertNotEqual asserts that two values or documents are not identical.
func AssertNotEqual[T Type](t testing.TB, expected, actual T) bool {
	t.Helper()

	if !identical(expected, actual) {
		return true
	}

	// The diff of equal values should be empty, but produce it anyway to catch subtle bugs.
	expectedS, actualS, diff := diffValues(t, expected, actual)
	msg := fmt.Sprintf("Unexpected equal: \nexpected: %s\nactual  : %s\n%s", expectedS, actualS, diff)
	return assert.Fail(t, msg)
}

// dump returns a multi-line representation of the value or document with types.
func dump[T Type](v T) string {
	var sb strings.Builder

	switch v := any(v).(type) {
	case types.Value:
		fmt.Fprintf(&sb, "%s (%s)\n", v, v.Type())

	case types.Document:
		iter := v.Iterator()
		defer iter.Close()

		for {
			name, fv, err := iter.Next()
			if err != nil {
				break
			}

			fmt.Fprintf(&sb, "%q: %s (%s)\n", name, fv, fv.Type())
		}

		if m := v.Metadata(); !m.Empty() {
			fmt.Fprintf(&sb, "metadata: %#v\n", m)
		}
	}

	return sb.String()
}

// diffValues returns a readable form of given values and the difference between them.
func diffValues[T Type](t testing.TB, expected, actual T) (expectedS string, actualS string, diff string) {
	expectedS = dump(expected)
	actualS = dump(actual)

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expectedS),
		FromFile: "expected",
		B:        difflib.SplitLines(actualS),
		ToFile:   "actual",
		Context:  1,
	})
	require.NoError(t, err)

	return
}
