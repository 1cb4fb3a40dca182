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

package must

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMust(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 42, NotFail(42, nil))
	assert.PanicsWithError(t, "boom", func() { NotFail(0, errors.New("boom")) })

	assert.NotPanics(t, func() { NoError(nil) })
	assert.PanicsWithError(t, "boom", func() { NoError(errors.New("boom")) })

	assert.NotPanics(t, func() { BeTrue(true) })
	assert.PanicsWithValue(t, "not true", func() { BeTrue(false) })
}
