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

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfig(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		level       zapcore.Level
		development bool
	}{
		"Debug": {
			level:       zapcore.DebugLevel,
			development: true,
		},
		"Info": {
			level: zapcore.InfoLevel,
		},
		"Error": {
			level: zapcore.ErrorLevel,
		},
	} {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			config := Config(tc.level, tc.development)
			assert.Equal(t, tc.level, config.Level.Level())
			assert.Equal(t, tc.development, config.Development)
			assert.Equal(t, "console", config.Encoding)

			logger, err := config.Build()
			require.NoError(t, err)

			assert.True(t, logger.Core().Enabled(tc.level))
			assert.Equal(t, tc.level != zapcore.DebugLevel, !logger.Core().Enabled(zapcore.DebugLevel))
		})
	}
}
