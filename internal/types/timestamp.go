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
	"time"
)

// Timestamp represents BSON type Timestamp.
//
// The upper 32 bits hold seconds since the Unix epoch, the lower 32 bits hold an increment.
// Timestamps are ordered as unsigned 64-bit integers.
type Timestamp uint64

// MakeTimestamp returns a timestamp from seconds and an increment.
func MakeTimestamp(secs, inc uint32) Timestamp {
	return Timestamp(uint64(secs)<<32 | uint64(inc))
}

// Secs returns the seconds part.
func (ts Timestamp) Secs() uint32 {
	return uint32(ts >> 32)
}

// Inc returns the increment part.
func (ts Timestamp) Inc() uint32 {
	return uint32(ts)
}

// Time returns time.Time ignoring increment.
func (ts Timestamp) Time() time.Time {
	return time.Unix(int64(ts.Secs()), 0).UTC()
}

// String returns a representation like Timestamp(1, 2).
func (ts Timestamp) String() string {
	return fmt.Sprintf("Timestamp(%d, %d)", ts.Secs(), ts.Inc())
}
