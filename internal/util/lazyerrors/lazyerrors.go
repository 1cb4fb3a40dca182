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

// Package lazyerrors provides temporary error wrapping for lazy developers.
//
// Errors created or wrapped by this package carry the location of the caller.
package lazyerrors

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// withLocation wraps an error with the program counter of its creation site.
type withLocation struct {
	err error
	pc  uintptr
}

// Error implements error interface.
func (e *withLocation) Error() string {
	loc := location(e.pc)
	if loc == "" {
		return "[unknown] " + e.err.Error()
	}

	return "[" + loc + "] " + e.err.Error()
}

// Unwrap returns the wrapped error.
func (e *withLocation) Unwrap() error {
	return e.err
}

// New returns new error based on string, enriched with caller location.
func New(s string) error {
	return &withLocation{
		err: errors.New(s),
		pc:  callerPC(),
	}
}

// Error returns new error based on err and ensures err is not nil.
func Error(err error) error {
	if err == nil {
		panic("err is nil")
	}

	return &withLocation{
		err: err,
		pc:  callerPC(),
	}
}

// Errorf returns formatted error enriched with caller location.
func Errorf(format string, a ...any) error {
	return &withLocation{
		err: fmt.Errorf(format, a...),
		pc:  callerPC(),
	}
}

// callerPC returns the program counter of the caller of the exported function.
func callerPC() uintptr {
	pcs := make([]uintptr, 1)

	// skip runtime.Callers, callerPC, and New/Error/Errorf
	if runtime.Callers(3, pcs) < 1 {
		return 0
	}

	return pcs[0]
}

// location returns "file.go:line package.Function" for the given program counter.
func location(pc uintptr) string {
	if pc == 0 {
		return ""
	}

	frames := runtime.CallersFrames([]uintptr{pc})
	f, _ := frames.Next()
	if f.File == "" {
		return ""
	}

	_, file := filepath.Split(f.File)
	res := file + ":" + strconv.Itoa(f.Line)

	if f.Function != "" {
		res += " " + f.Function[strings.LastIndex(f.Function, "/")+1:]
	}

	return res
}
