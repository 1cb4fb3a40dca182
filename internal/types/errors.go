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
	"errors"
	"fmt"
)

// ErrorCode represents a value model error code.
type ErrorCode int

const (
	_ ErrorCode = iota

	// ErrTypeMismatch indicates that an accessor or coercion was used
	// against an incompatible variant.
	ErrTypeMismatch

	// ErrOverflow indicates a numeric value out of the target range,
	// or a document nested deeper than the allowed maximum.
	ErrOverflow

	// ErrParse indicates a malformed encoded byte stream.
	ErrParse

	// ErrInvariantViolation indicates a misuse of the API,
	// such as mutating a frozen MutableDocument or using a stale Position.
	ErrInvariantViolation

	// ErrBadValue indicates an invalid argument, such as a malformed field path.
	ErrBadValue
)

// String implements fmt.Stringer.
func (c ErrorCode) String() string {
	switch c {
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrOverflow:
		return "Overflow"
	case ErrParse:
		return "ParseError"
	case ErrInvariantViolation:
		return "InvariantViolation"
	case ErrBadValue:
		return "BadValue"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// Error represents a value model error.
type Error struct {
	code ErrorCode
	msg  string
}

// NewError creates a new error with the given code and message.
func NewError(code ErrorCode, msg string) *Error {
	return &Error{
		code: code,
		msg:  msg,
	}
}

// newErrorf creates a new error with the given code and formatted message.
func newErrorf(code ErrorCode, format string, a ...any) *Error {
	return NewError(code, fmt.Sprintf(format, a...))
}

// Error implements error interface.
func (e *Error) Error() string {
	return e.code.String() + ": " + e.msg
}

// Code returns the error code.
func (e *Error) Code() ErrorCode {
	return e.code
}

// ErrorCodeOf returns the code of the first *Error in err's chain, or 0.
func ErrorCodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}

	return 0
}

// check interfaces
var (
	_ error = (*Error)(nil)
)
