// Copyright 2019 The UNICORE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file
//
// Author: Gaulthier Gain <gaulthier.gain@uliege.be>

package symbols

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds shared by the extraction, index and IR analysis steps.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrOpenFailed        = errors.New("failed to open file")
	ErrUnexpectedEOF     = errors.New("unexpected end of input")
	ErrInvalidStructure  = errors.New("invalid structure")
	ErrDebugDatabase     = errors.New("debug database error")
	ErrNoIRFiles         = errors.New("no LLVM IR files found")
)

// Error is a failure tied to a file. Kind is one of the exported sentinel
// errors and Err the underlying cause, if any.
type Error struct {
	Kind error
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind of the error.
func (e *Error) Is(target error) bool { return e.Kind == target }

// Cause implements the pkg/errors causer interface.
func (e *Error) Cause() error { return e.Kind }

// NewError wraps err with the given kind and path.
func NewError(kind error, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// Truncated reports a read past the end of a buffer.
func Truncated(path, what string) *Error {
	return NewError(ErrUnexpectedEOF, path, errors.New(what))
}

// Invalid reports a malformed structure.
func Invalid(path, format string, args ...interface{}) *Error {
	return NewError(ErrInvalidStructure, path, errors.Errorf(format, args...))
}

// IsNoIRFiles reports whether err means that no IR file could be found.
func IsNoIRFiles(err error) bool {
	return errors.Is(err, ErrNoIRFiles)
}

// IsParseError reports whether err is one of the parse error kinds.
func IsParseError(err error) bool {
	return errors.Is(err, ErrUnexpectedEOF) || errors.Is(err, ErrInvalidStructure)
}
