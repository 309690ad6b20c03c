// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reporter

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// ErrInvalidSource is a sentinel error that is returned by generation in the
// event that errors are encountered, but the configured ErrorReporter always
// returns nil.
var ErrInvalidSource = errors.New("generation failed: schema cannot be represented in Kotlin")

// SourcePos is a position in a proto source file. Line and Col are 1-based;
// they are zero when the file carries no source code info.
type SourcePos struct {
	Filename  string
	Line, Col int
}

// String formats the position as "file:line:col", omitting the parts that
// are not known.
func (p SourcePos) String() string {
	if p.Line <= 0 {
		return p.Filename
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Col)
}

// PositionOf returns the source position of d.
func PositionOf(d protoreflect.Descriptor) SourcePos {
	file := d.ParentFile()
	if file == nil {
		return SourcePos{Filename: string(d.FullName())}
	}
	pos := SourcePos{Filename: file.Path()}
	loc := file.SourceLocations().ByDescriptor(d)
	if loc.Path != nil {
		pos.Line = loc.StartLine + 1
		pos.Col = loc.StartColumn + 1
	}
	return pos
}

// ErrorWithPos is an error about a proto source file that includes information
// about the location in the file that caused the error.
//
// The value of Error() will contain both the SourcePos and Underlying error.
// The value of Unwrap() will only be the Underlying error.
type ErrorWithPos interface {
	error
	GetPosition() SourcePos
	Unwrap() error
}

// Error wraps err with the position of d.
func Error(d protoreflect.Descriptor, err error) ErrorWithPos {
	return errorWithSourcePos{pos: PositionOf(d), underlying: err}
}

// Errorf creates a new error at the position of d.
func Errorf(d protoreflect.Descriptor, format string, args ...any) ErrorWithPos {
	return errorWithSourcePos{pos: PositionOf(d), underlying: fmt.Errorf(format, args...)}
}

type errorWithSourcePos struct {
	underlying error
	pos        SourcePos
}

func (e errorWithSourcePos) Error() string {
	return fmt.Sprintf("%s: %v", e.pos, e.underlying)
}

// GetPosition implements the ErrorWithPos interface, supplying a location in
// proto source that caused the error.
func (e errorWithSourcePos) GetPosition() SourcePos {
	return e.pos
}

// Unwrap implements the ErrorWithPos interface, supplying the underlying
// error. This error will not include location information.
func (e errorWithSourcePos) Unwrap() error {
	return e.underlying
}

var _ ErrorWithPos = errorWithSourcePos{}
