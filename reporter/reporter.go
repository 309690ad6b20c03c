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

// Package reporter contains the types used for reporting errors and warnings
// found while generating code.
package reporter

import (
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// ErrorReporter is responsible for reporting the given error. If the reporter
// returns a non-nil error, generation will abort with that error. If the
// reporter returns nil, generation will continue, allowing the generator to
// report as many problems as it can find.
type ErrorReporter func(err ErrorWithPos) error

// WarningReporter is responsible for reporting the given warning. This is used
// for indicating non-error messages to the calling program for things that do
// not cause generation to fail, such as fields that are not generated.
type WarningReporter func(ErrorWithPos)

// Reporter is a type that handles reporting both errors and warnings.
type Reporter interface {
	// Error is called when the given error is encountered and needs to be
	// reported to the calling program. This signature matches ErrorReporter
	// because it has the same semantics. If this function returns non-nil
	// then the operation will abort immediately with the given error. But
	// if it returns nil, the operation will continue, reporting more errors
	// as they are encountered. If the reporter never returns non-nil then
	// the operation will eventually fail with ErrInvalidSource.
	Error(ErrorWithPos) error
	// Warning is called when the given warning is encountered and needs to be
	// reported to the calling program. Despite the argument being an error
	// type, a warning will never cause the operation to abort or fail.
	Warning(ErrorWithPos)
}

// NewReporter creates a new reporter that invokes the given functions on error
// or warning.
func NewReporter(errs ErrorReporter, warnings WarningReporter) Reporter {
	return reporterFuncs{errs: errs, warnings: warnings}
}

type reporterFuncs struct {
	errs     ErrorReporter
	warnings WarningReporter
}

func (r reporterFuncs) Error(err ErrorWithPos) error {
	if r.errs == nil {
		return err
	}
	return r.errs(err)
}

func (r reporterFuncs) Warning(err ErrorWithPos) {
	if r.warnings != nil {
		r.warnings(err)
	}
}

// Handler is used by generators to report errors and warnings. It tracks the
// first error returned by the reporter, and every error reported. It is safe
// for concurrent use, and calls the reporter from one goroutine at a time.
type Handler struct {
	reporter Reporter

	mu       sync.Mutex
	reported *multierror.Error
	err      error
}

// NewHandler creates a new Handler that reports errors and warnings using the
// given reporter. If rep is nil, a default reporter is used, which fails on
// the first error and ignores warnings.
func NewHandler(rep Reporter) *Handler {
	if rep == nil {
		rep = NewReporter(nil, nil)
	}
	return &Handler{reporter: rep}
}

// HandleErrorf reports an error at the position of d. It returns a non-nil
// error if the operation should abort.
func (h *Handler) HandleErrorf(d protoreflect.Descriptor, format string, args ...any) error {
	return h.HandleError(Errorf(d, format, args...))
}

// HandleError reports err. Errors without position information abort the
// operation without being passed to the reporter.
func (h *Handler) HandleError(err error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		return h.err
	}
	if ewp, ok := err.(ErrorWithPos); ok {
		h.reported = multierror.Append(h.reported, ewp)
		err = h.reporter.Error(ewp)
	}
	h.err = err
	return err
}

// HandleWarningf reports a warning at the position of d.
func (h *Handler) HandleWarningf(d protoreflect.Descriptor, format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.reporter.Warning(Errorf(d, format, args...))
}

// Error returns the handler result. If any errors have been reported then
// this returns a non-nil error. If the reporter never returned a non-nil
// error then the result matches ErrInvalidSource with errors.Is, and its
// message lists every reported error, one per line. Otherwise, this returns
// the error returned by the handler's reporter (the same value returned by
// ReporterError).
func (h *Handler) Error() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.reported != nil && h.err == nil {
		result := multierror.Append(ErrInvalidSource, h.reported.Errors...)
		result.ErrorFormat = formatLines
		return result
	}
	return h.err
}

func formatLines(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}

// ReporterError returns the error returned by the handler's reporter. If
// the reporter has either not been invoked (no errors handled) or has not
// returned any non-nil value, then this returns nil.
func (h *Handler) ReporterError() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.err
}
