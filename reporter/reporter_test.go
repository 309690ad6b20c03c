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

package reporter_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/protokotlin/internal/testutil"
	"github.com/bufbuild/protokotlin/reporter"
)

const source = "syntax = \"proto3\";\n" +
	"package foo;\n" +
	"message Foo {}\n" +
	"  enum Bar { BAR_ZERO = 0; }\n"

func TestPositionOf(t *testing.T) {
	t.Parallel()
	file := testutil.Compile(t, source)

	pos := reporter.PositionOf(testutil.Message(t, file, "Foo"))
	assert.Equal(t, reporter.SourcePos{Filename: "test.proto", Line: 3, Col: 1}, pos)
	assert.Equal(t, "test.proto:3:1", pos.String())

	pos = reporter.PositionOf(testutil.Enum(t, file, "Bar"))
	assert.Equal(t, "test.proto:4:3", pos.String())

	err := reporter.Errorf(testutil.Message(t, file, "Foo"), "bad %s", "thing")
	assert.Equal(t, "test.proto:3:1: bad thing", err.Error())
	assert.Equal(t, "bad thing", errors.Unwrap(err).Error())
}

func TestHandlerDefaultReporter(t *testing.T) {
	t.Parallel()
	file := testutil.Compile(t, source)
	foo := testutil.Message(t, file, "Foo")

	h := reporter.NewHandler(nil)
	h.HandleWarningf(foo, "ignored")
	require.NoError(t, h.Error())

	err := h.HandleErrorf(foo, "first")
	require.Error(t, err)
	var ewp reporter.ErrorWithPos
	require.ErrorAs(t, err, &ewp)
	assert.Equal(t, 3, ewp.GetPosition().Line)

	// Once aborted, later errors return the first one.
	assert.Equal(t, err, h.HandleErrorf(foo, "second"))
	assert.Equal(t, err, h.Error())
	assert.Equal(t, err, h.ReporterError())
}

func TestHandlerCollectingReporter(t *testing.T) {
	t.Parallel()
	file := testutil.Compile(t, source)
	foo := testutil.Message(t, file, "Foo")

	// The handler calls the reporter from one goroutine at a time, so
	// neither func needs a lock.
	var errs, warnings []string
	h := reporter.NewHandler(reporter.NewReporter(
		func(err reporter.ErrorWithPos) error {
			errs = append(errs, err.Error())
			return nil
		},
		func(err reporter.ErrorWithPos) {
			warnings = append(warnings, err.Error())
		},
	))

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.HandleWarningf(foo, "warning")
			assert.NoError(t, h.HandleErrorf(foo, "error"))
		}()
	}
	wg.Wait()

	assert.Len(t, errs, 4)
	assert.Len(t, warnings, 4)
	assert.Equal(t, "test.proto:3:1: warning", warnings[0])
	assert.NoError(t, h.ReporterError())
	err := h.Error()
	require.ErrorIs(t, err, reporter.ErrInvalidSource)
	assert.Equal(t,
		reporter.ErrInvalidSource.Error()+strings.Repeat("\ntest.proto:3:1: error", 4),
		err.Error())
}
