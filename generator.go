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

package protokotlin

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protokotlin/reporter"
)

// Generator turns fully-linked file descriptors into Kotlin source files.
type Generator struct {
	// Options control the generated code.
	Options Options
	// The maximum parallelism to use when generating. If unspecified or set
	// to a non-positive value, then min(runtime.NumCPU(), runtime.GOMAXPROCS(-1))
	// will be used.
	MaxParallelism int
	// A custom error and warning reporter. If unspecified a default reporter
	// is used. A default reporter fails generation after encountering any
	// errors and ignores all warnings. Files are generated concurrently, but
	// the reporter is called from one goroutine at a time.
	Reporter reporter.Reporter
}

// Options control the generated code.
type Options struct {
	// Lite generates code for the lite runtime, which has no descriptors:
	// the reflection API of enums and messages and the file object are
	// left out.
	Lite bool
	// Annotate records, for each generated declaration, the descriptor it
	// was generated from. See [File.Info].
	Annotate bool
	// SupportUnknownEnumValues reports whether an enum is open, i.e. whether
	// its generated class must preserve numbers that have no declared value.
	// If nil, enums are open unless their descriptor says they are closed,
	// which is the case for proto2 enums.
	SupportUnknownEnumValues func(protoreflect.EnumDescriptor) bool
}

// File is a generated Kotlin source file.
type File struct {
	// Name is the path of the file, relative to the output root.
	Name string
	// Content is the Kotlin source.
	Content []byte
	// Info maps ranges of Content back to the declarations they were
	// generated from. It is nil unless Options.Annotate is set.
	Info *descriptorpb.GeneratedCodeInfo
	// Source is the file that Content was generated from.
	Source protoreflect.FileDescriptor
}

// PanicError is returned by [Generator.Generate] when generating a file
// panics. Panics indicate a bug in the generator, or descriptors that were
// not produced by a linker and violate its invariants.
type PanicError struct {
	// File is the path of the proto file that was being generated.
	File string
	// Value is the value that was passed to panic.
	Value any
	// Stack is the stack trace of the panicking goroutine.
	Stack string
}

// Error implements the error interface. It does not include the stack
// trace; use the Stack field for that.
func (p PanicError) Error() string {
	return fmt.Sprintf("panic generating %q: %v", p.File, p.Value)
}

// Generate generates a Kotlin file for each of files. The results are in
// the same order as files.
//
// Files are generated in parallel. If any file fails, the returned error is
// the first failure and no files are returned.
func (g *Generator) Generate(ctx context.Context, files ...protoreflect.FileDescriptor) ([]*File, error) {
	if len(files) == 0 {
		return nil, nil
	}

	par := g.MaxParallelism
	if par <= 0 {
		par = min(runtime.GOMAXPROCS(-1), runtime.NumCPU())
	}

	h := reporter.NewHandler(g.Reporter)
	sem := semaphore.NewWeighted(int64(par))
	grp, grpCtx := errgroup.WithContext(ctx)

	results := make([]*File, len(files))
	for i, file := range files {
		if err := sem.Acquire(grpCtx, 1); err != nil {
			// The context was cancelled, either by the caller or because a
			// file failed; Wait reports the failure.
			break
		}
		grp.Go(func() error {
			defer sem.Release(1)
			result, err := g.generateFile(file, h)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := h.Error(); err != nil {
		return nil, err
	}
	return results, nil
}

// generateFile generates one file, converting panics into errors.
func (g *Generator) generateFile(file protoreflect.FileDescriptor, h *reporter.Handler) (result *File, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, PanicError{
				File:  file.Path(),
				Value: r,
				Stack: string(debug.Stack()),
			}
		}
	}()

	fg := newFileGenerator(file, g.Options)
	if err := fg.validate(h); err != nil {
		return nil, err
	}
	return fg.generate(), nil
}
