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

// Package testutil compiles protobuf sources into descriptors for tests.
package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/bufbuild/protocompile"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// DefaultPath is the path under which Compile places a single source.
const DefaultPath = "test.proto"

// CompileFiles compiles the named sources, which may import each other and
// the standard imports, and returns the descriptors of names, in order.
func CompileFiles(t testing.TB, sources map[string]string, names ...string) []protoreflect.FileDescriptor {
	t.Helper()
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(sources),
		}),
		SourceInfoMode: protocompile.SourceInfoStandard,
	}
	files, err := compiler.Compile(context.Background(), names...)
	var panicErr protocompile.PanicError
	if errors.As(err, &panicErr) {
		t.Logf("panic! %v\n%s", panicErr.Value, panicErr.Stack)
	}
	require.NoError(t, err)

	out := make([]protoreflect.FileDescriptor, len(files))
	for i, file := range files {
		out[i] = file
	}
	return out
}

// Compile compiles a single source, stored at DefaultPath.
func Compile(t testing.TB, source string) protoreflect.FileDescriptor {
	t.Helper()
	return CompileFiles(t, map[string]string{DefaultPath: source}, DefaultPath)[0]
}

// Message returns the message with the given name, relative to the package
// of file. Nested messages are separated by dots.
func Message(t testing.TB, file protoreflect.FileDescriptor, name string) protoreflect.MessageDescriptor {
	t.Helper()
	d := find(t, file, name)
	msg, ok := d.(protoreflect.MessageDescriptor)
	require.True(t, ok, "%s is a %T, not a message", name, d)
	return msg
}

// Enum is like Message, but for enums.
func Enum(t testing.TB, file protoreflect.FileDescriptor, name string) protoreflect.EnumDescriptor {
	t.Helper()
	d := find(t, file, name)
	enum, ok := d.(protoreflect.EnumDescriptor)
	require.True(t, ok, "%s is a %T, not an enum", name, d)
	return enum
}

// Field is like Message, but for fields. The name includes the message.
func Field(t testing.TB, file protoreflect.FileDescriptor, name string) protoreflect.FieldDescriptor {
	t.Helper()
	d := find(t, file, name)
	field, ok := d.(protoreflect.FieldDescriptor)
	require.True(t, ok, "%s is a %T, not a field", name, d)
	return field
}

func find(t testing.TB, file protoreflect.FileDescriptor, name string) protoreflect.Descriptor {
	t.Helper()
	fullName := protoreflect.FullName(name)
	if pkg := file.Package(); pkg != "" {
		fullName = pkg + "." + fullName
	}
	d := lookup(file, fullName)
	require.NotNil(t, d, "no descriptor named %s in %s", fullName, file.Path())
	return d
}

func lookup(file protoreflect.FileDescriptor, name protoreflect.FullName) protoreflect.Descriptor {
	var found protoreflect.Descriptor
	var visit func(d protoreflect.Descriptor)
	visitMessages := func(msgs protoreflect.MessageDescriptors) {
		for i := range msgs.Len() {
			visit(msgs.Get(i))
		}
	}
	visitEnums := func(enums protoreflect.EnumDescriptors) {
		for i := range enums.Len() {
			visit(enums.Get(i))
		}
	}
	visit = func(d protoreflect.Descriptor) {
		if found != nil {
			return
		}
		if d.FullName() == name {
			found = d
			return
		}
		if msg, ok := d.(protoreflect.MessageDescriptor); ok {
			for i := range msg.Fields().Len() {
				visit(msg.Fields().Get(i))
			}
			visitMessages(msg.Messages())
			visitEnums(msg.Enums())
		}
	}
	visitMessages(file.Messages())
	visitEnums(file.Enums())
	return found
}
