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

package protokotlin_test

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protokotlin"
	"github.com/bufbuild/protokotlin/internal/testutil"
	"github.com/bufbuild/protokotlin/reporter"
)

var sources = map[string]string{
	"a/first.proto": `
		syntax = "proto3";
		package pkg.first;
		import "b/second.proto";
		import "google/protobuf/descriptor.proto";
		// A holder.
		message Holder {
			pkg.second.Thing thing = 1;
			repeated pkg.second.Thing things = 2;
			google.protobuf.FileDescriptorProto file = 3;
		}
	`,
	"b/second.proto": `
		syntax = "proto2";
		package pkg.second;
		option java_package = "com.example.second";
		message Thing {
			optional Thing next = 1;
			enum Kind { KIND_A = 1; KIND_B = 2; }
		}
		enum Mode { MODE_A = 1; }
	`,
	"c/third.proto": `
		syntax = "proto3";
		package pkg.in;
		message Empty {}
	`,
}

func compileAll(t *testing.T) []protoreflect.FileDescriptor {
	t.Helper()
	return testutil.CompileFiles(t, sources, "a/first.proto", "b/second.proto", "c/third.proto")
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	files := compileAll(t)

	gen := protokotlin.Generator{}
	results, err := gen.Generate(context.Background(), files...)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "pkg/first/First.kt", results[0].Name)
	assert.Equal(t, "com/example/second/Second.kt", results[1].Name)
	assert.Equal(t, "pkg/in/Third.kt", results[2].Name)
	for i, result := range results {
		assert.Equal(t, files[i], result.Source)
		assert.Nil(t, result.Info)
	}

	first := string(results[0].Content)
	assert.True(t, strings.HasPrefix(first,
		"// Generated by protoc-gen-kotlin. DO NOT EDIT!\n"+
			"// source: a/first.proto\n"+
			"\n"+
			"@file:Suppress(\"DEPRECATION\", \"UNCHECKED_CAST\", \"UNUSED_VARIABLE\")\n"+
			"\n"+
			"package pkg.first\n"+
			"\n"+
			"interface HolderOrBuilder {\n"), first)
	assert.Contains(t, first, "/**\n * A holder.\n */\nclass Holder private constructor()")
	assert.Contains(t, first, "  fun getThing(): com.example.second.Thing\n")
	assert.Contains(t, first, "  fun getFile(): com.google.protobuf.FileDescriptorProto\n")
	assert.Contains(t, first, "object FirstProto {\n")
	assert.Contains(t, first,
		"    arrayOf(com.example.second.SecondProto.getDescriptor(), com.google.protobuf.DescriptorProtos.getDescriptor()),\n")
	assert.True(t, strings.HasSuffix(first, "fun getDescriptor(): com.google.protobuf.Descriptors.FileDescriptor = descriptor\n}\n"))

	// Enums come before messages; closed enums have no unrecognized entry.
	second := string(results[1].Content)
	assert.Less(t, strings.Index(second, "enum class Mode"), strings.Index(second, "class Thing"))
	assert.NotContains(t, second, "UNRECOGNIZED")
	assert.Contains(t, second, "    arrayOf(),\n")

	// Keywords in package names are escaped.
	third := string(results[2].Content)
	assert.Contains(t, third, "package pkg.`in`\n")
	assert.Contains(t, third, "pkg.`in`.ThirdProto.getDescriptor().getMessageTypes().get(0)\n")
}

var chunkPattern = regexp.MustCompile(`(?m)^    ("(?:[^"\\]|\\.)*"),$`)

func TestGenerateEmbedsDescriptor(t *testing.T) {
	t.Parallel()
	files := compileAll(t)
	gen := protokotlin.Generator{}
	results, err := gen.Generate(context.Background(), files[0])
	require.NoError(t, err)

	content := string(results[0].Content)
	start := strings.Index(content, "private val descriptorData")
	require.Positive(t, start)
	var data []byte
	for _, match := range chunkPattern.FindAllStringSubmatch(content[start:], -1) {
		chunk, err := strconv.Unquote(match[1])
		require.NoError(t, err)
		// Every char of the literal stands for one byte.
		for _, r := range chunk {
			require.Less(t, r, rune(256))
			data = append(data, byte(r))
		}
	}

	var got descriptorpb.FileDescriptorProto
	require.NoError(t, proto.Unmarshal(data, &got))
	want := protodesc.ToFileDescriptorProto(files[0])
	want.SourceCodeInfo = nil
	assert.True(t, proto.Equal(want, &got), "embedded descriptor differs:\n got: %v\nwant: %v", &got, want)
}

func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()
	files := compileAll(t)

	serial := protokotlin.Generator{MaxParallelism: 1}
	want, err := serial.Generate(context.Background(), files...)
	require.NoError(t, err)

	parallel := protokotlin.Generator{MaxParallelism: 8}
	reversed := []protoreflect.FileDescriptor{files[2], files[1], files[0]}
	for range 5 {
		got, err := parallel.Generate(context.Background(), reversed...)
		require.NoError(t, err)
		require.Len(t, got, 3)
		for i := range got {
			assert.Equal(t, want[len(want)-1-i].Name, got[i].Name)
			assert.Equal(t, string(want[len(want)-1-i].Content), string(got[i].Content))
		}
	}
}

func TestGenerateOptions(t *testing.T) {
	t.Parallel()
	files := compileAll(t)

	lite := protokotlin.Generator{Options: protokotlin.Options{Lite: true}}
	results, err := lite.Generate(context.Background(), files[1])
	require.NoError(t, err)
	content := string(results[0].Content)
	assert.NotContains(t, content, "object SecondProto")
	assert.NotContains(t, content, "Descriptors")
	assert.Contains(t, content, "com.google.protobuf.Internal.EnumLite")

	open := protokotlin.Generator{Options: protokotlin.Options{
		SupportUnknownEnumValues: func(enum protoreflect.EnumDescriptor) bool {
			return enum.Name() == "Kind"
		},
	}}
	results, err = open.Generate(context.Background(), files[1])
	require.NoError(t, err)
	content = string(results[0].Content)
	assert.Equal(t, 1, strings.Count(content, "UNRECOGNIZED(-1),"))
	assert.Contains(t, content, "enum class Kind(val value: Int) : com.google.protobuf.ProtocolMessageEnum {\n")

	annotated := protokotlin.Generator{Options: protokotlin.Options{Annotate: true}}
	results, err = annotated.Generate(context.Background(), files[1])
	require.NoError(t, err)
	require.NotNil(t, results[0].Info)
	content = string(results[0].Content)
	found := map[string][]int32{}
	for _, a := range results[0].Info.GetAnnotation() {
		assert.Equal(t, "b/second.proto", a.GetSourceFile())
		found[content[a.GetBegin():a.GetEnd()]] = a.GetPath()
	}
	assert.Equal(t, []int32{5, 0}, found["Mode"])
	assert.Equal(t, []int32{4, 0}, found["Thing"])
	assert.Equal(t, []int32{4, 0, 4, 0}, found["Kind"])
	assert.Equal(t, []int32{4, 0, 2, 0}, found["Next"])
	assert.Contains(t, content,
		"@javax.annotation.Generated(value = [\"protoc\"], comments = \"annotations:Second.kt.pb.meta\")\n"+
			"enum class Mode(")
}

func TestGenerateReportsProblems(t *testing.T) {
	t.Parallel()
	file := testutil.Compile(t, "syntax = \"proto3\";\n"+
		"package foo;\n"+
		"enum Bad {\n"+
		"  BAD_UNSPECIFIED = 0;\n"+
		"  UNRECOGNIZED = 1;\n"+
		"}\n"+
		"message M {\n"+
		"  int32 n = 1;\n"+
		"  map<string, M> m = 2;\n"+
		"  M ok = 3;\n"+
		"}\n"+
		"service S {}\n")

	// The default reporter fails on the first error.
	var defaults protokotlin.Generator
	_, err := defaults.Generate(context.Background(), file)
	var ewp reporter.ErrorWithPos
	require.ErrorAs(t, err, &ewp)
	assert.Equal(t, "test.proto:5:3: enum value UNRECOGNIZED collides with the entry generated for unrecognized values of open enum foo.Bad", err.Error())

	var errs, warnings []string
	gen := protokotlin.Generator{
		MaxParallelism: 1,
		Reporter: reporter.NewReporter(
			func(err reporter.ErrorWithPos) error {
				errs = append(errs, err.Error())
				return nil
			},
			func(err reporter.ErrorWithPos) {
				warnings = append(warnings, err.Error())
			},
		),
	}
	results, err := gen.Generate(context.Background(), file)
	require.ErrorIs(t, err, reporter.ErrInvalidSource)
	assert.Nil(t, results)
	assert.Len(t, errs, 1)
	assert.Equal(t, []string{
		"test.proto:8:3: field foo.M.n is not generated: only message-typed fields are supported",
		"test.proto:9:3: field foo.M.m is not generated: map fields are not supported",
		"test.proto:12:1: service foo.S is not generated: services are not supported",
	}, warnings)

	// Closed enums have no unrecognized entry to collide with.
	closed := protokotlin.Generator{
		Options: protokotlin.Options{
			SupportUnknownEnumValues: func(protoreflect.EnumDescriptor) bool { return false },
		},
	}
	_, err = closed.Generate(context.Background(), file)
	require.NoError(t, err)
}

func TestGenerateErrorListsEveryProblem(t *testing.T) {
	t.Parallel()
	srcs := map[string]string{
		"x/one.proto": "syntax = \"proto3\";\n" +
			"package one;\n" +
			"enum E {\n" +
			"  E_ZERO = 0;\n" +
			"  UNRECOGNIZED = 1;\n" +
			"  NEG = -1;\n" +
			"}\n",
		"x/two.proto": "syntax = \"proto3\";\n" +
			"package two;\n" +
			"enum F {\n" +
			"  F_ZERO = 0;\n" +
			"  UNRECOGNIZED = 2;\n" +
			"}\n",
	}
	names := []string{"x/one.proto", "x/two.proto"}
	for i := range 8 {
		name := "w/warn" + strconv.Itoa(i) + ".proto"
		srcs[name] = "syntax = \"proto3\";\npackage w" + strconv.Itoa(i) + ";\nmessage M { int32 n = 1; }\n"
		names = append(names, name)
	}
	files := testutil.CompileFiles(t, srcs, names...)

	// The reporter is called from one goroutine at a time, so appending
	// without a lock is safe even with parallel generation.
	var warnings []string
	gen := protokotlin.Generator{
		MaxParallelism: 4,
		Reporter: reporter.NewReporter(
			func(reporter.ErrorWithPos) error { return nil },
			func(err reporter.ErrorWithPos) {
				warnings = append(warnings, err.Error())
			},
		),
	}
	results, err := gen.Generate(context.Background(), files...)
	require.ErrorIs(t, err, reporter.ErrInvalidSource)
	assert.Nil(t, results)
	assert.Len(t, warnings, 8)

	lines := strings.Split(err.Error(), "\n")
	assert.Equal(t, reporter.ErrInvalidSource.Error(), lines[0])
	slices.Sort(lines[1:])
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "x/one.proto:5:3: enum value UNRECOGNIZED collides"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "x/one.proto:6:3: enum value NEG uses number -1"), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "x/two.proto:5:3: enum value UNRECOGNIZED collides"), lines[3])
}

func TestGenerateWarnsOnExtensions(t *testing.T) {
	t.Parallel()
	file := testutil.Compile(t, "syntax = \"proto2\";\n"+
		"package foo;\n"+
		"message M {\n"+
		"  extensions 10 to 20;\n"+
		"}\n"+
		"extend M {\n"+
		"  optional M ext = 10;\n"+
		"}\n")
	var warnings []string
	gen := protokotlin.Generator{
		MaxParallelism: 1,
		Reporter: reporter.NewReporter(nil, func(err reporter.ErrorWithPos) {
			warnings = append(warnings, err.Error())
		}),
	}
	_, err := gen.Generate(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"test.proto:7:3: extension foo.ext is not generated: extensions are not supported",
	}, warnings)
}

type brokenFile struct {
	protoreflect.FileDescriptor
}

func (f brokenFile) Enums() protoreflect.EnumDescriptors { return brokenEnums{} }

type brokenEnums struct {
	protoreflect.EnumDescriptors
}

func (brokenEnums) Len() int                            { return 1 }
func (brokenEnums) Get(int) protoreflect.EnumDescriptor { return emptyEnum{} }

type emptyEnum struct {
	protoreflect.EnumDescriptor
}

func (emptyEnum) FullName() protoreflect.FullName           { return "foo.Empty" }
func (emptyEnum) IsClosed() bool                            { return false }
func (emptyEnum) Values() protoreflect.EnumValueDescriptors { return emptyValues{} }

type emptyValues struct {
	protoreflect.EnumValueDescriptors
}

func (emptyValues) Len() int { return 0 }

func TestGeneratePanic(t *testing.T) {
	t.Parallel()
	file := testutil.Compile(t, "syntax = \"proto3\";\npackage foo;\n")
	var gen protokotlin.Generator
	_, err := gen.Generate(context.Background(), brokenFile{file})
	var panicErr protokotlin.PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "test.proto", panicErr.File)
	assert.Equal(t, "enums: foo.Empty declares no values", panicErr.Value)
	assert.Contains(t, panicErr.Stack, "enums.New")
	assert.Equal(t, `panic generating "test.proto": enums: foo.Empty declares no values`, err.Error())
}

func TestGenerateCancelled(t *testing.T) {
	t.Parallel()
	files := compileAll(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var gen protokotlin.Generator
	results, err := gen.Generate(ctx, files...)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Nil(t, results)

	results, err = gen.Generate(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, results)
}
