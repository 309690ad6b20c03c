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

package printer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/protokotlin/internal/testutil"
	"github.com/bufbuild/protokotlin/printer"
)

func TestPrint(t *testing.T) {
	t.Parallel()
	p := printer.New()
	p.Print("val $name$: Int = $number$\n", "name", "FOO", "number", "1")
	p.Print("costs $$$price$\n", "price", "5")
	p.PrintVars(printer.Vars{"a": "x"}.With("b", "y"), "$a$$b$\n")
	assert.Equal(t, "val FOO: Int = 1\ncosts $5\nxy\n", p.String())
	assert.Equal(t, len(p.String()), p.Len())
}

func TestIndent(t *testing.T) {
	t.Parallel()
	p := printer.New()
	p.Print("class A {\n")
	p.Indent(func() {
		p.Print("fun b() {\n")
		p.Indent(func() {
			p.Print("c()\n\nd($x$)\n", "x", "1")
		})
		p.Print("}\n")
	})
	p.Print("}\n")
	assert.Equal(t, "class A {\n  fun b() {\n    c()\n\n    d(1)\n  }\n}\n", p.String())
}

func TestIndentMultilineValue(t *testing.T) {
	t.Parallel()
	p := printer.New()
	p.Indent(func() {
		p.Print("$annotation$fun a()\n", "annotation", "@Deprecated\n")
		p.Print("$annotation$fun b()\n", "annotation", "")
	})
	assert.Equal(t, "  @Deprecated\n  fun a()\n  fun b()\n", p.String())
}

func TestPrintPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { printer.New().Print("$missing$") })
	assert.Panics(t, func() { printer.New().Print("$open", "open", "x") })
	assert.Panics(t, func() { printer.New().Print("text", "odd") })
	assert.Panics(t, func() { printer.Vars{}.With("odd") })
}

func TestAnnotate(t *testing.T) {
	t.Parallel()
	file := testutil.Compile(t, `
		syntax = "proto3";
		package foo;
		message Bar {
			message Baz {}
		}
	`)
	bar := testutil.Message(t, file, "Bar")
	baz := testutil.Message(t, file, "Bar.Baz")

	p := printer.New()
	p.Print("class $name$ {\n", "name", "Bar")
	p.Annotate("name", bar)
	p.Indent(func() {
		p.Print("${$class Baz$}$\n", "{", "", "}", "")
		p.AnnotateRange("{", "}", baz)
	})
	p.Print("}\n")
	require.Equal(t, "class Bar {\n  class Baz\n}\n", p.String())

	info := p.Info()
	require.Len(t, info.GetAnnotation(), 2)

	first := info.GetAnnotation()[0]
	assert.Equal(t, []int32{4, 0}, first.GetPath())
	assert.Equal(t, "test.proto", first.GetSourceFile())
	assert.Equal(t, "Bar", p.String()[first.GetBegin():first.GetEnd()])

	second := info.GetAnnotation()[1]
	assert.Equal(t, []int32{4, 0, 3, 0}, second.GetPath())
	assert.Equal(t, "class Baz", p.String()[second.GetBegin():second.GetEnd()])
}

func TestAnnotateUnprinted(t *testing.T) {
	t.Parallel()
	p := printer.New()
	p.Print("$a$\n", "a", "x")
	assert.Panics(t, func() { p.Annotate("b", nil) })
	assert.NotPanics(t, func() { p.Annotate("a", nil) })
	assert.Empty(t, p.Info().GetAnnotation())
}
