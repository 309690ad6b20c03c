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

// Package printer provides a line-oriented text emitter for generated code.
//
// Text is written with [Printer.Print], which substitutes named placeholders
// of the form $name$ from a set of variables. Indentation is scoped: the body
// passed to [Printer.Indent] is printed one level deeper, and the level is
// restored when the body returns, including when it panics.
//
// A Printer can also record annotations, which tie byte ranges of the output
// to the descriptors they were generated from. These are reported as a
// [descriptorpb.GeneratedCodeInfo], the format consumed by IDE integrations.
package printer

import (
	"bytes"
	"fmt"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protokotlin/internal/sourcepath"
)

// Delimiter brackets placeholder names in printed text. Two delimiters in a
// row print a single literal delimiter.
const Delimiter = '$'

// indentUnit is the text inserted per indentation level.
const indentUnit = "  "

// Vars is a set of placeholder substitutions.
type Vars map[string]string

// With returns a copy of vars with the given key/value pairs added.
//
// Panics if kv has an odd length.
func (v Vars) With(kv ...string) Vars {
	if len(kv)%2 != 0 {
		panic("printer: odd number of arguments to Vars.With")
	}
	out := make(Vars, len(v)+len(kv)/2)
	for k, s := range v {
		out[k] = s
	}
	for i := 0; i < len(kv); i += 2 {
		out[kv[i]] = kv[i+1]
	}
	return out
}

// span is a range of bytes in the output.
type span struct {
	start, end int
}

// Printer accumulates generated text.
//
// The zero value is ready to use.
type Printer struct {
	buf         bytes.Buffer
	depth       int
	midLine     bool
	substituted map[string]span
	annotations []*descriptorpb.GeneratedCodeInfo_Annotation
}

// New returns a new, empty printer.
func New() *Printer {
	return &Printer{}
}

// Print prints text, substituting placeholders with the given key/value
// pairs. For example:
//
//	p.Print("val $name$: Int = $number$\n", "name", "FOO", "number", "1")
//
// Panics if kv has an odd length, or if text refers to a placeholder that was
// not supplied or is not terminated; both indicate a bug in the caller.
func (p *Printer) Print(text string, kv ...string) {
	if len(kv)%2 != 0 {
		panic("printer: odd number of arguments to Print")
	}
	var vars Vars
	if len(kv) > 0 {
		vars = make(Vars, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			vars[kv[i]] = kv[i+1]
		}
	}
	p.PrintVars(vars, text)
}

// PrintVars is like [Printer.Print], but takes its substitutions as a map.
func (p *Printer) PrintVars(vars Vars, text string) {
	p.substituted = make(map[string]span)
	for len(text) > 0 {
		i := strings.IndexByte(text, Delimiter)
		if i < 0 {
			p.write(text)
			return
		}
		p.write(text[:i])
		text = text[i+1:]

		j := strings.IndexByte(text, Delimiter)
		if j < 0 {
			panic(fmt.Sprintf("printer: unterminated placeholder in %q", text))
		}
		name := text[:j]
		text = text[j+1:]

		if name == "" {
			p.write(string(Delimiter))
			continue
		}
		value, ok := vars[name]
		if !ok {
			panic(fmt.Sprintf("printer: undefined placeholder $%s$", name))
		}

		// Placeholders are positioned after any pending indentation, so that
		// annotations never cover leading whitespace.
		p.maybeIndent()
		start := p.buf.Len()
		p.write(value)
		p.substituted[name] = span{start: start, end: p.buf.Len()}
	}
}

// Indent prints everything body prints one level deeper.
func (p *Printer) Indent(body func()) {
	p.depth++
	defer func() { p.depth-- }()
	body()
}

// Annotate records that the text most recently substituted for the
// placeholder name in the last call to Print was generated from d.
//
// Panics if the last call to Print did not substitute name.
func (p *Printer) Annotate(name string, d protoreflect.Descriptor) {
	p.AnnotateRange(name, name, d)
}

// AnnotateRange records that the text starting at the substitution of begin
// and ending at the substitution of end, both from the last call to Print,
// was generated from d. Zero-width placeholders can be used to bracket text
// that is not itself substituted:
//
//	p.Print("${$UNRECOGNIZED$}$(-1),\n", "{", "", "}", "")
//	p.AnnotateRange("{", "}", enum)
func (p *Printer) AnnotateRange(begin, end string, d protoreflect.Descriptor) {
	b, ok := p.substituted[begin]
	if !ok {
		panic(fmt.Sprintf("printer: annotation refers to unprinted placeholder $%s$", begin))
	}
	e, ok := p.substituted[end]
	if !ok {
		panic(fmt.Sprintf("printer: annotation refers to unprinted placeholder $%s$", end))
	}
	if d == nil || d.ParentFile() == nil {
		return
	}
	p.annotations = append(p.annotations, &descriptorpb.GeneratedCodeInfo_Annotation{
		Path:       sourcepath.Of(d),
		SourceFile: ptr(d.ParentFile().Path()),
		Begin:      ptr(int32(b.start)),
		End:        ptr(int32(e.end)),
	})
}

// Len returns the number of bytes printed so far.
func (p *Printer) Len() int {
	return p.buf.Len()
}

// Bytes returns the printed text. The returned slice aliases the printer's
// buffer until the next call to Print.
func (p *Printer) Bytes() []byte {
	return p.buf.Bytes()
}

// String returns the printed text.
func (p *Printer) String() string {
	return p.buf.String()
}

// Info returns the annotations recorded so far, in the order they were
// recorded.
func (p *Printer) Info() *descriptorpb.GeneratedCodeInfo {
	return &descriptorpb.GeneratedCodeInfo{
		Annotation: append([]*descriptorpb.GeneratedCodeInfo_Annotation(nil), p.annotations...),
	}
}

// write appends text, inserting indentation at the start of every non-empty
// line.
func (p *Printer) write(text string) {
	for len(text) > 0 {
		line, rest, found := strings.Cut(text, "\n")
		if line != "" {
			p.maybeIndent()
			p.buf.WriteString(line)
		}
		if !found {
			return
		}
		p.buf.WriteByte('\n')
		p.midLine = false
		text = rest
	}
}

func (p *Printer) maybeIndent() {
	if p.midLine {
		return
	}
	for range p.depth {
		p.buf.WriteString(indentUnit)
	}
	p.midLine = true
}

func ptr[T any](v T) *T {
	return &v
}
