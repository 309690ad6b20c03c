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
	"fmt"
	"path"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/protokotlin/enums"
	"github.com/bufbuild/protokotlin/fields"
	"github.com/bufbuild/protokotlin/messages"
	"github.com/bufbuild/protokotlin/names"
	"github.com/bufbuild/protokotlin/printer"
	"github.com/bufbuild/protokotlin/reporter"
	"github.com/bufbuild/protokotlin/walk"
)

// descriptorChunkSize is the number of bytes of the serialized file
// descriptor per string literal of the file object.
const descriptorChunkSize = 400

type fileGenerator struct {
	file     protoreflect.FileDescriptor
	opts     Options
	names    names.Resolver
	enums    []*enums.Generator
	messages []*messages.Generator
}

func newFileGenerator(file protoreflect.FileDescriptor, opts Options) *fileGenerator {
	g := &fileGenerator{file: file, opts: opts}
	fileEnums := file.Enums()
	for i := range fileEnums.Len() {
		g.enums = append(g.enums, enums.New(fileEnums.Get(i), g.enumOptions(fileEnums.Get(i))))
	}
	fileMessages := file.Messages()
	for i := range fileMessages.Len() {
		g.messages = append(g.messages, messages.New(fileMessages.Get(i), messages.Options{
			Lite:     opts.Lite,
			Names:    g.names,
			OpenEnum: g.isOpen,
		}))
	}
	return g
}

func (g *fileGenerator) isOpen(enum protoreflect.EnumDescriptor) bool {
	if g.opts.SupportUnknownEnumValues != nil {
		return g.opts.SupportUnknownEnumValues(enum)
	}
	return !enum.IsClosed()
}

func (g *fileGenerator) enumOptions(enum protoreflect.EnumDescriptor) enums.Options {
	opts := enums.Options{Open: g.isOpen(enum), Lite: g.opts.Lite, Names: g.names}
	if g.opts.Annotate {
		opts.AnnotationFile = path.Base(g.names.OutputPath(g.file)) + ".pb.meta"
	}
	return opts
}

// validate reports problems with the schema. Errors abort generation of the
// file; warnings flag declarations that are left out of the output.
func (g *fileGenerator) validate(h *reporter.Handler) error {
	err := walk.Enums(g.file, func(enum protoreflect.EnumDescriptor) error {
		return enums.New(enum, g.enumOptions(enum)).Validate(h)
	})
	if err != nil {
		return err
	}

	err = walk.Descriptors(g.file, func(d protoreflect.Descriptor) error {
		switch d := d.(type) {
		case protoreflect.FieldDescriptor:
			switch {
			case d.IsExtension():
				h.HandleWarningf(d, "extension %s is not generated: extensions are not supported", d.FullName())
			case d.IsMap():
				h.HandleWarningf(d, "field %s is not generated: map fields are not supported", d.FullName())
			case !fields.IsMessageTyped(d):
				h.HandleWarningf(d, "field %s is not generated: only message-typed fields are supported", d.FullName())
			}
		case protoreflect.MessageDescriptor:
			if d.IsMapEntry() {
				return walk.SkipChildren
			}
		case protoreflect.ServiceDescriptor:
			h.HandleWarningf(d, "service %s is not generated: services are not supported", d.FullName())
			return walk.SkipChildren
		}
		return nil
	})
	if err != nil {
		return err
	}
	return h.ReporterError()
}

func (g *fileGenerator) generate() *File {
	p := printer.New()
	p.Print(
		"// Generated by protoc-gen-kotlin. DO NOT EDIT!\n"+
			"// source: $source$\n"+
			"\n"+
			"@file:Suppress(\"DEPRECATION\", \"UNCHECKED_CAST\", \"UNUSED_VARIABLE\")\n"+
			"\n",
		"source", g.file.Path())
	if pkg := g.names.Package(g.file); pkg != "" {
		p.Print("package $package$\n\n", "package", names.EscapePackage(pkg))
	}

	first := true
	separate := func() {
		if !first {
			p.Print("\n")
		}
		first = false
	}
	for _, e := range g.enums {
		separate()
		e.Generate(p)
	}
	for _, m := range g.messages {
		separate()
		m.Generate(p)
	}
	if !g.opts.Lite {
		separate()
		g.generateFileObject(p)
	}

	f := &File{
		Name:    g.names.OutputPath(g.file),
		Content: p.Bytes(),
		Source:  g.file,
	}
	if g.opts.Annotate {
		f.Info = p.Info()
	}
	return f
}

// generateFileObject prints the object that holds the runtime descriptor of
// the file, built from its serialized descriptor.
func (g *fileGenerator) generateFileObject(p *printer.Printer) {
	fdp := protodesc.ToFileDescriptorProto(g.file)
	fdp.SourceCodeInfo = nil
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(fdp)
	if err != nil {
		// A descriptor built by protodesc always marshals.
		panic(fmt.Sprintf("marshal descriptor of %q: %v", g.file.Path(), err))
	}

	p.Print("object $classname$ {\n", "classname", g.names.FileClassName(g.file))
	p.Indent(func() {
		p.Print("private val descriptorData: Array<String> = arrayOf(\n")
		p.Indent(func() {
			for len(data) > 0 {
				n := min(len(data), descriptorChunkSize)
				p.Print("\"$chunk$\",\n", "chunk", escapeBytes(data[:n]))
				data = data[n:]
			}
		})
		p.Print(")\n\n")

		p.Print(
			"private val descriptor: com.google.protobuf.Descriptors.FileDescriptor =\n" +
				"  com.google.protobuf.Descriptors.FileDescriptor.internalBuildGeneratedFileFrom(\n" +
				"    descriptorData,\n" +
				"    arrayOf(")
		imports := g.file.Imports()
		for i := range imports.Len() {
			if i > 0 {
				p.Print(", ")
			}
			p.Print("$dep$.getDescriptor()", "dep", g.names.QualifiedFileClassName(imports.Get(i).FileDescriptor))
		}
		p.Print(
			"),\n" +
				"  )\n" +
				"\n" +
				"@JvmStatic\n" +
				"fun getDescriptor(): com.google.protobuf.Descriptors.FileDescriptor = descriptor\n")
	})
	p.Print("}\n")
}

// escapeBytes renders data as the contents of a Kotlin string literal, one
// char per byte.
func escapeBytes(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '.', c == '_', c == '/', c == ' ', c == '-':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "\\u%04x", c)
		}
	}
	return b.String()
}
