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

// Package names derives Kotlin identifiers from protobuf descriptors.
//
// The conventions follow the ones used by protobuf's JVM runtimes, so that
// generated code can refer to the runtime's reflection API by the same names:
// field foo_bar gets accessors getFooBar/setFooBar and storage fooBar_, and
// its number is exposed as FOO_BAR_FIELD_NUMBER.
package names

import (
	"path"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Resolver computes Kotlin names for descriptors. The zero value is ready
// to use.
type Resolver struct{}

// Package returns the Kotlin package of declarations generated for file:
// the java_package option when set, otherwise the proto package.
func (Resolver) Package(file protoreflect.FileDescriptor) string {
	if opts, ok := file.Options().(*descriptorpb.FileOptions); ok && opts.GetJavaPackage() != "" {
		return opts.GetJavaPackage()
	}
	return string(file.Package())
}

// FileClassName returns the simple name of the object generated for file,
// which holds the file's descriptor. It is the java_outer_classname option
// when set, otherwise the camel-cased base name of the file with a "Proto"
// suffix. "OuterClass" is appended if that collides with a top-level type.
func (Resolver) FileClassName(file protoreflect.FileDescriptor) string {
	if opts, ok := file.Options().(*descriptorpb.FileOptions); ok && opts.GetJavaOuterClassname() != "" {
		return opts.GetJavaOuterClassname()
	}
	base := path.Base(file.Path())
	base = strings.TrimSuffix(base, path.Ext(base))
	name := CamelCase(base, true) + "Proto"
	if hasTopLevel(file, name) {
		name += "OuterClass"
	}
	return name
}

// QualifiedFileClassName is like FileClassName, but includes the Kotlin
// package.
func (r Resolver) QualifiedFileClassName(file protoreflect.FileDescriptor) string {
	return qualify(r.Package(file), r.FileClassName(file))
}

// ClassName returns the name of the class generated for a message or enum,
// relative to its Kotlin package. Nested types are separated by dots.
func (Resolver) ClassName(d protoreflect.Descriptor) string {
	file := d.ParentFile()
	name := string(d.FullName())
	if pkg := string(file.Package()); pkg != "" {
		name = strings.TrimPrefix(name, pkg+".")
	}
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = Escape(part)
	}
	return strings.Join(parts, ".")
}

// QualifiedClassName is like ClassName, but includes the Kotlin package.
func (r Resolver) QualifiedClassName(d protoreflect.Descriptor) string {
	return qualify(r.Package(d.ParentFile()), r.ClassName(d))
}

// SimpleName returns the unqualified class name of d.
func (Resolver) SimpleName(d protoreflect.Descriptor) string {
	return Escape(string(d.Name()))
}

// FieldName returns the lower-camel-case name of a field or oneof, used for
// storage and parameters.
func FieldName(d protoreflect.Descriptor) string {
	return CamelCase(string(d.Name()), false)
}

// CapitalizedFieldName returns the upper-camel-case name of a field or oneof,
// used in accessor names.
func CapitalizedFieldName(d protoreflect.Descriptor) string {
	return CamelCase(string(d.Name()), true)
}

// FieldNumberConstant returns the name of the constant holding the number of
// field.
func FieldNumberConstant(field protoreflect.FieldDescriptor) string {
	return strings.ToUpper(string(field.Name())) + "_FIELD_NUMBER"
}

// CamelCase converts a snake_case proto name into camel case. Underscores
// are dropped and the letter after an underscore or digit is upper-cased.
// The first letter is upper-cased only if capitalizeFirst is set; it is
// lower-cased otherwise.
func CamelCase(s string, capitalizeFirst bool) string {
	var b strings.Builder
	b.Grow(len(s))
	capNext := capitalizeFirst
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z':
			if capNext {
				c -= 'a' - 'A'
			}
			b.WriteByte(c)
			capNext = false
		case 'A' <= c && c <= 'Z':
			if i == 0 && !capitalizeFirst {
				c += 'a' - 'A'
			}
			b.WriteByte(c)
			capNext = false
		case '0' <= c && c <= '9':
			b.WriteByte(c)
			capNext = true
		default:
			capNext = true
		}
	}
	return b.String()
}

// kotlinKeywords are the hard keywords of Kotlin, which cannot be used as
// identifiers without backticks.
var kotlinKeywords = map[string]bool{
	"as": true, "break": true, "class": true, "continue": true, "do": true,
	"else": true, "false": true, "for": true, "fun": true, "if": true,
	"in": true, "interface": true, "is": true, "null": true, "object": true,
	"package": true, "return": true, "super": true, "this": true,
	"throw": true, "true": true, "try": true, "typealias": true,
	"typeof": true, "val": true, "var": true, "when": true, "while": true,
}

// Escape quotes name with backticks if it is a Kotlin keyword.
func Escape(name string) string {
	if kotlinKeywords[name] {
		return "`" + name + "`"
	}
	return name
}

// EscapePackage backticks the components of pkg that are Kotlin keywords.
func EscapePackage(pkg string) string {
	parts := strings.Split(pkg, ".")
	for i, part := range parts {
		parts[i] = Escape(part)
	}
	return strings.Join(parts, ".")
}

// OutputPath returns the path of the Kotlin file generated for file: the
// Kotlin package as a directory, followed by the camel-cased base name.
func (r Resolver) OutputPath(file protoreflect.FileDescriptor) string {
	base := path.Base(file.Path())
	base = CamelCase(strings.TrimSuffix(base, path.Ext(base)), true) + ".kt"
	pkg := r.Package(file)
	if pkg == "" {
		return base
	}
	return path.Join(strings.ReplaceAll(pkg, ".", "/"), base)
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return EscapePackage(pkg) + "." + name
}

func hasTopLevel(file protoreflect.FileDescriptor, name string) bool {
	n := protoreflect.Name(name)
	return file.Messages().ByName(n) != nil ||
		file.Enums().ByName(n) != nil ||
		file.Services().ByName(n) != nil
}
