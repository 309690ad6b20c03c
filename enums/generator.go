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

// Package enums generates Kotlin enum classes for protobuf enums.
//
// Protobuf allows several values of an enum to share a number. Only the
// first value declared with a number becomes an entry of the generated enum
// class; later values become constants that refer to that entry. See
// [Canonicalize].
package enums

import (
	"fmt"
	"strconv"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protokotlin/internal/kdoc"
	"github.com/bufbuild/protokotlin/names"
	"github.com/bufbuild/protokotlin/printer"
	"github.com/bufbuild/protokotlin/reporter"
)

// Unrecognized is the name of the entry that open enums use for numbers
// that have no declared value.
const Unrecognized = "UNRECOGNIZED"

// unrecognizedNumber is the number, and the index, of the Unrecognized
// entry.
const unrecognizedNumber = -1

// Options configures a [Generator].
type Options struct {
	// Open is set for enums that must preserve unknown numbers, by mapping
	// them to an extra Unrecognized entry.
	Open bool
	// Lite omits the descriptor-based reflection API.
	Lite bool
	// Names resolves the names of other generated types.
	Names names.Resolver
	// AnnotationFile, if set, is the name of the file holding the
	// GeneratedCodeInfo of the output. Top-level enums then carry a
	// @javax.annotation.Generated annotation pointing at it.
	AnnotationFile string
}

// Generator generates the Kotlin enum class for one enum.
type Generator struct {
	desc           protoreflect.EnumDescriptor
	opts           Options
	partition      Partition
	ordinalIsIndex bool
}

// New creates a generator for enum.
//
// Panics if enum has no values; valid schemas always declare at least one.
func New(enum protoreflect.EnumDescriptor, opts Options) *Generator {
	values := Values(enum)
	if len(values) == 0 {
		panic(fmt.Sprintf("enums: %s declares no values", enum.FullName()))
	}
	partition := Canonicalize(values)
	return &Generator{
		desc:           enum,
		opts:           opts,
		partition:      partition,
		ordinalIsIndex: OrdinalIsIndex(partition.Canonical),
	}
}

// Partition returns the canonical values and aliases of the enum.
func (g *Generator) Partition() Partition {
	return g.partition
}

// OrdinalIsIndex reports whether the generated entries use their ordinal as
// their descriptor index. See [OrdinalIsIndex].
func (g *Generator) OrdinalIsIndex() bool {
	return g.ordinalIsIndex
}

// Validate reports values that would collide with the Unrecognized entry
// of an open enum. It returns a non-nil error if generation should abort.
func (g *Generator) Validate(h *reporter.Handler) error {
	if !g.opts.Open {
		return nil
	}
	for _, v := range Values(g.desc) {
		if v.Name() == Unrecognized {
			if err := h.HandleErrorf(v, "enum value %s collides with the entry generated for unrecognized values of open enum %s", v.Name(), g.desc.FullName()); err != nil {
				return err
			}
		}
		if v.Number() == unrecognizedNumber {
			if err := h.HandleErrorf(v, "enum value %s uses number %d, which is reserved for unrecognized values of open enum %s", v.Name(), unrecognizedNumber, g.desc.FullName()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Generate prints the enum class.
func (g *Generator) Generate(p *printer.Printer) {
	className := g.opts.Names.SimpleName(g.desc)
	indexText := "ordinal"
	if !g.ordinalIsIndex {
		indexText = "index"
	}
	supertype := "com.google.protobuf.ProtocolMessageEnum"
	if g.opts.Lite {
		supertype = "com.google.protobuf.Internal.EnumLite"
	}

	kdoc.Write(p, g.desc)
	if _, topLevel := g.desc.Parent().(protoreflect.FileDescriptor); topLevel && g.opts.AnnotationFile != "" {
		p.Print("@javax.annotation.Generated(value = [\"protoc\"], comments = \"annotations:$file$\")\n",
			"file", g.opts.AnnotationFile)
	}
	if g.ordinalIsIndex {
		p.Print("enum class $classname$(val value: Int) : $supertype$ {\n",
			"classname", className, "supertype", supertype)
	} else {
		p.Print("enum class $classname$(val index: Int, val value: Int) : $supertype$ {\n",
			"classname", className, "supertype", supertype)
	}
	p.Annotate("classname", g.desc)

	p.Indent(func() {
		g.generateEntries(p)
		g.generateGetNumber(p)
		if !g.opts.Lite {
			g.generateReflection(p, indexText)
		}

		p.Print("companion object {\n")
		p.Indent(func() {
			g.generateConstants(p, className)
			g.generateLookup(p, className)
			if !g.opts.Lite {
				g.generateDescriptorLookup(p, className)
			}
		})
		p.Print("}\n")

		p.Print(
			"\n"+
				"// @@protoc_insertion_point(enum_scope:$full_name$)\n",
			"full_name", string(g.desc.FullName()))
	})
	p.Print("}\n")
}

func (g *Generator) generateEntries(p *printer.Printer) {
	for _, v := range g.partition.Canonical {
		kdoc.Write(p, v)
		if isDeprecated(v) {
			p.Print("@kotlin.Deprecated(message = \"enum entry is deprecated\")\n")
		}
		vars := printer.Vars{
			"name":   names.Escape(string(v.Name())),
			"index":  strconv.Itoa(v.Index()),
			"number": strconv.Itoa(int(v.Number())),
		}
		if g.ordinalIsIndex {
			p.PrintVars(vars, "$name$($number$),\n")
		} else {
			p.PrintVars(vars, "$name$($index$, $number$),\n")
		}
		p.Annotate("name", v)
	}

	if g.opts.Open {
		if g.ordinalIsIndex {
			p.Print("${$UNRECOGNIZED$}$(-1),\n", "{", "", "}", "")
		} else {
			p.Print("${$UNRECOGNIZED$}$(-1, -1),\n", "{", "", "}", "")
		}
		p.AnnotateRange("{", "}", g.desc)
	}
	p.Print(";\n\n")
}

func (g *Generator) generateGetNumber(p *printer.Printer) {
	p.Print("override fun getNumber(): Int {\n")
	p.Indent(func() {
		if g.opts.Open {
			p.Print("if ($unknown$) {\n", "unknown", g.isUnrecognized())
			p.Indent(func() {
				p.Print("throw IllegalArgumentException(\"Can't get the number of an unknown enum value.\")\n")
			})
			p.Print("}\n")
		}
		p.Print("return value\n")
	})
	p.Print("}\n\n")
}

func (g *Generator) generateReflection(p *printer.Printer, indexText string) {
	p.Print("override fun getValueDescriptor(): com.google.protobuf.Descriptors.EnumValueDescriptor {\n")
	p.Indent(func() {
		if g.opts.Open {
			p.Print("if ($unknown$) {\n", "unknown", g.isUnrecognized())
			p.Indent(func() {
				p.Print("throw IllegalStateException(\"Can't get the descriptor of an unrecognized enum value.\")\n")
			})
			p.Print("}\n")
		}
		p.Print("return getDescriptor().getValues().get($index_text$)\n", "index_text", indexText)
	})
	p.Print("}\n\n")
	p.Print(
		"override fun getDescriptorForType(): com.google.protobuf.Descriptors.EnumDescriptor =\n" +
			"  getDescriptor()\n\n")
}

func (g *Generator) generateConstants(p *printer.Printer, className string) {
	for _, alias := range g.partition.Aliases {
		kdoc.Write(p, alias.Value)
		p.Print(
			"@JvmField\n"+
				"val $name$: $classname$ = $canonical_name$\n\n",
			"name", names.Escape(string(alias.Value.Name())),
			"classname", className,
			"canonical_name", names.Escape(string(alias.Canonical.Name())))
		p.Annotate("name", alias.Value)
	}

	for _, v := range Values(g.desc) {
		kdoc.Write(p, v)
		p.Print("const val ${$$name$_VALUE$}$: Int = $number$\n",
			"name", string(v.Name()),
			"number", strconv.Itoa(int(v.Number())),
			"{", "", "}", "")
		p.AnnotateRange("{", "}", v)
	}
	p.Print("\n")
}

func (g *Generator) generateLookup(p *printer.Printer, className string) {
	p.Print(
		"@JvmStatic\n"+
			"fun forNumber(value: Int): $classname$? =\n",
		"classname", className)
	p.Indent(func() {
		p.Print("when (value) {\n")
		p.Indent(func() {
			for _, v := range g.partition.Canonical {
				p.Print("$number$ -> $name$\n",
					"number", strconv.Itoa(int(v.Number())),
					"name", names.Escape(string(v.Name())))
			}
			p.Print("else -> null\n")
		})
		p.Print("}\n")
	})
	p.Print("\n")

	p.Print(
		"@kotlin.Deprecated(message = \"Use forNumber(Int) instead.\", replaceWith = ReplaceWith(\"forNumber(value)\"))\n"+
			"@JvmStatic\n"+
			"fun valueOf(value: Int): $classname$? = forNumber(value)\n"+
			"\n"+
			"@kotlin.Deprecated(message = \"do not use this method\")\n"+
			"@JvmStatic\n"+
			"fun internalGetValueMap(): com.google.protobuf.Internal.EnumLiteMap<$classname$> = internalValueMap\n"+
			"\n"+
			"private val internalValueMap: com.google.protobuf.Internal.EnumLiteMap<$classname$> =\n"+
			"  object : com.google.protobuf.Internal.EnumLiteMap<$classname$> {\n"+
			"    override fun findValueByNumber(number: Int): $classname$? = forNumber(number)\n"+
			"  }\n",
		"classname", className)
}

func (g *Generator) generateDescriptorLookup(p *printer.Printer, className string) {
	p.Print(
		"\n"+
			"@JvmStatic\n"+
			"fun getDescriptor(): com.google.protobuf.Descriptors.EnumDescriptor =\n"+
			"  $container$.getEnumTypes().get($index$)\n"+
			"\n",
		"container", g.containerDescriptor(),
		"index", strconv.Itoa(g.desc.Index()))

	if g.canUseEnumValues() {
		// The entries are exactly the declared values, in order.
		p.Print("private val VALUES: Array<$classname$> = values()\n", "classname", className)
	} else {
		p.Print("private val VALUES: Array<$classname$> = arrayOf(", "classname", className)
		for i, v := range Values(g.desc) {
			comma := ", "
			if i == g.desc.Values().Len()-1 {
				comma = ""
			}
			p.Print("$name$$comma$", "name", names.Escape(string(v.Name())), "comma", comma)
		}
		p.Print(")\n")
	}

	p.Print(
		"\n"+
			"@JvmStatic\n"+
			"fun valueOf(desc: com.google.protobuf.Descriptors.EnumValueDescriptor): $classname$ {\n"+
			"  if (desc.getType() != getDescriptor()) {\n"+
			"    throw IllegalArgumentException(\"EnumValueDescriptor is not for this type.\")\n"+
			"  }\n",
		"classname", className)
	if g.opts.Open {
		p.Print(
			"  if (desc.getIndex() == -1) {\n" +
				"    return UNRECOGNIZED\n" +
				"  }\n")
	}
	p.Print(
		"  return VALUES[desc.getIndex()]\n" +
			"}\n")
}

// containerDescriptor returns an expression for the descriptor whose enum
// list declares this enum.
func (g *Generator) containerDescriptor() string {
	parent, ok := g.desc.Parent().(protoreflect.MessageDescriptor)
	if !ok {
		return g.opts.Names.QualifiedFileClassName(g.desc.ParentFile()) + ".getDescriptor()"
	}
	className := g.opts.Names.QualifiedClassName(parent)
	if opts, ok := parent.Options().(*descriptorpb.MessageOptions); ok && opts.GetNoStandardDescriptorAccessor() {
		return className + ".getDefaultInstance().getDescriptorForType()"
	}
	return className + ".getDescriptor()"
}

// isUnrecognized returns a Kotlin condition that holds for the Unrecognized
// entry.
func (g *Generator) isUnrecognized() string {
	if g.ordinalIsIndex {
		return "this == " + Unrecognized
	}
	return "index == " + strconv.Itoa(unrecognizedNumber)
}

// canUseEnumValues reports whether the entries of the generated class are
// exactly the declared values, in declaration order.
func (g *Generator) canUseEnumValues() bool {
	values := Values(g.desc)
	if len(g.partition.Canonical) != len(values) {
		return false
	}
	for i, v := range values {
		if v.Name() != g.partition.Canonical[i].Name() {
			return false
		}
	}
	return true
}

func isDeprecated(v protoreflect.EnumValueDescriptor) bool {
	opts, ok := v.Options().(*descriptorpb.EnumValueOptions)
	return ok && opts.GetDeprecated()
}
