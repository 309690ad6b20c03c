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

package fields

import (
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/protokotlin/internal/kdoc"
	"github.com/bufbuild/protokotlin/printer"
)

// singularGenerator generates a field that holds at most one message.
//
// The message stores the value in a nullable property, null meaning the
// default instance. The builder additionally keeps a nested builder once
// one has been requested, and that builder takes precedence over the stored
// value until the next set or clear.
type singularGenerator struct {
	field
}

var _ Generator = (*singularGenerator)(nil)

func (g *singularGenerator) Shape() Shape { return Singular{} }

func (g *singularGenerator) NumBitsForMessage() int { return Singular{}.NumBitsForMessage() }
func (g *singularGenerator) NumBitsForBuilder() int { return Singular{}.NumBitsForBuilder() }

func (g *singularGenerator) GenerateInterfaceMembers(p *printer.Printer) {
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun has$capitalized_name$(): Boolean\n")
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun get$capitalized_name$(): $type$\n")
}

func (g *singularGenerator) GenerateInitializationCode(p *printer.Printer) {
	g.print(p, "private var $name$_: $type$? = null\n")
}

func (g *singularGenerator) GenerateMembers(p *printer.Printer) {
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$override fun has$capitalized_name$(): Boolean = $get_has_field_bit_message$\n")
	p.Annotate("capitalized_name", g.desc)
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$override fun get$capitalized_name$(): $type$ =\n"+
		"  $name$_ ?: $type$.getDefaultInstance()\n")
	p.Annotate("capitalized_name", g.desc)
	p.Print("\n")
}

func (g *singularGenerator) GenerateBuilderMembers(p *printer.Printer) {
	g.print(p,
		"private var $name$_: $type$? = null\n"+
			"private var $name$Builder_: $type$.Builder? = null\n"+
			"\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$override fun has$capitalized_name$(): Boolean = $get_has_field_bit_builder$\n")
	p.Annotate("capitalized_name", g.desc)

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$override fun get$capitalized_name$(): $type$ =\n"+
		"  $name$Builder_?.buildPartial() ?: $name$_ ?: $type$.getDefaultInstance()\n")
	p.Annotate("capitalized_name", g.desc)

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun set$capitalized_name$(value: $type$): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	p.Indent(func() {
		g.print(p,
			"$name$_ = value\n"+
				"$name$Builder_ = null\n"+
				"$set_has_field_bit_builder$\n"+
				"return this\n")
	})
	p.Print("}\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun set$capitalized_name$(builderForValue: $type$.Builder): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	p.Indent(func() {
		g.print(p,
			"$name$_ = builderForValue.build()\n"+
				"$name$Builder_ = null\n"+
				"$set_has_field_bit_builder$\n"+
				"return this\n")
	})
	p.Print("}\n")

	// Merging into a field that is set to a non-default value merges the
	// messages; otherwise the new value replaces the old.
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun merge$capitalized_name$(value: $type$): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	p.Indent(func() {
		g.print(p,
			"if ($get_has_field_bit_builder$ && get$capitalized_name$() !== $type$.getDefaultInstance()) {\n"+
				"  get$capitalized_name$Builder().mergeFrom(value)\n"+
				"} else {\n"+
				"  $name$_ = value\n"+
				"  $name$Builder_ = null\n"+
				"}\n"+
				"$set_has_field_bit_builder$\n"+
				"return this\n")
	})
	p.Print("}\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun clear$capitalized_name$(): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	p.Indent(func() {
		g.print(p,
			"$clear_has_field_bit_builder$\n"+
				"$name$_ = null\n"+
				"$name$Builder_ = null\n"+
				"return this\n")
	})
	p.Print("}\n")

	// Requesting the nested builder marks the field as present, since the
	// caller is about to modify it.
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun get$capitalized_name$Builder(): $type$.Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	p.Indent(func() {
		g.print(p,
			"$set_has_field_bit_builder$\n"+
				"return $name$Builder_ ?: ($name$_?.toBuilder() ?: $type$.newBuilder()).also {\n"+
				"  $name$Builder_ = it\n"+
				"  $name$_ = null\n"+
				"}\n")
	})
	p.Print("}\n\n")
}

func (g *singularGenerator) GenerateBuilderClearCode(p *printer.Printer) {
	g.print(p,
		"$name$_ = null\n"+
			"$name$Builder_ = null\n")
}

func (g *singularGenerator) GenerateMergingCode(p *printer.Printer) {
	g.print(p,
		"if (other.has$capitalized_name$()) {\n"+
			"  merge$capitalized_name$(other.get$capitalized_name$())\n"+
			"}\n")
}

func (g *singularGenerator) GenerateBuildingCode(p *printer.Printer) {
	g.print(p,
		"if ($get_has_field_bit_from_local$) {\n"+
			"  result.$name$_ = $name$Builder_?.buildPartial() ?: $name$_\n"+
			"  $set_has_field_bit_to_local$\n"+
			"}\n")
}

func (g *singularGenerator) GenerateParsingCode(p *printer.Printer) {
	p.Print("$tag$ -> {\n", "tag", g.wire.tag)
	p.Indent(func() {
		g.wire.read(p, "get"+g.vars["capitalized_name"]+"Builder()")
	})
	p.Print("}\n")
}

func (g *singularGenerator) GenerateSerializationCode(p *printer.Printer) {
	g.print(p, "if ($get_has_field_bit_message$) {\n")
	p.Indent(func() {
		g.wire.write(p, "get"+g.vars["capitalized_name"]+"()")
	})
	p.Print("}\n")
}

func (g *singularGenerator) GenerateSerializedSizeCode(p *printer.Printer) {
	g.print(p, "if ($get_has_field_bit_message$) {\n")
	p.Indent(func() {
		g.wire.size(p, "get"+g.vars["capitalized_name"]+"()")
	})
	p.Print("}\n")
}

func (g *singularGenerator) GenerateEqualsCode(p *printer.Printer) {
	g.print(p,
		"if (has$capitalized_name$() != other.has$capitalized_name$()) return false\n"+
			"if (has$capitalized_name$()) {\n"+
			"  if (get$capitalized_name$() != other.get$capitalized_name$()) return false\n"+
			"}\n")
}

func (g *singularGenerator) GenerateHashCode(p *printer.Printer) {
	g.print(p,
		"if (has$capitalized_name$()) {\n"+
			"  hash = (37 * hash) + $constant_name$\n"+
			"  hash = (53 * hash) + get$capitalized_name$().hashCode()\n"+
			"}\n")
}

func (g *singularGenerator) GenerateIsInitializedCode(p *printer.Printer) {
	if g.desc.Cardinality() == protoreflect.Required {
		g.print(p, "if (!has$capitalized_name$()) return false\n")
	}
	if !g.needsInitializationCheck() {
		return
	}
	g.print(p,
		"if (has$capitalized_name$()) {\n"+
			"  if (!get$capitalized_name$().isInitialized()) return false\n"+
			"}\n")
}
