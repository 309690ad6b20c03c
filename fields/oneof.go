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
	"github.com/bufbuild/protokotlin/internal/kdoc"
	"github.com/bufbuild/protokotlin/printer"
)

// oneofGenerator generates a message-typed member of a oneof.
//
// The slot and the case discriminator are declared once per oneof by the
// message generator. The slot holds a message, or in a builder, either a
// message or a nested builder. The case is the member's field number, or 0
// when no member is set.
type oneofGenerator struct {
	field
	shape OneofMember
}

var _ Generator = (*oneofGenerator)(nil)

func (g *oneofGenerator) Shape() Shape { return g.shape }

func (g *oneofGenerator) NumBitsForMessage() int { return g.shape.NumBitsForMessage() }
func (g *oneofGenerator) NumBitsForBuilder() int { return g.shape.NumBitsForBuilder() }

func (g *oneofGenerator) GenerateInterfaceMembers(p *printer.Printer) {
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun has$capitalized_name$(): Boolean\n")
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun get$capitalized_name$(): $type$\n")
}

// GenerateInitializationCode prints nothing: the slot is shared with the
// other members of the oneof.
func (g *oneofGenerator) GenerateInitializationCode(*printer.Printer) {}

func (g *oneofGenerator) GenerateMembers(p *printer.Printer) {
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$override fun has$capitalized_name$(): Boolean = $oneof_case$ == $number$\n")
	p.Annotate("capitalized_name", g.desc)
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$override fun get$capitalized_name$(): $type$ =\n"+
		"  if ($oneof_case$ == $number$) $oneof_storage$ as $type$ else $type$.getDefaultInstance()\n")
	p.Annotate("capitalized_name", g.desc)
	p.Print("\n")
}

func (g *oneofGenerator) GenerateBuilderMembers(p *printer.Printer) {
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$override fun has$capitalized_name$(): Boolean = $oneof_case$ == $number$\n")
	p.Annotate("capitalized_name", g.desc)

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$override fun get$capitalized_name$(): $type$ {\n")
	p.Annotate("capitalized_name", g.desc)
	g.print(p,
		"  if ($oneof_case$ != $number$) return $type$.getDefaultInstance()\n"+
			"  val value = $oneof_storage$\n"+
			"  return if (value is $type$.Builder) value.buildPartial() else value as $type$\n"+
			"}\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun set$capitalized_name$(value: $type$): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	g.print(p,
		"  $oneof_storage$ = value\n"+
			"  $oneof_case$ = $number$\n"+
			"  return this\n"+
			"}\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun set$capitalized_name$(builderForValue: $type$.Builder): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	g.print(p,
		"  $oneof_storage$ = builderForValue.build()\n"+
			"  $oneof_case$ = $number$\n"+
			"  return this\n"+
			"}\n")

	// A value merged into a member that is not currently set replaces
	// whatever the oneof held, without merging.
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun merge$capitalized_name$(value: $type$): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	g.print(p,
		"  if ($oneof_case$ == $number$ && get$capitalized_name$() !== $type$.getDefaultInstance()) {\n"+
			"    get$capitalized_name$Builder().mergeFrom(value)\n"+
			"  } else {\n"+
			"    $oneof_storage$ = value\n"+
			"    $oneof_case$ = $number$\n"+
			"  }\n"+
			"  return this\n"+
			"}\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun clear$capitalized_name$(): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	g.print(p,
		"  if ($oneof_case$ == $number$) {\n"+
			"    $oneof_case$ = 0\n"+
			"    $oneof_storage$ = null\n"+
			"  }\n"+
			"  return this\n"+
			"}\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun get$capitalized_name$Builder(): $type$.Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	g.print(p,
		"  val value = $oneof_storage$\n"+
			"  if ($oneof_case$ == $number$ && value is $type$.Builder) return value\n"+
			"  val builder = if ($oneof_case$ == $number$) (value as $type$).toBuilder() else $type$.newBuilder()\n"+
			"  $oneof_storage$ = builder\n"+
			"  $oneof_case$ = $number$\n"+
			"  return builder\n"+
			"}\n\n")
}

// GenerateBuilderClearCode prints nothing: clearing the builder resets the
// oneof as a whole.
func (g *oneofGenerator) GenerateBuilderClearCode(*printer.Printer) {}

func (g *oneofGenerator) GenerateMergingCode(p *printer.Printer) {
	g.print(p, "merge$capitalized_name$(other.get$capitalized_name$())\n")
}

func (g *oneofGenerator) GenerateBuildingCode(p *printer.Printer) {
	g.print(p,
		"if ($oneof_case$ == $number$) {\n"+
			"  result.$oneof_storage$ = get$capitalized_name$()\n"+
			"}\n")
}

func (g *oneofGenerator) GenerateParsingCode(p *printer.Printer) {
	p.Print("$tag$ -> {\n", "tag", g.wire.tag)
	p.Indent(func() {
		g.wire.read(p, "get"+g.vars["capitalized_name"]+"Builder()")
	})
	p.Print("}\n")
}

func (g *oneofGenerator) GenerateSerializationCode(p *printer.Printer) {
	g.print(p, "if ($oneof_case$ == $number$) {\n")
	p.Indent(func() {
		g.wire.write(p, "get"+g.vars["capitalized_name"]+"()")
	})
	p.Print("}\n")
}

func (g *oneofGenerator) GenerateSerializedSizeCode(p *printer.Printer) {
	g.print(p, "if ($oneof_case$ == $number$) {\n")
	p.Indent(func() {
		g.wire.size(p, "get"+g.vars["capitalized_name"]+"()")
	})
	p.Print("}\n")
}

func (g *oneofGenerator) GenerateEqualsCode(p *printer.Printer) {
	g.print(p, "if (get$capitalized_name$() != other.get$capitalized_name$()) return false\n")
}

func (g *oneofGenerator) GenerateHashCode(p *printer.Printer) {
	g.print(p,
		"hash = (37 * hash) + $constant_name$\n"+
			"hash = (53 * hash) + get$capitalized_name$().hashCode()\n")
}

func (g *oneofGenerator) GenerateIsInitializedCode(p *printer.Printer) {
	if !g.needsInitializationCheck() {
		return
	}
	g.print(p,
		"if (has$capitalized_name$()) {\n"+
			"  if (!get$capitalized_name$().isInitialized()) return false\n"+
			"}\n")
}
