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

// repeatedGenerator generates a field that holds a list of messages.
//
// The message holds an unmodifiable list. The builder holds a list of nested
// builders, one per element, which are built when the message is.
type repeatedGenerator struct {
	field
}

var _ Generator = (*repeatedGenerator)(nil)

func (g *repeatedGenerator) Shape() Shape { return Repeated{} }

func (g *repeatedGenerator) NumBitsForMessage() int { return Repeated{}.NumBitsForMessage() }
func (g *repeatedGenerator) NumBitsForBuilder() int { return Repeated{}.NumBitsForBuilder() }

func (g *repeatedGenerator) GenerateInterfaceMembers(p *printer.Printer) {
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun get$capitalized_name$List(): List<$type$>\n")
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun get$capitalized_name$Count(): Int\n")
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun get$capitalized_name$(index: Int): $type$\n")
}

func (g *repeatedGenerator) GenerateInitializationCode(p *printer.Printer) {
	g.print(p, "private var $name$_: List<$type$> = emptyList()\n")
}

func (g *repeatedGenerator) GenerateMembers(p *printer.Printer) {
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$override fun get$capitalized_name$List(): List<$type$> = $name$_\n")
	p.Annotate("capitalized_name", g.desc)
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$override fun get$capitalized_name$Count(): Int = $name$_.size\n")
	p.Annotate("capitalized_name", g.desc)
	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$override fun get$capitalized_name$(index: Int): $type$ = $name$_[index]\n")
	p.Annotate("capitalized_name", g.desc)
	p.Print("\n")
}

func (g *repeatedGenerator) GenerateBuilderMembers(p *printer.Printer) {
	g.print(p, "private val $name$_: MutableList<$type$.Builder> = mutableListOf()\n\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$override fun get$capitalized_name$List(): List<$type$> =\n"+
		"  $name$_.map { it.buildPartial() }\n")
	p.Annotate("capitalized_name", g.desc)

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$override fun get$capitalized_name$Count(): Int = $name$_.size\n")
	p.Annotate("capitalized_name", g.desc)

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$override fun get$capitalized_name$(index: Int): $type$ = $name$_[index].buildPartial()\n")
	p.Annotate("capitalized_name", g.desc)

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun set$capitalized_name$(index: Int, value: $type$): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	g.print(p,
		"  $name$_[index] = value.toBuilder()\n"+
			"  return this\n"+
			"}\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun set$capitalized_name$(index: Int, builderForValue: $type$.Builder): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	g.print(p,
		"  $name$_[index] = builderForValue.build().toBuilder()\n"+
			"  return this\n"+
			"}\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun add$capitalized_name$(value: $type$): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	g.print(p,
		"  $name$_.add(value.toBuilder())\n"+
			"  return this\n"+
			"}\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun add$capitalized_name$(index: Int, value: $type$): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	g.print(p,
		"  $name$_.add(index, value.toBuilder())\n"+
			"  return this\n"+
			"}\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun add$capitalized_name$(builderForValue: $type$.Builder): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	g.print(p,
		"  $name$_.add(builderForValue.build().toBuilder())\n"+
			"  return this\n"+
			"}\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun addAll$capitalized_name$(values: Iterable<$type$>): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	g.print(p,
		"  values.mapTo($name$_) { it.toBuilder() }\n"+
			"  return this\n"+
			"}\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun clear$capitalized_name$(): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	g.print(p,
		"  $name$_.clear()\n"+
			"  return this\n"+
			"}\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun remove$capitalized_name$(index: Int): Builder {\n")
	p.Annotate("capitalized_name", g.desc)
	g.print(p,
		"  $name$_.removeAt(index)\n"+
			"  return this\n"+
			"}\n")

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun get$capitalized_name$Builder(index: Int): $type$.Builder = $name$_[index]\n")
	p.Annotate("capitalized_name", g.desc)

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun add$capitalized_name$Builder(): $type$.Builder =\n"+
		"  $type$.newBuilder().also { $name$_.add(it) }\n")
	p.Annotate("capitalized_name", g.desc)

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun add$capitalized_name$Builder(index: Int): $type$.Builder =\n"+
		"  $type$.newBuilder().also { $name$_.add(index, it) }\n")
	p.Annotate("capitalized_name", g.desc)

	kdoc.Write(p, g.desc)
	g.print(p, "$deprecation$fun get$capitalized_name$BuilderList(): List<$type$.Builder> = $name$_\n")
	p.Annotate("capitalized_name", g.desc)
	p.Print("\n")
}

func (g *repeatedGenerator) GenerateBuilderClearCode(p *printer.Printer) {
	g.print(p, "$name$_.clear()\n")
}

func (g *repeatedGenerator) GenerateMergingCode(p *printer.Printer) {
	g.print(p,
		"if (other.$name$_.isNotEmpty()) {\n"+
			"  other.$name$_.mapTo($name$_) { it.toBuilder() }\n"+
			"}\n")
}

func (g *repeatedGenerator) GenerateBuildingCode(p *printer.Printer) {
	g.print(p,
		"result.$name$_ = java.util.Collections.unmodifiableList($name$_.map { it.buildPartial() })\n")
}

func (g *repeatedGenerator) GenerateParsingCode(p *printer.Printer) {
	p.Print("$tag$ -> {\n", "tag", g.wire.tag)
	p.Indent(func() {
		g.wire.read(p, "add"+g.vars["capitalized_name"]+"Builder()")
	})
	p.Print("}\n")
}

func (g *repeatedGenerator) GenerateSerializationCode(p *printer.Printer) {
	g.print(p, "for (element in $name$_) {\n")
	p.Indent(func() {
		g.wire.write(p, "element")
	})
	p.Print("}\n")
}

func (g *repeatedGenerator) GenerateSerializedSizeCode(p *printer.Printer) {
	g.print(p, "for (element in $name$_) {\n")
	p.Indent(func() {
		g.wire.size(p, "element")
	})
	p.Print("}\n")
}

func (g *repeatedGenerator) GenerateEqualsCode(p *printer.Printer) {
	g.print(p, "if (get$capitalized_name$List() != other.get$capitalized_name$List()) return false\n")
}

func (g *repeatedGenerator) GenerateHashCode(p *printer.Printer) {
	g.print(p,
		"if (get$capitalized_name$Count() > 0) {\n"+
			"  hash = (37 * hash) + $constant_name$\n"+
			"  hash = (53 * hash) + get$capitalized_name$List().hashCode()\n"+
			"}\n")
}

func (g *repeatedGenerator) GenerateIsInitializedCode(p *printer.Printer) {
	if !g.needsInitializationCheck() {
		return
	}
	g.print(p,
		"for (element in $name$_) {\n"+
			"  if (!element.isInitialized()) return false\n"+
			"}\n")
}
