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

// Package messages generates Kotlin message classes, their builders and
// their OrBuilder interfaces.
//
// Only message-typed fields are generated; see package fields. Other fields
// are left out of the generated class and skipped when parsing.
package messages

import (
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protokotlin/enums"
	"github.com/bufbuild/protokotlin/fields"
	"github.com/bufbuild/protokotlin/internal/kdoc"
	"github.com/bufbuild/protokotlin/names"
	"github.com/bufbuild/protokotlin/presence"
	"github.com/bufbuild/protokotlin/printer"
)

// Options configures a [Generator].
type Options struct {
	// Lite omits the descriptor-based reflection API.
	Lite bool
	// Names resolves the names of generated types.
	Names names.Resolver
	// OpenEnum reports whether a nested enum must preserve unknown numbers.
	// If nil, enums are open unless their descriptor says they are closed.
	OpenEnum func(protoreflect.EnumDescriptor) bool
}

func (o Options) enumOptions(enum protoreflect.EnumDescriptor) enums.Options {
	open := !enum.IsClosed()
	if o.OpenEnum != nil {
		open = o.OpenEnum(enum)
	}
	return enums.Options{Open: open, Lite: o.Lite, Names: o.Names}
}

// oneof is a oneof with at least one generated member.
type oneof struct {
	desc    protoreflect.OneofDescriptor
	members []fields.Generator
	vars    printer.Vars
}

// Generator generates the Kotlin class for one message, including its
// nested types.
type Generator struct {
	desc    protoreflect.MessageDescriptor
	opts    Options
	alloc   presence.Allocator
	fields  []fields.Generator
	skipped []protoreflect.FieldDescriptor
	oneofs  []*oneof

	nestedEnums    []*enums.Generator
	nestedMessages []*Generator
}

// New creates a generator for msg and its nested types.
//
// Presence bits are allocated to fields in declaration order.
//
// Panics if msg is a map entry; map entries are generated as part of their
// map field, not as classes of their own.
func New(msg protoreflect.MessageDescriptor, opts Options) *Generator {
	if msg.IsMapEntry() {
		panic(fmt.Sprintf("messages: %s is a map entry", msg.FullName()))
	}
	g := &Generator{desc: msg, opts: opts}

	byOneof := map[protoreflect.FullName]*oneof{}
	oneofs := msg.Oneofs()
	for i := range oneofs.Len() {
		o := oneofs.Get(i)
		if o.IsSynthetic() {
			continue
		}
		byOneof[o.FullName()] = &oneof{
			desc: o,
			vars: printer.Vars{
				"oneof_name":             names.FieldName(o),
				"oneof_capitalized_name": names.CapitalizedFieldName(o),
				"oneof_storage":          names.FieldName(o) + "_",
				"oneof_case":             names.FieldName(o) + "Case_",
				"case_type":              names.CapitalizedFieldName(o) + "Case",
				"not_set":                strings.ToUpper(string(o.Name())) + "_NOT_SET",
			},
		}
	}

	msgFields := msg.Fields()
	for i := range msgFields.Len() {
		field := msgFields.Get(i)
		if !fields.IsMessageTyped(field) {
			g.skipped = append(g.skipped, field)
			continue
		}
		message, builder := g.alloc.Reserve(fields.ShapeOf(field))
		gen := fields.New(field, fields.Bits{Message: message, Builder: builder}, opts.Names)
		g.fields = append(g.fields, gen)
		if shape, ok := gen.Shape().(fields.OneofMember); ok {
			o := byOneof[shape.Oneof.FullName()]
			o.members = append(o.members, gen)
		}
	}
	for i := range oneofs.Len() {
		if o := byOneof[oneofs.Get(i).FullName()]; o != nil && len(o.members) > 0 {
			g.oneofs = append(g.oneofs, o)
		}
	}

	nestedEnums := msg.Enums()
	for i := range nestedEnums.Len() {
		enum := nestedEnums.Get(i)
		g.nestedEnums = append(g.nestedEnums, enums.New(enum, opts.enumOptions(enum)))
	}
	nestedMessages := msg.Messages()
	for i := range nestedMessages.Len() {
		if nested := nestedMessages.Get(i); !nested.IsMapEntry() {
			g.nestedMessages = append(g.nestedMessages, New(nested, opts))
		}
	}
	return g
}

// Descriptor returns the message this generator is for.
func (g *Generator) Descriptor() protoreflect.MessageDescriptor {
	return g.desc
}

// Fields returns the generators of the message's generated fields, in
// declaration order.
func (g *Generator) Fields() []fields.Generator {
	return g.fields
}

// Skipped returns the fields that are not generated, in declaration order.
func (g *Generator) Skipped() []protoreflect.FieldDescriptor {
	return g.skipped
}

// MessageBits returns the number of presence bits used by the message.
func (g *Generator) MessageBits() int {
	return g.alloc.MessageBits()
}

// BuilderBits returns the number of presence bits used by the builder.
func (g *Generator) BuilderBits() int {
	return g.alloc.BuilderBits()
}

// Generate prints the OrBuilder interface and the class of the message.
func (g *Generator) Generate(p *printer.Printer) {
	className := g.opts.Names.SimpleName(g.desc)
	vars := printer.Vars{
		"classname": className,
		"full_name": string(g.desc.FullName()),
	}

	g.generateInterface(p, className)

	kdoc.Write(p, g.desc)
	if opts, ok := g.desc.Options().(*descriptorpb.MessageOptions); ok && opts.GetDeprecated() {
		p.Print("@kotlin.Deprecated(message = \"message is deprecated\")\n")
	}
	p.PrintVars(vars, "class $classname$ private constructor() : $classname$OrBuilder {\n")
	p.Annotate("classname", g.desc)
	p.Indent(func() {
		g.generateStorage(p, g.alloc.MessageWords())
		for _, f := range g.fields {
			f.GenerateInitializationCode(p)
		}
		p.Print("\n")

		for _, o := range g.oneofs {
			g.generateCaseEnum(p, o)
		}
		for _, f := range g.fields {
			f.GenerateMembers(p)
		}

		g.generateIsInitialized(p)
		g.generateWriteTo(p)
		g.generateSerializedSize(p)
		g.generateEquals(p, className)
		g.generateHashCode(p)
		g.generateMessageMisc(p, className)

		g.generateBuilder(p, className)

		for _, e := range g.nestedEnums {
			p.Print("\n")
			e.Generate(p)
		}
		for _, m := range g.nestedMessages {
			p.Print("\n")
			m.Generate(p)
		}

		g.generateCompanion(p, className)
		p.PrintVars(vars, "\n// @@protoc_insertion_point(class_scope:$full_name$)\n")
	})
	p.Print("}\n")
}

func (g *Generator) generateInterface(p *printer.Printer, className string) {
	p.Print("interface $classname$OrBuilder {\n", "classname", className)
	p.Indent(func() {
		for _, f := range g.fields {
			f.GenerateInterfaceMembers(p)
		}
		for _, o := range g.oneofs {
			p.PrintVars(o.vars.With("classname", className),
				"fun get$oneof_capitalized_name$Case(): $classname$.$case_type$\n")
		}
	})
	p.Print("}\n\n")
}

// generateStorage prints the presence words and the oneof slots.
func (g *Generator) generateStorage(p *printer.Printer, words int) {
	for i := range words {
		p.Print("private var bitField$i$_: Int = 0\n", "i", strconv.Itoa(i))
	}
	for _, o := range g.oneofs {
		p.PrintVars(o.vars,
			"private var $oneof_storage$: Any? = null\n"+
				"private var $oneof_case$: Int = 0\n")
	}
}

func (g *Generator) generateCaseEnum(p *printer.Printer, o *oneof) {
	p.PrintVars(o.vars, "enum class $case_type$(val value: Int) {\n")
	p.Indent(func() {
		for _, m := range o.members {
			p.Print("$name$($number$),\n",
				"name", strings.ToUpper(string(m.Descriptor().Name())),
				"number", strconv.Itoa(int(m.Descriptor().Number())))
		}
		p.PrintVars(o.vars, "$not_set$(0);\n\n")

		p.Print("companion object {\n")
		p.Indent(func() {
			p.PrintVars(o.vars,
				"@JvmStatic\n"+
					"fun forNumber(value: Int): $case_type$? =\n"+
					"  when (value) {\n")
			for _, m := range o.members {
				p.Print("    $number$ -> $name$\n",
					"name", strings.ToUpper(string(m.Descriptor().Name())),
					"number", strconv.Itoa(int(m.Descriptor().Number())))
			}
			p.PrintVars(o.vars,
				"    0 -> $not_set$\n"+
					"    else -> null\n"+
					"  }\n")
		})
		p.Print("}\n")
	})
	p.Print("}\n\n")
	p.PrintVars(o.vars,
		"override fun get$oneof_capitalized_name$Case(): $case_type$ =\n"+
			"  $case_type$.forNumber($oneof_case$)!!\n\n")
}

func (g *Generator) generateIsInitialized(p *printer.Printer) {
	p.Print(
		"private var memoizedIsInitialized: Byte = -1\n" +
			"\n" +
			"fun isInitialized(): Boolean {\n" +
			"  val isInitialized = memoizedIsInitialized\n" +
			"  if (isInitialized == 1.toByte()) return true\n" +
			"  if (isInitialized == 0.toByte()) return false\n" +
			"  if (!isInitializedUncached()) {\n" +
			"    memoizedIsInitialized = 0\n" +
			"    return false\n" +
			"  }\n" +
			"  memoizedIsInitialized = 1\n" +
			"  return true\n" +
			"}\n" +
			"\n" +
			"private fun isInitializedUncached(): Boolean {\n")
	p.Indent(func() {
		for _, f := range g.fields {
			f.GenerateIsInitializedCode(p)
		}
		p.Print("return true\n")
	})
	p.Print("}\n\n")
}

func (g *Generator) generateWriteTo(p *printer.Printer) {
	p.Print("fun writeTo(output: com.google.protobuf.CodedOutputStream) {\n")
	p.Indent(func() {
		for _, f := range g.fields {
			f.GenerateSerializationCode(p)
		}
	})
	p.Print(
		"}\n" +
			"\n" +
			"fun toByteArray(): ByteArray {\n" +
			"  val result = ByteArray(getSerializedSize())\n" +
			"  val output = com.google.protobuf.CodedOutputStream.newInstance(result)\n" +
			"  writeTo(output)\n" +
			"  output.checkNoSpaceLeft()\n" +
			"  return result\n" +
			"}\n\n")
}

func (g *Generator) generateSerializedSize(p *printer.Printer) {
	p.Print(
		"private var memoizedSize: Int = -1\n" +
			"\n" +
			"fun getSerializedSize(): Int {\n" +
			"  var size = memoizedSize\n" +
			"  if (size != -1) return size\n" +
			"\n" +
			"  size = 0\n")
	p.Indent(func() {
		for _, f := range g.fields {
			f.GenerateSerializedSizeCode(p)
		}
		p.Print(
			"memoizedSize = size\n" +
				"return size\n")
	})
	p.Print("}\n\n")
}

func (g *Generator) generateEquals(p *printer.Printer, className string) {
	p.Print(
		"override fun equals(other: Any?): Boolean {\n"+
			"  if (other === this) return true\n"+
			"  if (other !is $classname$) return false\n"+
			"\n",
		"classname", className)
	p.Indent(func() {
		for _, f := range g.fields {
			if _, ok := f.Shape().(fields.OneofMember); !ok {
				f.GenerateEqualsCode(p)
			}
		}
		for _, o := range g.oneofs {
			p.PrintVars(o.vars, "if ($oneof_case$ != other.$oneof_case$) return false\n")
			g.generateCaseSwitch(p, o, "", fields.Generator.GenerateEqualsCode)
		}
		p.Print("return true\n")
	})
	p.Print("}\n\n")
}

func (g *Generator) generateHashCode(p *printer.Printer) {
	p.Print(
		"private var memoizedHashCode: Int = 0\n" +
			"\n" +
			"override fun hashCode(): Int {\n" +
			"  if (memoizedHashCode != 0) return memoizedHashCode\n" +
			"  var hash = 41\n")
	p.Indent(func() {
		for _, f := range g.fields {
			if _, ok := f.Shape().(fields.OneofMember); !ok {
				f.GenerateHashCode(p)
			}
		}
		for _, o := range g.oneofs {
			g.generateCaseSwitch(p, o, "", fields.Generator.GenerateHashCode)
		}
		p.Print(
			"hash = 29 * hash\n" +
				"memoizedHashCode = hash\n" +
				"return hash\n")
	})
	p.Print("}\n\n")
}

// generateCaseSwitch prints a "when" over the case of o, in the given
// receiver, with one branch per member printed by body.
func (g *Generator) generateCaseSwitch(p *printer.Printer, o *oneof, receiver string, body func(fields.Generator, *printer.Printer)) {
	p.PrintVars(o.vars.With("receiver", receiver), "when ($receiver$$oneof_case$) {\n")
	p.Indent(func() {
		for _, m := range o.members {
			p.Print("$number$ -> {\n", "number", strconv.Itoa(int(m.Descriptor().Number())))
			p.Indent(func() {
				body(m, p)
			})
			p.Print("}\n")
		}
	})
	p.Print("}\n")
}

func (g *Generator) generateMessageMisc(p *printer.Printer, className string) {
	p.Print(
		"fun toBuilder(): Builder = newBuilder().mergeFrom(this)\n"+
			"\n"+
			"fun newBuilderForType(): Builder = newBuilder()\n"+
			"\n"+
			"fun getDefaultInstanceForType(): $classname$ = DEFAULT_INSTANCE\n"+
			"\n",
		"classname", className)
	if !g.opts.Lite {
		p.Print(
			"fun getDescriptorForType(): com.google.protobuf.Descriptors.Descriptor =\n"+
				"  $descriptor$\n"+
				"\n",
			"descriptor", g.descriptorExpr(g.desc))
	}
}

func (g *Generator) generateBuilder(p *printer.Printer, className string) {
	p.Print("class Builder internal constructor() : $classname$OrBuilder {\n", "classname", className)
	p.Indent(func() {
		g.generateStorage(p, g.alloc.BuilderWords())
		p.Print("\n")

		for _, f := range g.fields {
			f.GenerateBuilderMembers(p)
		}
		for _, o := range g.oneofs {
			p.PrintVars(o.vars,
				"override fun get$oneof_capitalized_name$Case(): $case_type$ =\n"+
					"  $case_type$.forNumber($oneof_case$)!!\n"+
					"\n"+
					"fun clear$oneof_capitalized_name$(): Builder {\n"+
					"  $oneof_case$ = 0\n"+
					"  $oneof_storage$ = null\n"+
					"  return this\n"+
					"}\n"+
					"\n")
		}

		g.generateBuilderClear(p)
		g.generateBuild(p, className)
		g.generateBuilderMerge(p, className)
		g.generateBuilderParse(p)

		p.Print("fun isInitialized(): Boolean = buildPartial().isInitialized()\n")
	})
	p.Print("}\n")
}

func (g *Generator) generateBuilderClear(p *printer.Printer) {
	p.Print("fun clear(): Builder {\n")
	p.Indent(func() {
		for i := range g.alloc.BuilderWords() {
			p.Print("bitField$i$_ = 0\n", "i", strconv.Itoa(i))
		}
		for _, f := range g.fields {
			f.GenerateBuilderClearCode(p)
		}
		for _, o := range g.oneofs {
			p.PrintVars(o.vars,
				"$oneof_case$ = 0\n"+
					"$oneof_storage$ = null\n")
		}
		p.Print("return this\n")
	})
	p.Print("}\n\n")
}

func (g *Generator) generateBuild(p *printer.Printer, className string) {
	p.Print(
		"fun build(): $classname$ {\n"+
			"  val result = buildPartial()\n"+
			"  if (!result.isInitialized()) {\n"+
			"    throw IllegalStateException(\"Message missing required fields: $full_name$\")\n"+
			"  }\n"+
			"  return result\n"+
			"}\n"+
			"\n"+
			"fun buildPartial(): $classname$ {\n"+
			"  val result = $classname$()\n",
		"classname", className,
		"full_name", string(g.desc.FullName()))
	p.Indent(func() {
		for i := range g.alloc.BuilderWords() {
			p.Print("val from_bitField$i$_ = bitField$i$_\n", "i", strconv.Itoa(i))
		}
		for i := range g.alloc.MessageWords() {
			p.Print("var to_bitField$i$_ = 0\n", "i", strconv.Itoa(i))
		}
		for _, f := range g.fields {
			f.GenerateBuildingCode(p)
		}
		for i := range g.alloc.MessageWords() {
			p.Print("result.bitField$i$_ = to_bitField$i$_\n", "i", strconv.Itoa(i))
		}
		for _, o := range g.oneofs {
			p.PrintVars(o.vars, "result.$oneof_case$ = $oneof_case$\n")
		}
		p.Print("return result\n")
	})
	p.Print("}\n\n")
}

func (g *Generator) generateBuilderMerge(p *printer.Printer, className string) {
	p.Print(
		"fun mergeFrom(other: $classname$): Builder {\n"+
			"  if (other === $classname$.getDefaultInstance()) return this\n",
		"classname", className)
	p.Indent(func() {
		for _, f := range g.fields {
			if _, ok := f.Shape().(fields.OneofMember); !ok {
				f.GenerateMergingCode(p)
			}
		}
		for _, o := range g.oneofs {
			g.generateCaseSwitch(p, o, "other.", fields.Generator.GenerateMergingCode)
		}
		p.Print("return this\n")
	})
	p.Print("}\n\n")
}

func (g *Generator) generateBuilderParse(p *printer.Printer) {
	p.Print(
		"fun mergeFrom(input: com.google.protobuf.CodedInputStream): Builder =\n" +
			"  mergeFrom(input, com.google.protobuf.ExtensionRegistryLite.getEmptyRegistry())\n" +
			"\n" +
			"fun mergeFrom(\n" +
			"  input: com.google.protobuf.CodedInputStream,\n" +
			"  extensionRegistry: com.google.protobuf.ExtensionRegistryLite,\n" +
			"): Builder {\n" +
			"  var done = false\n" +
			"  while (!done) {\n" +
			"    when (val tag = input.readTag()) {\n" +
			"      0 -> done = true\n")
	p.Indent(func() {
		p.Indent(func() {
			p.Indent(func() {
				for _, f := range g.fields {
					f.GenerateParsingCode(p)
				}
				p.Print(
					"else -> {\n" +
						"  if (!input.skipField(tag)) done = true\n" +
						"}\n")
			})
		})
	})
	p.Print(
		"    }\n" +
			"  }\n" +
			"  return this\n" +
			"}\n\n")
}

func (g *Generator) generateCompanion(p *printer.Printer, className string) {
	p.Print("\ncompanion object {\n")
	p.Indent(func() {
		msgFields := g.desc.Fields()
		for i := range msgFields.Len() {
			field := msgFields.Get(i)
			p.Print("const val $constant$: Int = $number$\n",
				"constant", names.FieldNumberConstant(field),
				"number", strconv.Itoa(int(field.Number())))
		}
		if msgFields.Len() > 0 {
			p.Print("\n")
		}

		p.Print(
			"private val DEFAULT_INSTANCE: $classname$ = $classname$()\n"+
				"\n"+
				"@JvmStatic\n"+
				"fun getDefaultInstance(): $classname$ = DEFAULT_INSTANCE\n"+
				"\n"+
				"@JvmStatic\n"+
				"fun newBuilder(): Builder = Builder()\n"+
				"\n"+
				"@JvmStatic\n"+
				"fun newBuilder(prototype: $classname$): Builder = Builder().mergeFrom(prototype)\n"+
				"\n"+
				"@JvmStatic\n"+
				"fun parseFrom(data: ByteArray): $classname$ =\n"+
				"  newBuilder().mergeFrom(com.google.protobuf.CodedInputStream.newInstance(data)).build()\n"+
				"\n"+
				"@JvmStatic\n"+
				"fun parseFrom(\n"+
				"  input: com.google.protobuf.CodedInputStream,\n"+
				"  extensionRegistry: com.google.protobuf.ExtensionRegistryLite,\n"+
				"): $classname$ = newBuilder().mergeFrom(input, extensionRegistry).build()\n",
			"classname", className)

		if !g.opts.Lite && !noStandardDescriptorAccessor(g.desc) {
			p.Print(
				"\n"+
					"@JvmStatic\n"+
					"fun getDescriptor(): com.google.protobuf.Descriptors.Descriptor =\n"+
					"  $descriptor$\n",
				"descriptor", g.descriptorExpr(g.desc))
		}
	})
	p.Print("}\n")
}

// descriptorExpr returns an expression for the runtime descriptor of msg,
// found through the descriptor of the file that declares it.
func (g *Generator) descriptorExpr(msg protoreflect.MessageDescriptor) string {
	index := strconv.Itoa(msg.Index())
	if parent, ok := msg.Parent().(protoreflect.MessageDescriptor); ok {
		return g.descriptorExpr(parent) + ".getNestedTypes().get(" + index + ")"
	}
	return g.opts.Names.QualifiedFileClassName(msg.ParentFile()) +
		".getDescriptor().getMessageTypes().get(" + index + ")"
}

func noStandardDescriptorAccessor(msg protoreflect.MessageDescriptor) bool {
	opts, ok := msg.Options().(*descriptorpb.MessageOptions)
	return ok && opts.GetNoStandardDescriptorAccessor()
}
