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
	"strconv"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/bufbuild/protokotlin/names"
	"github.com/bufbuild/protokotlin/printer"
)

// field holds what every generator needs to know about its field.
type field struct {
	desc protoreflect.FieldDescriptor
	bits Bits
	vars printer.Vars
	wire wire
}

func newField(desc protoreflect.FieldDescriptor, bits Bits, r names.Resolver) field {
	deprecation := ""
	if opts, ok := desc.Options().(*descriptorpb.FieldOptions); ok && opts.GetDeprecated() {
		deprecation = "@kotlin.Deprecated(message = \"field is deprecated\")\n"
	}

	vars := printer.Vars{
		"name":             names.FieldName(desc),
		"capitalized_name": names.CapitalizedFieldName(desc),
		"number":           strconv.Itoa(int(desc.Number())),
		"constant_name":    names.FieldNumberConstant(desc),
		"type":             r.QualifiedClassName(desc.Message()),
		"deprecation":      deprecation,

		// Presence, for the shapes that use bits.
		"get_has_field_bit_message":    bits.Message.Get(),
		"get_has_field_bit_builder":    bits.Builder.Get(),
		"set_has_field_bit_builder":    bits.Builder.Set(),
		"clear_has_field_bit_builder":  bits.Builder.Clear(),
		"get_has_field_bit_from_local": bits.Builder.GetIn("from_" + bits.Builder.Word()),
		"set_has_field_bit_to_local":   bits.Message.SetIn("to_" + bits.Message.Word()),
	}
	if oneof := desc.ContainingOneof(); oneof != nil && !oneof.IsSynthetic() {
		vars["oneof_name"] = names.FieldName(oneof)
		vars["oneof_capitalized_name"] = names.CapitalizedFieldName(oneof)
		vars["oneof_storage"] = names.FieldName(oneof) + "_"
		vars["oneof_case"] = names.FieldName(oneof) + "Case_"
	}

	return field{
		desc: desc,
		bits: bits,
		vars: vars,
		wire: newWire(desc),
	}
}

func (f *field) Descriptor() protoreflect.FieldDescriptor { return f.desc }

func (f *field) BoxedType() string { return f.vars["type"] }

// print prints text with the field's variables.
func (f *field) print(p *printer.Printer, text string) {
	p.PrintVars(f.vars, text)
}

// needsInitializationCheck reports whether values of the field can be
// uninitialized, i.e. whether the field's message type has required fields,
// directly or through its own message-typed fields.
func (f *field) needsInitializationCheck() bool {
	return hasRequiredFields(f.desc.Message(), map[protoreflect.FullName]bool{})
}

func hasRequiredFields(msg protoreflect.MessageDescriptor, seen map[protoreflect.FullName]bool) bool {
	if seen[msg.FullName()] {
		// Already being checked further up; a cycle adds nothing new.
		return false
	}
	seen[msg.FullName()] = true
	if msg.ExtensionRanges().Len() > 0 {
		// Extensions may be required.
		return true
	}
	fields := msg.Fields()
	for i := range fields.Len() {
		field := fields.Get(i)
		if field.Cardinality() == protoreflect.Required {
			return true
		}
		if field.Message() != nil && hasRequiredFields(field.Message(), seen) {
			return true
		}
	}
	return false
}

// wire describes how values of a field are framed on the wire: messages are
// length-delimited, groups are bracketed by start and end tags.
type wire struct {
	group  bool
	number string
	tag    string // The tag that starts a value, as a Kotlin Int literal.
	endTag string // For groups only.
}

func newWire(desc protoreflect.FieldDescriptor) wire {
	w := wire{
		group:  desc.Kind() == protoreflect.GroupKind,
		number: strconv.Itoa(int(desc.Number())),
	}
	if w.group {
		w.tag = tagLiteral(desc.Number(), protowire.StartGroupType)
		w.endTag = tagLiteral(desc.Number(), protowire.EndGroupType)
	} else {
		w.tag = tagLiteral(desc.Number(), protowire.BytesType)
	}
	return w
}

// tagLiteral renders a wire tag as the signed Int that readTag returns.
// Tags of field numbers from 2^28 up do not fit in an Int and wrap around.
func tagLiteral(number protoreflect.FieldNumber, typ protowire.Type) string {
	return strconv.Itoa(int(int32(protowire.EncodeTag(number, typ)))) //nolint:gosec // wraps like the JVM runtime
}

// write prints statements that serialize value, a Kotlin expression, to
// output.
func (w wire) write(p *printer.Printer, value string) {
	if w.group {
		p.Print(
			"output.writeTag($number$, com.google.protobuf.WireFormat.WIRETYPE_START_GROUP)\n"+
				"$value$.writeTo(output)\n"+
				"output.writeTag($number$, com.google.protobuf.WireFormat.WIRETYPE_END_GROUP)\n",
			"number", w.number, "value", value)
		return
	}
	p.Print(
		"output.writeTag($number$, com.google.protobuf.WireFormat.WIRETYPE_LENGTH_DELIMITED)\n"+
			"output.writeUInt32NoTag($value$.getSerializedSize())\n"+
			"$value$.writeTo(output)\n",
		"number", w.number, "value", value)
}

// size prints statements that add the serialized size of value to size.
func (w wire) size(p *printer.Printer, value string) {
	if w.group {
		p.Print(
			"size += com.google.protobuf.CodedOutputStream.computeTagSize($number$) * 2 + $value$.getSerializedSize()\n",
			"number", w.number, "value", value)
		return
	}
	p.Print(
		"val valueSize = $value$.getSerializedSize()\n"+
			"size += com.google.protobuf.CodedOutputStream.computeTagSize($number$) +\n"+
			"  com.google.protobuf.CodedOutputStream.computeUInt32SizeNoTag(valueSize) + valueSize\n",
		"number", w.number, "value", value)
}

// read prints statements that merge one value from input into builder, a
// Kotlin expression. The value's tag has already been consumed.
func (w wire) read(p *printer.Printer, builder string) {
	if w.group {
		p.Print(
			"$builder$.mergeFrom(input, extensionRegistry)\n"+
				"input.checkLastTagWas($end_tag$)\n",
			"builder", builder, "end_tag", w.endTag)
		return
	}
	p.Print(
		"val length = input.readRawVarint32()\n"+
			"val oldLimit = input.pushLimit(length)\n"+
			"$builder$.mergeFrom(input, extensionRegistry)\n"+
			"input.checkLastTagWas(0)\n"+
			"input.popLimit(oldLimit)\n",
		"builder", builder)
}
