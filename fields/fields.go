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

// Package fields generates the code for message-typed fields of a Kotlin
// message class and its builder.
//
// Each field is handled by a [Generator], which prints one piece of code per
// method into the surrounding skeleton printed by the message generator. The
// skeleton provides these names:
//
//   - GenerateInitializationCode and GenerateMembers: message class body.
//   - GenerateBuilderMembers and GenerateBuilderClearCode: builder body and
//     Builder.clear().
//   - GenerateMergingCode: Builder.mergeFrom(other). For oneof members, the
//     code runs only when other has this member's case set.
//   - GenerateBuildingCode: Builder.buildPartial(), with result, and the
//     from_bitFieldN_ and to_bitFieldN_ locals.
//   - GenerateParsingCode: a branch of "when (tag)" in the parse loop, with
//     input and extensionRegistry in scope.
//   - GenerateSerializationCode and GenerateSerializedSizeCode: writeTo(output)
//     and getSerializedSize(), with a size local.
//   - GenerateEqualsCode and GenerateHashCode: equals(other), with other smart
//     cast to the message type, and hashCode(), with a hash local. For oneof
//     members, the code runs only when this member's case is set.
//   - GenerateIsInitializedCode: isInitialized().
package fields

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/protokotlin/names"
	"github.com/bufbuild/protokotlin/presence"
	"github.com/bufbuild/protokotlin/printer"
)

// Generator generates the code for one field.
type Generator interface {
	presence.Consumer

	// Descriptor returns the field this generator is for.
	Descriptor() protoreflect.FieldDescriptor
	// Shape returns the storage shape of the field.
	Shape() Shape
	// BoxedType returns the fully-qualified Kotlin type of one value of the
	// field.
	BoxedType() string

	GenerateInterfaceMembers(p *printer.Printer)
	GenerateMembers(p *printer.Printer)
	GenerateBuilderMembers(p *printer.Printer)
	GenerateInitializationCode(p *printer.Printer)
	GenerateBuilderClearCode(p *printer.Printer)
	GenerateMergingCode(p *printer.Printer)
	GenerateBuildingCode(p *printer.Printer)
	GenerateParsingCode(p *printer.Printer)
	GenerateSerializationCode(p *printer.Printer)
	GenerateSerializedSizeCode(p *printer.Printer)
	GenerateEqualsCode(p *printer.Printer)
	GenerateHashCode(p *printer.Printer)
	GenerateIsInitializedCode(p *printer.Printer)
}

// Bits are the presence bits assigned to a field. They are only meaningful
// for shapes that consume bits; see [Shape].
type Bits struct {
	Message, Builder presence.Bit
}

// Shape is the storage shape of a message-typed field. It is one of
// [Singular], [Repeated] or [OneofMember].
type Shape interface {
	presence.Consumer
	fmt.Stringer

	isShape()
}

// Singular is the shape of a field holding at most one value, tracked with a
// presence bit in both the message and the builder.
type Singular struct{}

// Repeated is the shape of a field holding a list. Empty lists are absent;
// no presence bits are used.
type Repeated struct{}

// OneofMember is the shape of a field stored in the slot shared by the
// members of a oneof. Presence is the oneof's case being this field.
type OneofMember struct {
	Oneof protoreflect.OneofDescriptor
}

func (Singular) NumBitsForMessage() int    { return 1 }
func (Singular) NumBitsForBuilder() int    { return 1 }
func (Repeated) NumBitsForMessage() int    { return 0 }
func (Repeated) NumBitsForBuilder() int    { return 0 }
func (OneofMember) NumBitsForMessage() int { return 0 }
func (OneofMember) NumBitsForBuilder() int { return 0 }

func (Singular) String() string      { return "singular" }
func (Repeated) String() string      { return "repeated" }
func (s OneofMember) String() string { return fmt.Sprintf("oneof %s", s.Oneof.Name()) }

func (Singular) isShape()    {}
func (Repeated) isShape()    {}
func (OneofMember) isShape() {}

// ShapeOf returns the shape of field. Members of synthetic oneofs, which
// back proto3 optional fields, are singular.
func ShapeOf(field protoreflect.FieldDescriptor) Shape {
	switch {
	case field.IsList():
		return Repeated{}
	case field.ContainingOneof() != nil && !field.ContainingOneof().IsSynthetic():
		return OneofMember{Oneof: field.ContainingOneof()}
	default:
		return Singular{}
	}
}

// IsMessageTyped reports whether field holds messages, and can therefore be
// handled by [New]. Map fields hold map entry messages, but are not
// message-typed for this purpose.
func IsMessageTyped(field protoreflect.FieldDescriptor) bool {
	switch field.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return !field.IsMap()
	default:
		return false
	}
}

// New returns the generator for field. bits must have been allocated for
// the field's shape, for example with a [presence.Allocator].
//
// Panics if field is not message-typed; callers must dispatch on the field's
// kind first.
func New(field protoreflect.FieldDescriptor, bits Bits, r names.Resolver) Generator {
	if !IsMessageTyped(field) {
		panic(fmt.Sprintf("fields: %s is not a message-typed field (kind %v, map %v)",
			field.FullName(), field.Kind(), field.IsMap()))
	}
	base := newField(field, bits, r)
	switch shape := ShapeOf(field).(type) {
	case Repeated:
		return &repeatedGenerator{field: base}
	case OneofMember:
		return &oneofGenerator{field: base, shape: shape}
	default:
		return &singularGenerator{field: base}
	}
}
