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

package messages_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/protokotlin/fields"
	"github.com/bufbuild/protokotlin/internal/testutil"
	"github.com/bufbuild/protokotlin/messages"
	"github.com/bufbuild/protokotlin/printer"
)

const source = `
	syntax = "proto2";
	package foo;
	message Leaf {}
	message Tree {
		message Inner { optional Leaf z = 1; }
		enum Kind { K0 = 0; }

		optional Leaf a = 1;
		optional int32 n = 2;
		repeated Leaf b = 3;
		oneof pick {
			Leaf c = 4;
			string s = 5;
			Leaf d = 6;
		}
		oneof scalars { int32 i = 7; }
		optional Leaf e = 8;
		map<string, Leaf> m = 9;
	}
	message Hidden {
		option no_standard_descriptor_accessor = true;
		optional Leaf a = 1;
	}
`

func generate(t *testing.T, msg protoreflect.MessageDescriptor, opts messages.Options) (string, *printer.Printer) {
	t.Helper()
	p := printer.New()
	messages.New(msg, opts).Generate(p)
	return p.String(), p
}

func fieldNames[T interface{ Name() protoreflect.Name }](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = string(item.Name())
	}
	return out
}

func TestNew(t *testing.T) {
	t.Parallel()
	file := testutil.Compile(t, source)
	gen := messages.New(testutil.Message(t, file, "Tree"), messages.Options{})

	assert.Equal(t, protoreflect.FullName("foo.Tree"), gen.Descriptor().FullName())
	descs := make([]protoreflect.FieldDescriptor, len(gen.Fields()))
	for i, f := range gen.Fields() {
		descs[i] = f.Descriptor()
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, fieldNames(descs))
	assert.Equal(t, []string{"n", "s", "i", "m"}, fieldNames(gen.Skipped()))

	// Only singular fields take bits, in declaration order.
	assert.Equal(t, 2, gen.MessageBits())
	assert.Equal(t, 2, gen.BuilderBits())
	shapes := make([]string, len(gen.Fields()))
	for i, f := range gen.Fields() {
		shapes[i] = f.Shape().String()
	}
	assert.Equal(t, []string{"singular", "repeated", "oneof pick", "oneof pick", "singular"}, shapes)

	assert.Panics(t, func() {
		messages.New(testutil.Message(t, file, "Tree.MEntry"), messages.Options{})
	})
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	file := testutil.Compile(t, source)
	got, p := generate(t, testutil.Message(t, file, "Tree"), messages.Options{})

	assert.Contains(t, got,
		"interface TreeOrBuilder {\n"+
			"  fun hasA(): Boolean\n"+
			"  fun getA(): foo.Leaf\n")
	assert.Contains(t, got, "  fun getPickCase(): Tree.PickCase\n}\n\n")
	assert.NotContains(t, got, "ScalarsCase")
	assert.NotContains(t, got, "getN()")

	assert.Contains(t, got,
		"class Tree private constructor() : TreeOrBuilder {\n"+
			"  private var bitField0_: Int = 0\n"+
			"  private var pick_: Any? = null\n"+
			"  private var pickCase_: Int = 0\n"+
			"  private var a_: foo.Leaf? = null\n"+
			"  private var b_: List<foo.Leaf> = emptyList()\n"+
			"  private var e_: foo.Leaf? = null\n"+
			"\n")
	assert.Contains(t, got,
		"  enum class PickCase(val value: Int) {\n"+
			"    C(4),\n"+
			"    D(6),\n"+
			"    PICK_NOT_SET(0);\n")
	assert.Contains(t, got,
		"          4 -> C\n"+
			"          6 -> D\n"+
			"          0 -> PICK_NOT_SET\n"+
			"          else -> null\n")
	assert.Contains(t, got, "  override fun hasE(): Boolean = ((bitField0_ and 0x00000002) != 0)\n")

	assert.Contains(t, got,
		"  private fun isInitializedUncached(): Boolean {\n"+
			"    return true\n"+
			"  }\n")
	assert.Contains(t, got,
		"    if (pickCase_ != other.pickCase_) return false\n"+
			"    when (pickCase_) {\n"+
			"      4 -> {\n"+
			"        if (getC() != other.getC()) return false\n"+
			"      }\n"+
			"      6 -> {\n"+
			"        if (getD() != other.getD()) return false\n"+
			"      }\n"+
			"    }\n"+
			"    return true\n")
	assert.Contains(t, got,
		"      4 -> {\n"+
			"        hash = (37 * hash) + C_FIELD_NUMBER\n")

	// Builder.
	assert.Contains(t, got, "  class Builder internal constructor() : TreeOrBuilder {\n")
	assert.Contains(t, got,
		"    fun clear(): Builder {\n"+
			"      bitField0_ = 0\n"+
			"      a_ = null\n"+
			"      aBuilder_ = null\n"+
			"      b_.clear()\n"+
			"      e_ = null\n"+
			"      eBuilder_ = null\n"+
			"      pickCase_ = 0\n"+
			"      pick_ = null\n"+
			"      return this\n"+
			"    }\n")
	assert.Contains(t, got,
		"      val from_bitField0_ = bitField0_\n"+
			"      var to_bitField0_ = 0\n")
	assert.Contains(t, got,
		"      result.bitField0_ = to_bitField0_\n"+
			"      result.pickCase_ = pickCase_\n"+
			"      return result\n")
	assert.Contains(t, got,
		"      when (other.pickCase_) {\n"+
			"        4 -> {\n"+
			"          mergeC(other.getC())\n"+
			"        }\n")
	assert.Contains(t, got,
		"        when (val tag = input.readTag()) {\n"+
			"          0 -> done = true\n"+
			"          10 -> {\n")
	assert.Contains(t, got, "          26 -> {\n            val length = input.readRawVarint32()\n")
	assert.Contains(t, got, "          34 -> {\n")
	assert.Contains(t, got, "          50 -> {\n")
	assert.Contains(t, got, "          66 -> {\n")
	assert.NotContains(t, got, "          42 -> {\n")
	assert.Contains(t, got,
		"          else -> {\n"+
			"            if (!input.skipField(tag)) done = true\n"+
			"          }\n")
	assert.Contains(t, got,
		"    fun clearPick(): Builder {\n"+
			"      pickCase_ = 0\n")

	// Nested types come after the builder.
	assert.Contains(t, got, "  enum class Kind(val value: Int) : com.google.protobuf.ProtocolMessageEnum {\n")
	assert.Contains(t, got, "  class Inner private constructor() : InnerOrBuilder {\n")
	assert.Less(t, strings.Index(got, "class Builder"), strings.Index(got, "enum class Kind"))
	assert.Less(t, strings.Index(got, "enum class Kind"), strings.Index(got, "interface InnerOrBuilder"))

	// Constants exist for every field, generated or not.
	assert.Contains(t, got,
		"    const val A_FIELD_NUMBER: Int = 1\n"+
			"    const val N_FIELD_NUMBER: Int = 2\n")
	assert.Contains(t, got, "    const val M_FIELD_NUMBER: Int = 9\n")
	assert.Contains(t, got, "      foo.TestProto.getDescriptor().getMessageTypes().get(1)\n")
	assert.Contains(t, got, "      foo.TestProto.getDescriptor().getMessageTypes().get(1).getNestedTypes().get(0)\n")
	assert.Contains(t, got, "    fun getDescriptorForType(): com.google.protobuf.Descriptors.Descriptor =\n")
	assert.Contains(t, got, "  // @@protoc_insertion_point(class_scope:foo.Tree.Inner)\n")
	assert.True(t, strings.HasSuffix(got, "  // @@protoc_insertion_point(class_scope:foo.Tree)\n}\n"))

	var classAnnotations int
	for _, a := range p.Info().GetAnnotation() {
		if got[a.GetBegin():a.GetEnd()] == "Tree" {
			assert.Equal(t, []int32{4, 1}, a.GetPath())
			classAnnotations++
		}
	}
	assert.Equal(t, 1, classAnnotations)
}

func TestGenerateLite(t *testing.T) {
	t.Parallel()
	file := testutil.Compile(t, source)
	got, _ := generate(t, testutil.Message(t, file, "Tree"), messages.Options{Lite: true})
	assert.NotContains(t, got, "getDescriptor")
	assert.NotContains(t, got, "com.google.protobuf.Descriptors")
	assert.Contains(t, got, "  enum class Kind(val value: Int) : com.google.protobuf.Internal.EnumLite {\n")
}

func TestGenerateNoStandardDescriptorAccessor(t *testing.T) {
	t.Parallel()
	file := testutil.Compile(t, source)
	got, _ := generate(t, testutil.Message(t, file, "Hidden"), messages.Options{})
	assert.NotContains(t, got, "fun getDescriptor()")
	assert.Contains(t, got,
		"  fun getDescriptorForType(): com.google.protobuf.Descriptors.Descriptor =\n"+
			"    foo.TestProto.getDescriptor().getMessageTypes().get(2)\n")
}

func TestOpenEnumOverride(t *testing.T) {
	t.Parallel()
	file := testutil.Compile(t, source)
	msg := testutil.Message(t, file, "Tree")

	// Enums in proto2 files are closed.
	got, _ := generate(t, msg, messages.Options{})
	assert.NotContains(t, got, "UNRECOGNIZED")

	got, _ = generate(t, msg, messages.Options{
		OpenEnum: func(protoreflect.EnumDescriptor) bool { return true },
	})
	assert.Contains(t, got, "    UNRECOGNIZED(-1),\n")
}

func TestManyPresenceWords(t *testing.T) {
	t.Parallel()
	src := "syntax = \"proto3\";\npackage foo;\nmessage Leaf {}\nmessage Wide {\n"
	for i := 1; i <= 33; i++ {
		src += "  optional Leaf f" + strconv.Itoa(i) + " = " + strconv.Itoa(i) + ";\n"
	}
	src += "}\n"
	file := testutil.Compile(t, src)

	gen := messages.New(testutil.Message(t, file, "Wide"), messages.Options{})
	assert.Equal(t, 33, gen.MessageBits())
	for _, f := range gen.Fields() {
		require.IsType(t, fields.Singular{}, f.Shape())
	}

	got, _ := generate(t, testutil.Message(t, file, "Wide"), messages.Options{})
	assert.Contains(t, got, "  private var bitField0_: Int = 0\n  private var bitField1_: Int = 0\n")
	assert.Contains(t, got, "override fun hasF33(): Boolean = ((bitField1_ and 0x00000001) != 0)\n")
	assert.Contains(t, got, "      val from_bitField1_ = bitField1_\n")
	assert.Contains(t, got, "      result.bitField1_ = to_bitField1_\n")
	assert.NotContains(t, got, "bitField2_")
}
