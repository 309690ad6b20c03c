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

package presence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/protokotlin/presence"
)

func TestBit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		bit        presence.Bit
		word, mask string
	}{
		{0, "bitField0_", "0x00000001"},
		{5, "bitField0_", "0x00000020"},
		{31, "bitField0_", "0x80000000"},
		{32, "bitField1_", "0x00000001"},
		{70, "bitField2_", "0x00000040"},
	}
	for _, test := range tests {
		assert.Equal(t, test.word, test.bit.Word(), "bit %d", test.bit)
		assert.Equal(t, test.mask, test.bit.Mask(), "bit %d", test.bit)
	}

	bit := presence.Bit(33)
	assert.Equal(t, "((bitField1_ and 0x00000002) != 0)", bit.Get())
	assert.Equal(t, "((from_bitField1_ and 0x00000002) != 0)", bit.GetIn("from_bitField1_"))
	assert.Equal(t, "bitField1_ = bitField1_ or 0x00000002", bit.Set())
	assert.Equal(t, "to_bitField1_ = to_bitField1_ or 0x00000002", bit.SetIn("to_bitField1_"))
	assert.Equal(t, "bitField1_ = bitField1_ and 0x00000002.inv()", bit.Clear())
}

type consumer struct {
	message, builder int
}

func (c consumer) NumBitsForMessage() int { return c.message }
func (c consumer) NumBitsForBuilder() int { return c.builder }

func TestAllocator(t *testing.T) {
	t.Parallel()
	var a presence.Allocator
	assert.Zero(t, a.MessageWords())
	assert.Zero(t, a.BuilderWords())

	m, b := a.Reserve(consumer{1, 1})
	assert.Equal(t, presence.Bit(0), m)
	assert.Equal(t, presence.Bit(0), b)

	// Consumers without bits get the next free bit, which stays free.
	m, b = a.Reserve(consumer{0, 0})
	assert.Equal(t, presence.Bit(1), m)
	assert.Equal(t, presence.Bit(1), b)

	// The pools are independent.
	m, b = a.Next(0, 2)
	assert.Equal(t, presence.Bit(1), m)
	assert.Equal(t, presence.Bit(1), b)
	m, b = a.Next(1, 1)
	assert.Equal(t, presence.Bit(1), m)
	assert.Equal(t, presence.Bit(3), b)

	assert.Equal(t, 2, a.MessageBits())
	assert.Equal(t, 4, a.BuilderBits())
	assert.Equal(t, 1, a.MessageWords())
	assert.Equal(t, 1, a.BuilderWords())

	for range 30 {
		a.Next(1, 1)
	}
	assert.Equal(t, 32, a.MessageBits())
	assert.Equal(t, 1, a.MessageWords())
	assert.Equal(t, 34, a.BuilderBits())
	assert.Equal(t, 2, a.BuilderWords())

	assert.Panics(t, func() { a.Next(-1, 0) })
}
