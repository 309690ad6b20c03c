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

// Package presence allocates and renders presence bits.
//
// A generated message tracks which of its fields are set in a bitmap made of
// Int words named bitField0_, bitField1_, and so on. The immutable message and
// its builder each have their own bitmap, so every field that tracks presence
// is assigned two independent indices: one into the message's bitmap and one
// into the builder's.
package presence

import (
	"fmt"
)

// wordBits is the number of bits in one bitmap word (a Kotlin Int).
const wordBits = 32

// Bit is an index into a presence bitmap.
type Bit int

// Word returns the name of the bitmap word that holds b.
func (b Bit) Word() string {
	return fmt.Sprintf("bitField%d_", int(b)/wordBits)
}

// Mask returns the hexadecimal literal that selects b within its word.
func (b Bit) Mask() string {
	return fmt.Sprintf("0x%08x", uint32(1)<<(uint(b)%wordBits))
}

// Get returns an expression that is true if b is set.
func (b Bit) Get() string {
	return b.GetIn(b.Word())
}

// GetIn is like Get, but reads b from a local copy of its word, such as the
// one a builder takes while building a message.
func (b Bit) GetIn(word string) string {
	return fmt.Sprintf("((%s and %s) != 0)", word, b.Mask())
}

// Set returns a statement that sets b.
func (b Bit) Set() string {
	return b.SetIn(b.Word())
}

// SetIn is like Set, but writes to the named local word instead.
func (b Bit) SetIn(word string) string {
	return fmt.Sprintf("%s = %s or %s", word, word, b.Mask())
}

// Clear returns a statement that clears b.
func (b Bit) Clear() string {
	return fmt.Sprintf("%s = %s and %s.inv()", b.Word(), b.Word(), b.Mask())
}

// Consumer is something that needs presence bits, namely a field generator.
type Consumer interface {
	// NumBitsForMessage returns the number of bits needed in the message's
	// bitmap.
	NumBitsForMessage() int
	// NumBitsForBuilder returns the number of bits needed in the builder's
	// bitmap.
	NumBitsForBuilder() int
}

// Allocator hands out bits from two independent pools: one for the message
// bitmap and one for the builder bitmap. Bits are handed out in the order
// they are requested, which for generated messages is field declaration
// order. The zero value is ready to use.
type Allocator struct {
	message, builder int
}

// Next returns the next free message and builder bits, and then reserves
// the given number of bits from each pool.
//
// The returned bits are the first of each reserved range. If a count is
// zero, the corresponding bit is not reserved and must not be used.
func (a *Allocator) Next(messageBits, builderBits int) (message, builder Bit) {
	if messageBits < 0 || builderBits < 0 {
		panic(fmt.Sprintf("presence: negative bit count (%d, %d)", messageBits, builderBits))
	}
	message, builder = Bit(a.message), Bit(a.builder)
	a.message += messageBits
	a.builder += builderBits
	return message, builder
}

// Reserve is like Next, but reads the bit counts from c.
func (a *Allocator) Reserve(c Consumer) (message, builder Bit) {
	return a.Next(c.NumBitsForMessage(), c.NumBitsForBuilder())
}

// MessageBits returns the number of message bits handed out so far.
func (a *Allocator) MessageBits() int { return a.message }

// BuilderBits returns the number of builder bits handed out so far.
func (a *Allocator) BuilderBits() int { return a.builder }

// MessageWords returns the number of bitmap words the message must declare.
func (a *Allocator) MessageWords() int { return words(a.message) }

// BuilderWords returns the number of bitmap words the builder must declare.
func (a *Allocator) BuilderWords() int { return words(a.builder) }

func words(bits int) int {
	return (bits + wordBits - 1) / wordBits
}
