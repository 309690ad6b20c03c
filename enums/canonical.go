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

package enums

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Alias is an enum value that shares its number with an earlier value.
type Alias struct {
	Value     protoreflect.EnumValueDescriptor
	Canonical protoreflect.EnumValueDescriptor
}

// Partition splits the values of an enum into canonical values and aliases.
//
// Every declared value appears in exactly one of the two lists.
type Partition struct {
	// Canonical holds the first declared value for each distinct number, in
	// declaration order.
	Canonical []protoreflect.EnumValueDescriptor
	// Aliases holds every other value, paired with the canonical value it
	// shares a number with, in declaration order.
	Aliases []Alias
}

// Canonicalize partitions values, which must be in declaration order.
//
// A value is canonical iff it is the first value declared with its number.
// No sorting takes place: the canonical values keep their relative
// declaration order.
func Canonicalize(values []protoreflect.EnumValueDescriptor) Partition {
	first := make(map[protoreflect.EnumNumber]protoreflect.EnumValueDescriptor, len(values))
	for _, v := range values {
		if _, ok := first[v.Number()]; !ok {
			first[v.Number()] = v
		}
	}

	var p Partition
	for _, v := range values {
		canonical := first[v.Number()]
		if canonical == v {
			p.Canonical = append(p.Canonical, v)
		} else {
			p.Aliases = append(p.Aliases, Alias{Value: v, Canonical: canonical})
		}
	}
	return p
}

// Values returns the values of enum in declaration order.
func Values(enum protoreflect.EnumDescriptor) []protoreflect.EnumValueDescriptor {
	values := enum.Values()
	out := make([]protoreflect.EnumValueDescriptor, values.Len())
	for i := range out {
		out[i] = values.Get(i)
	}
	return out
}

// OrdinalIsIndex reports whether the position of every canonical value in
// canonical equals its declaration index.
//
// When it does, the ordinal Kotlin assigns to each generated entry can stand
// in for the value's index in its enum descriptor. Otherwise, each entry must
// carry its index explicitly.
func OrdinalIsIndex(canonical []protoreflect.EnumValueDescriptor) bool {
	for i, v := range canonical {
		if v.Index() != i {
			return false
		}
	}
	return true
}

// Lookup returns the canonical value with the given number, if there is one.
func (p Partition) Lookup(number protoreflect.EnumNumber) (protoreflect.EnumValueDescriptor, bool) {
	for _, v := range p.Canonical {
		if v.Number() == number {
			return v, true
		}
	}
	return nil, false
}

// HasAliases reports whether any value shares its number with another.
func (p Partition) HasAliases() bool {
	return len(p.Aliases) > 0
}
