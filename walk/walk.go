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

// Package walk provides helper functions for traversing all elements in a
// protobuf file descriptor, in declaration order.
package walk

import (
	"errors"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// SkipChildren may be returned by an enter function to skip the children of
// the element just entered. The exit function is still called for it.
var SkipChildren = errors.New("skip children") //nolint:revive,errname,stylecheck // sentinel, not a failure

// Descriptors walks all descriptors in the given file using a depth-first
// pre-order traversal, calling the given function for each descriptor in the
// hierarchy. The walk ends when traversal is complete or when the function
// returns an error. If the function returns an error, that is returned as
// the result of the walk operation.
//
// Descriptors are visited using a order that matches the order in the source
// file. Within a message, fields come first, then oneofs, nested messages,
// nested enums and extensions.
func Descriptors(file protoreflect.FileDescriptor, fn func(protoreflect.Descriptor) error) error {
	return DescriptorsEnterAndExit(file, fn, nil)
}

// DescriptorsEnterAndExit walks all descriptors in the given file using a
// depth-first traversal, calling the given enter function on entering each
// descriptor and the given exit function on exiting each descriptor. The
// exit function may be nil.
func DescriptorsEnterAndExit(file protoreflect.FileDescriptor, enter, exit func(protoreflect.Descriptor) error) error {
	w := walker{enter: enter, exit: exit}
	for i := range file.Messages().Len() {
		if err := w.message(file.Messages().Get(i)); err != nil {
			return err
		}
	}
	for i := range file.Enums().Len() {
		if err := w.enum(file.Enums().Get(i)); err != nil {
			return err
		}
	}
	for i := range file.Extensions().Len() {
		if err := w.leaf(file.Extensions().Get(i)); err != nil {
			return err
		}
	}
	for i := range file.Services().Len() {
		svc := file.Services().Get(i)
		err := w.node(svc, func() error {
			for j := range svc.Methods().Len() {
				if err := w.leaf(svc.Methods().Get(j)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Enums calls fn for every enum in file, including nested enums, in
// declaration order.
func Enums(file protoreflect.FileDescriptor, fn func(protoreflect.EnumDescriptor) error) error {
	return Descriptors(file, func(d protoreflect.Descriptor) error {
		if enum, ok := d.(protoreflect.EnumDescriptor); ok {
			if err := fn(enum); err != nil {
				return err
			}
			return SkipChildren
		}
		return nil
	})
}

// Fields calls fn for every non-extension field in file, including fields of
// nested messages, in declaration order.
func Fields(file protoreflect.FileDescriptor, fn func(protoreflect.FieldDescriptor) error) error {
	return Descriptors(file, func(d protoreflect.Descriptor) error {
		if field, ok := d.(protoreflect.FieldDescriptor); ok && !field.IsExtension() {
			return fn(field)
		}
		return nil
	})
}

type walker struct {
	enter, exit func(protoreflect.Descriptor) error
}

// node enters d, walks its children with body and then exits d.
func (w walker) node(d protoreflect.Descriptor, body func() error) error {
	err := w.enter(d)
	switch {
	case errors.Is(err, SkipChildren):
	case err != nil:
		return err
	default:
		if err := body(); err != nil {
			return err
		}
	}
	if w.exit != nil {
		return w.exit(d)
	}
	return nil
}

func (w walker) leaf(d protoreflect.Descriptor) error {
	return w.node(d, func() error { return nil })
}

func (w walker) message(msg protoreflect.MessageDescriptor) error {
	return w.node(msg, func() error {
		for i := range msg.Fields().Len() {
			if err := w.leaf(msg.Fields().Get(i)); err != nil {
				return err
			}
		}
		for i := range msg.Oneofs().Len() {
			if err := w.leaf(msg.Oneofs().Get(i)); err != nil {
				return err
			}
		}
		for i := range msg.Messages().Len() {
			if err := w.message(msg.Messages().Get(i)); err != nil {
				return err
			}
		}
		for i := range msg.Enums().Len() {
			if err := w.enum(msg.Enums().Get(i)); err != nil {
				return err
			}
		}
		for i := range msg.Extensions().Len() {
			if err := w.leaf(msg.Extensions().Get(i)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (w walker) enum(en protoreflect.EnumDescriptor) error {
	return w.node(en, func() error {
		for i := range en.Values().Len() {
			if err := w.leaf(en.Values().Get(i)); err != nil {
				return err
			}
		}
		return nil
	})
}
