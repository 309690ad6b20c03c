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

// Package sourcepath computes the SourceCodeInfo path of a descriptor, i.e.
// the sequence of field numbers and indices that locate the descriptor's
// proto within its FileDescriptorProto.
package sourcepath

import (
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Field numbers in google.protobuf.FileDescriptorProto.
const (
	fileMessages   = 4
	fileEnums      = 5
	fileServices   = 6
	fileExtensions = 7
)

// Field numbers in google.protobuf.DescriptorProto.
const (
	messageFields     = 2
	messageNested     = 3
	messageEnums      = 4
	messageExtensions = 6
	messageOneofs     = 8
)

// Field numbers in google.protobuf.EnumDescriptorProto and
// google.protobuf.ServiceDescriptorProto.
const (
	enumValues     = 2
	serviceMethods = 2
)

// Of returns the source path of d. The path of a file is empty.
func Of(d protoreflect.Descriptor) []int32 {
	var path []int32
	for {
		parent := d.Parent()
		if parent == nil {
			break
		}
		_, inFile := parent.(protoreflect.FileDescriptor)

		var field int32
		switch d := d.(type) {
		case protoreflect.MessageDescriptor:
			field = pick(inFile, fileMessages, messageNested)
		case protoreflect.EnumDescriptor:
			field = pick(inFile, fileEnums, messageEnums)
		case protoreflect.FieldDescriptor:
			if d.IsExtension() {
				field = pick(inFile, fileExtensions, messageExtensions)
			} else {
				field = messageFields
			}
		case protoreflect.OneofDescriptor:
			field = messageOneofs
		case protoreflect.EnumValueDescriptor:
			field = enumValues
		case protoreflect.ServiceDescriptor:
			field = fileServices
		case protoreflect.MethodDescriptor:
			field = serviceMethods
		default:
			return nil
		}

		// Built in reverse; flipped below.
		path = append(path, int32(d.Index()), field)
		d = parent
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func pick(inFile bool, file, message int32) int32 {
	if inFile {
		return file
	}
	return message
}
