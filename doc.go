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

// Package protokotlin generates Kotlin sources from protobuf descriptors.
//
// Generation is done in several phases, each of which lives in its own
// package:
//
//  1. Name resolution: Kotlin packages, class names and accessor names.
//     Also see: names.Resolver
//  2. Enum classes: canonical values, aliases and value lookup.
//     Also see: enums.New
//  3. Message-typed fields: accessors, builders and parsing for singular,
//     repeated and oneof fields whose type is a message or group.
//     Also see: fields.New
//  4. Message classes, which tie the fields together and allocate the
//     presence bits they need.
//     Also see: messages.New, presence.Allocator
//
// All of these write to a printer.Printer, which substitutes $variables$
// into templates and records the source ranges of generated declarations
// so they can be reported as GeneratedCodeInfo.
//
// Generator
//
// A Generator accepts fully-linked file descriptors, such as those produced
// by github.com/bufbuild/protocompile or received in a protoc plugin request,
// and returns one Kotlin file per descriptor. Files are generated in
// parallel, and results are returned in the order the files were given:
//
//	gen := protokotlin.Generator{
//		Options: protokotlin.Options{Annotate: true},
//	}
//	files, err := gen.Generate(ctx, fds...)
//
// Problems found in the input, such as an enum value that collides with the
// reserved UNRECOGNIZED entry, are sent to the Generator's Reporter. Parts of
// the input that this package does not generate, such as services, are
// reported as warnings. With the default reporter, the first error aborts
// generation.
package protokotlin
