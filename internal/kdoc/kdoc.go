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

// Package kdoc writes KDoc comments from the comments attached to
// descriptors in their source file.
package kdoc

import (
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/protokotlin/printer"
)

// Write prints the leading comment of d as a KDoc block. It prints nothing
// if d has no leading comment.
func Write(p *printer.Printer, d protoreflect.Descriptor) {
	file := d.ParentFile()
	if file == nil {
		return
	}
	text := file.SourceLocations().ByDescriptor(d).LeadingComments
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return
	}

	// A "*/" inside the comment would terminate the block early.
	text = strings.ReplaceAll(text, "*/", "*&#47;")

	p.Print("/**\n")
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			p.Print(" *\n")
			continue
		}
		if !strings.HasPrefix(line, " ") {
			line = " " + line
		}
		p.Print(" *$line$\n", "line", line)
	}
	p.Print(" */\n")
}
