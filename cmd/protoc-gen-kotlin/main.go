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

// Command protoc-gen-kotlin is a protoc plugin that generates Kotlin enum
// and message classes.
//
// It accepts these comma-separated parameters:
//
//	lite      generate code for the lite runtime
//	annotate  write a .pb.meta file with GeneratedCodeInfo next to each file
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/bufbuild/protokotlin"
	"github.com/bufbuild/protokotlin/reporter"
)

func main() {
	logrus.SetOutput(os.Stderr)
	if err := run(context.Background(), os.Stdin, os.Stdout); err != nil {
		logrus.Errorf("protoc-gen-kotlin: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	req := &pluginpb.CodeGeneratorRequest{}
	if err := proto.Unmarshal(data, req); err != nil {
		return fmt.Errorf("unmarshal request: %w", err)
	}

	resp := generate(ctx, req)
	data, err = proto.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// generate answers req. Failures are reported in the response, as protoc
// expects, rather than returned.
func generate(ctx context.Context, req *pluginpb.CodeGeneratorRequest) *pluginpb.CodeGeneratorResponse {
	resp := &pluginpb.CodeGeneratorResponse{
		SupportedFeatures: proto.Uint64(uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL)),
	}
	fail := func(err error) *pluginpb.CodeGeneratorResponse {
		resp.Error = proto.String(err.Error())
		resp.File = nil
		return resp
	}

	opts, err := parseParameter(req.GetParameter())
	if err != nil {
		return fail(err)
	}

	registry, err := protodesc.NewFiles(&descriptorpb.FileDescriptorSet{File: req.GetProtoFile()})
	if err != nil {
		return fail(fmt.Errorf("link request files: %w", err))
	}
	files := make([]protoreflect.FileDescriptor, 0, len(req.GetFileToGenerate()))
	for _, name := range req.GetFileToGenerate() {
		file, err := registry.FindFileByPath(name)
		if err != nil {
			return fail(fmt.Errorf("file to generate %q: %w", name, err))
		}
		files = append(files, file)
	}

	// Errors are collected so that the response lists all of them.
	gen := protokotlin.Generator{
		Options: opts,
		Reporter: reporter.NewReporter(
			func(reporter.ErrorWithPos) error {
				return nil
			},
			func(err reporter.ErrorWithPos) {
				logrus.Warn(err)
			},
		),
	}
	results, err := gen.Generate(ctx, files...)
	if err != nil {
		return fail(err)
	}

	for _, result := range results {
		resp.File = append(resp.File, &pluginpb.CodeGeneratorResponse_File{
			Name:    proto.String(result.Name),
			Content: proto.String(string(result.Content)),
		})
		if result.Info == nil {
			continue
		}
		info, err := proto.MarshalOptions{Deterministic: true}.Marshal(result.Info)
		if err != nil {
			return fail(fmt.Errorf("marshal annotations of %q: %w", result.Name, err))
		}
		resp.File = append(resp.File, &pluginpb.CodeGeneratorResponse_File{
			Name:    proto.String(result.Name + ".pb.meta"),
			Content: proto.String(string(info)),
		})
	}
	return resp
}

// parseParameter parses the comma-separated plugin parameter. Each element
// is a flag name, optionally followed by "=" and a value.
func parseParameter(param string) (protokotlin.Options, error) {
	var opts protokotlin.Options
	flags := pflag.NewFlagSet("protoc-gen-kotlin", pflag.ContinueOnError)
	flags.BoolVar(&opts.Lite, "lite", false, "generate code for the lite runtime")
	flags.BoolVar(&opts.Annotate, "annotate", false, "write GeneratedCodeInfo for each file")

	for _, elem := range strings.Split(param, ",") {
		elem = strings.TrimSpace(elem)
		if elem == "" {
			continue
		}
		name, value, found := strings.Cut(elem, "=")
		if !found {
			value = "true"
		}
		if flags.Lookup(name) == nil {
			return opts, fmt.Errorf("unknown parameter %q", name)
		}
		if err := flags.Set(name, value); err != nil {
			return opts, fmt.Errorf("parameter %q: %w", name, err)
		}
	}
	return opts, nil
}
