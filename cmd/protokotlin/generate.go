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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bufbuild/protocompile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/bufbuild/protokotlin"
	"github.com/bufbuild/protokotlin/reporter"
)

const (
	flagOut         = "out"
	flagImportPath  = "import-path"
	flagLite        = "lite"
	flagAnnotate    = "annotate"
	flagParallelism = "parallelism"
)

// generateConfig is the resolved configuration of the generate command.
type generateConfig struct {
	Out         string
	ImportPaths []string
	Lite        bool
	Annotate    bool
	Parallelism int
}

func newGenerateCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [flags] <pattern>...",
		Short: "Compile the matching .proto files and write Kotlin sources.",
		Long: `Compile the .proto files matching the given patterns and write one Kotlin
source file per proto file under the output directory.

Patterns are matched against paths relative to each import path, and may use
"**" to match any number of directories, as in "acme/**/*.proto".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := generateConfig{
				Out:         v.GetString(flagOut),
				ImportPaths: v.GetStringSlice(flagImportPath),
				Lite:        v.GetBool(flagLite),
				Annotate:    v.GetBool(flagAnnotate),
				Parallelism: v.GetInt(flagParallelism),
			}
			return runGenerate(cmd.Context(), cfg, args)
		},
	}

	flags := cmd.Flags()
	flags.StringP(flagOut, "o", ".", "directory to write generated files to")
	flags.StringSliceP(flagImportPath, "I", []string{"."}, "directories to search for proto files and their imports")
	flags.Bool(flagLite, false, "generate code for the lite runtime")
	flags.Bool(flagAnnotate, false, "write a .pb.meta file with GeneratedCodeInfo next to each file")
	flags.Int(flagParallelism, 0, "maximum number of files generated at once (0 for one per CPU)")
	if err := v.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("bind flags: %v", err))
	}
	return cmd
}

func runGenerate(ctx context.Context, cfg generateConfig, patterns []string) error {
	names, err := expandPatterns(cfg.ImportPaths, patterns)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errors.New("no proto files match the given patterns")
	}
	logrus.Debugf("compiling %d files", len(names))

	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			ImportPaths: cfg.ImportPaths,
		}),
		SourceInfoMode: protocompile.SourceInfoStandard,
		MaxParallelism: cfg.Parallelism,
	}
	compiled, err := compiler.Compile(ctx, names...)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	files := make([]protoreflect.FileDescriptor, len(compiled))
	for i, file := range compiled {
		files[i] = file
	}

	gen := protokotlin.Generator{
		Options: protokotlin.Options{
			Lite:     cfg.Lite,
			Annotate: cfg.Annotate,
		},
		MaxParallelism: cfg.Parallelism,
		Reporter: reporter.NewReporter(
			func(err reporter.ErrorWithPos) error {
				logrus.Error(err)
				return nil
			},
			func(err reporter.ErrorWithPos) {
				logrus.Warn(err)
			},
		),
	}
	results, err := gen.Generate(ctx, files...)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	for _, result := range results {
		if err := writeResult(cfg.Out, result); err != nil {
			return err
		}
	}
	logrus.Infof("generated %d files in %s", len(results), cfg.Out)
	return nil
}

// expandPatterns returns the paths, relative to their import path, of the
// files matching patterns, sorted and without duplicates.
func expandPatterns(importPaths, patterns []string) ([]string, error) {
	var names []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		for _, root := range importPaths {
			matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("match %q in %q: %w", pattern, root, err)
			}
			names = append(names, matches...)
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

func writeResult(out string, result *protokotlin.File) error {
	path := filepath.Join(out, filepath.FromSlash(result.Name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, result.Content, 0o644); err != nil { //nolint:gosec // generated sources are not secret
		return err
	}
	logrus.Debugf("wrote %s", path)
	if result.Info == nil {
		return nil
	}
	info, err := proto.MarshalOptions{Deterministic: true}.Marshal(result.Info)
	if err != nil {
		return fmt.Errorf("marshal annotations of %s: %w", result.Name, err)
	}
	return os.WriteFile(path+".pb.meta", info, 0o644) //nolint:gosec // see above
}
