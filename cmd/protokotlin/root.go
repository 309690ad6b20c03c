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
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix prefixes the environment variables that override flags, as in
// PROTOKOTLIN_OUT for --out.
const envPrefix = "PROTOKOTLIN"

type rootOpts struct {
	cfgFile string
	debug   bool
}

func newRootCommand() *cobra.Command {
	var opts rootOpts
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "protokotlin",
		Short:         "Generate Kotlin enum and message classes from protobuf sources.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return initConfig(v, opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "YAML config file with defaults for flags")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "turn on debug logging")

	cmd.AddCommand(newGenerateCommand(v))
	return cmd
}

// initConfig sets up logging and loads the config file, if any. Values are
// looked up in flags first, then the environment, then the config file.
func initConfig(v *viper.Viper, opts rootOpts) error {
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if opts.debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.cfgFile == "" {
		return nil
	}
	v.SetConfigFile(opts.cfgFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %q: %w", opts.cfgFile, err)
	}
	logrus.Debugf("using config file %s", v.ConfigFileUsed())
	return nil
}
