// Copyright 2026 The bierverify Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package command contains cobra commands shared by the bierverify binaries.
package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bierproto/bierverify/private/app"
	"github.com/bierproto/bierverify/private/config"
)

// Pather returns the command path of a parent command.
type Pather interface {
	CommandPath() string
}

// NewSample returns a command that prints the commented sample configuration
// of cfg.
func NewSample(pather Pather, cfg config.Sampler) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Display a sample configuration file",
		Example: fmt.Sprintf("  %[1]s sample > bierverify.toml\n"+
			"  %[1]s run --config bierverify.toml", pather.CommandPath()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.WriteSample(cmd.OutOrStdout(), nil, nil, cfg)
			return nil
		},
	}
}

// NewVersion returns a command that prints the build information.
func NewVersion(pather Pather) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show the version and build information",
		Example: fmt.Sprintf("  %s version", pather.CommandPath()),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), app.VersionInfo())
			return err
		},
	}
}
