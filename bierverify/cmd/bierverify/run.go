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

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bierproto/bierverify/private/app/launcher"
	"github.com/bierproto/bierverify/private/verify"
)

func newRun(pather CommandPather) *cobra.Command {
	var out output
	var cfg verify.Config
	metrics := verify.NewMetrics()
	a := &launcher.Application{
		TOMLConfig:     &cfg,
		EntriesCounter: metrics.EntriesCounter(),
	}
	cmd := a.Command(pather, "run", "Check all scenarios of a configuration file")
	cmd.Long = fmt.Sprintf(`'run' checks every scenario of a TOML configuration file. Scenarios
are checked in the order of their names.

A commented sample configuration is printed by '%s sample'.`, pather.CommandPath())
	a.Main = func(ctx context.Context) error {
		if err := out.validate(); err != nil {
			return err
		}
		return runConfig(ctx, &cfg, metrics, cmd.OutOrStdout(), out)
	}
	out.register(cmd)
	return cmd
}
