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
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bierproto/bierverify/pkg/bier/mapping"
	"github.com/bierproto/bierverify/pkg/private/serrors"
	"github.com/bierproto/bierverify/private/app"
	"github.com/bierproto/bierverify/private/app/launcher"
	"github.com/bierproto/bierverify/private/trace"
	"github.com/bierproto/bierverify/private/verify"
)

// output holds the flags that control how reports are written.
type output struct {
	format  string
	noColor bool
}

func (o *output) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "format", verify.FormatHuman,
		"Specify the output format (human|json|yaml)")
	cmd.Flags().BoolVar(&o.noColor, "no-color", false, "disable colored output")
}

func (o *output) validate() error {
	switch o.format {
	case verify.FormatHuman, verify.FormatJSON, verify.FormatYAML:
		return nil
	default:
		return serrors.New("output format not supported", "format", o.format)
	}
}

func (o *output) colored(w io.Writer) bool {
	return o.format == verify.FormatHuman && app.ColorEnabled(w, o.noColor)
}

// newViper returns a viper store that has all flags of cmd bound, and that
// is overridden by environment variables. The flag --capture-format is
// overridden by BIERVERIFY_CAPTURE_FORMAT, for example.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(launcher.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if err := v.BindEnv("log.console.level"); err != nil {
		return nil, err
	}
	return v, nil
}

// parsePositions parses bit positions. Every value may hold a comma separated
// list.
func parsePositions(values []string) ([]uint, error) {
	var positions []uint
	for _, value := range values {
		for _, s := range strings.Split(value, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			p, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return nil, serrors.Wrap("invalid bit position", err, "position", s)
			}
			positions = append(positions, uint(p))
		}
	}
	return positions, nil
}

func sampleConfig() *verify.Config {
	return &verify.Config{}
}

// runConfig runs all scenarios of a validated configuration and writes the
// reports to w. The returned error carries exit code 1 if a scenario failed.
func runConfig(ctx context.Context, cfg *verify.Config, metrics *verify.Metrics,
	w io.Writer, out output) error {

	index, err := mapping.LoadFile(cfg.General.Mapping)
	if err != nil {
		return err
	}
	scenarios, err := cfg.ScenarioList()
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		return serrors.New("no scenarios configured")
	}
	d := verify.Driver{
		Mapping: index,
		Reader: func(s verify.Scenario) trace.Reader {
			return cfg.Artifacts.Reader(s.TraceDir)
		},
		Naming:      cfg.Artifacts.Naming(),
		Parallelism: cfg.General.Parallelism,
		Metrics:     metrics,
	}
	reports, runErr := d.RunAll(ctx, scenarios)
	if err := verify.Write(w, out.format, reports, out.colored(w)); err != nil {
		return serrors.Wrap("writing reports", err)
	}
	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	var failed []string
	for _, r := range reports {
		if !r.Pass {
			failed = append(failed, r.Scenario)
		}
	}
	if len(failed) != 0 {
		return app.WithExitCode(serrors.New("verification failed", "scenarios", failed),
			app.ExitFail)
	}
	return nil
}
