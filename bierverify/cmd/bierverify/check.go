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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bierproto/bierverify/pkg/log"
	"github.com/bierproto/bierverify/private/app"
	"github.com/bierproto/bierverify/private/trace"
	"github.com/bierproto/bierverify/private/verify"
)

func newCheck(pather CommandPather) *cobra.Command {
	var out output

	var cmd = &cobra.Command{
		Use:   "check",
		Short: "Check the traces of a run against a bit-string",
		Args:  cobra.NoArgs,
		Example: fmt.Sprintf(`  %[1]s check --mapping mapping.txt --traces out --bitstring 0x2ff
  %[1]s check --mapping mapping.txt --traces out --bitstring 0x2ff --skip 0 --format json
  %[1]s check --mapping mapping.txt --traces out --bitstring 0x3e0 --links-only \
      --capture-format pcap --capture-filter bier`, pather.CommandPath()),
		Long: `'check' verifies a single bit-string against the traces of a run.

Node positions are checked against the application log of the receiver, link
positions against the captures of both link endpoints. The packet count every
authorized position must have seen is taken from the first authorized position
that saw traffic, unless --expected-count is set.

All flags can be set through environment variables as well, for example
BIERVERIFY_TRACES for --traces.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			out.format = v.GetString("format")
			out.noColor = v.GetBool("no-color")
			if err := out.validate(); err != nil {
				return err
			}
			skip, err := parsePositions(v.GetStringSlice("skip"))
			if err != nil {
				return err
			}

			cfg := verify.Config{
				General: verify.General{
					Mapping:     v.GetString("mapping"),
					Traces:      v.GetString("traces"),
					Parallelism: v.GetInt("parallelism"),
				},
				Artifacts: verify.Artifacts{
					CaptureFormat:   v.GetString("capture-format"),
					CaptureFilter:   v.GetString("capture-filter"),
					CaptureTemplate: v.GetString("capture-template"),
					AppTemplate:     v.GetString("app-template"),
				},
				Metrics: verify.MetricsConfig{Textfile: v.GetString("metrics")},
				Scenarios: []verify.ScenarioConfig{{
					Name:          v.GetString("name"),
					BitString:     v.GetString("bitstring"),
					BIFT:          v.GetString("bift"),
					LinksOnly:     v.GetBool("links-only"),
					Skip:          skip,
				}},
			}
			if v.IsSet("expected-count") {
				count := v.GetInt("expected-count")
				cfg.Scenarios[0].ExpectedCount = &count
			}
			cfg.Logging.Console.Level = v.GetString("log.level")
			if cfg.Logging.Console.Level == "" {
				cfg.Logging.Console.Level = v.GetString("log.console.level")
			}
			cfg.InitDefaults()
			if err := cfg.Validate(); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			metrics := verify.NewMetrics()
			err = log.Setup(cfg.Logging, log.WithEntriesCounter(metrics.EntriesCounter()))
			if err != nil {
				return err
			}
			defer log.Flush()
			return runConfig(cmd.Context(), &cfg, metrics, cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().String("mapping", "", "Bit position mapping file (required)")
	cmd.Flags().String("traces", "", "Directory holding the traces of the run (required)")
	cmd.Flags().String("bitstring", "",
		"Bit-string, hexadecimal with optional 0x prefix, or 0b/0d prefixed (required)")
	cmd.Flags().String("name", "check", "Scenario name used in the report")
	cmd.Flags().String("bift", "", "Forwarding table identifier, substituted for {bift}")
	cmd.Flags().Int("expected-count", 0,
		"Packets expected at every authorized position (derived from the traces if unset)")
	cmd.Flags().Bool("links-only", false, "Do not check node positions")
	cmd.Flags().StringSlice("skip", nil, "Bit positions that are not checked")
	cmd.Flags().String("capture-format", string(trace.FormatJSON),
		"Encoding of the per-interface captures (json|pcap)")
	cmd.Flags().String("capture-filter", "",
		"Packets of pcap captures that are counted (ipv6|udp|bier)")
	cmd.Flags().String("capture-template", "",
		"File name template of the captures (default by capture format)")
	cmd.Flags().String("app-template", trace.DefaultAppTemplate,
		"File name template of the application logs")
	cmd.Flags().Int("parallelism", trace.DefaultParallelism,
		"Maximum number of artifacts loaded concurrently")
	cmd.Flags().String("metrics", "", "Write metrics in the Prometheus text format to this file")
	cmd.Flags().String("log.level", "", app.LogLevelUsage)
	out.register(cmd)
	return cmd
}
