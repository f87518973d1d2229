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
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/bierproto/bierverify/pkg/bier/mapping"
	"github.com/bierproto/bierverify/pkg/log"
	"github.com/bierproto/bierverify/pkg/private/serrors"
	"github.com/bierproto/bierverify/private/app"
	"github.com/bierproto/bierverify/private/trace"
	"github.com/bierproto/bierverify/private/verify"
)

// resolvedPosition is a bit position with the topology element and the
// artifacts it resolves to.
type resolvedPosition struct {
	Position  uint     `json:"position" yaml:"position"`
	Kind      string   `json:"kind" yaml:"kind"`
	Element   string   `json:"element" yaml:"element"`
	Artifacts []string `json:"artifacts" yaml:"artifacts"`
}

type resolveResult struct {
	Nodes     uint               `json:"nodes" yaml:"nodes"`
	Links     uint               `json:"links" yaml:"links"`
	Positions []resolvedPosition `json:"positions" yaml:"positions"`
}

func newResolve(pather CommandPather) *cobra.Command {
	var out output
	var flags struct {
		mapping   string
		bift      string
		artifacts verify.Artifacts
		logLevel  string
	}

	var cmd = &cobra.Command{
		Use:   "resolve [position...]",
		Short: "Show the topology elements and artifacts of bit positions",
		Example: fmt.Sprintf(`  %[1]s resolve --mapping mapping-link-to-bp.txt
  %[1]s resolve --mapping mapping-link-to-bp.txt 0 5,6 --format json`,
			pather.CommandPath()),
		Long: `'resolve' lists the node or link every bit position of a mapping file
denotes, together with the names of the artifacts it is checked against.

If no positions are given, all positions of the mapping are listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.validate(); err != nil {
				return err
			}
			if err := app.SetupLog(flags.logLevel); err != nil {
				return serrors.Wrap("setting up logging", err)
			}
			defer log.Flush()
			positions, err := parsePositions(args)
			if err != nil {
				return err
			}
			flags.artifacts.InitDefaults()
			if err := flags.artifacts.Validate(); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			index, err := mapping.LoadFile(flags.mapping)
			if err != nil {
				return err
			}
			if len(positions) == 0 {
				for p := uint(0); p < index.NumPositions(); p++ {
					positions = append(positions, p)
				}
			}
			naming := flags.artifacts.Naming()
			naming.BIFT = flags.bift
			res := resolveResult{Nodes: index.NumNodes(), Links: index.NumLinks()}
			for _, p := range positions {
				ref, err := index.Resolve(p)
				if err != nil {
					return err
				}
				rp := resolvedPosition{
					Position: p,
					Kind:     ref.Kind.String(),
					Element:  ref.String(),
				}
				for _, a := range naming.Artifacts(ref) {
					rp.Artifacts = append(rp.Artifacts, a.Name)
				}
				res.Positions = append(res.Positions, rp)
			}
			return res.write(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&flags.mapping, "mapping", "", "Bit position mapping file (required)")
	cmd.Flags().StringVar(&flags.bift, "bift", "",
		"Forwarding table identifier, substituted for {bift}")
	cmd.Flags().StringVar(&flags.artifacts.CaptureFormat, "capture-format",
		string(trace.FormatJSON), "Encoding of the per-interface captures (json|pcap)")
	cmd.Flags().StringVar(&flags.artifacts.CaptureTemplate, "capture-template", "",
		"File name template of the captures (default by capture format)")
	cmd.Flags().StringVar(&flags.artifacts.AppTemplate, "app-template",
		trace.DefaultAppTemplate, "File name template of the application logs")
	cmd.Flags().StringVar(&flags.logLevel, "log.level", "", app.LogLevelUsage)
	if err := cmd.MarkFlagRequired("mapping"); err != nil {
		panic(err)
	}
	out.register(cmd)
	return cmd
}

func (r resolveResult) write(w io.Writer, out output) error {
	switch out.format {
	case verify.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(r)
	case verify.FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	header := color.New(color.Bold)
	if !out.colored(w) {
		header.DisableColor()
	}
	header.Fprintf(w, "Mapping with %d nodes and %d links\n", r.Nodes, r.Links)
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"POS", "KIND", "ELEMENT", "ARTIFACTS"})
	for _, p := range r.Positions {
		table.Append([]string{
			strconv.FormatUint(uint64(p.Position), 10),
			p.Kind,
			p.Element,
			strings.Join(p.Artifacts, " "),
		})
	}
	table.Render()
	return nil
}
