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

package verify

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v2"

	"github.com/bierproto/bierverify/pkg/private/serrors"
)

// Output formats.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Report is the outcome of a scenario. Reference is the reference count, if
// one was established or pinned.
type Report struct {
	Scenario        string           `json:"scenario" yaml:"scenario"`
	BitString       string           `json:"bitstring" yaml:"bitstring"`
	BIFT            string           `json:"bift,omitempty" yaml:"bift,omitempty"`
	Reference       *int             `json:"reference,omitempty" yaml:"reference,omitempty"`
	ReferenceFrom   *uint            `json:"reference_from,omitempty" yaml:"reference_from,omitempty"`
	ReferencePinned bool             `json:"pinned,omitempty" yaml:"pinned,omitempty"`
	Pass            bool             `json:"pass" yaml:"pass"`
	Summary         Summary          `json:"summary" yaml:"summary"`
	Positions       []PositionReport `json:"positions" yaml:"positions"`

	Result Result `json:"-" yaml:"-"`
}

// Summary counts the positions per verdict.
type Summary struct {
	Match        int `json:"match" yaml:"match"`
	Mismatch     int `json:"mismatch" yaml:"mismatch"`
	Inconclusive int `json:"inconclusive" yaml:"inconclusive"`
	Skipped      int `json:"skipped" yaml:"skipped"`
}

// PositionReport is the outcome of a bit position.
type PositionReport struct {
	Position  uint             `json:"position" yaml:"position"`
	Kind      string           `json:"kind" yaml:"kind"`
	Element   string           `json:"element" yaml:"element"`
	Bit       int              `json:"bit" yaml:"bit"`
	Expected  string           `json:"expected" yaml:"expected"`
	Verdict   Verdict          `json:"verdict" yaml:"verdict"`
	Artifacts []ArtifactReport `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
	Error     string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// ArtifactReport is the observation of an artifact.
type ArtifactReport struct {
	Name    string `json:"name" yaml:"name"`
	Count   *int   `json:"count,omitempty" yaml:"count,omitempty"`
	Missing bool   `json:"missing,omitempty" yaml:"missing,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newReport(s Scenario, res Result) *Report {
	r := &Report{
		Scenario:        s.Name,
		BitString:       res.BitString.String(),
		BIFT:            s.BIFT,
		ReferenceFrom:   res.ReferenceFrom,
		ReferencePinned: res.HasReference && res.ReferenceFrom == nil,
		Pass:            res.Pass(),
		Summary: Summary{
			Match:        res.Count(Match),
			Mismatch:     res.Count(Mismatch),
			Inconclusive: res.Count(Inconclusive),
			Skipped:      res.Count(Skipped),
		},
		Result: res,
	}
	if res.HasReference {
		ref := res.Reference
		r.Reference = &ref
	}
	for _, p := range res.Positions {
		pr := PositionReport{
			Position: p.Ref.Position,
			Kind:     p.Ref.Kind.String(),
			Element:  p.Ref.String(),
			Verdict:  p.Verdict,
		}
		if p.Bit {
			pr.Bit = 1
		}
		switch {
		case p.Verdict == Skipped:
			pr.Expected = "-"
		case p.Expectation.Traffic && !res.HasReference:
			pr.Expected = "traffic"
		default:
			pr.Expected = p.Expectation.String()
		}
		if p.Err != nil {
			pr.Error = p.Err.Error()
		}
		for _, ob := range p.Observations {
			ar := ArtifactReport{Name: ob.Artifact.Name}
			switch {
			case ob.Missing():
				ar.Missing = true
			case ob.Err != nil:
				ar.Error = ob.Err.Error()
			default:
				count := ob.Count
				ar.Count = &count
			}
			pr.Artifacts = append(pr.Artifacts, ar)
		}
		r.Positions = append(r.Positions, pr)
	}
	return r
}

// Human writes a human readable report to w.
func (r *Report) Human(w io.Writer, colored bool) {
	noColor := color.New()
	header := color.New(color.Bold)
	keys := color.New(color.FgHiCyan)
	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	weak := color.New(color.FgYellow)
	if !colored {
		for _, c := range []*color.Color{noColor, header, keys, good, bad, weak} {
			c.DisableColor()
		}
	}
	verdictColor := func(v Verdict) *color.Color {
		switch v {
		case Match:
			return good
		case Mismatch:
			return bad
		case Inconclusive:
			return weak
		default:
			return noColor
		}
	}

	status := good.Sprint("PASS")
	if !r.Pass {
		status = bad.Sprint("FAIL")
	}
	header.Fprintf(w, "Scenario %s: %s\n", r.Scenario, status)
	fmt.Fprintf(w, "%s: %s", keys.Sprint("BitString"), r.BitString)
	if r.BIFT != "" {
		fmt.Fprintf(w, " %s: %s", keys.Sprint("BIFT"), r.BIFT)
	}
	fmt.Fprintf(w, " %s: %s\n", keys.Sprint("Reference"), r.referenceString())

	rows := make([][]string, 0, len(r.Positions))
	for _, p := range r.Positions {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(p.Position), 10),
			p.Kind,
			p.Element,
			strconv.Itoa(p.Bit),
			p.Expected,
			observedString(p.Artifacts),
			verdictColor(p.Verdict).Sprint(p.Verdict),
		})
	}
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"POS", "KIND", "ELEMENT", "BIT", "EXPECTED", "OBSERVED", "VERDICT"})
	table.AppendBulk(rows)
	table.Render()

	for _, p := range r.Positions {
		if p.Error == "" {
			continue
		}
		fmt.Fprintf(w, "  %s %d: %s\n", verdictColor(p.Verdict).Sprint(p.Verdict),
			p.Position, p.Error)
	}
}

func (r *Report) referenceString() string {
	switch {
	case r.Reference == nil:
		return "none"
	case r.ReferencePinned:
		return fmt.Sprintf("%d (pinned)", *r.Reference)
	case r.ReferenceFrom != nil:
		return fmt.Sprintf("%d (position %d)", *r.Reference, *r.ReferenceFrom)
	default:
		return strconv.Itoa(*r.Reference)
	}
}

func observedString(artifacts []ArtifactReport) string {
	if len(artifacts) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		switch {
		case a.Missing:
			parts = append(parts, "missing")
		case a.Count == nil:
			parts = append(parts, "error")
		default:
			parts = append(parts, strconv.Itoa(*a.Count))
		}
	}
	return strings.Join(parts, "/")
}

// Write writes the reports to w in the given format.
func Write(w io.Writer, format string, reports []*Report, colored bool) error {
	switch format {
	case FormatHuman:
		for i, r := range reports {
			if i != 0 {
				fmt.Fprintln(w)
			}
			r.Human(w, colored)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(reports)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	default:
		return serrors.New("output format not supported", "format", format)
	}
}
