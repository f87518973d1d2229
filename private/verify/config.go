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
	"io"
	"path/filepath"
	"regexp"

	"github.com/bierproto/bierverify/pkg/bier"
	"github.com/bierproto/bierverify/pkg/log"
	"github.com/bierproto/bierverify/pkg/private/serrors"
	"github.com/bierproto/bierverify/private/config"
	"github.com/bierproto/bierverify/private/trace"
)

var _ config.Config = (*Config)(nil)

// Config is the configuration of a verification run.
type Config struct {
	General   General          `toml:"general,omitempty"`
	Artifacts Artifacts        `toml:"artifacts,omitempty"`
	Logging   log.Config       `toml:"log,omitempty"`
	Metrics   MetricsConfig    `toml:"metrics,omitempty"`
	Scenarios []ScenarioConfig `toml:"scenarios,omitempty"`
}

func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.General,
		&cfg.Artifacts,
		&cfg.Logging,
		&cfg.Metrics,
	)
}

func (cfg *Config) Validate() error {
	if err := config.ValidateAll(
		&cfg.General,
		&cfg.Artifacts,
		&cfg.Logging,
		&cfg.Metrics,
	); err != nil {
		return err
	}
	names := make(map[string]bool, len(cfg.Scenarios))
	for i := range cfg.Scenarios {
		s := &cfg.Scenarios[i]
		if err := s.Validate(); err != nil {
			return serrors.Wrap("invalid scenario", err, "index", i)
		}
		if names[s.Name] {
			return serrors.New("duplicate scenario name", "name", s.Name)
		}
		names[s.Name] = true
	}
	return nil
}

func (cfg *Config) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteSample(dst, path, nil,
		&cfg.General,
		&cfg.Artifacts,
		&cfg.Logging,
		&cfg.Metrics,
		&ScenarioConfig{},
	)
}

// LogConfig returns the logging configuration.
func (cfg *Config) LogConfig() *log.Config {
	return &cfg.Logging
}

// ScenarioList converts the configured scenarios. Trace directories of
// scenarios are relative to the general trace directory.
func (cfg *Config) ScenarioList() ([]Scenario, error) {
	scenarios := make([]Scenario, 0, len(cfg.Scenarios))
	for _, sc := range cfg.Scenarios {
		s, err := sc.Scenario(cfg.General.Traces)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

const generalSample = `
# Path of the bit position mapping file. (required)
mapping = "mapping-link-to-bp.txt"

# Directory holding the traces of the run. (required)
traces = "traces"

# Maximum number of artifacts that are loaded concurrently. (default %d)
parallelism = %d
`

// General holds the inputs shared by all scenarios.
type General struct {
	Mapping     string `toml:"mapping,omitempty"`
	Traces      string `toml:"traces,omitempty"`
	Parallelism int    `toml:"parallelism,omitempty"`
}

func (cfg *General) InitDefaults() {
	if cfg.Parallelism == 0 {
		cfg.Parallelism = trace.DefaultParallelism
	}
}

func (cfg *General) Validate() error {
	if cfg.Mapping == "" {
		return serrors.New("mapping must be set")
	}
	if cfg.Traces == "" {
		return serrors.New("traces must be set")
	}
	if cfg.Parallelism < 1 {
		return serrors.New("parallelism must be positive", "parallelism", cfg.Parallelism)
	}
	return nil
}

func (cfg *General) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.FormatData(config.StringSampler{Text: generalSample},
		trace.DefaultParallelism, trace.DefaultParallelism).Sample(dst, nil, nil)
}

func (cfg *General) ConfigName() string {
	return "general"
}

const artifactsSample = `
# Encoding of the per-interface captures (json|pcap). (default json)
capture_format = "json"

# Packets of pcap captures that are counted (ipv6|udp|bier). All packets are
# counted if unset.
capture_filter = ""

# File name of the per-interface captures. Placeholders: {node}, {intf}, {bp},
# {bift}. (default "{node}-{intf}.json", or "{node}-{intf}.pcap" for pcap)
capture_template = "{node}-{intf}.json"

# File name of the per-receiver application logs. (default "app-{bp}.txt")
app_template = "app-{bp}.txt"

# Regular expression matching one record of an application log.
# (default 'Received \d+ bytes from')
app_record = 'Received \d+ bytes from'
`

// Artifacts configures how artifacts are named and decoded.
type Artifacts struct {
	CaptureFormat   string `toml:"capture_format,omitempty"`
	CaptureFilter   string `toml:"capture_filter,omitempty"`
	CaptureTemplate string `toml:"capture_template,omitempty"`
	AppTemplate     string `toml:"app_template,omitempty"`
	AppRecord       string `toml:"app_record,omitempty"`

	format    trace.Format
	filter    trace.Filter
	appRecord *regexp.Regexp
}

func (cfg *Artifacts) InitDefaults() {
	if cfg.CaptureFormat == "" {
		cfg.CaptureFormat = string(trace.FormatJSON)
	}
	if cfg.CaptureTemplate == "" {
		cfg.CaptureTemplate = trace.DefaultJSONCaptureTemplate
		if cfg.CaptureFormat == string(trace.FormatPcap) {
			cfg.CaptureTemplate = trace.DefaultPcapCaptureTemplate
		}
	}
	if cfg.AppTemplate == "" {
		cfg.AppTemplate = trace.DefaultAppTemplate
	}
	if cfg.AppRecord == "" {
		cfg.AppRecord = trace.DefaultAppRecordPattern
	}
}

func (cfg *Artifacts) Validate() error {
	var err error
	if cfg.format, err = trace.ParseFormat(cfg.CaptureFormat); err != nil {
		return err
	}
	if cfg.filter, err = trace.ParseFilter(cfg.CaptureFilter); err != nil {
		return err
	}
	if cfg.filter != trace.FilterNone && cfg.format != trace.FormatPcap {
		return serrors.New("capture_filter requires the pcap capture format",
			"filter", cfg.CaptureFilter)
	}
	err = trace.ValidateTemplate(cfg.CaptureTemplate,
		trace.PlaceholderNode, trace.PlaceholderInterface)
	if err != nil {
		return serrors.Wrap("invalid capture_template", err)
	}
	if err := trace.ValidateTemplate(cfg.AppTemplate); err != nil {
		return serrors.Wrap("invalid app_template", err)
	}
	if cfg.appRecord, err = regexp.Compile(cfg.AppRecord); err != nil {
		return serrors.Wrap("invalid app_record", err, "pattern", cfg.AppRecord)
	}
	return nil
}

func (cfg *Artifacts) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, artifactsSample)
}

func (cfg *Artifacts) ConfigName() string {
	return "artifacts"
}

// Naming returns the artifact naming. Validate must have been called.
func (cfg *Artifacts) Naming() trace.Naming {
	return trace.Naming{
		CaptureTemplate: cfg.CaptureTemplate,
		AppTemplate:     cfg.AppTemplate,
	}
}

// Reader returns the reader of the trace directory dir. Validate must have
// been called.
func (cfg *Artifacts) Reader(dir string) trace.Dir {
	return trace.Dir{
		Root:          dir,
		CaptureFormat: cfg.format,
		CaptureFilter: cfg.filter,
		AppRecord:     cfg.appRecord,
	}
}

const metricsSample = `
# File the metrics are written to in the Prometheus text format, for the node
# exporter textfile collector. No metrics are written if unset.
textfile = ""
`

// MetricsConfig configures the metrics export.
type MetricsConfig struct {
	Textfile string `toml:"textfile,omitempty"`
}

func (cfg *MetricsConfig) InitDefaults() {}

func (cfg *MetricsConfig) Validate() error {
	if cfg.Textfile != "" && filepath.Base(cfg.Textfile) == "." {
		return serrors.New("invalid textfile", "textfile", cfg.Textfile)
	}
	return nil
}

func (cfg *MetricsConfig) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, metricsSample)
}

func (cfg *MetricsConfig) ConfigName() string {
	return "metrics"
}

const scenarioSample = `
# Scenarios are checked in order of their names.
[[scenarios]]
# Name of the scenario. (required)
name = "ecmp"

# Bit-string in hexadecimal, optionally prefixed with 0x. Use 0b for binary
# and 0d for decimal. (required)
bitstring = "0x2ff"

# Forwarding table identifier, substituted for {bift}.
bift = "1"

# Number of packets expected at every authorized position. If unset, the
# count is taken from the first authorized position that saw traffic. Zero
# expects silence everywhere.
# expected_count = 10

# Do not check node positions.
links_only = false

# Positions that are not checked.
skip = []

# Trace directory of this scenario, relative to general.traces.
traces = ""
`

// ScenarioConfig configures a scenario.
type ScenarioConfig struct {
	Name          string `toml:"name"`
	BitString     string `toml:"bitstring"`
	BIFT          string `toml:"bift,omitempty"`
	ExpectedCount *int   `toml:"expected_count,omitempty"`
	LinksOnly     bool   `toml:"links_only,omitempty"`
	Skip          []uint `toml:"skip,omitempty"`
	Traces        string `toml:"traces,omitempty"`
}

func (cfg *ScenarioConfig) Validate() error {
	if cfg.Name == "" {
		return serrors.New("name must be set")
	}
	if _, err := bier.ParseBitString(cfg.BitString); err != nil {
		return serrors.Wrap("invalid bitstring", err, "scenario", cfg.Name)
	}
	if cfg.ExpectedCount != nil && *cfg.ExpectedCount < 0 {
		return serrors.New("expected_count must not be negative", "scenario", cfg.Name,
			"expected_count", *cfg.ExpectedCount)
	}
	return nil
}

// Sample writes the scenario sample.
func (cfg *ScenarioConfig) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, scenarioSample)
}

// Scenario converts the configuration. A relative trace directory is joined
// to root.
func (cfg *ScenarioConfig) Scenario(root string) (Scenario, error) {
	bs, err := bier.ParseBitString(cfg.BitString)
	if err != nil {
		return Scenario{}, serrors.Wrap("invalid bitstring", err, "scenario", cfg.Name)
	}
	dir := root
	switch {
	case cfg.Traces == "":
	case filepath.IsAbs(cfg.Traces):
		dir = cfg.Traces
	default:
		dir = filepath.Join(root, cfg.Traces)
	}
	return Scenario{
		Name:          cfg.Name,
		BitString:     bs,
		BIFT:          cfg.BIFT,
		ExpectedCount: copyCount(cfg.ExpectedCount),
		LinksOnly:     cfg.LinksOnly,
		Skip:          append([]uint(nil), cfg.Skip...),
		TraceDir:      dir,
	}, nil
}

func copyCount(c *int) *int {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}
