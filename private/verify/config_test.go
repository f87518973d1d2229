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

package verify_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bierproto/bierverify/pkg/bier"
	"github.com/bierproto/bierverify/private/config"
	"github.com/bierproto/bierverify/private/trace"
	"github.com/bierproto/bierverify/private/verify"
)

func TestConfigSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg verify.Config
	cfg.Sample(&sample, nil, nil)

	require.NoError(t, config.Decode(sample.Bytes(), &cfg))
	cfg.InitDefaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "mapping-link-to-bp.txt", cfg.General.Mapping)
	assert.Equal(t, trace.DefaultParallelism, cfg.General.Parallelism)
	assert.Equal(t, string(trace.FormatJSON), cfg.Artifacts.CaptureFormat)
	assert.Equal(t, trace.DefaultJSONCaptureTemplate, cfg.Artifacts.CaptureTemplate)
	assert.Equal(t, trace.DefaultAppTemplate, cfg.Artifacts.AppTemplate)
	assert.Equal(t, trace.DefaultAppRecordPattern, cfg.Artifacts.AppRecord)
	assert.Equal(t, "info", cfg.Logging.Console.Level)
	assert.Empty(t, cfg.Metrics.Textfile)
	require.Len(t, cfg.Scenarios, 1)

	scenarios, err := cfg.ScenarioList()
	require.NoError(t, err)
	assert.Equal(t, []verify.Scenario{{
		Name:      "ecmp",
		BitString: bier.MustParseBitString("0x2ff"),
		BIFT:      "1",
		TraceDir:  "traces",
	}}, scenarios)
}

func TestScenarioConfigExpectedCount(t *testing.T) {
	testCases := map[string]struct {
		Input    string
		Expected *int
	}{
		"unset": {
			Input:    "name = \"a\"\nbitstring = \"0x2\"\n",
			Expected: nil,
		},
		"zero": {
			Input:    "name = \"a\"\nbitstring = \"0x2\"\nexpected_count = 0\n",
			Expected: func() *int { v := 0; return &v }(),
		},
		"positive": {
			Input:    "name = \"a\"\nbitstring = \"0x2\"\nexpected_count = 12\n",
			Expected: func() *int { v := 12; return &v }(),
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var cfg verify.ScenarioConfig
			require.NoError(t, config.Decode([]byte(tc.Input), &cfg))
			require.NoError(t, cfg.Validate())
			s, err := cfg.Scenario("traces")
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, s.ExpectedCount)
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := verify.Config{
		General:   verify.General{Mapping: "m.txt", Traces: "t"},
		Artifacts: verify.Artifacts{CaptureFormat: "pcap"},
	}
	cfg.InitDefaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, trace.DefaultPcapCaptureTemplate, cfg.Artifacts.CaptureTemplate)

	r := cfg.Artifacts.Reader("t/run1")
	assert.Equal(t, "t/run1", r.Root)
	assert.Equal(t, trace.FormatPcap, r.CaptureFormat)
	require.NotNil(t, r.AppRecord)
	assert.Equal(t, trace.DefaultAppRecordPattern, r.AppRecord.String())
	assert.Equal(t, trace.Naming{
		CaptureTemplate: trace.DefaultPcapCaptureTemplate,
		AppTemplate:     trace.DefaultAppTemplate,
	}, cfg.Artifacts.Naming())
}

func TestConfigValidate(t *testing.T) {
	valid := func() verify.Config {
		cfg := verify.Config{
			General: verify.General{Mapping: "m.txt", Traces: "t"},
			Scenarios: []verify.ScenarioConfig{
				{Name: "a", BitString: "0x6"},
			},
		}
		cfg.InitDefaults()
		return cfg
	}
	testCases := map[string]struct {
		Modify    func(*verify.Config)
		Assertion assert.ErrorAssertionFunc
	}{
		"valid": {
			Modify:    func(*verify.Config) {},
			Assertion: assert.NoError,
		},
		"no mapping": {
			Modify:    func(c *verify.Config) { c.General.Mapping = "" },
			Assertion: assert.Error,
		},
		"no traces": {
			Modify:    func(c *verify.Config) { c.General.Traces = "" },
			Assertion: assert.Error,
		},
		"negative parallelism": {
			Modify:    func(c *verify.Config) { c.General.Parallelism = -1 },
			Assertion: assert.Error,
		},
		"unknown capture format": {
			Modify:    func(c *verify.Config) { c.Artifacts.CaptureFormat = "csv" },
			Assertion: assert.Error,
		},
		"filter on json captures": {
			Modify:    func(c *verify.Config) { c.Artifacts.CaptureFilter = "bier" },
			Assertion: assert.Error,
		},
		"filter on pcap captures": {
			Modify: func(c *verify.Config) {
				c.Artifacts.CaptureFormat = "pcap"
				c.Artifacts.CaptureFilter = "bier"
			},
			Assertion: assert.NoError,
		},
		"capture template without interface": {
			Modify:    func(c *verify.Config) { c.Artifacts.CaptureTemplate = "{node}.json" },
			Assertion: assert.Error,
		},
		"bad app template": {
			Modify:    func(c *verify.Config) { c.Artifacts.AppTemplate = "app-{pos}.txt" },
			Assertion: assert.Error,
		},
		"bad app record": {
			Modify:    func(c *verify.Config) { c.Artifacts.AppRecord = "Received (" },
			Assertion: assert.Error,
		},
		"bad log level": {
			Modify:    func(c *verify.Config) { c.Logging.Console.Level = "loud" },
			Assertion: assert.Error,
		},
		"unnamed scenario": {
			Modify:    func(c *verify.Config) { c.Scenarios[0].Name = "" },
			Assertion: assert.Error,
		},
		"bad bitstring": {
			Modify:    func(c *verify.Config) { c.Scenarios[0].BitString = "0xzz" },
			Assertion: assert.Error,
		},
		"negative expected count": {
			Modify: func(c *verify.Config) {
				count := -3
				c.Scenarios[0].ExpectedCount = &count
			},
			Assertion: assert.Error,
		},
		"zero expected count": {
			Modify: func(c *verify.Config) {
				count := 0
				c.Scenarios[0].ExpectedCount = &count
			},
			Assertion: assert.NoError,
		},
		"duplicate scenario": {
			Modify: func(c *verify.Config) {
				c.Scenarios = append(c.Scenarios, verify.ScenarioConfig{
					Name: "a", BitString: "0x2",
				})
			},
			Assertion: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			tc.Modify(&cfg)
			tc.Assertion(t, cfg.Validate())
		})
	}
}

func TestScenarioConfigTraceDir(t *testing.T) {
	testCases := map[string]struct {
		Traces   string
		Expected string
	}{
		"inherit":  {Traces: "", Expected: "runs"},
		"relative": {Traces: "run1", Expected: "runs/run1"},
		"absolute": {Traces: "/tmp/run1", Expected: "/tmp/run1"},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			sc := verify.ScenarioConfig{Name: "s", BitString: "0x2", Traces: tc.Traces}
			s, err := sc.Scenario("runs")
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, s.TraceDir)
		})
	}
}
