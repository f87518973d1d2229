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

package launcher_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bierproto/bierverify/pkg/log"
	"github.com/bierproto/bierverify/pkg/private/serrors"
	"github.com/bierproto/bierverify/private/app/launcher"
	"github.com/bierproto/bierverify/private/config"
)

type testConfig struct {
	Name    string     `toml:"name"`
	Logging log.Config `toml:"log,omitempty"`
}

func (c *testConfig) InitDefaults() {
	c.Logging.InitDefaults()
}

func (c *testConfig) Validate() error {
	if c.Name == "" {
		return serrors.New("name must be set")
	}
	return c.Logging.Validate()
}

func (c *testConfig) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, "name = \"test\"\n")
}

func (c *testConfig) LogConfig() *log.Config {
	return &c.Logging
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "test.toml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func execute(t *testing.T, a *launcher.Application, args ...string) error {
	t.Helper()
	t.Cleanup(log.Discard)
	root := &cobra.Command{Use: "tool", SilenceErrors: true, SilenceUsage: true}
	root.AddCommand(a.Command(root, "run", "Run the tool"))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"run"}, args...))
	return root.ExecuteContext(context.Background())
}

func TestApplication(t *testing.T) {
	file := writeConfig(t, "name = \"first\"\n\n[log.console]\nlevel = \"error\"\n")

	testCases := map[string]struct {
		Args          []string
		Env           map[string]string
		ExpectedLevel string
	}{
		"from file": {
			Args:          []string{"--config", file},
			ExpectedLevel: "error",
		},
		"flag overrides file": {
			Args:          []string{"--config", file, "--log.level", "debug"},
			ExpectedLevel: "debug",
		},
		"environment overrides file": {
			Args:          []string{"--config", file},
			Env:           map[string]string{"BIERVERIFY_LOG_CONSOLE_LEVEL": "info"},
			ExpectedLevel: "info",
		},
		"config from environment": {
			Env:           map[string]string{"BIERVERIFY_CONFIG": file},
			ExpectedLevel: "error",
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.Env {
				t.Setenv(k, v)
			}
			var cfg testConfig
			var called bool
			a := &launcher.Application{
				TOMLConfig: &cfg,
				Main: func(ctx context.Context) error {
					called = true
					return nil
				},
			}
			require.NoError(t, execute(t, a, tc.Args...))
			assert.True(t, called)
			assert.Equal(t, "first", cfg.Name)
			assert.Equal(t, tc.ExpectedLevel, cfg.Logging.Console.Level)
			assert.Equal(t, "human", cfg.Logging.Console.Format)
		})
	}
}

func TestApplicationErrors(t *testing.T) {
	valid := writeConfig(t, "name = \"first\"\n")
	mainErr := serrors.New("main failed")

	testCases := map[string]struct {
		Args      []string
		Main      func(context.Context) error
		Assertion assert.ErrorAssertionFunc
	}{
		"no config": {
			Args:      nil,
			Assertion: assert.Error,
		},
		"missing file": {
			Args:      []string{"--config", filepath.Join(t.TempDir(), "missing.toml")},
			Assertion: assert.Error,
		},
		"unknown field": {
			Args:      []string{"--config", writeConfig(t, "nam = \"first\"\n")},
			Assertion: assert.Error,
		},
		"invalid": {
			Args:      []string{"--config", writeConfig(t, "name = \"\"\n")},
			Assertion: assert.Error,
		},
		"invalid log level": {
			Args:      []string{"--config", valid, "--log.level", "loud"},
			Assertion: assert.Error,
		},
		"main fails": {
			Args: []string{"--config", valid},
			Main: func(context.Context) error { return mainErr },
			Assertion: func(t assert.TestingT, err error, _ ...any) bool {
				return assert.ErrorIs(t, err, mainErr)
			},
		},
		"no main": {
			Args:      []string{"--config", valid},
			Assertion: assert.NoError,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			a := &launcher.Application{TOMLConfig: &testConfig{}, Main: tc.Main}
			tc.Assertion(t, execute(t, a, tc.Args...))
		})
	}
}

func TestApplicationNotInitialized(t *testing.T) {
	a := &launcher.Application{TOMLConfig: &testConfig{}}
	assert.Error(t, a.Execute(context.Background()))
}
