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

package log

import (
	"io"
	"strings"

	"github.com/bierproto/bierverify/pkg/private/serrors"
	"github.com/bierproto/bierverify/private/config"
)

const consoleSample = `
# Console logging level (debug|info|error) (default info)
level = "info"

# Console logging format (human|json) (default human)
format = "human"

# Level starting from which stack traces are printed (debug|info|error|none)
# (default none)
stacktrace_level = "none"

# Omit the caller location of log entries. (default false)
disable_caller = false
`

var (
	_ config.Config = (*Config)(nil)
	_ config.Config = (*ConsoleConfig)(nil)
)

// Validate checks the logging configuration.
func (c *Config) Validate() error {
	return config.ValidateAll(&c.Console)
}

// Sample writes the sample of the logging configuration.
func (c *Config) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteSample(dst, path, ctx, &c.Console)
}

// ConfigName returns the name of the logging block.
func (c *Config) ConfigName() string {
	return "log"
}

// Validate checks the levels and the format of the console logger.
func (c *ConsoleConfig) Validate() error {
	if _, err := parseLevel(c.Level); err != nil {
		return serrors.Wrap("invalid level", err, "level", c.Level)
	}
	switch c.Format {
	case "human", "json":
	default:
		return serrors.New("unsupported format", "format", c.Format)
	}
	if strings.ToLower(c.StacktraceLevel) == "none" {
		return nil
	}
	if _, err := parseLevel(c.StacktraceLevel); err != nil {
		return serrors.Wrap("invalid stacktrace_level", err, "level", c.StacktraceLevel)
	}
	return nil
}

// Sample writes the sample of the console logger.
func (c *ConsoleConfig) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, consoleSample)
}

// ConfigName returns the name of the console block.
func (c *ConsoleConfig) ConfigName() string {
	return "console"
}
