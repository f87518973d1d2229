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

// Package app contains helpers shared by the commands of the bierverify
// binary.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/bierproto/bierverify/pkg/log"
)

// LogLevelUsage is the usage of the log level flag.
const LogLevelUsage = "Console logging level verbosity (debug|info|error)"

// Exit codes of the bierverify binary.
const (
	// ExitPass means every scenario passed.
	ExitPass = 0
	// ExitFail means at least one scenario failed.
	ExitFail = 1
	// ExitFatal means the run could not be completed.
	ExitFatal = 2
)

type withExitCode struct {
	error
	code int
}

func (e withExitCode) Unwrap() error {
	return e.error
}

// WithExitCode attaches an exit code to err.
func WithExitCode(err error, code int) error {
	return withExitCode{error: err, code: code}
}

// ExitCode returns the exit code attached to err, or -1 if there is none.
func ExitCode(err error) int {
	var ec withExitCode
	if errors.As(err, &ec) {
		return ec.code
	}
	return -1
}

// SetupLog sets up the console logger with the given level. The empty level
// selects the default.
func SetupLog(level string) error {
	var cfg log.Config
	cfg.Console.Level = level
	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	return log.Setup(cfg)
}

// ColorEnabled reports whether output written to w should be colored: color
// is used for terminals unless noColor is set or the NO_COLOR environment
// variable is present.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// VersionInfo returns a human readable description of the build.
func VersionInfo() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "  Version: unknown\n"
	}
	var b strings.Builder
	version := info.Main.Version
	if version == "" {
		version = "(devel)"
	}
	fmt.Fprintf(&b, "  Version:    %s\n", version)
	fmt.Fprintf(&b, "  Go version: %s\n", info.GoVersion)
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.time", "vcs.modified":
			fmt.Fprintf(&b, "  %-11s %s\n", strings.TrimPrefix(s.Key, "vcs.")+":", s.Value)
		}
	}
	return b.String()
}
