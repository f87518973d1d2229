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

// Package log provides a leveled, structured logger backed by zap.
//
// Context is passed as alternating keys and values:
//
//	log.Info("Scenario evaluated", "scenario", name, "pass", pass)
package log

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bierproto/bierverify/pkg/private/serrors"
)

const (
	// DefaultConsoleLevel is the default log level for the console.
	DefaultConsoleLevel = "info"
	// DefaultStacktraceLevel is the default log level above which stack traces
	// are attached to log entries.
	DefaultStacktraceLevel = "none"
)

// Level of a log entry.
type Level zapcore.Level

// The supported log levels.
const (
	DebugLevel Level = Level(zapcore.DebugLevel)
	InfoLevel  Level = Level(zapcore.InfoLevel)
	ErrorLevel Level = Level(zapcore.ErrorLevel)
)

// Logger describes the logger interface.
type Logger interface {
	New(ctx ...any) Logger
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Enabled(lvl Level) bool
}

// Config is the logging configuration.
type Config struct {
	Console ConsoleConfig `toml:"console,omitempty"`
}

// InitDefaults populates unset fields.
func (c *Config) InitDefaults() {
	c.Console.InitDefaults()
}

// ConsoleConfig is the configuration for the console logger.
type ConsoleConfig struct {
	// Level of console logging (debug|info|error).
	Level string `toml:"level,omitempty"`
	// Format of the console logging (human|json).
	Format string `toml:"format,omitempty"`
	// StacktraceLevel sets from which level stacktraces are included.
	StacktraceLevel string `toml:"stacktrace_level,omitempty"`
	// DisableCaller suppresses the caller location in log entries.
	DisableCaller bool `toml:"disable_caller,omitempty"`
}

// InitDefaults populates unset fields in cfg to their default values.
func (c *ConsoleConfig) InitDefaults() {
	if c.Level == "" {
		c.Level = DefaultConsoleLevel
	}
	if c.Format == "" {
		c.Format = "human"
	}
	if c.StacktraceLevel == "" {
		c.StacktraceLevel = DefaultStacktraceLevel
	}
}

// Setup configures the root logger. It must be called before any goroutine
// logs, since it replaces the global logger.
func Setup(cfg Config, opts ...Option) error {
	o := applyOptions(opts)
	cfg.InitDefaults()
	c := cfg.Console

	lvl, err := parseLevel(c.Level)
	if err != nil {
		return serrors.Wrap("unable to parse log.console.level", err, "level", c.Level)
	}
	zCfg := zap.NewProductionConfig()
	zCfg.Level = zap.NewAtomicLevelAt(lvl)
	zCfg.DisableCaller = c.DisableCaller
	zCfg.Sampling = nil
	zCfg.OutputPaths = []string{"stderr"}
	zCfg.ErrorOutputPaths = []string{"stderr"}
	zCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zCfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	switch c.Format {
	case "human":
		zCfg.Encoding = "console"
		zCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case "json":
		zCfg.Encoding = "json"
	default:
		return serrors.New("unsupported log.console.format", "format", c.Format)
	}
	if strings.ToLower(c.StacktraceLevel) == "none" {
		zCfg.DisableStacktrace = true
	} else {
		st, err := parseLevel(c.StacktraceLevel)
		if err != nil {
			return serrors.Wrap("unable to parse log.console.stacktrace_level", err,
				"level", c.StacktraceLevel)
		}
		o.zapOpts = append(o.zapOpts, zap.AddStacktrace(st))
	}
	o.zapOpts = append(o.zapOpts, zap.AddCallerSkip(1))
	if hook := o.entriesCounter.hook(); hook != nil {
		o.zapOpts = append(o.zapOpts, zap.Hooks(hook))
	}
	l, err := zCfg.Build(o.zapOpts...)
	if err != nil {
		return serrors.Wrap("creating logger", err)
	}
	zap.ReplaceGlobals(l)
	return nil
}

func parseLevel(s string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return 0, err
	}
	return lvl, nil
}

// HandlePanic catches panics and logs them. It must be deferred.
func HandlePanic() {
	if msg := recover(); msg != nil {
		zap.L().Error("Panic", zap.Any("msg", msg), zap.ByteString("stack", debug.Stack()))
		zap.L().Error("=====================> Service panicked!")
		Flush()
		fmt.Fprintf(os.Stderr, "panic: %v\n", msg)
		os.Exit(255)
	}
}

// Flush writes buffered log entries.
func Flush() {
	_ = zap.L().Sync()
}

// Discard replaces the global logger with one that drops all entries.
func Discard() {
	zap.ReplaceGlobals(zap.NewNop())
}

// Debug logs at debug level.
func Debug(msg string, ctx ...any) {
	if ce := zap.L().Check(zapcore.DebugLevel, msg); ce != nil {
		ce.Write(convertCtx(ctx)...)
	}
}

// Info logs at info level.
func Info(msg string, ctx ...any) {
	if ce := zap.L().Check(zapcore.InfoLevel, msg); ce != nil {
		ce.Write(convertCtx(ctx)...)
	}
}

// Error logs at error level.
func Error(msg string, ctx ...any) {
	if ce := zap.L().Check(zapcore.ErrorLevel, msg); ce != nil {
		ce.Write(convertCtx(ctx)...)
	}
}

// New creates a logger with the given context.
func New(ctx ...any) Logger {
	return &logger{logger: zap.L().With(convertCtx(ctx)...)}
}

// Root returns the root logger. It is a logger without any context.
func Root() Logger {
	return &logger{logger: zap.L()}
}

// Wrap adapts a zap logger to the Logger interface.
func Wrap(l *zap.Logger) Logger {
	return &logger{logger: l}
}

type logger struct {
	logger *zap.Logger
}

func (l *logger) New(ctx ...any) Logger {
	return &logger{logger: l.logger.With(convertCtx(ctx)...)}
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.logger.Debug(msg, convertCtx(ctx)...)
}

func (l *logger) Info(msg string, ctx ...any) {
	l.logger.Info(msg, convertCtx(ctx)...)
}

func (l *logger) Error(msg string, ctx ...any) {
	l.logger.Error(msg, convertCtx(ctx)...)
}

func (l *logger) Enabled(lvl Level) bool {
	return l.logger.Core().Enabled(zapcore.Level(lvl))
}

func convertCtx(ctx []any) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		key, ok := ctx[i].(string)
		if !ok {
			key = fmt.Sprint(ctx[i])
		}
		fields = append(fields, zap.Any(key, ctx[i+1]))
	}
	return fields
}
