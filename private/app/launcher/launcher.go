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

// Package launcher runs an application that is driven by a TOML
// configuration file. It loads and validates the configuration, sets up
// logging and passes control to the application.
package launcher

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bierproto/bierverify/pkg/log"
	"github.com/bierproto/bierverify/pkg/private/serrors"
	"github.com/bierproto/bierverify/private/app"
	libconfig "github.com/bierproto/bierverify/private/config"
)

// EnvPrefix is the prefix of environment variables that override
// configuration keys. BIERVERIFY_LOG_CONSOLE_LEVEL overrides
// log.console.level, for example.
const EnvPrefix = "BIERVERIFY"

// Configuration keys used by the launcher.
const (
	cfgConfigFile                = "config"
	cfgLogConsoleLevel           = "log.console.level"
	cfgLogConsoleFormat          = "log.console.format"
	cfgLogConsoleStacktraceLevel = "log.console.stacktrace_level"
)

// LoggingConfig is implemented by configurations that carry a logging
// section. The launcher sets up logging from it.
type LoggingConfig interface {
	LogConfig() *log.Config
}

// Application is an application driven by a TOML configuration file.
type Application struct {
	// TOMLConfig holds the application configuration. If it implements
	// LoggingConfig, logging is configured from it.
	TOMLConfig libconfig.Config

	// EntriesCounter counts the emitted log entries. It is optional.
	EntriesCounter log.EntriesCounter

	// Main is the custom logic of the application. It is called after the
	// configuration has been loaded and validated.
	Main func(ctx context.Context) error

	config *viper.Viper
}

// Command returns the cobra command that launches the application. The
// command has a --config flag and a --log.level flag, both of which are
// bound to the configuration keys and can be overridden through the
// environment.
func (a *Application) Command(pather interface{ CommandPath() string },
	use, short string) *cobra.Command {

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Example: "  " + pather.CommandPath() + " " + use + " --config bierverify.toml\n" +
			"  " + EnvPrefix + "_LOG_CONSOLE_LEVEL=debug " + pather.CommandPath() + " " + use +
			" --config bierverify.toml",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return a.Execute(cmd.Context())
		},
	}
	cmd.Flags().String(cfgConfigFile, "", "Configuration file (required)")
	cmd.Flags().String("log.level", "", app.LogLevelUsage)

	a.config = viper.New()
	a.config.SetEnvPrefix(EnvPrefix)
	a.config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.config.AutomaticEnv()
	// The flag values are only known once cobra parsed the command line. Binding
	// them here makes them visible through the viper store at that point.
	mustBind(a.config.BindPFlag(cfgConfigFile, cmd.Flags().Lookup(cfgConfigFile)))
	mustBind(a.config.BindPFlag(cfgLogConsoleLevel, cmd.Flags().Lookup("log.level")))
	mustBind(a.config.BindEnv(cfgLogConsoleFormat))
	mustBind(a.config.BindEnv(cfgLogConsoleStacktraceLevel))
	return cmd
}

// Execute loads the configuration, sets up logging and runs Main. Command
// must have been called before.
func (a *Application) Execute(ctx context.Context) error {
	if a.config == nil {
		return serrors.New("launcher not initialized")
	}
	file := a.config.GetString(cfgConfigFile)
	if file == "" {
		return serrors.New("configuration file must be set")
	}
	if err := libconfig.LoadFile(file, a.TOMLConfig); err != nil {
		return serrors.Wrap("loading config from file", err, "file", file)
	}
	a.TOMLConfig.InitDefaults()

	logCfg := a.logging()
	if err := log.Setup(logCfg, log.WithEntriesCounter(a.EntriesCounter)); err != nil {
		return serrors.Wrap("initialize logging", err)
	}
	defer log.Flush()
	defer log.HandlePanic()

	if err := a.TOMLConfig.Validate(); err != nil {
		return serrors.Wrap("validate config", err)
	}
	digest, err := libconfig.Digest(a.TOMLConfig)
	if err != nil {
		return serrors.Wrap("computing config digest", err)
	}
	log.Debug("Configuration loaded", "file", file, "digest", hex.EncodeToString(digest))

	if a.Main == nil {
		return nil
	}
	return a.Main(ctx)
}

// logging returns the logging configuration of the application with the
// overrides from flags and environment applied.
func (a *Application) logging() log.Config {
	var cfg log.Config
	if lc, ok := a.TOMLConfig.(LoggingConfig); ok {
		cfg = *lc.LogConfig()
	}
	override := func(key string, dst *string) {
		if v := a.config.GetString(key); v != "" {
			*dst = v
		}
	}
	override(cfgLogConsoleLevel, &cfg.Console.Level)
	override(cfgLogConsoleFormat, &cfg.Console.Format)
	override(cfgLogConsoleStacktraceLevel, &cfg.Console.StacktraceLevel)
	cfg.InitDefaults()
	if lc, ok := a.TOMLConfig.(LoggingConfig); ok {
		*lc.LogConfig() = cfg
	}
	return cfg
}

func mustBind(err error) {
	if err != nil {
		panic(err)
	}
}
