// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/woozymasta/vpk/internal/config"
	"github.com/woozymasta/vpk/internal/logging"
)

// errFilesFailed is returned when processing finished but some files failed.
// Details were already reported through the console handler.
var errFilesFailed = errors.New("some files failed")

// app holds per-invocation state shared by all subcommands.
type app struct {
	v         *viper.Viper
	cfg       *config.Config
	logCloser io.Closer
	cfgFile   string
}

func newApp() *app {
	return &app{v: viper.New()}
}

// rootCmd builds the command tree.
func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "unvpk",
		Short:             "List, check, and extract Valve VPK packages",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "path to config file")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error, fatal)")
	flags.String("log-output-dir", "", "directory to write JSON log files to, in addition to stderr")
	flags.Bool("no-color", false, "disable colored log output")
	flags.BoolP("stop", "s", false, "stop on the first error")
	flags.StringSlice("include", nil, "glob rule selecting files to process (repeatable)")
	flags.StringSlice("exclude", nil, "glob rule skipping files (repeatable)")
	flags.Bool("case-insensitive", false, "match --include/--exclude rules ignoring case")

	root.AddCommand(
		a.listCmd(),
		a.checkCmd(),
		a.extractCmd(),
		a.digestCmd(),
		a.coverageCmd(),
		a.serveCmd(),
		a.versionCmd(),
	)

	return root
}

// setup loads configuration and logging before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.bindFlags(cmd.Flags())
	a.initConfig(cmd)

	cfg := &config.Config{}
	if err := a.v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	closer, err := logging.Setup(cfg.LogLevel, cfg.LogOutputDir, cfg.NoColor)
	if err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}
	a.logCloser = closer

	return nil
}

// bindFlags binds every flag of the running command under its
// underscore-separated config key.
func (a *app) bindFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "help" {
			return
		}

		_ = a.v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

// initConfig reads in config file and environment variables if set
func (a *app) initConfig(cmd *cobra.Command) {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "unvpk"))
		}
		a.v.AddConfigPath("/etc/unvpk")
		a.v.SetConfigName("config")
		a.v.SetConfigType("toml")
	}

	a.v.SetEnvPrefix("UNVPK")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", a.v.ConfigFileUsed())
	}
}

// close releases the log file, if any.
func (a *app) close() {
	if a.logCloser == nil {
		return
	}

	if err := a.logCloser.Close(); err != nil {
		slog.Warn("close log file", "error", err)
	}
}
