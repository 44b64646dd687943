// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

// Package config holds unvpk settings merged from flags, UNVPK_* environment
// variables, and the optional TOML config file.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/woozymasta/vpk"
)

// ErrInvalidConfig reports an unusable setting.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds app configuration
type Config struct {
	// Include and Exclude are glob filter rules applied after positional FILE filters.
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
	// Sort lists listing sort keys; a "-" prefix reverses one key.
	Sort []string `mapstructure:"sort"`

	LogLevel     string `mapstructure:"log_level"`
	LogOutputDir string `mapstructure:"log_output_dir"`

	// Directory is the extraction or gap dump destination.
	Directory string `mapstructure:"directory"`
	// FileMode is the extraction file creation policy.
	FileMode string `mapstructure:"file_mode"`
	// Algorithm is the content digest algorithm for the digest command.
	Algorithm string `mapstructure:"algorithm"`
	// Dump is the gap dump directory for the coverage command; empty disables dumping.
	Dump string `mapstructure:"dump"`
	// Addr is the listen address of the serve command.
	Addr string `mapstructure:"addr"`

	// Stop makes every recoverable error fatal.
	Stop bool `mapstructure:"stop"`
	// CaseInsensitive matches Include/Exclude rules ignoring case.
	CaseInsensitive bool `mapstructure:"case_insensitive"`
	NoColor         bool `mapstructure:"no_color"`
	Long            bool `mapstructure:"long"`
	Human           bool `mapstructure:"human"`
	Check           bool `mapstructure:"check"`
	Compress        bool `mapstructure:"compress"`
}

// SortKeys are the accepted listing sort keys.
var SortKeys = []string{"archive", "crc32", "offset", "size", "path"}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch vpk.ExtractFileMode(c.FileMode) {
	case "", vpk.ExtractFileModeAuto, vpk.ExtractFileModeTruncate, vpk.ExtractFileModeCreateOnly:
	default:
		return fmt.Errorf("%w: file_mode %q", ErrInvalidConfig, c.FileMode)
	}

	for _, key := range c.Sort {
		if !slices.Contains(SortKeys, strings.TrimPrefix(key, "-")) {
			return fmt.Errorf("%w: sort key %q (want one of %s)", ErrInvalidConfig, key, strings.Join(SortKeys, ", "))
		}
	}

	return nil
}

// ExtractOptions converts extraction settings for vpk.Package.Extract.
func (c *Config) ExtractOptions() vpk.ExtractOptions {
	return vpk.ExtractOptions{
		FileMode: vpk.ExtractFileMode(c.FileMode),
		Check:    c.Check,
	}
}
