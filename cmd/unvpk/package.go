// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/woozymasta/pathrules"

	"github.com/woozymasta/vpk"
	"github.com/woozymasta/vpk/internal/console"
)

// archiveArgs is the shared positional usage: a directory file, or "-" for
// stdin, followed by optional files or directories to keep.
const archiveArgs = "ARCHIVE [FILE...]"

// openPackage reads the package named by args[0] and applies positional and
// glob filters. Errors are routed through the returned reporter.
func (a *app) openPackage(cmd *cobra.Command, args []string) (*vpk.Package, *console.Reporter, error) {
	reporter := console.New(slog.Default(), a.cfg.Stop)
	opts := vpk.Options{Handler: reporter, Logger: slog.Default()}

	var (
		pkg *vpk.Package
		err error
	)
	if args[0] == "-" {
		pkg, err = vpk.ReadPackage(cmd.InOrStdin(), ".", "", opts)
	} else {
		pkg, err = vpk.OpenWithOptions(args[0], opts)
	}
	if err != nil {
		return nil, nil, err
	}

	if len(args) > 1 {
		if err := pkg.Filter(vpk.NormalizePaths(args[1:])); err != nil {
			return nil, nil, err
		}
	}

	if err := pkg.FilterRules(a.filterRules()); err != nil {
		return nil, nil, err
	}

	return pkg, reporter, nil
}

// filterRules builds glob rules from --include and --exclude. Without
// include rules every file not excluded is kept.
func (a *app) filterRules() ([]pathrules.Rule, pathrules.MatcherOptions) {
	rules := append(vpk.IncludeRules(a.cfg.Include...), vpk.ExcludeRules(a.cfg.Exclude...)...)

	opts := pathrules.MatcherOptions{
		CaseInsensitive: a.cfg.CaseInsensitive,
		DefaultAction:   pathrules.ActionExclude,
	}
	if len(vpk.IncludeRules(a.cfg.Include...)) == 0 {
		opts.DefaultAction = pathrules.ActionInclude
	}

	return rules, opts
}

// finish converts reporter state into the command result.
func finish(reporter *console.Reporter, err error) error {
	if err != nil {
		return err
	}

	if !reporter.OK() {
		return errFilesFailed
	}

	return nil
}
