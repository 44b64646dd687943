// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package main

import (
	"github.com/spf13/cobra"
)

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check " + archiveArgs,
		Short: "Verify CRC32 checksums of package files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, reporter, err := a.openPackage(cmd, args)
			if err != nil {
				return err
			}

			return finish(reporter, pkg.Check(cmd.Context()))
		},
	}
}
