// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package main

import (
	"github.com/spf13/cobra"

	"github.com/woozymasta/vpk"
)

func (a *app) extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "extract " + archiveArgs,
		Aliases: []string{"x"},
		Short:   "Extract package files into a directory",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, reporter, err := a.openPackage(cmd, args)
			if err != nil {
				return err
			}

			return finish(reporter, pkg.Extract(cmd.Context(), a.cfg.Directory, a.cfg.ExtractOptions()))
		},
	}

	cmd.Flags().StringP("directory", "C", ".", "destination directory")
	cmd.Flags().Bool("check", false, "verify CRC32 checksums while extracting")
	cmd.Flags().String("file-mode", string(vpk.ExtractFileModeAuto), "existing file policy: auto, truncate, create_only")

	return cmd
}
