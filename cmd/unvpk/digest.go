// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package main

import (
	"fmt"

	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"

	"github.com/woozymasta/vpk"
)

func (a *app) digestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest " + archiveArgs,
		Short: "Print content digests of package files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, reporter, err := a.openPackage(cmd, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			factory := vpk.DigestDataHandlerFactory{
				Algorithm: digest.Algorithm(a.cfg.Algorithm),
				OnDigest: func(path string, d digest.Digest) {
					fmt.Fprintf(out, "%s  %s\n", d, path)
				},
			}

			return finish(reporter, pkg.Process(cmd.Context(), factory))
		},
	}

	cmd.Flags().String("algorithm", string(digest.SHA256), "digest algorithm: sha256, sha384, sha512")

	return cmd
}
