// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/woozymasta/vpk/coverage"
)

func (a *app) coverageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coverage " + archiveArgs,
		Short: "Report archive byte ranges not referenced by any file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, reporter, err := a.openPackage(cmd, args)
			if err != nil {
				return err
			}

			reports, err := coverage.Analyze(pkg)
			if err != nil {
				return err
			}

			failed := false
			for _, r := range reports {
				if r.Err != nil {
					failed = true
					slog.Error("inspect archive", "archive", r.Path, "error", r.Err)
				}
				writeReport(cmd.OutOrStdout(), r, a.cfg.Human)
			}

			if a.cfg.Dump != "" {
				written, err := coverage.DumpGaps(cmd.Context(), pkg, reports, a.cfg.Dump, coverage.DumpOptions{Compress: a.cfg.Compress})
				slog.Info("dumped gaps", "files", len(written), "directory", a.cfg.Dump)
				if err != nil {
					return err
				}
			}

			if failed {
				return errFilesFailed
			}

			return finish(reporter, nil)
		},
	}

	cmd.Flags().BoolP("human", "H", false, "print sizes in human readable units")
	cmd.Flags().String("dump", "", "write unreferenced ranges as files into this directory")
	cmd.Flags().Bool("compress", false, "zstd-compress dumped ranges")

	return cmd
}

// writeReport prints the statistics and gaps of one archive.
func writeReport(w io.Writer, r coverage.Report, human bool) {
	size := func(n uint64) string {
		if human {
			return coverage.HumanSize(n)
		}
		return strconv.FormatUint(n, 10)
	}

	fmt.Fprintf(w, "Archive %s: %s\n", r.Label(), r.Path)
	if r.Err != nil {
		fmt.Fprintf(w, "\terror: %v\n", r.Err)
		return
	}

	s := r.Stat
	fmt.Fprintf(w, "\tfiles: %d\n", s.Files)
	if s.Files > 0 {
		fmt.Fprintf(w, "\tpreload: min %s, max %s, total %s\n", size(s.MinPreload), size(s.MaxPreload), size(s.SumPreload))
		fmt.Fprintf(w, "\tsize: min %s, max %s, total %s\n", size(s.MinSize), size(s.MaxSize), size(s.SumSize))
	}
	fmt.Fprintf(w, "\tarchive size: %s, covered: %s\n", size(r.FileSize), size(s.Coverage.Covered()))

	if r.Gaps.Empty() {
		fmt.Fprintln(w, "\tgaps: none")
		return
	}
	fmt.Fprintf(w, "\tgaps: %s, total %s\n", r.Gaps.String(human), size(r.Gaps.Covered()))
}
