// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package main

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/woozymasta/vpk"
	"github.com/woozymasta/vpk/coverage"
)

func (a *app) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list " + archiveArgs,
		Aliases: []string{"ls"},
		Short:   "List package contents",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, reporter, err := a.openPackage(cmd, args)
			if err != nil {
				return err
			}

			if !a.cfg.Long && len(a.cfg.Sort) == 0 {
				return finish(reporter, pkg.WriteList(cmd.OutOrStdout()))
			}

			entries := pkg.Files()
			sortEntries(entries, a.cfg.Sort)

			if !a.cfg.Long {
				for _, e := range entries {
					fmt.Fprintln(cmd.OutOrStdout(), e.Path)
				}
				return finish(reporter, nil)
			}

			return finish(reporter, writeLongList(cmd.OutOrStdout(), entries, a.cfg.Human))
		},
	}

	cmd.Flags().BoolP("long", "l", false, "show archive, crc32, offset, and size columns")
	cmd.Flags().BoolP("human", "H", false, "print sizes in human readable units")
	cmd.Flags().StringSlice("sort", nil, "sort keys: archive, crc32, offset, size, path; prefix with - to reverse")

	return cmd
}

// writeLongList prints one tab-aligned row per entry.
func writeLongList(w io.Writer, entries []vpk.FileEntry, human bool) error {
	size := func(n uint64) string {
		if human {
			return coverage.HumanSize(n)
		}
		return strconv.FormatUint(n, 10)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ARCHIVE\tCRC32\tOFFSET\tSIZE\t PATH")

	for _, e := range entries {
		f := e.File
		total := size(uint64(f.TotalSize())) //nolint:gosec // TotalSize is never negative

		archive, offset := "-", "-"
		if f.Size > 0 {
			archive = archiveLabel(f.Index)
			offset = size(uint64(f.Offset))
		}

		fmt.Fprintf(tw, "%s\t%08x\t%s\t%s\t %s\n", archive, f.CRC32, offset, total, e.Path)
	}

	return tw.Flush()
}

// archiveLabel names an archive index for display.
func archiveLabel(index uint16) string {
	if index == vpk.DirArchiveIndex {
		return "dir"
	}

	return strconv.Itoa(int(index))
}

// sortEntries orders entries by keys in priority order; "-key" reverses one key.
// Files without archive bytes sort before all archives and offsets.
func sortEntries(entries []vpk.FileEntry, keys []string) {
	if len(keys) == 0 {
		return
	}

	slices.SortStableFunc(entries, func(a, b vpk.FileEntry) int {
		for _, key := range keys {
			reverse := strings.HasPrefix(key, "-")

			var c int
			switch strings.TrimPrefix(key, "-") {
			case "archive":
				c = cmp.Compare(archiveKey(a.File), archiveKey(b.File))
			case "crc32":
				c = cmp.Compare(a.File.CRC32, b.File.CRC32)
			case "offset":
				c = cmp.Compare(offsetKey(a.File), offsetKey(b.File))
			case "size":
				c = cmp.Compare(a.File.TotalSize(), b.File.TotalSize())
			case "path":
				c = strings.Compare(a.Path, b.Path)
			}

			if c != 0 {
				if reverse {
					return -c
				}
				return c
			}
		}

		return 0
	})
}

func archiveKey(f *vpk.File) int32 {
	if f.Size == 0 {
		return -1
	}

	return int32(f.Index)
}

func offsetKey(f *vpk.File) int64 {
	if f.Size == 0 {
		return -1
	}

	return int64(f.Offset)
}
