// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package coverage

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/woozymasta/vpk"
)

// ArchiveStat aggregates the files stored in one archive.
type ArchiveStat struct {
	// Coverage holds the archive byte ranges referenced by files.
	Coverage Coverage
	// Files is the number of files referencing the archive.
	Files int
	// MinPreload, MaxPreload, and SumPreload describe inline preload lengths.
	MinPreload uint64
	MaxPreload uint64
	SumPreload uint64
	// MinSize, MaxSize, and SumSize describe logical payload lengths.
	MinSize uint64
	MaxSize uint64
	SumSize uint64
}

// Add records f.
func (s *ArchiveStat) Add(f *vpk.File) {
	preload := uint64(len(f.Preload))
	size := uint64(f.TotalSize()) //nolint:gosec // TotalSize is never negative

	s.SumPreload += preload
	s.SumSize += size
	if s.Files == 0 {
		s.MinPreload, s.MaxPreload = preload, preload
		s.MinSize, s.MaxSize = size, size
	} else {
		s.MinPreload = min(s.MinPreload, preload)
		s.MaxPreload = max(s.MaxPreload, preload)
		s.MinSize = min(s.MinSize, size)
		s.MaxSize = max(s.MaxSize, size)
	}

	s.Files++
	s.Coverage.Add(uint64(f.Offset), uint64(f.Size))
}

// Collect groups the files of pkg by archive index. Preload-only files
// reference no archive bytes and are left out.
func Collect(pkg *vpk.Package) map[uint16]*ArchiveStat {
	stats := make(map[uint16]*ArchiveStat)
	_ = pkg.Walk(func(_ string, f *vpk.File) error {
		if f.Size == 0 {
			return nil
		}

		stat, ok := stats[f.Index]
		if !ok {
			stat = &ArchiveStat{}
			stats[f.Index] = stat
		}

		stat.Add(f)
		return nil
	})

	return stats
}

// Report describes the coverage of one archive file.
type Report struct {
	// Err is set when the archive could not be inspected.
	Err error
	// Stat aggregates the files stored in the archive.
	Stat *ArchiveStat
	// Path is the archive file path.
	Path string
	// Gaps are the byte ranges no file references.
	Gaps Coverage
	// FileSize is the size of the archive on disk.
	FileSize uint64
	// Index is the archive index; vpk.DirArchiveIndex for the directory file.
	Index uint16
}

// Label names the archive for display: its index as three digits, or "dir".
func (r Report) Label() string {
	if r.Index == vpk.DirArchiveIndex {
		return "dir"
	}

	return fmt.Sprintf("%03d", r.Index)
}

// Analyze compares referenced ranges with real archive sizes. Reports are
// ordered by index, the directory file last. The directory file is included
// whenever its path is known, with the header and index counted as covered.
// Archives that cannot be inspected get a Report with Err set.
func Analyze(pkg *vpk.Package) ([]Report, error) {
	if pkg == nil {
		return nil, vpk.ErrNilPackage
	}

	stats := Collect(pkg)
	if pkg.DirPath() != "" {
		stat, ok := stats[vpk.DirArchiveIndex]
		if !ok {
			stat = &ArchiveStat{}
			stats[vpk.DirArchiveIndex] = stat
		}

		stat.Coverage.Add(0, uint64(pkg.DataOffset))
	} else {
		delete(stats, vpk.DirArchiveIndex)
	}

	indices := slices.Sorted(maps.Keys(stats))
	reports := make([]Report, 0, len(indices))
	for _, index := range indices {
		r := Report{Index: index, Path: pkg.ArchivePath(index), Stat: stats[index]}

		info, err := os.Stat(r.Path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			r.Err = fmt.Errorf("%w: %w", vpk.ErrArchiveMissing, err)
		case err != nil:
			r.Err = err
		default:
			r.FileSize = uint64(info.Size()) //nolint:gosec // file sizes are never negative
			r.Gaps = r.Stat.Coverage.Invert(r.FileSize)
		}

		reports = append(reports, r)
	}

	return reports, nil
}
