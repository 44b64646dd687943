// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

/*
Package coverage reports which byte ranges of VPK archives are referenced by
the index, and which are not.

Collect groups files by archive, Analyze compares the covered ranges against
the real archive sizes, and DumpGaps writes every unreferenced range to disk
named after its sniffed content type:

	reports, err := coverage.Analyze(pkg)
	if err != nil {
	    return err
	}
	for _, r := range reports {
	    fmt.Printf("%s: %s\n", r.Path, r.Gaps.String(true))
	}
*/
package coverage

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Slice is one half-open byte range [Offset, Offset+Size).
type Slice struct {
	Offset uint64
	Size   uint64
}

// End returns the exclusive end offset.
func (s Slice) End() uint64 {
	return s.Offset + s.Size
}

// Coverage is a set of disjoint, non-adjacent byte ranges ordered by offset.
// The zero value is empty and ready to use.
type Coverage struct {
	slices []Slice
}

// Add inserts [offset, offset+size) and merges it with overlapping or
// touching ranges. Empty ranges are ignored.
func (c *Coverage) Add(offset uint64, size uint64) {
	if size == 0 {
		return
	}

	end := offset + size
	// first range ending at or after offset
	i := sort.Search(len(c.slices), func(k int) bool {
		return c.slices[k].End() >= offset
	})

	j := i
	for j < len(c.slices) && c.slices[j].Offset <= end {
		offset = min(offset, c.slices[j].Offset)
		end = max(end, c.slices[j].End())
		j++
	}

	c.slices = slices.Replace(c.slices, i, j, Slice{Offset: offset, Size: end - offset})
}

// Covered returns the total number of bytes in the set.
func (c *Coverage) Covered() uint64 {
	var total uint64
	for _, s := range c.slices {
		total += s.Size
	}

	return total
}

// Slices returns a copy of the ranges in offset order.
func (c *Coverage) Slices() []Slice {
	return slices.Clone(c.slices)
}

// Empty reports whether the set holds no bytes.
func (c *Coverage) Empty() bool {
	return len(c.slices) == 0
}

// Invert returns the gaps between ranges plus the tail up to fileSize.
// Gaps before the first range start at offset 0.
func (c *Coverage) Invert(fileSize uint64) Coverage {
	var inverted Coverage

	var start uint64
	for _, s := range c.slices {
		if s.Offset > start {
			inverted.Add(start, s.Offset-start)
		}
		start = s.End()
	}

	if fileSize > start {
		inverted.Add(start, fileSize-start)
	}

	return inverted
}

// String formats the ranges as "from-to (size), ...".
// With human set, sizes use HumanSize.
func (c *Coverage) String(human bool) string {
	parts := make([]string, 0, len(c.slices))
	for _, s := range c.slices {
		size := strconv.FormatUint(s.Size, 10)
		if human {
			size = HumanSize(s.Size)
		}

		parts = append(parts, fmt.Sprintf("%d-%d (%s)", s.Offset, s.End(), size))
	}

	return strings.Join(parts, ", ")
}

var sizeUnits = []string{"K", "M", "G", "T", "P", "E"}

// HumanSize formats n bytes with a binary unit suffix and one decimal,
// or as a plain number below 1024.
func HumanSize(n uint64) string {
	if n < 1024 {
		return strconv.FormatUint(n, 10)
	}

	value := float64(n) / 1024
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	return fmt.Sprintf("%.1f%s", value, sizeUnits[unit])
}
