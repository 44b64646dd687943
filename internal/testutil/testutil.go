// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

// Package testutil builds VPK fixtures for tests outside the root package.
package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// TestEntry holds data for one file record of a test index.
type TestEntry struct {
	Type    string
	Dir     string
	Base    string
	Preload []byte
	CRC     uint32
	Offset  uint32
	Size    uint32
	Index   uint16
}

// TestPackage describes a directory file plus its numbered archives.
type TestPackage struct {
	// Archives maps archive index to its full content.
	Archives map[uint16][]byte
	// Name is the base name; the directory file is Name+"_dir.vpk".
	Name string
	// Entries are encoded grouped by type then directory, in first-seen order.
	Entries []TestEntry
	// DirData is appended to the directory file after the index.
	DirData []byte
	// Version is 0, 1, or 2.
	Version uint32
}

// CRC returns the IEEE CRC32 of parts concatenated.
func CRC(parts ...[]byte) uint32 {
	h := crc32.NewIEEE()
	for _, p := range parts {
		_, _ = h.Write(p)
	}

	return h.Sum32()
}

// BuildIndex encodes entries into the three-level VPK index.
func BuildIndex(entries []TestEntry) []byte {
	var buf bytes.Buffer

	var types []string
	for _, e := range entries {
		if !slices.Contains(types, e.Type) {
			types = append(types, e.Type)
		}
	}

	for _, typ := range types {
		writeCString(&buf, typ)

		var dirs []string
		for _, e := range entries {
			if e.Type == typ && !slices.Contains(dirs, e.Dir) {
				dirs = append(dirs, e.Dir)
			}
		}

		for _, dir := range dirs {
			writeCString(&buf, dir)
			for _, e := range entries {
				if e.Type == typ && e.Dir == dir {
					writeCString(&buf, e.Base)
					writeRecord(&buf, e)
				}
			}
			buf.WriteByte(0)
		}

		buf.WriteByte(0)
	}

	buf.WriteByte(0)
	return buf.Bytes()
}

// BuildDirFile prefixes index with a header for version and appends data.
func BuildDirFile(version uint32, index []byte, data []byte) []byte {
	var buf bytes.Buffer

	var header []uint32
	switch version {
	case 1:
		header = []uint32{0x55AA1234, 1, uint32(len(index))}
	case 2:
		header = []uint32{0x55AA1234, 2, uint32(len(index)), 0, 0, 0, 0}
	}
	for _, v := range header {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}

	buf.Write(index)
	buf.Write(data)
	return buf.Bytes()
}

// HeaderSize returns the header length for version.
func HeaderSize(version uint32) uint32 {
	switch version {
	case 1:
		return 12
	case 2:
		return 28
	default:
		return 0
	}
}

// Write stores the package below dir and returns the directory file path.
func (p TestPackage) Write(tb testing.TB, dir string) string {
	tb.Helper()

	for index, data := range p.Archives {
		name := fmt.Sprintf("%s_%03d.vpk", p.Name, index)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			tb.Fatalf("write archive %s: %v", name, err)
		}
	}

	path := filepath.Join(dir, p.Name+"_dir.vpk")
	data := BuildDirFile(p.Version, BuildIndex(p.Entries), p.DirData)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write directory file: %v", err)
	}

	return path
}

// Hello is the two-part "a/hello.txt" package: "HI" preloaded, "ALL" at
// offset 0 of archive 0.
func Hello() TestPackage {
	return TestPackage{
		Name:    "a",
		Version: 1,
		Entries: []TestEntry{{
			Type:    "txt",
			Dir:     "a",
			Base:    "hello",
			Preload: []byte("HI"),
			CRC:     CRC([]byte("HIALL")),
			Size:    3,
		}},
		Archives: map[uint16][]byte{0: []byte("ALL")},
	}
}

func writeCString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0)
}

func writeRecord(buf *bytes.Buffer, e TestEntry) {
	_ = binary.Write(buf, binary.LittleEndian, struct {
		CRC        uint32
		PreloadLen uint16
		Index      uint16
		Offset     uint32
		Size       uint32
		Terminator uint16
	}{e.CRC, uint16(len(e.Preload)), e.Index, e.Offset, e.Size, 0xFFFF}) //nolint:gosec // test preloads are small
	buf.Write(e.Preload)
}
