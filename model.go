// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	"log/slog"
)

// Binary layout constants.
const (
	// Magic is the signature of versioned (v1, v2) directory files.
	Magic uint32 = 0x55AA1234
	// Terminator closes every file record in the index.
	Terminator uint16 = 0xFFFF
	// DirArchiveIndex marks payload bytes embedded in the directory file itself.
	DirArchiveIndex uint16 = 0x7FFF
	// MaxPreloadSize is the largest preload a file record can declare.
	MaxPreloadSize = 0xFFFF
	// DirSuffix is the file name suffix of directory files.
	DirSuffix = "_dir.vpk"

	v1HeaderSize = 12 // magic, version, index size
	v2HeaderSize = 28 // v1 header + footer offset, reserved, footer size, reserved
)

// IOBufferSize bounds a single archive read during processing.
const IOBufferSize = 64 * 1024

// Version is the directory file format revision.
type Version uint32

// Known format revisions.
const (
	// Version0 has no header; file data follows the index directly.
	Version0 Version = 0
	// Version1 has a 12-byte header with declared index size.
	Version1 Version = 1
	// Version2 extends the v1 header with footer fields.
	Version2 Version = 2
)

// ErrorKind selects the Handler callback an error is routed through.
type ErrorKind int

// Error routing kinds.
const (
	ErrorKindDir ErrorKind = iota
	ErrorKindFile
	ErrorKindArchive
	ErrorKindFilter
)

// String returns the lowercase kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindDir:
		return "directory"
	case ErrorKindFile:
		return "file"
	case ErrorKindArchive:
		return "archive"
	case ErrorKindFilter:
		return "filter"
	default:
		return "unknown"
	}
}

// Options configures package reading and processing.
type Options struct {
	// Handler receives lifecycle and error callbacks; nil means every error is fatal.
	Handler Handler `json:"-" yaml:"-"`
	// Logger receives debug diagnostics; nil means slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-"`
}

// ExtractFileMode controls output file open behavior during extraction.
type ExtractFileMode string

// Output file creation policies for extraction.
const (
	// ExtractFileModeAuto first tries create-only, then falls back to truncate for existing files.
	ExtractFileModeAuto ExtractFileMode = "auto"
	// ExtractFileModeTruncate opens existing files with truncate and creates missing files.
	ExtractFileModeTruncate ExtractFileMode = "truncate"
	// ExtractFileModeCreateOnly creates files only when absent and fails on existing files.
	ExtractFileModeCreateOnly ExtractFileMode = "create_only"
)

// ExtractOptions configures Extract behavior.
type ExtractOptions struct {
	// FileMode controls output file creation policy.
	FileMode ExtractFileMode `json:"file_mode,omitempty" yaml:"file_mode,omitempty"`
	// Check verifies CRC32 of every written file.
	Check bool `json:"check,omitempty" yaml:"check,omitempty"`
}

// applyDefaults fills zero-valued options with defaults.
func (opts *Options) applyDefaults() {
	if opts.Handler == nil {
		opts.Handler = FatalHandler{}
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
}

// applyDefaults fills zero-valued extract options with defaults.
func (opts *ExtractOptions) applyDefaults() {
	if opts.FileMode == "" {
		opts.FileMode = ExtractFileModeAuto
	}
}
