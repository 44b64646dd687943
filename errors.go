// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	"errors"
	"fmt"
)

// Sentinel errors for VPK operations. Use errors.Is in callers.
var (
	// ErrFileFormat means the directory file is structurally invalid.
	ErrFileFormat = errors.New("invalid VPK file format")
	// ErrUnexpectedEOF means a read could not be fully satisfied.
	ErrUnexpectedEOF = errors.New("unexpected end of data")
	// ErrUnsupportedVersion means the header declares an unknown format version.
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported version", ErrFileFormat)
	// ErrInvalidTerminator means a file record does not end with 0xFFFF.
	ErrInvalidTerminator = fmt.Errorf("%w: invalid terminator", ErrFileFormat)
	// ErrNotDirectory means a path segment names a file where a directory is required.
	ErrNotDirectory = fmt.Errorf("%w: path is not a directory", ErrFileFormat)
	// ErrEmptyPath means a directory path without any segments was given.
	ErrEmptyPath = errors.New("empty path")
	// ErrIndexSizeMismatch means the parsed index length differs from the declared one.
	ErrIndexSizeMismatch = errors.New("index size mismatch")
	// ErrInvalidDirName means the directory file name does not end in "_dir.vpk".
	ErrInvalidDirName = errors.New(`file does not end in "_dir.vpk"`)
	// ErrNotFound means no node exists at the requested path.
	ErrNotFound = errors.New("no such file or directory")
	// ErrArchiveMissing means a numbered archive could not be opened earlier in this run.
	ErrArchiveMissing = errors.New("archive does not exist")
	// ErrChecksumMismatch means the CRC32 of processed bytes differs from the index.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrInvalidExtractPath means an entry path is unsafe for the extraction destination.
	ErrInvalidExtractPath = errors.New("invalid extract path")
	// ErrInvalidFilterRules means one or more glob filter rules are invalid.
	ErrInvalidFilterRules = errors.New("invalid filter rules")
	// ErrNilPackage means the package is nil.
	ErrNilPackage = errors.New("package is nil")
	// ErrClosed means the reader or resource is already closed.
	ErrClosed = errors.New("reader or resource already closed")
)

// Error is a fatal error raised through one of the Handler error callbacks.
type Error struct {
	// Err is the underlying cause.
	Err error
	// Path is the entry, archive, or filter path the error relates to.
	Path string
	// Kind selects which Handler callback received the error.
	Kind ErrorKind
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s error %q: %v", e.Kind, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}
