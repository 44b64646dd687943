// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CreateDirError reports a failure creating an output directory.
// The pipeline routes it through Handler.DirError.
type CreateDirError struct {
	Err  error
	Path string
}

// Error implements error.
func (e *CreateDirError) Error() string {
	return fmt.Sprintf("create directory %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CreateDirError) Unwrap() error {
	return e.Err
}

// FileDataHandler writes payload bytes to a destination file and optionally
// verifies the CRC32 while doing so.
type FileDataHandler struct {
	file  *os.File
	check *CheckingDataHandler
	path  string
}

// NewFileDataHandler creates parent directories and opens path for writing.
func NewFileDataHandler(path string, crc uint32, check bool, mode ExtractFileMode) (*FileDataHandler, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, &CreateDirError{Path: dir, Err: err}
		}
	}

	file, err := openExtractFile(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	h := &FileDataHandler{file: file, path: path}
	if check {
		h.check = NewCheckingDataHandler(path, crc)
	}

	return h, nil
}

// Process implements DataHandler.
func (h *FileDataHandler) Process(p []byte) error {
	if h.file == nil {
		return ErrClosed
	}

	n, err := h.file.Write(p)
	if err != nil {
		return fmt.Errorf("write %s: %w", h.path, err)
	}
	if n != len(p) {
		return fmt.Errorf("write %s: %w", h.path, io.ErrShortWrite)
	}

	if h.check != nil {
		return h.check.Process(p)
	}

	return nil
}

// Finish implements DataHandler. It closes the file, then verifies the checksum.
func (h *FileDataHandler) Finish() error {
	if err := h.Close(); err != nil {
		return err
	}

	if h.check != nil {
		return h.check.Finish()
	}

	return nil
}

// Close releases the output file; it is safe to call more than once.
func (h *FileDataHandler) Close() error {
	if h.file == nil {
		return nil
	}

	err := h.file.Close()
	h.file = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", h.path, err)
	}

	return nil
}

// FileDataHandlerFactory creates FileDataHandler values below DestDir.
type FileDataHandlerFactory struct {
	// DestDir is the extraction root.
	DestDir string
	// FileMode controls output file creation policy.
	FileMode ExtractFileMode
	// Check verifies CRC32 of every written file.
	Check bool
}

// Create implements DataHandlerFactory. Entry paths that are absolute or
// escape DestDir are rejected with ErrInvalidExtractPath.
func (f FileDataHandlerFactory) Create(path string, crc uint32) (DataHandler, error) {
	rel, err := normalizeExtractEntryPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, path)
	}

	mode := f.FileMode
	if mode == "" {
		mode = ExtractFileModeAuto
	}

	return NewFileDataHandler(filepath.Join(f.DestDir, filepath.FromSlash(rel)), crc, f.Check, mode)
}

// openExtractFile opens output path according to selected extract file mode.
func openExtractFile(path string, mode ExtractFileMode) (*os.File, error) {
	switch mode {
	case ExtractFileModeAuto:
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return file, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}

		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	case ExtractFileModeTruncate:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	case ExtractFileModeCreateOnly:
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	default:
		return nil, fmt.Errorf("unknown extract file mode %q", mode)
	}
}

// normalizeExtractEntryPath returns entryPath as a clean relative slash path.
// Absolute paths, volume names, ".." segments and NUL bytes are rejected.
func normalizeExtractEntryPath(entryPath string) (string, error) {
	raw := strings.ReplaceAll(entryPath, `\`, "/")
	if strings.HasPrefix(raw, "/") || strings.ContainsRune(raw, 0) {
		return "", ErrInvalidExtractPath
	}

	segments := splitPath(raw)
	clean := segments[:0]
	for _, segment := range segments {
		switch segment {
		case ".":
			continue
		case "..":
			return "", ErrInvalidExtractPath
		}
		clean = append(clean, segment)
	}

	if len(clean) == 0 || strings.Contains(clean[0], ":") {
		return "", ErrInvalidExtractPath
	}

	rel := strings.Join(clean, "/")
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", ErrInvalidExtractPath
	}

	return rel, nil
}
