// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	"fmt"
	"io"
	"sync/atomic"
)

// FileReader serves random-access reads of file payloads.
// Archive handles are opened lazily, cached per index, and archives that
// failed to open are not retried. It is safe for concurrent use.
type FileReader struct {
	pkg      *Package
	archives *archiveCache
	closed   atomic.Bool
}

// NewFileReader creates a random-access reader over p's archives.
// The caller must Close it to release archive handles.
func (p *Package) NewFileReader() *FileReader {
	return &FileReader{pkg: p, archives: newArchiveCache(p)}
}

// ReadAt reads len(buf) bytes of f's logical payload starting at off.
// Offsets below len(f.Preload) are served from the preload; the rest come
// from the archive. It returns io.EOF when fewer than len(buf) bytes remain.
func (r *FileReader) ReadAt(f *File, buf []byte, off int64) (int, error) {
	if r == nil || r.pkg == nil {
		return 0, ErrNilPackage
	}
	if r.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("read %s: negative offset %d", f.Name(), off)
	}

	total := f.TotalSize()
	if off >= total {
		return 0, io.EOF
	}

	want := buf
	if remain := total - off; int64(len(want)) > remain {
		want = want[:remain]
	}

	n := 0
	preloadLen := int64(len(f.Preload))
	if off < preloadLen {
		n = copy(want, f.Preload[off:])
	}

	if n < len(want) {
		archive, ok, err := r.archives.get(f.Index)
		if err != nil {
			return n, err
		}
		if !ok {
			return n, fmt.Errorf("%w: %s", ErrArchiveMissing, r.pkg.ArchivePath(f.Index))
		}

		archiveOff := int64(f.Offset) + (off + int64(n) - preloadLen)
		m, err := archive.ReadAt(want[n:], archiveOff)
		n += m
		if err != nil && n < len(want) {
			return n, fmt.Errorf("read %s at offset %d: %w", f.Name(), archiveOff, mapReadError(err))
		}
	}

	if n < len(buf) {
		return n, io.EOF
	}

	return n, nil
}

// Close releases all cached archive handles.
func (r *FileReader) Close() error {
	if r == nil || r.closed.Swap(true) {
		return nil
	}

	return r.archives.Close()
}
