// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpkfs

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/woozymasta/vpk"
)

// File and directory permission bits reported for every entry.
const (
	FileMode fs.FileMode = 0o444
	DirMode  fs.FileMode = fs.ModeDir | 0o555
)

var (
	_ fs.ReadDirFile = (*openDir)(nil)
	_ io.ReaderAt    = (*openFile)(nil)
	_ io.Seeker      = (*openFile)(nil)
)

// fileInfo implements fs.FileInfo for package nodes.
type fileInfo struct {
	modTime time.Time
	node    vpk.Node
	name    string
	size    int64
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.node.Kind() == vpk.KindDir }
func (fi *fileInfo) Sys() any           { return fi.node }

func (fi *fileInfo) Mode() fs.FileMode {
	if fi.IsDir() {
		return DirMode
	}

	return FileMode
}

// openFile is an open package file with a read cursor.
type openFile struct {
	fsys   *FS
	file   *vpk.File
	name   string
	off    int64
	closed bool
}

func (f *openFile) Stat() (fs.FileInfo, error) {
	return f.fsys.info(f.file, f.name), nil
}

func (f *openFile) Read(p []byte) (int, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: fs.ErrClosed}
	}

	n, err := f.fsys.reader.ReadAt(f.file, p, f.off)
	f.off += int64(n)
	if errors.Is(err, io.EOF) && n > 0 {
		err = nil
	}

	return n, err
}

// ReadAt implements io.ReaderAt.
func (f *openFile) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: fs.ErrClosed}
	}

	return f.fsys.reader.ReadAt(f.file, p, off)
}

// Seek implements io.Seeker.
func (f *openFile) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "seek", Path: f.name, Err: fs.ErrClosed}
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.off + offset
	case io.SeekEnd:
		abs = f.file.TotalSize() + offset
	default:
		return f.off, &fs.PathError{Op: "seek", Path: f.name, Err: fs.ErrInvalid}
	}

	if abs < 0 {
		return f.off, &fs.PathError{Op: "seek", Path: f.name, Err: fs.ErrInvalid}
	}

	f.off = abs
	return abs, nil
}

func (f *openFile) Close() error {
	if f.closed {
		return &fs.PathError{Op: "close", Path: f.name, Err: fs.ErrClosed}
	}

	f.closed = true
	return nil
}

// openDir is an open package directory.
type openDir struct {
	fsys    *FS
	dir     *vpk.Dir
	name    string
	entries []fs.DirEntry
	pos     int
	listed  bool
}

func (d *openDir) Read(_ []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

func (d *openDir) Stat() (fs.FileInfo, error) {
	return d.fsys.info(d.dir, d.name), nil
}

func (d *openDir) Close() error {
	return nil
}

func (d *openDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if !d.listed {
		d.entries = d.fsys.entries(d.dir)
		d.listed = true
	}

	rest := d.entries[d.pos:]
	if n <= 0 {
		d.pos = len(d.entries)
		return rest, nil
	}

	if len(rest) == 0 {
		return nil, io.EOF
	}

	n = min(n, len(rest))
	d.pos += n
	return rest[:n], nil
}

// baseName returns the last element of an fs path; the root is ".".
func baseName(name string) string {
	if name == "." || name == "" {
		return "."
	}

	return path.Base(name)
}
