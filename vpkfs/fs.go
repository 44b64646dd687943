// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

// Package vpkfs exposes a parsed VPK package as a read-only io/fs.FS.
//
// Directories come from the package tree; file contents are served through
// vpk.FileReader, so preload bytes and archive bytes read as one stream.
// The result plugs into anything taking an fs.FS, for example:
//
//	fsys, err := vpkfs.New(pkg, vpkfs.Options{})
//	if err != nil {
//	    return err
//	}
//	defer fsys.Close()
//	http.Handle("/", http.FileServerFS(fsys))
package vpkfs

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/woozymasta/vpk"
)

var (
	_ fs.FS         = (*FS)(nil)
	_ fs.StatFS     = (*FS)(nil)
	_ fs.ReadDirFS  = (*FS)(nil)
	_ fs.ReadFileFS = (*FS)(nil)
)

// Options configures New.
type Options struct {
	// ModTime is reported for every entry; zero means the directory file's mtime.
	ModTime time.Time
	// Logger receives debug diagnostics; nil means slog.Default().
	Logger *slog.Logger
}

// FS implements fs.FS, fs.StatFS, fs.ReadDirFS, and fs.ReadFileFS over a
// package tree. It is safe for concurrent use as long as the tree is not
// modified. Close must be called to release archive handles.
type FS struct {
	pkg     *vpk.Package
	reader  *vpk.FileReader
	logger  *slog.Logger
	modTime time.Time
}

// New creates a filesystem view of pkg.
func New(pkg *vpk.Package, opts Options) (*FS, error) {
	if pkg == nil {
		return nil, vpk.ErrNilPackage
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	modTime := opts.ModTime
	if modTime.IsZero() && pkg.DirPath() != "" {
		info, err := os.Stat(pkg.DirPath())
		if err != nil {
			return nil, fmt.Errorf("stat directory file: %w", err)
		}
		modTime = info.ModTime()
	}

	return &FS{
		pkg:     pkg,
		reader:  pkg.NewFileReader(),
		logger:  opts.Logger,
		modTime: modTime,
	}, nil
}

// Close releases archive handles. Files opened from fsys stop working.
func (fsys *FS) Close() error {
	return fsys.reader.Close()
}

// Open implements fs.FS.
func (fsys *FS) Open(name string) (fs.File, error) {
	node, err := fsys.lookup("open", name)
	if err != nil {
		return nil, err
	}

	switch n := node.(type) {
	case *vpk.Dir:
		return &openDir{fsys: fsys, dir: n, name: name}, nil
	case *vpk.File:
		return &openFile{fsys: fsys, file: n, name: name}, nil
	default:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
}

// Stat implements fs.StatFS.
func (fsys *FS) Stat(name string) (fs.FileInfo, error) {
	node, err := fsys.lookup("stat", name)
	if err != nil {
		return nil, err
	}

	return fsys.info(node, name), nil
}

// ReadDir implements fs.ReadDirFS. Entries are sorted by name.
func (fsys *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	node, err := fsys.lookup("readdir", name)
	if err != nil {
		return nil, err
	}

	dir, ok := node.(*vpk.Dir)
	if !ok {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: vpk.ErrNotDirectory}
	}

	return fsys.entries(dir), nil
}

// ReadFile implements fs.ReadFileFS.
func (fsys *FS) ReadFile(name string) ([]byte, error) {
	node, err := fsys.lookup("readfile", name)
	if err != nil {
		return nil, err
	}

	f, ok := node.(*vpk.File)
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}

	data := make([]byte, f.TotalSize())
	if _, err := fsys.reader.ReadAt(f, data, 0); err != nil && err != io.EOF {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
	}

	return data, nil
}

// lookup validates name and resolves it in the tree; "." is the root.
func (fsys *FS) lookup(op string, name string) (vpk.Node, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}

	if name == "." {
		return &fsys.pkg.Dir, nil
	}

	node, ok := fsys.pkg.Get(name)
	if !ok {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}

	return node, nil
}

// entries lists the children of dir as directory entries.
func (fsys *FS) entries(dir *vpk.Dir) []fs.DirEntry {
	children := dir.Children()
	out := make([]fs.DirEntry, len(children))
	for i, child := range children {
		out[i] = fs.FileInfoToDirEntry(fsys.info(child, child.Name()))
	}

	return out
}

// info builds file info for node reported under name.
func (fsys *FS) info(node vpk.Node, name string) *fileInfo {
	fi := &fileInfo{name: baseName(name), modTime: fsys.modTime, node: node}
	if f, ok := node.(*vpk.File); ok {
		fi.size = f.TotalSize()
	}

	return fi
}
