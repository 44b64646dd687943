// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Package is the root of a parsed VPK tree plus archive metadata.
// It owns no open file handles; those belong to a processing run or FileReader.
type Package struct {
	Dir

	handler Handler
	logger  *slog.Logger
	// srcDir is the absolute directory holding the directory file and archives.
	srcDir string
	// name is the archive base name without "_dir.vpk".
	name string
	// dirPath is the directory file path; empty when read from a stream.
	dirPath string

	// Version is the detected format revision.
	Version Version
	// HeaderSize is the byte length of the header preceding the index.
	HeaderSize uint32
	// IndexSize is the declared index length (zero for Version0).
	IndexSize uint32
	// DataOffset is where directory-file payload data begins.
	DataOffset uint32
	// FooterOffset is a reserved Version2 header field.
	FooterOffset uint32
	// FooterSize is a reserved Version2 header field.
	FooterSize uint32
}

// FileEntry pairs a file node with its full slash-separated path.
type FileEntry struct {
	File *File
	Path string
}

// Open reads the directory file at path.
func Open(path string) (*Package, error) {
	return OpenWithOptions(path, Options{})
}

// OpenWithOptions reads the directory file at path using explicit options.
// The base name is derived by stripping "_dir.vpk"; other names are reported
// through Handler.ArchiveError and, when recovered, used whole.
func OpenWithOptions(path string, opts Options) (*Package, error) {
	opts.applyDefaults()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	p := newPackage(opts)
	p.srcDir = filepath.Dir(abs)
	p.dirPath = abs

	fileName := filepath.Base(abs)
	if len(fileName) < len(DirSuffix) || !strings.EqualFold(fileName[len(fileName)-len(DirSuffix):], DirSuffix) {
		if err := p.fail(ErrorKindArchive, ErrInvalidDirName, path); err != nil {
			return nil, err
		}

		p.name = fileName
	} else {
		p.name = fileName[:len(fileName)-len(DirSuffix)]
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("open VPK: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := p.read(NewByteReader(f)); err != nil {
		return nil, err
	}

	return p, nil
}

// ReadPackage parses a directory file from r. srcDir and name locate the
// numbered archives; directory-file payloads are unavailable for stream input.
func ReadPackage(r io.Reader, srcDir string, name string, opts Options) (*Package, error) {
	opts.applyDefaults()

	abs, err := filepath.Abs(srcDir)
	if err != nil {
		return nil, fmt.Errorf("resolve source dir: %w", err)
	}

	p := newPackage(opts)
	p.srcDir = abs
	p.name = name
	if f, ok := r.(*os.File); ok && f != os.Stdin {
		p.dirPath = f.Name()
	}

	if err := p.read(NewByteReader(r)); err != nil {
		return nil, err
	}

	return p, nil
}

// newPackage creates an empty package with defaulted options.
func newPackage(opts Options) *Package {
	return &Package{
		Dir:     Dir{children: make(map[string]Node)},
		handler: opts.Handler,
		logger:  opts.Logger,
	}
}

// log returns the package logger or slog.Default.
func (p *Package) log() *slog.Logger {
	if p.logger == nil {
		return slog.Default()
	}

	return p.logger
}

// SrcDir returns the directory holding the package files.
func (p *Package) SrcDir() string { return p.srcDir }

// ArchiveName returns the base name shared by the directory file and archives.
func (p *Package) ArchiveName() string { return p.name }

// DirPath returns the directory file path; empty for stream input.
func (p *Package) DirPath() string { return p.dirPath }

// Handler returns the attached callback handler.
func (p *Package) Handler() Handler { return p.handler }

// SetHandler attaches h; nil restores the always-fatal handler.
func (p *Package) SetHandler(h Handler) {
	if h == nil {
		h = FatalHandler{}
	}

	p.handler = h
}

// ArchivePath returns the file holding archive bytes for index.
func (p *Package) ArchivePath(index uint16) string {
	if index == DirArchiveIndex {
		return p.dirPath
	}

	return filepath.Join(p.srcDir, fmt.Sprintf("%s_%03d.vpk", p.name, index))
}

// MkPath returns the directory at path, creating missing directories.
// A single space denotes the root, matching Valve's convention for top-level
// files, rather than a directory literally named " ".
func (p *Package) MkPath(path string) (*Dir, error) {
	if path == " " {
		return &p.Dir, nil
	}

	segments := splitPath(path)
	if len(segments) == 0 {
		return nil, ErrEmptyPath
	}

	dir := &p.Dir
	for i, name := range segments {
		child, ok := dir.children[name]
		if !ok {
			next := newDir(name)
			dir.add(next)
			dir = next
			continue
		}

		next, isDir := child.(*Dir)
		if !isDir {
			return nil, fmt.Errorf("%w: %s", ErrNotDirectory, strings.Join(segments[:i+1], "/"))
		}

		dir = next
	}

	return dir, nil
}

// Get resolves path to a node. "/" resolves to the root; an empty path or
// any missing segment yields false.
func (p *Package) Get(path string) (Node, bool) {
	if path == "" {
		return nil, false
	}

	var node Node = &p.Dir
	for _, name := range splitPath(path) {
		dir, ok := node.(*Dir)
		if !ok {
			return nil, false
		}

		child, ok := dir.children[name]
		if !ok {
			return nil, false
		}

		node = child
	}

	return node, true
}

// Filter prunes the tree to the requested paths. Paths that do not resolve
// are reported through Handler.FilterError; directories left empty are removed.
// When no path resolves the tree is left unchanged.
func (p *Package) Filter(paths []string) error {
	keep := make(map[Node]struct{}, len(paths))
	for _, path := range paths {
		node, ok := p.Get(path)
		if !ok {
			if err := p.fail(ErrorKindFilter, ErrNotFound, path); err != nil {
				return err
			}

			continue
		}

		keep[node] = struct{}{}
	}

	// Nothing resolved, or the root was requested: keep the tree whole.
	if _, ok := keep[&p.Dir]; ok || len(keep) == 0 {
		return nil
	}

	pruneDir(&p.Dir, func(n Node, _ string) bool {
		_, ok := keep[n]
		return ok
	}, "")
	return nil
}

// pruneDir removes children not accepted by keep; kept directories are retained whole.
func pruneDir(dir *Dir, keep func(n Node, path string) bool, prefix string) {
	for _, name := range dir.Names() {
		child := dir.children[name]
		childPath := joinPath(prefix, name)
		if keep(child, childPath) {
			continue
		}

		switch n := child.(type) {
		case *Dir:
			pruneDir(n, keep, childPath)
			if n.Len() == 0 {
				dir.remove(name)
			}
		case *File:
			dir.remove(name)
		}
	}
}

// List returns all file paths in depth-first, name-sorted order.
func (p *Package) List() []string {
	out := make([]string, 0, p.FileCount())
	_ = p.Walk(func(path string, _ *File) error {
		out = append(out, path)
		return nil
	})

	return out
}

// WriteList writes one file path per line in List order.
func (p *Package) WriteList(w io.Writer) error {
	bw := bufio.NewWriter(w)
	err := p.Walk(func(path string, _ *File) error {
		_, err := fmt.Fprintln(bw, path)
		return err
	})
	if err != nil {
		return err
	}

	return bw.Flush()
}

// Walk visits every file in depth-first, name-sorted order.
// A non-nil error from fn stops the walk and is returned.
func (p *Package) Walk(fn func(path string, f *File) error) error {
	return walkDir(&p.Dir, "", fn)
}

// walkDir visits files below dir with path prefix.
func walkDir(dir *Dir, prefix string, fn func(path string, f *File) error) error {
	for _, name := range dir.Names() {
		path := joinPath(prefix, name)
		switch n := dir.children[name].(type) {
		case *Dir:
			if err := walkDir(n, path, fn); err != nil {
				return err
			}
		case *File:
			if err := fn(path, n); err != nil {
				return err
			}
		}
	}

	return nil
}

// Files returns all file entries in List order.
func (p *Package) Files() []FileEntry {
	out := make([]FileEntry, 0, p.FileCount())
	_ = p.Walk(func(path string, f *File) error {
		out = append(out, FileEntry{Path: path, File: f})
		return nil
	})

	return out
}

// FileCount returns the number of files in the tree.
func (p *Package) FileCount() int {
	return countFiles(&p.Dir)
}

// countFiles counts files below dir.
func countFiles(dir *Dir) int {
	n := 0
	for _, child := range dir.children {
		switch c := child.(type) {
		case *Dir:
			n += countFiles(c)
		case *File:
			n++
		}
	}

	return n
}

// Indices returns sorted archive indices referenced by files with archive bytes.
func (p *Package) Indices() []uint16 {
	seen := make(map[uint16]struct{})
	_ = p.Walk(func(_ string, f *File) error {
		if f.Size > 0 {
			seen[f.Index] = struct{}{}
		}
		return nil
	})

	out := make([]uint16, 0, len(seen))
	for index := range seen {
		out = append(out, index)
	}

	slices.Sort(out)
	return out
}

// splitPath splits a slash-separated path, dropping empty segments.
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}

	return out
}

// joinPath joins a prefix and a name with "/".
func joinPath(prefix string, name string) string {
	if prefix == "" {
		return name
	}

	return prefix + "/" + name
}
