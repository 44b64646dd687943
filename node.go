// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	"slices"
)

// NodeKind discriminates tree nodes.
type NodeKind int

// Node kinds.
const (
	KindDir NodeKind = iota
	KindFile
)

// Node is a directory or file in the package tree.
// It is implemented only by *Dir and *File; use a type switch to branch.
type Node interface {
	// Name returns the single path segment of the node.
	Name() string
	// Kind reports whether the node is a directory or file.
	Kind() NodeKind

	node()
}

// Dir is a directory node owning its children by name.
type Dir struct {
	children map[string]Node
	name     string
	subdirs  int
}

// newDir creates an empty directory node.
func newDir(name string) *Dir {
	return &Dir{name: name, children: make(map[string]Node)}
}

// Name returns the directory name.
func (d *Dir) Name() string { return d.name }

// Kind returns KindDir.
func (d *Dir) Kind() NodeKind { return KindDir }

func (d *Dir) node() {}

// Child returns the child with the given name.
func (d *Dir) Child(name string) (Node, bool) {
	n, ok := d.children[name]
	return n, ok
}

// Children returns child nodes sorted by name.
func (d *Dir) Children() []Node {
	names := d.Names()
	out := make([]Node, len(names))
	for i, name := range names {
		out[i] = d.children[name]
	}

	return out
}

// Names returns child names in lexicographic order.
func (d *Dir) Names() []string {
	names := make([]string, 0, len(d.children))
	for name := range d.children {
		names = append(names, name)
	}

	slices.Sort(names)
	return names
}

// Len returns the number of immediate children.
func (d *Dir) Len() int { return len(d.children) }

// Subdirs returns the number of immediate child directories.
func (d *Dir) Subdirs() int { return d.subdirs }

// add inserts or replaces a child node.
func (d *Dir) add(n Node) {
	d.remove(n.Name())
	d.children[n.Name()] = n
	if n.Kind() == KindDir {
		d.subdirs++
	}
}

// remove deletes a child by name.
func (d *Dir) remove(name string) {
	old, ok := d.children[name]
	if !ok {
		return
	}

	if old.Kind() == KindDir {
		d.subdirs--
	}
	delete(d.children, name)
}

// File is a leaf node describing one packed payload.
type File struct {
	name string
	// Preload is the payload prefix stored inline in the index.
	Preload []byte
	// CRC32 is the IEEE checksum of Preload followed by the archive bytes.
	CRC32 uint32
	// Size is the number of bytes stored in the archive selected by Index.
	Size uint32
	// Offset is the absolute byte offset of the archive bytes.
	Offset uint32
	// Index selects the numbered archive; DirArchiveIndex means the directory file.
	Index uint16
}

// NewFile creates a detached file node.
func NewFile(name string) *File {
	return &File{name: name}
}

// Name returns the file name including its extension.
func (f *File) Name() string { return f.name }

// Kind returns KindFile.
func (f *File) Kind() NodeKind { return KindFile }

func (f *File) node() {}

// TotalSize returns the logical payload length.
func (f *File) TotalSize() int64 {
	return int64(len(f.Preload)) + int64(f.Size)
}

// InDirFile reports whether archive bytes live in the directory file.
func (f *File) InDirFile() bool {
	return f.Index == DirArchiveIndex
}
