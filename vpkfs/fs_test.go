// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpkfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/vpk"
	"github.com/woozymasta/vpk/internal/testutil"
)

func newTestFS(t *testing.T) (*FS, string) {
	t.Helper()

	p := testutil.Hello()
	p.Entries = append(p.Entries,
		testutil.TestEntry{Type: "vmt", Dir: "materials/models", Base: "wood", Preload: []byte("wood"), CRC: testutil.CRC([]byte("wood"))},
		testutil.TestEntry{Type: " ", Dir: " ", Base: "README", Index: vpk.DirArchiveIndex, Size: 6, CRC: testutil.CRC([]byte("readme"))},
	)
	p.DirData = []byte("readme")

	dirPath := p.Write(t, t.TempDir())
	pkg, err := vpk.Open(dirPath)
	require.NoError(t, err)

	fsys, err := New(pkg, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = fsys.Close() })

	return fsys, dirPath
}

func TestFSConformance(t *testing.T) {
	t.Parallel()

	fsys, _ := newTestFS(t)
	require.NoError(t, fstest.TestFS(fsys, "README", "a/hello.txt", "materials/models/wood.vmt"))
}

func TestFSReadFile(t *testing.T) {
	t.Parallel()

	fsys, _ := newTestFS(t)

	data, err := fs.ReadFile(fsys, "a/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "HIALL", string(data))

	data, err = fsys.ReadFile("README")
	require.NoError(t, err)
	assert.Equal(t, "readme", string(data))

	_, err = fsys.ReadFile("a")
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestFSStat(t *testing.T) {
	t.Parallel()

	fsys, dirPath := newTestFS(t)
	dirInfo, err := os.Stat(dirPath)
	require.NoError(t, err)

	info, err := fsys.Stat("a/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", info.Name())
	assert.Equal(t, int64(5), info.Size())
	assert.Equal(t, FileMode, info.Mode())
	assert.False(t, info.IsDir())
	assert.True(t, dirInfo.ModTime().Equal(info.ModTime()))

	root, err := fsys.Stat(".")
	require.NoError(t, err)
	assert.Equal(t, ".", root.Name())
	assert.Equal(t, DirMode, root.Mode())
	assert.True(t, root.IsDir())

	_, err = fsys.Stat("nope")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = fsys.Stat("/a")
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestFSReadDir(t *testing.T) {
	t.Parallel()

	fsys, _ := newTestFS(t)

	entries, err := fsys.ReadDir(".")
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	assert.Equal(t, []string{"README", "a", "materials"}, names)
	assert.False(t, entries[0].IsDir())
	assert.True(t, entries[1].IsDir())

	_, err = fsys.ReadDir("a/hello.txt")
	assert.ErrorIs(t, err, vpk.ErrNotDirectory)
}

func TestOpenFileSeekAndReadAt(t *testing.T) {
	t.Parallel()

	fsys, _ := newTestFS(t)

	f, err := fsys.Open("a/hello.txt")
	require.NoError(t, err)

	seeker, ok := f.(io.ReadSeeker)
	require.True(t, ok)

	pos, err := seeker.Seek(-3, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos)

	rest, err := io.ReadAll(seeker)
	require.NoError(t, err)
	assert.Equal(t, "ALL", string(rest))

	ra, ok := f.(io.ReaderAt)
	require.True(t, ok)
	buf := make([]byte, 2)
	n, err := ra.ReadAt(buf, 1)
	require.NoError(t, err)
	assert.Equal(t, "IA", string(buf[:n]))

	require.NoError(t, f.Close())
	_, err = f.Read(buf)
	assert.ErrorIs(t, err, fs.ErrClosed)
}

func TestNewModTimeOverride(t *testing.T) {
	t.Parallel()

	pkg, err := vpk.Open(testutil.Hello().Write(t, t.TempDir()))
	require.NoError(t, err)

	at := time.Date(2011, 5, 1, 0, 0, 0, 0, time.UTC)
	fsys, err := New(pkg, Options{ModTime: at})
	require.NoError(t, err)
	defer func() { _ = fsys.Close() }()

	info, err := fsys.Stat("a")
	require.NoError(t, err)
	assert.Equal(t, at, info.ModTime())
}

func TestNewNilPackage(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Options{})
	assert.True(t, errors.Is(err, vpk.ErrNilPackage))
}
