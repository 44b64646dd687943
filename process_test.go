// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	"context"
	"errors"
	"hash/crc32"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/opencontainers/go-digest"
)

// recordedError is one error callback observed by recordingHandler.
type recordedError struct {
	err  error
	path string
	kind ErrorKind
}

// recordingHandler records every callback and answers errors with fatal.
type recordingHandler struct {
	extracted []string
	succeeded []string
	errs      []recordedError
	begun     int
	ended     int
	fatal     bool
	mu        sync.Mutex
}

func (h *recordingHandler) Begin(*Package) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.begun++
}

func (h *recordingHandler) End() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ended++
}

func (h *recordingHandler) Extract(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.extracted = append(h.extracted, path)
}

func (h *recordingHandler) Success(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.succeeded = append(h.succeeded, path)
}

func (h *recordingHandler) record(kind ErrorKind, err error, path string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, recordedError{kind: kind, err: err, path: path})
	return h.fatal
}

func (h *recordingHandler) DirError(err error, path string) bool {
	return h.record(ErrorKindDir, err, path)
}

func (h *recordingHandler) FileError(err error, path string) bool {
	return h.record(ErrorKindFile, err, path)
}

func (h *recordingHandler) ArchiveError(err error, path string) bool {
	return h.record(ErrorKindArchive, err, path)
}

func (h *recordingHandler) FilterError(err error, path string) bool {
	return h.record(ErrorKindFilter, err, path)
}

func crc32IEEE(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// writeHelloPackage writes "a_dir.vpk" with a/hello.txt whose payload is
// "HI" preloaded plus "ALL" at offset 0 of a_000.vpk.
func writeHelloPackage(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	index := buildIndex([]manualEntry{{
		typ:     "txt",
		dir:     "a",
		base:    "hello",
		preload: []byte("HI"),
		crc:     crc32IEEE([]byte("HIALL")),
		index:   0,
		offset:  0,
		size:    3,
	}})

	writeTestFile(t, dir, "a_000.vpk", []byte("ALL"))
	return writeTestFile(t, dir, "a_dir.vpk", buildDirFile(Version1, index, nil))
}

func TestHelloPackage_ListExtractCheck(t *testing.T) {
	t.Parallel()

	pkg, err := Open(writeHelloPackage(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if got := pkg.List(); !slices.Equal(got, []string{"a/hello.txt"}) {
		t.Fatalf("List=%q", got)
	}
	if got := pkg.Indices(); !slices.Equal(got, []uint16{0}) {
		t.Fatalf("Indices=%v", got)
	}

	dest := t.TempDir()
	if err := pkg.Extract(t.Context(), dest, ExtractOptions{Check: true}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "a", "hello.txt"))
	if err != nil {
		t.Fatalf("read extracted: %v", err)
	}
	if string(data) != "HIALL" {
		t.Fatalf("extracted=%q, want HIALL", data)
	}

	if err := pkg.Check(t.Context()); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestProcess_CallbackOrder(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	pkg, err := OpenWithOptions(writeHelloPackage(t), Options{Handler: h})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := pkg.Check(t.Context()); err != nil {
		t.Fatalf("Check: %v", err)
	}

	if h.begun != 1 || h.ended != 1 {
		t.Fatalf("Begin=%d End=%d, want 1 1", h.begun, h.ended)
	}
	if !slices.Equal(h.extracted, []string{"a/hello.txt"}) || !slices.Equal(h.succeeded, []string{"a/hello.txt"}) {
		t.Fatalf("extracted=%q succeeded=%q", h.extracted, h.succeeded)
	}
	if len(h.errs) != 0 {
		t.Fatalf("unexpected errors %+v", h.errs)
	}
}

func TestCheck_ArchiveByteFlip(t *testing.T) {
	t.Parallel()

	dirPath := writeHelloPackage(t)
	if err := os.WriteFile(filepath.Join(filepath.Dir(dirPath), "a_000.vpk"), []byte("ALX"), 0o644); err != nil {
		t.Fatal(err)
	}

	pkg, err := Open(dirPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	err = pkg.Check(t.Context())
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}

	var vpkErr *Error
	if !errors.As(err, &vpkErr) || vpkErr.Kind != ErrorKindFile || vpkErr.Path != "a/hello.txt" {
		t.Fatalf("expected file *Error for a/hello.txt, got %#v", err)
	}
}

func TestCheck_PreloadByteFlipRecovered(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	pkg, err := OpenWithOptions(writeHelloPackage(t), Options{Handler: h})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	node, _ := pkg.Get("a/hello.txt")
	node.(*File).Preload[0] ^= 0x01

	if err := pkg.Check(t.Context()); err != nil {
		t.Fatalf("recovered Check returned %v", err)
	}
	if len(h.errs) != 1 || h.errs[0].kind != ErrorKindFile || !errors.Is(h.errs[0].err, ErrChecksumMismatch) {
		t.Fatalf("errors=%+v, want one checksum mismatch", h.errs)
	}
	if len(h.succeeded) != 0 {
		t.Fatalf("succeeded=%q, want none", h.succeeded)
	}
	if h.ended != 1 {
		t.Fatalf("End=%d, want 1", h.ended)
	}
}

func TestProcess_MissingArchiveReportedOnce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	index := buildIndex([]manualEntry{
		{typ: "txt", dir: "a", base: "one", index: 5, size: 4},
		{typ: "txt", dir: "a", base: "two", index: 5, offset: 4, size: 4},
		{typ: "txt", dir: "a", base: "zero", crc: crc32IEEE(nil)},
	})
	path := writeTestFile(t, dir, "m_dir.vpk", buildDirFile(Version2, index, nil))

	h := &recordingHandler{}
	pkg, err := OpenWithOptions(path, Options{Handler: h})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := pkg.Check(t.Context()); err != nil {
		t.Fatalf("Check: %v", err)
	}

	if len(h.errs) != 1 {
		t.Fatalf("errors=%+v, want exactly one", h.errs)
	}
	if h.errs[0].kind != ErrorKindArchive || !errors.Is(h.errs[0].err, ErrArchiveMissing) {
		t.Fatalf("error=%+v, want archive missing", h.errs[0])
	}
	if h.errs[0].path != filepath.Join(dir, "m_005.vpk") {
		t.Fatalf("error path=%q", h.errs[0].path)
	}
	if !slices.Equal(h.succeeded, []string{"a/zero.txt"}) {
		t.Fatalf("succeeded=%q, want only the empty file", h.succeeded)
	}
	if len(h.extracted) != 3 {
		t.Fatalf("extracted=%q, want all three", h.extracted)
	}
}

func TestProcess_MissingArchiveFatalByDefault(t *testing.T) {
	t.Parallel()

	index := buildIndex([]manualEntry{{typ: "txt", dir: "a", base: "one", index: 1, size: 4}})
	path := writeTestFile(t, t.TempDir(), "m_dir.vpk", buildDirFile(Version1, index, nil))

	pkg, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	err = pkg.Check(t.Context())
	var vpkErr *Error
	if !errors.As(err, &vpkErr) || vpkErr.Kind != ErrorKindArchive {
		t.Fatalf("expected archive *Error, got %v", err)
	}
}

func TestProcess_ShortArchiveRead(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	index := buildIndex([]manualEntry{{typ: "txt", dir: "a", base: "one", index: 0, size: 10}})
	writeTestFile(t, dir, "s_000.vpk", []byte("short"))
	path := writeTestFile(t, dir, "s_dir.vpk", buildDirFile(Version1, index, nil))

	h := &recordingHandler{}
	pkg, err := OpenWithOptions(path, Options{Handler: h})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := pkg.Check(t.Context()); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(h.errs) != 1 || h.errs[0].kind != ErrorKindArchive || !errors.Is(h.errs[0].err, ErrUnexpectedEOF) {
		t.Fatalf("errors=%+v, want one archive read error", h.errs)
	}
}

func TestExtract_DirError(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	pkg, err := OpenWithOptions(writeHelloPackage(t), Options{Handler: h})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	dest := t.TempDir()
	blocker := writeTestFile(t, dest, "a", []byte("not a dir"))

	if err := pkg.Extract(t.Context(), dest, ExtractOptions{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(h.errs) != 1 || h.errs[0].kind != ErrorKindDir || h.errs[0].path != blocker {
		t.Fatalf("errors=%+v, want one dir error for %s", h.errs, blocker)
	}

	var dirErr *CreateDirError
	if !errors.As(h.errs[0].err, &dirErr) {
		t.Fatalf("error %v is not *CreateDirError", h.errs[0].err)
	}
}

func TestExtract_RejectsTraversal(t *testing.T) {
	t.Parallel()

	index := buildIndex([]manualEntry{{typ: "txt", dir: "..", base: "evil", crc: crc32IEEE(nil)}})
	path := writeTestFile(t, t.TempDir(), "e_dir.vpk", buildDirFile(Version1, index, nil))

	h := &recordingHandler{}
	pkg, err := OpenWithOptions(path, Options{Handler: h})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "out")
	if err := pkg.Extract(t.Context(), dest, ExtractOptions{}); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(h.errs) != 1 || !errors.Is(h.errs[0].err, ErrInvalidExtractPath) {
		t.Fatalf("errors=%+v, want invalid extract path", h.errs)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dest), "evil.txt")); !os.IsNotExist(err) {
		t.Fatalf("traversal target exists: %v", err)
	}
}

func TestExtract_CreateOnlyKeepsExisting(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	pkg, err := OpenWithOptions(writeHelloPackage(t), Options{Handler: h})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	dest := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dest, "a"), 0o750); err != nil {
		t.Fatal(err)
	}
	existing := writeTestFile(t, filepath.Join(dest, "a"), "hello.txt", []byte("old"))

	if err := pkg.Extract(t.Context(), dest, ExtractOptions{FileMode: ExtractFileModeCreateOnly}); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(h.errs) != 1 || !errors.Is(h.errs[0].err, os.ErrExist) {
		t.Fatalf("errors=%+v, want one exist error", h.errs)
	}

	data, _ := os.ReadFile(existing)
	if string(data) != "old" {
		t.Fatalf("existing file overwritten: %q", data)
	}
}

func TestProcess_ContextCanceled(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	pkg, err := OpenWithOptions(writeHelloPackage(t), Options{Handler: h})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if err := pkg.Check(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if h.ended != 0 {
		t.Fatalf("End=%d after cancel, want 0", h.ended)
	}
}

func TestProcess_Digest(t *testing.T) {
	t.Parallel()

	pkg, err := Open(writeHelloPackage(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	got := make(map[string]digest.Digest)
	err = pkg.Process(t.Context(), DigestDataHandlerFactory{
		OnDigest: func(path string, d digest.Digest) { got[path] = d },
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	want := digest.FromBytes([]byte("HIALL"))
	if got["a/hello.txt"] != want {
		t.Fatalf("digest=%s, want %s", got["a/hello.txt"], want)
	}
}

func TestProcess_DirFilePayload(t *testing.T) {
	t.Parallel()

	index := buildIndex([]manualEntry{
		{typ: "txt", dir: "d", base: "first", index: DirArchiveIndex, offset: 0, size: 3, crc: crc32IEEE([]byte("abc"))},
		{typ: "txt", dir: "d", base: "second", index: DirArchiveIndex, offset: 3, size: 2, preload: []byte("p"), crc: crc32IEEE([]byte("pde"))},
	})
	path := writeTestFile(t, t.TempDir(), "inline_dir.vpk", buildDirFile(Version2, index, []byte("abcde")))

	pkg, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := pkg.Check(t.Context()); err != nil {
		t.Fatalf("Check: %v", err)
	}
}
