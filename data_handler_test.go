// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
)

func TestCheckingDataHandler(t *testing.T) {
	t.Parallel()

	h := NewCheckingDataHandler("x", crc32IEEE([]byte("hello world")))
	for _, chunk := range []string{"hello", " ", "world"} {
		if err := h.Process([]byte(chunk)); err != nil {
			t.Fatalf("Process: %v", err)
		}
	}
	if err := h.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	bad := NewCheckingDataHandler("x", 0xDEADBEEF)
	if err := bad.Finish(); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestDigestDataHandlerFactory_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := DigestDataHandlerFactory{Algorithm: digest.Algorithm("md4")}.Create("x", 0)
	if !errors.Is(err, digest.ErrDigestUnsupported) {
		t.Fatalf("expected ErrDigestUnsupported, got %v", err)
	}
}

func TestFileDataHandler_AbandonClosesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "out.bin")
	h, err := NewFileDataHandler(path, 0, false, ExtractFileModeAuto)
	if err != nil {
		t.Fatalf("NewFileDataHandler: %v", err)
	}

	if err := h.Process([]byte("abc")); err != nil {
		t.Fatalf("Process: %v", err)
	}

	abandon(h)
	if err := h.Process([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after abandon, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "abc" {
		t.Fatalf("file=%q,%v", data, err)
	}
}

func TestFileDataHandler_CheckOnFinish(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.bin")
	h, err := NewFileDataHandler(path, 0x12345678, true, ExtractFileModeTruncate)
	if err != nil {
		t.Fatalf("NewFileDataHandler: %v", err)
	}

	if err := h.Process([]byte("abc")); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if err := h.Finish(); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}
