// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	_ "crypto/sha256" // register digest.Canonical
	_ "crypto/sha512"
	"fmt"
	"hash"
	"hash/crc32"

	"github.com/opencontainers/go-digest"
)

// DataHandler consumes one file's logical payload.
// Process may be called zero or more times; Finish is called once on success.
// Handlers that also implement io.Closer are closed when processing is abandoned.
type DataHandler interface {
	Process(p []byte) error
	Finish() error
}

// DataHandlerFactory creates one DataHandler per file.
type DataHandlerFactory interface {
	Create(path string, crc32 uint32) (DataHandler, error)
}

// DataHandlerFactoryFunc adapts a function to DataHandlerFactory.
type DataHandlerFactoryFunc func(path string, crc32 uint32) (DataHandler, error)

// Create calls fn.
func (fn DataHandlerFactoryFunc) Create(path string, crc32 uint32) (DataHandler, error) {
	return fn(path, crc32)
}

// CheckingDataHandler accumulates a CRC32 and validates it in Finish.
type CheckingDataHandler struct {
	hash     hash.Hash32
	path     string
	expected uint32
}

// NewCheckingDataHandler creates a checking handler expecting crc.
func NewCheckingDataHandler(path string, crc uint32) *CheckingDataHandler {
	return &CheckingDataHandler{
		hash:     crc32.NewIEEE(),
		path:     path,
		expected: crc,
	}
}

// Process implements DataHandler.
func (h *CheckingDataHandler) Process(p []byte) error {
	_, err := h.hash.Write(p)
	return err
}

// Finish implements DataHandler and fails with ErrChecksumMismatch on mismatch.
func (h *CheckingDataHandler) Finish() error {
	if sum := h.hash.Sum32(); sum != h.expected {
		return fmt.Errorf("%w: expected 0x%08x, got 0x%08x", ErrChecksumMismatch, h.expected, sum)
	}

	return nil
}

// CheckingDataHandlerFactory creates CheckingDataHandler values.
type CheckingDataHandlerFactory struct{}

// Create implements DataHandlerFactory.
func (CheckingDataHandlerFactory) Create(path string, crc uint32) (DataHandler, error) {
	return NewCheckingDataHandler(path, crc), nil
}

// DigestDataHandler computes a content digest of the payload.
type DigestDataHandler struct {
	digester digest.Digester
	onDigest func(path string, d digest.Digest)
	path     string
}

// Process implements DataHandler.
func (h *DigestDataHandler) Process(p []byte) error {
	_, err := h.digester.Hash().Write(p)
	return err
}

// Finish implements DataHandler and reports the digest.
func (h *DigestDataHandler) Finish() error {
	if h.onDigest != nil {
		h.onDigest(h.path, h.digester.Digest())
	}

	return nil
}

// DigestDataHandlerFactory creates DigestDataHandler values.
type DigestDataHandlerFactory struct {
	// OnDigest receives each completed file digest.
	OnDigest func(path string, d digest.Digest)
	// Algorithm selects the digest algorithm; zero means digest.Canonical.
	Algorithm digest.Algorithm
}

// Create implements DataHandlerFactory.
func (f DigestDataHandlerFactory) Create(path string, _ uint32) (DataHandler, error) {
	alg := f.Algorithm
	if alg == "" {
		alg = digest.Canonical
	}

	if !alg.Available() {
		return nil, fmt.Errorf("digest algorithm %q: %w", alg, digest.ErrDigestUnsupported)
	}

	return &DigestDataHandler{
		digester: alg.Digester(),
		onDigest: f.OnDigest,
		path:     path,
	}, nil
}
