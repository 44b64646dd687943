// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package coverage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/woozymasta/vpk"
)

// DumpOptions configures DumpGaps.
type DumpOptions struct {
	// Compress writes zstd-compressed ".zst" files.
	Compress bool
}

// DumpGaps writes every gap of reports below destDir as
// "<name>_<label>_<from>-<to>.<ext>", where ext is sniffed from the gap
// content. Reports with Err set are skipped. It returns the written paths.
func DumpGaps(ctx context.Context, pkg *vpk.Package, reports []Report, destDir string, opts DumpOptions) ([]string, error) {
	if pkg == nil {
		return nil, vpk.ErrNilPackage
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return nil, &vpk.CreateDirError{Path: destDir, Err: err}
	}

	var enc *zstd.Encoder
	if opts.Compress {
		var err error
		enc, err = zstd.NewWriter(io.Discard, zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		defer func() { _ = enc.Close() }()
	}

	buf := make([]byte, vpk.IOBufferSize)
	var written []string
	for _, r := range reports {
		if r.Err != nil || r.Gaps.Empty() {
			continue
		}

		paths, err := dumpArchive(ctx, pkg, r, destDir, enc, buf)
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}

	return written, nil
}

// dumpArchive writes the gaps of one archive.
func dumpArchive(ctx context.Context, pkg *vpk.Package, r Report, destDir string, enc *zstd.Encoder, buf []byte) ([]string, error) {
	archive, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", r.Path, err)
	}
	defer func() { _ = archive.Close() }()

	var written []string
	for _, gap := range r.Gaps.Slices() {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		section := io.NewSectionReader(archive, int64(gap.Offset), int64(gap.Size)) //nolint:gosec // gaps lie within the archive size

		head := make([]byte, min(uint64(MaxMagicSize), gap.Size))
		if _, err := section.ReadAt(head, 0); err != nil && !errors.Is(err, io.EOF) {
			return written, fmt.Errorf("read %s at %d: %w", r.Path, gap.Offset, err)
		}

		name := fmt.Sprintf("%s_%s_%d-%d.%s", pkg.ArchiveName(), r.Label(), gap.Offset, gap.End(), SniffExtension(head))
		if enc != nil {
			name += ".zst"
		}

		path := filepath.Join(destDir, name)
		if err := writeGap(path, section, enc, buf); err != nil {
			return written, err
		}

		written = append(written, path)
	}

	return written, nil
}

// writeGap copies src to path, through enc when set.
func writeGap(path string, src io.Reader, enc *zstd.Encoder, buf []byte) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	var w io.Writer = out
	if enc != nil {
		enc.Reset(out)
		w = enc
	}

	_, err = io.CopyBuffer(w, src, buf)
	if err == nil && enc != nil {
		err = enc.Close()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
