// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Process streams every file's logical payload through handlers created by
// factory, in depth-first name order. Recoverable errors are routed through
// the attached Handler; the first fatal one aborts the run and is returned.
func (p *Package) Process(ctx context.Context, factory DataHandlerFactory) error {
	if p == nil {
		return ErrNilPackage
	}

	archives := newArchiveCache(p)
	defer func() {
		if err := archives.Close(); err != nil {
			p.log().Warn("close archives", "error", err)
		}
	}()

	buf := make([]byte, IOBufferSize)
	p.callbacks().Begin(p)

	err := p.Walk(func(path string, f *File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		return p.processFile(archives, factory, path, f, buf)
	})
	if err != nil {
		return err
	}

	p.callbacks().End()
	return nil
}

// Check verifies the CRC32 of every file.
func (p *Package) Check(ctx context.Context) error {
	return p.Process(ctx, CheckingDataHandlerFactory{})
}

// Extract writes every file below destDir, optionally verifying checksums.
func (p *Package) Extract(ctx context.Context, destDir string, opts ExtractOptions) error {
	opts.applyDefaults()

	return p.Process(ctx, FileDataHandlerFactory{
		DestDir:  destDir,
		FileMode: opts.FileMode,
		Check:    opts.Check,
	})
}

// processFile feeds one file through a fresh data handler. A nil return
// means the file succeeded or its error was recovered.
func (p *Package) processFile(archives *archiveCache, factory DataHandlerFactory, path string, f *File, buf []byte) error {
	p.callbacks().Extract(path)

	dh, err := factory.Create(path, f.CRC32)
	if err != nil {
		var dirErr *CreateDirError
		if errors.As(err, &dirErr) {
			return p.fail(ErrorKindDir, err, dirErr.Path)
		}

		return p.fail(ErrorKindFile, err, path)
	}

	if len(f.Preload) > 0 {
		if err := dh.Process(f.Preload); err != nil {
			abandon(dh)
			return p.fail(ErrorKindFile, err, path)
		}
	}

	if f.Size > 0 {
		archive, ok, err := archives.get(f.Index)
		if err != nil || !ok {
			abandon(dh)
			return err
		}

		section := io.NewSectionReader(archive, int64(f.Offset), int64(f.Size))
		for left := int64(f.Size); left > 0; {
			chunk := buf[:min(left, int64(len(buf)))]
			if _, err := io.ReadFull(section, chunk); err != nil {
				abandon(dh)
				readErr := fmt.Errorf("read %s at offset %d: %w", path, f.Offset, mapReadError(err))
				return p.fail(ErrorKindArchive, readErr, p.ArchivePath(f.Index))
			}

			if err := dh.Process(chunk); err != nil {
				abandon(dh)
				return p.fail(ErrorKindFile, err, path)
			}

			left -= int64(len(chunk))
		}
	}

	if err := dh.Finish(); err != nil {
		abandon(dh)
		return p.fail(ErrorKindFile, err, path)
	}

	p.callbacks().Success(path)
	return nil
}

// abandon releases a data handler that will not be finished.
func abandon(dh DataHandler) {
	if c, ok := dh.(io.Closer); ok {
		_ = c.Close()
	}
}
