// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

// Package console reports package processing progress through slog.
package console

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/woozymasta/vpk"
)

var _ vpk.Handler = (*Reporter)(nil)

// Reporter implements vpk.Handler. It logs every file with a percentage
// progress, counts successes and failures, and decides error fatality from
// a single stop flag.
//
// A file that receives Extract but neither Success nor an error callback
// (its archive was reported missing earlier) counts as failed.
type Reporter struct {
	logger *slog.Logger
	// pending is the file between Extract and its outcome.
	pending   string
	total     int
	succeeded int
	failed    int
	errors    int
	mu        sync.Mutex
	stop      bool
}

// New creates a reporter logging to logger; nil means slog.Default().
// With stop set every error callback aborts processing.
func New(logger *slog.Logger, stop bool) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Reporter{logger: logger, stop: stop}
}

// Begin implements vpk.Handler.
func (r *Reporter) Begin(pkg *vpk.Package) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = pkg.FileCount()
	r.logger.Info("processing package", "name", pkg.ArchiveName(), "version", pkg.Version, "files", r.total)
}

// End implements vpk.Handler.
func (r *Reporter) End() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settle()
	r.logger.Info(fmt.Sprintf("%d successful, %d failed", r.succeeded, r.failed))
}

// Extract implements vpk.Handler.
func (r *Reporter) Extract(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settle()
	r.pending = path
}

// Success implements vpk.Handler.
func (r *Reporter) Success(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending = ""
	r.succeeded++
	r.logger.Info("ok", "progress", r.progress(), "path", path)
}

// DirError implements vpk.Handler.
func (r *Reporter) DirError(err error, path string) bool {
	return r.report("error creating directory", err, path)
}

// FileError implements vpk.Handler.
func (r *Reporter) FileError(err error, path string) bool {
	return r.report("error processing file", err, path)
}

// ArchiveError implements vpk.Handler.
func (r *Reporter) ArchiveError(err error, path string) bool {
	return r.report("error reading archive", err, path)
}

// FilterError implements vpk.Handler.
func (r *Reporter) FilterError(err error, path string) bool {
	return r.report("error reading entry", err, path)
}

// Succeeded returns the number of files processed without error.
func (r *Reporter) Succeeded() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.succeeded
}

// Failed returns the number of files that did not succeed.
func (r *Reporter) Failed() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.failed
}

// Errors returns the number of error callbacks received.
func (r *Reporter) Errors() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.errors
}

// OK reports whether no error was seen and no file failed.
func (r *Reporter) OK() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.errors == 0 && r.failed == 0 && r.pending == ""
}

// report logs an error, fails the pending file, and returns the stop flag.
func (r *Reporter) report(msg string, err error, path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors++
	if r.pending != "" {
		r.pending = ""
		r.failed++
	}

	level := slog.LevelError
	if !r.stop {
		level = slog.LevelWarn
	}
	r.logger.Log(context.Background(), level, msg, "progress", r.progress(), "path", path, "error", err)

	return r.stop
}

// settle counts a pending file that ended silently as failed.
func (r *Reporter) settle() {
	if r.pending == "" {
		return
	}

	r.logger.Warn("skipped", "progress", r.progress(), "path", r.pending)
	r.pending = ""
	r.failed++
}

// progress formats processed/total as a percentage.
func (r *Reporter) progress() string {
	if r.total == 0 {
		return "100%"
	}

	return fmt.Sprintf("%3.0f%%", 100*float64(r.succeeded+r.failed)/float64(r.total))
}
