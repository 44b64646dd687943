// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

// Handler receives lifecycle, progress, and recoverable-error callbacks.
//
// Each error callback returns true to abort (fatal) or false to recover
// and continue. Handlers shared with a concurrent FileReader must be safe
// for concurrent use.
type Handler interface {
	// Begin is called once before any file is processed.
	Begin(pkg *Package)
	// End is called once after the traversal completes.
	End()
	// Extract is called before work begins on a file.
	Extract(path string)
	// Success is called after a file was processed without error.
	Success(path string)

	// DirError reports a failure creating an output directory.
	DirError(err error, path string) bool
	// FileError reports a failure creating or feeding a data handler.
	FileError(err error, path string) bool
	// ArchiveError reports a failure opening or reading an archive.
	ArchiveError(err error, path string) bool
	// FilterError reports a filter path that does not resolve.
	FilterError(err error, path string) bool
}

// FatalHandler ignores lifecycle events and treats every error as fatal.
// It is used when no handler is attached.
type FatalHandler struct{}

// Begin implements Handler.
func (FatalHandler) Begin(*Package) {}

// End implements Handler.
func (FatalHandler) End() {}

// Extract implements Handler.
func (FatalHandler) Extract(string) {}

// Success implements Handler.
func (FatalHandler) Success(string) {}

// DirError implements Handler.
func (FatalHandler) DirError(error, string) bool { return true }

// FileError implements Handler.
func (FatalHandler) FileError(error, string) bool { return true }

// ArchiveError implements Handler.
func (FatalHandler) ArchiveError(error, string) bool { return true }

// FilterError implements Handler.
func (FatalHandler) FilterError(error, string) bool { return true }

// fail routes err to the handler callback selected by kind. It returns a
// non-nil *Error when the handler decides the error is fatal.
func (p *Package) fail(kind ErrorKind, err error, path string) error {
	h := p.callbacks()

	var fatal bool
	switch kind {
	case ErrorKindDir:
		fatal = h.DirError(err, path)
	case ErrorKindFile:
		fatal = h.FileError(err, path)
	case ErrorKindArchive:
		fatal = h.ArchiveError(err, path)
	case ErrorKindFilter:
		fatal = h.FilterError(err, path)
	default:
		fatal = true
	}

	if !fatal {
		return nil
	}

	return &Error{Kind: kind, Path: path, Err: err}
}

// callbacks returns the attached handler or FatalHandler.
func (p *Package) callbacks() Handler {
	if p.handler == nil {
		return FatalHandler{}
	}

	return p.handler
}
