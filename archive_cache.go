// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// archiveState is the cached state of one archive index.
// An index without a slot has not been opened yet.
type archiveState int

const (
	// archiveOpen means the handle is open and reusable.
	archiveOpen archiveState = iota + 1
	// archiveMissing means opening failed and was recovered; never retried.
	archiveMissing
)

// archiveSlot holds the cached state for one archive index.
type archiveSlot struct {
	file  *os.File
	state archiveState
}

// archiveCache lazily opens archives by index and remembers failures.
// It is safe for concurrent use; concurrent first opens of one index share a single attempt.
type archiveCache struct {
	pkg   *Package
	slots map[uint16]archiveSlot
	group singleflight.Group
	mu    sync.Mutex
}

// newArchiveCache creates an empty cache for pkg.
func newArchiveCache(pkg *Package) *archiveCache {
	return &archiveCache{
		pkg:   pkg,
		slots: make(map[uint16]archiveSlot),
	}
}

// get returns the open archive for index. ok is false when the archive is
// known missing and the caller should skip it. err is non-nil only when the
// handler declared the open failure fatal.
func (c *archiveCache) get(index uint16) (*os.File, bool, error) {
	if file, state, found := c.lookup(index); found {
		return file, state == archiveOpen, nil
	}

	v, err, _ := c.group.Do(strconv.Itoa(int(index)), func() (any, error) {
		if file, state, found := c.lookup(index); found {
			return archiveSlot{file: file, state: state}, nil
		}

		path := c.pkg.ArchivePath(index)
		file, openErr := c.open(index, path)
		if openErr == nil {
			c.pkg.log().Debug("opened archive", "index", index, "path", path)
			slot := archiveSlot{file: file, state: archiveOpen}
			c.store(index, slot)
			return slot, nil
		}

		if err := c.pkg.fail(ErrorKindArchive, openErr, path); err != nil {
			return archiveSlot{}, err
		}

		slot := archiveSlot{state: archiveMissing}
		c.store(index, slot)
		return slot, nil
	})
	if err != nil {
		return nil, false, err
	}

	slot := v.(archiveSlot) //nolint:forcetypeassert // group returns only archiveSlot
	return slot.file, slot.state == archiveOpen, nil
}

// open opens the archive file for index.
func (c *archiveCache) open(index uint16, path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: directory file is not available for stream input", ErrArchiveMissing)
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrArchiveMissing, err)
		}

		return nil, fmt.Errorf("open archive %d: %w", index, err)
	}

	return file, nil
}

// lookup returns the cached slot for index.
func (c *archiveCache) lookup(index uint16) (*os.File, archiveState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, ok := c.slots[index]
	return slot.file, slot.state, ok
}

// store records slot for index.
func (c *archiveCache) store(index uint16, slot archiveSlot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slots[index] = slot
}

// Close closes all open archives and resets the cache.
func (c *archiveCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for index, slot := range c.slots {
		if slot.file == nil {
			continue
		}

		if err := slot.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close archive %d: %w", index, err))
		}
	}

	c.slots = make(map[uint16]archiveSlot)
	return errors.Join(errs...)
}
