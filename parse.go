// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// read parses header and index from r into p.
func (p *Package) read(r *ByteReader) error {
	if err := p.readHeader(r); err != nil {
		return err
	}

	p.HeaderSize = uint32(r.Pos()) //nolint:gosec // header is at most v2HeaderSize bytes
	p.DataOffset = p.IndexSize + p.HeaderSize

	dirfiles, err := p.readIndex(r)
	if err != nil {
		return err
	}

	end := r.Pos()
	switch p.Version {
	case Version0:
		if end > math.MaxUint32 {
			return fmt.Errorf("%w: index exceeds 4 GiB", ErrFileFormat)
		}
		p.DataOffset = uint32(end)
	case Version1:
		if end != int64(p.DataOffset) {
			mismatch := fmt.Errorf("%w: declared %d, parsed %d", ErrIndexSizeMismatch, p.DataOffset, end)
			if err := p.fail(ErrorKindArchive, mismatch, p.archiveLabel()); err != nil {
				return err
			}
		}
	}

	if err := resolveDataOffsets(dirfiles, p.DataOffset); err != nil {
		return err
	}

	p.log().Debug("parsed VPK index",
		"name", p.name,
		"version", p.Version,
		"header_size", p.HeaderSize,
		"index_size", p.IndexSize,
		"data_offset", p.DataOffset,
		"files", len(dirfiles),
	)

	return nil
}

// readHeader detects the format version and reads the versioned header.
// Sources without the magic word are Version0 and no bytes are consumed.
func (p *Package) readHeader(r *ByteReader) error {
	head, err := r.Peek(4)
	if err != nil && !errors.Is(err, ErrUnexpectedEOF) {
		return fmt.Errorf("read magic: %w", err)
	}

	if len(head) < 4 || binary.LittleEndian.Uint32(head) != Magic {
		p.Version = Version0
		return nil
	}

	if _, err := r.ReadLU32(); err != nil {
		return fmt.Errorf("read magic: %w", err)
	}

	version, err := r.ReadLU32()
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}

	indexSize, err := r.ReadLU32()
	if err != nil {
		return fmt.Errorf("read index size: %w", err)
	}

	p.Version = Version(version)
	p.IndexSize = indexSize

	switch p.Version {
	case Version1:
		return nil
	case Version2:
		var fields [4]uint32
		for i := range fields {
			if fields[i], err = r.ReadLU32(); err != nil {
				return fmt.Errorf("read v2 header: %w", err)
			}
		}

		p.FooterOffset = fields[0]
		p.FooterSize = fields[2]
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
}

// readIndex decodes the type / directory / file nesting and returns the files created.
func (p *Package) readIndex(r *ByteReader) ([]*File, error) {
	var dirfiles []*File

	for {
		typ, err := r.ReadCString()
		if err != nil {
			return nil, fmt.Errorf("read type: %w", err)
		}
		if typ == "" {
			return dirfiles, nil
		}

		for {
			dirPath, err := r.ReadCString()
			if err != nil {
				return nil, fmt.Errorf("read directory path: %w", err)
			}
			if dirPath == "" {
				break
			}

			dir, err := p.MkPath(dirPath)
			if err != nil {
				return nil, fmt.Errorf("directory %q: %w", dirPath, err)
			}

			for {
				base, err := r.ReadCString()
				if err != nil {
					return nil, fmt.Errorf("read file name: %w", err)
				}
				if base == "" {
					break
				}

				name := entryName(base, typ)
				f, err := readFileRecord(r, name)
				if err != nil {
					return nil, fmt.Errorf("file %s/%s: %w", dirPath, name, err)
				}

				dir.add(f)
				dirfiles = append(dirfiles, f)
			}
		}
	}
}

// readFileRecord reads one fixed file record followed by its preload bytes.
func readFileRecord(r *ByteReader, name string) (*File, error) {
	var fields [18]byte
	if err := r.ReadFull(fields[:]); err != nil {
		return nil, err
	}

	f := NewFile(name)
	f.CRC32 = binary.LittleEndian.Uint32(fields[0:4])
	preloadLen := binary.LittleEndian.Uint16(fields[4:6])
	f.Index = binary.LittleEndian.Uint16(fields[6:8])
	f.Offset = binary.LittleEndian.Uint32(fields[8:12])
	f.Size = binary.LittleEndian.Uint32(fields[12:16])

	if term := binary.LittleEndian.Uint16(fields[16:18]); term != Terminator {
		return nil, fmt.Errorf("%w: 0x%04x", ErrInvalidTerminator, term)
	}

	if preloadLen > 0 {
		f.Preload = make([]byte, preloadLen)
		if err := r.ReadFull(f.Preload); err != nil {
			return nil, fmt.Errorf("read preload: %w", err)
		}
	}

	return f, nil
}

// resolveDataOffsets converts directory-file offsets from data-region relative to absolute.
// Numbered archive offsets are already absolute.
func resolveDataOffsets(files []*File, dataOffset uint32) error {
	for _, f := range files {
		if !f.InDirFile() {
			continue
		}

		if uint64(f.Offset)+uint64(dataOffset) > math.MaxUint32 {
			return fmt.Errorf("%w: offset of %s exceeds 4 GiB", ErrFileFormat, f.Name())
		}

		f.Offset += dataOffset
	}

	return nil
}

// entryName joins a base name and type. A single-space type means no
// extension, so "name" is produced instead of a literal "name. ".
func entryName(base string, typ string) string {
	if typ == " " {
		return base
	}

	return base + "." + typ
}

// archiveLabel names the directory file for diagnostics.
func (p *Package) archiveLabel() string {
	if p.dirPath != "" {
		return p.dirPath
	}

	return p.name + DirSuffix
}
