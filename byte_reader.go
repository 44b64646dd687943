// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package vpk

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// byteReaderBufferSize is the sequential read buffer for index parsing.
const byteReaderBufferSize = 64 * 1024

// ByteReader provides endian-aware primitive reads over a byte stream.
// Every read that cannot be fully satisfied fails with ErrUnexpectedEOF.
type ByteReader struct {
	// src is the unbuffered source; used for seeking.
	src io.Reader
	// br buffers sequential reads from src.
	br *bufio.Reader
	// spill accumulates NUL-terminated strings longer than the buffer.
	spill []byte
	// pos is the absolute stream position of the next unread byte.
	pos int64
}

// NewByteReader wraps r. Seek is available when r implements io.Seeker.
func NewByteReader(r io.Reader) *ByteReader {
	return &ByteReader{
		src: r,
		br:  bufio.NewReaderSize(r, byteReaderBufferSize),
	}
}

// Pos returns the absolute position of the next byte to be read.
func (r *ByteReader) Pos() int64 {
	return r.pos
}

// Seek repositions the stream. It requires the source to implement io.Seeker.
func (r *ByteReader) Seek(offset int64, whence int) (int64, error) {
	seeker, ok := r.src.(io.Seeker)
	if !ok {
		return r.pos, fmt.Errorf("seek: %w", errors.ErrUnsupported)
	}

	// The underlying stream is ahead of pos by the buffered amount.
	var (
		abs int64
		err error
	)
	switch whence {
	case io.SeekStart:
		abs, err = seeker.Seek(offset, io.SeekStart)
	case io.SeekCurrent:
		abs, err = seeker.Seek(r.pos+offset, io.SeekStart)
	case io.SeekEnd:
		abs, err = seeker.Seek(offset, io.SeekEnd)
	default:
		return r.pos, fmt.Errorf("seek: invalid whence %d", whence)
	}
	if err != nil {
		return r.pos, fmt.Errorf("seek: %w", err)
	}

	r.br.Reset(r.src)
	r.pos = abs
	return abs, nil
}

// Peek returns the next n bytes without advancing the stream.
func (r *ByteReader) Peek(n int) ([]byte, error) {
	buf, err := r.br.Peek(n)
	if err != nil {
		return buf, mapReadError(err)
	}

	return buf, nil
}

// ReadFull reads exactly len(buf) bytes.
func (r *ByteReader) ReadFull(buf []byte) error {
	n, err := io.ReadFull(r.br, buf)
	r.pos += int64(n)
	if err != nil {
		return mapReadError(err)
	}

	return nil
}

// ReadU8 reads one byte.
func (r *ByteReader) ReadU8() (uint8, error) {
	b, err := r.br.ReadByte()
	if err != nil {
		return 0, mapReadError(err)
	}

	r.pos++
	return b, nil
}

// ReadLU16 reads a little-endian uint16.
func (r *ByteReader) ReadLU16() (uint16, error) {
	var buf [2]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(buf[:]), nil
}

// ReadBU16 reads a big-endian uint16.
func (r *ByteReader) ReadBU16() (uint16, error) {
	var buf [2]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint16(buf[:]), nil
}

// ReadLU32 reads a little-endian uint32.
func (r *ByteReader) ReadLU32() (uint32, error) {
	var buf [4]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReadBU32 reads a big-endian uint32.
func (r *ByteReader) ReadBU32() (uint32, error) {
	var buf [4]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadLU64 reads a little-endian uint64.
func (r *ByteReader) ReadLU64() (uint64, error) {
	var buf [8]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(buf[:]), nil
}

// ReadBU64 reads a big-endian uint64.
func (r *ByteReader) ReadBU64() (uint64, error) {
	var buf [8]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint64(buf[:]), nil
}

// ReadCString reads bytes up to and including a NUL terminator and returns
// them without the terminator. Reaching end of stream first is an error.
func (r *ByteReader) ReadCString() (string, error) {
	r.spill = r.spill[:0]

	for {
		chunk, err := r.br.ReadSlice(0)
		r.pos += int64(len(chunk))

		if err == bufio.ErrBufferFull {
			r.spill = append(r.spill, chunk...)
			continue
		}

		if err != nil {
			return "", mapReadError(err)
		}

		segment := chunk[:len(chunk)-1]
		if len(r.spill) == 0 {
			return string(segment), nil
		}

		r.spill = append(r.spill, segment...)
		return string(r.spill), nil
	}
}

// mapReadError converts end-of-stream conditions to ErrUnexpectedEOF.
func mapReadError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrUnexpectedEOF
	}

	return fmt.Errorf("read: %w", err)
}
