// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

package coverage

import "bytes"

// magicPart is a byte pattern expected at a fixed offset.
type magicPart struct {
	pattern []byte
	offset  int
}

// magic maps all of its parts to a file extension.
type magic struct {
	ext   string
	parts []magicPart
}

// magics lists known Source engine payload signatures in match order.
// Plain-text formats (res, vcd, vmt) have no signature.
var magics = []magic{
	{ext: "wav", parts: []magicPart{{offset: 0, pattern: []byte("RIFF")}, {offset: 8, pattern: []byte("WAVEfmt")}}},
	{ext: "vtx", parts: []magicPart{{pattern: []byte("VTX")}}},
	{ext: "vtf", parts: []magicPart{{pattern: []byte("VTF")}}},
	{ext: "mdl", parts: []magicPart{{pattern: []byte("IDST")}}},
	{ext: "vvd", parts: []magicPart{{pattern: []byte("IDSV")}}},
	{ext: "ani", parts: []magicPart{{pattern: []byte("IDAG")}}},
	{ext: "pcf", parts: []magicPart{{pattern: []byte("<!-- dmx encoding binary 2 format pcf ")}}},
	{ext: "mp3", parts: []magicPart{{pattern: []byte("ID3")}}},
	{ext: "phy", parts: []magicPart{
		{offset: 0, pattern: []byte{0x10, 0, 0, 0, 0, 0, 0}},
		{offset: 20, pattern: []byte("VPHY")},
	}},
}

// DefaultExtension is returned for unrecognized data.
const DefaultExtension = "bin"

// MaxMagicSize is the number of leading bytes SniffExtension inspects.
var MaxMagicSize = maxMagicSize()

func maxMagicSize() int {
	size := 0
	for _, m := range magics {
		for _, p := range m.parts {
			size = max(size, p.offset+len(p.pattern))
		}
	}

	return size
}

// SniffExtension returns the file extension matching the leading bytes of
// data, or DefaultExtension.
func SniffExtension(head []byte) string {
	for _, m := range magics {
		if m.matches(head) {
			return m.ext
		}
	}

	return DefaultExtension
}

func (m magic) matches(head []byte) bool {
	for _, p := range m.parts {
		end := p.offset + len(p.pattern)
		if end > len(head) || !bytes.Equal(head[p.offset:end], p.pattern) {
			return false
		}
	}

	return true
}
