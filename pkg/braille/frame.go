// braillecon
// Copyright (c) 2026 The braillecon Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of braillecon.
//
// braillecon is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// braillecon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with braillecon.  If not, see <http://www.gnu.org/licenses/>.

package braille

import "slices"

// Wire protocol control bytes. Values 0x00-0x05 are reserved on the wire
// and never appear as literal data: they are prefixed with SOH and OR'd
// with 0x40.
const (
	SOH byte = 0x01
	STX byte = 0x02
	ETX byte = 0x03
	EOT byte = 0x04
	ENQ byte = 0x05

	// LinePrefix introduces the cell data and seeds the checksum.
	LinePrefix byte = '>'

	// EscapeMax is the highest byte value that must be escaped.
	EscapeMax byte = ENQ
)

// FrameWriter is the transport a frame is handed to. Writes are
// fire-and-forget; the encoder never retries.
type FrameWriter interface {
	WriteFrame(frame []byte) error
}

// Encoder turns a display line into an escaped, checksummed serial
// frame. It remembers the last line it produced and suppresses frames
// for unchanged content.
type Encoder struct {
	lastSent []rune
	width    int
}

// NewEncoder returns an Encoder for lines of the given width.
func NewEncoder(width int) *Encoder {
	return &Encoder{width: width}
}

// Reset drops the last-sent cache so the next Encode always produces a
// frame. Called on row switches, where the display must be redrawn even
// if the line content happens to be unchanged.
func (e *Encoder) Reset() {
	e.lastSent = nil
}

// Encode builds the frame for cells. It returns ok=false, and no frame,
// when cells match the previously encoded line.
//
// Frame layout: STX, '>', width escaped data units, one escaped checksum
// unit, ETX. Each cell is substituted first ('?' for code points beyond
// 0xFF, space for blanks), the XOR checksum covers the prefix and the
// substituted values, then escaping is applied to data and checksum
// alike.
func (e *Encoder) Encode(cells []rune) (frame []byte, ok bool) {
	if e.lastSent != nil && slices.Equal(e.lastSent, cells) {
		return nil, false
	}
	e.lastSent = make([]rune, len(cells))
	copy(e.lastSent, cells)

	// worst case: every data byte and the checksum escaped
	frame = make([]byte, 0, 1+1+2*e.width+2+1)
	frame = append(frame, STX, LinePrefix)
	csum := LinePrefix

	for _, c := range cells {
		var b byte
		switch {
		case c >= 0x100:
			b = '?'
		case c == Blank:
			b = ' '
		default:
			b = byte(c)
		}
		csum ^= b
		frame = appendEscaped(frame, b)
	}

	frame = appendEscaped(frame, csum)
	frame = append(frame, ETX)
	return frame, true
}

func appendEscaped(dst []byte, b byte) []byte {
	if b <= EscapeMax {
		return append(dst, SOH, b|0x40)
	}
	return append(dst, b)
}
