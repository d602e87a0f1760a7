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

// Package braille implements the transcoding and navigation engine: the
// display line accumulator, the serial frame encoder, the follow/browse
// viewport state machine and the event dispatcher tying them together.
package braille

// Blank is the sentinel value of an empty display cell. The frame
// encoder substitutes it with a space on the wire.
const Blank rune = 0

// LineBuffer accumulates console output characters into a fixed-width
// display line. Once the line fills, older characters scroll off the
// left edge so the most recent output stays visible.
type LineBuffer struct {
	cells   []rune
	cursor  int
	pending bool
}

// NewLineBuffer returns an all-blank line of the given width, primed so
// the first printable character starts a fresh line.
func NewLineBuffer(width int) *LineBuffer {
	return &LineBuffer{
		cells:   make([]rune, width),
		pending: true,
	}
}

// Width returns the number of cells on the line.
func (l *LineBuffer) Width() int {
	return len(l.cells)
}

// Cursor returns the next write position, in [0, Width].
func (l *LineBuffer) Cursor() int {
	return l.cursor
}

// Cells returns a copy of the current line content. Blank cells hold the
// Blank sentinel.
func (l *LineBuffer) Cells() []rune {
	out := make([]rune, len(l.cells))
	copy(out, l.cells)
	return out
}

// Reset blanks the line and primes it for a fresh start.
func (l *LineBuffer) Reset() {
	clear(l.cells)
	l.cursor = 0
	l.pending = true
}

// OnChar consumes one console output character.
func (l *LineBuffer) OnChar(c rune) {
	width := len(l.cells)

	switch c {
	case '\b', 0x7F:
		if l.cursor > 0 {
			l.cursor--
			l.cells[l.cursor] = ' '
		}
		return
	case '\n', '\v', '\f', '\r':
		l.pending = true
		return
	case '\t':
		c = ' '
	}

	if c < 32 {
		return
	}

	if l.pending {
		clear(l.cells)
		l.cursor = 0
		l.pending = false
	}

	if l.cursor == width {
		copy(l.cells, l.cells[1:])
		l.cells[width-1] = c
	} else {
		l.cells[l.cursor] = c
		l.cursor++
	}
}

// String renders the line with blanks as spaces, for logs and tests.
func (l *LineBuffer) String() string {
	out := make([]rune, len(l.cells))
	for i, c := range l.cells {
		if c == Blank {
			c = ' '
		}
		out[i] = c
	}
	return string(out)
}
