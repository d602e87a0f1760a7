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

import (
	"github.com/braillecon/braillecon/pkg/console"
	"github.com/braillecon/braillecon/pkg/tones"
)

// Mode is the viewport rendering mode.
type Mode int

const (
	// ModeFollow tracks live console output automatically.
	ModeFollow Mode = iota
	// ModeBrowse lets the user position the viewport manually.
	ModeBrowse
)

func (m Mode) String() string {
	if m == ModeBrowse {
		return "browse"
	}
	return "follow"
}

// Viewport decides which region of the virtual screen is in view. In
// follow mode it tracks the console cursor; in browse mode directional
// keys move it around the screen in width-sized column bands, clamped to
// the screen edges.
type Viewport struct {
	width       int
	mode        Mode
	x, y        int
	lastCursorX int
	lastCursorY int
	lastRow     int
}

// NewViewport returns a follow-mode viewport for a display of the given
// width. The last-visited row starts at a sentinel so the first display
// update always registers as a row switch.
func NewViewport(width int) *Viewport {
	return &Viewport{width: width, lastRow: -1}
}

// Mode returns the current rendering mode.
func (v *Viewport) Mode() Mode {
	return v.mode
}

// Origin returns the top-left corner of the browsed region.
func (v *Viewport) Origin() (x, y int) {
	return v.x, v.y
}

// Reset restores follow mode and the row-switch sentinel.
func (v *Viewport) Reset() {
	v.mode = ModeFollow
	v.x, v.y = 0, 0
	v.lastRow = -1
}

// followCursor re-anchors the viewport on the console cursor, aligning
// the column to the width-sized band containing it.
func (v *Viewport) followCursor(c console.Console) {
	cx, cy := c.Cursor()
	v.x = cx - (cx % v.width)
	v.y = cy
	v.lastCursorX = cx
	v.lastCursorY = cy
}

// EnterBrowse switches to browse mode anchored on the console cursor.
func (v *Viewport) EnterBrowse(c console.Console) {
	v.mode = ModeBrowse
	v.followCursor(c)
}

// ExitBrowse returns to follow mode and clears the row-switch sentinel
// so the next display update forces a fresh redraw.
func (v *Viewport) ExitBrowse() {
	v.mode = ModeFollow
	v.lastRow = -1
}

// RowChanged reports whether row differs from the last visited row, and
// records it. Used in follow mode to detect row switches that require a
// display clear.
func (v *Viewport) RowChanged(row int) bool {
	if row == v.lastRow {
		return false
	}
	v.lastRow = row
	return true
}

// HandleKey applies a browse-mode navigation key. It returns the
// feedback tone to play (tones.None for quiet moves, tones.Low on
// boundary hits) and whether the key was consumed. Unrecognized keys are
// left for the host's default handling.
func (v *Viewport) HandleKey(k Key, c console.Console) (tone tones.Freq, consumed bool) {
	cols, rows := c.Size()

	switch k {
	case KeyLeft:
		switch {
		case v.x > 0:
			v.x -= v.width
			if v.x < 0 {
				v.x = 0
			}
		case v.y >= 1:
			tone = tones.High
			v.y--
			v.x = cols - v.width
		default:
			tone = tones.Low
		}
	case KeyRight:
		switch {
		case v.x+v.width < cols:
			v.x += v.width
		case v.y+1 < rows:
			tone = tones.High
			v.y++
			v.x = 0
		default:
			tone = tones.Low
		}
	case KeyDown:
		if v.y+1 < rows {
			v.y++
		} else {
			tone = tones.Low
		}
	case KeyUp:
		if v.y >= 1 {
			v.y--
		} else {
			tone = tones.Low
		}
	case KeyHome:
		v.followCursor(c)
	case KeyPageUp:
		v.x = 0
		v.y = 0
	case KeyPageDown:
		v.x = 0
		v.y = rows - 1
	default:
		return tones.None, false
	}

	return tone, true
}
