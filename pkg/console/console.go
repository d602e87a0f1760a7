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

// Package console defines the interface to the host console/VT subsystem.
// braillecon never renders the screen itself; it asks the host to redraw
// regions and queries cursor position, geometry and lock-key state.
package console

// Lock identifies a keyboard lock key.
type Lock int

const (
	LockCaps Lock = iota
	LockNum
	LockScroll
)

func (l Lock) String() string {
	switch l {
	case LockCaps:
		return "caps"
	case LockNum:
		return "num"
	case LockScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// Console is implemented by the host virtual-terminal layer.
type Console interface {
	// Cursor returns the current cursor column and row.
	Cursor() (x, y int)
	// Size returns the console geometry in columns and rows.
	Size() (cols, rows int)
	// ActiveRow returns the identity of the currently active row.
	ActiveRow() int
	// Refresh asks the host to redraw the given region from the
	// underlying screen buffer.
	Refresh(x, y, w, h int)
	// LockState reports whether the given lock key is on. ok is false
	// when the host cannot answer for that key.
	LockState(l Lock) (on, ok bool)
}
