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

// Key is a logical navigation key code delivered by the host keyboard
// subsystem.
type Key int

const (
	KeyNone Key = iota
	KeyInsert
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyPageUp
	KeyPageDown
)

// DefaultToggleKey switches between follow and browse modes.
const DefaultToggleKey = KeyInsert

func (k Key) String() string {
	switch k {
	case KeyNone:
		return "none"
	case KeyInsert:
		return "insert"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyHome:
		return "home"
	case KeyPageUp:
		return "pageup"
	case KeyPageDown:
		return "pagedown"
	default:
		return "unknown"
	}
}
