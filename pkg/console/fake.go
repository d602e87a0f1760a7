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

package console

import "github.com/braillecon/braillecon/pkg/helpers/syncutil"

// Region records a single Refresh call.
type Region struct {
	X, Y, W, H int
}

// Fake is an in-memory Console used by tests. It records refresh
// requests and lets tests position the cursor and toggle lock keys.
type Fake struct {
	locks     map[Lock]bool
	refreshes []Region
	CursorX   int
	CursorY   int
	Cols      int
	Rows      int
	Active    int
	mu        syncutil.Mutex
}

// NewFake returns a Fake console with the given geometry and the cursor
// at the origin.
func NewFake(cols, rows int) *Fake {
	return &Fake{
		Cols:  cols,
		Rows:  rows,
		locks: make(map[Lock]bool),
	}
}

func (f *Fake) Cursor() (x, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CursorX, f.CursorY
}

func (f *Fake) Size() (cols, rows int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Cols, f.Rows
}

func (f *Fake) ActiveRow() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Active
}

func (f *Fake) Refresh(x, y, w, h int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes = append(f.refreshes, Region{X: x, Y: y, W: w, H: h})
}

func (f *Fake) LockState(l Lock) (on, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	on, ok = f.locks[l], true
	return on, ok
}

// SetLock sets the state of a lock key.
func (f *Fake) SetLock(l Lock, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locks[l] = on
}

// MoveCursor positions the cursor.
func (f *Fake) MoveCursor(x, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CursorX, f.CursorY = x, y
}

// SetActiveRow changes the active row identity.
func (f *Fake) SetActiveRow(row int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Active = row
}

// Refreshes returns a copy of the recorded refresh regions.
func (f *Fake) Refreshes() []Region {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Region, len(f.refreshes))
	copy(out, f.refreshes)
	return out
}

// LastRefresh returns the most recent refresh region, if any.
func (f *Fake) LastRefresh() (Region, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.refreshes) == 0 {
		return Region{}, false
	}
	return f.refreshes[len(f.refreshes)-1], true
}

// ClearRefreshes drops the recorded refresh regions.
func (f *Fake) ClearRefreshes() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes = nil
}
