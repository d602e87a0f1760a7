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

package tones

import "github.com/braillecon/braillecon/pkg/helpers/syncutil"

// MockPlayer records tones for assertions in tests.
type MockPlayer struct {
	played []Freq
	mu     syncutil.Mutex
}

func (m *MockPlayer) Tone(f Freq) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.played = append(m.played, f)
}

// Played returns a copy of the recorded tones.
func (m *MockPlayer) Played() []Freq {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Freq, len(m.played))
	copy(out, m.played)
	return out
}

// Last returns the most recent tone, or None if nothing was played.
func (m *MockPlayer) Last() Freq {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.played) == 0 {
		return None
	}
	return m.played[len(m.played)-1]
}

// Clear drops the recorded tones.
func (m *MockPlayer) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.played = nil
}
