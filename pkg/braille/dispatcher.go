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
	"github.com/braillecon/braillecon/pkg/helpers/syncutil"
	"github.com/braillecon/braillecon/pkg/tones"
	"github.com/rs/zerolog/log"
)

// Event is a closed union of the host events the engine consumes.
type Event interface {
	isEvent()
}

// CharacterWrite carries one code point written to a console row.
type CharacterWrite struct {
	Rune rune
	Row  int
}

// DisplayUpdate signals that a row became the active row.
type DisplayUpdate struct {
	Row int
}

// KeyPress carries a logical key code from the keyboard subsystem.
type KeyPress struct {
	Key Key
}

// LockKey reports that a lock key symbol was decoded; the engine queries
// the console for its new state and answers with a tone.
type LockKey struct {
	Lock console.Lock
}

func (CharacterWrite) isEvent() {}
func (DisplayUpdate) isEvent() {}
func (KeyPress) isEvent() {}
func (LockKey) isEvent() {}

// Dispatcher routes host events to the line accumulator, the frame
// encoder and the viewport state machine. A single mutex guards all
// three: every handler reads and writes them without partial-update
// tolerance, so hosts may deliver events from any goroutine.
type Dispatcher struct {
	console console.Console
	player  tones.Player
	out     FrameWriter
	line    *LineBuffer
	enc     *Encoder
	view    *Viewport
	toggle  Key
	mu      syncutil.Mutex
}

// NewDispatcher builds an engine for a display line of the given width.
// Frames go to out; feedback tones go to player.
func NewDispatcher(width int, c console.Console, p tones.Player, out FrameWriter) *Dispatcher {
	return &Dispatcher{
		console: c,
		player:  p,
		out:     out,
		line:    NewLineBuffer(width),
		enc:     NewEncoder(width),
		view:    NewViewport(width),
		toggle:  DefaultToggleKey,
	}
}

// SetToggleKey changes the key that switches between follow and browse.
func (d *Dispatcher) SetToggleKey(k Key) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toggle = k
}

// Reset blanks the display line, restores follow mode and drops the
// frame cache. Called on every display (re)connection.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.line.Reset()
	d.view.Reset()
	d.enc.Reset()
}

// Line returns the current display line content.
func (d *Dispatcher) Line() []rune {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.line.Cells()
}

// Mode returns the current viewport mode.
func (d *Dispatcher) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view.Mode()
}

// Handle processes one host event to completion. It reports whether the
// event was consumed; an unconsumed KeyPress must be passed on to the
// host's default keyboard handling so normal typing keeps working.
func (d *Dispatcher) Handle(ev Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch ev := ev.(type) {
	case CharacterWrite:
		if ev.Row != d.console.ActiveRow() {
			return true
		}
		d.line.OnChar(ev.Rune)
		if d.view.Mode() == ModeFollow {
			d.sendLine()
		} else {
			d.refreshViewport()
		}
		return true

	case DisplayUpdate:
		if d.view.Mode() == ModeFollow {
			if d.view.RowChanged(ev.Row) {
				log.Debug().Int("row", ev.Row).Msg("active row switched, clearing display")
				d.line.Reset()
				d.enc.Reset()
				d.sendLine()
			}
		} else {
			d.refreshViewport()
		}
		return true

	case KeyPress:
		return d.handleKey(ev.Key)

	case LockKey:
		on, ok := d.console.LockState(ev.Lock)
		if !ok {
			return true
		}
		if on {
			d.player.Tone(tones.High)
		} else {
			d.player.Tone(tones.Med)
		}
		return true

	default:
		// closed union; nothing else can arrive
		return false
	}
}

func (d *Dispatcher) handleKey(k Key) bool {
	if d.view.Mode() == ModeFollow {
		if k != d.toggle {
			return false
		}
		log.Debug().Msg("entering browse mode")
		d.player.Tone(tones.High)
		d.view.EnterBrowse(d.console)
		d.refreshViewport()
		return true
	}

	if k == d.toggle {
		log.Debug().Msg("returning to follow mode")
		d.player.Tone(tones.Med)
		d.view.ExitBrowse()
		d.sendLine()
		return true
	}

	tone, consumed := d.view.HandleKey(k, d.console)
	if !consumed {
		return false
	}
	if tone != tones.None {
		d.player.Tone(tone)
	}
	d.refreshViewport()
	return true
}

// sendLine encodes the current line and hands the frame to the
// transport. Writes are best-effort: a failure is logged, never retried.
func (d *Dispatcher) sendLine() {
	frame, ok := d.enc.Encode(d.line.Cells())
	if !ok {
		return
	}
	if err := d.out.WriteFrame(frame); err != nil {
		log.Warn().Err(err).Msg("failed to write frame to display")
	}
}

func (d *Dispatcher) refreshViewport() {
	x, y := d.view.Origin()
	d.console.Refresh(x, y, d.line.Width(), 1)
}
