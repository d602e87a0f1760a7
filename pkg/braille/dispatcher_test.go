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
	"errors"
	"testing"

	"github.com/braillecon/braillecon/pkg/console"
	"github.com/braillecon/braillecon/pkg/tones"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTransport records frames handed to it.
type mockTransport struct {
	frames [][]byte
	err    error
}

func (m *mockTransport) WriteFrame(frame []byte) error {
	if m.err != nil {
		return m.err
	}
	cp := make([]byte, len(frame))
	copy(cp, frame)
	m.frames = append(m.frames, cp)
	return nil
}

func newTestDispatcher(width int) (*Dispatcher, *console.Fake, *tones.MockPlayer, *mockTransport) {
	c := console.NewFake(80, 25)
	p := &tones.MockPlayer{}
	out := &mockTransport{}
	return NewDispatcher(width, c, p, out), c, p, out
}

func typeString(d *Dispatcher, s string, row int) {
	for _, c := range s {
		d.Handle(CharacterWrite{Rune: c, Row: row})
	}
}

func TestCharacterWriteSendsFrameInFollowMode(t *testing.T) {
	t.Parallel()

	d, _, _, out := newTestDispatcher(8)
	typeString(d, "Hi", 0)

	require.Len(t, out.frames, 2, "one frame per character change")
	assert.Equal(t, []rune("Hi"), d.Line()[:2])
}

func TestCharacterWriteIgnoresInactiveRows(t *testing.T) {
	t.Parallel()

	d, c, _, out := newTestDispatcher(8)
	c.SetActiveRow(0)

	consumed := d.Handle(CharacterWrite{Rune: 'x', Row: 3})
	assert.True(t, consumed)
	assert.Empty(t, out.frames)
	assert.Equal(t, make([]rune, 8), d.Line())
}

func TestTerminatorThenTextReplacesLine(t *testing.T) {
	t.Parallel()

	d, _, _, out := newTestDispatcher(8)
	typeString(d, "Hi\nBye", 0)

	require.NotEmpty(t, out.frames)
	last := out.frames[len(out.frames)-1]
	assert.Equal(t, []byte("Bye     "), decodePayloadData(t, last))
}

func TestToggleEntersAndLeavesBrowse(t *testing.T) {
	t.Parallel()

	d, c, p, out := newTestDispatcher(8)
	c.MoveCursor(10, 2)
	typeString(d, "abc", 0)
	sent := len(out.frames)

	require.True(t, d.Handle(KeyPress{Key: KeyInsert}))
	assert.Equal(t, ModeBrowse, d.Mode())
	assert.Equal(t, tones.High, p.Last())

	reg, ok := c.LastRefresh()
	require.True(t, ok)
	assert.Equal(t, console.Region{X: 8, Y: 2, W: 8, H: 1}, reg)

	require.True(t, d.Handle(KeyPress{Key: KeyInsert}))
	assert.Equal(t, ModeFollow, d.Mode())
	assert.Equal(t, tones.Med, p.Last())
	assert.Len(t, out.frames, sent,
		"unchanged line is suppressed when follow resumes")
}

func TestBrowseRoundTripRestoresEncoderOutput(t *testing.T) {
	t.Parallel()

	d, _, _, out := newTestDispatcher(8)
	typeString(d, "abc", 0)
	want := out.frames[len(out.frames)-1]

	d.Handle(KeyPress{Key: KeyInsert})
	d.Handle(KeyPress{Key: KeyLeft})
	d.Handle(KeyPress{Key: KeyInsert})

	// force a resend and confirm content is identical to before browsing
	d.Handle(DisplayUpdate{Row: 5})
	d.Handle(DisplayUpdate{Row: 0})
	typeString(d, "abc", 0)
	got := out.frames[len(out.frames)-1]
	assert.Equal(t, want, got)
}

func TestKeysPassThroughInFollowMode(t *testing.T) {
	t.Parallel()

	d, _, p, _ := newTestDispatcher(8)

	assert.False(t, d.Handle(KeyPress{Key: KeyLeft}))
	assert.False(t, d.Handle(KeyPress{Key: KeyPageDown}))
	assert.Empty(t, p.Played())
}

func TestUnrecognizedKeyPassesThroughInBrowseMode(t *testing.T) {
	t.Parallel()

	d, _, _, _ := newTestDispatcher(8)
	d.Handle(KeyPress{Key: KeyInsert})

	assert.False(t, d.Handle(KeyPress{Key: KeyNone}))
}

func TestBrowseNavigationRefreshesAndBeepsAtBoundary(t *testing.T) {
	t.Parallel()

	d, c, p, _ := newTestDispatcher(8)
	c.MoveCursor(0, 0)
	d.Handle(KeyPress{Key: KeyInsert})
	p.Clear()
	c.ClearRefreshes()

	require.True(t, d.Handle(KeyPress{Key: KeyLeft}))
	assert.Equal(t, []tones.Freq{tones.Low}, p.Played())

	reg, ok := c.LastRefresh()
	require.True(t, ok)
	assert.Equal(t, console.Region{X: 0, Y: 0, W: 8, H: 1}, reg)
}

func TestRowSwitchClearsAndForcesSend(t *testing.T) {
	t.Parallel()

	d, _, _, out := newTestDispatcher(8)
	d.Handle(DisplayUpdate{Row: 0})
	typeString(d, "abc", 0)
	sent := len(out.frames)

	d.Handle(DisplayUpdate{Row: 2})
	require.Len(t, out.frames, sent+1, "row switch forces a frame")
	assert.Equal(t, []byte("        "), decodePayloadData(t, out.frames[sent]))

	// same row again: no switch, no frame
	d.Handle(DisplayUpdate{Row: 2})
	assert.Len(t, out.frames, sent+1)
}

func TestRowSwitchForcesSendOfUnchangedContent(t *testing.T) {
	t.Parallel()

	d, _, _, out := newTestDispatcher(8)
	d.Handle(DisplayUpdate{Row: 0})
	blank := len(out.frames)

	// switching rows with an already-blank line must still transmit
	d.Handle(DisplayUpdate{Row: 1})
	assert.Len(t, out.frames, blank+1)
}

func TestCharacterWriteInBrowseRefreshesInsteadOfSending(t *testing.T) {
	t.Parallel()

	d, c, _, out := newTestDispatcher(8)
	d.Handle(KeyPress{Key: KeyInsert})
	c.ClearRefreshes()
	sent := len(out.frames)

	d.Handle(CharacterWrite{Rune: 'x', Row: 0})

	assert.Len(t, out.frames, sent, "no frame while browsing")
	_, ok := c.LastRefresh()
	assert.True(t, ok)
}

func TestLockKeyFeedback(t *testing.T) {
	t.Parallel()

	d, c, p, _ := newTestDispatcher(8)

	c.SetLock(console.LockCaps, true)
	d.Handle(LockKey{Lock: console.LockCaps})
	assert.Equal(t, tones.High, p.Last())

	c.SetLock(console.LockCaps, false)
	d.Handle(LockKey{Lock: console.LockCaps})
	assert.Equal(t, tones.Med, p.Last())
}

func TestWriteErrorIsSwallowed(t *testing.T) {
	t.Parallel()

	d, _, _, out := newTestDispatcher(8)
	out.err = errors.New("port gone")

	// best-effort transport: the engine keeps working
	assert.True(t, d.Handle(CharacterWrite{Rune: 'x', Row: 0}))
	assert.Equal(t, 'x', d.Line()[0])
}

func TestResetRestoresInitialState(t *testing.T) {
	t.Parallel()

	d, _, _, out := newTestDispatcher(8)
	typeString(d, "abc", 0)
	d.Handle(KeyPress{Key: KeyInsert})

	d.Reset()

	assert.Equal(t, ModeFollow, d.Mode())
	assert.Equal(t, make([]rune, 8), d.Line())

	// cache was dropped: blank line is transmitted
	sent := len(out.frames)
	d.Handle(DisplayUpdate{Row: 0})
	assert.Len(t, out.frames, sent+1)
}

// decodePayloadData strips framing, unescapes, and returns just the data
// bytes of a frame.
func decodePayloadData(t *testing.T, frame []byte) []byte {
	t.Helper()
	payload := decodeFrame(t, frame)
	require.GreaterOrEqual(t, len(payload), 2)
	return payload[1 : len(payload)-1]
}
