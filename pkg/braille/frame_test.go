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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeFrame reverses the escape rule and splits a frame into its
// unescaped payload (prefix + data + checksum).
func decodeFrame(t *testing.T, frame []byte) (payload []byte) {
	t.Helper()

	require.GreaterOrEqual(t, len(frame), 4)
	require.Equal(t, STX, frame[0])
	require.Equal(t, ETX, frame[len(frame)-1])

	body := frame[1 : len(frame)-1]
	for i := 0; i < len(body); i++ {
		b := body[i]
		if b == SOH {
			i++
			require.Less(t, i, len(body), "escape marker at end of frame")
			payload = append(payload, body[i]&^0x40)
			continue
		}
		require.Greater(t, b, EscapeMax,
			"unescaped byte 0x%02x in reserved range at offset %d", b, i)
		payload = append(payload, b)
	}
	return payload
}

func cellsOf(s string, width int) []rune {
	cells := make([]rune, width)
	copy(cells, []rune(s))
	return cells
}

func TestEncodeFrameLayout(t *testing.T) {
	t.Parallel()

	enc := NewEncoder(4)
	frame, ok := enc.Encode(cellsOf("ab", 4))
	require.True(t, ok)

	payload := decodeFrame(t, frame)
	require.Len(t, payload, 1+4+1)
	assert.Equal(t, LinePrefix, payload[0])
	assert.Equal(t, []byte("ab  "), payload[1:5])

	var want byte = LinePrefix
	for _, b := range payload[1:5] {
		want ^= b
	}
	assert.Equal(t, want, payload[5])
}

func TestEncodeSubstitutions(t *testing.T) {
	t.Parallel()

	enc := NewEncoder(3)
	frame, ok := enc.Encode([]rune{Blank, 'x', 0x2603})
	require.True(t, ok)

	payload := decodeFrame(t, frame)
	// blank becomes space, code points beyond 0xFF become '?'
	assert.Equal(t, []byte(" x?"), payload[1:4])
}

func TestEncodeEscapesReservedBytes(t *testing.T) {
	t.Parallel()

	enc := NewEncoder(2)
	frame, ok := enc.Encode([]rune{0x01, 0x05})
	require.True(t, ok)

	// both data cells must be escaped on the wire
	assert.Contains(t, string(frame), string([]byte{SOH, 0x01 | 0x40}))
	assert.Contains(t, string(frame), string([]byte{SOH, 0x05 | 0x40}))

	payload := decodeFrame(t, frame)
	assert.Equal(t, []byte{0x01, 0x05}, payload[1:3])
}

func TestEncodeEscapesChecksum(t *testing.T) {
	t.Parallel()

	// '>' XOR '>' XOR 0x04 = 0x04: checksum lands in the reserved range
	enc := NewEncoder(2)
	frame, ok := enc.Encode([]rune{'>', 0x04})
	require.True(t, ok)

	payload := decodeFrame(t, frame)
	require.Len(t, payload, 4)
	assert.Equal(t, byte(0x04), payload[3])
	// on the wire the checksum occupies two bytes before ETX
	assert.Equal(t, SOH, frame[len(frame)-3])
	assert.Equal(t, byte(0x04|0x40), frame[len(frame)-2])
}

func TestEncodeSuppressesUnchangedLine(t *testing.T) {
	t.Parallel()

	enc := NewEncoder(4)
	cells := cellsOf("ab", 4)

	_, ok := enc.Encode(cells)
	require.True(t, ok)

	_, ok = enc.Encode(cells)
	assert.False(t, ok, "identical line must be suppressed")

	_, ok = enc.Encode(cellsOf("ac", 4))
	assert.True(t, ok, "changed line must be sent")
}

func TestEncodeFirstCallAlwaysSends(t *testing.T) {
	t.Parallel()

	// an all-blank line must be sent the first time, even though it is
	// indistinguishable from "nothing sent yet"
	enc := NewEncoder(4)
	_, ok := enc.Encode(make([]rune, 4))
	assert.True(t, ok)
}

func TestEncoderResetForcesResend(t *testing.T) {
	t.Parallel()

	enc := NewEncoder(4)
	cells := cellsOf("ab", 4)

	first, ok := enc.Encode(cells)
	require.True(t, ok)

	enc.Reset()

	again, ok := enc.Encode(cells)
	require.True(t, ok, "reset must force a resend of unchanged content")
	assert.Equal(t, first, again)
}
