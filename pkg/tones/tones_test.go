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

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackFrequencies(t *testing.T) {
	t.Parallel()

	// one octave apart each
	assert.Equal(t, Freq(220), Low)
	assert.Equal(t, Freq(440), Med)
	assert.Equal(t, Freq(880), High)
}

func TestToneStreamerProducesAudibleSamples(t *testing.T) {
	t.Parallel()

	for _, f := range []Freq{Low, Med, High} {
		streamer, err := toneStreamer(f)
		require.NoError(t, err)

		buf := make([][2]float64, 512)
		n, ok := streamer.Stream(buf)
		require.True(t, ok)
		require.Equal(t, len(buf), n)

		var peak float64
		for _, s := range buf {
			if v := math.Abs(s[0]); v > peak {
				peak = v
			}
		}
		assert.Greater(t, peak, 0.1, "sine output for %d Hz", f)
	}
}

func TestToneStreamerLength(t *testing.T) {
	t.Parallel()

	streamer, err := toneStreamer(High)
	require.NoError(t, err)

	total := 0
	buf := make([][2]float64, 512)
	for {
		n, ok := streamer.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	assert.Equal(t, sampleRate.N(Duration), total)
}

func TestMockPlayerRecordsTones(t *testing.T) {
	t.Parallel()

	m := &MockPlayer{}
	assert.Equal(t, None, m.Last())

	m.Tone(High)
	m.Tone(Low)

	assert.Equal(t, []Freq{High, Low}, m.Played())
	assert.Equal(t, Low, m.Last())

	m.Clear()
	assert.Empty(t, m.Played())
}

func TestNopPlayerDiscards(t *testing.T) {
	t.Parallel()

	// must not panic or block
	NopPlayer{}.Tone(High)
	NopPlayer{}.Tone(None)
}
