// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// These tests cover the pure filter arithmetic behind the duration
// adjusters: atempo stage decomposition, fade windows, and loop counts.
// They run in-package so the filter builders stay unexported.
package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAtempoChain verifies that tempo factors outside atempo's [0.5, 2.0]
// range are decomposed into stages whose product equals the input factor.
func TestAtempoChain(t *testing.T) {
	cases := []struct {
		factor float64
		want   []float64
	}{
		{1.0, []float64{1.0}},
		{1.5, []float64{1.5}},
		{4.0, []float64{2.0, 2.0}},
		{0.25, []float64{0.5, 0.5}},
		{5.0, []float64{2.0, 2.0, 1.25}},
	}
	for _, c := range cases {
		stages := atempoChain(c.factor)
		assert.Equal(t, len(c.want), len(stages), "factor %v", c.factor)

		product := 1.0
		for i, stage := range stages {
			assert.InDelta(t, c.want[i], stage, 0.001, "factor %v stage %d", c.factor, i)
			assert.GreaterOrEqual(t, stage, atempoMin)
			assert.LessOrEqual(t, stage, atempoMax)
			product *= stage
		}
		assert.InDelta(t, c.factor, product, 0.001, "factor %v product", c.factor)
	}
}

// TestAtempoChainInvalidFactor verifies the guard for non-positive factors.
func TestAtempoChainInvalidFactor(t *testing.T) {
	assert.Equal(t, []float64{1.0}, atempoChain(0))
	assert.Equal(t, []float64{1.0}, atempoChain(-1.0))
}

// TestAtempoFilter verifies the rendered filter string for a chained factor.
func TestAtempoFilter(t *testing.T) {
	filter := atempoFilter(4.0)
	assert.Equal(t, "atempo=2.000000,atempo=2.000000", filter)
}

// TestFadeDuration verifies that the fade window scales with the clip but
// stays inside the configured bounds.
func TestFadeDuration(t *testing.T) {
	// 15% of 10s is 1.5s, inside the bounds.
	assert.InDelta(t, 1.5, fadeDuration(10.0), 0.001)
	// Very short clips floor at the minimum window.
	assert.Equal(t, fadeMinDuration, fadeDuration(0.2))
	// Very long clips cap at the maximum window.
	assert.Equal(t, fadeMaxDuration, fadeDuration(60.0))
}

// TestAudioFadeFilters verifies the afade stages for each option
// combination, including the clamp that keeps the fade-out start at zero on
// clips shorter than the fade itself.
func TestAudioFadeFilters(t *testing.T) {
	assert.Empty(t, audioFadeFilters(10.0, AdjustOptions{}))

	filters := audioFadeFilters(10.0, AdjustOptions{FadeIn: true, FadeOut: true})
	assert.Equal(t, 2, len(filters))
	assert.Equal(t, "afade=t=in:st=0:d=1.500", filters[0])
	assert.Equal(t, "afade=t=out:st=8.500:d=1.500", filters[1])

	// A clip shorter than its fade window fades out from the start.
	filters = audioFadeFilters(0.05, AdjustOptions{FadeOut: true})
	assert.Equal(t, 1, len(filters))
	assert.True(t, strings.HasPrefix(filters[0], "afade=t=out:st=0.000"))
}

// TestVideoFadeFilters verifies the video fade stages mirror the audio ones.
func TestVideoFadeFilters(t *testing.T) {
	filters := videoFadeFilters(10.0, AdjustOptions{FadeIn: true})
	assert.Equal(t, 1, len(filters))
	assert.Equal(t, "fade=t=in:st=0:d=1.500", filters[0])
}

// TestLoopCount verifies the -stream_loop repeat arithmetic: total plays
// needed to cover the target, minus the first play.
func TestLoopCount(t *testing.T) {
	assert.Equal(t, 0, loopCount(10.0, 5.0))  // already long enough
	assert.Equal(t, 0, loopCount(10.0, 10.0)) // exact fit
	assert.Equal(t, 1, loopCount(10.0, 15.0)) // one extra play
	assert.Equal(t, 2, loopCount(10.0, 30.0))
	assert.Equal(t, 0, loopCount(0, 10.0)) // unknown source length
}

// TestDurationsEqual verifies the tolerance comparison used to decide
// whether a clip already matches its target.
func TestDurationsEqual(t *testing.T) {
	assert.True(t, durationsEqual(10.0, 10.05))
	assert.True(t, durationsEqual(10.0, 9.9))
	assert.False(t, durationsEqual(10.0, 10.2))
}

// TestDefaultAdjustOptions verifies the narration defaults: fade out, keep
// the speaker's pitch.
func TestDefaultAdjustOptions(t *testing.T) {
	opts := DefaultAdjustOptions()
	assert.False(t, opts.FadeIn)
	assert.True(t, opts.FadeOut)
	assert.True(t, opts.PreservePitch)
}
