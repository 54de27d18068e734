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

// These tests cover the xfade/acrossfade graph construction used when scene
// boundaries carry transitions. The graph is pure string building over
// durations, so it is tested without invoking ffmpeg.
package media

import (
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-video-composer/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// TestBuildTransitionGraphOffsets verifies the cumulative offset arithmetic:
// each crossfade starts at the running stream length minus its window, and
// every crossfade shortens the running length by its window.
func TestBuildTransitionGraphOffsets(t *testing.T) {
	durations := []float64{10.0, 10.0, 10.0}
	transitions := []model.Transition{
		{Type: model.TransitionFade, Duration: 1.0},
		{Type: model.TransitionDissolve, Duration: 2.0},
	}

	graph, err := buildTransitionGraph(durations, transitions)
	assert.NoError(t, err)

	// First boundary: offset 10 - 1 = 9. Running length becomes 19.
	assert.Contains(t, graph, "xfade=transition=fade:duration=1.000:offset=9.000")
	// Second boundary: offset 19 - 2 = 17.
	assert.Contains(t, graph, "xfade=transition=dissolve:duration=2.000:offset=17.000")
	assert.Contains(t, graph, "acrossfade=d=1.000")
	assert.Contains(t, graph, "acrossfade=d=2.000")

	// The final pair of streams must carry the output labels.
	assert.Contains(t, graph, "[vout]")
	assert.Contains(t, graph, "[aout]")
	assert.False(t, strings.HasSuffix(graph, ";"))
}

// TestBuildTransitionGraphHardCutBoundary verifies that a "none" boundary
// inside a transitioned sequence is rendered as a near-zero fade that reads
// as a straight cut.
func TestBuildTransitionGraphHardCutBoundary(t *testing.T) {
	durations := []float64{5.0, 5.0}
	transitions := []model.Transition{{Type: model.TransitionNone}}

	graph, err := buildTransitionGraph(durations, transitions)
	assert.NoError(t, err)
	assert.Contains(t, graph, "xfade=transition=fade:duration=0.050:offset=4.950")
}

// TestBuildTransitionGraphClampsWindow verifies that a window longer than an
// adjacent clip is clamped so the crossfade never outruns either side.
func TestBuildTransitionGraphClampsWindow(t *testing.T) {
	durations := []float64{10.0, 2.0}
	transitions := []model.Transition{{Type: model.TransitionFade, Duration: 5.0}}

	graph, err := buildTransitionGraph(durations, transitions)
	assert.NoError(t, err)
	assert.Contains(t, graph, "duration=2.000:offset=8.000")
}

// TestBuildTransitionGraphDefaultsWindow verifies that an active transition
// with no duration gets the 1 second fallback.
func TestBuildTransitionGraphDefaultsWindow(t *testing.T) {
	durations := []float64{5.0, 5.0}
	transitions := []model.Transition{{Type: model.TransitionDissolve}}

	graph, err := buildTransitionGraph(durations, transitions)
	assert.NoError(t, err)
	assert.Contains(t, graph, "duration=1.000:offset=4.000")
}

// TestBuildTransitionGraphArityErrors verifies the input validation.
func TestBuildTransitionGraphArityErrors(t *testing.T) {
	_, err := buildTransitionGraph([]float64{5.0}, nil)
	assert.Error(t, err)

	_, err = buildTransitionGraph([]float64{5.0, 5.0, 5.0}, []model.Transition{{Type: model.TransitionFade, Duration: 1.0}})
	assert.Error(t, err)
}

// TestXfadeName verifies the transition type to xfade filter mapping;
// unknown types fall back to a plain fade.
func TestXfadeName(t *testing.T) {
	assert.Equal(t, "dissolve", xfadeName(model.TransitionDissolve))
	assert.Equal(t, "fade", xfadeName(model.TransitionFade))
	assert.Equal(t, "fade", xfadeName(model.TransitionType("wipe")))
}

// TestAnyActiveTransition verifies the demuxer-vs-graph decision input.
func TestAnyActiveTransition(t *testing.T) {
	assert.False(t, anyActiveTransition(nil))
	assert.False(t, anyActiveTransition([]model.Transition{{Type: model.TransitionNone}, {}}))
	assert.True(t, anyActiveTransition([]model.Transition{{}, {Type: model.TransitionFade, Duration: 1.0}}))
}
