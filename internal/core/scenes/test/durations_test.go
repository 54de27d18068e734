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

// Package scenes_test contains unit tests for the scene duration arithmetic:
// the weighted split of a total duration, the minimum-duration clamp, the
// transition overlap compensation, and the final validation.
package scenes_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-video-composer/internal/core/model"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/scenes"
	"github.com/stretchr/testify/assert"
)

// total sums a duration list for conservation assertions.
func total(durations []float64) float64 {
	var sum float64
	for _, d := range durations {
		sum += d
	}
	return sum
}

// sceneList builds scene assets with the given weights for duration tests.
func sceneList(weights ...float64) []*model.SceneAsset {
	out := make([]*model.SceneAsset, len(weights))
	for i, w := range weights {
		out[i] = &model.SceneAsset{Index: i + 1, Weight: w}
	}
	return out
}

// TestCalculateSceneDurationsWeightedSplit verifies that a requested total is
// split across scenes in proportion to their weights and that the parts sum
// back to the total.
func TestCalculateSceneDurationsWeightedSplit(t *testing.T) {
	durations := scenes.CalculateSceneDurations(60.0, sceneList(1.0, 2.0, 3.0), 3.0)

	assert.Equal(t, 3, len(durations))
	assert.InDelta(t, 10.0, durations[0], 0.001)
	assert.InDelta(t, 20.0, durations[1], 0.001)
	assert.InDelta(t, 30.0, durations[2], 0.001)
}

// TestCalculateSceneDurationsDefaultWeights verifies that unset weights are
// treated as 1.0, producing an even split.
func TestCalculateSceneDurationsDefaultWeights(t *testing.T) {
	durations := scenes.CalculateSceneDurations(30.0, sceneList(0, 0, 0), 3.0)

	for _, d := range durations {
		assert.InDelta(t, 10.0, d, 0.001)
	}
}

// TestCalculateSceneDurationsKeepsExistingWithoutTotal verifies that a
// non-positive total leaves each scene's own duration untouched: the
// narration lengths are already authoritative.
func TestCalculateSceneDurationsKeepsExistingWithoutTotal(t *testing.T) {
	list := sceneList(1.0, 1.0)
	list[0].Duration = 7.3
	list[1].Duration = 4.1

	durations := scenes.CalculateSceneDurations(0, list, 3.0)

	assert.Equal(t, 7.3, durations[0])
	assert.Equal(t, 4.1, durations[1])
}

// TestCalculateSceneDurationsMinimumClamp verifies that a scene falling
// below the minimum is raised to it and that the shortfall is pulled from
// the scenes with room, keeping the total intact.
func TestCalculateSceneDurationsMinimumClamp(t *testing.T) {
	// A 1:9 split of 20 seconds would give the first scene 2 seconds,
	// below the 3 second minimum.
	durations := scenes.CalculateSceneDurations(20.0, sceneList(1.0, 9.0), 3.0)

	assert.InDelta(t, 3.0, durations[0], 0.001)
	assert.InDelta(t, 17.0, durations[1], 0.001)
	assert.InDelta(t, 20.0, durations[0]+durations[1], 0.001)
}

// TestCalculateSceneDurationsInfeasibleTotal verifies that when the total is
// too short to give every scene the minimum, every scene is pinned to the
// minimum and the total is allowed to run long.
func TestCalculateSceneDurationsInfeasibleTotal(t *testing.T) {
	durations := scenes.CalculateSceneDurations(5.0, sceneList(1.0, 1.0, 1.0), 3.0)

	for _, d := range durations {
		assert.Equal(t, 3.0, d)
	}
}

// TestReweightDurations verifies that reweighting assigns the newly computed
// durations back onto the scene list.
func TestReweightDurations(t *testing.T) {
	list := sceneList(1.0, 1.0)
	list[0].Duration = 10.0
	list[1].Duration = 10.0

	// Re-weight the first scene and redistribute the same total.
	list[0].Weight = 3.0
	scenes.ReweightDurations(20.0, list, 3.0)

	assert.InDelta(t, 15.0, list[0].Duration, 0.001)
	assert.InDelta(t, 5.0, list[1].Duration, 0.001)
}

// TestRedistributeDurationsAdd verifies that inserting a scene preserves its
// requested duration, leaves the others alone, and grows the total by exactly
// the inserted duration.
func TestRedistributeDurationsAdd(t *testing.T) {
	out := scenes.RedistributeDurations([]float64{8.0, 12.0}, 1, scenes.OpAdd, 5.0, 3.0)

	assert.Equal(t, []float64{8.0, 5.0, 12.0}, out)
	assert.InDelta(t, 25.0, total(out), 0.001)
}

// TestRedistributeDurationsAddDefaultsToMinimum verifies that an unset
// duration inserts a minimum-length scene, and that appending at the end of
// the list is allowed.
func TestRedistributeDurationsAddDefaultsToMinimum(t *testing.T) {
	out := scenes.RedistributeDurations([]float64{8.0, 12.0}, 2, scenes.OpAdd, 0, 3.0)

	assert.Equal(t, []float64{8.0, 12.0, 3.0}, out)
	assert.InDelta(t, 23.0, total(out), 0.001)
}

// TestRedistributeDurationsRemove verifies that removing a scene shrinks the
// total by exactly the removed duration.
func TestRedistributeDurationsRemove(t *testing.T) {
	out := scenes.RedistributeDurations([]float64{8.0, 5.0, 12.0}, 1, scenes.OpRemove, 0, 3.0)

	assert.Equal(t, []float64{8.0, 12.0}, out)
	assert.InDelta(t, 20.0, total(out), 0.001)
}

// TestRedistributeDurationsModify verifies that a duration change spreads the
// inverse delta evenly across the other scenes, conserving the total.
func TestRedistributeDurationsModify(t *testing.T) {
	out := scenes.RedistributeDurations([]float64{10.0, 10.0, 10.0}, 0, scenes.OpModify, 16.0, 3.0)

	assert.InDelta(t, 16.0, out[0], 0.001)
	assert.InDelta(t, 7.0, out[1], 0.001)
	assert.InDelta(t, 7.0, out[2], 0.001)
	assert.InDelta(t, 30.0, total(out), 0.001)
}

// TestRedistributeDurationsModifyClampsOthers verifies that the inverse
// spread never pushes another scene below the minimum.
func TestRedistributeDurationsModifyClampsOthers(t *testing.T) {
	out := scenes.RedistributeDurations([]float64{10.0, 4.0, 4.0}, 0, scenes.OpModify, 14.0, 3.0)

	assert.InDelta(t, 14.0, out[0], 0.001)
	assert.InDelta(t, 3.0, out[1], 0.001)
	assert.InDelta(t, 3.0, out[2], 0.001)
}

// TestRedistributeDurationsOutOfRange verifies that a bad index leaves the
// durations untouched.
func TestRedistributeDurationsOutOfRange(t *testing.T) {
	in := []float64{8.0, 12.0}

	out := scenes.RedistributeDurations(in, 2, scenes.OpRemove, 0, 3.0)

	assert.Equal(t, in, out)
}

// TestResolveTransitions verifies the per-boundary normalization rules: nil
// sources become hard cuts, missing windows get the default, and no window
// may exceed the shorter adjacent scene.
func TestResolveTransitions(t *testing.T) {
	sources := []*model.Transition{
		nil,
		{Type: model.TransitionFade},
		{Type: model.TransitionDissolve, Duration: 10.0},
	}
	durations := []float64{5.0, 5.0, 5.0, 2.0}

	out := scenes.ResolveTransitions(sources, durations, 1.0)

	assert.Equal(t, 3, len(out))
	assert.True(t, out[0].IsNone())
	assert.Equal(t, model.TransitionFade, out[1].Type)
	assert.Equal(t, 1.0, out[1].Duration)
	// The 10 second dissolve is clamped to the 2 second adjacent scene.
	assert.Equal(t, model.TransitionDissolve, out[2].Type)
	assert.Equal(t, 2.0, out[2].Duration)
}

// TestTransitionDurationsPrefersRequestLevel verifies that a request-level
// transition list wins over the per-scene transitions.
func TestTransitionDurationsPrefersRequestLevel(t *testing.T) {
	req := &model.CompositionRequest{
		Scenes: []*model.SceneAsset{
			{Index: 1, Transition: &model.Transition{Type: model.TransitionFade, Duration: 2.0}},
			{Index: 2},
		},
		Transitions: []*model.Transition{
			{Type: model.TransitionDissolve, Duration: 0.5},
		},
	}

	out := scenes.TransitionDurations(req, []float64{5.0, 5.0}, 1.0)

	assert.Equal(t, 1, len(out))
	assert.Equal(t, model.TransitionDissolve, out[0].Type)
	assert.Equal(t, 0.5, out[0].Duration)
}

// TestAdjustForTransitions verifies the overlap compensation: each active
// boundary adds half its window to both adjacent scenes, so the joined
// timeline (sum minus overlap) lands back on the requested total.
func TestAdjustForTransitions(t *testing.T) {
	durations := []float64{10.0, 10.0, 10.0}
	transitions := []model.Transition{
		{Type: model.TransitionFade, Duration: 1.0},
		{Type: model.TransitionNone},
	}

	adjusted := scenes.AdjustForTransitions(durations, transitions)

	assert.InDelta(t, 10.5, adjusted[0], 0.001)
	assert.InDelta(t, 10.5, adjusted[1], 0.001)
	assert.InDelta(t, 10.0, adjusted[2], 0.001)

	overlap := scenes.TransitionOverlap(transitions)
	assert.Equal(t, 1.0, overlap)

	var sum float64
	for _, d := range adjusted {
		sum += d
	}
	assert.InDelta(t, 30.0, sum-overlap, 0.001)
}

// TestValidateSceneDurations verifies the tolerance check and the rejection
// of non-positive durations.
func TestValidateSceneDurations(t *testing.T) {
	assert.NoError(t, scenes.ValidateSceneDurations([]float64{10.0, 10.05}, 20.0, 0.1))
	assert.Error(t, scenes.ValidateSceneDurations([]float64{10.0, 11.0}, 20.0, 0.1))
	assert.Error(t, scenes.ValidateSceneDurations([]float64{10.0, -1.0}, 9.0, 0.1))
	// A non-positive total means nothing to validate against.
	assert.NoError(t, scenes.ValidateSceneDurations([]float64{1.0, 2.0}, 0, 0.1))
}
