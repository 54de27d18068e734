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

// Package scenes holds the duration arithmetic for a composition: splitting
// a requested total across scenes by weight, enforcing a minimum scene
// length, compensating for transition overlap, and validating the result.
// Everything here is a pure function over plain values so the math can be
// tested without touching ffmpeg or the filesystem.
package scenes

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/jaycherian/gcp-go-video-composer/internal/core/model"
)

// maxRedistributePasses bounds the clamp-and-redistribute loop. Pathological
// weight sets could otherwise bounce durations between passes forever; after
// the bound is hit the residual is logged and accepted.
const maxRedistributePasses = 3

// CalculateSceneDurations splits a total duration across scenes in
// proportion to their weights, then raises any scene below minScene to the
// minimum, taking the difference from the scenes that have room. The
// returned slice is index-aligned with scenes.
//
// When total is not positive the scenes' existing durations are returned
// unchanged: the narration lengths are already authoritative.
func CalculateSceneDurations(total float64, sceneList []*model.SceneAsset, minScene float64) []float64 {
	durations := make([]float64, len(sceneList))
	if len(sceneList) == 0 {
		return durations
	}
	if total <= 0 {
		for i, s := range sceneList {
			durations[i] = s.Duration
		}
		return durations
	}

	var weightSum float64
	for _, s := range sceneList {
		weightSum += s.EffectiveWeight()
	}
	for i, s := range sceneList {
		durations[i] = total * s.EffectiveWeight() / weightSum
	}

	return clampDurations(durations, total, minScene)
}

// EditOp names a structural change to the scene list that requires the
// durations around it to be redistributed.
type EditOp string

const (
	// OpAdd inserts a new scene; the composition grows by its duration.
	OpAdd EditOp = "add"
	// OpRemove deletes a scene; the composition shrinks by its duration.
	OpRemove EditOp = "remove"
	// OpModify changes one scene's duration; the others absorb the inverse
	// delta so the composition's length is unchanged.
	OpModify EditOp = "modify"
)

// RedistributeDurations returns the duration list after a scene edit.
//
// On OpAdd, newDuration (or minScene when unset) is inserted at index and the
// total grows by exactly the inserted duration; the clamp then pulls any
// minimum-duration deficit proportionally from the scenes with room. On
// OpRemove the entry at index is deleted and the total shrinks by exactly the
// removed duration. On OpModify the entry at index becomes newDuration and
// the inverse delta is spread evenly across the other scenes, floored at
// minScene, so the total is conserved.
//
// The input slice is never modified. An index out of range logs a warning and
// returns a copy of the input unchanged.
func RedistributeDurations(durations []float64, index int, op EditOp, newDuration float64, minScene float64) []float64 {
	if minScene <= 0 {
		minScene = 3.0
	}

	limit := len(durations)
	if op != OpAdd {
		limit-- // add may append; remove and modify need an existing entry
	}
	if index < 0 || index > limit {
		slog.Warn("redistribution index out of range, keeping durations",
			"op", op,
			"index", index,
			"scenes", len(durations))
		out := make([]float64, len(durations))
		copy(out, durations)
		return out
	}

	switch op {
	case OpAdd:
		inserted := newDuration
		if inserted <= 0 {
			inserted = minScene
		}
		if inserted < minScene {
			inserted = minScene
		}
		out := make([]float64, 0, len(durations)+1)
		out = append(out, durations[:index]...)
		out = append(out, inserted)
		out = append(out, durations[index:]...)
		slog.Info("scene inserted", "index", index, "duration", inserted)
		return clampDurations(out, sum(durations)+inserted, minScene)

	case OpRemove:
		out := make([]float64, 0, len(durations)-1)
		out = append(out, durations[:index]...)
		out = append(out, durations[index+1:]...)
		slog.Info("scene removed", "index", index, "duration", durations[index])
		return out

	case OpModify:
		target := newDuration
		if target < minScene {
			target = minScene
		}
		out := make([]float64, len(durations))
		copy(out, durations)
		delta := target - out[index]
		out[index] = target
		if others := len(out) - 1; others > 0 {
			share := delta / float64(others)
			for i := range out {
				if i == index {
					continue
				}
				out[i] -= share
				if out[i] < minScene {
					out[i] = minScene
				}
			}
		}
		slog.Info("scene duration modified", "index", index, "delta", delta)
		return out

	default:
		slog.Warn("unknown redistribution operation, keeping durations", "op", op)
		out := make([]float64, len(durations))
		copy(out, durations)
		return out
	}
}

// ReweightDurations recomputes and assigns scene durations after the scene
// weights changed. Changes per scene are logged so edits are traceable in the
// run output.
func ReweightDurations(total float64, sceneList []*model.SceneAsset, minScene float64) {
	durations := CalculateSceneDurations(total, sceneList, minScene)
	for i, s := range sceneList {
		if !nearlyEqual(s.Duration, durations[i], 0.001) {
			slog.Info("scene duration redistributed",
				"scene", s.Index,
				"from", s.Duration,
				"to", durations[i])
		}
		s.Duration = durations[i]
	}
}

// sum totals a duration list.
func sum(durations []float64) float64 {
	var s float64
	for _, d := range durations {
		s += d
	}
	return s
}

// clampDurations raises sub-minimum scenes to minScene and pulls the
// shortfall proportionally from the scenes above the minimum. Bounded at
// maxRedistributePasses; a residual beyond that is logged and kept.
func clampDurations(durations []float64, total float64, minScene float64) []float64 {
	if minScene <= 0 {
		return durations
	}
	if float64(len(durations))*minScene > total {
		// The request is infeasible; pin everything to the minimum and let
		// the total run long rather than produce unwatchably short scenes.
		slog.Warn("total duration too short for minimum scene length",
			"total", total,
			"scenes", len(durations),
			"min_scene", minScene)
		for i := range durations {
			durations[i] = minScene
		}
		return durations
	}

	for pass := 0; pass < maxRedistributePasses; pass++ {
		var deficit float64
		for i, d := range durations {
			if d < minScene {
				deficit += minScene - d
				durations[i] = minScene
			}
		}
		if deficit < 1e-9 {
			return durations
		}

		var available float64
		for _, d := range durations {
			if d > minScene {
				available += d - minScene
			}
		}
		if available < 1e-9 {
			slog.Warn("no slack left to absorb minimum-duration deficit", "deficit", deficit)
			return durations
		}

		take := math.Min(deficit, available)
		scale := take / available
		for i, d := range durations {
			if d > minScene {
				durations[i] = d - (d-minScene)*scale
			}
		}
	}

	var sum float64
	for _, d := range durations {
		sum += d
	}
	if !nearlyEqual(sum, total, 0.1) {
		slog.Warn("duration redistribution left a residual",
			"target", total,
			"actual", sum,
			"passes", maxRedistributePasses)
	}
	return durations
}

// TransitionDurations resolves the per-boundary transition list for a
// request. Request-level transitions win; otherwise each scene's own
// Transition applies to the boundary that follows it.
func TransitionDurations(req *model.CompositionRequest, durations []float64, defaultWindow float64) []model.Transition {
	n := len(req.Scenes)
	if n < 2 {
		return nil
	}
	sources := make([]*model.Transition, n-1)
	for i := 0; i < n-1; i++ {
		if len(req.Transitions) == n-1 {
			sources[i] = req.Transitions[i]
		} else {
			sources[i] = req.Scenes[i].Transition
		}
	}
	return ResolveTransitions(sources, durations, defaultWindow)
}

// ResolveTransitions normalizes one transition source per boundary: an
// active transition with no duration gets defaultWindow, and no window may
// exceed the shorter adjacent scene. sources must have len(durations)-1
// entries; nil entries mean hard cuts.
func ResolveTransitions(sources []*model.Transition, durations []float64, defaultWindow float64) []model.Transition {
	out := make([]model.Transition, len(sources))
	for i, src := range sources {
		if src.IsNone() {
			out[i] = model.Transition{Type: model.TransitionNone}
			continue
		}
		window := src.Duration
		if window <= 0 {
			window = defaultWindow
		}
		if i+1 < len(durations) {
			limit := math.Min(durations[i], durations[i+1])
			if window > limit {
				window = limit
			}
		}
		out[i] = model.Transition{Type: src.Type, Duration: window}
	}
	return out
}

// AdjustForTransitions extends scene durations to compensate for crossfade
// overlap. Each active boundary consumes its window from the joined
// timeline, so half the window is added to each adjacent scene; the summed
// result minus the overlap then lands back on the requested total.
func AdjustForTransitions(durations []float64, transitions []model.Transition) []float64 {
	out := make([]float64, len(durations))
	copy(out, durations)
	for i := range transitions {
		if transitions[i].IsNone() || i+1 >= len(out) {
			continue
		}
		half := transitions[i].Duration / 2
		out[i] += half
		out[i+1] += half
	}
	return out
}

// TransitionOverlap sums the timeline seconds consumed by the crossfades.
func TransitionOverlap(transitions []model.Transition) float64 {
	var sum float64
	for i := range transitions {
		if !transitions[i].IsNone() {
			sum += transitions[i].Duration
		}
	}
	return sum
}

// ValidateSceneDurations checks that the durations sum to the expected
// total within tolerance.
func ValidateSceneDurations(durations []float64, total float64, tolerance float64) error {
	if total <= 0 {
		return nil
	}
	if tolerance <= 0 {
		tolerance = 0.1
	}
	var sum float64
	for _, d := range durations {
		if d <= 0 {
			return fmt.Errorf("scene duration %.3f is not positive", d)
		}
		sum += d
	}
	if math.Abs(sum-total) > tolerance {
		return fmt.Errorf("scene durations sum to %.3f, want %.3f (tolerance %.1f)", sum, total, tolerance)
	}
	return nil
}

func nearlyEqual(a float64, b float64, eps float64) bool {
	return math.Abs(a-b) <= eps
}
