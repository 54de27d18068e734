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

package media

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

const (
	// DurationTolerance is the slack within which a clip's duration is
	// considered to already match its target.
	DurationTolerance = 0.1

	// atempo only supports tempo factors in [0.5, 2.0] per filter stage;
	// anything outside is achieved by chaining stages.
	atempoMin = 0.5
	atempoMax = 2.0

	// Fade windows scale with the clip but stay within sane bounds.
	fadeFraction    = 0.15
	fadeMinDuration = 0.1
	fadeMaxDuration = 2.0
)

// AdjustOptions controls the optional behaviors of a duration adjustment.
type AdjustOptions struct {
	FadeIn        bool
	FadeOut       bool
	PreservePitch bool // Audio only: tempo-change vs. resample stretch.
}

// DefaultAdjustOptions returns the options used for narration and scene
// clips: fade out at the end, keep the speaker's pitch.
func DefaultAdjustOptions() AdjustOptions {
	return AdjustOptions{FadeOut: true, PreservePitch: true}
}

// durationsEqual reports whether two durations match within tolerance.
func durationsEqual(a float64, b float64) bool {
	return math.Abs(a-b) <= DurationTolerance
}

// fadeDuration derives a fade window from the clip's target length.
func fadeDuration(target float64) float64 {
	d := target * fadeFraction
	if d < fadeMinDuration {
		d = fadeMinDuration
	}
	if d > fadeMaxDuration {
		d = fadeMaxDuration
	}
	return d
}

// atempoChain decomposes an arbitrary tempo factor into stage factors that
// each fit atempo's [0.5, 2.0] range. The stage products equal the input,
// so e.g. 4.0 becomes [2.0, 2.0] and 0.2 becomes [0.5, 0.4].
func atempoChain(factor float64) []float64 {
	if factor <= 0 {
		return []float64{1.0}
	}
	var stages []float64
	for factor > atempoMax {
		stages = append(stages, atempoMax)
		factor /= atempoMax
	}
	for factor < atempoMin {
		stages = append(stages, atempoMin)
		factor /= atempoMin
	}
	return append(stages, factor)
}

// atempoFilter renders a tempo factor as a comma-joined atempo filter chain.
func atempoFilter(factor float64) string {
	stages := atempoChain(factor)
	parts := make([]string, 0, len(stages))
	for _, stage := range stages {
		parts = append(parts, fmt.Sprintf("atempo=%.6f", stage))
	}
	return strings.Join(parts, ",")
}

// audioFadeFilters returns afade filter stages for the requested fades on a
// clip of the target length. Empty when no fades are requested.
func audioFadeFilters(target float64, opts AdjustOptions) []string {
	var filters []string
	fade := fadeDuration(target)
	if opts.FadeIn {
		filters = append(filters, fmt.Sprintf("afade=t=in:st=0:d=%.3f", fade))
	}
	if opts.FadeOut {
		start := target - fade
		if start < 0 {
			start = 0
		}
		filters = append(filters, fmt.Sprintf("afade=t=out:st=%.3f:d=%.3f", start, fade))
	}
	return filters
}

// videoFadeFilters returns fade filter stages for the video stream.
func videoFadeFilters(target float64, opts AdjustOptions) []string {
	var filters []string
	fade := fadeDuration(target)
	if opts.FadeIn {
		filters = append(filters, fmt.Sprintf("fade=t=in:st=0:d=%.3f", fade))
	}
	if opts.FadeOut {
		start := target - fade
		if start < 0 {
			start = 0
		}
		filters = append(filters, fmt.Sprintf("fade=t=out:st=%.3f:d=%.3f", start, fade))
	}
	return filters
}

// loopCount returns how many ffmpeg -stream_loop repeats are needed for a
// clip of length current to cover target (total plays minus the first).
func loopCount(current float64, target float64) int {
	if current <= 0 {
		return 0
	}
	plays := int(math.Ceil(target / current))
	if plays < 1 {
		plays = 1
	}
	return plays - 1
}

// copyFile duplicates src at dst. Adjusters use it for the no-op path so
// callers always receive a file they own and may delete.
func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return out.Sync()
}
