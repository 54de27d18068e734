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
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// audioSampleRate is the output rate for all adjusted audio. Pinning it
// keeps resample-based stretching exact and concat inputs uniform.
const audioSampleRate = 48000

// AudioAdjuster conforms an audio clip to a target duration.
//
// The strategy depends on how far off the clip is:
//   - within tolerance: pass through (fades only, if requested)
//   - too long: trim to the target
//   - too short but at least half the target: time-stretch, either
//     pitch-preserving (atempo) or resample-based
//   - shorter than half the target: loop and trim, since stretching that
//     far would be audibly wrong
type AudioAdjuster struct {
	runner *Runner
}

// NewAudioAdjuster creates an adjuster backed by the given Runner.
func NewAudioAdjuster(runner *Runner) *AudioAdjuster {
	return &AudioAdjuster{runner: runner}
}

// AdjustDuration produces a new audio file of the target duration next to
// the source and returns its path. The source is never modified; the caller
// owns the returned file.
func (a *AudioAdjuster) AdjustDuration(ctx context.Context, path string, target float64, opts AdjustOptions) (string, error) {
	if target <= 0 {
		return "", fmt.Errorf("invalid target duration %.3f for %s", target, path)
	}
	current, ok := a.runner.Duration(ctx, path)
	if !ok {
		return "", fmt.Errorf("cannot adjust %s: source duration unknown", path)
	}

	out := TempMediaPath(filepath.Dir(path), "audio-adjusted", ".m4a")

	switch {
	case durationsEqual(current, target):
		if !opts.FadeIn && !opts.FadeOut {
			if err := copyFile(path, out); err != nil {
				return "", err
			}
			return out, nil
		}
		return out, a.render(ctx, path, out, target, 0, audioFadeFilters(target, opts))

	case current > target:
		slog.Debug("trimming audio", "path", path, "current", current, "target", target)
		return out, a.render(ctx, path, out, target, 0, audioFadeFilters(target, opts))

	case current >= target/2:
		// Slowing down: tempo factor in [0.5, 1.0).
		factor := current / target
		slog.Debug("stretching audio", "path", path, "factor", factor)
		var stretch string
		if opts.PreservePitch {
			stretch = atempoFilter(factor)
		} else {
			stretch = fmt.Sprintf("asetrate=%d*%.6f,aresample=%d", audioSampleRate, factor, audioSampleRate)
		}
		filters := append([]string{stretch}, audioFadeFilters(target, opts)...)
		return out, a.render(ctx, path, out, target, 0, filters)

	default:
		loops := loopCount(current, target)
		slog.Debug("looping audio", "path", path, "current", current, "target", target, "loops", loops)
		return out, a.render(ctx, path, out, target, loops, audioFadeFilters(target, opts))
	}
}

// FitDuration loops and/or trims the clip to the target without any tempo
// change. Background music uses this path: stretched music is noticeable in
// a way stretched narration is not.
func (a *AudioAdjuster) FitDuration(ctx context.Context, path string, target float64, opts AdjustOptions) (string, error) {
	if target <= 0 {
		return "", fmt.Errorf("invalid target duration %.3f for %s", target, path)
	}
	current, ok := a.runner.Duration(ctx, path)
	if !ok {
		return "", fmt.Errorf("cannot fit %s: source duration unknown", path)
	}

	out := TempMediaPath(filepath.Dir(path), "audio-fitted", ".m4a")
	loops := 0
	if current < target {
		loops = loopCount(current, target)
	}
	return out, a.render(ctx, path, out, target, loops, audioFadeFilters(target, opts))
}

// render runs the single ffmpeg invocation shared by every adjustment path:
// optional input looping, a hard duration cap, an optional audio filter
// chain, and an AAC re-encode at the pinned sample rate.
func (a *AudioAdjuster) render(ctx context.Context, in string, out string, target float64, loops int, filters []string) error {
	args := make([]string, 0, 16)
	if loops > 0 {
		args = append(args, "-stream_loop", fmt.Sprintf("%d", loops))
	}
	args = append(args, "-i", in, "-t", fmt.Sprintf("%.3f", target), "-vn")
	if len(filters) > 0 {
		args = append(args, "-af", strings.Join(filters, ","))
	}
	args = append(args, "-ar", fmt.Sprintf("%d", audioSampleRate), "-c:a", "aac", out)
	return a.runner.Run(ctx, args...)
}
