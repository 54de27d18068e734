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

// VideoAdjuster conforms a video clip to a target duration.
//
// Mirrors the audio decision tree, with one difference: a speed change must
// touch the video and audio streams together (setpts for the frames, atempo
// for the sound) or the two drift out of sync.
type VideoAdjuster struct {
	runner    *Runner
	frameRate int
}

// NewVideoAdjuster creates an adjuster that re-encodes at the given frame
// rate (zero means 24).
func NewVideoAdjuster(runner *Runner, frameRate int) *VideoAdjuster {
	if frameRate <= 0 {
		frameRate = 24
	}
	return &VideoAdjuster{runner: runner, frameRate: frameRate}
}

// AdjustDuration produces a new video of the target duration next to the
// source and returns its path. The source is never modified.
func (v *VideoAdjuster) AdjustDuration(ctx context.Context, path string, target float64, opts AdjustOptions) (string, error) {
	if target <= 0 {
		return "", fmt.Errorf("invalid target duration %.3f for %s", target, path)
	}
	info, err := v.runner.Probe(ctx, path)
	if err != nil {
		return "", fmt.Errorf("cannot adjust %s: %w", path, err)
	}
	if info.Duration <= 0 {
		return "", fmt.Errorf("cannot adjust %s: source duration unknown", path)
	}
	current := info.Duration

	out := TempMediaPath(filepath.Dir(path), "video-adjusted", ".mp4")

	switch {
	case durationsEqual(current, target):
		if !opts.FadeIn && !opts.FadeOut {
			if err := copyFile(path, out); err != nil {
				return "", err
			}
			return out, nil
		}
		return out, v.render(ctx, path, out, target, 0, videoFadeFilters(target, opts), fadeAudioFilters(info, target, opts))

	case current > target:
		slog.Debug("trimming video", "path", path, "current", current, "target", target)
		return out, v.render(ctx, path, out, target, 0, videoFadeFilters(target, opts), fadeAudioFilters(info, target, opts))

	case current >= target/2:
		// Slow the clip down: speed factor in [0.5, 1.0). setpts divides by
		// the speed, atempo multiplies by it.
		speed := current / target
		slog.Debug("stretching video", "path", path, "speed", speed)
		vf := append([]string{fmt.Sprintf("setpts=PTS/%.6f", speed)}, videoFadeFilters(target, opts)...)
		var af []string
		if info.HasAudio {
			af = append([]string{atempoFilter(speed)}, audioFadeFilters(target, opts)...)
		}
		return out, v.render(ctx, path, out, target, 0, vf, af)

	default:
		loops := loopCount(current, target)
		slog.Debug("looping video", "path", path, "current", current, "target", target, "loops", loops)
		return out, v.render(ctx, path, out, target, loops, videoFadeFilters(target, opts), fadeAudioFilters(info, target, opts))
	}
}

// fadeAudioFilters returns audio fades only when the clip has a soundtrack.
func fadeAudioFilters(info *MediaInfo, target float64, opts AdjustOptions) []string {
	if !info.HasAudio {
		return nil
	}
	return audioFadeFilters(target, opts)
}

// render runs the shared ffmpeg invocation: optional looping, a hard
// duration cap, the video/audio filter chains, and an H.264/AAC re-encode.
func (v *VideoAdjuster) render(ctx context.Context, in string, out string, target float64, loops int, vf []string, af []string) error {
	args := make([]string, 0, 24)
	if loops > 0 {
		args = append(args, "-stream_loop", fmt.Sprintf("%d", loops))
	}
	args = append(args, "-i", in, "-t", fmt.Sprintf("%.3f", target))
	if len(vf) > 0 {
		args = append(args, "-vf", strings.Join(vf, ","))
	}
	if len(af) > 0 {
		args = append(args, "-af", strings.Join(af, ","))
	}
	args = append(args,
		"-r", fmt.Sprintf("%d", v.frameRate),
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		"-c:a", "aac",
		out)
	return v.runner.Run(ctx, args...)
}
