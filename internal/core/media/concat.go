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
	"os"
	"path/filepath"
	"strings"

	"github.com/jaycherian/gcp-go-video-composer/internal/core/model"
)

// hardCutDuration is the xfade window used for "none" boundaries inside an
// otherwise-transitioned sequence: short enough to read as a straight cut.
const hardCutDuration = 0.05

// ConcatScenes joins scene clips into one video. When every boundary is a
// hard cut it uses the concat demuxer; when any boundary carries a fade or
// dissolve it builds an xfade/acrossfade filter graph instead. Either way
// the output is re-encoded so mismatched source encodes cannot corrupt the
// joined stream.
//
// transitions holds one entry per boundary, so len(transitions) must be
// len(clips)-1 (or zero for all hard cuts).
func (t *Toolkit) ConcatScenes(ctx context.Context, clips []string, transitions []model.Transition) (string, error) {
	if len(clips) == 0 {
		return "", fmt.Errorf("no clips to concatenate")
	}
	if len(transitions) != 0 && len(transitions) != len(clips)-1 {
		return "", fmt.Errorf("got %d transitions for %d clips, want %d", len(transitions), len(clips), len(clips)-1)
	}

	out := TempMediaPath(filepath.Dir(clips[0]), "concat", ".mp4")

	if len(clips) == 1 {
		if err := copyFile(clips[0], out); err != nil {
			return "", err
		}
		return out, nil
	}

	if !anyActiveTransition(transitions) {
		return out, t.concatDemuxer(ctx, clips, out)
	}

	durations := make([]float64, len(clips))
	for i, clip := range clips {
		seconds, ok := t.Runner.Duration(ctx, clip)
		if !ok {
			return "", fmt.Errorf("cannot build transition graph: duration of %s unknown", clip)
		}
		durations[i] = seconds
	}

	graph, err := buildTransitionGraph(durations, transitions)
	if err != nil {
		return "", err
	}

	args := make([]string, 0, 2*len(clips)+12)
	for _, clip := range clips {
		args = append(args, "-i", clip)
	}
	args = append(args,
		"-filter_complex", graph,
		"-map", "[vout]", "-map", "[aout]",
		"-r", fmt.Sprintf("%d", t.frameRate),
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		"-c:a", "aac",
		out)
	return out, t.Runner.Run(ctx, args...)
}

// concatDemuxer joins clips via an ffmpeg concat list file.
func (t *Toolkit) concatDemuxer(ctx context.Context, clips []string, out string) error {
	list, err := os.CreateTemp(filepath.Dir(out), "concat-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create concat list: %w", err)
	}
	defer func() { _ = os.Remove(list.Name()) }()

	var b strings.Builder
	for _, clip := range clips {
		// Single quotes per the concat demuxer's own escaping rules.
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(clip, "'", `'\''`))
	}
	if _, err := list.WriteString(b.String()); err != nil {
		_ = list.Close()
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	if err := list.Close(); err != nil {
		return fmt.Errorf("failed to close concat list: %w", err)
	}

	return t.Runner.Run(ctx,
		"-f", "concat", "-safe", "0",
		"-i", list.Name(),
		"-r", fmt.Sprintf("%d", t.frameRate),
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		"-c:a", "aac",
		out)
}

// anyActiveTransition reports whether any boundary needs a crossfade.
func anyActiveTransition(transitions []model.Transition) bool {
	for _, tr := range transitions {
		if !tr.IsNone() {
			return true
		}
	}
	return false
}

// buildTransitionGraph renders the xfade/acrossfade filter_complex for the
// given per-clip durations and per-boundary transitions. The final video
// and audio streams are labeled [vout] and [aout].
//
// Each xfade offset is where the overlap begins on the accumulated stream:
// the running length so far minus the transition window. Every crossfade
// shortens the total by its window, so the running length is carried
// forward boundary by boundary.
func buildTransitionGraph(durations []float64, transitions []model.Transition) (string, error) {
	if len(durations) < 2 {
		return "", fmt.Errorf("transition graph needs at least two clips")
	}
	if len(transitions) != len(durations)-1 {
		return "", fmt.Errorf("got %d transitions for %d clips", len(transitions), len(durations))
	}

	var b strings.Builder
	prevV, prevA := "[0:v]", "[0:a]"
	elapsed := durations[0]

	for i := 1; i < len(durations); i++ {
		tr := transitions[i-1]
		window := tr.Duration
		name := xfadeName(tr.Type)
		if tr.IsNone() {
			window = hardCutDuration
			name = "fade"
		} else if window <= 0 {
			window = 1.0
		}
		// A crossfade cannot be longer than either side.
		if window > elapsed {
			window = elapsed
		}
		if window > durations[i] {
			window = durations[i]
		}

		offset := elapsed - window
		vLabel := fmt.Sprintf("[v%d]", i)
		aLabel := fmt.Sprintf("[a%d]", i)
		if i == len(durations)-1 {
			vLabel, aLabel = "[vout]", "[aout]"
		}

		fmt.Fprintf(&b, "%s[%d:v]xfade=transition=%s:duration=%.3f:offset=%.3f%s;",
			prevV, i, name, window, offset, vLabel)
		fmt.Fprintf(&b, "%s[%d:a]acrossfade=d=%.3f%s;",
			prevA, i, window, aLabel)

		prevV, prevA = vLabel, aLabel
		elapsed += durations[i] - window
	}
	return strings.TrimSuffix(b.String(), ";"), nil
}

// xfadeName maps a transition type to its xfade filter name.
func xfadeName(transitionType model.TransitionType) string {
	switch transitionType {
	case model.TransitionDissolve:
		return "dissolve"
	default:
		return "fade"
	}
}
