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
)

// LayerMusic mixes background music tracks under the video's narration.
//
// The video's timeline is split evenly across the tracks; each track is
// looped or trimmed (never tempo-stretched) to its segment, the segments
// are concatenated into one bed, and the bed is mixed in attenuated under
// the existing soundtrack. The video stream is copied untouched.
func (t *Toolkit) LayerMusic(ctx context.Context, videoPath string, musicPaths []string, volume float64) (string, error) {
	if len(musicPaths) == 0 {
		out := TempMediaPath(filepath.Dir(videoPath), "final", ".mp4")
		return out, copyFile(videoPath, out)
	}
	if volume <= 0 || volume > 1.0 {
		volume = 0.3
	}

	total, ok := t.Runner.Duration(ctx, videoPath)
	if !ok {
		return "", fmt.Errorf("cannot layer music: duration of %s unknown", videoPath)
	}

	segments := musicSegments(total, len(musicPaths))
	fitted := make([]string, 0, len(musicPaths))
	defer func() {
		for _, f := range fitted {
			_ = os.Remove(f)
		}
	}()

	for i, track := range musicPaths {
		opts := AdjustOptions{FadeIn: i > 0, FadeOut: true}
		seg, err := t.Audio.FitDuration(ctx, track, segments[i], opts)
		if err != nil {
			return "", fmt.Errorf("failed to fit music track %d: %w", i, err)
		}
		fitted = append(fitted, seg)
	}

	bed, err := t.concatAudio(ctx, fitted, filepath.Dir(videoPath))
	if err != nil {
		return "", fmt.Errorf("failed to build music bed: %w", err)
	}
	defer func() { _ = os.Remove(bed) }()

	out := TempMediaPath(filepath.Dir(videoPath), "final", ".mp4")
	graph := fmt.Sprintf(
		"[1:a]volume=%.3f[bgm];[0:a][bgm]amix=inputs=2:duration=first:dropout_transition=0[aout]",
		volume)
	err = t.Runner.Run(ctx,
		"-i", videoPath,
		"-i", bed,
		"-filter_complex", graph,
		"-map", "0:v", "-map", "[aout]",
		"-c:v", "copy",
		"-c:a", "aac",
		out)
	if err != nil {
		return "", err
	}
	return out, nil
}

// concatAudio joins audio segments with the concat demuxer.
func (t *Toolkit) concatAudio(ctx context.Context, segments []string, dir string) (string, error) {
	out := TempMediaPath(dir, "music-bed", ".m4a")
	if len(segments) == 1 {
		return out, copyFile(segments[0], out)
	}

	list, err := os.CreateTemp(dir, "music-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create concat list: %w", err)
	}
	defer func() { _ = os.Remove(list.Name()) }()

	var b strings.Builder
	for _, seg := range segments {
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(seg, "'", `'\''`))
	}
	if _, err := list.WriteString(b.String()); err != nil {
		_ = list.Close()
		return "", fmt.Errorf("failed to write concat list: %w", err)
	}
	if err := list.Close(); err != nil {
		return "", fmt.Errorf("failed to close concat list: %w", err)
	}

	err = t.Runner.Run(ctx,
		"-f", "concat", "-safe", "0",
		"-i", list.Name(),
		"-c:a", "aac",
		out)
	if err != nil {
		return "", err
	}
	return out, nil
}

// musicSegments splits a total duration evenly across n tracks. The last
// segment absorbs the rounding remainder so the sum is exact.
func musicSegments(total float64, n int) []float64 {
	if n <= 0 || total <= 0 {
		return nil
	}
	segments := make([]float64, n)
	each := total / float64(n)
	var used float64
	for i := 0; i < n-1; i++ {
		segments[i] = each
		used += each
	}
	segments[n-1] = total - used
	return segments
}
