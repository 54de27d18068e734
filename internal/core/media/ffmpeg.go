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

// Package media wraps the ffmpeg and ffprobe command-line tools behind
// typed, context-aware operations: duration probing, audio/video duration
// adjustment (trim, tempo-chain stretch, loop), frame/audio extraction,
// still-image motion clips, concatenation with crossfade transitions, and
// background-music layering.
//
// This file defines the Runner, the single chokepoint through which every
// subprocess is launched. All invocations honor context cancellation; the
// spawned process group is killed (not merely awaited) when the context is
// canceled, so a canceled composition cannot leave orphaned encoders behind.
package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default executable names, used when the config does not pin a path.
const (
	DefaultFFmpegCommand  = "ffmpeg"
	DefaultFFprobeCommand = "ffprobe"
)

// stderrTailBytes bounds how much ffmpeg stderr is attached to errors.
const stderrTailBytes = 2048

// Runner executes ffmpeg/ffprobe subprocesses.
type Runner struct {
	ffmpegPath  string
	ffprobePath string
}

// NewRunner creates a Runner. Empty paths fall back to the bare command
// names, resolved through PATH at execution time.
func NewRunner(ffmpegPath string, ffprobePath string) *Runner {
	if strings.TrimSpace(ffmpegPath) == "" {
		ffmpegPath = DefaultFFmpegCommand
	}
	if strings.TrimSpace(ffprobePath) == "" {
		ffprobePath = DefaultFFprobeCommand
	}
	return &Runner{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// Available reports whether both executables can be resolved. Used by tests
// to skip integration suites on machines without ffmpeg.
func (r *Runner) Available() bool {
	if _, err := exec.LookPath(r.ffmpegPath); err != nil {
		return false
	}
	_, err := exec.LookPath(r.ffprobePath)
	return err == nil
}

// Run invokes ffmpeg with the given arguments, prefixed with the standard
// non-interactive flags. A non-zero exit is returned as an error carrying
// the tail of stderr for diagnosis.
func (r *Runner) Run(ctx context.Context, args ...string) error {
	full := append([]string{"-y", "-hide_banner", "-loglevel", "error"}, args...)
	cmd := exec.CommandContext(ctx, r.ffmpegPath, full...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// Kill the whole process group on cancel; ffmpeg forks helpers and a
	// plain SIGKILL on the parent can strand them.
	configureProcessGroup(cmd)
	cmd.WaitDelay = 5 * time.Second

	slog.Debug("running ffmpeg", "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, tail(stderr.Bytes()))
	}
	return nil
}

// RunProbe invokes ffprobe and returns its stdout.
func (r *Runner) RunProbe(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.ffprobePath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	configureProcessGroup(cmd)
	cmd.WaitDelay = 5 * time.Second

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffprobe failed: %w: %s", err, tail(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// tail returns the last stderrTailBytes of a buffer as a trimmed string.
func tail(b []byte) string {
	if len(b) > stderrTailBytes {
		b = b[len(b)-stderrTailBytes:]
	}
	return strings.TrimSpace(string(b))
}

// TempMediaPath builds a collision-free output path inside dir with the
// given name prefix and extension (including the dot). Media outputs need
// real extensions so ffmpeg can infer the container format.
func TempMediaPath(dir string, prefix string, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s%s", prefix, uuid.NewString()[:8], ext))
}
