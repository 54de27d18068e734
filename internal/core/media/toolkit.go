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

import "context"

// Toolkit bundles the Runner and both adjusters into the full media engine
// the composer drives. One Toolkit is created at startup and shared by all
// workflow runs; every method is safe for concurrent use because state
// lives in the subprocess, not the struct.
type Toolkit struct {
	Runner *Runner
	Audio  *AudioAdjuster
	Video  *VideoAdjuster

	frameRate int
}

// NewToolkit wires up a Toolkit for the given executable paths and output
// frame rate (zero means 24).
func NewToolkit(ffmpegPath string, ffprobePath string, frameRate int) *Toolkit {
	if frameRate <= 0 {
		frameRate = 24
	}
	runner := NewRunner(ffmpegPath, ffprobePath)
	return &Toolkit{
		Runner:    runner,
		Audio:     NewAudioAdjuster(runner),
		Video:     NewVideoAdjuster(runner, frameRate),
		frameRate: frameRate,
	}
}

// Duration probes a media file's duration. See Runner.Duration.
func (t *Toolkit) Duration(ctx context.Context, path string) (float64, bool) {
	return t.Runner.Duration(ctx, path)
}

// AdjustAudioDuration conforms an audio file to the target duration.
func (t *Toolkit) AdjustAudioDuration(ctx context.Context, path string, target float64, opts AdjustOptions) (string, error) {
	return t.Audio.AdjustDuration(ctx, path, target, opts)
}

// AdjustVideoDuration conforms a video file to the target duration.
func (t *Toolkit) AdjustVideoDuration(ctx context.Context, path string, target float64, opts AdjustOptions) (string, error) {
	return t.Video.AdjustDuration(ctx, path, target, opts)
}

// CombineAudioVideo muxes a narration track onto a video clip.
func (t *Toolkit) CombineAudioVideo(ctx context.Context, videoPath string, audioPath string, volume float64) (string, error) {
	return t.Runner.CombineAudioVideo(ctx, videoPath, audioPath, volume)
}

// ImageToVideo renders a still image as a motion clip.
func (t *Toolkit) ImageToVideo(ctx context.Context, imagePath string, duration float64, motion MotionType) (string, error) {
	return t.Runner.ImageToVideo(ctx, imagePath, duration, motion)
}

// ExtractClip cuts a window out of a video.
func (t *Toolkit) ExtractClip(ctx context.Context, videoPath string, start float64, duration float64) (string, error) {
	return t.Runner.ExtractClip(ctx, videoPath, start, duration)
}

// ExtractAudio pulls a window of the soundtrack out of a video.
func (t *Toolkit) ExtractAudio(ctx context.Context, videoPath string, start float64, duration float64) (string, error) {
	return t.Runner.ExtractAudio(ctx, videoPath, start, duration)
}

// ExtractFrame captures a single frame as a JPEG.
func (t *Toolkit) ExtractFrame(ctx context.Context, videoPath string, at float64) (string, error) {
	return t.Runner.ExtractFrame(ctx, videoPath, at)
}
