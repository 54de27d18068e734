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
	"path/filepath"
)

// MotionType selects the virtual camera move applied when turning a still
// image into a video clip.
type MotionType string

const (
	MotionNone     MotionType = "none"
	MotionZoomIn   MotionType = "zoom_in"
	MotionZoomOut  MotionType = "zoom_out"
	MotionPanLeft  MotionType = "pan_left"
	MotionPanRight MotionType = "pan_right"
)

// Output geometry for generated clips.
const (
	outputWidth  = 1280
	outputHeight = 720

	// zoompan starts from an upscaled frame so sub-pixel panning does not
	// shimmer.
	zoompanScale = 4

	maxZoom = 1.5
)

// ExtractAudio pulls the audio track out of a video into a standalone AAC
// file. A zero duration means "to the end of the clip".
func (r *Runner) ExtractAudio(ctx context.Context, videoPath string, start float64, duration float64) (string, error) {
	out := TempMediaPath(filepath.Dir(videoPath), "audio-extract", ".m4a")
	args := make([]string, 0, 12)
	if start > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", start))
	}
	args = append(args, "-i", videoPath)
	if duration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.3f", duration))
	}
	args = append(args, "-vn", "-c:a", "aac", out)
	if err := r.Run(ctx, args...); err != nil {
		return "", err
	}
	return out, nil
}

// ExtractClip cuts a window out of a video, re-encoding for frame-accurate
// boundaries.
func (r *Runner) ExtractClip(ctx context.Context, videoPath string, start float64, duration float64) (string, error) {
	if duration <= 0 {
		return "", fmt.Errorf("invalid clip duration %.3f for %s", duration, videoPath)
	}
	out := TempMediaPath(filepath.Dir(videoPath), "clip", ".mp4")
	err := r.Run(ctx,
		"-ss", fmt.Sprintf("%.3f", start),
		"-i", videoPath,
		"-t", fmt.Sprintf("%.3f", duration),
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		"-c:a", "aac",
		out)
	if err != nil {
		return "", err
	}
	return out, nil
}

// ExtractFrame captures a single frame at the given offset as a JPEG.
func (r *Runner) ExtractFrame(ctx context.Context, videoPath string, at float64) (string, error) {
	out := TempMediaPath(filepath.Dir(videoPath), "frame", ".jpg")
	err := r.Run(ctx,
		"-ss", fmt.Sprintf("%.3f", at),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		out)
	if err != nil {
		return "", err
	}
	return out, nil
}

// CombineAudioVideo muxes an audio file onto a video, replacing any
// existing soundtrack. The video stream is copied untouched; -shortest
// guards against a slightly longer audio track stretching the clip.
func (r *Runner) CombineAudioVideo(ctx context.Context, videoPath string, audioPath string, volume float64) (string, error) {
	out := TempMediaPath(filepath.Dir(videoPath), "combined", ".mp4")
	args := []string{
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v", "-map", "1:a",
		"-c:v", "copy",
	}
	if volume > 0 && volume != 1.0 {
		args = append(args, "-filter:a", fmt.Sprintf("volume=%.3f", volume))
	}
	args = append(args, "-c:a", "aac", "-shortest", out)
	if err := r.Run(ctx, args...); err != nil {
		return "", err
	}
	return out, nil
}

// ImageToVideo renders a still image as a video clip of the given duration,
// optionally with a Ken Burns style camera move. The clip is silent; a
// narration track is muxed on afterwards.
func (r *Runner) ImageToVideo(ctx context.Context, imagePath string, duration float64, motion MotionType) (string, error) {
	if duration <= 0 {
		return "", fmt.Errorf("invalid clip duration %.3f for %s", duration, imagePath)
	}
	out := TempMediaPath(filepath.Dir(imagePath), "still", ".mp4")
	frameRate := 24
	frames := int(duration * float64(frameRate))
	if frames < 1 {
		frames = 1
	}

	err := r.Run(ctx,
		"-loop", "1",
		"-i", imagePath,
		"-t", fmt.Sprintf("%.3f", duration),
		"-vf", motionFilter(motion, frames, frameRate),
		"-r", fmt.Sprintf("%d", frameRate),
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		out)
	if err != nil {
		return "", err
	}
	return out, nil
}

// motionFilter builds the scale+zoompan filter chain for a camera move over
// the given number of output frames.
func motionFilter(motion MotionType, frames int, frameRate int) string {
	prescale := fmt.Sprintf("scale=%d:%d", outputWidth*zoompanScale, outputHeight*zoompanScale)
	size := fmt.Sprintf("%dx%d", outputWidth, outputHeight)
	rate := (maxZoom - 1.0) / float64(frames)
	centerX := "iw/2-(iw/zoom/2)"
	centerY := "ih/2-(ih/zoom/2)"

	switch motion {
	case MotionZoomIn:
		return fmt.Sprintf("%s,zoompan=z='min(1+%.6f*on,%.3f)':d=%d:x='%s':y='%s':s=%s:fps=%d",
			prescale, rate, maxZoom, frames, centerX, centerY, size, frameRate)
	case MotionZoomOut:
		return fmt.Sprintf("%s,zoompan=z='max(%.3f-%.6f*on,1.0)':d=%d:x='%s':y='%s':s=%s:fps=%d",
			prescale, maxZoom, rate, frames, centerX, centerY, size, frameRate)
	case MotionPanLeft:
		return fmt.Sprintf("%s,zoompan=z=%.3f:d=%d:x='(iw-iw/zoom)*(1-on/%d)':y='%s':s=%s:fps=%d",
			prescale, maxZoom, frames, frames, centerY, size, frameRate)
	case MotionPanRight:
		return fmt.Sprintf("%s,zoompan=z=%.3f:d=%d:x='(iw-iw/zoom)*on/%d':y='%s':s=%s:fps=%d",
			prescale, maxZoom, frames, frames, centerY, size, frameRate)
	default:
		return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
			outputWidth, outputHeight, outputWidth, outputHeight)
	}
}
