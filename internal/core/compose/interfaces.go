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

// Package compose orchestrates the assembly of a finished video from a
// CompositionRequest: acquiring scene assets, conforming them to their
// target durations, joining the scene clips with transitions, layering
// background music, and publishing the result.
//
// The Composer depends on two narrow interfaces, Engine (the media
// operations, implemented by media.Toolkit) and Storage (object up/download,
// implemented by the GCS layer), so the orchestration logic tests with
// in-memory fakes.
package compose

import (
	"context"

	"github.com/jaycherian/gcp-go-video-composer/internal/core/media"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/model"
)

// Engine is the slice of the media toolkit the composer drives.
type Engine interface {
	Duration(ctx context.Context, path string) (float64, bool)
	AdjustAudioDuration(ctx context.Context, path string, target float64, opts media.AdjustOptions) (string, error)
	AdjustVideoDuration(ctx context.Context, path string, target float64, opts media.AdjustOptions) (string, error)
	CombineAudioVideo(ctx context.Context, videoPath string, audioPath string, volume float64) (string, error)
	ImageToVideo(ctx context.Context, imagePath string, duration float64, motion media.MotionType) (string, error)
	ConcatScenes(ctx context.Context, clips []string, transitions []model.Transition) (string, error)
	LayerMusic(ctx context.Context, videoPath string, musicPaths []string, volume float64) (string, error)
	ExtractClip(ctx context.Context, videoPath string, start float64, duration float64) (string, error)
}

// Storage moves assets between object storage and the local work directory.
type Storage interface {
	// Download fetches a remote asset into destDir and returns the local path.
	Download(ctx context.Context, url string, destDir string) (string, error)
	// Upload publishes a local file under the given object name and returns
	// the reference callers can hand out.
	Upload(ctx context.Context, localPath string, objectName string) (string, error)
}

// ProgressFunc receives composition progress updates. May be nil.
type ProgressFunc func(percent int, message string)

// Config carries the composition tunables, loaded from the service config.
type Config struct {
	// PlaceholderURL is returned instead of an error when a composition
	// cannot produce a real video.
	PlaceholderURL string

	MinSceneDuration          float64
	DurationTolerance         float64
	DefaultTransitionDuration float64
	// DefaultSceneDuration is the fallback when neither the request nor a
	// probe of the narration yields a usable scene length.
	DefaultSceneDuration float64
	MusicVolume          float64

	// WorkDirRoot hosts per-run scratch directories; empty means the system
	// temp directory.
	WorkDirRoot string
}

// Result summarizes one composition run for the caller and the ledger.
type Result struct {
	TaskID          string
	OutputURL       string
	Status          string
	DurationSeconds float64
	SceneCount      int
	SkippedScenes   int
}
