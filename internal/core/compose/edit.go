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

package compose

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jaycherian/gcp-go-video-composer/internal/core/model"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/scenes"
)

// EditScene re-runs the composition after one scene's assets were replaced.
// The request must already carry the scene's new asset references; this
// redistributes durations over the (possibly re-weighted) scene list and
// assembles a fresh video under a derived task ID, leaving the original
// composition untouched.
func (c *Composer) EditScene(ctx context.Context, req *model.CompositionRequest, sceneIndex int, progress ProgressFunc) (*Result, error) {
	if req == nil || sceneIndex < 0 || sceneIndex >= len(req.Scenes) {
		return nil, fmt.Errorf("scene index %d out of range", sceneIndex)
	}

	baseID := req.TaskID
	if baseID == "" {
		baseID = uuid.NewString()
	}
	edited := *req
	edited.TaskID = fmt.Sprintf("%s-edit-%s", baseID, uuid.NewString()[:8])

	if edited.TotalDuration > 0 {
		scenes.ReweightDurations(edited.TotalDuration, edited.Scenes, c.cfg.MinSceneDuration)
	}
	return c.ComposeVideo(ctx, &edited, progress)
}

// ExtractScene returns the stored video reference for one scene of a
// request, bounds-checked. The clip is whatever asset generation produced
// for the scene; nothing is recomposed.
func (c *Composer) ExtractScene(req *model.CompositionRequest, sceneIndex int) (string, error) {
	if req == nil || sceneIndex < 0 || sceneIndex >= len(req.Scenes) {
		return "", fmt.Errorf("scene index %d out of range", sceneIndex)
	}
	return req.Scenes[sceneIndex].VideoURL, nil
}

// ExtractSceneClip cuts a single scene's segment out of an already-composed
// video and uploads it as a standalone clip. Unlike ExtractScene, the result
// reflects the composition: duration conform, fades, and transition overlap
// are all baked in. The scene's position on the final timeline is recomputed
// from the request the composition was built from.
func (c *Composer) ExtractSceneClip(ctx context.Context, composedRef string, req *model.CompositionRequest, sceneIndex int) (string, error) {
	if req == nil || sceneIndex < 0 || sceneIndex >= len(req.Scenes) {
		return "", fmt.Errorf("scene index %d out of range", sceneIndex)
	}
	taskID := req.TaskID
	if taskID == "" {
		taskID = uuid.NewString()
	}

	workDir, err := os.MkdirTemp(c.cfg.WorkDirRoot, "extract-*")
	if err != nil {
		return "", fmt.Errorf("failed to create work directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	local, err := c.acquire(ctx, composedRef, workDir)
	if err != nil {
		return "", fmt.Errorf("failed to acquire composed video: %w", err)
	}

	targets := c.timelineTargets(req)
	transitions := scenes.TransitionDurations(req, targets, c.cfg.DefaultTransitionDuration)
	adjusted := scenes.AdjustForTransitions(targets, transitions)

	// Walk the timeline: each crossfade before the scene pulls its start
	// earlier by the transition window.
	var start float64
	for i := 0; i < sceneIndex; i++ {
		start += adjusted[i]
		if i < len(transitions) && !transitions[i].IsNone() {
			start -= transitions[i].Duration
		}
	}

	clip, err := c.engine.ExtractClip(ctx, local, start, adjusted[sceneIndex])
	if err != nil {
		return "", fmt.Errorf("failed to extract scene %d: %w", sceneIndex, err)
	}

	url, err := c.storage.Upload(ctx, clip, fmt.Sprintf("clips/%s-scene-%d.mp4", taskID, sceneIndex))
	if err != nil {
		return "", fmt.Errorf("failed to upload extracted scene: %w", err)
	}
	return url, nil
}

// timelineTargets reproduces the per-scene durations the composition used,
// without re-acquiring any assets.
func (c *Composer) timelineTargets(req *model.CompositionRequest) []float64 {
	if req.TotalDuration > 0 {
		return scenes.CalculateSceneDurations(req.TotalDuration, req.Scenes, c.cfg.MinSceneDuration)
	}
	targets := make([]float64, len(req.Scenes))
	for i, s := range req.Scenes {
		target := s.Duration
		if target <= 0 {
			target = c.cfg.DefaultSceneDuration
		}
		if target < c.cfg.MinSceneDuration {
			target = c.cfg.MinSceneDuration
		}
		targets[i] = target
	}
	return targets
}
