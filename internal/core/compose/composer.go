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
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/jaycherian/gcp-go-video-composer/internal/core/media"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/model"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/scenes"
)

// Composer assembles finished videos from composition requests.
//
// Failure semantics: a scene whose assets cannot be acquired or conformed
// is skipped, not fatal; a run that cannot produce any video at all returns
// a Result pointing at the configured placeholder instead of an error, so
// upstream callers always receive a playable URL. The only errors returned
// are context cancellations and caller mistakes (bad scene index).
type Composer struct {
	engine  Engine
	storage Storage
	cfg     Config
}

// NewComposer creates a Composer, applying defaults for unset tunables.
func NewComposer(engine Engine, storage Storage, cfg Config) *Composer {
	if cfg.MinSceneDuration <= 0 {
		cfg.MinSceneDuration = 3.0
	}
	if cfg.DurationTolerance <= 0 {
		cfg.DurationTolerance = 0.1
	}
	if cfg.DefaultTransitionDuration <= 0 {
		cfg.DefaultTransitionDuration = 1.0
	}
	if cfg.DefaultSceneDuration <= 0 {
		cfg.DefaultSceneDuration = 5.0
	}
	if cfg.MusicVolume <= 0 || cfg.MusicVolume > 1.0 {
		cfg.MusicVolume = 0.3
	}
	return &Composer{engine: engine, storage: storage, cfg: cfg}
}

// sceneAssets is one scene's locally-acquired media.
type sceneAssets struct {
	scene     *model.SceneAsset
	origIndex int
	videoPath string
	audioPath string // empty when the scene has no narration
	isImage   bool   // videoPath is a still image, not a clip
}

// ComposeVideo runs the full assembly pipeline and returns a Result whose
// OutputURL is always usable: the uploaded video on success, the
// placeholder on failure. An error is returned only for context
// cancellation.
func (c *Composer) ComposeVideo(ctx context.Context, req *model.CompositionRequest, progress ProgressFunc) (*Result, error) {
	if req == nil || len(req.Scenes) == 0 {
		return c.placeholder("", 0, 0, "request has no scenes"), nil
	}
	taskID := req.TaskID
	if taskID == "" {
		taskID = uuid.NewString()
	}
	logger := slog.With("task_id", taskID)

	for _, issue := range req.MusicTrackIssues() {
		logger.Warn("music track mismatch", "issue", issue)
	}

	workDir, err := os.MkdirTemp(c.cfg.WorkDirRoot, "compose-*")
	if err != nil {
		logger.Error("failed to create work directory", "error", err)
		return c.placeholder(taskID, len(req.Scenes), len(req.Scenes), "no work directory"), nil
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("failed to remove work directory", "dir", workDir, "error", err)
		}
	}()

	report(progress, 5, "acquiring scene assets")
	kept, skipped, err := c.acquireScenes(ctx, logger, req, workDir)
	if err != nil {
		return nil, err
	}
	if len(kept) == 0 {
		return c.placeholder(taskID, len(req.Scenes), skipped, "no usable scenes"), nil
	}

	targets := c.sceneTargets(ctx, req.TotalDuration, kept)
	transitions := c.resolveTransitions(req, kept, targets)
	adjusted := scenes.AdjustForTransitions(targets, transitions)
	if req.TotalDuration > 0 {
		expected := req.TotalDuration + scenes.TransitionOverlap(transitions)
		if err := scenes.ValidateSceneDurations(adjusted, expected, c.cfg.DurationTolerance); err != nil {
			logger.Warn("scene durations off target", "error", err)
		}
	}

	clips, clipPositions, clipSkipped, err := c.buildClips(ctx, logger, kept, adjusted, progress)
	if err != nil {
		return nil, err
	}
	skipped += clipSkipped
	if len(clips) == 0 {
		return c.placeholder(taskID, len(req.Scenes), skipped, "every scene failed to assemble"), nil
	}

	report(progress, 75, "joining scenes")
	joined, err := c.engine.ConcatScenes(ctx, clips, survivingTransitions(transitions, clipPositions))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Error("scene concatenation failed", "error", err)
		return c.placeholder(taskID, len(req.Scenes), skipped, "concatenation failed"), nil
	}

	report(progress, 85, "layering background music")
	final := c.layerMusic(ctx, logger, req, joined, workDir)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report(progress, 95, "uploading final video")
	outputURL, err := c.storage.Upload(ctx, final, fmt.Sprintf("compositions/%s.mp4", taskID))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Error("final upload failed", "error", err)
		return c.placeholder(taskID, len(req.Scenes), skipped, "upload failed"), nil
	}

	seconds, _ := c.engine.Duration(ctx, final)
	report(progress, 100, "composition complete")
	logger.Info("composition complete",
		"output", outputURL,
		"duration", seconds,
		"scenes", len(req.Scenes),
		"skipped", skipped)

	return &Result{
		TaskID:          taskID,
		OutputURL:       outputURL,
		Status:          model.CompositionStatusComplete,
		DurationSeconds: seconds,
		SceneCount:      len(req.Scenes),
		SkippedScenes:   skipped,
	}, nil
}

// acquireScenes downloads or validates every scene's assets. Scenes whose
// assets cannot be acquired are skipped with a warning.
func (c *Composer) acquireScenes(ctx context.Context, logger *slog.Logger, req *model.CompositionRequest, workDir string) ([]*sceneAssets, int, error) {
	kept := make([]*sceneAssets, 0, len(req.Scenes))
	skipped := 0

	for i, scene := range req.Scenes {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		if scene == nil || scene.VideoURL == "" {
			logger.Warn("scene has no visual asset, skipping", "scene", i)
			skipped++
			continue
		}

		videoPath, err := c.acquire(ctx, scene.VideoURL, workDir)
		if err != nil {
			logger.Warn("failed to acquire scene video, skipping", "scene", i, "ref", scene.VideoURL, "error", err)
			skipped++
			continue
		}

		audioPath := ""
		if scene.AudioURL != "" {
			audioPath, err = c.acquire(ctx, scene.AudioURL, workDir)
			if err != nil {
				logger.Warn("failed to acquire scene narration, skipping", "scene", i, "ref", scene.AudioURL, "error", err)
				skipped++
				continue
			}
		}

		kept = append(kept, &sceneAssets{
			scene:     scene,
			origIndex: i,
			videoPath: videoPath,
			audioPath: audioPath,
			isImage:   isImageFile(videoPath),
		})
	}
	return kept, skipped, nil
}

// acquire resolves an asset reference to a local path, downloading when the
// reference is remote.
func (c *Composer) acquire(ctx context.Context, ref string, workDir string) (string, error) {
	loc := model.ResolveAssetLocation(ref)
	if loc.Kind == model.AssetRemote {
		return c.storage.Download(ctx, loc.URL, workDir)
	}
	if _, err := os.Stat(loc.Path); err != nil {
		return "", fmt.Errorf("local asset missing: %w", err)
	}
	return loc.Path, nil
}

// sceneTargets computes each kept scene's target duration. With a requested
// total the split is weight-based; otherwise each scene keeps its narration
// length, probing the audio when the request does not carry one, with the
// configured default as the last resort.
func (c *Composer) sceneTargets(ctx context.Context, total float64, kept []*sceneAssets) []float64 {
	if total > 0 {
		keptScenes := make([]*model.SceneAsset, len(kept))
		for i, a := range kept {
			keptScenes[i] = a.scene
		}
		return scenes.CalculateSceneDurations(total, keptScenes, c.cfg.MinSceneDuration)
	}

	targets := make([]float64, len(kept))
	for i, a := range kept {
		target := a.scene.Duration
		if target <= 0 && a.audioPath != "" {
			if seconds, ok := c.engine.Duration(ctx, a.audioPath); ok {
				target = seconds
			}
		}
		if target <= 0 {
			slog.Warn("scene duration unknown, using default",
				"scene", a.origIndex,
				"default", c.cfg.DefaultSceneDuration)
			target = c.cfg.DefaultSceneDuration
		}
		if target < c.cfg.MinSceneDuration {
			target = c.cfg.MinSceneDuration
		}
		targets[i] = target
	}
	return targets
}

// resolveTransitions maps the request's transitions onto the kept scenes.
// A boundary between two kept scenes that were adjacent in the request
// keeps its transition; a boundary spanning a skipped scene becomes a hard
// cut.
func (c *Composer) resolveTransitions(req *model.CompositionRequest, kept []*sceneAssets, targets []float64) []model.Transition {
	if len(kept) < 2 {
		return nil
	}
	sources := make([]*model.Transition, len(kept)-1)
	for k := 0; k < len(kept)-1; k++ {
		a, b := kept[k].origIndex, kept[k+1].origIndex
		if b != a+1 {
			continue // hard cut across a skipped scene
		}
		if len(req.Transitions) == len(req.Scenes)-1 {
			sources[k] = req.Transitions[a]
		} else {
			sources[k] = kept[k].scene.Transition
		}
	}
	return scenes.ResolveTransitions(sources, targets, c.cfg.DefaultTransitionDuration)
}

// buildClips conforms each kept scene's assets to its adjusted duration and
// muxes narration on. Failed scenes are skipped; positions reports which
// kept indexes survived, for transition realignment.
func (c *Composer) buildClips(ctx context.Context, logger *slog.Logger, kept []*sceneAssets, adjusted []float64, progress ProgressFunc) ([]string, []int, int, error) {
	clips := make([]string, 0, len(kept))
	positions := make([]int, 0, len(kept))
	skipped := 0

	for i, a := range kept {
		if err := ctx.Err(); err != nil {
			return nil, nil, 0, err
		}
		report(progress, 10+60*i/len(kept), fmt.Sprintf("assembling scene %d", a.origIndex))

		clip, err := c.buildClip(ctx, a, adjusted[i], i == 0, i == len(kept)-1)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, 0, ctx.Err()
			}
			logger.Warn("failed to assemble scene, skipping", "scene", a.origIndex, "error", err)
			skipped++
			continue
		}
		clips = append(clips, clip)
		positions = append(positions, i)
	}
	return clips, positions, skipped, nil
}

// buildClip produces one scene's final clip at the target duration.
func (c *Composer) buildClip(ctx context.Context, a *sceneAssets, target float64, first bool, last bool) (string, error) {
	var videoClip string
	var err error

	if a.isImage {
		videoClip, err = c.engine.ImageToVideo(ctx, a.videoPath, target, motionFor(a.origIndex))
	} else {
		opts := media.AdjustOptions{FadeIn: first, FadeOut: last}
		videoClip, err = c.engine.AdjustVideoDuration(ctx, a.videoPath, target, opts)
	}
	if err != nil {
		return "", fmt.Errorf("visual conform failed: %w", err)
	}

	if a.audioPath == "" {
		return videoClip, nil
	}

	narration, err := c.engine.AdjustAudioDuration(ctx, a.audioPath, target, media.DefaultAdjustOptions())
	if err != nil {
		return "", fmt.Errorf("narration conform failed: %w", err)
	}
	clip, err := c.engine.CombineAudioVideo(ctx, videoClip, narration, 1.0)
	if err != nil {
		return "", fmt.Errorf("narration mux failed: %w", err)
	}
	return clip, nil
}

// layerMusic downloads the request's music tracks and mixes them under the
// joined video. Music is best-effort: any failure logs and returns the
// joined video unchanged.
func (c *Composer) layerMusic(ctx context.Context, logger *slog.Logger, req *model.CompositionRequest, joined string, workDir string) string {
	urls := req.MusicURLs()
	if len(urls) == 0 {
		return joined
	}

	tracks := make([]string, 0, len(urls))
	for _, url := range urls {
		local, err := c.acquire(ctx, url, workDir)
		if err != nil {
			logger.Warn("failed to acquire music track, dropping", "ref", url, "error", err)
			continue
		}
		tracks = append(tracks, local)
	}
	if len(tracks) == 0 {
		return joined
	}

	mixed, err := c.engine.LayerMusic(ctx, joined, tracks, c.cfg.MusicVolume)
	if err != nil {
		logger.Warn("music layering failed, continuing without music", "error", err)
		return joined
	}
	return mixed
}

// survivingTransitions realigns the boundary list after clip failures:
// consecutive survivors keep their boundary, gaps become hard cuts.
func survivingTransitions(transitions []model.Transition, positions []int) []model.Transition {
	if len(positions) < 2 {
		return nil
	}
	out := make([]model.Transition, len(positions)-1)
	for k := 0; k < len(positions)-1; k++ {
		if positions[k+1] == positions[k]+1 {
			out[k] = transitions[positions[k]]
		} else {
			out[k] = model.Transition{Type: model.TransitionNone}
		}
	}
	return out
}

// placeholder builds the failure Result pointing at the configured
// placeholder video.
func (c *Composer) placeholder(taskID string, sceneCount int, skipped int, reason string) *Result {
	slog.Error("composition failed, returning placeholder",
		"task_id", taskID,
		"reason", reason)
	return &Result{
		TaskID:        taskID,
		OutputURL:     c.cfg.PlaceholderURL,
		Status:        model.CompositionStatusFailed,
		SceneCount:    sceneCount,
		SkippedScenes: skipped,
	}
}

// motionFor alternates camera moves so consecutive still-image scenes do
// not all drift the same way.
func motionFor(index int) media.MotionType {
	if index%2 == 0 {
		return media.MotionZoomIn
	}
	return media.MotionZoomOut
}

// report forwards a progress update when a callback is present.
func report(progress ProgressFunc, percent int, message string) {
	if progress != nil {
		progress(percent, message)
	}
}

// isImageFile sniffs a file's magic bytes to decide whether the visual
// asset is a still image that needs motion rendering.
func isImageFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 261)
	n, err := f.Read(head)
	if err != nil || n == 0 {
		return false
	}
	return filetype.IsImage(head[:n])
}
