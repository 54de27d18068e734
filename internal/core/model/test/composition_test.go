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

// Package model_test contains unit tests for the data models defined in the
// model package. This file tests the composition request models: asset
// location resolution, scene weights, transitions, and music track access.
package model_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-video-composer/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// TestResolveAssetLocation verifies that raw asset references are classified
// into the correct storage variant: gs:// and http(s):// references are
// remote, everything else is a local filesystem path.
func TestResolveAssetLocation(t *testing.T) {
	loc := model.ResolveAssetLocation("gs://bucket/scene-1.mp4")
	assert.Equal(t, model.AssetRemote, loc.Kind)
	assert.Equal(t, "gs://bucket/scene-1.mp4", loc.URL)
	assert.Equal(t, "", loc.Path)
	assert.Equal(t, "gs://bucket/scene-1.mp4", loc.Ref())

	loc = model.ResolveAssetLocation("https://example.com/scene-1.mp4")
	assert.Equal(t, model.AssetRemote, loc.Kind)

	loc = model.ResolveAssetLocation("/tmp/scene-1.mp4")
	assert.Equal(t, model.AssetLocal, loc.Kind)
	assert.Equal(t, "/tmp/scene-1.mp4", loc.Path)
	assert.Equal(t, "", loc.URL)
	assert.Equal(t, "/tmp/scene-1.mp4", loc.Ref())

	assert.True(t, model.ResolveAssetLocation("").IsZero())
}

// TestEffectiveWeight verifies that unset and non-positive scene weights
// fall back to the default of 1.0 while explicit weights pass through.
func TestEffectiveWeight(t *testing.T) {
	scene := &model.SceneAsset{Index: 1}
	assert.Equal(t, 1.0, scene.EffectiveWeight())

	scene.Weight = -2.0
	assert.Equal(t, 1.0, scene.EffectiveWeight())

	scene.Weight = 1.5
	assert.Equal(t, 1.5, scene.EffectiveWeight())
}

// TestTransitionIsNone verifies the three ways a transition can be absent:
// a nil pointer, an empty type, and the explicit "none" type.
func TestTransitionIsNone(t *testing.T) {
	var missing *model.Transition
	assert.True(t, missing.IsNone())
	assert.True(t, (&model.Transition{}).IsNone())
	assert.True(t, (&model.Transition{Type: model.TransitionNone}).IsNone())
	assert.False(t, (&model.Transition{Type: model.TransitionFade, Duration: 1.0}).IsNone())
	assert.False(t, (&model.Transition{Type: model.TransitionDissolve}).IsNone())
}

// TestMusicURLs verifies that only tracks whose generation completed are
// returned, in track order.
func TestMusicURLs(t *testing.T) {
	req := &model.CompositionRequest{
		MusicTracks: []*model.MusicTrack{
			{Prompt: "first", MusicURL: "gs://bucket/music-1.m4a"},
			{Prompt: "never finished"},
			nil,
			{Prompt: "second", MusicURL: "gs://bucket/music-2.m4a"},
		},
	}
	urls := req.MusicURLs()
	assert.Equal(t, 2, len(urls))
	assert.Equal(t, "gs://bucket/music-1.m4a", urls[0])
	assert.Equal(t, "gs://bucket/music-2.m4a", urls[1])
}

// TestMusicTrackIssues verifies the referential checks between music tracks
// and the scene list: an index with no matching scene is reported, as is a
// scene no track underscores; a fully covered request reports nothing.
func TestMusicTrackIssues(t *testing.T) {
	req := &model.CompositionRequest{
		Scenes: []*model.SceneAsset{{Index: 1}, {Index: 2}, {Index: 3}},
		MusicTracks: []*model.MusicTrack{
			{Prompt: "strings", SceneIndexes: []int{0, 1}},
			{Prompt: "drums", SceneIndexes: []int{5}},
		},
	}

	issues := req.MusicTrackIssues()

	// Track 1 points at scene 5, which does not exist, and scene 2 is left
	// without music.
	assert.Equal(t, 2, len(issues))
	assert.Contains(t, issues[0], "scene 5")
	assert.Contains(t, issues[1], "scene 2 has no music track")
}

// TestMusicTrackIssuesCleanRequest verifies that full coverage and a request
// with no music at all both report nothing.
func TestMusicTrackIssuesCleanRequest(t *testing.T) {
	req := &model.CompositionRequest{
		Scenes: []*model.SceneAsset{{Index: 1}, {Index: 2}},
		MusicTracks: []*model.MusicTrack{
			{Prompt: "strings", SceneIndexes: []int{0, 1}},
		},
	}
	assert.Empty(t, req.MusicTrackIssues())

	assert.Empty(t, (&model.CompositionRequest{
		Scenes: []*model.SceneAsset{{Index: 1}},
	}).MusicTrackIssues())
}
