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

// Package model defines the core data structures for the video composition
// backend. This file contains the scene-level models that flow through the
// whole pipeline: a SceneAsset is created empty when the scene breakdown is
// produced, populated incrementally as each generation stage completes
// (image -> narration -> video), and finally consumed read-only by the
// composer. The narration audio is the timing authority: once a scene's
// `Duration` is set from the narration length, every other asset is adjusted
// to match it, never the reverse.
package model

// TransitionType identifies the visual effect applied at the boundary
// between two consecutive scenes.
type TransitionType string

const (
	// TransitionNone disables the boundary effect; clips are butt-joined.
	TransitionNone TransitionType = "none"
	// TransitionFade is a fade-through-black between the two clips.
	TransitionFade TransitionType = "fade"
	// TransitionDissolve cross-fades the tail of one clip into the head of
	// the next. The two clips overlap for the transition duration.
	TransitionDissolve TransitionType = "dissolve"
)

// Transition describes the effect between a scene and its successor.
type Transition struct {
	Type     TransitionType `json:"type"`     // Effect name; "none" or empty disables it.
	Duration float64        `json:"duration"` // Effect length in seconds.
}

// IsNone reports whether the transition is absent or explicitly disabled.
func (t *Transition) IsNone() bool {
	return t == nil || t.Type == "" || t.Type == TransitionNone
}

// SceneAsset is one scene's generated media bundle. URLs may reference remote
// objects (gs:// or https://) or local files; resolution happens once, at
// composition ingest, via AssetLocation.
type SceneAsset struct {
	Index    int     `json:"index"`               // Stable scene position across the pipeline.
	VideoURL string  `json:"video_url,omitempty"` // Rendered clip; empty until video generation completes.
	AudioURL string  `json:"audio_url,omitempty"` // Narration track; empty until TTS completes.
	Duration float64 `json:"duration"`            // Authoritative scene length in seconds, set from the narration audio.
	Weight   float64 `json:"weight,omitempty"`    // Relative share of the total duration; 0 means the default 1.0.
	// Transition applies between this scene and the next one. The final
	// scene's transition, if any, is ignored.
	Transition *Transition `json:"transition,omitempty"`
}

// EffectiveWeight returns the scene's weight with the 1.0 default applied.
func (s *SceneAsset) EffectiveWeight() float64 {
	if s.Weight <= 0 {
		return 1.0
	}
	return s.Weight
}

// MusicTrack is a generated background-music clip assigned to a contiguous
// run of scene indexes. Every referenced index must correspond to an existing
// SceneAsset; gaps in the union of all tracks' indexes are tolerated but
// logged at composition time.
type MusicTrack struct {
	Prompt       string `json:"prompt"`              // Generation prompt that produced the clip.
	SceneIndexes []int  `json:"scene_indexes"`       // Ordered scene indexes the track underscores.
	MusicURL     string `json:"music_url,omitempty"` // Set once generation completes.
}
