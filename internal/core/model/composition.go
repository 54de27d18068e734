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
// backend. This file holds the request and ledger models that bracket a
// composition run: the CompositionRequest is what upstream generation hands
// to the composer (typically as the JSON payload of a Pub/Sub message), and
// the CompositionRecord is what the workflow persists to BigQuery once the
// finished video has been uploaded.
package model

import (
	"fmt"
	"time"
)

// CompositionRequest is the full input bundle for one composition run.
// Scenes are ordered by Index; Transitions, when present, has length
// len(Scenes)-1 and describes the boundary following each scene.
type CompositionRequest struct {
	TaskID        string        `json:"task_id"`
	Prompt        string        `json:"prompt,omitempty"`         // Original user prompt, carried for the ledger.
	TotalDuration float64       `json:"total_duration,omitempty"` // Requested length in seconds; 0 means "sum of scene durations".
	Scenes        []*SceneAsset `json:"scenes"`
	MusicTracks   []*MusicTrack `json:"music_tracks,omitempty"`
	Transitions   []*Transition `json:"transitions,omitempty"`
}

// MusicURLs returns the generated music references in track order, skipping
// tracks whose generation never completed.
func (r *CompositionRequest) MusicURLs() []string {
	out := make([]string, 0, len(r.MusicTracks))
	for _, t := range r.MusicTracks {
		if t != nil && t.MusicURL != "" {
			out = append(out, t.MusicURL)
		}
	}
	return out
}

// MusicTrackIssues reports referential problems between the music tracks and
// the scene list: track indexes pointing at scenes that do not exist, and
// scenes no track underscores. Issues never block a composition; the composer
// logs them so a mis-grouped breakdown is visible in the run output.
func (r *CompositionRequest) MusicTrackIssues() []string {
	if len(r.MusicTracks) == 0 {
		return nil
	}
	var issues []string
	covered := make(map[int]bool)
	for ti, track := range r.MusicTracks {
		if track == nil {
			continue
		}
		for _, idx := range track.SceneIndexes {
			if idx < 0 || idx >= len(r.Scenes) {
				issues = append(issues,
					fmt.Sprintf("music track %d references scene %d, which does not exist", ti, idx))
				continue
			}
			covered[idx] = true
		}
	}
	for i := range r.Scenes {
		if !covered[i] {
			issues = append(issues, fmt.Sprintf("scene %d has no music track assigned", i))
		}
	}
	return issues
}

// Composition ledger statuses.
const (
	CompositionStatusComplete = "COMPLETE"
	CompositionStatusFailed   = "FAILED"
)

// CompositionRecord is the BigQuery row written for every finished
// composition, successful or not. A FAILED record's OutputURL is the
// placeholder video, matching what the caller was handed.
type CompositionRecord struct {
	TaskID          string    `json:"task_id" bigquery:"task_id"`
	Prompt          string    `json:"prompt" bigquery:"prompt"`
	Status          string    `json:"status" bigquery:"status"`
	OutputURL       string    `json:"output_url" bigquery:"output_url"`
	DurationSeconds float64   `json:"duration_seconds" bigquery:"duration_seconds"`
	SceneCount      int       `json:"scene_count" bigquery:"scene_count"`
	SkippedScenes   int       `json:"skipped_scenes" bigquery:"skipped_scenes"`
	CreatedAt       time.Time `json:"created_at" bigquery:"created_at"`
}
