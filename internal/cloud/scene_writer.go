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

// Package cloud provides components for interacting with Google Cloud
// services. This file implements the scene writer: the GenAI collaborator
// that splits a story prompt into a scene breakdown. The upstream asset
// generators consume the drafts; the composer only sees the resulting
// CompositionRequest once every asset exists.
package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-video-composer/internal/core/model"
)

// SceneDraft is one scene of a generated breakdown, before any media
// exists: narration text to synthesize, a visual description to render, a
// relative weight, and the transition into the next scene.
type SceneDraft struct {
	Index      int     `json:"index"`
	Narration  string  `json:"narration"`
	Visual     string  `json:"visual"`
	Weight     float64 `json:"weight"`
	Transition string  `json:"transition"`
}

// ToTransition maps the draft's transition name onto the composer's model.
func (d *SceneDraft) ToTransition() *model.Transition {
	switch strings.ToLower(strings.TrimSpace(d.Transition)) {
	case string(model.TransitionFade):
		return &model.Transition{Type: model.TransitionFade}
	case string(model.TransitionDissolve):
		return &model.Transition{Type: model.TransitionDissolve}
	default:
		return nil
	}
}

// SceneWriter asks a GenAI agent model for a scene breakdown of a story
// prompt.
type SceneWriter struct {
	model          *QuotaAwareGenerativeAIModel
	promptTemplate string

	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

// NewSceneWriter creates a scene writer over the configured agent model.
// The template receives the story prompt, the scene count, and the total
// duration, in that order.
func NewSceneWriter(agentModel *QuotaAwareGenerativeAIModel, promptTemplate string) *SceneWriter {
	meter := otel.Meter("scene-writer")
	inputTokens, _ := meter.Int64Counter("scene_writer.tokens.input")
	outputTokens, _ := meter.Int64Counter("scene_writer.tokens.output")
	retries, _ := meter.Int64Counter("scene_writer.retries")

	return &SceneWriter{
		model:              agentModel,
		promptTemplate:     promptTemplate,
		inputTokenCounter:  inputTokens,
		outputTokenCounter: outputTokens,
		retryCounter:       retries,
	}
}

// WriteScenes generates sceneCount scene drafts for the story prompt. The
// model is instructed to return a JSON array matching SceneDraft; indexes
// are normalized to the array order regardless of what the model produced.
func (w *SceneWriter) WriteScenes(ctx context.Context, storyPrompt string, sceneCount int, totalDuration float64) ([]*SceneDraft, error) {
	if sceneCount <= 0 {
		return nil, fmt.Errorf("invalid scene count %d", sceneCount)
	}

	prompt := fmt.Sprintf(w.promptTemplate, storyPrompt, sceneCount, totalDuration)
	raw, err := GenerateAgentResponse(ctx,
		w.inputTokenCounter, w.outputTokenCounter, w.retryCounter,
		0, w.model, NewTextPart(prompt))
	if err != nil {
		return nil, fmt.Errorf("scene breakdown generation failed: %w", err)
	}

	var drafts []*SceneDraft
	if err := json.Unmarshal([]byte(raw), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse scene breakdown: %w", err)
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("scene breakdown came back empty")
	}
	for i, d := range drafts {
		d.Index = i
	}
	return drafts, nil
}
