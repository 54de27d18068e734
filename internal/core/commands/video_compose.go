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

// Package commands provides the concrete implementations of the workflow
// Command interface. This file defines the command that runs the actual
// media assembly: it hands the parsed CompositionRequest to the composer,
// streams progress into the task store, and emits the ledger record for the
// persistence step. Composer failures surface as a FAILED record carrying
// the placeholder URL rather than a chain error; only cancellation stops
// the chain.
package commands

import (
	"fmt"
	"time"

	"github.com/jaycherian/gcp-go-video-composer/internal/core/compose"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/model"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/tasks"
)

// VideoCompose is the command that assembles the final video.
type VideoCompose struct {
	cor.BaseCommand
	composer  *compose.Composer
	taskStore tasks.Store
}

// NewVideoCompose creates the composition command.
func NewVideoCompose(name string, composer *compose.Composer, taskStore tasks.Store) *VideoCompose {
	return &VideoCompose{BaseCommand: *cor.NewBaseCommand(name), composer: composer, taskStore: taskStore}
}

// Execute runs the composition and produces the CompositionRecord.
func (c *VideoCompose) Execute(context cor.Context) {
	req := context.Get(c.GetInputParam()).(*model.CompositionRequest)

	progress := func(percent int, message string) {
		c.taskStore.SetProgress(req.TaskID, percent, message)
	}

	result, err := c.composer.ComposeVideo(context.GetContext(), req, progress)
	if err != nil {
		// Only cancellation reaches here; media failures resolve to the
		// placeholder result instead.
		c.GetErrorCounter().Add(context.GetContext(), 1)
		c.taskStore.Fail(req.TaskID, "composition canceled")
		context.AddError(c.GetName(), fmt.Errorf("composition aborted: %w", err))
		return
	}

	if result.Status == model.CompositionStatusComplete {
		c.taskStore.Complete(result.TaskID, result.OutputURL)
		c.GetSuccessCounter().Add(context.GetContext(), 1)
	} else {
		c.taskStore.Fail(result.TaskID, "composition failed; placeholder returned")
		c.GetErrorCounter().Add(context.GetContext(), 1)
	}

	record := &model.CompositionRecord{
		TaskID:          result.TaskID,
		Prompt:          req.Prompt,
		Status:          result.Status,
		OutputURL:       result.OutputURL,
		DurationSeconds: result.DurationSeconds,
		SceneCount:      result.SceneCount,
		SkippedScenes:   result.SkippedScenes,
		CreatedAt:       time.Now().UTC(),
	}
	context.Add(c.GetOutputParam(), record)
}
