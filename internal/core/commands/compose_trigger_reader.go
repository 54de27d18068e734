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
// Command interface. This file defines the entry command of the composition
// workflow: it parses the Pub/Sub trigger payload into a
// CompositionRequest, assigns a task ID when the producer did not, and
// registers the task as pending so progress is visible immediately.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jaycherian/gcp-go-video-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/model"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/tasks"
)

// GetCompositionRequestName returns the well-known context key under which
// the parsed CompositionRequest is stored for the rest of the chain.
func GetCompositionRequestName() string {
	return "__COMPOSE_REQ__"
}

// ComposeTriggerReader parses a composition trigger message into a
// CompositionRequest.
type ComposeTriggerReader struct {
	cor.BaseCommand
	taskStore tasks.Store
}

// NewComposeTriggerReader creates the trigger reader. The task store is
// injected so concurrent workflows never share implicit global state.
func NewComposeTriggerReader(name string, taskStore tasks.Store) *ComposeTriggerReader {
	return &ComposeTriggerReader{BaseCommand: *cor.NewBaseCommand(name), taskStore: taskStore}
}

// Execute parses the raw message and seeds the task store.
func (c *ComposeTriggerReader) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(string)

	var req model.CompositionRequest
	if err := json.Unmarshal([]byte(in), &req); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to unmarshal composition request: %w", err))
		return
	}
	if len(req.Scenes) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("composition request has no scenes"))
		return
	}
	if req.TaskID == "" {
		req.TaskID = uuid.NewString()
	}

	c.taskStore.SetProgress(req.TaskID, 0, "composition queued")
	c.GetSuccessCounter().Add(context.GetContext(), 1)

	context.Add(GetCompositionRequestName(), &req)
	context.Add(c.GetOutputParam(), &req)
}
