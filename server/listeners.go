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

// Package main contains the logic for setting up the Pub/Sub trigger
// listeners that start composition runs.
package main

import (
	"context"

	"github.com/jaycherian/gcp-go-video-composer/internal/cloud"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/workflow"
)

// SetupListeners attaches the composition workflow to the trigger
// subscription and starts listening. The workflow is shared across
// messages; every run gets its own chain context, so concurrent
// compositions do not interfere.
func SetupListeners(config *cloud.Config, cloudClients *cloud.ServiceClients, ctx context.Context) {
	composeWorkflow := workflow.NewVideoComposeWorkflow(config, cloudClients, state.taskStore)
	cloudClients.PubSubListeners["ComposeTopic"].SetCommand(composeWorkflow)
	cloudClients.PubSubListeners["ComposeTopic"].Listen(ctx)
}
