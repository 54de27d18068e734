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

// Package workflow defines the high-level business logic orchestrations,
// combining commands into coherent pipelines. This file implements the
// video composition workflow: trigger message in, finished video out, one
// ledger row written.
package workflow

import (
	"github.com/jaycherian/gcp-go-video-composer/internal/cloud"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/compose"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/media"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/tasks"
)

// VideoComposeWorkflow orchestrates one composition run: it parses the
// trigger, assembles the video through the composer, and persists the
// ledger record. The workflow is itself a Command, so the Pub/Sub listener
// can execute it directly.
type VideoComposeWorkflow struct {
	cor.BaseCommand
	composer  *compose.Composer
	taskStore tasks.Store
	chain     cor.Chain
	config    *cloud.Config
}

// Execute runs the composition workflow by invoking the underlying chain.
func (w *VideoComposeWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// initializeChain constructs the command sequence for the pipeline.
func (w *VideoComposeWorkflow) initializeChain(clients *cloud.ServiceClients) {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: Parse the incoming trigger message into a CompositionRequest.
	out.AddCommand(commands.NewComposeTriggerReader("compose-trigger-reader", w.taskStore))

	// Step 2: Assemble the final video.
	out.AddCommand(commands.NewVideoCompose("video-compose", w.composer, w.taskStore))

	// Step 3: Persist the run's record to the BigQuery ledger.
	out.AddCommand(commands.NewCompositionPersistToBigQuery(
		"composition-persist",
		clients.BigQueryClient,
		w.config.BigQueryDataSource.DatasetName,
		w.config.BigQueryDataSource.CompositionTable))

	w.chain = out
}

// NewVideoComposeWorkflow wires the full composition pipeline: the ffmpeg
// toolkit, the GCS storage layer, the composer over both, and the command
// chain around the composer.
func NewVideoComposeWorkflow(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	taskStore tasks.Store) *VideoComposeWorkflow {

	toolkit := media.NewToolkit(
		config.Composer.FFmpegPath,
		config.Composer.FFprobePath,
		config.Composer.FrameRate)

	storage := cloud.NewGCSStorage(serviceClients, config)

	composer := compose.NewComposer(toolkit, storage, compose.Config{
		PlaceholderURL:            config.Storage.PlaceholderVideoURL,
		MinSceneDuration:          config.Composer.MinSceneDuration,
		DurationTolerance:         config.Composer.DurationTolerance,
		DefaultTransitionDuration: config.Composer.DefaultTransitionDuration,
		DefaultSceneDuration:      config.Composer.DefaultSceneDuration,
		MusicVolume:               config.Composer.MusicVolume,
		WorkDirRoot:               config.Composer.WorkDirRoot,
	})

	out := &VideoComposeWorkflow{
		BaseCommand: *cor.NewBaseCommand("video-compose-workflow"),
		composer:    composer,
		taskStore:   taskStore,
		config:      config,
	}
	out.initializeChain(serviceClients)
	return out
}
