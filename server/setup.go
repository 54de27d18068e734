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

// Package main contains the setup and initialization logic for the worker's
// state: the configuration singleton, the Google Cloud service clients, the
// task store, and the ledger read service.
package main

import (
	"context"
	"log"
	"os"

	"github.com/jaycherian/gcp-go-video-composer/internal/cloud"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/services"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/tasks"
)

// StateManager holds the worker's shared dependencies. A single instance is
// created at startup and threaded into the listeners; nothing else in the
// process keeps global state.
type StateManager struct {
	config             *cloud.Config
	cloud              *cloud.ServiceClients
	taskStore          tasks.Store
	compositionService *services.CompositionService
}

// state is the single StateManager instance for the worker process.
var state = &StateManager{}

// SetupOS sets the environment variables the configuration loader uses to
// find the TOML files for the local runtime.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig loads the application configuration once and caches it.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState initializes the full worker state: cloud clients, the task
// store, the composition ledger service, and the Pub/Sub listeners.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	// One in-process store serves every concurrent composition run.
	state.taskStore = tasks.NewMemoryStore()

	state.compositionService = &services.CompositionService{
		BigqueryClient:   cloudClients.BigQueryClient,
		DatasetName:      config.BigQueryDataSource.DatasetName,
		CompositionTable: config.BigQueryDataSource.CompositionTable,
	}

	SetupListeners(config, cloudClients, ctx)
}
