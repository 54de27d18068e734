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

// Package test provides utility functions and mock data to support the
// application's test suite. It helps in setting up a consistent test
// environment, loading test-specific configurations, and providing sample
// composition requests for workflows and services.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/jaycherian/gcp-go-video-composer/internal/cloud"
)

// StateManager acts as a simple in-memory cache for the application
// configuration during test runs, so the TOML files are parsed once per
// test binary rather than once per test.
type StateManager struct {
	config *cloud.Config
}

// state holds the singleton StateManager for the test run.
var state = &StateManager{}

// HandleErr fails the test if err is not nil. Convenience to cut down on
// boilerplate error checks in test bodies.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestComposeMessageText returns a hardcoded JSON string that simulates
// the Pub/Sub message the upstream generation pipeline publishes once every
// scene's media exists. This mock payload is used to test the composition
// workflow trigger end to end.
func GetTestComposeMessageText() string {
	return `{
  "task_id": "test-composition-001",
  "prompt": "A lighthouse keeper discovers a message in a bottle.",
  "total_duration": 24.0,
  "scenes": [
    {
      "index": 1,
      "video_url": "gs://video_composer_assets_test/test-composition-001/scene-1.mp4",
      "audio_url": "gs://video_composer_assets_test/test-composition-001/scene-1.m4a",
      "duration": 8.2,
      "weight": 1.0,
      "transition": { "type": "fade", "duration": 1.0 }
    },
    {
      "index": 2,
      "video_url": "gs://video_composer_assets_test/test-composition-001/scene-2.mp4",
      "audio_url": "gs://video_composer_assets_test/test-composition-001/scene-2.m4a",
      "duration": 7.6,
      "weight": 1.5,
      "transition": { "type": "dissolve", "duration": 0.8 }
    },
    {
      "index": 3,
      "video_url": "gs://video_composer_assets_test/test-composition-001/scene-3.png",
      "audio_url": "gs://video_composer_assets_test/test-composition-001/scene-3.m4a",
      "duration": 6.9,
      "weight": 1.0
    }
  ],
  "music_tracks": [
    {
      "prompt": "gentle piano over ocean waves",
      "scene_indexes": [0, 1, 2],
      "music_url": "gs://video_composer_assets_test/test-composition-001/music-1.m4a"
    }
  ]
}`
}

// SetupOS configures the environment variables the configuration loader
// depends on, pointing it at the test override file (.env.test.toml).
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration. The config
// is loaded from the TOML files on first use and cached for the rest of the
// test run.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}
