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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It centralizes every configurable parameter of the
// composition service: Google Cloud project settings, storage buckets, the
// BigQuery ledger, Pub/Sub trigger subscriptions, the ffmpeg toolchain, the
// composition tunables, and the GenAI agent models used for scene breakdowns.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the default content safety thresholds for
// GenAI models. Non-restrictive, because the inputs are this service's own
// generation prompts rather than untrusted user media.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// BigQueryDataSource represents the configuration for the composition ledger.
type BigQueryDataSource struct {
	DatasetName      string `toml:"dataset"`           // The name of the BigQuery dataset.
	CompositionTable string `toml:"composition_table"` // The table holding one row per finished composition.
}

// PromptTemplates holds the text templates for prompts sent to GenAI models.
type PromptTemplates struct {
	SceneBreakdown string `toml:"scene_breakdown"` // Template for splitting a story prompt into scenes.
}

// VertexAiLLMModel represents the configuration for a Vertex AI large
// language model (LLM).
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // The name of the Vertex AI LLM.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the LLM.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter for the LLM.
	TopP               float32 `toml:"top_p"`               // The top_p parameter for the LLM.
	TopK               float32 `toml:"top_k"`               // The top_k parameter for the LLM.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of tokens for the LLM output.
	OutputFormat       string  `toml:"output_format"`       // The desired output format for the LLM.
	RateLimit          int     `toml:"rate_limit"`          // The rate limit for the LLM in requests per second.
}

// TopicSubscription represents the configuration for a Pub/Sub topic
// subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The name of the dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The timeout for the subscription in seconds.
}

// Storage represents the configuration for storage buckets.
type Storage struct {
	AssetBucket  string `toml:"asset_bucket"`  // The bucket generated scene assets are read from.
	OutputBucket string `toml:"output_bucket"` // The bucket finished compositions are written to.
	// PlaceholderVideoURL is handed to callers when a composition cannot
	// produce a real video.
	PlaceholderVideoURL string `toml:"placeholder_video_url"`
}

// ComposerSettings carries the media-assembly tunables.
type ComposerSettings struct {
	FFmpegPath  string `toml:"ffmpeg_path"`  // Path to the ffmpeg binary; empty resolves via PATH.
	FFprobePath string `toml:"ffprobe_path"` // Path to the ffprobe binary; empty resolves via PATH.
	FrameRate   int    `toml:"frame_rate"`   // Output frame rate for rendered videos.

	MinSceneDuration          float64 `toml:"min_scene_duration"`          // Floor for any single scene, in seconds.
	DurationTolerance         float64 `toml:"duration_tolerance"`          // Slack allowed when validating duration sums.
	DefaultTransitionDuration float64 `toml:"default_transition_duration"` // Window for transitions that do not specify one.
	DefaultSceneDuration      float64 `toml:"default_scene_duration"`      // Fallback when a scene's length cannot be determined.
	MusicVolume               float64 `toml:"music_volume"`                // Background music attenuation, 0..1.

	WorkDirRoot string `toml:"work_dir_root"` // Root for per-run scratch directories; empty uses the system temp dir.
}

// Config represents the overall configuration for the application, loaded
// from TOML files. It acts as the root container for all other
// configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name                      string `toml:"name"`                         // The name of the application.
		GoogleProjectId           string `toml:"google_project_id"`            // The Google Cloud project ID.
		GoogleLocation            string `toml:"location"`                     // The Google Cloud location.
		ThreadPoolSize            int    `toml:"thread_pool_size"`             // The size of the worker pool for parallel composition runs.
		SignerServiceAccountEmail string `toml:"signer_service_account_email"` // The service account email used for signing GCS URLs.
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`               // Storage configuration.
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"` // BigQuery ledger configuration.
	Composer           ComposerSettings             `toml:"composer"`              // Media-assembly tunables.
	PromptTemplates    PromptTemplates              `toml:"prompt_templates"`      // Prompt templates configuration.
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`   // Pub/Sub subscriptions, keyed by a logical name (e.g. "ComposeTopic").
	AgentModels        map[string]VertexAiLLMModel  `toml:"agent_models"`          // Vertex AI LLM models, keyed by a logical name (e.g. "scene-writer").
}

// NewConfig creates a new, initialized Config instance. The maps must be
// initialized before the TOML loader populates them.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		AgentModels:        make(map[string]VertexAiLLMModel),
	}
}
