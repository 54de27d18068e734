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

// Package main is the entry point for the video composition worker.
//
// The worker has no HTTP surface: composition requests arrive as Pub/Sub
// messages carrying a CompositionRequest JSON payload, published by the
// upstream asset-generation pipeline once every scene's media exists. Each
// message runs the composition workflow (assemble, upload, persist to the
// BigQuery ledger); unacknowledged failures are redelivered per the
// subscription's retry policy.
//
// The process is instrumented with OpenTelemetry for logging, tracing, and
// metrics, and shuts down gracefully on SIGINT/SIGTERM.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaycherian/gcp-go-video-composer/internal/telemetry"
)

// main wires logging, telemetry, state, and the trigger listeners, then
// blocks until an interrupt asks for shutdown.
func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")
	slog.Info("Composition worker ready")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown worker ...")

	// Canceling the root context stops the Pub/Sub listeners and any
	// in-flight ffmpeg subprocesses.
	cancel()

	if err := shutdownTelemetry(context.Background()); err != nil {
		slog.Error("telemetry shutdown failed", "error", err)
	}
	state.cloud.Close()

	log.Println("Worker exiting")
}
