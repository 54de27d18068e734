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

// Package cor (Chain of Responsibility) is the workflow engine underneath
// the composition pipelines. A workflow is a Chain of Commands sharing one
// Context; each command reads its input from the context, does one unit of
// work, and writes its output back for the next command. The engine carries
// OpenTelemetry spans and counters for every command so a composition run
// can be traced end to end.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// CtxIn is the context key a command reads its primary input from. The
	// chain populates it with the previous command's output.
	CtxIn = "__IN__"
	// CtxOut is the context key a command writes its primary output to.
	CtxOut = "__OUT__"
)

// Context is the shared state bag for one workflow execution. Besides
// arbitrary key-value data it collects per-command errors and tracks the
// temporary files and directories created along the way, so a single
// deferred Close at the top of the workflow cleans everything up whether
// the run succeeded or not.
type Context interface {
	// SetContext sets the Go context used for cancellation and trace
	// propagation; GetContext retrieves it.
	SetContext(context context.Context)
	GetContext() context.Context

	// Add stores a key-value pair and returns the Context for chaining.
	Add(key string, value interface{}) Context

	// Get retrieves a value by key, or nil when absent.
	Get(key string) interface{}

	// Remove deletes a key-value pair.
	Remove(key string)

	// AddError records an error under the name of the command that hit it.
	AddError(key string, err error)

	// GetErrors returns all errors collected so far, keyed by command name.
	GetErrors() map[string]error

	// HasErrors reports whether any command has failed.
	HasErrors() bool

	// AddTempFile tracks a temporary file for removal at Close.
	AddTempFile(file string)

	// GetTempFiles returns all tracked temporary file paths.
	GetTempFiles() []string

	// AddTempDir tracks a temporary working directory for recursive
	// removal at Close. Composition runs each get a private directory.
	AddTempDir(dir string)

	// Close removes every tracked temp file and directory. Always deferred
	// by the workflow entry point.
	Close()
}

// Executable is anything with core execution logic driven by a Context.
type Executable interface {
	Execute(context Context)
}

// Command is an atomic, thread-safe unit of work within a workflow.
type Command interface {
	Executable

	// GetName returns the command's unique name for logging and telemetry.
	GetName() string

	// GetInputParam and GetOutputParam return the context keys for the
	// command's primary input and output; they default to CtxIn/CtxOut so
	// the chain can pipe one command's output into the next.
	GetInputParam() string
	GetOutputParam() string

	// IsExecutable is the precondition check run before Execute.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered sequence of commands. A Chain is itself a Command so
// chains can nest.
type Chain interface {
	Command

	// ContinueOnFailure configures whether the chain keeps executing after
	// a command records an error. Defaults to stopping at the first error.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
