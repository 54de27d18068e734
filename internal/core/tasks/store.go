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

// Package tasks tracks the progress of composition runs. The Store is
// injected into every collaborator that reports progress, so there is no
// process-global state and tests can hand each run its own store.
package tasks

import (
	"sync"
	"time"
)

// Task lifecycle statuses.
const (
	StatusPending  = "PENDING"
	StatusRunning  = "RUNNING"
	StatusComplete = "COMPLETE"
	StatusFailed   = "FAILED"
)

// State is a snapshot of one task's progress.
type State struct {
	TaskID    string    `json:"task_id"`
	Status    string    `json:"status"`
	Percent   int       `json:"percent"`
	Message   string    `json:"message,omitempty"`
	OutputURL string    `json:"output_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store records and serves task progress.
type Store interface {
	// SetProgress updates a running task's completion percentage and status
	// message, creating the task if it does not exist yet.
	SetProgress(taskID string, percent int, message string)

	// Complete marks the task finished and records the output location.
	Complete(taskID string, outputURL string)

	// Fail marks the task failed with a terminal message.
	Fail(taskID string, message string)

	// Get returns a snapshot of the task, or false when unknown.
	Get(taskID string) (State, bool)
}

// MemoryStore is the in-process Store used by the worker. Safe for
// concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]State
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]State)}
}

// SetProgress implements Store.
func (s *MemoryStore) SetProgress(taskID string, percent int, message string) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.tasks[taskID]
	state.TaskID = taskID
	state.Status = StatusRunning
	state.Percent = percent
	state.Message = message
	state.UpdatedAt = time.Now().UTC()
	s.tasks[taskID] = state
}

// Complete implements Store.
func (s *MemoryStore) Complete(taskID string, outputURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.tasks[taskID]
	state.TaskID = taskID
	state.Status = StatusComplete
	state.Percent = 100
	state.OutputURL = outputURL
	state.UpdatedAt = time.Now().UTC()
	s.tasks[taskID] = state
}

// Fail implements Store.
func (s *MemoryStore) Fail(taskID string, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.tasks[taskID]
	state.TaskID = taskID
	state.Status = StatusFailed
	state.Message = message
	state.UpdatedAt = time.Now().UTC()
	s.tasks[taskID] = state
}

// Get implements Store.
func (s *MemoryStore) Get(taskID string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.tasks[taskID]
	return state, ok
}
