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

// Package tasks_test contains unit tests for the in-memory task progress
// store used by the composition worker.
package tasks_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/jaycherian/gcp-go-video-composer/internal/core/tasks"
	"github.com/stretchr/testify/assert"
)

// TestTaskLifecycle walks a task through the progress updates of a normal
// composition run and verifies each snapshot.
func TestTaskLifecycle(t *testing.T) {
	store := tasks.NewMemoryStore()

	_, ok := store.Get("task-1")
	assert.False(t, ok)

	store.SetProgress("task-1", 5, "acquiring scene assets")
	state, ok := store.Get("task-1")
	assert.True(t, ok)
	assert.Equal(t, tasks.StatusRunning, state.Status)
	assert.Equal(t, 5, state.Percent)
	assert.Equal(t, "acquiring scene assets", state.Message)
	assert.False(t, state.UpdatedAt.IsZero())

	store.Complete("task-1", "gs://output/compositions/task-1.mp4")
	state, _ = store.Get("task-1")
	assert.Equal(t, tasks.StatusComplete, state.Status)
	assert.Equal(t, 100, state.Percent)
	assert.Equal(t, "gs://output/compositions/task-1.mp4", state.OutputURL)
}

// TestTaskFailure verifies the terminal failure state.
func TestTaskFailure(t *testing.T) {
	store := tasks.NewMemoryStore()

	store.SetProgress("task-2", 50, "joining scenes")
	store.Fail("task-2", "concatenation failed")

	state, ok := store.Get("task-2")
	assert.True(t, ok)
	assert.Equal(t, tasks.StatusFailed, state.Status)
	assert.Equal(t, "concatenation failed", state.Message)
}

// TestProgressClamping verifies that out-of-range percentages are clamped
// to [0, 100].
func TestProgressClamping(t *testing.T) {
	store := tasks.NewMemoryStore()

	store.SetProgress("task-3", -10, "")
	state, _ := store.Get("task-3")
	assert.Equal(t, 0, state.Percent)

	store.SetProgress("task-3", 150, "")
	state, _ = store.Get("task-3")
	assert.Equal(t, 100, state.Percent)
}

// TestConcurrentUpdates hammers the store from many goroutines to catch
// data races under the race detector.
func TestConcurrentUpdates(t *testing.T) {
	store := tasks.NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			taskID := fmt.Sprintf("task-%d", n%4)
			for p := 0; p <= 100; p += 5 {
				store.SetProgress(taskID, p, "working")
				store.Get(taskID)
			}
			store.Complete(taskID, "gs://output/done.mp4")
		}(i)
	}
	wg.Wait()

	for n := 0; n < 4; n++ {
		state, ok := store.Get(fmt.Sprintf("task-%d", n))
		assert.True(t, ok)
		assert.Equal(t, tasks.StatusComplete, state.Status)
	}
}
