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

package media

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTempMediaPath verifies the generated scratch paths: parent directory,
// prefix, extension, and uniqueness across calls.
func TestTempMediaPath(t *testing.T) {
	dir := t.TempDir()

	a := TempMediaPath(dir, "clip", ".mp4")
	b := TempMediaPath(dir, "clip", ".mp4")

	assert.Equal(t, dir, filepath.Dir(a))
	assert.True(t, strings.HasPrefix(filepath.Base(a), "clip-"))
	assert.True(t, strings.HasSuffix(a, ".mp4"))
	assert.NotEqual(t, a, b)
}

// TestMotionFilterZoom verifies the zoompan expressions for the zoom moves:
// a 4x prescale, a frame count matching the clip length, and a zoom factor
// bounded at the configured maximum.
func TestMotionFilterZoom(t *testing.T) {
	filter := motionFilter(MotionZoomIn, 240, 24)
	assert.True(t, strings.HasPrefix(filter, "scale=5120:2880,"))
	assert.Contains(t, filter, "zoompan=z='min(1+")
	assert.Contains(t, filter, ",1.500)'")
	assert.Contains(t, filter, ":d=240:")
	assert.Contains(t, filter, ":s=1280x720:fps=24")

	filter = motionFilter(MotionZoomOut, 240, 24)
	assert.Contains(t, filter, "zoompan=z='max(1.500-")
}

// TestMotionFilterPan verifies that the pan moves hold a fixed zoom and
// traverse the horizontal headroom over the clip's frames.
func TestMotionFilterPan(t *testing.T) {
	filter := motionFilter(MotionPanRight, 120, 24)
	assert.Contains(t, filter, "zoompan=z=1.500")
	assert.Contains(t, filter, "x='(iw-iw/zoom)*on/120'")

	filter = motionFilter(MotionPanLeft, 120, 24)
	assert.Contains(t, filter, "x='(iw-iw/zoom)*(1-on/120)'")
}

// TestMotionFilterNone verifies that a static image gets a plain
// letterboxed scale with no zoompan.
func TestMotionFilterNone(t *testing.T) {
	filter := motionFilter(MotionNone, 240, 24)
	assert.False(t, strings.Contains(filter, "zoompan"))
	assert.Contains(t, filter, "scale=1280:720:force_original_aspect_ratio=decrease")
	assert.Contains(t, filter, "pad=1280:720")
}
