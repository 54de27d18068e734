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

package cloud

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRemoteExt verifies that the local filename extension is derived from
// the reference's path component only. A signed URL's query string carries a
// base64 signature whose dots would otherwise produce a junk extension.
func TestRemoteExt(t *testing.T) {
	assert.Equal(t, ".mp4", remoteExt("gs://bucket/videos/scene-1.mp4"))
	assert.Equal(t, ".m4a", remoteExt("https://example.com/narration.m4a"))
	assert.Equal(t, ".mp4",
		remoteExt("https://storage.googleapis.com/out/final.mp4?X-Goog-Signature=abc.def&X-Goog-Expires=3600"))
	assert.Equal(t, "", remoteExt("https://example.com/stream"))
	assert.Equal(t, "", remoteExt("gs://bucket/no-extension"))
}

// TestParseGSURL verifies the bucket/object split and the rejection of
// references that are not gs:// URLs.
func TestParseGSURL(t *testing.T) {
	bucket, object, err := ParseGSURL("gs://my-bucket/path/to/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "path/to/clip.mp4", object)

	_, _, err = ParseGSURL("https://example.com/clip.mp4")
	assert.Error(t, err)

	_, _, err = ParseGSURL("gs://bucket-only")
	assert.Error(t, err)
}

// TestEnsureExtension verifies that a downloaded file arriving without an
// extension is renamed to carry one sniffed from its magic bytes, and that
// files already carrying an extension pass through untouched.
func TestEnsureExtension(t *testing.T) {
	dir := t.TempDir()

	bare := filepath.Join(dir, "asset-1234")
	pngMagic := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	require.NoError(t, os.WriteFile(bare, pngMagic, 0o644))

	renamed, err := ensureExtension(bare)
	require.NoError(t, err)
	assert.Equal(t, bare+".png", renamed)
	_, err = os.Stat(renamed)
	assert.NoError(t, err)

	named := filepath.Join(dir, "asset-5678.mp4")
	require.NoError(t, os.WriteFile(named, []byte("not sniffed"), 0o644))

	out, err := ensureExtension(named)
	require.NoError(t, err)
	assert.Equal(t, named, out)
}
