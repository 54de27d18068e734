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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// MediaInfo is the subset of ffprobe output the composer cares about.
type MediaInfo struct {
	Duration   float64
	Width      int
	Height     int
	VideoCodec string
	AudioCodec string
	HasVideo   bool
	HasAudio   bool
}

// probeOutput mirrors the JSON shape of
// `ffprobe -show_format -show_streams -of json`.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// Duration probes the duration of a media file in seconds. The second
// return value is false when the file cannot be probed or reports no
// duration; callers decide their own fallback rather than receiving a
// made-up number.
func (r *Runner) Duration(ctx context.Context, path string) (float64, bool) {
	out, err := r.RunProbe(ctx,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	if err != nil {
		slog.Warn("media probe failed", "path", path, "error", err)
		return 0, false
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || seconds <= 0 {
		slog.Warn("media probe returned no usable duration", "path", path, "raw", strings.TrimSpace(string(out)))
		return 0, false
	}
	return seconds, true
}

// Probe returns full stream-level information for a media file.
func (r *Runner) Probe(ctx context.Context, path string) (*MediaInfo, error) {
	out, err := r.RunProbe(ctx,
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-of", "json",
		path)
	if err != nil {
		return nil, err
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output for %s: %w", path, err)
	}

	info := &MediaInfo{}
	if seconds, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
		info.Duration = seconds
	}
	for _, stream := range parsed.Streams {
		switch stream.CodecType {
		case "video":
			info.HasVideo = true
			info.VideoCodec = stream.CodecName
			info.Width = stream.Width
			info.Height = stream.Height
		case "audio":
			info.HasAudio = true
			info.AudioCodec = stream.CodecName
		}
	}
	return info, nil
}
