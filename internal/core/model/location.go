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

// Package model defines the core data structures for the video composition
// backend. This file defines AssetLocation, the single place where the
// "is this a local path or a remote URL" question is answered. Asset
// references arrive as plain strings from many collaborators; they are
// resolved into a tagged location exactly once at composition ingest so the
// adjusters and the composer never have to inspect string prefixes again.
package model

import "strings"

// AssetLocationKind discriminates the two storage variants.
type AssetLocationKind int

const (
	// AssetLocal marks a path on the local filesystem.
	AssetLocal AssetLocationKind = iota
	// AssetRemote marks an object that must be downloaded first.
	AssetRemote
)

// AssetLocation is a tagged variant: Local carries a filesystem path and
// Remote carries a downloadable URL. Exactly one of Path and URL is set.
type AssetLocation struct {
	Kind AssetLocationKind
	Path string // Set when Kind == AssetLocal.
	URL  string // Set when Kind == AssetRemote.
}

// IsZero reports whether the location references nothing at all.
func (l AssetLocation) IsZero() bool {
	return l.Path == "" && l.URL == ""
}

// Ref returns whichever reference the location carries, for logging.
func (l AssetLocation) Ref() string {
	if l.Kind == AssetRemote {
		return l.URL
	}
	return l.Path
}

// ResolveAssetLocation classifies a raw asset reference. gs://, http:// and
// https:// references are remote; everything else is treated as a local path.
func ResolveAssetLocation(ref string) AssetLocation {
	switch {
	case strings.HasPrefix(ref, "gs://"),
		strings.HasPrefix(ref, "http://"),
		strings.HasPrefix(ref, "https://"):
		return AssetLocation{Kind: AssetRemote, URL: ref}
	default:
		return AssetLocation{Kind: AssetLocal, Path: ref}
	}
}
