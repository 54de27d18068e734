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

// Package cloud provides components for interacting with Google Cloud
// services. This file implements the asset storage layer: downloading scene
// assets (gs:// objects or plain https URLs) into a run's work directory,
// uploading finished compositions, and generating signed GET URLs so
// callers can stream results without credentials.
package cloud

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// SignedURLExpiration is how long generated download links stay valid.
const SignedURLExpiration = 4 * time.Hour

// GCSStorage moves media between Google Cloud Storage and the local
// filesystem. It satisfies the composer's Storage interface.
type GCSStorage struct {
	Client       *storage.Client
	IAMClient    *credentials.IamCredentialsClient
	OutputBucket string
	SignerEmail  string // When set, uploads return signed URLs instead of gs:// refs.
	HTTPClient   *http.Client
}

// NewGCSStorage creates the storage layer over already-initialized clients.
func NewGCSStorage(clients *ServiceClients, config *Config) *GCSStorage {
	return &GCSStorage{
		Client:       clients.StorageClient,
		IAMClient:    clients.IAMClient,
		OutputBucket: config.Storage.OutputBucket,
		SignerEmail:  config.Application.SignerServiceAccountEmail,
		HTTPClient:   http.DefaultClient,
	}
}

// ParseGSURL splits a gs://bucket/object reference into its components.
func ParseGSURL(url string) (bucket string, object string, err error) {
	trimmed := strings.TrimPrefix(url, "gs://")
	if trimmed == url {
		return "", "", fmt.Errorf("not a gs:// url: %s", url)
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("unable to determine bucket and object from %s", url)
	}
	return parts[0], parts[1], nil
}

// Download fetches a remote asset into destDir and returns the local path.
// gs:// references read through the storage client; http(s) references are
// fetched with a plain GET. Files that arrive without a usable extension
// get one sniffed from their magic bytes, since ffmpeg relies on it.
func (s *GCSStorage) Download(ctx context.Context, url string, destDir string) (string, error) {
	local := filepath.Join(destDir, fmt.Sprintf("asset-%s%s", uuid.NewString()[:8], remoteExt(url)))

	var reader io.ReadCloser
	if strings.HasPrefix(url, "gs://") {
		bucket, object, err := ParseGSURL(url)
		if err != nil {
			return "", err
		}
		reader, err = s.Client.Bucket(bucket).Object(object).NewReader(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to open gs://%s/%s: %w", bucket, object, err)
		}
	} else {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		resp, err := s.HTTPClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("failed to fetch %s: %w", url, err)
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return "", fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
		}
		reader = resp.Body
	}
	defer func() { _ = reader.Close() }()

	out, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", local, err)
	}
	if _, err := io.Copy(out, reader); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("failed to write %s: %w", local, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	return ensureExtension(local)
}

// Upload publishes a local file to the output bucket under objectName.
// With a signer configured the returned reference is a time-limited signed
// URL; otherwise it is the gs:// reference.
func (s *GCSStorage) Upload(ctx context.Context, localPath string, objectName string) (string, error) {
	in, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer func() { _ = in.Close() }()

	writer := s.Client.Bucket(s.OutputBucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(writer, in); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload of %s: %w", objectName, err)
	}

	if s.SignerEmail != "" {
		return s.SignedURL(ctx, s.OutputBucket, objectName, SignedURLExpiration)
	}
	return fmt.Sprintf("gs://%s/%s", s.OutputBucket, objectName), nil
}

// SignedURL creates a time-limited GET URL for a private GCS object using
// the V4 signing scheme. Signing goes through the IAM Credentials SignBlob
// API, so the worker needs no local private key, only the
// iam.serviceAccounts.signBlob permission on the signer account.
func (s *GCSStorage) SignedURL(ctx context.Context, bucket string, object string, expires time.Duration) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         http.MethodGet,
		Expires:        time.Now().Add(expires),
		GoogleAccessID: s.SignerEmail,
		SignBytes: func(b []byte) ([]byte, error) {
			resp, err := s.IAMClient.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail),
				Payload: b,
			})
			if err != nil {
				return nil, fmt.Errorf("SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		},
	}
	u, err := s.Client.Bucket(bucket).SignedURL(object, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).SignedURL(%q): %w", bucket, object, err)
	}
	return u, nil
}

// remoteExt returns the extension of a reference's path component. Signed
// URLs carry a query string whose signature would otherwise leak into the
// extension, so the reference is parsed and only its path consulted.
func remoteExt(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return path.Ext(ref)
	}
	return path.Ext(u.Path)
}

// ensureExtension renames a downloaded file to carry an extension matching
// its sniffed type when it arrived without one.
func ensureExtension(localPath string) (string, error) {
	if filepath.Ext(localPath) != "" {
		return localPath, nil
	}
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	head := make([]byte, 261)
	n, _ := f.Read(head)
	_ = f.Close()

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return localPath, nil
	}
	renamed := localPath + "." + kind.Extension
	if err := os.Rename(localPath, renamed); err != nil {
		return "", fmt.Errorf("failed to add extension to %s: %w", localPath, err)
	}
	return renamed, nil
}
