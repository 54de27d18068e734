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
// services. This file decorates the GenAI model with rate limiting and
// retries: Vertex AI enforces per-minute quotas, and transient failures are
// common enough that every call site would otherwise reimplement backoff.
package cloud

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// quotaRetryKey is the context key carrying the retry attempt count.
type quotaRetryKey struct{}

// maxGenerateRetries bounds the retry loop inside the wrapper.
const maxGenerateRetries = 3

// QuotaAwareGenerativeAIModel wraps a GenAI model with a token-bucket rate
// limiter and bounded retries. All generation settings are fixed at
// construction so call sites only supply content.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig
	ModelName               string
	ModelHandle             *genai.Models
	RateLimit               *rate.Limiter
}

// NewQuotaAwareModel wraps the model handle with a limiter allowing
// requestsPerSecond bursts replenished once per second.
func NewQuotaAwareModel(config *genai.GenerateContentConfig, name string, handle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: config,
		ModelName:               name,
		ModelHandle:             handle,
		RateLimit:               rate.NewLimiter(rate.Every(time.Second), requestsPerSecond),
	}
}

// GenerateContent calls the underlying model, blocking on the rate limiter
// first and retrying failed calls up to maxGenerateRetries times with a
// pause between attempts.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
	if err == nil {
		return resp, nil
	}

	retryCount, _ := ctx.Value(quotaRetryKey{}).(int)
	if retryCount >= maxGenerateRetries {
		return nil, errors.New("failed generation on max retries")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Duration(retryCount+1) * 10 * time.Second):
	}
	return q.GenerateContent(context.WithValue(ctx, quotaRetryKey{}, retryCount+1), content)
}
