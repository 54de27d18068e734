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

// Package services_test contains the test suite for the services package.
// This file tests the CompositionService, the read side of the BigQuery
// composition ledger.
package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jaycherian/gcp-go-video-composer/internal/cloud"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/services"
	test "github.com/jaycherian/gcp-go-video-composer/internal/testutil"
	"github.com/zeebo/assert"
)

// TestCompositionService is an integration test for the ListRecent method.
// It initializes the full application stack (configuration, cloud clients),
// then lists the most recent composition records from a live BigQuery
// backend and asserts the query completes without errors.
func TestCompositionService(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := test.GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	test.HandleErr(err, t)
	defer cloudClients.Close()

	compositionService := &services.CompositionService{
		BigqueryClient:   cloudClients.BigQueryClient,
		DatasetName:      config.BigQueryDataSource.DatasetName,
		CompositionTable: config.BigQueryDataSource.CompositionTable,
	}

	out, err := compositionService.ListRecent(ctx, 5)
	if err != nil {
		t.Error(err)
	}
	assert.Nil(t, err)

	// Print the records for manual inspection during development.
	for _, o := range out {
		fmt.Printf("%s - %s - %s\n", o.TaskID, o.Status, o.OutputURL)
	}
}
