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

// Package commands provides the concrete implementations of the workflow
// Command interface. This file defines the persistence step: every finished
// composition, successful or failed, lands as one row in the BigQuery
// ledger so the dashboard and billing queries see the complete history.
package commands

import (
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"

	"github.com/jaycherian/gcp-go-video-composer/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-composer/internal/core/model"
)

// CompositionPersistToBigQuery saves a CompositionRecord to the ledger
// table using the streaming Inserter.
type CompositionPersistToBigQuery struct {
	cor.BaseCommand
	client  *bigquery.Client
	dataset string
	table   string
}

// NewCompositionPersistToBigQuery creates the persistence command.
func NewCompositionPersistToBigQuery(name string, client *bigquery.Client, dataset string, table string) *CompositionPersistToBigQuery {
	return &CompositionPersistToBigQuery{BaseCommand: *cor.NewBaseCommand(name), client: client, dataset: dataset, table: table}
}

// Execute streams the record into BigQuery. The struct fields map to table
// columns via their bigquery tags.
func (c *CompositionPersistToBigQuery) Execute(context cor.Context) {
	record := context.Get(c.GetInputParam()).(*model.CompositionRecord)

	inserter := c.client.Dataset(c.dataset).Table(c.table).Inserter()
	if err := inserter.Put(context.GetContext(), record); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("bigquery insert failed for task '%s': %w", record.TaskID, err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.Info("composition record persisted", "task_id", record.TaskID, "status", record.Status)
	context.Add(c.GetOutputParam(), record)
}
