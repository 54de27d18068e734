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

// Package services contains the business logic for interacting with data
// sources. This file defines the CompositionService, the read side of the
// BigQuery ledger: looking up a single composition by task ID and listing
// the most recent runs.
package services

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/jaycherian/gcp-go-video-composer/internal/core/model"
)

// Query templates for the composition ledger. The table placeholder is the
// fully qualified name produced by GetFQN.
const (
	qryFindCompositionByTask = "SELECT * FROM `%s` WHERE task_id = \"%s\" ORDER BY created_at DESC LIMIT 1"
	qryListRecent            = "SELECT * FROM `%s` ORDER BY created_at DESC LIMIT %d"
)

// CompositionService reads composition records from BigQuery.
type CompositionService struct {
	BigqueryClient   *bigquery.Client
	DatasetName      string
	CompositionTable string
}

// GetFQN returns the complete, queryable name of the composition table,
// formatted with dots instead of colons (e.g. `project.dataset.table`).
func (s *CompositionService) GetFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.CompositionTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// Get retrieves the most recent record for a task ID.
func (s *CompositionService) Get(ctx context.Context, taskID string) (*model.CompositionRecord, error) {
	queryText := fmt.Sprintf(qryFindCompositionByTask, s.GetFQN(), taskID)
	itr, err := s.BigqueryClient.Query(queryText).Read(ctx)
	if err != nil {
		return nil, err
	}
	record := &model.CompositionRecord{}
	if err := itr.Next(record); err != nil {
		if err == iterator.Done {
			return nil, fmt.Errorf("no composition found for task %s", taskID)
		}
		return nil, err
	}
	return record, nil
}

// ListRecent returns up to limit records ordered newest first.
func (s *CompositionService) ListRecent(ctx context.Context, limit int) ([]*model.CompositionRecord, error) {
	if limit <= 0 {
		limit = 25
	}
	queryText := fmt.Sprintf(qryListRecent, s.GetFQN(), limit)
	itr, err := s.BigqueryClient.Query(queryText).Read(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]*model.CompositionRecord, 0, limit)
	for {
		record := &model.CompositionRecord{}
		err := itr.Next(record)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
