// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/penny-vault/pvratios/data"
	"github.com/penny-vault/pvratios/engine"
)

var (
	ErrUpstream        = errors.New("upstream retrieval failed")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrMissingDataset  = errors.New("provider has no dataset for statement")
)

// Config holds provider specific settings, e.g. api tokens and rate limits
type Config map[string]string

type Provider interface {
	Name() string
	ConfigDescription() map[string]string
	Description() string
	Datasets() map[string]Dataset
}

// RequestObserver is notified after every request a provider makes
type RequestObserver interface {
	ObserveRequest(provider, dataset string, statusCode int, elapsed time.Duration)
}

type Dataset struct {
	Name        string
	Description string
	Statement   data.StatementType
	DateRange   func() (time.Time, time.Time)

	// Fetch returns every record of the dataset for stockID filed between
	// start and end inclusive. An empty result is not an error; failures to
	// reach or understand the upstream source wrap ErrUpstream.
	Fetch func(ctx context.Context, stockID string, start, end time.Time) ([]*data.Record, error)
}

// DatasetFor returns the dataset of prov that serves statement
func DatasetFor(prov Provider, statement data.StatementType) (Dataset, error) {
	for _, dataset := range prov.Datasets() {
		if dataset.Statement == statement {
			return dataset, nil
		}
	}
	return Dataset{}, fmt.Errorf("%w: %s %s", ErrMissingDataset, prov.Name(), statement)
}

// FetchStatements retrieves the income statement, balance sheet and cash flow
// statement of stockID. The first failing statement aborts the fetch.
func FetchStatements(ctx context.Context, prov Provider, stockID string, start, end time.Time) (engine.Statements, error) {
	statements := make(engine.Statements, len(data.Statements))
	for _, statement := range data.Statements {
		dataset, err := DatasetFor(prov, statement)
		if err != nil {
			return nil, err
		}

		records, err := dataset.Fetch(ctx, stockID, start, end)
		if err != nil {
			return nil, err
		}

		statements[statement] = records
	}

	return statements, nil
}
