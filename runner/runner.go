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
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/hako/durafmt"
	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/data"
	"github.com/penny-vault/pvratios/engine"
	"github.com/penny-vault/pvratios/metrics"
	"github.com/penny-vault/pvratios/provider"
	"github.com/penny-vault/pvratios/quarter"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

const defaultConcurrency = 4

var (
	ErrNoProvider = errors.New("runner has no provider")
	ErrPanic      = errors.New("stock pipeline panicked")
	ErrFailed     = errors.New("indicator retrieval failed")
)

// Metrics receives the outcome of every stock processed
type Metrics interface {
	RecordStock(outcome string, elapsed time.Duration)
}

// Runner computes indicator tables for a batch of stocks. Each stock is
// fetched and computed independently; a failure for one stock never affects
// another.
type Runner struct {
	Provider    provider.Provider
	Catalog     *catalog.Catalog
	Concurrency int
	Timeout     time.Duration
	Metrics     Metrics
}

// StockResult is the outcome for one stock
type StockResult struct {
	StockID string
	Table   *data.IndicatorTable
	Err     error
	Elapsed time.Duration
}

// Result collects every stock of a batch in input order
type Result struct {
	Stocks  []*StockResult
	Tables  []*data.IndicatorTable
	NoData  []string
	Failed  map[string]error
	Summary data.RunSummary
}

// Err lists the failed stocks in input order; nil when every stock was
// retrieved, including stocks without data
func (result *Result) Err() error {
	if len(result.Failed) == 0 {
		return nil
	}

	msgs := make([]string, 0, len(result.Failed))
	for _, stockResult := range result.Stocks {
		if err, ok := result.Failed[stockResult.StockID]; ok {
			msgs = append(msgs, fmt.Sprintf("%s: %s", stockResult.StockID, err))
		}
	}

	return fmt.Errorf("%w: %s", ErrFailed, strings.Join(msgs, "; "))
}

// ParseStockIDs splits a comma or whitespace separated list of stock ids,
// dropping blanks and duplicates while keeping the first occurrence order
func ParseStockIDs(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	seen := make(map[string]bool, len(fields))
	ids := make([]string, 0, len(fields))
	for _, field := range fields {
		if seen[field] {
			continue
		}
		seen[field] = true
		ids = append(ids, field)
	}

	return ids
}

// Run computes the indicator tables of stockIDs for the requested quarters
func (runner *Runner) Run(ctx context.Context, stockIDs []string, quarters []quarter.Label) (*Result, error) {
	if runner.Provider == nil {
		return nil, ErrNoProvider
	}

	cat := runner.Catalog
	if cat == nil {
		cat = catalog.Default()
	}

	var recorder Metrics = metrics.Nop{}
	if runner.Metrics != nil {
		recorder = runner.Metrics
	}

	concurrency := runner.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	start, end, err := runner.fetchWindow(quarters)
	if err != nil {
		return nil, err
	}

	summary := data.RunSummary{
		StartTime: time.Now(),
		NumStocks: len(stockIDs),
	}

	results := haxmap.New[string, *StockResult]()
	workers := pool.New().WithMaxGoroutines(concurrency)

	for _, stockID := range stockIDs {
		workers.Go(func() {
			stockStart := time.Now()
			table, err := runner.processStock(ctx, cat, stockID, quarters, start, end)
			stockResult := &StockResult{
				StockID: stockID,
				Table:   table,
				Err:     err,
				Elapsed: time.Since(stockStart),
			}

			recorder.RecordStock(outcome(stockResult, cat), stockResult.Elapsed)
			results.Set(stockID, stockResult)
		})
	}

	workers.Wait()

	result := &Result{
		Stocks: make([]*StockResult, 0, len(stockIDs)),
		Tables: make([]*data.IndicatorTable, 0, len(stockIDs)),
		NoData: make([]string, 0),
		Failed: make(map[string]error),
	}

	for _, stockID := range stockIDs {
		stockResult, ok := results.Get(stockID)
		if !ok {
			continue
		}

		result.Stocks = append(result.Stocks, stockResult)

		switch outcome(stockResult, cat) {
		case metrics.OutcomeFailed:
			summary.NumFailed++
			result.Failed[stockID] = stockResult.Err
			result.NoData = append(result.NoData, stockID)
		case metrics.OutcomeNoData:
			summary.NumNoData++
			result.NoData = append(result.NoData, stockID)
		default:
			summary.NumSucceeded++
			result.Tables = append(result.Tables, stockResult.Table)
		}
	}

	summary.EndTime = time.Now()
	result.Summary = summary

	log.Info().Object("Summary", summary).Str("RunTime", durafmt.Parse(summary.Duration()).LimitFirstN(2).String()).Msg("computed financial indicators")

	return result, nil
}

// fetchWindow returns the filing dates to request from the provider: all
// available history (lagged indicators need it) up to the last requested quarter
func (runner *Runner) fetchWindow(quarters []quarter.Label) (time.Time, time.Time, error) {
	dataset, err := provider.DatasetFor(runner.Provider, data.IncomeStatement)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, end := dataset.DateRange()
	if len(quarters) > 0 {
		last := quarters[0]
		for _, label := range quarters[1:] {
			if last.Before(label) {
				last = label
			}
		}
		end = last.Date()
	}

	return start, end, nil
}

func (runner *Runner) processStock(ctx context.Context, cat *catalog.Catalog, stockID string, quarters []quarter.Label, start, end time.Time) (table *data.IndicatorTable, err error) {
	logger := log.With().Str("StockID", stockID).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("Panic", r).Msg("computing indicators panicked")
			table = nil
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	if len(quarters) == 0 {
		return engine.Run(stockID, engine.Statements{}, quarters, cat), nil
	}

	stockCtx := logger.WithContext(ctx)
	if runner.Timeout > 0 {
		var cancel context.CancelFunc
		stockCtx, cancel = context.WithTimeout(stockCtx, runner.Timeout)
		defer cancel()
	}

	statements, err := provider.FetchStatements(stockCtx, runner.Provider, stockID, start, end)
	if err != nil {
		logger.Warn().Err(err).Msg("could not retrieve statements; treating stock as no data")
		return nil, err
	}

	logger.Debug().Int("NumRecords", statements.NumRecords()).Msg("retrieved statements")

	return engine.Run(stockID, statements, quarters, cat), nil
}

func outcome(stockResult *StockResult, cat *catalog.Catalog) string {
	switch {
	case stockResult.Err != nil:
		return metrics.OutcomeFailed
	case stockResult.Table.Empty():
		return metrics.OutcomeNoData
	case !hasProfitability(stockResult.Table, cat):
		return metrics.OutcomeNoData
	default:
		return metrics.OutcomeSucceeded
	}
}

// hasProfitability reports whether any profitability indicator has a value.
// Catalogs without a profitability category always pass.
func hasProfitability(table *data.IndicatorTable, cat *catalog.Catalog) bool {
	category, ok := cat.Category(catalog.Profitability)
	if !ok {
		return true
	}

	for _, indicator := range category.Indicators {
		if table.HasData(indicator.Name) {
			return true
		}
	}

	return false
}
