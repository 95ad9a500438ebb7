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
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/guregu/null/v6"
	"github.com/penny-vault/pvratios/data"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	FinMindURL              = "https://api.finmindtrade.com/api/v4/data"
	finMindDefaultRateLimit = 10
)

var finMindDatasets = map[data.StatementType]string{
	data.IncomeStatement:   "TaiwanStockFinancialStatements",
	data.BalanceSheet:      "TaiwanStockBalanceSheet",
	data.CashFlowStatement: "TaiwanStockCashFlowsStatement",
}

// FinMind retrieves Taiwan stock financial statements from the FinMind API
type FinMind struct {
	Token     string
	BaseURL   string
	RateLimit int // requests per minute
	Observer  RequestObserver

	initOnce sync.Once
	client   *resty.Client
	limiter  *rate.Limiter
}

// NewFinMind builds the provider from its configuration keys token, rateLimit
// and baseURL
func NewFinMind(config Config) (*FinMind, error) {
	finmind := &FinMind{
		Token:   config["token"],
		BaseURL: config["baseURL"],
	}

	if val, ok := config["rateLimit"]; ok && val != "" {
		rateLimit, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("could not convert rateLimit configuration parameter %q to an integer: %w", val, err)
		}
		finmind.RateLimit = rateLimit
	}

	return finmind, nil
}

func (finmind *FinMind) Name() string {
	return "FinMind"
}

func (finmind *FinMind) ConfigDescription() map[string]string {
	return map[string]string{
		"token":     "What is your FinMind api token?",
		"rateLimit": "What is the maximum number of requests per minute?",
	}
}

func (finmind *FinMind) Description() string {
	return `FinMind publishes quarterly financial statements for companies listed on the Taiwan Stock Exchange and the Taipei Exchange.`
}

func (finmind *FinMind) Datasets() map[string]Dataset {
	dateRange := func() (time.Time, time.Time) {
		return time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), time.Now().UTC()
	}

	return map[string]Dataset{
		"Income Statement": {
			Name:        "Income Statement",
			Description: "Quarterly income statement line items (TaiwanStockFinancialStatements).",
			Statement:   data.IncomeStatement,
			DateRange:   dateRange,
			Fetch:       finmind.fetcher(data.IncomeStatement),
		},
		"Balance Sheet": {
			Name:        "Balance Sheet",
			Description: "Quarterly balance sheet line items (TaiwanStockBalanceSheet).",
			Statement:   data.BalanceSheet,
			DateRange:   dateRange,
			Fetch:       finmind.fetcher(data.BalanceSheet),
		},
		"Cash Flow": {
			Name:        "Cash Flow",
			Description: "Quarterly cash flow statement line items (TaiwanStockCashFlowsStatement).",
			Statement:   data.CashFlowStatement,
			DateRange:   dateRange,
			Fetch:       finmind.fetcher(data.CashFlowStatement),
		},
	}
}

func (finmind *FinMind) init() {
	finmind.initOnce.Do(func() {
		if finmind.BaseURL == "" {
			finmind.BaseURL = FinMindURL
		}

		rateLimit := finmind.RateLimit
		if rateLimit <= 0 {
			rateLimit = finMindDefaultRateLimit
		}

		finmind.client = resty.New().SetTimeout(time.Minute)
		if finmind.Token != "" {
			finmind.client.SetQueryParam("token", finmind.Token)
		}

		finmind.limiter = rate.NewLimiter(rate.Limit(float64(rateLimit)/float64(61)), 1)
	})
}

func (finmind *FinMind) fetcher(statement data.StatementType) func(context.Context, string, time.Time, time.Time) ([]*data.Record, error) {
	return func(ctx context.Context, stockID string, start, end time.Time) ([]*data.Record, error) {
		return finmind.fetch(ctx, statement, stockID, start, end)
	}
}

func (finmind *FinMind) fetch(ctx context.Context, statement data.StatementType, stockID string, start, end time.Time) ([]*data.Record, error) {
	finmind.init()

	dataset := finMindDatasets[statement]
	logger := zerolog.Ctx(ctx).With().Str("Dataset", dataset).Str("StockID", stockID).Logger()

	if err := finmind.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", ErrUpstream, err)
	}

	requestStart := time.Now()
	resp, err := finmind.client.R().
		SetContext(ctx).
		SetQueryParam("dataset", dataset).
		SetQueryParam("data_id", stockID).
		SetQueryParam("start_date", start.Format("2006-01-02")).
		SetQueryParam("end_date", end.Format("2006-01-02")).
		Get(finmind.BaseURL)

	if err != nil {
		finmind.observe(dataset, 0, time.Since(requestStart))
		logger.Error().Err(err).Msg("downloading financial statement failed")
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUpstream, dataset, stockID, err)
	}

	finmind.observe(dataset, resp.StatusCode(), time.Since(requestStart))

	if resp.StatusCode() >= 300 {
		logger.Error().Int("StatusCode", resp.StatusCode()).Msg("downloading financial statement returned error status code")
		return nil, fmt.Errorf("%w: %s %s: status code %d", ErrUpstream, dataset, stockID, resp.StatusCode())
	}

	body := resp.Body()
	if status := gjson.GetBytes(body, "status"); status.Exists() && status.Int() != 200 {
		msg := gjson.GetBytes(body, "msg").String()
		logger.Error().Int64("Status", status.Int()).Str("Msg", msg).Msg("FinMind rejected the request")
		return nil, fmt.Errorf("%w: %s %s: %s", ErrUpstream, dataset, stockID, msg)
	}

	records := make([]*data.Record, 0)
	gjson.GetBytes(body, "data").ForEach(func(_, val gjson.Result) bool {
		dateStr := val.Get("date").String()
		filingDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			logger.Error().Err(err).Str("DateStr", dateStr).Msg("parsing statement date failed")
			return true
		}

		record := &data.Record{
			StockID:   stockID,
			Statement: statement,
			ItemCode:  val.Get("type").String(),
			Date:      filingDate,
		}

		if value := val.Get("value"); value.Type == gjson.Number {
			record.Value = null.FloatFrom(value.Float())
		}

		records = append(records, record)
		return true
	})

	logger.Debug().Int("NumRecords", len(records)).Msg("downloaded financial statement")

	return records, nil
}

func (finmind *FinMind) observe(dataset string, statusCode int, elapsed time.Duration) {
	if finmind.Observer != nil {
		finmind.Observer.ObserveRequest(finmind.Name(), dataset, statusCode, elapsed)
	}
}
