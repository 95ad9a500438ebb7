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
package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/data"
	"github.com/penny-vault/pvratios/export"
	"github.com/penny-vault/pvratios/quarter"
	"github.com/penny-vault/pvratios/runner"
	"github.com/rs/zerolog/log"
)

var (
	ErrTooManyStocks = errors.New("too many stocks requested")
)

type IndicatorsRequest struct {
	Stocks     string `query:"stocks" validate:"required"`
	Start      string `query:"start" validate:"required_without=Quarters"`
	End        string `query:"end" validate:"required_without=Quarters"`
	Quarters   string `query:"quarters"`
	Indicators string `query:"indicators"`
}

type IndicatorsResponse struct {
	Columns []string            `json:"columns"`
	Rows    []*export.Row       `json:"rows"`
	NoData  []string            `json:"no_data"`
	Failed  map[string]string   `json:"failed"`
	Missing map[string][]string `json:"missing_indicators"`
	Summary SummaryResponse     `json:"summary"`
}

type SummaryResponse struct {
	NumStocks    int    `json:"num_stocks"`
	NumSucceeded int    `json:"num_succeeded"`
	NumNoData    int    `json:"num_no_data"`
	NumFailed    int    `json:"num_failed"`
	RunTime      string `json:"run_time"`
}

type QuartersRequest struct {
	From int `query:"from" default:"1990" validate:"gte=1900,lte=9999"`
	To   int `query:"to" validate:"omitempty,gte=1900,lte=9999"`
}

type IndicatorResponse struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type CategoryResponse struct {
	Key        string              `json:"key"`
	Name       string              `json:"name"`
	Label      string              `json:"label"`
	Indicators []IndicatorResponse `json:"indicators"`
}

// Indicators computes indicator tables for the requested stocks and quarters
func (server *Server) Indicators(c echo.Context) error {
	req := &IndicatorsRequest{}
	if errs := bindRequest(c, req); errs != nil {
		return badRequest(c, errs)
	}

	var (
		quarters []quarter.Label
		err      error
	)

	if req.Quarters != "" {
		quarters, err = quarter.ParseList(req.Quarters)
	} else {
		quarters, err = quarter.RangeString(req.Start, req.End)
	}
	if err != nil {
		return badRequestErr(c, "ERR_QUARTER", err)
	}

	stockIDs := runner.ParseStockIDs(req.Stocks)
	if len(stockIDs) > server.cfg.MaxStocks {
		return badRequestErr(c, "ERR_TOO_MANY_STOCKS", ErrTooManyStocks)
	}

	var selected []string
	if req.Indicators != "" {
		selected = strings.Split(req.Indicators, ",")
		for idx := range selected {
			selected[idx] = strings.TrimSpace(selected[idx])
		}
	}

	cat, err := server.catalog.Select(selected)
	if err != nil {
		return badRequestErr(c, "ERR_INDICATOR", err)
	}

	batch := *server.runner
	batch.Catalog = cat

	result, err := batch.Run(c.Request().Context(), stockIDs, quarters)
	if err != nil {
		log.Error().Err(err).Msg("indicator run failed")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, newIndicatorsResponse(result, cat))
}

func newIndicatorsResponse(result *runner.Result, cat *catalog.Catalog) *IndicatorsResponse {
	failed := make(map[string]string, len(result.Failed))
	for stockID, err := range result.Failed {
		failed[stockID] = err.Error()
	}

	missing := make(map[string][]string)
	for _, indicator := range cat.Indicators() {
		for _, table := range result.Tables {
			if !table.HasData(indicator.Name) {
				missing[indicator.Name] = append(missing[indicator.Name], table.StockID)
			}
		}
	}

	return &IndicatorsResponse{
		Columns: export.Header(cat),
		Rows:    export.Rows(result.Tables, cat),
		NoData:  result.NoData,
		Failed:  failed,
		Missing: missing,
		Summary: newSummaryResponse(result.Summary),
	}
}

func newSummaryResponse(summary data.RunSummary) SummaryResponse {
	return SummaryResponse{
		NumStocks:    summary.NumStocks,
		NumSucceeded: summary.NumSucceeded,
		NumNoData:    summary.NumNoData,
		NumFailed:    summary.NumFailed,
		RunTime:      summary.Duration().String(),
	}
}

// Quarters lists every quarter label between two years, newest first
func (server *Server) Quarters(c echo.Context) error {
	req := &QuartersRequest{}
	if errs := bindRequest(c, req); errs != nil {
		return badRequest(c, errs)
	}

	to := req.To
	if to == 0 {
		to = time.Now().Year()
	}

	return c.JSON(http.StatusOK, quarter.Strings(quarter.Descending(req.From, to)))
}

// Catalog describes the indicators the server can compute
func (server *Server) Catalog(c echo.Context) error {
	categories := make([]CategoryResponse, 0, len(server.catalog.Categories))
	for _, category := range server.catalog.Categories {
		resp := CategoryResponse{
			Key:   category.Key,
			Name:  category.Name,
			Label: category.Label,
		}
		for _, indicator := range category.Indicators {
			resp.Indicators = append(resp.Indicators, IndicatorResponse{
				Name:        indicator.Name,
				Label:       indicator.Label,
				Description: indicator.Description,
			})
		}
		categories = append(categories, resp)
	}

	return c.JSON(http.StatusOK, categories)
}
