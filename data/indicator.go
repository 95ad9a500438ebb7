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
package data

import (
	"time"

	"github.com/guregu/null/v6"
	"github.com/penny-vault/pvratios/quarter"
	"github.com/rs/zerolog"
)

// IndicatorRow holds the derived indicators for one stock in one quarter
type IndicatorRow struct {
	StockID string
	Date    time.Time
	Quarter quarter.Label
	Values  map[string]null.Float
}

// Get returns the value of the named indicator; unknown names are missing
func (row *IndicatorRow) Get(name string) null.Float {
	if val, ok := row.Values[name]; ok {
		return val
	}
	return null.Float{}
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler
func (row *IndicatorRow) MarshalZerologObject(e *zerolog.Event) {
	e.Str("StockID", row.StockID)
	e.Str("Quarter", row.Quarter.String())
	e.Time("Date", row.Date)
	e.Int("NumIndicators", len(row.Values))
}

// IndicatorTable is the final per-stock output of the indicator pipeline.
// Columns lists indicator names in catalog order; the stock id, filing date
// and quarter label always precede them.
type IndicatorTable struct {
	StockID string
	Columns []string
	Rows    []*IndicatorRow
}

// Empty reports whether the stock produced no rows (no data for the stock)
func (table *IndicatorTable) Empty() bool {
	return table == nil || len(table.Rows) == 0
}

// Column returns every value of the named indicator in row order
func (table *IndicatorTable) Column(name string) []null.Float {
	if table == nil {
		return nil
	}

	values := make([]null.Float, len(table.Rows))
	for idx, row := range table.Rows {
		values[idx] = row.Get(name)
	}
	return values
}

// HasData reports whether at least one row has a value for the indicator.
// A non-empty table where HasData is false means the stock has data but the
// indicator is missing for the whole requested range.
func (table *IndicatorTable) HasData(name string) bool {
	for _, val := range table.Column(name) {
		if val.Valid {
			return true
		}
	}
	return false
}

// Quarters returns the quarter label of each row in row order
func (table *IndicatorTable) Quarters() []quarter.Label {
	if table == nil {
		return nil
	}

	labels := make([]quarter.Label, len(table.Rows))
	for idx, row := range table.Rows {
		labels[idx] = row.Quarter
	}
	return labels
}

// Header returns the full ordered column list including the identity columns
func (table *IndicatorTable) Header() []string {
	header := []string{"stock_id", "date", "quarter"}
	return append(header, table.Columns...)
}
