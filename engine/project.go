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
package engine

import (
	"github.com/guregu/null/v6"
	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/data"
	"github.com/penny-vault/pvratios/quarter"
)

// Project keeps the computed rows whose quarter is in quarters, tags them with
// the stock id and keeps only the catalog's indicators. Rows stay in
// chronological order. The quarters are treated as a set so sparse requests
// are honored exactly.
func Project(stockID string, computed []*Computed, quarters []quarter.Label, cat *catalog.Catalog) *data.IndicatorTable {
	table := &data.IndicatorTable{
		StockID: stockID,
		Columns: cat.Names(),
		Rows:    []*data.IndicatorRow{},
	}

	wanted := quarter.NewSet(quarters)
	for _, result := range computed {
		label := quarter.FromDate(result.Date)
		if !wanted.Contains(label) {
			continue
		}

		row := &data.IndicatorRow{
			StockID: stockID,
			Date:    result.Date,
			Quarter: label,
			Values:  make(map[string]null.Float, len(table.Columns)),
		}

		for _, name := range table.Columns {
			row.Values[name] = result.Indicators[name]
		}

		table.Rows = append(table.Rows, row)
	}

	return table
}
