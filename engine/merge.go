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
	"sort"
	"time"

	"github.com/guregu/null/v6"
	"github.com/penny-vault/pvratios/data"
)

// Merge full outer joins frames on filing date and sorts the result ascending
// by date. Every whitelisted item column is present in the result, filled
// with missing where no source reported it. If every frame is empty the
// result has no rows.
func Merge(frames ...*Frame) *Frame {
	merged := &Frame{
		Columns: data.AllItems(),
		Rows:    []*Row{},
	}

	byDate := make(map[time.Time]*Row)
	for _, frame := range frames {
		if frame == nil {
			continue
		}

		for _, col := range frame.Columns {
			if !merged.HasColumn(col) {
				merged.Columns = append(merged.Columns, col)
			}
		}

		for _, src := range frame.Rows {
			row, ok := byDate[src.Date]
			if !ok {
				row = &Row{Date: src.Date, Values: make(map[string]null.Float, len(merged.Columns))}
				byDate[src.Date] = row
				merged.Rows = append(merged.Rows, row)
			}

			for code, val := range src.Values {
				row.Values[code] = val
			}
		}
	}

	for _, row := range merged.Rows {
		for _, col := range merged.Columns {
			if _, ok := row.Values[col]; !ok {
				row.Values[col] = null.Float{}
			}
		}
	}

	sort.SliceStable(merged.Rows, func(ii, jj int) bool {
		return merged.Rows[ii].Date.Before(merged.Rows[jj].Date)
	})

	return merged
}
