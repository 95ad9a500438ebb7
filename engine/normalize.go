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
	"github.com/rs/zerolog/log"
)

// Normalize filters records to the statement's whitelist and pivots them into
// one row per filing date with one column per item code. A (date, item) pair
// that never occurs is left missing. If the same pair is reported more than
// once the last present value wins; a missing value never replaces a present one.
func Normalize(records []*data.Record, statement data.StatementType) *Frame {
	frame := &Frame{
		Columns: []string{},
		Rows:    []*Row{},
	}

	byDate := make(map[time.Time]*Row)
	seen := make(map[string]bool)
	duplicates := 0

	for _, record := range records {
		if record == nil || !statement.Recognizes(record.ItemCode) {
			continue
		}

		date := dateOnly(record.Date)
		row, ok := byDate[date]
		if !ok {
			row = &Row{Date: date, Values: make(map[string]null.Float)}
			byDate[date] = row
			frame.Rows = append(frame.Rows, row)
		}

		if prev, ok := row.Values[record.ItemCode]; ok {
			duplicates++
			if !record.Value.Valid && prev.Valid {
				continue
			}
		}

		row.Values[record.ItemCode] = record.Value
		seen[record.ItemCode] = true
	}

	if duplicates > 0 {
		log.Warn().Str("Statement", string(statement)).Int("NumDuplicates", duplicates).Msg("duplicate statement items for the same filing date")
	}

	for _, item := range statement.Whitelist() {
		if seen[item] {
			frame.Columns = append(frame.Columns, item)
		}
	}

	sort.Slice(frame.Rows, func(ii, jj int) bool {
		return frame.Rows[ii].Date.Before(frame.Rows[jj].Date)
	})

	return frame
}
