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
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/penny-vault/pvratios/catalog"
)

// Computed is a merged row annotated with its derived indicators
type Computed struct {
	Date       time.Time
	Items      map[string]null.Float
	Indicators map[string]null.Float
}

// Calculate evaluates every catalog formula on every row of a date sorted
// frame. Lagged formulas look back by row position. Rows that are identical
// across every item and indicator are collapsed to the first occurrence.
func Calculate(frame *Frame, cat *catalog.Catalog) []*Computed {
	if frame.Empty() {
		return []*Computed{}
	}

	indicators := cat.Indicators()
	computed := make([]*Computed, 0, len(frame.Rows))
	seen := make(map[string]bool, len(frame.Rows))

	for idx, row := range frame.Rows {
		w := window{rows: frame.Rows, idx: idx}
		result := &Computed{
			Date:       row.Date,
			Items:      row.Values,
			Indicators: make(map[string]null.Float, len(indicators)),
		}

		for _, indicator := range indicators {
			result.Indicators[indicator.Name] = indicator.Formula(w)
		}

		key := fingerprint(result, frame.Columns, indicators)
		if seen[key] {
			continue
		}
		seen[key] = true

		computed = append(computed, result)
	}

	return computed
}

func fingerprint(result *Computed, columns []string, indicators []catalog.Indicator) string {
	var builder strings.Builder
	builder.WriteString(result.Date.Format("2006-01-02"))

	writeVal := func(val null.Float) {
		builder.WriteByte('|')
		if !val.Valid {
			builder.WriteByte('-')
			return
		}
		builder.WriteString(strconv.FormatUint(math.Float64bits(val.Float64), 16))
	}

	for _, col := range columns {
		writeVal(result.Items[col])
	}

	for _, indicator := range indicators {
		writeVal(result.Indicators[indicator.Name])
	}

	return builder.String()
}
