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
	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/data"
	"github.com/penny-vault/pvratios/quarter"
)

// Statements holds the raw records of one stock keyed by statement type
type Statements map[data.StatementType][]*data.Record

// Empty reports whether no statement has any records
func (statements Statements) Empty() bool {
	for _, records := range statements {
		if len(records) > 0 {
			return false
		}
	}
	return true
}

// NumRecords counts records across all statements
func (statements Statements) NumRecords() int {
	count := 0
	for _, records := range statements {
		count += len(records)
	}
	return count
}

// Run computes the indicator table of one stock restricted to quarters.
// It never fails on absent data: an empty table means there is no data for
// the stock in the requested quarters.
func Run(stockID string, statements Statements, quarters []quarter.Label, cat *catalog.Catalog) *data.IndicatorTable {
	if statements.Empty() {
		return Project(stockID, nil, quarters, cat)
	}

	frames := make([]*Frame, 0, len(data.Statements))
	for _, statement := range data.Statements {
		frames = append(frames, Normalize(statements[statement], statement))
	}

	merged := Merge(frames...)
	if merged.Empty() {
		return Project(stockID, nil, quarters, cat)
	}

	return Project(stockID, Calculate(merged, cat), quarters, cat)
}
