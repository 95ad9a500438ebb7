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
	"time"

	"github.com/guregu/null/v6"
)

// Row is one filing date of a wide statement table
type Row struct {
	Date   time.Time
	Values map[string]null.Float
}

// Get returns the cell for column code; absent cells are missing
func (row *Row) Get(code string) null.Float {
	if val, ok := row.Values[code]; ok {
		return val
	}
	return null.Float{}
}

// Frame is a date indexed wide table with one column per item code
type Frame struct {
	Columns []string
	Rows    []*Row
}

// Empty reports whether the frame has no rows
func (frame *Frame) Empty() bool {
	return frame == nil || len(frame.Rows) == 0
}

// HasColumn reports whether code is one of the frame's columns
func (frame *Frame) HasColumn(code string) bool {
	for _, col := range frame.Columns {
		if col == code {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// window implements catalog.Window over rows sorted by date
type window struct {
	rows []*Row
	idx  int
}

func (w window) Item(code string) null.Float {
	return w.rows[w.idx].Get(code)
}

func (w window) Lag(n int, code string) null.Float {
	pos := w.idx - n
	if pos < 0 || pos >= len(w.rows) {
		return null.Float{}
	}
	return w.rows[pos].Get(code)
}
