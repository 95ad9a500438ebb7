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

	"github.com/rs/zerolog"
)

// RunSummary describes the outcome of computing indicators for a batch of stocks
type RunSummary struct {
	StartTime    time.Time
	EndTime      time.Time
	NumStocks    int
	NumSucceeded int
	NumNoData    int
	NumFailed    int
}

// Duration returns how long the run took
func (summary RunSummary) Duration() time.Duration {
	return summary.EndTime.Sub(summary.StartTime)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler
func (summary RunSummary) MarshalZerologObject(e *zerolog.Event) {
	e.Time("StartTime", summary.StartTime)
	e.Time("EndTime", summary.EndTime)
	e.Int("NumStocks", summary.NumStocks)
	e.Int("NumSucceeded", summary.NumSucceeded)
	e.Int("NumNoData", summary.NumNoData)
	e.Int("NumFailed", summary.NumFailed)
}
