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
package quarter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidQuarterFormat = errors.New("invalid quarter format")
)

// Label identifies a fiscal quarter, e.g. 2023Q1
type Label struct {
	Year    int
	Quarter int
}

// Parse converts a string of the form YYYYQn (or YYYY-Qn) into a Label
func Parse(s string) (Label, error) {
	str := strings.ToUpper(strings.TrimSpace(s))
	str = strings.Replace(str, "-Q", "Q", 1)

	if len(str) != 6 || str[4] != 'Q' || !isDigits(str[:4]) || !isDigits(str[5:]) {
		return Label{}, fmt.Errorf("%w: %q", ErrInvalidQuarterFormat, s)
	}

	year, err := strconv.Atoi(str[:4])
	if err != nil || year <= 0 {
		return Label{}, fmt.Errorf("%w: %q", ErrInvalidQuarterFormat, s)
	}

	qtr, err := strconv.Atoi(str[5:])
	if err != nil || qtr < 1 || qtr > 4 {
		return Label{}, fmt.Errorf("%w: %q", ErrInvalidQuarterFormat, s)
	}

	return Label{Year: year, Quarter: qtr}, nil
}

func isDigits(s string) bool {
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// MustParse is like Parse but panics if the label is malformed
func MustParse(s string) Label {
	label, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return label
}

// ParseList parses a comma separated list of quarter labels. The first
// malformed label aborts parsing.
func ParseList(s string) ([]Label, error) {
	labels := make([]Label, 0)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		label, err := Parse(part)
		if err != nil {
			return nil, err
		}

		labels = append(labels, label)
	}

	return labels, nil
}

func (label Label) String() string {
	return fmt.Sprintf("%04dQ%d", label.Year, label.Quarter)
}

// Date returns the representative filing date (quarter end) of the label
func (label Label) Date() time.Time {
	month := time.Month(label.Quarter * 3)
	// day 0 of the following month is the last day of month
	return time.Date(label.Year, month+1, 0, 0, 0, 0, 0, time.UTC)
}

// Before reports whether label is chronologically before other
func (label Label) Before(other Label) bool {
	return label.index() < other.index()
}

// Next returns the quarter immediately following label
func (label Label) Next() Label {
	return fromIndex(label.index() + 1)
}

func (label Label) index() int {
	return label.Year*4 + (label.Quarter - 1)
}

func fromIndex(idx int) Label {
	return Label{Year: idx / 4, Quarter: idx%4 + 1}
}

// ToDate converts a quarter label string into its quarter-end date
func ToDate(s string) (time.Time, error) {
	label, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}

	return label.Date(), nil
}

// FromDate derives the quarter label a date falls into
func FromDate(t time.Time) Label {
	return Label{
		Year:    t.Year(),
		Quarter: (int(t.Month())-1)/3 + 1,
	}
}

// Range enumerates every quarter from start to end inclusive in chronological
// order. If start is after end the result is empty.
func Range(start, end Label) []Label {
	if end.Before(start) {
		return []Label{}
	}

	labels := make([]Label, 0, end.index()-start.index()+1)
	for idx := start.index(); idx <= end.index(); idx++ {
		labels = append(labels, fromIndex(idx))
	}

	return labels
}

// RangeString validates start and end and returns Range(start, end)
func RangeString(start, end string) ([]Label, error) {
	startLabel, err := Parse(start)
	if err != nil {
		return nil, err
	}

	endLabel, err := Parse(end)
	if err != nil {
		return nil, err
	}

	return Range(startLabel, endLabel), nil
}

// Descending lists every quarter between firstYear Q1 and lastYear Q4, newest first
func Descending(firstYear, lastYear int) []Label {
	labels := Range(Label{Year: firstYear, Quarter: 1}, Label{Year: lastYear, Quarter: 4})
	for ii, jj := 0, len(labels)-1; ii < jj; ii, jj = ii+1, jj-1 {
		labels[ii], labels[jj] = labels[jj], labels[ii]
	}
	return labels
}

// Strings converts labels to their canonical string form
func Strings(labels []Label) []string {
	out := make([]string, len(labels))
	for idx, label := range labels {
		out[idx] = label.String()
	}
	return out
}

// Set is a membership index over quarter labels
type Set map[Label]struct{}

func NewSet(labels []Label) Set {
	set := make(Set, len(labels))
	for _, label := range labels {
		set[label] = struct{}{}
	}
	return set
}

func (set Set) Contains(label Label) bool {
	_, ok := set[label]
	return ok
}
