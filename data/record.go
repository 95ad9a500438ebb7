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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"
)

var (
	ErrUnknownStatement = errors.New("unknown statement type")
)

// StatementType identifies which financial statement a record was filed on
type StatementType string

const (
	IncomeStatement   StatementType = "income"
	BalanceSheet      StatementType = "balance"
	CashFlowStatement StatementType = "cashflow"
)

// Statements lists every statement type in processing order
var Statements = []StatementType{IncomeStatement, BalanceSheet, CashFlowStatement}

var whitelists = map[StatementType][]string{
	IncomeStatement: {
		"EPS",
		"GrossProfit",
		"OperatingIncome",
		"PreTaxIncome",
		"IncomeAfterTaxes",
		"Revenue",
		"CostOfGoodsSold",
		"OperatingExpenses",
	},
	BalanceSheet: {
		"TotalAssets",
		"EquityAttributableToOwnersOfParent",
		"CurrentAssets",
		"CurrentLiabilities",
		"CashAndCashEquivalents",
		"Inventories",
	},
	CashFlowStatement: {
		"NetCashInflowFromOperatingActivities",
		"NetIncomeBeforeTax",
		"PayTheInterest",
	},
}

// ParseStatementType converts a statement name into a StatementType
func ParseStatementType(s string) (StatementType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "income-statement", "incomestatement":
		return IncomeStatement, nil
	case "balance", "balance-sheet", "balancesheet":
		return BalanceSheet, nil
	case "cashflow", "cash-flow", "cashflowstatement":
		return CashFlowStatement, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownStatement, s)
	}
}

// Whitelist returns the item codes recognized for the statement type
func (statement StatementType) Whitelist() []string {
	items := whitelists[statement]
	out := make([]string, len(items))
	copy(out, items)
	return out
}

// Recognizes reports whether itemCode is on the statement's whitelist
func (statement StatementType) Recognizes(itemCode string) bool {
	for _, item := range whitelists[statement] {
		if item == itemCode {
			return true
		}
	}
	return false
}

// AllItems returns the union of every statement whitelist in statement order
func AllItems() []string {
	items := make([]string, 0, 17)
	for _, statement := range Statements {
		items = append(items, whitelists[statement]...)
	}
	return items
}

// Record is a single line item observation reported on a financial statement
type Record struct {
	StockID   string        `json:"stock_id"`
	Statement StatementType `json:"statement"`
	ItemCode  string        `json:"type"`
	Date      time.Time     `json:"date"`
	Value     null.Float    `json:"value"`
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler
func (record *Record) MarshalZerologObject(e *zerolog.Event) {
	e.Str("StockID", record.StockID)
	e.Str("Statement", string(record.Statement))
	e.Str("ItemCode", record.ItemCode)
	e.Time("Date", record.Date)
	if record.Value.Valid {
		e.Float64("Value", record.Value.Float64)
	} else {
		e.Str("Value", "missing")
	}
}
