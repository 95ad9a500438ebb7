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
package catalog

import (
	"errors"
	"fmt"

	"github.com/guregu/null/v6"
)

var (
	ErrUnknownIndicator = errors.New("unknown indicator")
)

const (
	Profitability = "profitability"
	Solvency      = "solvency"
	Growth        = "growth"
	Efficiency    = "efficiency"
)

// Indicator is a named derived metric
type Indicator struct {
	Name        string
	Label       string
	Description string
	Formula     Formula
}

// Category groups related indicators
type Category struct {
	Key        string
	Name       string
	Label      string
	Indicators []Indicator
}

// Catalog is the ordered set of indicators computed by the pipeline. A catalog
// is plain configuration; callers may build their own instead of Default.
type Catalog struct {
	Categories []Category
}

// Names returns every indicator name in catalog order
func (catalog *Catalog) Names() []string {
	names := make([]string, 0, 24)
	for _, category := range catalog.Categories {
		for _, indicator := range category.Indicators {
			names = append(names, indicator.Name)
		}
	}
	return names
}

// Indicators returns every indicator in catalog order
func (catalog *Catalog) Indicators() []Indicator {
	indicators := make([]Indicator, 0, 24)
	for _, category := range catalog.Categories {
		indicators = append(indicators, category.Indicators...)
	}
	return indicators
}

// Lookup finds an indicator by name or label
func (catalog *Catalog) Lookup(name string) (Indicator, bool) {
	for _, category := range catalog.Categories {
		for _, indicator := range category.Indicators {
			if indicator.Name == name || indicator.Label == name {
				return indicator, true
			}
		}
	}
	return Indicator{}, false
}

// Category returns the category with the given key
func (catalog *Catalog) Category(key string) (Category, bool) {
	for _, category := range catalog.Categories {
		if category.Key == key {
			return category, true
		}
	}
	return Category{}, false
}

// Select returns a catalog restricted to the named indicators. Catalog order
// is preserved regardless of the order of names; empty categories are dropped.
func (catalog *Catalog) Select(names []string) (*Catalog, error) {
	if len(names) == 0 {
		return catalog, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		indicator, ok := catalog.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownIndicator, name)
		}
		wanted[indicator.Name] = true
	}

	subset := &Catalog{}
	for _, category := range catalog.Categories {
		selected := Category{
			Key:   category.Key,
			Name:  category.Name,
			Label: category.Label,
		}

		for _, indicator := range category.Indicators {
			if wanted[indicator.Name] {
				selected.Indicators = append(selected.Indicators, indicator)
			}
		}

		if len(selected.Indicators) > 0 {
			subset.Categories = append(subset.Categories, selected)
		}
	}

	return subset, nil
}

func percent(num, den string) Formula {
	return func(w Window) null.Float {
		return Pct(w.Item(num), w.Item(den))
	}
}

func yoy(code string) Formula {
	return func(w Window) null.Float {
		return YoY(w.Item(code), w.Lag(4, code))
	}
}

func inventoryTurnover(w Window) null.Float {
	avgInventory := Avg(w.Lag(1, "Inventories"), w.Item("Inventories"))
	return Scale(Div(w.Item("CostOfGoodsSold"), avgInventory), 4)
}

// Default returns the standard catalog of profitability, solvency, growth and
// efficiency indicators.
func Default() *Catalog {
	return &Catalog{
		Categories: []Category{
			{
				Key:   Profitability,
				Name:  "Profitability",
				Label: "獲利能力指標",
				Indicators: []Indicator{
					{
						Name:        "EPS",
						Label:       "每股盈餘(EPS)",
						Description: "EPS as reported",
						Formula:     func(w Window) null.Float { return Pass(w.Item("EPS")) },
					},
					{
						Name:        "GrossProfitMargin",
						Label:       "營業毛利率(GrossProfitMargin)",
						Description: "GrossProfit / Revenue × 100",
						Formula:     percent("GrossProfit", "Revenue"),
					},
					{
						Name:        "OperatingMargin",
						Label:       "營業利益率(OperatingMargin)",
						Description: "OperatingIncome / Revenue × 100",
						Formula:     percent("OperatingIncome", "Revenue"),
					},
					{
						Name:        "PreTaxProfitMargin",
						Label:       "稅前淨利率(PreTaxProfitMargin)",
						Description: "PreTaxIncome / Revenue × 100",
						Formula:     percent("PreTaxIncome", "Revenue"),
					},
					{
						Name:        "NetProfitMargin",
						Label:       "稅後淨利率(NetProfitMargin)",
						Description: "IncomeAfterTaxes / Revenue × 100",
						Formula:     percent("IncomeAfterTaxes", "Revenue"),
					},
					{
						Name:        "ROA",
						Label:       "資產報酬率(ROA)",
						Description: "IncomeAfterTaxes / TotalAssets × 100",
						Formula:     percent("IncomeAfterTaxes", "TotalAssets"),
					},
					{
						Name:        "ROE",
						Label:       "股東權益報酬率(ROE)",
						Description: "IncomeAfterTaxes / EquityAttributableToOwnersOfParent × 100",
						Formula:     percent("IncomeAfterTaxes", "EquityAttributableToOwnersOfParent"),
					},
				},
			},
			{
				Key:   Solvency,
				Name:  "Solvency",
				Label: "償債能力指標",
				Indicators: []Indicator{
					{
						Name:        "CashRatio",
						Label:       "現金比率(CashRatio)",
						Description: "CashAndCashEquivalents / CurrentLiabilities × 100",
						Formula:     percent("CashAndCashEquivalents", "CurrentLiabilities"),
					},
					{
						Name:        "CurrentRatio",
						Label:       "流動比率(CurrentRatio)",
						Description: "CurrentAssets / CurrentLiabilities × 100",
						Formula:     percent("CurrentAssets", "CurrentLiabilities"),
					},
					{
						Name:        "InterestCoverageRatio",
						Label:       "利息保障倍數(InterestCoverageRatio)",
						Description: "(NetIncomeBeforeTax + PayTheInterest) / PayTheInterest",
						Formula: func(w Window) null.Float {
							return Div(Add(w.Item("NetIncomeBeforeTax"), w.Item("PayTheInterest")), w.Item("PayTheInterest"))
						},
					},
					{
						Name:        "OperatingCashFlowRatio",
						Label:       "現金流量比(OperatingCashFlowRatio)",
						Description: "NetCashInflowFromOperatingActivities / CurrentLiabilities × 100",
						Formula:     percent("NetCashInflowFromOperatingActivities", "CurrentLiabilities"),
					},
				},
			},
			{
				Key:   Growth,
				Name:  "Year-over-Year Growth",
				Label: "獲利年成長率",
				Indicators: []Indicator{
					{
						Name:        "RevenueYoY",
						Label:       "營收年成長率(Revenue YoY)",
						Description: "(Revenue - Revenue[-4]) / Revenue[-4] × 100",
						Formula:     yoy("Revenue"),
					},
					{
						Name:        "GrossProfitYoY",
						Label:       "毛利年成長率(GrossProfit YoY)",
						Description: "(GrossProfit - GrossProfit[-4]) / GrossProfit[-4] × 100",
						Formula:     yoy("GrossProfit"),
					},
					{
						Name:        "OperatingIncomeYoY",
						Label:       "營業利益年成長率(OperatingIncome YoY)",
						Description: "(OperatingIncome - OperatingIncome[-4]) / OperatingIncome[-4] × 100",
						Formula:     yoy("OperatingIncome"),
					},
					{
						Name:        "PreTaxIncomeYoY",
						Label:       "稅前淨利年成長率(PreTaxIncome YoY)",
						Description: "(PreTaxIncome - PreTaxIncome[-4]) / PreTaxIncome[-4] × 100",
						Formula:     yoy("PreTaxIncome"),
					},
					{
						Name:        "IncomeAfterTaxesYoY",
						Label:       "稅後淨利年成長率(IncomeAfterTaxes YoY)",
						Description: "(IncomeAfterTaxes - IncomeAfterTaxes[-4]) / IncomeAfterTaxes[-4] × 100",
						Formula:     yoy("IncomeAfterTaxes"),
					},
					{
						Name:        "EPSYoY",
						Label:       "每股盈餘年成長率(EPS YoY)",
						Description: "(EPS - EPS[-4]) / EPS[-4] × 100",
						Formula:     yoy("EPS"),
					},
				},
			},
			{
				Key:   Efficiency,
				Name:  "Efficiency",
				Label: "經營能力指標",
				Indicators: []Indicator{
					{
						Name:        "CostMargin",
						Label:       "營業成本率(CostMargin)",
						Description: "CostOfGoodsSold / Revenue × 100",
						Formula:     percent("CostOfGoodsSold", "Revenue"),
					},
					{
						Name:        "ExpenseMargin",
						Label:       "營業費用率(ExpenseMargin)",
						Description: "OperatingExpenses / Revenue × 100",
						Formula:     percent("OperatingExpenses", "Revenue"),
					},
					{
						Name:        "InventoryTurnover",
						Label:       "存貨週轉率(InventoryTurnover)",
						Description: "CostOfGoodsSold / avg(Inventories[-1], Inventories) × 4",
						Formula:     inventoryTurnover,
					},
					{
						Name:        "DaysSalesOutstanding",
						Label:       "平均售貨日數(DaysSalesOutstanding)",
						Description: "365 / InventoryTurnover",
						Formula: func(w Window) null.Float {
							return Div(Const(365), inventoryTurnover(w))
						},
					},
					{
						Name:        "TotalAssetTurnover",
						Label:       "總資產週轉率(TotalAssetTurnover)",
						Description: "Revenue / avg(TotalAssets[-1], TotalAssets) × 4",
						Formula: func(w Window) null.Float {
							avgAssets := Avg(w.Lag(1, "TotalAssets"), w.Item("TotalAssets"))
							return Scale(Div(w.Item("Revenue"), avgAssets), 4)
						},
					},
				},
			},
		},
	}
}
