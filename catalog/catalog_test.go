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
package catalog_test

import (
	"math"

	"github.com/guregu/null/v6"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvratios/catalog"
)

// sliceWindow is a Window over a column oriented history where the last
// element of each column is the current row
type sliceWindow map[string][]null.Float

func (w sliceWindow) Item(code string) null.Float {
	return w.Lag(0, code)
}

func (w sliceWindow) Lag(n int, code string) null.Float {
	col := w[code]
	idx := len(col) - 1 - n
	if idx < 0 || idx >= len(col) {
		return null.Float{}
	}
	return col[idx]
}

func vals(nums ...float64) []null.Float {
	out := make([]null.Float, len(nums))
	for idx, num := range nums {
		if math.IsNaN(num) {
			continue
		}
		out[idx] = null.FloatFrom(num)
	}
	return out
}

var _ = Describe("Catalog", func() {
	var cat *catalog.Catalog

	BeforeEach(func() {
		cat = catalog.Default()
	})

	Describe("arithmetic", func() {
		missing := null.Float{}

		It("propagates missing operands", func() {
			Expect(catalog.Add(missing, catalog.Const(1)).Valid).To(BeFalse())
			Expect(catalog.Sub(catalog.Const(1), missing).Valid).To(BeFalse())
			Expect(catalog.Div(missing, catalog.Const(1)).Valid).To(BeFalse())
			Expect(catalog.Avg(catalog.Const(1), missing).Valid).To(BeFalse())
			Expect(catalog.YoY(catalog.Const(1), missing).Valid).To(BeFalse())
		})

		It("treats division by zero as missing", func() {
			Expect(catalog.Div(catalog.Const(1), catalog.Const(0)).Valid).To(BeFalse())
			Expect(catalog.Pct(catalog.Const(0), catalog.Const(0)).Valid).To(BeFalse())
		})

		It("maps non-finite numbers to missing", func() {
			Expect(catalog.Value(math.Inf(1)).Valid).To(BeFalse())
			Expect(catalog.Value(math.NaN()).Valid).To(BeFalse())
			Expect(catalog.Scale(catalog.Const(math.MaxFloat64), 10).Valid).To(BeFalse())
		})

		It("computes percentages and growth", func() {
			Expect(catalog.Pct(catalog.Const(52), catalog.Const(130)).Float64).To(BeNumerically("~", 40.0, 1e-9))
			Expect(catalog.YoY(catalog.Const(150), catalog.Const(100)).Float64).To(BeNumerically("~", 50.0, 1e-9))
			Expect(catalog.Avg(catalog.Const(10), catalog.Const(20)).Float64).To(Equal(15.0))
		})
	})

	Describe("default catalog", func() {
		It("declares categories in output order", func() {
			keys := make([]string, 0, 4)
			for _, category := range cat.Categories {
				keys = append(keys, category.Key)
			}
			Expect(keys).To(Equal([]string{catalog.Profitability, catalog.Solvency, catalog.Growth, catalog.Efficiency}))
		})

		It("declares indicators in output order", func() {
			Expect(cat.Names()).To(Equal([]string{
				"EPS", "GrossProfitMargin", "OperatingMargin", "PreTaxProfitMargin", "NetProfitMargin", "ROA", "ROE",
				"CashRatio", "CurrentRatio", "InterestCoverageRatio", "OperatingCashFlowRatio",
				"RevenueYoY", "GrossProfitYoY", "OperatingIncomeYoY", "PreTaxIncomeYoY", "IncomeAfterTaxesYoY", "EPSYoY",
				"CostMargin", "ExpenseMargin", "InventoryTurnover", "DaysSalesOutstanding", "TotalAssetTurnover",
			}))
		})

		It("finds indicators by label", func() {
			indicator, ok := cat.Lookup("營業毛利率(GrossProfitMargin)")
			Expect(ok).To(BeTrue())
			Expect(indicator.Name).To(Equal("GrossProfitMargin"))
		})

		It("does not scale the interest coverage ratio", func() {
			indicator, _ := cat.Lookup("InterestCoverageRatio")
			w := sliceWindow{"NetIncomeBeforeTax": vals(90), "PayTheInterest": vals(10)}
			Expect(indicator.Formula(w).Float64).To(BeNumerically("~", 10.0, 1e-9))
		})

		It("passes EPS through unchanged", func() {
			indicator, _ := cat.Lookup("EPS")
			Expect(indicator.Formula(sliceWindow{"EPS": vals(3.21)}).Float64).To(Equal(3.21))
		})

		It("annualizes inventory turnover against the previous row", func() {
			turnover, _ := cat.Lookup("InventoryTurnover")
			dso, _ := cat.Lookup("DaysSalesOutstanding")
			w := sliceWindow{"CostOfGoodsSold": vals(60, 50), "Inventories": vals(80, 120)}
			Expect(turnover.Formula(w).Float64).To(BeNumerically("~", 2.0, 1e-9))
			Expect(dso.Formula(w).Float64).To(BeNumerically("~", 182.5, 1e-9))
		})

		It("leaves lagged ratios missing without history", func() {
			turnover, _ := cat.Lookup("TotalAssetTurnover")
			Expect(turnover.Formula(sliceWindow{"Revenue": vals(100), "TotalAssets": vals(400)}).Valid).To(BeFalse())

			growth, _ := cat.Lookup("RevenueYoY")
			Expect(growth.Formula(sliceWindow{"Revenue": vals(100, 110, 120, 130)}).Valid).To(BeFalse())
			Expect(growth.Formula(sliceWindow{"Revenue": vals(100, 110, 120, 130, 150)}).Float64).To(BeNumerically("~", 50.0, 1e-9))
		})

		It("treats zero current liabilities as missing", func() {
			w := sliceWindow{
				"CashAndCashEquivalents":               vals(10),
				"CurrentAssets":                        vals(20),
				"NetCashInflowFromOperatingActivities": vals(30),
				"CurrentLiabilities":                   vals(0),
			}
			for _, name := range []string{"CashRatio", "CurrentRatio", "OperatingCashFlowRatio"} {
				indicator, _ := cat.Lookup(name)
				Expect(indicator.Formula(w).Valid).To(BeFalse(), name)
			}
		})
	})

	Describe("selecting indicators", func() {
		It("keeps catalog order and drops empty categories", func() {
			subset, err := cat.Select([]string{"TotalAssetTurnover", "EPS", "CurrentRatio"})
			Expect(err).NotTo(HaveOccurred())
			Expect(subset.Names()).To(Equal([]string{"EPS", "CurrentRatio", "TotalAssetTurnover"}))
			Expect(subset.Categories).To(HaveLen(3))
			_, ok := subset.Category(catalog.Growth)
			Expect(ok).To(BeFalse())
		})

		It("returns the whole catalog for an empty selection", func() {
			subset, err := cat.Select(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(subset.Names()).To(HaveLen(22))
		})

		It("rejects unknown names", func() {
			_, err := cat.Select([]string{"PriceToBook"})
			Expect(err).To(MatchError(catalog.ErrUnknownIndicator))
		})
	})
})
