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
package engine_test

import (
	"github.com/guregu/null/v6"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/data"
	"github.com/penny-vault/pvratios/engine"
	"github.com/penny-vault/pvratios/quarter"
)

// expectColumn compares an indicator column against expected values where
// nil means missing
func expectColumn(table *data.IndicatorTable, name string, expected ...interface{}) {
	GinkgoHelper()
	column := table.Column(name)
	Expect(column).To(HaveLen(len(expected)), name)
	for idx, want := range expected {
		if want == nil {
			Expect(column[idx].Valid).To(BeFalse(), "%s row %d", name, idx)
			continue
		}
		Expect(column[idx].Valid).To(BeTrue(), "%s row %d", name, idx)
		Expect(column[idx].Float64).To(BeNumerically("~", want, 1e-9), "%s row %d", name, idx)
	}
}

var _ = Describe("Pipeline", func() {
	var (
		cat      *catalog.Catalog
		quarters []quarter.Label
	)

	BeforeEach(func() {
		cat = catalog.Default()
		quarters = quarter.Range(quarter.MustParse("2020Q1"), quarter.MustParse("2025Q4"))
	})

	Context("with no records", func() {
		It("produces an empty table without failing", func() {
			table := engine.Run("2330", engine.Statements{}, quarters, cat)
			Expect(table.Empty()).To(BeTrue())
			Expect(table.StockID).To(Equal("2330"))
			Expect(table.Columns).To(Equal(cat.Names()))
		})

		It("calculates nothing on an empty frame", func() {
			merged := engine.Merge(engine.Normalize(nil, data.IncomeStatement))
			Expect(engine.Calculate(merged, cat)).To(BeEmpty())
		})

		It("treats records outside every whitelist as no data", func() {
			statements := engine.Statements{
				data.IncomeStatement: series(data.IncomeStatement, "NonOperatingIncome", "2023Q1", 1, 2),
			}
			Expect(engine.Run("2330", statements, quarters, cat).Empty()).To(BeTrue())
		})
	})

	Context("profitability", func() {
		It("computes gross profit margin per quarter without growth history", func() {
			statements := engine.Statements{
				data.IncomeStatement: append(
					series(data.IncomeStatement, "Revenue", "2023Q1", 100, 110, 120, 130),
					series(data.IncomeStatement, "GrossProfit", "2023Q1", 40, 42, 48, 52)...,
				),
			}

			table := engine.Run("2330", statements, quarters, cat)
			Expect(table.Rows).To(HaveLen(4))

			gpm := table.Column("GrossProfitMargin")
			Expect(gpm[0].Float64).To(BeNumerically("~", 40.0, 1e-9))
			Expect(gpm[3].Float64).To(BeNumerically("~", 40.0, 1e-9))

			for _, name := range []string{"RevenueYoY", "GrossProfitYoY", "EPSYoY"} {
				Expect(table.HasData(name)).To(BeFalse(), name)
			}
		})
	})

	Context("growth", func() {
		It("compares against the row four positions earlier", func() {
			statements := engine.Statements{
				data.IncomeStatement: series(data.IncomeStatement, "Revenue", "2023Q1", 100, 110, 120, 130, 150),
			}

			table := engine.Run("2330", statements, quarters, cat)
			expectColumn(table, "RevenueYoY", nil, nil, nil, nil, 50.0)
		})

		It("uses position rather than the calendar when filings have gaps", func() {
			// 2022Q2 is missing so row 5 (2023Q2) is compared with 2022Q1
			records := series(data.IncomeStatement, "Revenue", "2022Q1", 100)
			records = append(records, series(data.IncomeStatement, "Revenue", "2022Q3", 110, 120, 130, 200)...)

			table := engine.Run("2330", engine.Statements{data.IncomeStatement: records}, quarters, cat)
			Expect(table.Rows[4].Quarter.String()).To(Equal("2023Q2"))
			Expect(table.Rows[4].Get("RevenueYoY").Float64).To(BeNumerically("~", 100.0, 1e-9))
		})

		It("is missing when the base period is zero", func() {
			statements := engine.Statements{
				data.IncomeStatement: series(data.IncomeStatement, "EPS", "2023Q1", 0, 1, 1, 1, 2),
			}
			table := engine.Run("2330", statements, quarters, cat)
			Expect(table.Rows[4].Get("EPSYoY").Valid).To(BeFalse())
			Expect(table.Rows[4].Get("EPS").Float64).To(Equal(2.0))
		})
	})

	Context("efficiency", func() {
		It("leaves lagged turnover ratios missing on the first row", func() {
			statements := engine.Statements{
				data.IncomeStatement: append(
					series(data.IncomeStatement, "Revenue", "2023Q1", 100, 120),
					series(data.IncomeStatement, "CostOfGoodsSold", "2023Q1", 60, 50)...,
				),
				data.BalanceSheet: append(
					series(data.BalanceSheet, "Inventories", "2023Q1", 80, 120),
					series(data.BalanceSheet, "TotalAssets", "2023Q1", 400, 560)...,
				),
			}

			table := engine.Run("2330", statements, quarters, cat)
			expectColumn(table, "InventoryTurnover", nil, 2.0)
			expectColumn(table, "DaysSalesOutstanding", nil, 182.5)
			expectColumn(table, "TotalAssetTurnover", nil, 1.0)
			expectColumn(table, "CostMargin", 60.0, 50.0 / 120.0 * 100)
		})
	})

	Context("solvency", func() {
		It("is missing when current liabilities are zero or missing", func() {
			statements := engine.Statements{
				data.BalanceSheet: append(append(
					series(data.BalanceSheet, "CurrentLiabilities", "2023Q1", 0, 50),
					series(data.BalanceSheet, "CurrentAssets", "2023Q1", 100, 100, 100)...),
					series(data.BalanceSheet, "CashAndCashEquivalents", "2023Q1", 10, 10, 10)...,
				),
				data.CashFlowStatement: series(data.CashFlowStatement, "NetCashInflowFromOperatingActivities", "2023Q1", 5, 5, 5),
			}

			table := engine.Run("2330", statements, quarters, cat)
			Expect(table.Rows).To(HaveLen(3))
			expectColumn(table, "CurrentRatio", nil, 200.0, nil)
			expectColumn(table, "CashRatio", nil, 20.0, nil)
			expectColumn(table, "OperatingCashFlowRatio", nil, 10.0, nil)
		})

		It("computes interest coverage from the cash flow statement", func() {
			statements := engine.Statements{
				data.CashFlowStatement: append(
					series(data.CashFlowStatement, "NetIncomeBeforeTax", "2023Q1", 95),
					series(data.CashFlowStatement, "PayTheInterest", "2023Q1", 5)...,
				),
			}
			table := engine.Run("2330", statements, quarters, cat)
			Expect(table.Rows[0].Get("InterestCoverageRatio").Float64).To(BeNumerically("~", 20.0, 1e-9))
		})
	})

	Context("projection", func() {
		var statements engine.Statements

		BeforeEach(func() {
			statements = engine.Statements{
				data.IncomeStatement: series(data.IncomeStatement, "Revenue", "2023Q4", 100, 110, 120, 130),
			}
		})

		It("keeps exactly the requested quarters in chronological order", func() {
			requested, err := quarter.ParseList("2024Q2,2024Q1")
			Expect(err).NotTo(HaveOccurred())

			table := engine.Run("2330", statements, requested, cat)
			Expect(quarter.Strings(table.Quarters())).To(Equal([]string{"2024Q1", "2024Q2"}))
			for _, row := range table.Rows {
				Expect(row.StockID).To(Equal("2330"))
			}
		})

		It("honors sparse quarter sets", func() {
			requested, _ := quarter.ParseList("2023Q4,2024Q3")
			table := engine.Run("2330", statements, requested, cat)
			Expect(quarter.Strings(table.Quarters())).To(Equal([]string{"2023Q4", "2024Q3"}))
		})

		It("is empty when no quarter matches", func() {
			requested, _ := quarter.ParseList("2019Q1")
			Expect(engine.Run("2330", statements, requested, cat).Empty()).To(BeTrue())
		})

		It("emits identity columns followed by the catalog order", func() {
			table := engine.Run("2330", statements, quarters, cat)
			header := table.Header()
			Expect(header[:3]).To(Equal([]string{"stock_id", "date", "quarter"}))
			Expect(header[3:]).To(Equal(cat.Names()))
		})

		It("projects only the selected indicators", func() {
			subset, err := cat.Select([]string{"RevenueYoY"})
			Expect(err).NotTo(HaveOccurred())
			table := engine.Run("2330", statements, quarters, subset)
			Expect(table.Columns).To(Equal([]string{"RevenueYoY"}))
			Expect(table.Rows[0].Values).To(HaveLen(1))
		})
	})

	It("collapses rows that are identical in every column", func() {
		frame := &engine.Frame{
			Columns: []string{"Revenue"},
			Rows: []*engine.Row{
				{Date: date("2023Q1"), Values: map[string]null.Float{"Revenue": null.FloatFrom(1)}},
				{Date: date("2023Q1"), Values: map[string]null.Float{"Revenue": null.FloatFrom(1)}},
				{Date: date("2023Q2"), Values: map[string]null.Float{"Revenue": null.FloatFrom(1)}},
			},
		}

		subset, _ := cat.Select([]string{"EPS"})
		Expect(engine.Calculate(frame, subset)).To(HaveLen(2))
	})

	It("is deterministic across runs", func() {
		statements := engine.Statements{
			data.IncomeStatement: append(
				series(data.IncomeStatement, "Revenue", "2022Q1", 100, 110, 120, 130, 150, 170),
				series(data.IncomeStatement, "IncomeAfterTaxes", "2022Q1", 10, 11, 12, 13, 15, 17)...,
			),
			data.BalanceSheet: series(data.BalanceSheet, "TotalAssets", "2022Q1", 400, 410, 420, 430, 440, 450),
		}

		first := engine.Run("2330", statements, quarters, cat)
		second := engine.Run("2330", statements, quarters, cat)
		Expect(second).To(Equal(first))
	})
})
