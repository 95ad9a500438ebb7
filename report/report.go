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
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/data"
	"github.com/penny-vault/pvratios/runner"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Options controls how a report is rendered
type Options struct {
	// Locale selects number formatting and whether indicator labels or names
	// are shown. Traditional Chinese uses the catalog labels.
	Locale language.Tag

	// Indicators restricts the per-indicator no-data notes; empty means all
	Indicators []string
}

type text struct {
	title       string
	noData      string
	noDataStock string
	noDataInd   string
	failed      string
	quarter     string
	date        string
}

var english = text{
	title:       "Financial Indicators",
	noData:      "no data",
	noDataStock: "Stocks without data",
	noDataInd:   "Indicators without data",
	failed:      "Retrieval failures",
	quarter:     "Quarter",
	date:        "Date",
}

var chinese = text{
	title:       "財報指標",
	noData:      "無資料",
	noDataStock: "查無資料的股票",
	noDataInd:   "查無資料的指標",
	failed:      "資料擷取失敗",
	quarter:     "季度",
	date:        "日期",
}

// ParseLocale converts a locale name such as "en" or "zh-TW" into a tag.
// Unknown names fall back to English.
func ParseLocale(name string) language.Tag {
	tag, err := language.Parse(name)
	if err != nil {
		return language.English
	}
	return tag
}

func useChinese(tag language.Tag) bool {
	base, _ := tag.Base()
	return base.String() == "zh"
}

// Formatter renders indicator values for display
type Formatter struct {
	missing string
}

// NewFormatter returns a formatter for tag
func NewFormatter(tag language.Tag) *Formatter {
	missing := english.noData
	if useChinese(tag) {
		missing = chinese.noData
	}

	return &Formatter{
		missing: missing,
	}
}

// Format renders v with two decimals and no digit grouping, or the localized
// no-data marker
func (formatter *Formatter) Format(v null.Float) string {
	if !v.Valid {
		return formatter.missing
	}
	return strconv.FormatFloat(v.Float64, 'f', 2, 64)
}

// Markdown renders a batch result as a markdown document with one section per
// stock and one table per indicator category
func Markdown(result *runner.Result, cat *catalog.Catalog, opts Options) string {
	txt := english
	if useChinese(opts.Locale) {
		txt = chinese
	}

	formatter := NewFormatter(opts.Locale)
	builder := strings.Builder{}

	builder.WriteString(fmt.Sprintf("# %s\n\n", txt.title))

	for _, table := range result.Tables {
		builder.WriteString(fmt.Sprintf("## %s\n\n", table.StockID))

		for _, category := range cat.Categories {
			builder.WriteString(fmt.Sprintf("### %s\n\n", categoryTitle(category, opts.Locale)))
			writeCategoryTable(&builder, table, category, formatter, txt, opts.Locale)
			builder.WriteString("\n")
		}
	}

	if len(result.NoData) > 0 {
		builder.WriteString(fmt.Sprintf("## %s\n\n", txt.noDataStock))
		for _, stockID := range result.NoData {
			builder.WriteString(fmt.Sprintf("- %s\n", stockID))
		}
		builder.WriteString("\n")
	}

	missing := MissingIndicators(result.Tables, cat, opts.Indicators)
	if len(missing) > 0 {
		builder.WriteString(fmt.Sprintf("## %s\n\n", txt.noDataInd))
		for _, indicator := range cat.Indicators() {
			stocks, ok := missing[indicator.Name]
			if !ok {
				continue
			}
			builder.WriteString(fmt.Sprintf("- %s: %s\n", indicatorTitle(indicator, opts.Locale), strings.Join(stocks, ", ")))
		}
		builder.WriteString("\n")
	}

	if len(result.Failed) > 0 {
		builder.WriteString(fmt.Sprintf("## %s\n\n", txt.failed))
		stockIDs := make([]string, 0, len(result.Failed))
		for stockID := range result.Failed {
			stockIDs = append(stockIDs, stockID)
		}
		sort.Strings(stockIDs)
		for _, stockID := range stockIDs {
			builder.WriteString(fmt.Sprintf("- %s: %s\n", stockID, result.Failed[stockID]))
		}
	}

	return builder.String()
}

// MissingIndicators maps indicator names to the stocks that have data but no
// value at all for that indicator. Only names in selected are considered
// unless selected is empty.
func MissingIndicators(tables []*data.IndicatorTable, cat *catalog.Catalog, selected []string) map[string][]string {
	wanted := make(map[string]bool, len(selected))
	for _, name := range selected {
		if indicator, ok := cat.Lookup(name); ok {
			wanted[indicator.Name] = true
		}
	}

	missing := make(map[string][]string)
	for _, indicator := range cat.Indicators() {
		if len(wanted) > 0 && !wanted[indicator.Name] {
			continue
		}

		for _, table := range tables {
			if table.Empty() || table.HasData(indicator.Name) {
				continue
			}
			missing[indicator.Name] = append(missing[indicator.Name], table.StockID)
		}
	}

	return missing
}

func writeCategoryTable(builder *strings.Builder, table *data.IndicatorTable, category catalog.Category, formatter *Formatter, txt text, locale language.Tag) {
	header := []string{txt.quarter, txt.date}
	for _, indicator := range category.Indicators {
		header = append(header, indicatorTitle(indicator, locale))
	}

	builder.WriteString("| " + strings.Join(header, " | ") + " |\n")
	builder.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")

	for _, row := range table.Rows {
		cells := []string{row.Quarter.String(), row.Date.Format("2006-01-02")}
		for _, indicator := range category.Indicators {
			cells = append(cells, formatter.Format(row.Get(indicator.Name)))
		}
		builder.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

func categoryTitle(category catalog.Category, locale language.Tag) string {
	if useChinese(locale) && category.Label != "" {
		return category.Label
	}
	return category.Name
}

func indicatorTitle(indicator catalog.Indicator, locale language.Tag) string {
	if useChinese(locale) && indicator.Label != "" {
		return indicator.Label
	}
	return indicator.Name
}

// SummaryLine describes a run in one line
func SummaryLine(summary data.RunSummary) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d stocks: %d with data, %d without data, %d failed", summary.NumStocks,
		summary.NumSucceeded, summary.NumNoData, summary.NumFailed)
}
