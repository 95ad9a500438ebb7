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
package export

import (
	"fmt"
	"io"

	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/data"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding every stock's indicators
const SheetName = "財報資料"

func border() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

type workbookStyles struct {
	stock     int
	category  int
	indicator int
	cell      int
}

func newWorkbookStyles(f *excelize.File) (*workbookStyles, error) {
	styles := &workbookStyles{}
	defs := []struct {
		id    *int
		style *excelize.Style
	}{
		{&styles.stock, &excelize.Style{
			Font:   &excelize.Font{Bold: true},
			Fill:   excelize.Fill{Type: "pattern", Color: []string{"#FCE4D6"}, Pattern: 1},
			Border: border(),
		}},
		{&styles.category, &excelize.Style{
			Font:      &excelize.Font{Italic: true},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
			Border:    border(),
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}},
		{&styles.indicator, &excelize.Style{
			Font:   &excelize.Font{Bold: true},
			Fill:   excelize.Fill{Type: "pattern", Color: []string{"#D7E4BC"}, Pattern: 1},
			Border: border(),
		}},
		{&styles.cell, &excelize.Style{Border: border()}},
	}

	for _, def := range defs {
		id, err := f.NewStyle(def.style)
		if err != nil {
			return nil, err
		}
		*def.id = id
	}

	return styles, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// WriteXLSX writes tables to w as a workbook with one block per stock: a
// stock title row, category headers merged across their indicators, the
// indicator labels and one row per quarter. Missing values are left blank.
func WriteXLSX(w io.Writer, tables []*data.IndicatorTable, cat *catalog.Catalog) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("closing workbook failed")
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	styles, err := newWorkbookStyles(f)
	if err != nil {
		log.Error().Err(err).Msg("creating workbook styles failed")
		return err
	}

	names := cat.Names()
	lastCol := len(names) + 1

	row := 1
	for _, table := range tables {
		if err := writeStockBlock(f, styles, table, cat, row, lastCol); err != nil {
			log.Error().Err(err).Str("StockID", table.StockID).Msg("writing workbook block failed")
			return err
		}
		// title, category and indicator rows, the quarters, then a blank row
		row += 3 + len(table.Rows) + 1
	}

	if err := f.SetColWidth(SheetName, "A", "A", 10); err != nil {
		return err
	}
	if lastCol > 1 {
		if err := f.SetColWidth(SheetName, cellColumn(2), cellColumn(lastCol), 18); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func cellColumn(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}

func writeStockBlock(f *excelize.File, styles *workbookStyles, table *data.IndicatorTable, cat *catalog.Catalog, row, lastCol int) error {
	title := cellName(1, row)
	if err := f.SetCellValue(SheetName, title, fmt.Sprintf("股票代碼：%s", table.StockID)); err != nil {
		return err
	}
	if lastCol > 1 {
		if err := f.MergeCell(SheetName, title, cellName(lastCol, row)); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SheetName, title, cellName(lastCol, row), styles.stock); err != nil {
		return err
	}

	categoryRow := row + 1
	indicatorRow := row + 2
	if err := f.SetCellValue(SheetName, cellName(1, categoryRow), "季度"); err != nil {
		return err
	}
	if err := f.MergeCell(SheetName, cellName(1, categoryRow), cellName(1, indicatorRow)); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, cellName(1, categoryRow), cellName(1, indicatorRow), styles.indicator); err != nil {
		return err
	}

	col := 2
	for _, category := range cat.Categories {
		if len(category.Indicators) == 0 {
			continue
		}

		first := cellName(col, categoryRow)
		last := cellName(col+len(category.Indicators)-1, categoryRow)

		if err := f.SetCellValue(SheetName, first, displayLabel(category.Label, category.Name)); err != nil {
			return err
		}
		if len(category.Indicators) > 1 {
			if err := f.MergeCell(SheetName, first, last); err != nil {
				return err
			}
		}
		if err := f.SetCellStyle(SheetName, first, last, styles.category); err != nil {
			return err
		}

		for _, indicator := range category.Indicators {
			cell := cellName(col, indicatorRow)
			if err := f.SetCellValue(SheetName, cell, displayLabel(indicator.Label, indicator.Name)); err != nil {
				return err
			}
			if err := f.SetCellStyle(SheetName, cell, cell, styles.indicator); err != nil {
				return err
			}
			col++
		}
	}

	names := cat.Names()
	for idx, tableRow := range table.Rows {
		current := indicatorRow + 1 + idx
		if err := f.SetCellValue(SheetName, cellName(1, current), tableRow.Quarter.String()); err != nil {
			return err
		}
		for offset, name := range names {
			if val := tableRow.Get(name); val.Valid {
				if err := f.SetCellValue(SheetName, cellName(offset+2, current), val.Float64); err != nil {
					return err
				}
			}
		}
		if err := f.SetCellStyle(SheetName, cellName(1, current), cellName(len(names)+1, current), styles.cell); err != nil {
			return err
		}
	}

	return nil
}

func displayLabel(label, name string) string {
	if label != "" {
		return label
	}
	return name
}
