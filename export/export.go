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
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/data"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
)

type Format string

const (
	CSV     Format = "csv"
	JSON    Format = "json"
	Parquet Format = "parquet"
	XLSX    Format = "xlsx"
)

// ParseFormat converts a format name or file extension into a Format
func ParseFormat(name string) (Format, error) {
	switch Format(strings.TrimPrefix(strings.ToLower(name), ".")) {
	case CSV:
		return CSV, nil
	case JSON:
		return JSON, nil
	case Parquet:
		return Parquet, nil
	case XLSX:
		return XLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
}

// Row is one exported indicator row
type Row struct {
	StockID    string                `json:"stock_id"`
	Date       string                `json:"date"`
	Quarter    string                `json:"quarter"`
	Indicators map[string]null.Float `json:"indicators"`
}

// Rows flattens tables into export rows, stocks in table order
func Rows(tables []*data.IndicatorTable, cat *catalog.Catalog) []*Row {
	names := cat.Names()
	rows := make([]*Row, 0)
	for _, table := range tables {
		for _, tableRow := range table.Rows {
			row := &Row{
				StockID:    tableRow.StockID,
				Date:       tableRow.Date.Format("2006-01-02"),
				Quarter:    tableRow.Quarter.String(),
				Indicators: make(map[string]null.Float, len(names)),
			}
			for _, name := range names {
				row.Indicators[name] = tableRow.Get(name)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// Header returns the exported column names in order
func Header(cat *catalog.Catalog) []string {
	return append([]string{"stock_id", "date", "quarter"}, cat.Names()...)
}

func formatValue(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

// Write encodes tables to w as csv, json or an xlsx workbook. Parquet needs a
// seekable file; use WriteFile.
func Write(w io.Writer, format Format, tables []*data.IndicatorTable, cat *catalog.Catalog) error {
	switch format {
	case CSV:
		return WriteCSV(w, tables, cat)
	case JSON:
		return WriteJSON(w, tables, cat)
	case XLSX:
		return WriteXLSX(w, tables, cat)
	default:
		return fmt.Errorf("%w: %s cannot be streamed", ErrUnknownFormat, format)
	}
}

// WriteFile saves tables to fn in the requested format
func WriteFile(fn string, format Format, tables []*data.IndicatorTable, cat *catalog.Catalog) error {
	if format == Parquet {
		return WriteParquet(fn, tables, cat)
	}

	fh, err := os.Create(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create export file")
		return err
	}
	defer fh.Close()

	if err := Write(fh, format, tables, cat); err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("export failed")
		return err
	}

	return nil
}
