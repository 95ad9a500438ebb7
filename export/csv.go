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
	"encoding/csv"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/data"
)

// WriteCSV writes a header row followed by one line per indicator row.
// Missing values are written as empty fields.
func WriteCSV(w io.Writer, tables []*data.IndicatorTable, cat *catalog.Catalog) error {
	writer := gocsv.NewSafeCSVWriter(csv.NewWriter(w))
	names := cat.Names()

	if err := writer.Write(Header(cat)); err != nil {
		return err
	}

	for _, row := range Rows(tables, cat) {
		record := make([]string, 0, len(names)+3)
		record = append(record, row.StockID, row.Date, row.Quarter)
		for _, name := range names {
			record = append(record, formatValue(row.Indicators[name]))
		}

		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
