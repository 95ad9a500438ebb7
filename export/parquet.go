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

	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/data"
	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// parquetSchema describes the export columns. Indicator columns depend on the
// catalog so the schema is built at run time rather than from struct tags.
func parquetSchema(cat *catalog.Catalog) []string {
	schema := []string{
		"name=stock_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY",
		"name=date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY",
		"name=quarter, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY",
	}

	for _, name := range cat.Names() {
		schema = append(schema, fmt.Sprintf("name=%s, type=DOUBLE, repetitiontype=OPTIONAL", name))
	}

	return schema
}

// WriteParquet saves tables to fn as a ZSTD compressed parquet file
func WriteParquet(fn string, tables []*data.IndicatorTable, cat *catalog.Catalog) error {
	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create local file")
		return err
	}
	defer fh.Close()

	pw, err := writer.NewCSVWriter(parquetSchema(cat), fh, 4)
	if err != nil {
		log.Error().Err(err).Msg("parquet writer creation failed")
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	names := cat.Names()
	rows := Rows(tables, cat)
	for _, row := range rows {
		record := make([]interface{}, 0, len(names)+3)
		record = append(record, row.StockID, row.Date, row.Quarter)
		for _, name := range names {
			if val := row.Indicators[name]; val.Valid {
				record = append(record, val.Float64)
			} else {
				record = append(record, nil)
			}
		}

		if err = pw.Write(record); err != nil {
			log.Error().Err(err).Str("StockID", row.StockID).Str("Quarter", row.Quarter).Msg("parquet write failed for record")
			return err
		}
	}

	if err = pw.WriteStop(); err != nil {
		log.Error().Err(err).Msg("parquet write failed")
		return err
	}

	log.Info().Int("NumRecords", len(rows)).Str("FileName", fn).Msg("parquet write finished")
	return nil
}
