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
package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/guregu/null/v6"
	"github.com/penny-vault/pvratios/data"
	"github.com/rs/zerolog"
)

// CSVFile reads long format statement exports from a directory. Each stock
// and statement is stored in <dir>/<stock>_<statement>.csv with the columns
// date, type and value (the layout of a FinMind CSV download).
type CSVFile struct {
	Dir string
}

type csvRecord struct {
	Date    string `csv:"date"`
	StockID string `csv:"stock_id"`
	Type    string `csv:"type"`
	Value   string `csv:"value"`
}

func NewCSVFile(config Config) (*CSVFile, error) {
	dir := config["dir"]
	if dir == "" {
		dir = "."
	}
	return &CSVFile{Dir: dir}, nil
}

func (csvFile *CSVFile) Name() string {
	return "CSV"
}

func (csvFile *CSVFile) ConfigDescription() map[string]string {
	return map[string]string{
		"dir": "Which directory holds the statement CSV files?",
	}
}

func (csvFile *CSVFile) Description() string {
	return `Read financial statements previously downloaded as CSV files. Files are named <stock>_<statement>.csv where statement is one of income, balance, or cashflow.`
}

func (csvFile *CSVFile) Datasets() map[string]Dataset {
	dateRange := func() (time.Time, time.Time) {
		return time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), time.Now().UTC()
	}

	datasets := make(map[string]Dataset, len(data.Statements))
	for _, statement := range data.Statements {
		datasets[string(statement)] = Dataset{
			Name:        string(statement),
			Description: fmt.Sprintf("Read %s statement records from <stock>_%s.csv", statement, statement),
			Statement:   statement,
			DateRange:   dateRange,
			Fetch: func(ctx context.Context, stockID string, start, end time.Time) ([]*data.Record, error) {
				return csvFile.read(ctx, statement, stockID, start, end)
			},
		}
	}

	return datasets
}

// Path returns the file holding statement records for stockID
func (csvFile *CSVFile) Path(stockID string, statement data.StatementType) string {
	return filepath.Join(csvFile.Dir, fmt.Sprintf("%s_%s.csv", stockID, statement))
}

func (csvFile *CSVFile) read(ctx context.Context, statement data.StatementType, stockID string, start, end time.Time) ([]*data.Record, error) {
	fn := csvFile.Path(stockID, statement)
	logger := zerolog.Ctx(ctx).With().Str("FileName", fn).Logger()

	fh, err := os.Open(fn)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug().Msg("no statement file for stock")
			return []*data.Record{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer fh.Close()

	rows := []*csvRecord{}
	if err := gocsv.UnmarshalFile(fh, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []*data.Record{}, nil
		}
		logger.Error().Err(err).Msg("could not parse statement file")
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, fn, err)
	}

	records := make([]*data.Record, 0, len(rows))
	for _, row := range rows {
		filingDate, err := time.Parse("2006-01-02", strings.TrimSpace(row.Date))
		if err != nil {
			logger.Error().Err(err).Str("DateStr", row.Date).Msg("parsing statement date failed")
			continue
		}

		if filingDate.Before(start) || filingDate.After(end) {
			continue
		}

		record := &data.Record{
			StockID:   stockID,
			Statement: statement,
			ItemCode:  strings.TrimSpace(row.Type),
			Date:      filingDate,
		}

		valueStr := strings.TrimSpace(row.Value)
		if valueStr != "" {
			if val, err := strconv.ParseFloat(valueStr, 64); err == nil {
				record.Value = null.FloatFrom(val)
			} else {
				logger.Warn().Err(err).Str("ValueStr", valueStr).Msg("parsing statement value failed, treating as missing")
			}
		}

		records = append(records, record)
	}

	return records, nil
}
