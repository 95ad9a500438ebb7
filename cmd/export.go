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
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/penny-vault/pvratios/backblaze"
	"github.com/penny-vault/pvratios/config"
	"github.com/penny-vault/pvratios/export"
	"github.com/penny-vault/pvratios/healthcheck"
	"github.com/penny-vault/pvratios/report"
	"github.com/penny-vault/pvratios/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// exportJob is one run of the export command
type exportJob struct {
	cfg       *config.Config
	selection selection
	format    string
	output    string
	upload    bool
	uploadDir string
	stdout    io.Writer
}

// run computes, writes and optionally uploads the indicators of the stocks
// named in args. Stocks that failed to retrieve are returned in the result
// and do not stop the export.
func (job *exportJob) run(args []string) (*runner.Result, error) {
	format, err := export.ParseFormat(job.format)
	if err != nil {
		return nil, err
	}

	result, cat, err := job.selection.compute(job.cfg, args)
	if err != nil {
		return nil, err
	}

	if job.output == "" {
		if err := export.Write(job.stdout, format, result.Tables, cat); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := export.WriteFile(job.output, format, result.Tables, cat); err != nil {
		return nil, err
	}
	log.Info().Str("FileName", job.output).Str("Format", string(format)).Int("NumTables", len(result.Tables)).Msg("saved indicators")

	if job.upload {
		creds := backblaze.Credentials{
			ApplicationID:  job.cfg.Backblaze.ApplicationID,
			ApplicationKey: job.cfg.Backblaze.ApplicationKey,
		}
		if err := backblaze.Upload(creds, job.output, job.cfg.Backblaze.Bucket, job.uploadDir); err != nil {
			return nil, fmt.Errorf("upload to backblaze failed: %w", err)
		}
	}

	return result, nil
}

// reportOutcome pings monitor with the outcome of an export and returns the
// error the command should exit with. A run where some stocks failed to
// retrieve is reported as a failure. monitor may be nil.
func reportOutcome(monitor *healthcheck.Monitor, result *runner.Result, err error) error {
	if err == nil {
		err = result.Err()
	}

	var (
		pingErr error
		msg     string
	)

	switch {
	case err != nil && result != nil:
		msg = fmt.Sprintf("%s\n%s", report.SummaryLine(result.Summary), err)
	case err != nil:
		msg = err.Error()
	default:
		msg = report.SummaryLine(result.Summary)
	}

	if monitor != nil {
		if err != nil {
			pingErr = monitor.Fail(msg)
		} else {
			pingErr = monitor.Success(msg)
		}
		if pingErr != nil {
			log.Warn().Err(pingErr).Msg("healthcheck ping failed")
		}
	}

	return err
}

var (
	exportSelection selection
	exportFormat    string
	exportOutput    string
	exportUpload    bool
	exportDir       string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <stock-id...>",
	Short: "Compute financial indicators and save them to a file",
	Long: `The export sub-command computes the same indicators as query but writes them
to a CSV, JSON, parquet, or xlsx file. CSV, JSON and parquet hold one row per
stock and quarter; the xlsx workbook has one block per stock with category
headers. When --output is omitted the result is written to standard output.
With --upload the file is copied to the configured Backblaze B2 bucket. When a
healthchecks.io check id is configured the run is reported to it; a run where
any stock failed to retrieve is reported as failed.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		var monitor *healthcheck.Monitor
		if cfg.Healthchecks.CheckID != "" {
			monitor = healthcheck.New(cfg.Healthchecks.CheckID, cfg.Healthchecks.PingURL)
			if err := monitor.Start(); err != nil {
				log.Warn().Err(err).Msg("healthcheck start ping failed")
			}
		}

		job := &exportJob{
			cfg:       cfg,
			selection: exportSelection,
			format:    exportFormat,
			output:    exportOutput,
			upload:    exportUpload,
			uploadDir: exportDir,
			stdout:    os.Stdout,
		}

		if ext := filepath.Ext(exportOutput); ext != "" && !cmd.Flags().Changed("format") {
			job.format = ext
		}

		result, err := job.run(args)
		if result != nil {
			log.Info().Object("Summary", result.Summary).Msg(report.SummaryLine(result.Summary))
		}

		if err := reportOutcome(monitor, result, err); err != nil {
			if result != nil {
				log.Error().Err(err).Msg("export finished with failed stocks")
				os.Exit(2)
			}
			log.Fatal().Err(err).Msg("export failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportSelection.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format (csv, json, parquet, xlsx)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false, "upload the output file to backblaze")
	exportCmd.Flags().StringVar(&exportDir, "upload-dir", "", "directory inside the backblaze bucket")
}
