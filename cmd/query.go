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
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/config"
	"github.com/penny-vault/pvratios/metrics"
	"github.com/penny-vault/pvratios/quarter"
	"github.com/penny-vault/pvratios/report"
	"github.com/penny-vault/pvratios/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	ErrNoStocks = errors.New("at least one stock id is required")
)

// selection holds the flags shared by commands that compute indicators
type selection struct {
	start      string
	end        string
	quarters   string
	indicators []string
}

func (sel *selection) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sel.start, "start", "", "first quarter, e.g. 2022Q1")
	cmd.Flags().StringVar(&sel.end, "end", "", "last quarter, e.g. 2023Q4")
	cmd.Flags().StringVarP(&sel.quarters, "quarters", "q", "", "comma separated list of quarters (overrides --start/--end)")
	cmd.Flags().StringSliceVarP(&sel.indicators, "indicators", "i", nil, "indicators to compute (default all)")
}

func (sel *selection) quarterLabels() ([]quarter.Label, error) {
	if sel.quarters != "" {
		return quarter.ParseList(sel.quarters)
	}
	if sel.start == "" || sel.end == "" {
		return nil, fmt.Errorf("%w: either --quarters or both --start and --end are required", quarter.ErrInvalidQuarterFormat)
	}
	return quarter.RangeString(sel.start, sel.end)
}

// compute runs the configured provider over the stocks named in args
func (sel *selection) compute(cfg *config.Config, args []string) (*runner.Result, *catalog.Catalog, error) {
	quarters, err := sel.quarterLabels()
	if err != nil {
		return nil, nil, err
	}

	stockIDs := runner.ParseStockIDs(strings.Join(args, ","))
	if len(stockIDs) == 0 {
		return nil, nil, ErrNoStocks
	}

	batch, err := newRunner(cfg, metrics.Nop{}, nil)
	if err != nil {
		return nil, nil, err
	}

	batch.Catalog, err = batch.Catalog.Select(sel.indicators)
	if err != nil {
		return nil, nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := batch.Run(ctx, stockIDs, quarters)
	if err != nil {
		return nil, nil, err
	}

	return result, batch.Catalog, nil
}

var (
	querySelection selection
	rawMarkdown    bool
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <stock-id...>",
	Short: "Compute financial indicators and display them as a report",
	Long: `The query sub-command fetches financial statements for each stock, computes
the selected indicators for every requested quarter, and prints one table per
stock and indicator category. Stocks without data and indicators that are
missing for a stock are listed at the end of the report.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		result, cat, err := querySelection.compute(cfg, args)
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute indicators")
		}

		locale := report.ParseLocale(cfg.Locale)
		doc := report.Markdown(result, cat, report.Options{
			Locale:     locale,
			Indicators: querySelection.indicators,
		})

		if rawMarkdown {
			fmt.Print(doc)
		} else {
			r, _ := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(120),
			)

			out, err := r.Render(doc)
			if err != nil {
				log.Fatal().Err(err).Msg("could not render report")
			}

			fmt.Print(out)
		}

		fmt.Println(
			lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1).
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Render(report.SummaryLine(result.Summary)),
		)

		if len(result.Failed) > 0 {
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	querySelection.register(queryCmd)
	queryCmd.Flags().BoolVar(&rawMarkdown, "raw", false, "print markdown without terminal styling")
}
