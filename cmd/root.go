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
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/config"
	"github.com/penny-vault/pvratios/provider"
	"github.com/penny-vault/pvratios/runner"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pvratios",
	Short: "pvratios computes quarterly financial indicators for Taiwan-listed stocks",
	Long: `pvratios is a command line utility that downloads income statements,
balance sheets, and cash flow statements for Taiwan-listed companies and turns
them into quarterly financial indicators:

	* profitability (EPS, margins, ROA, ROE)
	* solvency (cash, current, and interest coverage ratios)
	* year-over-year growth
	* operating efficiency (turnover and days sales outstanding)

Statements are fetched from [FinMind](https://finmindtrade.com) or read from
local CSV files. Results can be displayed as a report, exported to CSV, JSON,
or parquet, or served over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(viper.GetString("log_level"))
		if err != nil {
			return err
		}
		zerolog.SetGlobalLevel(level)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pvratios.toml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("provider", "finmind", "statement provider (finmind or csv)")
	rootCmd.PersistentFlags().Int("concurrency", 4, "number of stocks processed at once")
	rootCmd.PersistentFlags().Duration("timeout", 2*time.Minute, "maximum time spent on a single stock")
	rootCmd.PersistentFlags().String("locale", "en", "report locale (en or zh-TW)")
	rootCmd.PersistentFlags().String("csv-dir", ".", "directory read by the csv provider")

	bindFlags(rootCmd, map[string]string{
		"log_level":   "log-level",
		"provider":    "provider",
		"concurrency": "concurrency",
		"timeout":     "timeout",
		"locale":      "locale",
		"csv.dir":     "csv-dir",
	})
}

// bindFlags connects viper keys to persistent flags of cmd
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
			log.Panic().Err(err).Str("Flag", flag).Msg("BindPFlag failed")
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// a .env file in the working directory may supply PVRATIOS_* variables
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env file")
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pvratios" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".pvratios")
	}

	cobra.CheckErr(config.Bind(viper.GetViper()))

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Debug().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}

// loadConfig decodes and validates the active configuration
func loadConfig() *config.Config {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return cfg
}

// newRunner builds a runner for the configured provider
func newRunner(cfg *config.Config, metrics runner.Metrics, observer provider.RequestObserver) (*runner.Runner, error) {
	prov, err := provider.New(cfg.Provider, cfg.ProviderConfig())
	if err != nil {
		return nil, err
	}

	if finmind, ok := prov.(*provider.FinMind); ok {
		finmind.Observer = observer
		if finmind.Token == "" {
			log.Warn().Msg("no FinMind token configured; anonymous requests are heavily rate limited")
		}
	}

	return &runner.Runner{
		Provider:    prov,
		Catalog:     catalog.Default(),
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.Timeout,
		Metrics:     metrics,
	}, nil
}
