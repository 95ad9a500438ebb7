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
	"os"
	"os/signal"
	"syscall"

	"github.com/penny-vault/pvratios/metrics"
	"github.com/penny-vault/pvratios/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve financial indicators over HTTP",
	Long: `The serve sub-command starts an HTTP server with the following endpoints:

	GET /api/v1/indicators?stocks=2330,2317&start=2022Q1&end=2023Q4&indicators=ROE
	GET /api/v1/quarters?from=2015&to=2024
	GET /api/v1/catalog
	GET /healthz
	GET /metrics`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		recorder := metrics.New()
		batch, err := newRunner(cfg, recorder, recorder)
		if err != nil {
			log.Fatal().Err(err).Str("Provider", cfg.Provider).Msg("could not create provider")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := server.New(batch, recorder, cfg.Server).Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	if err := viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for addr failed")
	}
}
