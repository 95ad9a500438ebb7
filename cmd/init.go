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
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/pvratios/provider"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	ErrNotPositive = errors.New("value must be a positive integer")
)

// settingsFile mirrors the subset of the configuration written by init
type settingsFile struct {
	Provider    string `toml:"provider"`
	Concurrency int    `toml:"concurrency"`
	Locale      string `toml:"locale"`
	FinMind     struct {
		Token     string `toml:"token"`
		RateLimit int    `toml:"rate_limit"`
	} `toml:"finmind"`
	CSV struct {
		Dir string `toml:"dir,omitempty"`
	} `toml:"csv"`
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return ErrNotPositive
	}
	return nil
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather provider settings and save them to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		settings := settingsFile{
			Provider: "finmind",
			Locale:   "en",
		}
		concurrency := "4"
		rateLimit := "10"

		providerOptions := make([]huh.Option[string], 0, len(provider.Map))
		for _, key := range provider.Keys() {
			providerOptions = append(providerOptions, huh.NewOption(provider.Map[key].Name(), key))
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Where should financial statements come from?").
					Options(providerOptions...).
					Value(&settings.Provider),

				huh.NewSelect[string]().
					Title("Report language").
					Options(
						huh.NewOption("English", "en"),
						huh.NewOption("繁體中文", "zh-TW"),
					).
					Value(&settings.Locale),

				huh.NewInput().
					Title("How many stocks should be processed at once?").
					Value(&concurrency).
					Validate(positiveInt),
			),

			// FinMind settings
			huh.NewGroup(
				huh.NewInput().
					Title("FinMind API token (leave blank for anonymous access)").
					EchoMode(huh.EchoModePassword).
					Value(&settings.FinMind.Token),

				huh.NewInput().
					Title("Maximum FinMind requests per minute").
					Value(&rateLimit).
					Validate(positiveInt),
			).WithHideFunc(func() bool { return settings.Provider != "finmind" }),

			// CSV settings
			huh.NewGroup(
				huh.NewInput().
					Title("Directory containing <stock>_<statement>.csv files").
					Value(&settings.CSV.Dir),
			).WithHideFunc(func() bool { return settings.Provider != "csv" }),
		)

		if err := form.Run(); err != nil {
			log.Fatal().Err(err).Msg("error gathering settings")
		}

		// validated by the form
		settings.Concurrency, _ = strconv.Atoi(concurrency)
		settings.FinMind.RateLimit, _ = strconv.Atoi(rateLimit)

		configFN := cfgFile
		if configFN == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				log.Fatal().Err(err).Msg("could not determine user home directory")
			}
			configFN = filepath.Join(home, ".pvratios.toml")
		}

		log.Info().Str("ConfigFile", configFN).Msg("Saving settings to config file")
		configData, err := toml.Marshal(settings)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		// the file may hold an api token
		err = os.WriteFile(configFN, configData, 0600)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		fmt.Printf("pvratios is configured to use the %s provider\n", settings.Provider)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
