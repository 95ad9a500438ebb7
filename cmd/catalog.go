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
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/penny-vault/pvratios/catalog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog [indicator]",
	Short: "Describe the financial indicators pvratios can compute",
	Run: func(cmd *cobra.Command, args []string) {
		cat := catalog.Default()
		builder := strings.Builder{}

		if len(args) > 0 {
			indicator, ok := cat.Lookup(args[0])
			if !ok {
				log.Fatal().Str("Indicator", args[0]).Msg("unknown indicator")
			}
			builder.WriteString(fmt.Sprintf("# %s\n\n%s\n\n`%s`\n", indicator.Name, indicator.Label, indicator.Description))
		} else {
			builder.WriteString("# Indicator Catalog\n")
			for _, category := range cat.Categories {
				builder.WriteString(fmt.Sprintf("\n## %s (%s)\n\n", category.Name, category.Label))
				builder.WriteString("| Name | Label | Formula |\n|---|---|---|\n")
				for _, indicator := range category.Indicators {
					builder.WriteString(fmt.Sprintf("| %s | %s | %s |\n", indicator.Name, indicator.Label, indicator.Description))
				}
			}
		}

		r, _ := glamour.NewTermRenderer(
			// detect background color and pick either the default dark or light theme
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(120),
		)

		out, err := r.Render(builder.String())
		if err != nil {
			log.Fatal().Err(err).Msg("could not render catalog document")
		}

		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
