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
	"time"

	"github.com/penny-vault/pvratios/quarter"
	"github.com/spf13/cobra"
)

var (
	quartersFrom int
	quartersTo   int
)

// quartersCmd represents the quarters command
var quartersCmd = &cobra.Command{
	Use:   "quarters",
	Short: "List selectable quarter labels, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		to := quartersTo
		if to == 0 {
			to = time.Now().Year()
		}

		for _, label := range quarter.Descending(quartersFrom, to) {
			fmt.Println(label)
		}
	},
}

func init() {
	rootCmd.AddCommand(quartersCmd)
	quartersCmd.Flags().IntVar(&quartersFrom, "from", 1990, "first year")
	quartersCmd.Flags().IntVar(&quartersTo, "to", 0, "last year (default current year)")
}
