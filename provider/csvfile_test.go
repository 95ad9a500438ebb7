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
package provider_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvratios/data"
	"github.com/penny-vault/pvratios/provider"
)

var _ = Describe("CSVFile", func() {
	var (
		dir     string
		csvFile *provider.CSVFile
		start   time.Time
		end     time.Time
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		prov, err := provider.New("csv", provider.Config{"dir": dir})
		Expect(err).NotTo(HaveOccurred())
		csvFile = prov.(*provider.CSVFile)

		start = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	})

	write := func(name, contents string) {
		Expect(os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644)).To(Succeed())
	}

	It("reads records within the date range", func() {
		write("2330_income.csv", `date,stock_id,type,value,origin_name
2019-12-31,2330,Revenue,90,營業收入合計
2023-03-31,2330,Revenue,100,營業收入合計
2023-03-31,2330,EPS,,基本每股盈餘
2023-06-30,2330,GrossProfit,42,營業毛利
2024-03-31,2330,Revenue,130,營業收入合計
`)

		dataset, err := provider.DatasetFor(csvFile, data.IncomeStatement)
		Expect(err).NotTo(HaveOccurred())

		records, err := dataset.Fetch(context.Background(), "2330", start, end)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(3))
		Expect(records[0].Value.Float64).To(Equal(100.0))
		Expect(records[1].ItemCode).To(Equal("EPS"))
		Expect(records[1].Value.Valid).To(BeFalse())
		Expect(records[2].Date).To(Equal(time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)))
	})

	It("treats a missing file as no data", func() {
		statements, err := provider.FetchStatements(context.Background(), csvFile, "1101", start, end)
		Expect(err).NotTo(HaveOccurred())
		Expect(statements.Empty()).To(BeTrue())
	})

	It("names files by stock and statement", func() {
		Expect(csvFile.Path("2330", data.CashFlowStatement)).To(Equal(filepath.Join(dir, "2330_cashflow.csv")))
	})
})
