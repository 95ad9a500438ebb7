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
	"bytes"
	"net/http"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/config"
	"github.com/penny-vault/pvratios/healthcheck"
	"github.com/penny-vault/pvratios/quarter"
	"github.com/penny-vault/pvratios/runner"
)

var _ = Describe("export", func() {
	var (
		dir     string
		stdout  *bytes.Buffer
		job     *exportJob
		pings   *ghttp.Server
		monitor *healthcheck.Monitor
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "2330_income.csv"), []byte(`date,stock_id,type,value
2023-03-31,2330,Revenue,100
2023-03-31,2330,GrossProfit,40
`), 0o644)).To(Succeed())

		stdout = &bytes.Buffer{}
		job = &exportJob{
			cfg: &config.Config{
				Provider:    "csv",
				Concurrency: 2,
				CSV:         config.CSVConfig{Dir: dir},
			},
			selection: selection{quarters: "2023Q1", indicators: []string{"GrossProfitMargin"}},
			format:    "csv",
			stdout:    stdout,
		}

		pings = ghttp.NewServer()
		monitor = healthcheck.New("abc", pings.URL())
	})

	AfterEach(func() {
		pings.Close()
	})

	It("reports a successful export", func() {
		pings.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest(http.MethodPost, "/abc"),
			ghttp.RespondWith(http.StatusOK, "OK"),
		))

		result, err := job.run([]string{"2330"})
		Expect(err).NotTo(HaveOccurred())
		Expect(stdout.String()).To(HavePrefix("stock_id,date,quarter,GrossProfitMargin\n2330,2023-03-31,2023Q1,40\n"))

		Expect(reportOutcome(monitor, result, err)).To(Succeed())
		Expect(pings.ReceivedRequests()).To(HaveLen(1))
	})

	It("reports an invalid quarter selection as a failure", func() {
		pings.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest(http.MethodPost, "/abc/fail"),
			ghttp.RespondWith(http.StatusOK, "OK"),
		))

		job.selection.quarters = "2023Q5"
		result, err := job.run([]string{"2330"})
		Expect(err).To(MatchError(quarter.ErrInvalidQuarterFormat))
		Expect(result).To(BeNil())

		Expect(reportOutcome(monitor, result, err)).To(MatchError(quarter.ErrInvalidQuarterFormat))
		Expect(pings.ReceivedRequests()).To(HaveLen(1))
	})

	It("reports an unknown indicator as a failure", func() {
		pings.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest(http.MethodPost, "/abc/fail"),
			ghttp.RespondWith(http.StatusOK, "OK"),
		))

		job.selection.indicators = []string{"Nope"}
		result, err := job.run([]string{"2330"})
		Expect(err).To(MatchError(catalog.ErrUnknownIndicator))

		Expect(reportOutcome(monitor, result, err)).To(HaveOccurred())
		Expect(pings.ReceivedRequests()).To(HaveLen(1))
	})

	It("reports stocks that failed to retrieve as a failure", func() {
		// a directory in place of the statement file cannot be read
		Expect(os.Mkdir(filepath.Join(dir, "1101_income.csv"), 0o755)).To(Succeed())

		pings.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest(http.MethodPost, "/abc/fail"),
			ghttp.RespondWith(http.StatusOK, "OK"),
		))

		result, err := job.run([]string{"2330", "1101"})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Failed).To(HaveKey("1101"))
		Expect(stdout.String()).To(ContainSubstring("2330,2023-03-31,2023Q1,40"))

		Expect(reportOutcome(monitor, result, err)).To(MatchError(runner.ErrFailed))
		Expect(pings.ReceivedRequests()).To(HaveLen(1))
	})

	It("works without a monitor", func() {
		result, err := job.run([]string{"2330"})
		Expect(err).NotTo(HaveOccurred())
		Expect(reportOutcome(nil, result, err)).To(Succeed())
	})
})
