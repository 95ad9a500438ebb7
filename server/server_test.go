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
package server_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/config"
	"github.com/penny-vault/pvratios/metrics"
	"github.com/penny-vault/pvratios/provider"
	"github.com/penny-vault/pvratios/runner"
	"github.com/penny-vault/pvratios/server"
)

var _ = Describe("Server", func() {
	var (
		handler  http.Handler
		recorder *metrics.Recorder
	)

	BeforeEach(func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "2330_income.csv"), []byte(`date,stock_id,type,value
2023-03-31,2330,Revenue,100
2023-03-31,2330,GrossProfit,40
2023-06-30,2330,Revenue,200
2023-06-30,2330,GrossProfit,50
`), 0o644)).To(Succeed())

		prov, err := provider.New("csv", provider.Config{"dir": dir})
		Expect(err).NotTo(HaveOccurred())

		recorder = metrics.New()
		batch := &runner.Runner{
			Provider:    prov,
			Catalog:     catalog.Default(),
			Concurrency: 2,
			Timeout:     time.Minute,
			Metrics:     recorder,
		}

		handler = server.New(batch, recorder, config.ServerConfig{MaxStocks: 2}).Handler()
	})

	get := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	Describe("GET /api/v1/indicators", func() {
		It("computes the selected indicators", func() {
			rec := get("/api/v1/indicators?stocks=2330,1101&start=2023Q1&end=2023Q2&indicators=GrossProfitMargin")
			Expect(rec.Code).To(Equal(http.StatusOK))

			resp := server.IndicatorsResponse{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())

			Expect(resp.Columns).To(Equal([]string{"stock_id", "date", "quarter", "GrossProfitMargin"}))
			Expect(resp.Rows).To(HaveLen(2))
			Expect(resp.Rows[0].Quarter).To(Equal("2023Q1"))
			Expect(resp.Rows[0].Indicators["GrossProfitMargin"].Float64).To(BeNumerically("~", 40.0, 1e-9))
			Expect(resp.Rows[1].Indicators["GrossProfitMargin"].Float64).To(BeNumerically("~", 25.0, 1e-9))
			Expect(resp.NoData).To(ConsistOf("1101"))
			Expect(resp.Summary.NumStocks).To(Equal(2))
			Expect(resp.Summary.NumSucceeded).To(Equal(1))
		})

		It("accepts an explicit quarter list", func() {
			rec := get("/api/v1/indicators?stocks=2330&quarters=2023Q2&indicators=GrossProfitMargin")
			Expect(rec.Code).To(Equal(http.StatusOK))

			resp := server.IndicatorsResponse{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Rows).To(HaveLen(1))
			Expect(resp.Rows[0].Quarter).To(Equal("2023Q2"))
		})

		It("rejects requests without stocks", func() {
			rec := get("/api/v1/indicators?start=2023Q1&end=2023Q2")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("ERR_REQUIRED"))
		})

		It("rejects malformed quarters", func() {
			rec := get("/api/v1/indicators?stocks=2330&start=2023Q5&end=2023Q2")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("ERR_QUARTER"))
		})

		It("rejects unknown indicators", func() {
			rec := get("/api/v1/indicators?stocks=2330&quarters=2023Q1&indicators=Nope")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("ERR_INDICATOR"))
		})

		It("limits the number of stocks per request", func() {
			rec := get("/api/v1/indicators?stocks=1,2,3&quarters=2023Q1")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("ERR_TOO_MANY_STOCKS"))
		})
	})

	It("lists quarters newest first", func() {
		rec := get("/api/v1/quarters?from=2022&to=2023")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var quarters []string
		Expect(json.Unmarshal(rec.Body.Bytes(), &quarters)).To(Succeed())
		Expect(quarters).To(HaveLen(8))
		Expect(quarters[0]).To(Equal("2023Q4"))
		Expect(quarters[7]).To(Equal("2022Q1"))
	})

	It("describes the catalog", func() {
		rec := get("/api/v1/catalog")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var categories []server.CategoryResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &categories)).To(Succeed())
		Expect(categories).To(HaveLen(4))
		Expect(categories[0].Indicators[0].Name).To(Equal("EPS"))
	})

	It("exposes metrics after a run", func() {
		get("/api/v1/indicators?stocks=2330&quarters=2023Q1")

		rec := get("/metrics")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("pvratios_stocks_total"))
	})

	It("answers health checks", func() {
		rec := get("/healthz")
		Expect(rec.Code).To(Equal(http.StatusOK))
	})
})
