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
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeNoData    = "no_data"
	OutcomeFailed    = "failed"
)

// Recorder collects pipeline and provider metrics in its own registry
type Recorder struct {
	Registry *prometheus.Registry

	stocks   *prometheus.CounterVec
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	duration prometheus.Histogram
}

// New creates a recorder with a fresh registry
func New() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		Registry: registry,
		stocks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pvratios_stocks_total",
				Help: "Number of stocks processed by outcome",
			},
			[]string{"outcome"},
		),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pvratios_provider_requests_total",
				Help: "Number of requests made to statement providers",
			},
			[]string{"provider", "dataset", "status"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pvratios_provider_request_duration_seconds",
				Help:    "Duration of statement provider requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "dataset"},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pvratios_stock_duration_seconds",
				Help:    "Time to fetch and compute indicators for one stock",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordStock records the outcome and duration of processing one stock
func (recorder *Recorder) RecordStock(outcome string, elapsed time.Duration) {
	recorder.stocks.WithLabelValues(outcome).Inc()
	recorder.duration.Observe(elapsed.Seconds())
}

// ObserveRequest implements provider.RequestObserver
func (recorder *Recorder) ObserveRequest(provider, dataset string, statusCode int, elapsed time.Duration) {
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	recorder.requests.WithLabelValues(provider, dataset, status).Inc()
	recorder.latency.WithLabelValues(provider, dataset).Observe(elapsed.Seconds())
}

// Nop discards all measurements
type Nop struct{}

func (Nop) RecordStock(string, time.Duration) {}

func (Nop) ObserveRequest(string, string, int, time.Duration) {}
