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
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/config"
	"github.com/penny-vault/pvratios/metrics"
	"github.com/penny-vault/pvratios/runner"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server exposes indicator computation over HTTP
type Server struct {
	echo     *echo.Echo
	runner   *runner.Runner
	catalog  *catalog.Catalog
	recorder *metrics.Recorder
	cfg      config.ServerConfig
}

// New builds the HTTP server. The runner's catalog is the default catalog of
// every request; requests may select a subset of it.
func New(batch *runner.Runner, recorder *metrics.Recorder, cfg config.ServerConfig) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = goccySerializer{}

	e.Use(recoverMiddleware())
	e.Use(requestLogger())

	cat := batch.Catalog
	if cat == nil {
		cat = catalog.Default()
	}

	if cfg.MaxStocks <= 0 {
		cfg.MaxStocks = 20
	}

	server := &Server{
		echo:     e,
		runner:   batch,
		catalog:  cat,
		recorder: recorder,
		cfg:      cfg,
	}

	api := e.Group("/api/v1")
	api.GET("/indicators", server.Indicators)
	api.GET("/quarters", server.Quarters)
	api.GET("/catalog", server.Catalog)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	if recorder != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(recorder.Registry, promhttp.HandlerOpts{})))
	}

	return server
}

// Handler returns the server's http.Handler
func (server *Server) Handler() http.Handler {
	return server.echo
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully
func (server *Server) Run(ctx context.Context) error {
	errs := make(chan error, 1)

	go func() {
		log.Info().Str("Addr", server.cfg.Addr).Msg("http server listening")
		if err := server.echo.Start(server.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	timeout := server.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("http server stopped")
	return nil
}

type goccySerializer struct{}

func (goccySerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (goccySerializer) Deserialize(c echo.Context, i interface{}) error {
	err := json.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}
