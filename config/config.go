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
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/penny-vault/pvratios/provider"
	"github.com/spf13/viper"
)

const EnvPrefix = "PVRATIOS"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

type Config struct {
	Provider    string        `mapstructure:"provider" default:"finmind" validate:"oneof=finmind csv"`
	Concurrency int           `mapstructure:"concurrency" default:"4" validate:"gte=1,lte=64"`
	Timeout     time.Duration `mapstructure:"timeout" default:"2m"`
	Locale      string        `mapstructure:"locale" default:"en"`
	LogLevel    string        `mapstructure:"log_level" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`

	FinMind      FinMindConfig      `mapstructure:"finmind"`
	CSV          CSVConfig          `mapstructure:"csv"`
	Server       ServerConfig       `mapstructure:"server"`
	Backblaze    BackblazeConfig    `mapstructure:"backblaze"`
	Healthchecks HealthchecksConfig `mapstructure:"healthchecks"`
}

type FinMindConfig struct {
	Token     string `mapstructure:"token"`
	RateLimit int    `mapstructure:"rate_limit" default:"10" validate:"gte=1"`
	BaseURL   string `mapstructure:"base_url" default:"https://api.finmindtrade.com/api/v4/data" validate:"url"`
}

type CSVConfig struct {
	Dir string `mapstructure:"dir" default:"."`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" default:":8080" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"10s"`
	MaxStocks       int           `mapstructure:"max_stocks" default:"20" validate:"gte=1"`
}

type BackblazeConfig struct {
	ApplicationID  string `mapstructure:"application_id"`
	ApplicationKey string `mapstructure:"application_key"`
	Bucket         string `mapstructure:"bucket"`
}

type HealthchecksConfig struct {
	CheckID string `mapstructure:"check_id"`
	PingURL string `mapstructure:"ping_url" default:"https://hc-ping.com" validate:"omitempty,url"`
}

// keys are registered with viper so environment variables can supply them
var keys = []string{
	"provider", "concurrency", "timeout", "locale", "log_level",
	"finmind.token", "finmind.rate_limit", "finmind.base_url",
	"csv.dir",
	"server.addr", "server.shutdown_timeout", "server.max_stocks",
	"backblaze.application_id", "backblaze.application_key", "backblaze.bucket",
	"healthchecks.check_id", "healthchecks.ping_url",
}

var validate = validator.New()

// Bind prepares v to read PVRATIOS_* environment variables, e.g.
// PVRATIOS_FINMIND_TOKEN for finmind.token
func Bind(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}

	return nil
}

// Load decodes, defaults and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every field constraint
func (cfg *Config) Validate() error {
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s failed %s", fieldErr.Namespace(), fieldErr.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ProviderConfig returns the settings of the selected provider
func (cfg *Config) ProviderConfig() provider.Config {
	switch cfg.Provider {
	case "csv":
		return provider.Config{"dir": cfg.CSV.Dir}
	default:
		return provider.Config{
			"token":     cfg.FinMind.Token,
			"rateLimit": strconv.Itoa(cfg.FinMind.RateLimit),
			"baseURL":   cfg.FinMind.BaseURL,
		}
	}
}
