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
package healthcheck

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

const DefaultPingURL = "https://hc-ping.com"

var (
	ErrStatus    = errors.New("status code is invalid")
	ErrMissingID = errors.New("health check id is required")
)

// Monitor reports the outcome of scheduled exports to healthchecks.io
type Monitor struct {
	CheckID string
	BaseURL string

	client *resty.Client
}

// New returns a monitor for checkID. An empty baseURL uses hc-ping.com.
func New(checkID, baseURL string) *Monitor {
	if baseURL == "" {
		baseURL = DefaultPingURL
	}

	return &Monitor{
		CheckID: checkID,
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		client:  resty.New(),
	}
}

// Start signals that a run has begun
func (monitor *Monitor) Start() error {
	return monitor.ping("/start", "")
}

// Success signals that a run finished successfully; msg is attached to the ping
func (monitor *Monitor) Success(msg string) error {
	return monitor.ping("", msg)
}

// Fail signals that a run failed
func (monitor *Monitor) Fail(msg string) error {
	return monitor.ping("/fail", msg)
}

func (monitor *Monitor) ping(suffix, msg string) error {
	if monitor.CheckID == "" {
		return ErrMissingID
	}

	resp, err := monitor.client.R().
		SetHeader("Content-Type", "text/plain").
		SetBody(msg).
		Post(fmt.Sprintf("%s/%s%s", monitor.BaseURL, monitor.CheckID, suffix))

	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}
