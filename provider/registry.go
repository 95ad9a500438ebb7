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
package provider

import (
	"fmt"
	"sort"
	"strings"
)

// Map lists every provider by its registry key
var Map = map[string]Provider{
	"finmind": &FinMind{},
	"csv":     &CSVFile{},
}

// Keys returns the registry keys in sorted order
func Keys() []string {
	keys := make([]string, 0, len(Map))
	for key := range Map {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// New constructs the named provider with config
func New(name string, config Config) (Provider, error) {
	switch strings.ToLower(name) {
	case "finmind":
		return NewFinMind(config)
	case "csv":
		return NewCSVFile(config)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
}
