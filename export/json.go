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
package export

import (
	"io"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pvratios/catalog"
	"github.com/penny-vault/pvratios/data"
)

// Document is the JSON representation of an export
type Document struct {
	Columns []string `json:"columns"`
	Rows    []*Row   `json:"rows"`
}

// NewDocument builds the JSON document for tables
func NewDocument(tables []*data.IndicatorTable, cat *catalog.Catalog) *Document {
	return &Document{
		Columns: Header(cat),
		Rows:    Rows(tables, cat),
	}
}

// WriteJSON writes tables as a JSON document; missing values are null
func WriteJSON(w io.Writer, tables []*data.IndicatorTable, cat *catalog.Catalog) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewDocument(tables, cat))
}
