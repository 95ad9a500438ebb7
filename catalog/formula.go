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
package catalog

import (
	"math"

	"github.com/guregu/null/v6"
)

// Window gives a formula access to the current row of a date ordered table
// and to the rows before it.
type Window interface {
	// Item returns the value of item code on the current row
	Item(code string) null.Float

	// Lag returns the value of item code n rows before the current row. Rows
	// are counted by position in the date sorted table, not by calendar.
	// Rows before the start of the table are missing.
	Lag(n int, code string) null.Float
}

// Formula computes one indicator value for the current row of a Window
type Formula func(Window) null.Float

// Value wraps f, mapping NaN and infinities to missing
func Value(f float64) null.Float {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

// Pass returns v unchanged unless it holds a non-finite number
func Pass(v null.Float) null.Float {
	if !v.Valid {
		return v
	}
	return Value(v.Float64)
}

// Add returns a + b, missing if either operand is missing
func Add(a, b null.Float) null.Float {
	if !a.Valid || !b.Valid {
		return null.Float{}
	}
	return Value(a.Float64 + b.Float64)
}

// Sub returns a - b, missing if either operand is missing
func Sub(a, b null.Float) null.Float {
	if !a.Valid || !b.Valid {
		return null.Float{}
	}
	return Value(a.Float64 - b.Float64)
}

// Div returns num / den. A missing operand or a zero denominator yields missing.
func Div(num, den null.Float) null.Float {
	if !num.Valid || !den.Valid || den.Float64 == 0 {
		return null.Float{}
	}
	return Value(num.Float64 / den.Float64)
}

// Scale multiplies v by factor
func Scale(v null.Float, factor float64) null.Float {
	if !v.Valid {
		return v
	}
	return Value(v.Float64 * factor)
}

// Pct returns num / den * 100
func Pct(num, den null.Float) null.Float {
	return Scale(Div(num, den), 100)
}

// Avg returns the mean of a and b
func Avg(a, b null.Float) null.Float {
	return Scale(Add(a, b), 0.5)
}

// YoY returns the percentage change from prev to cur
func YoY(cur, prev null.Float) null.Float {
	return Pct(Sub(cur, prev), prev)
}

// Const returns a present value
func Const(f float64) null.Float {
	return null.FloatFrom(f)
}
