//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of GoXform.
//
// GoXform is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GoXform is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GoXform. If not, see https://www.gnu.org/licenses/.

package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value helpers shared by every operation. They fix one set of coercion and
// ordering rules so that aggregate, filter, normalize and pivot agree on what a
// number is and how values sort.

// IsNull reports whether v is a missing value: nil, NaN or an infinity.
func IsNull(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x) || math.IsInf(x, 0)
	case float32:
		f := float64(x)
		return math.IsNaN(f) || math.IsInf(f, 0)
	}
	return false
}

// IsNumber reports whether v is a native numeric value (Go integer or float kind,
// or json.Number). Numeric strings are not numbers here; see ToFloat.
func IsNumber(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return true
	}
	return false
}

// ToFloat coerces v to a finite float64. Native numbers, json.Number and strings
// that parse as floats after trimming are accepted. Booleans, nil, NaN and
// infinities are not.
func ToFloat(v interface{}) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case float32:
		f = float64(x)
	case float64:
		f = x
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// rank orders value classes: bool < number < string < other < null.
func rank(v interface{}) int {
	switch {
	case IsNull(v):
		return 4
	case IsNumber(v):
		return 1
	}
	switch v.(type) {
	case bool:
		return 0
	case string:
		return 2
	}
	return 3
}

// Compare is a total order over scalar values. Nulls sort last, then values
// are ordered by class (booleans, numbers, strings, anything else) and within
// a class by their natural order.
func Compare(a, b interface{}) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}
	switch ra {
	case 4:
		return 0
	case 0:
		ba, bb := a.(bool), b.(bool)
		if ba == bb {
			return 0
		}
		if !ba {
			return -1
		}
		return 1
	case 1:
		fa, _ := ToFloat(a)
		fb, _ := ToFloat(b)
		return cmpFloat(fa, fb)
	case 2:
		return strings.Compare(a.(string), b.(string))
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// Equal reports value equality: numeric for two numbers, same-kind equality
// otherwise. Nulls are never equal to anything.
func Equal(a, b interface{}) bool {
	if IsNull(a) || IsNull(b) {
		return false
	}
	if IsNumber(a) && IsNumber(b) {
		fa, okA := ToFloat(a)
		fb, okB := ToFloat(b)
		return okA && okB && fa == fb
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	if IsNumber(a) || IsNumber(b) {
		return false
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// FormatValue returns the canonical string form of v. Integral floats print
// without a fractional part, so 30.0 and 30 both format as "30".
func FormatValue(v interface{}) string {
	if IsNull(v) {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case json.Number:
		if f, ok := ToFloat(x); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return x.String()
	}
	return fmt.Sprint(v)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
