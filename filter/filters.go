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

package filter

import (
	"context"
	"reflect"
	"strings"

	"github.com/aaronlmathis/goxform/core"
)

// Package filter provides the comparison predicates behind the filter transformation.
//
// Every constructor returns a core.Filter. A missing or null field never
// matches, except under NotEquals which is the negation of Equals.

// Equals creates a filter that includes records where the field equals the value.
func Equals(field string, expected interface{}) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		return core.Equal(record[field], expected), nil
	})
}

// NotEquals creates a filter that includes records where Equals would not.
func NotEquals(field string, expected interface{}) core.Filter {
	eq := Equals(field, expected)
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		ok, err := eq.ShouldInclude(ctx, record)
		return !ok, err
	})
}

// GreaterThan creates a filter that includes records where field > threshold.
func GreaterThan(field string, threshold interface{}) core.Filter {
	return ordered(field, threshold, func(c int) bool { return c > 0 })
}

// GreaterThanOrEqual creates a filter that includes records where field >= threshold.
func GreaterThanOrEqual(field string, threshold interface{}) core.Filter {
	return ordered(field, threshold, func(c int) bool { return c >= 0 })
}

// LessThan creates a filter that includes records where field < threshold.
func LessThan(field string, threshold interface{}) core.Filter {
	return ordered(field, threshold, func(c int) bool { return c < 0 })
}

// LessThanOrEqual creates a filter that includes records where field <= threshold.
func LessThanOrEqual(field string, threshold interface{}) core.Filter {
	return ordered(field, threshold, func(c int) bool { return c <= 0 })
}

// Contains creates a filter that includes records whose field, in string form,
// contains substring. Matching is case-sensitive; a null substring matches nothing.
func Contains(field string, substring interface{}) core.Filter {
	needle := core.FormatValue(substring)
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		value := record[field]
		if core.IsNull(value) || core.IsNull(substring) {
			return false, nil
		}
		return strings.Contains(core.FormatValue(value), needle), nil
	})
}

// In creates a filter that includes records where the field equals one of the
// allowed values. A non-list argument is treated as a one-element list.
func In(field string, allowed interface{}) core.Filter {
	values := asList(allowed)
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		value := record[field]
		for _, candidate := range values {
			if core.Equal(value, candidate) {
				return true, nil
			}
		}
		return false, nil
	})
}

// And combines filters; a record must pass all of them.
func And(filters ...core.Filter) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		for _, f := range filters {
			include, err := f.ShouldInclude(ctx, record)
			if err != nil {
				return false, err
			}
			if !include {
				return false, nil
			}
		}
		return true, nil
	})
}

// ordered compares numerically when both sides coerce to numbers, and
// lexicographically when both are strings. Other pairs never match.
func ordered(field string, threshold interface{}, accept func(int) bool) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		value := record[field]
		if core.IsNull(value) || core.IsNull(threshold) {
			return false, nil
		}
		if a, ok := core.ToFloat(value); ok {
			if b, ok := core.ToFloat(threshold); ok {
				switch {
				case a < b:
					return accept(-1), nil
				case a > b:
					return accept(1), nil
				}
				return accept(0), nil
			}
		}
		a, okA := value.(string)
		b, okB := threshold.(string)
		if okA && okB {
			return accept(strings.Compare(a, b)), nil
		}
		return false, nil
	})
}

// asList spreads any slice or array into its elements. Byte slices and
// every other value count as a single element.
func asList(v interface{}) []interface{} {
	switch x := v.(type) {
	case []interface{}:
		return x
	case []byte, nil:
		return []interface{}{v}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []interface{}{v}
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
