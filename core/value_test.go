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
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestToFloat_Coercion tests which values count as numbers
func TestToFloat_Coercion(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  float64
		ok    bool
	}{
		{"int", 42, 42, true},
		{"int64", int64(-7), -7, true},
		{"uint8", uint8(3), 3, true},
		{"float32", float32(1.5), 1.5, true},
		{"float64", 2.25, 2.25, true},
		{"json number", json.Number("12.5"), 12.5, true},
		{"numeric string", " 30 ", 30, true},
		{"non numeric string", "abc", 0, false},
		{"empty string", "", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-12)
			}
		})
	}
}

// TestCompare_TotalOrder tests the ordering used for group keys and pivots
func TestCompare_TotalOrder(t *testing.T) {
	values := []interface{}{"b", nil, 3.5, true, "a", 1, false, json.Number("2")}
	sort.SliceStable(values, func(i, j int) bool { return Compare(values[i], values[j]) < 0 })

	assert.Equal(t, []interface{}{false, true, 1, json.Number("2"), 3.5, "a", "b", nil}, values)

	assert.Equal(t, 0, Compare(30, 30.0))
	assert.Equal(t, 0, Compare(nil, math.NaN()))
	assert.Equal(t, -1, Compare(10, "1"))
}

// TestEqual_Semantics tests equality across numeric kinds and nulls
func TestEqual_Semantics(t *testing.T) {
	assert.True(t, Equal(30, 30.0))
	assert.True(t, Equal(json.Number("5"), int64(5)))
	assert.True(t, Equal("North", "North"))
	assert.False(t, Equal("30", 30))
	assert.False(t, Equal(nil, nil))
	assert.False(t, Equal(true, 1))
}

// TestFormatValue tests canonical string forms
func TestFormatValue(t *testing.T) {
	assert.Equal(t, "30", FormatValue(30.0))
	assert.Equal(t, "30", FormatValue(30))
	assert.Equal(t, "2.5", FormatValue(2.5))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "Q1", FormatValue("Q1"))
}

// TestFrame_RoundTrip tests that converting to columns and back preserves nulls
func TestFrame_RoundTrip(t *testing.T) {
	ds := Dataset{
		{"name": "Alice", "age": 25, "score": nil},
		{"name": "Bob", "age": 35, "score": 7.5},
	}
	f, err := NewFrame(ds)
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "name", "score"}, f.Columns())
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, ds, f.Records())
}

// TestFrame_NaNBecomesNull tests explicit null materialization
func TestFrame_NaNBecomesNull(t *testing.T) {
	f, err := NewFrame(Dataset{{"x": math.NaN()}, {"x": math.Inf(-1)}, {"x": 1.0}})
	require.NoError(t, err)

	out := f.Records()
	assert.Nil(t, out[0]["x"])
	assert.Nil(t, out[1]["x"])
	assert.Equal(t, 1.0, out[2]["x"])
}

// TestFrame_Empty tests rejection of empty datasets
func TestFrame_Empty(t *testing.T) {
	_, err := NewFrame(Dataset{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyDataset))
}

// TestFrame_IsNumeric tests numeric column classification
func TestFrame_IsNumeric(t *testing.T) {
	f, err := NewFrame(Dataset{
		{"a": 1, "b": "x", "c": nil, "d": "2.5", "e": true},
		{"a": nil, "b": 2, "c": nil, "d": 3, "e": false},
	})
	require.NoError(t, err)

	assert.True(t, f.IsNumeric("a"))
	assert.False(t, f.IsNumeric("b"))
	assert.False(t, f.IsNumeric("c"), "all-null column is not numeric")
	assert.True(t, f.IsNumeric("d"))
	assert.False(t, f.IsNumeric("e"))
	assert.False(t, f.IsNumeric("missing"))
	assert.Equal(t, []string{"missing"}, f.Missing("a", "missing"))
}

// TestStats_Helpers tests the statistics wrappers
func TestStats_Helpers(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	assert.InDelta(t, 2.5, Mean(data), 1e-12)
	assert.InDelta(t, 1.2909944487, SampleStd(data), 1e-9)
	assert.InDelta(t, 2.5, Median(data), 1e-12)
	assert.InDelta(t, 1.75, Quantile(data, 0.25), 1e-12)
	assert.InDelta(t, 3.25, Quantile(data, 0.75), 1e-12)
	assert.InDelta(t, 10, Sum(data), 1e-12)

	assert.True(t, math.IsNaN(SampleStd([]float64{1})))
	assert.True(t, math.IsNaN(Mean(nil)))
	assert.Equal(t, 0.0, Sum(nil))
	assert.Nil(t, NullIfNaN(math.NaN()))
}

// TestQuantile_LinearInterpolation tests that quartiles interpolate between ranks
// rather than splitting the data into halves
func TestQuantile_LinearInterpolation(t *testing.T) {
	data := []float64{4, 1, 3, 2}
	q, err := stats.Quartile(data)
	require.NoError(t, err)
	assert.Equal(t, 1.5, q.Q1)
	assert.InDelta(t, 1.75, Quantile(data, 0.25), 1e-12)

	assert.Equal(t, 1.0, Quantile(data, 0))
	assert.Equal(t, 4.0, Quantile(data, 1))
	assert.Equal(t, 7.0, Quantile([]float64{7}, 0.75))
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
	assert.True(t, math.IsNaN(Quantile(data, 1.5)))
}

// TestFinite tests output mapping of undefined and overflowing statistics
func TestFinite(t *testing.T) {
	v, err := Finite(2.5)
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	v, err = Finite(math.NaN())
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = Finite(Sum([]float64{1e308, 1e308}))
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = Finite(math.Inf(-1))
	assert.ErrorIs(t, err, ErrOverflow)
}

// TestTransformError_Is tests kind-based matching through wrapping
func TestTransformError_Is(t *testing.T) {
	err := NewError(UnknownColumn, "column %q not found", "x").WithColumns("x")
	wrapped := &StepError{Step: 2, Type: TypeFilter, Err: err}

	assert.True(t, errors.Is(wrapped, ErrUnknownColumn))
	assert.False(t, errors.Is(wrapped, ErrUnknownOperator))
	assert.Equal(t, `transformation failed: column "x" not found`, err.Error())

	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, UnknownColumn, kind)
}

// TestParseTransformationType tests the closed enumeration
func TestParseTransformationType(t *testing.T) {
	tt, err := ParseTransformationType("pivot")
	require.NoError(t, err)
	assert.Equal(t, TypePivot, tt)

	_, err = ParseTransformationType("bogus")
	assert.True(t, errors.Is(err, ErrUnknownTransformation))
}

// TestParams_Getters tests parameter decoding
func TestParams_Getters(t *testing.T) {
	p := Params{
		"group_by":     []interface{}{"region", "quarter"},
		"single":       "region",
		"bad":          []interface{}{"a", 1},
		"aggregations": map[string]interface{}{"sales": "sum", "units": 3},
	}

	list, err := p.StringList("group_by")
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "quarter"}, list)

	list, err = p.StringList("single")
	require.NoError(t, err)
	assert.Equal(t, []string{"region"}, list)

	_, err = p.StringList("bad")
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	m, skipped, err := p.StringMap("aggregations")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"sales": "sum"}, m)
	assert.Equal(t, []string{"units"}, skipped)

	s, err := p.StringOr("method", "min_max")
	require.NoError(t, err)
	assert.Equal(t, "min_max", s)
}

// TestFormatFromPath tests format detection by extension
func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("data/sales.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = FormatFromPath("events.ndjson")
	require.NoError(t, err)
	assert.Equal(t, FormatJSONL, f)

	_, err = FormatFromPath("README")
	assert.Error(t, err)
	_, err = ParseFormat("avro")
	assert.Error(t, err)
}
