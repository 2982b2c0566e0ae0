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

package aggregate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/goxform/core"
)

// TestPivot_Basic tests a sum pivot with zero fill
func TestPivot_Basic(t *testing.T) {
	res, err := Pivot(context.Background(), salesData(), core.Params{
		"index":   "region",
		"columns": "quarter",
		"values":  "sales",
	})
	require.NoError(t, err)

	require.Len(t, res.Data, 2)
	assert.Equal(t, core.Record{"region": "North", "Q1": 100.0, "Q2": 150.0}, res.Data[0])
	assert.Equal(t, core.Record{"region": "South", "Q1": 200.0, "Q2": 0}, res.Data[1])

	assert.Equal(t, 3, res.Metadata["original_rows"])
	assert.Equal(t, 2, res.Metadata["pivoted_rows"])
	assert.Equal(t, "region", res.Metadata["index_column"])
	assert.Equal(t, "quarter", res.Metadata["pivot_columns"])
	assert.Equal(t, "sales", res.Metadata["values_column"])
	assert.Equal(t, "sum", res.Metadata["aggregation_function"])
	assert.Equal(t, []string{"Q1", "Q2"}, res.Metadata["output_columns"])
}

// TestPivot_CellMatchesGroupAggregate tests that each cell equals a direct group-and-aggregate
func TestPivot_CellMatchesGroupAggregate(t *testing.T) {
	data := core.Dataset{
		{"r": "N", "q": 1, "v": 1},
		{"r": "N", "q": 1, "v": 5},
		{"r": "N", "q": 2, "v": 3},
		{"r": "S", "q": 2, "v": 8},
		{"r": "S", "q": 2, "v": 2},
	}
	for _, fn := range PivotFunctions {
		t.Run(fn, func(t *testing.T) {
			pivot, err := Pivot(context.Background(), data, core.Params{
				"index": "r", "columns": "q", "values": "v", "aggfunc": fn,
			})
			require.NoError(t, err)

			grouped, err := Aggregate(context.Background(), data, core.Params{
				"group_by":     []interface{}{"r", "q"},
				"aggregations": map[string]interface{}{"v": fn},
			})
			require.NoError(t, err)

			for _, g := range grouped.Data {
				var row core.Record
				for _, p := range pivot.Data {
					if p["r"] == g["r"] {
						row = p
					}
				}
				require.NotNil(t, row)
				assert.Equal(t, g["v"], row[core.FormatValue(g["q"])])
			}
		})
	}
}

// TestPivot_NumericColumnNames tests that column values are stringified
func TestPivot_NumericColumnNames(t *testing.T) {
	res, err := Pivot(context.Background(), core.Dataset{
		{"k": "a", "year": 2024.0, "v": 1},
		{"k": "a", "year": 2023, "v": 2},
	}, core.Params{"index": "k", "columns": "year", "values": "v", "aggfunc": "count"})
	require.NoError(t, err)

	assert.Equal(t, []string{"2023", "2024"}, res.Metadata["output_columns"])
	assert.Equal(t, 1, res.Data[0]["2024"])
}

// TestPivot_NullKeysDropped tests that rows with null index or column values are ignored
func TestPivot_NullKeysDropped(t *testing.T) {
	res, err := Pivot(context.Background(), core.Dataset{
		{"k": "a", "c": "x", "v": 1},
		{"k": nil, "c": "x", "v": 2},
		{"k": "a", "c": nil, "v": 3},
	}, core.Params{"index": "k", "columns": "c", "values": "v"})
	require.NoError(t, err)

	require.Len(t, res.Data, 1)
	assert.Equal(t, core.Record{"k": "a", "x": 1.0}, res.Data[0])
}

// TestPivot_MissingColumns tests that every missing role column is reported before aggfunc
func TestPivot_MissingColumns(t *testing.T) {
	_, err := Pivot(context.Background(), salesData(), core.Params{
		"index": "store", "columns": "quarter", "values": "revenue", "aggfunc": "median",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrMissingColumns))

	var te *core.TransformError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, []string{"store", "revenue"}, te.Columns)
}

// TestPivot_UnknownAggFunc tests rejection of unsupported aggfunc values
func TestPivot_UnknownAggFunc(t *testing.T) {
	_, err := Pivot(context.Background(), salesData(), core.Params{
		"index": "region", "columns": "quarter", "values": "sales", "aggfunc": "std",
	})
	assert.True(t, errors.Is(err, core.ErrUnknownAggFunc))
}

// TestPivot_MissingParameters tests rejection when a role parameter is absent
func TestPivot_MissingParameters(t *testing.T) {
	_, err := Pivot(context.Background(), salesData(), core.Params{"index": "region"})
	assert.True(t, errors.Is(err, core.ErrInvalidParameter))
}

// TestPivot_SumOverflow tests that an overflowing cell fails instead of becoming 0
func TestPivot_SumOverflow(t *testing.T) {
	_, err := Pivot(context.Background(), core.Dataset{
		{"r": "x", "c": "y", "v": 1e308},
		{"r": "x", "c": "y", "v": 1e308},
	}, core.Params{"index": "r", "columns": "c", "values": "v"})
	assert.ErrorIs(t, err, core.ErrOverflow)
}

// TestPivot_ColumnCollidesWithIndex tests rejection of a pivot column named like the index
func TestPivot_ColumnCollidesWithIndex(t *testing.T) {
	_, err := Pivot(context.Background(), core.Dataset{
		{"region": "North", "kind": "region", "v": 1},
		{"region": "South", "kind": "other", "v": 2},
	}, core.Params{"index": "region", "columns": "kind", "values": "v"})
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}
