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

package transform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/goxform/core"
)

func scores() core.Dataset {
	return core.Dataset{
		{"name": "a", "score": 10, "flat": 5},
		{"name": "b", "score": 20, "flat": 5},
		{"name": "c", "score": 30, "flat": 5},
		{"name": "d", "score": 40, "flat": 5},
	}
}

// TestNormalize_MinMax tests scaling into [0,1]
func TestNormalize_MinMax(t *testing.T) {
	res, err := Normalize(context.Background(), scores(), core.Params{"columns": []interface{}{"score"}})
	require.NoError(t, err)

	require.Len(t, res.Data, 4)
	want := []float64{0, 1.0 / 3, 2.0 / 3, 1}
	for i, r := range res.Data {
		assert.InDelta(t, want[i], r["score"], 1e-12)
		assert.Equal(t, scores()[i]["name"], r["name"], "row order and other columns are preserved")
	}
	assert.Equal(t, "min_max", res.Metadata["normalization_method"])
	assert.Equal(t, []string{"score"}, res.Metadata["normalized_columns"])

	stats := res.Metadata["statistics"].(map[string]ColumnStats)["score"]
	assert.InDelta(t, 25.0, stats.OriginalMean, 1e-12)
	assert.InDelta(t, 0.5, stats.NormalizedMean, 1e-12)
}

// TestNormalize_ConstantColumn tests that a zero range yields zeros
func TestNormalize_ConstantColumn(t *testing.T) {
	for _, method := range Methods {
		t.Run(method, func(t *testing.T) {
			res, err := Normalize(context.Background(), scores(), core.Params{"columns": "flat", "method": method})
			require.NoError(t, err)
			for _, r := range res.Data {
				assert.Equal(t, 0.0, r["flat"])
			}
		})
	}
}

// TestNormalize_ZScore tests standardization with the sample deviation
func TestNormalize_ZScore(t *testing.T) {
	res, err := Normalize(context.Background(), scores(), core.Params{"columns": "score", "method": "z_score"})
	require.NoError(t, err)

	// mean 25, sample std 12.9099...
	assert.InDelta(t, -1.161895, res.Data[0]["score"], 1e-6)
	assert.InDelta(t, 1.161895, res.Data[3]["score"], 1e-6)

	stats := res.Metadata["statistics"].(map[string]ColumnStats)["score"]
	assert.InDelta(t, 0.0, stats.NormalizedMean, 1e-12)
	assert.InDelta(t, 1.0, stats.NormalizedStd, 1e-12)
}

// TestNormalize_Robust tests median and interquartile range scaling
func TestNormalize_Robust(t *testing.T) {
	res, err := Normalize(context.Background(), scores(), core.Params{"columns": "score", "method": "robust"})
	require.NoError(t, err)

	// median 25, q25 17.5, q75 32.5
	assert.InDelta(t, -1.0, res.Data[0]["score"], 1e-12)
	assert.InDelta(t, 1.0, res.Data[3]["score"], 1e-12)
}

// TestNormalize_NullsBecomeZero tests null handling in numeric columns
func TestNormalize_NullsBecomeZero(t *testing.T) {
	data := core.Dataset{{"v": 2}, {"v": nil}, {"v": 4}}
	res, err := Normalize(context.Background(), data, core.Params{"columns": "v"})
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Data[0]["v"])
	assert.Equal(t, 0.0, res.Data[1]["v"])
	assert.Equal(t, 1.0, res.Data[2]["v"])
	assert.Nil(t, data[1]["v"], "input is not modified")
}

// TestNormalize_SkipsNonNumeric tests that non-numeric and unknown columns are ignored
func TestNormalize_SkipsNonNumeric(t *testing.T) {
	res, err := Normalize(context.Background(), scores(), core.Params{
		"columns": []interface{}{"name", "missing", "score", "score"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"score"}, res.Metadata["normalized_columns"])
	assert.Equal(t, "a", res.Data[0]["name"])
}

// TestNormalize_Errors tests rejection paths
func TestNormalize_Errors(t *testing.T) {
	_, err := Normalize(context.Background(), scores(), core.Params{"columns": "name"})
	assert.True(t, errors.Is(err, core.ErrNoNumericColumns))

	_, err = Normalize(context.Background(), scores(), core.Params{"columns": "score", "method": "log"})
	assert.True(t, errors.Is(err, core.ErrUnknownMethod))

	// column qualification is checked before the method
	_, err = Normalize(context.Background(), scores(), core.Params{"columns": "name", "method": "log"})
	assert.True(t, errors.Is(err, core.ErrNoNumericColumns))

	_, err = Normalize(context.Background(), core.Dataset{}, core.Params{"columns": "score"})
	assert.True(t, errors.Is(err, core.ErrEmptyDataset))
}
