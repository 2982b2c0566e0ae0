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
	"math"

	"github.com/aaronlmathis/goxform/core"
)

// Parameter keys and methods for the normalize transformation.
const (
	ParamColumns = "columns"
	ParamMethod  = "method"

	MethodMinMax = "min_max"
	MethodZScore = "z_score"
	MethodRobust = "robust"
)

// Methods lists the supported normalization methods.
var Methods = []string{MethodMinMax, MethodZScore, MethodRobust}

// ColumnStats describes one normalized column before and after scaling.
type ColumnStats struct {
	OriginalMean   interface{} `json:"original_mean"`
	OriginalStd    interface{} `json:"original_std"`
	NormalizedMean interface{} `json:"normalized_mean"`
	NormalizedStd  interface{} `json:"normalized_std"`
}

// ScalerFor derives the scaling function of method from a column's non-null
// values. Null inputs and results that are NaN or infinite map to 0.
func ScalerFor(method string, values []float64) (Scaler, error) {
	var center, spread float64
	switch method {
	case MethodMinMax:
		lo, hi := core.MinMax(values)
		center, spread = lo, hi-lo
	case MethodZScore:
		center, spread = core.Mean(values), core.SampleStd(values)
	case MethodRobust:
		center = core.Median(values)
		spread = core.Quantile(values, 0.75) - core.Quantile(values, 0.25)
	default:
		return nil, core.NewError(core.UnknownMethod, "unknown normalization method: %q", method)
	}
	return func(value interface{}) interface{} {
		x, ok := core.ToFloat(value)
		if !ok {
			return 0.0
		}
		scaled := (x - center) / spread
		if math.IsNaN(scaled) || math.IsInf(scaled, 0) {
			return 0.0
		}
		return scaled
	}, nil
}

// Normalize rescales the requested numeric columns in place of their values.
// Requested columns that are absent or not numeric are ignored; if none
// remain the call fails with NoNumericColumns. Row count, row order and every
// other column are preserved.
func Normalize(ctx context.Context, data core.Dataset, params core.Params) (*core.Result, error) {
	frame, err := core.NewFrame(data)
	if err != nil {
		return nil, err
	}

	requested, err := params.StringList(ParamColumns)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(requested))
	columns := make([]string, 0, len(requested))
	for _, c := range requested {
		if seen[c] || !frame.IsNumeric(c) {
			continue
		}
		seen[c] = true
		columns = append(columns, c)
	}
	if len(columns) == 0 {
		return nil, core.NewError(core.NoNumericColumns, "no valid numeric columns found").WithColumns(requested...)
	}

	method, err := params.StringOr(ParamMethod, MethodMinMax)
	if err != nil {
		return nil, err
	}

	steps := make([]core.Transformer, 0, len(columns))
	originals := make(map[string][]float64, len(columns))
	for _, c := range columns {
		values := frame.Floats(c)
		scaler, err := ScalerFor(method, values)
		if err != nil {
			return nil, err
		}
		originals[c] = values
		steps = append(steps, MapField(c, scaler))
	}

	out, err := ApplyAll(ctx, Chain(steps...), data)
	if err != nil {
		return nil, err
	}

	statistics := make(map[string]ColumnStats, len(columns))
	for _, c := range columns {
		normalized := make([]float64, len(out))
		for i, r := range out {
			normalized[i], _ = core.ToFloat(r[c])
		}
		statistics[c] = ColumnStats{
			OriginalMean:   core.NullIfNaN(core.Mean(originals[c])),
			OriginalStd:    core.NullIfNaN(core.SampleStd(originals[c])),
			NormalizedMean: core.NullIfNaN(core.Mean(normalized)),
			NormalizedStd:  core.NullIfNaN(core.SampleStd(normalized)),
		}
	}

	return &core.Result{
		Data: out,
		Metadata: core.Metadata{
			"normalized_columns":   columns,
			"normalization_method": method,
			"statistics":           statistics,
		},
	}, nil
}
