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
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// Summary statistics over float slices. Each helper returns NaN when the
// statistic is undefined for the input (empty data, or fewer than two values
// for the sample standard deviation).

// Mean returns the arithmetic mean.
func Mean(data []float64) float64 {
	m, err := stats.Mean(data)
	if err != nil {
		return math.NaN()
	}
	return m
}

// SampleStd returns the sample standard deviation (n-1 denominator).
func SampleStd(data []float64) float64 {
	if len(data) < 2 {
		return math.NaN()
	}
	s, err := stats.StandardDeviationSample(data)
	if err != nil {
		return math.NaN()
	}
	return s
}

// Median returns the median.
func Median(data []float64) float64 {
	m, err := stats.Median(data)
	if err != nil {
		return math.NaN()
	}
	return m
}

// Sum returns the sum; an empty slice sums to 0.
func Sum(data []float64) float64 {
	s, err := stats.Sum(data)
	if err != nil {
		return 0
	}
	return s
}

// MinMax returns the smallest and largest values.
func MinMax(data []float64) (float64, float64) {
	lo, err := stats.Min(data)
	if err != nil {
		return math.NaN(), math.NaN()
	}
	hi, _ := stats.Max(data)
	return lo, hi
}

// Quantile returns the q-th quantile (0 <= q <= 1) using linear interpolation
// between closest ranks, the method used by common dataframe libraries.
// stats.Quartile takes medians of halves and stats.Percentile averages
// neighbours, so neither gives these values.
func Quantile(data []float64, q float64) float64 {
	if len(data) == 0 || q < 0 || q > 1 {
		return math.NaN()
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := math.Floor(pos)
	hi := math.Ceil(pos)
	if lo == hi {
		return sorted[int(lo)]
	}
	frac := pos - lo
	return sorted[int(lo)] + (sorted[int(hi)]-sorted[int(lo)])*frac
}

// Finite returns f for JSON output. NaN, an undefined statistic, becomes nil;
// an infinity means the computation overflowed and is reported as ErrOverflow.
func Finite(f float64) (interface{}, error) {
	switch {
	case math.IsInf(f, 0):
		return nil, ErrOverflow
	case math.IsNaN(f):
		return nil, nil
	}
	return f, nil
}

// NullIfNaN maps NaN and infinities to nil for JSON output.
func NullIfNaN(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
