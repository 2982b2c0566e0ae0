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

	"github.com/aaronlmathis/goxform/core"
)

// Aggregator defines the interface for per-group accumulation.
// One Aggregator instance accumulates the rows of exactly one group.
type Aggregator interface {
	// Add processes a record for aggregation.
	Add(ctx context.Context, record core.Record) error
	// Result returns the aggregated value. Undefined results are nil and
	// results that overflow fail with core.ErrOverflow.
	Result() (interface{}, error)
	// Clone returns a fresh aggregator with the same configuration.
	Clone() Aggregator
}

// Function names accepted in the aggregations parameter.
const (
	FuncSum   = "sum"
	FuncMean  = "mean"
	FuncCount = "count"
	FuncMin   = "min"
	FuncMax   = "max"
	FuncStd   = "std"
)

// SizeAggregator counts the rows of a group, nulls included.
type SizeAggregator struct {
	size int
}

func (s *SizeAggregator) Add(ctx context.Context, record core.Record) error {
	s.size++
	return nil
}

func (s *SizeAggregator) Result() (interface{}, error) { return s.size, nil }
func (s *SizeAggregator) Clone() Aggregator            { return &SizeAggregator{} }

// CountAggregator counts the non-null values of a field.
type CountAggregator struct {
	Field string
	count int
}

func (c *CountAggregator) Add(ctx context.Context, record core.Record) error {
	if !core.IsNull(record[c.Field]) {
		c.count++
	}
	return nil
}

func (c *CountAggregator) Result() (interface{}, error) { return c.count, nil }
func (c *CountAggregator) Clone() Aggregator            { return &CountAggregator{Field: c.Field} }

// SumAggregator sums numeric values. Values that do not coerce to numbers are skipped.
type SumAggregator struct {
	Field  string
	values []float64
}

func (s *SumAggregator) Add(ctx context.Context, record core.Record) error {
	if num, ok := core.ToFloat(record[s.Field]); ok {
		s.values = append(s.values, num)
	}
	return nil
}

func (s *SumAggregator) Result() (interface{}, error) {
	return core.Finite(core.Sum(s.values))
}
func (s *SumAggregator) Clone() Aggregator { return &SumAggregator{Field: s.Field} }

// MeanAggregator averages numeric values; a group without any is undefined.
type MeanAggregator struct {
	Field  string
	values []float64
}

func (m *MeanAggregator) Add(ctx context.Context, record core.Record) error {
	if num, ok := core.ToFloat(record[m.Field]); ok {
		m.values = append(m.values, num)
	}
	return nil
}

func (m *MeanAggregator) Result() (interface{}, error) {
	return core.Finite(core.Mean(m.values))
}
func (m *MeanAggregator) Clone() Aggregator { return &MeanAggregator{Field: m.Field} }

// StdAggregator computes the sample standard deviation; fewer than two values is undefined.
type StdAggregator struct {
	Field  string
	values []float64
}

func (s *StdAggregator) Add(ctx context.Context, record core.Record) error {
	if num, ok := core.ToFloat(record[s.Field]); ok {
		s.values = append(s.values, num)
	}
	return nil
}

func (s *StdAggregator) Result() (interface{}, error) {
	return core.Finite(core.SampleStd(s.values))
}
func (s *StdAggregator) Clone() Aggregator { return &StdAggregator{Field: s.Field} }

// MinAggregator finds the minimum non-null value using core.Compare.
type MinAggregator struct {
	Field string
	min   interface{}
	set   bool
}

func (m *MinAggregator) Add(ctx context.Context, record core.Record) error {
	value := record[m.Field]
	if core.IsNull(value) {
		return nil
	}
	if !m.set || core.Compare(value, m.min) < 0 {
		m.min = value
		m.set = true
	}
	return nil
}

func (m *MinAggregator) Result() (interface{}, error) { return m.min, nil }

func (m *MinAggregator) Clone() Aggregator { return &MinAggregator{Field: m.Field} }

// MaxAggregator finds the maximum non-null value using core.Compare.
type MaxAggregator struct {
	Field string
	max   interface{}
	set   bool
}

func (m *MaxAggregator) Add(ctx context.Context, record core.Record) error {
	value := record[m.Field]
	if core.IsNull(value) {
		return nil
	}
	if !m.set || core.Compare(value, m.max) > 0 {
		m.max = value
		m.set = true
	}
	return nil
}

func (m *MaxAggregator) Result() (interface{}, error) { return m.max, nil }

func (m *MaxAggregator) Clone() Aggregator { return &MaxAggregator{Field: m.Field} }

