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

import "context"

// Package core defines the core types for the GoXform library.
//
// GoXform applies tabular transformations (aggregate, filter, normalize, pivot) to
// in-memory datasets of uniform key/value records.
//
// This file contains the primary types and function adapters.

// Record represents a single row of a dataset.
// Each record is a map from column names to scalar values (nil, bool, numbers, strings).
type Record map[string]interface{}

// Clone returns a shallow copy of the record. Scalar values need no deeper copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is an ordered sequence of records sharing the same key set.
type Dataset []Record

// Clone returns a copy of the dataset whose records can be modified freely.
func (d Dataset) Clone() Dataset {
	out := make(Dataset, len(d))
	for i, r := range d {
		out[i] = r.Clone()
	}
	return out
}

// Metadata is the descriptive, JSON-serializable map returned next to a result.
type Metadata map[string]interface{}

// Result is the output of a single transformation.
type Result struct {
	Data     Dataset  `json:"data"`
	Metadata Metadata `json:"metadata"`
}

// TransformFunc is a function adapter for the Transformer interface.
// Allows ordinary functions to be used as Transformers.
type TransformFunc func(ctx context.Context, record Record) (Record, error)

// Transform implements the Transformer interface for TransformFunc.
func (f TransformFunc) Transform(ctx context.Context, record Record) (Record, error) {
	return f(ctx, record)
}

// FilterFunc is a function adapter for the Filter interface.
// Allows ordinary functions to be used as Filters.
type FilterFunc func(ctx context.Context, record Record) (bool, error)

// ShouldInclude implements the Filter interface for FilterFunc.
func (f FilterFunc) ShouldInclude(ctx context.Context, record Record) (bool, error) {
	return f(ctx, record)
}

// OperationFunc is a function adapter for the Operation interface.
type OperationFunc func(ctx context.Context, data Dataset, params Params) (*Result, error)

// Apply implements the Operation interface for OperationFunc.
func (f OperationFunc) Apply(ctx context.Context, data Dataset, params Params) (*Result, error) {
	return f(ctx, data, params)
}
