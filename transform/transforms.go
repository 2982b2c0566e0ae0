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

// Package transform provides column-wise value transformations for GoXform.
//
// Record-level building blocks live here; normalize.go composes them into the
// normalize transformation.
package transform

import (
	"context"
	"fmt"

	"github.com/aaronlmathis/goxform/core"
)

// Scaler maps one column value to its transformed value.
type Scaler func(value interface{}) interface{}

// MapField creates a transformer that rewrites one field with fn. A missing
// field is passed to fn as nil. The input record is left untouched.
func MapField(field string, fn Scaler) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		result := record.Clone()
		result[field] = fn(record[field])
		return result, nil
	})
}

// Chain runs transformers in sequence, feeding each the previous output.
func Chain(transformers ...core.Transformer) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		current := record
		for _, t := range transformers {
			next, err := t.Transform(ctx, current)
			if err != nil {
				return nil, err
			}
			current = next
		}
		return current, nil
	})
}

// ApplyAll runs t over every record of data and returns the new dataset.
func ApplyAll(ctx context.Context, t core.Transformer, data core.Dataset) (core.Dataset, error) {
	out := make(core.Dataset, len(data))
	for i, record := range data {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		transformed, err := t.Transform(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = transformed
	}
	return out, nil
}
