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

	"github.com/aaronlmathis/goxform/core"
)

// ParamConditions is the parameter key holding the filter conditions.
const ParamConditions = "conditions"

// Apply keeps the rows that satisfy every condition, preserving order.
//
// Conditions are checked in order and the first invalid one is reported. An
// empty input, which can only arrive from an earlier chained step, yields an
// empty output once the operators have been validated.
func Apply(ctx context.Context, data core.Dataset, params core.Params) (*core.Result, error) {
	conditions, err := ParseConditions(params[ParamConditions])
	if err != nil {
		return nil, err
	}

	var frame *core.Frame
	if len(data) > 0 {
		if frame, err = core.NewFrame(data); err != nil {
			return nil, err
		}
	}

	filters := make([]core.Filter, 0, len(conditions))
	for _, c := range conditions {
		if frame != nil && !frame.HasColumn(c.Field) {
			return nil, core.NewError(core.UnknownColumn, "column %q not found", c.Field).WithColumns(c.Field)
		}
		f, err := c.Filter()
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	predicate := And(filters...)

	out := make(core.Dataset, 0, len(data))
	for i, record := range data {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		include, err := predicate.ShouldInclude(ctx, record)
		if err != nil {
			return nil, err
		}
		if include {
			out = append(out, record.Clone())
		}
	}

	ratio := 0.0
	if len(data) > 0 {
		ratio = float64(len(out)) / float64(len(data))
	}
	return &core.Result{
		Data: out,
		Metadata: core.Metadata{
			"original_rows":      len(data),
			"filtered_rows":      len(out),
			"conditions_applied": len(conditions),
			"filter_ratio":       ratio,
		},
	}, nil
}
