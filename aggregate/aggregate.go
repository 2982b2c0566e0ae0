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
	"sort"
	"strings"

	"github.com/aaronlmathis/goxform/core"
)

// Package aggregate provides group-by aggregation and pivot tables over core.Dataset values.

// Parameter keys for the aggregate transformation.
const (
	ParamGroupBy      = "group_by"
	ParamAggregations = "aggregations"
)

// Functions lists the aggregation functions accepted by Aggregate.
var Functions = []string{FuncSum, FuncMean, FuncCount, FuncMin, FuncMax, FuncStd}

// Aggregate groups data by the group_by columns and applies the requested
// aggregation per column. Without aggregations, each group's row count is
// returned in a column named "count".
//
// Aggregation entries naming an unknown column or function, or a group column,
// are dropped. If entries were supplied and none survive, the call fails with
// NoValidAggregation.
func Aggregate(ctx context.Context, data core.Dataset, params core.Params) (*core.Result, error) {
	frame, err := core.NewFrame(data)
	if err != nil {
		return nil, err
	}

	groupBy, err := params.StringList(ParamGroupBy)
	if err != nil {
		return nil, err
	}
	if len(groupBy) == 0 {
		return nil, core.NewError(core.InvalidParameter, "group_by must name at least one column")
	}
	if missing := frame.Missing(groupBy...); len(missing) > 0 {
		return nil, core.NewError(core.UnknownColumn, "group_by columns not found: [%s]", strings.Join(missing, ", ")).
			WithColumns(missing...)
	}

	requested, skipped, err := params.StringMap(ParamAggregations)
	if err != nil {
		return nil, err
	}

	isGroupColumn := make(map[string]bool, len(groupBy))
	for _, c := range groupBy {
		isGroupColumn[c] = true
	}

	columns := make([]string, 0, len(requested))
	for col := range requested {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	g := NewGroupBy(groupBy...)
	var functions, aggregated []string
	for _, col := range columns {
		fn := requested[col]
		if !frame.HasColumn(col) || isGroupColumn[col] {
			continue
		}
		if !g.Apply(fn, col) {
			continue
		}
		functions = append(functions, fn)
		aggregated = append(aggregated, col)
	}

	supplied := len(requested) + len(skipped)
	if supplied > 0 && len(aggregated) == 0 {
		return nil, core.NewError(core.NoValidAggregation, "no valid aggregation functions specified")
	}
	if supplied == 0 {
		g.Size(FuncCount)
		functions = []string{FuncCount}
		aggregated = []string{}
	}

	groups, err := g.Process(ctx, data)
	if err != nil {
		return nil, err
	}
	out := g.Records(groups)

	return &core.Result{
		Data: out,
		Metadata: core.Metadata{
			"original_rows":         frame.Len(),
			"transformed_rows":      len(out),
			"group_by_columns":      groupBy,
			"aggregation_functions": functions,
			"aggregated_columns":    aggregated,
		},
	}, nil
}
