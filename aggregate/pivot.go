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

// Parameter keys for the pivot transformation.
const (
	ParamIndex   = "index"
	ParamColumns = "columns"
	ParamValues  = "values"
	ParamAggFunc = "aggfunc"
)

// PivotFunctions lists the aggfunc values accepted by Pivot.
var PivotFunctions = []string{FuncSum, FuncMean, FuncCount, FuncMin, FuncMax}

func isPivotFunction(fn string) bool {
	for _, f := range PivotFunctions {
		if f == fn {
			return true
		}
	}
	return false
}

// Pivot reshapes data into a cross-tab: one row per distinct index value, one
// column per distinct value of the columns column, each cell holding aggfunc
// over the values column. Missing cells are 0.
//
// Rows with a null index or columns value do not contribute.
func Pivot(ctx context.Context, data core.Dataset, params core.Params) (*core.Result, error) {
	frame, err := core.NewFrame(data)
	if err != nil {
		return nil, err
	}

	roles := []string{ParamIndex, ParamColumns, ParamValues}
	names := make([]string, len(roles))
	var absent []string
	for i, role := range roles {
		name, ok, err := params.String(role)
		if err != nil {
			return nil, err
		}
		if !ok || name == "" {
			absent = append(absent, role)
		}
		names[i] = name
	}
	if len(absent) > 0 {
		return nil, core.NewError(core.InvalidParameter, "pivot requires parameters: [%s]", strings.Join(absent, ", "))
	}
	index, columns, values := names[0], names[1], names[2]

	if missing := frame.Missing(index, columns, values); len(missing) > 0 {
		return nil, core.NewError(core.MissingColumns, "missing required columns: [%s]", strings.Join(missing, ", ")).
			WithColumns(missing...)
	}

	fn, err := params.StringOr(ParamAggFunc, FuncSum)
	if err != nil {
		return nil, err
	}
	if !isPivotFunction(fn) {
		return nil, core.NewError(core.UnknownAggFunc, "unknown aggregation function: %q", fn)
	}

	g := NewGroupBy(index, columns).DropNullKeys()
	g.Apply(fn, values)
	cells, err := g.Process(ctx, data)
	if err != nil {
		return nil, err
	}

	// Distinct index and column values, in ascending order.
	var rowKeys, colKeys []interface{}
	rowPos := make(map[string]int)
	colNames := make(map[string]bool)
	for _, cell := range cells {
		rk := encodeKey(cell.Key[:1])
		if _, seen := rowPos[rk]; !seen {
			rowPos[rk] = len(rowKeys)
			rowKeys = append(rowKeys, cell.Key[0])
		}
		name := core.FormatValue(cell.Key[1])
		if !colNames[name] {
			colNames[name] = true
			colKeys = append(colKeys, cell.Key[1])
		}
	}
	sort.SliceStable(colKeys, func(i, j int) bool { return core.Compare(colKeys[i], colKeys[j]) < 0 })

	outputColumns := make([]string, 0, len(colKeys))
	for _, ck := range colKeys {
		name := core.FormatValue(ck)
		if name == index {
			return nil, core.NewError(core.InvalidParameter,
				"pivot column value %q collides with index column %q", name, index).WithColumns(columns)
		}
		outputColumns = append(outputColumns, name)
	}

	out := make(core.Dataset, len(rowKeys))
	for i, rk := range rowKeys {
		r := make(core.Record, len(outputColumns)+1)
		r[index] = rk
		for _, name := range outputColumns {
			r[name] = 0
		}
		out[i] = r
	}
	for _, cell := range cells {
		v := cell.Values[values]
		if core.IsNull(v) {
			continue
		}
		out[rowPos[encodeKey(cell.Key[:1])]][core.FormatValue(cell.Key[1])] = v
	}

	return &core.Result{
		Data: out,
		Metadata: core.Metadata{
			"original_rows":        frame.Len(),
			"pivoted_rows":         len(out),
			"index_column":         index,
			"pivot_columns":        columns,
			"values_column":        values,
			"aggregation_function": fn,
			"output_columns":       outputColumns,
		},
	}, nil
}

