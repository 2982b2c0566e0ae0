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
	"sort"
)

// Frame is a column-oriented view of a Dataset. Operations that need whole
// columns (normalize, existence checks) work on a Frame instead of records.
type Frame struct {
	columns []string
	data    map[string][]interface{}
	rows    int
}

// NewFrame builds a Frame from ds. Column order is the sorted union of record
// keys; a key missing from a record reads as nil. An empty dataset is rejected.
func NewFrame(ds Dataset) (*Frame, error) {
	if len(ds) == 0 {
		return nil, NewError(EmptyDataset, "dataset is empty")
	}
	seen := make(map[string]struct{})
	for _, r := range ds {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for k := range seen {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	data := make(map[string][]interface{}, len(columns))
	for _, c := range columns {
		col := make([]interface{}, len(ds))
		for i, r := range ds {
			col[i] = r[c]
		}
		data[c] = col
	}
	return &Frame{columns: columns, data: data, rows: len(ds)}, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.rows }

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// HasColumn reports whether name is a column of the frame.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.data[name]
	return ok
}

// Missing returns the names in cols that are not columns of the frame, in the given order.
func (f *Frame) Missing(cols ...string) []string {
	var out []string
	for _, c := range cols {
		if !f.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// Column returns the values of a column. The slice must not be modified.
func (f *Frame) Column(name string) ([]interface{}, bool) {
	col, ok := f.data[name]
	return col, ok
}

// IsNumeric reports whether the column holds at least one non-null value and
// every non-null value coerces to a finite number.
func (f *Frame) IsNumeric(name string) bool {
	col, ok := f.data[name]
	if !ok {
		return false
	}
	seen := false
	for _, v := range col {
		if IsNull(v) {
			continue
		}
		if _, ok := ToFloat(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// Floats returns the non-null numeric values of a column, in row order.
func (f *Frame) Floats(name string) []float64 {
	col := f.data[name]
	out := make([]float64, 0, len(col))
	for _, v := range col {
		if x, ok := ToFloat(v); ok {
			out = append(out, x)
		}
	}
	return out
}

// SetColumn replaces or adds a column. values must have Len() entries.
func (f *Frame) SetColumn(name string, values []interface{}) {
	if _, ok := f.data[name]; !ok {
		f.columns = append(f.columns, name)
		sort.Strings(f.columns)
	}
	f.data[name] = values
}

// Records materializes the frame as a new Dataset. Every record carries every
// column, and NaN or infinite floats become explicit nil.
func (f *Frame) Records() Dataset {
	out := make(Dataset, f.rows)
	for i := 0; i < f.rows; i++ {
		r := make(Record, len(f.columns))
		for _, c := range f.columns {
			v := f.data[c][i]
			if IsNull(v) {
				v = nil
			}
			r[c] = v
		}
		out[i] = r
	}
	return out
}
