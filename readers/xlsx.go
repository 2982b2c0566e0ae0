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

package readers

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/aaronlmathis/goxform/core"
)

// XLSXReader implements core.DataSource for one worksheet of an Excel
// workbook. The first row holds the column names.
type XLSXReader struct {
	headers []string
	rows    [][]string
	next    int
	sheet   string
	stats   ReaderStats
}

// ReaderOptionXLSX customizes the XLSX reader.
type ReaderOptionXLSX func(*xlsxOptions)

type xlsxOptions struct {
	sheet            string
	normalizeHeaders bool
}

// WithXLSXSheet selects a worksheet by name. The first sheet is used by default.
func WithXLSXSheet(name string) ReaderOptionXLSX {
	return func(o *xlsxOptions) { o.sheet = name }
}

func WithXLSXNormalizeHeaders(normalize bool) ReaderOptionXLSX {
	return func(o *xlsxOptions) { o.normalizeHeaders = normalize }
}

// NewXLSXReader loads a worksheet from r. The workbook is read fully and r is
// closed before returning.
func NewXLSXReader(r io.ReadCloser, options ...ReaderOptionXLSX) (*XLSXReader, error) {
	defer r.Close()

	var opts xlsxOptions
	for _, opt := range options {
		opt(&opts)
	}

	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ReaderError{Source: "xlsx", Op: "open", Err: err}
	}
	defer wb.Close()

	sheet := opts.sheet
	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, &ReaderError{Source: "xlsx", Op: "open", Err: fmt.Errorf("workbook has no sheets")}
		}
		sheet = sheets[0]
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, &ReaderError{Source: "xlsx", Op: "get_rows", Err: err}
	}
	if len(rows) == 0 {
		return nil, &ReaderError{Source: "xlsx", Op: "read_headers", Err: io.EOF}
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		if opts.normalizeHeaders {
			h = NormalizeHeader(h)
		}
		if h == "" {
			h = "col_" + strconv.Itoa(i)
		}
		headers[i] = h
	}

	return &XLSXReader{
		headers: headers,
		rows:    rows[1:],
		sheet:   sheet,
		stats:   newStats(),
	}, nil
}

// Read implements core.DataSource. Short rows are padded with nil.
func (x *XLSXReader) Read(ctx context.Context) (core.Record, error) {
	start := time.Now()
	if err := checkContext(ctx, "xlsx"); err != nil {
		return nil, err
	}
	if x.next >= len(x.rows) {
		return nil, io.EOF
	}
	row := x.rows[x.next]
	x.next++

	rec := make(core.Record, len(x.headers))
	for i, h := range x.headers {
		var v interface{}
		if i < len(row) {
			v = inferValue(row[i])
		}
		if v == nil {
			x.stats.NullValueCounts[h]++
		}
		rec[h] = v
	}
	x.stats.observe(start)
	return rec, nil
}

// Sheet returns the worksheet being read.
func (x *XLSXReader) Sheet() string { return x.sheet }

// Stats returns XLSX reader statistics.
func (x *XLSXReader) Stats() ReaderStats {
	return x.stats.clone()
}

// Close implements core.DataSource.
func (x *XLSXReader) Close() error {
	x.rows = nil
	return nil
}
