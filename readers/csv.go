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
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/aaronlmathis/goxform/core"
)

// CSVReaderOptions configures the CSV reader.
type CSVReaderOptions struct {
	Comma            rune
	Comment          rune
	LazyQuotes       bool
	TrimLeadingSpace bool
	HasHeaders       bool
	// NormalizeHeaders trims header cells and folds accented letters to ASCII,
	// so "Región " becomes "Region".
	NormalizeHeaders bool
	// InferTypes converts numeric and boolean cells. When false every non-empty
	// cell stays a string.
	InferTypes bool
}

// ReaderOptionCSV allows functional customization of CSVReader.
type ReaderOptionCSV func(*CSVReaderOptions)

func WithCSVComma(r rune) ReaderOptionCSV {
	return func(o *CSVReaderOptions) { o.Comma = r }
}

func WithCSVComment(r rune) ReaderOptionCSV {
	return func(o *CSVReaderOptions) { o.Comment = r }
}

func WithCSVHasHeaders(hasHeaders bool) ReaderOptionCSV {
	return func(o *CSVReaderOptions) { o.HasHeaders = hasHeaders }
}

func WithCSVTrimSpace(trim bool) ReaderOptionCSV {
	return func(o *CSVReaderOptions) { o.TrimLeadingSpace = trim }
}

func WithCSVNormalizeHeaders(normalize bool) ReaderOptionCSV {
	return func(o *CSVReaderOptions) { o.NormalizeHeaders = normalize }
}

func WithCSVInferTypes(infer bool) ReaderOptionCSV {
	return func(o *CSVReaderOptions) { o.InferTypes = infer }
}

// CSVReader implements core.DataSource for delimited text.
type CSVReader struct {
	reader  *csv.Reader
	headers []string
	closer  io.Closer
	stats   ReaderStats
	opts    CSVReaderOptions
}

// NewCSVReader creates a CSVReader. The header row, when present, is consumed
// immediately so that an empty input fails here rather than on the first Read.
func NewCSVReader(r io.ReadCloser, options ...ReaderOptionCSV) (*CSVReader, error) {
	opts := CSVReaderOptions{
		Comma:            ',',
		HasHeaders:       true,
		TrimLeadingSpace: true,
		InferTypes:       true,
	}
	for _, opt := range options {
		opt(&opts)
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.Comment = opts.Comment
	cr.LazyQuotes = opts.LazyQuotes
	cr.TrimLeadingSpace = opts.TrimLeadingSpace
	cr.ReuseRecord = true

	reader := &CSVReader{
		reader: cr,
		closer: r,
		opts:   opts,
		stats:  newStats(),
	}

	if opts.HasHeaders {
		headers, err := cr.Read()
		if err != nil {
			return nil, &ReaderError{Source: "csv", Op: "read_headers", Err: err}
		}
		reader.headers = make([]string, len(headers))
		for i, h := range headers {
			if opts.NormalizeHeaders {
				h = NormalizeHeader(h)
			}
			reader.headers[i] = h
		}
	}

	return reader, nil
}

// Read implements core.DataSource.
func (c *CSVReader) Read(ctx context.Context) (core.Record, error) {
	start := time.Now()
	if err := checkContext(ctx, "csv"); err != nil {
		return nil, err
	}

	row, err := c.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, &ReaderError{Source: "csv", Op: "read_record", Err: err}
	}

	rec := make(core.Record, len(row))
	for i, cell := range row {
		key := "col_" + strconv.Itoa(i)
		if len(c.headers) > 0 {
			key = c.headers[i]
		}
		rec[key] = c.parseValue(cell)
		if rec[key] == nil {
			c.stats.NullValueCounts[key]++
		}
	}

	c.stats.observe(start)
	return rec, nil
}

// Headers returns the column names taken from the header row.
func (c *CSVReader) Headers() []string {
	return append([]string(nil), c.headers...)
}

// Close implements core.DataSource.
func (c *CSVReader) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// Stats returns CSV reader statistics.
func (c *CSVReader) Stats() ReaderStats {
	return c.stats.clone()
}

func (c *CSVReader) parseValue(cell string) interface{} {
	if c.opts.InferTypes {
		return inferValue(cell)
	}
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	return cell
}

// NormalizeHeader trims a column name and strips combining marks from it.
func NormalizeHeader(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(name))
	if err != nil {
		return strings.TrimSpace(name)
	}
	return out
}
