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

package writers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/aaronlmathis/goxform/core"
)

// CSVWriterOptions configures the CSV writer.
type CSVWriterOptions struct {
	Comma       rune
	UseCRLF     bool
	WriteHeader bool
	Headers     []string // Column order; defaults to the sorted keys of the first record
	BatchSize   int      // Records buffered before an automatic flush; 0 flushes only on Flush
}

// WriterOptionCSV allows functional customization of CSVWriter.
type WriterOptionCSV func(*CSVWriterOptions)

func WithCSVHeaders(headers ...string) WriterOptionCSV {
	return func(opts *CSVWriterOptions) {
		opts.Headers = append([]string(nil), headers...)
	}
}

func WithCSVDelimiter(delim rune) WriterOptionCSV {
	return func(opts *CSVWriterOptions) { opts.Comma = delim }
}

func WithCSVWriteHeader(write bool) WriterOptionCSV {
	return func(opts *CSVWriterOptions) { opts.WriteHeader = write }
}

func WithCSVBatchSize(size int) WriterOptionCSV {
	return func(opts *CSVWriterOptions) { opts.BatchSize = size }
}

func WithCSVUseCRLF(useCRLF bool) WriterOptionCSV {
	return func(opts *CSVWriterOptions) { opts.UseCRLF = useCRLF }
}

// CSVWriter implements core.DataSink for delimited text. Values are rendered
// with core.FormatValue and nulls become empty cells.
type CSVWriter struct {
	mu          sync.Mutex
	writer      *csv.Writer
	closer      io.Closer
	options     CSVWriterOptions
	headers     []string
	pending     []core.Record
	stats       WriterStats
	wroteHeader bool
	failed      bool
}

// NewCSVWriter creates a CSVWriter over w.
func NewCSVWriter(w io.WriteCloser, opts ...WriterOptionCSV) *CSVWriter {
	options := CSVWriterOptions{Comma: ',', WriteHeader: true}
	for _, opt := range opts {
		opt(&options)
	}

	cw := csv.NewWriter(w)
	cw.Comma = options.Comma
	cw.UseCRLF = options.UseCRLF

	return &CSVWriter{
		writer:  cw,
		closer:  w,
		options: options,
		headers: append([]string(nil), options.Headers...),
		stats:   newStats(),
	}
}

// Write implements core.DataSink.
func (c *CSVWriter) Write(ctx context.Context, record core.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return &WriterError{Sink: "csv", Op: "write", Err: err}
	}
	if c.failed {
		return &WriterError{Sink: "csv", Op: "write", Err: fmt.Errorf("writer is in error state")}
	}

	if len(c.headers) == 0 {
		for key := range record {
			c.headers = append(c.headers, key)
		}
		sort.Strings(c.headers)
	}
	if !c.wroteHeader && c.options.WriteHeader {
		if err := c.writer.Write(c.headers); err != nil {
			c.failed = true
			return &WriterError{Sink: "csv", Op: "write_header", Err: err}
		}
		c.wroteHeader = true
	}

	c.stats.countNulls(record)
	c.pending = append(c.pending, record)
	c.stats.RecordsWritten++

	if c.options.BatchSize > 0 && len(c.pending) >= c.options.BatchSize {
		if err := c.flushLocked(); err != nil {
			c.failed = true
			return err
		}
	}
	return nil
}

// Flush writes buffered records to the underlying writer.
func (c *CSVWriter) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked()
}

func (c *CSVWriter) flushLocked() error {
	start := time.Now()
	row := make([]string, len(c.headers))
	for _, rec := range c.pending {
		for i, h := range c.headers {
			row[i] = ""
			if v, ok := rec[h]; ok && !core.IsNull(v) {
				row[i] = core.FormatValue(v)
			}
		}
		if err := c.writer.Write(row); err != nil {
			return &WriterError{Sink: "csv", Op: "write_record", Err: err}
		}
	}
	c.pending = c.pending[:0]

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return &WriterError{Sink: "csv", Op: "flush", Err: err}
	}
	c.stats.flushed(start)
	return nil
}

// Close flushes and closes the underlying writer.
func (c *CSVWriter) Close() error {
	err := c.Flush()
	if c.closer != nil {
		err = multierr.Append(err, c.closer.Close())
	}
	return err
}

// Stats returns CSV writer statistics.
func (c *CSVWriter) Stats() WriterStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.clone()
}
