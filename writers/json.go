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
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/aaronlmathis/goxform/core"
)

// JSONWriter implements core.DataSink for JSON. In lines mode each record is
// one line; otherwise the records form a single array closed by Close.
type JSONWriter struct {
	mu      sync.Mutex
	buf     *bufio.Writer
	closer  io.Closer
	lines   bool
	written bool
	closed  bool
	stats   WriterStats
}

// NewJSONWriter creates a writer producing one JSON array.
func NewJSONWriter(w io.WriteCloser) *JSONWriter {
	return &JSONWriter{buf: bufio.NewWriter(w), closer: w, stats: newStats()}
}

// NewJSONLinesWriter creates a writer producing newline-delimited JSON.
func NewJSONLinesWriter(w io.WriteCloser) *JSONWriter {
	j := NewJSONWriter(w)
	j.lines = true
	return j
}

// Write implements core.DataSink.
func (j *JSONWriter) Write(ctx context.Context, record core.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return &WriterError{Sink: "json", Op: "write", Err: err}
	}
	data, err := json.Marshal(sanitize(record))
	if err != nil {
		return &WriterError{Sink: "json", Op: "marshal", Err: err}
	}

	var sep string
	switch {
	case j.lines:
	case !j.written:
		sep = "["
	default:
		sep = ","
	}
	if _, err := j.buf.WriteString(sep); err != nil {
		return &WriterError{Sink: "json", Op: "write", Err: err}
	}
	if _, err := j.buf.Write(data); err != nil {
		return &WriterError{Sink: "json", Op: "write", Err: err}
	}
	if j.lines {
		if err := j.buf.WriteByte('\n'); err != nil {
			return &WriterError{Sink: "json", Op: "write", Err: err}
		}
	}

	j.written = true
	j.stats.countNulls(record)
	j.stats.RecordsWritten++
	return nil
}

// Flush implements core.DataSink.
func (j *JSONWriter) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.flushLocked()
}

func (j *JSONWriter) flushLocked() error {
	start := time.Now()
	if err := j.buf.Flush(); err != nil {
		return &WriterError{Sink: "json", Op: "flush", Err: err}
	}
	j.stats.flushed(start)
	return nil
}

// Close terminates the array, flushes and closes the underlying writer.
func (j *JSONWriter) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true
	if !j.lines {
		tail := "]\n"
		if !j.written {
			tail = "[]\n"
		}
		if _, err := j.buf.WriteString(tail); err != nil {
			return multierr.Append(&WriterError{Sink: "json", Op: "close", Err: err}, j.closer.Close())
		}
	}
	err := j.flushLocked()
	if j.closer != nil {
		err = multierr.Append(err, j.closer.Close())
	}
	return err
}

// Stats returns JSON writer statistics.
func (j *JSONWriter) Stats() WriterStats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stats.clone()
}

// sanitize replaces NaN and infinities, which JSON cannot encode, with null.
func sanitize(record core.Record) core.Record {
	for _, v := range record {
		if v != nil && core.IsNull(v) {
			out := make(core.Record, len(record))
			for k, v := range record {
				if core.IsNull(v) {
					v = nil
				}
				out[k] = v
			}
			return out
		}
	}
	return record
}
