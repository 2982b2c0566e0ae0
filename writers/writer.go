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

// Package writers provides DataSink implementations that serialize datasets
// to CSV, JSON and Parquet.
package writers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/aaronlmathis/goxform/core"
)

// WriterError wraps structured error information for writer operations.
type WriterError struct {
	Sink string // Writer kind, e.g. "csv", "parquet"
	Op   string // Operation that failed, e.g. "write_header", "flush"
	Err  error
}

func (e *WriterError) Error() string {
	return fmt.Sprintf("%s writer %s: %v", e.Sink, e.Op, e.Err)
}

func (e *WriterError) Unwrap() error {
	return e.Err
}

// WriterStats holds statistics about a writer's progress.
type WriterStats struct {
	RecordsWritten  int64
	FlushCount      int64
	FlushDuration   time.Duration
	LastFlushTime   time.Time
	NullValueCounts map[string]int64
}

func newStats() WriterStats {
	return WriterStats{NullValueCounts: make(map[string]int64)}
}

func (s *WriterStats) countNulls(rec core.Record) {
	for k, v := range rec {
		if core.IsNull(v) {
			s.NullValueCounts[k]++
		}
	}
}

func (s *WriterStats) flushed(start time.Time) {
	s.FlushCount++
	s.LastFlushTime = time.Now()
	s.FlushDuration += time.Since(start)
}

func (s WriterStats) clone() WriterStats {
	out := s
	out.NullValueCounts = make(map[string]int64, len(s.NullValueCounts))
	for k, v := range s.NullValueCounts {
		out.NullValueCounts[k] = v
	}
	return out
}

// WriteDataset writes every record to sink, then flushes and closes it. The
// sink is closed even when a write fails.
func WriteDataset(ctx context.Context, sink core.DataSink, data core.Dataset) (err error) {
	defer func() {
		err = multierr.Append(err, sink.Close())
	}()

	for i, rec := range data {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.Write(ctx, rec); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	return sink.Flush()
}
