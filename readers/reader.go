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

// Package readers provides DataSource implementations that load datasets from
// files, object storage and databases.
package readers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aaronlmathis/goxform/core"
)

// ReaderError wraps structured error information for reader operations.
type ReaderError struct {
	Source string // Reader kind, e.g. "csv", "parquet", "sql"
	Op     string // Operation that failed, e.g. "open", "read_record"
	Err    error
}

func (e *ReaderError) Error() string {
	return fmt.Sprintf("%s reader %s: %v", e.Source, e.Op, e.Err)
}

func (e *ReaderError) Unwrap() error {
	return e.Err
}

// ReaderStats holds statistics about a reader's progress.
type ReaderStats struct {
	RecordsRead     int64
	ReadDuration    time.Duration
	LastReadTime    time.Time
	NullValueCounts map[string]int64
}

func newStats() ReaderStats {
	return ReaderStats{NullValueCounts: make(map[string]int64)}
}

func (s *ReaderStats) observe(start time.Time) {
	s.RecordsRead++
	s.LastReadTime = time.Now()
	s.ReadDuration += time.Since(start)
}

func (s ReaderStats) clone() ReaderStats {
	out := s
	out.NullValueCounts = make(map[string]int64, len(s.NullValueCounts))
	for k, v := range s.NullValueCounts {
		out.NullValueCounts[k] = v
	}
	return out
}

// LoadDataset drains src into memory and closes it. A limit greater than zero
// caps the number of records; exceeding it is an error.
func LoadDataset(ctx context.Context, src core.DataSource, limit int) (core.Dataset, error) {
	defer src.Close()

	data := core.Dataset{}
	for {
		rec, err := src.Read(ctx)
		if errors.Is(err, io.EOF) {
			return data, nil
		}
		if err != nil {
			return nil, err
		}
		if limit > 0 && len(data) >= limit {
			return nil, fmt.Errorf("dataset exceeds %d records", limit)
		}
		data = append(data, rec)
	}
}

func checkContext(ctx context.Context, source string) error {
	select {
	case <-ctx.Done():
		return &ReaderError{Source: source, Op: "read", Err: ctx.Err()}
	default:
		return nil
	}
}

// inferValue turns a text cell into an int64, float64 or bool when it parses as
// one and anything else into the trimmed string. Empty cells and NaN or
// infinite literals become nil.
func inferValue(raw string) interface{} {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	}
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}

// scalar maps driver-specific values onto the scalar kinds records carry.
func scalar(v interface{}) interface{} {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return x
	case float32:
		return scalar(float64(x))
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return x
	case []byte:
		return inferValue(string(x))
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
