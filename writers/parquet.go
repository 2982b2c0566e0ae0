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
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/aaronlmathis/goxform/core"
)

// ParquetWriterOptions configures the Parquet writer.
type ParquetWriterOptions struct {
	// BatchSize is the number of records per row group. Zero buffers every
	// record until Close, which lets the schema be inferred from all of them.
	BatchSize   int
	Compression compress.Compression
}

// WriterOptionParquet represents a configuration function.
type WriterOptionParquet func(*ParquetWriterOptions)

func WithParquetBatchSize(size int) WriterOptionParquet {
	return func(opts *ParquetWriterOptions) { opts.BatchSize = size }
}

func WithCompression(c compress.Compression) WriterOptionParquet {
	return func(opts *ParquetWriterOptions) { opts.Compression = c }
}

// ParquetWriter implements core.DataSink for Parquet. The Arrow schema is
// inferred from the first batch: integer columns become int64, columns mixing
// integers and floats become float64, and columns mixing other kinds or
// holding only nulls become strings.
type ParquetWriter struct {
	mu      sync.Mutex
	out     io.Writer
	closer  io.Closer
	opts    ParquetWriterOptions
	writer  *pqarrow.FileWriter
	schema  *arrow.Schema
	pending []core.Record
	stats   WriterStats
	closed  bool
}

// NewParquetWriter creates a writer over w. w is closed by Close.
func NewParquetWriter(w io.WriteCloser, options ...WriterOptionParquet) *ParquetWriter {
	opts := ParquetWriterOptions{Compression: compress.Codecs.Snappy}
	for _, opt := range options {
		opt(&opts)
	}
	return &ParquetWriter{
		out:    writeOnly{w},
		closer: w,
		opts:   opts,
		stats:  newStats(),
	}
}

// NewParquetFileWriter creates filename and writes Parquet to it.
func NewParquetFileWriter(filename string, options ...WriterOptionParquet) (*ParquetWriter, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, &WriterError{Sink: "parquet", Op: "create_file", Err: err}
	}
	return NewParquetWriter(f, options...), nil
}

// writeOnly hides Close so that the Parquet footer writer cannot close the
// destination before ParquetWriter does.
type writeOnly struct{ io.Writer }

// Write implements core.DataSink.
func (p *ParquetWriter) Write(ctx context.Context, record core.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return &WriterError{Sink: "parquet", Op: "write", Err: err}
	}
	if p.closed {
		return &WriterError{Sink: "parquet", Op: "write", Err: fmt.Errorf("writer is closed")}
	}
	p.pending = append(p.pending, record)
	p.stats.countNulls(record)
	p.stats.RecordsWritten++

	if p.opts.BatchSize > 0 && len(p.pending) >= p.opts.BatchSize {
		return p.flushLocked()
	}
	return nil
}

// Flush writes buffered records as a row group. With a zero BatchSize records
// stay buffered until Close.
func (p *ParquetWriter) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.opts.BatchSize == 0 {
		return nil
	}
	return p.flushLocked()
}

// Close writes remaining records and the file footer, then closes the
// destination. An empty writer produces a file with an empty schema.
func (p *ParquetWriter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.flushLocked(); err != nil {
		p.closer.Close()
		return err
	}
	if p.writer == nil {
		if err := p.open(arrow.NewSchema(nil, nil)); err != nil {
			p.closer.Close()
			return err
		}
	}
	if err := p.writer.Close(); err != nil {
		p.closer.Close()
		return &WriterError{Sink: "parquet", Op: "close_writer", Err: err}
	}
	return p.closer.Close()
}

// Schema returns the inferred schema, or nil before the first flush.
func (p *ParquetWriter) Schema() *arrow.Schema {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.schema
}

// Stats returns Parquet writer statistics.
func (p *ParquetWriter) Stats() WriterStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats.clone()
}

func (p *ParquetWriter) open(schema *arrow.Schema) error {
	props := parquet.NewWriterProperties(parquet.WithCompression(p.opts.Compression))
	w, err := pqarrow.NewFileWriter(schema, p.out, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return &WriterError{Sink: "parquet", Op: "create_writer", Err: err}
	}
	p.writer = w
	p.schema = schema
	return nil
}

func (p *ParquetWriter) flushLocked() error {
	if len(p.pending) == 0 {
		return nil
	}
	start := time.Now()

	if p.writer == nil {
		if err := p.open(inferSchema(p.pending)); err != nil {
			return err
		}
	}

	rec, err := p.buildRecord(p.pending)
	if err != nil {
		return err
	}
	defer rec.Release()

	if err := p.writer.Write(rec); err != nil {
		return &WriterError{Sink: "parquet", Op: "write_batch", Err: err}
	}
	p.pending = p.pending[:0]
	p.stats.flushed(start)
	return nil
}

func (p *ParquetWriter) buildRecord(records []core.Record) (arrow.Record, error) {
	b := array.NewRecordBuilder(memory.NewGoAllocator(), p.schema)
	defer b.Release()

	for _, rec := range records {
		for key := range rec {
			if len(p.schema.FieldIndices(key)) == 0 {
				return nil, &WriterError{Sink: "parquet", Op: "append_value", Err: fmt.Errorf("column %q is not in the schema", key)}
			}
		}
		for i, field := range p.schema.Fields() {
			if err := appendValue(b.Field(i), rec[field.Name]); err != nil {
				return nil, &WriterError{Sink: "parquet", Op: "append_value", Err: fmt.Errorf("column %q: %w", field.Name, err)}
			}
		}
	}
	return b.NewRecord(), nil
}

func appendValue(builder array.Builder, value interface{}) error {
	if core.IsNull(value) {
		builder.AppendNull()
		return nil
	}
	switch b := builder.(type) {
	case *array.BooleanBuilder:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		b.Append(v)
	case *array.Int64Builder:
		if !core.IsNumber(value) {
			return fmt.Errorf("expected integer, got %T", value)
		}
		f, _ := core.ToFloat(value)
		if f != math.Trunc(f) {
			return fmt.Errorf("expected integer, got %v", value)
		}
		if i, ok := value.(int64); ok {
			b.Append(i)
		} else {
			b.Append(int64(f))
		}
	case *array.Float64Builder:
		f, ok := core.ToFloat(value)
		if !ok || !core.IsNumber(value) {
			return fmt.Errorf("expected number, got %T", value)
		}
		b.Append(f)
	case *array.StringBuilder:
		b.Append(core.FormatValue(value))
	default:
		return fmt.Errorf("unsupported builder %T", builder)
	}
	return nil
}

type columnKind int

const (
	kindNull columnKind = iota
	kindBool
	kindInt
	kindFloat
	kindString
)

func kindOf(v interface{}) columnKind {
	switch x := v.(type) {
	case bool:
		return kindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return kindInt
	case float32, float64:
		if core.IsNull(x) {
			return kindNull
		}
		return kindFloat
	case nil:
		return kindNull
	}
	return kindString
}

func mergeKinds(a, b columnKind) columnKind {
	switch {
	case a == b || b == kindNull:
		return a
	case a == kindNull:
		return b
	case (a == kindInt && b == kindFloat) || (a == kindFloat && b == kindInt):
		return kindFloat
	}
	return kindString
}

func inferSchema(records []core.Record) *arrow.Schema {
	kinds := make(map[string]columnKind)
	for _, rec := range records {
		for k, v := range rec {
			kinds[k] = mergeKinds(kinds[k], kindOf(v))
		}
	}
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)

	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		var dt arrow.DataType
		switch kinds[name] {
		case kindBool:
			dt = arrow.FixedWidthTypes.Boolean
		case kindInt:
			dt = arrow.PrimitiveTypes.Int64
		case kindFloat:
			dt = arrow.PrimitiveTypes.Float64
		default:
			dt = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: name, Type: dt, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}
