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
	"os"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/file"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/aaronlmathis/goxform/core"
)

// ParquetReaderOptions configures the Parquet reader.
type ParquetReaderOptions struct {
	BatchSize int64    // Rows decoded per Arrow record batch
	Columns   []string // Optional column projection
}

// ReaderOptionParquet represents a configuration function.
type ReaderOptionParquet func(*ParquetReaderOptions)

func WithBatchSize(size int64) ReaderOptionParquet {
	return func(opts *ParquetReaderOptions) { opts.BatchSize = size }
}

func WithColumns(columns ...string) ReaderOptionParquet {
	return func(opts *ParquetReaderOptions) {
		opts.Columns = append([]string(nil), columns...)
	}
}

// ParquetReader implements core.DataSource for Parquet data, decoding one
// Arrow record batch at a time.
type ParquetReader struct {
	closer       io.Closer
	recordReader pqarrow.RecordReader
	batch        arrow.Record
	row          int
	schema       *arrow.Schema
	stats        ReaderStats
}

// NewParquetReader opens a Parquet file by name.
func NewParquetReader(filename string, options ...ReaderOptionParquet) (*ParquetReader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &ReaderError{Source: "parquet", Op: "open_file", Err: err}
	}
	r, err := NewParquetReaderFrom(f, f, options...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// NewParquetReaderFrom reads Parquet from any random-access source. closer,
// when non-nil, is closed with the reader.
func NewParquetReaderFrom(src parquet.ReaderAtSeeker, closer io.Closer, options ...ReaderOptionParquet) (*ParquetReader, error) {
	opts := ParquetReaderOptions{BatchSize: 1024}
	for _, option := range options {
		option(&opts)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1024
	}

	pf, err := file.NewParquetReader(src)
	if err != nil {
		return nil, &ReaderError{Source: "parquet", Op: "create_reader", Err: err}
	}

	arrowReader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: opts.BatchSize}, memory.NewGoAllocator())
	if err != nil {
		return nil, &ReaderError{Source: "parquet", Op: "create_arrow_reader", Err: err}
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		return nil, &ReaderError{Source: "parquet", Op: "get_schema", Err: err}
	}

	var colIndices []int
	for _, name := range opts.Columns {
		idx := schema.FieldIndices(name)
		if len(idx) == 0 {
			return nil, &ReaderError{Source: "parquet", Op: "column_projection", Err: fmt.Errorf("column %q not found in schema", name)}
		}
		colIndices = append(colIndices, idx[0])
	}

	recordReader, err := arrowReader.GetRecordReader(context.Background(), colIndices, nil)
	if err != nil {
		return nil, &ReaderError{Source: "parquet", Op: "create_record_reader", Err: err}
	}

	return &ParquetReader{
		closer:       closer,
		recordReader: recordReader,
		schema:       schema,
		stats:        newStats(),
	}, nil
}

// Read implements core.DataSource.
func (p *ParquetReader) Read(ctx context.Context) (core.Record, error) {
	start := time.Now()
	if err := checkContext(ctx, "parquet"); err != nil {
		return nil, err
	}

	for p.batch == nil || p.row >= int(p.batch.NumRows()) {
		if p.batch != nil {
			p.batch.Release()
			p.batch = nil
		}
		batch, err := p.recordReader.Read()
		if err == io.EOF || (err == nil && batch == nil) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, &ReaderError{Source: "parquet", Op: "load_batch", Err: err}
		}
		batch.Retain()
		p.batch = batch
		p.row = 0
	}

	rec := make(core.Record, p.batch.NumCols())
	sch := p.batch.Schema()
	for i := 0; i < int(p.batch.NumCols()); i++ {
		name := sch.Field(i).Name
		v := columnValue(p.batch.Column(i), p.row)
		if v == nil {
			p.stats.NullValueCounts[name]++
		}
		rec[name] = v
	}
	p.row++
	p.stats.observe(start)
	return rec, nil
}

// Schema returns the Arrow schema of the Parquet data.
func (p *ParquetReader) Schema() *arrow.Schema {
	return p.schema
}

// Stats returns Parquet reader statistics.
func (p *ParquetReader) Stats() ReaderStats {
	return p.stats.clone()
}

// Close releases Arrow buffers and closes the underlying source.
func (p *ParquetReader) Close() error {
	if p.batch != nil {
		p.batch.Release()
		p.batch = nil
	}
	if p.recordReader != nil {
		p.recordReader.Release()
		p.recordReader = nil
	}
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

func columnValue(col arrow.Array, i int) interface{} {
	if col.IsNull(i) {
		return nil
	}
	switch arr := col.(type) {
	case *array.Boolean:
		return arr.Value(i)
	case *array.Int8:
		return int64(arr.Value(i))
	case *array.Int16:
		return int64(arr.Value(i))
	case *array.Int32:
		return int64(arr.Value(i))
	case *array.Int64:
		return arr.Value(i)
	case *array.Uint8:
		return int64(arr.Value(i))
	case *array.Uint16:
		return int64(arr.Value(i))
	case *array.Uint32:
		return int64(arr.Value(i))
	case *array.Uint64:
		return arr.Value(i)
	case *array.Float32:
		return scalar(arr.Value(i))
	case *array.Float64:
		return scalar(arr.Value(i))
	case *array.String:
		return arr.Value(i)
	case *array.LargeString:
		return arr.Value(i)
	case *array.Binary:
		return string(arr.Value(i))
	case *array.Timestamp:
		unit := arr.DataType().(*arrow.TimestampType).Unit
		return scalar(arr.Value(i).ToTime(unit))
	case *array.Date32:
		return arr.Value(i).ToTime().Format("2006-01-02")
	case *array.Date64:
		return arr.Value(i).ToTime().Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", col.GetOneForMarshal(i))
	}
}
