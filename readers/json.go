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
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode"

	"github.com/aaronlmathis/goxform/core"
)

// JSONReader implements core.DataSource for JSON. It accepts either a single
// top-level array of objects or a stream of objects (JSON lines).
type JSONReader struct {
	dec     *json.Decoder
	closer  io.Closer
	array   bool
	started bool
	done    bool
	stats   ReaderStats
}

// NewJSONReader creates a JSON reader. The layout is detected from the first
// non-space byte.
func NewJSONReader(r io.ReadCloser) *JSONReader {
	br := bufio.NewReader(r)
	array := false
	for {
		b, err := br.Peek(1)
		if err != nil {
			break
		}
		if unicode.IsSpace(rune(b[0])) {
			br.ReadByte()
			continue
		}
		array = b[0] == '['
		break
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()
	return &JSONReader{dec: dec, closer: r, array: array, stats: newStats()}
}

// Read implements core.DataSource.
func (j *JSONReader) Read(ctx context.Context) (core.Record, error) {
	start := time.Now()
	if err := checkContext(ctx, "json"); err != nil {
		return nil, err
	}
	if j.done {
		return nil, io.EOF
	}

	if j.array && !j.started {
		if _, err := j.dec.Token(); err != nil {
			return nil, &ReaderError{Source: "json", Op: "read_array", Err: err}
		}
		j.started = true
	}
	if j.array && !j.dec.More() {
		j.done = true
		return nil, io.EOF
	}

	var raw map[string]interface{}
	if err := j.dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			j.done = true
			return nil, io.EOF
		}
		return nil, &ReaderError{Source: "json", Op: "decode", Err: err}
	}

	rec := make(core.Record, len(raw))
	for k, v := range raw {
		val, err := jsonScalar(v)
		if err != nil {
			return nil, &ReaderError{Source: "json", Op: "decode", Err: fmt.Errorf("field %q: %w", k, err)}
		}
		if val == nil {
			j.stats.NullValueCounts[k]++
		}
		rec[k] = val
	}
	j.stats.observe(start)
	return rec, nil
}

// Close implements core.DataSource.
func (j *JSONReader) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}

// Stats returns JSON reader statistics.
func (j *JSONReader) Stats() ReaderStats {
	return j.stats.clone()
}

func jsonScalar(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(x)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return x, nil
	}
}
