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
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow/go/v12/parquet"

	"github.com/aaronlmathis/goxform/core"
)

// NewFormatReader decodes r with the reader for format. Parquet needs random
// access, so a stream that is not seekable is buffered in memory first.
func NewFormatReader(r io.Reader, format core.Format) (core.DataSource, error) {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}

	switch format {
	case core.FormatCSV:
		return NewCSVReader(rc)
	case core.FormatJSON, core.FormatJSONL:
		return NewJSONReader(rc), nil
	case core.FormatXLSX:
		return NewXLSXReader(rc)
	case core.FormatParquet:
		if ras, ok := r.(parquet.ReaderAtSeeker); ok {
			return NewParquetReaderFrom(ras, rc)
		}
		defer rc.Close()
		body, err := io.ReadAll(r)
		if err != nil {
			return nil, &ReaderError{Source: "parquet", Op: "buffer", Err: err}
		}
		return NewParquetReaderFrom(bytes.NewReader(body), nil)
	}
	return nil, fmt.Errorf("unsupported input format %q", format)
}

// OpenFile opens a local file with the reader matching its extension.
func OpenFile(path string) (core.DataSource, error) {
	format, err := core.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReaderError{Source: string(format), Op: "open_file", Err: err}
	}
	src, err := NewFormatReader(f, format)
	if err != nil {
		f.Close()
		return nil, err
	}
	return src, nil
}
