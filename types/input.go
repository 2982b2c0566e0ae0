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

package types

import (
	"context"
	"fmt"
	"os"

	"github.com/aaronlmathis/goxform/core"
	"github.com/aaronlmathis/goxform/readers"
)

// SourceOptions carries the settings some locations need to be read.
type SourceOptions struct {
	Query      string // SQL query for database locations
	Database   string // MongoDB database
	Collection string // MongoDB collection
	S3         readers.S3Config
}

// NewSource opens a DataSource for the location.
func (l Location) NewSource(ctx context.Context, opts SourceOptions) (core.DataSource, error) {
	switch l.Scheme {
	case SchemeFile:
		return readers.OpenFile(l.Path)
	case SchemeStdio:
		return readers.NewJSONReader(os.Stdin), nil
	case SchemeS3:
		client, err := readers.NewS3Client(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		return readers.NewS3Reader(ctx, client, l.Bucket, l.Key)
	case SchemePostgres, SchemeMySQL, SchemeSQLite:
		if opts.Query == "" {
			return nil, fmt.Errorf("location %s needs a query", l.Scheme)
		}
		driver, dsn, err := readers.DriverDSN(l.Raw)
		if err != nil {
			return nil, err
		}
		return readers.NewSQLReader(ctx, readers.WithSQLDriver(driver, dsn), readers.WithSQLQuery(opts.Query))
	case SchemeMongo:
		return readers.NewMongoReader(ctx,
			readers.WithMongoURI(l.Raw),
			readers.WithMongoDB(opts.Database),
			readers.WithMongoCollection(opts.Collection),
		)
	}
	return nil, fmt.Errorf("location scheme %q cannot be read", l.Scheme)
}
