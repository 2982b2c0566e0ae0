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
	"database/sql"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/aaronlmathis/goxform/core"
)

// Driver names registered by the imported database/sql drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// SQLReaderOptions configures the SQL reader.
type SQLReaderOptions struct {
	Driver       string
	DSN          string
	Query        string
	Args         []interface{}
	MaxOpenConns int
	QueryTimeout time.Duration
}

// SQLReaderOption represents a configuration function.
type SQLReaderOption func(*SQLReaderOptions)

func WithSQLDriver(driver, dsn string) SQLReaderOption {
	return func(o *SQLReaderOptions) {
		o.Driver = driver
		o.DSN = dsn
	}
}

func WithSQLQuery(query string, args ...interface{}) SQLReaderOption {
	return func(o *SQLReaderOptions) {
		o.Query = query
		o.Args = append([]interface{}(nil), args...)
	}
}

func WithSQLMaxOpenConns(n int) SQLReaderOption {
	return func(o *SQLReaderOptions) { o.MaxOpenConns = n }
}

func WithSQLQueryTimeout(timeout time.Duration) SQLReaderOption {
	return func(o *SQLReaderOptions) { o.QueryTimeout = timeout }
}

// SQLReader implements core.DataSource over a database/sql query result. It
// works with the PostgreSQL, MySQL and SQLite drivers linked into this package.
type SQLReader struct {
	mu      sync.Mutex
	db      *sql.DB
	ownsDB  bool
	rows    *sql.Rows
	cancel  context.CancelFunc
	columns []string
	values  []interface{}
	scan    []interface{}
	stats   ReaderStats
}

// NewSQLReader opens a connection, runs the query and prepares to stream rows.
func NewSQLReader(ctx context.Context, options ...SQLReaderOption) (*SQLReader, error) {
	var opts SQLReaderOptions
	for _, opt := range options {
		opt(&opts)
	}
	if opts.Driver == "" || opts.DSN == "" {
		return nil, &ReaderError{Source: "sql", Op: "validate", Err: fmt.Errorf("driver and dsn are required")}
	}

	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, &ReaderError{Source: "sql", Op: "connect", Err: err}
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	r, err := newSQLReader(ctx, db, opts)
	if err != nil {
		db.Close()
		return nil, err
	}
	r.ownsDB = true
	return r, nil
}

// NewSQLReaderFromDB runs a query against an existing pool. The pool is not
// closed by Close.
func NewSQLReaderFromDB(ctx context.Context, db *sql.DB, query string, args ...interface{}) (*SQLReader, error) {
	return newSQLReader(ctx, db, SQLReaderOptions{Query: query, Args: args})
}

func newSQLReader(ctx context.Context, db *sql.DB, opts SQLReaderOptions) (*SQLReader, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, &ReaderError{Source: "sql", Op: "validate", Err: fmt.Errorf("query is required")}
	}

	var cancel context.CancelFunc = func() {}
	if opts.QueryTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.QueryTimeout)
	}

	rows, err := db.QueryContext(ctx, opts.Query, opts.Args...)
	if err != nil {
		cancel()
		return nil, &ReaderError{Source: "sql", Op: "query", Err: err}
	}
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		cancel()
		return nil, &ReaderError{Source: "sql", Op: "columns", Err: err}
	}

	r := &SQLReader{
		db:      db,
		rows:    rows,
		cancel:  cancel,
		columns: columns,
		values:  make([]interface{}, len(columns)),
		scan:    make([]interface{}, len(columns)),
		stats:   newStats(),
	}
	for i := range r.scan {
		r.scan[i] = &r.values[i]
	}
	return r, nil
}

// Read implements core.DataSource.
func (r *SQLReader) Read(ctx context.Context) (core.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	if err := checkContext(ctx, "sql"); err != nil {
		return nil, err
	}
	if r.rows == nil {
		return nil, io.EOF
	}
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, &ReaderError{Source: "sql", Op: "next", Err: err}
		}
		return nil, io.EOF
	}
	if err := r.rows.Scan(r.scan...); err != nil {
		return nil, &ReaderError{Source: "sql", Op: "scan", Err: err}
	}

	rec := make(core.Record, len(r.columns))
	for i, name := range r.columns {
		v := scalar(r.values[i])
		if v == nil {
			r.stats.NullValueCounts[name]++
		}
		rec[name] = v
	}
	r.stats.observe(start)
	return rec, nil
}

// Columns returns the result column names.
func (r *SQLReader) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Stats returns SQL reader statistics.
func (r *SQLReader) Stats() ReaderStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats.clone()
}

// Close implements core.DataSource.
func (r *SQLReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.rows != nil {
		err = r.rows.Close()
		r.rows = nil
	}
	if r.cancel != nil {
		r.cancel()
	}
	if r.ownsDB && r.db != nil {
		if cerr := r.db.Close(); err == nil {
			err = cerr
		}
		r.db = nil
	}
	return err
}

// DriverDSN converts a database URL into a database/sql driver name and DSN.
// postgres:// and postgresql:// URLs are passed to lib/pq unchanged,
// mysql:// URLs are rewritten into the go-sql-driver form and sqlite:// URLs
// name a database file.
func DriverDSN(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse database url: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return DriverPostgres, raw, nil
	case "mysql":
		cfg := mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = u.Host
		cfg.DBName = strings.TrimPrefix(u.Path, "/")
		if u.User != nil {
			cfg.User = u.User.Username()
			cfg.Passwd, _ = u.User.Password()
		}
		cfg.ParseTime = true
		if len(u.Query()) > 0 {
			cfg.Params = make(map[string]string)
			for k, v := range u.Query() {
				cfg.Params[k] = v[0]
			}
		}
		return DriverMySQL, cfg.FormatDSN(), nil
	case "sqlite", "sqlite3":
		path := u.Opaque
		if path == "" {
			path = u.Host + u.Path
		}
		if path == "" {
			return "", "", fmt.Errorf("sqlite url %q names no database file", raw)
		}
		return DriverSQLite, path, nil
	}
	return "", "", fmt.Errorf("unsupported database scheme %q", u.Scheme)
}
