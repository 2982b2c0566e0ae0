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

// Package types resolves input and output locations, such as file paths,
// s3:// URLs and database URLs, into data sources and sinks.
package types

import (
	"fmt"
	"net/url"
	"strings"
)

// Scheme identifies the kind of storage a Location points at.
type Scheme string

const (
	SchemeFile     Scheme = "file"
	SchemeStdio    Scheme = "stdio"
	SchemeS3       Scheme = "s3"
	SchemePostgres Scheme = "postgres"
	SchemeMySQL    Scheme = "mysql"
	SchemeSQLite   Scheme = "sqlite"
	SchemeMongo    Scheme = "mongodb"
)

// Location is a parsed input or output address.
type Location struct {
	Raw    string
	Scheme Scheme
	Path   string // local file path
	Bucket string // s3 bucket
	Key    string // s3 object key or prefix
}

// ParseLocation parses raw. Plain paths are local files and "-" is stdin or stdout.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, fmt.Errorf("empty location")
	}
	if raw == "-" {
		return Location{Raw: raw, Scheme: SchemeStdio}, nil
	}
	i := strings.Index(raw, "://")
	if i < 0 {
		return Location{Raw: raw, Scheme: SchemeFile, Path: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parse location %q: %w", raw, err)
	}
	loc := Location{Raw: raw}
	switch strings.ToLower(u.Scheme) {
	case "file":
		loc.Scheme = SchemeFile
		loc.Path = u.Host + u.Path
	case "s3":
		if u.Host == "" {
			return Location{}, fmt.Errorf("location %q names no bucket", raw)
		}
		loc.Scheme = SchemeS3
		loc.Bucket = u.Host
		loc.Key = strings.TrimPrefix(u.Path, "/")
	case "postgres", "postgresql":
		loc.Scheme = SchemePostgres
	case "mysql":
		loc.Scheme = SchemeMySQL
	case "sqlite", "sqlite3":
		loc.Scheme = SchemeSQLite
	case "mongodb", "mongodb+srv":
		loc.Scheme = SchemeMongo
	default:
		return Location{}, fmt.Errorf("unsupported location scheme %q", u.Scheme)
	}
	return loc, nil
}

// IsDatabase reports whether the location is a SQL database or MongoDB.
func (l Location) IsDatabase() bool {
	switch l.Scheme {
	case SchemePostgres, SchemeMySQL, SchemeSQLite, SchemeMongo:
		return true
	}
	return false
}

func (l Location) String() string {
	return l.Raw
}
