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
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aaronlmathis/goxform/core"
	"github.com/aaronlmathis/goxform/readers"
	"github.com/aaronlmathis/goxform/writers"
)

// OutputLocation creates a DataSink for a given format.
type OutputLocation interface {
	NewSink(ctx context.Context, format core.Format) (core.DataSink, error)
}

// FileLocation writes output to a local filesystem path.
type FileLocation struct {
	Path string
}

// NewSink creates (or truncates) the file and returns a writer for format.
func (f FileLocation) NewSink(_ context.Context, format core.Format) (core.DataSink, error) {
	file, err := os.Create(f.Path)
	if err != nil {
		return nil, err
	}
	sink, err := newSink(file, format)
	if err != nil {
		file.Close()
		os.Remove(f.Path)
		return nil, err
	}
	return sink, nil
}

// StreamLocation writes output to an already open stream, such as stdout.
// The stream is not closed.
type StreamLocation struct {
	W io.Writer
}

// NewSink returns a writer for format over the stream.
func (s StreamLocation) NewSink(_ context.Context, format core.Format) (core.DataSink, error) {
	return newSink(nopWriteCloser{s.W}, format)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// S3Putter is the subset of the S3 client used for uploads.
type S3Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Location writes one object to an S3 bucket. The object is buffered in
// memory and uploaded when the sink is closed.
type S3Location struct {
	Bucket string
	Key    string
	Client S3Putter
	Config readers.S3Config // used when Client is nil
}

type s3WriteCloser struct {
	ctx    context.Context
	buf    bytes.Buffer
	client S3Putter
	bucket string
	key    string
}

func (s *s3WriteCloser) Write(p []byte) (int, error) { return s.buf.Write(p) }

func (s *s3WriteCloser) Close() error {
	_, err := s.client.PutObject(s.ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(s.buf.Bytes()),
		ContentLength: aws.Int64(int64(s.buf.Len())),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}

// NewSink returns a writer that uploads to S3 on Close.
func (s S3Location) NewSink(ctx context.Context, format core.Format) (core.DataSink, error) {
	if s.Key == "" {
		return nil, fmt.Errorf("s3 output needs an object key")
	}
	client := s.Client
	if client == nil {
		c, err := readers.NewS3Client(ctx, s.Config)
		if err != nil {
			return nil, err
		}
		client = c
	}
	return newSink(&s3WriteCloser{ctx: ctx, client: client, bucket: s.Bucket, key: s.Key}, format)
}

func newSink(w io.WriteCloser, format core.Format) (core.DataSink, error) {
	switch format {
	case core.FormatCSV:
		return writers.NewCSVWriter(w), nil
	case core.FormatJSON:
		return writers.NewJSONWriter(w), nil
	case core.FormatJSONL:
		return writers.NewJSONLinesWriter(w), nil
	case core.FormatParquet:
		return writers.NewParquetWriter(w), nil
	}
	return nil, fmt.Errorf("unsupported output format %q", format)
}

// Output resolves the location into an OutputLocation. Database locations
// cannot be written to.
func (l Location) Output(s3cfg readers.S3Config) (OutputLocation, error) {
	switch l.Scheme {
	case SchemeFile:
		return FileLocation{Path: l.Path}, nil
	case SchemeStdio:
		return StreamLocation{W: os.Stdout}, nil
	case SchemeS3:
		return S3Location{Bucket: l.Bucket, Key: l.Key, Config: s3cfg}, nil
	}
	return nil, fmt.Errorf("location scheme %q cannot be written", l.Scheme)
}

// OutputFormat picks the output format: the explicit name when given, else
// the location's extension, else JSON.
func OutputFormat(l Location, explicit string) (core.Format, error) {
	if explicit != "" {
		return core.ParseFormat(explicit)
	}
	path := l.Path
	if l.Scheme == SchemeS3 {
		path = l.Key
	}
	if path == "" {
		return core.FormatJSON, nil
	}
	return core.FormatFromPath(path)
}
