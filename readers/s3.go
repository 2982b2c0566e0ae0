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
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aaronlmathis/goxform/core"
)

// S3Config describes how to reach an S3 or S3-compatible endpoint.
type S3Config struct {
	Region          string
	Profile         string
	EndpointURL     string // Custom endpoint for S3-compatible services
	ForcePathStyle  bool
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// NewS3Client builds an S3 client from the default AWS configuration chain,
// overridden by any explicit settings in cfg.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}), nil
}

// S3API is the subset of the S3 client used by the reader.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3ReaderStats extends ReaderStats with object level counters.
type S3ReaderStats struct {
	ReaderStats
	ObjectsListed  int64
	ObjectsRead    int64
	BytesRead      int64
	ProcessedFiles []string
}

// S3Reader implements core.DataSource for one object or every object under a
// prefix. Each object is decoded by the reader matching its extension, and
// objects are read in key order.
type S3Reader struct {
	mu      sync.Mutex
	client  S3API
	bucket  string
	keys    []string
	next    int
	current core.DataSource
	stats   S3ReaderStats
}

// NewS3Reader lists the objects to read. A key ending in "/" or an empty key
// is treated as a prefix; anything else names a single object.
func NewS3Reader(ctx context.Context, client S3API, bucket, key string) (*S3Reader, error) {
	if bucket == "" {
		return nil, &ReaderError{Source: "s3", Op: "validate", Err: fmt.Errorf("bucket is required")}
	}
	r := &S3Reader{
		client: client,
		bucket: bucket,
		stats:  S3ReaderStats{ReaderStats: newStats()},
	}

	if key != "" && !strings.HasSuffix(key, "/") {
		r.keys = []string{key}
	} else {
		keys, err := r.list(ctx, key)
		if err != nil {
			return nil, &ReaderError{Source: "s3", Op: "list_objects", Err: err}
		}
		r.keys = keys
	}
	r.stats.ObjectsListed = int64(len(r.keys))
	return r, nil
}

func (r *S3Reader) list(ctx context.Context, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(r.bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if _, err := core.FormatFromPath(key); err == nil {
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Read implements core.DataSource.
func (r *S3Reader) Read(ctx context.Context) (core.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	for {
		if err := checkContext(ctx, "s3"); err != nil {
			return nil, err
		}
		if r.current == nil {
			if r.next >= len(r.keys) {
				return nil, io.EOF
			}
			if err := r.open(ctx, r.keys[r.next]); err != nil {
				return nil, err
			}
		}

		rec, err := r.current.Read(ctx)
		if err == io.EOF {
			if cerr := r.closeCurrent(); cerr != nil {
				return nil, &ReaderError{Source: "s3", Op: "close_object", Err: cerr}
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		r.stats.observe(start)
		return rec, nil
	}
}

func (r *S3Reader) open(ctx context.Context, key string) error {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return &ReaderError{Source: "s3", Op: "get_object", Err: fmt.Errorf("%s: %w", key, err)}
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return &ReaderError{Source: "s3", Op: "read_object", Err: fmt.Errorf("%s: %w", key, err)}
	}
	format, err := core.FormatFromPath(key)
	if err != nil {
		return &ReaderError{Source: "s3", Op: "detect_format", Err: err}
	}
	src, err := NewFormatReader(bytes.NewReader(body), format)
	if err != nil {
		return err
	}

	r.current = src
	r.stats.ObjectsRead++
	r.stats.BytesRead += int64(len(body))
	r.stats.ProcessedFiles = append(r.stats.ProcessedFiles, key)
	return nil
}

func (r *S3Reader) closeCurrent() error {
	if r.current == nil {
		return nil
	}
	err := r.current.Close()
	r.current = nil
	r.next++
	return err
}

// Keys returns the object keys the reader will visit.
func (r *S3Reader) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Stats returns S3 reader statistics.
func (r *S3Reader) Stats() S3ReaderStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.stats
	out.ReaderStats = r.stats.ReaderStats.clone()
	out.ProcessedFiles = append([]string(nil), r.stats.ProcessedFiles...)
	return out
}

// Close implements core.DataSource.
func (r *S3Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		err := r.current.Close()
		r.current = nil
		return err
	}
	return nil
}
