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
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aaronlmathis/goxform/core"
)

// MongoReaderOptions configures the MongoDB reader.
type MongoReaderOptions struct {
	URI            string
	Database       string
	Collection     string
	Filter         bson.M
	Projection     bson.M
	Sort           bson.D
	Limit          int64
	BatchSize      int32
	ConnectTimeout time.Duration
}

// ReaderOptionMongo represents a configuration function.
type ReaderOptionMongo func(*MongoReaderOptions)

func WithMongoURI(uri string) ReaderOptionMongo {
	return func(o *MongoReaderOptions) { o.URI = uri }
}

func WithMongoDB(database string) ReaderOptionMongo {
	return func(o *MongoReaderOptions) { o.Database = database }
}

func WithMongoCollection(collection string) ReaderOptionMongo {
	return func(o *MongoReaderOptions) { o.Collection = collection }
}

func WithMongoFilter(filter bson.M) ReaderOptionMongo {
	return func(o *MongoReaderOptions) { o.Filter = filter }
}

func WithMongoProjection(projection bson.M) ReaderOptionMongo {
	return func(o *MongoReaderOptions) { o.Projection = projection }
}

func WithMongoSort(sort bson.D) ReaderOptionMongo {
	return func(o *MongoReaderOptions) { o.Sort = sort }
}

func WithMongoLimit(limit int64) ReaderOptionMongo {
	return func(o *MongoReaderOptions) { o.Limit = limit }
}

func WithMongoBatchSize(size int32) ReaderOptionMongo {
	return func(o *MongoReaderOptions) { o.BatchSize = size }
}

// MongoReader implements core.DataSource over a find cursor. Documents are
// flattened one level: nested documents and arrays become JSON strings.
type MongoReader struct {
	client *mongo.Client
	cursor *mongo.Cursor
	stats  ReaderStats
}

// NewMongoReader connects, verifies the connection and opens the cursor.
func NewMongoReader(ctx context.Context, options ...ReaderOptionMongo) (*MongoReader, error) {
	opts := MongoReaderOptions{ConnectTimeout: 10 * time.Second, BatchSize: 1000}
	for _, opt := range options {
		opt(&opts)
	}
	if opts.URI == "" || opts.Database == "" || opts.Collection == "" {
		return nil, &ReaderError{Source: "mongo", Op: "validate", Err: fmt.Errorf("uri, database and collection are required")}
	}

	clientOpts := mongoClientOptions(opts.URI, opts.ConnectTimeout)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, &ReaderError{Source: "mongo", Op: "connect", Err: err}
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, &ReaderError{Source: "mongo", Op: "ping", Err: err}
	}

	findOpts := mongoFindOptions(opts)
	filter := opts.Filter
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := client.Database(opts.Database).Collection(opts.Collection).Find(ctx, filter, findOpts)
	if err != nil {
		client.Disconnect(ctx)
		return nil, &ReaderError{Source: "mongo", Op: "find", Err: err}
	}

	return &MongoReader{client: client, cursor: cursor, stats: newStats()}, nil
}

func mongoClientOptions(uri string, timeout time.Duration) *options.ClientOptions {
	clientOpts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		clientOpts.SetConnectTimeout(timeout)
		clientOpts.SetServerSelectionTimeout(timeout)
	}
	return clientOpts
}

func mongoFindOptions(opts MongoReaderOptions) *options.FindOptions {
	findOpts := options.Find()
	if opts.Projection != nil {
		findOpts.SetProjection(opts.Projection)
	}
	if opts.Sort != nil {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if opts.BatchSize > 0 {
		findOpts.SetBatchSize(opts.BatchSize)
	}
	return findOpts
}

// Read implements core.DataSource.
func (m *MongoReader) Read(ctx context.Context) (core.Record, error) {
	start := time.Now()
	if err := checkContext(ctx, "mongo"); err != nil {
		return nil, err
	}
	if m.cursor == nil {
		return nil, io.EOF
	}
	if !m.cursor.Next(ctx) {
		if err := m.cursor.Err(); err != nil {
			return nil, &ReaderError{Source: "mongo", Op: "next", Err: err}
		}
		return nil, io.EOF
	}

	var doc bson.M
	if err := m.cursor.Decode(&doc); err != nil {
		return nil, &ReaderError{Source: "mongo", Op: "decode", Err: err}
	}
	rec := make(core.Record, len(doc))
	for k, v := range doc {
		val := bsonScalar(v)
		if val == nil {
			m.stats.NullValueCounts[k]++
		}
		rec[k] = val
	}
	m.stats.observe(start)
	return rec, nil
}

// Stats returns MongoDB reader statistics.
func (m *MongoReader) Stats() ReaderStats {
	return m.stats.clone()
}

// Close closes the cursor and disconnects the client.
func (m *MongoReader) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	if m.cursor != nil {
		err = m.cursor.Close(ctx)
		m.cursor = nil
	}
	if m.client != nil {
		if derr := m.client.Disconnect(ctx); err == nil {
			err = derr
		}
		m.client = nil
	}
	return err
}

// bsonScalar converts BSON values to the scalar kinds records carry.
func bsonScalar(value interface{}) interface{} {
	switch v := value.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return scalar(v.Time())
	case primitive.Timestamp:
		return scalar(time.Unix(int64(v.T), 0))
	case primitive.Decimal128:
		return inferValue(v.String())
	case primitive.Binary:
		return string(v.Data)
	case primitive.Regex:
		return v.Pattern
	case primitive.Undefined, primitive.Null:
		return nil
	case bson.M, bson.D, bson.A, map[string]interface{}, []interface{}:
		b, err := json.Marshal(toJSONable(v))
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	default:
		return scalar(v)
	}
}

func toJSONable(value interface{}) interface{} {
	switch v := value.(type) {
	case bson.M:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = toJSONable(val)
		}
		return out
	case bson.D:
		out := make(map[string]interface{}, len(v))
		for _, e := range v {
			out[e.Key] = toJSONable(e.Value)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = toJSONable(val)
		}
		return out
	case []interface{}:
		return toJSONable(bson.A(v))
	case map[string]interface{}:
		return toJSONable(bson.M(v))
	default:
		return bsonScalar(v)
	}
}
