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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestBSONScalar tests conversion of BSON values to record scalars
func TestBSONScalar(t *testing.T) {
	id := primitive.NewObjectID()
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	dec, err := primitive.ParseDecimal128("12.5")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"object id", id, id.Hex()},
		{"datetime", primitive.NewDateTimeFromTime(when), "2024-03-01T12:00:00Z"},
		{"decimal", dec, 12.5},
		{"null", primitive.Null{}, nil},
		{"int32", int32(7), int32(7)},
		{"string", "north", "north"},
		{"document", bson.M{"a": int32(1)}, `{"a":1}`},
		{"ordered document", bson.D{{Key: "b", Value: "x"}}, `{"b":"x"}`},
		{"array", bson.A{"x", int32(2)}, `["x",2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bsonScalar(tt.in))
		})
	}
}

// TestMongoFindOptions tests that only set options reach the find call
func TestMongoFindOptions(t *testing.T) {
	opts := mongoFindOptions(MongoReaderOptions{
		Projection: bson.M{"_id": 0},
		Limit:      10,
		BatchSize:  100,
	})
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(10), *opts.Limit)
	require.NotNil(t, opts.BatchSize)
	assert.Equal(t, int32(100), *opts.BatchSize)
	assert.Equal(t, bson.M{"_id": 0}, opts.Projection)
	assert.Nil(t, opts.Sort)

	opts = mongoFindOptions(MongoReaderOptions{})
	assert.Nil(t, opts.Limit)
	assert.Nil(t, opts.BatchSize)
}

// TestNewMongoReader_Validation tests that missing settings fail before connecting
func TestNewMongoReader_Validation(t *testing.T) {
	_, err := NewMongoReader(context.Background(), WithMongoURI("mongodb://localhost:27017"))
	var re *ReaderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "validate", re.Op)
}
