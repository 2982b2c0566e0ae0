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

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/goxform/internal/config"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Server.Mode = gin.TestMode
	cfg.Limits.MaxRecords = 5
	s := NewServer(cfg, nil)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s, s.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

var salesBody = []map[string]interface{}{
	{"region": "North", "quarter": "Q1", "sales": 100},
	{"region": "South", "quarter": "Q1", "sales": 200},
	{"region": "North", "quarter": "Q2", "sales": 150},
}

// TestTransform_Aggregate tests a successful single transformation
func TestTransform_Aggregate(t *testing.T) {
	_, h := newTestServer(t)
	rec, out := do(t, h, http.MethodPost, "/api/v1/data/transform/", map[string]interface{}{
		"data":                salesBody,
		"transformation_type": "aggregate",
		"parameters": map[string]interface{}{
			"group_by":     []string{"region"},
			"aggregations": map[string]string{"sales": "sum"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Data transformed successfully using aggregate", out["message"])
	data := out["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, map[string]interface{}{"region": "North", "sales": 250.0}, data[0])
	assert.Contains(t, out, "processing_time_ms")
	assert.Equal(t, 3.0, out["metadata"].(map[string]interface{})["original_rows"])
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

// TestTransform_TransformError tests that input problems become 400 responses
func TestTransform_TransformError(t *testing.T) {
	_, h := newTestServer(t)
	rec, out := do(t, h, http.MethodPost, "/api/v1/data/transform/", map[string]interface{}{
		"data":                salesBody,
		"transformation_type": "filter",
		"parameters": map[string]interface{}{
			"conditions": map[string]interface{}{"field": "salary", "operator": "gt", "value": 1},
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "UnknownColumnError", out["error_kind"])
	assert.True(t, strings.HasPrefix(out["message"].(string), "transformation failed: "))
	assert.Empty(t, out["data"])
}

// TestTransform_ValidationErrors tests collaborator validation before the engine runs
func TestTransform_ValidationErrors(t *testing.T) {
	_, h := newTestServer(t)

	rec, out := do(t, h, http.MethodPost, "/api/v1/data/transform/", map[string]interface{}{
		"data":                []map[string]interface{}{},
		"transformation_type": "bogus",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid input data", out["message"])
	errs := out["errors"].(map[string]interface{})
	assert.Contains(t, errs, "data")
	assert.Contains(t, errs, "transformation_type")

	tooMany := make([]map[string]interface{}, 6)
	for i := range tooMany {
		tooMany[i] = map[string]interface{}{"v": i}
	}
	rec, _ = do(t, h, http.MethodPost, "/api/v1/data/transform/", map[string]interface{}{
		"data":                tooMany,
		"transformation_type": "normalize",
		"parameters":          map[string]interface{}{"columns": []string{"v"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestBatchTransform_Success tests a chained request end to end
func TestBatchTransform_Success(t *testing.T) {
	_, h := newTestServer(t)
	rec, out := do(t, h, http.MethodPost, "/api/v1/data/batch-transform/", map[string]interface{}{
		"data": salesBody,
		"transformations": []map[string]interface{}{
			{"transformation_type": "filter", "parameters": map[string]interface{}{
				"conditions": []map[string]interface{}{{"field": "quarter", "operator": "eq", "value": "Q1"}},
			}},
			{"transformation_type": "normalize", "parameters": map[string]interface{}{"columns": []string{"sales"}}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	steps := out["transformation_steps"].([]interface{})
	require.Len(t, steps, 2)
	first := steps[0].(map[string]interface{})
	assert.Equal(t, 1.0, first["step"])
	assert.Equal(t, "filter", first["transformation_type"])

	data := out["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, 0.0, data[0].(map[string]interface{})["sales"])
	assert.Equal(t, 1.0, data[1].(map[string]interface{})["sales"])
}

// TestBatchTransform_StepFailure tests that the failing step is identified
func TestBatchTransform_StepFailure(t *testing.T) {
	_, h := newTestServer(t)
	rec, out := do(t, h, http.MethodPost, "/api/v1/data/batch-transform/", map[string]interface{}{
		"data": salesBody,
		"transformations": []map[string]interface{}{
			{"transformation_type": "aggregate", "parameters": map[string]interface{}{"group_by": "region"}},
			{"transformation_type": "filter", "parameters": map[string]interface{}{
				"conditions": map[string]interface{}{"field": "nonexistent", "operator": "eq", "value": 1},
			}},
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2.0, out["step"])
	assert.Equal(t, "filter", out["transformation_type"])
	assert.True(t, strings.HasPrefix(out["error"].(string), "Transformation failed at step 2: "))
	assert.NotContains(t, out, "data")
}

// TestBatchTransform_StepProblemsAreTagged tests that unknown types and missing parameters name their step
func TestBatchTransform_StepProblemsAreTagged(t *testing.T) {
	_, h := newTestServer(t)
	tests := []struct {
		name string
		step map[string]interface{}
		kind string
	}{
		{"unknown type", map[string]interface{}{"transformation_type": "bogus", "parameters": map[string]interface{}{}}, "UnknownTransformationError"},
		{"missing conditions", map[string]interface{}{"transformation_type": "filter", "parameters": map[string]interface{}{}}, "InvalidParameterError"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := do(t, h, http.MethodPost, "/api/v1/data/batch-transform/", map[string]interface{}{
				"data": salesBody,
				"transformations": []map[string]interface{}{
					{"transformation_type": "aggregate", "parameters": map[string]interface{}{"group_by": "region"}},
					tt.step,
				},
			})
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 2.0, out["step"])
			assert.Equal(t, tt.step["transformation_type"], out["transformation_type"])
			assert.Equal(t, tt.kind, out["error_kind"])
			assert.True(t, strings.HasPrefix(out["error"].(string), "Transformation failed at step 2: "))
		})
	}
}

// TestTransform_Overflow tests that numeric overflow is an opaque internal error
func TestTransform_Overflow(t *testing.T) {
	_, h := newTestServer(t)
	rec, out := do(t, h, http.MethodPost, "/api/v1/data/transform/", map[string]interface{}{
		"data": []map[string]interface{}{
			{"g": "a", "v": 1e308},
			{"g": "a", "v": 1e308},
		},
		"transformation_type": "aggregate",
		"parameters": map[string]interface{}{
			"group_by":     []string{"g"},
			"aggregations": map[string]interface{}{"v": "sum"},
		},
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, internalMessage, out["message"])
	assert.NotContains(t, out, "error_kind")
}

// TestBatchTransform_MissingType tests validation of step entries
func TestBatchTransform_MissingType(t *testing.T) {
	_, h := newTestServer(t)
	rec, out := do(t, h, http.MethodPost, "/api/v1/data/batch-transform/", map[string]interface{}{
		"data":            salesBody,
		"transformations": []map[string]interface{}{{"parameters": map[string]interface{}{}}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["errors"], "transformations[1].transformation_type")
}

// TestHealthAndTypes tests the informational endpoints
func TestHealthAndTypes(t *testing.T) {
	_, h := newTestServer(t)

	rec, out := do(t, h, http.MethodGet, "/api/v1/data/health/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", out["status"])
	assert.Equal(t, "2025-06-01T12:00:00Z", out["timestamp"])

	rec, out = do(t, h, http.MethodGet, "/api/v1/data/types/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"aggregate", "filter", "normalize", "pivot"}, out["available_transformations"])
	assert.Contains(t, out["supported_operators"], "contains")
	details := out["transformation_details"].(map[string]interface{})
	pivot := details["pivot"].(map[string]interface{})
	assert.Equal(t, []interface{}{"index", "columns", "values"}, pivot["required_parameters"])
}

// TestMetricsEndpoint tests that transformation metrics are exposed
func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t)
	do(t, h, http.MethodPost, "/api/v1/data/transform/", map[string]interface{}{
		"data":                salesBody,
		"transformation_type": "pivot",
		"parameters":          map[string]interface{}{"index": "region", "columns": "quarter", "values": "sales"},
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `goxform_transform_operations_total{result="success",type="pivot"} 1`)
	assert.Contains(t, body, "goxform_http_requests_total")
}

// TestCORS tests that configured origins receive CORS headers
func TestCORS(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/data/transform/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
