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

package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aaronlmathis/goxform/core"
)

// Metrics contains Prometheus metrics for transformations and HTTP requests.
type Metrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
	rowsTotal         *prometheus.CounterVec
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goxform",
				Subsystem: "transform",
				Name:      "operations_total",
				Help:      "Total number of transformation operations",
			},
			[]string{"type", "result"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goxform",
				Subsystem: "transform",
				Name:      "operation_duration_seconds",
				Help:      "Duration of transformation operations in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .5, 1},
			},
			[]string{"type"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goxform",
				Subsystem: "transform",
				Name:      "errors_total",
				Help:      "Total number of transformation errors by kind",
			},
			[]string{"type", "error_kind"},
		),
		rowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goxform",
				Subsystem: "transform",
				Name:      "rows_total",
				Help:      "Rows consumed and produced by transformations",
			},
			[]string{"type", "direction"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goxform",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goxform",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

// Init pre-initializes label combinations so series appear before the first request.
func (m *Metrics) Init() {
	for _, t := range core.TransformationTypes {
		for _, result := range []string{"success", "error"} {
			m.operationsTotal.WithLabelValues(t.String(), result)
		}
		m.operationDuration.WithLabelValues(t.String())
	}
}

// OperationFinished records one engine operation. It satisfies goxform.Observer.
func (m *Metrics) OperationFinished(t core.TransformationType, rowsIn, rowsOut int, elapsed time.Duration, err error) {
	name := t.String()
	m.operationDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	m.rowsTotal.WithLabelValues(name, "in").Add(float64(rowsIn))
	if err != nil {
		m.operationsTotal.WithLabelValues(name, "error").Inc()
		m.errorsTotal.WithLabelValues(name, errorKind(err)).Inc()
		return
	}
	m.operationsTotal.WithLabelValues(name, "success").Inc()
	m.rowsTotal.WithLabelValues(name, "out").Add(float64(rowsOut))
}

// RecordRequest records one HTTP request.
func (m *Metrics) RecordRequest(route, method, status string, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(route, method, status).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func errorKind(err error) string {
	if kind, ok := core.KindOf(err); ok {
		return string(kind)
	}
	var internal *core.InternalError
	if errors.As(err, &internal) {
		return "InternalError"
	}
	return "other"
}
