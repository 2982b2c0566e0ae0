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

// Package api exposes the transformation engine over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/aaronlmathis/goxform"
	"github.com/aaronlmathis/goxform/internal/config"
	"github.com/aaronlmathis/goxform/internal/observability"
	"github.com/aaronlmathis/goxform/validators"
)

// Server wires the engine, validation, logging and metrics into an HTTP handler.
type Server struct {
	cfg       config.Config
	engine    *goxform.Engine
	validator *validators.RequestValidator
	logger    observability.Logger
	metrics   *observability.Metrics
	registry  *prometheus.Registry
	catalog   Catalog
	now       func() time.Time
}

// NewServer builds a Server. A nil logger discards output.
func NewServer(cfg config.Config, logger observability.Logger) *Server {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	metrics.Init()

	return &Server{
		cfg: cfg,
		engine: goxform.New(
			goxform.WithLogger(logger.Zap()),
			goxform.WithObserver(metrics),
		),
		validator: validators.NewRequestValidator(cfg.Limits.MaxRecords),
		logger:    logger,
		metrics:   metrics,
		registry:  registry,
		catalog:   NewCatalog(),
		now:       time.Now,
	}
}

// Router builds the gin engine with every route and middleware installed.
func (s *Server) Router() *gin.Engine {
	if s.cfg.Server.Mode != "" {
		gin.SetMode(s.cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(
		RequestLogging(s.logger),
		Recovery(s.logger),
		RequestMetrics(s.metrics),
		BodyLimit(s.cfg.Limits.MaxBodyBytes),
	)

	g := r.Group(s.cfg.Server.BasePath)
	g.POST("/transform/", s.handleTransform)
	g.POST("/batch-transform/", s.handleBatchTransform)
	g.GET("/health/", s.handleHealth)
	g.GET("/types/", s.handleTypes)

	if s.cfg.Metrics.Enabled {
		r.GET(s.cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}
	return r
}

// Handler returns the router wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: s.cfg.CORS.AllowCredentials,
	})
	return c.Handler(s.Router())
}

// HTTPServer returns an http.Server configured from the server settings.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
	}
}
