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
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aaronlmathis/goxform"
	"github.com/aaronlmathis/goxform/core"
	"github.com/aaronlmathis/goxform/validators"
)

// TransformRequest is the body of the transform endpoint.
type TransformRequest struct {
	Data               core.Dataset `json:"data"`
	TransformationType string       `json:"transformation_type"`
	Parameters         core.Params  `json:"parameters"`
}

// TransformResponse is returned by the transform endpoint.
type TransformResponse struct {
	Success          bool           `json:"success"`
	Message          string         `json:"message"`
	ErrorKind        core.ErrorKind `json:"error_kind,omitempty"`
	Data             core.Dataset   `json:"data"`
	Metadata         core.Metadata  `json:"metadata"`
	ProcessingTimeMs float64        `json:"processing_time_ms"`
}

// StepRequest is one entry of a batch request.
type StepRequest struct {
	TransformationType string      `json:"transformation_type"`
	Parameters         core.Params `json:"parameters"`
}

// BatchRequest is the body of the batch-transform endpoint.
type BatchRequest struct {
	Data            core.Dataset  `json:"data"`
	Transformations []StepRequest `json:"transformations"`
}

// BatchResponse is returned by a successful batch-transform call.
type BatchResponse struct {
	Success             bool                 `json:"success"`
	Message             string               `json:"message"`
	Data                core.Dataset         `json:"data"`
	TransformationSteps []goxform.StepResult `json:"transformation_steps"`
	ProcessingTimeMs    float64              `json:"processing_time_ms"`
}

// BatchError is returned when a batch step fails.
type BatchError struct {
	Error              string                  `json:"error"`
	ErrorKind          core.ErrorKind          `json:"error_kind,omitempty"`
	Step               int                     `json:"step"`
	TransformationType core.TransformationType `json:"transformation_type"`
}

const internalMessage = "An unexpected error occurred during transformation"

func (s *Server) handleTransform(c *gin.Context) {
	start := s.now()
	log := s.logger.WithContext(c.Request.Context())

	var req TransformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid input data",
			"errors":  gin.H{"non_field_errors": []string{err.Error()}},
		})
		return
	}
	if err := s.validator.ValidateTransform(req.Data, req.TransformationType, req.Parameters); err != nil {
		s.writeValidationError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.Server.RequestTimeout)
	defer cancel()

	// The validator has already checked the name.
	t := core.TransformationType(req.TransformationType)
	res, err := s.engine.Run(ctx, t, req.Data, req.Parameters)
	elapsed := elapsedMs(start, s.now())
	if err != nil {
		status, message := classify(err)
		if status >= 500 {
			log.Error("transformation error", zap.String("transformation_type", t.String()), zap.Error(err))
		}
		kind, _ := core.KindOf(err)
		c.JSON(status, TransformResponse{
			Success:          false,
			Message:          message,
			ErrorKind:        kind,
			Data:             core.Dataset{},
			Metadata:         core.Metadata{},
			ProcessingTimeMs: elapsed,
		})
		return
	}

	log.Info("transformation completed",
		zap.String("transformation_type", t.String()),
		zap.Int("rows_in", len(req.Data)),
		zap.Int("rows_out", len(res.Data)),
		zap.Float64("processing_time_ms", elapsed),
	)
	c.JSON(http.StatusOK, TransformResponse{
		Success:          true,
		Message:          fmt.Sprintf("Data transformed successfully using %s", t),
		Data:             res.Data,
		Metadata:         res.Metadata,
		ProcessingTimeMs: elapsed,
	})
}

func (s *Server) handleBatchTransform(c *gin.Context) {
	start := s.now()
	log := s.logger.WithContext(c.Request.Context())

	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	steps := make([]validators.Step, len(req.Transformations))
	for i, st := range req.Transformations {
		steps[i] = validators.Step{TransformationType: st.TransformationType, Parameters: st.Parameters}
	}
	if err := s.validator.ValidateChain(req.Data, steps); err != nil {
		var verr *validators.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data", "errors": verr.Fields()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chain := make([]goxform.Step, len(req.Transformations))
	for i, st := range req.Transformations {
		params := st.Parameters
		if params == nil {
			params = core.Params{}
		}
		chain[i] = goxform.Step{Type: core.TransformationType(st.TransformationType), Parameters: params}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.Server.RequestTimeout)
	defer cancel()

	res, err := s.engine.RunChain(ctx, req.Data, chain)
	if err != nil {
		var stepErr *core.StepError
		if errors.As(err, &stepErr) {
			status, message := classify(stepErr.Err)
			if status >= 500 {
				log.Error("batch step error", zap.Int("step", stepErr.Step), zap.Error(err))
			}
			kind, _ := core.KindOf(stepErr.Err)
			c.JSON(status, BatchError{
				Error:              fmt.Sprintf("Transformation failed at step %d: %s", stepErr.Step, message),
				ErrorKind:          kind,
				Step:               stepErr.Step,
				TransformationType: stepErr.Type,
			})
			return
		}
		log.Error("batch error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalMessage})
		return
	}

	elapsed := elapsedMs(start, s.now())
	log.Info("batch transformation completed",
		zap.Int("steps", len(res.Steps)),
		zap.Int("rows_in", len(req.Data)),
		zap.Int("rows_out", len(res.Data)),
		zap.Float64("processing_time_ms", elapsed),
	)
	c.JSON(http.StatusOK, BatchResponse{
		Success:             true,
		Message:             fmt.Sprintf("Batch transformation completed with %d steps", len(res.Steps)),
		Data:                res.Data,
		TransformationSteps: res.Steps,
		ProcessingTimeMs:    elapsed,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"message":   "Data transformation service is running",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleTypes(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog)
}

func (s *Server) writeValidationError(c *gin.Context, err error) {
	var verr *validators.ValidationError
	fields := map[string][]string{"non_field_errors": {err.Error()}}
	if errors.As(err, &verr) {
		fields = verr.Fields()
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "Invalid input data",
		"errors":  fields,
	})
}

// classify maps an engine error to an HTTP status and client-facing message.
// Only TransformError messages are shown verbatim.
func classify(err error) (int, string) {
	var te *core.TransformError
	switch {
	case errors.As(err, &te):
		return http.StatusBadRequest, te.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Transformation timed out"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "Transformation cancelled"
	}
	return http.StatusInternalServerError, internalMessage
}

func elapsedMs(start, end time.Time) float64 {
	return float64(end.Sub(start).Microseconds()) / 1000
}
