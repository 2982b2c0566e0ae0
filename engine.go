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

package goxform

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/aaronlmathis/goxform/aggregate"
	"github.com/aaronlmathis/goxform/core"
	"github.com/aaronlmathis/goxform/filter"
	"github.com/aaronlmathis/goxform/transform"
)

// Engine dispatches transformation requests to their operations.
//
// The set of operations is fixed at construction; an Engine holds no
// per-request state and is safe for concurrent use.
//
// Example usage:
//
//	engine := goxform.New(goxform.WithLogger(logger))
//	res, err := engine.Run(ctx, goxform.Aggregate, data, goxform.Params{
//	    "group_by":     []interface{}{"region"},
//	    "aggregations": map[string]interface{}{"sales": "sum"},
//	})
type Engine struct {
	operations map[TransformationType]Operation
	logger     *zap.Logger
	observer   Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-operation debug output and faults.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver registers an observer notified after every operation.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// New creates an Engine with the four built-in operations.
func New(opts ...Option) *Engine {
	e := &Engine{
		operations: map[TransformationType]Operation{
			Aggregate: core.OperationFunc(aggregate.Aggregate),
			Filter:    core.OperationFunc(filter.Apply),
			Normalize: core.OperationFunc(transform.Normalize),
			Pivot:     core.OperationFunc(aggregate.Pivot),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Types returns the transformation types this engine accepts.
func (e *Engine) Types() []TransformationType {
	return append([]TransformationType(nil), core.TransformationTypes...)
}

// Run applies a single transformation to data.
//
// Input problems are returned as *core.TransformError. A panic inside an
// operation is recovered and returned as *core.InternalError. data is never
// modified.
func (e *Engine) Run(ctx context.Context, t TransformationType, data Dataset, params Params) (*Result, error) {
	op, ok := e.operations[t]
	if !ok {
		return nil, core.NewError(core.UnknownTransformation, "unknown transformation type: %q", string(t))
	}
	if params == nil {
		params = Params{}
	}

	start := time.Now()
	res, err := e.apply(ctx, t, op, data, params)
	elapsed := time.Since(start)

	rowsOut := 0
	if res != nil {
		rowsOut = len(res.Data)
	}
	if e.observer != nil {
		e.observer.OperationFinished(t, len(data), rowsOut, elapsed, err)
	}
	if err != nil {
		e.logger.Debug("transformation failed",
			zap.String("transformation_type", t.String()),
			zap.Int("rows_in", len(data)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}
	e.logger.Debug("transformation completed",
		zap.String("transformation_type", t.String()),
		zap.Int("rows_in", len(data)),
		zap.Int("rows_out", rowsOut),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}

// RunNamed is Run with the transformation given by its wire name.
func (e *Engine) RunNamed(ctx context.Context, name string, data Dataset, params Params) (*Result, error) {
	t, err := core.ParseTransformationType(name)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, t, data, params)
}

func (e *Engine) apply(ctx context.Context, t TransformationType, op Operation, data Dataset, params Params) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("operation panicked",
				zap.String("transformation_type", t.String()),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			res = nil
			err = &core.InternalError{Op: t.String(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err = op.Apply(ctx, data, params)
	if err != nil && !expected(err) {
		e.logger.Error("operation failed unexpectedly",
			zap.String("transformation_type", t.String()),
			zap.Error(err),
		)
		return nil, &core.InternalError{Op: t.String(), Err: err}
	}
	if err == nil && res == nil {
		err = &core.InternalError{Op: t.String(), Err: fmt.Errorf("operation returned no result")}
	}
	if err == nil && res.Metadata == nil {
		res.Metadata = Metadata{}
	}
	return res, err
}

// expected reports whether err is a rejection of the caller's input or a
// cancellation, as opposed to a fault inside the operation.
func expected(err error) bool {
	var te *core.TransformError
	return errors.As(err, &te) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Step is one entry of a chained run.
type Step struct {
	Type       TransformationType `json:"transformation_type"`
	Parameters Params             `json:"parameters"`
}

// StepResult records the metadata of one successful chained step.
type StepResult struct {
	// Step is the 1-based position of the step in the chain.
	Step       int                `json:"step"`
	Type       TransformationType `json:"transformation_type"`
	Parameters Params             `json:"parameters"`
	Metadata   Metadata           `json:"metadata"`
}

// ChainResult is the output of a successful chained run.
type ChainResult struct {
	Data  Dataset      `json:"data"`
	Steps []StepResult `json:"transformation_steps"`
}

// RunChain applies steps in order, each consuming the previous step's output.
//
// The first failing step aborts the chain: the result is nil and the error is a
// *core.StepError naming the 1-based step and its type. Nothing is retried and
// metadata of earlier steps is discarded.
func (e *Engine) RunChain(ctx context.Context, data Dataset, steps []Step) (*ChainResult, error) {
	current := data
	results := make([]StepResult, 0, len(steps))

	for i, step := range steps {
		n := i + 1
		if err := ctx.Err(); err != nil {
			return nil, &core.StepError{Step: n, Type: step.Type, Err: err}
		}

		res, err := e.Run(ctx, step.Type, current, step.Parameters)
		if err != nil {
			e.logger.Debug("chain aborted",
				zap.Int("step", n),
				zap.String("transformation_type", step.Type.String()),
				zap.Error(err),
			)
			return nil, &core.StepError{Step: n, Type: step.Type, Err: err}
		}

		results = append(results, StepResult{
			Step:       n,
			Type:       step.Type,
			Parameters: step.Parameters,
			Metadata:   res.Metadata,
		})
		current = res.Data
	}

	if len(steps) == 0 {
		current = data.Clone()
	}
	return &ChainResult{Data: current, Steps: results}, nil
}
