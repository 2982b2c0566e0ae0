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
	"fmt"
)

// PipelineBuilder provides a fluent API for constructing chained transformations.
// Use NewPipeline() to create a new builder, then chain Aggregate, Filter,
// Normalize, Pivot and configuration methods.
//
// Example usage:
//
//	pipeline, err := goxform.NewPipeline().
//	    Filter(goxform.Params{"conditions": cond}).
//	    Aggregate(goxform.Params{"group_by": "region"}).
//	    Build()
//	if err != nil { log.Fatal(err) }
//	res, err := pipeline.Execute(ctx, data)
type PipelineBuilder struct {
	pipeline *Pipeline
	err      error
}

// NewPipeline creates a new PipelineBuilder backed by a default Engine.
func NewPipeline() *PipelineBuilder {
	return &PipelineBuilder{
		pipeline: &Pipeline{
			steps: make([]Step, 0),
		},
	}
}

// WithEngine sets the engine the pipeline runs on.
func (pb *PipelineBuilder) WithEngine(engine *Engine) *PipelineBuilder {
	pb.pipeline.engine = engine
	return pb
}

// Then appends a step of any type.
func (pb *PipelineBuilder) Then(t TransformationType, params Params) *PipelineBuilder {
	pb.pipeline.steps = append(pb.pipeline.steps, Step{Type: t, Parameters: params})
	return pb
}

// ThenNamed appends a step given by its wire name. An unknown name is
// reported by Build.
func (pb *PipelineBuilder) ThenNamed(name string, params Params) *PipelineBuilder {
	t := TransformationType(name)
	if !t.Valid() && pb.err == nil {
		pb.err = fmt.Errorf("step %d: unknown transformation type %q", len(pb.pipeline.steps)+1, name)
	}
	return pb.Then(t, params)
}

// Aggregate appends an aggregate step.
func (pb *PipelineBuilder) Aggregate(params Params) *PipelineBuilder {
	return pb.Then(Aggregate, params)
}

// Filter appends a filter step.
func (pb *PipelineBuilder) Filter(params Params) *PipelineBuilder {
	return pb.Then(Filter, params)
}

// Normalize appends a normalize step.
func (pb *PipelineBuilder) Normalize(params Params) *PipelineBuilder {
	return pb.Then(Normalize, params)
}

// Pivot appends a pivot step.
func (pb *PipelineBuilder) Pivot(params Params) *PipelineBuilder {
	return pb.Then(Pivot, params)
}

// Build validates and constructs the Pipeline from the builder.
//
// Returns an error if no steps were added or a step name was not recognized.
func (pb *PipelineBuilder) Build() (*Pipeline, error) {
	if pb.err != nil {
		return nil, pb.err
	}
	if len(pb.pipeline.steps) == 0 {
		return nil, fmt.Errorf("pipeline requires at least one step")
	}
	if pb.pipeline.engine == nil {
		pb.pipeline.engine = New()
	}
	return pb.pipeline, nil
}

// Pipeline is an ordered, reusable list of transformation steps.
type Pipeline struct {
	steps  []Step
	engine *Engine
}

// Steps returns a copy of the pipeline's steps.
func (p *Pipeline) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Execute runs the pipeline over data with fail-fast semantics; see Engine.RunChain.
func (p *Pipeline) Execute(ctx context.Context, data Dataset) (*ChainResult, error) {
	return p.engine.RunChain(ctx, data, p.steps)
}
