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
	"time"

	"github.com/aaronlmathis/goxform/core"
)

// Package goxform applies tabular transformations (aggregate, filter, normalize,
// pivot) to in-memory datasets.
//
// This file re-exports the core types so that most callers only import this package.

type (
	// Record is a single row: column name to scalar value.
	Record = core.Record
	// Dataset is an ordered sequence of records with a uniform key set.
	Dataset = core.Dataset
	// Params are the decoded parameters of one transformation.
	Params = core.Params
	// Metadata describes a transformation result.
	Metadata = core.Metadata
	// Result is the output of a single transformation.
	Result = core.Result
	// Operation is a whole-dataset transformation.
	Operation = core.Operation
	// TransformationType names a supported transformation.
	TransformationType = core.TransformationType
)

// Supported transformation types.
const (
	Aggregate = core.TypeAggregate
	Filter    = core.TypeFilter
	Normalize = core.TypeNormalize
	Pivot     = core.TypePivot
)

// Observer is notified after every operation run by an Engine. Implementations
// must be safe for concurrent use.
type Observer interface {
	// OperationFinished reports one completed or failed operation.
	OperationFinished(t TransformationType, rowsIn, rowsOut int, elapsed time.Duration, err error)
}

// ObserverFunc is a function adapter for the Observer interface.
type ObserverFunc func(t TransformationType, rowsIn, rowsOut int, elapsed time.Duration, err error)

// OperationFinished implements Observer for ObserverFunc.
func (f ObserverFunc) OperationFinished(t TransformationType, rowsIn, rowsOut int, elapsed time.Duration, err error) {
	f(t, rowsIn, rowsOut, elapsed, err)
}
