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

package core

import (
	"errors"
	"fmt"
)

// Package core defines the error types for the GoXform library.
//
// Every rejection caused by the caller's dataset or parameters is a *TransformError
// carrying an ErrorKind. Chained runs wrap the failing step's error in a *StepError.
// Faults that are not the caller's doing surface as *InternalError.

// ErrorKind classifies a TransformError.
type ErrorKind string

const (
	UnknownColumn         ErrorKind = "UnknownColumnError"
	UnknownOperator       ErrorKind = "UnknownOperatorError"
	UnknownAggFunc        ErrorKind = "UnknownAggFuncError"
	MissingColumns        ErrorKind = "MissingColumnsError"
	NoValidAggregation    ErrorKind = "NoValidAggregationError"
	NoNumericColumns      ErrorKind = "NoNumericColumnsError"
	UnknownTransformation ErrorKind = "UnknownTransformationError"
	UnknownMethod         ErrorKind = "UnknownMethodError"
	EmptyDataset          ErrorKind = "EmptyDatasetError"
	InvalidParameter      ErrorKind = "InvalidParameterError"
)

// Sentinels for use with errors.Is. Matching is by kind only.
var (
	ErrUnknownColumn         = &TransformError{Kind: UnknownColumn}
	ErrUnknownOperator       = &TransformError{Kind: UnknownOperator}
	ErrUnknownAggFunc        = &TransformError{Kind: UnknownAggFunc}
	ErrMissingColumns        = &TransformError{Kind: MissingColumns}
	ErrNoValidAggregation    = &TransformError{Kind: NoValidAggregation}
	ErrNoNumericColumns      = &TransformError{Kind: NoNumericColumns}
	ErrUnknownTransformation = &TransformError{Kind: UnknownTransformation}
	ErrUnknownMethod         = &TransformError{Kind: UnknownMethod}
	ErrEmptyDataset          = &TransformError{Kind: EmptyDataset}
	ErrInvalidParameter      = &TransformError{Kind: InvalidParameter}
)

// ErrOverflow reports a numeric result too large to represent.
var ErrOverflow = errors.New("numeric overflow")

// TransformError reports a transformation rejected because of its input.
type TransformError struct {
	Kind    ErrorKind
	Message string
	// Columns holds the offending column names, when the kind is about columns.
	Columns []string
}

// NewError builds a TransformError with a formatted message.
func NewError(kind ErrorKind, format string, args ...interface{}) *TransformError {
	return &TransformError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithColumns attaches the offending column names.
func (e *TransformError) WithColumns(cols ...string) *TransformError {
	e.Columns = append([]string(nil), cols...)
	return e
}

func (e *TransformError) Error() string {
	if e.Message == "" {
		return "transformation failed: " + string(e.Kind)
	}
	return "transformation failed: " + e.Message
}

// Is matches any TransformError of the same kind.
func (e *TransformError) Is(target error) bool {
	t, ok := target.(*TransformError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// StepError identifies the failing step of a chained run.
type StepError struct {
	// Step is the 1-based position of the failing step.
	Step int
	Type TransformationType
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("transformation failed at step %d (%s): %v", e.Step, e.Type, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// InternalError wraps an unexpected fault raised while running an operation.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in %s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first TransformError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var te *TransformError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}
