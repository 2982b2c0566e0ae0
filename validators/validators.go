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

// validators.go - request validation performed before a dataset reaches the engine
package validators

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/aaronlmathis/goxform/core"
)

// DefaultMaxRecords caps the number of records accepted in one request.
const DefaultMaxRecords = 10000

// RequiredParameters lists the parameter keys each transformation type needs.
var RequiredParameters = map[core.TransformationType][]string{
	core.TypeAggregate: {"group_by"},
	core.TypeFilter:    {"conditions"},
	core.TypeNormalize: {"columns"},
	core.TypePivot:     {"index", "columns", "values"},
}

// FieldError is a single validation failure attached to a request field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in a request.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid input data: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Fields groups the messages by field name.
func (e *ValidationError) Fields() map[string][]string {
	out := make(map[string][]string)
	for _, err := range multierr.Errors(e.Err) {
		var fe *FieldError
		if errors.As(err, &fe) {
			out[fe.Field] = append(out[fe.Field], fe.Message)
			continue
		}
		out["non_field_errors"] = append(out["non_field_errors"], err.Error())
	}
	return out
}

// RequestValidator checks the gross shape of a request: dataset size, key
// uniformity and required parameter keys. Semantic checks (unknown columns,
// operators and so on) are left to the operations.
type RequestValidator struct {
	MinRecords int // Minimum number of records required
	MaxRecords int // Maximum number of records allowed (0 = unlimited)
}

// NewRequestValidator returns a validator accepting 1 to maxRecords records.
func NewRequestValidator(maxRecords int) *RequestValidator {
	return &RequestValidator{MinRecords: 1, MaxRecords: maxRecords}
}

// ValidateDataset checks record count limits and that every record has the
// same keys as the first.
func (v *RequestValidator) ValidateDataset(data core.Dataset) error {
	return finish(v.datasetErrors(data))
}

// ValidateTransform validates a single-transformation request.
func (v *RequestValidator) ValidateTransform(data core.Dataset, transformationType string, params core.Params) error {
	err := v.datasetErrors(data)
	err = multierr.Append(err, typeAndParamErrors("transformation_type", "parameters", transformationType, params))
	return finish(err)
}

// Step is the unvalidated form of one chained step.
type Step struct {
	TransformationType string
	Parameters         core.Params
}

// ValidateChain validates a chained request: the dataset, and that every step
// names a type. Whether the type exists and its parameters fit is left to the
// chain run, so those failures are reported against their step. Step numbers
// in messages are 1-based.
func (v *RequestValidator) ValidateChain(data core.Dataset, steps []Step) error {
	err := v.datasetErrors(data)
	if len(steps) == 0 {
		err = multierr.Append(err, &FieldError{Field: "transformations", Message: "at least one transformation is required"})
	}
	for i, step := range steps {
		if strings.TrimSpace(step.TransformationType) == "" {
			err = multierr.Append(err, &FieldError{
				Field:   fmt.Sprintf("transformations[%d].transformation_type", i+1),
				Message: "this field is required",
			})
		}
	}
	return finish(err)
}

func (v *RequestValidator) datasetErrors(data core.Dataset) error {
	var err error
	count := len(data)
	if count < v.MinRecords || count == 0 {
		least := v.MinRecords
		if least < 1 {
			least = 1
		}
		err = multierr.Append(err, &FieldError{Field: "data", Message: fmt.Sprintf("ensure this field has at least %d elements", least)})
		return err
	}
	if v.MaxRecords > 0 && count > v.MaxRecords {
		err = multierr.Append(err, &FieldError{Field: "data", Message: fmt.Sprintf("ensure this field has no more than %d elements", v.MaxRecords)})
	}

	first := sortedKeys(data[0])
	for i := 1; i < count; i++ {
		if !sameKeys(first, data[i]) {
			err = multierr.Append(err, &FieldError{
				Field:   "data",
				Message: fmt.Sprintf("object at index %d has different keys than the first object", i),
			})
			break
		}
	}
	return err
}

func typeAndParamErrors(typeField, paramField, name string, params core.Params) error {
	if strings.TrimSpace(name) == "" {
		return &FieldError{Field: typeField, Message: "this field is required"}
	}
	t, err := core.ParseTransformationType(name)
	if err != nil {
		return &FieldError{Field: typeField, Message: fmt.Sprintf("%q is not a valid choice", name)}
	}
	var missing []string
	for _, key := range RequiredParameters[t] {
		if !params.Has(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &FieldError{
			Field:   paramField,
			Message: fmt.Sprintf("missing required parameters for %s: [%s]", t, strings.Join(missing, ", ")),
		}
	}
	return nil
}

func finish(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Err: err}
}

func sortedKeys(r core.Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sameKeys(keys []string, r core.Record) bool {
	if len(keys) != len(r) {
		return false
	}
	for _, k := range keys {
		if _, ok := r[k]; !ok {
			return false
		}
	}
	return true
}
