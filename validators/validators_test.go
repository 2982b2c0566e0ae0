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

package validators

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/goxform/core"
)

func validData() core.Dataset {
	return core.Dataset{
		{"region": "North", "sales": 100},
		{"region": "South", "sales": 200},
	}
}

// TestValidateTransform_Valid tests that a well-formed request passes
func TestValidateTransform_Valid(t *testing.T) {
	v := NewRequestValidator(DefaultMaxRecords)
	err := v.ValidateTransform(validData(), "aggregate", core.Params{"group_by": []interface{}{"region"}})
	assert.NoError(t, err)
}

// TestValidateTransform_CollectsAllProblems tests that every problem is reported at once
func TestValidateTransform_CollectsAllProblems(t *testing.T) {
	v := NewRequestValidator(DefaultMaxRecords)
	data := core.Dataset{
		{"region": "North", "sales": 100},
		{"region": "South"},
	}
	err := v.ValidateTransform(data, "pivot", core.Params{"index": "region"})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := verr.Fields()
	assert.Equal(t, []string{"object at index 1 has different keys than the first object"}, fields["data"])
	assert.Equal(t, []string{"missing required parameters for pivot: [columns, values]"}, fields["parameters"])
}

// TestValidateDataset_Limits tests record count limits
func TestValidateDataset_Limits(t *testing.T) {
	v := NewRequestValidator(2)

	err := v.ValidateDataset(core.Dataset{})
	require.Error(t, err)

	err = v.ValidateDataset(core.Dataset{{"a": 1}, {"a": 2}, {"a": 3}})
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields()["data"][0], "no more than 2")

	assert.NoError(t, v.ValidateDataset(core.Dataset{{"a": 1}, {"a": 2}}))
}

// TestValidateTransform_BadType tests missing and unknown transformation types
func TestValidateTransform_BadType(t *testing.T) {
	v := NewRequestValidator(0)

	err := v.ValidateTransform(validData(), "", nil)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"this field is required"}, verr.Fields()["transformation_type"])

	err = v.ValidateTransform(validData(), "sort", nil)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{`"sort" is not a valid choice`}, verr.Fields()["transformation_type"])
}

// TestValidateChain tests that only missing step types are rejected up front
func TestValidateChain(t *testing.T) {
	v := NewRequestValidator(DefaultMaxRecords)

	err := v.ValidateChain(validData(), []Step{
		{TransformationType: "filter", Parameters: core.Params{"conditions": []interface{}{}}},
		{TransformationType: "", Parameters: nil},
		{TransformationType: "normalize", Parameters: core.Params{}},
		{TransformationType: "bogus", Parameters: core.Params{}},
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := verr.Fields()
	assert.Contains(t, fields, "transformations[2].transformation_type")
	assert.NotContains(t, fields, "transformations[3].parameters")
	assert.NotContains(t, fields, "transformations[4].transformation_type")

	assert.NoError(t, v.ValidateChain(validData(), []Step{{TransformationType: "bogus"}}))

	err = v.ValidateChain(validData(), nil)
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields(), "transformations")
}
