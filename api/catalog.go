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
	"github.com/aaronlmathis/goxform/aggregate"
	"github.com/aaronlmathis/goxform/core"
	"github.com/aaronlmathis/goxform/filter"
	"github.com/aaronlmathis/goxform/transform"
	"github.com/aaronlmathis/goxform/validators"
)

// TransformationDetail documents one transformation type for API clients.
type TransformationDetail struct {
	Description        string                 `json:"description"`
	RequiredParameters []string               `json:"required_parameters"`
	OptionalParameters []string               `json:"optional_parameters"`
	ExampleParameters  map[string]interface{} `json:"example_parameters"`
}

// Catalog is the body of the types endpoint.
type Catalog struct {
	AvailableTransformations []core.TransformationType                        `json:"available_transformations"`
	TransformationDetails    map[core.TransformationType]TransformationDetail `json:"transformation_details"`
	SupportedOperators       []string                                         `json:"supported_operators"`
	SupportedAggregations    []string                                         `json:"supported_aggregations"`
	SupportedPivotFunctions  []string                                         `json:"supported_pivot_functions"`
	SupportedNormalizations  []string                                         `json:"supported_normalizations"`
}

// NewCatalog describes the transformations the engine supports.
func NewCatalog() Catalog {
	return Catalog{
		AvailableTransformations: append([]core.TransformationType(nil), core.TransformationTypes...),
		TransformationDetails: map[core.TransformationType]TransformationDetail{
			core.TypeAggregate: {
				Description:        "Group data and apply aggregation functions",
				RequiredParameters: validators.RequiredParameters[core.TypeAggregate],
				OptionalParameters: []string{aggregate.ParamAggregations},
				ExampleParameters: map[string]interface{}{
					"group_by":     []string{"category"},
					"aggregations": map[string]string{"sales": "sum", "quantity": "mean"},
				},
			},
			core.TypeFilter: {
				Description:        "Filter data based on conditions",
				RequiredParameters: validators.RequiredParameters[core.TypeFilter],
				OptionalParameters: []string{},
				ExampleParameters: map[string]interface{}{
					"conditions": []map[string]interface{}{
						{"field": "age", "operator": "gte", "value": 18},
						{"field": "status", "operator": "eq", "value": "active"},
					},
				},
			},
			core.TypeNormalize: {
				Description:        "Normalize numeric columns",
				RequiredParameters: validators.RequiredParameters[core.TypeNormalize],
				OptionalParameters: []string{transform.ParamMethod},
				ExampleParameters: map[string]interface{}{
					"columns": []string{"price", "quantity"},
					"method":  transform.MethodMinMax,
				},
			},
			core.TypePivot: {
				Description:        "Create pivot table from data",
				RequiredParameters: validators.RequiredParameters[core.TypePivot],
				OptionalParameters: []string{aggregate.ParamAggFunc},
				ExampleParameters: map[string]interface{}{
					"index":   "date",
					"columns": "category",
					"values":  "sales",
					"aggfunc": aggregate.FuncSum,
				},
			},
		},
		SupportedOperators:      filter.Operators,
		SupportedAggregations:   aggregate.Functions,
		SupportedPivotFunctions: aggregate.PivotFunctions,
		SupportedNormalizations: transform.Methods,
	}
}
