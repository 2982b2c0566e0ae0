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

package filter

import (
	"github.com/aaronlmathis/goxform/core"
)

// Operator names accepted in a condition.
const (
	OpEq       = "eq"
	OpNe       = "ne"
	OpGt       = "gt"
	OpGte      = "gte"
	OpLt       = "lt"
	OpLte      = "lte"
	OpContains = "contains"
	OpIn       = "in"
)

// Operators lists every supported operator.
var Operators = []string{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpContains, OpIn}

var constructors = map[string]func(field string, value interface{}) core.Filter{
	OpEq:       Equals,
	OpNe:       NotEquals,
	OpGt:       GreaterThan,
	OpGte:      GreaterThanOrEqual,
	OpLt:       LessThan,
	OpLte:      LessThanOrEqual,
	OpContains: Contains,
	OpIn:       In,
}

// Condition is one {field, operator, value} predicate.
type Condition struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// Filter builds the predicate for the condition.
func (c Condition) Filter() (core.Filter, error) {
	build, ok := constructors[c.Operator]
	if !ok {
		return nil, core.NewError(core.UnknownOperator, "unknown operator: %q", c.Operator)
	}
	return build(c.Field, c.Value), nil
}

// ParseConditions decodes the conditions parameter: a single condition object
// or a list of them.
func ParseConditions(raw interface{}) ([]Condition, error) {
	switch x := raw.(type) {
	case nil:
		return nil, core.NewError(core.InvalidParameter, "conditions are required")
	case []Condition:
		return x, nil
	case Condition:
		return []Condition{x}, nil
	case map[string]interface{}:
		c, err := parseCondition(0, x)
		if err != nil {
			return nil, err
		}
		return []Condition{c}, nil
	case []interface{}:
		out := make([]Condition, 0, len(x))
		for i, item := range x {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, core.NewError(core.InvalidParameter, "condition %d must be an object, got %T", i, item)
			}
			c, err := parseCondition(i, m)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	}
	return nil, core.NewError(core.InvalidParameter, "conditions must be an object or a list, got %T", raw)
}

func parseCondition(i int, m map[string]interface{}) (Condition, error) {
	field, ok := m["field"].(string)
	if !ok || field == "" {
		return Condition{}, core.NewError(core.InvalidParameter, "condition %d: field must be a non-empty string", i)
	}
	op, ok := m["operator"].(string)
	if !ok {
		return Condition{}, core.NewError(core.InvalidParameter, "condition %d: operator must be a string", i)
	}
	return Condition{Field: field, Operator: op, Value: m["value"]}, nil
}
