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

import "strings"

// TransformationType names one of the supported dataset operations.
type TransformationType string

const (
	TypeAggregate TransformationType = "aggregate"
	TypeFilter    TransformationType = "filter"
	TypeNormalize TransformationType = "normalize"
	TypePivot     TransformationType = "pivot"
)

// TransformationTypes lists every supported type in display order.
var TransformationTypes = []TransformationType{TypeAggregate, TypeFilter, TypeNormalize, TypePivot}

// String returns the wire name of the type.
func (t TransformationType) String() string {
	return string(t)
}

// Valid reports whether t is one of the supported types.
func (t TransformationType) Valid() bool {
	switch t {
	case TypeAggregate, TypeFilter, TypeNormalize, TypePivot:
		return true
	}
	return false
}

// ParseTransformationType converts a wire name to a TransformationType.
// Names are matched exactly after trimming surrounding whitespace.
func ParseTransformationType(name string) (TransformationType, error) {
	t := TransformationType(strings.TrimSpace(name))
	if !t.Valid() {
		return "", NewError(UnknownTransformation, "unknown transformation type: %q", name)
	}
	return t, nil
}
