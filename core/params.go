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

// Params holds the decoded parameters of a transformation, as found in a JSON request body.
type Params map[string]interface{}

// Has reports whether key is present with a non-nil value.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// String returns the string stored at key. The second result is false when the
// key is absent; a present value of another type is an InvalidParameter error.
func (p Params) String(key string) (string, bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", true, NewError(InvalidParameter, "parameter %q must be a string, got %T", key, v)
	}
	return s, true, nil
}

// StringOr returns the string at key, or def when the key is absent.
func (p Params) StringOr(key, def string) (string, error) {
	s, ok, err := p.String(key)
	if err != nil {
		return "", err
	}
	if !ok {
		return def, nil
	}
	return s, nil
}

// StringList returns the list of strings stored at key. A single string is
// accepted as a one-element list.
func (p Params) StringList(key string) ([]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case string:
		return []string{x}, nil
	case []string:
		return append([]string(nil), x...), nil
	case []interface{}:
		out := make([]string, 0, len(x))
		for i, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, NewError(InvalidParameter, "parameter %q item %d must be a string, got %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, NewError(InvalidParameter, "parameter %q must be a list of strings, got %T", key, v)
}

// StringMap returns the string-to-string mapping stored at key. Entries whose
// value is not a string are reported in the second result rather than failing.
func (p Params) StringMap(key string) (map[string]string, []string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil, nil
	}
	var raw map[string]interface{}
	switch x := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(x))
		for k, s := range x {
			out[k] = s
		}
		return out, nil, nil
	case map[string]interface{}:
		raw = x
	case Params:
		raw = x
	default:
		return nil, nil, NewError(InvalidParameter, "parameter %q must be an object, got %T", key, v)
	}
	out := make(map[string]string, len(raw))
	var skipped []string
	for k, item := range raw {
		s, ok := item.(string)
		if !ok {
			skipped = append(skipped, k)
			continue
		}
		out[k] = s
	}
	return out, skipped, nil
}

