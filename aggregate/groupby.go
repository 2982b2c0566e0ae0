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

package aggregate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/aaronlmathis/goxform/core"
)

// GroupBy implements grouping and aggregation operations.
//
// Rows are bucketed by the xxh3 hash of a canonical encoding of their group key
// tuple; rows whose keys hash alike but encode differently land in separate groups.
type GroupBy struct {
	groupFields []string
	outputs     []string
	aggregators map[string]Aggregator
	dropNulls   bool
}

// Group is one group produced by Process.
type Group struct {
	Key    []interface{}
	Values map[string]interface{}
}

// NewGroupBy creates a new GroupBy over the given key fields.
func NewGroupBy(groupFields ...string) *GroupBy {
	return &GroupBy{
		groupFields: groupFields,
		aggregators: make(map[string]Aggregator),
	}
}

// DropNullKeys skips rows with a null value in any group field.
func (g *GroupBy) DropNullKeys() *GroupBy {
	g.dropNulls = true
	return g
}

// With adds an aggregator writing to outputField. Outputs keep insertion order.
func (g *GroupBy) With(outputField string, agg Aggregator) *GroupBy {
	if _, exists := g.aggregators[outputField]; !exists {
		g.outputs = append(g.outputs, outputField)
	}
	g.aggregators[outputField] = agg
	return g
}

// Size adds a row counter for the specified output field.
func (g *GroupBy) Size(outputField string) *GroupBy {
	return g.With(outputField, &SizeAggregator{})
}

// Count adds a non-null counter for field.
func (g *GroupBy) Count(field, outputField string) *GroupBy {
	return g.With(outputField, &CountAggregator{Field: field})
}

// Sum adds a sum aggregator for the specified field.
func (g *GroupBy) Sum(field, outputField string) *GroupBy {
	return g.With(outputField, &SumAggregator{Field: field})
}

// Mean adds an average aggregator for the specified field.
func (g *GroupBy) Mean(field, outputField string) *GroupBy {
	return g.With(outputField, &MeanAggregator{Field: field})
}

// Min adds a minimum aggregator for the specified field.
func (g *GroupBy) Min(field, outputField string) *GroupBy {
	return g.With(outputField, &MinAggregator{Field: field})
}

// Max adds a maximum aggregator for the specified field.
func (g *GroupBy) Max(field, outputField string) *GroupBy {
	return g.With(outputField, &MaxAggregator{Field: field})
}

// Std adds a sample standard deviation aggregator for the specified field.
func (g *GroupBy) Std(field, outputField string) *GroupBy {
	return g.With(outputField, &StdAggregator{Field: field})
}

// Apply adds the aggregator named by function over field, written back to
// field. It reports false for an unknown function name.
func (g *GroupBy) Apply(function, field string) bool {
	switch function {
	case FuncSum:
		g.Sum(field, field)
	case FuncMean:
		g.Mean(field, field)
	case FuncCount:
		g.Count(field, field)
	case FuncMin:
		g.Min(field, field)
	case FuncMax:
		g.Max(field, field)
	case FuncStd:
		g.Std(field, field)
	default:
		return false
	}
	return true
}

type groupState struct {
	key         []interface{}
	encoded     string
	aggregators map[string]Aggregator
}

// Process aggregates records and returns the groups ordered ascending by key.
func (g *GroupBy) Process(ctx context.Context, records core.Dataset) ([]Group, error) {
	buckets := make(map[uint64][]*groupState)
	var states []*groupState

	for i, record := range records {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		key := make([]interface{}, len(g.groupFields))
		skip := false
		for j, field := range g.groupFields {
			v := record[field]
			if core.IsNull(v) {
				if g.dropNulls {
					skip = true
					break
				}
				v = nil
			}
			key[j] = v
		}
		if skip {
			continue
		}

		encoded := encodeKey(key)
		hash := xxh3.HashString(encoded)

		var state *groupState
		for _, candidate := range buckets[hash] {
			if candidate.encoded == encoded {
				state = candidate
				break
			}
		}
		if state == nil {
			state = &groupState{
				key:         key,
				encoded:     encoded,
				aggregators: make(map[string]Aggregator, len(g.aggregators)),
			}
			for outputField, aggregator := range g.aggregators {
				state.aggregators[outputField] = aggregator.Clone()
			}
			buckets[hash] = append(buckets[hash], state)
			states = append(states, state)
		}

		for outputField, aggregator := range state.aggregators {
			if err := aggregator.Add(ctx, record); err != nil {
				return nil, fmt.Errorf("aggregation error for field %s: %w", outputField, err)
			}
		}
	}

	sort.SliceStable(states, func(i, j int) bool {
		return compareKeys(states[i].key, states[j].key) < 0
	})

	results := make([]Group, 0, len(states))
	for _, state := range states {
		values := make(map[string]interface{}, len(g.outputs))
		for _, outputField := range g.outputs {
			value, err := state.aggregators[outputField].Result()
			if err != nil {
				return nil, fmt.Errorf("failed to get result for field %s: %w", outputField, err)
			}
			values[outputField] = value
		}
		results = append(results, Group{Key: state.key, Values: values})
	}
	return results, nil
}

// Records flattens groups into output records: key fields followed by aggregates.
func (g *GroupBy) Records(groups []Group) core.Dataset {
	out := make(core.Dataset, 0, len(groups))
	for _, grp := range groups {
		r := make(core.Record, len(g.groupFields)+len(grp.Values))
		for i, field := range g.groupFields {
			r[field] = grp.Key[i]
		}
		for k, v := range grp.Values {
			r[k] = v
		}
		out = append(out, r)
	}
	return out
}

// encodeKey writes a canonical, type-tagged form of a key tuple. Values that
// core.Equal considers equal encode identically.
func encodeKey(key []interface{}) string {
	var b strings.Builder
	for _, v := range key {
		switch {
		case v == nil:
			b.WriteString("z:")
		case core.IsNumber(v):
			b.WriteString("n:")
			b.WriteString(core.FormatValue(v))
		default:
			switch x := v.(type) {
			case bool:
				b.WriteString("b:")
				b.WriteString(core.FormatValue(x))
			case string:
				fmt.Fprintf(&b, "s%d:", len(x))
				b.WriteString(x)
			default:
				fmt.Fprintf(&b, "o:%T:%v", v, v)
			}
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}

func compareKeys(a, b []interface{}) int {
	for i := range a {
		if c := core.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}
