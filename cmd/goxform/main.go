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

// Command goxform applies one transformation, or a chain of them, to a
// dataset loaded from a file, S3 or a database.
//
// Usage:
//
//	goxform -in sales.csv -type aggregate -params '{"group_by":["region"],"aggregations":{"sales":"sum"}}'
//	goxform -in s3://bucket/sales.parquet -steps steps.json -out result.csv
//	goxform -in postgres://localhost/shop -query 'SELECT * FROM sales' -type pivot -params '...'
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/aaronlmathis/goxform"
	"github.com/aaronlmathis/goxform/core"
	"github.com/aaronlmathis/goxform/internal/observability"
	"github.com/aaronlmathis/goxform/readers"
	"github.com/aaronlmathis/goxform/types"
	"github.com/aaronlmathis/goxform/validators"
	"github.com/aaronlmathis/goxform/writers"
)

type options struct {
	in         string
	out        string
	format     string
	typeName   string
	params     string
	stepsFile  string
	query      string
	database   string
	collection string
	maxRecords int
	logLevel   string
	s3         readers.S3Config
}

func main() {
	var opts options
	flag.StringVar(&opts.in, "in", "", "input location: file path, s3://, postgres://, mysql://, sqlite://, mongodb:// or - for stdin")
	flag.StringVar(&opts.out, "out", "-", "output location: file path, s3:// or - for stdout")
	flag.StringVar(&opts.format, "format", "", "output format: csv, json, jsonl or parquet (default from -out extension, else json)")
	flag.StringVar(&opts.typeName, "type", "", "transformation type: aggregate, filter, normalize or pivot")
	flag.StringVar(&opts.params, "params", "{}", "transformation parameters as a JSON object")
	flag.StringVar(&opts.stepsFile, "steps", "", "JSON file holding a list of {transformation_type, parameters} steps")
	flag.StringVar(&opts.query, "query", "", "SQL query for database inputs")
	flag.StringVar(&opts.database, "db", "", "MongoDB database")
	flag.StringVar(&opts.collection, "collection", "", "MongoDB collection")
	flag.IntVar(&opts.maxRecords, "max-records", 0, "reject inputs with more records (0 = unlimited)")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	flag.StringVar(&opts.s3.Region, "s3-region", "", "AWS region")
	flag.StringVar(&opts.s3.EndpointURL, "s3-endpoint", "", "custom S3 endpoint")
	flag.BoolVar(&opts.s3.ForcePathStyle, "s3-path-style", false, "use path-style S3 addressing")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "goxform: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 when a transformation step failed and 1 for every other error.
func exitCode(err error) int {
	var stepErr *core.StepError
	if errors.As(err, &stepErr) {
		return 2
	}
	return 1
}

func run(ctx context.Context, opts options) error {
	if opts.in == "" {
		return errors.New("-in is required")
	}
	if (opts.typeName == "") == (opts.stepsFile == "") {
		return errors.New("exactly one of -type and -steps is required")
	}

	logger, err := observability.NewLogger(observability.LogConfig{Level: opts.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return err
	}
	defer logger.Sync()

	steps, err := loadSteps(opts)
	if err != nil {
		return err
	}

	inLoc, err := types.ParseLocation(opts.in)
	if err != nil {
		return err
	}
	src, err := inLoc.NewSource(ctx, types.SourceOptions{
		Query:      opts.query,
		Database:   opts.database,
		Collection: opts.collection,
		S3:         opts.s3,
	})
	if err != nil {
		return err
	}
	data, err := readers.LoadDataset(ctx, src, opts.maxRecords)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", zap.String("location", inLoc.String()), zap.Int("records", len(data)))

	checks := make([]validators.Step, len(steps))
	for i, st := range steps {
		checks[i] = validators.Step{TransformationType: st.Type.String(), Parameters: st.Parameters}
	}
	if err := validators.NewRequestValidator(opts.maxRecords).ValidateChain(data, checks); err != nil {
		return err
	}

	engine := goxform.New(goxform.WithLogger(logger.Zap()))
	result, err := engine.RunChain(ctx, data, steps)
	if err != nil {
		return err
	}

	outLoc, err := types.ParseLocation(opts.out)
	if err != nil {
		return err
	}
	format, err := types.OutputFormat(outLoc, opts.format)
	if err != nil {
		return err
	}
	dest, err := outLoc.Output(opts.s3)
	if err != nil {
		return err
	}
	sink, err := dest.NewSink(ctx, format)
	if err != nil {
		return err
	}
	if err := writers.WriteDataset(ctx, sink, result.Data); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	return enc.Encode(result.Steps)
}

func loadSteps(opts options) ([]goxform.Step, error) {
	if opts.stepsFile == "" {
		var params core.Params
		if err := json.Unmarshal([]byte(opts.params), &params); err != nil {
			return nil, fmt.Errorf("-params: %w", err)
		}
		if params == nil {
			params = core.Params{}
		}
		return []goxform.Step{{Type: core.TransformationType(opts.typeName), Parameters: params}}, nil
	}

	raw, err := os.ReadFile(opts.stepsFile)
	if err != nil {
		return nil, err
	}
	var steps []goxform.Step
	if err := json.Unmarshal(raw, &steps); err != nil {
		return nil, fmt.Errorf("%s: %w", opts.stepsFile, err)
	}
	for i := range steps {
		if steps[i].Parameters == nil {
			steps[i].Parameters = core.Params{}
		}
	}
	return steps, nil
}
