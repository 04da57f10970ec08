// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

// Package pipeline runs one pass over a set of feed files.
//
// A pass is a straight line of stages: load, rewrite, measure, reconstruct,
// then persist and compare when enabled. Every stage is timed into the
// stage duration histogram and logged with the run ID carried by the context.
// A failing stage ends the pass; nothing is retried.
//
//	cfg, err := config.LoadWithKoanf(os.Args[1:])
//	...
//	res, err := pipeline.Run(ctx, cfg)
//	...
//	res.WriteTo(os.Stdout)
package pipeline
