// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/disruptpack/internal/config"
	"github.com/tomtom215/disruptpack/internal/logging"
	"github.com/tomtom215/disruptpack/internal/pipeline"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf(os.Args[1:])
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithNewRunID(ctx)

	logging.Ctx(ctx).Info().
		Strs("paths", cfg.Input.Paths).
		Int("timestamp_width", cfg.Sizing.TimestampWidth).
		Int("string_header_width", cfg.Sizing.StringHeaderWidth).
		Bool("store", cfg.Store.Enabled).
		Bool("formats", cfg.Report.Formats).
		Msg("Starting disruptpack")

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		stop()
		logging.Ctx(ctx).Fatal().Err(err).Msg("Pass failed")
	}

	if _, err := res.WriteTo(os.Stdout); err != nil {
		logging.Ctx(ctx).Fatal().Err(err).Msg("Failed to write report")
	}
}
