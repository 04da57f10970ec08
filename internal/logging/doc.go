// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

// Package logging provides the zerolog-based structured logger used by every
// disruptpack component.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "console",
//	})
//
//	logging.Info().Int("files", n).Msg("Loaded feed")
//	logging.Err(err).Msg("Pipeline failed")
//
// # Run IDs
//
// Each pipeline run carries a short run ID in its context so that log lines
// of concurrent runs (tests, mostly) can be told apart:
//
//	ctx = logging.ContextWithNewRunID(ctx)
//	logging.Ctx(ctx).Info().Msg("Rewrote records")
//
// # Output
//
// Logs go to stderr. Stdout is reserved for the report so that it can be
// redirected on its own. Configuration is loaded by internal/config from the
// logging section or the LOG_LEVEL, LOG_FORMAT and LOG_CALLER variables.
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
