// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

// Command disruptpack measures how much interning shrinks a transit
// disruption feed.
//
// It loads every feed snapshot found under the given files and directories,
// rewrites each disruption into a record whose line, cause, severity and
// title are handles into per-field dictionaries, and prints the raw and
// interned footprints, the per-field dictionary summary and the compression
// ratio. Every record is reconstructed from its handles and compared with
// its source before the report is printed.
//
// # Usage
//
//	disruptpack [path ...]
//
// Paths replace input.paths from the configuration. The report goes to
// stdout; logs go to stderr.
//
// # Configuration
//
// Settings are layered with Koanf v2 (highest priority wins):
//   - Positional arguments (input paths)
//   - Environment variables (LOG_LEVEL, FEED_WORKERS, DISRUPTPACK_*)
//   - Config file (CONFIG_PATH or disruptpack.yaml)
//   - Built-in defaults
//
// # Example Usage
//
// Compare serialization formats and keep the snapshot:
//
//	export REPORT_FORMATS=true
//	export OUTPUT_DIR=./out
//	export STORE_ENABLED=true
//	export STORE_PATH=./snapshots
//	disruptpack ./feeds
//
// Model 4-byte timestamps and 2-byte string headers:
//
//	TIMESTAMP_WIDTH=4 STRING_HEADER_WIDTH=2 disruptpack ./feeds
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the pass; feed decoding stops at the next file.
package main
