// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/tomtom215/disruptpack/internal/feed"
	"github.com/tomtom215/disruptpack/internal/logging"
	"github.com/tomtom215/disruptpack/internal/sizing"
	"github.com/tomtom215/disruptpack/internal/store"
)

// Config holds all application configuration
type Config struct {
	Input   InputConfig    `koanf:"input"`
	Sizing  sizing.Model   `koanf:"sizing"`
	Report  ReportConfig   `koanf:"report"`
	Store   StoreConfig    `koanf:"store"`
	Metrics MetricsConfig  `koanf:"metrics"`
	Output  OutputConfig   `koanf:"output"`
	Logging logging.Config `koanf:"logging"`
}

// InputConfig holds feed input settings
type InputConfig struct {
	// Paths lists feed files and directories. Positional command-line
	// arguments replace this list.
	Paths []string `koanf:"paths"`

	// Pattern filters files inside directories by base name.
	Pattern string `koanf:"pattern" validate:"required"`

	// Workers bounds concurrent file decoding. 0 uses one worker per CPU.
	Workers int `koanf:"workers" validate:"gte=0,lte=1024"`

	// Strict rejects feed documents with unknown fields.
	Strict bool `koanf:"strict"`

	// TimeZone is the IANA zone feed timestamps are written in.
	TimeZone string `koanf:"time_zone" validate:"required"`
}

// ReportConfig selects what the report contains
type ReportConfig struct {
	// Verify reconstructs every record and compares it with its source.
	Verify bool `koanf:"verify"`

	// Formats enables the serialization format comparison.
	Formats bool `koanf:"formats"`

	// Codecs and Compressors restrict the comparison. Empty selects all.
	Codecs      []string `koanf:"codecs"`
	Compressors []string `koanf:"compressors"`
}

// StoreConfig holds snapshot persistence settings
type StoreConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Path        string `koanf:"path"`
	InMemory    bool   `koanf:"in_memory"`
	Compression bool   `koanf:"compression"`
	SyncWrites  bool   `koanf:"sync_writes"`
	Verbose     bool   `koanf:"verbose"`

	// Snapshot names the stored snapshot. Empty derives a name from the run time.
	Snapshot string `koanf:"snapshot"`
}

// MetricsConfig holds Prometheus export settings
type MetricsConfig struct {
	// Textfile, when set, receives the metrics of the pass in text format.
	Textfile string `koanf:"textfile"`
}

// OutputConfig holds file output settings
type OutputConfig struct {
	// Dir, when set, receives one <format>.db file per compared codec.
	Dir string `koanf:"dir"`
}

// Badger converts the store section into BadgerDB store settings.
func (s StoreConfig) Badger() store.Config {
	return store.Config{
		Path:        s.Path,
		InMemory:    s.InMemory,
		Compression: s.Compression,
		SyncWrites:  s.SyncWrites,
		Verbose:     s.Verbose,
	}
}

// SnapshotName returns the configured snapshot name, or one derived from now.
func (s StoreConfig) SnapshotName(now time.Time) string {
	if s.Snapshot != "" {
		return s.Snapshot
	}
	return store.SnapshotName(now)
}

// FeedOptions converts the input section into feed loader options.
func (c *Config) FeedOptions() (feed.Options, error) {
	loc, err := time.LoadLocation(c.Input.TimeZone)
	if err != nil {
		return feed.Options{}, fmt.Errorf("input.time_zone %q: %w", c.Input.TimeZone, err)
	}

	workers := c.Input.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return feed.Options{
		Pattern:  c.Input.Pattern,
		Workers:  workers,
		Strict:   c.Input.Strict,
		Location: loc,
	}, nil
}
