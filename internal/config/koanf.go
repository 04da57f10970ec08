// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/disruptpack/internal/feed"
	"github.com/tomtom215/disruptpack/internal/logging"
	"github.com/tomtom215/disruptpack/internal/sizing"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"disruptpack.yaml",
	"disruptpack.yml",
	"/etc/disruptpack/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// EnvPrefix marks environment variables mapped generically to config paths:
// DISRUPTPACK_SIZING_TIMESTAMP_WIDTH -> sizing.timestamp_width.
const EnvPrefix = "DISRUPTPACK_"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file, env vars and arguments.
func defaultConfig() *Config {
	logCfg := logging.DefaultConfig()

	return &Config{
		Input: InputConfig{
			Pattern:  "*.json",
			Workers:  0, // 0 = runtime.GOMAXPROCS(0)
			Strict:   true,
			TimeZone: feed.DefaultTimeZone,
		},
		Sizing: sizing.DefaultModel(),
		Report: ReportConfig{
			Verify:  true,
			Formats: false,
		},
		Store: StoreConfig{
			Enabled:     false,
			Path:        "data/snapshots",
			Compression: true,
		},
		Logging: logging.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			Caller:    logCfg.Caller,
			Timestamp: logCfg.Timestamp,
		},
	}
}

// Default returns the built-in configuration, before any file, environment
// or argument is applied. It has no input paths.
func Default() *Config {
	return defaultConfig()
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//  4. Arguments: Positional arguments replace input.paths
func LoadWithKoanf(args []string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Layer 4: Positional arguments
	if len(args) > 0 {
		if err := k.Set("input.paths", args); err != nil {
			return nil, fmt.Errorf("failed to set input paths: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"input.paths",
	"report.codecs",
	"report.compressors",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps short environment variable names to config paths.
var envMappings = map[string]string{
	// Input mappings
	"feed_paths":     "input.paths",
	"feed_pattern":   "input.pattern",
	"feed_workers":   "input.workers",
	"feed_strict":    "input.strict",
	"feed_time_zone": "input.time_zone",

	// Sizing mappings
	"timestamp_width":     "sizing.timestamp_width",
	"string_header_width": "sizing.string_header_width",
	"handle_width":        "sizing.fixed_handle_width",

	// Report mappings
	"report_formats": "report.formats",

	// Store mappings
	"store_enabled": "store.enabled",
	"store_path":    "store.path",

	// Metrics and output mappings
	"metrics_textfile": "metrics.textfile",
	"output_dir":       "output.dir",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - LOG_LEVEL -> logging.level
//   - FEED_WORKERS -> input.workers
//   - DISRUPTPACK_STORE_SYNC_WRITES -> store.sync_writes
func envTransformFunc(key string) string {
	if rest, ok := strings.CutPrefix(key, EnvPrefix); ok {
		section, field, found := strings.Cut(strings.ToLower(rest), "_")
		if !found || section == "" || field == "" {
			return ""
		}
		return section + "." + field
	}

	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// Unmapped keys are skipped so random environment variables
	// cannot pollute the config.
	return ""
}
