// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/tomtom215/disruptpack/internal/formats"
	"github.com/tomtom215/disruptpack/internal/validation"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}

	if err := c.validateInput(); err != nil {
		return err
	}

	if err := c.Sizing.Validate(); err != nil {
		return err
	}

	if err := c.validateReport(); err != nil {
		return err
	}

	return c.validateStore()
}

// validateInput validates feed input settings
func (c *Config) validateInput() error {
	if len(c.Input.Paths) == 0 {
		return fmt.Errorf("no input paths: pass feed files or directories as arguments, or set input.paths")
	}
	if _, err := filepath.Match(c.Input.Pattern, ""); err != nil {
		return fmt.Errorf("input.pattern %q: %w", c.Input.Pattern, err)
	}
	if _, err := time.LoadLocation(c.Input.TimeZone); err != nil {
		return fmt.Errorf("input.time_zone %q: %w", c.Input.TimeZone, err)
	}
	return nil
}

// validateReport validates format comparison settings (only if enabled)
func (c *Config) validateReport() error {
	if !c.Report.Formats {
		if c.Output.Dir != "" {
			return fmt.Errorf("output.dir requires report.formats=true")
		}
		return nil
	}
	if _, err := formats.CodecsByName(c.Report.Codecs); err != nil {
		return fmt.Errorf("report.codecs: %w", err)
	}
	if _, err := formats.CompressorsByName(c.Report.Compressors); err != nil {
		return fmt.Errorf("report.compressors: %w", err)
	}
	return nil
}

// validateStore validates snapshot store settings (only if enabled)
func (c *Config) validateStore() error {
	if !c.Store.Enabled {
		return nil
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path is required when store.enabled=true")
	}
	return nil
}
