// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps a thread-safe singleton validator and translates failures into
// readable messages. Disruption records and the configuration are both
// validated through Struct.
//
// # Quick Start
//
//	type RawRecord struct {
//	    Line  string    `validate:"required,notblank"`
//	    Begin time.Time `validate:"required"`
//	}
//
//	if err := validation.Struct(&rec); err != nil {
//	    var se *validation.StructError
//	    if errors.As(err, &se) {
//	        fmt.Println(se.Fields()) // [Line]
//	    }
//	}
//
// # Custom Validators
//
//   - notblank: string must contain a non-whitespace character
//
// # Thread Safety
//
// GetValidator initializes the validator once via sync.Once; the validator
// caches struct metadata and is safe for concurrent use.
package validation
