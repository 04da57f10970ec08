// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package disruption

import (
	"fmt"

	"github.com/tomtom215/disruptpack/internal/intern"
)

// Field names one interned field of the schema.
type Field int

// Interned fields, in the order they are laid out on disk.
const (
	FieldLine Field = iota
	FieldCause
	FieldSeverity
	FieldTitle
)

// InternedFields lists every interned field in layout order.
var InternedFields = []Field{FieldLine, FieldCause, FieldSeverity, FieldTitle}

// String returns the field name used in reports and metric labels.
func (f Field) String() string {
	switch f {
	case FieldLine:
		return "line"
	case FieldCause:
		return "cause"
	case FieldSeverity:
		return "severity"
	case FieldTitle:
		return "title"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Value returns the raw value of an interned field.
func (r *RawRecord) Value(f Field) string {
	switch f {
	case FieldLine:
		return r.Line
	case FieldCause:
		return r.Cause
	case FieldSeverity:
		return r.Severity
	case FieldTitle:
		return r.Title
	default:
		panic(fmt.Sprintf("disruption: unknown field %d", f))
	}
}

// SetValue stores the raw value of an interned field.
func (r *RawRecord) SetValue(f Field, v string) {
	switch f {
	case FieldLine:
		r.Line = v
	case FieldCause:
		r.Cause = v
	case FieldSeverity:
		r.Severity = v
	case FieldTitle:
		r.Title = v
	default:
		panic(fmt.Sprintf("disruption: unknown field %d", f))
	}
}

// Interners holds one interner per interned field. Values of different
// fields live in different domains and never share an interner.
type Interners struct {
	Line     *intern.Interner[string]
	Cause    *intern.Interner[string]
	Severity *intern.Interner[string]
	Title    *intern.Interner[string]
}

// NewInterners creates an empty interner per field. Options apply to every
// field, typically intern.WithLimit derived from the handle width.
func NewInterners(opts ...intern.Option) *Interners {
	return &Interners{
		Line:     intern.New[string](opts...),
		Cause:    intern.New[string](opts...),
		Severity: intern.New[string](opts...),
		Title:    intern.New[string](opts...),
	}
}

// For returns the interner that owns the given field.
func (in *Interners) For(f Field) *intern.Interner[string] {
	switch f {
	case FieldLine:
		return in.Line
	case FieldCause:
		return in.Cause
	case FieldSeverity:
		return in.Severity
	case FieldTitle:
		return in.Title
	default:
		panic(fmt.Sprintf("disruption: unknown field %d", f))
	}
}

// MaxLen returns the largest dictionary size across all fields.
func (in *Interners) MaxLen() int {
	longest := 0
	for _, f := range InternedFields {
		if n := in.For(f).Len(); n > longest {
			longest = n
		}
	}
	return longest
}
