// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

// Package disruption defines the disruption-event schema in its raw form,
// holding every value inline, and its interned form, holding handles into
// one interner per low-cardinality field.
package disruption

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/disruptpack/internal/intern"
	"github.com/tomtom215/disruptpack/internal/validation"
)

// ErrInvalidRecord is returned when a raw record is missing a required value
// or carries a timestamp finer than one second.
var ErrInvalidRecord = errors.New("invalid disruption record")

// RawRecord is one disruption event as decoded from the feed.
// Every field holds its own value; nothing is shared between records.
type RawRecord struct {
	// ID identifies the disruption in the feed (unique per disruption).
	ID uuid.UUID `json:"id" validate:"required"`

	// Line is the identifier of the impacted line or route.
	Line string `json:"line" validate:"required,notblank"`

	// Cause is the disruption category (PERTURBATION, TRAVAUX, ...).
	Cause string `json:"cause" validate:"required,notblank"`

	// Severity is the effect tag (BLOQUANTE, PERTURBEE, INFORMATION, ...).
	Severity string `json:"severity" validate:"required,notblank"`

	// Title is the templated headline shown to travellers.
	Title string `json:"title" validate:"required,notblank"`

	// Message is the free-text body, usually unique per disruption.
	// Feeds may omit it; the empty string stands for no message.
	Message string `json:"message"`

	// LastUpdate is when the disruption was last modified upstream.
	LastUpdate time.Time `json:"last_update" validate:"required"`

	// Begin and End bound the validity interval of this record.
	Begin time.Time `json:"begin" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
}

// Validate fails fast on absent required values instead of letting a zero
// value flow into the interners and the size statistics.
func (r *RawRecord) Validate() error {
	if err := validation.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	for _, ts := range [...]struct {
		name string
		t    time.Time
	}{{"last_update", r.LastUpdate}, {"begin", r.Begin}, {"end", r.End}} {
		if ts.t.Nanosecond() != 0 {
			return fmt.Errorf("%w: %s has sub-second precision", ErrInvalidRecord, ts.name)
		}
	}
	return nil
}

// Equal reports whether two raw records hold the same values.
// Timestamps are compared as instants.
func (r RawRecord) Equal(o RawRecord) bool {
	return r.ID == o.ID &&
		r.Line == o.Line &&
		r.Cause == o.Cause &&
		r.Severity == o.Severity &&
		r.Title == o.Title &&
		r.Message == o.Message &&
		r.LastUpdate.Equal(o.LastUpdate) &&
		r.Begin.Equal(o.Begin) &&
		r.End.Equal(o.End)
}

// Diff returns the name of the first field that differs, or "" if equal.
func (r RawRecord) Diff(o RawRecord) string {
	switch {
	case r.ID != o.ID:
		return "ID"
	case r.Line != o.Line:
		return FieldLine.String()
	case r.Cause != o.Cause:
		return FieldCause.String()
	case r.Severity != o.Severity:
		return FieldSeverity.String()
	case r.Title != o.Title:
		return FieldTitle.String()
	case r.Message != o.Message:
		return "Message"
	case !r.LastUpdate.Equal(o.LastUpdate):
		return "LastUpdate"
	case !r.Begin.Equal(o.Begin):
		return "Begin"
	case !r.End.Equal(o.End):
		return "End"
	}
	return ""
}

// InternedRecord mirrors RawRecord with every low-cardinality field replaced
// by a handle into the matching interner of an Interners set. The handles
// are meaningless without that set.
type InternedRecord struct {
	ID         uuid.UUID
	Line       intern.Handle
	Cause      intern.Handle
	Severity   intern.Handle
	Title      intern.Handle
	Message    string
	LastUpdate time.Time
	Begin      time.Time
	End        time.Time
}

// Handle returns the handle stored for an interned field.
func (r *InternedRecord) Handle(f Field) intern.Handle {
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

// SetHandle stores the handle for an interned field.
func (r *InternedRecord) SetHandle(f Field, h intern.Handle) {
	switch f {
	case FieldLine:
		r.Line = h
	case FieldCause:
		r.Cause = h
	case FieldSeverity:
		r.Severity = h
	case FieldTitle:
		r.Title = h
	default:
		panic(fmt.Sprintf("disruption: unknown field %d", f))
	}
}
