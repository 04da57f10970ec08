// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

// Package rewrite turns raw disruption records into interned records and
// back. Rewriting populates the supplied interners; reconstruction resolves
// handles against the same interners to verify that nothing was lost.
package rewrite

import (
	"fmt"

	"github.com/tomtom215/disruptpack/internal/disruption"
)

// Rewriter interns records one at a time, in arrival order. It needs no
// lookahead, so a caller can stream records through Add.
type Rewriter struct {
	interners *disruption.Interners
	count     int
}

// NewRewriter creates a rewriter that grows the given interners.
func NewRewriter(in *disruption.Interners) *Rewriter {
	return &Rewriter{interners: in}
}

// Add validates one raw record, interns its low-cardinality fields and
// returns the interned record. Inline fields are copied unchanged.
func (rw *Rewriter) Add(rec disruption.RawRecord) (disruption.InternedRecord, error) {
	index := rw.count

	if err := rec.Validate(); err != nil {
		return disruption.InternedRecord{}, fmt.Errorf("record %d: %w", index, err)
	}

	out := disruption.InternedRecord{
		ID:         rec.ID,
		Message:    rec.Message,
		LastUpdate: rec.LastUpdate,
		Begin:      rec.Begin,
		End:        rec.End,
	}

	for _, f := range disruption.InternedFields {
		h, err := rw.interners.For(f).Intern(rec.Value(f))
		if err != nil {
			return disruption.InternedRecord{}, fmt.Errorf("record %d: intern %s: %w", index, f, err)
		}
		out.SetHandle(f, h)
	}

	rw.count++
	return out, nil
}

// Count returns the number of records rewritten so far.
func (rw *Rewriter) Count() int {
	return rw.count
}

// Interners returns the interners the rewriter populates.
func (rw *Rewriter) Interners() *disruption.Interners {
	return rw.interners
}

// Rewrite interns every record of raw, in order, into the given interners.
// The result has the same length and order as raw. On error no records are
// returned; the interners may already hold values from earlier records.
func Rewrite(raw []disruption.RawRecord, in *disruption.Interners) ([]disruption.InternedRecord, error) {
	rw := NewRewriter(in)
	out := make([]disruption.InternedRecord, 0, len(raw))

	for i := range raw {
		rec, err := rw.Add(raw[i])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	return out, nil
}
