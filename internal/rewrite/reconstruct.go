// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package rewrite

import (
	"errors"
	"fmt"

	"github.com/tomtom215/disruptpack/internal/disruption"
)

var (
	// ErrLengthMismatch is returned when the raw and interned sequences differ in length.
	ErrLengthMismatch = errors.New("record count mismatch")

	// ErrMismatch is returned when a reconstructed record differs from its original.
	ErrMismatch = errors.New("reconstructed record differs from original")
)

// Reconstruct resolves every handle of rec against in and copies the inline
// fields, producing the raw record the interned record was built from.
// A handle unknown to its interner yields intern.ErrHandleOutOfRange.
func Reconstruct(rec disruption.InternedRecord, in *disruption.Interners) (disruption.RawRecord, error) {
	out := disruption.RawRecord{
		ID:         rec.ID,
		Message:    rec.Message,
		LastUpdate: rec.LastUpdate,
		Begin:      rec.Begin,
		End:        rec.End,
	}

	for _, f := range disruption.InternedFields {
		v, err := in.For(f).Resolve(rec.Handle(f))
		if err != nil {
			return disruption.RawRecord{}, fmt.Errorf("resolve %s: %w", f, err)
		}
		out.SetValue(f, v)
	}

	return out, nil
}

// ReconstructAll reconstructs a whole interned sequence.
func ReconstructAll(recs []disruption.InternedRecord, in *disruption.Interners) ([]disruption.RawRecord, error) {
	out := make([]disruption.RawRecord, len(recs))
	for i := range recs {
		rec, err := Reconstruct(recs[i], in)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = rec
	}
	return out, nil
}

// Verify checks that reconstructing interned[i] yields raw[i] for every i.
// The first failure is reported with its position and field.
func Verify(raw []disruption.RawRecord, interned []disruption.InternedRecord, in *disruption.Interners) error {
	if len(raw) != len(interned) {
		return fmt.Errorf("%w: %d raw, %d interned", ErrLengthMismatch, len(raw), len(interned))
	}

	for i := range interned {
		rec, err := Reconstruct(interned[i], in)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if !rec.Equal(raw[i]) {
			return fmt.Errorf("%w: record %d, field %s", ErrMismatch, i, rec.Diff(raw[i]))
		}
	}

	return nil
}
