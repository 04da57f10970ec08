// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package store

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint identifies an encoded snapshot. Two passes over the same input
// with the same model produce the same fingerprint.
type Fingerprint uint64

// String renders the fingerprint as 16 hex digits.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// FingerprintOf hashes encoded snapshot bytes.
func FingerprintOf(encoded []byte) Fingerprint {
	return Fingerprint(xxhash.Sum64(encoded))
}

// FingerprintSnapshot encodes s and hashes the result.
func FingerprintSnapshot(s *Snapshot) (Fingerprint, error) {
	b, err := Encode(s)
	if err != nil {
		return 0, err
	}
	return FingerprintOf(b), nil
}
