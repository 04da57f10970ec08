// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

// Package store persists interned snapshots.
//
// Encode writes a compact binary layout whose length is exactly HeaderSize
// plus the interned size reported by the sizing package, so the reported
// compression ratio is a real on-disk ratio. Decode reverses it and rejects
// truncated, oversized or inconsistent input with ErrCorrupt.
//
// BadgerStore keeps encoded snapshots in BadgerDB under a name, next to JSON
// metadata carrying the xxhash fingerprint of the encoded bytes. Loading a
// snapshot verifies the fingerprint before decoding.
package store
