// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

// Package formats compares serializations of an interned snapshot.
//
// Each Codec (binary, json, json_pretty) encodes the snapshot and is
// decoded again; the decoded records must reconstruct the same raw records
// or Compare fails with ErrRoundTrip. Each encoding is then run through every
// Compressor (gzip -6, zstd, s2, snappy) and decompressed for timing.
//
//	table, err := formats.Compare(ctx, snap, formats.Options{
//	    Codecs:      formats.Codecs(),
//	    Compressors: formats.Compressors(),
//	    InputBytes:  stats.InputBytes,
//	})
//	table.WriteTo(os.Stdout)
package formats
