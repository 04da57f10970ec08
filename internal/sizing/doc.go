// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

/*
Package sizing measures the byte footprint of a disruption dataset before and
after interning.

Both footprints follow a Model of fixed-width assumptions:

	ID            16 bytes (binary UUID)
	timestamp     TimestampWidth bytes, three per record
	string        StringHeaderWidth length prefix + UTF-8 bytes
	handle        smallest of 1, 2 or 4 bytes holding the largest dictionary size

The raw footprint stores every string inline on every record. The interned
footprint stores four handles per record, each dictionary once, and the
inline message and fixed-width fields of every record:

	raw      = N*(16 + 3*TS) + sum over records of 5*(H + len)
	interned = N*4*W + sum over dictionaries of (H + len) + N*(16 + 3*TS) + sum of (H + len(message))

The store package writes exactly this layout behind a fixed header, so a
ratio reported here is the ratio of real file sizes.

A width that cannot represent a count, a length or a timestamp fails with
intern.ErrWidthOverflow. Nothing is truncated.
*/
package sizing
