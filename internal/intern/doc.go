// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

// Package intern provides a generic append-only interner that replaces
// repeated values with small integer handles.
//
// # Overview
//
// An Interner[T] holds a dictionary of distinct values in first-seen order and
// a reverse index from value to handle. Interning a value that was already
// seen returns its existing handle; a new value is appended and receives the
// next handle. Handles are never reused or renumbered, so the dictionary is
// exactly the set of values seen so far and handles form the range [0, Len()).
//
//	lines := intern.New[string]()
//	a, _ := lines.Intern("A")  // 0
//	b, _ := lines.Intern("B")  // 1
//	a2, _ := lines.Intern("A") // 0
//	v, _ := lines.Resolve(b)   // "B"
//
// # Handle Scope
//
// A Handle carries no reference to the interner that issued it. Callers keep
// handles and their interners together; resolving a handle against another
// interner is a programming error that Resolve reports as ErrHandleOutOfRange
// only when the handle lies outside the dictionary.
//
// # Width Limits
//
// Handles are stored on disk in a fixed width (1, 2 or 4 bytes). WithLimit
// makes Intern fail with ErrWidthOverflow before it issues a handle that the
// chosen width could not hold.
//
// # Thread Safety
//
// Interners are not safe for concurrent mutation. Concurrent reads after the
// owning pass has finished are safe.
package intern
