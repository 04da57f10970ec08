// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package intern

import (
	"errors"
	"fmt"
	"iter"
	"math"
)

// Handle is a dense, zero-based reference to a value held by one Interner.
// A Handle is only meaningful relative to the Interner that issued it.
type Handle uint32

var (
	// ErrHandleOutOfRange is returned when resolving a handle that was never
	// issued by the interner. It always indicates a programming error.
	ErrHandleOutOfRange = errors.New("handle out of range")

	// ErrWidthOverflow is returned when a value count or length cannot be
	// represented in the fixed width chosen for it.
	ErrWidthOverflow = errors.New("width overflow")
)

// Option configures an Interner.
type Option func(*options)

type options struct {
	capacity int
	limit    int64
}

// WithCapacity preallocates room for n distinct values.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithLimit caps the number of distinct values the interner accepts.
// Interning a new value beyond the limit fails with ErrWidthOverflow
// instead of issuing a handle that the chosen width cannot store.
func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = int64(n)
		}
	}
}

// Interner is an append-only deduplicating store mapping values to handles.
//
// Key properties:
//   - O(1) expected Intern and Resolve (map reverse index + slice dictionary)
//   - Handles are assigned sequentially from 0 in first-seen order
//   - Values are never removed, replaced or renumbered
//
// An Interner is not safe for concurrent mutation. It is owned by a single
// rewriting pass and becomes read-only once the pass completes.
type Interner[T comparable] struct {
	// values is the dictionary, indexed by handle
	values []T

	// index is the reverse lookup from value to handle
	index map[T]Handle

	// limit is the maximum number of distinct values
	limit int64

	// references counts every Intern call, including hits
	references int
}

// New creates an empty Interner.
func New[T comparable](opts ...Option) *Interner[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	limit := o.limit
	if limit == 0 || limit > math.MaxUint32 {
		limit = math.MaxUint32
	}

	return &Interner[T]{
		values: make([]T, 0, o.capacity),
		index:  make(map[T]Handle, o.capacity),
		limit:  limit,
	}
}

// Intern returns the handle of v, appending v to the dictionary if it has
// not been seen before.
func (in *Interner[T]) Intern(v T) (Handle, error) {
	in.references++

	if h, ok := in.index[v]; ok {
		return h, nil
	}

	if int64(len(in.values)) >= in.limit {
		in.references--
		return 0, fmt.Errorf("%w: interner holds %d values, limit is %d", ErrWidthOverflow, len(in.values), in.limit)
	}

	h := Handle(len(in.values))
	in.values = append(in.values, v)
	in.index[v] = h
	return h, nil
}

// Lookup returns the handle of v without interning it.
func (in *Interner[T]) Lookup(v T) (Handle, bool) {
	h, ok := in.index[v]
	return h, ok
}

// Resolve returns the value interned under h.
func (in *Interner[T]) Resolve(h Handle) (T, error) {
	if int64(h) >= int64(len(in.values)) {
		var zero T
		return zero, fmt.Errorf("%w: handle %d, interner holds %d values", ErrHandleOutOfRange, h, len(in.values))
	}
	return in.values[h], nil
}

// MustResolve is like Resolve but panics if h was not issued by this interner.
func (in *Interner[T]) MustResolve(h Handle) T {
	v, err := in.Resolve(h)
	if err != nil {
		panic(err)
	}
	return v
}

// Len returns the number of distinct values held.
func (in *Interner[T]) Len() int {
	return len(in.values)
}

// References returns the number of successful Intern calls, hits included.
func (in *Interner[T]) References() int {
	return in.references
}

// Values returns a copy of the dictionary in handle order.
func (in *Interner[T]) Values() []T {
	out := make([]T, len(in.values))
	copy(out, in.values)
	return out
}

// All iterates the dictionary in handle order.
func (in *Interner[T]) All() iter.Seq2[Handle, T] {
	return func(yield func(Handle, T) bool) {
		for i, v := range in.values {
			if !yield(Handle(i), v) {
				return
			}
		}
	}
}

// FromValues rebuilds an interner from a dictionary in handle order, as read
// back from a snapshot. Duplicate values are rejected.
func FromValues[T comparable](values []T, opts ...Option) (*Interner[T], error) {
	in := New[T](append([]Option{WithCapacity(len(values))}, opts...)...)
	for i, v := range values {
		if _, ok := in.index[v]; ok {
			return nil, fmt.Errorf("duplicate dictionary value at handle %d", i)
		}
		if _, err := in.Intern(v); err != nil {
			return nil, err
		}
	}
	in.references = 0
	return in, nil
}
