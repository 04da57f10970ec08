// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package sizing

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/disruptpack/internal/disruption"
	"github.com/tomtom215/disruptpack/internal/intern"
	"github.com/tomtom215/disruptpack/internal/validation"
)

// IDWidth is the stored size of a disruption ID (a binary UUID).
const IDWidth = 16

// TimestampCount is the number of timestamps per record (last update, begin, end).
const TimestampCount = 3

// ErrInvalidModel is returned by Validate for an inconsistent set of widths.
var ErrInvalidModel = errors.New("invalid size model")

// handleWidths are the fixed integer widths a handle may take, ascending.
var handleWidths = []int{1, 2, 4}

// Model holds the fixed-width assumptions behind both footprints.
// The binary snapshot codec writes exactly this layout.
type Model struct {
	// TimestampWidth is 8 (signed Unix seconds) or 4 (unsigned Unix seconds).
	TimestampWidth int `koanf:"timestamp_width" json:"timestamp_width" validate:"oneof=4 8"`

	// StringHeaderWidth is the length prefix written before every string.
	StringHeaderWidth int `koanf:"string_header_width" json:"string_header_width" validate:"oneof=1 2 4"`

	// MinHandleWidth and MaxHandleWidth bound the automatic handle width.
	MinHandleWidth int `koanf:"min_handle_width" json:"min_handle_width" validate:"oneof=1 2 4"`
	MaxHandleWidth int `koanf:"max_handle_width" json:"max_handle_width" validate:"oneof=1 2 4"`

	// FixedHandleWidth pins the handle width; 0 selects it from the data.
	FixedHandleWidth int `koanf:"fixed_handle_width" json:"fixed_handle_width" validate:"oneof=0 1 2 4"`
}

// DefaultModel returns 8-byte timestamps, 4-byte string headers and an
// automatically selected handle width of 1 to 4 bytes.
func DefaultModel() Model {
	return Model{
		TimestampWidth:    8,
		StringHeaderWidth: 4,
		MinHandleWidth:    1,
		MaxHandleWidth:    4,
		FixedHandleWidth:  0,
	}
}

// Validate checks every width against its allowed set and the bounds against each other.
func (m Model) Validate() error {
	if err := validation.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if m.MinHandleWidth > m.MaxHandleWidth {
		return fmt.Errorf("%w: min handle width %d exceeds max handle width %d",
			ErrInvalidModel, m.MinHandleWidth, m.MaxHandleWidth)
	}
	return nil
}

// MaxValue returns the largest unsigned value a width of w bytes can hold.
func MaxValue(w int) uint64 {
	if w >= 8 {
		return math.MaxUint64
	}
	return 1<<(8*uint(w)) - 1
}

// HandleWidth returns the handle width for dictionaries of at most maxLen
// values. The count itself must be representable, so 255 values fit in one
// byte and 256 need two. A pinned width that is too small, or a count that
// exceeds MaxHandleWidth, is ErrWidthOverflow.
func (m Model) HandleWidth(maxLen int) (int, error) {
	n := uint64(maxLen)

	if m.FixedHandleWidth != 0 {
		if n > MaxValue(m.FixedHandleWidth) {
			return 0, fmt.Errorf("%w: %d distinct values exceed %d-byte handles",
				intern.ErrWidthOverflow, maxLen, m.FixedHandleWidth)
		}
		return m.FixedHandleWidth, nil
	}

	for _, w := range handleWidths {
		if w < m.MinHandleWidth || w > m.MaxHandleWidth {
			continue
		}
		if n <= MaxValue(w) {
			return w, nil
		}
	}
	return 0, fmt.Errorf("%w: %d distinct values exceed %d-byte handles",
		intern.ErrWidthOverflow, maxLen, m.MaxHandleWidth)
}

// HandleLimit returns the largest dictionary the model can address, for use
// with intern.WithLimit so a rewrite fails as soon as a field overflows.
// Four-byte handles return 0, which leaves the interner's own limit in place.
func (m Model) HandleLimit() int {
	w := m.MaxHandleWidth
	if m.FixedHandleWidth != 0 {
		w = m.FixedHandleWidth
	}
	if w >= 4 {
		return 0
	}
	return int(MaxValue(w))
}

// StringSize returns the stored size of s: header plus bytes.
func (m Model) StringSize(s string) (int64, error) {
	if uint64(len(s)) > MaxValue(m.StringHeaderWidth) {
		return 0, fmt.Errorf("%w: string of %d bytes exceeds %d-byte length header",
			intern.ErrWidthOverflow, len(s), m.StringHeaderWidth)
	}
	return int64(m.StringHeaderWidth) + int64(len(s)), nil
}

// CheckTimestamp reports whether t fits the timestamp width.
// Four-byte timestamps hold unsigned seconds from 1970 to 2106.
func (m Model) CheckTimestamp(t time.Time) error {
	if m.TimestampWidth >= 8 {
		return nil
	}
	sec := t.Unix()
	if sec < 0 || uint64(sec) > MaxValue(m.TimestampWidth) {
		return fmt.Errorf("%w: timestamp %s exceeds %d-byte width",
			intern.ErrWidthOverflow, t.UTC().Format(time.RFC3339), m.TimestampWidth)
	}
	return nil
}

// fixedRecordSize is the size of the fixed-width part of every record.
func (m Model) fixedRecordSize() int64 {
	return IDWidth + TimestampCount*int64(m.TimestampWidth)
}

func (m Model) checkTimestamps(ts ...time.Time) error {
	for _, t := range ts {
		if err := m.CheckTimestamp(t); err != nil {
			return err
		}
	}
	return nil
}

// RawRecordSize returns the footprint of one record stored fully inline.
func (m Model) RawRecordSize(r *disruption.RawRecord) (int64, error) {
	if err := m.checkTimestamps(r.LastUpdate, r.Begin, r.End); err != nil {
		return 0, err
	}

	size := m.fixedRecordSize()
	for _, s := range [...]string{r.Line, r.Cause, r.Severity, r.Title, r.Message} {
		n, err := m.StringSize(s)
		if err != nil {
			return 0, err
		}
		size += n
	}
	return size, nil
}

// RawSize returns the footprint of records if every value were stored
// inline. Repeated values are counted on every occurrence.
func (m Model) RawSize(records []disruption.RawRecord) (int64, error) {
	var total int64
	for i := range records {
		n, err := m.RawRecordSize(&records[i])
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		total += n
	}
	return total, nil
}

// DictionarySize returns the stored size of one interner's distinct values.
func (m Model) DictionarySize(in *intern.Interner[string]) (int64, error) {
	var total int64
	for _, v := range in.All() {
		n, err := m.StringSize(v)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// InlineSize returns the footprint of the values an interned record keeps inline.
func (m Model) InlineSize(r *disruption.InternedRecord) (int64, error) {
	if err := m.checkTimestamps(r.LastUpdate, r.Begin, r.End); err != nil {
		return 0, err
	}
	n, err := m.StringSize(r.Message)
	if err != nil {
		return 0, err
	}
	return m.fixedRecordSize() + n, nil
}

// InternedSize returns the footprint of the interned representation:
// the handle arrays, every dictionary, and the inline values of each record.
func (m Model) InternedSize(records []disruption.InternedRecord, in *disruption.Interners) (int64, error) {
	width, err := m.HandleWidth(in.MaxLen())
	if err != nil {
		return 0, err
	}

	total := int64(len(records)) * int64(len(disruption.InternedFields)) * int64(width)

	for _, f := range disruption.InternedFields {
		n, err := m.DictionarySize(in.For(f))
		if err != nil {
			return 0, fmt.Errorf("%s dictionary: %w", f, err)
		}
		total += n
	}

	for i := range records {
		n, err := m.InlineSize(&records[i])
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		total += n
	}

	return total, nil
}
