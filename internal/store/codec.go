// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/disruptpack/internal/disruption"
	"github.com/tomtom215/disruptpack/internal/intern"
	"github.com/tomtom215/disruptpack/internal/sizing"
)

// Binary layout, little-endian:
//
//	header (HeaderSize bytes)
//	  magic            [4]byte "DPK1"
//	  version          uint8
//	  timestamp width  uint8
//	  string header    uint8
//	  handle width     uint8
//	  record count     uint32
//	  dictionary sizes 4 x uint32 (line, cause, severity, title)
//	dictionaries, in field order: length-prefixed strings
//	records: id [16]byte, 4 handles, last update, begin, end, message
const (
	// HeaderSize is the fixed size of the snapshot header.
	HeaderSize = 4 + 4 + 4 + 4*4

	// Version is the layout version written by Encode.
	Version = 1
)

var magic = [4]byte{'D', 'P', 'K', '1'}

var (
	// ErrCorrupt is returned when bytes do not decode to a valid snapshot.
	ErrCorrupt = errors.New("corrupt snapshot")

	// ErrUnsupportedTimestamp is returned for timestamps with sub-second
	// precision, which the layout does not store.
	ErrUnsupportedTimestamp = errors.New("unsupported timestamp")
)

// Snapshot is the durable artifact of a pass: the interned records, the
// interners their handles point into, and the model the layout follows.
type Snapshot struct {
	Model     sizing.Model
	Interners *disruption.Interners
	Records   []disruption.InternedRecord
}

// EncodedSize returns the exact length Encode will produce.
func EncodedSize(s *Snapshot) (int64, error) {
	n, err := s.Model.InternedSize(s.Records, s.Interners)
	if err != nil {
		return 0, err
	}
	return HeaderSize + n, nil
}

// Encode writes s in the binary layout. The result is HeaderSize plus the
// interned size the model reports for s.
func Encode(s *Snapshot) ([]byte, error) {
	m := s.Model
	if err := m.Validate(); err != nil {
		return nil, err
	}

	size, err := EncodedSize(s)
	if err != nil {
		return nil, err
	}
	width, err := m.HandleWidth(s.Interners.MaxLen())
	if err != nil {
		return nil, err
	}
	if uint64(len(s.Records)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d records", intern.ErrWidthOverflow, len(s.Records))
	}

	buf := make([]byte, 0, size)
	buf = append(buf, magic[:]...)
	buf = append(buf, Version, byte(m.TimestampWidth), byte(m.StringHeaderWidth), byte(width))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.Records)))
	for _, f := range disruption.InternedFields {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(s.Interners.For(f).Len()))
	}

	for _, f := range disruption.InternedFields {
		for _, v := range s.Interners.For(f).All() {
			buf = appendUint(buf, uint64(len(v)), m.StringHeaderWidth)
			buf = append(buf, v...)
		}
	}

	for i := range s.Records {
		r := &s.Records[i]
		buf = append(buf, r.ID[:]...)
		for _, f := range disruption.InternedFields {
			h := r.Handle(f)
			if int(h) >= s.Interners.For(f).Len() {
				return nil, fmt.Errorf("record %d %s: %w", i, f, intern.ErrHandleOutOfRange)
			}
			buf = appendUint(buf, uint64(h), width)
		}
		for _, t := range [...]time.Time{r.LastUpdate, r.Begin, r.End} {
			if t.Nanosecond() != 0 {
				return nil, fmt.Errorf("record %d: %w: %s has sub-second precision",
					i, ErrUnsupportedTimestamp, t.Format(time.RFC3339Nano))
			}
			buf = appendUint(buf, uint64(t.Unix()), m.TimestampWidth)
		}
		buf = appendUint(buf, uint64(len(r.Message)), m.StringHeaderWidth)
		buf = append(buf, r.Message...)
	}

	if int64(len(buf)) != size {
		return nil, fmt.Errorf("encoded %d bytes, size model expects %d", len(buf), size)
	}
	return buf, nil
}

// Decode reads a snapshot written by Encode. The decoded model pins the
// handle width found in the header. Timestamps decode in UTC.
func Decode(data []byte) (*Snapshot, error) {
	r := reader{data: data}

	head, err := r.next(HeaderSize)
	if err != nil {
		return nil, err
	}
	if [4]byte(head[0:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, head[0:4])
	}
	if head[4] != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, head[4])
	}

	m := sizing.DefaultModel()
	m.TimestampWidth = int(head[5])
	m.StringHeaderWidth = int(head[6])
	m.FixedHandleWidth = int(head[7])
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	width := m.FixedHandleWidth
	if width == 0 {
		return nil, fmt.Errorf("%w: zero handle width", ErrCorrupt)
	}

	count := binary.LittleEndian.Uint32(head[8:12])
	var dictLens [4]uint32
	for i := range dictLens {
		dictLens[i] = binary.LittleEndian.Uint32(head[12+4*i:])
	}

	in := &disruption.Interners{}
	for i, f := range disruption.InternedFields {
		n := int(dictLens[i])
		if n > r.remaining()/m.StringHeaderWidth {
			return nil, fmt.Errorf("%w: %s dictionary of %d values exceeds input", ErrCorrupt, f, n)
		}
		values := make([]string, n)
		for j := range values {
			if values[j], err = r.string(m.StringHeaderWidth); err != nil {
				return nil, err
			}
		}
		dict, err := intern.FromValues(values)
		if err != nil {
			return nil, fmt.Errorf("%w: %s dictionary: %v", ErrCorrupt, f, err)
		}
		setInterner(in, f, dict)
	}

	recordMin := sizing.IDWidth + 4*width + 3*m.TimestampWidth + m.StringHeaderWidth
	if uint64(count) > uint64(r.remaining()/recordMin) {
		return nil, fmt.Errorf("%w: %d records exceed input", ErrCorrupt, count)
	}

	records := make([]disruption.InternedRecord, count)
	for i := range records {
		rec := &records[i]

		id, err := r.next(sizing.IDWidth)
		if err != nil {
			return nil, err
		}
		rec.ID = uuid.UUID(id)

		for _, f := range disruption.InternedFields {
			h, err := r.uint(width)
			if err != nil {
				return nil, err
			}
			if h >= uint64(in.For(f).Len()) {
				return nil, fmt.Errorf("%w: record %d %s handle %d: %v", ErrCorrupt, i, f, h, intern.ErrHandleOutOfRange)
			}
			rec.SetHandle(f, intern.Handle(h))
		}

		for _, t := range [...]*time.Time{&rec.LastUpdate, &rec.Begin, &rec.End} {
			v, err := r.uint(m.TimestampWidth)
			if err != nil {
				return nil, err
			}
			sec := int64(v)
			if m.TimestampWidth == 4 {
				sec = int64(uint32(v))
			}
			*t = time.Unix(sec, 0).UTC()
		}

		if rec.Message, err = r.string(m.StringHeaderWidth); err != nil {
			return nil, err
		}
	}

	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, r.remaining())
	}

	return &Snapshot{Model: m, Interners: in, Records: records}, nil
}

func setInterner(in *disruption.Interners, f disruption.Field, dict *intern.Interner[string]) {
	switch f {
	case disruption.FieldLine:
		in.Line = dict
	case disruption.FieldCause:
		in.Cause = dict
	case disruption.FieldSeverity:
		in.Severity = dict
	case disruption.FieldTitle:
		in.Title = dict
	}
}

// appendUint appends the low w bytes of v.
func appendUint(buf []byte, v uint64, w int) []byte {
	switch w {
	case 1:
		return append(buf, byte(v))
	case 2:
		return binary.LittleEndian.AppendUint16(buf, uint16(v))
	case 4:
		return binary.LittleEndian.AppendUint32(buf, uint32(v))
	default:
		return binary.LittleEndian.AppendUint64(buf, v)
	}
}

// reader walks an encoded snapshot, turning short input into ErrCorrupt.
type reader struct {
	data []byte
	off  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) next(n int) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, fmt.Errorf("%w: truncated at offset %d", ErrCorrupt, r.off)
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) uint(w int) (uint64, error) {
	b, err := r.next(w)
	if err != nil {
		return 0, err
	}
	switch w {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(b)), nil
	default:
		return binary.LittleEndian.Uint64(b), nil
	}
}

func (r *reader) string(headerWidth int) (string, error) {
	n, err := r.uint(headerWidth)
	if err != nil {
		return "", err
	}
	if n > uint64(r.remaining()) {
		return "", fmt.Errorf("%w: string of %d bytes at offset %d exceeds input", ErrCorrupt, n, r.off)
	}
	b, err := r.next(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
