// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package store

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/disruptpack/internal/disruption"
	"github.com/tomtom215/disruptpack/internal/intern"
	"github.com/tomtom215/disruptpack/internal/rewrite"
	"github.com/tomtom215/disruptpack/internal/sizing"
)

var paris = time.FixedZone("CET", 3600)

func rawRecords(n, lines int) []disruption.RawRecord {
	out := make([]disruption.RawRecord, n)
	for i := range out {
		begin := time.Date(2024, 3, 1, 6, 0, 0, 0, paris).Add(time.Duration(i) * time.Hour)
		out[i] = disruption.RawRecord{
			ID:         uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprint(i))),
			Line:       fmt.Sprintf("line:IDFM:C%05d", i%lines),
			Cause:      []string{"PERTURBATION", "TRAVAUX"}[i%2],
			Severity:   "BLOQUANTE",
			Title:      "Trafic interrompu",
			Message:    strings.Repeat("m", i%7) + fmt.Sprint(i),
			LastUpdate: begin.Add(-time.Hour),
			Begin:      begin,
			End:        begin.Add(2 * time.Hour),
		}
	}
	return out
}

func buildSnapshot(t *testing.T, raw []disruption.RawRecord, m sizing.Model) *Snapshot {
	t.Helper()
	in := disruption.NewInterners()
	recs, err := rewrite.Rewrite(raw, in)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	return &Snapshot{Model: m, Interners: in, Records: recs}
}

func TestEncode_SizeMatchesModel(t *testing.T) {
	models := map[string]func(*sizing.Model){
		"default":          func(*sizing.Model) {},
		"four byte times":  func(m *sizing.Model) { m.TimestampWidth = 4 },
		"two byte headers": func(m *sizing.Model) { m.StringHeaderWidth = 2 },
		"pinned handles":   func(m *sizing.Model) { m.FixedHandleWidth = 4 },
	}

	for name, mutate := range models {
		t.Run(name, func(t *testing.T) {
			m := sizing.DefaultModel()
			mutate(&m)
			snap := buildSnapshot(t, rawRecords(300, 270), m)

			data, err := Encode(snap)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			interned, err := m.InternedSize(snap.Records, snap.Interners)
			if err != nil {
				t.Fatalf("InternedSize() error = %v", err)
			}
			if int64(len(data)) != HeaderSize+interned {
				t.Errorf("len(Encode()) = %d, want %d + %d", len(data), HeaderSize, interned)
			}
		})
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	raw := rawRecords(50, 5)
	snap := buildSnapshot(t, raw, sizing.DefaultModel())

	data, err := Encode(snap)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got.Model.FixedHandleWidth != 1 || got.Model.TimestampWidth != 8 || got.Model.StringHeaderWidth != 4 {
		t.Errorf("decoded model = %+v", got.Model)
	}
	for _, f := range disruption.InternedFields {
		want, have := snap.Interners.For(f).Values(), got.Interners.For(f).Values()
		if fmt.Sprint(want) != fmt.Sprint(have) {
			t.Errorf("%s dictionary = %v, want %v", f, have, want)
		}
	}

	// Decoded records reconstruct the original raw records
	if err := rewrite.Verify(raw, got.Records, got.Interners); err != nil {
		t.Errorf("Verify() after decode error = %v", err)
	}

	again, err := Encode(got)
	if err != nil {
		t.Fatalf("re-Encode() error = %v", err)
	}
	if !bytes.Equal(again, data) {
		t.Error("re-encoding a decoded snapshot changed its bytes")
	}
}

func TestEncode_Empty(t *testing.T) {
	snap := &Snapshot{Model: sizing.DefaultModel(), Interners: disruption.NewInterners()}

	data, err := Encode(snap)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(data) != HeaderSize {
		t.Errorf("len(Encode(empty)) = %d, want %d", len(data), HeaderSize)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got.Records) != 0 || got.Interners.MaxLen() != 0 {
		t.Errorf("decoded empty snapshot has %d records", len(got.Records))
	}
}

func TestEncode_Errors(t *testing.T) {
	t.Run("sub-second timestamp", func(t *testing.T) {
		snap := buildSnapshot(t, rawRecords(2, 2), sizing.DefaultModel())
		snap.Records[1].Begin = snap.Records[1].Begin.Add(time.Millisecond)
		if _, err := Encode(snap); !errors.Is(err, ErrUnsupportedTimestamp) {
			t.Errorf("Encode() error = %v, want ErrUnsupportedTimestamp", err)
		}
	})

	t.Run("handle width overflow", func(t *testing.T) {
		m := sizing.DefaultModel()
		m.FixedHandleWidth = 1
		snap := buildSnapshot(t, rawRecords(300, 300), m)
		if _, err := Encode(snap); !errors.Is(err, intern.ErrWidthOverflow) {
			t.Errorf("Encode() error = %v, want ErrWidthOverflow", err)
		}
	})

	t.Run("foreign handle", func(t *testing.T) {
		snap := buildSnapshot(t, rawRecords(3, 3), sizing.DefaultModel())
		snap.Records[0].Line = 42
		if _, err := Encode(snap); !errors.Is(err, intern.ErrHandleOutOfRange) {
			t.Errorf("Encode() error = %v, want ErrHandleOutOfRange", err)
		}
	})
}

func TestDecode_Corrupt(t *testing.T) {
	snap := buildSnapshot(t, rawRecords(10, 3), sizing.DefaultModel())
	data, err := Encode(snap)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	corrupt := func(mutate func([]byte) []byte) []byte {
		c := append([]byte(nil), data...)
		return mutate(c)
	}

	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"short header", data[:HeaderSize-1]},
		{"bad magic", corrupt(func(b []byte) []byte { b[0] = 'X'; return b })},
		{"bad version", corrupt(func(b []byte) []byte { b[4] = 9; return b })},
		{"bad timestamp width", corrupt(func(b []byte) []byte { b[5] = 3; return b })},
		{"zero handle width", corrupt(func(b []byte) []byte { b[7] = 0; return b })},
		{"truncated", data[:len(data)-1]},
		{"trailing bytes", append(append([]byte(nil), data...), 0)},
		{"huge record count", corrupt(func(b []byte) []byte { b[8], b[9], b[10], b[11] = 0xff, 0xff, 0xff, 0x7f; return b })},
		{"huge dictionary", corrupt(func(b []byte) []byte { b[12], b[13], b[14], b[15] = 0xff, 0xff, 0xff, 0x7f; return b })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.input); !errors.Is(err, ErrCorrupt) {
				t.Errorf("Decode() error = %v, want ErrCorrupt", err)
			}
		})
	}
}

func TestDecode_DuplicateDictionaryValue(t *testing.T) {
	raw := rawRecords(2, 2)
	raw[0].Line = "AA"
	raw[1].Line = "AB"
	snap := buildSnapshot(t, raw, sizing.DefaultModel())
	data, err := Encode(snap)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// The line dictionary opens the body: [len]AA[len]AB
	i := bytes.Index(data[HeaderSize:], []byte("AB"))
	data[HeaderSize+i+1] = 'A'

	if _, err := Decode(data); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Decode() error = %v, want ErrCorrupt", err)
	}
}

func TestFingerprint(t *testing.T) {
	a := buildSnapshot(t, rawRecords(20, 4), sizing.DefaultModel())
	b := buildSnapshot(t, rawRecords(20, 4), sizing.DefaultModel())
	c := buildSnapshot(t, rawRecords(21, 4), sizing.DefaultModel())

	fa, err := FingerprintSnapshot(a)
	if err != nil {
		t.Fatalf("FingerprintSnapshot() error = %v", err)
	}
	fb, _ := FingerprintSnapshot(b)
	fc, _ := FingerprintSnapshot(c)

	if fa != fb {
		t.Errorf("identical passes fingerprint differently: %s vs %s", fa, fb)
	}
	if fa == fc {
		t.Errorf("different inputs share fingerprint %s", fa)
	}
	if len(fa.String()) != 16 {
		t.Errorf("String() = %q, want 16 hex digits", fa.String())
	}
}
