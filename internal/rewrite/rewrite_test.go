// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package rewrite

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/disruptpack/internal/disruption"
	"github.com/tomtom215/disruptpack/internal/intern"
)

var baseTime = time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

func makeRecord(i int, line, cause string) disruption.RawRecord {
	begin := baseTime.Add(time.Duration(i) * time.Hour)
	return disruption.RawRecord{
		ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("disruption-%d", i))),
		Line:       line,
		Cause:      cause,
		Severity:   "PERTURBEE",
		Title:      "Trafic perturbé",
		Message:    fmt.Sprintf("Message %d", i),
		LastUpdate: begin.Add(-time.Minute),
		Begin:      begin,
		End:        begin.Add(2 * time.Hour),
	}
}

func threeRecords() []disruption.RawRecord {
	return []disruption.RawRecord{
		makeRecord(0, "A", "signal_failure"),
		makeRecord(1, "A", "signal_failure"),
		makeRecord(2, "B", "signal_failure"),
	}
}

func TestRewrite_SharedHandles(t *testing.T) {
	raw := threeRecords()
	in := disruption.NewInterners()

	out, err := Rewrite(raw, in)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if len(out) != len(raw) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(raw))
	}

	lines := in.Line.Values()
	if len(lines) != 2 || lines[0] != "A" || lines[1] != "B" {
		t.Errorf("line dictionary = %v, want [A B]", lines)
	}
	causes := in.Cause.Values()
	if len(causes) != 1 || causes[0] != "signal_failure" {
		t.Errorf("cause dictionary = %v, want [signal_failure]", causes)
	}

	if out[0].Line != 0 || out[1].Line != 0 {
		t.Errorf("records 0 and 1 should share line handle 0, got %d and %d", out[0].Line, out[1].Line)
	}
	if out[2].Line != 1 {
		t.Errorf("record 2 line handle = %d, want 1", out[2].Line)
	}
	for i, rec := range out {
		if rec.Cause != 0 {
			t.Errorf("record %d cause handle = %d, want 0", i, rec.Cause)
		}
	}
}

func TestRewrite_CopiesInlineFields(t *testing.T) {
	raw := threeRecords()
	out, err := Rewrite(raw, disruption.NewInterners())
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	for i := range raw {
		if out[i].ID != raw[i].ID {
			t.Errorf("record %d ID = %v, want %v", i, out[i].ID, raw[i].ID)
		}
		if out[i].Message != raw[i].Message {
			t.Errorf("record %d Message = %q, want %q", i, out[i].Message, raw[i].Message)
		}
		if !out[i].Begin.Equal(raw[i].Begin) || !out[i].End.Equal(raw[i].End) {
			t.Errorf("record %d interval changed", i)
		}
	}
}

func TestRewrite_Empty(t *testing.T) {
	in := disruption.NewInterners()

	out, err := Rewrite(nil, in)
	if err != nil {
		t.Fatalf("Rewrite(nil) error = %v", err)
	}
	if len(out) != 0 {
		t.Errorf("len(out) = %d, want 0", len(out))
	}
	for _, f := range disruption.InternedFields {
		if in.For(f).Len() != 0 {
			t.Errorf("%s interner Len() = %d, want 0", f, in.For(f).Len())
		}
	}
}

func TestRewrite_AllDistinct(t *testing.T) {
	const n = 20
	raw := make([]disruption.RawRecord, n)
	for i := range raw {
		raw[i] = makeRecord(i, fmt.Sprintf("line-%d", i), fmt.Sprintf("cause-%d", i))
		raw[i].Severity = fmt.Sprintf("severity-%d", i)
		raw[i].Title = fmt.Sprintf("title-%d", i)
	}

	in := disruption.NewInterners()
	out, err := Rewrite(raw, in)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if len(out) != n {
		t.Fatalf("len(out) = %d, want %d", len(out), n)
	}
	for _, f := range disruption.InternedFields {
		if got := in.For(f).Len(); got != n {
			t.Errorf("%s interner Len() = %d, want %d", f, got, n)
		}
	}
	if err := Verify(raw, out, in); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestRewrite_RejectsInvalidRecord(t *testing.T) {
	raw := threeRecords()
	raw[1].Cause = ""

	in := disruption.NewInterners()
	out, err := Rewrite(raw, in)
	if err == nil {
		t.Fatal("Rewrite() expected error for missing cause")
	}
	if !errors.Is(err, disruption.ErrInvalidRecord) {
		t.Errorf("Rewrite() error = %v, want ErrInvalidRecord", err)
	}
	if out != nil {
		t.Errorf("Rewrite() returned %d records on failure, want nil", len(out))
	}
}

func TestRewrite_WidthOverflow(t *testing.T) {
	raw := threeRecords()
	in := disruption.NewInterners(intern.WithLimit(1))

	_, err := Rewrite(raw, in)
	if !errors.Is(err, intern.ErrWidthOverflow) {
		t.Fatalf("Rewrite() error = %v, want ErrWidthOverflow", err)
	}
	if in.Line.Len() != 1 {
		t.Errorf("line interner grew past its limit: Len() = %d", in.Line.Len())
	}
}

func TestRewrite_Deterministic(t *testing.T) {
	raw := append(threeRecords(), makeRecord(3, "C", "travaux"), makeRecord(4, "A", "travaux"))

	in1 := disruption.NewInterners()
	out1, err := Rewrite(raw, in1)
	if err != nil {
		t.Fatalf("first Rewrite() error = %v", err)
	}
	in2 := disruption.NewInterners()
	out2, err := Rewrite(raw, in2)
	if err != nil {
		t.Fatalf("second Rewrite() error = %v", err)
	}

	for _, f := range disruption.InternedFields {
		a, b := in1.For(f).Values(), in2.For(f).Values()
		if fmt.Sprint(a) != fmt.Sprint(b) {
			t.Errorf("%s dictionaries differ: %v vs %v", f, a, b)
		}
	}
	for i := range out1 {
		if out1[i] != out2[i] {
			t.Errorf("record %d differs between runs", i)
		}
	}
}

func TestRewriter_Streaming(t *testing.T) {
	in := disruption.NewInterners()
	rw := NewRewriter(in)

	for i, rec := range threeRecords() {
		if _, err := rw.Add(rec); err != nil {
			t.Fatalf("Add(%d) error = %v", i, err)
		}
		if rw.Count() != i+1 {
			t.Errorf("Count() = %d, want %d", rw.Count(), i+1)
		}
	}
	if rw.Interners() != in {
		t.Error("Interners() should return the supplied set")
	}

	// A rejected record does not advance the count
	bad := makeRecord(9, "", "x")
	if _, err := rw.Add(bad); err == nil {
		t.Fatal("Add() expected error for missing line")
	}
	if rw.Count() != 3 {
		t.Errorf("Count() after rejected record = %d, want 3", rw.Count())
	}
}

func TestReconstruct_RoundTrip(t *testing.T) {
	raw := append(threeRecords(), makeRecord(3, "C", "travaux"))
	in := disruption.NewInterners()

	out, err := Rewrite(raw, in)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	for i := range out {
		got, err := Reconstruct(out[i], in)
		if err != nil {
			t.Fatalf("Reconstruct(%d) error = %v", i, err)
		}
		if !got.Equal(raw[i]) {
			t.Errorf("Reconstruct(%d) differs in %s", i, got.Diff(raw[i]))
		}
	}

	all, err := ReconstructAll(out, in)
	if err != nil {
		t.Fatalf("ReconstructAll() error = %v", err)
	}
	if len(all) != len(raw) {
		t.Errorf("ReconstructAll() len = %d, want %d", len(all), len(raw))
	}
}

func TestReconstruct_ForeignHandle(t *testing.T) {
	out, err := Rewrite(threeRecords(), disruption.NewInterners())
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	// Handles are meaningless against another set of interners
	_, err = Reconstruct(out[2], disruption.NewInterners())
	if !errors.Is(err, intern.ErrHandleOutOfRange) {
		t.Errorf("Reconstruct() error = %v, want ErrHandleOutOfRange", err)
	}
}

func TestVerify(t *testing.T) {
	raw := threeRecords()
	in := disruption.NewInterners()
	out, err := Rewrite(raw, in)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	tests := []struct {
		name    string
		raw     []disruption.RawRecord
		out     []disruption.InternedRecord
		wantErr error
	}{
		{name: "matching", raw: raw, out: out, wantErr: nil},
		{name: "length mismatch", raw: raw[:2], out: out, wantErr: ErrLengthMismatch},
		{
			name:    "swapped order",
			raw:     raw,
			out:     []disruption.InternedRecord{out[0], out[2], out[1]},
			wantErr: ErrMismatch,
		},
		{
			name:    "changed message",
			raw:     raw,
			out:     withMessage(out, 1, "edited"),
			wantErr: ErrMismatch,
		},
		{name: "both empty", raw: nil, out: nil, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(tt.raw, tt.out, in)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Verify() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func withMessage(recs []disruption.InternedRecord, i int, msg string) []disruption.InternedRecord {
	c := append([]disruption.InternedRecord(nil), recs...)
	c[i].Message = msg
	return c
}

func BenchmarkRewrite(b *testing.B) {
	raw := make([]disruption.RawRecord, 1000)
	for i := range raw {
		raw[i] = makeRecord(i, fmt.Sprintf("line-%d", i%40), fmt.Sprintf("cause-%d", i%5))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Rewrite(raw, disruption.NewInterners()); err != nil {
			b.Fatal(err)
		}
	}
}
