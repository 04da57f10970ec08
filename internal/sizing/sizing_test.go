// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package sizing

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
)

// record builds a record whose fixed strings are SEV (3 bytes), TITLE
// (5 bytes) and msg-i (5 bytes for a single-digit i).
func record(i int, line, cause string) disruption.RawRecord {
	begin := time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour)
	return disruption.RawRecord{
		ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprint(i))),
		Line:       line,
		Cause:      cause,
		Severity:   "SEV",
		Title:      "TITLE",
		Message:    fmt.Sprintf("msg-%d", i),
		LastUpdate: begin,
		Begin:      begin,
		End:        begin.Add(time.Hour),
	}
}

func rewriteAll(t *testing.T, raw []disruption.RawRecord) ([]disruption.InternedRecord, *disruption.Interners) {
	t.Helper()
	in := disruption.NewInterners()
	out, err := rewrite.Rewrite(raw, in)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	return out, in
}

func TestModel_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Model)
		wantErr bool
	}{
		{"default", func(*Model) {}, false},
		{"four byte timestamps", func(m *Model) { m.TimestampWidth = 4 }, false},
		{"pinned width", func(m *Model) { m.FixedHandleWidth = 2 }, false},
		{"bad timestamp width", func(m *Model) { m.TimestampWidth = 6 }, true},
		{"bad header width", func(m *Model) { m.StringHeaderWidth = 3 }, true},
		{"zero header width", func(m *Model) { m.StringHeaderWidth = 0 }, true},
		{"bad fixed width", func(m *Model) { m.FixedHandleWidth = 8 }, true},
		{"min above max", func(m *Model) { m.MinHandleWidth = 4; m.MaxHandleWidth = 2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultModel()
			tt.mutate(&m)
			err := m.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidModel) {
				t.Errorf("Validate() error = %v, want ErrInvalidModel", err)
			}
		})
	}
}

func TestModel_HandleWidth(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Model)
		maxLen  int
		want    int
		wantErr bool
	}{
		{"empty", func(*Model) {}, 0, 1, false},
		{"one byte full", func(*Model) {}, 255, 1, false},
		{"one byte overflow", func(*Model) {}, 256, 2, false},
		{"two bytes full", func(*Model) {}, 65535, 2, false},
		{"two bytes overflow", func(*Model) {}, 65536, 4, false},
		{"min width raises", func(m *Model) { m.MinHandleWidth = 2 }, 3, 2, false},
		{"max width caps", func(m *Model) { m.MaxHandleWidth = 2 }, 70000, 0, true},
		{"fixed width fits", func(m *Model) { m.FixedHandleWidth = 4 }, 3, 4, false},
		{"fixed width too small", func(m *Model) { m.FixedHandleWidth = 2 }, 65536, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultModel()
			tt.mutate(&m)
			got, err := m.HandleWidth(tt.maxLen)
			if tt.wantErr {
				if !errors.Is(err, intern.ErrWidthOverflow) {
					t.Fatalf("HandleWidth(%d) error = %v, want ErrWidthOverflow", tt.maxLen, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("HandleWidth(%d) unexpected error: %v", tt.maxLen, err)
			}
			if got != tt.want {
				t.Errorf("HandleWidth(%d) = %d, want %d", tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestModel_HandleLimit(t *testing.T) {
	m := DefaultModel()
	if got := m.HandleLimit(); got != 0 {
		t.Errorf("HandleLimit() default = %d, want 0", got)
	}
	m.MaxHandleWidth = 2
	if got := m.HandleLimit(); got != 65535 {
		t.Errorf("HandleLimit() max 2 = %d, want 65535", got)
	}
	m.FixedHandleWidth = 1
	if got := m.HandleLimit(); got != 255 {
		t.Errorf("HandleLimit() fixed 1 = %d, want 255", got)
	}
}

func TestModel_StringSize(t *testing.T) {
	m := DefaultModel()
	m.StringHeaderWidth = 1

	n, err := m.StringSize(strings.Repeat("x", 255))
	if err != nil {
		t.Fatalf("StringSize(255) error = %v", err)
	}
	if n != 256 {
		t.Errorf("StringSize(255) = %d, want 256", n)
	}

	if _, err := m.StringSize(strings.Repeat("x", 256)); !errors.Is(err, intern.ErrWidthOverflow) {
		t.Errorf("StringSize(256) error = %v, want ErrWidthOverflow", err)
	}
}

func TestModel_CheckTimestamp(t *testing.T) {
	m := DefaultModel()
	before := time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2107, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := m.CheckTimestamp(before); err != nil {
		t.Errorf("8-byte CheckTimestamp(1960) error = %v", err)
	}

	m.TimestampWidth = 4
	if err := m.CheckTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Errorf("4-byte CheckTimestamp(2024) error = %v", err)
	}
	for _, ts := range []time.Time{before, after} {
		if err := m.CheckTimestamp(ts); !errors.Is(err, intern.ErrWidthOverflow) {
			t.Errorf("4-byte CheckTimestamp(%d) error = %v, want ErrWidthOverflow", ts.Year(), err)
		}
	}
}

func TestSizes_ThreeRecordScenario(t *testing.T) {
	raw := []disruption.RawRecord{
		record(0, "A", "signal_failure"),
		record(1, "A", "signal_failure"),
		record(2, "B", "signal_failure"),
	}
	interned, in := rewriteAll(t, raw)
	m := DefaultModel()

	// 16 + 3*8 + (4+1) + (4+14) + (4+3) + (4+5) + (4+5) = 88 per record
	rawSize, err := m.RawSize(raw)
	if err != nil {
		t.Fatalf("RawSize() error = %v", err)
	}
	if rawSize != 264 {
		t.Errorf("RawSize() = %d, want 264", rawSize)
	}

	// handles 3*4*1 + dictionaries (5+5) + 18 + 7 + 9 + inline 3*(40+9)
	internedSize, err := m.InternedSize(interned, in)
	if err != nil {
		t.Fatalf("InternedSize() error = %v", err)
	}
	if internedSize != 203 {
		t.Errorf("InternedSize() = %d, want 203", internedSize)
	}

	report, err := m.Measure(raw, interned, in)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}
	if got := FormatRatio(report.Ratio()); got != "1.3005" {
		t.Errorf("FormatRatio(Ratio()) = %s, want 1.3005", got)
	}
	if report.HandleWidth != 1 {
		t.Errorf("HandleWidth = %d, want 1", report.HandleWidth)
	}
	if report.InlineBytes != 147 {
		t.Errorf("InlineBytes = %d, want 147", report.InlineBytes)
	}
	if report.Saved() != 61 {
		t.Errorf("Saved() = %d, want 61", report.Saved())
	}

	line := report.Fields[0]
	if line.Field != "line" || line.Distinct != 2 || line.References != 3 || line.DictionaryBytes != 10 || line.HandleBytes != 3 {
		t.Errorf("line stats = %+v", line)
	}
	if line.RefsPerObject() != 1.5 {
		t.Errorf("line RefsPerObject() = %v, want 1.5", line.RefsPerObject())
	}
	if report.DictionaryBytes() != 44 {
		t.Errorf("DictionaryBytes() = %d, want 44", report.DictionaryBytes())
	}
}

func TestSizes_Empty(t *testing.T) {
	in := disruption.NewInterners()
	report, err := DefaultModel().Measure(nil, nil, in)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}
	if report.RawBytes != 0 || report.InternedBytes != 0 {
		t.Errorf("sizes = %d/%d, want 0/0", report.RawBytes, report.InternedBytes)
	}
	if report.Ratio() != 1.0 {
		t.Errorf("Ratio() = %v, want 1.0", report.Ratio())
	}
	if FormatRatio(report.Ratio()) != "1.0000" {
		t.Errorf("FormatRatio() = %s, want 1.0000", FormatRatio(report.Ratio()))
	}
	for _, f := range report.Fields {
		if f.BytesPerObject() != 0 || f.RefsPerObject() != 0 {
			t.Errorf("%s per-object stats should be 0 on empty input", f.Field)
		}
	}
}

func TestSizes_AllDistinct(t *testing.T) {
	const n = 9
	raw := make([]disruption.RawRecord, n)
	for i := range raw {
		raw[i] = record(i, fmt.Sprintf("L%d", i), fmt.Sprintf("C%d", i))
		raw[i].Severity = fmt.Sprintf("S%d", i)
		raw[i].Title = fmt.Sprintf("T%d", i)
	}
	interned, in := rewriteAll(t, raw)

	report, err := DefaultModel().Measure(raw, interned, in)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	// Every value is stored once either way, so the handles are pure overhead
	if overhead := report.InternedBytes - report.RawBytes; overhead != n*4*1 {
		t.Errorf("interned - raw = %d, want %d", overhead, n*4)
	}
	if report.Ratio() >= 1.0 {
		t.Errorf("Ratio() = %v, want < 1.0", report.Ratio())
	}
}

func TestSizes_RepetitionShrinks(t *testing.T) {
	lines := []string{"line:IDFM:C01742", "line:IDFM:C01743", "line:IDFM:C01727"}
	causes := []string{"PERTURBATION", "TRAVAUX"}

	for _, n := range []int{2, 10, 500} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			raw := make([]disruption.RawRecord, n)
			for i := range raw {
				raw[i] = record(i, lines[i%len(lines)], causes[i%len(causes)])
				raw[i].Title = "Trafic interrompu entre deux gares"
			}
			interned, in := rewriteAll(t, raw)

			report, err := DefaultModel().Measure(raw, interned, in)
			if err != nil {
				t.Fatalf("Measure() error = %v", err)
			}
			if report.InternedBytes >= report.RawBytes {
				t.Errorf("interned %d >= raw %d", report.InternedBytes, report.RawBytes)
			}
		})
	}
}

func TestSizes_WidthOverflow(t *testing.T) {
	raw := make([]disruption.RawRecord, 300)
	for i := range raw {
		raw[i] = record(i, fmt.Sprintf("L%d", i), "C")
	}
	interned, in := rewriteAll(t, raw)

	m := DefaultModel()
	m.FixedHandleWidth = 1
	if _, err := m.InternedSize(interned, in); !errors.Is(err, intern.ErrWidthOverflow) {
		t.Errorf("InternedSize() error = %v, want ErrWidthOverflow", err)
	}
	if _, err := m.Measure(raw, interned, in); !errors.Is(err, intern.ErrWidthOverflow) {
		t.Errorf("Measure() error = %v, want ErrWidthOverflow", err)
	}

	m = DefaultModel()
	m.StringHeaderWidth = 1
	raw[0].Message = strings.Repeat("m", 300)
	if _, err := m.RawSize(raw); !errors.Is(err, intern.ErrWidthOverflow) {
		t.Errorf("RawSize() error = %v, want ErrWidthOverflow", err)
	}
}

func TestMeasure_ReferencesFromInterners(t *testing.T) {
	in := disruption.NewInterners()
	first := []disruption.RawRecord{record(0, "A", "X"), record(1, "B", "X")}
	if _, err := rewrite.Rewrite(first, in); err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	// A second batch on the same interners: the counters span both.
	raw := []disruption.RawRecord{record(2, "A", "Y")}
	interned, err := rewrite.Rewrite(raw, in)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	report, err := DefaultModel().Measure(raw, interned, in)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}
	for i, f := range disruption.InternedFields {
		if got, want := report.Fields[i].References, in.For(f).References(); got != want {
			t.Errorf("%s References = %d, want %d", f, got, want)
		}
	}
	line := report.Fields[0]
	if line.Distinct != 2 || line.References != 3 {
		t.Errorf("line stats = %+v, want 2 distinct and 3 references", line)
	}
}

func TestReport_WriteTo(t *testing.T) {
	raw := []disruption.RawRecord{record(0, "A", "X"), record(1, "A", "X")}
	interned, in := rewriteAll(t, raw)

	report, err := DefaultModel().Measure(raw, interned, in)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	var buf bytes.Buffer
	n, err := report.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo() = %d, wrote %d", n, buf.Len())
	}

	out := buf.String()
	for _, want := range []string{"Records:", "Ratio:", FormatRatio(report.Ratio()), "line", "cause", "severity", "title"} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteTo() output missing %q:\n%s", want, out)
		}
	}
}
