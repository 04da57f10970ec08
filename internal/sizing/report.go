// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package sizing

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/tomtom215/disruptpack/internal/disruption"
)

// RatioPrecision is the number of decimal places a ratio is reported with.
const RatioPrecision = 4

// FieldStats describes one interned field of a measured dataset.
type FieldStats struct {
	Field           string `json:"field"`
	Distinct        int    `json:"distinct"`
	References      int    `json:"references"`
	DictionaryBytes int64  `json:"dictionary_bytes"`
	HandleBytes     int64  `json:"handle_bytes"`
}

// BytesPerObject is the mean stored size of one distinct value.
func (s FieldStats) BytesPerObject() float64 {
	if s.Distinct == 0 {
		return 0
	}
	return float64(s.DictionaryBytes) / float64(s.Distinct)
}

// RefsPerObject is the mean number of records referencing one distinct value.
func (s FieldStats) RefsPerObject() float64 {
	if s.Distinct == 0 {
		return 0
	}
	return float64(s.References) / float64(s.Distinct)
}

// Report is the result of measuring one dataset under one Model.
type Report struct {
	Model         Model        `json:"model"`
	Records       int          `json:"records"`
	HandleWidth   int          `json:"handle_width"`
	RawBytes      int64        `json:"raw_bytes"`
	InternedBytes int64        `json:"interned_bytes"`
	InlineBytes   int64        `json:"inline_bytes"`
	Fields        []FieldStats `json:"fields"`
}

// Measure computes both footprints of a rewritten dataset along with the
// per-field breakdown.
func (m Model) Measure(raw []disruption.RawRecord, interned []disruption.InternedRecord, in *disruption.Interners) (*Report, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	rawBytes, err := m.RawSize(raw)
	if err != nil {
		return nil, fmt.Errorf("raw size: %w", err)
	}
	internedBytes, err := m.InternedSize(interned, in)
	if err != nil {
		return nil, fmt.Errorf("interned size: %w", err)
	}

	// InternedSize already validated the width
	width, _ := m.HandleWidth(in.MaxLen())

	r := &Report{
		Model:         m,
		Records:       len(interned),
		HandleWidth:   width,
		RawBytes:      rawBytes,
		InternedBytes: internedBytes,
		Fields:        make([]FieldStats, 0, len(disruption.InternedFields)),
	}

	var dictBytes int64
	for _, f := range disruption.InternedFields {
		d, err := m.DictionarySize(in.For(f))
		if err != nil {
			return nil, fmt.Errorf("%s dictionary: %w", f, err)
		}
		dictBytes += d
		r.Fields = append(r.Fields, FieldStats{
			Field:           f.String(),
			Distinct:        in.For(f).Len(),
			References:      in.For(f).References(),
			DictionaryBytes: d,
			HandleBytes:     int64(len(interned)) * int64(width),
		})
	}
	r.InlineBytes = internedBytes - dictBytes - int64(len(interned))*int64(len(disruption.InternedFields))*int64(width)

	return r, nil
}

// Ratio returns RawBytes / InternedBytes. An empty dataset has ratio 1.
func (r *Report) Ratio() float64 {
	if r.InternedBytes == 0 {
		if r.RawBytes == 0 {
			return 1.0
		}
		return 0
	}
	return float64(r.RawBytes) / float64(r.InternedBytes)
}

// Saved returns how many bytes interning saves; negative when it costs more.
func (r *Report) Saved() int64 {
	return r.RawBytes - r.InternedBytes
}

// DictionaryBytes returns the combined size of every dictionary.
func (r *Report) DictionaryBytes() int64 {
	var total int64
	for _, f := range r.Fields {
		total += f.DictionaryBytes
	}
	return total
}

// Share returns part as a percentage of the interned footprint.
func (r *Report) Share(part int64) float64 {
	if r.InternedBytes == 0 {
		return 0
	}
	return float64(part) * 100 / float64(r.InternedBytes)
}

// FormatRatio renders a ratio with RatioPrecision decimal places.
func FormatRatio(ratio float64) string {
	return strconv.FormatFloat(ratio, 'f', RatioPrecision, 64)
}

// WriteTo prints the report as a human-readable summary.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Records:        %d (handle width %d bytes)\n", r.Records, r.HandleWidth)
	fmt.Fprintf(&sb, "Raw size:       %d bytes (%s)\n", r.RawBytes, humanize.IBytes(uint64(r.RawBytes)))
	fmt.Fprintf(&sb, "Interned size:  %d bytes (%s)\n", r.InternedBytes, humanize.IBytes(uint64(r.InternedBytes)))
	fmt.Fprintf(&sb, "Ratio:          %s\n", FormatRatio(r.Ratio()))
	fmt.Fprintf(&sb, "[%.02f%%] Inline values: %d bytes\n", r.Share(r.InlineBytes), r.InlineBytes)
	fmt.Fprintf(&sb, "[%.02f%%] Interners: %d bytes\n", r.Share(r.DictionaryBytes()), r.DictionaryBytes())

	tw := tabwriter.NewWriter(&sb, 8, 8, 1, ' ', 0)
	fmt.Fprintln(tw, strings.Join([]string{"  Share", "Field", "Objects", "Bytes", "Bytes/object", "References", "Refs/object", "Handle bytes"}, "\t"))
	for _, f := range r.Fields {
		fmt.Fprintln(tw, strings.Join([]string{
			fmt.Sprintf("  %.02f%%", r.Share(f.DictionaryBytes)),
			f.Field,
			strconv.Itoa(f.Distinct),
			strconv.FormatInt(f.DictionaryBytes, 10),
			fmt.Sprintf("%.02f", f.BytesPerObject()),
			strconv.Itoa(f.References),
			fmt.Sprintf("%.02f", f.RefsPerObject()),
			strconv.FormatInt(f.HandleBytes, 10),
		}, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
