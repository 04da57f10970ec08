// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// WriteTo prints the summary of a pass: input, footprint report,
// verification, fingerprint, then the optional snapshot and format table.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Run %s\n", r.RunID)
	fmt.Fprintf(&sb, "Files:          %d decoded, %d failed\n", r.Feed.Files, r.Feed.FailedFiles)
	fmt.Fprintf(&sb, "Input size:     %d bytes (%s)\n", r.Feed.InputBytes, humanize.IBytes(uint64(r.Feed.InputBytes)))
	fmt.Fprintf(&sb, "Disruptions:    %d (%d orphaned, %d without period)\n",
		r.Feed.Disruptions, r.Feed.Orphaned, r.Feed.NoPeriods)
	if r.Report != nil && r.Feed.InputBytes > 0 {
		fmt.Fprintf(&sb, "Raw / input:      %.02f%%\n", r.Feed.RelativeSize(r.Report.RawBytes))
		fmt.Fprintf(&sb, "Interned / input: %.02f%%\n", r.Feed.RelativeSize(r.Report.InternedBytes))
	}
	sb.WriteString("\n")

	n, err := io.WriteString(w, sb.String())
	total := int64(n)
	if err != nil {
		return total, err
	}

	if r.Report != nil {
		m, err := r.Report.WriteTo(w)
		total += m
		if err != nil {
			return total, err
		}
	}

	sb.Reset()
	verified := "skipped"
	if r.Verified {
		verified = "ok"
	}
	fmt.Fprintf(&sb, "\nReconstruction: %s\n", verified)
	fmt.Fprintf(&sb, "Fingerprint:    %s\n", r.Fingerprint)
	if r.Snapshot != nil {
		fmt.Fprintf(&sb, "Snapshot:       %s (%s)\n", r.Snapshot.Name, humanize.IBytes(uint64(r.Snapshot.Bytes)))
	}
	n, err = io.WriteString(w, sb.String())
	total += int64(n)
	if err != nil {
		return total, err
	}

	if r.Formats != nil {
		n, err = io.WriteString(w, "\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
		m, err := r.Formats.WriteTo(w)
		total += m
		if err != nil {
			return total, err
		}
	}

	return total, nil
}
