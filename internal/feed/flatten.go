// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package feed

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/disruptpack/internal/disruption"
)

// FlattenStats counts what flattening one document produced and skipped.
type FlattenStats struct {
	Disruptions int
	Orphaned    int
	NoPeriods   int
	Records     int
}

// Flatten turns a document into raw records: one per disruption, impacted
// line and application period, in document order. Disruptions no line
// references are counted as orphaned and skipped.
func Flatten(doc *Document, loc *time.Location) ([]disruption.RawRecord, FlattenStats, error) {
	var stats FlattenStats
	if doc.IsError() {
		return nil, stats, fmt.Errorf("%w: %s", ErrFeedError, doc.errorText())
	}

	linesByDisruption := impactedLines(doc)

	var records []disruption.RawRecord
	for i := range doc.Disruptions {
		d := &doc.Disruptions[i]
		stats.Disruptions++

		lines := linesByDisruption[d.ID]
		if len(lines) == 0 {
			stats.Orphaned++
			continue
		}
		if len(d.ApplicationPeriods) == 0 {
			stats.NoPeriods++
			continue
		}

		var message string
		if d.Message != nil {
			message = *d.Message
		}
		lastUpdate, err := ParseTimestamp(d.LastUpdate, loc)
		if err != nil {
			return nil, stats, fmt.Errorf("disruption %s lastUpdate: %w", d.ID, err)
		}

		periods := make([][2]time.Time, 0, len(d.ApplicationPeriods))
		for _, p := range d.ApplicationPeriods {
			begin, err := ParseTimestamp(p.Begin, loc)
			if err != nil {
				return nil, stats, fmt.Errorf("disruption %s begin: %w", d.ID, err)
			}
			end, err := ParseTimestamp(p.End, loc)
			if err != nil {
				return nil, stats, fmt.Errorf("disruption %s end: %w", d.ID, err)
			}
			periods = append(periods, [2]time.Time{begin, end})
		}

		for _, line := range lines {
			for _, p := range periods {
				records = append(records, disruption.RawRecord{
					ID:         d.ID,
					Line:       line,
					Cause:      d.Cause,
					Severity:   d.Severity,
					Title:      d.Title,
					Message:    message,
					LastUpdate: lastUpdate,
					Begin:      p[0],
					End:        p[1],
				})
			}
		}
	}

	stats.Records = len(records)
	return records, stats, nil
}

// impactedLines maps every disruption ID to the IDs of the lines whose
// impacted objects reference it, each line once, in document order.
func impactedLines(doc *Document) map[uuid.UUID][]string {
	out := make(map[uuid.UUID][]string)
	seen := make(map[uuid.UUID]map[string]struct{})

	for _, line := range doc.Lines {
		for _, obj := range line.ImpactedObjects {
			for _, id := range obj.DisruptionIDs {
				if seen[id] == nil {
					seen[id] = make(map[string]struct{})
				}
				if _, dup := seen[id][line.ID]; dup {
					continue
				}
				seen[id][line.ID] = struct{}{}
				out[id] = append(out[id], line.ID)
			}
		}
	}
	return out
}
