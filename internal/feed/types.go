// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package feed

import (
	"time"
)

// Stats holds statistics about a feed load.
type Stats struct {
	// Files is the number of files decoded successfully.
	Files int `json:"files"`

	// FailedFiles is the number of files skipped because they held an
	// error document or could not be decoded.
	FailedFiles int `json:"failed_files"`

	// Disruptions is the number of disruptions seen in successful files.
	Disruptions int `json:"disruptions"`

	// Orphaned is the number of disruptions no line referenced.
	Orphaned int `json:"orphaned"`

	// NoPeriods is the number of disruptions without an application period.
	NoPeriods int `json:"no_periods"`

	// Records is the number of raw records produced.
	Records int `json:"records"`

	// InputBytes is the size of every file read, failed ones included.
	InputBytes int64 `json:"input_bytes"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (s *Stats) add(f FlattenStats) {
	s.Disruptions += f.Disruptions
	s.Orphaned += f.Orphaned
	s.NoPeriods += f.NoPeriods
	s.Records += f.Records
}

// Duration returns the duration of the load.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// RecordsPerSecond returns the load rate.
func (s *Stats) RecordsPerSecond() float64 {
	duration := s.Duration().Seconds()
	if duration == 0 {
		return 0
	}
	return float64(s.Records) / duration
}

// RelativeSize returns bytes as a percentage of the input size.
func (s *Stats) RelativeSize(bytes int64) float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(bytes) * 100 / float64(s.InputBytes)
}
