// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/disruptpack/internal/sizing"
)

// Pipeline stages, used as the "stage" label.
const (
	StageLoad        = "load"
	StageRewrite     = "rewrite"
	StageMeasure     = "measure"
	StageReconstruct = "reconstruct"
	StagePersist     = "persist"
	StageCompare     = "compare"
)

var (
	// Feed Metrics
	FeedFiles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disruptpack_feed_files_total",
			Help: "Feed files processed, by outcome",
		},
		[]string{"status"}, // "ok", "failed"
	)

	FeedInputBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "disruptpack_feed_input_bytes_total",
			Help: "Bytes of feed input read",
		},
	)

	FeedOrphanedDisruptions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "disruptpack_feed_orphaned_disruptions_total",
			Help: "Disruptions referenced by no line, skipped during flattening",
		},
	)

	// Rewrite Metrics
	RecordsRewritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "disruptpack_records_rewritten_total",
			Help: "Raw records rewritten into interned records",
		},
	)

	InternerDistinct = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "disruptpack_interner_distinct_values",
			Help: "Distinct values held by each field interner in the last pass",
		},
		[]string{"field"},
	)

	InternerReferences = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "disruptpack_interner_references",
			Help: "Handles issued by each field interner in the last pass",
		},
		[]string{"field"},
	)

	// Footprint Metrics
	FootprintBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "disruptpack_footprint_bytes",
			Help: "Modeled footprint of the last pass, by representation",
		},
		[]string{"representation"}, // "raw", "interned", "inline", "dictionary"
	)

	CompressionRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "disruptpack_compression_ratio",
			Help: "Raw footprint divided by interned footprint in the last pass",
		},
	)

	HandleWidth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "disruptpack_handle_width_bytes",
			Help: "Handle width selected in the last pass",
		},
	)

	FormatBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "disruptpack_format_bytes",
			Help: "Serialized snapshot size, by format and compressor",
		},
		[]string{"format", "compressor"}, // compressor "none" for the bare encoding
	)

	SnapshotsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "disruptpack_snapshots_saved_total",
			Help: "Snapshots written to the snapshot store",
		},
	)

	// Stage Metrics
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "disruptpack_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30},
		},
		[]string{"stage"},
	)

	StageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disruptpack_stage_errors_total",
			Help: "Pipeline stages that failed",
		},
		[]string{"stage"},
	)

	LastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "disruptpack_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful pass",
		},
	)
)

// RecordStage records the duration and outcome of a pipeline stage
func RecordStage(stage string, duration time.Duration, err error) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if err != nil {
		StageErrors.WithLabelValues(stage).Inc()
	}
}

// RecordFeed records the outcome of loading feed files
func RecordFeed(files, failed int, inputBytes int64, orphaned int) {
	FeedFiles.WithLabelValues("ok").Add(float64(files - failed))
	FeedFiles.WithLabelValues("failed").Add(float64(failed))
	FeedInputBytes.Add(float64(inputBytes))
	FeedOrphanedDisruptions.Add(float64(orphaned))
}

// RecordRewrite counts rewritten records
func RecordRewrite(records int) {
	RecordsRewritten.Add(float64(records))
}

// RecordReport publishes a footprint report as gauges.
func RecordReport(r *sizing.Report) {
	FootprintBytes.WithLabelValues("raw").Set(float64(r.RawBytes))
	FootprintBytes.WithLabelValues("interned").Set(float64(r.InternedBytes))
	FootprintBytes.WithLabelValues("inline").Set(float64(r.InlineBytes))
	FootprintBytes.WithLabelValues("dictionary").Set(float64(r.DictionaryBytes()))
	CompressionRatio.Set(r.Ratio())
	HandleWidth.Set(float64(r.HandleWidth))

	for _, f := range r.Fields {
		InternerDistinct.WithLabelValues(f.Field).Set(float64(f.Distinct))
		InternerReferences.WithLabelValues(f.Field).Set(float64(f.References))
	}
}

// RecordFormat records one serialized size. An empty compressor is recorded as "none".
func RecordFormat(format, compressor string, bytes int64) {
	if compressor == "" {
		compressor = "none"
	}
	FormatBytes.WithLabelValues(format, compressor).Set(float64(bytes))
}

// RecordSnapshotSaved counts a persisted snapshot
func RecordSnapshotSaved() {
	SnapshotsSaved.Inc()
}

// RecordSuccess marks the end of a successful pass
func RecordSuccess() {
	LastRunTimestamp.Set(float64(time.Now().Unix()))
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text format, for the node_exporter textfile collector. The file is written
// atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
