// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

/*
Package metrics provides Prometheus instrumentation of a disruptpack pass.

disruptpack is a batch tool, so metrics are not served over HTTP. At the end
of a pass they are written to a file in the Prometheus text format, ready for
the node_exporter textfile collector:

	metrics.WriteTextfile("/var/lib/node_exporter/disruptpack.prom")

# Available Metrics

Feed Metrics:
  - disruptpack_feed_files_total: Feed files processed (counter)
    Labels: status (ok, failed)
  - disruptpack_feed_input_bytes_total: Feed bytes read (counter)
  - disruptpack_feed_orphaned_disruptions_total: Disruptions without lines (counter)

Rewrite Metrics:
  - disruptpack_records_rewritten_total: Records rewritten (counter)
  - disruptpack_interner_distinct_values: Dictionary size (gauge)
    Labels: field (line, cause, severity, title)
  - disruptpack_interner_references: Handles issued (gauge)
    Labels: field

Footprint Metrics:
  - disruptpack_footprint_bytes: Modeled size (gauge)
    Labels: representation (raw, interned, inline, dictionary)
  - disruptpack_compression_ratio: Raw over interned (gauge)
  - disruptpack_handle_width_bytes: Selected handle width (gauge)
  - disruptpack_format_bytes: Serialized size (gauge)
    Labels: format, compressor
  - disruptpack_snapshots_saved_total: Snapshots persisted (counter)

Stage Metrics:
  - disruptpack_stage_duration_seconds: Stage duration (histogram)
    Labels: stage (load, rewrite, measure, reconstruct, persist, compare)
  - disruptpack_stage_errors_total: Failed stages (counter)
    Labels: stage
  - disruptpack_last_success_timestamp_seconds: Last successful pass (gauge)

# Usage

	start := time.Now()
	recs, err := rewrite.Rewrite(raw, in)
	metrics.RecordStage(metrics.StageRewrite, time.Since(start), err)
	metrics.RecordRewrite(len(recs))

All metrics are registered with the default registry through promauto.
*/
package metrics
