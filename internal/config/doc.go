// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

/*
Package config loads disruptpack configuration.

# Configuration Sources

Configuration is layered with Koanf v2, later sources overriding earlier ones:
  - Built-in defaults (defaultConfig)
  - An optional YAML file: CONFIG_PATH, else disruptpack.yaml in the working
    directory, else /etc/disruptpack/config.yaml
  - Environment variables
  - Positional command-line arguments, which replace input.paths

# Configuration Structure

  - input: feed paths, file pattern, decode workers, strict mode, time zone
  - sizing: the size model (timestamp, string header and handle widths)
  - report: reconstruction check and format comparison
  - store: BadgerDB snapshot persistence
  - metrics: Prometheus textfile export
  - output: directory for serialized <format>.db files
  - logging: level, format, caller, timestamp

# Environment Variables

Short names:
  - FEED_PATHS: Comma-separated feed files or directories
  - FEED_PATTERN: File name pattern inside directories (default: *.json)
  - FEED_WORKERS: Concurrent decoders (default: 0, one per CPU)
  - FEED_STRICT: Reject unknown fields (default: true)
  - FEED_TIME_ZONE: Zone of feed timestamps (default: Europe/Paris)
  - TIMESTAMP_WIDTH: 8 or 4 (default: 8)
  - STRING_HEADER_WIDTH: 1, 2 or 4 (default: 4)
  - HANDLE_WIDTH: Pinned handle width, 0 for automatic (default: 0)
  - REPORT_FORMATS: Compare serialization formats (default: false)
  - STORE_ENABLED, STORE_PATH: Snapshot persistence
  - METRICS_TEXTFILE: Prometheus textfile path
  - OUTPUT_DIR: Directory for <format>.db files
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER: Logging

Any other setting is reachable as DISRUPTPACK_<SECTION>_<KEY>, for example
DISRUPTPACK_STORE_SYNC_WRITES=true or DISRUPTPACK_REPORT_CODECS=binary,json.

# Example

	# disruptpack.yaml
	input:
	  paths: ["/var/lib/feeds/idfm"]
	  workers: 8
	sizing:
	  timestamp_width: 4
	report:
	  formats: true
	  compressors: [zstd, s2]
	store:
	  enabled: true
	  path: /var/lib/disruptpack
*/
package config
