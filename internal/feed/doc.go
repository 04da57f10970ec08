// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

/*
Package feed decodes saved snapshots of the Île-de-France disruptions feed
and flattens them into raw disruption records.

A snapshot is a JSON document:

	{
	  "disruptions": [{"id": "...", "applicationPeriods": [{"begin": "20240301T060000", "end": "..."}],
	                   "lastUpdate": "...", "cause": "PERTURBATION", "severity": "BLOQUANTE",
	                   "title": "...", "message": "...", ...}],
	  "lines": [{"id": "line:IDFM:C01742", "impactedObjects": [{"disruptionIds": ["..."], ...}], ...}],
	  "lastUpdatedDate": "2024-03-01T06:00:00Z"
	}

A feed that rejected the request stores an error document instead:

	{"statusCode": 429, "error": "Too Many Requests", "message": "..."}

Error documents and undecodable files are counted and skipped by Load; the
run continues with the remaining files.

Flattening emits one record per disruption, impacted line and application
period. Timestamps carry no zone and are read in Europe/Paris local time.

Files are decoded concurrently, bounded by Options.Workers, and reassembled
in sorted path order so the record sequence is identical across runs.
*/
package feed
