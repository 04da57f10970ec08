// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/disruptpack/internal/config"
	"github.com/tomtom215/disruptpack/internal/disruption"
	"github.com/tomtom215/disruptpack/internal/feed"
	"github.com/tomtom215/disruptpack/internal/formats"
	"github.com/tomtom215/disruptpack/internal/intern"
	"github.com/tomtom215/disruptpack/internal/logging"
	"github.com/tomtom215/disruptpack/internal/metrics"
	"github.com/tomtom215/disruptpack/internal/rewrite"
	"github.com/tomtom215/disruptpack/internal/sizing"
	"github.com/tomtom215/disruptpack/internal/store"
)

// Result is everything one pass produced.
type Result struct {
	RunID string

	// Feed describes the input; Failures lists skipped files.
	Feed     feed.Stats
	Failures []feed.FileError

	Records   []disruption.InternedRecord
	Interners *disruption.Interners
	Report    *sizing.Report

	// Verified is true when every record was reconstructed and matched its source.
	Verified bool

	// Fingerprint identifies the encoded snapshot of this pass.
	Fingerprint store.Fingerprint

	// Formats is set when the format comparison ran.
	Formats *formats.Table

	// Snapshot is set when the snapshot was persisted.
	Snapshot *store.Metadata
}

// Run loads the configured feed files and processes them.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	if logging.RunIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewRunID(ctx)
	}

	opts, err := cfg.FeedOptions()
	if err != nil {
		return nil, err
	}

	var batch *feed.Batch
	err = stage(ctx, metrics.StageLoad, func() error {
		batch, err = feed.Load(ctx, cfg.Input.Paths, opts)
		return err
	})
	if err != nil {
		return nil, err
	}

	s := batch.Stats
	metrics.RecordFeed(s.Files+s.FailedFiles, s.FailedFiles, s.InputBytes, s.Orphaned)

	return Process(ctx, cfg, batch)
}

// Process runs every stage after loading on an already decoded batch:
// rewrite, measure, reconstruct, then optionally persist and compare.
func Process(ctx context.Context, cfg *config.Config, batch *feed.Batch) (*Result, error) {
	if logging.RunIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewRunID(ctx)
	}
	log := logging.Ctx(ctx)

	res := &Result{
		RunID:     logging.RunIDFromContext(ctx),
		Feed:      batch.Stats,
		Failures:  batch.Failures,
		Interners: disruption.NewInterners(intern.WithLimit(cfg.Sizing.HandleLimit())),
	}
	raw := batch.Records

	err := stage(ctx, metrics.StageRewrite, func() error {
		var err error
		res.Records, err = rewrite.Rewrite(raw, res.Interners)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordRewrite(len(res.Records))

	err = stage(ctx, metrics.StageMeasure, func() error {
		var err error
		res.Report, err = cfg.Sizing.Measure(raw, res.Records, res.Interners)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordReport(res.Report)

	log.Info().
		Int("records", res.Report.Records).
		Int("handle_width", res.Report.HandleWidth).
		Int64("raw_bytes", res.Report.RawBytes).
		Int64("interned_bytes", res.Report.InternedBytes).
		Str("ratio", sizing.FormatRatio(res.Report.Ratio())).
		Msg("Footprint measured")
	if logging.IsLevelEnabled(zerolog.DebugLevel) {
		for _, fs := range res.Report.Fields {
			log.Debug().
				Str("field", fs.Field).
				Int("distinct", fs.Distinct).
				Int("references", fs.References).
				Int64("dictionary_bytes", fs.DictionaryBytes).
				Msg("Interner summary")
		}
	}

	if cfg.Report.Verify {
		err = stage(ctx, metrics.StageReconstruct, func() error {
			return rewrite.Verify(raw, res.Records, res.Interners)
		})
		if err != nil {
			return nil, err
		}
		res.Verified = true
	}

	snap := &store.Snapshot{Model: cfg.Sizing, Interners: res.Interners, Records: res.Records}
	if res.Fingerprint, err = store.FingerprintSnapshot(snap); err != nil {
		return nil, fmt.Errorf("fingerprint snapshot: %w", err)
	}

	if cfg.Store.Enabled {
		err = stage(ctx, metrics.StagePersist, func() error {
			var err error
			res.Snapshot, err = persist(ctx, cfg, snap, res.Report)
			return err
		})
		if err != nil {
			return nil, err
		}
		metrics.RecordSnapshotSaved()
	}

	if cfg.Report.Formats {
		err = stage(ctx, metrics.StageCompare, func() error {
			var err error
			res.Formats, err = compare(ctx, cfg, snap, batch.Stats.InputBytes)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, row := range res.Formats.Rows {
			metrics.RecordFormat(row.Format, "", row.Serialized.Bytes)
			for i, m := range row.Compressed {
				metrics.RecordFormat(row.Format, res.Formats.Compressors[i], m.Bytes)
			}
		}
	}

	metrics.RecordSuccess()
	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return nil, err
		}
		log.Debug().Str("path", cfg.Metrics.Textfile).Msg("Metrics written")
	}

	return res, nil
}

func persist(ctx context.Context, cfg *config.Config, snap *store.Snapshot, report *sizing.Report) (*store.Metadata, error) {
	s, err := store.Open(cfg.Store.Badger())
	if err != nil {
		return nil, err
	}
	defer s.Close()

	return s.Save(ctx, cfg.Store.SnapshotName(time.Now()), snap, store.Metadata{
		RunID:         logging.RunIDFromContext(ctx),
		RawBytes:      report.RawBytes,
		InternedBytes: report.InternedBytes,
	})
}

func compare(ctx context.Context, cfg *config.Config, snap *store.Snapshot, inputBytes int64) (*formats.Table, error) {
	codecs, err := formats.CodecsByName(cfg.Report.Codecs)
	if err != nil {
		return nil, err
	}
	compressors, err := formats.CompressorsByName(cfg.Report.Compressors)
	if err != nil {
		return nil, err
	}
	return formats.Compare(ctx, snap, formats.Options{
		Codecs:      codecs,
		Compressors: compressors,
		InputBytes:  inputBytes,
		OutputDir:   cfg.Output.Dir,
	})
}

// stage times fn, records the outcome and logs it under the stage name.
func stage(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	metrics.RecordStage(name, elapsed, err)

	log := logging.Ctx(ctx)
	if err != nil {
		log.Error().Err(err).Str("stage", name).Dur("duration", elapsed).Msg("Stage failed")
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Debug().Str("stage", name).Dur("duration", elapsed).Msg("Stage finished")
	return nil
}
