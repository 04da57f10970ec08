// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package feed

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/disruptpack/internal/disruption"
	"github.com/tomtom215/disruptpack/internal/logging"
)

// Options controls how feed files are found and decoded.
type Options struct {
	// Pattern filters files found inside directories by base name.
	// Files named explicitly are always loaded.
	Pattern string

	// Workers bounds the number of files decoded concurrently.
	Workers int

	// Strict rejects documents with unknown fields.
	Strict bool

	// Location is the zone feed timestamps are interpreted in.
	Location *time.Location
}

// DefaultOptions decodes *.json files strictly, one worker per CPU, in Europe/Paris.
func DefaultOptions() Options {
	loc, err := time.LoadLocation(DefaultTimeZone)
	if err != nil {
		loc = time.UTC
	}
	return Options{
		Pattern:  "*.json",
		Workers:  runtime.GOMAXPROCS(0),
		Strict:   true,
		Location: loc,
	}
}

// FileError records a file that was skipped because it could not be used.
type FileError struct {
	Path string
	Err  error
}

// Batch is the result of loading a set of feed files.
type Batch struct {
	// Records holds every flattened record, files in sorted path order.
	Records []disruption.RawRecord

	// Failures lists skipped files in sorted path order.
	Failures []FileError

	Stats Stats
}

// fileResult is the outcome of decoding one file.
type fileResult struct {
	records []disruption.RawRecord
	flat    FlattenStats
	size    int64
	err     error
}

// Load finds every feed file under paths, decodes them concurrently and
// concatenates their records in sorted path order, so the sequence does
// not depend on scheduling. Files that fail to decode are counted and
// skipped; an unreadable file or a cancelled context aborts the load.
func Load(ctx context.Context, paths []string, opts Options) (*Batch, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	files, err := ListFiles(paths, opts.Pattern)
	if err != nil {
		return nil, err
	}

	batch := &Batch{Stats: Stats{StartTime: time.Now()}}
	logger := logging.Ctx(ctx)
	logger.Info().Int("files", len(files)).Int("workers", workers).Msg("Loading feed files")

	results := make([]fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			results[i] = decodeFile(data, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, res := range results {
		batch.Stats.InputBytes += res.size
		if res.err != nil {
			batch.Stats.FailedFiles++
			batch.Failures = append(batch.Failures, FileError{Path: files[i], Err: res.err})
			logger.Warn().Err(res.err).Str("path", files[i]).Msg("Skipping feed file")
			continue
		}
		batch.Stats.Files++
		batch.Stats.add(res.flat)
		batch.Records = append(batch.Records, res.records...)
	}
	batch.Stats.EndTime = time.Now()

	logger.Info().
		Int("files", batch.Stats.Files).
		Int("failed_files", batch.Stats.FailedFiles).
		Int("records", batch.Stats.Records).
		Int("orphaned", batch.Stats.Orphaned).
		Int64("input_bytes", batch.Stats.InputBytes).
		Dur("duration", batch.Stats.Duration()).
		Msg("Feed loaded")

	return batch, nil
}

// LoadBytes decodes and flattens a single in-memory document.
func LoadBytes(data []byte, opts Options) ([]disruption.RawRecord, FlattenStats, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	res := decodeFile(data, opts)
	return res.records, res.flat, res.err
}

func decodeFile(data []byte, opts Options) fileResult {
	res := fileResult{size: int64(len(data))}

	doc, err := Decode(data, opts.Strict)
	if err != nil {
		res.err = err
		return res
	}

	res.records, res.flat, res.err = Flatten(doc, opts.Location)
	return res
}

// ListFiles expands paths into a sorted, duplicate-free list of files.
// Directories are walked recursively and filtered by pattern; symbolic
// links are resolved.
func ListFiles(paths []string, pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(root))
			continue
		}
		if err := walkDir(root, pattern, add); err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func walkDir(root, pattern string, add func(string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", path, err)
			}
			info, err := os.Stat(target)
			if err != nil {
				return fmt.Errorf("stat %s: %w", target, err)
			}
			if info.IsDir() {
				return walkDir(target, pattern, add)
			}
			if info.Mode().IsRegular() && matches(pattern, path) {
				add(target)
			}
			return nil
		}

		if d.Type().IsRegular() && matches(pattern, path) {
			add(path)
		}
		return nil
	})
}

func matches(pattern, path string) bool {
	if pattern == "" {
		return true
	}
	ok, err := filepath.Match(pattern, filepath.Base(path))
	return err == nil && ok
}
