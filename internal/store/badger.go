// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"

	"github.com/tomtom215/disruptpack/internal/logging"
	"github.com/tomtom215/disruptpack/internal/sizing"
)

// ErrNotFound is returned when no snapshot is stored under a name.
var ErrNotFound = errors.New("snapshot not found")

// Key prefixes. A snapshot is two keys written in one transaction.
const (
	prefixData = "snapshot:data:"
	prefixMeta = "snapshot:meta:"
)

// Config holds snapshot store configuration.
type Config struct {
	// Path is the directory where BadgerDB stores its files.
	Path string `koanf:"path"`

	// InMemory keeps the database in memory; Path is ignored.
	InMemory bool `koanf:"in_memory"`

	// Compression enables Snappy compression of BadgerDB blocks.
	Compression bool `koanf:"compression"`

	// SyncWrites forces fsync after every write.
	SyncWrites bool `koanf:"sync_writes"`

	// Verbose routes BadgerDB's own logging into the application log.
	Verbose bool `koanf:"verbose"`
}

// Metadata describes a stored snapshot.
type Metadata struct {
	Name          string       `json:"name"`
	RunID         string       `json:"run_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	Records       int          `json:"records"`
	Bytes         int64        `json:"bytes"`
	RawBytes      int64        `json:"raw_bytes"`
	InternedBytes int64        `json:"interned_bytes"`
	Fingerprint   string       `json:"fingerprint"`
	Model         sizing.Model `json:"model"`
}

// BadgerStore keeps encoded snapshots in BadgerDB, keyed by name.
type BadgerStore struct {
	db     *badger.DB
	mu     sync.Mutex
	closed bool
}

// Open opens (or creates) a snapshot store.
func Open(cfg Config) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("store path is required unless in_memory is set")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites

	if cfg.Compression {
		opts.Compression = options.Snappy
	} else {
		opts.Compression = options.None
	}

	if cfg.Verbose {
		opts.Logger = logging.NewBadgerLogger(logging.WithComponent("store"))
	} else {
		opts.Logger = nil
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("compression", cfg.Compression).
		Msg("Snapshot store opened")

	return &BadgerStore{db: db}, nil
}

// Save encodes snap and stores it under name, replacing any previous
// snapshot of that name. The returned metadata has the computed fields
// (records, bytes, fingerprint) filled in.
func (s *BadgerStore) Save(ctx context.Context, name string, snap *Snapshot, meta Metadata) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("snapshot name is required")
	}

	data, err := Encode(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	meta.Name = name
	meta.Records = len(snap.Records)
	meta.Bytes = int64(len(data))
	meta.Fingerprint = FingerprintOf(data).String()
	meta.Model = snap.Model
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}

	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(prefixData+name), data); err != nil {
			return err
		}
		return txn.Set([]byte(prefixMeta+name), metaJSON)
	})
	if err != nil {
		return nil, fmt.Errorf("save snapshot %s: %w", name, err)
	}

	logging.Ctx(ctx).Info().
		Str("name", name).
		Int64("bytes", meta.Bytes).
		Str("fingerprint", meta.Fingerprint).
		Msg("Snapshot saved")

	return &meta, nil
}

// Load reads and decodes the snapshot stored under name. The stored bytes
// are checked against the recorded fingerprint.
func (s *BadgerStore) Load(ctx context.Context, name string) (*Snapshot, *Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var data []byte
	var meta Metadata

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixData + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if data, err = item.ValueCopy(nil); err != nil {
			return err
		}
		return readMeta(txn, name, &meta)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}

	if got := FingerprintOf(data).String(); got != meta.Fingerprint {
		return nil, nil, fmt.Errorf("%w: snapshot %s fingerprint %s, recorded %s", ErrCorrupt, name, got, meta.Fingerprint)
	}

	snap, err := Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return snap, &meta, nil
}

// Metadata returns the metadata of the snapshot stored under name.
func (s *BadgerStore) Metadata(ctx context.Context, name string) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var meta Metadata
	err := s.db.View(func(txn *badger.Txn) error {
		return readMeta(txn, name, &meta)
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot %s metadata: %w", name, err)
	}
	return &meta, nil
}

// List returns the metadata of every stored snapshot, ordered by name.
func (s *BadgerStore) List(ctx context.Context) ([]Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Metadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixMeta)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var meta Metadata
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			})
			if err != nil {
				return fmt.Errorf("unmarshal metadata %s: %w", it.Item().Key(), err)
			}
			out = append(out, meta)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes the snapshot stored under name.
func (s *BadgerStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(prefixMeta + name)); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete snapshot %s: %w", name, ErrNotFound)
		} else if err != nil {
			return err
		}
		if err := txn.Delete([]byte(prefixData + name)); err != nil {
			return err
		}
		return txn.Delete([]byte(prefixMeta + name))
	})
}

// Close closes the underlying database. Closing twice is a no-op.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Debug().Msg("Snapshot store closed")
	return nil
}

func readMeta(txn *badger.Txn, name string, meta *Metadata) error {
	item, err := txn.Get([]byte(prefixMeta + name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, meta); err != nil {
			return fmt.Errorf("%w: metadata: %v", ErrCorrupt, err)
		}
		return nil
	})
}

// SnapshotName builds a default snapshot name from a time, e.g. run-20240301T060000Z.
func SnapshotName(t time.Time) string {
	return "run-" + t.UTC().Format("20060102T150405Z")
}
