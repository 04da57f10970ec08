// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package formats

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tomtom215/disruptpack/internal/logging"
	"github.com/tomtom215/disruptpack/internal/rewrite"
	"github.com/tomtom215/disruptpack/internal/store"
)

// ErrRoundTrip is returned when a format does not decode back to the
// snapshot it encoded.
var ErrRoundTrip = errors.New("format round trip failed")

// Options selects what Compare measures.
type Options struct {
	Codecs      []Codec
	Compressors []Compressor

	// InputBytes is the size of the source feed, used for percentages.
	// Zero leaves percentages out of the table.
	InputBytes int64

	// OutputDir, when set, receives one <format>.db file per codec.
	OutputDir string
}

// Measurement is one encoding of a snapshot.
type Measurement struct {
	Bytes  int64
	Encode time.Duration
	Decode time.Duration
}

// Row holds the measurements of one codec: uncompressed, then one entry per
// compressor in Table.Compressors order.
type Row struct {
	Format     string
	Serialized Measurement
	Compressed []Measurement
}

// Table is the result of Compare.
type Table struct {
	InputBytes  int64
	Compressors []string
	Rows        []Row
}

// Compare serializes snap with every codec, compresses each result with every
// compressor and checks that every encoding decodes back to the same records.
func Compare(ctx context.Context, snap *store.Snapshot, opts Options) (*Table, error) {
	want, err := rewrite.ReconstructAll(snap.Records, snap.Interners)
	if err != nil {
		return nil, fmt.Errorf("reconstruct snapshot: %w", err)
	}

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0o750); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	table := &Table{InputBytes: opts.InputBytes}
	for _, c := range opts.Compressors {
		table.Compressors = append(table.Compressors, c.Name())
	}

	log := logging.Ctx(ctx)
	for _, codec := range opts.Codecs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row := Row{Format: codec.Name()}

		start := time.Now()
		data, err := codec.Encode(snap)
		if err != nil {
			return nil, fmt.Errorf("%s encode: %w", codec.Name(), err)
		}
		row.Serialized.Encode = time.Since(start)
		row.Serialized.Bytes = int64(len(data))

		start = time.Now()
		decoded, err := codec.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s decode: %w", codec.Name(), err)
		}
		row.Serialized.Decode = time.Since(start)

		if err := rewrite.Verify(want, decoded.Records, decoded.Interners); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrRoundTrip, codec.Name(), err)
		}

		for _, comp := range opts.Compressors {
			m, err := measureCompressor(comp, data)
			if err != nil {
				return nil, fmt.Errorf("%s+%s: %w", codec.Name(), comp.Name(), err)
			}
			row.Compressed = append(row.Compressed, m)
		}

		if opts.OutputDir != "" {
			path := filepath.Join(opts.OutputDir, codec.Name()+".db")
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return nil, fmt.Errorf("write %s: %w", path, err)
			}
			log.Debug().Str("path", path).Int64("bytes", row.Serialized.Bytes).Msg("Wrote serialized snapshot")
		}

		log.Debug().
			Str("format", row.Format).
			Int64("bytes", row.Serialized.Bytes).
			Dur("encode", row.Serialized.Encode).
			Dur("decode", row.Serialized.Decode).
			Msg("Format measured")

		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func measureCompressor(c Compressor, data []byte) (Measurement, error) {
	var m Measurement

	start := time.Now()
	compressed, err := c.Compress(data)
	if err != nil {
		return m, fmt.Errorf("compress: %w", err)
	}
	m.Encode = time.Since(start)
	m.Bytes = int64(len(compressed))

	start = time.Now()
	plain, err := c.Decompress(compressed)
	if err != nil {
		return m, fmt.Errorf("decompress: %w", err)
	}
	m.Decode = time.Since(start)

	if !bytes.Equal(plain, data) {
		return m, ErrRoundTrip
	}
	return m, nil
}

// Row returns the row for a format name.
func (t *Table) Row(format string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Format == format {
			return r, true
		}
	}
	return Row{}, false
}

func (t *Table) percent(n int64) string {
	if t.InputBytes <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.02f%%", float64(n)*100/float64(t.InputBytes))
}

// WriteTo prints a size table followed by a timing table.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 8, 8, 2, ' ', tabwriter.AlignRight)

	header := []string{"Format", "Bytes", "%"}
	for _, c := range t.Compressors {
		header = append(header, c, "%")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for _, r := range t.Rows {
		cells := []string{r.Format, humanize.Comma(r.Serialized.Bytes), t.percent(r.Serialized.Bytes)}
		for _, m := range r.Compressed {
			cells = append(cells, humanize.Comma(m.Bytes), t.percent(m.Bytes))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	fmt.Fprintln(tw)

	header = []string{"Format", "enc ms", "dec ms"}
	for _, c := range t.Compressors {
		header = append(header, c+" enc", c+" dec")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for _, r := range t.Rows {
		cells := []string{r.Format, millis(r.Serialized.Encode), millis(r.Serialized.Decode)}
		for _, m := range r.Compressed {
			cells = append(cells, millis(m.Encode), millis(m.Decode))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}

	if err := tw.Flush(); err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func millis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}
