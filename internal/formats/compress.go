// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package formats

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// GzipLevel is the gzip level used for comparison, matching `gzip -6`.
const GzipLevel = 6

// Compressor is a general-purpose byte compressor applied on top of a codec.
type Compressor interface {
	Name() string
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

// Gzip compresses with klauspost's gzip at GzipLevel.
type Gzip struct{}

func (Gzip) Name() string { return "gzip" }

func (Gzip) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, GzipLevel)
	if err != nil {
		return nil, err
	}
	if _, err := gw.Write(src); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Gzip) Decompress(src []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer gr.Close()
	return io.ReadAll(gr)
}

// Zstd compresses with the default zstd level.
type Zstd struct{}

func (Zstd) Name() string { return "zstd" }

func (Zstd) Compress(src []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(src, nil), nil
}

func (Zstd) Decompress(src []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(src, nil)
}

// S2 is klauspost's Snappy extension in block mode.
type S2 struct{}

func (S2) Name() string { return "s2" }

func (S2) Compress(src []byte) ([]byte, error) { return s2.Encode(nil, src), nil }

func (S2) Decompress(src []byte) ([]byte, error) { return s2.Decode(nil, src) }

// Snappy is plain Snappy block compression, the codec BadgerDB applies to
// stored snapshots.
type Snappy struct{}

func (Snappy) Name() string { return "snappy" }

func (Snappy) Compress(src []byte) ([]byte, error) { return snappy.Encode(nil, src), nil }

func (Snappy) Decompress(src []byte) ([]byte, error) { return snappy.Decode(nil, src) }

// Compressors returns every registered compressor in table order.
func Compressors() []Compressor {
	return []Compressor{Gzip{}, Zstd{}, S2{}, Snappy{}}
}

// CompressorsByName resolves compressor names. An empty list selects every
// compressor; "none" selects none.
func CompressorsByName(names []string) ([]Compressor, error) {
	all := Compressors()
	if len(names) == 0 {
		return all, nil
	}
	out := make([]Compressor, 0, len(names))
	for _, name := range names {
		if name == "none" {
			continue
		}
		var found Compressor
		for _, c := range all {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("%w: compressor %q", ErrUnknownFormat, name)
		}
		out = append(out, found)
	}
	return out, nil
}
