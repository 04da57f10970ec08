// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package formats

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/disruptpack/internal/disruption"
	"github.com/tomtom215/disruptpack/internal/intern"
	"github.com/tomtom215/disruptpack/internal/sizing"
	"github.com/tomtom215/disruptpack/internal/store"
)

// ErrUnknownFormat is returned when a codec or compressor name is not registered.
var ErrUnknownFormat = errors.New("unknown format")

// Codec serializes a whole snapshot.
type Codec interface {
	Name() string
	Encode(s *store.Snapshot) ([]byte, error)
	Decode(data []byte) (*store.Snapshot, error)
}

// Binary is the fixed-width layout written by the store package.
type Binary struct{}

func (Binary) Name() string { return "binary" }

func (Binary) Encode(s *store.Snapshot) ([]byte, error) { return store.Encode(s) }

func (Binary) Decode(data []byte) (*store.Snapshot, error) { return store.Decode(data) }

// JSON serializes a snapshot as a JSON document with goccy/go-json.
// Handles are written as integers into the per-field dictionaries.
type JSON struct {
	// Indent enables pretty printing with two spaces.
	Indent bool
}

func (j JSON) Name() string {
	if j.Indent {
		return "json_pretty"
	}
	return "json"
}

type jsonDictionaries struct {
	Line     []string `json:"line"`
	Cause    []string `json:"cause"`
	Severity []string `json:"severity"`
	Title    []string `json:"title"`
}

type jsonRecord struct {
	ID         uuid.UUID     `json:"id"`
	Line       intern.Handle `json:"line"`
	Cause      intern.Handle `json:"cause"`
	Severity   intern.Handle `json:"severity"`
	Title      intern.Handle `json:"title"`
	Message    string        `json:"message"`
	LastUpdate time.Time     `json:"last_update"`
	Begin      time.Time     `json:"begin"`
	End        time.Time     `json:"end"`
}

type jsonSnapshot struct {
	Model        sizing.Model     `json:"model"`
	Dictionaries jsonDictionaries `json:"dictionaries"`
	Records      []jsonRecord     `json:"records"`
}

func (j JSON) Encode(s *store.Snapshot) ([]byte, error) {
	doc := jsonSnapshot{
		Model: s.Model,
		Dictionaries: jsonDictionaries{
			Line:     s.Interners.Line.Values(),
			Cause:    s.Interners.Cause.Values(),
			Severity: s.Interners.Severity.Values(),
			Title:    s.Interners.Title.Values(),
		},
		Records: make([]jsonRecord, len(s.Records)),
	}
	for i, r := range s.Records {
		doc.Records[i] = jsonRecord(r)
	}

	if j.Indent {
		return json.MarshalIndent(&doc, "", "  ")
	}
	return json.Marshal(&doc)
}

func (j JSON) Decode(data []byte) (*store.Snapshot, error) {
	var doc jsonSnapshot
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrCorrupt, err)
	}
	if err := doc.Model.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrCorrupt, err)
	}

	in := &disruption.Interners{}
	dicts := []struct {
		field  disruption.Field
		values []string
		dst    **intern.Interner[string]
	}{
		{disruption.FieldLine, doc.Dictionaries.Line, &in.Line},
		{disruption.FieldCause, doc.Dictionaries.Cause, &in.Cause},
		{disruption.FieldSeverity, doc.Dictionaries.Severity, &in.Severity},
		{disruption.FieldTitle, doc.Dictionaries.Title, &in.Title},
	}
	for _, d := range dicts {
		dict, err := intern.FromValues(d.values)
		if err != nil {
			return nil, fmt.Errorf("%w: %s dictionary: %v", store.ErrCorrupt, d.field, err)
		}
		*d.dst = dict
	}

	records := make([]disruption.InternedRecord, len(doc.Records))
	for i, r := range doc.Records {
		records[i] = disruption.InternedRecord(r)
		for _, f := range disruption.InternedFields {
			if h := records[i].Handle(f); int(h) >= in.For(f).Len() {
				return nil, fmt.Errorf("%w: record %d %s handle %d: %w",
					store.ErrCorrupt, i, f, h, intern.ErrHandleOutOfRange)
			}
		}
	}

	return &store.Snapshot{Model: doc.Model, Interners: in, Records: records}, nil
}

// Codecs returns every registered codec in table order.
func Codecs() []Codec {
	return []Codec{Binary{}, JSON{}, JSON{Indent: true}}
}

// CodecsByName resolves codec names. An empty list selects every codec.
func CodecsByName(names []string) ([]Codec, error) {
	all := Codecs()
	if len(names) == 0 {
		return all, nil
	}
	out := make([]Codec, 0, len(names))
	for _, name := range names {
		var found Codec
		for _, c := range all {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("%w: codec %q", ErrUnknownFormat, name)
		}
		out = append(out, found)
	}
	return out, nil
}
