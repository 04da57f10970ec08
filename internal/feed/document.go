// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package feed

import (
	"bytes"
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // Europe/Paris must resolve on hosts without zoneinfo

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

var (
	// ErrFeedError is returned for a well-formed error document, such as a
	// rate-limit or authentication response saved in place of a snapshot.
	ErrFeedError = errors.New("feed returned an error document")

	// ErrMalformedDocument is returned when a document cannot be decoded or
	// has neither disruptions nor an error status.
	ErrMalformedDocument = errors.New("malformed feed document")

	// ErrTimestamp is returned for a timestamp that does not match TimestampLayout.
	ErrTimestamp = errors.New("invalid feed timestamp")
)

// TimestampLayout is the compact local-time format used throughout the feed.
const TimestampLayout = "20060102T150405"

// DefaultTimeZone is the zone feed timestamps are expressed in.
const DefaultTimeZone = "Europe/Paris"

// Document is one feed snapshot. A successful snapshot carries Disruptions,
// Lines and LastUpdatedDate; an error response carries StatusCode, Error
// and Message instead.
type Document struct {
	Disruptions     []Disruption `json:"disruptions"`
	Lines           []Line       `json:"lines"`
	LastUpdatedDate *string      `json:"lastUpdatedDate"`

	StatusCode *int    `json:"statusCode"`
	Error      *string `json:"error"`
	Message    *string `json:"message"`
}

// Disruption is one disruption as published by the feed.
type Disruption struct {
	ID                 uuid.UUID           `json:"id"`
	ApplicationPeriods []ApplicationPeriod `json:"applicationPeriods"`
	LastUpdate         string              `json:"lastUpdate"`
	Cause              string              `json:"cause"`
	Severity           string              `json:"severity"`
	Tags               []string            `json:"tags"`
	Title              string              `json:"title"`
	Message            *string             `json:"message"`
	ShortMessage       *string             `json:"shortMessage"`
	DisruptionID       *uuid.UUID          `json:"disruption_id"`
}

// ApplicationPeriod bounds the validity of a disruption.
type ApplicationPeriod struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
}

// Line is a transit line together with the objects on it that a disruption
// affects.
type Line struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	ShortName       string           `json:"shortName"`
	Mode            string           `json:"mode"`
	NetworkID       string           `json:"networkId"`
	ImpactedObjects []ImpactedObject `json:"impactedObjects"`
}

// ImpactedObject is a line, stop area or other object referencing disruptions.
type ImpactedObject struct {
	Type          string      `json:"type"`
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	DisruptionIDs []uuid.UUID `json:"disruptionIds"`
}

// IsError reports whether the document is an error response.
func (d *Document) IsError() bool {
	return d.Disruptions == nil && (d.StatusCode != nil || d.Error != nil)
}

// errorText renders an error document for logs.
func (d *Document) errorText() string {
	status, kind, msg := 0, "", ""
	if d.StatusCode != nil {
		status = *d.StatusCode
	}
	if d.Error != nil {
		kind = *d.Error
	}
	if d.Message != nil {
		msg = *d.Message
	}
	return fmt.Sprintf("status %d: %s: %s", status, kind, msg)
}

// Decode parses one feed document. With strict set, unknown fields are
// rejected. An error document decodes without error; callers check IsError.
func Decode(data []byte, strict bool) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	if !doc.IsError() && doc.Disruptions == nil {
		return nil, fmt.Errorf("%w: neither disruptions nor an error status", ErrMalformedDocument)
	}

	return &doc, nil
}

// ParseTimestamp parses a feed timestamp in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrTimestamp, s)
	}
	return t, nil
}
