// Disruptpack - Transit Disruption Interning and Footprint Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/disruptpack

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// BadgerLogger routes BadgerDB's printf-style logging into zerolog.
// It satisfies badger.Logger without importing badger.
//
//	opts.Logger = logging.NewBadgerLogger(logging.WithComponent("store"))
type BadgerLogger struct {
	logger zerolog.Logger
}

// NewBadgerLogger wraps logger for use as badger.Options.Logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBadgerLogger(logger zerolog.Logger) *BadgerLogger {
	return &BadgerLogger{logger: logger.With().Str("source", "badger").Logger()}
}

// Errorf logs at error level.
func (l *BadgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(trimNewline(format), args...)
}

// Warningf logs at warn level.
func (l *BadgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(trimNewline(format), args...)
}

// Infof logs at debug level; badger is chatty at info.
func (l *BadgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(trimNewline(format), args...)
}

// Debugf logs at trace level.
func (l *BadgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msgf(trimNewline(format), args...)
}

func trimNewline(s string) string {
	return strings.TrimSuffix(s, "\n")
}
