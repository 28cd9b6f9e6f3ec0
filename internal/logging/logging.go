// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the structured loggers handed to each pipeline stage.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"math"
)

// Format selects the handler that renders log records.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// New returns a logger writing to w. Verbose lowers the level to debug.
func New(w io.Writer, format Format, verbose bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	switch format {
	case FormatText, "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q: use text or json", format)
	}
}

// OrDiscard returns l, or a logger that drops everything when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		// Equivalent of slog.DiscardHandler (Go 1.24+): writes nowhere and
		// reports every level as disabled.
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	return l
}
