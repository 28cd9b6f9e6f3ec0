// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refresh runs the paper-refresh pipeline once: fetch the feed,
// parse it, render the papers fragment, and splice it into the target page.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/paper-refresh/internal/feed"
	"github.com/pdiddy/paper-refresh/internal/fetch"
	"github.com/pdiddy/paper-refresh/internal/logging"
	"github.com/pdiddy/paper-refresh/internal/render"
	"github.com/pdiddy/paper-refresh/internal/splice"
	"github.com/pdiddy/paper-refresh/pkg/types"
)

// Fetcher returns the raw feed for a query. *fetch.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, q types.SearchQuery) (string, error)
}

// Result summarizes one run.
type Result struct {
	RunID     string
	Papers    int
	Timestamp string
	Target    string
	Written   bool
}

// Option customizes a run.
type Option func(*runner)

// WithFetcher replaces the HTTP fetcher built from the configuration.
func WithFetcher(f Fetcher) Option {
	return func(r *runner) { r.fetcher = f }
}

// WithClock sets the time source used for the timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *runner) { r.now = now }
}

// WithLogger sets the logger handed to every stage.
func WithLogger(l *slog.Logger) Option {
	return func(r *runner) { r.logger = l }
}

type runner struct {
	cfg     types.RefreshConfig
	fetcher Fetcher
	now     func() time.Time
	logger  *slog.Logger
}

func newRunner(cfg types.RefreshConfig, opts []Option) (*runner, string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid configuration: %w", err)
	}
	r := &runner{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	runID := uuid.NewString()
	r.logger = logging.OrDiscard(r.logger).With("run_id", runID)
	if r.fetcher == nil {
		r.fetcher = fetch.New(cfg, r.logger)
	}
	return r, runID, nil
}

// papers fetches and parses the feed.
func (r *runner) papers(ctx context.Context) ([]types.PaperRecord, error) {
	raw, err := r.fetcher.Fetch(ctx, r.cfg.Query)
	if err != nil {
		return nil, err
	}
	p := &feed.Parser{Policy: r.cfg.MissingFields, Logger: r.logger}
	return p.Parse(raw)
}

// Run executes the whole pipeline. Zero papers is a successful run: the
// papers region is emptied and the timestamp is still refreshed.
func Run(ctx context.Context, cfg types.RefreshConfig, opts ...Option) (Result, error) {
	r, runID, err := newRunner(cfg, opts)
	if err != nil {
		return Result{}, err
	}
	res := Result{RunID: runID, Target: cfg.Target}

	r.logger.Info("refresh started", "keyword", cfg.Query.Keyword, "max_results", cfg.Query.MaxResults, "target", cfg.Target)

	records, err := r.papers(ctx)
	if err != nil {
		return res, err
	}
	res.Papers = len(records)
	if len(records) == 0 {
		r.logger.Warn("no papers found, refreshing timestamp only")
	}

	rd := &render.Renderer{Escape: cfg.EscapeHTML, Now: r.now}
	page, err := rd.Render(records)
	if err != nil {
		return res, err
	}
	res.Timestamp = page.Timestamp

	sp := splice.New(cfg, r.logger)
	out, err := sp.Splice(cfg.Target, page.Fragment, page.Timestamp, cfg.Query.Keyword)
	if err != nil {
		return res, err
	}
	res.Written = out.Written

	r.logger.Info("refresh finished", "papers", res.Papers, "written", res.Written, "timestamp", res.Timestamp)
	return res, nil
}

// Preview fetches and parses the feed without touching the target file.
func Preview(ctx context.Context, cfg types.RefreshConfig, opts ...Option) ([]types.PaperRecord, error) {
	r, _, err := newRunner(cfg, opts)
	if err != nil {
		return nil, err
	}
	return r.papers(ctx)
}

// RenderPreview renders records the way Run would.
func RenderPreview(cfg types.RefreshConfig, records []types.PaperRecord, now func() time.Time) (render.RenderedPage, error) {
	return (&render.Renderer{Escape: cfg.EscapeHTML, Now: now}).Render(records)
}
