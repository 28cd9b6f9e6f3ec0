// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves the raw search feed from the arXiv query API.
// Each call makes exactly one request; there is no retry and no caching.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pdiddy/paper-refresh/internal/logging"
	"github.com/pdiddy/paper-refresh/pkg/types"
)

// Error reports a failed fetch. StatusCode is set when the server answered
// with a non-success status; Err is set for transport and read failures.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s: API returned HTTP %d", e.URL, e.StatusCode)
}

func (e *Error) Unwrap() error { return e.Err }

// Fetcher queries the search API.
type Fetcher struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
	Logger    *slog.Logger
}

// New builds a Fetcher from the run configuration.
func New(cfg types.RefreshConfig, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		Client:    &http.Client{Timeout: cfg.HTTP.Timeout},
		BaseURL:   cfg.APIURL,
		UserAgent: cfg.HTTP.UserAgent,
		Logger:    logger,
	}
}

// BuildURL constructs the query URL. The keyword is searched across all
// fields and results always start at offset 0.
func BuildURL(base string, q types.SearchQuery) string {
	return fmt.Sprintf("%s?search_query=all:%s&start=0&max_results=%d&sortBy=%s&sortOrder=%s",
		base, url.QueryEscape(q.Keyword), q.MaxResults, q.SortBy, q.SortOrder)
}

// Fetch issues one GET request for q and returns the response body.
func (f *Fetcher) Fetch(ctx context.Context, q types.SearchQuery) (string, error) {
	log := logging.OrDiscard(f.Logger)
	u := BuildURL(f.BaseURL, q)
	log.Info("requesting feed", "url", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", &Error{URL: u, Err: fmt.Errorf("creating request: %w", err)}
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{URL: u, Err: err}
	}
	defer resp.Body.Close()

	log.Info("feed response", "status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", &Error{URL: u, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{URL: u, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}
	return string(body), nil
}
