// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refresh

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-refresh/internal/feed"
	"github.com/pdiddy/paper-refresh/internal/fetch"
	"github.com/pdiddy/paper-refresh/internal/logging"
	"github.com/pdiddy/paper-refresh/internal/splice"
	"github.com/pdiddy/paper-refresh/pkg/types"
)

const oneEntryFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query</title>
  <entry>
    <title>A Note on Groups
</title>
    <summary>  Short abstract.  </summary>
    <author><name>J. Doe</name></author>
    <link title="pdf" href="http://example.org/doc.pdf" rel="related" type="application/pdf"/>
  </entry>
</feed>
`

const emptyFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query</title>
</feed>
`

const target = `<html><body>
<p>Search keyword: <span>none</span></p>
<p>Last updated: never</p>
<div id="paper-list"><!-- PAPERS_START -->
<div class="paper">stale</div>
<!-- PAPERS_END --></div>
</body></html>
`

func clock() time.Time { return time.Date(2024, 3, 9, 7, 5, 3, 0, time.Local) }

type staticFetcher struct {
	body  string
	err   error
	calls int
}

func (f *staticFetcher) Fetch(context.Context, types.SearchQuery) (string, error) {
	f.calls++
	return f.body, f.err
}

func setup(t *testing.T, content string) types.RefreshConfig {
	t.Helper()
	path := filepath.Join(t.TempDir(), "papers.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	cfg := types.DefaultRefreshConfig()
	cfg.Target = path
	return cfg
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunEndToEnd(t *testing.T) {
	var query string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(oneEntryFeed))
	}))
	defer ts.Close()

	cfg := setup(t, target)
	cfg.APIURL = ts.URL

	var logs bytes.Buffer
	logger, err := logging.New(&logs, logging.FormatText, false)
	require.NoError(t, err)

	res, err := Run(context.Background(), cfg, WithClock(clock), WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Papers)
	assert.True(t, res.Written)
	assert.Equal(t, "2024-03-09 07:05:03", res.Timestamp)
	assert.NotEmpty(t, res.RunID)
	assert.Contains(t, query, "search_query=all:algebra")
	assert.Contains(t, query, "max_results=10")

	out := read(t, cfg.Target)
	assert.Contains(t, out, `<h3><a href="http://example.org/doc.pdf" target="_blank">A Note on Groups</a></h3>`)
	assert.Contains(t, out, "<p><strong>Authors:</strong> J. Doe</p>")
	assert.Contains(t, out, "<p>Short abstract.</p>")
	assert.Contains(t, out, "<p>Last updated: 2024-03-09 07:05:03</p>")
	assert.Contains(t, out, "<p>Search keyword: <span>algebra</span></p>")
	assert.NotContains(t, out, "stale")

	assert.Contains(t, logs.String(), "run_id="+res.RunID)
	assert.Contains(t, logs.String(), "status=200")
	assert.Contains(t, logs.String(), "papers=1")
}

func TestRunEmptyFeedStillRefreshesTimestamp(t *testing.T) {
	cfg := setup(t, target)
	res, err := Run(context.Background(), cfg, WithFetcher(&staticFetcher{body: emptyFeed}), WithClock(clock))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Papers)
	assert.True(t, res.Written)

	out := read(t, cfg.Target)
	assert.Contains(t, out, "<!-- PAPERS_START --><!-- PAPERS_END -->")
	assert.Contains(t, out, "Last updated: 2024-03-09 07:05:03</p>")
}

func TestRunTwiceSkipsSecondWrite(t *testing.T) {
	cfg := setup(t, target)
	f := &staticFetcher{body: oneEntryFeed}

	first, err := Run(context.Background(), cfg, WithFetcher(f), WithClock(clock))
	require.NoError(t, err)
	assert.True(t, first.Written)
	after := read(t, cfg.Target)

	second, err := Run(context.Background(), cfg, WithFetcher(f), WithClock(clock))
	require.NoError(t, err)
	assert.False(t, second.Written)
	assert.Equal(t, after, read(t, cfg.Target))
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, 2, f.calls)
}

func TestRunErrors(t *testing.T) {
	t.Run("fetch", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		cfg := setup(t, target)
		cfg.APIURL = ts.URL
		_, err := Run(context.Background(), cfg, WithClock(clock))
		var fe *fetch.Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
		assert.Equal(t, target, read(t, cfg.Target))
	})

	t.Run("parse", func(t *testing.T) {
		cfg := setup(t, target)
		_, err := Run(context.Background(), cfg, WithFetcher(&staticFetcher{body: "<feed><entry>"}), WithClock(clock))
		var pe *feed.ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, target, read(t, cfg.Target))
	})

	t.Run("missing target", func(t *testing.T) {
		cfg := types.DefaultRefreshConfig()
		cfg.Target = filepath.Join(t.TempDir(), "nope.html")
		_, err := Run(context.Background(), cfg, WithFetcher(&staticFetcher{body: emptyFeed}), WithClock(clock))
		var fe *splice.FileError
		require.True(t, errors.As(err, &fe))
	})

	t.Run("missing markers", func(t *testing.T) {
		doc := "<html><p>Last updated: never</p><div id=\"paper-list\"></div></html>"
		cfg := setup(t, doc)
		_, err := Run(context.Background(), cfg, WithFetcher(&staticFetcher{body: emptyFeed}), WithClock(clock))
		var nf *splice.RegionNotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, doc, read(t, cfg.Target))
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := types.DefaultRefreshConfig()
		cfg.Query.MaxResults = 0
		f := &staticFetcher{body: emptyFeed}
		_, err := Run(context.Background(), cfg, WithFetcher(f))
		assert.ErrorContains(t, err, "max results must be positive")
		assert.Zero(t, f.calls)
	})
}

func TestRunRepairPolicy(t *testing.T) {
	doc := "<html><p>Last updated: never</p><div id=\"paper-list\"></div></html>"
	cfg := setup(t, doc)
	cfg.Markers.Policy = types.MarkerRepair

	_, err := Run(context.Background(), cfg, WithFetcher(&staticFetcher{body: oneEntryFeed}), WithClock(clock))
	require.NoError(t, err)
	out := read(t, cfg.Target)
	assert.True(t, strings.HasPrefix(out, `<html><p>Last updated: 2024-03-09 07:05:03</p><div id="paper-list"><!-- PAPERS_START -->`))
	assert.Contains(t, out, "A Note on Groups")
}

func TestRunEscapeHTML(t *testing.T) {
	feedWithMarkup := strings.Replace(oneEntryFeed, "Short abstract.", "Uses &lt;b&gt; tags", 1)

	cfg := setup(t, target)
	_, err := Run(context.Background(), cfg, WithFetcher(&staticFetcher{body: feedWithMarkup}), WithClock(clock))
	require.NoError(t, err)
	assert.Contains(t, read(t, cfg.Target), "<p>Uses <b> tags</p>")

	cfg = setup(t, target)
	cfg.EscapeHTML = true
	_, err = Run(context.Background(), cfg, WithFetcher(&staticFetcher{body: feedWithMarkup}), WithClock(clock))
	require.NoError(t, err)
	assert.Contains(t, read(t, cfg.Target), "<p>Uses &lt;b&gt; tags</p>")
}

func TestPreview(t *testing.T) {
	cfg := types.DefaultRefreshConfig()
	cfg.Target = filepath.Join(t.TempDir(), "never-created.html")

	records, err := Preview(context.Background(), cfg, WithFetcher(&staticFetcher{body: oneEntryFeed}))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A Note on Groups", records[0].Title)

	_, err = os.Stat(cfg.Target)
	assert.True(t, os.IsNotExist(err))

	page, err := RenderPreview(cfg, records, clock)
	require.NoError(t, err)
	assert.Contains(t, page.Fragment, "A Note on Groups")
}
