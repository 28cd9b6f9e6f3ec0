// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-refresh/internal/feed"
	"github.com/pdiddy/paper-refresh/internal/fetch"
	"github.com/pdiddy/paper-refresh/internal/splice"
	"github.com/pdiddy/paper-refresh/pkg/types"
)

func newConfig(t *testing.T, args ...string) (*viper.Viper, *pflag.FlagSet) {
	t.Helper()
	v := viper.New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, configure(v, fs))
	require.NoError(t, fs.Parse(args))
	return v, fs
}

func TestLoadConfigDefaults(t *testing.T) {
	v, _ := newConfig(t)
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultRefreshConfig(), cfg)
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	v, _ := newConfig(t,
		"--keyword", "topology",
		"--max-results", "25",
		"--target", "site/index.html",
		"--timeout", "30s",
		"--escape-html",
		"--marker-policy", "repair",
		"--missing-fields", "skip",
	)
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "topology", cfg.Query.Keyword)
	assert.Equal(t, 25, cfg.Query.MaxResults)
	assert.Equal(t, "site/index.html", cfg.Target)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.True(t, cfg.EscapeHTML)
	assert.Equal(t, types.MarkerRepair, cfg.Markers.Policy)
	assert.Equal(t, types.MissingFieldSkip, cfg.MissingFields)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("PAPER_REFRESH_QUERY_KEYWORD", "category theory")
	t.Setenv("PAPER_REFRESH_MATCHER", "dom")

	v, _ := newConfig(t)
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "category theory", cfg.Query.Keyword)
	assert.Equal(t, types.MatcherDOM, cfg.Matcher)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper-refresh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`query:
  keyword: graphs
  max_results: 5
  sort_by: submittedDate
target: out/papers.html
markers:
  start: "<!-- BEGIN -->"
  end: "<!-- END -->"
labels:
  keyword: ""
`), 0o644))

	v, _ := newConfig(t, "--max-results", "7")
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "graphs", cfg.Query.Keyword)
	assert.Equal(t, 7, cfg.Query.MaxResults, "flags take precedence over the config file")
	assert.Equal(t, types.SortBySubmittedDate, cfg.Query.SortBy)
	assert.Equal(t, types.SortDescending, cfg.Query.SortOrder)
	assert.Equal(t, "out/papers.html", cfg.Target)
	assert.Equal(t, "<!-- BEGIN -->", cfg.Markers.Start)
	assert.Equal(t, "<!-- END -->", cfg.Markers.End)
	assert.Equal(t, types.DefaultTimestampLabel, cfg.Labels.Timestamp)
	assert.Equal(t, "", cfg.Labels.Keyword)
}

func TestReadConfigDefaultLocation(t *testing.T) {
	empty := t.TempDir()
	withFile := t.TempDir()
	path := filepath.Join(withFile, "paper-refresh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query:\n  keyword: rings\n"), 0o644))

	v, _ := newConfig(t)
	used, err := readConfig(v, "", empty, withFile)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "rings", cfg.Query.Keyword)
}

func TestReadConfigMissingDefaultIsIgnored(t *testing.T) {
	v, _ := newConfig(t)
	used, err := readConfig(v, "", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, used)
}

func TestReadConfigMalformedDefaultFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper-refresh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query: [unclosed\n  keyword: rings\n"), 0o644))

	v, _ := newConfig(t)
	_, err := readConfig(v, "", dir)
	require.Error(t, err)
	assert.ErrorContains(t, err, path)
}

func TestReadConfigMissingExplicitFileFails(t *testing.T) {
	v, _ := newConfig(t)
	path := filepath.Join(t.TempDir(), "nope.yaml")
	_, err := readConfig(v, path)
	assert.ErrorContains(t, err, path)
}

func TestLoadConfigInvalid(t *testing.T) {
	v, _ := newConfig(t, "--max-results", "0")
	_, err := loadConfig(v)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"fetch", &fetch.Error{URL: "u", StatusCode: 500}, exitFetch},
		{"parse", &feed.ParseError{Entry: -1}, exitParse},
		{"file", &splice.FileError{Op: "reading", Path: "p", Err: os.ErrNotExist}, exitFile},
		{"region", &splice.RegionNotFoundError{Region: "papers"}, exitRegion},
		{"wrapped region", fmt.Errorf("splicing: %w", &splice.RegionNotFoundError{Region: "papers"}), exitRegion},
		{"other", fmt.Errorf("invalid configuration"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

var previewRecords = []types.PaperRecord{{
	Title:    "A Note on Groups",
	Authors:  []string{"J. Doe"},
	Abstract: "Short abstract.",
	PDFURL:   "http://example.org/doc.pdf",
}}

func TestWritePreview(t *testing.T) {
	cfg := types.DefaultRefreshConfig()

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writePreview(&buf, "yaml", cfg, previewRecords))
		assert.Contains(t, buf.String(), "- title: A Note on Groups")
		assert.Contains(t, buf.String(), "pdf_url: http://example.org/doc.pdf")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writePreview(&buf, "json", cfg, previewRecords))
		var got []types.PaperRecord
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, previewRecords, got)
	})

	t.Run("html", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writePreview(&buf, "html", cfg, previewRecords))
		assert.Contains(t, buf.String(), `<a href="http://example.org/doc.pdf" target="_blank">A Note on Groups</a>`)
	})

	t.Run("unknown", func(t *testing.T) {
		err := writePreview(&bytes.Buffer{}, "csv", cfg, previewRecords)
		assert.ErrorContains(t, err, "unsupported format")
	})
}

func TestWriteStarter(t *testing.T) {
	cfg := types.DefaultRefreshConfig()
	path := filepath.Join(t.TempDir(), "papers.html")

	require.NoError(t, writeStarter(path, cfg, false))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), types.DefaultStartMarker+types.DefaultEndMarker)

	require.NoError(t, os.WriteFile(path, []byte("custom"), 0o644))
	err = writeStarter(path, cfg, false)
	assert.ErrorContains(t, err, "already exists")
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", string(data))

	require.NoError(t, writeStarter(path, cfg, true))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, "custom", string(data))
}
