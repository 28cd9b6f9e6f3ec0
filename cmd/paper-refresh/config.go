// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-refresh/pkg/types"
)

const envPrefix = "PAPER_REFRESH"

// configFlag maps a command-line flag onto a configuration key.
type configFlag struct {
	key, flag, usage string
	value            any
}

func configFlags(d types.RefreshConfig) []configFlag {
	return []configFlag{
		{"query.keyword", "keyword", "search keyword (searched across all fields)", d.Query.Keyword},
		{"query.max_results", "max-results", "number of papers to fetch", d.Query.MaxResults},
		{"query.sort_by", "sort-by", "sort field: relevance, lastUpdatedDate, or submittedDate", string(d.Query.SortBy)},
		{"query.sort_order", "sort-order", "sort order: ascending or descending", string(d.Query.SortOrder)},
		{"target", "target", "HTML file to refresh", d.Target},
		{"api_url", "api-url", "search API endpoint", d.APIURL},
		{"http.timeout", "timeout", "HTTP request timeout (0 keeps the net/http default)", d.HTTP.Timeout},
		{"http.user_agent", "user-agent", "User-Agent header", d.HTTP.UserAgent},
		{"missing_fields", "missing-fields", "entries missing a title, summary, or author name: fail, skip, or empty", string(d.MissingFields)},
		{"escape_html", "escape-html", "HTML-escape feed text before embedding it", d.EscapeHTML},
		{"matcher", "matcher", "region matcher: markers or dom", string(d.Matcher)},
		{"markers.policy", "marker-policy", "missing papers markers: strict or repair", string(d.Markers.Policy)},
	}
}

// configure registers defaults, environment lookup, and flag bindings for
// every configuration key on v.
func configure(v *viper.Viper, fs *pflag.FlagSet) error {
	d := types.DefaultRefreshConfig()

	v.SetDefault("query.keyword", d.Query.Keyword)
	v.SetDefault("query.max_results", d.Query.MaxResults)
	v.SetDefault("query.sort_by", string(d.Query.SortBy))
	v.SetDefault("query.sort_order", string(d.Query.SortOrder))
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("target", d.Target)
	v.SetDefault("missing_fields", string(d.MissingFields))
	v.SetDefault("escape_html", d.EscapeHTML)
	v.SetDefault("matcher", string(d.Matcher))
	v.SetDefault("markers.start", d.Markers.Start)
	v.SetDefault("markers.end", d.Markers.End)
	v.SetDefault("markers.policy", string(d.Markers.Policy))
	v.SetDefault("markers.container", d.Markers.Container)
	v.SetDefault("labels.timestamp", d.Labels.Timestamp)
	v.SetDefault("labels.keyword", d.Labels.Keyword)
	v.SetDefault("selectors.papers", d.Selectors.Papers)
	v.SetDefault("selectors.timestamp", d.Selectors.Timestamp)
	v.SetDefault("selectors.keyword", d.Selectors.Keyword)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, f := range configFlags(d) {
		switch val := f.value.(type) {
		case string:
			fs.String(f.flag, val, f.usage)
		case int:
			fs.Int(f.flag, val, f.usage)
		case bool:
			fs.Bool(f.flag, val, f.usage)
		case time.Duration:
			fs.Duration(f.flag, val, f.usage)
		default:
			return fmt.Errorf("flag %s: unsupported default %T", f.flag, f.value)
		}
		if err := v.BindPFlag(f.key, fs.Lookup(f.flag)); err != nil {
			return fmt.Errorf("binding flag %s: %w", f.flag, err)
		}
	}
	return nil
}

// loadConfig resolves the run configuration from flags, environment,
// config file, and defaults, in that order of precedence.
func loadConfig(v *viper.Viper) (types.RefreshConfig, error) {
	var cfg types.RefreshConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
