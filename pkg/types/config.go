// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds the settings for the single API request a run makes.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero keeps the net/http default.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with the request
	// (e.g. "paper-refresh/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// MissingFieldPolicy decides what the parser does with an entry that lacks
// a title, a summary, or an author name.
type MissingFieldPolicy string

const (
	// MissingFieldFail aborts parsing with a ParseError.
	MissingFieldFail MissingFieldPolicy = "fail"
	// MissingFieldSkip drops the entry and logs a warning.
	MissingFieldSkip MissingFieldPolicy = "skip"
	// MissingFieldEmpty keeps the entry with empty values.
	MissingFieldEmpty MissingFieldPolicy = "empty"
)

// MarkerPolicy decides what the splicer does when the papers markers are absent.
type MarkerPolicy string

const (
	// MarkerStrict fails the run with a RegionNotFoundError.
	MarkerStrict MarkerPolicy = "strict"
	// MarkerRepair inserts empty markers into the container element and retries.
	MarkerRepair MarkerPolicy = "repair"
)

// Matcher selects how regions of the target document are located.
type Matcher string

const (
	// MatcherMarkers edits the document as text and preserves every byte
	// outside the replaced regions.
	MatcherMarkers Matcher = "markers"
	// MatcherDOM parses the document and replaces elements chosen by CSS
	// selectors. The document is re-serialized.
	MatcherDOM Matcher = "dom"
)

// MarkerConfig names the comment markers that delimit the papers region.
type MarkerConfig struct {
	Start string `json:"start" yaml:"start" mapstructure:"start"`
	End   string `json:"end" yaml:"end" mapstructure:"end"`

	// Policy is strict or repair.
	Policy MarkerPolicy `json:"policy" yaml:"policy" mapstructure:"policy"`

	// Container is the id of the element that receives fresh markers
	// under the repair policy.
	Container string `json:"container" yaml:"container" mapstructure:"container"`
}

// LabelConfig holds the text labels that precede the timestamp and keyword values.
type LabelConfig struct {
	Timestamp string `json:"timestamp" yaml:"timestamp" mapstructure:"timestamp"`

	// Keyword is optional; empty disables keyword splicing.
	Keyword string `json:"keyword" yaml:"keyword" mapstructure:"keyword"`
}

// SelectorConfig holds the CSS selectors used by the DOM matcher.
type SelectorConfig struct {
	Papers    string `json:"papers" yaml:"papers" mapstructure:"papers"`
	Timestamp string `json:"timestamp" yaml:"timestamp" mapstructure:"timestamp"`
	Keyword   string `json:"keyword" yaml:"keyword" mapstructure:"keyword"`
}

// RefreshConfig is the immutable configuration passed into the pipeline.
type RefreshConfig struct {
	Query SearchQuery `json:"query" yaml:"query" mapstructure:"query"`
	HTTP  HTTPConfig  `json:"http" yaml:"http" mapstructure:"http"`

	// APIURL is the search endpoint.
	APIURL string `json:"api_url" yaml:"api_url" mapstructure:"api_url"`

	// Target is the HTML file rewritten in place.
	Target string `json:"target" yaml:"target" mapstructure:"target"`

	MissingFields MissingFieldPolicy `json:"missing_fields" yaml:"missing_fields" mapstructure:"missing_fields"`

	// EscapeHTML escapes feed text before it is embedded. Off keeps the
	// feed text verbatim.
	EscapeHTML bool `json:"escape_html" yaml:"escape_html" mapstructure:"escape_html"`

	Matcher   Matcher        `json:"matcher" yaml:"matcher" mapstructure:"matcher"`
	Markers   MarkerConfig   `json:"markers" yaml:"markers" mapstructure:"markers"`
	Labels    LabelConfig    `json:"labels" yaml:"labels" mapstructure:"labels"`
	Selectors SelectorConfig `json:"selectors" yaml:"selectors" mapstructure:"selectors"`
}

// Defaults used when no configuration is supplied.
const (
	DefaultAPIURL         = "http://export.arxiv.org/api/query"
	DefaultTarget         = "papers.html"
	DefaultUserAgent      = "paper-refresh/0.1"
	DefaultStartMarker    = "<!-- PAPERS_START -->"
	DefaultEndMarker      = "<!-- PAPERS_END -->"
	DefaultContainer      = "paper-list"
	DefaultTimestampLabel = "Last updated:"
	DefaultKeywordLabel   = "Search keyword:"
)

// DefaultRefreshConfig returns a configuration that refreshes papers.html
// with the ten most recently updated "algebra" papers.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Query: DefaultSearchQuery(),
		HTTP: HTTPConfig{
			UserAgent: DefaultUserAgent,
		},
		APIURL:        DefaultAPIURL,
		Target:        DefaultTarget,
		MissingFields: MissingFieldFail,
		Matcher:       MatcherMarkers,
		Markers: MarkerConfig{
			Start:     DefaultStartMarker,
			End:       DefaultEndMarker,
			Policy:    MarkerStrict,
			Container: DefaultContainer,
		},
		Labels: LabelConfig{
			Timestamp: DefaultTimestampLabel,
			Keyword:   DefaultKeywordLabel,
		},
		Selectors: SelectorConfig{
			Papers:    "#" + DefaultContainer,
			Timestamp: "#last-updated",
			Keyword:   "#search-keyword",
		},
	}
}

// Validate checks that the configuration describes a runnable pipeline.
func (c RefreshConfig) Validate() error {
	if err := c.Query.Validate(); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if c.APIURL == "" {
		return fmt.Errorf("api_url is empty")
	}
	if c.Target == "" {
		return fmt.Errorf("target is empty")
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http timeout cannot be negative")
	}
	switch c.MissingFields {
	case MissingFieldFail, MissingFieldSkip, MissingFieldEmpty:
	default:
		return fmt.Errorf("unknown missing_fields policy %q: use fail, skip, or empty", c.MissingFields)
	}

	switch c.Matcher {
	case MatcherMarkers:
		if c.Markers.Start == "" || c.Markers.End == "" {
			return fmt.Errorf("papers start and end markers are required")
		}
		if c.Markers.Start == c.Markers.End {
			return fmt.Errorf("papers start and end markers must differ")
		}
		if c.Labels.Timestamp == "" {
			return fmt.Errorf("timestamp label is required")
		}
		switch c.Markers.Policy {
		case MarkerStrict:
		case MarkerRepair:
			if c.Markers.Container == "" {
				return fmt.Errorf("repair policy needs a container id")
			}
		default:
			return fmt.Errorf("unknown marker policy %q: use strict or repair", c.Markers.Policy)
		}
	case MatcherDOM:
		if c.Selectors.Papers == "" || c.Selectors.Timestamp == "" {
			return fmt.Errorf("papers and timestamp selectors are required")
		}
	default:
		return fmt.Errorf("unknown matcher %q: use markers or dom", c.Matcher)
	}
	return nil
}
