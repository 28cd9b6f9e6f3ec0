// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// SortBy selects the field the search API sorts results by.
type SortBy string

const (
	SortByRelevance       SortBy = "relevance"
	SortByLastUpdatedDate SortBy = "lastUpdatedDate"
	SortBySubmittedDate   SortBy = "submittedDate"
)

// SortOrder selects the sort direction.
type SortOrder string

const (
	SortAscending  SortOrder = "ascending"
	SortDescending SortOrder = "descending"
)

// maxResultsLimit is the largest page size the arXiv API serves.
const maxResultsLimit = 2000

// SearchQuery is the immutable description of the one search a run performs.
type SearchQuery struct {
	// Keyword is searched across all fields ("all:" prefix).
	Keyword string `json:"keyword" yaml:"keyword" mapstructure:"keyword"`

	// MaxResults is the number of entries requested (1..2000).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	SortBy    SortBy    `json:"sort_by" yaml:"sort_by" mapstructure:"sort_by"`
	SortOrder SortOrder `json:"sort_order" yaml:"sort_order" mapstructure:"sort_order"`
}

// DefaultSearchQuery returns the query the tool runs when nothing is configured.
func DefaultSearchQuery() SearchQuery {
	return SearchQuery{
		Keyword:    "algebra",
		MaxResults: 10,
		SortBy:     SortByLastUpdatedDate,
		SortOrder:  SortDescending,
	}
}

// Validate reports the first problem with the query, if any.
func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.Keyword) == "" {
		return fmt.Errorf("search keyword is empty")
	}
	if q.MaxResults <= 0 {
		return fmt.Errorf("max results must be positive, got %d", q.MaxResults)
	}
	if q.MaxResults > maxResultsLimit {
		return fmt.Errorf("max results cannot exceed %d, got %d", maxResultsLimit, q.MaxResults)
	}
	switch q.SortBy {
	case SortByRelevance, SortByLastUpdatedDate, SortBySubmittedDate:
	default:
		return fmt.Errorf("unknown sort field %q", q.SortBy)
	}
	switch q.SortOrder {
	case SortAscending, SortDescending:
	default:
		return fmt.Errorf("unknown sort order %q", q.SortOrder)
	}
	return nil
}
