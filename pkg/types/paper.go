// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-refresh pipeline:
// the search query, the parsed paper record, and the run configuration.
package types

import "strings"

// PaperRecord is one parsed feed entry. The parser creates it and the
// renderer consumes it; nothing mutates it in between.
type PaperRecord struct {
	// Title is the entry title, trimmed, with embedded newlines replaced by spaces.
	Title string `json:"title" yaml:"title"`

	// Authors lists author display names in document order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the entry summary, normalized like Title.
	Abstract string `json:"abstract" yaml:"abstract"`

	// PDFURL is the href of the first link titled "pdf", or empty.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`
}

// AuthorLine joins the author names with ", ".
func (p PaperRecord) AuthorLine() string {
	return strings.Join(p.Authors, ", ")
}
