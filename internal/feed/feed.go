// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feed decodes the Atom feed returned by the search API into
// PaperRecords, in feed order.
package feed

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed/atom"
	"golang.org/x/net/html/charset"

	"github.com/pdiddy/paper-refresh/internal/logging"
	"github.com/pdiddy/paper-refresh/pkg/types"
)

// pdfLinkTitle is the link title attribute that marks the PDF link.
const pdfLinkTitle = "pdf"

// ParseError reports a feed that could not be decoded, or an entry missing a
// required field under the fail policy. Entry is -1 for document-level errors.
type ParseError struct {
	Entry int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Entry < 0 {
		return fmt.Sprintf("parsing feed: %v", e.Err)
	}
	return fmt.Sprintf("parsing feed: entry %d has no %s", e.Entry, e.Field)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser turns raw feed text into records.
type Parser struct {
	// Policy decides how entries with a missing title, summary, or author
	// name are handled. Empty means fail.
	Policy types.MissingFieldPolicy
	Logger *slog.Logger
}

// Parse decodes raw and returns one record per entry. A feed with no
// entries yields an empty slice and no error.
func (p *Parser) Parse(raw string) ([]types.PaperRecord, error) {
	log := logging.OrDiscard(p.Logger)

	if err := checkWellFormed(raw); err != nil {
		return nil, &ParseError{Entry: -1, Err: err}
	}

	fp := &atom.Parser{}
	doc, err := fp.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Entry: -1, Err: err}
	}

	records := make([]types.PaperRecord, 0, len(doc.Entries))
	for i, entry := range doc.Entries {
		if entry == nil {
			continue
		}
		rec, missing := p.record(entry)
		if missing != "" {
			switch p.Policy {
			case types.MissingFieldSkip:
				log.Warn("skipping entry", "entry", i, "missing", missing)
				continue
			case types.MissingFieldEmpty:
				log.Debug("entry kept with empty field", "entry", i, "missing", missing)
			default:
				return nil, &ParseError{Entry: i, Field: missing}
			}
		}
		records = append(records, rec)
	}

	log.Info("parsed feed", "papers", len(records))
	for i, rec := range records {
		log.Info("paper", "index", i+1, "title", rec.Title, "authors", rec.AuthorLine(), "pdf", rec.PDFURL)
	}
	return records, nil
}

// checkWellFormed runs a strict XML pass over raw. The Atom parser recovers
// from mismatched tags, unknown entities, and trailing content, so those are
// rejected here first.
func checkWellFormed(raw string) error {
	d := xml.NewDecoder(strings.NewReader(raw))
	d.CharsetReader = charset.NewReaderLabel

	depth := 0
	seenRoot := false
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 && seenRoot {
				return fmt.Errorf("element <%s> after the root element", t.Name.Local)
			}
			seenRoot = true
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(strings.TrimSpace(string(t))) > 0 {
				return errors.New("text outside the root element")
			}
		}
	}
	if !seenRoot {
		return errors.New("no root element")
	}
	return nil
}

// record extracts the fields of one entry. missing names the first required
// field that was absent, or is empty when the entry is complete. Nameless
// authors are left out of the record.
func (p *Parser) record(e *atom.Entry) (rec types.PaperRecord, missing string) {
	rec.Title = normalize(e.Title)
	if rec.Title == "" {
		missing = "title"
	}

	rec.Authors = make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		if a == nil || strings.TrimSpace(a.Name) == "" {
			if missing == "" {
				missing = "author name"
			}
			continue
		}
		rec.Authors = append(rec.Authors, a.Name)
	}

	rec.Abstract = normalize(e.Summary)
	if rec.Abstract == "" && missing == "" {
		missing = "summary"
	}

	rec.PDFURL = pdfURL(e.Links)
	return rec, missing
}

// pdfURL returns the href of the first link titled "pdf".
func pdfURL(links []*atom.Link) string {
	for _, l := range links {
		if l != nil && l.Title == pdfLinkTitle {
			return l.Href
		}
	}
	return ""
}

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ")

// normalize trims surrounding whitespace and turns embedded newlines into spaces.
func normalize(s string) string {
	return newlines.Replace(strings.TrimSpace(s))
}
