// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package splice

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selector is the content of the first element matching a CSS selector.
// Replacing it re-serializes the whole document, so formatting outside the
// element may change (attribute quoting, void tags, implied elements).
type Selector struct {
	RegionName string
	Selector   string

	// Text replaces the element's text instead of its inner HTML.
	Text bool
}

func (s Selector) Name() string { return s.RegionName }

func (s Selector) find(doc string) (*goquery.Document, *goquery.Selection, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing document: %w", err)
	}
	sel := d.Find(s.Selector).First()
	if sel.Length() == 0 {
		return nil, nil, &RegionNotFoundError{Region: s.RegionName, Detail: fmt.Sprintf("no element matches %q", s.Selector)}
	}
	return d, sel, nil
}

func (s Selector) Content(doc string) (string, error) {
	_, sel, err := s.find(doc)
	if err != nil {
		return "", err
	}
	if s.Text {
		return sel.Text(), nil
	}
	return sel.Html()
}

func (s Selector) Replace(doc, value string) (string, error) {
	d, sel, err := s.find(doc)
	if err != nil {
		return "", err
	}
	if s.Text {
		sel.SetText(value)
	} else {
		sel.SetHtml(value)
	}
	out, err := d.Html()
	if err != nil {
		return "", fmt.Errorf("rendering document: %w", err)
	}
	return out, nil
}
