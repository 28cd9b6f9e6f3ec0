// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package splice

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pdiddy/paper-refresh/internal/logging"
)

// Region is one replaceable span of a document. Implementations decide how
// the span is located; callers only read or replace its value.
type Region interface {
	Name() string
	Content(doc string) (string, error)
	Replace(doc, value string) (string, error)
}

// RegionNotFoundError reports a document without the expected region.
type RegionNotFoundError struct {
	Region string
	Detail string
}

func (e *RegionNotFoundError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("region %q not found: %s", e.Region, e.Detail)
	}
	return fmt.Sprintf("region %q not found", e.Region)
}

func isNotFound(err error) bool {
	var nf *RegionNotFoundError
	return errors.As(err, &nf)
}

// Markers is the span between a start and an end marker. Both markers stay
// in the document; only the text between them changes.
type Markers struct {
	RegionName string
	Start, End string
}

func (m Markers) Name() string { return m.RegionName }

// span returns the offsets of the text between the first start marker and
// the end marker that follows it.
func (m Markers) span(doc string) (from, to int, err error) {
	i := strings.Index(doc, m.Start)
	if i < 0 {
		return 0, 0, &RegionNotFoundError{Region: m.RegionName, Detail: fmt.Sprintf("no start marker %q", m.Start)}
	}
	from = i + len(m.Start)
	j := strings.Index(doc[from:], m.End)
	if j < 0 {
		return 0, 0, &RegionNotFoundError{Region: m.RegionName, Detail: fmt.Sprintf("no end marker %q after start marker", m.End)}
	}
	return from, from + j, nil
}

func (m Markers) Content(doc string) (string, error) {
	from, to, err := m.span(doc)
	if err != nil {
		return "", err
	}
	return doc[from:to], nil
}

func (m Markers) Replace(doc, value string) (string, error) {
	from, to, err := m.span(doc)
	if err != nil {
		return "", err
	}
	return doc[:from] + value + doc[to:], nil
}

// labelValue matches the label, any opening tags that follow it, and the
// value up to the next closing tag.
const labelValue = `([ \t]*(?:<[A-Za-z][^>]*>[ \t]*)*)([^<]*)</`

// Label is the value that follows a fixed text label, up to the next
// closing tag: "Last updated: <span>VALUE</span>" or "Last updated: VALUE</p>".
type Label struct {
	RegionName string
	Label      string
}

func (l Label) Name() string { return l.RegionName }

func (l Label) match(doc string) ([]int, error) {
	re, err := regexp.Compile(regexp.QuoteMeta(l.Label) + labelValue)
	if err != nil {
		return nil, fmt.Errorf("compiling label pattern: %w", err)
	}
	loc := re.FindStringSubmatchIndex(doc)
	if loc == nil {
		return nil, &RegionNotFoundError{Region: l.RegionName, Detail: fmt.Sprintf("no label %q followed by a value and closing tag", l.Label)}
	}
	return loc, nil
}

func (l Label) Content(doc string) (string, error) {
	loc, err := l.match(doc)
	if err != nil {
		return "", err
	}
	return doc[loc[4]:loc[5]], nil
}

func (l Label) Replace(doc, value string) (string, error) {
	loc, err := l.match(doc)
	if err != nil {
		return "", err
	}
	sep := ""
	if loc[2] == loc[3] {
		sep = " "
	}
	return doc[:loc[3]] + sep + value + doc[loc[5]:], nil
}

// Placeholders left in hand-written pages. They are consumed on first use.
const (
	PapersPlaceholder    = "<!-- Papers will be dynamically inserted here -->"
	TimestampPlaceholder = "<!-- Insert timestamp here -->"
)

// Placeholder is a one-shot token. Replacing it writes Before+value+After in
// its place, so a papers placeholder can become a marker pair for later runs.
type Placeholder struct {
	RegionName    string
	Token         string
	Before, After string
}

func (p Placeholder) Name() string { return p.RegionName }

func (p Placeholder) Content(doc string) (string, error) {
	if !strings.Contains(doc, p.Token) {
		return "", &RegionNotFoundError{Region: p.RegionName, Detail: fmt.Sprintf("no placeholder %q", p.Token)}
	}
	return "", nil
}

func (p Placeholder) Replace(doc, value string) (string, error) {
	if !strings.Contains(doc, p.Token) {
		return "", &RegionNotFoundError{Region: p.RegionName, Detail: fmt.Sprintf("no placeholder %q", p.Token)}
	}
	return strings.Replace(doc, p.Token, p.Before+value+p.After, 1), nil
}

type firstOf struct {
	name    string
	regions []Region
}

// FirstOf returns a region that uses the first of regions present in the
// document. Its not-found error is the one from the first region.
func FirstOf(name string, regions ...Region) Region {
	return &firstOf{name: name, regions: regions}
}

func (f *firstOf) Name() string { return f.name }

func (f *firstOf) Content(doc string) (string, error) {
	var firstErr error
	for _, r := range f.regions {
		v, err := r.Content(doc)
		if err == nil {
			return v, nil
		}
		if !isNotFound(err) {
			return "", err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", f.notFound(firstErr)
}

func (f *firstOf) Replace(doc, value string) (string, error) {
	var firstErr error
	for _, r := range f.regions {
		out, err := r.Replace(doc, value)
		if err == nil {
			return out, nil
		}
		if !isNotFound(err) {
			return "", err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", f.notFound(firstErr)
}

func (f *firstOf) notFound(err error) error {
	if err != nil {
		return err
	}
	return &RegionNotFoundError{Region: f.name, Detail: "no candidate regions"}
}

// Repairing wraps a region whose markers may have been lost. When Region is
// absent it inserts an empty Markers pair right after the opening tag of the
// element with id Container and replaces inside that. Start markers left
// without an end marker are removed first.
type Repairing struct {
	Region    Region
	Markers   Markers
	Container string
	Logger    *slog.Logger
}

func (r *Repairing) Name() string { return r.Region.Name() }

func (r *Repairing) Content(doc string) (string, error) {
	v, err := r.Region.Content(doc)
	if err == nil || !isNotFound(err) {
		return v, err
	}
	if _, err := r.repair(doc); err != nil {
		return "", err
	}
	return "", nil
}

func (r *Repairing) Replace(doc, value string) (string, error) {
	out, err := r.Region.Replace(doc, value)
	if err == nil || !isNotFound(err) {
		return out, err
	}
	repaired, err := r.repair(doc)
	if err != nil {
		return "", err
	}
	logging.OrDiscard(r.Logger).Warn("inserted missing markers", "region", r.Name(), "container", r.Container)
	return r.Markers.Replace(repaired, value)
}

func (r *Repairing) repair(doc string) (string, error) {
	if strings.Contains(doc, r.Markers.Start) {
		// Markers.span failed, so no start marker is followed by an end marker.
		logging.OrDiscard(r.Logger).Warn("removing orphaned start marker", "region", r.Name(), "marker", r.Markers.Start)
		doc = strings.ReplaceAll(doc, r.Markers.Start, "")
	}
	re, err := regexp.Compile(`<[A-Za-z][A-Za-z0-9-]*\s[^>]*\bid\s*=\s*["']` + regexp.QuoteMeta(r.Container) + `["'][^>]*>`)
	if err != nil {
		return "", fmt.Errorf("compiling container pattern: %w", err)
	}
	loc := re.FindStringIndex(doc)
	if loc == nil {
		return "", &RegionNotFoundError{Region: r.Name(), Detail: fmt.Sprintf("markers missing and no element with id %q to repair", r.Container)}
	}
	return doc[:loc[1]] + r.Markers.Start + r.Markers.End + doc[loc[1]:], nil
}
