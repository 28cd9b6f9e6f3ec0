// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns parsed records into the HTML fragment spliced into
// the target page, and stamps the time it was produced.
package render

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"golang.org/x/net/html"

	"github.com/pdiddy/paper-refresh/pkg/types"
)

// TimestampLayout formats the refresh time as YYYY-MM-DD HH:MM:SS.
const TimestampLayout = "2006-01-02 15:04:05"

// paperTmpl renders one record. The surrounding whitespace is part of the
// page output and is kept stable so unchanged feeds produce unchanged pages.
var paperTmpl = template.Must(template.New("paper").Parse(`
        <div class="paper">
            <h3><a href="{{.URL}}" target="_blank">{{.Title}}</a></h3>
            <p><strong>Authors:</strong> {{.Authors}}</p>
            <p>{{.Abstract}}</p>
        </div>
        <hr>
        `))

// RenderedPage is the output of one render pass.
type RenderedPage struct {
	Fragment  string
	Timestamp string
}

// Renderer builds fragments. Now defaults to time.Now.
type Renderer struct {
	// Escape HTML-escapes feed text before embedding it. When false the
	// text is inserted exactly as the feed supplied it.
	Escape bool
	Now    func() time.Time
}

type paperView struct {
	URL, Title, Authors, Abstract string
}

// Render produces the fragment for records, in order, and the current timestamp.
func (r *Renderer) Render(records []types.PaperRecord) (RenderedPage, error) {
	var buf bytes.Buffer
	for i, rec := range records {
		v := paperView{
			URL:      rec.PDFURL,
			Title:    rec.Title,
			Authors:  rec.AuthorLine(),
			Abstract: rec.Abstract,
		}
		if r.Escape {
			v = paperView{
				URL:      html.EscapeString(v.URL),
				Title:    html.EscapeString(v.Title),
				Authors:  html.EscapeString(v.Authors),
				Abstract: html.EscapeString(v.Abstract),
			}
		}
		if err := paperTmpl.Execute(&buf, v); err != nil {
			return RenderedPage{}, fmt.Errorf("rendering paper %d: %w", i, err)
		}
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return RenderedPage{
		Fragment:  buf.String(),
		Timestamp: now().Format(TimestampLayout),
	}, nil
}
