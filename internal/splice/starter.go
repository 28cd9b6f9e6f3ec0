// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package splice

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/pdiddy/paper-refresh/pkg/types"
)

var starterTmpl = template.Must(template.New("starter").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <title>Latest papers</title>
</head>
<body>
    <h1>Latest papers</h1>
{{- if .KeywordLabel}}
    <p>{{.KeywordLabel}} <span id="search-keyword">{{.Keyword}}</span></p>
{{- end}}
    <p>{{.TimestampLabel}} <span id="last-updated">never</span></p>
    <div id="{{.Container}}">
        {{.Start}}{{.End}}
    </div>
</body>
</html>
`))

// StarterPage returns a page that satisfies both the marker and the DOM
// matchers for cfg, with an empty papers region.
func StarterPage(cfg types.RefreshConfig) (string, error) {
	var buf bytes.Buffer
	err := starterTmpl.Execute(&buf, struct {
		Keyword, KeywordLabel, TimestampLabel string
		Container, Start, End                 string
	}{
		Keyword:        cfg.Query.Keyword,
		KeywordLabel:   cfg.Labels.Keyword,
		TimestampLabel: cfg.Labels.Timestamp,
		Container:      cfg.Markers.Container,
		Start:          cfg.Markers.Start,
		End:            cfg.Markers.End,
	})
	if err != nil {
		return "", fmt.Errorf("rendering starter page: %w", err)
	}
	return buf.String(), nil
}
