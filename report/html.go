package report

import (
	"html/template"
	"io"
	"strings"
	"time"

	"nerd-search/search"
)

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>nerd-search report</title>
<style>
body { font-family: sans-serif; background: #1a1b26; color: #a9b1d6; margin: 2em; }
h1 { color: #7aa2f7; }
h2 { color: #7aa2f7; font-size: 1.1em; margin-bottom: 0.3em; }
a { color: #7dcfff; }
section { border-top: 1px solid #565f89; padding: 0.5em 0; }
.status { color: #f7768e; }
.no_text .status { color: #e0af68; }
.counts { color: #7dcfff; list-style: none; padding-left: 0; }
.loc { color: #bb9af7; margin-top: 0.6em; }
pre { margin: 0; white-space: pre-wrap; }
pre.ctx { color: #565f89; }
mark { background: #e0af68; color: #1a1b26; font-weight: bold; }
</style>
</head>
<body>
<h1>Search results</h1>
<p>Terms: {{range $i, $t := .Terms}}{{if $i}}, {{end}}&ldquo;{{$t}}&rdquo;{{end}}</p>
<p>Generated {{.Generated}}{{with .RunID}} &middot; run {{.}}{{end}}</p>
{{- if not .Files}}
<p>No matching words found.</p>
{{- end}}
{{- range .Files}}
<section class="{{.Status}}">
<h2>{{if .Link}}<a href="{{.Link}}">{{.Path}}</a>{{else}}{{.Path}}{{end}}</h2>
{{- if .Problem}}
<p class="status">[{{.Problem}}]{{with .Error}} {{.}}{{end}}</p>
{{- else}}
<ul class="counts">{{range .Counts}}<li>{{.Term}}: {{.Count}}</li>{{end}}</ul>
{{- range .Matches}}
<div class="match">
<div class="loc">{{.Location}} &middot; {{.Term}}</div>
{{- range .Before}}
<pre class="ctx">{{.}}</pre>
{{- end}}
<pre class="hit">{{.Text}}</pre>
{{- range .After}}
<pre class="ctx">{{.}}</pre>
{{- end}}
</div>
{{- end}}
{{- end}}
</section>
{{- end}}
</body>
</html>
`))

type htmlPage struct {
	Terms     []string
	Generated string
	RunID     string
	Files     []htmlFile
}

type htmlFile struct {
	Path    string
	Link    string
	Status  search.Status
	Problem string
	Error   string
	Counts  []TermCount
	Matches []htmlMatch
}

type htmlMatch struct {
	Location string
	Term     string
	Before   []string
	Text     template.HTML
	After    []string
}

// HTML writes a standalone HTML report with matches marked up by <mark>
func HTML(w io.Writer, results []search.FileResult, opts Options) error {
	page := htmlPage{
		Terms:     opts.Terms,
		Generated: time.Now().Format(time.RFC1123),
		RunID:     opts.RunID,
	}
	for _, r := range Visible(results, opts) {
		f := htmlFile{
			Path:   r.Path,
			Link:   Link(r.Path, opts),
			Status: r.Status,
			Error:  r.Error,
			Counts: OrderedCounts(r, opts.Terms),
		}
		if r.Status != search.StatusOK {
			f.Problem = statusLabel(r.Status)
		}
		for _, m := range r.Matches {
			f.Matches = append(f.Matches, htmlMatch{
				Location: Location(r, m),
				Term:     m.Term,
				Before:   m.Before,
				Text:     highlightHTML(m.Text, m.Spans),
				After:    m.After,
			})
		}
		page.Files = append(page.Files, f)
	}
	return pageTemplate.Execute(w, page)
}

// highlightHTML escapes text and wraps highlighted spans in <mark>
func highlightHTML(text string, spans []search.Span) template.HTML {
	var b strings.Builder
	for _, seg := range Segments(text, spans) {
		if seg.Hit {
			b.WriteString("<mark>")
			b.WriteString(template.HTMLEscapeString(seg.Text))
			b.WriteString("</mark>")
		} else {
			b.WriteString(template.HTMLEscapeString(seg.Text))
		}
	}
	return template.HTML(b.String())
}
