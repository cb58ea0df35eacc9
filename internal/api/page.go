package api

import (
	"html/template"
)

type docLink struct {
	Path string
	URL  string
}

type indexData struct {
	Documents []docLink
}

type documentData struct {
	Title     string
	Paged     bool
	ToggleURL string
	Article   template.HTML
}

// pageCSS keeps widths stable across pages and styles the pager for light
// and dark themes.
const pageCSS = `
body { font-family: system-ui, sans-serif; max-width: 52rem; margin: 0 auto; padding: 1rem; }
.doc-toolbar { display: flex; justify-content: flex-end; margin-bottom: 0.5rem; }
article.doc-article { min-width: 0; max-width: 100%; }
.paged-content { width: 100%; max-width: 100%; min-width: 0; }
.paged-content .page-preamble { width: 100%; max-width: 100%; min-width: 0; }
.paged-content .page-section { width: 100%; max-width: 100%; min-width: 0; }
.paged-content pre { max-width: 100%; overflow-x: auto; }
.paged-content table { max-width: 100%; display: block; overflow-x: auto; }
[hidden] { display: none !important; }

.pager {
  display: flex;
  align-items: center;
  justify-content: space-between;
  gap: 10px;
  padding: 10px 12px;
  margin: 10px 0 14px 0;
  border-radius: 10px;
  border: 1px solid rgba(0,0,0,0.15);
  background: rgba(0,0,0,0.03);
}
@supports (background: color-mix(in srgb, black 10%, white)) {
  .pager {
    border: 1px solid color-mix(in srgb, currentColor 22%, transparent);
    background: color-mix(in srgb, currentColor 6%, transparent);
  }
}
.pager .pager-left,
.pager .pager-right { display: inline-flex; align-items: center; gap: 10px; }
.pager .pager-form { margin: 0; }
.pager .pager-label { font-size: 12px; opacity: 0.85; white-space: nowrap; }
.pager button {
  appearance: none;
  border: 1px solid rgba(0,0,0,0.18);
  background: rgba(255,255,255,0.55);
  color: inherit;
  border-radius: 10px;
  padding: 8px 10px;
  cursor: pointer;
  line-height: 0;
}
@supports (background: color-mix(in srgb, black 10%, white)) {
  .pager button {
    border: 1px solid color-mix(in srgb, currentColor 26%, transparent);
    background: color-mix(in srgb, currentColor 8%, transparent);
  }
  .pager button:hover { background: color-mix(in srgb, currentColor 12%, transparent); }
}
.pager button:hover { background: rgba(0,0,0,0.05); }
.pager button:active { transform: translateY(1px); }
`

var layout = template.Must(template.New("layout").Parse(`{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.}}</title>
<style id="docpager-style">` + pageCSS + `</style>
</head>{{end}}`))

var indexTemplate = template.Must(template.Must(layout.Clone()).New("index").Parse(`{{template "head" "Documents"}}
<body>
<h1>Documents</h1>
<ul class="doc-list">
{{- range .Documents}}
<li><a href="{{.URL}}">{{.Path}}</a></li>
{{- else}}
<li>No documents.</li>
{{- end}}
</ul>
</body>
</html>
`))

var documentTemplate = template.Must(template.Must(layout.Clone()).New("document").Parse(`{{template "head" .Title}}
<body>
<div class="doc-toolbar">
<form method="post" action="{{.ToggleURL}}">
<button type="submit" id="page-toggle" aria-pressed="{{if .Paged}}true{{else}}false{{end}}">{{if .Paged}}Continuous view{{else}}Paged view{{end}}</button>
</form>
</div>
{{.Article}}
</body>
</html>
`))
