// Package web embeds the page templates and stylesheet.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
)

//go:embed static
var staticFiles embed.FS

//go:embed templates
var templateFiles embed.FS

var funcs = template.FuncMap{
	"bytes": func(n int64) string {
		if n < 0 {
			n = 0
		}
		return humanize.Bytes(uint64(n))
	},
	"ago": humanize.Time,
	// file links must escape '#', '?' and '%' in out-of-band names
	"pathEscape": url.PathEscape,
	"iso": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}

// Static returns the stylesheet tree with the "static/" prefix stripped.
func Static() (fs.FS, error) {
	return fs.Sub(staticFiles, "static")
}

// Templates parses every page and partial. Pages are addressed by file name,
// e.g. "dashboard.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFiles,
		"templates/*.html",
		"templates/partials/*.html",
	)
}
