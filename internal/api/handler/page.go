package handler

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed dashboard.html
var pageFS embed.FS

var pageTemplate = template.Must(template.ParseFS(pageFS, "dashboard.html"))

// pageCSP admits the Leaflet assets from unpkg and the basemap and
// raster tile hosts; everything else stays locked down.
const pageCSP = "default-src 'none'; " +
	"script-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"style-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"img-src 'self' data: https://*.google.com https://earthengine.googleapis.com; " +
	"connect-src 'self'; " +
	"frame-ancestors 'none'"

// PageHandler serves the embedded dashboard page.
type PageHandler struct {
	authenticated bool
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(authenticated bool) *PageHandler {
	return &PageHandler{authenticated: authenticated}
}

// Dashboard handles GET / - the single-page dashboard. Without a
// credential the page renders a persistent warning instead of the
// controls.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", pageCSP)

	data := struct {
		Authenticated bool
	}{
		Authenticated: h.authenticated,
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		// Template is static and embedded; execution can only fail if
		// the client went away mid-write.
		return
	}
}
