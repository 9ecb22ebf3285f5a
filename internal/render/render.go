// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for pages built on the
// Tabler layout. It supports full-page and HTMX partial rendering,
// detecting the request type via the HX-Request header.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path"

	"tablerkit/internal/config"
	"tablerkit/internal/middleware"
)

//go:embed templates/tabler/*.html
var templateFS embed.FS

const (
	templateDir = "templates/tabler"
	layoutFile  = "base.html"
)

// PageData holds all data passed to page templates.
type PageData struct {
	Title   string            // Page title for <title> tag
	Prefs   *middleware.Prefs // Resolved UI preferences (set from context when nil)
	Options config.Map        // TABLER_* options
	Flashes []Flash           // One-time notification messages
	Data    map[string]any    // Page-specific data
}

// Flash is a one-time notification. Category is one of the flash
// categories understood by get_flash_category: "success", "info",
// "warning", "warn", "error", "danger", "important", "primary".
type Flash struct {
	Category string
	Message  string
}

// Renderer parses every page template paired with the base layout.
type Renderer struct {
	templates map[string]*template.Template
	opts      config.Map
}

// New parses the embedded templates with funcs, which must hold every
// helper the templates call (see tabler.Extension.Init).
func New(funcs template.FuncMap, opts config.Map) (*Renderer, error) {
	entries, err := templateFS.ReadDir(templateDir)
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	r := &Renderer{templates: make(map[string]*template.Template), opts: opts}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == layoutFile || path.Ext(name) != ".html" {
			continue
		}

		tmpl, err := template.New(layoutFile).Funcs(funcs).ParseFS(
			templateFS, path.Join(templateDir, layoutFile), path.Join(templateDir, name),
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[name[:len(name)-len(".html")]] = tmpl
	}
	return r, nil
}

// Has reports whether a page template named name was parsed.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// Page renders a full page, or only its "content" block for HTMX requests.
// Output is buffered so a failing template yields a clean 500.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	if data.Prefs == nil {
		data.Prefs = middleware.PrefsFromCtx(r.Context())
	}
	if data.Prefs == nil {
		data.Prefs = &middleware.Prefs{
			ThemePrimary: middleware.FallbackThemeColor,
			Layout:       middleware.FallbackLayout,
			Lang:         middleware.FallbackLanguage,
		}
	}
	if data.Options == nil {
		data.Options = rn.opts
	}

	execName := layoutFile
	if isHTMX(r) {
		execName = "content"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		slog.Error("template execution failed",
			"template", name,
			"error", err,
			"request_id", middleware.RequestIDFromCtx(r.Context()),
		)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
