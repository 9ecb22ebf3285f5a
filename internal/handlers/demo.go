// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"tablerkit/internal/config"
	"tablerkit/internal/helpers"
	"tablerkit/internal/render"
)

// TextField is a visible input of the demo search form.
type TextField struct {
	Name  string
	Label string
	Value string
}

// Demo renders the showcase page of the bundled host.
type Demo struct {
	renderer *render.Renderer
}

// NewDemo creates the demo handler group.
func NewDemo(renderer *render.Renderer) *Demo {
	return &Demo{renderer: renderer}
}

// Index renders the layout, color and language pickers together with one
// flash message per category and a small form.
func (d *Demo) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	flashes := []render.Flash{
		{Category: "success", Message: "Bundles built and served from the generated tree."},
		{Category: "info", Message: "Use the pickers below to switch layout and color."},
		{Category: "warn", Message: "Preferences are only remembered when SECRET_KEY is set."},
	}
	if q != "" {
		flashes = append(flashes, render.Flash{Category: "primary", Message: "You searched for " + q})
	}

	d.renderer.Page(w, r, "index", &render.PageData{
		Title:   "Tabler",
		Flashes: flashes,
		Data: map[string]any{
			"colors": config.ThemeColors,
			"fields": []any{
				helpers.HiddenField{Name: "source", Value: "demo"},
				TextField{Name: "q", Label: "Search", Value: q},
			},
		},
	})
}
