// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the Tabler integration:
// the preference switch route and the demo pages of the bundled host.
package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"tablerkit/internal/config"
	"tablerkit/internal/middleware"
	"tablerkit/internal/session"
)

// Prefs handles the preference switch route.
type Prefs struct {
	opts  config.Map
	store session.Store
}

// NewPrefs creates the preference handler. store may be nil, in which case
// the route only redirects.
func NewPrefs(opts config.Map, store session.Store) *Prefs {
	return &Prefs{opts: opts, store: store}
}

// Switch stores the theme, layout, theme_color and lang query parameters in
// the session loaded by middleware.Preferences, then redirects back to the
// referring page. Invalid values are skipped.
func (p *Prefs) Switch(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && p.apply(sess, r.URL.Query()) {
		if err := p.store.Save(r.Context(), w, sess); err != nil {
			slog.Error("save preferences failed", "error", err)
		}
	}

	http.Redirect(w, r, backTarget(r), http.StatusFound)
}

// apply copies the recognized query values into sess and reports whether
// anything changed.
func (p *Prefs) apply(sess *session.Session, q url.Values) bool {
	changed := false

	if theme := q.Get("theme"); theme != "" {
		dark := strings.ToLower(theme) == "dark"
		sess.Data.DarkMode = &dark
		changed = true
	}

	if layout := strings.ToLower(q.Get("layout")); layout != "" {
		if msg := validateLayout(p.opts, layout); msg != "" {
			slog.Warn("preference ignored", "field", "layout", "reason", msg)
		} else {
			sess.Data.PageLayout = layout
			changed = true
		}
	}

	if color := strings.ToLower(q.Get("theme_color")); color != "" {
		if msg := validateThemeColor(color); msg != "" {
			slog.Warn("preference ignored", "field", "theme_color", "reason", msg)
		} else {
			sess.Data.ThemeColor = color
			changed = true
		}
	}

	if lang := strings.ToLower(q.Get("lang")); lang != "" {
		if msg := validateLang(p.opts, lang); msg != "" {
			slog.Warn("preference ignored", "field", "lang", "reason", msg)
		} else {
			sess.Data.PageLang = lang
			changed = true
		}
	}

	return changed
}

// backTarget returns the Referer when it points at this host, else "/".
func backTarget(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "/"
	}
	if u.Host != "" && u.Host != r.Host {
		return "/"
	}
	if u.Host == "" && !isLocalPath(ref) {
		return "/"
	}
	return ref
}

// isLocalPath reports whether p is an absolute path on this host. Browsers
// read "//" and "/\" as the start of a network path.
func isLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") {
		return false
	}
	return len(p) == 1 || (p[1] != '/' && p[1] != '\\')
}
