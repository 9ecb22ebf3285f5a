// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"

	"tablerkit/internal/config"
	"tablerkit/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// PrefsKey is the context key for the resolved *Prefs.
	PrefsKey contextKey = "tabler_prefs"

	// SessionKey is the context key for the loaded *session.Session.
	SessionKey contextKey = "tabler_session"

	requestIDKey contextKey = "request_id"
)

// Fallbacks used when neither the session nor the options define a value.
const (
	FallbackThemeColor = "blue"
	FallbackLayout     = "boxed"
	FallbackLanguage   = "zh"
)

// Prefs are the UI preferences resolved for one request.
type Prefs struct {
	ThemePrimary string
	Layout       string
	DarkMode     bool
	Lang         string

	start time.Time // zero unless request timing is enabled
}

// RequestTime returns the milliseconds elapsed since the request started,
// formatted with three decimals, or "" when timing is disabled.
func (p *Prefs) RequestTime() string {
	if p == nil || p.start.IsZero() {
		return ""
	}
	return fmt.Sprintf("%.3f", float64(time.Since(p.start).Microseconds())/1000)
}

// PrefsFromCtx returns the preferences stored by Preferences, or nil.
func PrefsFromCtx(ctx context.Context) *Prefs {
	p, _ := ctx.Value(PrefsKey).(*Prefs)
	return p
}

// SessionFromCtx returns the session loaded by Preferences, or nil when
// sessions are inactive.
func SessionFromCtx(ctx context.Context) *session.Session {
	s, _ := ctx.Value(SessionKey).(*session.Session)
	return s
}

// Preferences resolves theme color, layout, dark mode and language for every
// request outside staticPrefix and publishes them in the request context.
// Each value comes from the session when one is active, then from opts,
// then from the fallbacks. Sessions are only used when opts carries a
// SECRET_KEY and store is not nil.
func Preferences(opts config.Map, store session.Store, staticPrefix string) func(http.Handler) http.Handler {
	useSession := store != nil && opts.String(config.KeySecretKey) != ""

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if staticPrefix != "" && strings.HasPrefix(r.URL.Path, staticPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			prefs := &Prefs{}
			if opts.Bool(config.KeyShowRequestTime) {
				prefs.start = time.Now()
			}

			color := opts.String(config.KeyThemeColor)
			layout := opts.String(config.KeyLayout)
			dark := opts.Bool(config.KeyThemeDarkMode)

			ctx := r.Context()
			var sess *session.Session
			if useSession {
				var err error
				sess, err = store.Load(ctx, r)
				if err != nil {
					// Serve with configured defaults rather than failing the request.
					slog.Warn("session load failed", "error", err, "path", r.URL.Path)
					sess = nil
				}
			}

			if sess != nil {
				if sess.Data.ThemeColor != "" {
					color = sess.Data.ThemeColor
				}
				if sess.Data.PageLayout != "" {
					layout = sess.Data.PageLayout
				}
				if sess.Data.DarkMode != nil {
					dark = *sess.Data.DarkMode
				}
				if sess.Data.PageLang == "" {
					sess.Data.PageLang = DetectLanguage(opts, r)
					if err := store.Save(ctx, w, sess); err != nil {
						slog.Warn("session save failed", "error", err)
					}
				}
				prefs.Lang = sess.Data.PageLang
				ctx = context.WithValue(ctx, SessionKey, sess)
			} else {
				prefs.Lang = DetectLanguage(opts, r)
			}

			prefs.ThemePrimary = strings.ToLower(orDefault(color, FallbackThemeColor))
			prefs.Layout = strings.ToLower(orDefault(layout, FallbackLayout))
			prefs.DarkMode = opts.Bool(config.KeyEnableThemeMode) && dark

			ctx = context.WithValue(ctx, PrefsKey, prefs)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DetectLanguage returns TABLER_LANGUAGE when set. Otherwise it matches
// Accept-Language against the codes of TABLER_LANGUAGES, or takes the
// primary subtag of the preferred entry when no languages are configured.
// Wildcards, unmatched tags and unreadable headers yield "zh".
func DetectLanguage(opts config.Map, r *http.Request) string {
	if lang := opts.String(config.KeyLanguage); lang != "" {
		return lang
	}

	parsed, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil {
		return FallbackLanguage
	}
	var tags []language.Tag
	for _, tag := range parsed {
		if base, _ := tag.Base(); base != wildcard && base != undetermined {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return FallbackLanguage
	}

	var (
		offered []language.Tag
		codes   []string
	)
	for _, code := range opts.LanguageCodes() {
		if tag, err := language.Parse(code); err == nil {
			offered = append(offered, tag)
			codes = append(codes, code)
		}
	}
	if len(offered) > 0 {
		_, idx, conf := language.NewMatcher(offered).Match(tags...)
		if conf == language.No {
			return FallbackLanguage
		}
		return codes[idx]
	}

	base, conf := tags[0].Base()
	if conf == language.No {
		return FallbackLanguage
	}
	return base.String()
}

var (
	wildcard     = language.MustParseBase("mul")
	undetermined = language.MustParseBase("und")
)

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
