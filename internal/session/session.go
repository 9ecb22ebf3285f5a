// Package session provides HTTP session storage for UI preferences. Two
// backends exist: a Valkey store keyed by a random cookie ID, and a signed
// cookie store that keeps the payload in the browser.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "tabler_session"

	// DefaultTTL is how long a session lives before automatic expiry.
	DefaultTTL = 30 * 24 * time.Hour

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// Data holds the preference values stored in a session. Empty strings and a
// nil DarkMode mean "not set".
type Data struct {
	DarkMode   *bool     `json:"dark_mode,omitempty"`
	PageLayout string    `json:"page_layout,omitempty"`
	ThemeColor string    `json:"theme_color,omitempty"`
	PageLang   string    `json:"page_lang,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Session is the per-request view of a stored session.
type Session struct {
	ID    string
	Data  Data
	IsNew bool
}

// Store loads and persists sessions.
type Store interface {
	// Load returns the session referenced by the request, or a fresh empty
	// session when there is none or it can no longer be read.
	Load(ctx context.Context, r *http.Request) (*Session, error)

	// Save persists s and (re)sets the session cookie on w.
	Save(ctx context.Context, w http.ResponseWriter, s *Session) error
}

// newSession returns an empty session with a fresh random ID.
func newSession() (*Session, error) {
	id, err := generateID()
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:    id,
		Data:  Data{CreatedAt: time.Now()},
		IsNew: true,
	}, nil
}

// setCookie writes the session cookie with the shared attributes. A session
// cookie set earlier on the same response is replaced.
func setCookie(w http.ResponseWriter, value string, ttl time.Duration, secure bool) {
	dropCookie(w.Header(), CookieName)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

func dropCookie(h http.Header, name string) {
	prefix := name + "="
	values := h.Values("Set-Cookie")
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(values) {
		return
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
