// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"
)

// hkdfInfo binds derived keys to this use.
const hkdfInfo = "tabler session cookie v1"

// ErrNoSecret is returned when a cookie store is created without a key.
var ErrNoSecret = errors.New("session: secret key is empty")

// errBadSignature marks a cookie whose MAC does not verify.
var errBadSignature = errors.New("session: bad cookie signature")

// cookiePayload is what travels inside the signed cookie.
type cookiePayload struct {
	ID      string    `json:"id"`
	Data    Data      `json:"data"`
	Expires time.Time `json:"exp"`
}

// CookieStore keeps the whole session in an HMAC-signed cookie.
type CookieStore struct {
	key    []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewCookieStore derives a signing key from secret and returns the store.
func NewCookieStore(secret string, secure bool) (*CookieStore, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	key := make([]byte, sha256.Size)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("session derive key: %w", err)
	}

	return &CookieStore{
		key:    key,
		ttl:    DefaultTTL,
		secure: secure,
		now:    time.Now,
	}, nil
}

// Load implements Store. Tampered, malformed or expired cookies yield a new
// session rather than an error.
func (s *CookieStore) Load(_ context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return newSession()
	}

	payload, err := s.decode(cookie.Value)
	if err != nil {
		slog.Debug("discarding session cookie", "error", err)
		return newSession()
	}
	if s.now().After(payload.Expires) {
		return newSession()
	}

	return &Session{ID: payload.ID, Data: payload.Data}, nil
}

// Save implements Store.
func (s *CookieStore) Save(_ context.Context, w http.ResponseWriter, sess *Session) error {
	value, err := s.encode(cookiePayload{
		ID:      sess.ID,
		Data:    sess.Data,
		Expires: s.now().Add(s.ttl),
	})
	if err != nil {
		return err
	}

	setCookie(w, value, s.ttl, s.secure)
	sess.IsNew = false
	return nil
}

// encode serialises p as base64(json) "." base64(mac).
func (s *CookieStore) encode(p cookiePayload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}
	body := base64.RawURLEncoding.EncodeToString(raw)
	return body + "." + base64.RawURLEncoding.EncodeToString(s.sign(body)), nil
}

func (s *CookieStore) decode(value string) (cookiePayload, error) {
	var p cookiePayload

	body, sig, ok := strings.Cut(value, ".")
	if !ok {
		return p, errBadSignature
	}
	mac, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(mac, s.sign(body)) {
		return p, errBadSignature
	}

	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return p, fmt.Errorf("session decode: %w", err)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("session unmarshal: %w", err)
	}
	return p, nil
}

func (s *CookieStore) sign(body string) []byte {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(body))
	return h.Sum(nil)
}
