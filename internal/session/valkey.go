// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces session keys in Valkey to avoid collisions.
const keyPrefix = "tabler:session:"

// ValkeyStore keeps session payloads in Valkey as JSON with a TTL.
type ValkeyStore struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewValkeyStore creates a session store backed by the given Valkey client.
// When secure is true, cookies are marked Secure (HTTPS-only).
func NewValkeyStore(client *redis.Client, secure bool) *ValkeyStore {
	return &ValkeyStore{
		client: client,
		ttl:    DefaultTTL,
		secure: secure,
	}
}

// Load implements Store.
func (s *ValkeyStore) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return newSession() // No cookie = new session (not an error)
	}

	payload, err := s.client.Get(ctx, keyPrefix+cookie.Value).Bytes()
	if errors.Is(err, redis.Nil) {
		return newSession() // Session expired or doesn't exist
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}

	return &Session{ID: cookie.Value, Data: data}, nil
}

// Save implements Store. The TTL is reset on every save.
func (s *ValkeyStore) Save(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	payload, err := json.Marshal(sess.Data)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+sess.ID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session store: %w", err)
	}

	setCookie(w, sess.ID, s.ttl, s.secure)
	sess.IsNew = false
	return nil
}

// Destroy removes the session from Valkey and clears the cookie.
func (s *ValkeyStore) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil // No cookie, nothing to destroy
	}

	if err := s.client.Del(ctx, keyPrefix+cookie.Value).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}

	// Expire the cookie immediately.
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	return nil
}
