// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(context.Background(), host, port, os.Getenv("VALKEY_PASSWORD"), 15)
	if err != nil {
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}
	defer client.Close()

	if got := client.Options().DB; got != 15 {
		t.Errorf("DB = %d, want 15", got)
	}
}

func TestConnectValkey_Unreachable(t *testing.T) {
	// Port 1 is reserved and never runs a Valkey server.
	client, err := ConnectValkey(context.Background(), "127.0.0.1", "1", "", 15)
	if err == nil {
		client.Close()
		t.Fatal("expected error for an unreachable server")
	}
	if client != nil {
		t.Error("client should be nil on error")
	}
}

func TestConnectValkey_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ConnectValkey(ctx, "127.0.0.1", "6379", "", 15); err == nil {
		t.Error("expected error with a cancelled context")
	}
}
