package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"tablerkit/internal/cache"
	"tablerkit/internal/config"
	"tablerkit/internal/handlers"
	"tablerkit/internal/render"
	"tablerkit/internal/router"
	"tablerkit/internal/session"
	"tablerkit/internal/tabler"
	"tablerkit/web"
)

// app is the assembled demo host.
type app struct {
	cfg     *config.Config
	ext     *tabler.Extension
	host    *tabler.Host
	handler http.Handler
	valkey  *redis.Client
}

// newSessionStore picks the session backend configured by SESSION_BACKEND.
// Without a SECRET_KEY no store is created and preferences are not
// remembered.
func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, *redis.Client, error) {
	if cfg.SecretKey == "" {
		slog.Warn("SECRET_KEY not set, UI preferences will not be remembered")
		return nil, nil, nil
	}

	secure := !cfg.IsDev()
	switch cfg.SessionBackend {
	case "valkey":
		client, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, 0)
		if err != nil {
			return nil, nil, err
		}
		return session.NewValkeyStore(client, secure), client, nil
	default:
		store, err := session.NewCookieStore(cfg.SecretKey, secure)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
}

// build wires the router, the Tabler extension, the renderer and the demo
// pages. withRoutes false only builds the generated tree.
func build(ctx context.Context, cfg *config.Config, withRoutes bool) (*app, error) {
	a := &app{cfg: cfg, ext: tabler.New(web.Tabler())}

	var store session.Store
	if withRoutes {
		var err error
		store, a.valkey, err = newSessionStore(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
	}

	r := router.Base()
	a.host = &tabler.Host{
		Config:    cfg.Tabler,
		Router:    r,
		StaticDir: cfg.StaticDir,
		Sessions:  store,
		Funcs:     template.FuncMap{},
	}
	if err := a.ext.Init(ctx, a.host); err != nil {
		a.close()
		return nil, err
	}

	if withRoutes {
		renderer, err := render.New(a.host.Funcs, a.host.Config)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("template renderer: %w", err)
		}
		router.Mount(r, tabler.DefaultStaticPrefix, cfg.StaticDir, handlers.NewDemo(renderer))
	}

	a.handler = r
	return a, nil
}

func (a *app) close() {
	if a.valkey == nil {
		return
	}
	if err := a.valkey.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		slog.Warn("valkey close failed", "error", err)
	}
	a.valkey = nil
}
