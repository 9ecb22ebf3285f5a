// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tabler integrates the Tabler UI toolkit into a chi application.
// Init fills the TABLER_* defaults, resolves plugins, builds the asset
// bundles, copies fonts and images into the generated static tree, and
// installs the template helpers, the preference middleware and the
// /tabler preference route.
package tabler

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"tablerkit/internal/assets"
	"tablerkit/internal/config"
	"tablerkit/internal/fsync"
	"tablerkit/internal/handlers"
	"tablerkit/internal/helpers"
	"tablerkit/internal/middleware"
	"tablerkit/internal/plugins"
	"tablerkit/internal/session"
)

// Name is the plugin name under which the extension registers itself.
const Name = "tabler"

const (
	// RoutePath is the preference switch route.
	RoutePath = "/tabler"

	// DefaultStaticPrefix is the URL prefix used when Host.StaticPrefix is empty.
	DefaultStaticPrefix = "/static"

	// GenDir is the generated tree, relative to the static directory.
	GenDir = "gen/tabler"
)

// Folders copied verbatim into the generated tree.
var copiedFolders = []string{"img", "fonts"}

// ErrAlreadyInitialized is returned by a second Init on the same Host.
var ErrAlreadyInitialized = errors.New("tabler: host already initialized")

// Host is the application the extension attaches to.
type Host struct {
	Config       config.Map       // host options; defaults are filled in by Init
	Router       chi.Router       // Init must run before any route is registered
	StaticDir    string           // directory served below StaticPrefix
	StaticPrefix string           // defaults to DefaultStaticPrefix
	Sessions     session.Store    // optional preference storage
	Funcs        template.FuncMap // receives the template helpers

	initialized bool
}

// Extension is the Tabler integration. It is also the "tabler" plugin,
// contributing the core bundles.
type Extension struct {
	src fs.FS

	opts    config.Map
	plugins *plugins.Registry
	bundler *assets.Bundler
	outDir  string
	copied  fsync.Stats
}

// New creates an extension reading the Tabler tree (css, js, img, fonts,
// plugins) from src.
func New(src fs.FS) *Extension {
	return &Extension{src: src}
}

// Name implements plugins.Plugin.
func (e *Extension) Name() string { return Name }

// Bundles implements plugins.Plugin.
func (e *Extension) Bundles() []assets.Bundle {
	return []assets.Bundle{
		assets.JS("js", "js/packed.js", []string{
			"js/jquery.min.js",
			"js/jquery.mark.min.js",
			"js/tabler.min.js",
		}),
		assets.JS("other_js", "js/packed_others.js", []string{
			"js/website.js",
		}, assets.FilterJSMin),
		assets.CSS("css", "css/packed.css", []string{
			"css/tabler.min.css",
			"css/tabler-flags.min.css",
			"css/tabler-props.min.css",
			"css/tabler-themes.min.css",
			"css/tabler-socials.min.css",
			"css/tabler-vendors.min.css",
			"css/tabler-payments.min.css",
		}),
		assets.CSS("other_css", "css/packed_others.css", []string{
			"css/inter.css",
			"css/website.css",
		}, assets.FilterCSSMin),
	}
}

// Init attaches the extension to h. The generated tree is written before
// anything is registered, so a failing Init leaves h untouched.
func (e *Extension) Init(ctx context.Context, h *Host) error {
	if h.initialized {
		return ErrAlreadyInitialized
	}
	if h.Router == nil {
		return errors.New("tabler: host has no router")
	}
	if h.StaticDir == "" {
		return errors.New("tabler: host has no static directory")
	}
	prefix := h.StaticPrefix
	if prefix == "" {
		prefix = DefaultStaticPrefix
	}

	opts := config.Overlay(h.Config, config.Defaults())

	names := plugins.Order(opts.Strings(config.KeyPlugins))
	reg, err := plugins.Load(names, opts, map[string]plugins.Plugin{Name: e})
	if err != nil {
		return fmt.Errorf("load plugins: %w", err)
	}
	opts[config.KeyPluginsModules] = reg

	outDir := filepath.Join(h.StaticDir, filepath.FromSlash(GenDir))
	bundler := assets.NewBundler(e.src, outDir, path.Join(prefix, GenDir))
	for _, p := range reg.All() {
		for _, b := range p.Bundles() {
			if err := bundler.Add(b); err != nil {
				return fmt.Errorf("plugin %s: %w", p.Name(), err)
			}
		}
	}
	if err := bundler.Build(ctx); err != nil {
		return fmt.Errorf("build bundles: %w", err)
	}

	var copied fsync.Stats
	for _, folder := range copiedFolders {
		stats, err := fsync.Folder(ctx, e.src, folder, filepath.Join(outDir, folder))
		if err != nil {
			return fmt.Errorf("copy %s: %w", folder, err)
		}
		copied.Copied += stats.Copied
		copied.Skipped += stats.Skipped
	}

	e.opts = opts
	e.plugins = reg
	e.bundler = bundler
	e.outDir = outDir
	e.copied = copied

	if h.Funcs == nil {
		h.Funcs = template.FuncMap{}
	}
	for name, fn := range e.funcs() {
		h.Funcs[name] = fn
	}

	h.Router.Use(middleware.Preferences(opts, h.Sessions, prefix))
	h.Router.Get(RoutePath, handlers.NewPrefs(opts, h.Sessions).Switch)

	h.Config = opts
	h.initialized = true

	slog.Info("tabler initialized",
		"plugins", reg.Names(),
		"bundles", len(bundler.Bundles()),
		"files_copied", copied.Copied,
		"files_skipped", copied.Skipped,
	)
	return nil
}

// Plugins returns the resolved plugin registry, or nil before Init.
func (e *Extension) Plugins() *plugins.Registry { return e.plugins }

// OutputDir returns the generated tree on disk, or "" before Init.
func (e *Extension) OutputDir() string { return e.outDir }

// Copied returns the folder sync counters of the last Init.
func (e *Extension) Copied() fsync.Stats { return e.copied }

// URL returns the fingerprinted URL of the bundle declared under key.
func (e *Extension) URL(key string) (string, error) {
	if e.bundler == nil {
		return "", fmt.Errorf("%w: %q", assets.ErrUnknownBundle, key)
	}
	return e.bundler.URL(key)
}

// CSSURLs returns the stylesheet URLs in plugin order.
func (e *Extension) CSSURLs() []string { return e.urls(assets.KindCSS) }

// JSURLs returns the script URLs in plugin order.
func (e *Extension) JSURLs() []string { return e.urls(assets.KindJS) }

func (e *Extension) urls(kind string) []string {
	if e.bundler == nil {
		return nil
	}
	var out []string
	for _, b := range e.bundler.Bundles() {
		if b.Kind != kind {
			continue
		}
		u, err := e.bundler.URL(b.Key)
		if err != nil {
			continue
		}
		out = append(out, u)
	}
	return out
}

// funcs returns the template helpers installed on the host.
func (e *Extension) funcs() template.FuncMap {
	funcs := helpers.FuncMap()
	funcs["tabler_css"] = e.CSSURLs
	funcs["tabler_js"] = e.JSURLs
	funcs["tabler_url"] = e.URL
	funcs["tabler_option"] = func(key string) any { return e.opts[key] }
	return funcs
}
