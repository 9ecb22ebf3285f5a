// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package plugins resolves the vendor plugins (tom-select, sweetalert2, ...)
// that ship alongside Tabler. Plugins are looked up by name in a factory
// table filled at program initialisation, so the set of loadable plugins is
// known at compile time.
package plugins

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"tablerkit/internal/assets"
	"tablerkit/internal/config"
)

// ErrUnknownPlugin is returned when a configured name has no factory.
var ErrUnknownPlugin = errors.New("unknown plugin")

// Plugin is one asset-contributing extension.
type Plugin interface {
	// Name returns the identifier used in TABLER_PLUGINS.
	Name() string

	// Bundles returns the asset bundles this plugin contributes.
	Bundles() []assets.Bundle
}

// Factory constructs a plugin against the host option map.
type Factory func(opts config.Map) (Plugin, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a plugin factory available by name. It panics when called
// twice for the same name or with a nil factory.
func Register(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if f == nil {
		panic("plugins: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("plugins: Register called twice for " + name)
	}
	factories[name] = f
}

// Available returns the sorted names of all registered factories.
func Available() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

// Order returns the load order for the user-configured plugin names: the
// user list followed by tomselect and sweetalert2, with tabler and then
// autosize placed in front. countup, when present, is moved to the very
// front. Repeated names keep their first position.
func Order(user []string) []string {
	names := slices.Clone(user)
	names = append(names, "tomselect", "sweetalert2")
	names = slices.Insert(names, 0, "tabler")
	names = slices.Insert(names, 0, "autosize")

	if i := slices.Index(names, "countup"); i >= 0 {
		names = slices.Delete(names, i, i+1)
		names = slices.Insert(names, 0, "countup")
	}

	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Registry is an insertion-ordered set of instantiated plugins.
type Registry struct {
	order   []string
	plugins map[string]Plugin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Add stores p unless a plugin with the same name is already present.
func (r *Registry) Add(p Plugin) bool {
	if _, ok := r.plugins[p.Name()]; ok {
		return false
	}
	r.order = append(r.order, p.Name())
	r.plugins[p.Name()] = p
	return true
}

// Get returns the plugin registered under name.
func (r *Registry) Get(name string) (Plugin, bool) {
	p, ok := r.plugins[name]
	return p, ok
}

// Names returns plugin names in load order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// All returns the plugins in load order.
func (r *Registry) All() []Plugin {
	out := make([]Plugin, len(r.order))
	for i, name := range r.order {
		out[i] = r.plugins[name]
	}
	return out
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int { return len(r.order) }

// Load instantiates every name in order. Plugins in preset are used as-is
// instead of being looked up; any other name must have a registered
// factory. Loading stops at the first failure.
func Load(names []string, opts config.Map, preset map[string]Plugin) (*Registry, error) {
	reg := NewRegistry()
	for _, name := range names {
		if _, ok := reg.Get(name); ok {
			continue
		}
		if p, ok := preset[name]; ok {
			reg.Add(p)
			continue
		}

		f, ok := lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, name)
		}
		p, err := f(opts)
		if err != nil {
			return nil, fmt.Errorf("plugin %s: %w", name, err)
		}
		reg.Add(p)
	}
	return reg, nil
}
