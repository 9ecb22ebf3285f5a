// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package assets declares and builds static asset bundles. A bundle is an
// ordered list of source files concatenated, optionally minified, and
// written to one output file next to a gzip-compressed sibling.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

// Filter names accepted in Bundle.Filters.
const (
	FilterJSMin  = "jsmin"
	FilterCSSMin = "cssmin"
)

// Bundle kinds, used by templates to pick script or link tags.
const (
	KindJS  = "js"
	KindCSS = "css"
)

// ErrUnknownBundle is returned by lookups for an undeclared key.
var ErrUnknownBundle = errors.New("unknown bundle")

// filterTypes maps a filter name to the media type the minifier handles.
var filterTypes = map[string]string{
	FilterJSMin:  "application/javascript",
	FilterCSSMin: "text/css",
}

// Bundle describes one output file built from several sources.
type Bundle struct {
	Key     string   // lookup name used by templates, e.g. "css"
	Kind    string   // KindJS or KindCSS
	Sources []string // slash paths inside the source FS, in load order
	Filters []string // applied in order after concatenation
	Output  string   // slash path below the output directory
}

// JS declares a script bundle.
func JS(key, output string, sources []string, filters ...string) Bundle {
	return Bundle{Key: key, Kind: KindJS, Sources: sources, Filters: filters, Output: output}
}

// CSS declares a stylesheet bundle.
func CSS(key, output string, sources []string, filters ...string) Bundle {
	return Bundle{Key: key, Kind: KindCSS, Sources: sources, Filters: filters, Output: output}
}

// Bundler holds the declared bundles and the fingerprints of the last build.
// Declarations happen at startup; Build and URL are safe to call afterwards
// from a single goroutine.
type Bundler struct {
	src       fs.FS
	outDir    string
	urlPrefix string
	minifier  *minify.M

	bundles []Bundle
	index   map[string]int
	sums    map[string]uint64
}

// NewBundler creates a Bundler reading sources from src, writing into outDir
// and serving outputs below urlPrefix (for example "/static/gen/tabler").
func NewBundler(src fs.FS, outDir, urlPrefix string) *Bundler {
	m := minify.New()
	m.AddFunc(filterTypes[FilterCSSMin], css.Minify)
	m.AddFunc(filterTypes[FilterJSMin], js.Minify)

	return &Bundler{
		src:       src,
		outDir:    outDir,
		urlPrefix: urlPrefix,
		minifier:  m,
		index:     make(map[string]int),
		sums:      make(map[string]uint64),
	}
}

// Add declares a bundle. Keys must be unique and filters known.
func (b *Bundler) Add(bundle Bundle) error {
	if bundle.Key == "" || bundle.Output == "" {
		return fmt.Errorf("bundle needs a key and an output path")
	}
	if _, ok := b.index[bundle.Key]; ok {
		return fmt.Errorf("bundle %q already declared", bundle.Key)
	}
	if len(bundle.Sources) == 0 {
		return fmt.Errorf("bundle %q has no sources", bundle.Key)
	}
	for _, f := range bundle.Filters {
		if _, ok := filterTypes[f]; !ok {
			return fmt.Errorf("bundle %q: unknown filter %q", bundle.Key, f)
		}
	}
	b.index[bundle.Key] = len(b.bundles)
	b.bundles = append(b.bundles, bundle)
	return nil
}

// Bundles returns the declared bundles in declaration order.
func (b *Bundler) Bundles() []Bundle {
	out := make([]Bundle, len(b.bundles))
	copy(out, b.bundles)
	return out
}

// Get returns the bundle declared under key.
func (b *Bundler) Get(key string) (Bundle, bool) {
	i, ok := b.index[key]
	if !ok {
		return Bundle{}, false
	}
	return b.bundles[i], true
}

// Build renders every bundle to disk. Outputs that already hold exactly the
// rendered bytes are not rewritten.
func (b *Bundler) Build(ctx context.Context) error {
	for _, bundle := range b.bundles {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := b.render(bundle)
		if err != nil {
			return err
		}
		sum := xxhash.Sum64(data)

		dst := filepath.Join(b.outDir, filepath.FromSlash(bundle.Output))
		written, err := writeIfChanged(dst, data)
		if err != nil {
			return fmt.Errorf("bundle %q: %w", bundle.Key, err)
		}
		if written {
			if err := writeGzip(dst+".gz", data); err != nil {
				return fmt.Errorf("bundle %q: %w", bundle.Key, err)
			}
		}

		b.sums[bundle.Key] = sum
		slog.Debug("bundle built",
			"key", bundle.Key,
			"output", bundle.Output,
			"bytes", len(data),
			"written", written,
		)
	}
	return nil
}

// render concatenates the sources of bundle and runs its filters.
func (b *Bundler) render(bundle Bundle) ([]byte, error) {
	var buf bytes.Buffer
	for i, name := range bundle.Sources {
		data, err := fs.ReadFile(b.src, name)
		if err != nil {
			return nil, fmt.Errorf("bundle %q: read %s: %w", bundle.Key, name, err)
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(data)
	}

	out := buf.Bytes()
	for _, f := range bundle.Filters {
		minified, err := b.minifier.Bytes(filterTypes[f], out)
		if err != nil {
			return nil, fmt.Errorf("bundle %q: %s: %w", bundle.Key, f, err)
		}
		out = minified
	}
	return out, nil
}

// URL returns the public URL of a built bundle with its content fingerprint
// as the cache-busting query string.
func (b *Bundler) URL(key string) (string, error) {
	bundle, ok := b.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBundle, key)
	}
	u := path.Join(b.urlPrefix, bundle.Output)
	if sum, ok := b.sums[key]; ok {
		u += "?v=" + strconv.FormatUint(sum, 16)
	}
	return u, nil
}

// writeIfChanged writes data to dst unless dst already holds it.
func writeIfChanged(dst string, data []byte) (bool, error) {
	if existing, err := os.ReadFile(dst); err == nil && bytes.Equal(existing, data) {
		if _, err := os.Stat(dst + ".gz"); err == nil {
			return false, nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", dst, err)
	}
	return true, nil
}

// writeGzip writes a best-compression gzip copy of data to dst.
func writeGzip(dst string, data []byte) error {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return err
	}
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("gzip %s: %w", dst, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("gzip %s: %w", dst, err)
	}
	if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}
