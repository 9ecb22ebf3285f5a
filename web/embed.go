// Package web embeds the Tabler source tree: vendored stylesheets and
// scripts, plugin files, images and fonts. The tree is bundled and copied
// into the generated static directory at startup.
package web

import (
	"embed"
	"io/fs"
)

// StaticFS embeds the web/static/ directory tree.
//
//go:embed all:static
var StaticFS embed.FS

// Tabler returns the tree rooted at static/tabler.
func Tabler() fs.FS {
	sub, err := fs.Sub(StaticFS, "static/tabler")
	if err != nil {
		// fs.Sub only fails on an invalid path, and this one is constant.
		panic(err)
	}
	return sub
}
