// Package router sets up the HTTP routes and middleware chain of the
// Tabler host. Global middleware is installed by Base, before the Tabler
// extension adds its preference hook and route; the remaining routes are
// added by Mount.
package router

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzhttp"

	"tablerkit/internal/handlers"
	"tablerkit/internal/middleware"
)

// Base returns a router carrying the global middleware.
func Base() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	return r
}

// Mount registers the health check, the static tree below staticPrefix and
// the demo pages on r.
func Mount(r chi.Router, staticPrefix, staticDir string, demo *handlers.Demo) {
	r.Get("/health", healthHandler)

	staticPrefix = strings.TrimSuffix(staticPrefix, "/")
	r.Handle(staticPrefix+"/*", http.StripPrefix(staticPrefix, Static(staticDir)))

	if demo != nil {
		r.Get("/", gzhttp.GzipHandler(http.HandlerFunc(demo.Index)))
	}
}

// Static serves files below dir. When the client accepts gzip and a ".gz"
// sibling exists, the sibling is sent with Content-Encoding: gzip.
// Directory listings are disabled.
func Static(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}

		w.Header().Add("Vary", "Accept-Encoding")

		if acceptsGzip(r) && !strings.HasSuffix(name, ".gz") {
			gz := filepath.Join(dir, filepath.FromSlash(name)) + ".gz"
			if f, err := os.Open(gz); err == nil {
				defer f.Close()
				if info, err := f.Stat(); err == nil && info.Mode().IsRegular() {
					w.Header().Set("Content-Encoding", "gzip")
					http.ServeContent(w, r, name, info.ModTime(), f)
					return
				}
			}
		}

		files.ServeHTTP(w, r)
	})
}

func acceptsGzip(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		enc, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.TrimSpace(enc) != "gzip" {
			continue
		}
		return strings.ReplaceAll(strings.TrimSpace(params), " ", "") != "q=0"
	}
	return false
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
