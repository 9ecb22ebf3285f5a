package tabler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"

	"tablerkit/internal/config"
	"tablerkit/internal/middleware"
	"tablerkit/internal/plugins"
	"tablerkit/internal/session"
	"tablerkit/web"
)

// testTree returns a minimal Tabler source tree.
func testTree() fstest.MapFS {
	file := func(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }
	return fstest.MapFS{
		"js/jquery.min.js":      file("/*jquery*/"),
		"js/jquery.mark.min.js": file("/*mark*/"),
		"js/tabler.min.js":      file("/*tabler*/"),
		"js/website.js":         file("function  site ( ) {\n  return  1 ;\n}\n"),

		"css/tabler.min.css":          file(".tabler{}"),
		"css/tabler-flags.min.css":    file(".flags{}"),
		"css/tabler-props.min.css":    file(".props{}"),
		"css/tabler-themes.min.css":   file(".themes{}"),
		"css/tabler-socials.min.css":  file(".socials{}"),
		"css/tabler-vendors.min.css":  file(".vendors{}"),
		"css/tabler-payments.min.css": file(".payments{}"),
		"css/inter.css":               file("body {\n  font-family : Inter ;\n}\n"),
		"css/website.css":             file(".card {\n  margin : 0px ;\n}\n"),

		"plugins/autosize/autosize.min.js":                file("/*autosize*/"),
		"plugins/tomselect/tom-select.complete.min.js":    file("/*tomselect*/"),
		"plugins/tomselect/tom-select.bootstrap5.min.css": file(".ts{}"),
		"plugins/sweetalert2/sweetalert2.all.min.js":      file("/*swal*/"),
		"plugins/countup/countUp.umd.js":                  file("/*countup*/"),

		"img/logo.svg":       file("<svg/>"),
		"img/flags/cn.svg":   file("<svg id=cn/>"),
		"fonts/inter.woff2":  file("woff2"),
		"fonts/tabler.woff2": file("icons"),
	}
}

func testHost(t *testing.T, opts config.Map) *Host {
	t.Helper()
	return &Host{
		Config:    opts,
		Router:    chi.NewRouter(),
		StaticDir: t.TempDir(),
	}
}

func TestInit_FillsDefaults(t *testing.T) {
	h := testHost(t, config.Map{config.KeyLayout: "fluid"})
	if err := New(testTree()).Init(context.Background(), h); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if got := h.Config.String(config.KeyLayout); got != "fluid" {
		t.Errorf("host layout overwritten: got %q", got)
	}
	if got := h.Config.String(config.KeyBtnStyle); got != "primary" {
		t.Errorf("default btn style = %q, want primary", got)
	}
	if got := h.Config.Int(config.KeyIconSize); got != 24 {
		t.Errorf("default icon size = %d, want 24", got)
	}
}

func TestInit_PublishesPlugins(t *testing.T) {
	h := testHost(t, config.Map{config.KeyPlugins: []string{"countup"}})
	ext := New(testTree())
	if err := ext.Init(context.Background(), h); err != nil {
		t.Fatalf("Init: %v", err)
	}

	reg, ok := h.Config[config.KeyPluginsModules].(*plugins.Registry)
	if !ok {
		t.Fatalf("%s = %T, want *plugins.Registry", config.KeyPluginsModules, h.Config[config.KeyPluginsModules])
	}
	want := []string{"countup", "autosize", "tabler", "tomselect", "sweetalert2"}
	if got := reg.Names(); !slices.Equal(got, want) {
		t.Errorf("plugins = %v, want %v", got, want)
	}
	if p, _ := reg.Get(Name); p != ext {
		t.Error("the tabler plugin should be the extension itself")
	}
}

func TestInit_UnknownPlugin(t *testing.T) {
	h := testHost(t, config.Map{config.KeyPlugins: []string{"nope"}})
	err := New(testTree()).Init(context.Background(), h)
	if !errors.Is(err, plugins.ErrUnknownPlugin) {
		t.Fatalf("err = %v, want ErrUnknownPlugin", err)
	}
	if len(h.Router.Routes()) != 0 {
		t.Error("failed Init must not register routes")
	}
	if _, ok := h.Config[config.KeyBtnStyle]; ok {
		t.Error("failed Init must not modify the host config")
	}
}

func TestInit_Twice(t *testing.T) {
	h := testHost(t, nil)
	ext := New(testTree())
	if err := ext.Init(context.Background(), h); err != nil {
		t.Fatalf("Init: %v", err)
	}
	routes := len(h.Router.Routes())

	if err := ext.Init(context.Background(), h); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second Init err = %v, want ErrAlreadyInitialized", err)
	}
	if err := New(testTree()).Init(context.Background(), h); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second extension err = %v, want ErrAlreadyInitialized", err)
	}
	if got := len(h.Router.Routes()); got != routes {
		t.Errorf("routes = %d after second Init, want %d", got, routes)
	}
}

func TestInit_RequiresRouterAndStaticDir(t *testing.T) {
	if err := New(testTree()).Init(context.Background(), &Host{StaticDir: t.TempDir()}); err == nil {
		t.Error("expected error without router")
	}
	if err := New(testTree()).Init(context.Background(), &Host{Router: chi.NewRouter()}); err == nil {
		t.Error("expected error without static dir")
	}
}

func TestInit_WritesGeneratedTree(t *testing.T) {
	h := testHost(t, nil)
	ext := New(testTree())
	if err := ext.Init(context.Background(), h); err != nil {
		t.Fatalf("Init: %v", err)
	}

	gen := filepath.Join(h.StaticDir, "gen", "tabler")
	if ext.OutputDir() != gen {
		t.Errorf("OutputDir = %q, want %q", ext.OutputDir(), gen)
	}
	for _, rel := range []string{
		"js/packed.js", "js/packed.js.gz",
		"js/packed_others.js",
		"css/packed.css", "css/packed_others.css",
		"plugins/tomselect.js", "plugins/tomselect.css",
		"plugins/autosize.js", "plugins/sweetalert2.js",
		"img/logo.svg", "img/flags/cn.svg",
		"fonts/inter.woff2", "fonts/tabler.woff2",
	} {
		if _, err := os.Stat(filepath.Join(gen, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	packed, err := os.ReadFile(filepath.Join(gen, "js", "packed.js"))
	if err != nil {
		t.Fatal(err)
	}
	if string(packed) != "/*jquery*/\n/*mark*/\n/*tabler*/" {
		t.Errorf("packed.js = %q", packed)
	}

	others, err := os.ReadFile(filepath.Join(gen, "css", "packed_others.css"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(others), "\n") || strings.Contains(string(others), " : ") {
		t.Errorf("packed_others.css not minified: %q", others)
	}

	if got := ext.Copied(); got.Copied != 4 || got.Skipped != 0 {
		t.Errorf("Copied = %+v, want 4 copied", got)
	}
}

func TestInit_SecondHostSkipsIdenticalFiles(t *testing.T) {
	dir := t.TempDir()
	first := &Host{Router: chi.NewRouter(), StaticDir: dir}
	if err := New(testTree()).Init(context.Background(), first); err != nil {
		t.Fatalf("Init: %v", err)
	}

	second := &Host{Router: chi.NewRouter(), StaticDir: dir}
	ext := New(testTree())
	if err := ext.Init(context.Background(), second); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got := ext.Copied(); got.Copied != 0 || got.Skipped != 4 {
		t.Errorf("Copied = %+v, want 4 skipped", got)
	}
}

func TestURLs(t *testing.T) {
	h := testHost(t, nil)
	ext := New(testTree())
	if err := ext.Init(context.Background(), h); err != nil {
		t.Fatalf("Init: %v", err)
	}

	strip := func(urls []string) []string {
		out := make([]string, len(urls))
		for i, u := range urls {
			base, _, _ := strings.Cut(u, "?v=")
			out[i] = base
		}
		return out
	}

	wantCSS := []string{
		"/static/gen/tabler/css/packed.css",
		"/static/gen/tabler/css/packed_others.css",
		"/static/gen/tabler/plugins/tomselect.css",
	}
	if got := strip(ext.CSSURLs()); !slices.Equal(got, wantCSS) {
		t.Errorf("CSSURLs = %v, want %v", got, wantCSS)
	}

	wantJS := []string{
		"/static/gen/tabler/plugins/autosize.js",
		"/static/gen/tabler/js/packed.js",
		"/static/gen/tabler/js/packed_others.js",
		"/static/gen/tabler/plugins/tomselect.js",
		"/static/gen/tabler/plugins/sweetalert2.js",
	}
	if got := strip(ext.JSURLs()); !slices.Equal(got, wantJS) {
		t.Errorf("JSURLs = %v, want %v", got, wantJS)
	}

	for _, u := range ext.JSURLs() {
		if !strings.Contains(u, "?v=") {
			t.Errorf("%s has no fingerprint", u)
		}
	}
}

func TestURL_BeforeInit(t *testing.T) {
	ext := New(testTree())
	if _, err := ext.URL("css"); err == nil {
		t.Error("expected error before Init")
	}
	if ext.CSSURLs() != nil {
		t.Error("CSSURLs should be empty before Init")
	}
}

func TestInit_InstallsFuncs(t *testing.T) {
	h := testHost(t, nil)
	if err := New(testTree()).Init(context.Background(), h); err != nil {
		t.Fatalf("Init: %v", err)
	}

	for _, name := range []string{
		"_", "merge_dict", "raise", "warn", "is_hidden_field", "image_data",
		"get_flash_category", "get_flash_icon", "get_flash_icon_kw",
		"tabler_css", "tabler_js", "tabler_url", "tabler_option",
	} {
		if _, ok := h.Funcs[name]; !ok {
			t.Errorf("template helper %q not installed", name)
		}
	}

	option := h.Funcs["tabler_option"].(func(string) any)
	if got := option(config.KeyFormGroupClasses); got != "mb-3" {
		t.Errorf("tabler_option = %v, want mb-3", got)
	}
}

func TestPreferenceRoute(t *testing.T) {
	store, err := session.NewCookieStore("test-secret", false)
	if err != nil {
		t.Fatalf("NewCookieStore: %v", err)
	}
	h := testHost(t, config.Map{config.KeySecretKey: "test-secret"})
	h.Sessions = store
	if err := New(testTree()).Init(context.Background(), h); err != nil {
		t.Fatalf("Init: %v", err)
	}

	var seen *middleware.Prefs
	h.Router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.PrefsFromCtx(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/tabler?layout=Vertical&theme=dark&theme_color=Red", nil)
	req.Header.Set("Referer", "/dashboard")
	rr := httptest.NewRecorder()
	h.Router.ServeHTTP(rr, req)

	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", loc)
	}

	// The hook and the route both save, but only one cookie goes out.
	var cookies []*http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == session.CookieName {
			cookies = append(cookies, c)
		}
	}
	if len(cookies) != 1 {
		t.Fatalf("got %d session cookies, want 1", len(cookies))
	}
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	h.Router.ServeHTTP(httptest.NewRecorder(), next)

	if seen == nil {
		t.Fatal("preferences not resolved")
	}
	if seen.Layout != "vertical" || !seen.DarkMode || seen.ThemePrimary != "red" {
		t.Errorf("prefs = %+v", seen)
	}
}

func TestInit_EmbeddedTree(t *testing.T) {
	h := testHost(t, config.Map{config.KeyPlugins: []string{"countup"}})
	ext := New(web.Tabler())
	if err := ext.Init(context.Background(), h); err != nil {
		t.Fatalf("Init with the embedded tree: %v", err)
	}
	if ext.Copied().Copied == 0 {
		t.Error("expected images and fonts to be copied")
	}
}
