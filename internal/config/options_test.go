package config

import (
	"slices"
	"testing"
)

func TestDefaults(t *testing.T) {
	d := Defaults()

	if got := d.String(KeyLayout); got != "boxed" {
		t.Errorf("layout = %q, want boxed", got)
	}
	if got := d.Int(KeyIconSize); got != 24 {
		t.Errorf("icon size = %d, want 24", got)
	}
	if !d.Bool(KeyEnableThemeMode) {
		t.Error("theme mode should be enabled by default")
	}
	if d.Bool(KeyThemeDarkMode) {
		t.Error("dark mode should be off by default")
	}
	if got := d.LanguageCodes(); !slices.Equal(got, []string{"zh", "en"}) {
		t.Errorf("language codes = %v", got)
	}
	if got := d.Strings(KeyLayouts); len(got) != 14 {
		t.Errorf("layouts: got %d entries, want 14", len(got))
	}
	if _, ok := d[KeyThemeColor]; ok {
		t.Error("TABLER_THEME_COLOR has no default")
	}
}

func TestDefaults_FreshCopy(t *testing.T) {
	a := Defaults()
	layouts := a[KeyLayouts].([]string)
	layouts[0] = "mutated"

	b := Defaults()
	if b.Strings(KeyLayouts)[0] != "boxed" {
		t.Error("Defaults() should not share slices between calls")
	}
	if Layouts[0] != "boxed" {
		t.Error("package-level Layouts was mutated")
	}
}

func TestOverlay(t *testing.T) {
	base := Map{KeyLayout: "fluid", "CUSTOM": 1}
	overlay := Map{KeyLayout: "boxed", KeyBtnSize: "md"}

	got := Overlay(base, overlay)

	if got.String(KeyLayout) != "fluid" {
		t.Errorf("existing key overwritten: %q", got.String(KeyLayout))
	}
	if got.String(KeyBtnSize) != "md" {
		t.Errorf("missing key not filled: %q", got.String(KeyBtnSize))
	}
	if got.Int("CUSTOM") != 1 {
		t.Error("unrelated base key lost")
	}
	if _, ok := base[KeyBtnSize]; ok {
		t.Error("Overlay modified its base argument")
	}

	// Applying the overlay twice changes nothing.
	again := Overlay(got, overlay)
	if len(again) != len(got) || again.String(KeyLayout) != "fluid" {
		t.Error("Overlay is not idempotent")
	}
}

func TestOverlay_NilBase(t *testing.T) {
	got := Overlay(nil, Map{KeyBtnStyle: "primary"})
	if got.String(KeyBtnStyle) != "primary" {
		t.Errorf("got %v", got)
	}
}

func TestMapAccessors(t *testing.T) {
	m := Map{
		"s":     "text",
		"b":     true,
		"i64":   int64(7),
		"f":     float64(3),
		"anys":  []any{"a", 1, "b"},
		"wrong": 42,
	}

	if m.String("wrong") != "" {
		t.Error("String on int should be empty")
	}
	if m.Bool("s") {
		t.Error("Bool on string should be false")
	}
	if m.Int("i64") != 7 || m.Int("f") != 3 || m.Int("missing") != 0 {
		t.Error("Int conversions wrong")
	}
	if got := m.Strings("anys"); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Strings([]any) = %v", got)
	}
	if m.Strings("missing") != nil {
		t.Error("Strings on missing key should be nil")
	}
	if m.Languages() != nil {
		t.Error("Languages on empty map should be nil")
	}
}
