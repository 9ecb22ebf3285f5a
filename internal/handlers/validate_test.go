package handlers

import (
	"strings"
	"testing"

	"tablerkit/internal/config"
)

func TestValidateLayout(t *testing.T) {
	opts := config.Defaults()

	tests := []struct {
		name      string
		layout    string
		wantError bool
	}{
		{"boxed", "boxed", false},
		{"vertical-right", "vertical-right", false},
		{"unknown", "sideways", true},
		{"too long", strings.Repeat("a", maxPrefLen+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateLayout(opts, tt.layout)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateLayout_CustomList(t *testing.T) {
	opts := config.Map{config.KeyLayouts: []any{"boxed", "own"}}
	if msg := validateLayout(opts, "own"); msg != "" {
		t.Errorf("custom layout rejected: %s", msg)
	}
	if msg := validateLayout(opts, "fluid"); msg == "" {
		t.Error("layout outside the configured list accepted")
	}
}

func TestValidateThemeColor(t *testing.T) {
	tests := []struct {
		color     string
		wantError bool
	}{
		{"blue", false},
		{"teal", false},
		{"chartreuse", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			result := validateThemeColor(tt.color)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateLang(t *testing.T) {
	opts := config.Defaults()

	if msg := validateLang(opts, "en"); msg != "" {
		t.Errorf("en rejected: %s", msg)
	}
	if msg := validateLang(opts, "fr"); msg == "" {
		t.Error("fr accepted without being configured")
	}
}
