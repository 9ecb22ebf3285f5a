package handlers

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"tablerkit/internal/config"
)

// maxPrefLen bounds every preference value accepted from the query string.
const maxPrefLen = 32

// validateLayout checks a lower-cased layout name against TABLER_LAYOUTS.
func validateLayout(opts config.Map, layout string) string {
	if msg := validateLength("layout", layout); msg != "" {
		return msg
	}
	if !slices.Contains(opts.Strings(config.KeyLayouts), layout) {
		return fmt.Sprintf("Unknown layout %q.", layout)
	}
	return ""
}

// validateThemeColor checks a lower-cased color against the Tabler palette.
func validateThemeColor(color string) string {
	if msg := validateLength("theme color", color); msg != "" {
		return msg
	}
	if !slices.Contains(config.ThemeColors, color) {
		return fmt.Sprintf("Unknown theme color %q.", color)
	}
	return ""
}

// validateLang checks a lower-cased language code against TABLER_LANGUAGES.
func validateLang(opts config.Map, lang string) string {
	if msg := validateLength("language", lang); msg != "" {
		return msg
	}
	if !slices.Contains(opts.LanguageCodes(), lang) {
		return fmt.Sprintf("Unsupported language %q.", lang)
	}
	return ""
}

func validateLength(field, value string) string {
	if utf8.RuneCountInString(value) > maxPrefLen {
		return fmt.Sprintf("The %s is too long (max %d characters).", field, maxPrefLen)
	}
	return ""
}
