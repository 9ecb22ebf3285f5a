// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import "slices"

// Option keys recognised by the Tabler extension.
const (
	KeySecretKey          = "SECRET_KEY"
	KeyServeLocal         = "TABLER_SERVE_LOCAL"
	KeyBtnStyle           = "TABLER_BTN_STYLE"
	KeyBtnSize            = "TABLER_BTN_SIZE"
	KeyIconSize           = "TABLER_ICON_SIZE"
	KeyIconColor          = "TABLER_ICON_COLOR"
	KeyMsgCategory        = "TABLER_MSG_CATEGORY"
	KeyViewTitle          = "TABLER_VIEW_TITLE"
	KeyEditTitle          = "TABLER_EDIT_TITLE"
	KeyDeleteTitle        = "TABLER_DELETE_TITLE"
	KeyNewTitle           = "TABLER_NEW_TITLE"
	KeyFormGroupClasses   = "TABLER_FORM_GROUP_CLASSES"
	KeyLayout             = "TABLER_LAYOUT"
	KeyEnableLayoutChoice = "TABLER_ENABLE_LAYOUT_CHOICE"
	KeyStickyTop          = "TABLER_STICKY_TOP"
	KeyThemeDarkMode      = "TABLER_THEME_DARK_MODE"
	KeyEnableThemeMode    = "TABLER_ENABLE_THEME_MODE"
	KeyLayouts            = "TABLER_LAYOUTS"
	KeyEnableI18N         = "TABLER_ENABLE_I18N"
	KeyShowHeaderSearch   = "TABLER_SHOW_HEADER_SEARCH"
	KeyLanguage           = "TABLER_LANGUAGE"
	KeyLanguages          = "TABLER_LANGUAGES"
	KeyThemeRadius        = "TABLER_THEME_RADIUS"
	KeyThemeBase          = "TABLER_THEME_BASE"
	KeyThemePrimary       = "TABLER_THEME_PRIMARY"
	KeyThemeFont          = "TABLER_THEME_FONT"
	KeyFlashesType        = "TABLER_FLASHES_TYPE"
	KeyPlugins            = "TABLER_PLUGINS"
	KeyPluginsModules     = "TABLER_PLUGINS_MODULES"
	KeyThemeColor         = "TABLER_THEME_COLOR"
	KeyShowRequestTime    = "TABLER_SHOW_REQUEST_TIME"
)

// Language is one entry of the language picker.
type Language struct {
	Code   string // "zh"
	Region string // flag code, "cn"
	Name   string // display name
}

// Layouts lists every page layout shipped with Tabler.
var Layouts = []string{
	"boxed",
	"combined",
	"condensed",
	"condensed-box",
	"fluid",
	"fluid-vertical",
	"horizontal",
	"navbar-dark",
	"fluid-navbar-dark",
	"overlap",
	"fluid-overlap",
	"transparent",
	"vertical-right",
	"vertical",
}

// ThemeColors is the accent palette accepted by the preference route.
var ThemeColors = []string{
	"blue", "azure", "indigo", "purple", "pink", "red",
	"orange", "yellow", "lime", "green", "teal", "cyan",
}

// Map is the option map of the host application.
type Map map[string]any

// Defaults returns a fresh copy of the built-in option values.
func Defaults() Map {
	return Map{
		KeyServeLocal:         true,
		KeyBtnStyle:           "primary",
		KeyBtnSize:            "md",
		KeyIconSize:           24,
		KeyIconColor:          "blue",
		KeyMsgCategory:        "primary",
		KeyViewTitle:          "View",
		KeyEditTitle:          "Edit",
		KeyDeleteTitle:        "Delete",
		KeyNewTitle:           "New",
		KeyFormGroupClasses:   "mb-3",
		KeyLayout:             "boxed",
		KeyEnableLayoutChoice: true,
		KeyStickyTop:          true,
		KeyThemeDarkMode:      false,
		KeyEnableThemeMode:    true,
		KeyLayouts:            slices.Clone(Layouts),
		KeyEnableI18N:         true,
		KeyShowHeaderSearch:   true,
		KeyLanguage:           "zh",
		KeyLanguages: []Language{
			{Code: "zh", Region: "cn", Name: "中文"},
			{Code: "en", Region: "us", Name: "English"},
		},
		KeyThemeRadius:  1,
		KeyThemeBase:    "gray",
		KeyThemePrimary: "blue",
		KeyThemeFont:    "sans-serif",
		KeyFlashesType:  "html",
		KeyPlugins:      []string{},
	}
}

// Overlay returns a new map holding every key of base, plus each key of
// overlay that base does not define. Neither input is modified.
func Overlay(base, overlay Map) Map {
	out := make(Map, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// String returns the string value of key, or "" when unset or not a string.
func (m Map) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Bool returns the boolean value of key. Unset keys are false.
func (m Map) Bool(key string) bool {
	b, _ := m[key].(bool)
	return b
}

// Int returns the integer value of key.
func (m Map) Int(key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Strings returns a copy of the string list stored under key.
func (m Map) Strings(key string) []string {
	switch v := m[key].(type) {
	case []string:
		return slices.Clone(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Languages returns the configured language picker entries.
func (m Map) Languages() []Language {
	langs, _ := m[KeyLanguages].([]Language)
	return langs
}

// LanguageCodes returns the codes of the configured languages, in order.
func (m Map) LanguageCodes() []string {
	langs := m.Languages()
	codes := make([]string, len(langs))
	for i, l := range langs {
		codes[i] = l.Code
	}
	return codes
}
