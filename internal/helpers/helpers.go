// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package helpers provides the template functions installed by the Tabler
// extension: flash message styling, map merging, form field predicates and
// a few debugging aids.
package helpers

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
)

// ErrRaised wraps every error produced by the raise template function.
var ErrRaised = errors.New("template raise")

var categoryMap = map[string]string{
	"warn":      "warning",
	"error":     "danger",
	"important": "danger",
}

var flashIconMap = map[string]string{
	"success":   "check",
	"primary":   "check",
	"secondary": "check",
	"info":      "info-circle",
	"warn":      "exclamation-circle",
	"warning":   "exclamation-circle",
	"error":     "circle-x",
	"danger":    "circle-x",
	"question":  "help",
}

var flashIconColorMap = map[string]string{
	"warn":     "warning",
	"error":    "red",
	"danger":   "red",
	"question": "info",
}

// imageExts are the suffixes treated as image references.
var imageExts = []string{
	".apng", ".png", ".jpg", ".avif", ".gif", ".jpeg",
	".jfif", ".pjpeg", ".pjp", ".svg", ".webp",
}

// FlashIconSize is the icon size used for flash messages.
const FlashIconSize = 26

// FlashCategory maps a flash category alias to its Tabler alert class.
// Unknown categories are returned unchanged.
func FlashCategory(category string) string {
	if c, ok := categoryMap[category]; ok {
		return c
	}
	return category
}

// FlashIcon returns the icon name for a flash category, "check" by default.
func FlashIcon(category string) string {
	if icon := flashIconMap[category]; icon != "" {
		return icon
	}
	return "check"
}

// FlashIconKW returns the icon attributes for a flash category.
func FlashIconKW(category string) map[string]any {
	color := flashIconColorMap[category]
	if color == "" {
		color = category
	}
	return map[string]any{"size": FlashIconSize, "color": color}
}

// MergeDict returns a new map holding left overlaid with right. A nil right
// yields a copy of left.
func MergeDict(left, right map[string]any) map[string]any {
	out := make(map[string]any, len(left)+len(right))
	for k, v := range left {
		out[k] = v
	}
	for k, v := range right {
		out[k] = v
	}
	return out
}

// Dict builds a map from alternating key/value arguments.
func Dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}

// Raise always fails, aborting template execution with message.
func Raise(message any) (string, error) {
	return "", fmt.Errorf("%w: %v", ErrRaised, message)
}

// Warn logs message at warn level and renders nothing.
func Warn(message any) string {
	slog.Warn("template warning", "message", fmt.Sprint(message))
	return ""
}

// Translate renders text as-is. It stands in for a real message catalog so
// templates can mark strings for translation.
func Translate(text any, args ...any) string {
	return fmt.Sprint(text)
}

// HiddenField is a form field rendered as <input type="hidden">.
type HiddenField struct {
	Name  string
	Value string
}

// IsHidden reports true for every HiddenField.
func (HiddenField) IsHidden() bool { return true }

// IsHiddenField reports whether field should be rendered invisibly.
func IsHiddenField(field any) bool {
	switch f := field.(type) {
	case HiddenField, *HiddenField:
		return true
	case interface{ IsHidden() bool }:
		return f.IsHidden()
	}
	return false
}

// IsImageURL reports whether path looks like an image file reference or an
// inline base64 image.
func IsImageURL(path string) bool {
	p := strings.ToLower(strings.TrimSpace(path))
	if strings.HasPrefix(p, "data:image") {
		return true
	}
	for _, ext := range imageExts {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// FuncMap returns the helper functions under their template names.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"_":                  Translate,
		"merge_dict":         MergeDict,
		"dict":               Dict,
		"warn":               Warn,
		"raise":              Raise,
		"is_hidden_field":    IsHiddenField,
		"image_data":         IsImageURL,
		"get_flash_category": FlashCategory,
		"get_flash_icon":     FlashIcon,
		"get_flash_icon_kw":  FlashIconKW,
	}
}
