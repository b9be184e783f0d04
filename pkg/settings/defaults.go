// Package settings holds the compiled-in site setting defaults.
// Defaults are merged over stored rows at read time; a default is never
// written to the store unless an explicit save persists it.
package settings

import (
	"sort"

	"epaperadmin/pkg/domain"
)

// Defaults returns the built-in settings in key order.
func Defaults() []domain.Setting {
	out := make([]domain.Setting, len(defaults))
	copy(out, defaults)
	return out
}

// Default returns the built-in setting for key.
func Default(key string) (domain.Setting, bool) {
	for _, s := range defaults {
		if s.Key == key {
			return s, true
		}
	}
	return domain.Setting{}, false
}

// IsKnownKey reports whether key has a compiled-in default.
func IsKnownKey(key string) bool {
	_, ok := Default(key)
	return ok
}

// Merge overlays stored rows on the defaults and returns the effective
// settings sorted by key. Stored keys without a default are kept as-is.
func Merge(stored []domain.Setting) []domain.Setting {
	byKey := make(map[string]domain.Setting, len(defaults)+len(stored))
	for _, s := range defaults {
		byKey[s.Key] = s
	}
	for _, s := range stored {
		if d, ok := byKey[s.Key]; ok && s.Type == "" {
			s.Type = d.Type
		}
		byKey[s.Key] = s
	}
	out := make([]domain.Setting, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

var defaults = []domain.Setting{
	{Key: "site_title", Value: "Prayatnam Epaper", Type: domain.SettingString, Description: "Site title shown in the masthead"},
	{Key: "site_tagline", Value: "Your daily digital newspaper", Type: domain.SettingString, Description: "Short line under the site title"},
	{Key: "contact_email", Value: "contact@prayatnam.in", Type: domain.SettingString, Description: "Public contact address"},
	{Key: "editions_per_page", Value: "12", Type: domain.SettingNumber, Description: "Editions listed per archive page"},
	{Key: "allow_downloads", Value: "true", Type: domain.SettingBoolean, Description: "Whether readers may download edition PDFs"},
	{Key: "footer_html", Value: "<p>&copy; Prayatnam Epaper</p>", Type: domain.SettingHTML, Description: "Raw footer markup"},
	{Key: "social_links", Value: "{}", Type: domain.SettingJSON, Description: "Social profile URLs keyed by network"},
	{Key: "watermark_enabled", Value: "false", Type: domain.SettingBoolean, Description: "Overlay the watermark on page images"},
	{Key: "watermark_image", Value: "", Type: domain.SettingString, Description: "Stored watermark image path"},
	{Key: "watermark_opacity", Value: "40", Type: domain.SettingNumber, Description: "Watermark opacity percent"},
	{Key: "watermark_position", Value: "bottom-right", Type: domain.SettingString, Description: "Watermark placement on the page"},
}
