package app

import (
	"errors"
	"strings"
	"testing"

	"epaperadmin/pkg/domain"
)

func settingValue(t *testing.T, list []domain.Setting, key string) domain.Setting {
	t.Helper()
	for _, s := range list {
		if s.Key == key {
			return s
		}
	}
	t.Fatalf("setting %q not in list", key)
	return domain.Setting{}
}

func TestGetSettingsReturnsDefaultsWithoutInserting(t *testing.T) {
	a, mem, _ := newTestApp(t)

	list, err := a.GetSettings()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := settingValue(t, list, "site_title"); got.Value != "Prayatnam Epaper" {
		t.Fatalf("site_title default = %q", got.Value)
	}

	stored, err := mem.ListSettings()
	if err != nil {
		t.Fatalf("stored: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("reading settings inserted rows: %+v", stored)
	}
}

func TestSaveSettingsOverridesDefaults(t *testing.T) {
	a, _, _ := newTestApp(t)

	err := a.SaveSettings(map[string]string{
		"site_title": "Coastal Times",
		"custom_key": "kept as-is",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	list, err := a.GetSettings()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := settingValue(t, list, "site_title"); got.Value != "Coastal Times" || got.Type != domain.SettingString {
		t.Fatalf("site_title = %+v", got)
	}
	if got := settingValue(t, list, "custom_key"); got.Value != "kept as-is" {
		t.Fatalf("custom_key = %+v", got)
	}
}

func TestSaveSettingsRejectsEmpty(t *testing.T) {
	a, _, _ := newTestApp(t)

	err := a.SaveSettings(nil)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestResetSettingsRevertsToDefaults(t *testing.T) {
	a, mem, _ := newTestApp(t)

	if err := a.SaveSettings(map[string]string{"site_title": "Override"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := a.ResetSettings(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	stored, _ := mem.ListSettings()
	if len(stored) != 0 {
		t.Fatalf("reset left rows behind: %+v", stored)
	}
	list, _ := a.GetSettings()
	if got := settingValue(t, list, "site_title"); got.Value != "Prayatnam Epaper" {
		t.Fatalf("site_title after reset = %q", got.Value)
	}
}

func TestWatermarkLifecycle(t *testing.T) {
	a, _, files := newTestApp(t)

	if err := a.SetWatermarkImage(strings.NewReader("png bytes")); err != nil {
		t.Fatalf("set watermark: %v", err)
	}
	if !files.Exists("watermark/watermark.png") {
		t.Fatal("watermark file not stored")
	}
	list, _ := a.GetSettings()
	if got := settingValue(t, list, "watermark_enabled"); got.Value != "true" {
		t.Fatalf("watermark_enabled = %q", got.Value)
	}
	if got := settingValue(t, list, "watermark_image"); got.Value != "watermark/watermark.png" {
		t.Fatalf("watermark_image = %q", got.Value)
	}

	if err := a.RemoveWatermark(); err != nil {
		t.Fatalf("remove watermark: %v", err)
	}
	if files.Exists("watermark/watermark.png") {
		t.Fatal("watermark file survived removal")
	}
	list, _ = a.GetSettings()
	if got := settingValue(t, list, "watermark_enabled"); got.Value != "false" {
		t.Fatalf("watermark_enabled after removal = %q", got.Value)
	}
}
