package app

import (
	"io"
	"time"

	"epaperadmin/pkg/domain"
	"epaperadmin/pkg/settings"
)

const watermarkPath = "watermark/watermark.png"

// GetSettings returns the effective configuration: compiled defaults
// overlaid with whatever rows exist. Reading never inserts rows.
func (a *App) GetSettings() ([]domain.Setting, error) {
	stored, err := a.store.ListSettings()
	if err != nil {
		return nil, err
	}
	return settings.Merge(stored), nil
}

// SaveSettings persists submitted key/value pairs. Unknown keys are
// stored as-is so old installs keep custom rows; known keys inherit
// their declared type.
func (a *App) SaveSettings(values map[string]string) error {
	if len(values) == 0 {
		return domain.Validationf("no settings submitted")
	}
	now := time.Now().UTC()
	rows := make([]domain.Setting, 0, len(values))
	for key, value := range values {
		s := domain.Setting{Key: key, Value: value, Type: domain.SettingString, UpdatedAt: now}
		if def, ok := settings.Default(key); ok {
			s.Type = def.Type
			s.Description = def.Description
		}
		rows = append(rows, s)
	}
	return a.store.SaveSettings(rows)
}

// ResetSettings drops every stored row, reverting the site to the
// compiled defaults on the next read.
func (a *App) ResetSettings() error {
	stored, err := a.store.ListSettings()
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return nil
	}
	keys := make([]string, 0, len(stored))
	for _, s := range stored {
		keys = append(keys, s.Key)
	}
	return a.store.DeleteSettings(keys)
}

// SetWatermarkImage stores the uploaded watermark file and points the
// watermark_image setting at it.
func (a *App) SetWatermarkImage(r io.Reader) error {
	if err := a.files.Save(watermarkPath, r); err != nil {
		return err
	}
	now := time.Now().UTC()
	return a.store.SaveSettings([]domain.Setting{
		{Key: "watermark_image", Value: watermarkPath, Type: domain.SettingString, UpdatedAt: now},
		{Key: "watermark_enabled", Value: "true", Type: domain.SettingBoolean, UpdatedAt: now},
	})
}

// RemoveWatermark deletes the stored watermark file and disables the
// overlay. A missing file is fine; the settings still get cleared.
func (a *App) RemoveWatermark() error {
	if err := a.files.Delete(watermarkPath); err != nil {
		return err
	}
	now := time.Now().UTC()
	return a.store.SaveSettings([]domain.Setting{
		{Key: "watermark_image", Value: "", Type: domain.SettingString, UpdatedAt: now},
		{Key: "watermark_enabled", Value: "false", Type: domain.SettingBoolean, UpdatedAt: now},
	})
}
