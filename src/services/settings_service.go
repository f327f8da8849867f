package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/username/fintrack/backend/src/logger"
)

// Settings is the small user-facing configuration persisted between runs.
type Settings struct {
	DefaultCurrency string `json:"default_currency"`
}

func DefaultSettings() Settings {
	return Settings{DefaultCurrency: "USD"}
}

// SettingsService loads and saves the settings JSON document.
type SettingsService struct {
	path string
}

func NewSettingsService(path string) *SettingsService {
	return &SettingsService{path: path}
}

// Load returns the persisted settings merged over defaults. A missing file
// is created with defaults; a corrupted file is overwritten with defaults
// rather than surfaced as an error.
func (s *SettingsService) Load() Settings {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) && logger.L != nil {
			logger.L.Warn("Failed to read settings file, using defaults", "path", s.path, "error", err)
		}
		defaults := DefaultSettings()
		if saveErr := s.Save(defaults); saveErr != nil && logger.L != nil {
			logger.L.Warn("Failed to write default settings", "path", s.path, "error", saveErr)
		}
		return defaults
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		if logger.L != nil {
			logger.L.Warn("Settings file corrupted, overwriting with defaults", "path", s.path, "error", err)
		}
		defaults := DefaultSettings()
		if saveErr := s.Save(defaults); saveErr != nil && logger.L != nil {
			logger.L.Warn("Failed to overwrite corrupted settings", "path", s.path, "error", saveErr)
		}
		return defaults
	}
	if settings.DefaultCurrency == "" {
		settings.DefaultCurrency = DefaultSettings().DefaultCurrency
	}
	return settings
}

func (s *SettingsService) Save(settings Settings) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating settings directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}
