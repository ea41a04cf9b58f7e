// Package config persists the last used connection settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const configDirName = "serial-plotter"
const settingsFileName = "settings.json"

// DefaultBaudRate is used when nothing has been saved yet.
const DefaultBaudRate = 9600

// Settings are the user's last connection choices.
type Settings struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate"`
}

func Defaults() Settings {
	return Settings{BaudRate: DefaultBaudRate}
}

// Dir returns the app's config directory, creating it if needed.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config dir: %w", err)
	}
	dir := filepath.Join(base, configDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}
	return dir, nil
}

// Load reads settings from the app's config directory.
func Load() (Settings, error) {
	dir, err := Dir()
	if err != nil {
		return Defaults(), err
	}
	return LoadFrom(dir)
}

// LoadFrom reads settings from dir. A missing file yields defaults.
func LoadFrom(dir string) (Settings, error) {
	data, err := os.ReadFile(filepath.Join(dir, settingsFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return Defaults(), fmt.Errorf("failed to read settings: %w", err)
	}

	s := Defaults()
	if err := json.Unmarshal(data, &s); err != nil {
		return Defaults(), fmt.Errorf("failed to parse settings: %w", err)
	}
	if s.BaudRate <= 0 {
		s.BaudRate = DefaultBaudRate
	}
	return s, nil
}

// Save writes settings to the app's config directory.
func Save(s Settings) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return SaveTo(dir, s)
}

func SaveTo(dir string, s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	path := filepath.Join(dir, settingsFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
