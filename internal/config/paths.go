package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "ovos-settings"

// Dir returns the ovos-settings config directory
// $XDG_CONFIG_HOME/ovos-settings/
func Dir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// ConfigPath returns the config.json file path
// $XDG_CONFIG_HOME/ovos-settings/config.json
func ConfigPath() string {
	if p := os.Getenv("OVOS_SETTINGS_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.json")
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
