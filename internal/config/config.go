package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Theme is the terminal editor color palette
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// DefaultServer is where the settings backend listens by default
const DefaultServer = "http://localhost:8000"

// Config represents the main configuration file structure
type Config struct {
	Locale     string `json:"locale"`     // "auto" or ISO format (e.g., "ko-KR", "en-US")
	Server     string `json:"server"`     // settings backend base url
	Theme      Theme  `json:"theme"`      // "dark" or "light"
	HideEmpty  bool   `json:"hideEmpty"`  // hide skills without settings
	AuthHeader string `json:"authHeader"` // stored credential header, empty when logged out
	LogLevel   string `json:"logLevel"`   // debug, info, warn, error
}

var (
	cfg     *Config
	cfgOnce sync.Once
	cfgMu   sync.RWMutex
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Locale:   "auto", // default: auto-detect system locale
		Server:   DefaultServer,
		Theme:    ThemeDark,
		LogLevel: "info",
	}
}

// Load loads the configuration from file
func Load() (*Config, error) {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return load()
}

func load() (*Config, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return NewConfig(), nil
		}
		return nil, err
	}

	config := NewConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigPath(), err)
	}
	config.fillDefaults()
	return config, nil
}

func (c *Config) fillDefaults() {
	if c.Locale == "" {
		c.Locale = "auto"
	}
	if c.Server == "" {
		c.Server = DefaultServer
	}
	if c.Theme != ThemeLight {
		c.Theme = ThemeDark
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Save saves the configuration to file. The file can hold a credential so it
// is written owner-only.
func Save(config *Config) error {
	cfgMu.Lock()
	defer cfgMu.Unlock()

	if err := EnsureDir(Dir()); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(ConfigPath(), data, 0600)
}

// Get returns the current configuration (singleton)
func Get() *Config {
	cfgOnce.Do(func() {
		var err error
		cfg, err = Load()
		if err != nil {
			cfg = NewConfig()
		}
	})
	return cfg
}

// Reload reloads the configuration from file
func Reload() error {
	cfgOnce.Do(func() {})

	cfgMu.Lock()
	defer cfgMu.Unlock()

	newCfg, err := load()
	if err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

// Keys lists the settable configuration keys
var Keys = []string{"locale", "server", "theme", "hideEmpty", "logLevel"}

// Set validates and stores one key
func (c *Config) Set(key, value string) error {
	switch key {
	case "locale":
		c.Locale = value
	case "server":
		v := strings.TrimRight(strings.TrimSpace(value), "/")
		if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			return fmt.Errorf("invalid value '%s' for %s. Expected an http(s) url", value, key)
		}
		c.Server = v
	case "theme":
		switch Theme(value) {
		case ThemeDark, ThemeLight:
			c.Theme = Theme(value)
		default:
			return fmt.Errorf("invalid value '%s' for %s. Valid values: dark, light", value, key)
		}
	case "hideEmpty":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value '%s' for %s. Valid values: true, false", value, key)
		}
		c.HideEmpty = b
	case "logLevel":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid value '%s' for %s. Valid values: debug, info, warn, error", value, key)
		}
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// GetLocale returns the configured locale
func GetLocale() string {
	return Get().Locale
}

// SetAuthHeader stores (or clears) the credential header and saves
func SetAuthHeader(header string) error {
	config := Get()
	config.AuthHeader = header
	return Save(config)
}
