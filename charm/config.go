// ABOUTME: Configuration for the Charm KV backend connection
// ABOUTME: Stored as JSON next to the CRM database under the XDG data directory

package charm

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// DefaultCharmHost is the self-hosted 2389 research server.
	DefaultCharmHost = "charm.2389.dev"

	// AppName is the application name for Charm KV database.
	AppName = "schoolcrm"

	ConfigFileName = "charm-config.json"
)

// Config holds charm connection settings.
type Config struct {
	Host string `json:"host,omitempty"`

	// AutoSync pushes every write to the server immediately.
	AutoSync bool `json:"auto_sync"`
}

func DefaultConfig() *Config {
	return &Config{Host: DefaultCharmHost, AutoSync: true}
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(xdg.DataHome, AppName, ConfigFileName)
}

// LoadConfig loads config from disk, or returns defaults if not found.
func LoadConfig() (*Config, error) {
	return loadConfigFrom(ConfigPath())
}

func loadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		// Invalid config, use defaults
		return DefaultConfig(), nil //nolint:nilerr // a broken file falls back to defaults
	}
	if cfg.Host == "" {
		cfg.Host = DefaultCharmHost
	}
	return cfg, nil
}

// Save persists the config to disk.
func (c *Config) Save() error {
	return c.saveTo(ConfigPath())
}

func (c *Config) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
