// Package config locates the taskflow configuration directory and loads
// settings from it.
package config

import (
	"os"
	"path/filepath"
)

// AppName names the directory under the XDG config home.
const AppName = "taskflow"

// Files kept in the config directory.
const (
	SettingsFile    = "config.yaml"
	DBFile          = "taskflow.db"
	OAuthClientFile = "oauth_client.json"
	TokenFile       = "token.json"
)

// Config is the resolved configuration directory plus global flags and
// settings.
type Config struct {
	Dir      string
	Debug    bool
	Quiet    bool
	Settings Settings
}

// New loads settings from dir, or from DefaultConfigDir when dir is empty.
func New(dir string) (*Config, error) {
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}

	settings, err := LoadSettings(cfg.SettingsPath())
	if err != nil {
		return nil, err
	}
	cfg.Settings = *settings
	return cfg, nil
}

// DefaultConfigDir is $XDG_CONFIG_HOME/taskflow, falling back to
// ~/.config/taskflow and then to ./taskflow.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", AppName)
	}
	return AppName
}

func (c *Config) file(name string) string { return filepath.Join(c.Dir, name) }

func (c *Config) SettingsPath() string    { return c.file(SettingsFile) }
func (c *Config) DBPath() string          { return c.file(DBFile) }
func (c *Config) OAuthClientPath() string { return c.file(OAuthClientFile) }
func (c *Config) TokenPath() string       { return c.file(TokenFile) }

// EnsureDir creates the config directory with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0o700)
}

func (c *Config) HasOAuthClient() bool { return exists(c.OAuthClientPath()) }
func (c *Config) HasToken() bool       { return exists(c.TokenPath()) }

// RemoveToken deletes the stored OAuth token.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
