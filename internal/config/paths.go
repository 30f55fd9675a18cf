package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xdg/rootbridge/internal/pathutil"
)

// Dir returns the rootbridge configuration directory path.
// By default, this is ~/.config/rootbridge. If the XDG_CONFIG_HOME
// environment variable is set, it uses $XDG_CONFIG_HOME/rootbridge instead.
func Dir() string {
	return pathutil.ConfigDir("rootbridge")
}

// EnsureDir creates the configuration directory if it doesn't exist.
// It uses 0700 permissions (user-only access).
func EnsureDir() error {
	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	return nil
}

// SettingsPath returns the full path to the settings file.
func SettingsPath() string {
	return filepath.Join(Dir(), "config.yaml")
}
