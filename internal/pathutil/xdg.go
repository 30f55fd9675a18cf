// Package pathutil resolves where rootbridge keeps its local files: the XDG
// base directories, and "~" in configured file paths.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// homeDir returns the user's home directory, or "" if it is unknown.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// ExpandHome resolves a leading "~" or "~/" against the home directory.
// "~user" forms and paths without a leading "~" are returned as given, as is
// every path when the home directory is unknown.
func ExpandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/') {
		return path
	}
	home := homeDir()
	if home == "" {
		return path
	}
	return filepath.Join(home, rest)
}

// ConfigDir returns $XDG_CONFIG_HOME/app, defaulting to ~/.config/app.
func ConfigDir(app string) string {
	return xdgDir("XDG_CONFIG_HOME", ".config", app)
}

// StateDir returns $XDG_STATE_HOME/app, defaulting to ~/.local/state/app.
func StateDir(app string) string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"), app)
}

// xdgDir resolves an XDG base directory variable. Relative values are
// ignored, per the XDG base directory rules.
func xdgDir(env, underHome, app string) string {
	base := os.Getenv(env)
	if base == "" || !filepath.IsAbs(base) {
		base = filepath.Join(homeDir(), underHome)
	}
	return filepath.Join(base, app)
}
