package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/xdg/rootbridge/internal/clog"
	"github.com/xdg/rootbridge/internal/pathutil"
)

// LoadSettings loads settings from SettingsPath().
func LoadSettings() (*Settings, error) {
	return LoadSettingsFrom(SettingsPath())
}

// LoadSettingsFrom loads settings from path. A missing file yields
// DefaultSettings(). A file that cannot be read, parsed, or validated is an
// error. Unset fields take their defaults and local paths containing ~ are
// expanded.
func LoadSettingsFrom(path string) (*Settings, error) {
	clog.Debug("config: loading settings from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			clog.Debug("config: file not found, using defaults")
			s := DefaultSettings()
			expandPaths(s)
			return s, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	s, err := ParseSettings(data)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	applyDefaults(s)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	expandPaths(s)
	return s, nil
}

// expandPaths expands ~ in the fields that name local files. Device paths
// are left alone.
func expandPaths(s *Settings) {
	s.State.File = pathutil.ExpandHome(s.State.File)
	s.Log.File = pathutil.ExpandHome(s.Log.File)
	s.Log.Audit = pathutil.ExpandHome(s.Log.Audit)
}
