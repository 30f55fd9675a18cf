package config

import (
	"errors"
	"fmt"
	"os"
)

// WriteDefaultConfig creates the default settings file with helpful
// comments. If the file already exists, it returns false without
// overwriting. The file is written with 0600 permissions.
func WriteDefaultConfig() (created bool, err error) {
	path := SettingsPath()

	_, err = os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat settings file: %w", err)
	}

	if err := EnsureDir(); err != nil {
		return false, err
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o600); err != nil {
		return false, fmt.Errorf("write default settings: %w", err)
	}
	return true, nil
}

// WriteSettings writes s to SettingsPath(), replacing any existing file.
// Comments in an existing file are lost.
func WriteSettings(s *Settings) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	data, err := MarshalSettings(s)
	if err != nil {
		return err
	}

	if err := os.WriteFile(SettingsPath(), data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
