package config

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/xdg/rootbridge/internal/clog"
)

// EditSettings opens the settings file in the user's editor, creating the
// default file first if needed. The editor is determined by the EDITOR
// environment variable, falling back to "vi". After the editor exits the
// settings are loaded; errors are returned so the caller can report them,
// but the edited file is kept as is.
func EditSettings() error {
	if _, err := WriteDefaultConfig(); err != nil {
		return fmt.Errorf("create default settings: %w", err)
	}

	if err := openEditor(SettingsPath()); err != nil {
		return err
	}

	if _, err := LoadSettings(); err != nil {
		clog.Warn("config: settings have errors after edit: %v", err)
		return err
	}
	return nil
}

// openEditor opens the specified file in the user's editor.
func openEditor(path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %q failed: %w", editor, err)
	}

	return nil
}
