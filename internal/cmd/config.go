package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xdg/rootbridge/internal/config"
	"github.com/xdg/rootbridge/internal/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage rootbridge settings",
	Long: `Manage rootbridge's settings.

The settings file is stored at ~/.config/rootbridge/config.yaml
(or $XDG_CONFIG_HOME/rootbridge/config.yaml if XDG_CONFIG_HOME is set).

Use the subcommands to view, edit, or initialize the settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	Long: `Print the effective settings as YAML.

If no settings file exists, shows the defaults.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit settings in $EDITOR",
	Long: `Open the settings file in your editor.

The editor is determined by the EDITOR environment variable, falling back to vi.
If the settings file doesn't exist, a default one is created first.`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print settings file path",
	Long:  `Print the path to the settings file.`,
	Args:  cobra.NoArgs,
	Run:   runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default settings file",
	Long: `Create the default settings file if it doesn't exist.

This creates a fully-commented file with all default values.
If the file already exists, this command does nothing.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	data, err := config.MarshalSettings(s)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	term.Print(string(data))
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	if err := config.EditSettings(); err != nil {
		return fmt.Errorf("failed to edit settings: %w", err)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) {
	if configFlag != "" {
		term.Println(configFlag)
		return
	}
	term.Println(config.SettingsPath())
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.SettingsPath()

	created, err := config.WriteDefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to create settings: %w", err)
	}
	if !created {
		term.Printf("Settings already exist at: %s\n", path)
		return nil
	}

	term.Printf("Created default settings at: %s\n", path)
	return nil
}
