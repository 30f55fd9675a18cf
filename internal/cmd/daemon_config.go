package cmd

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xdg/rootbridge/internal/prompt"
	"github.com/xdg/rootbridge/internal/term"
)

// newAsker is replaced in tests.
var newAsker = func() prompt.Asker { return prompt.NewConsole(stdin, term.Stderr()) }

var daemonConfigCmd = &cobra.Command{
	Use:   "daemon-config",
	Short: "Inspect or choose the daemon's JSON config",
	Long: `Inspect or choose which daemon config file holds the API token.

The selected path is remembered in the rootbridge state directory. Until one
is selected, the default path is used.`,
}

var daemonConfigPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the selected config path",
	Args:  cobra.NoArgs,
	RunE:  runDaemonConfigPath,
}

var daemonConfigSetPathCmd = &cobra.Command{
	Use:   "set-path <path>",
	Short: "Select a config path",
	Args:  cobra.ExactArgs(1),
	RunE:  runDaemonConfigSetPath,
}

var daemonConfigCandidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List the paths tried when reading the token",
	Long: `List the config paths tried when reading the token, in order. The selected
path is marked with "*".`,
	Args: cobra.NoArgs,
	RunE: runDaemonConfigCandidates,
}

var daemonConfigShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the selected config file",
	Long: `Read the selected config file through the elevated shell and print it.

The output includes the API token.`,
	Args: cobra.NoArgs,
	RunE: runDaemonConfigShow,
}

var daemonConfigSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Choose a config path interactively",
	Args:  cobra.NoArgs,
	RunE:  runDaemonConfigSelect,
}

func init() {
	daemonConfigCmd.AddCommand(daemonConfigPathCmd)
	daemonConfigCmd.AddCommand(daemonConfigSetPathCmd)
	daemonConfigCmd.AddCommand(daemonConfigCandidatesCmd)
	daemonConfigCmd.AddCommand(daemonConfigShowCmd)
	daemonConfigCmd.AddCommand(daemonConfigSelectCmd)
	rootCmd.AddCommand(daemonConfigCmd)
}

func runDaemonConfigPath(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	term.Println(a.locator.GetPath())
	return nil
}

func runDaemonConfigSetPath(cmd *cobra.Command, args []string) error {
	p := strings.TrimSpace(args[0])
	if !path.IsAbs(p) {
		return fmt.Errorf("config path must be absolute: %q", args[0])
	}

	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	return selectPath(a, p)
}

func runDaemonConfigCandidates(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	selected := a.locator.GetPath()
	for _, p := range a.locator.CandidatePaths() {
		mark := " "
		if p == selected {
			mark = "*"
		}
		term.Printf("%s %s\n", mark, p)
	}
	return nil
}

func runDaemonConfigShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	raw := a.files.Read(cmd.Context())
	if raw == "" {
		term.Error("%s is missing, empty, or unreadable", a.locator.GetPath())
		return NewExitCodeError(exitFailure)
	}
	term.PrintJSON([]byte(raw))
	return nil
}

func runDaemonConfigSelect(cmd *cobra.Command, args []string) error {
	if !stdinIsTerminal() {
		return interactiveRequiredError("use 'rootbridge daemon-config set-path <path>' instead")
	}

	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	candidates := a.locator.CandidatePaths()
	current := a.locator.GetPath()
	defaultIdx := 0
	for i, p := range candidates {
		if p == current {
			defaultIdx = i
			break
		}
	}

	idx, err := newAsker().Choose("Select the daemon config:", candidates, defaultIdx)
	if err != nil {
		return err
	}
	return selectPath(a, candidates[idx])
}

func selectPath(a *app, p string) error {
	if err := a.locator.SetPath(p); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	if !a.persistent {
		term.Warn("selection is kept for this process only")
	}
	term.Printf("Selected %s\n", p)
	return nil
}
