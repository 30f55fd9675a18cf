package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xdg/rootbridge/internal/proxy"
	"github.com/xdg/rootbridge/internal/term"
)

var (
	rawJSONFlag   bool
	rotateYesFlag bool
)

var testRootCmd = &cobra.Command{
	Use:   "test-root",
	Short: "Check that commands can run as root",
	Long: `Run "id -u" through the elevated shell and report whether it printed 0.

Exits non-zero when root access is denied or unavailable.`,
	Args: cobra.NoArgs,
	RunE: runTestRoot,
}

var baseURLCmd = &cobra.Command{
	Use:   "base-url",
	Short: "Print the daemon API base URL",
	Args:  cobra.NoArgs,
	RunE:  runBaseURL,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print or rotate the daemon API token",
	Long: `Print the daemon API token.

The token is read from the daemon's JSON config. If the config has no token,
a new one is generated and written into it. If no config path works, the
module directory is searched for one.`,
	Args: cobra.NoArgs,
	RunE: runTokenShow,
}

var tokenShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the daemon API token",
	Args:  cobra.NoArgs,
	RunE:  runTokenShow,
}

var tokenRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Replace the daemon API token with a new one",
	Long: `Generate a new token and write it into the selected daemon config.

The daemon reads its config at startup, so it must be restarted before the
new token is accepted.`,
	Args: cobra.NoArgs,
	RunE: runTokenRotate,
}

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Send a GET request to the daemon",
	Long: `Send a GET request to the daemon API through the elevated shell and print
the response body. Exits non-zero if the daemon could not be reached or
answered with an error status.`,
	Example: "  rootbridge get /api/status",
	Args:    cobra.ExactArgs(1),
	RunE:    runGet,
}

var postCmd = &cobra.Command{
	Use:   "post <path> [body|-]",
	Short: "Send a POST request to the daemon",
	Long: `Send a JSON POST request to the daemon API through the elevated shell and
print the response body. The body is read from stdin when omitted or "-".`,
	Example: `  rootbridge post /api/profile '{"mode":"balanced"}'`,
	Args:    cobra.RangeArgs(1, 2),
	RunE:    runPost,
}

func init() {
	tokenCmd.AddCommand(tokenShowCmd)
	tokenCmd.AddCommand(tokenRotateCmd)
	tokenRotateCmd.Flags().BoolVarP(&rotateYesFlag, "yes", "y", false, "Do not ask for confirmation")

	for _, c := range []*cobra.Command{getCmd, postCmd} {
		c.Flags().BoolVar(&rawJSONFlag, "json", false, "Print the full response envelope as JSON")
	}

	rootCmd.AddCommand(testRootCmd)
	rootCmd.AddCommand(baseURLCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(postCmd)
}

func runTestRoot(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.bridge.TestRoot(cmd.Context()) {
		term.Println("root: no")
		return NewExitCodeError(exitFailure)
	}
	term.Println("root: yes")
	return nil
}

func runBaseURL(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	term.Println(a.bridge.APIBaseURL())
	return nil
}

func runTokenShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	tok := a.bridge.APIToken(cmd.Context())
	if tok == "" {
		return tokenUnavailable()
	}
	term.Println(tok)
	return nil
}

func runTokenRotate(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	path := a.locator.GetPath()
	if !rotateYesFlag {
		if !stdinIsTerminal() {
			return interactiveRequiredError("pass --yes to rotate without confirmation")
		}
		ok, err := newAsker().Confirm(
			fmt.Sprintf("Replace the API token in %s? The daemon must be restarted. [y/N]: ", path), false)
		if err != nil {
			return err
		}
		if !ok {
			term.Println("Aborted.")
			return nil
		}
	}

	tok, ok := a.tokens.Rotate(cmd.Context())
	if !ok {
		term.Error("could not rotate the token in %s; check root access and that the file holds a JSON object", path)
		return NewExitCodeError(exitFailure)
	}
	term.Warn("restart the daemon to use the new token")
	term.Println(tok)
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if rawJSONFlag {
		term.PrintJSON([]byte(a.bridge.ProxyGet(cmd.Context(), args[0])))
		return nil
	}
	return printResponse(a.bridge.Get(cmd.Context(), args[0]))
}

func runPost(cmd *cobra.Command, args []string) error {
	body, err := requestBody(args[1:])
	if err != nil {
		return err
	}

	a, err := openApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if rawJSONFlag {
		term.PrintJSON([]byte(a.bridge.ProxyPost(cmd.Context(), args[0], body)))
		return nil
	}
	return printResponse(a.bridge.Post(cmd.Context(), args[0], body))
}

// requestBody returns the body argument, or stdin when it is absent or "-".
func requestBody(args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read request body: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// printResponse prints the body and maps failures to exit codes.
func printResponse(resp proxy.Response) error {
	switch {
	case resp.Error == proxy.ErrTokenMissing:
		return tokenUnavailable()
	case resp.Code == 0:
		msg := "daemon unreachable"
		if resp.Error != "" {
			msg += ": " + resp.Error
		}
		if resp.ShellError != "" {
			msg += " (" + resp.ShellError + ")"
		}
		term.Error("%s", msg)
		return NewExitCodeError(exitDaemonUnreached)
	}

	if resp.Body != "" {
		term.PrintJSON([]byte(resp.Body))
	}
	if resp.Code >= 400 {
		term.Error("daemon answered HTTP %d", resp.Code)
		return NewExitCodeError(exitFailure)
	}
	return nil
}
