package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/xdg/rootbridge/internal/clog"
	"github.com/xdg/rootbridge/internal/config"
	"github.com/xdg/rootbridge/internal/executor"
	"github.com/xdg/rootbridge/internal/prompt"
	"github.com/xdg/rootbridge/internal/term"
)

// isolate points the settings and state directories at temp dirs and
// silences the operational log.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	clog.Discard()
	t.Cleanup(clog.Reset)
}

// useExecutor makes every command run through exec.
func useExecutor(t *testing.T, exec executor.Executor) {
	t.Helper()
	orig := newExecutor
	newExecutor = func(*config.Settings) executor.Executor { return exec }
	t.Cleanup(func() { newExecutor = orig })
}

// useStdin feeds input to commands and prompts.
func useStdin(t *testing.T, input string, terminal bool) {
	t.Helper()
	origIn, origTerm := stdin, stdinIsTerminal
	stdin = strings.NewReader(input)
	stdinIsTerminal = func() bool { return terminal }
	t.Cleanup(func() { stdin, stdinIsTerminal = origIn, origTerm })
}

// useScript answers prompts from script and returns it for inspection.
func useScript(t *testing.T, script *prompt.Script) *prompt.Script {
	t.Helper()
	orig := newAsker
	newAsker = func() prompt.Asker { return script }
	t.Cleanup(func() { newAsker = orig })
	return script
}

// resetCommands clears flag values and contexts left over from earlier
// executions of the shared command tree. cobra only hands the execution
// context to a subcommand whose context is still unset.
func resetCommands(ctx context.Context) {
	debugFlag, silentFlag, ephemeralFlag, configFlag = false, false, false, ""
	rawJSONFlag, rotateYesFlag, serveListenFlag = false, false, ""

	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		c.SetContext(ctx)
		for _, name := range []string{"help", "version"} {
			if f := c.Flags().Lookup(name); f != nil {
				_ = f.Value.Set("false")
				f.Changed = false
			}
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}

// runCLI executes the command tree with args and returns what was written
// to stdout and stderr.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return runCLIContext(t, context.Background(), args...)
}

func runCLIContext(t *testing.T, ctx context.Context, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	term.SetOutput(&out)
	term.SetErrOutput(&errOut)
	t.Cleanup(term.Reset)

	resetCommands(ctx)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// writeSettingsFile writes a settings file whose daemon config candidates
// are the given paths and returns its location.
func writeSettingsFile(t *testing.T, extra string, candidates ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("elevation:\n  mode: none\n")
	if len(candidates) > 0 {
		fmt.Fprintf(&b, "daemon_config:\n  default_path: %s\n  module_root: %s\n  fallback_paths:\n",
			candidates[0], filepath.Join(t.TempDir(), "modules"))
		for _, c := range candidates {
			fmt.Fprintf(&b, "    - %s\n", c)
		}
	}
	b.WriteString(extra)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// exitCode returns the code carried by err, 0 for nil, or -1 if err is
// not an ExitCodeError.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitCodeError
	if !errors.As(err, &exitErr) {
		return -1
	}
	return exitErr.Code
}
