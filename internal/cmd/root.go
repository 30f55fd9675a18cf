// Package cmd implements the CLI commands for rootbridge.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xdg/rootbridge/internal/clog"
	"github.com/xdg/rootbridge/internal/term"
	"github.com/xdg/rootbridge/internal/version"
)

var (
	debugFlag     bool
	silentFlag    bool
	ephemeralFlag bool
	configFlag    string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rootbridge",
	Short: "Privileged bridge to a root-only performance daemon",
	Long: `rootbridge lets an unprivileged app talk to a performance daemon that runs
as root and listens on 127.0.0.1:1004.

It runs every privileged step through an elevated shell (su by default):
reading and provisioning the daemon's API token in its JSON config, and
sending HTTP requests to the daemon with an on-device curl.

Use 'rootbridge serve' to expose the same operations on a loopback HTTP
endpoint for a UI host.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		term.SetSilent(silentFlag)
		if debugFlag {
			clog.SetLevel(clog.LevelDebug)
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&debugFlag, "debug", false, "Log debug messages, including redacted shell commands")
	flags.BoolVar(&silentFlag, "silent", false, "Suppress normal output (errors are still shown)")
	flags.BoolVar(&ephemeralFlag, "ephemeral", false, "Keep the config path selection in memory only")
	flags.StringVar(&configFlag, "config", "", "Settings file (default ~/.config/rootbridge/config.yaml)")
}

// Execute runs the root command and returns any error. SIGINT and SIGTERM
// cancel the command's context, which kills any elevated shell in flight.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !isExitCodeError(err) {
		term.Error("%v", err)
	}
	return err
}
