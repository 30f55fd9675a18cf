package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xdg/rootbridge/internal/bridge"
	"github.com/xdg/rootbridge/internal/clog"
	"github.com/xdg/rootbridge/internal/term"
	"github.com/xdg/rootbridge/internal/token"
)

const shutdownTimeout = 5 * time.Second

var serveListenFlag string

// newServeSecret makes the per-launch bearer secret. Tests replace it.
var newServeSecret = token.Generate

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bridge on a loopback HTTP endpoint",
	Long: `Serve the bridge operations as a small JSON API for a UI host:

  GET  /bridge/root             {"root":bool}
  GET  /bridge/base-url         {"base_url":string}
  GET  /bridge/token            {"token":string}
  GET  /bridge/proxy?path=/x    {"code":int,"body":string,...}
  POST /bridge/proxy?path=/x    request body is forwarded to the daemon

The endpoint hands out the daemon token, so it only listens on loopback
addresses and every request must send the secret printed at startup:

  Authorization: Bearer <secret>

The secret is new on each launch. One elevated shell is kept for the life of the server. Runs until
interrupted; logs go to the log file only.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListenFlag, "listen", "", "Listen address (default from settings, 127.0.0.1:1005)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(appOptions{daemon: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if serveListenFlag != "" {
		a.settings.Serve.Listen = serveListenFlag
		if err := a.settings.Validate(); err != nil {
			return fmt.Errorf("invalid --listen: %w", err)
		}
	}

	server := bridge.NewServer(a.settings.Serve.Listen, newServeSecret(), a.bridge, a.settings.RequestTimeout())
	if err := server.Start(); err != nil {
		return err
	}
	term.Printf("rootbridge listening on http://%s\n", server.ListenAddr())
	term.Printf("secret: %s\n", server.Secret)

	<-cmd.Context().Done()
	clog.Info("shutting down bridge server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop bridge server: %w", err)
	}
	return nil
}
