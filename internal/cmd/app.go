package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/xdg/rootbridge/internal/audit"
	"github.com/xdg/rootbridge/internal/bridge"
	"github.com/xdg/rootbridge/internal/clog"
	"github.com/xdg/rootbridge/internal/config"
	"github.com/xdg/rootbridge/internal/daemonconfig"
	"github.com/xdg/rootbridge/internal/executor"
	"github.com/xdg/rootbridge/internal/prompt"
	"github.com/xdg/rootbridge/internal/proxy"
	"github.com/xdg/rootbridge/internal/token"
)

// newExecutor builds the executor for the configured elevation mode.
// Replaced in tests.
var newExecutor = executorFor

// app holds the components one command invocation works with.
type app struct {
	settings *config.Settings
	exec     executor.Executor
	locator  *daemonconfig.Locator
	files    *daemonconfig.Files
	tokens   *token.Manager
	client   *proxy.Client
	bridge   *bridge.Bridge

	// persistent is false when the selection lives in memory only.
	persistent bool
	closers    []io.Closer
}

// appOptions controls how openApp sets up logging.
type appOptions struct {
	// daemon sends operational logs to the log file only.
	daemon bool
}

// loadSettings reads the settings file named by --config, or the default.
func loadSettings() (*config.Settings, error) {
	if configFlag != "" {
		return config.LoadSettingsFrom(configFlag)
	}
	return config.LoadSettings()
}

// openApp loads settings and wires the executor, selection store, token
// manager, proxy client and bridge together. Callers must Close the app.
func openApp(opts appOptions) (*app, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	level := clog.ParseLevel(s.Log.Level)
	if debugFlag {
		level = clog.LevelDebug
	}
	if err := clog.Configure(clog.Options{File: s.Log.File, Level: level, Daemon: opts.daemon}); err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return newApp(s), nil
}

// newApp wires components for s. Failures of optional local state (the
// selection database, the audit log) are logged and degrade to in-memory
// or disabled equivalents.
func newApp(s *config.Settings) *app {
	a := &app{settings: s}
	stateDir := clog.StateDir()

	a.exec = newExecutor(s)
	if c, ok := a.exec.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	var store daemonconfig.Store
	if ephemeralFlag {
		store = daemonconfig.NewMemoryStore("")
	} else {
		bolt, err := daemonconfig.OpenBoltStore(s.StateFile(stateDir))
		if err != nil {
			// serve holds the database lock while it runs.
			clog.Warn("selection store unavailable, using memory: %v", err)
			store = daemonconfig.NewMemoryStore("")
		} else {
			store = bolt
			a.persistent = true
			a.closers = append(a.closers, bolt)
		}
	}

	var auditLog *audit.Logger
	if f, err := clog.OpenLogFile(s.AuditFile(stateDir)); err != nil {
		clog.Warn("audit log disabled: %v", err)
	} else {
		auditLog = audit.NewLogger(f)
		a.closers = append(a.closers, f)
	}

	a.locator = daemonconfig.NewLocator(store, s.DaemonConfig.DefaultPath, s.DaemonConfig.FallbackPaths)
	a.files = daemonconfig.NewFiles(a.exec, a.locator, s.Tools.Base64Decoders)
	a.tokens = token.NewManager(a.exec, a.files, s.Discovery(), auditLog)
	a.client = proxy.NewClient(a.exec, a.tokens, proxy.Options{
		BaseURL:  s.API.BaseURL,
		Timeout:  s.APITimeout(),
		Clients:  s.Tools.HTTPClients,
		Decoders: s.Tools.Base64Decoders,
	}, auditLog)
	a.bridge = bridge.New(a.exec, a.tokens, a.client)
	return a
}

// Close releases the elevated shell, the selection store and the log files.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			clog.Warn("close: %v", err)
		}
	}
	a.closers = nil
	if err := clog.Close(); err != nil {
		clog.Warn("close log file: %v", err)
	}
}

// executorFor returns the executor for the configured elevation mode.
func executorFor(s *config.Settings) executor.Executor {
	switch s.Elevation.Mode {
	case config.ModeOneShot:
		return executor.NewOneShot(s.Elevation.Command, s.Elevation.Args...)
	case config.ModeNone:
		return executor.NewInterp()
	default:
		return executor.NewSession(s.Elevation.Command, s.Elevation.Args...)
	}
}

// stdin is where commands read request bodies and prompt answers.
// Replaced in tests.
var stdin io.Reader = os.Stdin

// stdinIsTerminal reports whether prompts can be shown. Replaced in tests.
var stdinIsTerminal = func() bool {
	f, ok := stdin.(*os.File)
	return ok && prompt.IsTerminal(f)
}
