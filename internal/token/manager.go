package token

import (
	"context"
	"path"
	"strings"

	"github.com/xdg/rootbridge/internal/audit"
	"github.com/xdg/rootbridge/internal/clog"
	"github.com/xdg/rootbridge/internal/daemonconfig"
	"github.com/xdg/rootbridge/internal/executor"
	"github.com/xdg/rootbridge/internal/shell"
)

// Discovery describes where to look for the daemon module when none of the
// candidate paths has a token.
type Discovery struct {
	// ModuleRoot is the directory listing installed modules.
	ModuleRoot string
	// Match is a case-insensitive substring of the module directory name.
	Match string
	// ConfigRelPath is the config location inside the module directory.
	ConfigRelPath string
}

// DefaultDiscovery looks for a "mora" module under /data/adb/modules.
var DefaultDiscovery = Discovery{
	ModuleRoot:    "/data/adb/modules",
	Match:         "mora",
	ConfigRelPath: "config/config.json",
}

// Command returns the shell command that prints the first matching module
// directory name, or nothing.
func (d Discovery) Command() string {
	return "ls -1 " + shell.Quote(d.ModuleRoot) + " 2>/dev/null | grep -i " +
		shell.Quote(d.Match) + " | head -n 1"
}

// ConfigPath returns the config path inside the module directory dir.
func (d Discovery) ConfigPath(dir string) string {
	return path.Join(d.ModuleRoot, dir, d.ConfigRelPath)
}

// Manager reads and provisions the API token.
type Manager struct {
	exec      executor.Executor
	files     *daemonconfig.Files
	discovery Discovery
	audit     *audit.Logger
	generate  func() string
}

// NewManager creates a Manager. auditLog may be nil.
func NewManager(exec executor.Executor, files *daemonconfig.Files, discovery Discovery, auditLog *audit.Logger) *Manager {
	return &Manager{
		exec:      exec,
		files:     files,
		discovery: discovery,
		audit:     auditLog,
		generate:  Generate,
	}
}

// ReadToken returns the API token, provisioning one if a readable JSON
// config has none. It returns "" when no token is available; callers should
// offer a retry rather than send requests without a credential.
//
// Candidates are tried in order and the first success wins:
//  1. A config with a token selects that path and returns the token.
//  2. A JSON config without one gets a fresh token. It is returned only
//     after the write succeeds. Non-JSON configs are never rewritten.
//  3. If no candidate works, the module root is searched for a matching
//     directory whose config already carries a token.
func (m *Manager) ReadToken(ctx context.Context) string {
	locator := m.files.Locator()

	for _, p := range locator.CandidatePaths() {
		raw := m.files.ReadAt(ctx, p)
		if raw == "" {
			clog.Debug("token: %s is empty or missing", p)
			continue
		}

		if tok := Extract(raw); tok != "" {
			m.selectPath(p)
			m.logEvent(audit.EventTokenFound, p, "")
			return tok
		}

		if tok, ok := m.provision(ctx, p, raw); ok {
			return tok
		}
	}

	if tok := m.discover(ctx); tok != "" {
		return tok
	}

	clog.Warn("token: no token found in any candidate config")
	m.logEvent(audit.EventTokenMissing, "", "no candidate config has a token")
	return ""
}

// Rotate replaces the token in the currently selected config. It returns
// the new token and true only if the config was a JSON object and the
// write succeeded.
func (m *Manager) Rotate(ctx context.Context) (string, bool) {
	p := m.files.Locator().GetPath()
	raw := m.files.ReadAt(ctx, p)
	if raw == "" {
		m.logEvent(audit.EventTokenMissing, p, "rotate: config is empty or missing")
		return "", false
	}

	tok := m.generate()
	updated, ok := daemonconfig.WithToken(raw, tok)
	if !ok {
		clog.Warn("token: %s is not a JSON object, not rotating", p)
		m.logEvent(audit.EventTokenMissing, p, "rotate: config is not a JSON object")
		return "", false
	}
	if !m.files.WriteAt(ctx, p, updated) {
		m.logEvent(audit.EventTokenMissing, p, "rotate: write failed")
		return "", false
	}

	clog.Info("token: rotated token in %s", p)
	m.logEvent(audit.EventTokenRotated, p, "")
	return tok, true
}

// provision writes a new token into the config at p. raw must be the
// current content of p.
func (m *Manager) provision(ctx context.Context, p, raw string) (string, bool) {
	tok := m.generate()
	updated, ok := daemonconfig.WithToken(raw, tok)
	if !ok {
		clog.Debug("token: %s is not a JSON object, skipping", p)
		return "", false
	}

	if err := m.files.Locator().SetPath(p); err != nil {
		clog.Warn("token: could not select %s: %v", p, err)
		return "", false
	}
	if !m.files.WriteAt(ctx, p, updated) {
		return "", false
	}

	clog.Info("token: provisioned new token in %s", p)
	m.logEvent(audit.EventTokenProvisioned, p, "")
	return tok, true
}

// discover searches the module root for a config that already has a token.
func (m *Manager) discover(ctx context.Context) string {
	if m.discovery.ModuleRoot == "" || m.discovery.Match == "" {
		return ""
	}

	r := m.exec.Exec(ctx, m.discovery.Command())
	dir := ""
	if len(r.Stdout) > 0 {
		dir = strings.TrimSpace(r.Stdout[0])
	}
	if dir == "" {
		clog.Debug("token: no module matching %q under %s", m.discovery.Match, m.discovery.ModuleRoot)
		return ""
	}

	p := m.discovery.ConfigPath(dir)
	tok := Extract(m.files.ReadAt(ctx, p))
	if tok == "" {
		return ""
	}
	m.selectPath(p)
	m.logEvent(audit.EventTokenDiscovered, p, "")
	return tok
}

// selectPath makes p the persisted selection if it is not already.
func (m *Manager) selectPath(p string) {
	locator := m.files.Locator()
	if locator.GetPath() == p {
		return
	}
	if err := locator.SetPath(p); err != nil {
		clog.Warn("token: could not select %s: %v", p, err)
		return
	}
	clog.Info("token: selected config %s", p)
}

func (m *Manager) logEvent(typ audit.EventType, p, reason string) {
	if err := m.audit.LogToken(typ, p, reason); err != nil {
		clog.Warn("token: %v", err)
	}
}
