package config

import (
	"path/filepath"
	"time"

	"github.com/xdg/rootbridge/internal/bridge"
	"github.com/xdg/rootbridge/internal/daemonconfig"
	"github.com/xdg/rootbridge/internal/proxy"
	"github.com/xdg/rootbridge/internal/token"
)

// DefaultSettings returns Settings with all defaults populated.
func DefaultSettings() *Settings {
	return &Settings{
		Elevation: ElevationConfig{
			Mode:    ModeSession,
			Command: "su",
		},
		API: APIConfig{
			BaseURL: proxy.DefaultBaseURL,
			Timeout: proxy.DefaultTimeout.String(),
		},
		DaemonConfig: DaemonConfigConfig{
			DefaultPath:   daemonconfig.DefaultPath,
			FallbackPaths: append([]string(nil), daemonconfig.DefaultFallbackPaths...),
			ModuleRoot:    token.DefaultDiscovery.ModuleRoot,
			ModuleMatch:   token.DefaultDiscovery.Match,
			ConfigRelPath: token.DefaultDiscovery.ConfigRelPath,
		},
		Tools: ToolsConfig{
			HTTPClients:    append([]string(nil), proxy.DefaultHTTPClients...),
			Base64Decoders: append([]string(nil), daemonconfig.DefaultBase64Decoders...),
		},
		Log: LogConfig{
			Level: "info",
		},
		Serve: ServeConfig{
			Listen:         bridge.DefaultListenAddr,
			RequestTimeout: bridge.DefaultRequestTimeout.String(),
		},
	}
}

// APITimeout returns api.timeout as a duration, or the default if unset.
// Call after Validate.
func (s *Settings) APITimeout() time.Duration {
	return parseDurationOr(s.API.Timeout, proxy.DefaultTimeout)
}

// RequestTimeout returns serve.request_timeout as a duration.
func (s *Settings) RequestTimeout() time.Duration {
	return parseDurationOr(s.Serve.RequestTimeout, bridge.DefaultRequestTimeout)
}

// StateFile returns the selection database path.
func (s *Settings) StateFile(stateDir string) string {
	if s.State.File != "" {
		return s.State.File
	}
	return filepath.Join(stateDir, "selection.db")
}

// AuditFile returns the audit log path.
func (s *Settings) AuditFile(stateDir string) string {
	if s.Log.Audit != "" {
		return s.Log.Audit
	}
	return filepath.Join(stateDir, "audit.log")
}

// Discovery returns the module discovery settings.
func (s *Settings) Discovery() token.Discovery {
	return token.Discovery{
		ModuleRoot:    s.DaemonConfig.ModuleRoot,
		Match:         s.DaemonConfig.ModuleMatch,
		ConfigRelPath: s.DaemonConfig.ConfigRelPath,
	}
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// defaultConfigTemplate is written by "rootbridge config init".
const defaultConfigTemplate = `# rootbridge configuration
#
# Unset fields use the defaults shown here.

elevation:
  # session: one root shell per process, consent asked once
  # oneshot: a new "su -c" per command
  # none:    no elevation, for configs readable by this user
  mode: session
  command: su
  # args are inserted before -c (e.g. [sh] for sudo)
  args: []

api:
  base_url: http://127.0.0.1:1004
  # bound on each HTTP request made on the device
  timeout: 3s

daemon_config:
  default_path: /data/adb/modules/mora_perf_deamon/config/config.json
  fallback_paths:
    - /data/adb/modules/mora_perf_deamon/config/config.json
    - /data/adb/modules/mora_perf_daemon/config/config.json
    - /data/adb/modules/mora/config/config.json
    - /data/adb/modules/mora/config.json
  # searched when no fallback path has a token
  module_root: /data/adb/modules
  module_match: mora
  config_relpath: config/config.json

tools:
  http_clients:
    - curl
    - /data/data/com.termux/files/usr/bin/curl
  base64_decoders:
    - base64 -d
    - /system/bin/toybox base64 -d

state:
  # selection database; empty means $XDG_STATE_HOME/rootbridge/selection.db
  file: ""

log:
  # empty disables the operational log file
  file: ""
  level: info
  # empty means $XDG_STATE_HOME/rootbridge/audit.log
  audit: ""

serve:
  # must be a loopback address
  listen: 127.0.0.1:1005
  request_timeout: 30s
`
