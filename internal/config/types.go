// Package config provides rootbridge's settings file. Settings map to
// ~/.config/rootbridge/config.yaml.
package config

// Settings represents the top-level rootbridge configuration.
type Settings struct {
	Elevation    ElevationConfig    `yaml:"elevation,omitempty"`
	API          APIConfig          `yaml:"api,omitempty"`
	DaemonConfig DaemonConfigConfig `yaml:"daemon_config,omitempty"`
	Tools        ToolsConfig        `yaml:"tools,omitempty"`
	State        StateConfig        `yaml:"state,omitempty"`
	Log          LogConfig          `yaml:"log,omitempty"`
	Serve        ServeConfig        `yaml:"serve,omitempty"`
}

// Elevation modes.
const (
	// ModeSession keeps one elevated shell for the life of the process.
	ModeSession = "session"
	// ModeOneShot starts an elevated shell for every command.
	ModeOneShot = "oneshot"
	// ModeNone runs commands unprivileged in an in-process shell.
	ModeNone = "none"
)

// ElevationConfig selects how commands gain root.
type ElevationConfig struct {
	Mode    string   `yaml:"mode,omitempty"`
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// APIConfig describes the daemon's HTTP API.
type APIConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	Timeout string `yaml:"timeout,omitempty"`
}

// DaemonConfigConfig lists where the daemon's JSON config may live.
type DaemonConfigConfig struct {
	DefaultPath   string   `yaml:"default_path,omitempty"`
	FallbackPaths []string `yaml:"fallback_paths,omitempty"`
	ModuleRoot    string   `yaml:"module_root,omitempty"`
	ModuleMatch   string   `yaml:"module_match,omitempty"`
	ConfigRelPath string   `yaml:"config_relpath,omitempty"`
}

// ToolsConfig lists on-device binaries, tried in order.
type ToolsConfig struct {
	HTTPClients    []string `yaml:"http_clients,omitempty"`
	Base64Decoders []string `yaml:"base64_decoders,omitempty"`
}

// StateConfig locates local state.
type StateConfig struct {
	// File is the selection database. Empty means the XDG state dir.
	File string `yaml:"file,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	File  string `yaml:"file,omitempty"`
	Level string `yaml:"level,omitempty"`
	Audit string `yaml:"audit,omitempty"`
}

// ServeConfig contains settings for the loopback bridge endpoint.
type ServeConfig struct {
	Listen         string `yaml:"listen,omitempty"`
	RequestTimeout string `yaml:"request_timeout,omitempty"`
}
