package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	dir := filepath.Join(tmpDir, "rootbridge")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatalf("os.MkdirAll() error = %v", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}
	return path
}

func TestLoadSettings_Missing(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.Elevation.Mode != ModeSession || s.Elevation.Command != "su" {
		t.Errorf("elevation = %+v", s.Elevation)
	}
	if s.API.BaseURL != "http://127.0.0.1:1004" {
		t.Errorf("api.base_url = %q", s.API.BaseURL)
	}
	if s.APITimeout() != 3*time.Second {
		t.Errorf("APITimeout() = %v", s.APITimeout())
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "rootbridge", "config.yaml")); !os.IsNotExist(err) {
		t.Error("LoadSettings() must not create the settings file")
	}
}

func TestLoadSettings_PartialFileGetsDefaults(t *testing.T) {
	writeSettings(t, `
elevation:
  mode: oneshot
daemon_config:
  fallback_paths:
    - /data/adb/modules/custom/config.json
log:
  level: debug
  audit: ~/rootbridge-audit.log
`)

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.Elevation.Mode != ModeOneShot || s.Elevation.Command != "su" {
		t.Errorf("elevation = %+v", s.Elevation)
	}
	if !reflect.DeepEqual(s.DaemonConfig.FallbackPaths, []string{"/data/adb/modules/custom/config.json"}) {
		t.Errorf("fallback_paths should replace defaults, got %v", s.DaemonConfig.FallbackPaths)
	}
	if s.DaemonConfig.DefaultPath != "/data/adb/modules/mora_perf_deamon/config/config.json" {
		t.Errorf("default_path = %q", s.DaemonConfig.DefaultPath)
	}
	if len(s.Tools.HTTPClients) != 2 {
		t.Errorf("http_clients = %v", s.Tools.HTTPClients)
	}
	if s.Log.Level != "debug" {
		t.Errorf("log.level = %q", s.Log.Level)
	}
	if strings.HasPrefix(s.Log.Audit, "~") {
		t.Errorf("log.audit not expanded: %q", s.Log.Audit)
	}
}

func TestLoadSettings_UnknownField(t *testing.T) {
	writeSettings(t, "elevation:\n  mdoe: session\n")

	_, err := LoadSettings()
	if err == nil {
		t.Fatal("LoadSettings() should reject unknown fields")
	}
	if !strings.Contains(err.Error(), "mdoe") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	writeSettings(t, "serve:\n  listen: 0.0.0.0:1005\n")

	_, err := LoadSettings()
	if err == nil || !strings.Contains(err.Error(), "serve.listen") {
		t.Errorf("LoadSettings() error = %v, want serve.listen error", err)
	}
}

func TestLoadSettings_Empty(t *testing.T) {
	writeSettings(t, "")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.Serve.Listen != "127.0.0.1:1005" || s.RequestTimeout() != 30*time.Second {
		t.Errorf("serve = %+v", s.Serve)
	}
}

func TestDefaultTemplate_MatchesDefaults(t *testing.T) {
	s, err := ParseSettings([]byte(defaultConfigTemplate))
	if err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	applyDefaults(s)
	if err := s.Validate(); err != nil {
		t.Fatalf("template does not validate: %v", err)
	}

	d := DefaultSettings()
	if !reflect.DeepEqual(s.DaemonConfig, d.DaemonConfig) {
		t.Errorf("daemon_config =\n  %+v\nwant\n  %+v", s.DaemonConfig, d.DaemonConfig)
	}
	if !reflect.DeepEqual(s.Tools, d.Tools) {
		t.Errorf("tools = %+v, want %+v", s.Tools, d.Tools)
	}
	if s.API != d.API || s.Serve != d.Serve || s.Log != d.Log {
		t.Errorf("template and DefaultSettings disagree: %+v vs %+v", s, d)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	created, err := WriteDefaultConfig()
	if err != nil || !created {
		t.Fatalf("WriteDefaultConfig() = %v, %v", created, err)
	}
	info, err := os.Stat(SettingsPath())
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions = %o, want 600", info.Mode().Perm())
	}

	created, err = WriteDefaultConfig()
	if err != nil || created {
		t.Errorf("second WriteDefaultConfig() = %v, %v, want no overwrite", created, err)
	}
}

func TestWriteSettings_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	s := DefaultSettings()
	s.Elevation = ElevationConfig{Mode: ModeOneShot, Command: "sudo", Args: []string{"sh"}}
	if err := WriteSettings(s); err != nil {
		t.Fatalf("WriteSettings() error = %v", err)
	}

	loaded, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if !reflect.DeepEqual(loaded.Elevation, s.Elevation) {
		t.Errorf("elevation = %+v, want %+v", loaded.Elevation, s.Elevation)
	}
}

func TestSettingsPaths(t *testing.T) {
	s := DefaultSettings()
	if got := s.StateFile("/state"); got != "/state/selection.db" {
		t.Errorf("StateFile() = %q", got)
	}
	if got := s.AuditFile("/state"); got != "/state/audit.log" {
		t.Errorf("AuditFile() = %q", got)
	}
	s.State.File = "/custom/sel.db"
	if got := s.StateFile("/state"); got != "/custom/sel.db" {
		t.Errorf("StateFile() = %q", got)
	}
	if d := s.Discovery(); d.ModuleRoot != "/data/adb/modules" || d.Match != "mora" {
		t.Errorf("Discovery() = %+v", d)
	}
}
