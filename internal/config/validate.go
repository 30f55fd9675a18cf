package config

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// validLogLevels defines the allowed log level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validModes = map[string]bool{
	ModeSession: true,
	ModeOneShot: true,
	ModeNone:    true,
}

// Validate checks that all fields of s contain valid values. It validates:
//   - elevation.mode is session, oneshot, or none, with a command unless none
//   - api.base_url is an http(s) URL without a path
//   - api.timeout and serve.request_timeout are positive durations
//   - daemon config paths are absolute
//   - tool lists contain no empty entries
//   - log.level is one of: debug, info, warn, error (if non-empty)
//   - serve.listen is a loopback host:port
//
// Returns nil if the settings are valid, or an error naming the invalid
// field.
func (s *Settings) Validate() error {
	if s.Elevation.Mode != "" && !validModes[s.Elevation.Mode] {
		return fmt.Errorf("elevation.mode: invalid value %q, must be one of: session, oneshot, none", s.Elevation.Mode)
	}
	if s.Elevation.Mode != ModeNone && strings.TrimSpace(s.Elevation.Command) == "" {
		return fmt.Errorf("elevation.command: required when mode is %q", s.Elevation.Mode)
	}

	if s.API.BaseURL != "" {
		if err := validateBaseURL(s.API.BaseURL, "api.base_url"); err != nil {
			return err
		}
	}
	if s.API.Timeout != "" {
		if err := validateDuration(s.API.Timeout, "api.timeout"); err != nil {
			return err
		}
	}

	if s.DaemonConfig.DefaultPath != "" {
		if err := validateAbsPath(s.DaemonConfig.DefaultPath, "daemon_config.default_path"); err != nil {
			return err
		}
	}
	for i, p := range s.DaemonConfig.FallbackPaths {
		if err := validateAbsPath(p, fmt.Sprintf("daemon_config.fallback_paths[%d]", i)); err != nil {
			return err
		}
	}
	if s.DaemonConfig.ModuleRoot != "" {
		if err := validateAbsPath(s.DaemonConfig.ModuleRoot, "daemon_config.module_root"); err != nil {
			return err
		}
	}
	if path.IsAbs(s.DaemonConfig.ConfigRelPath) {
		return fmt.Errorf("daemon_config.config_relpath: must be relative, got %q", s.DaemonConfig.ConfigRelPath)
	}

	if err := validateList(s.Tools.HTTPClients, "tools.http_clients"); err != nil {
		return err
	}
	if err := validateList(s.Tools.Base64Decoders, "tools.base64_decoders"); err != nil {
		return err
	}

	if s.Log.Level != "" && !validLogLevels[s.Log.Level] {
		return fmt.Errorf("log.level: invalid value %q, must be one of: debug, info, warn, error", s.Log.Level)
	}

	if s.Serve.Listen != "" {
		if err := validateLoopbackAddr(s.Serve.Listen, "serve.listen"); err != nil {
			return err
		}
	}
	if s.Serve.RequestTimeout != "" {
		if err := validateDuration(s.Serve.RequestTimeout, "serve.request_timeout"); err != nil {
			return err
		}
	}

	return nil
}

// validateListenAddr validates a listen address in the format "host:port".
// Port must be in the range 1-65535.
func validateListenAddr(addr, field string) error {
	colonIdx := strings.LastIndex(addr, ":")
	if colonIdx == -1 {
		return fmt.Errorf("%s: invalid format %q, expected host:port", field, addr)
	}

	portStr := addr[colonIdx+1:]
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("%s: invalid port %q in %q", field, portStr, addr)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s: invalid port number %d, must be 1-65535", field, port)
	}

	return nil
}

// validateLoopbackAddr validates a listen address and requires a loopback
// host. The endpoint hands out the daemon token, so it must not be
// reachable from other machines.
func validateLoopbackAddr(addr, field string) error {
	if err := validateListenAddr(addr, field); err != nil {
		return err
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%s: invalid address %q: %v", field, addr, err)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("%s: host %q is not a loopback address", field, host)
	}
	return nil
}

// validateDuration validates that a duration string parses and is positive.
func validateDuration(d, field string) error {
	parsed, err := time.ParseDuration(d)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", field, d)
	}
	if parsed <= 0 {
		return fmt.Errorf("%s: must be positive, got %q", field, d)
	}
	return nil
}

func validateBaseURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid URL %q: %v", field, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: scheme must be http or https, got %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: missing host in %q", field, raw)
	}
	if strings.Trim(u.Path, "/") != "" || u.RawQuery != "" {
		return fmt.Errorf("%s: must not include a path or query, got %q", field, raw)
	}
	return nil
}

// validateAbsPath requires an absolute device path. Paths are on the
// device, so "/" separators are used regardless of host OS.
func validateAbsPath(p, field string) error {
	if !path.IsAbs(p) {
		return fmt.Errorf("%s: must be an absolute path, got %q", field, p)
	}
	return nil
}

func validateList(items []string, field string) error {
	for i, item := range items {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("%s[%d]: must not be empty", field, i)
		}
	}
	return nil
}
