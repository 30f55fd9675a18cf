// Package daemonconfig locates, reads, and writes the daemon's JSON config
// file on the privileged filesystem.
//
// All file access goes through an executor.Executor; this process never
// opens the file itself.
package daemonconfig

import (
	"strings"

	"github.com/xdg/rootbridge/internal/clog"
)

// DefaultPath is used when no selection has been persisted.
const DefaultPath = "/data/adb/modules/mora_perf_deamon/config/config.json"

// DefaultFallbackPaths are the known install layouts. Module folders have
// shipped as both "deamon" and "daemon", and older builds kept the config
// one level up.
var DefaultFallbackPaths = []string{
	"/data/adb/modules/mora_perf_deamon/config/config.json",
	"/data/adb/modules/mora_perf_daemon/config/config.json",
	"/data/adb/modules/mora/config/config.json",
	"/data/adb/modules/mora/config.json",
}

// Locator tracks which config path is in use.
type Locator struct {
	store       Store
	defaultPath string
	fallbacks   []string
}

// NewLocator creates a Locator. An empty defaultPath means DefaultPath;
// a nil fallbacks slice means DefaultFallbackPaths.
func NewLocator(store Store, defaultPath string, fallbacks []string) *Locator {
	if strings.TrimSpace(defaultPath) == "" {
		defaultPath = DefaultPath
	}
	if fallbacks == nil {
		fallbacks = DefaultFallbackPaths
	}
	return &Locator{
		store:       store,
		defaultPath: defaultPath,
		fallbacks:   append([]string(nil), fallbacks...),
	}
}

// GetPath returns the persisted selection, or the default path if nothing
// is stored or the store cannot be read.
func (l *Locator) GetPath() string {
	path, err := l.store.Get()
	if err != nil {
		clog.Warn("daemonconfig: reading selected path: %v", err)
		return l.defaultPath
	}
	if strings.TrimSpace(path) == "" {
		return l.defaultPath
	}
	return path
}

// SetPath trims and persists path as the new selection.
func (l *Locator) SetPath(path string) error {
	path = strings.TrimSpace(path)
	if err := l.store.Set(path); err != nil {
		return err
	}
	clog.Debug("daemonconfig: selected %s", path)
	return nil
}

// CandidatePaths returns the current selection followed by the fallback
// layouts, without duplicates, in search order.
func (l *Locator) CandidatePaths() []string {
	all := make([]string, 0, len(l.fallbacks)+1)
	all = append(all, l.GetPath())
	all = append(all, l.fallbacks...)
	return dedupe(all)
}

// dedupe drops empty and repeated entries, keeping first occurrences.
func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
