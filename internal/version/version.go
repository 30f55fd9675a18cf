// Package version provides version information for rootbridge.
// The Version variable is set at build time via ldflags.
package version

import "runtime/debug"

// Version is the current version of rootbridge.
// Set at build time via: -ldflags "-X github.com/xdg/rootbridge/internal/version.Version=v1.0.0"
// Defaults to "dev" for development builds.
var Version = "dev"

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// String returns Version, or the module version recorded by "go install"
// when Version was not set at build time.
func String() string {
	if Version != "dev" {
		return Version
	}
	info, ok := readBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return Version
	}
	return info.Main.Version
}
