// Package version reports build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
)

const ProgramName = "agg"

// Set at build time, e.g.
// -ldflags "-X github.com/sanspareilsmyn/agg/internal/version.Version=1.2.0"
var (
	Version    = "dev"
	CommitHash = ""
	BuildDate  = ""
)

// String creates the full version string printed by --version.
func String() string {
	date := BuildDate
	if date == "" {
		date = "unknown"
	}
	commit := CommitHash
	if commit == "" {
		commit = "unknown"
	}

	return fmt.Sprintf("%s %s/%s\n\nBuild Date: %s\nCommit: %s\nBuilt with: %s",
		Version, runtime.GOOS, runtime.GOARCH, date, commit, runtime.Version())
}

// Dependencies returns a sorted dependency list on the format path="version".
func Dependencies() []string {
	var deps []string

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return deps
	}
	for _, dep := range bi.Deps {
		deps = append(deps, fmt.Sprintf("%s=%q", dep.Path, dep.Version))
	}
	sort.Strings(deps)

	return deps
}

// DepString renders Dependencies as a titled block.
func DepString() string {
	return "Dependencies:\n\n" + strings.Join(Dependencies(), "\n")
}
