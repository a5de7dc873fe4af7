// Package version holds build metadata injected with -ldflags, e.g.
// go build -ldflags "-X git.home.luguber.info/inful/crosspy/internal/version.Version=v0.3.0".
package version

import "fmt"

// Version is the release tag of the binary.
var Version = "unknown"

// Build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the line printed by `crosspy --version`.
func String() string {
	return fmt.Sprintf("crosspy %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
