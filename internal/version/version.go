// Package version reports build metadata for the taskgate binary.
package version

import "fmt"

// Set at build time via -ldflags "-X github.com/example/taskgate/internal/version.Commit=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String renders the version for `taskgate version` and trace resources.
func String() string {
	return fmt.Sprintf("taskgate %s (commit: %s, built: %s)", Version, shortCommit(), BuildTime)
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
