// Package version holds build version information.
package version

import "fmt"

// Set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// String returns the full version string.
func String() string {
	return fmt.Sprintf("fabrictl %s (%s)", Version, GitCommit)
}
