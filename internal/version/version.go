// Package version holds build metadata stamped at link time:
//
//	go build -ldflags "-X github.com/banshee-data/wifiprep/internal/version.Version=0.2.0 \
//	  -X github.com/banshee-data/wifiprep/internal/version.BuildTime=$(date -u +%FT%TZ)"
package version

import "fmt"

var (
	// Version is the release version of the tool
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the stamped values for the version subcommand.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitSHA, BuildTime)
}
