// Package version holds build-time version information injected via ldflags.
package version

var (
	// Version is the semantic version of this build
	Version = "dev"

	// Commit is the git commit hash this binary was built from
	Commit = "none"

	// BuildTime is the timestamp of the build
	BuildTime = "unknown"
)
