// Package version carries the build metadata the shipdex binary logs at
// startup. Values are stamped via -ldflags "-X .../version.Version=...".
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
