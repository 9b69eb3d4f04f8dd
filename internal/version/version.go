// Package version carries build metadata stamped in with -ldflags -X.
package version

var (
	// Version is the showc release.
	Version = "dev"
	// GitSHA is the commit showc was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)
