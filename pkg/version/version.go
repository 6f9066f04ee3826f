// Package version exposes the build metadata stamped into the stacklight
// binary.
package version

import "runtime"

// The first three values are overridden with -ldflags at release build time;
// their defaults mark a local development build.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	// GoVersion is the toolchain the binary was compiled with.
	GoVersion = runtime.Version()
)
