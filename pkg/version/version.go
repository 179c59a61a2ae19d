package version

var (
	// Version is the version of powersaver, set at build time.
	Version = "v0.0.0-dev"
	// GitCommit is the commit powersaver was built from, set at build time.
	GitCommit = "unknown"
)
