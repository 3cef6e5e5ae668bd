package version

// Populated at build time via -ldflags -X.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the version string, git commit, and build date.
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}
