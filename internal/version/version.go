package version

import "strings"

// Version information for the havoc CLI.
// These variables can be overridden at build time via -ldflags.

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// VersionString renders the one-line form cobra's --version flag prints:
// the bare version, plus commit/date in parens when either was set at
// build time.
func VersionString() string {
	v := strings.TrimSpace(Version)
	commit := strings.TrimSpace(GitCommit)
	date := strings.TrimSpace(BuildDate)
	if commit == "" && date == "" {
		return v
	}
	switch {
	case commit != "" && date != "":
		return v + " (" + commit + ", " + date + ")"
	case commit != "":
		return v + " (" + commit + ")"
	default:
		return v + " (" + date + ")"
	}
}
