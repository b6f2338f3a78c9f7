// Package version holds the build version.
package version

// Version is the semantic version of the gatherly server.
var Version = "0.1.0"

// DevVersion is the version suffix used in dev mode.
var DevVersion = Version + "-dev"

// GetCurrentVersion returns the version for the given mode.
func GetCurrentVersion(mode string) string {
	if mode == "dev" {
		return DevVersion
	}
	return Version
}
