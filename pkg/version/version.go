// Package version holds the build version, overridden at link time with
// -ldflags "-X apexgo/pkg/version.Version=...".
package version

// Version is the application version.
var Version = "v0.4.2"
