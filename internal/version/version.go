// Package version provides build version information.
package version

// Version is the current version of unreal-dap.
const Version = "0.2.0"
