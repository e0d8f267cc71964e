// Package ebisu holds build metadata shared by the command line
// application.
package ebisu

// Version is the version of the ebisu application. It is set from the
// git tag during the build process.
var Version = "v0.1.0+dev"

// Build is the timestamp of the build. It is set during the build
// process.
var Build = "n/a"
