// Package version exposes the build-time version string.
package version

// version is stamped at build time via -ldflags; see the magefile.
var version = "v0.0.0"

// Value returns the version the binary was built with.
func Value() string {
	return version
}
