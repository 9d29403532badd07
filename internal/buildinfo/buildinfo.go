// Package buildinfo exposes values stamped in at link time:
//
//	go build -ldflags "-X github.com/worldacross/membership/internal/buildinfo.Version=v1.2.0 \
//	  -X github.com/worldacross/membership/internal/buildinfo.Mode=development"
package buildinfo

import (
	"fmt"
	"io"
)

const notAvailable = "N/A"

var (
	Version = notAvailable
	Commit  = notAvailable
	Date    = notAvailable
	// Mode is "development" or "production".
	Mode = "production"
)

// DevMode reports whether the binary was built in development mode.
// Development builds skip the startup auth check by default.
func DevMode() bool {
	return Mode == "development"
}

// PrintBuildData writes the build banner to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", Date)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
	if DevMode() {
		fmt.Fprintln(w, "Build mode: development")
	}
}
