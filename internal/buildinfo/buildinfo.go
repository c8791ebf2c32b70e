// Package buildinfo exposes build metadata injected at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/storefront/internal/buildinfo.Version=v1.2.0"
package buildinfo

import (
	"cmp"
	"fmt"
	"io"
)

var (
	Version string
	Date    string
	Commit  string
)

// PrintBuildData writes version, date and commit to w, using "N/A" for
// values that were not set at build time.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", cmp.Or(Version, "N/A"))
	fmt.Fprintf(w, "Build date: %s\n", cmp.Or(Date, "N/A"))
	fmt.Fprintf(w, "Build commit: %s\n", cmp.Or(Commit, "N/A"))
}
