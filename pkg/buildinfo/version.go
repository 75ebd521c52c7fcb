// Package buildinfo carries the version stamp baked into the lair binary.
//
// Release builds inject the values with ldflags:
//
//	go build -ldflags "-X github.com/Kiiyya/lair/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/Kiiyya/lair/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/Kiiyya/lair/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Without the flags a binary reports itself as a dev build.
package buildinfo

import "fmt"

var (
	// Version is the release tag, or "dev" for local builds.
	Version = "dev"

	// Commit is the git revision the binary was built from.
	Commit = "none"

	// Date is the UTC build timestamp.
	Date = "unknown"
)

// String renders the stamp for plain output.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template is the cobra version template for the root command.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
