// Package buildinfo holds version information injected at build time:
//
//	go build -ldflags "-X github.com/matzehuels/taskgraph/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/taskgraph/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/taskgraph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns version, commit and build date on separate lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template is the cobra --version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// UserAgent identifies taskgraph in outbound HTTP requests.
func UserAgent() string {
	return "taskgraph/" + Version
}
