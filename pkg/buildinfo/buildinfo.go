// Package buildinfo carries version metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/matzehuels/quizgrid/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/quizgrid/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/quizgrid/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build metadata reported by /healthz and `quizgrid --version`.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the stamped metadata. Unstamped dev builds fall back to the
// VCS revision recorded by the Go toolchain, when present.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	if info.Commit != "none" {
		return info
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.Commit = s.Value
			case "vcs.time":
				info.Date = s.Value
			}
		}
	}
	return info
}

// String formats the metadata on one line.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.Commit, i.Date)
}

// Template is the cobra version template.
func Template() string {
	return "{{.Name}} " + Get().String() + "\n"
}
