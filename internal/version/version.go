// Package version reports the build identity of ssdpctl.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Version and Commit can be set at build time via ldflags:
//
//	go build -ldflags="-X github.com/muurk/ssdp/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/ssdp/internal/version.Commit=abc123"
//
// Otherwise they are filled from the VCS stamp in the binary, or fall back
// to a "dev" version with a timestamp.
var (
	// Version is the semantic version of the application
	Version = ""
	// Commit is the git commit hash
	Commit = ""
)

func init() {
	if Version == "" || Commit == "" {
		info, ok := debug.ReadBuildInfo()
		if ok {
			apply(info.Settings)
		}
	}

	if Version == "" {
		Version = fmt.Sprintf("dev-%s", time.Now().Format("20060102-150405"))
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// apply fills Version and Commit from the vcs.* build settings
func apply(settings []debug.BuildSetting) {
	var revision, modified, vcsTime string
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			vcsTime = s.Value
		}
	}

	if Commit == "" && revision != "" {
		Commit = revision
		if len(Commit) > 7 {
			Commit = Commit[:7]
		}
		if modified == "true" {
			Commit += "-dirty"
		}
	}

	// Build info carries no tags, so the best we can do is the commit date
	if Version == "" && vcsTime != "" {
		if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
			Version = fmt.Sprintf("dev-%s", t.Format("20060102"))
		}
	}
}

// Full returns the version string including commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// Platform returns the Go toolchain and target the binary was built for,
// e.g. "go1.24.0 linux/amd64".
func Platform() string {
	return fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
