// Package version carries the build identity stamped in at compile time:
//
//	go build -ldflags "-X github.com/kbukum/transcriptor/version.Version=1.2.0"
package version

import (
	"fmt"
	"runtime/debug"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info returns a single-line human-readable version string.
func Info() string {
	s := "transcriptor " + Version
	if GitCommit != "" {
		s += fmt.Sprintf(" (%s)", shortCommit())
	}
	if BuildTime != "" {
		s += " built " + BuildTime
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		s += " " + bi.GoVersion
	}
	return s
}

func shortCommit() string {
	if len(GitCommit) > 8 {
		return GitCommit[:8]
	}
	return GitCommit
}
