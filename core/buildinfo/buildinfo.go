// Package buildinfo reports the identity of the running binary.
//
// Release builds stamp the values with -ldflags:
//
//	-X 'github.com/villagegaming/storebot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/villagegaming/storebot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/villagegaming/storebot/core/buildinfo.Date=2026-10-01T12:00:00Z'
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// String renders "version (commit, date)". Unstamped builds fall back to
// the VCS data recorded by the Go toolchain, then to "local".
func String() string {
	commit, date := Commit, Date
	if commit == "" {
		commit, date = vcs(date)
	}
	if date == "" {
		return fmt.Sprintf("%s (%s)", Version, commit)
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, date)
}

func vcs(date string) (string, string) {
	commit := "local"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, date
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) > 7 {
				commit = s.Value[:7]
			} else if s.Value != "" {
				commit = s.Value
			}
		case "vcs.time":
			if date == "" {
				date = s.Value
			}
		}
	}
	return commit, date
}
