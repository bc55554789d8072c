package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set at build time via ldflags, e.g.
// -ldflags "-X main.version=v1.0.0 -X main.commit=abc1234".
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildInfo describes the binary: release version, VCS commit, and build
// timestamp.
type buildInfo struct {
	version string
	commit  string
	date    string
}

// readBuildInfo resolves the binary's build metadata in one pass over the
// module information the Go toolchain embeds. ldflags values take
// precedence; missing fields fall back to "(devel)" and "unknown".
func readBuildInfo() buildInfo {
	info := buildInfo{version: version, commit: commit, date: date}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.version == "" {
			info.version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.commit == "" {
					info.commit = shortHash(s.Value)
				}
			case "vcs.time":
				if info.date == "" {
					info.date = s.Value
				}
			}
		}
	}

	if info.version == "" {
		info.version = "(devel)"
	}
	if info.commit == "" {
		info.commit = "unknown"
	}
	if info.date == "" {
		info.date = "unknown"
	}
	return info
}

// shortHash truncates a full VCS revision to the familiar 7-character form.
func shortHash(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// getVersion returns the version string shown by --version and embedded
// in JSON reports.
func getVersion() string {
	return readBuildInfo().version
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of gridscan.`,
		Run: func(cmd *cobra.Command, _ []string) {
			info := readBuildInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "gridscan version %s\n  commit: %s\n  built:  %s\n",
				info.version, info.commit, info.date)
		},
	}
}
