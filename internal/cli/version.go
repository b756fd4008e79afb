package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time. A plain `go install` leaves them unset and
// buildVersion falls back to the module and VCS stamps.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		v, commit, date := buildVersion()
		fmt.Fprintf(cmd.OutOrStdout(), "neurodose %s\n  commit: %s\n  built:  %s\n  go:     %s\n",
			v, commit, date, runtime.Version())
	},
}

func buildVersion() (version, commit, date string) {
	version, commit, date = Version, Commit, BuildDate
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && commit == "unknown":
			commit = s.Value
			if len(commit) > 12 {
				commit = commit[:12]
			}
		case s.Key == "vcs.time" && date == "unknown":
			date = s.Value
		}
	}
	return
}

// VersionString is the version reported by /api/health.
func VersionString() string {
	v, commit, _ := buildVersion()
	return fmt.Sprintf("%s (%s)", v, commit)
}
