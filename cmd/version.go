package cmd

import (
	"fmt"

	"github.com/flanksource/clicky"
	"github.com/spf13/cobra"
)

// getVersionInfo is set by main via SetVersionInfo.
var getVersionInfo func() (version, commit, date string, dirty bool)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long: `Print the version information including:
- Version number (from git tags)
- Git commit hash
- Build date and time
- Repository status (clean/dirty)`,
	Run: func(cmd *cobra.Command, args []string) {
		vInfo := VersionInfo{Program: "reachgrep"}

		if getVersionInfo != nil {
			version, commit, date, isDirty := getVersionInfo()
			status := "clean"
			if isDirty {
				status = "dirty"
			}
			vInfo.Version = version
			vInfo.Commit = commit
			vInfo.Built = date
			vInfo.Status = status
		} else {
			vInfo.Version = "dev"
			vInfo.Commit = "unknown"
			vInfo.Built = "unknown"
			vInfo.Status = "unknown"
		}

		output, err := clicky.Format(vInfo)
		if err != nil {
			fmt.Printf("reachgrep version %s (commit: %s, built: %s, %s)\n",
				vInfo.Version, vInfo.Commit, vInfo.Built, vInfo.Status)
			return
		}
		fmt.Print(output)
	},
}

// SetVersionInfo sets the version information function, called from main.
func SetVersionInfo(fn func() (string, string, string, bool)) {
	getVersionInfo = fn
}
