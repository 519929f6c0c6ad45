package main

import (
	"github.com/flanksource/reachgrep/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	dirty   = "unknown"
)

func main() {
	cmd.SetVersionInfo(GetVersionInfo)
	cmd.Execute()
}

// GetVersionInfo returns version information for use by the cmd package.
func GetVersionInfo() (string, string, string, bool) {
	isDirty := dirty == "true"
	versionStr := version
	if isDirty {
		versionStr += "-dirty"
	}
	return versionStr, commit, date, isDirty
}
