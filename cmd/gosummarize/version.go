package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperifyio/gosummarize/internal/app"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("gosummarize version %s (commit %s, built %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
