package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// orDefault returns s if non-empty, otherwise def (cmp.Or equivalent for go1.21).
func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version/build metadata",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Build version: %s\n", orDefault(version, "N/A"))
		fmt.Fprintf(cmd.OutOrStdout(), "Build date: %s\n", orDefault(buildDate, "N/A"))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
