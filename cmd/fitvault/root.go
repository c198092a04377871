package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fitvault/fitvault/internal/app"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "fitvault",
	Short: "fitvault tracks meals, photos, and progress with encrypted local storage",
	Long: "fitvault is a local-first fitness tracker. Photos are encrypted at rest " +
		"with a device-held key; macros, measurements, and gamification state are " +
		"kept in local JSON files.",
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
}

// withApp builds the full application, runs fn, and tears it down.
func withApp(run func(*app.App) error) error {
	a, err := app.New(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return run(a)
}
