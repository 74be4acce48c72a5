package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/systune-dev/systune/internal/output"
)

var activeFormat string

// activeCmd prints the currently active profile.
var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "Show the currently active profile",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runActive()
	},
}

func init() {
	rootCmd.AddCommand(activeCmd)

	activeCmd.Flags().StringVar(&activeFormat, "format", "table", "Output format: table, json, yaml")
}

func runActive() error {
	format, err := output.ParseFormat(activeFormat)
	if err != nil {
		return err
	}

	cfg, err := loadSystemConfig()
	if err != nil {
		return err
	}

	// The active record can be read without loading any profiles.
	tracker := trackerFor(cfg)
	rec, err := tracker.Load()
	if err != nil {
		return err
	}

	return output.New(format, os.Stdout).FormatActive(rec.Profile)
}
