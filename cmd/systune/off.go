package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// offCmd reverts the system to its pre-tuned baseline.
var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Deactivate the current profile and restore pre-tuned values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runOff(cmd)
	},
}

func init() {
	rootCmd.AddCommand(offCmd)
}

func runOff(cmd *cobra.Command) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}

	result, err := eng.controller.Deactivate(cmd.Context())
	if err != nil {
		return err
	}

	if result.Applied == 0 {
		fmt.Println("No profile was active.")
		return nil
	}
	fmt.Printf("Profile deactivated: %d settings restored.\n", result.Applied)
	return nil
}
