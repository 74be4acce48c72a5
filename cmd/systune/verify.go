package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/systune-dev/systune/internal/output"
)

var verifyFormat string

// verifyCmd compares live settings against the active profile.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify live settings match the active profile",
	Long: `Re-resolve the active profile and compare each setting's live value with
the value the profile prescribes. Exits non-zero when any setting differs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runVerify(cmd)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyFormat, "format", "table", "Output format: table, json, yaml")
}

func runVerify(cmd *cobra.Command) error {
	format, err := output.ParseFormat(verifyFormat)
	if err != nil {
		return err
	}

	eng, err := buildEngine()
	if err != nil {
		return err
	}

	if err := eng.store.Validate(eng.registry); err != nil {
		return err
	}

	report, err := eng.controller.Verify(cmd.Context())
	if err != nil {
		return err
	}

	if err := output.New(format, os.Stdout).FormatVerify(report); err != nil {
		return err
	}

	if !report.OK() {
		return fmt.Errorf("%d settings differ from profile %s", len(report.Mismatches), report.Profile)
	}
	return nil
}
