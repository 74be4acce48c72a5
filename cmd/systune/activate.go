package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/systune-dev/systune/internal/apperrors"
)

// activateCmd switches the system to the named profile.
var activateCmd = &cobra.Command{
	Use:   "activate <profile>",
	Short: "Activate a tuning profile",
	Long: `Resolve the profile's inheritance chain, snapshot the current values of
every setting about to change, apply the resolved settings, and durably
record the switch. On a write failure the already-applied settings are
restored and the previous record stays in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runActivate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(activateCmd)
}

func runActivate(cmd *cobra.Command, id string) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}

	// A typo'd id should fail as NotFound, not as a validation error for
	// some unrelated broken definition.
	if !eng.store.Has(id) {
		return apperrors.NewNotFoundError(id)
	}

	// Validate the whole store up front so a broken definition fails the
	// switch before any system state is touched.
	if err := eng.store.Validate(eng.registry); err != nil {
		return err
	}

	result, err := eng.controller.Activate(cmd.Context(), id)
	if err != nil {
		return err
	}

	for _, key := range result.Skipped {
		slog.Warn("setting not supported on this host, skipped", "key", key)
	}
	fmt.Printf("Switched to profile: %s (%d settings applied)\n", result.Profile, result.Applied)
	return nil
}
