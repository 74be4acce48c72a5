package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systune-dev/systune/internal/recommend"
)

// recommendCmd suggests a profile for this host.
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend a profile for this host",
	Long: `Inspect the host (virtualization role, primarily) and print the profile
best suited to it. The recommendation is advisory; nothing is activated.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Println(recommend.Recommend(cmd.Context()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
}
