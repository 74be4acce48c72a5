package main

import (
	"fmt"
	"os"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cobra"

	"github.com/systune-dev/systune/internal/config"
	"github.com/systune-dev/systune/internal/output"
)

var (
	listFormat string
	listFilter string
)

// profileEnv exposes profile metadata for filter expressions.
type profileEnv struct {
	ID      string `expr:"id"`
	Summary string `expr:"summary"`
	Parent  string `expr:"parent"`
}

// listCmd prints all available profiles and the active one.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available tuning profiles",
	Long: `List every profile found in the profile directories together with the
currently active profile.

Filtering:
  --filter "id startsWith 'network'"   Select profiles by expression
  --filter "parent == 'balanced'"      Profiles inheriting from balanced`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runList()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listFormat, "format", "table", "Output format: table, json, yaml")
	listCmd.Flags().StringVar(&listFilter, "filter", "", "Filter expression over id, summary, parent")
}

func runList() error {
	format, err := output.ParseFormat(listFormat)
	if err != nil {
		return err
	}

	var program *vm.Program
	if listFilter != "" {
		program, err = expr.Compile(listFilter, expr.Env(profileEnv{}), expr.AsBool())
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
	}

	eng, err := buildEngine()
	if err != nil {
		return err
	}

	profiles := eng.store.List()
	if program != nil {
		profiles, err = filterProfiles(profiles, program)
		if err != nil {
			return err
		}
	}

	rec, err := eng.controller.Active()
	if err != nil {
		return err
	}

	return output.New(format, os.Stdout).FormatList(profiles, rec.Profile)
}

// filterProfiles keeps the summaries for which the compiled expression is true.
func filterProfiles(profiles []config.Summary, program *vm.Program) ([]config.Summary, error) {
	var selected []config.Summary
	for _, p := range profiles {
		result, err := expr.Run(program, profileEnv{ID: p.ID, Summary: p.Summary, Parent: p.Parent})
		if err != nil {
			return nil, fmt.Errorf("filter evaluation failed for %s: %w", p.ID, err)
		}
		if keep, ok := result.(bool); ok && keep {
			selected = append(selected, p)
		}
	}
	return selected, nil
}
