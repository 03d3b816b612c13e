package cmd

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/sprout/internal/config"
	"github.com/Lumos-Labs-HQ/sprout/internal/seeder"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [table[:count]...]",
	Short: "Show the resolved generation plan without creating rows",
	Long: `
Resolve the dependency graph for the requested tables and print the
plan that a generate run would execute: which ancestors get pulled in,
how many rows each table receives, and which entries the baseline
already covers.

Examples:
  sprout plan tb_allocation:10
  sprout plan tb_user:5 tb_order:20`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		noDeps, _ := cmd.Flags().GetBool("no-deps")

		tables, err := loadTables(cfg)
		if err != nil {
			return err
		}

		reqs, err := parseRequests(args, cfg.Seed.DefaultCount, !noDeps)
		if err != nil {
			return err
		}

		s, err := newSeeder(cfg, tables, 0, false)
		if err != nil {
			return err
		}

		plan, err := s.Plan(reqs...)
		if err != nil {
			return err
		}

		printWarnings(s.Warnings())

		color.Cyan("📋 Plan (%d tables, dependency order):", len(plan))
		for i, entry := range plan {
			line := fmt.Sprintf("  %d. %s × %d (%s)", i+1, entry.Table, entry.Count, entry.Source)
			if entry.ReusedFromBaseline > 0 {
				line += fmt.Sprintf(", %d reused from baseline", entry.ReusedFromBaseline)
			}
			if entry.Source == seeder.SourceManual {
				color.Green(line)
			} else {
				color.White(line)
			}
		}

		return nil
	},
}

func init() {
	planCmd.Flags().Bool("no-deps", false, "skip automatic dependency resolution")
	rootCmd.AddCommand(planCmd)
}
