package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Lumos-Labs-HQ/sprout/internal/config"
	"github.com/Lumos-Labs-HQ/sprout/internal/seeder"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Inspect and validate the seed-common baseline",
}

var baselineValidateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate the baseline declaration against the schema",
	Long: `
Load the baseline declaration for the current environment and check
every foreign-key value in it: each must be an instance number inside
the baseline range and point at a record the baseline actually
declares.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) == 1 {
			cfg.BaselineDir = args[0]
		}

		tables, err := loadTables(cfg)
		if err != nil {
			return err
		}

		ranges := seeder.NewRanges(cfg.Ranges.BaselineMax, cfg.Ranges.TestMax)
		baseline, err := seeder.LoadBaselineDir(cfg.BaselineDir, ranges)
		if err != nil {
			return fmt.Errorf("failed to load baseline: %w", err)
		}

		if err := baseline.Validate(tables); err != nil {
			var verr *seeder.BaselineValidationError
			if errors.As(err, &verr) {
				color.Red("❌ Baseline validation failed:")
				for _, p := range verr.Problems {
					color.White("  • %s", p)
				}
			}
			return err
		}

		color.Green("✅ Baseline is valid")
		return nil
	},
}

var baselineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the tables and counts the baseline covers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ranges := seeder.NewRanges(cfg.Ranges.BaselineMax, cfg.Ranges.TestMax)
		baseline, err := seeder.LoadBaselineDir(cfg.BaselineDir, ranges)
		if err != nil {
			return fmt.Errorf("failed to load baseline: %w", err)
		}

		counts := baseline.Counts()
		names := make([]string, 0, len(counts))
		for table := range counts {
			names = append(names, table)
		}
		sort.Strings(names)

		color.Cyan("📦 Baseline (%s range):", baseline.Ranges().Baseline)
		for _, table := range names {
			color.White("  %s: %d records", color.GreenString(table), counts[table])
		}
		return nil
	},
}

func init() {
	baselineCmd.AddCommand(baselineValidateCmd)
	baselineCmd.AddCommand(baselineShowCmd)
	rootCmd.AddCommand(baselineCmd)
}
