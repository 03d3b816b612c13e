package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Lumos-Labs-HQ/sprout/internal/config"
	"github.com/Lumos-Labs-HQ/sprout/internal/database"
	"github.com/Lumos-Labs-HQ/sprout/internal/schema"
	"github.com/Lumos-Labs-HQ/sprout/internal/seeder"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [table[:count]...]",
	Short: "Generate seed rows for the given tables and their dependencies",
	Long: `
Generate seed rows for one or more tables. Every foreign-key ancestor
is resolved automatically and ordered so parents are created before
children. Baseline data is reused where it already covers an ancestor.

Examples:
  sprout generate tb_allocation:10         # 10 allocations plus ancestors
  sprout generate tb_user:5 tb_order:20    # multiple targets in one run
  sprout generate tb_order:5 --no-deps     # no ancestor resolution
  sprout generate tb_order:5 --out seeds.yaml
  sprout generate tb_order:5 --insert      # write straight to the database`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		noDeps, _ := cmd.Flags().GetBool("no-deps")
		outPath, _ := cmd.Flags().GetString("out")
		insert, _ := cmd.Flags().GetBool("insert")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		seed, _ := cmd.Flags().GetInt64("seed")
		depCounts, _ := cmd.Flags().GetStringSlice("deps-count")
		if baselineDir, _ := cmd.Flags().GetString("baseline"); baselineDir != "" {
			cfg.BaselineDir = baselineDir
		}

		tables, err := loadTables(cfg)
		if err != nil {
			return err
		}

		reqs, err := parseRequests(args, cfg.Seed.DefaultCount, !noDeps)
		if err != nil {
			return err
		}
		deps, err := parseDepCounts(depCounts)
		if err != nil {
			return err
		}
		for i := range reqs {
			reqs[i].Deps = deps
		}

		s, err := newSeeder(cfg, tables, seed, cmd.Flags().Changed("seed"))
		if err != nil {
			return err
		}

		seeds, err := s.Generate(reqs...)
		if err != nil {
			return err
		}

		printWarnings(seeds.Warnings)

		total := 0
		for _, batch := range seeds.Batches {
			total += len(batch.Rows)
			color.White("  %s: %d rows", color.GreenString(batch.Table), len(batch.Rows))
		}
		color.Green("✅ Generated %d rows across %d tables", total, len(seeds.Batches))

		if dryRun {
			staging := database.NewStagingBackend()
			if err := staging.Apply(context.Background(), seeds); err != nil {
				return err
			}
			data, err := seeds.ToJSON()
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		if outPath != "" {
			if err := seeds.WriteFile(outPath); err != nil {
				return fmt.Errorf("failed to write seeds: %w", err)
			}
			color.White("📄 Wrote %s", outPath)
		}

		if insert {
			dbURL, err := cfg.GetDatabaseURL()
			if err != nil {
				return err
			}
			backend, err := database.OpenDirect(cfg.Database.Provider, dbURL, cfg.Seed.Batch)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer backend.Close()

			if err := backend.Apply(context.Background(), seeds); err != nil {
				return fmt.Errorf("failed to insert seeds: %w", err)
			}
			color.Green("✅ Inserted %d rows", total)
		}

		return nil
	},
}

func init() {
	generateCmd.Flags().Bool("no-deps", false, "skip automatic dependency resolution")
	generateCmd.Flags().String("out", "", "write generated seeds to a file (.json or .yaml)")
	generateCmd.Flags().Bool("insert", false, "insert generated rows into the database")
	generateCmd.Flags().Bool("dry-run", false, "stage in memory and print the JSON dump")
	generateCmd.Flags().StringSlice("deps-count", nil, "per-ancestor row counts, e.g. tb_machine=3")
	generateCmd.Flags().String("baseline", "", "baseline directory (overrides config)")
	generateCmd.Flags().Int64("seed", 0, "random seed for reproducible output")
	rootCmd.AddCommand(generateCmd)
}

// parseRequests turns "table:count" arguments into seed requests.
func parseRequests(args []string, defaultCount int, autoDeps bool) ([]seeder.Request, error) {
	reqs := make([]seeder.Request, 0, len(args))
	for _, arg := range args {
		table := arg
		count := defaultCount
		if idx := strings.LastIndex(arg, ":"); idx >= 0 {
			table = arg[:idx]
			n, err := strconv.Atoi(arg[idx+1:])
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid count in %q", arg)
			}
			count = n
		}
		reqs = append(reqs, seeder.Request{Table: table, Count: count, AutoDeps: autoDeps})
	}
	return reqs, nil
}

// parseDepCounts turns "table=count" flag values into auto-deps config.
func parseDepCounts(raw []string) (map[string]seeder.DepConfig, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	deps := make(map[string]seeder.DepConfig, len(raw))
	for _, pair := range raw {
		table, countStr, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid deps-count %q, expected table=count", pair)
		}
		n, err := strconv.Atoi(countStr)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid count in deps-count %q", pair)
		}
		deps[table] = seeder.DepConfig{Count: n}
	}
	return deps, nil
}

// loadTables reads the schema either from a live database or from DDL files.
func loadTables(cfg *config.Config) (map[string]*schema.TableSchema, error) {
	if cfg.Database.Provider == "postgresql" {
		if dbURL, err := cfg.GetDatabaseURL(); err == nil {
			intro, err := database.Connect(context.Background(), dbURL, cfg.Database.Schema)
			if err == nil {
				defer intro.Close()
				tables, err := intro.Tables(context.Background())
				if err != nil {
					return nil, fmt.Errorf("failed to introspect schema: %w", err)
				}
				color.White("🔍 Introspected %d tables from %s", len(tables), cfg.Database.Schema)
				return tables, nil
			}
			color.Yellow("⚠️  Database unavailable, falling back to schema files: %v", err)
		}
	}

	tables, err := schema.ParseDir(cfg.SchemaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema files: %w", err)
	}
	return tables, nil
}

func newSeeder(cfg *config.Config, tables map[string]*schema.TableSchema, seed int64, seeded bool) (*seeder.Seeder, error) {
	ranges := seeder.NewRanges(cfg.Ranges.BaselineMax, cfg.Ranges.TestMax)
	opts := []seeder.Option{seeder.WithRanges(ranges)}

	baseline, err := seeder.LoadBaselineDir(cfg.BaselineDir, ranges)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load baseline: %w", err)
	}
	if baseline != nil {
		if err := baseline.Validate(tables); err != nil {
			return nil, err
		}
		opts = append(opts, seeder.WithBaseline(baseline))
	}
	if seeded {
		opts = append(opts, seeder.WithContext(seeder.NewSeededRunContext(seed)))
	}

	return seeder.New(tables, opts...), nil
}

func printWarnings(warnings []seeder.Warning) {
	for _, w := range warnings {
		color.Yellow("⚠️  %s", w.Message)
	}
}
