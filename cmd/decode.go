package cmd

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/sprout/internal/trinity"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [uuid...]",
	Short: "Decode Trinity identifiers back into their fields",
	Long: `
Decode one or more Trinity identifiers and print the embedded fields:
table code, seed directory, function, scenario, test case and instance
number.

Example:
  sprout decode 7a3b2c21-0000-4000-8000-0000000003e9`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			fields, err := trinity.Decode(arg)
			if err != nil {
				color.Red("❌ %s: %v", arg, err)
				return fmt.Errorf("failed to decode identifier")
			}

			color.Cyan("🔑 %s", arg)
			color.White("  table code: %06x", fields.TableCode)
			color.White("  seed dir:   %02x (%s)", fields.SeedDir, dirName(fields.SeedDir))
			color.White("  function:   %04x", fields.Function)
			color.White("  scenario:   %04x", fields.Scenario)
			color.White("  test case:  %02x", fields.TestCase)
			color.White("  instance:   %d", fields.Instance)
		}
		return nil
	},
}

func dirName(dir uint8) string {
	switch dir {
	case trinity.DirGeneral:
		return "general"
	case trinity.DirMutation:
		return "mutation"
	case trinity.DirQuery:
		return "query"
	default:
		return "unknown"
	}
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
