package cmd

import (
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "0.3.0"
)

var rootCmd = &cobra.Command{
	Use:   "sprout",
	Short: "Dependency-aware seed data generator for relational schemas",
	Long: `
Sprout generates structurally valid, dependency-correct test data.
Ask for rows in one table and sprout resolves every foreign-key
ancestor, reuses the shared baseline where it can, assigns
collision-free Trinity identifiers, and satisfies UNIQUE and CHECK
constraints.

Database Support:
- PostgreSQL (live introspection or schema files)
- MySQL (schema files)
- SQLite (schema files)`,
	SilenceUsage: true,
	Version:      Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default sprout.config.json)")
}

func initConfig() {
	// .env is optional; environment variables win when both exist.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sprout.config")
		viper.SetConfigType("json")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			color.Yellow("⚠️  Could not read config file: %v", err)
		}
	}
}
