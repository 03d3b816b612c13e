package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Version     string   `json:"version" mapstructure:"version"`
	SchemaDir   string   `json:"schema_dir" mapstructure:"schema_dir"`
	BaselineDir string   `json:"baseline_dir" mapstructure:"baseline_dir"`
	Database    Database `json:"database" mapstructure:"database"`
	Seed        Seed     `json:"seed" mapstructure:"seed"`
	Ranges      Ranges   `json:"ranges" mapstructure:"ranges"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	Schema   string `json:"schema" mapstructure:"schema"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

type Seed struct {
	DefaultCount int `json:"default_count" mapstructure:"default_count"`
	Batch        int `json:"batch" mapstructure:"batch"`
}

// Ranges carries the instance-number partition boundaries as run
// configuration rather than literals buried in logic.
type Ranges struct {
	BaselineMax uint64 `json:"baseline_max" mapstructure:"baseline_max"`
	TestMax     uint64 `json:"test_max" mapstructure:"test_max"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Defaults
	if cfg.Version == "" {
		cfg.Version = "1"
	}
	if cfg.SchemaDir == "" {
		cfg.SchemaDir = "db/schema"
	}
	if cfg.BaselineDir == "" {
		cfg.BaselineDir = "db/baseline"
	}
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = "postgresql"
	}
	if cfg.Database.Schema == "" {
		cfg.Database.Schema = "public"
	}
	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = "DATABASE_URL"
	}
	if cfg.Seed.DefaultCount == 0 {
		cfg.Seed.DefaultCount = 1
	}
	if cfg.Seed.Batch == 0 {
		cfg.Seed.Batch = 100
	}
	if cfg.Ranges.BaselineMax == 0 {
		cfg.Ranges.BaselineMax = 1_000
	}
	if cfg.Ranges.TestMax == 0 {
		cfg.Ranges.TestMax = 999_999
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	supported := map[string]bool{
		"postgresql": true, "postgres": true,
		"mysql":   true,
		"sqlite":  true,
		"sqlite3": true,
	}
	if !supported[c.Database.Provider] {
		return fmt.Errorf("unsupported database provider: %s", c.Database.Provider)
	}
	if c.Ranges.BaselineMax >= c.Ranges.TestMax {
		return fmt.Errorf("baseline_max (%d) must be below test_max (%d)", c.Ranges.BaselineMax, c.Ranges.TestMax)
	}
	return nil
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}
