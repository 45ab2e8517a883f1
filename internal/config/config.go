// Package config resolves run-level settings for the planner: where the
// bbolt store lives, the RNG seed, and the iteration caps. Values come
// from .planner.yaml, PLANNER_* env vars, and CLI flags, in that order
// of increasing precedence, following the viper layering shown by
// papapumpkin-quasar's internal/config.Load.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

const defaultConfigYAML = `# planner run configuration
store_path: planner.db
max_iterations: 1000
log_dir: ""
verbose: false
`

// RunConfig holds the settings that govern one invocation of the planner
// rather than the business data (Story/Developer/Configuration) that
// lives in the store itself.
type RunConfig struct {
	StorePath     string `mapstructure:"store_path"`
	Seed          int64  `mapstructure:"seed"`
	HasSeed       bool   `mapstructure:"-"`
	MaxIterations int    `mapstructure:"max_iterations"`
	LogDir        string `mapstructure:"log_dir"`
	Verbose       bool   `mapstructure:"verbose"`
}

// Load reads run configuration from viper, applying defaults for any
// value not set by config file, environment, or flag.
func Load() RunConfig {
	viper.SetDefault("store_path", "planner.db")
	viper.SetDefault("max_iterations", 1000)
	viper.SetDefault("log_dir", "")
	viper.SetDefault("verbose", false)

	var cfg RunConfig
	_ = viper.Unmarshal(&cfg)
	cfg.HasSeed = viper.IsSet("seed")
	if cfg.HasSeed {
		cfg.Seed = viper.GetInt64("seed")
	}
	return cfg
}

// EnsureDefaultFile writes a starter .planner.yaml at path if one does
// not already exist there.
func EnsureDefaultFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
