// Package config loads engine settings from a yaml file, the environment,
// and flags, in that precedence order (lowest to highest). Settings are
// read once at startup; the engine never watches for changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is everything the engine needs to come up.
type Config struct {
	// Name is the graph name, used in diagnostics.
	Name string `mapstructure:"name" yaml:"name"`
	// Shards is the number of single-threaded partitions. The default is one
	// per logical CPU; values below one are raised to one.
	Shards int `mapstructure:"shards" yaml:"shards"`
	// Verbose turns on debug logging.
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
	// Metrics installs the stdout metric exporter in the CLI.
	Metrics bool `mapstructure:"metrics" yaml:"metrics"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Name:   "quiver",
		Shards: runtime.GOMAXPROCS(0),
	}
}

// Load reads the config file at path (optional; empty means search the
// working directory and ~/.config/quiver) with QUIVER_* environment
// overrides applied.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("name", "quiver")
	v.SetDefault("shards", runtime.GOMAXPROCS(0))
	v.SetDefault("verbose", false)
	v.SetDefault("metrics", false)

	v.SetEnvPrefix("QUIVER")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("quiver")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "quiver"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine when we were only searching defaults.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Shards < 1 {
		cfg.Shards = 1
	}
	return cfg, nil
}

// Save writes the config as yaml, creating parent directories.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
