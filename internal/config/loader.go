package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader loads from an explicit config file instead of searching
// .cxgraph/ under the root.
func NewFileLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CXGRAPH_*)
// 2. Config file (.cxgraph/config.yml or .cxgraph/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".cxgraph"))
	}

	// Replace . with _ in env var names (e.g., CXGRAPH_INDEX_PARALLELISM)
	v.SetEnvPrefix("CXGRAPH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVars(v)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Index.Database != "" && !filepath.IsAbs(cfg.Index.Database) {
		cfg.Index.Database = filepath.Join(l.rootDir, cfg.Index.Database)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// Compiler configuration
	v.BindEnv("compiler.std")
	v.BindEnv("compiler.target")

	// Diagnostics configuration
	v.BindEnv("diagnostics.column")
	v.BindEnv("diagnostics.option")
	v.BindEnv("diagnostics.ranges")
	v.BindEnv("diagnostics.category_name")
	v.BindEnv("diagnostics.color")

	// Index configuration
	v.BindEnv("index.database")
	v.BindEnv("index.parallelism")

	// Watch and cache configuration
	v.BindEnv("watch.debounce_ms")
	v.BindEnv("cache.preamble_mb")
	v.BindEnv("cache.preamble_ttl_seconds")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("compiler.args", defaults.Compiler.Args)
	v.SetDefault("compiler.include_dirs", defaults.Compiler.IncludeDirs)
	v.SetDefault("compiler.defines", defaults.Compiler.Defines)
	v.SetDefault("compiler.std", defaults.Compiler.Std)
	v.SetDefault("compiler.target", defaults.Compiler.Target)

	v.SetDefault("parse.flags", defaults.Parse.Flags)

	v.SetDefault("diagnostics.column", defaults.Diagnostics.Column)
	v.SetDefault("diagnostics.option", defaults.Diagnostics.Option)
	v.SetDefault("diagnostics.ranges", defaults.Diagnostics.Ranges)
	v.SetDefault("diagnostics.category_name", defaults.Diagnostics.CategoryName)
	v.SetDefault("diagnostics.color", defaults.Diagnostics.Color)

	v.SetDefault("index.database", defaults.Index.Database)
	v.SetDefault("index.patterns", defaults.Index.Patterns)
	v.SetDefault("index.ignore", defaults.Index.Ignore)
	v.SetDefault("index.parallelism", defaults.Index.Parallelism)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)

	v.SetDefault("cache.preamble_mb", defaults.Cache.PreambleMB)
	v.SetDefault("cache.preamble_ttl_seconds", defaults.Cache.PreambleTTLSeconds)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
