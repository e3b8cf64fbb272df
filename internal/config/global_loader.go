package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoadGlobalConfig loads global configuration from ~/.cxgraph/config.yml.
// Returns default values if file doesn't exist (not an error).
// Environment variables override file values (CXGRAPH_* prefix).
func LoadGlobalConfig() (*GlobalConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return loadGlobalConfigFrom(filepath.Join(home, ".cxgraph"))
}

func loadGlobalConfigFrom(dir string) (*GlobalConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("CXGRAPH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("engine.crash_recovery")
	v.BindEnv("engine.invocation_dir")

	v.SetDefault("engine.crash_recovery", true)
	v.SetDefault("engine.invocation_dir", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &GlobalConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Engine.InvocationDir != "" && !filepath.IsAbs(cfg.Engine.InvocationDir) {
		cfg.Engine.InvocationDir = filepath.Join(dir, cfg.Engine.InvocationDir)
	}

	return cfg, nil
}
