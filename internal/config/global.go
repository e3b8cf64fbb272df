// Package config provides configuration loading for cxgraph.
//
// It supports two distinct configuration scopes:
//
// 1. Global Configuration (~/.cxgraph/config.yml)
//   - Machine-wide engine settings
//   - Crash recovery and where failing invocations are recorded
//   - Loaded via LoadGlobalConfig()
//
// 2. Project Configuration (.cxgraph/config.yml)
//   - Compiler arguments, parse flags, diagnostic display
//   - Symbol store location and file patterns
//   - Loaded via Load()
//
// Environment Variable Convention:
//   - Prefix: CXGRAPH_
//   - Nested fields: Use underscores (CXGRAPH_INDEX_PARALLELISM)
//   - Automatic mapping via Viper's SetEnvKeyReplacer
package config

// GlobalConfig holds machine-wide configuration.
// Loaded from ~/.cxgraph/config.yml (not project .cxgraph/config.yml).
type GlobalConfig struct {
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`
}

// EngineConfig holds settings of the parsing engine itself.
type EngineConfig struct {
	CrashRecovery bool   `yaml:"crash_recovery" mapstructure:"crash_recovery"` // convert engine panics into errors
	InvocationDir string `yaml:"invocation_dir" mapstructure:"invocation_dir"` // where failing invocations are written; empty disables
}
