package config

import (
	"fmt"
	"time"

	"github.com/mvp-joe/cxgraph/internal/clang"
	"github.com/mvp-joe/cxgraph/internal/indexer"
)

// Config represents the complete cxgraph project configuration.
// It can be loaded from .cxgraph/config.yml with environment variable overrides.
type Config struct {
	Compiler    CompilerConfig    `yaml:"compiler" mapstructure:"compiler"`
	Parse       ParseConfig       `yaml:"parse" mapstructure:"parse"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics" mapstructure:"diagnostics"`
	Index       IndexConfig       `yaml:"index" mapstructure:"index"`
	Watch       WatchConfig       `yaml:"watch" mapstructure:"watch"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
}

// CompilerConfig holds the arguments every translation unit is parsed with.
type CompilerConfig struct {
	Args        []string `yaml:"args" mapstructure:"args"`                 // extra clang arguments, passed last
	IncludeDirs []string `yaml:"include_dirs" mapstructure:"include_dirs"` // -I directories
	Defines     []string `yaml:"defines" mapstructure:"defines"`           // NAME or NAME=VALUE
	Std         string   `yaml:"std" mapstructure:"std"`                   // e.g. "c11"
	Target      string   `yaml:"target" mapstructure:"target"`             // target triple
}

// ParseConfig selects translation unit flags by name.
type ParseConfig struct {
	Flags []string `yaml:"flags" mapstructure:"flags"` // e.g. ["detailed_preprocessing_record"]
}

// DiagnosticsConfig controls how diagnostics are printed.
type DiagnosticsConfig struct {
	Column       bool   `yaml:"column" mapstructure:"column"`
	Option       bool   `yaml:"option" mapstructure:"option"`
	Ranges       bool   `yaml:"ranges" mapstructure:"ranges"`
	CategoryName bool   `yaml:"category_name" mapstructure:"category_name"`
	Color        string `yaml:"color" mapstructure:"color"` // "auto", "always" or "never"
}

// IndexConfig configures the symbol store indexer.
type IndexConfig struct {
	Database    string   `yaml:"database" mapstructure:"database"`       // sqlite path, relative to the project root
	Patterns    []string `yaml:"patterns" mapstructure:"patterns"`       // glob patterns for sources
	Ignore      []string `yaml:"ignore" mapstructure:"ignore"`           // glob patterns to skip
	Parallelism int      `yaml:"parallelism" mapstructure:"parallelism"` // concurrent parses
}

// WatchConfig configures reparse-on-change.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// CacheConfig sizes the preamble cache of each index.
type CacheConfig struct {
	PreambleMB         int `yaml:"preamble_mb" mapstructure:"preamble_mb"`
	PreambleTTLSeconds int `yaml:"preamble_ttl_seconds" mapstructure:"preamble_ttl_seconds"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Compiler: CompilerConfig{
			Args:        []string{},
			IncludeDirs: []string{},
			Defines:     []string{},
		},
		Parse: ParseConfig{
			Flags: []string{"detailed_preprocessing_record"},
		},
		Diagnostics: DiagnosticsConfig{
			Column: true,
			Option: true,
			Color:  "auto",
		},
		Index: IndexConfig{
			Database: ".cxgraph/symbols.db",
			Patterns: []string{"**/*.c"},
			Ignore: []string{
				".git/**",
				"build/**",
				"third_party/**",
			},
			Parallelism: 4,
		},
		Watch: WatchConfig{
			DebounceMs: 200,
		},
		Cache: CacheConfig{
			PreambleMB:         64,
			PreambleTTLSeconds: 600,
		},
	}
}

// CompilerArgs renders the compiler section as clang arguments.
func (c *Config) CompilerArgs() []string {
	var args []string
	if c.Compiler.Std != "" {
		args = append(args, "-std="+c.Compiler.Std)
	}
	if c.Compiler.Target != "" {
		args = append(args, "-target", c.Compiler.Target)
	}
	for _, dir := range c.Compiler.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	for _, def := range c.Compiler.Defines {
		args = append(args, "-D"+def)
	}
	return append(args, c.Compiler.Args...)
}

// ParseFlags ORs the configured flag names together.
func (c *Config) ParseFlags() (clang.TranslationUnitFlags, error) {
	var flags clang.TranslationUnitFlags
	for _, name := range c.Parse.Flags {
		v, ok := clang.TranslationUnitFlagsTable.Value(name)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownParseFlag, name)
		}
		flags |= clang.TranslationUnitFlags(v)
	}
	return flags, nil
}

// DisplayOptions returns the diagnostic display options.
func (c *Config) DisplayOptions() clang.DiagnosticDisplayOptions {
	opts := clang.DisplaySourceLocation
	if c.Diagnostics.Column {
		opts |= clang.DisplayColumn
	}
	if c.Diagnostics.Option {
		opts |= clang.DisplayOption
	}
	if c.Diagnostics.Ranges {
		opts |= clang.DisplaySourceRanges
	}
	if c.Diagnostics.CategoryName {
		opts |= clang.DisplayCategoryName
	}
	return opts
}

// IndexOptions returns the clang.Index options the cache section asks for.
func (c *Config) IndexOptions() []clang.IndexOption {
	return []clang.IndexOption{
		clang.WithPreambleCache(c.Cache.PreambleMB<<20, time.Duration(c.Cache.PreambleTTLSeconds)*time.Second),
	}
}

// Debounce returns the watch debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}

// ToIndexerConfig converts the project configuration to the indexer's.
func (c *Config) ToIndexerConfig(rootDir string) (indexer.Config, error) {
	flags, err := c.ParseFlags()
	if err != nil {
		return indexer.Config{}, err
	}
	return indexer.Config{
		RootDir:      rootDir,
		Patterns:     c.Index.Patterns,
		Ignore:       c.Index.Ignore,
		Parallelism:  c.Index.Parallelism,
		Args:         c.CompilerArgs(),
		Flags:        flags,
		IndexOptions: c.IndexOptions(),
	}, nil
}
