package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mvp-joe/cxgraph/internal/clang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - LoadConfig() uses defaults when no config file exists
// - LoadConfig() loads from .cxgraph/config.yml and merges with defaults
// - Environment variables override config file values
// - An explicit config file must exist
// - LoadConfig() returns error for malformed YAML and invalid values
// - Relative database paths resolve against the project root
// - CompilerArgs, ParseFlags and DisplayOptions translate to clang terms
// - ToIndexerConfig carries patterns, arguments and flags to the indexer
// - Validate() rejects unknown flags, bad colors, bad globs and bad numbers
// - Validate() reports every invalid field at once

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	cfgDir := filepath.Join(dir, ".cxgraph")
	require.NoError(t, os.MkdirAll(cfgDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yml"), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, []string{"detailed_preprocessing_record"}, cfg.Parse.Flags)
	assert.Equal(t, "auto", cfg.Diagnostics.Color)
	assert.Equal(t, ".cxgraph/symbols.db", cfg.Index.Database)
	assert.Equal(t, 4, cfg.Index.Parallelism)
	assert.Equal(t, 200*time.Millisecond, cfg.Debounce())
	assert.Equal(t, 64, cfg.Cache.PreambleMB)

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, defaults.Parse.Flags, cfg.Parse.Flags)
	assert.Equal(t, defaults.Index.Patterns, cfg.Index.Patterns)
	assert.Equal(t, filepath.Join(dir, ".cxgraph", "symbols.db"), cfg.Index.Database)
}

func TestLoadConfig_LoadsFromConfigYml(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `
compiler:
  std: c11
  include_dirs: [include, third_party/zlib]
  defines: [DEBUG, LEVEL=2]
parse:
  flags: [detailed_preprocessing_record, keep_going]
index:
  database: /var/tmp/symbols.db
  parallelism: 8
`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "c11", cfg.Compiler.Std)
	assert.Equal(t, "/var/tmp/symbols.db", cfg.Index.Database)
	assert.Equal(t, 8, cfg.Index.Parallelism)
	// Unset sections keep their defaults
	assert.Equal(t, 200, cfg.Watch.DebounceMs)
	assert.Equal(t, "auto", cfg.Diagnostics.Color)

	assert.Equal(t, []string{"-std=c11", "-Iinclude", "-Ithird_party/zlib", "-DDEBUG", "-DLEVEL=2"}, cfg.CompilerArgs())

	flags, err := cfg.ParseFlags()
	require.NoError(t, err)
	assert.Equal(t, clang.FlagDetailedPreprocessingRecord|clang.FlagKeepGoing, flags)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	dir := t.TempDir()
	writeConfig(t, dir, "index:\n  parallelism: 2\ndiagnostics:\n  color: always\n")

	t.Setenv("CXGRAPH_INDEX_PARALLELISM", "6")
	t.Setenv("CXGRAPH_DIAGNOSTICS_COLOR", "never")
	t.Setenv("CXGRAPH_COMPILER_TARGET", "i386-pc-linux-gnu")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Index.Parallelism)
	assert.Equal(t, "never", cfg.Diagnostics.Color)
	assert.Equal(t, []string{"-target", "i386-pc-linux-gnu"}, cfg.CompilerArgs())
}

func TestLoadConfig_ExplicitFileMustExist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := NewFileLoader(dir, filepath.Join(dir, "missing.yml")).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "index:\n  parallelism: [\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "parse:\n  flags: [sideways]\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownParseFlag)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestDisplayOptions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, clang.DisplaySourceLocation|clang.DisplayColumn|clang.DisplayOption, cfg.DisplayOptions())

	cfg.Diagnostics = DiagnosticsConfig{Ranges: true, CategoryName: true, Color: "never"}
	assert.Equal(t, clang.DisplaySourceLocation|clang.DisplaySourceRanges|clang.DisplayCategoryName, cfg.DisplayOptions())
}

func TestToIndexerConfig(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Compiler.Std = "c11"
	cfg.Compiler.IncludeDirs = []string{"include"}

	ic, err := cfg.ToIndexerConfig("/src/project")
	require.NoError(t, err)
	assert.Equal(t, "/src/project", ic.RootDir)
	assert.Equal(t, []string{"**/*.c"}, ic.Patterns)
	assert.Equal(t, 4, ic.Parallelism)
	assert.Equal(t, []string{"-std=c11", "-Iinclude"}, ic.Args)
	assert.Equal(t, clang.FlagDetailedPreprocessingRecord, ic.Flags)
	assert.Len(t, ic.IndexOptions, 1)

	cfg.Parse.Flags = []string{"no_such_flag"}
	_, err = cfg.ToIndexerConfig("/src/project")
	assert.ErrorIs(t, err, ErrUnknownParseFlag)
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"unknown flag", func(c *Config) { c.Parse.Flags = []string{"nope"} }, ErrUnknownParseFlag},
		{"color mode", func(c *Config) { c.Diagnostics.Color = "sometimes" }, ErrInvalidColorMode},
		{"bad glob", func(c *Config) { c.Index.Patterns = []string{"src/[a-"} }, ErrInvalidPattern},
		{"zero parallelism", func(c *Config) { c.Index.Parallelism = 0 }, ErrInvalidParallelism},
		{"empty database", func(c *Config) { c.Index.Database = "" }, ErrEmptyDatabase},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -1 }, ErrInvalidDebounce},
		{"negative cache", func(c *Config) { c.Cache.PreambleMB = -1 }, ErrInvalidCacheSettings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidate_ReturnsMultipleErrorsForMultipleInvalidFields(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Diagnostics.Color = "rainbow"
	cfg.Index.Parallelism = -3
	cfg.Cache.PreambleTTLSeconds = -1

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.ErrorIs(t, err, ErrInvalidColorMode)
	assert.ErrorIs(t, err, ErrInvalidParallelism)
	assert.ErrorIs(t, err, ErrInvalidCacheSettings)
}
