package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Global Config Loader:
// - LoadGlobalConfig() returns defaults when file doesn't exist (not an error)
// - LoadGlobalConfig() loads from ~/.cxgraph/config.yml when present
// - Environment variables override YAML values
// - LoadGlobalConfig() returns error for malformed YAML

func TestLoadGlobalConfig_MissingFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Engine.CrashRecovery)
	assert.Empty(t, cfg.Engine.InvocationDir)
}

func TestLoadGlobalConfig_WithFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("engine:\n  crash_recovery: false\n  invocation_dir: crashes\n"), 0644))

	cfg, err := loadGlobalConfigFrom(dir)
	require.NoError(t, err)
	assert.False(t, cfg.Engine.CrashRecovery)
	assert.Equal(t, filepath.Join(dir, "crashes"), cfg.Engine.InvocationDir)
}

func TestLoadGlobalConfig_EnvOverrides(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("engine:\n  invocation_dir: /from/file\n"), 0644))
	t.Setenv("CXGRAPH_ENGINE_INVOCATION_DIR", "/from/env")

	cfg, err := loadGlobalConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Engine.InvocationDir)
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("engine: [\n"), 0644))

	_, err := loadGlobalConfigFrom(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
