package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileDiscovery:
// - "**/*.c" matches sources in the root and in subdirectories
// - Ignored directories are skipped along with everything below them
// - The .cxgraph directory is always skipped
// - Invalid patterns are rejected

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"main.c":            "int main(void) { return 0; }\n",
		"lib/util.c":        "int util;\n",
		"lib/util.h":        "extern int util;\n",
		"build/gen.c":       "int gen;\n",
		".cxgraph/cache.c":  "int cached;\n",
		"docs/readme.md":    "# docs\n",
		"third_party/x/y.c": "int y;\n",
	})

	fd, err := NewFileDiscovery(dir, []string{"**/*.c"}, []string{"build/**", "third_party/**"})
	require.NoError(t, err)

	files, err := fd.DiscoverFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "lib", "util.c"),
		filepath.Join(dir, "main.c"),
	}, files)
}

func TestNewFileDiscovery_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewFileDiscovery(t.TempDir(), []string{"[unclosed"}, nil)
	assert.Error(t, err)
}
