package clang

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestIndex returns an index closed when the test ends.
func newTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := NewIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

// parseFiles parses main.c from an in-memory tree rooted at a temp dir.
// files maps relative names to contents and must contain "main.c".
func parseFiles(t *testing.T, flags TranslationUnitFlags, files map[string]string, args ...string) (*TranslationUnit, string) {
	t.Helper()
	dir := t.TempDir()
	var unsaved []UnsavedFile
	for name, src := range files {
		unsaved = append(unsaved, UnsavedFile{Filename: filepath.Join(dir, name), Contents: []byte(src)})
	}
	tu, err := newTestIndex(t).Parse(filepath.Join(dir, "main.c"), args, unsaved, flags)
	require.NoError(t, err)
	return tu, dir
}

func parseSource(t *testing.T, src string, args ...string) *TranslationUnit {
	t.Helper()
	tu, _ := parseFiles(t, FlagNone, map[string]string{"main.c": src}, args...)
	return tu
}

func rootCursor(t *testing.T, tu *TranslationUnit) Cursor {
	t.Helper()
	c, err := tu.Cursor()
	require.NoError(t, err)
	return c
}

// findCursor returns the first cursor in pre-order with the kind and name.
func findCursor(t *testing.T, root Cursor, kind CursorKind, name string) Cursor {
	t.Helper()
	found := NullCursor()
	err := root.Walk(func(c Cursor) bool {
		if !found.IsNull() {
			return false
		}
		k, _ := c.Kind()
		s, _ := c.Spelling()
		if k == kind && s == name {
			found = c
			return false
		}
		return true
	})
	require.NoError(t, err)
	require.False(t, found.IsNull(), "no %s named %q", kind, name)
	return found
}

// findAll returns every cursor of a kind under root in pre-order.
func findAll(t *testing.T, root Cursor, kind CursorKind) []Cursor {
	t.Helper()
	var out []Cursor
	err := root.Walk(func(c Cursor) bool {
		if k, _ := c.Kind(); k == kind {
			out = append(out, c)
		}
		return true
	})
	require.NoError(t, err)
	return out
}
