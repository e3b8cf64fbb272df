package indexer

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cxgraph/internal/clang"
	"github.com/mvp-joe/cxgraph/internal/storage"
)

// Test Plan for Indexer:
// - Index parses every discovered source and stores its symbols
// - Symbols from a shared header are queryable across units
// - A source that cannot be read is counted as failed without stopping the run
// - Progress callbacks see every file
// - A cancelled context stops the run

type recordingProgress struct {
	mu        sync.Mutex
	total     int
	processed []string
	stats     *Stats
}

func (r *recordingProgress) OnDiscoveryComplete(files int) { r.total = files }

func (r *recordingProgress) OnFileProcessed(fileName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed = append(r.processed, fileName)
}

func (r *recordingProgress) OnComplete(stats *Stats) { r.stats = stats }

func newTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"shared.h": "int bump(int by);\n",
		"a.c":      "#include \"shared.h\"\nint bump(int by) { return by + 1; }\n",
		"b.c":      "#include \"shared.h\"\nint twice(void) { return bump(1) + bump(2); }\n",
		"c.c":      "int broken = missing;\n",
	})
	return dir
}

func newTestIndexer(t *testing.T, dir string, progress ProgressReporter) (*Indexer, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ix := New(Config{
		RootDir:     dir,
		Patterns:    []string{"**/*.c"},
		Parallelism: 2,
		Flags:       clang.FlagDetailedPreprocessingRecord,
	}, store, progress)
	return ix, store
}

func TestIndex(t *testing.T) {
	t.Parallel()

	dir := newTestProject(t)
	progress := &recordingProgress{}
	ix, store := newTestIndexer(t, dir, progress)

	stats, err := ix.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, 1, stats.Errors)

	assert.Equal(t, 3, progress.total)
	assert.Len(t, progress.processed, 3)
	assert.Same(t, stats, progress.stats)

	units, err := store.Units()
	require.NoError(t, err)
	assert.Len(t, units, 3)

	defs, err := store.Definitions("c:@F@bump")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, filepath.Join(dir, "a.c"), defs[0].FilePath)

	refs, err := store.References("c:@F@bump")
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	includers, err := store.Includers(filepath.Join(dir, "shared.h"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.c"), filepath.Join(dir, "b.c")}, includers)
}

func TestIndexFiles_MissingSource(t *testing.T) {
	t.Parallel()

	dir := newTestProject(t)
	ix, store := newTestIndexer(t, dir, nil)

	stats, err := ix.IndexFiles(context.Background(), []string{
		filepath.Join(dir, "a.c"),
		filepath.Join(dir, "gone.c"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 1, stats.Failed)

	units, err := store.Units()
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, filepath.Join(dir, "a.c"), units[0].Source)
}

func TestIndex_Cancelled(t *testing.T) {
	t.Parallel()

	dir := newTestProject(t)
	ix, _ := newTestIndexer(t, dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ix.Index(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
