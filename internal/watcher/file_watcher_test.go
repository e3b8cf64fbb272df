package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher fails for a missing directory or a bad ignore pattern
// - Rapid changes to several files arrive as one sorted batch
// - Files with other extensions are ignored
// - Ignored directories produce no events
// - New subdirectories are watched
// - Stop is idempotent and works without Start

const testDebounce = 100 * time.Millisecond

// collector records callback batches.
type collector struct {
	mu      sync.Mutex
	batches [][]string
	called  chan struct{}
}

func newCollector() *collector {
	return &collector{called: make(chan struct{}, 10)}
}

func (c *collector) callback(files []string) {
	c.mu.Lock()
	c.batches = append(c.batches, files)
	c.mu.Unlock()
	c.called <- struct{}{}
}

func (c *collector) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-c.called:
	case <-time.After(2 * time.Second):
		t.Fatal("callback not called after timeout")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batches[len(c.batches)-1]
}

func (c *collector) expectNone(t *testing.T) {
	t.Helper()
	select {
	case <-c.called:
		c.mu.Lock()
		defer c.mu.Unlock()
		t.Fatalf("unexpected callback with %v", c.batches[len(c.batches)-1])
	case <-time.After(4 * testDebounce):
	}
}

func startWatcher(t *testing.T, dir string, opts Options) *collector {
	t.Helper()
	opts.Debounce = testDebounce
	w, err := NewFileWatcher([]string{dir}, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))
	// Give fsnotify a moment to register
	time.Sleep(50 * time.Millisecond)
	return c
}

func TestNewFileWatcher_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewFileWatcher([]string{filepath.Join(t.TempDir(), "missing")}, Options{})
	assert.Error(t, err)

	_, err = NewFileWatcher([]string{t.TempDir()}, Options{Ignore: []string{"[unclosed"}})
	assert.Error(t, err)
}

func TestFileWatcher_BatchesChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := startWatcher(t, dir, Options{})

	b := filepath.Join(dir, "b.c")
	a := filepath.Join(dir, "a.h")
	require.NoError(t, os.WriteFile(b, []byte("int b;\n"), 0644))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(a, []byte("int a;\n"), 0644))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(b, []byte("int b2;\n"), 0644))

	assert.Equal(t, []string{a, b}, c.wait(t))
}

func TestFileWatcher_ExtensionFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := startWatcher(t, dir, Options{})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	c.expectNone(t)
}

func TestFileWatcher_Ignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "build"), 0755))
	c := startWatcher(t, dir, Options{Ignore: []string{"build/**"}})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "build", "gen.c"), []byte("int g;\n"), 0644))
	c.expectNone(t)

	src := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(src, []byte("int m;\n"), 0644))
	assert.Equal(t, []string{src}, c.wait(t))
}

func TestFileWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := startWatcher(t, dir, Options{})

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(50 * time.Millisecond)

	file := filepath.Join(sub, "x.c")
	require.NoError(t, os.WriteFile(file, []byte("int x;\n"), 0644))

	// Directory creation has no matching extension, so only the file shows up
	assert.Contains(t, c.wait(t), file)
}

func TestFileWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, Options{})
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
