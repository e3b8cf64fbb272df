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

	"github.com/mvp-joe/cxgraph/internal/clang"
)

// Test Plan for Reparser:
// - Editing an included header reparses the unit and reports new diagnostics
// - Changes to unrelated files leave units alone
// - Run returns once the context is cancelled

type reparseLog struct {
	mu     sync.Mutex
	errors []int
	done   chan struct{}
}

func (l *reparseLog) handle(_ *clang.TranslationUnit, diags clang.DiagnosticSet, err error) {
	l.mu.Lock()
	if err == nil {
		l.errors = append(l.errors, diags.Errors())
	} else {
		l.errors = append(l.errors, -1)
	}
	l.mu.Unlock()
	l.done <- struct{}{}
}

func TestReparser_HeaderChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	header := filepath.Join(dir, "config.h")
	main := filepath.Join(dir, "main.c")
	other := filepath.Join(dir, "other.c")
	require.NoError(t, os.WriteFile(header, []byte("#define SIZE 4\n"), 0644))
	require.NoError(t, os.WriteFile(main, []byte("#include \"config.h\"\nint value = SIZE;\n"), 0644))

	ix, err := clang.NewIndex()
	require.NoError(t, err)
	defer ix.Close()
	tu, err := ix.Parse(main, nil, nil, clang.FlagNone)
	require.NoError(t, err)

	fw, err := NewFileWatcher([]string{dir}, Options{Debounce: testDebounce})
	require.NoError(t, err)

	log := &reparseLog{done: make(chan struct{}, 4)}
	r := NewReparser(fw, []*clang.TranslationUnit{tu}, log.handle)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- r.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	// Unrelated file first: no reparse
	require.NoError(t, os.WriteFile(other, []byte("int o;\n"), 0644))
	time.Sleep(4 * testDebounce)
	assert.Equal(t, 0, r.Reparsed())

	// Breaking the header makes SIZE undeclared
	require.NoError(t, os.WriteFile(header, []byte("/* empty */\n"), 0644))
	select {
	case <-log.done:
	case <-time.After(2 * time.Second):
		t.Fatal("unit was not reparsed")
	}

	cancel()
	select {
	case err := <-runDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Equal(t, 1, r.Reparsed())
	log.mu.Lock()
	defer log.mu.Unlock()
	require.Len(t, log.errors, 1)
	assert.Equal(t, 1, log.errors[0])
	assert.Equal(t, uint64(2), tu.Generation())
}
