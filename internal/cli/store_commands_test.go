package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cxgraph/internal/clang"
	"github.com/mvp-joe/cxgraph/internal/config"
	"github.com/mvp-joe/cxgraph/internal/docsearch"
	"github.com/mvp-joe/cxgraph/internal/indexer"
	"github.com/mvp-joe/cxgraph/internal/storage"
	"github.com/mvp-joe/cxgraph/internal/vfs"
)

// Test Plan for the store, search and file commands:
// - index writes every source to the database and reports a summary
// - refs lists references; defs lists definitions before declarations
// - defs --name matches a LIKE pattern and labels each row
// - search prints hits with their highlighted snippets
// - renderHighlight strips <mark> tags when colors are off
// - overlay writes a document that parses back to the same mappings
// - overlay rejects arguments without "="
// - modulemap renders a framework module and rejects empty names
// - the watch reporter prints the error count and diagnostics of a reparse

func testStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.WriteUnit(&storage.Unit{
		Source: "/src/a.c",
		Symbols: []*storage.Symbol{
			{USR: "c:@F@bump", Name: "bump", Kind: "function_decl", FilePath: "/src/a.c", Line: 2, Column: 5, IsDefinition: true, TypeSpelling: "int (int)"},
			{USR: "c:@F@bump", Name: "bump", Kind: "function_decl", FilePath: "/src/shared.h", Line: 1, Column: 5, TypeSpelling: "int (int)"},
		},
	}))
	require.NoError(t, store.WriteUnit(&storage.Unit{
		Source: "/src/b.c",
		Refs: []*storage.Reference{
			{USR: "c:@F@bump", Kind: "decl_ref_expr", FilePath: "/src/b.c", Line: 2, Column: 26},
		},
	}))
	return store
}

func TestRunIndex(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"shared.h": "int bump(int by);\n",
		"a.c":      "#include \"shared.h\"\nint bump(int by) { return by + 1; }\n",
		"b.c":      "#include \"shared.h\"\nint twice(void) { return bump(1); }\n",
	})
	dbPath := filepath.Join(dir, ".cxgraph", "symbols.db")

	cfg, err := config.Default().ToIndexerConfig(dir)
	require.NoError(t, err)

	var out bytes.Buffer
	stats, err := runIndex(context.Background(), cfg, dbPath, NewCLIProgressReporter(&out, false))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Files)
	assert.Contains(t, out.String(), "Indexing 2 source files")
	assert.Contains(t, out.String(), "✓ Indexed 2 files")

	store, err := storage.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	var refs bytes.Buffer
	require.NoError(t, runRefs(&refs, store, "c:@F@bump"))
	assert.Equal(t, filepath.Join(dir, "b.c")+":2:26: decl_ref_expr\n", refs.String())
}

func TestRunIndex_Quiet(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"a.c": "int a;\n"})
	cfg := indexer.Config{RootDir: dir, Patterns: []string{"*.c"}, Parallelism: 1}

	var out bytes.Buffer
	_, err := runIndex(context.Background(), cfg, filepath.Join(dir, "db", "x.db"), NewCLIProgressReporter(&out, true))
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestRunRefsAndDefs(t *testing.T) {
	t.Parallel()

	store := testStore(t)

	var out bytes.Buffer
	require.NoError(t, runRefs(&out, store, "c:@F@bump"))
	assert.Equal(t, "/src/b.c:2:26: decl_ref_expr\n", out.String())

	out.Reset()
	require.NoError(t, runDefs(&out, store, "c:@F@bump"))
	assert.Equal(t, []string{
		"/src/a.c:2:5: definition function_decl bump 'int (int)' [c:@F@bump]",
		"/src/shared.h:1:5: declaration function_decl bump 'int (int)' [c:@F@bump]",
	}, splitLines(out.String()))

	out.Reset()
	require.NoError(t, runRefs(&out, store, "c:@F@missing"))
	assert.Empty(t, out.String())
}

func TestRunSymbolsByName(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, runSymbolsByName(&out, testStore(t), "bu%"))
	lines := splitLines(out.String())
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "definition function_decl bump")
	assert.Contains(t, lines[1], "declaration function_decl bump")
}

func TestRunSearch(t *testing.T) {
	t.Parallel()

	docs := []*docsearch.Doc{
		{USR: "c:@F@connect", Name: "connect", Kind: "function_decl", FilePath: "/src/net.c", Line: 3,
			Brief: "Opens a connection.", Text: "Opens a connection. Retries with exponential backoff."},
		{USR: "c:@F@close", Name: "close", Kind: "function_decl", FilePath: "/src/net.c", Line: 9,
			Brief: "Closes a connection.", Text: "Closes a connection."},
	}

	var out bytes.Buffer
	require.NoError(t, runSearch(context.Background(), &out, docs, "backoff", nil))
	lines := splitLines(out.String())
	require.GreaterOrEqual(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[0], "/src/net.c:3: function_decl connect ("), lines[0])
	assert.Contains(t, lines[1], "backoff")
	assert.NotContains(t, out.String(), "close")
}

func TestRenderHighlight(t *testing.T) {
	t.Parallel()

	// Test output is not a terminal, so fatih/color emits plain text.
	assert.Equal(t, "retries with backoff and jitter", renderHighlight("retries with <mark>backoff</mark> and <mark>jitter</mark>"))
	assert.Equal(t, "unterminated <mark>tag", renderHighlight("unterminated <mark>tag"))
}

func TestRunOverlay(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, runOverlay(&out, []string{"/virtual/include/cfg.h=/real/cfg.h"}, false))

	o, err := vfs.Parse(out.Bytes())
	require.NoError(t, err)
	assert.False(t, o.CaseSensitive())
	real, ok := o.Resolve("/VIRTUAL/include/cfg.h")
	require.True(t, ok)
	assert.Equal(t, "/real/cfg.h", real)
}

func TestRunOverlay_InvalidMapping(t *testing.T) {
	t.Parallel()

	err := runOverlay(&bytes.Buffer{}, []string{"/virtual/only"}, true)
	assert.ErrorContains(t, err, "want VIRTUAL=REAL")
}

func TestRunModuleMap(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, runModuleMap(&out, "Net", "Net.h"))
	assert.Equal(t, "framework module Net {\n  umbrella header \"Net.h\"\n\n  export *\n  module * { export * }\n}\n", out.String())

	err := runModuleMap(&bytes.Buffer{}, " ", "Net.h")
	assert.ErrorIs(t, err, vfs.ErrInvalidPath)
}

func TestReparseReporter(t *testing.T) {
	t.Parallel()

	tu := parseTestUnit(t, map[string]string{"main.c": "int a = b;\n"}, "main.c")
	diags, err := tu.Diagnostics()
	require.NoError(t, err)

	var out bytes.Buffer
	reparseReporter(&out, config.Default())(tu, diags, nil)
	lines := splitLines(out.String())
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "main.c: reparsed, 1 error(s)"), lines[0])
	assert.Contains(t, lines[1], "use of undeclared identifier 'b'")

	out.Reset()
	reparseReporter(&out, config.Default())(tu, nil, clang.ErrEngineFault)
	assert.Contains(t, out.String(), "reparse failed: engine fault")
}
