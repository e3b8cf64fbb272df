package storage

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cxgraph/internal/clang"
)

// Test Plan for the symbol store:
// - A fresh database gets the current schema version
// - WriteUnit replaces the rows of a unit indexed from the same source
// - Definitions, Declarations and References query across units
// - Headers included by several units report each includer once
// - DeleteUnit cascades to symbols and fails for unknown sources
// - ExtractUnit turns declarations, uses and includes into rows

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func parseUnit(t *testing.T, ix *clang.Index, dir, name string, files map[string]string) *clang.TranslationUnit {
	t.Helper()
	var unsaved []clang.UnsavedFile
	for n, src := range files {
		unsaved = append(unsaved, clang.UnsavedFile{Filename: filepath.Join(dir, n), Contents: []byte(src)})
	}
	tu, err := ix.Parse(filepath.Join(dir, name), nil, unsaved, clang.FlagDetailedPreprocessingRecord)
	require.NoError(t, err)
	return tu
}

func TestOpen_CreatesSchema(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	version, err := GetSchemaVersion(s.db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)

	last, err := s.LastIndexed()
	require.NoError(t, err)
	assert.True(t, last.IsZero())
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "symbols.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.WriteUnit(&Unit{Source: "/src/a.c"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	units, err := s.Units()
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "/src/a.c", units[0].Source)
}

func TestWriteUnit_Replaces(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	first := &Unit{
		Source:  "/src/a.c",
		Args:    []string{"-DX=1", "-Iinc"},
		Symbols: []*Symbol{{USR: "c:@F@old", Name: "old", Kind: "function_decl", FilePath: "/src/a.c", Line: 1, Column: 5, IsDefinition: true}},
	}
	require.NoError(t, s.WriteUnit(first))
	assert.NotEqual(t, uuid.Nil, first.ID)

	second := &Unit{
		Source:  "/src/a.c",
		Symbols: []*Symbol{{USR: "c:@F@fresh", Name: "fresh", Kind: "function_decl", FilePath: "/src/a.c", Line: 2, Column: 5, IsDefinition: true}},
	}
	require.NoError(t, s.WriteUnit(second))

	old, err := s.Declarations("c:@F@old")
	require.NoError(t, err)
	assert.Empty(t, old)

	fresh, err := s.Definitions("c:@F@fresh")
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, 2, fresh[0].Line)

	units, err := s.Units()
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, second.ID, units[0].ID)
	assert.Equal(t, 1, units[0].SymbolCount)
	assert.Empty(t, units[0].Args)

	last, err := s.LastIndexed()
	require.NoError(t, err)
	assert.False(t, last.IsZero())
}

func TestDeleteUnit(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	require.NoError(t, s.WriteUnit(&Unit{
		Source:  "/src/a.c",
		Symbols: []*Symbol{{USR: "c:@x", Name: "x", FilePath: "/src/a.c", Line: 1, Column: 5}},
		Refs:    []*Reference{{USR: "c:@x", FilePath: "/src/a.c", Line: 3, Column: 10}},
	}))

	require.NoError(t, s.DeleteUnit("/src/a.c"))

	decls, err := s.Declarations("c:@x")
	require.NoError(t, err)
	assert.Empty(t, decls)
	refs, err := s.References("c:@x")
	require.NoError(t, err)
	assert.Empty(t, refs)

	assert.ErrorIs(t, s.DeleteUnit("/src/a.c"), ErrUnitNotFound)
}

func TestExtractUnit_AcrossUnits(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := map[string]string{
		"shared.h": "/// Total of all calls.\nextern int total;\nint bump(int by);\n",
		"a.c":      "#include \"shared.h\"\nint total;\nint bump(int by) { total += by; return total; }\n",
		"b.c":      "#include \"shared.h\"\nint twice(void) { return bump(2) + bump(2); }\n",
	}
	ix, err := clang.NewIndex()
	require.NoError(t, err)
	defer ix.Close()

	s := openTestStore(t)
	for _, name := range []string{"a.c", "b.c"} {
		u, err := ExtractUnit(parseUnit(t, ix, dir, name, files))
		require.NoError(t, err)
		assert.Equal(t, 0, u.ErrorCount)
		require.NoError(t, s.WriteUnit(u))
	}

	header := filepath.Join(dir, "shared.h")

	defs, err := s.Definitions("c:@F@bump")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, filepath.Join(dir, "a.c"), defs[0].FilePath)
	assert.Equal(t, "external", defs[0].Linkage)

	// The header declaration is stored by both units but reported once
	decls, err := s.Declarations("c:@F@bump")
	require.NoError(t, err)
	assert.Len(t, decls, 2)

	totals, err := s.SymbolsInFile(header)
	require.NoError(t, err)
	require.NotEmpty(t, totals)
	assert.Equal(t, "Total of all calls.", totals[0].Brief)
	assert.Equal(t, "int", totals[0].TypeSpelling)

	refs, err := s.References("c:@F@bump")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	for _, r := range refs {
		assert.Equal(t, filepath.Join(dir, "b.c"), r.FilePath)
		assert.Equal(t, 2, r.Line)
	}

	includers, err := s.Includers(header)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.c"), filepath.Join(dir, "b.c")}, includers)

	byName, err := s.SymbolsByName("bum%")
	require.NoError(t, err)
	assert.NotEmpty(t, byName)
}

func TestExtractUnit_Macros(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ix, err := clang.NewIndex()
	require.NoError(t, err)
	defer ix.Close()

	tu := parseUnit(t, ix, dir, "main.c", map[string]string{
		"main.c": "#define LIMIT 4\nint cap = LIMIT;\n",
	})
	u, err := ExtractUnit(tu)
	require.NoError(t, err)

	var macroUSR string
	for _, sym := range u.Symbols {
		if sym.Name == "LIMIT" {
			macroUSR = sym.USR
			assert.True(t, sym.IsDefinition)
		}
	}
	require.NotEmpty(t, macroUSR)

	var uses int
	for _, ref := range u.Refs {
		if ref.USR == macroUSR {
			uses++
		}
	}
	assert.Equal(t, 1, uses)
}
