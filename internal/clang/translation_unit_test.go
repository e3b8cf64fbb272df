package clang

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for TranslationUnit:
// - Parse builds a unit whose root cursor maps back to the unit
// - Missing main files and bad arguments fail with ParseError
// - Reparse bumps the generation and invalidates earlier cursors, types, locations and files
// - Suspend and Close invalidate handles; Reparse revives a suspended unit
// - Reparse, Suspend and Close are refused during a traversal
// - Includes resolve through unsaved files; #pragma once marks a guard that survives Reparse
// - IncludeOrder lists headers before their includers
// - Save refuses units with errors; Load restores a saved unit

func TestParse_RootCursor(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "int x = 1 + 2;\n")
	root := rootCursor(t, tu)

	kind, err := root.Kind()
	require.NoError(t, err)
	assert.Equal(t, CursorTranslationUnit, kind)

	owner, err := root.TranslationUnit()
	require.NoError(t, err)
	assert.Same(t, tu, owner)

	spelling, err := tu.Spelling()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(spelling, "main.c"))
	assert.Equal(t, uint64(1), tu.Generation())
}

func TestParse_MissingFile(t *testing.T) {
	t.Parallel()

	ix := newTestIndex(t)
	_, err := ix.Parse(filepath.Join(t.TempDir(), "absent.c"), nil, nil, FlagNone)
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestParse_NoInput(t *testing.T) {
	t.Parallel()

	ix := newTestIndex(t)
	_, err := ix.Parse("", []string{"-Wall"}, nil, FlagNone)
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ErrorInvalidArguments, pe.Code)
}

func TestReparse_InvalidatesHandles(t *testing.T) {
	t.Parallel()

	tu, dir := parseFiles(t, FlagNone, map[string]string{"main.c": "int x;\n"})
	old := findCursor(t, rootCursor(t, tu), CursorVarDecl, "x")

	err := tu.Reparse([]UnsavedFile{{Filename: filepath.Join(dir, "main.c"), Contents: []byte("int y;\n")}}, DefaultReparseOptions(tu))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), tu.Generation())

	_, err = old.Kind()
	assert.ErrorIs(t, err, ErrInvalidHandle)

	findCursor(t, rootCursor(t, tu), CursorVarDecl, "y")
}

func TestReparse_InvalidatesValueHandles(t *testing.T) {
	t.Parallel()

	tu, dir := parseFiles(t, FlagNone, map[string]string{"main.c": "long x;\n"})
	x := findCursor(t, rootCursor(t, tu), CursorVarDecl, "x")
	typ, err := x.Type()
	require.NoError(t, err)
	loc, err := x.Location()
	require.NoError(t, err)
	mainFile, err := tu.MainFile()
	require.NoError(t, err)

	require.NoError(t, tu.Reparse(nil, DefaultReparseOptions(tu)))

	_, err = typ.Kind()
	assert.ErrorIs(t, err, ErrInvalidHandle)
	_, err = typ.Spelling()
	assert.ErrorIs(t, err, ErrInvalidHandle)
	_, err = loc.Position(LocationExpansion)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	_, err = mainFile.Name()
	assert.ErrorIs(t, err, ErrInvalidHandle)

	fresh, err := tu.MainFile()
	require.NoError(t, err)
	name, err := fresh.Name()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "main.c"), name)
}

func TestSuspend_ThenReparse(t *testing.T) {
	t.Parallel()

	tu, dir := parseFiles(t, FlagNone, map[string]string{"main.c": "int x;\n"})
	require.NoError(t, tu.Suspend())

	_, err := tu.Cursor()
	assert.ErrorIs(t, err, ErrInvalidHandle)

	require.NoError(t, tu.Reparse([]UnsavedFile{{Filename: filepath.Join(dir, "main.c"), Contents: []byte("int x;\n")}}, 0))
	findCursor(t, rootCursor(t, tu), CursorVarDecl, "x")
}

func TestClose_InvalidatesHandles(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "int x;\n")
	root := rootCursor(t, tu)
	require.NoError(t, tu.Close())
	require.NoError(t, tu.Close())

	_, err := root.Kind()
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.ErrorIs(t, tu.Reparse(nil, 0), ErrInvalidHandle)
}

func TestTraversal_RefusesLifecycleChanges(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "int a;\nint b;\n")
	var reparseErr, suspendErr, closeErr error
	broke, err := Traverse(rootCursor(t, tu), func(c, _ Cursor) ChildVisitResult {
		reparseErr = tu.Reparse(nil, 0)
		suspendErr = tu.Suspend()
		closeErr = tu.Close()
		return ChildVisitBreak
	})
	require.NoError(t, err)
	assert.True(t, broke)
	assert.ErrorIs(t, reparseErr, ErrUnsupportedOperation)
	assert.ErrorIs(t, suspendErr, ErrUnsupportedOperation)
	assert.ErrorIs(t, closeErr, ErrUnsupportedOperation)

	_, err = tu.Cursor()
	assert.NoError(t, err)
}

func TestIncludes_PragmaOnce(t *testing.T) {
	t.Parallel()

	tu, dir := parseFiles(t, FlagDetailedPreprocessingRecord, map[string]string{
		"main.c": "#include \"a.h\"\n#include \"a.h\"\nint main(void) { return value; }\n",
		"a.h":    "#pragma once\nint value;\n",
	})

	diags, err := tu.Diagnostics()
	require.NoError(t, err)
	assert.Zero(t, diags.Errors())

	header, ok, err := tu.File(filepath.Join(dir, "a.h"))
	require.NoError(t, err)
	require.True(t, ok)

	guarded, err := tu.IsFileMultipleIncludeGuarded(header)
	require.NoError(t, err)
	assert.True(t, guarded)

	dirs := findAll(t, rootCursor(t, tu), CursorInclusionDirective)
	require.Len(t, dirs, 2)
	included, err := dirs[0].IncludedFile()
	require.NoError(t, err)
	assert.True(t, included.Equal(header))

	var visited int
	require.NoError(t, tu.Inclusions(func(File, []SourceLocation) { visited++ }))
	assert.GreaterOrEqual(t, visited, 2)
}

func TestIncludes_PragmaOnceAfterReparse(t *testing.T) {
	t.Parallel()

	tu, dir := parseFiles(t, FlagNone, map[string]string{
		"main.c": "#include \"a.h\"\n#include \"a.h\"\nint use(void) { return value; }\n",
		"a.h":    "#pragma once\nint value = 1;\n",
	})

	for pass := 0; pass < 2; pass++ {
		if pass > 0 {
			require.NoError(t, tu.Reparse(nil, DefaultReparseOptions(tu)))
		}

		diags, err := tu.Diagnostics()
		require.NoError(t, err)
		assert.Zero(t, diags.Errors(), "pass %d", pass)

		header, ok, err := tu.File(filepath.Join(dir, "a.h"))
		require.NoError(t, err)
		require.True(t, ok)
		guarded, err := tu.IsFileMultipleIncludeGuarded(header)
		require.NoError(t, err)
		assert.True(t, guarded, "pass %d", pass)

		assert.Len(t, findAll(t, rootCursor(t, tu), CursorVarDecl), 1, "pass %d", pass)
	}
}

func TestIncludeOrder(t *testing.T) {
	t.Parallel()

	tu, _ := parseFiles(t, FlagNone, map[string]string{
		"main.c": "#include \"b.h\"\nint main(void) { return A + B; }\n",
		"b.h":    "#include \"a.h\"\n#define B 2\n",
		"a.h":    "#define A 1\n",
	})

	order, err := tu.IncludeOrder()
	require.NoError(t, err)
	require.Len(t, order, 3)
	assert.Equal(t, "a.h", filepath.Base(order[0]))
	assert.Equal(t, "b.h", filepath.Base(order[1]))
	assert.Equal(t, "main.c", filepath.Base(order[2]))

	cycles, err := tu.IncludeCycles()
	require.NoError(t, err)
	assert.Empty(t, cycles)
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	tu, dir := parseFiles(t, FlagNone, map[string]string{"main.c": "int x = 1 + 2;\n"})
	path := filepath.Join(dir, "main.ast")
	require.NoError(t, tu.Save(path, DefaultSaveOptions(tu)))

	loaded, err := tu.index.Load(path)
	require.NoError(t, err)

	x := findCursor(t, rootCursor(t, loaded), CursorVarDecl, "x")
	v, err := x.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, EvalInt, v.Kind())
	assert.Equal(t, int64(3), v.AsLongLong())
}

func TestSave_RefusesErrors(t *testing.T) {
	t.Parallel()

	tu, dir := parseFiles(t, FlagNone, map[string]string{"main.c": "int x = \n"})
	err := tu.Save(filepath.Join(dir, "main.ast"), 0)
	require.Error(t, err)

	var se *SaveUnitError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, SaveErrorTranslationErrors, se.Code)
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := newTestIndex(t).Load(filepath.Join(t.TempDir(), "none.ast"))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ErrorASTReadError, pe.Code)
}

func TestResourceUsage(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "struct S { int a; };\nint f(struct S s) { return s.a; }\n")
	usage, err := tu.ResourceUsage()
	require.NoError(t, err)
	require.NotEmpty(t, usage)

	byKind := map[ResourceUsageKind]uint64{}
	for _, e := range usage {
		byKind[e.Kind] = e.Amount
	}
	assert.NotZero(t, byKind[UsageAST])
	assert.NotZero(t, byKind[UsageSourceManagerContentCache])
}

func TestTargetInfo(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "int x;\n", "-m32")
	info, err := tu.TargetInfo()
	require.NoError(t, err)
	assert.Equal(t, 32, info.PointerWidth)
	assert.True(t, strings.HasPrefix(info.Triple, "i386"))
}
