package clang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for pretty printing and the preprocessor:
// - Functions print with parameter names; terse output drops bodies
// - Records print their fields indented by the policy
// - Macro definitions print with their parameters and body
// - #if 0 blocks are reported as skipped ranges
// - #if/#elif/#else chains keep only the first true branch

func TestPrettyPrinted_Function(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "static int add(int a, int b) { return a + b; }\n")
	add := findCursor(t, rootCursor(t, tu), CursorFunctionDecl, "add")

	policy, err := add.PrintingPolicy()
	require.NoError(t, err)
	text, err := add.PrettyPrinted(policy)
	require.NoError(t, err)
	assert.Equal(t, "static int add(int a, int b) { return a + b; }", text)

	policy.Set(PolicyTerseOutput, 1)
	policy.Set(PolicySuppressSpecifiers, 1)
	text, err = add.PrettyPrinted(policy)
	require.NoError(t, err)
	assert.Equal(t, "int add(int a, int b)", text)
}

func TestPrettyPrinted_Record(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "struct Flags { unsigned ready : 1; char *name; };\n")
	text, err := findCursor(t, rootCursor(t, tu), CursorStructDecl, "Flags").PrettyPrinted(nil)
	require.NoError(t, err)
	assert.Equal(t, "struct Flags {\n    unsigned int ready : 1;\n    char *name;\n}", text)
}

func TestPrettyPrinted_Macro(t *testing.T) {
	t.Parallel()

	tu, _ := parseFiles(t, FlagDetailedPreprocessingRecord, map[string]string{
		"main.c": "#define MAX(a, b) ((a) > (b) ? (a) : (b))\n",
	})
	text, err := findCursor(t, rootCursor(t, tu), CursorMacroDefinition, "MAX").PrettyPrinted(nil)
	require.NoError(t, err)
	assert.Equal(t, "#define MAX(a, b) ( ( a ) > ( b ) ? ( a ) : ( b ) )", text)
}

func TestSkippedRanges(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "#if 0\nint hidden;\n#endif\nint shown;\n")
	main, err := tu.MainFile()
	require.NoError(t, err)

	ranges, err := tu.SkippedRanges(main)
	require.NoError(t, err)
	require.Len(t, ranges, 1)

	begin, err := ranges[0].Begin().Position(LocationExpansion)
	require.NoError(t, err)
	end, err := ranges[0].End().Position(LocationExpansion)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), begin.Line)
	assert.Equal(t, uint32(3), end.Line)

	children, err := rootCursor(t, tu).Children()
	require.NoError(t, err)
	require.Len(t, children, 1)
	name, err := children[0].Spelling()
	require.NoError(t, err)
	assert.Equal(t, "shown", name)
}

func TestConditionalChain(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "#define LEVEL 2\n"+
		"#if LEVEL > 2\nint high;\n#elif defined(LEVEL) && LEVEL == 2\nint mid;\n#else\nint low;\n#endif\n"+
		"#ifndef LEVEL\nint none;\n#endif\n")

	var names []string
	for _, c := range findAll(t, rootCursor(t, tu), CursorVarDecl) {
		name, err := c.Spelling()
		require.NoError(t, err)
		names = append(names, name)
	}
	assert.Equal(t, []string{"mid"}, names)

	main, err := tu.MainFile()
	require.NoError(t, err)
	ranges, err := tu.SkippedRanges(main)
	require.NoError(t, err)
	assert.Len(t, ranges, 3)

	diags, err := tu.Diagnostics()
	require.NoError(t, err)
	assert.Zero(t, diags.Errors())
}
