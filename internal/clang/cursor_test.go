package clang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Cursor:
// - Declarations and expressions lower to the expected cursor kinds
// - Evaluate folds initializers and reports non-constants as unexposed
// - Canonical is idempotent and Definition finds the defining declaration
// - Linkage and storage class follow static and block scope
// - USRs match the clang forms for functions, tags, fields and constants
// - FindReferences lists the declaration and each use in source order
// - Doc comments attach and yield brief text, to macros but not to parameters
// - Macro expansions reference their definitions
// - Visitor results steer traversal
// - Signed number literals lower to unary operators over the unsigned literal

func TestCursor_VarWithBinaryInit(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "int x = 1 + 2;\n")
	root := rootCursor(t, tu)

	children, err := root.Children()
	require.NoError(t, err)
	require.Len(t, children, 1)

	x := children[0]
	kind, err := x.Kind()
	require.NoError(t, err)
	assert.Equal(t, CursorVarDecl, kind)

	typ, err := x.Type()
	require.NoError(t, err)
	spelling, err := typ.Spelling()
	require.NoError(t, err)
	assert.Equal(t, "int", spelling)

	op := findCursor(t, x, CursorBinaryOperator, "")
	opKind, err := op.BinaryOperator()
	require.NoError(t, err)
	assert.Equal(t, BinaryAdd, opKind)

	v, err := op.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, EvalInt, v.Kind())
	assert.Equal(t, 3, v.AsInt())

	parent, err := x.SemanticParent()
	require.NoError(t, err)
	assert.True(t, parent.Equal(root))
}

func TestCursor_EvaluateNonConstant(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "int f(void);\nint y = f();\n")
	y := findCursor(t, rootCursor(t, tu), CursorVarDecl, "y")
	v, err := y.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, EvalUnexposed, v.Kind())
}

func TestCursor_CanonicalAndDefinition(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "int f(void);\nint f(void) { return 0; }\n")
	decls := findAll(t, rootCursor(t, tu), CursorFunctionDecl)
	require.Len(t, decls, 2)

	canon, err := decls[1].Canonical()
	require.NoError(t, err)
	assert.True(t, canon.Equal(decls[0]))

	again, err := canon.Canonical()
	require.NoError(t, err)
	assert.True(t, again.Equal(canon))
	assert.Equal(t, canon.Hash(), again.Hash())

	def, err := decls[0].Definition()
	require.NoError(t, err)
	assert.True(t, def.Equal(decls[1]))

	isDef, err := decls[0].IsDefinition()
	require.NoError(t, err)
	assert.False(t, isDef)
	isDef, err = decls[1].IsDefinition()
	require.NoError(t, err)
	assert.True(t, isDef)
}

func TestCursor_DefinitionMissing(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "int f(void);\n")
	f := findCursor(t, rootCursor(t, tu), CursorFunctionDecl, "f")
	def, err := f.Definition()
	require.NoError(t, err)
	assert.True(t, def.IsNull())
}

func TestCursor_Linkage(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "int pub(void) { int local = 0; return local; }\nstatic int priv(void) { return 1; }\n")
	root := rootCursor(t, tu)

	tests := []struct {
		name    string
		cursor  Cursor
		linkage LinkageKind
		storage StorageClass
	}{
		{"extern function", findCursor(t, root, CursorFunctionDecl, "pub"), LinkageExternal, StorageNone},
		{"static function", findCursor(t, root, CursorFunctionDecl, "priv"), LinkageInternal, StorageStatic},
		{"block local", findCursor(t, root, CursorVarDecl, "local"), LinkageNoLinkage, StorageNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			linkage, err := tt.cursor.Linkage()
			require.NoError(t, err)
			assert.Equal(t, tt.linkage, linkage)

			storage, err := tt.cursor.StorageClass()
			require.NoError(t, err)
			assert.Equal(t, tt.storage, storage)
		})
	}
}

func TestCursor_USR(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, `
struct Point { int x; int y; };
enum Color { Red, Green };
int counter;
static int hidden(void) { return 0; }
int area(struct Point p) { return p.x * p.y; }
`)
	root := rootCursor(t, tu)

	tests := []struct {
		kind CursorKind
		name string
		usr  string
	}{
		{CursorStructDecl, "Point", "c:@S@Point"},
		{CursorFieldDecl, "x", "c:@S@Point@FI@x"},
		{CursorEnumDecl, "Color", "c:@E@Color"},
		{CursorEnumConstantDecl, "Green", "c:@E@Color@Green"},
		{CursorVarDecl, "counter", "c:@counter"},
		{CursorFunctionDecl, "hidden", "c:main.c@F@hidden"},
		{CursorFunctionDecl, "area", "c:@F@area"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := findCursor(t, root, tt.kind, tt.name).USR()
			require.NoError(t, err)
			assert.Equal(t, tt.usr, usr)
		})
	}
}

func TestObjCUSRBuilders(t *testing.T) {
	t.Parallel()

	class := ObjCClassUSR("NSObject")
	assert.Equal(t, "c:objc(cs)NSObject", class)
	assert.Equal(t, "c:objc(cs)NSObject(im)init", ObjCMethodUSR("init", true, class))
	assert.Equal(t, "c:objc(cs)NSObject(cm)alloc", ObjCMethodUSR("alloc", false, class))
	assert.Equal(t, "c:objc(cs)NSObject(py)hash", ObjCPropertyUSR("hash", class))
	assert.Equal(t, "c:objc(cy)NSObject@Extras", ObjCCategoryUSR("NSObject", "Extras"))
	assert.Equal(t, "c:objc(pl)NSCopying", ObjCProtocolUSR("NSCopying"))
}

func TestCursor_FindReferences(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "int x;\nint f(void) { return x + x; }\n")
	x := findCursor(t, rootCursor(t, tu), CursorVarDecl, "x")
	main, err := tu.MainFile()
	require.NoError(t, err)

	var lines []uint32
	var kinds []CursorKind
	err = x.FindReferences(main, func(ref Cursor, r SourceRange) bool {
		k, _ := ref.Kind()
		kinds = append(kinds, k)
		pos, perr := r.Begin().Position(LocationExpansion)
		require.NoError(t, perr)
		lines = append(lines, pos.Line)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []CursorKind{CursorVarDecl, CursorDeclRefExpr, CursorDeclRefExpr}, kinds)
	assert.Equal(t, []uint32{1, 2, 2}, lines)
}

func TestCursor_BriefComment(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "/// Adds two numbers.\n/// Overflow wraps.\nint add(int a, int b);\n")
	add := findCursor(t, rootCursor(t, tu), CursorFunctionDecl, "add")

	brief, err := add.BriefComment()
	require.NoError(t, err)
	assert.Equal(t, "Adds two numbers. Overflow wraps.", brief)

	n, err := add.NumArguments()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	b, err := add.Argument(1)
	require.NoError(t, err)
	name, err := b.Spelling()
	require.NoError(t, err)
	assert.Equal(t, "b", name)
}

func TestCursor_CommentNotInheritedByParams(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "/// Frees a buffer.\nvoid release(char *buf);\n")
	root := rootCursor(t, tu)

	brief, err := findCursor(t, root, CursorFunctionDecl, "release").BriefComment()
	require.NoError(t, err)
	assert.Equal(t, "Frees a buffer.", brief)

	brief, err = findCursor(t, root, CursorParmDecl, "buf").BriefComment()
	require.NoError(t, err)
	assert.Empty(t, brief)
}

func TestCursor_MacroComment(t *testing.T) {
	t.Parallel()

	tu, _ := parseFiles(t, FlagDetailedPreprocessingRecord, map[string]string{
		"main.c": "/// Upper bound on attempts.\n#define MAX_RETRIES 3\n\n// plain\n#define PLAIN 1\n",
	})
	root := rootCursor(t, tu)

	brief, err := findCursor(t, root, CursorMacroDefinition, "MAX_RETRIES").BriefComment()
	require.NoError(t, err)
	assert.Equal(t, "Upper bound on attempts.", brief)

	brief, err = findCursor(t, root, CursorMacroDefinition, "PLAIN").BriefComment()
	require.NoError(t, err)
	assert.Empty(t, brief)
}

func TestCursor_MacroExpansion(t *testing.T) {
	t.Parallel()

	tu, _ := parseFiles(t, FlagDetailedPreprocessingRecord, map[string]string{
		"main.c": "#define SQUARE(v) ((v) * (v))\nint nine = SQUARE(3);\n",
	})
	root := rootCursor(t, tu)

	def := findCursor(t, root, CursorMacroDefinition, "SQUARE")
	fnLike, err := def.IsMacroFunctionLike()
	require.NoError(t, err)
	assert.True(t, fnLike)

	exp := findCursor(t, root, CursorMacroExpansion, "SQUARE")
	ref, err := exp.Referenced()
	require.NoError(t, err)
	assert.True(t, ref.Equal(def))

	v, err := findCursor(t, root, CursorVarDecl, "nine").Evaluate()
	require.NoError(t, err)
	assert.Equal(t, int64(9), v.AsLongLong())
}

func TestCursor_EnumValues(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "enum E { A = -1, B, C = 10 };\n")
	root := rootCursor(t, tu)

	for name, want := range map[string]int64{"A": -1, "B": 0, "C": 10} {
		v, err := findCursor(t, root, CursorEnumConstantDecl, name).EnumValue()
		require.NoError(t, err)
		assert.Equal(t, want, v, name)
	}

	_, err := findCursor(t, root, CursorEnumDecl, "E").EnumValue()
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestCursor_SignedLiterals(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "int y = -1;\nint z = +4;\nint a[] = {1, -2, 3};\n")
	root := rootCursor(t, tu)

	diags, err := tu.Diagnostics()
	require.NoError(t, err)
	assert.Empty(t, diags)

	for name, want := range map[string]int{"y": -1, "z": 4} {
		decl := findCursor(t, root, CursorVarDecl, name)
		v, err := decl.Evaluate()
		require.NoError(t, err)
		assert.Equal(t, EvalInt, v.Kind(), name)
		assert.Equal(t, want, v.AsInt(), name)

		op := findCursor(t, decl, CursorUnaryOperator, "")
		lit := findCursor(t, op, CursorIntegerLiteral, "")
		lv, err := lit.Evaluate()
		require.NoError(t, err)
		assert.Equal(t, abs(want), lv.AsInt(), name)
	}

	neg := findCursor(t, findCursor(t, root, CursorVarDecl, "y"), CursorUnaryOperator, "")
	kind, err := neg.UnaryOperator()
	require.NoError(t, err)
	assert.Equal(t, UnaryMinus, kind)

	list := findCursor(t, findCursor(t, root, CursorVarDecl, "a"), CursorInitListExpr, "")
	elems, err := list.Children()
	require.NoError(t, err)
	require.Len(t, elems, 3)
	var got []int
	for _, e := range elems {
		v, err := e.Evaluate()
		require.NoError(t, err)
		got = append(got, v.AsInt())
	}
	assert.Equal(t, []int{1, -2, 3}, got)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestCursor_NullCursor(t *testing.T) {
	t.Parallel()

	c := NullCursor()
	kind, err := c.Kind()
	require.NoError(t, err)
	assert.Equal(t, CursorInvalidFile, kind)
	assert.True(t, c.Equal(NullCursor()))

	_, err = c.SemanticParent()
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestTraverse_Results(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "int a;\nint f(void) { int b; return b; }\nint c;\n")
	root := rootCursor(t, tu)

	var top []string
	broke, err := Traverse(root, func(c, _ Cursor) ChildVisitResult {
		s, _ := c.Spelling()
		top = append(top, s)
		return ChildVisitContinue
	})
	require.NoError(t, err)
	assert.False(t, broke)
	assert.Equal(t, []string{"a", "f", "c"}, top)

	var seen []string
	broke, err = Traverse(root, func(c, _ Cursor) ChildVisitResult {
		s, _ := c.Spelling()
		seen = append(seen, s)
		if s == "b" {
			return ChildVisitBreak
		}
		return ChildVisitRecurse
	})
	require.NoError(t, err)
	assert.True(t, broke)
	assert.NotContains(t, seen, "c")
	assert.Contains(t, seen, "b")
}

func TestCursorAt(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "int value = 4;\n")
	main, err := tu.MainFile()
	require.NoError(t, err)

	loc, err := tu.Location(main, 1, 5)
	require.NoError(t, err)
	c, err := tu.CursorAt(loc)
	require.NoError(t, err)

	kind, err := c.Kind()
	require.NoError(t, err)
	assert.Equal(t, CursorVarDecl, kind)
}
