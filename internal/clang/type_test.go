package clang

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Type:
// - Record layout pads fields to their alignment on LP64 and ILP32
// - OffsetOf reports bit offsets and fails for unknown fields
// - Incomplete types fail SizeOf with LayoutError
// - Pointer, array and function types expose their parts
// - Typedef names arrive elaborated, expose their typedef and canonicalize to the underlying type

func varType(t *testing.T, tu *TranslationUnit, name string) Type {
	t.Helper()
	typ, err := findCursor(t, rootCursor(t, tu), CursorVarDecl, name).Type()
	require.NoError(t, err)
	return typ
}

func TestType_RecordLayout(t *testing.T) {
	t.Parallel()

	const src = "struct S { char c; int i; double d; };\nstruct S s;\n"
	tests := []struct {
		name    string
		args    []string
		size    int64
		align   int64
		offsetD int64
	}{
		{"lp64", nil, 16, 8, 64},
		{"i386", []string{"-m32"}, 16, 4, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			typ, err := varType(t, parseSource(t, src, tt.args...), "s").Canonical()
			require.NoError(t, err)

			size, err := typ.SizeOf()
			require.NoError(t, err)
			assert.Equal(t, tt.size, size)

			align, err := typ.AlignOf()
			require.NoError(t, err)
			assert.Equal(t, tt.align, align)

			off, err := typ.OffsetOf("i")
			require.NoError(t, err)
			assert.Equal(t, int64(32), off)

			off, err = typ.OffsetOf("d")
			require.NoError(t, err)
			assert.Equal(t, tt.offsetD, off)
		})
	}
}

func TestType_OffsetOfUnknownField(t *testing.T) {
	t.Parallel()

	typ, err := varType(t, parseSource(t, "struct S { int a; } s;\n"), "s").Canonical()
	require.NoError(t, err)

	_, err = typ.OffsetOf("missing")
	var le *LayoutError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, LayoutErrorInvalidFieldName, le.Code)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestType_IncompleteSize(t *testing.T) {
	t.Parallel()

	typ, err := varType(t, parseSource(t, "struct Opaque;\nstruct Opaque *p;\n"), "p").PointeeType()
	require.NoError(t, err)

	_, err = typ.SizeOf()
	var le *LayoutError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, LayoutErrorIncomplete, le.Code)
}

func TestType_Parts(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "const char *name;\nint table[4];\nint (*handler)(int, ...);\n")

	name := varType(t, tu, "name")
	kind, err := name.Kind()
	require.NoError(t, err)
	assert.Equal(t, TypePointer, kind)
	pointee, err := name.PointeeType()
	require.NoError(t, err)
	isConst, err := pointee.IsConstQualified()
	require.NoError(t, err)
	assert.True(t, isConst)

	table := varType(t, tu, "table")
	n, err := table.NumElements()
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	size, err := table.SizeOf()
	require.NoError(t, err)
	assert.Equal(t, int64(16), size)

	fn, err := varType(t, tu, "handler").PointeeType()
	require.NoError(t, err)
	fn, err = fn.Canonical()
	require.NoError(t, err)
	args, err := fn.NumArgTypes()
	require.NoError(t, err)
	assert.Equal(t, 1, args)
	variadic, err := fn.IsVariadic()
	require.NoError(t, err)
	assert.True(t, variadic)
}

func TestType_TypedefCanonical(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "typedef unsigned long size;\nsize n;\n")
	typ := varType(t, tu, "n")

	kind, err := typ.Kind()
	require.NoError(t, err)
	assert.Equal(t, TypeElaborated, kind)

	name, err := typ.TypedefName()
	require.NoError(t, err)
	assert.Equal(t, "size", name)

	named, err := typ.NamedType()
	require.NoError(t, err)
	kind, err = named.Kind()
	require.NoError(t, err)
	assert.Equal(t, TypeTypedef, kind)
	name, err = named.TypedefName()
	require.NoError(t, err)
	assert.Equal(t, "size", name)

	canon, err := typ.Canonical()
	require.NoError(t, err)
	kind, err = canon.Kind()
	require.NoError(t, err)
	assert.Equal(t, TypeULong, kind)

	decl, err := typ.Declaration()
	require.NoError(t, err)
	declKind, err := decl.Kind()
	require.NoError(t, err)
	assert.Equal(t, CursorTypedefDecl, declKind)
}
