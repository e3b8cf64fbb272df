package enum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for enum tables:
// - Value/Symbol round trip for plain enums
// - Aliases resolve to the first registered name
// - Mask ORs known names and ignores unknown ones
// - Unmask reports contained flags in ascending order
// - Duplicate names panic

func flags() *Table {
	return New("Flags",
		Field{"none", 0},
		Field{"detailed", 0x1},
		Field{"incomplete", 0x2},
		Field{"preamble", 0x4},
	)
}

func TestTable_ValueAndSymbol(t *testing.T) {
	t.Parallel()

	tbl := New("Severity", Field{"ignored", 0}, Field{"note", 1}, Field{"warning", 2})

	v, ok := tbl.Value("warning")
	require.True(t, ok)
	assert.Equal(t, int64(2), v)

	name, ok := tbl.Symbol(1)
	require.True(t, ok)
	assert.Equal(t, "note", name)

	_, ok = tbl.Value("fatal")
	assert.False(t, ok)
	_, ok = tbl.Symbol(99)
	assert.False(t, ok)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"ignored", "note", "warning"}, tbl.Names())
	assert.Equal(t, []int64{0, 1, 2}, tbl.Values())
}

func TestTable_AliasUsesFirstName(t *testing.T) {
	t.Parallel()

	tbl := New("CursorKind", Field{"unexposed_decl", 1}, Field{"first_decl", 1})
	name, ok := tbl.Symbol(1)
	require.True(t, ok)
	assert.Equal(t, "unexposed_decl", name)

	v, ok := tbl.Value("first_decl")
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
}

func TestTable_MaskUnmask(t *testing.T) {
	t.Parallel()

	tbl := flags()
	mask := tbl.Mask("preamble", "detailed", "bogus")
	assert.Equal(t, int64(0x5), mask)
	assert.Equal(t, []string{"detailed", "preamble"}, tbl.Unmask(mask))
	assert.Empty(t, tbl.Unmask(0))
}

func TestTable_String(t *testing.T) {
	t.Parallel()

	tbl := New("Tiny", Field{"a", 0}, Field{"b", 1})
	assert.Equal(t, "Tiny{a: 0, b: 1}", tbl.String())
}

func TestNew_DuplicateNamePanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		New("Dup", Field{"a", 0}, Field{"a", 1})
	})
}
