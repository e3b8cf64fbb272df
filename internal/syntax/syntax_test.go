package syntax

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for syntax:
// - Parse copies the tree with kinds, fields and positions
// - Missing tokens are flagged and HasError is set
// - Field lookup helpers find declarators and values
// - Leaves yields tokens in order and keeps literals whole
// - Cache returns the same tree for unchanged content and counts hits

func TestParse_Declaration(t *testing.T) {
	t.Parallel()

	src := []byte("int x = 1 + 2;\n")
	f, err := Parse("main.c", src)
	require.NoError(t, err)
	require.NotNil(t, f.Root)

	assert.Equal(t, "translation_unit", f.Root.Kind)
	assert.False(t, f.HasError)
	require.Len(t, f.Root.NamedChildren(), 1)

	decl := f.Root.NamedChildren()[0]
	assert.Equal(t, "declaration", decl.Kind)
	assert.Equal(t, "int", decl.ChildByField("type").Text(src))

	init := decl.ChildByField("declarator")
	require.NotNil(t, init)
	assert.Equal(t, "init_declarator", init.Kind)
	assert.Equal(t, "x", init.ChildByField("declarator").Text(src))

	value := init.ChildByField("value")
	require.NotNil(t, value)
	assert.Equal(t, "binary_expression", value.Kind)
	assert.Equal(t, "1 + 2", value.Text(src))
	assert.Equal(t, uint32(8), value.StartByte)
	assert.Equal(t, uint32(0), value.Start.Row)
	assert.Same(t, init, value.Parent)
}

func TestParse_MissingSemicolon(t *testing.T) {
	t.Parallel()

	f, err := Parse("main.c", []byte("int x = 1\n"))
	require.NoError(t, err)
	assert.True(t, f.HasError)

	var missing *Node
	Walk(f.Root, func(n *Node) bool {
		if n.Missing {
			missing = n
		}
		return true
	})
	require.NotNil(t, missing)
	assert.Equal(t, ";", missing.Kind)
	assert.Equal(t, missing.StartByte, missing.EndByte)
}

func TestLeaves(t *testing.T) {
	t.Parallel()

	src := []byte(`char *s = "a b";`)
	f, err := Parse("main.c", src)
	require.NoError(t, err)

	var texts []string
	for _, leaf := range Leaves(f.Root) {
		texts = append(texts, leaf.Text(src))
	}
	assert.Equal(t, []string{"char", "*", "s", "=", `"a b"`, ";"}, texts)
}

func TestCache_ReusesUnchangedContent(t *testing.T) {
	t.Parallel()

	cache, err := NewCache(1<<20, time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	src := []byte("struct S { int a; };\n")
	first, err := cache.Parse("s.h", src)
	require.NoError(t, err)
	second, err := cache.Parse("s.h", src)
	require.NoError(t, err)
	assert.Same(t, first, second)

	third, err := cache.Parse("s.h", []byte("struct S { long a; };\n"))
	require.NoError(t, err)
	assert.NotSame(t, first, third)

	stats := cache.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
}

func TestNewCache_RejectsZeroCapacity(t *testing.T) {
	t.Parallel()

	_, err := NewCache(0, 0)
	assert.Error(t, err)
}
