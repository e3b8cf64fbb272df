package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cxgraph/internal/clang"
	"github.com/mvp-joe/cxgraph/internal/config"
	"github.com/mvp-joe/cxgraph/internal/storage"
)

// Test Plan for the inspection commands:
// - dump prints main-file cursors indented by depth and skips included headers
// - dump --match flattens the tree to cursors whose spelling matches the glob
// - dump rejects invalid glob patterns
// - diag prints clang-formatted diagnostics with fix-its and counts errors
// - tokens lists each token with its position and kind, optionally its cursor
// - usage prints the target and a resource table with a total row
// - splitArgs separates compiler arguments given after "--"
// - version prints the build details or, with --short, only the release

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func parseTestUnit(t *testing.T, files map[string]string, main string) *clang.TranslationUnit {
	t.Helper()
	dir := writeFiles(t, files)
	ix, err := clang.NewIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })

	tu, err := ix.Parse(filepath.Join(dir, main), nil, nil, clang.FlagDetailedPreprocessingRecord)
	require.NoError(t, err)
	return tu
}

func TestRunDump(t *testing.T) {
	t.Parallel()

	tu := parseTestUnit(t, map[string]string{
		"hidden.h": "int hidden;\n",
		"main.c":   "#include \"hidden.h\"\nint x = 1 + 2;\n",
	}, "main.c")

	var out bytes.Buffer
	require.NoError(t, runDump(&out, tu, "", true))

	text := out.String()
	assert.Contains(t, text, "translation_unit ")
	assert.Contains(t, text, "\n  var_decl x <2:5> 'int'\n")
	assert.Contains(t, text, "\n    binary_operator")
	assert.Contains(t, text, "inclusion_directive hidden.h")
	assert.NotContains(t, text, "var_decl hidden")
}

func TestRunDump_Match(t *testing.T) {
	t.Parallel()

	tu := parseTestUnit(t, map[string]string{
		"main.c": "int alpha;\nint beta;\nint alpine;\n",
	}, "main.c")

	var out bytes.Buffer
	require.NoError(t, runDump(&out, tu, "al*", false))

	text := out.String()
	assert.Contains(t, text, "\nvar_decl alpha <1:5>\n")
	assert.Contains(t, text, "\nvar_decl alpine <3:5>\n")
	assert.NotContains(t, text, "beta")
}

func TestRunDump_InvalidMatch(t *testing.T) {
	t.Parallel()

	tu := parseTestUnit(t, map[string]string{"main.c": "int a;\n"}, "main.c")
	err := runDump(&bytes.Buffer{}, tu, "[oops", false)
	assert.ErrorContains(t, err, "invalid --match pattern")
}

func TestRunDiag(t *testing.T) {
	t.Parallel()

	tu := parseTestUnit(t, map[string]string{
		"main.c": "int x = 1\n",
	}, "main.c")

	var out bytes.Buffer
	errs, err := runDiag(&out, tu, config.Default())
	require.NoError(t, err)
	assert.Equal(t, 1, errs)

	text := out.String()
	assert.Contains(t, text, "main.c:1:10: error: expected ';' after top level declarator")
	assert.Contains(t, text, "  fix-it: insert \";\" at 1:10\n")
	assert.Contains(t, text, "1 diagnostic(s), 1 error(s)\n")
}

func TestRunDiag_Clean(t *testing.T) {
	t.Parallel()

	tu := parseTestUnit(t, map[string]string{"main.c": "int ok;\n"}, "main.c")

	var out bytes.Buffer
	errs, err := runDiag(&out, tu, config.Default())
	require.NoError(t, err)
	assert.Zero(t, errs)
	assert.Empty(t, out.String())
}

func TestRunTokens(t *testing.T) {
	t.Parallel()

	tu := parseTestUnit(t, map[string]string{"main.c": "int x = 42;\n"}, "main.c")

	var out bytes.Buffer
	require.NoError(t, runTokens(&out, tu, false))
	assert.Equal(t, []string{
		"1:1\tkeyword\t\"int\"",
		"1:5\tidentifier\t\"x\"",
		"1:7\tpunctuation\t\"=\"",
		"1:9\tliteral\t\"42\"",
		"1:11\tpunctuation\t\";\"",
	}, splitLines(out.String()))

	out.Reset()
	require.NoError(t, runTokens(&out, tu, true))
	lines := splitLines(out.String())
	require.Len(t, lines, 5)
	assert.Equal(t, "1:9\tliteral\t\"42\"\tinteger_literal", lines[3])
}

func TestRunUsage(t *testing.T) {
	t.Parallel()

	tu := parseTestUnit(t, map[string]string{"main.c": "int x;\n"}, "main.c")

	var out bytes.Buffer
	require.NoError(t, runUsage(&out, tu))

	text := out.String()
	assert.Contains(t, text, "(64-bit pointers)")
	assert.Contains(t, text, "KIND")
	assert.Contains(t, text, "total")
}

func TestSplitArgs(t *testing.T) {
	t.Parallel()

	var positional, compiler []string
	cmd := &cobra.Command{
		Use: "test",
		Run: func(cmd *cobra.Command, args []string) {
			positional, compiler = splitArgs(cmd, args)
		},
	}
	cmd.SetArgs([]string{"main.c", "--", "-DDEBUG", "-Iinclude"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"main.c"}, positional)
	assert.Equal(t, []string{"-DDEBUG", "-Iinclude"}, compiler)
}

func splitLines(s string) []string {
	var lines []string
	for _, l := range bytes.Split(bytes.TrimRight([]byte(s), "\n"), []byte("\n")) {
		lines = append(lines, string(l))
	}
	return lines
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, runVersion(&out, true))
	assert.Equal(t, Version+"\n", out.String())

	out.Reset()
	require.NoError(t, runVersion(&out, false))
	text := out.String()
	assert.True(t, strings.HasPrefix(text, "cxgraph "+Version+" (commit "+GitCommit+", built "+BuildDate+")\n"))
	assert.Contains(t, text, runtime.GOOS+"/"+runtime.GOARCH)
	assert.Contains(t, text, "index schema: "+storage.SchemaVersion+"\n")
}
