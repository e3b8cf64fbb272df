package clang

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for tokens and completion:
// - TokenizeFile classifies keywords, identifiers, literals and punctuation
// - AnnotateTokens maps tokens to their innermost cursor
// - Completion after '.' lists the record's fields
// - Completion in a body lists globals, locals and keywords by priority
// - Macros are offered only when asked for

func TestTokenizeFile(t *testing.T) {
	t.Parallel()

	tu := parseSource(t, "int x = 42;\n")
	main, err := tu.MainFile()
	require.NoError(t, err)

	tokens, err := tu.TokenizeFile(main)
	require.NoError(t, err)

	var kinds []TokenKind
	var texts []string
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind())
		texts = append(texts, tok.Spelling())
	}
	assert.Equal(t, []string{"int", "x", "=", "42", ";"}, texts)
	assert.Equal(t, []TokenKind{TokenKeyword, TokenIdentifier, TokenPunctuation, TokenLiteral, TokenPunctuation}, kinds)

	cursors, err := tu.AnnotateTokens(tokens)
	require.NoError(t, err)
	require.Len(t, cursors, len(tokens))
	kind, err := cursors[3].Kind()
	require.NoError(t, err)
	assert.Equal(t, CursorIntegerLiteral, kind)
}

const completionSource = `/// Running total.
int counter;
struct Pair { int left; int right; };
#define LIMIT 10
int sum(struct Pair p) {
  int local = 0;
  local = p.left;
  return local;
}
`

func completeAt(t *testing.T, line, col uint32, flags CodeCompleteFlags) *CodeCompleteResults {
	t.Helper()
	tu, dir := parseFiles(t, FlagNone, map[string]string{"main.c": completionSource})
	res, err := tu.CodeComplete(filepath.Join(dir, "main.c"), line, col, nil, flags)
	require.NoError(t, err)
	return res
}

func typedTexts(rs []CompletionResult) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.String.TypedText())
	}
	return out
}

func TestCodeComplete_Members(t *testing.T) {
	t.Parallel()

	// Line 7 is "  local = p.left;"; column 13 sits after "p.".
	res := completeAt(t, 7, 13, 0)
	assert.Equal(t, ContextDotMemberAccess, res.Contexts)
	assert.Equal(t, CursorStructDecl, res.ContainerKind)
	assert.Equal(t, []string{"left", "right"}, typedTexts(res.Results))
	assert.Equal(t, "Pair", res.Results[0].String.Parent)
}

func TestCodeComplete_Values(t *testing.T) {
	t.Parallel()

	// Line 8 is "  return local;"; column 10 sits before "local".
	res := completeAt(t, 8, 10, CompleteIncludeBriefComments)
	texts := typedTexts(res.Results)
	assert.Contains(t, texts, "local")
	assert.Contains(t, texts, "counter")
	assert.Contains(t, texts, "sum")
	assert.Contains(t, texts, "return")
	assert.NotContains(t, texts, "LIMIT")
	assert.Equal(t, "local", texts[0])

	for _, r := range res.Results {
		if r.String.TypedText() == "counter" {
			assert.Equal(t, "Running total.", r.String.BriefComment)
		}
	}

	filtered := res.Filter("cou")
	require.Len(t, filtered, 1)
	assert.Equal(t, "counter", filtered[0].String.TypedText())
}

func TestCodeComplete_Macros(t *testing.T) {
	t.Parallel()

	res := completeAt(t, 8, 10, CompleteIncludeMacros)
	assert.Contains(t, typedTexts(res.Results), "LIMIT")
}
