package comment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for comment parsing:
// - StripMarkers handles block, line, bang and trailing doc markers
// - Paragraphs split on blank lines and keep leading spaces like libclang
// - \brief wins over the first paragraph for Brief
// - \param resolves indexes and explicit directions
// - Inline commands and HTML tags become their own nodes
// - \code blocks become verbatim block lines
// - HTML and XML renderings carry brief, params and returns

func TestStripMarkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"block", "/** Adds.\n * More.\n */", []string{" Adds.", " More."}},
		{"bang block", "/*! Bang. */", []string{" Bang."}},
		{"triple slash", "/// One\n/// Two", []string{" One", " Two"}},
		{"bang line", "//! Top", []string{" Top"}},
		{"trailing", "///< After", []string{" After"}},
		{"trailing block", "/**< Field */", []string{" Field"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkers(tt.raw))
		})
	}
}

func TestParse_ParagraphsAndBrief(t *testing.T) {
	t.Parallel()

	full := Parse("/// First line\n/// continues.\n///\n/// Second paragraph.", nil)
	require.Equal(t, KindFullComment, full.Kind)
	require.Len(t, full.Children, 2)

	first := full.Children[0]
	assert.Equal(t, KindParagraph, first.Kind)
	require.Len(t, first.Children, 2)
	assert.Equal(t, " First line", first.Children[0].Text)
	assert.True(t, first.Children[0].TrailingNewline)

	assert.Equal(t, "First line continues.", full.Brief())
}

func TestParse_BriefCommandWins(t *testing.T) {
	t.Parallel()

	full := Parse("/**\n * Long text first.\n * \\brief Short one.\n */", nil)
	assert.Equal(t, "Short one.", full.Brief())
}

func TestParse_ParamCommands(t *testing.T) {
	t.Parallel()

	full := Parse("/**\n * Adds.\n * \\param[in,out] b second\n * \\param a first\n * \\param zz ghost\n * \\returns sum\n */", []string{"a", "b"})

	var params []*Node
	var returns *Node
	for _, ch := range full.Children {
		switch ch.Kind {
		case KindParamCommand:
			params = append(params, ch)
		case KindBlockCommand:
			returns = ch
		}
	}
	require.Len(t, params, 3)

	assert.Equal(t, "b", params[0].Param.ParamName)
	assert.Equal(t, 1, params[0].Param.Index)
	assert.True(t, params[0].Param.IndexValid)
	assert.Equal(t, DirectionInOut, params[0].Param.Direction)
	assert.True(t, params[0].Param.DirectionExplicit)

	assert.Equal(t, 0, params[1].Param.Index)
	assert.False(t, params[1].Param.DirectionExplicit)
	assert.Equal(t, DirectionIn, params[1].Param.Direction)

	assert.False(t, params[2].Param.IndexValid)

	require.NotNil(t, returns)
	assert.Equal(t, "returns", returns.Block.Name)
	assert.Equal(t, " sum", returns.Paragraph().Children[0].Text)
}

func TestParse_InlineAndHTML(t *testing.T) {
	t.Parallel()

	full := Parse("/// Use \\c foo with <b>care</b>.", nil)
	require.Len(t, full.Children, 1)
	para := full.Children[0]

	kinds := make([]Kind, 0, len(para.Children))
	for _, ch := range para.Children {
		kinds = append(kinds, ch.Kind)
	}
	assert.Equal(t, []Kind{KindText, KindInlineCommand, KindText, KindHTMLStartTag, KindText, KindHTMLEndTag, KindText}, kinds)

	cmd := para.Children[1].Inline
	assert.Equal(t, "c", cmd.Name)
	assert.Equal(t, RenderMonospaced, cmd.RenderKind)
	assert.Equal(t, []string{"foo"}, cmd.Args)
	assert.Equal(t, "b", para.Children[3].HTML.Name)
}

func TestParse_VerbatimBlock(t *testing.T) {
	t.Parallel()

	full := Parse("/**\n * Example:\n * \\code\n * int x;\n * \\endcode\n * \\fn int f(void)\n */", nil)
	var verbatim, line *Node
	for _, ch := range full.Children {
		switch ch.Kind {
		case KindVerbatimBlockCommand:
			verbatim = ch
		case KindVerbatimLine:
			line = ch
		}
	}
	require.NotNil(t, verbatim)
	assert.Equal(t, "code", verbatim.Block.Name)
	require.Len(t, verbatim.Children, 1)
	assert.Equal(t, " int x;", verbatim.Children[0].Text)
	require.NotNil(t, line)
	assert.Equal(t, " int f(void)", line.Text)
}

func TestRender_HTML(t *testing.T) {
	t.Parallel()

	full := Parse("/**\n * Adds two numbers.\n * \\param a first\n * \\returns the sum\n */", []string{"a", "b"})
	assert.Equal(t,
		`<p class="para-brief"> Adds two numbers.</p>`+
			`<dl><dt class="param-name-index-0">a</dt><dd class="param-descr-index-0"> first</dd></dl>`+
			`<div class="result-discussion"><p class="para-returns"><span class="word-returns">Returns</span> the sum</p></div>`,
		full.RenderHTML())
}

func TestRender_XML(t *testing.T) {
	t.Parallel()

	full := Parse("/// Adds.\n/// \\param a first", []string{"a"})
	got := full.XML(DeclInfo{
		Root:        "Function",
		Name:        "add",
		USR:         "c:@F@add",
		Declaration: "int add(int a)",
		File:        "main.c",
		Line:        3,
		Column:      5,
	})
	assert.Equal(t,
		`<Function file="main.c" line="3" column="5"><Name>add</Name><USR>c:@F@add</USR>`+
			`<Declaration>int add(int a)</Declaration><Abstract><Para> Adds.</Para></Abstract>`+
			`<Parameters><Parameter><Name>a</Name><Index>0</Index><Direction isExplicit="0">in</Direction>`+
			`<Discussion><Para> first</Para></Discussion></Parameter></Parameters></Function>`,
		got)
}
