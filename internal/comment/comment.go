// Package comment parses documentation comments into a tree of tagged
// nodes and renders them as HTML or XML.
//
// The node kinds and their numeric values follow libclang's CXCommentKind so
// that callers can switch on either the Go constant or the enum table name.
package comment

import (
	"strings"
	"unicode"

	"github.com/mvp-joe/cxgraph/internal/enum"
)

// Kind identifies a comment node variant.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindInlineCommand
	KindHTMLStartTag
	KindHTMLEndTag
	KindParagraph
	KindBlockCommand
	KindParamCommand
	KindTParamCommand
	KindVerbatimBlockCommand
	KindVerbatimBlockLine
	KindVerbatimLine
	KindFullComment
)

// Kinds is the CommentKind table.
var Kinds = enum.New("CommentKind",
	enum.Field{Name: "null", Value: 0},
	enum.Field{Name: "text", Value: 1},
	enum.Field{Name: "inline_command", Value: 2},
	enum.Field{Name: "html_start_tag", Value: 3},
	enum.Field{Name: "html_end_tag", Value: 4},
	enum.Field{Name: "paragraph", Value: 5},
	enum.Field{Name: "block_command", Value: 6},
	enum.Field{Name: "param_command", Value: 7},
	enum.Field{Name: "tparam_command", Value: 8},
	enum.Field{Name: "verbatim_block_command", Value: 9},
	enum.Field{Name: "verbatim_block_line", Value: 10},
	enum.Field{Name: "verbatim_line", Value: 11},
	enum.Field{Name: "full_comment", Value: 12},
)

func (k Kind) String() string {
	s, _ := Kinds.Symbol(int64(k))
	return s
}

// InlineRenderKind controls how an inline command's argument is rendered.
type InlineRenderKind int

const (
	RenderNormal InlineRenderKind = iota
	RenderBold
	RenderMonospaced
	RenderEmphasized
	RenderAnchor
)

// InlineRenderKinds is the CommentInlineCommandRenderKind table.
var InlineRenderKinds = enum.New("CommentInlineCommandRenderKind",
	enum.Field{Name: "normal", Value: 0},
	enum.Field{Name: "bold", Value: 1},
	enum.Field{Name: "monospaced", Value: 2},
	enum.Field{Name: "emphasized", Value: 3},
	enum.Field{Name: "anchor", Value: 4},
)

func (k InlineRenderKind) String() string {
	s, _ := InlineRenderKinds.Symbol(int64(k))
	return s
}

// PassDirection is the direction of a \param command.
type PassDirection int

const (
	DirectionIn PassDirection = iota
	DirectionOut
	DirectionInOut
)

// PassDirections is the CommentParamPassDirection table.
var PassDirections = enum.New("CommentParamPassDirection",
	enum.Field{Name: "in", Value: 0},
	enum.Field{Name: "out", Value: 1},
	enum.Field{Name: "in_out", Value: 2},
)

func (d PassDirection) String() string {
	s, _ := PassDirections.Symbol(int64(d))
	return s
}

// InlineCommand is the payload of KindInlineCommand nodes.
type InlineCommand struct {
	Name       string
	RenderKind InlineRenderKind
	Args       []string
}

// HTMLAttr is a single attribute of an HTML start tag.
type HTMLAttr struct {
	Name  string
	Value string
}

// HTMLTag is the payload of KindHTMLStartTag and KindHTMLEndTag nodes.
type HTMLTag struct {
	Name        string
	Attrs       []HTMLAttr
	SelfClosing bool
}

// BlockCommand is the payload of KindBlockCommand and KindVerbatimBlockCommand.
type BlockCommand struct {
	Name string
	Args []string
}

// ParamCommand is the payload of KindParamCommand nodes.
type ParamCommand struct {
	ParamName         string
	Index             int
	IndexValid        bool
	Direction         PassDirection
	DirectionExplicit bool
}

// TParamCommand is the payload of KindTParamCommand nodes. C has no template
// parameters, so positions never resolve.
type TParamCommand struct {
	ParamName     string
	PositionValid bool
	Depth         int
}

// Node is one comment AST node. Payload pointers are set only for the kinds
// that carry them.
type Node struct {
	Kind            Kind
	Children        []*Node
	Text            string
	TrailingNewline bool
	Inline          *InlineCommand
	HTML            *HTMLTag
	Block           *BlockCommand
	Param           *ParamCommand
	TParam          *TParamCommand
}

// IsWhitespace reports whether a text node or paragraph holds only spaces.
func (n *Node) IsWhitespace() bool {
	switch n.Kind {
	case KindText:
		return strings.TrimSpace(n.Text) == ""
	case KindParagraph:
		for _, ch := range n.Children {
			if !ch.IsWhitespace() {
				return false
			}
		}
		return true
	}
	return false
}

// Paragraph returns the paragraph child of a block or param command.
func (n *Node) Paragraph() *Node {
	for _, ch := range n.Children {
		if ch.Kind == KindParagraph {
			return ch
		}
	}
	return nil
}

// PlainText concatenates text and inline arguments below n.
func (n *Node) PlainText() string {
	var sb strings.Builder
	var walk func(*Node)
	walk = func(x *Node) {
		switch x.Kind {
		case KindText, KindVerbatimBlockLine, KindVerbatimLine:
			sb.WriteString(x.Text)
		case KindInlineCommand:
			if len(x.Inline.Args) > 0 {
				sb.WriteByte(' ')
				sb.WriteString(strings.Join(x.Inline.Args, " "))
			}
		}
		for _, ch := range x.Children {
			walk(ch)
		}
		if x.TrailingNewline {
			sb.WriteByte(' ')
		}
	}
	walk(n)
	return sb.String()
}

// Brief returns the brief description of a full comment: the \brief block
// when present, otherwise the first non-empty paragraph.
func (n *Node) Brief() string {
	for _, ch := range n.Children {
		if ch.Kind == KindBlockCommand && isBriefCommand(ch.Block.Name) {
			if p := ch.Paragraph(); p != nil {
				return normalizeSpace(p.PlainText())
			}
		}
	}
	for _, ch := range n.Children {
		if ch.Kind == KindParagraph && !ch.IsWhitespace() {
			return normalizeSpace(ch.PlainText())
		}
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isBriefCommand(name string) bool {
	return name == "brief" || name == "short"
}

func isReturnsCommand(name string) bool {
	return name == "return" || name == "returns" || name == "result"
}

var blockCommands = map[string]bool{
	"brief": true, "short": true, "return": true, "returns": true, "result": true,
	"see": true, "sa": true, "note": true, "warning": true, "deprecated": true,
	"author": true, "authors": true, "since": true, "version": true, "details": true,
	"pre": true, "post": true, "par": true, "throws": true, "throw": true,
	"exception": true, "todo": true, "remark": true, "remarks": true,
	"attention": true, "invariant": true, "bug": true, "copyright": true,
}

var verbatimBlocks = map[string]string{
	"code":     "endcode",
	"verbatim": "endverbatim",
	"dot":      "enddot",
	"msc":      "endmsc",
}

var verbatimLines = map[string]bool{
	"fn": true, "var": true, "def": true, "typedef": true, "struct": true,
	"union": true, "enum": true, "file": true, "function": true, "property": true,
	"defgroup": true, "ingroup": true, "addtogroup": true, "headerfile": true,
}

var inlineCommands = map[string]InlineRenderKind{
	"b": RenderBold, "c": RenderMonospaced, "p": RenderMonospaced,
	"a": RenderEmphasized, "e": RenderEmphasized, "em": RenderEmphasized,
	"anchor": RenderAnchor, "ref": RenderNormal,
}

var htmlTags = map[string]bool{
	"a": true, "b": true, "i": true, "em": true, "strong": true, "tt": true,
	"code": true, "p": true, "br": true, "pre": true, "ul": true, "ol": true,
	"li": true, "dl": true, "dt": true, "dd": true, "table": true, "tr": true,
	"td": true, "th": true, "h1": true, "h2": true, "h3": true, "img": true,
	"sub": true, "sup": true, "hr": true, "small": true, "span": true,
}

// StripMarkers removes comment delimiters and leading decorations and
// returns the comment's text lines. raw may hold several consecutive
// comments separated by newlines.
func StripMarkers(raw string) []string {
	var lines []string
	s := raw
	for {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		if s == "" {
			return lines
		}
		switch {
		case strings.HasPrefix(s, "/*"):
			end := strings.Index(s[2:], "*/")
			var body string
			if end < 0 {
				body, s = s[2:], ""
			} else {
				body, s = s[2:2+end], s[4+end:]
			}
			body = trimDocMarker(body, '*')
			for i, line := range strings.Split(body, "\n") {
				line = strings.TrimRight(line, " \t\r")
				if i > 0 {
					trimmed := strings.TrimLeft(line, " \t")
					if strings.HasPrefix(trimmed, "*") {
						line = trimmed[1:]
					}
				}
				lines = append(lines, line)
			}
			for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
				lines = lines[:len(lines)-1]
			}
		case strings.HasPrefix(s, "//"):
			nl := strings.IndexByte(s, '\n')
			var line string
			if nl < 0 {
				line, s = s[2:], ""
			} else {
				line, s = s[2:nl], s[nl+1:]
			}
			line = trimDocMarker(line, '/')
			lines = append(lines, strings.TrimRight(line, " \t\r"))
		default:
			nl := strings.IndexByte(s, '\n')
			if nl < 0 {
				return append(lines, s)
			}
			lines = append(lines, s[:nl])
			s = s[nl+1:]
		}
	}
}

// trimDocMarker drops the doc marker following the comment opener:
// "*" or "!" (or "/" or "!" for line comments), then an optional "<".
func trimDocMarker(s string, marker byte) string {
	if len(s) > 0 && (s[0] == marker || s[0] == '!') {
		s = s[1:]
	}
	if len(s) > 0 && s[0] == '<' {
		s = s[1:]
	}
	return s
}

// Parse parses a raw comment. params lists the documented entity's
// parameter names and is used to resolve \param indexes.
func Parse(raw string, params []string) *Node {
	p := &parser{params: params, lines: StripMarkers(raw)}
	return p.parse()
}

type parser struct {
	params []string
	lines  []string
}

func (p *parser) parse() *Node {
	full := &Node{Kind: KindFullComment}
	var para *Node

	for i := 0; i < len(p.lines); i++ {
		line := p.lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			para = nil
			continue
		}

		if name, rest, ok := leadingCommand(trimmed); ok {
			if end, isBlock := verbatimBlocks[name]; isBlock {
				block := &Node{Kind: KindVerbatimBlockCommand, Block: &BlockCommand{Name: name}}
				if closed := strings.Index(rest, commandToken(end)); closed >= 0 {
					block.Children = append(block.Children, &Node{Kind: KindVerbatimBlockLine, Text: rest[:closed]})
					full.Children = append(full.Children, block)
					para = nil
					continue
				}
				if strings.TrimSpace(rest) != "" {
					block.Children = append(block.Children, &Node{Kind: KindVerbatimBlockLine, Text: rest})
				}
				for i+1 < len(p.lines) {
					i++
					if strings.Contains(p.lines[i], commandToken(end)) {
						break
					}
					block.Children = append(block.Children, &Node{Kind: KindVerbatimBlockLine, Text: p.lines[i]})
				}
				full.Children = append(full.Children, block)
				para = nil
				continue
			}
			if verbatimLines[name] {
				full.Children = append(full.Children, &Node{Kind: KindVerbatimLine, Text: rest})
				para = nil
				continue
			}
			switch {
			case name == "param":
				cmd, body := p.paramCommand(rest)
				para = &Node{Kind: KindParagraph}
				cmd.Children = append(cmd.Children, para)
				full.Children = append(full.Children, cmd)
				appendInline(para, body)
				continue
			case name == "tparam":
				pname, body := splitWord(rest)
				cmd := &Node{Kind: KindTParamCommand, TParam: &TParamCommand{ParamName: pname}}
				para = &Node{Kind: KindParagraph}
				cmd.Children = append(cmd.Children, para)
				full.Children = append(full.Children, cmd)
				appendInline(para, body)
				continue
			case blockCommands[name]:
				cmd := &Node{Kind: KindBlockCommand, Block: &BlockCommand{Name: name}}
				para = &Node{Kind: KindParagraph}
				cmd.Children = append(cmd.Children, para)
				full.Children = append(full.Children, cmd)
				appendInline(para, rest)
				continue
			}
		}

		if para == nil {
			para = &Node{Kind: KindParagraph}
			full.Children = append(full.Children, para)
		}
		appendInline(para, line)
	}
	return full
}

func commandToken(name string) string { return `\` + name }

// leadingCommand recognizes "\name rest" or "@name rest".
func leadingCommand(s string) (name, rest string, ok bool) {
	if len(s) < 2 || (s[0] != '\\' && s[0] != '@') {
		return "", "", false
	}
	j := 1
	for j < len(s) && isWordByte(s[j]) {
		j++
	}
	if j == 1 {
		return "", "", false
	}
	name = s[1:j]
	rest = s[j:]
	return name, rest, true
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func splitWord(s string) (word, rest string) {
	s = strings.TrimLeft(s, " \t")
	i := 0
	for i < len(s) && s[i] != ' ' && s[i] != '\t' {
		i++
	}
	return s[:i], s[i:]
}

func (p *parser) paramCommand(rest string) (*Node, string) {
	pc := &ParamCommand{Index: -1}
	rest = strings.TrimLeft(rest, " \t")
	if strings.HasPrefix(rest, "[") {
		if end := strings.IndexByte(rest, ']'); end > 0 {
			dir := strings.ReplaceAll(strings.ToLower(rest[1:end]), " ", "")
			switch dir {
			case "in":
				pc.Direction, pc.DirectionExplicit = DirectionIn, true
			case "out":
				pc.Direction, pc.DirectionExplicit = DirectionOut, true
			case "in,out", "out,in":
				pc.Direction, pc.DirectionExplicit = DirectionInOut, true
			}
			rest = rest[end+1:]
		}
	}
	name, body := splitWord(rest)
	pc.ParamName = name
	for i, param := range p.params {
		if param == name {
			pc.Index, pc.IndexValid = i, true
			break
		}
	}
	return &Node{Kind: KindParamCommand, Param: pc}, body
}

// appendInline tokenizes one line of paragraph text into text, inline
// command and HTML tag nodes.
func appendInline(para *Node, line string) {
	var text strings.Builder
	start := len(para.Children)
	flush := func() {
		if text.Len() > 0 {
			para.Children = append(para.Children, &Node{Kind: KindText, Text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(line); {
		ch := line[i]
		switch {
		case (ch == '\\' || ch == '@') && i+1 < len(line) && isWordByte(line[i+1]):
			j := i + 1
			for j < len(line) && isWordByte(line[j]) {
				j++
			}
			name := line[i+1 : j]
			flush()
			cmd := &InlineCommand{Name: name}
			if kind, known := inlineCommands[name]; known {
				cmd.RenderKind = kind
				arg, _ := splitWord(line[j:])
				if arg != "" {
					cmd.Args = []string{arg}
					j = j + strings.Index(line[j:], arg) + len(arg)
				}
			}
			para.Children = append(para.Children, &Node{Kind: KindInlineCommand, Inline: cmd})
			i = j
		case ch == '<':
			if tag, n, ok := parseHTMLTag(line[i:]); ok {
				flush()
				para.Children = append(para.Children, tag)
				i += n
				continue
			}
			text.WriteByte(ch)
			i++
		default:
			text.WriteByte(ch)
			i++
		}
	}
	flush()
	if len(para.Children) > start {
		para.Children[len(para.Children)-1].TrailingNewline = true
	}
}

// parseHTMLTag parses "<name attr="v">", "<name/>" or "</name>" at the start
// of s and returns the node and consumed byte count.
func parseHTMLTag(s string) (*Node, int, bool) {
	end := strings.IndexByte(s, '>')
	if end < 0 {
		return nil, 0, false
	}
	inner := s[1:end]
	closing := strings.HasPrefix(inner, "/")
	if closing {
		inner = inner[1:]
	}
	selfClosing := strings.HasSuffix(inner, "/")
	if selfClosing {
		inner = strings.TrimSpace(inner[:len(inner)-1])
	}
	name, attrText := splitWord(inner)
	if !htmlTags[strings.ToLower(name)] {
		return nil, 0, false
	}
	if closing {
		return &Node{Kind: KindHTMLEndTag, HTML: &HTMLTag{Name: name}}, end + 1, true
	}
	tag := &HTMLTag{Name: name, SelfClosing: selfClosing}
	for _, field := range strings.Fields(attrText) {
		k, v, _ := strings.Cut(field, "=")
		tag.Attrs = append(tag.Attrs, HTMLAttr{Name: k, Value: strings.Trim(v, `"'`)})
	}
	return &Node{Kind: KindHTMLStartTag, HTML: tag}, end + 1, true
}
