package comment

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
)

// DeclInfo describes the documented declaration for XML rendering.
type DeclInfo struct {
	// Root is the XML root element: Function, Variable, Typedef, Enum,
	// Class or Other.
	Root        string
	Name        string
	USR         string
	Declaration string
	File        string
	Line        uint32
	Column      uint32
}

// sections splits a full comment into brief, discussion, params and
// returns, the grouping both renderers use.
type sections struct {
	brief      *Node
	discussion []*Node
	params     []*Node
	tparams    []*Node
	returns    []*Node
}

func (n *Node) sections() sections {
	var s sections
	for _, ch := range n.Children {
		switch ch.Kind {
		case KindParagraph:
			if ch.IsWhitespace() {
				continue
			}
			if s.brief == nil {
				s.brief = ch
			} else {
				s.discussion = append(s.discussion, ch)
			}
		case KindBlockCommand:
			switch {
			case isBriefCommand(ch.Block.Name):
				if s.brief != nil {
					s.discussion = append(s.discussion, s.brief)
				}
				s.brief = ch.Paragraph()
			case isReturnsCommand(ch.Block.Name):
				s.returns = append(s.returns, ch)
			default:
				s.discussion = append(s.discussion, ch)
			}
		case KindParamCommand:
			s.params = append(s.params, ch)
		case KindTParamCommand:
			s.tparams = append(s.tparams, ch)
		default:
			s.discussion = append(s.discussion, ch)
		}
	}
	return s
}

// RenderHTML renders a full comment the way libclang's HTML converter does.
func (n *Node) RenderHTML() string {
	var sb strings.Builder
	s := n.sections()
	if s.brief != nil {
		sb.WriteString(`<p class="para-brief">`)
		writeInlineHTML(&sb, s.brief)
		sb.WriteString("</p>")
	}
	for _, d := range s.discussion {
		writeBlockHTML(&sb, d)
	}
	if len(s.params) > 0 {
		sb.WriteString("<dl>")
		for _, p := range s.params {
			idx := "invalid"
			if p.Param.IndexValid {
				idx = fmt.Sprint(p.Param.Index)
			}
			fmt.Fprintf(&sb, `<dt class="param-name-index-%s">%s</dt>`, idx, html.EscapeString(p.Param.ParamName))
			fmt.Fprintf(&sb, `<dd class="param-descr-index-%s">`, idx)
			if para := p.Paragraph(); para != nil {
				writeInlineHTML(&sb, para)
			}
			sb.WriteString("</dd>")
		}
		sb.WriteString("</dl>")
	}
	for _, r := range s.returns {
		sb.WriteString(`<div class="result-discussion"><p class="para-returns"><span class="word-returns">Returns</span>`)
		if para := r.Paragraph(); para != nil {
			writeInlineHTML(&sb, para)
		}
		sb.WriteString("</p></div>")
	}
	return sb.String()
}

func writeBlockHTML(sb *strings.Builder, n *Node) {
	switch n.Kind {
	case KindParagraph:
		sb.WriteString("<p>")
		writeInlineHTML(sb, n)
		sb.WriteString("</p>")
	case KindBlockCommand:
		fmt.Fprintf(sb, `<p class="para-%s">`, html.EscapeString(n.Block.Name))
		if para := n.Paragraph(); para != nil {
			writeInlineHTML(sb, para)
		}
		sb.WriteString("</p>")
	case KindVerbatimBlockCommand:
		sb.WriteString("<pre>")
		for i, line := range n.Children {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(html.EscapeString(line.Text))
		}
		sb.WriteString("</pre>")
	case KindVerbatimLine:
		sb.WriteString("<pre>")
		sb.WriteString(html.EscapeString(n.Text))
		sb.WriteString("</pre>")
	}
}

func writeInlineHTML(sb *strings.Builder, para *Node) {
	for _, ch := range para.Children {
		switch ch.Kind {
		case KindText:
			sb.WriteString(html.EscapeString(ch.Text))
		case KindInlineCommand:
			arg := html.EscapeString(strings.Join(ch.Inline.Args, " "))
			switch ch.Inline.RenderKind {
			case RenderBold:
				sb.WriteString("<b>" + arg + "</b>")
			case RenderMonospaced:
				sb.WriteString("<tt>" + arg + "</tt>")
			case RenderEmphasized:
				sb.WriteString("<em>" + arg + "</em>")
			case RenderAnchor:
				sb.WriteString(`<span id="` + arg + `"></span>`)
			default:
				sb.WriteString(arg)
			}
		case KindHTMLStartTag:
			sb.WriteString(startTag(ch.HTML))
		case KindHTMLEndTag:
			sb.WriteString("</" + ch.HTML.Name + ">")
		}
	}
}

func startTag(t *HTMLTag) string {
	var sb strings.Builder
	sb.WriteString("<" + t.Name)
	for _, a := range t.Attrs {
		fmt.Fprintf(&sb, ` %s="%s"`, a.Name, html.EscapeString(a.Value))
	}
	if t.SelfClosing {
		sb.WriteString("/")
	}
	sb.WriteString(">")
	return sb.String()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// XML renders a full comment as a libclang style XML document.
func (n *Node) XML(info DeclInfo) string {
	root := info.Root
	if root == "" {
		root = "Other"
	}
	var sb strings.Builder
	sb.WriteString("<" + root)
	if info.File != "" {
		fmt.Fprintf(&sb, ` file="%s" line="%d" column="%d"`, escapeXML(info.File), info.Line, info.Column)
	}
	sb.WriteString(">")
	fmt.Fprintf(&sb, "<Name>%s</Name>", escapeXML(info.Name))
	if info.USR != "" {
		fmt.Fprintf(&sb, "<USR>%s</USR>", escapeXML(info.USR))
	}
	if info.Declaration != "" {
		fmt.Fprintf(&sb, "<Declaration>%s</Declaration>", escapeXML(info.Declaration))
	}

	s := n.sections()
	if s.brief != nil {
		sb.WriteString("<Abstract>")
		writeParaXML(&sb, s.brief)
		sb.WriteString("</Abstract>")
	}
	if len(s.params) > 0 {
		sb.WriteString("<Parameters>")
		for _, p := range s.params {
			sb.WriteString("<Parameter>")
			fmt.Fprintf(&sb, "<Name>%s</Name>", escapeXML(p.Param.ParamName))
			if p.Param.IndexValid {
				fmt.Fprintf(&sb, "<Index>%d</Index>", p.Param.Index)
			}
			explicit := 0
			if p.Param.DirectionExplicit {
				explicit = 1
			}
			dir := map[PassDirection]string{DirectionIn: "in", DirectionOut: "out", DirectionInOut: "in,out"}[p.Param.Direction]
			fmt.Fprintf(&sb, `<Direction isExplicit="%d">%s</Direction>`, explicit, dir)
			sb.WriteString("<Discussion>")
			if para := p.Paragraph(); para != nil {
				writeParaXML(&sb, para)
			}
			sb.WriteString("</Discussion></Parameter>")
		}
		sb.WriteString("</Parameters>")
	}
	if len(s.returns) > 0 {
		sb.WriteString("<ResultDiscussion>")
		for _, r := range s.returns {
			if para := r.Paragraph(); para != nil {
				writeParaXML(&sb, para)
			}
		}
		sb.WriteString("</ResultDiscussion>")
	}
	if len(s.discussion) > 0 {
		sb.WriteString("<Discussion>")
		for _, d := range s.discussion {
			switch d.Kind {
			case KindParagraph:
				writeParaXML(&sb, d)
			case KindBlockCommand:
				if para := d.Paragraph(); para != nil {
					sb.WriteString(`<Para kind="` + escapeXML(d.Block.Name) + `">`)
					writeInlineXML(&sb, para)
					sb.WriteString("</Para>")
				}
			case KindVerbatimBlockCommand:
				sb.WriteString(`<Verbatim xml:space="preserve" kind="` + escapeXML(d.Block.Name) + `">`)
				for i, line := range d.Children {
					if i > 0 {
						sb.WriteByte('\n')
					}
					sb.WriteString(escapeXML(line.Text))
				}
				sb.WriteString("</Verbatim>")
			case KindVerbatimLine:
				sb.WriteString(`<Verbatim xml:space="preserve" kind="verbatim">` + escapeXML(d.Text) + "</Verbatim>")
			}
		}
		sb.WriteString("</Discussion>")
	}
	sb.WriteString("</" + root + ">")
	return sb.String()
}

func writeParaXML(sb *strings.Builder, para *Node) {
	sb.WriteString("<Para>")
	writeInlineXML(sb, para)
	sb.WriteString("</Para>")
}

func writeInlineXML(sb *strings.Builder, para *Node) {
	for _, ch := range para.Children {
		switch ch.Kind {
		case KindText:
			sb.WriteString(escapeXML(ch.Text))
		case KindInlineCommand:
			arg := escapeXML(strings.Join(ch.Inline.Args, " "))
			switch ch.Inline.RenderKind {
			case RenderBold:
				sb.WriteString("<bold>" + arg + "</bold>")
			case RenderMonospaced:
				sb.WriteString("<monospaced>" + arg + "</monospaced>")
			case RenderEmphasized:
				sb.WriteString("<emphasized>" + arg + "</emphasized>")
			case RenderAnchor:
				sb.WriteString("<anchor>" + arg + "</anchor>")
			default:
				sb.WriteString(arg)
			}
		case KindHTMLStartTag:
			sb.WriteString("<rawHTML><![CDATA[" + startTag(ch.HTML) + "]]></rawHTML>")
		case KindHTMLEndTag:
			sb.WriteString("<rawHTML><![CDATA[</" + ch.HTML.Name + ">]]></rawHTML>")
		}
	}
}
