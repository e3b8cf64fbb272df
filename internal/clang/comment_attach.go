package clang

import (
	"sort"
	"strings"

	"github.com/mvp-joe/cxgraph/internal/comment"
	"github.com/mvp-joe/cxgraph/internal/syntax"
)

// commentSpan is one comment, or a run of adjacent comments merged
// together, inside a buffer.
type commentSpan struct {
	begin, end uint32
	doc        bool
	trailing   bool
}

func isDocComment(text string) bool {
	for _, p := range []string{"/**", "/*!", "///", "//!"} {
		if strings.HasPrefix(text, p) {
			return text != "/**/" && !strings.HasPrefix(text, "////") && !strings.HasPrefix(text, "/***")
		}
	}
	return false
}

func isTrailingComment(text string) bool {
	for _, p := range []string{"/**<", "/*!<", "///<", "//!<"} {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// collectComments records the comments of buffer buf, merging runs of
// same-style comments separated by at most one newline.
func (b *builder) collectComments(f *fileInfo, buf int32) {
	var spans []commentSpan
	syntax.Walk(f.syntax.Root, func(n *syntax.Node) bool {
		if n.Kind != "comment" {
			return true
		}
		text := string(f.contents[n.StartByte:n.EndByte])
		s := commentSpan{begin: n.StartByte, end: n.EndByte, doc: isDocComment(text), trailing: isTrailingComment(text)}
		if k := len(spans) - 1; k >= 0 && !s.trailing && spans[k].doc == s.doc && !spans[k].trailing {
			gap := string(f.contents[spans[k].end:s.begin])
			if strings.TrimSpace(gap) == "" && strings.Count(gap, "\n") <= 1 {
				spans[k].end = s.end
				return false
			}
		}
		spans = append(spans, s)
		return false
	})
	if len(spans) > 0 {
		b.comments[buf] = spans
	}
}

func attachable(k CursorKind) bool {
	switch k {
	case CursorStructDecl, CursorUnionDecl, CursorEnumDecl, CursorFieldDecl, CursorEnumConstantDecl,
		CursorFunctionDecl, CursorVarDecl, CursorTypedefDecl, CursorMacroDefinition:
		return true
	}
	return false
}

// attachComments binds the comment preceding (or trailing on the same
// line) each declaration to it.
func (b *builder) attachComments() {
	u := b.u
	all := b.args.parseAllComments
	taken := map[[2]int64]int32{}
	for id := range u.nodes {
		n := &u.nodes[id]
		if !attachable(n.kind) || n.has(flagImplicit) || !n.begin.valid() || n.begin.buf != n.loc.buf {
			continue
		}
		spans := b.comments[n.begin.buf]
		if len(spans) == 0 {
			continue
		}
		f := u.fileOf(n.begin)
		start := n.begin.off
		if n.kind == CursorMacroDefinition {
			start = lineStart(f.contents, start)
		}
		i := sort.Search(len(spans), func(i int) bool { return spans[i].begin >= start })
		pick := -1
		if i > 0 && spans[i-1].end <= start {
			s := spans[i-1]
			gap := string(f.contents[s.end:start])
			if (s.doc || all) && !s.trailing && !strings.ContainsAny(gap, ";{}#@") && strings.Count(gap, "\n") <= 1 {
				pick = i - 1
			}
		}
		if pick < 0 && n.end.valid() && n.end.buf == n.begin.buf {
			j := sort.Search(len(spans), func(j int) bool { return spans[j].begin >= n.end.off })
			if j < len(spans) && spans[j].trailing {
				gap := string(f.contents[n.end.off:spans[j].begin])
				if !strings.Contains(gap, "\n") && strings.Trim(gap, " \t;,") == "" {
					pick = j
				}
			}
		}
		if pick < 0 {
			continue
		}
		s := spans[pick]
		key := [2]int64{int64(n.begin.buf), int64(s.begin)}
		if c, ok := taken[key]; ok {
			n.comment = c
			continue
		}
		u.comments = append(u.comments, rawComment{
			buf:   n.begin.buf,
			begin: s.begin,
			end:   s.end,
			text:  string(f.contents[s.begin:s.end]),
		})
		n.comment = int32(len(u.comments) - 1)
		taken[key] = n.comment
	}
}

// lineStart returns the offset of the first byte of the line holding off.
func lineStart(src []byte, off uint32) uint32 {
	for off > 0 && src[off-1] != '\n' {
		off--
	}
	return off
}

// parsedComment parses decl's raw comment on first use.
func (u *unit) parsedComment(decl int32) *comment.Node {
	n := &u.nodes[decl]
	if n.comment < 0 {
		return nil
	}
	rc := &u.comments[n.comment]
	if rc.parsed == nil {
		var params []string
		for _, ch := range n.children {
			if u.nodes[ch].kind == CursorParmDecl {
				params = append(params, u.nodes[ch].name)
			}
		}
		if n.kind == CursorMacroDefinition {
			params = n.params
		}
		rc.parsed = comment.Parse(rc.text, params)
	}
	return rc.parsed
}
