package clang

import (
	"sort"

	"github.com/mvp-joe/cxgraph/internal/comment"
)

// commentOf returns the comment attached to decl or to any other
// declaration of its entity, -1 when there is none.
func (u *unit) commentOf(decl int32) int32 {
	if decl < 0 {
		return -1
	}
	if u.nodes[decl].comment >= 0 {
		return decl
	}
	for _, d := range u.redecls(decl) {
		if u.nodes[d].comment >= 0 {
			return d
		}
	}
	return -1
}

func (c Cursor) commented() (*unit, int32, error) {
	u, n, err := c.node()
	if err != nil {
		return nil, -1, err
	}
	decl := c.id
	if !n.kind.IsDeclaration() && n.kind != CursorMacroDefinition {
		decl = n.ref
	}
	return u, u.commentOf(decl), nil
}

// RawComment returns the text of the documentation comment, markers
// included.
func (c Cursor) RawComment() (string, error) {
	u, decl, err := c.commented()
	if err != nil || decl < 0 {
		return "", err
	}
	return u.comments[u.nodes[decl].comment].text, nil
}

// BriefComment returns the \brief paragraph or the first paragraph.
func (c Cursor) BriefComment() (string, error) {
	u, decl, err := c.commented()
	if err != nil || decl < 0 {
		return "", err
	}
	return u.parsedComment(decl).Brief(), nil
}

func (c Cursor) CommentRange() (SourceRange, error) {
	u, decl, err := c.commented()
	if err != nil || decl < 0 {
		return NullRange(), err
	}
	rc := &u.comments[u.nodes[decl].comment]
	return c.tu.sourceRange(c.gen, srcPos{rc.buf, rc.begin}, srcPos{rc.buf, rc.end}), nil
}

// ParsedComment returns the comment AST, nil without a comment.
func (c Cursor) ParsedComment() (*comment.Node, error) {
	u, decl, err := c.commented()
	if err != nil || decl < 0 {
		return nil, err
	}
	return u.parsedComment(decl), nil
}

// CommentHTML renders the parsed comment as HTML.
func (c Cursor) CommentHTML() (string, error) {
	full, err := c.ParsedComment()
	if err != nil || full == nil {
		return "", err
	}
	return full.RenderHTML(), nil
}

// CommentXML renders the parsed comment in clang's XML schema.
func (c Cursor) CommentXML() (string, error) {
	u, decl, err := c.commented()
	if err != nil || decl < 0 {
		return "", err
	}
	d := c.derive(decl)
	usr, err := d.USR()
	if err != nil {
		return "", err
	}
	n := &u.nodes[decl]
	info := comment.DeclInfo{
		Root:        xmlRoot(n.kind),
		Name:        n.name,
		USR:         usr,
		Declaration: u.printDecl(decl, terseDeclPolicy()),
	}
	if f := u.fileOf(n.loc); f != nil {
		info.File = f.name
		info.Line, info.Column = f.lineCol(n.loc.off)
	}
	return u.parsedComment(decl).XML(info), nil
}

func xmlRoot(k CursorKind) string {
	switch k {
	case CursorFunctionDecl:
		return "Function"
	case CursorVarDecl, CursorFieldDecl, CursorParmDecl, CursorEnumConstantDecl:
		return "Variable"
	case CursorTypedefDecl:
		return "Typedef"
	case CursorEnumDecl:
		return "Enum"
	case CursorStructDecl, CursorUnionDecl:
		return "Class"
	}
	return "Other"
}

// Evaluate folds an expression or the initializer of a variable. The
// result kind is EvalUnexposed when the value is not a constant.
func (c Cursor) Evaluate() (EvalResult, error) {
	u, n, err := c.node()
	if err != nil {
		return EvalResult{}, err
	}
	e := c.id
	switch {
	case n.kind == CursorVarDecl:
		e = u.varInit(c.id)
	case !n.kind.IsExpression():
		for _, ch := range n.children {
			if u.nodes[ch].kind.IsExpression() {
				e = ch
			}
		}
		if e == c.id {
			return EvalResult{kind: EvalUnexposed}, nil
		}
	}
	v, ok := u.eval(e, false)
	if !ok {
		return EvalResult{kind: EvalUnexposed}, nil
	}
	return EvalResult{kind: v.kind, i: v.i, unsigned: v.unsigned, f: v.f, s: v.s}, nil
}

// FindReferences calls visit for every reference to, and declaration of,
// the entity c names inside file, in source order, until visit returns
// false.
func (c Cursor) FindReferences(f File, visit func(ref Cursor, r SourceRange) bool) error {
	u, n, err := c.node()
	if err != nil {
		return err
	}
	if f.IsNull() || f.tu != c.tu {
		return invalidArgument("file does not belong to the cursor's unit")
	}
	target := c.id
	if !n.kind.IsDeclaration() && n.kind != CursorMacroDefinition {
		target = n.ref
	}
	if target < 0 {
		return unsupported("%s cursor references nothing", n.kind)
	}
	target = u.canonical(target)

	var hits []int32
	for id := range u.nodes {
		m := &u.nodes[id]
		if m.has(flagImplicit) || !m.loc.valid() || u.fileIDOf(m.loc) != f.id {
			continue
		}
		switch {
		case m.kind.IsDeclaration() || m.kind == CursorMacroDefinition:
			if u.canonical(int32(id)) != target {
				continue
			}
		case m.ref >= 0 && u.canonical(m.ref) == target:
			if m.kind == CursorCallExpr {
				continue
			}
		default:
			continue
		}
		hits = append(hits, int32(id))
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return u.comparePos(u.nodes[hits[i]].loc, u.nodes[hits[j]].loc) < 0
	})
	for _, id := range hits {
		m := &u.nodes[id]
		end := srcPos{m.loc.buf, m.loc.off + uint32(len(m.name))}
		if u.text(m.loc, end) != m.name {
			end = m.end
		}
		if !visit(c.derive(id), c.tu.sourceRange(c.gen, m.loc, end)) {
			return nil
		}
	}
	return nil
}
