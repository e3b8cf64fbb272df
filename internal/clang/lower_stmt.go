package clang

import (
	"strings"

	"github.com/mvp-joe/cxgraph/internal/syntax"
)

func (b *builder) stmtNode(kind CursorKind, n *syntax.Node, children ...int32) int32 {
	id := b.u.newNode(kind, "", b.pos(n), b.pos(n), b.endPos(n))
	for _, c := range children {
		b.u.addChild(id, c)
	}
	return id
}

// compound lowers a block. shared reuses the current scope, which holds
// the parameters of a function body.
func (b *builder) compound(n *syntax.Node, shared bool) int32 {
	id := b.stmtNode(CursorCompoundStmt, n)
	if !shared {
		b.pushScope(scopeBlock)
		defer b.popScope()
	}
	var pending int32 = -1
	var each func([]*syntax.Node)
	each = func(items []*syntax.Node) {
		for _, it := range items {
			if !it.Named || it.Kind == "comment" {
				continue
			}
			if b.directive(it, each) {
				continue
			}
			for _, s := range b.blockItem(it) {
				if pending >= 0 {
					b.u.addChild(pending, s)
					pending = -1
				} else {
					b.u.addChild(id, s)
				}
				if k := b.u.nodes[s].kind; (k == CursorCaseStmt || k == CursorDefaultStmt) && len(b.u.nodes[s].children) < b.labelArity(s) {
					pending = b.innermostLabel(s)
				}
			}
		}
	}
	each(n.Children)
	return id
}

// labelArity is the child count of a case or default label with its
// sub-statement in place.
func (b *builder) labelArity(s int32) int {
	if b.u.nodes[s].kind == CursorDefaultStmt {
		return 1
	}
	return 2
}

// innermostLabel follows chained case labels to the one still missing a
// sub-statement.
func (b *builder) innermostLabel(s int32) int32 {
	for {
		ch := b.u.nodes[s].children
		if len(ch) < b.labelArity(s) {
			return s
		}
		s = ch[len(ch)-1]
	}
}

// blockItem lowers one item of a block. A case label's trailing
// statements become siblings of the label.
func (b *builder) blockItem(n *syntax.Node) []int32 {
	switch n.Kind {
	case "declaration", "type_definition", "struct_specifier", "union_specifier", "enum_specifier":
		return []int32{b.declStmt(n)}
	case "case_statement":
		return b.caseStatement(n)
	case "function_definition":
		b.diags.error(catParse, b.pos(n), "function definition is not allowed here")
		return nil
	}
	if s := b.statement(n); s >= 0 {
		return []int32{s}
	}
	return nil
}

func (b *builder) declStmt(n *syntax.Node) int32 {
	id := b.stmtNode(CursorDeclStmt, n)
	switch n.Kind {
	case "declaration":
		b.declaration(n, id)
	case "type_definition":
		b.typeDefinition(n, id)
	default:
		b.standaloneTag(n, id)
	}
	return id
}

// statement lowers a statement; it returns -1 for nothing to add.
func (b *builder) statement(n *syntax.Node) int32 {
	u := b.u
	if n == nil || n.Missing {
		return -1
	}
	field := n.ChildByField
	switch n.Kind {
	case "compound_statement":
		return b.compound(n, false)
	case "expression_statement":
		if sa := b.staticAssertNode(n); sa >= 0 {
			return b.stmtNode(CursorDeclStmt, n, sa)
		}
		var inner *syntax.Node
		for _, ch := range n.NamedChildren() {
			if ch.Kind != "comment" {
				inner = ch
				break
			}
		}
		if inner == nil {
			return b.stmtNode(CursorNullStmt, n)
		}
		if inner.Kind == "gnu_asm_expression" {
			return b.stmtNode(CursorGCCAsmStmt, n)
		}
		e := b.expr(inner)
		b.checkUnused(e)
		return e
	case "if_statement":
		cond := b.condition(field("condition"), false)
		then := b.statement(field("consequence"))
		b.checkEmptyBody(field("consequence"), "if statement has empty body")
		id := b.stmtNode(CursorIfStmt, n, cond, then)
		if alt := field("alternative"); alt != nil {
			if alt.Kind == "else_clause" {
				alt = alt.FirstNamedChild()
			}
			u.addChild(id, b.statement(alt))
		}
		return id
	case "while_statement":
		cond := b.condition(field("condition"), false)
		body := b.loopBody(field("body"))
		b.checkEmptyBody(field("body"), "while loop has empty body")
		id := b.stmtNode(CursorWhileStmt, n, cond, body.stmt)
		b.markEndless(id, cond, body.broken)
		return id
	case "do_statement":
		body := b.loopBody(field("body"))
		cond := b.condition(field("condition"), false)
		id := b.stmtNode(CursorDoStmt, n, body.stmt, cond)
		b.markEndless(id, cond, body.broken)
		return id
	case "for_statement":
		return b.forStatement(n)
	case "switch_statement":
		return b.switchStatement(n)
	case "case_statement":
		if s := b.caseStatement(n); len(s) > 0 {
			return s[0]
		}
		return -1
	case "labeled_statement":
		return b.labeled(n)
	case "goto_statement":
		id := b.stmtNode(CursorGotoStmt, n)
		if l := field("label"); l != nil {
			ref := u.newNode(CursorLabelRef, b.src(l), b.pos(l), b.pos(l), b.endPos(l))
			u.addChild(id, ref)
			if b.fn != nil {
				b.fn.gotos = append(b.fn.gotos, ref)
			}
		}
		return id
	case "break_statement":
		if b.fn == nil || len(b.fn.breakable) == 0 {
			b.diags.error(catSemantic, b.pos(n), "'break' statement not in loop or switch statement")
		} else {
			b.fn.breakable[len(b.fn.breakable)-1] = true
		}
		return b.stmtNode(CursorBreakStmt, n)
	case "continue_statement":
		if b.fn == nil || b.fn.loops == 0 {
			b.diags.error(catSemantic, b.pos(n), "'continue' statement not in loop statement")
		}
		return b.stmtNode(CursorContinueStmt, n)
	case "return_statement":
		return b.returnStatement(n)
	case "attributed_statement":
		for _, ch := range n.NamedChildren() {
			if ch.Kind != "attribute_declaration" && ch.Kind != "comment" {
				return b.statement(ch)
			}
		}
		return b.stmtNode(CursorNullStmt, n)
	case "declaration", "type_definition":
		return b.declStmt(n)
	case "ERROR", "comment":
		return -1
	}
	if strings.HasSuffix(n.Kind, "_statement") {
		return b.stmtNode(CursorUnexposedStmt, n)
	}
	e := b.expr(n)
	b.checkUnused(e)
	return e
}

// condition lowers a controlling expression. integer selects switch
// conditions, which require an integer type.
func (b *builder) condition(n *syntax.Node, integer bool) int32 {
	u := b.u
	if n == nil {
		return -1
	}
	inner := n
	if n.Kind == "parenthesized_expression" {
		if ch := n.FirstNamedChild(); ch != nil && ch.Kind != "compound_statement" {
			inner = ch
		}
	}
	if inner.Kind == "assignment_expression" && !integer {
		if op := inner.ChildByField("operator"); op != nil && b.src(op) == "=" {
			w := b.diags.warning("parentheses", true, false, catSemantic, b.pos(op),
				"using the result of an assignment as a condition without parentheses")
			b.diags.note(w, b.pos(op), "place parentheses around the assignment to silence this warning").
				addFixit(b.pos(inner), b.pos(inner), "(").addFixit(b.endPos(inner), b.endPos(inner), ")")
			b.diags.note(w, b.pos(op), "use '==' to turn this assignment into an equality comparison").
				addFixit(b.pos(op), b.endPos(op), "==")
		}
	}
	e := b.rvalue(b.expr(inner))
	if b.invalid(e) {
		return e
	}
	t := u.nodes[e].typ
	switch {
	case integer && !u.isInteger(t):
		b.diags.error(catSemantic, u.nodes[e].begin, "statement requires expression of integer type ('%s' invalid)", u.spelling(t))
	case integer:
		if p := u.promote(t); !u.sameType(p, t, true) {
			e = b.implicitCast(e, p)
		}
	case !u.isScalar(t):
		b.diags.error(catSemantic, u.nodes[e].begin, "statement requires expression of scalar type ('%s' invalid)", u.spelling(t))
	}
	return e
}

func (b *builder) checkEmptyBody(body *syntax.Node, msg string) {
	if body == nil || body.Kind != "expression_statement" || body.FirstNamedChild() != nil {
		return
	}
	prev := previousSibling(body)
	if prev == nil {
		return
	}
	pl, _ := b.file.lineCol(prev.EndByte)
	bl, _ := b.file.lineCol(body.StartByte)
	if pl != bl {
		return
	}
	w := b.diags.warning("empty-body", true, false, catSemantic, b.pos(body), "%s", msg)
	b.diags.note(w, b.pos(body), "put the semicolon on a separate line to silence this warning")
}

type loopResult struct {
	stmt   int32
	broken bool
}

func (b *builder) enterBreakable(loop bool) {
	if b.fn == nil {
		return
	}
	b.fn.breakable = append(b.fn.breakable, false)
	if loop {
		b.fn.loops++
	}
}

func (b *builder) leaveBreakable(loop bool) bool {
	if b.fn == nil {
		return false
	}
	last := len(b.fn.breakable) - 1
	broken := b.fn.breakable[last]
	b.fn.breakable = b.fn.breakable[:last]
	if loop {
		b.fn.loops--
	}
	return broken
}

func (b *builder) loopBody(n *syntax.Node) loopResult {
	b.enterBreakable(true)
	s := b.statement(n)
	return loopResult{stmt: s, broken: b.leaveBreakable(true)}
}

// markEndless flags loops whose condition is always true and that are
// never broken out of.
func (b *builder) markEndless(loop, cond int32, broken bool) {
	if broken {
		return
	}
	if cond >= 0 {
		v, ok := b.u.eval(cond, true)
		if !ok || !v.truthy() {
			return
		}
	}
	b.u.nodes[loop].flags |= flagNoReturn
}

func (b *builder) forStatement(n *syntax.Node) int32 {
	u := b.u
	b.pushScope(scopeBlock)
	defer b.popScope()
	id := b.stmtNode(CursorForStmt, n)
	if init := n.ChildByField("initializer"); init != nil {
		switch init.Kind {
		case "declaration":
			u.addChild(id, b.declStmt(init))
		default:
			e := b.expr(init)
			b.checkUnused(e)
			u.addChild(id, e)
		}
	}
	cond := int32(-1)
	if c := n.ChildByField("condition"); c != nil {
		cond = b.condition(c, false)
		u.addChild(id, cond)
	}
	if inc := n.ChildByField("update"); inc != nil {
		e := b.expr(inc)
		b.checkUnused(e)
		u.addChild(id, e)
	}
	body := b.loopBody(n.ChildByField("body"))
	u.addChild(id, body.stmt)
	b.markEndless(id, cond, body.broken)
	return id
}

func (b *builder) switchStatement(n *syntax.Node) int32 {
	cond := b.condition(n.ChildByField("condition"), true)
	if b.fn == nil {
		return b.stmtNode(CursorSwitchStmt, n, cond)
	}
	b.fn.cases = append(b.fn.cases, &switchState{values: map[int64]srcPos{}, fallback: noPos})
	b.enterBreakable(false)
	body := b.statement(n.ChildByField("body"))
	b.leaveBreakable(false)
	b.fn.cases = b.fn.cases[:len(b.fn.cases)-1]
	b.fn.switches++
	return b.stmtNode(CursorSwitchStmt, n, cond, body)
}

// caseStatement lowers a case or default label. The grammar groups every
// statement up to the next label under it; the first becomes the label's
// sub-statement and the rest follow as siblings.
func (b *builder) caseStatement(n *syntax.Node) []int32 {
	u := b.u
	value := n.ChildByField("value")
	kind := CursorCaseStmt
	if value == nil {
		kind = CursorDefaultStmt
	}
	var sw *switchState
	if b.fn != nil && len(b.fn.cases) > 0 {
		sw = b.fn.cases[len(b.fn.cases)-1]
	}
	id := b.stmtNode(kind, n)
	switch {
	case sw == nil && kind == CursorCaseStmt:
		b.diags.error(catSemantic, b.pos(n), "'case' statement not in switch statement")
	case sw == nil:
		b.diags.error(catSemantic, b.pos(n), "'default' statement not in switch statement")
	case kind == CursorDefaultStmt:
		if sw.fallback.valid() {
			e := b.diags.error(catSemantic, b.pos(n), "multiple default labels in one switch")
			b.diags.note(e, sw.fallback, "previous case defined here")
		} else {
			sw.fallback = b.pos(n)
		}
	}
	if value != nil {
		e := b.expr(value)
		u.addChild(id, e)
		v, ok := b.constInt(e)
		switch {
		case !ok && !b.invalid(e):
			b.diags.error(catSemantic, b.pos(value), "expression is not an integer constant expression")
		case ok && sw != nil:
			if prev, dup := sw.values[v]; dup {
				e := b.diags.error(catSemantic, b.pos(value), "duplicate case value '%d'", v)
				b.diags.note(e, prev, "previous case defined here")
			} else {
				sw.values[v] = b.pos(value)
			}
		}
	}
	var rest []*syntax.Node
	for _, ch := range n.Children {
		if ch.Named && ch.Field != "value" && ch.Kind != "comment" {
			rest = append(rest, ch)
		}
	}
	out := []int32{id}
	for i, ch := range rest {
		stmts := b.blockItem(ch)
		if i == 0 && len(stmts) > 0 {
			u.addChild(id, stmts[0])
			stmts = stmts[1:]
		}
		out = append(out, stmts...)
	}
	if len(rest) > 0 {
		u.nodes[id].end = b.endPos(rest[0])
	}
	return out
}

func (b *builder) labeled(n *syntax.Node) int32 {
	u := b.u
	l := n.ChildByField("label")
	if l == nil {
		return -1
	}
	name := b.src(l)
	id := u.newNode(CursorLabelStmt, name, b.pos(l), b.pos(n), b.endPos(n))
	if b.fn != nil {
		if prev, ok := b.fn.labels[name]; ok {
			e := b.diags.error(catSemantic, b.pos(l), "redefinition of label '%s'", name)
			b.diags.note(e, prev.pos, "previous definition is here")
		} else {
			b.fn.labels[name] = label{stmt: id, pos: b.pos(l)}
		}
	}
	for _, ch := range n.NamedChildren() {
		if ch == l || ch.Kind == "comment" {
			continue
		}
		if ch.Kind == "declaration" && !u.c23 {
			b.diags.warning("c23-extensions", true, false, catSemantic, b.pos(ch), "label followed by a declaration is a C23 extension")
		}
		for _, s := range b.blockItem(ch) {
			u.addChild(id, s)
		}
		break
	}
	return id
}

func (b *builder) returnStatement(n *syntax.Node) int32 {
	u := b.u
	id := b.stmtNode(CursorReturnStmt, n)
	if b.fn == nil {
		return id
	}
	b.fn.returns++
	var value *syntax.Node
	for _, ch := range n.NamedChildren() {
		if ch.Kind != "comment" {
			value = ch
			break
		}
	}
	result := b.fn.result
	if value == nil {
		if !u.isVoid(result) && result != invalidType {
			e := b.diags.groupError("return-type", catSemantic, b.pos(n), "non-void function '%s' should return a value", b.fn.name)
			e.addRange(b.pos(n), b.endPos(n))
		}
		return id
	}
	e := b.expr(value)
	switch {
	case e < 0 || b.invalid(e):
	case u.isVoid(result):
		if !u.isVoid(u.nodes[e].typ) {
			b.diags.groupError("return-type", catSemantic, b.pos(n), "void function '%s' should not return a value", b.fn.name).
				addRange(u.nodes[e].begin, u.nodes[e].end)
		}
		e = b.rvalue(e)
	default:
		e = b.assignTo(e, result, assignReturn, -1)
	}
	u.addChild(id, e)
	return id
}

// checkUnused warns about expression statements whose value is discarded
// without any effect.
func (b *builder) checkUnused(e int32) {
	u := b.u
	s := u.strip(e)
	if s < 0 || b.invalid(s) {
		return
	}
	n := &u.nodes[s]
	unused := func() {
		b.diags.warning("unused-value", true, false, catSemantic, u.nodes[e].begin, "expression result unused").
			addRange(u.nodes[e].begin, u.nodes[e].end)
	}
	switch n.kind {
	case CursorBinaryOperator:
		switch {
		case n.binOp.IsAssignment():
		case n.binOp == BinaryComma:
			if len(n.children) == 2 {
				b.checkUnused(n.children[1])
			}
		case n.binOp.IsComparison():
			what := "relational"
			if n.binOp == BinaryEQ || n.binOp == BinaryNE {
				what = "equality"
			}
			w := b.diags.warning("unused-comparison", true, false, catSemantic, u.nodes[e].begin, "%s comparison result unused", what)
			w.addRange(n.begin, n.end)
			if n.binOp == BinaryEQ && len(n.children) == 2 {
				op := u.nodes[n.children[0]].end
				b.diags.note(w, op, "use '=' to turn this equality comparison into an assignment")
			}
		case n.binOp == BinaryLAnd || n.binOp == BinaryLOr:
		default:
			unused()
		}
	case CursorUnaryOperator:
		switch n.unOp {
		case UnaryPreInc, UnaryPreDec, UnaryPostInc, UnaryPostDec, UnaryExtension:
		default:
			unused()
		}
	case CursorCallExpr:
		if n.ref >= 0 && u.nodes[n.ref].has(flagWarnUnused) {
			b.diags.warning("unused-result", true, false, catSemantic, n.begin,
				"ignoring return value of function declared with 'warn_unused_result' attribute").addRange(n.begin, n.end)
		}
	case CursorCStyleCastExpr:
		if !u.isVoid(n.typ) {
			unused()
		}
	case CursorDeclRefExpr, CursorMemberRefExpr, CursorArraySubscriptExpr, CursorIntegerLiteral,
		CursorFloatingLiteral, CursorCharacterLiteral, CursorStringLiteral, CursorUnaryExpr, CursorBoolLiteralExpr:
		if n.kind == CursorDeclRefExpr && n.ref >= 0 && u.nodes[n.ref].kind == CursorFunctionDecl {
			return
		}
		if u.ty(u.canonicalType(n.typ)).quals&qualVolatile != 0 {
			return
		}
		unused()
	}
}

// staticAssert lowers a file-scope _Static_assert. It reports whether n
// was one.
func (b *builder) staticAssert(n *syntax.Node, parent int32) bool {
	id := b.staticAssertNode(n)
	if id < 0 {
		return false
	}
	b.u.addChild(parent, id)
	return true
}

// staticAssertNode lowers _Static_assert, which the grammar parses as a
// call expression statement. It returns -1 when n is something else.
func (b *builder) staticAssertNode(n *syntax.Node) int32 {
	u := b.u
	call := n.FirstNamedChild()
	if call == nil || call.Kind != "call_expression" {
		return -1
	}
	fn := call.ChildByField("function")
	if fn == nil || fn.Kind != "identifier" {
		return -1
	}
	switch name := b.src(fn); {
	case name == "_Static_assert", name == "static_assert" && b.sc.lookup(name) < 0:
	default:
		return -1
	}
	var args []*syntax.Node
	if al := call.ChildByField("arguments"); al != nil {
		for _, a := range al.NamedChildren() {
			if a.Kind != "comment" {
				args = append(args, a)
			}
		}
	}
	id := u.newNode(CursorStaticAssert, "", b.pos(n), b.pos(n), b.endPos(n))
	node := &u.nodes[id]
	node.semParent, node.lexParent = b.ctx, b.ctx
	if len(args) == 0 {
		b.diags.error(catParse, b.pos(call), "expected expression")
	} else {
		cond := b.expr(args[0])
		u.addChild(id, cond)
		msg := ""
		if len(args) > 1 {
			m := b.expr(args[1])
			u.addChild(id, m)
			if m >= 0 {
				msg = u.nodes[m].strVal
			}
		} else if !u.c23 {
			b.diags.warning("c23-extensions", true, false, catSemantic, b.pos(fn), "'%s' with no message is a C23 extension", b.src(fn))
		}
		v, ok := b.constInt(cond)
		switch {
		case !ok && !b.invalid(cond):
			b.diags.error(catSemantic, b.pos(args[0]), "static assertion expression is not an integral constant expression")
		case ok && v == 0 && len(args) > 1:
			b.diags.error(catSemantic, b.pos(args[0]), "static assertion failed: %s", msg)
		case ok && v == 0:
			b.diags.error(catSemantic, b.pos(args[0]), "static assertion failed")
		}
	}
	return id
}
