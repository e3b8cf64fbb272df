package clang

type scopeKind int

const (
	scopeFile scopeKind = iota
	scopeFunction
	scopeBlock
	scopePrototype
)

// scope is one C identifier scope. Tags live in their own namespace.
type scope struct {
	parent   *scope
	kind     scopeKind
	ordinary map[string]int32
	tags     map[string]int32
	// order records ordinary declarations for completion.
	order []int32
}

func newScope(parent *scope, kind scopeKind) *scope {
	return &scope{parent: parent, kind: kind, ordinary: map[string]int32{}, tags: map[string]int32{}}
}

func (s *scope) lookup(name string) int32 {
	for sc := s; sc != nil; sc = sc.parent {
		if d, ok := sc.ordinary[name]; ok {
			return d
		}
	}
	return -1
}

func (s *scope) lookupTag(name string) int32 {
	for sc := s; sc != nil; sc = sc.parent {
		if d, ok := sc.tags[name]; ok {
			return d
		}
	}
	return -1
}

func (s *scope) declare(name string, decl int32) {
	if name == "" {
		return
	}
	if _, ok := s.ordinary[name]; !ok {
		s.order = append(s.order, decl)
	}
	s.ordinary[name] = decl
}

// label is a label of the current function.
type label struct {
	stmt int32
	pos  srcPos
}

// funcState tracks the function body being lowered.
type funcState struct {
	decl     int32
	name     string
	result   typeID
	scope    *scope
	labels   map[string]label
	gotos    []int32
	locals   []int32
	loops    int
	switches int
	returns  int
	// breakable has one entry per enclosing loop or switch, set once a
	// break targets it.
	breakable []bool
	cases     []*switchState
}

// switchState collects the labels of the innermost switch.
type switchState struct {
	values   map[int64]srcPos
	fallback srcPos
}

func (b *builder) pushScope(kind scopeKind) *scope {
	b.sc = newScope(b.sc, kind)
	return b.sc
}

func (b *builder) popScope() {
	if b.sc.parent != nil {
		b.sc = b.sc.parent
	}
}

// sameSymbolKind reports whether two declaration kinds may redeclare one
// another.
func sameSymbolKind(a, b CursorKind) bool {
	if a == b {
		return true
	}
	isVarLike := func(k CursorKind) bool { return k == CursorVarDecl || k == CursorParmDecl }
	return isVarLike(a) && isVarLike(b)
}

// checkRedeclaration validates decl against prev (same name, same scope)
// and links the two when they declare one entity. It returns false when decl
// starts a new entity.
func (b *builder) checkRedeclaration(prev, decl int32) bool {
	u := b.u
	p, d := &u.nodes[prev], &u.nodes[decl]
	if !sameSymbolKind(p.kind, d.kind) {
		if p.has(flagImplicit) {
			return false
		}
		e := b.diags.error(catSemantic, d.loc, "redefinition of '%s' as different kind of symbol", d.name)
		b.diags.note(e, p.loc, "previous definition is here")
		return false
	}

	switch d.kind {
	case CursorFunctionDecl:
		if !u.compatibleFunctions(p.typ, d.typ) {
			e := b.diags.error(catSemantic, d.loc, "conflicting types for '%s'", d.name)
			if p.has(flagImplicit) {
				b.diags.note(e, p.loc, "previous implicit declaration is here")
			} else {
				b.diags.note(e, p.loc, "previous declaration is here")
			}
		}
	case CursorVarDecl:
		if b.sc.kind != scopeFile && !(p.storage == StorageExtern && d.storage == StorageExtern) {
			e := b.diags.error(catSemantic, d.loc, "redefinition of '%s'", d.name)
			b.diags.note(e, p.loc, "previous definition is here")
			return false
		}
		if !u.compatibleObjects(p.typ, d.typ) {
			e := b.diags.error(catSemantic, d.loc, "redefinition of '%s' with a different type: '%s' vs '%s'",
				d.name, u.spelling(d.typ), u.spelling(p.typ))
			b.diags.note(e, p.loc, "previous definition is here")
			return false
		}
		if (p.storage == StorageStatic) != (d.storage == StorageStatic) && d.storage != StorageExtern {
			if d.storage == StorageStatic {
				e := b.diags.error(catSemantic, d.loc, "static declaration of '%s' follows non-static declaration", d.name)
				b.diags.note(e, p.loc, "previous declaration is here")
			} else {
				e := b.diags.error(catSemantic, d.loc, "non-static declaration of '%s' follows static declaration", d.name)
				b.diags.note(e, p.loc, "previous declaration is here")
			}
		}
	case CursorTypedefDecl:
		if !u.sameType(p.aux, d.aux, false) {
			e := b.diags.error(catSemantic, d.loc, "typedef redefinition with different types ('%s' vs '%s')",
				u.spelling(d.aux), u.spelling(p.aux))
			b.diags.note(e, p.loc, "previous definition is here")
			return false
		}
	case CursorEnumConstantDecl:
		e := b.diags.error(catSemantic, d.loc, "redefinition of enumerator '%s'", d.name)
		b.diags.note(e, p.loc, "previous definition is here")
		return false
	case CursorParmDecl:
		e := b.diags.error(catSemantic, d.loc, "redefinition of parameter '%s'", d.name)
		b.diags.note(e, p.loc, "previous declaration is here")
		return false
	}
	u.redeclare(prev, decl)
	return true
}

// compatibleObjects allows an incomplete array to be completed by a later
// declaration.
func (u *unit) compatibleObjects(a, b typeID) bool {
	if u.sameType(a, b, false) {
		return true
	}
	da, db := u.ty(u.canonicalType(a)), u.ty(u.canonicalType(b))
	if (da.kind == TypeIncompleteArray || db.kind == TypeIncompleteArray) && u.isArray(a) && u.isArray(b) {
		return u.sameType(da.elem, db.elem, false)
	}
	return false
}

// markUsed records a reference to decl.
func (b *builder) markUsed(decl int32) {
	if decl >= 0 {
		b.u.nodes[decl].flags |= flagUsed
	}
}

// checkUnusedLocals warns about locals never referenced.
func (b *builder) checkUnusedLocals() {
	for _, v := range b.fn.locals {
		n := &b.u.nodes[v]
		if n.has(flagUsed) || n.name == "" || n.storage == StorageExtern {
			continue
		}
		b.diags.warning("unused-variable", false, true, catSemantic, n.loc, "unused variable '%s'", n.name)
	}
}

// canFallThrough reports whether control can reach the end of stmt.
func (u *unit) canFallThrough(stmt int32) bool {
	if stmt < 0 {
		return true
	}
	n := &u.nodes[stmt]
	switch n.kind {
	case CursorReturnStmt, CursorGotoStmt, CursorIndirectGotoStmt:
		return false
	case CursorCompoundStmt:
		reachable := true
		for _, ch := range n.children {
			switch u.nodes[ch].kind {
			case CursorLabelStmt, CursorCaseStmt, CursorDefaultStmt:
				reachable = true
			}
			if reachable && !u.canFallThrough(ch) {
				reachable = false
			}
		}
		return reachable
	case CursorIfStmt:
		if len(n.children) < 3 {
			return true
		}
		return u.canFallThrough(n.children[1]) || u.canFallThrough(n.children[2])
	case CursorWhileStmt, CursorDoStmt, CursorForStmt:
		return !n.has(flagNoReturn)
	case CursorSwitchStmt:
		return true
	case CursorLabelStmt, CursorCaseStmt, CursorDefaultStmt:
		if len(n.children) == 0 {
			return true
		}
		return u.canFallThrough(n.children[len(n.children)-1])
	case CursorCallExpr:
		return n.ref < 0 || !u.nodes[n.ref].has(flagNoReturn)
	case CursorParenExpr:
		if len(n.children) > 0 {
			return u.canFallThrough(n.children[0])
		}
	}
	return true
}

// noreturnLibrary lists library functions that never return.
var noreturnLibrary = map[string]bool{
	"abort": true, "exit": true, "_Exit": true, "quick_exit": true, "longjmp": true,
	"__builtin_unreachable": true, "__builtin_trap": true, "__assert_fail": true,
}

// checkReturn warns when a non-void function can reach its closing brace.
func (b *builder) checkReturn(fn int32, body int32, closing srcPos) {
	u := b.u
	n := &u.nodes[fn]
	result := u.ty(u.desugar(n.typ)).elem
	if u.isVoid(result) || n.name == "main" || n.has(flagNoReturn) {
		return
	}
	if !u.canFallThrough(body) {
		return
	}
	if b.fn.hasReturn() {
		b.diags.warning("return-type", true, false, catSemantic, closing, "non-void function does not return a value in all control paths")
		return
	}
	b.diags.warning("return-type", true, false, catSemantic, closing, "non-void function does not return a value")
}

func (f *funcState) hasReturn() bool { return f.returns > 0 }
