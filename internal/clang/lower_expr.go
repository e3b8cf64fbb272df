package clang

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mvp-joe/cxgraph/internal/syntax"
)

// span locates an expression cursor. spell differs from loc for tokens
// that come from a macro body.
type span struct {
	loc, begin, end, spell srcPos
}

func (b *builder) spanOf(n *syntax.Node) span {
	p := b.pos(n)
	return span{loc: p, begin: p, end: b.endPos(n), spell: p}
}

func (b *builder) exprNode(kind CursorKind, name string, typ typeID, sp span, children ...int32) int32 {
	id := b.u.newNode(kind, name, sp.loc, sp.begin, sp.end)
	n := &b.u.nodes[id]
	n.typ = typ
	if sp.spell.valid() {
		n.spell = sp.spell
	}
	for _, c := range children {
		b.u.addChild(id, c)
	}
	return id
}

func (b *builder) typeOf(e int32) typeID {
	if e < 0 {
		return invalidType
	}
	return b.u.nodes[e].typ
}

// invalid reports operands that already failed; no further diagnostics
// are produced for expressions built on them.
func (b *builder) invalid(es ...int32) bool {
	for _, e := range es {
		if e < 0 || b.u.nodes[e].typ == invalidType {
			return true
		}
	}
	return false
}

// recovery is an expression that could not be typed.
func (b *builder) recovery(name string, sp span, children ...int32) int32 {
	id := b.exprNode(CursorUnexposedExpr, name, invalidType, sp, children...)
	b.u.nodes[id].flags |= flagInvalid
	return id
}

func (b *builder) sizeType() typeID {
	switch {
	case b.u.target.lp64():
		return b.u.builtin(TypeULong)
	case b.u.target.pointerWidth == 64:
		return b.u.builtin(TypeULongLong)
	}
	return b.u.builtin(TypeUInt)
}

func (b *builder) ptrdiffType() typeID {
	switch {
	case b.u.target.lp64():
		return b.u.builtin(TypeLong)
	case b.u.target.pointerWidth == 64:
		return b.u.builtin(TypeLongLong)
	}
	return b.u.builtin(TypeInt)
}

// strip looks through parentheses and implicit conversions.
func (u *unit) strip(e int32) int32 {
	for e >= 0 {
		n := &u.nodes[e]
		if (n.kind == CursorParenExpr || n.kind == CursorUnexposedExpr && n.has(flagImplicit)) && len(n.children) == 1 {
			e = n.children[0]
			continue
		}
		return e
	}
	return e
}

// lvalue reports whether e designates an object.
func (u *unit) lvalue(e int32) bool {
	if e < 0 {
		return false
	}
	n := &u.nodes[e]
	switch n.kind {
	case CursorDeclRefExpr:
		return n.ref >= 0 && (u.nodes[n.ref].kind == CursorVarDecl || u.nodes[n.ref].kind == CursorParmDecl)
	case CursorMemberRefExpr:
		return n.has(flagArrow) || len(n.children) > 0 && u.lvalue(n.children[0])
	case CursorArraySubscriptExpr, CursorStringLiteral, CursorCompoundLiteral:
		return true
	case CursorUnaryOperator:
		return n.unOp == UnaryDeref
	case CursorParenExpr:
		return len(n.children) == 1 && u.lvalue(n.children[0])
	}
	return false
}

// implicitCast wraps e in an implicit conversion to t.
func (b *builder) implicitCast(e int32, t typeID) int32 {
	c := b.u.nodes[e]
	id := b.exprNode(CursorUnexposedExpr, c.name, t, span{c.loc, c.begin, c.end, c.spell}, e)
	n := &b.u.nodes[id]
	n.flags |= flagImplicit
	n.ref = c.ref
	return id
}

// rvalue applies array and function decay and lvalue conversion.
func (b *builder) rvalue(e int32) int32 {
	if e < 0 || b.invalid(e) {
		return e
	}
	u := b.u
	t := u.nodes[e].typ
	switch {
	case u.isArray(t) || u.isFunction(t):
		return b.implicitCast(e, u.decay(t))
	case u.lvalue(e):
		return b.implicitCast(e, u.unqualified(t))
	}
	return e
}

// convert converts e to t, adding an implicit cast when the types differ.
func (b *builder) convert(e int32, t typeID) int32 {
	e = b.rvalue(e)
	if b.invalid(e) || t == invalidType || b.u.isVoid(t) {
		return e
	}
	if b.u.sameType(b.u.nodes[e].typ, t, true) {
		return e
	}
	return b.implicitCast(e, b.u.unqualified(t))
}

// promoteArg applies the default argument promotions.
func (b *builder) promoteArg(e int32) int32 {
	e = b.rvalue(e)
	if b.invalid(e) {
		return e
	}
	u := b.u
	t := u.nodes[e].typ
	switch {
	case u.kindOf(t) == TypeFloat:
		return b.implicitCast(e, u.builtin(TypeDouble))
	case u.isInteger(t):
		if p := u.promote(t); !u.sameType(p, t, true) {
			return b.implicitCast(e, p)
		}
	}
	return e
}

// isNullConstant reports an integer constant zero, possibly cast to void *.
func (b *builder) isNullConstant(e int32) bool {
	u := b.u
	e = u.strip(e)
	if e < 0 {
		return false
	}
	n := &u.nodes[e]
	if n.kind == CursorCStyleCastExpr && u.kindOf(n.typ) == TypePointer && u.isVoid(u.pointee(n.typ)) && len(n.children) > 0 {
		return b.isNullConstant(n.children[len(n.children)-1])
	}
	if !u.isInteger(n.typ) {
		return false
	}
	v, ok := b.constInt(e)
	return ok && v == 0
}

type assignKind int

const (
	assignInit assignKind = iota
	assignPlain
	assignReturn
	assignPass
)

func (b *builder) conversionText(kind assignKind, to, from typeID) string {
	t, f := b.u.spelling(to), b.u.spelling(from)
	switch kind {
	case assignInit:
		return fmt.Sprintf("initializing '%s' with an expression of type '%s'", t, f)
	case assignPlain:
		return fmt.Sprintf("assigning to '%s' from '%s'", t, f)
	case assignReturn:
		return fmt.Sprintf("returning '%s' from a function with result type '%s'", f, t)
	}
	return fmt.Sprintf("passing '%s' to parameter of type '%s'", f, t)
}

func (b *builder) incompatibleText(kind assignKind, to, from typeID) string {
	t, f := b.u.spelling(to), b.u.spelling(from)
	switch kind {
	case assignInit:
		return fmt.Sprintf("initializing '%s' with an expression of incompatible type '%s'", t, f)
	case assignPlain:
		return fmt.Sprintf("assigning to '%s' from incompatible type '%s'", t, f)
	case assignReturn:
		return fmt.Sprintf("returning '%s' from a function with incompatible result type '%s'", f, t)
	}
	return fmt.Sprintf("passing '%s' to parameter of incompatible type '%s'", f, t)
}

// assignTo checks the simple-assignment constraints for e converted to
// to and returns the converted expression.
func (b *builder) assignTo(e int32, to typeID, kind assignKind, param int32) int32 {
	u := b.u
	if b.invalid(e) || to == invalidType {
		return e
	}
	raw := e
	e = b.rvalue(e)
	from := u.nodes[e].typ
	loc := u.nodes[raw].begin
	tk, fk := u.kindOf(to), u.kindOf(from)
	var d *diagRecord
	switch {
	case u.isArithmetic(to) && u.isArithmetic(from):
	case tk == TypeBool && fk == TypePointer:
	case tk == TypePointer && fk == TypePointer:
		d = b.checkPointerAssign(to, from, kind, loc)
	case tk == TypePointer && u.isInteger(from):
		if !b.isNullConstant(raw) {
			d = b.diags.groupError("int-conversion", catSemantic, loc, "incompatible integer to pointer conversion %s", b.conversionText(kind, to, from))
		}
	case u.isInteger(to) && fk == TypePointer:
		d = b.diags.groupError("int-conversion", catSemantic, loc, "incompatible pointer to integer conversion %s", b.conversionText(kind, to, from))
	case !u.sameType(to, from, true):
		d = b.diags.error(catSemantic, loc, "%s", b.incompatibleText(kind, to, from))
	}
	if d != nil {
		d.addRange(u.nodes[raw].begin, u.nodes[raw].end)
		if param >= 0 {
			b.diags.note(d, u.nodes[param].loc, "passing argument to parameter '%s' here", u.nodes[param].name)
		}
	}
	return b.convert(e, to)
}

func (b *builder) checkPointerAssign(to, from typeID, kind assignKind, loc srcPos) *diagRecord {
	u := b.u
	tp, fp := u.canonicalType(u.pointee(to)), u.canonicalType(u.pointee(from))
	tq, fq := u.ty(tp).quals, u.ty(fp).quals
	tu, fu := u.unqualified(tp), u.unqualified(fp)
	switch {
	case u.isVoid(tu) || u.isVoid(fu) || tu == fu:
	case u.isFunction(tu) && u.isFunction(fu) && u.compatibleFunctions(tu, fu):
	case u.isInteger(tu) && u.isInteger(fu) && u.sizeBits(u.ty(tu).kind) == u.sizeBits(u.ty(fu).kind):
		msg := "converts between pointers to integer types with different sign"
		if k1, k2 := u.ty(tu).kind, u.ty(fu).kind; k1 == TypeCharS || k1 == TypeCharU || k2 == TypeCharS || k2 == TypeCharU {
			msg = "converts between pointers to integer types where one is of the unique plain 'char' type and the other is not"
		}
		return b.diags.warning("pointer-sign", true, false, catSemantic, loc, "%s %s", b.conversionText(kind, to, from), msg)
	default:
		return b.diags.warning("incompatible-pointer-types", true, false, catSemantic, loc, "incompatible pointer types %s", b.conversionText(kind, to, from))
	}
	if fq&^tq != 0 {
		return b.diags.warning("incompatible-pointer-types-discards-qualifiers", true, false, catSemantic, loc,
			"%s discards qualifiers", b.conversionText(kind, to, from))
	}
	return nil
}

// identifier resolves a name in an expression.
func (b *builder) identifier(name string, sp span, callee bool) int32 {
	u := b.u
	d := b.sc.lookup(name)
	if d < 0 {
		switch {
		case name == "__func__" || name == "__FUNCTION__" || name == "__PRETTY_FUNCTION__":
			return b.predefined(name, sp)
		case callee && !u.c23:
			d = b.implicitFunction(name, sp.loc)
		default:
			b.diags.error(catSemantic, sp.loc, "use of undeclared identifier '%s'", name).addRange(sp.begin, sp.end)
			return b.recovery(name, sp)
		}
	}
	n := &u.nodes[d]
	if n.kind == CursorTypedefDecl {
		b.diags.error(catSemantic, sp.loc, "unexpected type name '%s': expected expression", name)
		return b.recovery(name, sp)
	}
	b.markUsed(d)
	id := b.exprNode(CursorDeclRefExpr, name, u.nodes[d].typ, sp)
	u.nodes[id].ref = d
	return id
}

// predefined lowers __func__ and its GNU spellings.
func (b *builder) predefined(name string, sp span) int32 {
	u := b.u
	value := ""
	if b.fn != nil {
		value = b.fn.name
	} else {
		b.diags.warning("predefined-identifier-outside-function", true, false, catSemantic, sp.loc,
			"predefined identifier is only valid inside function")
	}
	t := u.arrayOf(u.qualified(u.builtin(b.charKind()), qualConst), int64(len(value)+1))
	id := b.exprNode(CursorUnexposedExpr, name, t, sp)
	u.nodes[id].strVal = value
	return id
}

// libraryFunction is the builtin signature of a C library function.
type libraryFunction struct {
	header   string
	result   string
	params   []string
	variadic bool
}

var libraryFunctions = map[string]libraryFunction{
	"printf":   {"stdio.h", "int", []string{"const char *"}, true},
	"sprintf":  {"stdio.h", "int", []string{"char *", "const char *"}, true},
	"snprintf": {"stdio.h", "int", []string{"char *", "size_t", "const char *"}, true},
	"scanf":    {"stdio.h", "int", []string{"const char *"}, true},
	"sscanf":   {"stdio.h", "int", []string{"const char *", "const char *"}, true},
	"puts":     {"stdio.h", "int", []string{"const char *"}, false},
	"putchar":  {"stdio.h", "int", []string{"int"}, false},
	"getchar":  {"stdio.h", "int", nil, false},
	"malloc":   {"stdlib.h", "void *", []string{"size_t"}, false},
	"calloc":   {"stdlib.h", "void *", []string{"size_t", "size_t"}, false},
	"realloc":  {"stdlib.h", "void *", []string{"void *", "size_t"}, false},
	"free":     {"stdlib.h", "void", []string{"void *"}, false},
	"exit":     {"stdlib.h", "void", []string{"int"}, false},
	"_Exit":    {"stdlib.h", "void", []string{"int"}, false},
	"abort":    {"stdlib.h", "void", nil, false},
	"abs":      {"stdlib.h", "int", []string{"int"}, false},
	"labs":     {"stdlib.h", "long", []string{"long"}, false},
	"strlen":   {"string.h", "size_t", []string{"const char *"}, false},
	"strcpy":   {"string.h", "char *", []string{"char *", "const char *"}, false},
	"strncpy":  {"string.h", "char *", []string{"char *", "const char *", "size_t"}, false},
	"strcat":   {"string.h", "char *", []string{"char *", "const char *"}, false},
	"strcmp":   {"string.h", "int", []string{"const char *", "const char *"}, false},
	"strncmp":  {"string.h", "int", []string{"const char *", "const char *", "size_t"}, false},
	"strchr":   {"string.h", "char *", []string{"const char *", "int"}, false},
	"memcpy":   {"string.h", "void *", []string{"void *", "const void *", "size_t"}, false},
	"memmove":  {"string.h", "void *", []string{"void *", "const void *", "size_t"}, false},
	"memset":   {"string.h", "void *", []string{"void *", "int", "size_t"}, false},
	"memcmp":   {"string.h", "int", []string{"const void *", "const void *", "size_t"}, false},
	"sqrt":     {"math.h", "double", []string{"double"}, false},
	"pow":      {"math.h", "double", []string{"double", "double"}, false},
	"sin":      {"math.h", "double", []string{"double"}, false},
	"cos":      {"math.h", "double", []string{"double"}, false},
	"exp":      {"math.h", "double", []string{"double"}, false},
	"log":      {"math.h", "double", []string{"double"}, false},
	"fabs":     {"math.h", "double", []string{"double"}, false},
	"floor":    {"math.h", "double", []string{"double"}, false},
	"ceil":     {"math.h", "double", []string{"double"}, false},
}

// libraryType parses the small type grammar of libraryFunctions.
func (b *builder) libraryType(s string) typeID {
	u := b.u
	ptrs := strings.Count(s, "*")
	s = strings.TrimSpace(strings.ReplaceAll(s, "*", ""))
	var q qual
	if rest, ok := strings.CutPrefix(s, "const "); ok {
		q, s = qualConst, rest
	}
	var t typeID
	switch s {
	case "size_t":
		t = b.sizeType()
	case "char":
		t = u.builtin(b.charKind())
	case "long":
		t = u.builtin(TypeLong)
	case "double":
		t = u.builtin(TypeDouble)
	case "void":
		t = u.builtin(TypeVoid)
	default:
		t = u.builtin(TypeInt)
	}
	t = u.qualified(t, q)
	for i := 0; i < ptrs; i++ {
		t = u.pointerTo(t)
	}
	return t
}

func (b *builder) librarySignature(f libraryFunction) typeID {
	params := make([]typeID, 0, len(f.params))
	for _, p := range f.params {
		params = append(params, b.libraryType(p))
	}
	return b.u.functionOf(b.libraryType(f.result), params, f.variadic, true)
}

// implicitFunction declares a function called without a prior declaration.
func (b *builder) implicitFunction(name string, loc srcPos) int32 {
	u := b.u
	if d, ok := b.implicit[name]; ok {
		return d
	}
	lib, isLib := libraryFunctions[name]
	t := u.functionOf(u.builtin(TypeInt), nil, false, false)
	if isLib {
		t = b.librarySignature(lib)
	}
	c99 := b.args.stdVersion() >= 199901
	switch {
	case isLib && c99:
		e := b.diags.groupError("implicit-function-declaration", catSemantic, loc,
			"call to undeclared library function '%s' with type '%s'; ISO C99 and later do not support implicit function declarations",
			name, u.spelling(t))
		b.diags.note(e, loc, "include the header <%s> or explicitly provide a declaration for '%s'", lib.header, name)
	case isLib:
		e := b.diags.warning("implicit-function-declaration", true, false, catSemantic, loc,
			"implicitly declaring library function '%s' with type '%s'", name, u.spelling(t))
		b.diags.note(e, loc, "include the header <%s> or explicitly provide a declaration for '%s'", lib.header, name)
	case c99:
		b.diags.groupError("implicit-function-declaration", catSemantic, loc,
			"call to undeclared function '%s'; ISO C99 and later do not support implicit function declarations", name)
	}
	d := u.newNode(CursorFunctionDecl, name, loc, loc, loc)
	n := &u.nodes[d]
	n.typ, n.storage = t, StorageNone
	n.semParent, n.lexParent = rootNode, rootNode
	n.flags |= flagImplicit
	if isLib {
		n.flags |= flagProto
		if lib.variadic {
			n.flags |= flagVariadic
		}
	}
	if noreturnLibrary[name] {
		n.flags |= flagNoReturn
	}
	u.newEntity(d)
	b.fileScope.declare(name, d)
	b.implicit[name] = d
	return d
}

// checkLibraryRedeclaration warns when a library function is declared
// with a type other than its builtin one.
func (b *builder) checkLibraryRedeclaration(decl int32) {
	u := b.u
	n := &u.nodes[decl]
	lib, ok := libraryFunctions[n.name]
	if !ok || n.storage == StorageStatic || u.semParentIsFunction(decl) {
		return
	}
	t := b.librarySignature(lib)
	if u.ty(u.canonicalType(n.typ)).kind == TypeFunctionNoProto || u.sameType(t, n.typ, false) {
		return
	}
	e := b.diags.warning("incompatible-library-redeclaration", true, false, catSemantic, n.loc,
		"incompatible redeclaration of library function '%s'", n.name)
	b.diags.note(e, n.loc, "'%s' is a builtin with type '%s'", n.name, u.spelling(t))
}

func (u *unit) semParentIsFunction(decl int32) bool {
	p := u.nodes[decl].lexParent
	return p > rootNode && u.nodes[p].kind == CursorFunctionDecl
}

// binary builds a binary or compound-assignment operator.
func (b *builder) binary(op string, l, r int32, sp span, opLoc srcPos) int32 {
	u := b.u
	kind := binaryOperatorFromToken(op)
	if l < 0 || r < 0 {
		return b.recovery("", sp, l, r)
	}
	if kind.IsAssignment() {
		return b.assignment(kind, l, r, sp, opLoc)
	}
	if kind == BinaryComma {
		r = b.rvalue(r)
		return b.operatorNode(CursorBinaryOperator, kind, b.typeOf(r), sp, l, r)
	}
	if b.invalid(l, r) {
		return b.operatorNode(CursorBinaryOperator, kind, invalidType, sp, l, r)
	}
	lc, rc := b.rvalue(l), b.rvalue(r)
	lt, rt := u.nodes[lc].typ, u.nodes[rc].typ
	intType := u.builtin(TypeInt)
	bad := func() int32 {
		b.diags.error(catSemantic, opLoc, "invalid operands to binary expression ('%s' and '%s')",
			u.spelling(u.nodes[l].typ), u.spelling(u.nodes[r].typ)).
			addRange(u.nodes[l].begin, u.nodes[l].end).addRange(u.nodes[r].begin, u.nodes[r].end)
		return b.operatorNode(CursorBinaryOperator, kind, invalidType, sp, lc, rc)
	}
	arith := func(integerOnly bool) int32 {
		if integerOnly && !(u.isInteger(lt) && u.isInteger(rt)) || !(u.isArithmetic(lt) && u.isArithmetic(rt)) {
			return bad()
		}
		common := u.arithmeticResult(lt, rt)
		return b.operatorNode(CursorBinaryOperator, kind, common, sp, b.convert(lc, common), b.convert(rc, common))
	}
	lp, rp := u.kindOf(lt) == TypePointer, u.kindOf(rt) == TypePointer

	switch kind {
	case BinaryMul:
		return arith(false)
	case BinaryDiv, BinaryRem:
		b.checkDivision(kind, l, r)
		return arith(kind == BinaryRem)
	case BinaryAnd, BinaryXor, BinaryOr:
		return arith(true)
	case BinaryShl, BinaryShr:
		if !u.isInteger(lt) || !u.isInteger(rt) {
			return bad()
		}
		pl := u.promote(lt)
		b.checkShift(pl, r)
		return b.operatorNode(CursorBinaryOperator, kind, pl, sp, b.convert(lc, pl), b.convert(rc, u.promote(rt)))
	case BinaryAdd:
		switch {
		case lp && u.isInteger(rt):
			return b.operatorNode(CursorBinaryOperator, kind, lt, sp, lc, rc)
		case rp && u.isInteger(lt):
			return b.operatorNode(CursorBinaryOperator, kind, rt, sp, lc, rc)
		}
		return arith(false)
	case BinarySub:
		switch {
		case lp && u.isInteger(rt):
			return b.operatorNode(CursorBinaryOperator, kind, lt, sp, lc, rc)
		case lp && rp:
			if !u.sameType(u.unqualified(u.canonicalType(u.pointee(lt))), u.unqualified(u.canonicalType(u.pointee(rt))), false) {
				b.diags.error(catSemantic, opLoc, "'%s' and '%s' are not pointers to compatible types", u.spelling(lt), u.spelling(rt))
			}
			return b.operatorNode(CursorBinaryOperator, kind, b.ptrdiffType(), sp, lc, rc)
		}
		return arith(false)
	case BinaryLT, BinaryGT, BinaryLE, BinaryGE, BinaryEQ, BinaryNE:
		switch {
		case u.isArithmetic(lt) && u.isArithmetic(rt):
			common := u.arithmeticResult(lt, rt)
			return b.operatorNode(CursorBinaryOperator, kind, intType, sp, b.convert(lc, common), b.convert(rc, common))
		case lp && rp:
			lq, rq := u.unqualified(u.canonicalType(u.pointee(lt))), u.unqualified(u.canonicalType(u.pointee(rt)))
			if lq != rq && !u.isVoid(lq) && !u.isVoid(rq) {
				b.diags.warning("compare-distinct-pointer-types", true, false, catSemantic, opLoc,
					"comparison of distinct pointer types ('%s' and '%s')", u.spelling(lt), u.spelling(rt))
			}
		case lp && u.isInteger(rt) && b.isNullConstant(r), rp && u.isInteger(lt) && b.isNullConstant(l):
		case lp && u.isInteger(rt), rp && u.isInteger(lt):
			b.diags.warning("pointer-integer-compare", true, false, catSemantic, opLoc,
				"comparison between pointer and integer ('%s' and '%s')", u.spelling(lt), u.spelling(rt))
		default:
			return bad()
		}
		return b.operatorNode(CursorBinaryOperator, kind, intType, sp, lc, rc)
	case BinaryLAnd, BinaryLOr:
		if !u.isScalar(lt) || !u.isScalar(rt) {
			return bad()
		}
		return b.operatorNode(CursorBinaryOperator, kind, intType, sp, lc, rc)
	}
	return bad()
}

func (b *builder) operatorNode(kind CursorKind, op BinaryOperatorKind, t typeID, sp span, l, r int32) int32 {
	id := b.exprNode(kind, "", t, sp, l, r)
	b.u.nodes[id].binOp = op
	return id
}

func (b *builder) checkDivision(kind BinaryOperatorKind, l, r int32) {
	u := b.u
	if !u.isInteger(u.nodes[l].typ) || !u.isInteger(u.nodes[r].typ) {
		return
	}
	if v, ok := b.constInt(r); ok && v == 0 {
		what := "division"
		if kind == BinaryRem || kind == BinaryRemAssign {
			what = "remainder"
		}
		b.diags.warning("division-by-zero", true, false, catSemantic, u.nodes[r].begin, "%s by zero is undefined", what).
			addRange(u.nodes[r].begin, u.nodes[r].end)
	}
}

func (b *builder) checkShift(lt typeID, r int32) {
	u := b.u
	v, ok := b.constInt(r)
	switch {
	case !ok:
	case v < 0:
		b.diags.warning("shift-count-negative", true, false, catSemantic, u.nodes[r].begin, "shift count is negative")
	case v >= u.sizeBits(u.kindOf(lt)):
		b.diags.warning("shift-count-overflow", true, false, catSemantic, u.nodes[r].begin, "shift count >= width of type")
	}
}

// modifiable checks that e can be assigned to.
func (b *builder) modifiable(e int32, opLoc srcPos) bool {
	u := b.u
	if b.invalid(e) {
		return false
	}
	n := &u.nodes[e]
	if !u.lvalue(e) {
		b.diags.error(catSemantic, opLoc, "expression is not assignable").addRange(n.begin, n.end)
		return false
	}
	if u.isArray(n.typ) {
		b.diags.error(catSemantic, opLoc, "array type '%s' is not assignable", u.spelling(n.typ)).addRange(n.begin, n.end)
		return false
	}
	if u.ty(u.canonicalType(n.typ)).quals&qualConst == 0 {
		return true
	}
	if s := u.strip(e); s >= 0 && u.nodes[s].kind == CursorDeclRefExpr && u.nodes[s].ref >= 0 {
		d := &u.nodes[u.nodes[s].ref]
		err := b.diags.error(catSemantic, opLoc, "cannot assign to variable '%s' with const-qualified type '%s'", d.name, u.spelling(d.typ))
		err.addRange(n.begin, n.end)
		b.diags.note(err, d.loc, "variable '%s' declared const here", d.name)
		return false
	}
	b.diags.error(catSemantic, opLoc, "read-only variable is not assignable").addRange(n.begin, n.end)
	return false
}

func (b *builder) assignment(kind BinaryOperatorKind, l, r int32, sp span, opLoc srcPos) int32 {
	u := b.u
	if b.invalid(l, r) {
		return b.operatorNode(CursorBinaryOperator, kind, invalidType, sp, l, r)
	}
	b.markUsed(u.nodes[u.strip(l)].ref)
	if !b.modifiable(l, opLoc) {
		return b.operatorNode(CursorBinaryOperator, kind, invalidType, sp, l, b.rvalue(r))
	}
	lt := u.unqualified(u.nodes[l].typ)
	if kind == BinaryAssign {
		return b.operatorNode(CursorBinaryOperator, kind, lt, sp, l, b.assignTo(r, lt, assignPlain, -1))
	}
	rc := b.rvalue(r)
	rt := u.nodes[rc].typ
	ok := true
	switch kind {
	case BinaryAddAssign, BinarySubAssign:
		ok = u.isArithmetic(lt) && u.isArithmetic(rt) || u.kindOf(lt) == TypePointer && u.isInteger(rt)
	case BinaryMulAssign, BinaryDivAssign:
		ok = u.isArithmetic(lt) && u.isArithmetic(rt)
		b.checkDivision(kind, l, r)
	default:
		ok = u.isInteger(lt) && u.isInteger(rt)
		if kind == BinaryRemAssign {
			b.checkDivision(kind, l, r)
		}
	}
	if !ok {
		b.diags.error(catSemantic, opLoc, "invalid operands to binary expression ('%s' and '%s')", u.spelling(u.nodes[l].typ), u.spelling(rt))
		return b.operatorNode(CursorCompoundAssignOp, kind, invalidType, sp, l, rc)
	}
	if u.isArithmetic(lt) {
		rc = b.convert(rc, u.arithmeticResult(lt, rt))
	}
	return b.operatorNode(CursorCompoundAssignOp, kind, lt, sp, l, rc)
}

// unary builds a unary operator. op is the token; postfix marks x++ / x--.
func (b *builder) unary(op string, arg int32, sp span, postfix bool) int32 {
	u := b.u
	var kind UnaryOperatorKind
	switch op {
	case "++":
		kind = UnaryPreInc
		if postfix {
			kind = UnaryPostInc
		}
	case "--":
		kind = UnaryPreDec
		if postfix {
			kind = UnaryPostDec
		}
	case "&":
		kind = UnaryAddrOf
	case "*":
		kind = UnaryDeref
	case "+":
		kind = UnaryPlus
	case "-":
		kind = UnaryMinus
	case "~":
		kind = UnaryNot
	case "!":
		kind = UnaryLNot
	case "__extension__":
		kind = UnaryExtension
	}
	node := func(t typeID, child int32) int32 {
		id := b.exprNode(CursorUnaryOperator, "", t, sp, child)
		b.u.nodes[id].unOp = kind
		if postfix {
			b.u.nodes[id].flags |= flagPostfix
		}
		return id
	}
	if arg < 0 {
		return b.recovery("", sp)
	}
	if b.invalid(arg) {
		return node(invalidType, arg)
	}
	badArg := func(a int32) int32 {
		b.diags.error(catSemantic, sp.loc, "invalid argument type '%s' to unary expression", u.spelling(u.nodes[a].typ))
		return node(invalidType, a)
	}

	switch kind {
	case UnaryAddrOf:
		s := u.strip(arg)
		t := u.nodes[arg].typ
		switch {
		case s >= 0 && u.nodes[s].kind == CursorDeclRefExpr && u.nodes[s].ref >= 0 && u.nodes[u.nodes[s].ref].kind == CursorFunctionDecl:
		case !u.lvalue(arg):
			b.diags.error(catSemantic, sp.loc, "cannot take the address of an rvalue of type '%s'", u.spelling(t))
			return node(invalidType, arg)
		case s >= 0 && u.nodes[s].kind == CursorMemberRefExpr && u.nodes[s].ref >= 0 && u.nodes[u.nodes[s].ref].has(flagBitField):
			b.diags.error(catSemantic, sp.loc, "address of bit-field requested")
			return node(invalidType, arg)
		case s >= 0 && u.nodes[s].kind == CursorDeclRefExpr && u.nodes[s].ref >= 0 && u.nodes[u.nodes[s].ref].storage == StorageRegister:
			b.diags.error(catSemantic, sp.loc, "address of register variable requested")
			return node(invalidType, arg)
		}
		return node(u.pointerTo(t), arg)
	case UnaryDeref:
		a := b.rvalue(arg)
		t := u.nodes[a].typ
		if u.kindOf(t) != TypePointer {
			b.diags.error(catSemantic, sp.loc, "indirection requires pointer operand ('%s' invalid)", u.spelling(t)).
				addRange(u.nodes[arg].begin, u.nodes[arg].end)
			return node(invalidType, a)
		}
		p := u.pointee(t)
		if u.isVoid(p) {
			b.diags.warning("void-ptr-dereference", true, false, catSemantic, sp.loc, "ISO C does not allow indirection on operand of type '%s'", u.spelling(t))
		}
		return node(p, a)
	case UnaryPlus, UnaryMinus:
		a := b.rvalue(arg)
		if !u.isArithmetic(u.nodes[a].typ) {
			return badArg(a)
		}
		t := u.promote(u.nodes[a].typ)
		return node(t, b.convert(a, t))
	case UnaryNot:
		a := b.rvalue(arg)
		if !u.isInteger(u.nodes[a].typ) {
			return badArg(a)
		}
		t := u.promote(u.nodes[a].typ)
		return node(t, b.convert(a, t))
	case UnaryLNot:
		a := b.rvalue(arg)
		if !u.isScalar(u.nodes[a].typ) {
			return badArg(a)
		}
		return node(u.builtin(TypeInt), a)
	case UnaryPreInc, UnaryPostInc, UnaryPreDec, UnaryPostDec:
		t := u.nodes[arg].typ
		if !u.isScalar(t) {
			verb := "increment"
			if kind == UnaryPreDec || kind == UnaryPostDec {
				verb = "decrement"
			}
			b.diags.error(catSemantic, sp.loc, "cannot %s value of type '%s'", verb, u.spelling(t))
			return node(invalidType, arg)
		}
		b.markUsed(u.nodes[u.strip(arg)].ref)
		if !b.modifiable(arg, sp.loc) {
			return node(invalidType, arg)
		}
		return node(u.unqualified(t), arg)
	case UnaryExtension:
		return node(u.nodes[arg].typ, arg)
	}
	return badArg(arg)
}

// call builds a call expression, checking arguments against the callee's
// prototype.
func (b *builder) call(callee int32, args []int32, sp span, rparen srcPos) int32 {
	u := b.u
	if callee < 0 {
		return b.recovery("", sp, args...)
	}
	decl := int32(-1)
	if s := u.strip(callee); s >= 0 && u.nodes[s].kind == CursorDeclRefExpr && u.nodes[s].ref >= 0 &&
		u.nodes[u.nodes[s].ref].kind == CursorFunctionDecl {
		decl = u.nodes[s].ref
	}
	name := ""
	if decl >= 0 {
		name = u.nodes[decl].name
	}
	if b.invalid(callee) {
		for i := range args {
			args[i] = b.rvalue(args[i])
		}
		id := b.exprNode(CursorCallExpr, name, invalidType, sp, append([]int32{callee}, args...)...)
		u.nodes[id].ref = decl
		return id
	}
	c := b.rvalue(callee)
	ft := u.pointee(u.nodes[c].typ)
	if !u.isFunction(ft) {
		b.diags.error(catSemantic, u.nodes[callee].begin, "called object type '%s' is not a function or function pointer",
			u.spelling(u.nodes[callee].typ)).addRange(u.nodes[callee].begin, u.nodes[callee].end)
		for i := range args {
			args[i] = b.rvalue(args[i])
		}
		return b.recovery("", sp, append([]int32{c}, args...)...)
	}
	fi := u.ty(u.canonicalType(ft))
	result := u.unqualified(u.ty(u.desugar(ft)).elem)

	if fi.kind == TypeFunctionProto {
		want, have := len(fi.params), len(args)
		switch {
		case have < want:
			qual := ""
			if fi.variadic {
				qual = "at least "
			}
			e := b.diags.error(catSemantic, rparen, "too few arguments to function call, expected %s%d, have %d", qual, want, have)
			if decl >= 0 {
				b.diags.note(e, u.nodes[decl].loc, "'%s' declared here", name)
			}
		case have > want && !fi.variadic:
			e := b.diags.error(catSemantic, u.nodes[args[want]].begin, "too many arguments to function call, expected %d, have %d", want, have)
			e.addRange(u.nodes[args[want]].begin, u.nodes[args[have-1]].end)
			if decl >= 0 {
				b.diags.note(e, u.nodes[decl].loc, "'%s' declared here", name)
			}
		}
		params := b.paramDecls(decl)
		declared := u.ty(u.desugar(ft)).params
		for i := range args {
			if i < len(declared) {
				p := int32(-1)
				if i < len(params) {
					p = params[i]
				}
				args[i] = b.assignTo(args[i], declared[i], assignPass, p)
				continue
			}
			args[i] = b.promoteArg(args[i])
		}
	} else {
		for i := range args {
			args[i] = b.promoteArg(args[i])
		}
	}
	id := b.exprNode(CursorCallExpr, name, result, sp, append([]int32{c}, args...)...)
	u.nodes[id].ref = decl
	return id
}

// paramDecls returns the ParmDecls of the function declaration decl.
func (b *builder) paramDecls(decl int32) []int32 {
	if decl < 0 {
		return nil
	}
	var out []int32
	for _, ch := range b.u.nodes[decl].children {
		if b.u.nodes[ch].kind == CursorParmDecl {
			out = append(out, ch)
		}
	}
	return out
}

// member builds s.x and p->x.
func (b *builder) member(base int32, name string, arrow bool, sp span, opBegin, opEnd srcPos) int32 {
	u := b.u
	node := func(t typeID, field int32, child int32) int32 {
		id := b.exprNode(CursorMemberRefExpr, name, t, sp, child)
		n := &u.nodes[id]
		n.ref = field
		if arrow {
			n.flags |= flagArrow
		}
		return id
	}
	if base < 0 {
		return b.recovery(name, sp)
	}
	if b.invalid(base) {
		return node(invalidType, -1, base)
	}
	child := base
	bt := u.nodes[base].typ
	var rt typeID
	if arrow {
		child = b.rvalue(base)
		bt = u.nodes[child].typ
		switch {
		case u.kindOf(bt) == TypePointer:
			rt = u.pointee(bt)
		case u.isRecord(bt):
			b.diags.error(catSemantic, opBegin, "member reference type '%s' is not a pointer; did you mean to use '.'?", u.spelling(bt)).
				addFixit(opBegin, opEnd, ".")
			arrow, child, rt = false, base, u.nodes[base].typ
		default:
			b.diags.error(catSemantic, opBegin, "member reference type '%s' is not a pointer", u.spelling(bt))
			return node(invalidType, -1, child)
		}
	} else {
		rt = bt
		if u.kindOf(bt) == TypePointer && u.isRecord(u.pointee(bt)) {
			b.diags.error(catSemantic, opBegin, "member reference type '%s' is a pointer; did you mean to use '->'?", u.spelling(bt)).
				addFixit(opBegin, opEnd, "->")
			child, rt, arrow = b.rvalue(base), u.pointee(bt), true
		}
	}
	if !u.isRecord(rt) {
		b.diags.error(catSemantic, opBegin, "member reference base type '%s' is not a structure or union", u.spelling(rt)).
			addRange(u.nodes[base].begin, u.nodes[base].end)
		return node(invalidType, -1, child)
	}
	tag := u.tagDecl(rt)
	if !u.isComplete(rt) {
		e := b.diags.error(catSemantic, opBegin, "incomplete definition of type '%s'", u.spelling(rt))
		b.diags.note(e, u.nodes[tag].loc, "forward declaration of '%s'", u.spelling(u.unqualified(rt)))
		return node(invalidType, -1, child)
	}
	field := u.lookupField(tag, name)
	if field < 0 {
		b.diags.error(catSemantic, sp.loc, "no member named '%s' in '%s'", name, u.spelling(u.unqualified(rt))).
			addRange(u.nodes[base].begin, u.nodes[base].end)
		return node(invalidType, -1, child)
	}
	u.nodes[field].flags |= flagUsed
	t := u.qualified(u.nodes[field].typ, u.ty(u.canonicalType(rt)).quals)
	return node(t, field, child)
}

// subscript builds a[i] (or the equivalent i[a]).
func (b *builder) subscript(base, index int32, sp span) int32 {
	u := b.u
	if base < 0 || index < 0 {
		return b.recovery("", sp, base, index)
	}
	a, i := b.rvalue(base), b.rvalue(index)
	if b.invalid(a, i) {
		return b.exprNode(CursorArraySubscriptExpr, "", invalidType, sp, a, i)
	}
	at, it := u.nodes[a].typ, u.nodes[i].typ
	var t typeID
	switch {
	case u.kindOf(at) == TypePointer && u.isInteger(it):
		t = u.pointee(at)
	case u.kindOf(it) == TypePointer && u.isInteger(at):
		t = u.pointee(it)
	case u.kindOf(at) == TypePointer || u.kindOf(it) == TypePointer:
		b.diags.error(catSemantic, u.nodes[index].begin, "array subscript is not an integer")
	default:
		b.diags.error(catSemantic, u.nodes[base].begin, "subscripted value is not an array, pointer, or vector").
			addRange(u.nodes[base].begin, u.nodes[base].end)
	}
	return b.exprNode(CursorArraySubscriptExpr, "", t, sp, a, i)
}

// conditional builds c ? t : f. A negative t is the GNU "c ?: f" form.
func (b *builder) conditional(c, t, f int32, sp span, qLoc srcPos) int32 {
	u := b.u
	if c < 0 || f < 0 {
		return b.recovery("", sp, c, t, f)
	}
	if t < 0 {
		t = c
	}
	cc, tc, fc := b.rvalue(c), b.rvalue(t), b.rvalue(f)
	if b.invalid(cc, tc, fc) {
		return b.exprNode(CursorConditionalOp, "", invalidType, sp, cc, tc, fc)
	}
	if !u.isScalar(u.nodes[cc].typ) {
		b.diags.error(catSemantic, u.nodes[c].begin, "used type '%s' where arithmetic or pointer type is required", u.spelling(u.nodes[cc].typ))
	}
	tt, ft := u.nodes[tc].typ, u.nodes[fc].typ
	tp, fp := u.kindOf(tt) == TypePointer, u.kindOf(ft) == TypePointer
	var rt typeID
	switch {
	case u.isArithmetic(tt) && u.isArithmetic(ft):
		rt = u.arithmeticResult(tt, ft)
		tc, fc = b.convert(tc, rt), b.convert(fc, rt)
	case u.isVoid(tt) && u.isVoid(ft):
		rt = u.builtin(TypeVoid)
	case tp && fp:
		tq, fq := u.unqualified(u.canonicalType(u.pointee(tt))), u.unqualified(u.canonicalType(u.pointee(ft)))
		switch {
		case tq == fq:
			rt = tt
		case u.isVoid(tq):
			rt = tt
		case u.isVoid(fq):
			rt = ft
		default:
			b.diags.warning("pointer-type-mismatch", true, false, catSemantic, qLoc, "pointer type mismatch ('%s' and '%s')", u.spelling(tt), u.spelling(ft))
			rt = u.pointerTo(u.builtin(TypeVoid))
		}
	case tp && b.isNullConstant(f):
		rt = tt
	case fp && b.isNullConstant(t):
		rt = ft
	case tp && u.isInteger(ft), fp && u.isInteger(tt):
		b.diags.warning("conditional-type-mismatch", true, false, catSemantic, qLoc,
			"pointer/integer type mismatch in conditional expression ('%s' and '%s')", u.spelling(tt), u.spelling(ft))
		rt = tt
		if fp {
			rt = ft
		}
	case u.sameType(tt, ft, true):
		rt = u.unqualified(tt)
	default:
		b.diags.error(catSemantic, qLoc, "incompatible operand types ('%s' and '%s')", u.spelling(tt), u.spelling(ft))
	}
	return b.exprNode(CursorConditionalOp, "", rt, sp, cc, tc, fc)
}

// cast builds an explicit cast to t.
func (b *builder) cast(t typeID, ref int32, e int32, sp span) int32 {
	u := b.u
	if e < 0 {
		return b.recovery("", sp, ref)
	}
	if u.isVoid(t) {
		return b.exprNode(CursorCStyleCastExpr, "", t, sp, ref, e)
	}
	c := b.rvalue(e)
	if b.invalid(c) || t == invalidType {
		return b.exprNode(CursorCStyleCastExpr, "", u.unqualified(t), sp, ref, c)
	}
	switch {
	case !u.isScalar(t):
		if !(u.isRecord(t) && u.sameType(t, u.nodes[c].typ, true)) {
			b.diags.error(catSemantic, sp.begin, "used type '%s' where arithmetic or pointer type is required", u.spelling(t))
		}
	case !u.isScalar(u.nodes[c].typ):
		b.diags.error(catSemantic, u.nodes[e].begin, "operand of type '%s' where arithmetic or pointer type is required", u.spelling(u.nodes[c].typ))
	case u.kindOf(t) == TypePointer && u.isArithmetic(u.nodes[c].typ) && !u.isInteger(u.nodes[c].typ):
		b.diags.error(catSemantic, u.nodes[e].begin, "operand of type '%s' cannot be cast to a pointer type", u.spelling(u.nodes[c].typ))
	}
	return b.exprNode(CursorCStyleCastExpr, "", u.unqualified(t), sp, ref, c)
}

// sizeofExpr builds sizeof and _Alignof over a type or an unevaluated
// operand.
func (b *builder) sizeofExpr(align bool, t typeID, arg, ref int32, sp span) int32 {
	u := b.u
	op := "sizeof"
	if align {
		op = "alignof"
	}
	if arg >= 0 {
		t = u.nodes[arg].typ
	}
	id := b.exprNode(CursorUnaryExpr, "", b.sizeType(), sp, ref, arg)
	if t == invalidType {
		return id
	}
	n := &u.nodes[id]
	switch {
	case u.isFunction(t):
		b.diags.warning("pointer-arith", true, false, catSemantic, sp.begin, "invalid application of '%s' to a function type", op)
		n.intVal = 1
	case u.isVoid(t):
		b.diags.warning("pointer-arith", true, false, catSemantic, sp.begin, "invalid application of '%s' to a void type", op)
		n.intVal = 1
	case u.kindOf(t) == TypeVariableArray && !align:
		return id
	case !u.isComplete(t):
		b.diags.error(catSemantic, sp.begin, "invalid application of '%s' to an incomplete type '%s'", op, u.spelling(t))
		n.typ = invalidType
		return id
	default:
		if s := u.strip(arg); s >= 0 && u.nodes[s].kind == CursorMemberRefExpr && u.nodes[s].ref >= 0 && u.nodes[u.nodes[s].ref].has(flagBitField) {
			b.diags.error(catSemantic, sp.begin, "invalid application of '%s' to bit-field", op)
			return id
		}
		size, al, _ := u.layoutOf(t)
		n.intVal = size / 8
		if align {
			n.intVal = al / 8
		}
	}
	n.flags |= flagHasValue
	return id
}

// intLiteral types an integer constant the way C's literal rules do.
func (b *builder) intLiteral(text string, sp span) int32 {
	u := b.u
	lit, ok := parseIntLiteral(text)
	if !ok {
		b.badNumber(text, sp)
		return b.recovery("", sp)
	}
	fits := func(k TypeKind) bool {
		bits := u.sizeBits(k)
		if u.isUnsigned(u.builtin(k)) {
			return bits >= 64 || lit.value < 1<<uint(bits)
		}
		return lit.value < 1<<uint(bits-1)
	}
	var cands []TypeKind
	switch {
	case lit.longs == 0 && !lit.unsigned && lit.decimal:
		cands = []TypeKind{TypeInt, TypeLong, TypeLongLong}
	case lit.longs == 0 && !lit.unsigned:
		cands = []TypeKind{TypeInt, TypeUInt, TypeLong, TypeULong, TypeLongLong, TypeULongLong}
	case lit.longs == 0:
		cands = []TypeKind{TypeUInt, TypeULong, TypeULongLong}
	case lit.longs == 1 && !lit.unsigned && lit.decimal:
		cands = []TypeKind{TypeLong, TypeLongLong}
	case lit.longs == 1 && !lit.unsigned:
		cands = []TypeKind{TypeLong, TypeULong, TypeLongLong, TypeULongLong}
	case lit.longs == 1:
		cands = []TypeKind{TypeULong, TypeULongLong}
	case !lit.unsigned && lit.decimal:
		cands = []TypeKind{TypeLongLong}
	case !lit.unsigned:
		cands = []TypeKind{TypeLongLong, TypeULongLong}
	default:
		cands = []TypeKind{TypeULongLong}
	}
	kind := TypeKind(-1)
	for _, k := range cands {
		if fits(k) {
			kind = k
			break
		}
	}
	if kind < 0 {
		kind = TypeULongLong
		b.diags.warning("implicitly-unsigned-literal", true, false, catSemantic, sp.loc,
			"integer literal is too large to be represented in a signed integer type, interpreting as unsigned")
	}
	id := b.exprNode(CursorIntegerLiteral, "", u.builtin(kind), sp)
	n := &u.nodes[id]
	n.intVal = int64(lit.value)
	n.flags |= flagHasValue
	if u.isUnsigned(n.typ) {
		n.flags |= flagUnsigned
	}
	return id
}

// badNumber diagnoses a malformed numeric literal.
func (b *builder) badNumber(text string, sp span) {
	body := strings.ToLower(text)
	hex := strings.HasPrefix(body, "0x")
	start := 0
	if hex || strings.HasPrefix(body, "0b") {
		start = 2
	}
	i := start
	for i < len(body) && (isDigit(body[i]) || hex && strings.IndexByte("abcdef", body[i]) >= 0 || body[i] == '\'') {
		i++
	}
	if !hex && start == 0 && len(body) > 1 && body[0] == '0' {
		for j := 1; j < i; j++ {
			if body[j] == '8' || body[j] == '9' {
				b.diags.error(catLexical, srcPos{sp.spell.buf, sp.spell.off + uint32(j)}, "invalid digit '%c' in octal constant", body[j])
				return
			}
		}
	}
	if i < len(text) {
		b.diags.error(catLexical, srcPos{sp.spell.buf, sp.spell.off + uint32(i)}, "invalid suffix '%s' on integer constant", text[i:])
		return
	}
	b.diags.error(catLexical, sp.loc, "integer literal is too large to be represented in any integer type")
}

func (b *builder) numberLiteral(text string, sp span) int32 {
	if !isFloatLiteral(text) {
		return b.intLiteral(text, sp)
	}
	v, kind, ok := parseFloatLiteral(text)
	if !ok {
		i := len(text)
		for i > 0 && strings.IndexByte("fFlLdD", text[i-1]) >= 0 {
			i--
		}
		b.diags.error(catLexical, sp.loc, "invalid suffix '%s' on floating constant", text[i:])
		return b.recovery("", sp)
	}
	id := b.exprNode(CursorFloatingLiteral, "", b.u.builtin(kind), sp)
	b.u.nodes[id].fltVal = v
	return id
}

// signedNumber lowers a number token that carries its own sign as a unary
// operator over the unsigned literal.
func (b *builder) signedNumber(text string, sp span) int32 {
	if len(text) < 2 || (text[0] != '-' && text[0] != '+') {
		return b.numberLiteral(text, sp)
	}
	lit := sp
	lit.begin.off++
	lit.loc, lit.spell = lit.begin, lit.begin
	return b.unary(text[:1], b.numberLiteral(strings.TrimLeft(text[1:], " \t"), lit), sp, false)
}

// charLiteral types a character constant by its encoding prefix.
func (b *builder) charLiteral(text string, sp span) int32 {
	u := b.u
	v, ok := parseCharLiteral(text)
	if !ok {
		b.diags.error(catLexical, sp.loc, "empty character constant")
		return b.recovery("", sp)
	}
	t := u.builtin(TypeInt)
	switch {
	case strings.HasPrefix(text, "u8"):
		t = u.builtin(TypeUChar)
		v &= 0xff
	case strings.HasPrefix(text, "u"):
		t = u.builtin(TypeUShort)
	case strings.HasPrefix(text, "U"):
		t = u.builtin(TypeUInt)
	case strings.HasPrefix(text, "L"):
		t = u.builtin(TypeInt)
	default:
		if body, _ := unescape(literalBody(text)); len(body) > 1 {
			b.diags.warning("multichar", true, false, catLexical, sp.loc, "multi-character character constant")
		}
	}
	id := b.exprNode(CursorCharacterLiteral, "", t, sp)
	n := &u.nodes[id]
	n.intVal = v
	n.flags |= flagHasValue
	return id
}

// stringLiteral concatenates adjacent string literal tokens.
func (b *builder) stringLiteral(parts []string, sp span) int32 {
	u := b.u
	var sb strings.Builder
	prefix := ""
	for _, p := range parts {
		if i := strings.IndexByte(p, '"'); i > 0 && prefix == "" {
			prefix = p[:i]
		}
		s, ok := unescape(literalBody(p))
		if !ok {
			b.diags.error(catLexical, sp.loc, "invalid escape sequence in string literal")
		}
		sb.WriteString(s)
	}
	value := sb.String()
	elem, count := u.builtin(b.charKind()), int64(len(value)+1)
	switch prefix {
	case "L":
		elem, count = u.builtin(TypeInt), int64(utf8.RuneCountInString(value)+1)
	case "u":
		elem, count = u.builtin(TypeUShort), int64(len(utf16Units(value))+1)
	case "U":
		elem, count = u.builtin(TypeUInt), int64(utf8.RuneCountInString(value)+1)
	}
	id := b.exprNode(CursorStringLiteral, strings.Join(parts, " "), u.arrayOf(elem, count), sp)
	u.nodes[id].strVal = value
	return id
}

func utf16Units(s string) []rune {
	var out []rune
	for _, r := range s {
		if r >= 0x10000 {
			out = append(out, r, r)
			continue
		}
		out = append(out, r)
	}
	return out
}

func (b *builder) boolLiteral(v bool, sp span) int32 {
	id := b.exprNode(CursorBoolLiteralExpr, "", b.u.builtin(TypeBool), sp)
	if v {
		b.u.nodes[id].intVal = 1
	}
	b.u.nodes[id].flags |= flagHasValue
	return id
}

// isMacroUse reports whether n must be lowered through the preprocessor:
// an object-like macro name, or a call whose callee names a macro.
func (b *builder) isMacroUse(n *syntax.Node) bool {
	switch n.Kind {
	case "identifier", "true", "false", "null":
		m := b.macros[b.src(n)]
		return m != nil && !m.fnLike
	case "call_expression":
		fn := n.ChildByField("function")
		return fn != nil && fn.Kind == "identifier" && b.macros[b.src(fn)] != nil
	case "concatenated_string":
		for _, ch := range n.Children {
			if ch.Kind == "identifier" {
				return true
			}
		}
	}
	return false
}

// expr lowers a tree-sitter expression.
func (b *builder) expr(n *syntax.Node) int32 {
	if n == nil || n.Missing || n.Kind == "ERROR" {
		return -1
	}
	if b.isMacroUse(n) {
		return b.macroExpr(n)
	}
	u := b.u
	sp := b.spanOf(n)
	field := func(name string) *syntax.Node { return n.ChildByField(name) }
	opOf := func() (string, srcPos, srcPos) {
		if op := field("operator"); op != nil {
			return b.src(op), b.pos(op), b.endPos(op)
		}
		return "", sp.loc, sp.loc
	}

	switch n.Kind {
	case "identifier":
		return b.identifier(b.src(n), sp, false)
	case "number_literal":
		return b.signedNumber(b.src(n), sp)
	case "char_literal":
		return b.charLiteral(b.src(n), sp)
	case "string_literal":
		return b.stringLiteral([]string{b.src(n)}, sp)
	case "concatenated_string":
		var parts []string
		for _, ch := range n.NamedChildren() {
			if ch.Kind == "string_literal" {
				parts = append(parts, b.src(ch))
			}
		}
		return b.stringLiteral(parts, sp)
	case "true", "false":
		if u.c23 {
			return b.boolLiteral(n.Kind == "true", sp)
		}
		return b.identifier(b.src(n), sp, false)
	case "null":
		if b.src(n) == "nullptr" && u.c23 {
			return b.exprNode(CursorUnexposedExpr, "nullptr", u.builtin(TypeNullPtr), sp)
		}
		return b.identifier(b.src(n), sp, false)
	case "parenthesized_expression":
		inner := n.FirstNamedChild()
		if inner != nil && inner.Kind == "compound_statement" {
			return b.statementExpr(inner, sp)
		}
		e := b.expr(inner)
		if e < 0 {
			return -1
		}
		return b.exprNode(CursorParenExpr, u.nodes[e].name, u.nodes[e].typ, sp, e)
	case "binary_expression", "assignment_expression":
		op, opLoc, _ := opOf()
		return b.binary(op, b.expr(field("left")), b.expr(field("right")), sp, opLoc)
	case "comma_expression":
		return b.binary(",", b.expr(field("left")), b.expr(field("right")), sp, sp.loc)
	case "unary_expression", "pointer_expression":
		op, _, _ := opOf()
		return b.unary(op, b.expr(field("argument")), sp, false)
	case "update_expression":
		op, opLoc, _ := opOf()
		return b.unary(op, b.expr(field("argument")), sp, opLoc.off > sp.begin.off)
	case "conditional_expression":
		qLoc := sp.loc
		if q := n.ChildOfKind("?"); q != nil {
			qLoc = b.pos(q)
		}
		t := int32(-1)
		if c := field("consequence"); c != nil {
			if t = b.expr(c); t < 0 {
				return -1
			}
		}
		return b.conditional(b.expr(field("condition")), t, b.expr(field("alternative")), sp, qLoc)
	case "cast_expression":
		td := field("type")
		if td == nil {
			return -1
		}
		t, ds := b.typeName(td)
		return b.cast(t, b.typeRef(ds), b.expr(field("value")), sp)
	case "sizeof_expression", "alignof_expression":
		align := n.Kind == "alignof_expression"
		if td := field("type"); td != nil {
			t, ds := b.typeName(td)
			return b.sizeofExpr(align, t, -1, b.typeRef(ds), sp)
		}
		v := field("value")
		if v == nil {
			v = n.FirstNamedChild()
		}
		if t, ds, ok := b.parenthesizedTypeName(v); ok {
			return b.sizeofExpr(align, t, -1, b.typeRef(ds), sp)
		}
		return b.sizeofExpr(align, invalidType, b.expr(v), -1, sp)
	case "offsetof_expression":
		return b.offsetof(field("type"), field("member"), sp)
	case "call_expression":
		return b.callExpr(n, sp)
	case "field_expression":
		op, opBegin, opEnd := opOf()
		f := field("field")
		if f == nil || f.Missing {
			return b.expr(field("argument"))
		}
		fsp := sp
		fsp.loc, fsp.spell = b.pos(f), b.pos(f)
		return b.member(b.expr(field("argument")), b.src(f), op == "->", fsp, opBegin, opEnd)
	case "subscript_expression":
		idx := field("index")
		if idx == nil {
			if named := n.NamedChildren(); len(named) > 1 {
				idx = named[1]
			}
		}
		return b.subscript(b.expr(field("argument")), b.expr(idx), sp)
	case "compound_literal_expression":
		td := field("type")
		if td == nil {
			return -1
		}
		t, ds := b.typeName(td)
		init, t := b.initList(field("value"), t)
		return b.exprNode(CursorCompoundLiteral, "", t, sp, b.typeRef(ds), init)
	case "initializer_list":
		init, _ := b.initList(n, invalidType)
		return init
	case "generic_expression":
		return b.genericSelection(n, sp)
	case "gnu_asm_expression":
		return b.exprNode(CursorUnexposedExpr, "", u.builtin(TypeVoid), sp)
	case "extension_expression":
		return b.unary("__extension__", b.expr(n.FirstNamedChild()), sp, false)
	case "comment":
		return -1
	}
	var children []int32
	for _, ch := range n.NamedChildren() {
		children = append(children, b.expr(ch))
	}
	return b.recovery("", sp, children...)
}

// parenthesizedTypeName recognises "sizeof (T)" parsed as an expression
// because T is a typedef name.
func (b *builder) parenthesizedTypeName(v *syntax.Node) (typeID, *declSpec, bool) {
	if v == nil || v.Kind != "parenthesized_expression" {
		return invalidType, nil, false
	}
	inner := v.FirstNamedChild()
	if inner == nil || inner.Kind != "identifier" {
		return invalidType, nil, false
	}
	d := b.sc.lookup(b.src(inner))
	if d < 0 || b.u.nodes[d].kind != CursorTypedefDecl {
		return invalidType, nil, false
	}
	ds := &declSpec{tag: -1, ref: -1, begin: b.pos(inner), storage: StorageNone}
	b.namedType(ds, inner, b.src(inner))
	return ds.typ, ds, true
}

func (b *builder) callExpr(n *syntax.Node, sp span) int32 {
	fn := n.ChildByField("function")
	var callee int32
	if fn != nil && fn.Kind == "identifier" {
		callee = b.identifier(b.src(fn), b.spanOf(fn), true)
	} else {
		callee = b.expr(fn)
	}
	var args []int32
	rparen := sp.end
	if al := n.ChildByField("arguments"); al != nil {
		rparen = srcPos{b.buf, al.EndByte - 1}
		for _, a := range al.NamedChildren() {
			if a.Kind == "comment" {
				continue
			}
			if e := b.expr(a); e >= 0 {
				args = append(args, e)
			}
		}
	}
	return b.call(callee, args, sp, rparen)
}

func (b *builder) statementExpr(body *syntax.Node, sp span) int32 {
	u := b.u
	if b.fn == nil {
		b.diags.error(catSemantic, sp.loc, "statement expression not allowed at file scope")
		return b.recovery("", sp)
	}
	stmt := b.compound(body, false)
	t := u.builtin(TypeVoid)
	if ch := u.nodes[stmt].children; len(ch) > 0 {
		last := ch[len(ch)-1]
		if k := u.nodes[last].kind; k >= CursorUnexposedExpr && k < CursorUnexposedStmt {
			t = u.unqualified(u.nodes[last].typ)
		}
	}
	return b.exprNode(CursorStmtExpr, "", t, sp, stmt)
}

func (b *builder) offsetof(td, member *syntax.Node, sp span) int32 {
	u := b.u
	if td == nil || member == nil {
		return b.recovery("", sp)
	}
	t, ds := b.typeName(td)
	id := b.exprNode(CursorUnexposedExpr, "", b.sizeType(), sp, b.typeRef(ds))
	if !u.isRecord(t) {
		b.diags.error(catSemantic, b.pos(td), "offsetof requires struct, union, or class type, '%s' invalid", u.spelling(t))
		return id
	}
	var total int64
	rec := u.tagDecl(t)
	for _, name := range strings.Split(b.src(member), ".") {
		name = strings.TrimSpace(name)
		l, code := u.recordLayout(rec)
		f := u.lookupField(rec, name)
		if code != 0 || f < 0 {
			b.diags.error(catSemantic, b.pos(member), "no member named '%s' in '%s'", name, u.spelling(u.nodes[rec].typ))
			return id
		}
		total += l.offsets[f]
		rec = u.tagDecl(u.nodes[f].typ)
	}
	n := &u.nodes[id]
	n.intVal = total / 8
	n.flags |= flagHasValue
	return id
}

func (b *builder) genericSelection(n *syntax.Node, sp span) int32 {
	u := b.u
	var control int32 = -1
	var assocs []int32
	selected, fallback := -1, -1
	var pending *syntax.Node
	isDefault := false
	for _, ch := range n.Children {
		switch {
		case !ch.Named && ch.Kind == "default":
			isDefault = true
		case ch.Kind == "type_descriptor":
			pending = ch
		case ch.Named && ch.Kind != "comment":
			e := b.expr(ch)
			if control < 0 && pending == nil && !isDefault {
				control = e
				continue
			}
			assocs = append(assocs, e)
			ct := b.typeOf(b.rvalue(control))
			switch {
			case isDefault:
				fallback = len(assocs) - 1
			case pending != nil:
				t, _ := b.typeName(pending)
				if selected < 0 && u.sameType(t, ct, false) {
					selected = len(assocs) - 1
				}
			}
			pending, isDefault = nil, false
		}
	}
	if selected < 0 {
		selected = fallback
	}
	if selected < 0 {
		if !b.invalid(control) {
			b.diags.error(catSemantic, u.nodes[control].begin, "controlling expression type '%s' not compatible with any generic association type",
				u.spelling(u.unqualified(b.typeOf(control))))
		}
		return b.recovery("", sp, append([]int32{control}, assocs...)...)
	}
	id := b.exprNode(CursorGenericSelection, "", b.typeOf(assocs[selected]), sp, append([]int32{control}, assocs...)...)
	u.nodes[id].intVal = int64(selected + 1)
	return id
}

// initializer lowers the initializer of an object of type t and returns
// the (possibly completed) object type.
func (b *builder) initializer(n *syntax.Node, t typeID) (int32, typeID) {
	u := b.u
	if n.Kind == "initializer_list" {
		return b.initList(n, t)
	}
	e := b.expr(n)
	if e < 0 {
		return e, t
	}
	if u.isArray(t) {
		s := u.strip(e)
		if s >= 0 && u.nodes[s].kind == CursorStringLiteral && u.isInteger(u.ty(u.desugar(t)).elem) {
			lit := u.ty(u.desugar(u.nodes[s].typ)).count
			at := u.ty(u.desugar(t))
			switch {
			case at.kind == TypeIncompleteArray:
				t = u.arrayOf(at.elem, lit)
			case at.kind == TypeConstantArray && lit-1 > at.count:
				b.diags.warning("excess-initializers", true, false, catSemantic, u.nodes[e].begin, "initializer-string for char array is too long")
			}
			return e, t
		}
		if !b.invalid(e) {
			b.diags.error(catSemantic, u.nodes[e].begin, "array initializer must be an initializer list")
		}
		return e, t
	}
	return b.assignTo(e, t, assignInit, -1), t
}

// initList lowers a braced initializer for an object of type t.
func (b *builder) initList(n *syntax.Node, t typeID) (int32, typeID) {
	u := b.u
	if n == nil {
		return -1, t
	}
	id := b.exprNode(CursorInitListExpr, "", t, b.spanOf(n))
	var items []*syntax.Node
	for _, ch := range n.NamedChildren() {
		if ch.Kind != "comment" {
			items = append(items, ch)
		}
	}
	if len(items) == 0 && !u.c23 {
		b.diags.warning("c23-extensions", false, false, catSemantic, b.pos(n), "use of an empty initializer is a C23 extension")
	}
	add := func(e int32) { u.addChild(id, e) }

	switch {
	case u.isArray(t):
		at := u.ty(u.desugar(t))
		elem := at.elem
		var idx, max int64
		excess := false
		for _, it := range items {
			value := it
			if it.Kind == "initializer_pair" {
				value = it.ChildByField("value")
				for _, d := range it.ChildrenByField("designator") {
					if d.Kind == "subscript_designator" {
						if v, ok := b.constInt(b.expr(d.FirstNamedChild())); ok {
							idx = v
						}
						break
					}
				}
			}
			if at.kind == TypeConstantArray && idx >= at.count && !excess {
				b.diags.warning("excess-initializers", true, false, catSemantic, b.pos(it), "excess elements in array initializer")
				excess = true
			}
			e, _ := b.element(value, elem)
			add(e)
			idx++
			if idx > max {
				max = idx
			}
		}
		if at.kind == TypeIncompleteArray {
			t = u.arrayOf(elem, max)
		}
	case u.isRecord(t):
		rec := u.tagDecl(t)
		var fields []int32
		if def := u.definition(rec); def >= 0 {
			for _, ch := range u.nodes[def].children {
				m := &u.nodes[ch]
				if m.kind == CursorFieldDecl && (m.name != "" || !m.has(flagBitField)) || m.has(flagAnonMember) {
					fields = append(fields, ch)
				}
			}
		}
		union := u.kindOf(t) == TypeRecord && rec >= 0 && u.nodes[rec].kind == CursorUnionDecl
		pos := 0
		excess := false
		for _, it := range items {
			value := it
			var designated int32 = -1
			if it.Kind == "initializer_pair" {
				value = it.ChildByField("value")
				if d := it.ChildByField("designator"); d != nil && d.Kind == "field_designator" {
					fname := strings.TrimPrefix(strings.TrimSpace(b.src(d)), ".")
					f := u.lookupField(rec, fname)
					if f < 0 {
						b.diags.error(catSemantic, b.pos(d), "field designator '%s' does not refer to any field in type '%s'", fname, u.spelling(t))
					} else {
						ref := u.newNode(CursorMemberRef, fname, b.pos(d), b.pos(d), b.endPos(d))
						u.nodes[ref].ref = f
						designated = ref
						for i, fd := range fields {
							if fd == f {
								pos = i
							}
						}
						e, _ := b.element(value, u.nodes[f].typ)
						wrap := b.exprNode(CursorUnexposedExpr, "", u.nodes[f].typ, b.spanOf(it), designated, e)
						add(wrap)
						pos++
						continue
					}
				}
			}
			if pos >= len(fields) || union && pos >= 1 {
				if !excess && len(fields) > 0 {
					what := "struct"
					if union {
						what = "union"
					}
					b.diags.warning("excess-initializers", true, false, catSemantic, b.pos(it), "excess elements in %s initializer", what)
					excess = true
				}
				e, _ := b.element(value, invalidType)
				add(e)
				continue
			}
			e, _ := b.element(value, u.nodes[fields[pos]].typ)
			add(e)
			pos++
		}
	default:
		for i, it := range items {
			if i == 1 && t != invalidType {
				b.diags.warning("excess-initializers", true, false, catSemantic, b.pos(it), "excess elements in scalar initializer")
			}
			target := t
			if i > 0 {
				target = invalidType
			}
			e, _ := b.element(it, target)
			add(e)
		}
	}
	u.nodes[id].typ = t
	return id, t
}

// element lowers one initializer element; aggregate elements without
// braces are lowered without conversion.
func (b *builder) element(n *syntax.Node, t typeID) (int32, typeID) {
	u := b.u
	if n == nil {
		return -1, t
	}
	if n.Kind == "initializer_list" {
		return b.initList(n, t)
	}
	if t == invalidType {
		return b.rvalue(b.expr(n)), t
	}
	if u.isArray(t) || u.isRecord(t) {
		e := b.expr(n)
		if u.isRecord(t) && u.sameType(b.typeOf(e), t, true) {
			return b.rvalue(e), t
		}
		if u.isArray(t) {
			if s := u.strip(e); s >= 0 && u.nodes[s].kind == CursorStringLiteral {
				return e, t
			}
		}
		return b.rvalue(e), t
	}
	return b.initializer(n, t)
}
