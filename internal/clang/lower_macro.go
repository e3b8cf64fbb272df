package clang

import (
	"strings"

	"github.com/mvp-joe/cxgraph/internal/syntax"
)

// tokParser parses expressions and type names from macro-expanded tokens.
// Every cursor it builds is located at the expansion range; tokens that
// come from a macro body keep their own spelling location.
type tokParser struct {
	b          *builder
	toks       []lexToken
	i          int
	begin, end srcPos
}

func (b *builder) tokenParser(toks []lexToken, begin, end srcPos) *tokParser {
	return &tokParser{b: b, toks: toks, begin: begin, end: end}
}

// macroExpr lowers an expression whose tokens involve a macro use.
func (b *builder) macroExpr(n *syntax.Node) int32 {
	toks := b.expand(b.lexHere(n.StartByte, n.EndByte), nil, true, 0)
	p := b.tokenParser(toks, b.pos(n), b.endPos(n))
	e := p.expr()
	if e < 0 || !p.done() {
		if e < 0 {
			b.diags.error(catParse, b.pos(n), "expected expression")
		}
		return b.recovery("", b.spanOf(n), e)
	}
	return e
}

func (p *tokParser) done() bool { return p.i >= len(p.toks) }

func (p *tokParser) peek() string {
	if p.i < len(p.toks) {
		return p.toks[p.i].text
	}
	return ""
}

func (p *tokParser) peekAt(k int) string {
	if p.i+k < len(p.toks) {
		return p.toks[p.i+k].text
	}
	return ""
}

func (p *tokParser) accept(s string) bool {
	if p.peek() == s {
		p.i++
		return true
	}
	return false
}

// spanAt places a cursor for toks[i]. Tokens spelled inside the expansion
// range (macro arguments) keep their real position.
func (p *tokParser) spanAt(i int) span {
	sp := span{loc: p.begin, begin: p.begin, end: p.end, spell: p.begin}
	if i < 0 || i >= len(p.toks) {
		return sp
	}
	t := p.toks[i]
	if t.origin == 0 {
		return sp
	}
	real := srcPos{t.origin - 1, t.off}
	if real.buf == p.begin.buf && t.off >= p.begin.off && t.end <= p.end.off {
		return span{loc: real, begin: real, end: srcPos{real.buf, t.end}, spell: real}
	}
	sp.spell = real
	return sp
}

// between covers toks[from] through toks[to-1].
func (p *tokParser) between(from, to int) span {
	a, z := p.spanAt(from), p.spanAt(to-1)
	if a.begin == p.begin || z.end == p.end {
		return span{loc: a.loc, begin: p.begin, end: p.end, spell: a.spell}
	}
	return span{loc: a.loc, begin: a.begin, end: z.end, spell: a.spell}
}

var binaryPrecedence = map[string]int{
	"*": 10, "/": 10, "%": 10,
	"+": 9, "-": 9,
	"<<": 8, ">>": 8,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"==": 6, "!=": 6,
	"&": 5, "^": 4, "|": 3, "&&": 2, "||": 1,
}

var assignOps = map[string]bool{
	"=": true, "*=": true, "/=": true, "%=": true, "+=": true, "-=": true,
	"<<=": true, ">>=": true, "&=": true, "^=": true, "|=": true,
}

// expr parses a full expression including the comma operator.
func (p *tokParser) expr() int32 {
	start := p.i
	e := p.assignment()
	for e >= 0 && p.peek() == "," {
		opLoc := p.spanAt(p.i).loc
		p.i++
		r := p.assignment()
		e = p.b.binary(",", e, r, p.between(start, p.i), opLoc)
	}
	return e
}

func (p *tokParser) assignment() int32 {
	start := p.i
	l := p.conditional()
	if l < 0 {
		return l
	}
	if op := p.peek(); assignOps[op] {
		opLoc := p.spanAt(p.i).loc
		p.i++
		r := p.assignment()
		return p.b.binary(op, l, r, p.between(start, p.i), opLoc)
	}
	return l
}

func (p *tokParser) conditional() int32 {
	start := p.i
	c := p.binary(1)
	if c < 0 || p.peek() != "?" {
		return c
	}
	qLoc := p.spanAt(p.i).loc
	p.i++
	t := int32(-1)
	if p.peek() != ":" {
		t = p.expr()
	}
	if !p.accept(":") {
		return -1
	}
	f := p.conditional()
	return p.b.conditional(c, t, f, p.between(start, p.i), qLoc)
}

func (p *tokParser) binary(minPrec int) int32 {
	start := p.i
	l := p.unary()
	for l >= 0 {
		op := p.peek()
		prec, ok := binaryPrecedence[op]
		if !ok || prec < minPrec {
			return l
		}
		opLoc := p.spanAt(p.i).loc
		p.i++
		r := p.binary(prec + 1)
		l = p.b.binary(op, l, r, p.between(start, p.i), opLoc)
	}
	return l
}

func (p *tokParser) unary() int32 {
	start := p.i
	switch op := p.peek(); op {
	case "++", "--", "&", "*", "+", "-", "~", "!":
		p.i++
		arg := p.castExpr()
		return p.b.unary(op, arg, p.between(start, p.i), false)
	case "__extension__":
		p.i++
		return p.b.unary(op, p.castExpr(), p.between(start, p.i), false)
	case "sizeof", "_Alignof", "alignof", "__alignof__":
		p.i++
		align := op != "sizeof"
		if p.peek() == "(" && p.startsTypeName(1) {
			p.i++
			t, ok := p.typeName()
			if !ok || !p.accept(")") {
				return -1
			}
			return p.b.sizeofExpr(align, t, -1, -1, p.between(start, p.i))
		}
		arg := p.unary()
		return p.b.sizeofExpr(align, invalidType, arg, -1, p.between(start, p.i))
	}
	return p.castExpr()
}

// castExpr parses "(T) expr" and compound literals before falling back
// to postfix expressions.
func (p *tokParser) castExpr() int32 {
	start := p.i
	if p.peek() == "(" && p.startsTypeName(1) {
		p.i++
		t, ok := p.typeName()
		if !ok || !p.accept(")") {
			return -1
		}
		if p.peek() == "{" {
			init := p.braceList(t)
			return p.b.exprNode(CursorCompoundLiteral, "", p.b.typeOf(init), p.between(start, p.i), init)
		}
		return p.b.cast(t, -1, p.castExpr(), p.between(start, p.i))
	}
	switch p.peek() {
	case "++", "--", "&", "*", "+", "-", "~", "!", "sizeof", "_Alignof", "alignof", "__alignof__", "__extension__":
		return p.unary()
	}
	return p.postfix()
}

// braceList parses a flat braced initializer.
func (p *tokParser) braceList(t typeID) int32 {
	b, u := p.b, p.b.u
	start := p.i
	p.i++
	var items []int32
	for !p.done() && p.peek() != "}" {
		if e := p.assignment(); e >= 0 {
			items = append(items, e)
		}
		if !p.accept(",") {
			break
		}
	}
	p.accept("}")
	if at := u.ty(u.desugar(t)); at.kind == TypeIncompleteArray {
		t = u.arrayOf(at.elem, int64(len(items)))
	}
	elem := invalidType
	if u.isArray(t) {
		elem = u.ty(u.desugar(t)).elem
	} else if !u.isRecord(t) {
		elem = t
	}
	id := b.exprNode(CursorInitListExpr, "", t, p.between(start, p.i))
	for _, e := range items {
		if elem != invalidType {
			e = b.assignTo(e, elem, assignInit, -1)
		}
		u.addChild(id, e)
	}
	return id
}

func (p *tokParser) postfix() int32 {
	start := p.i
	e := p.primary()
	for e >= 0 {
		switch op := p.peek(); op {
		case "(":
			p.i++
			var args []int32
			for !p.done() && p.peek() != ")" {
				a := p.assignment()
				if a < 0 {
					return -1
				}
				args = append(args, a)
				if !p.accept(",") {
					break
				}
			}
			rparen := p.spanAt(p.i).loc
			if !p.accept(")") {
				return -1
			}
			e = p.b.call(e, args, p.between(start, p.i), rparen)
		case "[":
			p.i++
			idx := p.expr()
			if !p.accept("]") {
				return -1
			}
			e = p.b.subscript(e, idx, p.between(start, p.i))
		case ".", "->":
			opSp := p.spanAt(p.i)
			p.i++
			if p.done() || p.toks[p.i].kind != TokenIdentifier {
				return -1
			}
			name := p.toks[p.i].text
			sp := p.between(start, p.i+1)
			fsp := p.spanAt(p.i)
			sp.loc, sp.spell = fsp.loc, fsp.spell
			p.i++
			e = p.b.member(e, name, op == "->", sp, opSp.loc, opSp.end)
		case "++", "--":
			p.i++
			e = p.b.unary(op, e, p.between(start, p.i), true)
		default:
			return e
		}
	}
	return e
}

func (p *tokParser) primary() int32 {
	b := p.b
	if p.done() {
		return -1
	}
	start := p.i
	t := p.toks[p.i]
	sp := p.spanAt(p.i)
	switch t.kind {
	case TokenLiteral:
		switch {
		case strings.HasSuffix(t.text, "\"") && !strings.HasSuffix(t.text, "'"):
			parts := []string{t.text}
			p.i++
			for !p.done() && p.toks[p.i].kind == TokenLiteral && strings.HasSuffix(p.peek(), "\"") {
				parts = append(parts, p.peek())
				p.i++
			}
			return b.stringLiteral(parts, p.between(start, p.i))
		case strings.HasSuffix(t.text, "'"):
			p.i++
			return b.charLiteral(t.text, sp)
		}
		p.i++
		return b.signedNumber(t.text, sp)
	case TokenIdentifier:
		p.i++
		return b.identifier(t.text, sp, p.peek() == "(")
	case TokenKeyword:
		switch t.text {
		case "true", "false":
			p.i++
			return b.boolLiteral(t.text == "true", sp)
		case "nullptr":
			p.i++
			return b.exprNode(CursorUnexposedExpr, "nullptr", b.u.builtin(TypeNullPtr), sp)
		case "__builtin_offsetof":
			return p.offsetof()
		}
		return -1
	}
	if p.accept("(") {
		inner := p.expr()
		if inner < 0 || !p.accept(")") {
			return -1
		}
		return b.exprNode(CursorParenExpr, b.u.nodes[inner].name, b.u.nodes[inner].typ, p.between(start, p.i), inner)
	}
	return -1
}

func (p *tokParser) offsetof() int32 {
	b, u := p.b, p.b.u
	start := p.i
	p.i++
	if !p.accept("(") {
		return -1
	}
	t, ok := p.typeName()
	if !ok || !p.accept(",") {
		return -1
	}
	var path []string
	for !p.done() && p.peek() != ")" {
		if s := p.peek(); s != "." {
			path = append(path, s)
		}
		p.i++
	}
	p.accept(")")
	sp := p.between(start, p.i)
	id := b.exprNode(CursorUnexposedExpr, "", b.sizeType(), sp)
	if !u.isRecord(t) {
		b.diags.error(catSemantic, sp.loc, "offsetof requires struct, union, or class type, '%s' invalid", u.spelling(t))
		return id
	}
	var total int64
	rec := u.tagDecl(t)
	for _, name := range path {
		l, code := u.recordLayout(rec)
		f := u.lookupField(rec, name)
		if code != 0 || f < 0 {
			b.diags.error(catSemantic, sp.loc, "no member named '%s' in '%s'", name, u.spelling(u.nodes[rec].typ))
			return id
		}
		total += l.offsets[f]
		rec = u.tagDecl(u.nodes[f].typ)
	}
	u.nodes[id].intVal = total / 8
	u.nodes[id].flags |= flagHasValue
	return id
}

var typeKeywords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true, "float": true,
	"double": true, "signed": true, "unsigned": true, "_Bool": true, "bool": true,
	"const": true, "volatile": true, "restrict": true, "struct": true, "union": true,
	"enum": true, "_Complex": true, "__int128": true, "_Atomic": true,
}

// startsTypeName reports whether the token k ahead begins a type name.
func (p *tokParser) startsTypeName(k int) bool {
	s := p.peekAt(k)
	if typeKeywords[s] {
		return s != "bool" || p.b.u.c23
	}
	if p.i+k >= len(p.toks) || p.toks[p.i+k].kind != TokenIdentifier {
		return false
	}
	d := p.b.sc.lookup(s)
	return d >= 0 && p.b.u.nodes[d].kind == CursorTypedefDecl
}

// typeName parses specifiers and an abstract declarator made of
// pointers and constant array bounds.
func (p *tokParser) typeName() (typeID, bool) {
	b, u := p.b, p.b.u
	var signed, unsigned bool
	var short, long int
	var q qual
	base := ""
	t := invalidType
loop:
	for !p.done() {
		s := p.peek()
		switch s {
		case "const":
			q |= qualConst
		case "volatile":
			q |= qualVolatile
		case "restrict":
			q |= qualRestrict
		case "signed":
			signed = true
		case "unsigned":
			unsigned = true
		case "short":
			short++
		case "long":
			long++
		case "void", "char", "int", "float", "double", "_Bool", "bool", "__int128":
			base = s
		case "struct", "union", "enum":
			p.i++
			if p.done() {
				return invalidType, false
			}
			tag := b.sc.lookupTag(p.peek())
			if tag < 0 {
				return invalidType, false
			}
			t = u.elaborated(u.nodes[tag].typ, s)
		default:
			if base != "" || t != invalidType || signed || unsigned || short > 0 || long > 0 {
				break loop
			}
			d := b.sc.lookup(s)
			if d < 0 || u.nodes[d].kind != CursorTypedefDecl {
				break loop
			}
			b.markUsed(d)
			t = u.elaborated(u.nodes[d].typ, "")
		}
		p.i++
	}
	if t == invalidType {
		k := TypeInt
		switch base {
		case "":
			if !signed && !unsigned && short == 0 && long == 0 {
				return invalidType, false
			}
		case "void":
			k = TypeVoid
		case "char":
			k = b.charKind()
			if unsigned {
				k = TypeUChar
			} else if signed {
				k = TypeSChar
			}
		case "float":
			k = TypeFloat
		case "double":
			k = TypeDouble
			if long > 0 {
				k = TypeLongDouble
			}
		case "_Bool", "bool":
			k = TypeBool
		case "__int128":
			k = TypeInt128
		}
		if base == "" || base == "int" || base == "__int128" {
			switch {
			case short > 0:
				k = TypeShort
			case long == 1:
				k = TypeLong
			case long >= 2:
				k = TypeLongLong
			}
			if unsigned {
				k = unsignedOf(k)
			}
		}
		t = u.builtin(k)
	}
	t = u.qualified(t, q)
	for !p.done() {
		switch p.peek() {
		case "*":
			t = u.pointerTo(t)
		case "const":
			t = u.qualified(t, qualConst)
		case "volatile":
			t = u.qualified(t, qualVolatile)
		case "restrict":
			t = u.qualified(t, qualRestrict)
		case "[":
			p.i++
			count := int64(-1)
			if p.peek() != "]" {
				v, ok := b.constInt(p.conditional())
				if !ok {
					return invalidType, false
				}
				count = v
			}
			if !p.accept("]") {
				return invalidType, false
			}
			t = u.arrayOf(t, count)
			continue
		default:
			return t, true
		}
		p.i++
	}
	return t, true
}
