package clang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mvp-joe/cxgraph/internal/syntax"
)

// macro is a #define (or -D) entry.
type macro struct {
	name     string
	params   []string
	variadic bool
	fnLike   bool
	body     []lexToken
	// buf is the buffer holding the definition, -1 for predefined and
	// command line macros.
	buf     int32
	namePos uint32
	def     int32 // MacroDefinition node, -1 without a detailed record
	builtin bool
}

func (m *macro) param(name string) int {
	for i, p := range m.params {
		if p == name {
			return i
		}
	}
	if m.variadic && name == "__VA_ARGS__" {
		return len(m.params)
	}
	return -1
}

func (m *macro) sameDefinition(o *macro) bool {
	if m.fnLike != o.fnLike || m.variadic != o.variadic || len(m.params) != len(o.params) || len(m.body) != len(o.body) {
		return false
	}
	for i := range m.params {
		if m.params[i] != o.params[i] {
			return false
		}
	}
	for i := range m.body {
		if m.body[i].text != o.body[i].text || (i > 0 && m.body[i].spaceBefore != o.body[i].spaceBefore) {
			return false
		}
	}
	return true
}

var builtinMacros = []string{
	"__FILE__", "__LINE__", "__DATE__", "__TIME__", "__COUNTER__",
	"__INCLUDE_LEVEL__", "__BASE_FILE__", "__FILE_NAME__", "__TIMESTAMP__",
}

// isMacroBuiltin reports whether name is expanded by the preprocessor itself.
func isMacroBuiltin(name string) bool {
	for _, n := range builtinMacros {
		if n == name {
			return true
		}
	}
	return false
}

// predefine installs the target and language macros followed by the -D and
// -U arguments in command line order.
func (b *builder) predefine() {
	t := b.u.target
	defs := [][2]string{
		{"__STDC__", "1"},
		{"__STDC_HOSTED__", "1"},
		{"__STDC_UTF_16__", "1"},
		{"__STDC_UTF_32__", "1"},
		{"__GNUC__", "4"},
		{"__GNUC_MINOR__", "2"},
		{"__GNUC_PATCHLEVEL__", "1"},
		{"__clang__", "1"},
		{"__clang_major__", "18"},
		{"__clang_minor__", "1"},
		{"__clang_patchlevel__", "8"},
		{"__clang_version__", `"18.1.8 "`},
		{"__VERSION__", `"Clang 18.1.8"`},
		{"__CHAR_BIT__", "8"},
		{"__SCHAR_MAX__", "127"},
		{"__SHRT_MAX__", "32767"},
		{"__INT_MAX__", "2147483647"},
		{"__LONG_LONG_MAX__", "9223372036854775807LL"},
		{"__SIZEOF_SHORT__", "2"},
		{"__SIZEOF_INT__", "4"},
		{"__SIZEOF_LONG_LONG__", "8"},
		{"__SIZEOF_FLOAT__", "4"},
		{"__SIZEOF_DOUBLE__", "8"},
		{"__ORDER_LITTLE_ENDIAN__", "1234"},
		{"__ORDER_BIG_ENDIAN__", "4321"},
		{"__BYTE_ORDER__", "__ORDER_LITTLE_ENDIAN__"},
		{"__WCHAR_TYPE__", "int"},
	}
	longBytes := t.sizeBits(TypeLong) / 8
	ptrBytes := int64(t.pointerWidth / 8)
	defs = append(defs,
		[2]string{"__SIZEOF_LONG__", strconv.FormatInt(longBytes, 10)},
		[2]string{"__SIZEOF_POINTER__", strconv.FormatInt(ptrBytes, 10)},
		[2]string{"__SIZEOF_SIZE_T__", strconv.FormatInt(ptrBytes, 10)},
		[2]string{"__SIZEOF_LONG_DOUBLE__", strconv.FormatInt(t.sizeBits(TypeLongDouble)/8, 10)},
	)
	if t.lp64() {
		defs = append(defs,
			[2]string{"__LONG_MAX__", "9223372036854775807L"},
			[2]string{"__SIZE_TYPE__", "long unsigned int"},
			[2]string{"__PTRDIFF_TYPE__", "long int"},
			[2]string{"__INTPTR_TYPE__", "long int"},
			[2]string{"__LP64__", "1"},
			[2]string{"_LP64", "1"},
		)
	} else {
		defs = append(defs,
			[2]string{"__LONG_MAX__", "2147483647L"},
			[2]string{"__SIZE_TYPE__", "unsigned int"},
			[2]string{"__PTRDIFF_TYPE__", "int"},
			[2]string{"__INTPTR_TYPE__", "int"},
			[2]string{"__ILP32__", "1"},
		)
	}
	switch t.arch {
	case "x86_64":
		defs = append(defs, [2]string{"__x86_64__", "1"}, [2]string{"__x86_64", "1"},
			[2]string{"__amd64__", "1"}, [2]string{"__amd64", "1"})
	case "i386", "i486", "i586", "i686":
		defs = append(defs, [2]string{"__i386__", "1"}, [2]string{"__i386", "1"})
		if b.args.gnuMode() {
			defs = append(defs, [2]string{"i386", "1"})
		}
	case "aarch64", "arm64":
		defs = append(defs, [2]string{"__aarch64__", "1"})
	}
	switch {
	case strings.Contains(t.triple, "linux"):
		defs = append(defs, [2]string{"__linux__", "1"}, [2]string{"__linux", "1"},
			[2]string{"__gnu_linux__", "1"}, [2]string{"__unix__", "1"},
			[2]string{"__unix", "1"}, [2]string{"__ELF__", "1"})
		if b.args.gnuMode() {
			defs = append(defs, [2]string{"linux", "1"}, [2]string{"unix", "1"})
		}
	case strings.Contains(t.triple, "darwin") || strings.Contains(t.triple, "macos"):
		defs = append(defs, [2]string{"__APPLE__", "1"}, [2]string{"__MACH__", "1"})
	case strings.Contains(t.triple, "windows"):
		defs = append(defs, [2]string{"_WIN32", "1"})
		if t.pointerWidth == 64 {
			defs = append(defs, [2]string{"_WIN64", "1"})
		}
	}
	if v := b.args.stdVersion(); v > 0 {
		defs = append(defs, [2]string{"__STDC_VERSION__", strconv.FormatInt(v, 10) + "L"})
		defs = append(defs, [2]string{"__GNUC_STDC_INLINE__", "1"})
	} else {
		defs = append(defs, [2]string{"__GNUC_GNU_INLINE__", "1"})
	}
	if !b.args.gnuMode() {
		defs = append(defs, [2]string{"__STRICT_ANSI__", "1"})
	}

	for _, d := range defs {
		b.macros[d[0]] = &macro{name: d[0], body: lexString(d[1], b.u.c23), buf: -1, def: -1}
	}
	for _, name := range builtinMacros {
		b.macros[name] = &macro{name: name, buf: -1, def: -1, builtin: true}
	}
	for _, a := range b.args.macros {
		if a.undef {
			delete(b.macros, a.name)
			continue
		}
		m := &macro{name: a.name, fnLike: a.fnLike, buf: -1, def: -1, body: lexString(a.value, b.u.c23)}
		for _, p := range a.params {
			if p == "..." {
				m.variadic = true
				continue
			}
			m.params = append(m.params, p)
		}
		b.macros[a.name] = m
	}
}

// define handles #define.
func (b *builder) define(n *syntax.Node) {
	nameNode := n.ChildByField("name")
	if nameNode == nil || nameNode.Missing {
		return
	}
	m := &macro{
		name:    b.src(nameNode),
		buf:     b.buf,
		namePos: nameNode.StartByte,
		def:     -1,
		fnLike:  n.Kind == "preproc_function_def",
	}
	end := nameNode.EndByte
	if params := n.ChildByField("parameters"); params != nil {
		end = params.EndByte
		for _, p := range params.Children {
			switch {
			case p.Kind == "identifier":
				m.params = append(m.params, b.src(p))
			case p.Kind == "...":
				m.variadic = true
			}
		}
	}
	if value := n.ChildByField("value"); value != nil {
		m.body = b.lexHere(value.StartByte, value.EndByte)
		if len(m.body) > 0 {
			end = m.body[len(m.body)-1].end
		}
	}

	loc := srcPos{b.buf, nameNode.StartByte}
	if prev, ok := b.macros[m.name]; ok {
		switch {
		case prev.builtin:
			b.diags.warning("builtin-macro-redefined", true, false, catLexical, loc, "redefining builtin macro")
		case !prev.sameDefinition(m):
			if d := b.diags.warning("macro-redefined", true, false, catLexical, loc, "'%s' macro redefined", m.name); d != nil {
				b.diags.note(d, srcPos{prev.buf, prev.namePos}, "previous definition is here")
			}
		}
	}
	if b.detailed() {
		m.def = b.u.newNode(CursorMacroDefinition, m.name, loc, loc, srcPos{b.buf, end})
		md := &b.u.nodes[m.def]
		md.semParent, md.lexParent = rootNode, rootNode
		if m.fnLike {
			md.flags |= flagFnLike
			md.params = m.params
		}
		var body []string
		for _, t := range m.body {
			body = append(body, t.text)
		}
		md.body = strings.Join(body, " ")
		b.u.addChild(rootNode, m.def)
	}
	b.u.macroCount++
	b.macros[m.name] = m
}

// lexHere lexes a range of the current buffer, dropping comments.
func (b *builder) lexHere(begin, end uint32) []lexToken {
	toks := dropComments(lexC(b.file.contents, begin, end, b.u.c23))
	for i := range toks {
		toks[i].origin = b.buf + 1
	}
	return toks
}

// expansionNode records a MacroExpansion cursor for a use of m.
func (b *builder) expansionNode(m *macro, begin, end srcPos) {
	if !b.detailed() || !begin.valid() || m.def < 0 && m.buf < 0 && !m.builtin {
		return
	}
	id := b.u.newNode(CursorMacroExpansion, m.name, begin, begin, end)
	n := &b.u.nodes[id]
	n.ref = m.def
	n.semParent, n.lexParent = rootNode, rootNode
	if m.builtin {
		n.flags |= flagBuiltin
	}
	if m.fnLike {
		n.flags |= flagFnLike
	}
	b.u.addChild(rootNode, id)
}

const maxExpansionDepth = 64

// expand macro-expands toks. Uses found in the current buffer (origin true)
// are recorded as expansion cursors.
func (b *builder) expand(toks []lexToken, hide map[string]bool, origin bool, depth int) []lexToken {
	if depth > maxExpansionDepth {
		return toks
	}
	var out []lexToken
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.kind != TokenIdentifier && t.kind != TokenKeyword {
			out = append(out, t)
			continue
		}
		m := b.macros[t.text]
		if m == nil || hide[t.text] {
			out = append(out, t)
			continue
		}
		if m.builtin {
			out = append(out, b.builtinToken(t))
			if origin {
				b.expansionNode(m, srcPos{b.buf, t.off}, srcPos{b.buf, t.end})
			}
			continue
		}
		inner := make(map[string]bool, len(hide)+1)
		for k := range hide {
			inner[k] = true
		}
		inner[m.name] = true

		if !m.fnLike {
			if origin {
				b.expansionNode(m, srcPos{b.buf, t.off}, srcPos{b.buf, t.end})
			}
			out = append(out, b.expand(m.body, inner, false, depth+1)...)
			continue
		}
		if i+1 >= len(toks) || toks[i+1].text != "(" {
			out = append(out, t)
			continue
		}
		args, next, ok := collectArgs(toks, i+1)
		if !ok {
			out = append(out, t)
			continue
		}
		if origin {
			b.expansionNode(m, srcPos{b.buf, t.off}, srcPos{b.buf, toks[next].end})
		}
		out = append(out, b.expand(b.substitute(m, args, hide, depth), inner, false, depth+1)...)
		i = next
	}
	return out
}

// collectArgs splits the parenthesized argument list starting at toks[open].
// next is the index of the closing parenthesis.
func collectArgs(toks []lexToken, open int) (args [][]lexToken, next int, ok bool) {
	depth := 0
	var cur []lexToken
	for i := open; i < len(toks); i++ {
		t := toks[i]
		switch t.text {
		case "(":
			depth++
			if depth == 1 {
				continue
			}
		case ")":
			depth--
			if depth == 0 {
				args = append(args, cur)
				return args, i, true
			}
		case ",":
			if depth == 1 {
				args = append(args, cur)
				cur = nil
				continue
			}
		}
		cur = append(cur, t)
	}
	return nil, 0, false
}

// substitute replaces parameters in m's body, handling # and ##.
func (b *builder) substitute(m *macro, args [][]lexToken, hide map[string]bool, depth int) []lexToken {
	if m.variadic && len(args) > len(m.params) {
		var rest []lexToken
		for i, a := range args[len(m.params):] {
			if i > 0 {
				rest = append(rest, lexToken{kind: TokenPunctuation, text: ","})
			}
			rest = append(rest, a...)
		}
		args = append(args[:len(m.params):len(m.params)], rest)
	}
	arg := func(i int) []lexToken {
		if i < len(args) {
			return args[i]
		}
		return nil
	}

	var out []lexToken
	body := m.body
	for i := 0; i < len(body); i++ {
		t := body[i]
		if t.text == "#" && i+1 < len(body) {
			if idx := m.param(body[i+1].text); idx >= 0 {
				out = append(out, stringify(arg(idx)))
				i++
				continue
			}
		}
		if t.text == "##" && i+1 < len(body) && len(out) > 0 {
			i++
			rhs := []lexToken{body[i]}
			if idx := m.param(body[i].text); idx >= 0 {
				rhs = arg(idx)
			}
			if len(rhs) > 0 {
				last := out[len(out)-1]
				pasted := lexString(last.text+rhs[0].text, b.u.c23)
				out = append(out[:len(out)-1], pasted...)
				out = append(out, rhs[1:]...)
			}
			continue
		}
		if idx := m.param(t.text); idx >= 0 {
			if i+1 < len(body) && body[i+1].text == "##" {
				out = append(out, arg(idx)...)
			} else {
				out = append(out, b.expand(arg(idx), hide, false, depth+1)...)
			}
			continue
		}
		out = append(out, t)
	}
	return out
}

func stringify(toks []lexToken) lexToken {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 && t.spaceBefore {
			sb.WriteByte(' ')
		}
		if t.kind == TokenLiteral && (strings.Contains(t.text, `"`) || strings.Contains(t.text, `'`)) {
			sb.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(t.text))
			continue
		}
		sb.WriteString(t.text)
	}
	return lexToken{kind: TokenLiteral, text: strconv.Quote(sb.String())}
}

// builtinToken produces the value of a builtin macro at token t.
func (b *builder) builtinToken(t lexToken) lexToken {
	lit := func(s string) lexToken {
		return lexToken{kind: TokenLiteral, text: s, off: t.off, end: t.end, origin: t.origin}
	}
	switch t.text {
	case "__FILE__":
		return lit(strconv.Quote(b.file.name))
	case "__FILE_NAME__":
		name := b.file.name
		if i := strings.LastIndexAny(name, `/\`); i >= 0 {
			name = name[i+1:]
		}
		return lit(strconv.Quote(name))
	case "__BASE_FILE__":
		return lit(strconv.Quote(b.args.source))
	case "__LINE__":
		line, _ := b.file.lineCol(t.off)
		return lit(strconv.FormatUint(uint64(line), 10))
	case "__DATE__":
		return lit(strconv.Quote(b.now.Format("Jan _2 2006")))
	case "__TIME__":
		return lit(strconv.Quote(b.now.Format("15:04:05")))
	case "__TIMESTAMP__":
		return lit(strconv.Quote(b.now.Format("Mon Jan _2 15:04:05 2006")))
	case "__COUNTER__":
		v := b.counter
		b.counter++
		return lit(strconv.FormatInt(v, 10))
	case "__INCLUDE_LEVEL__":
		return lit(strconv.Itoa(b.u.bufs[b.buf].depth))
	}
	return lit("0")
}

// ppValue is a preprocessor arithmetic value (intmax_t or uintmax_t).
type ppValue struct {
	v        int64
	unsigned bool
}

// ppEval evaluates a #if expression.
type ppEval struct {
	b    *builder
	toks []lexToken
	pos  int
	loc  srcPos
	err  string
}

// ppCondition evaluates the tokens of a #if or #elif condition.
func (b *builder) ppCondition(begin, end uint32) bool {
	raw := dropComments(lexC(b.file.contents, begin, end, b.u.c23))
	resolved := b.resolveDefined(raw)
	toks := b.expand(resolved, nil, true, 0)
	// identifiers remaining after expansion evaluate to zero
	for i, t := range toks {
		if t.kind == TokenIdentifier || t.kind == TokenKeyword {
			v := "0"
			if b.u.c23 && t.text == "true" {
				v = "1"
			}
			toks[i] = lexToken{kind: TokenLiteral, text: v, off: t.off, end: t.end}
		}
	}
	e := &ppEval{b: b, toks: toks, loc: srcPos{b.buf, begin}}
	v := e.expr(true)
	if e.err == "" && e.pos < len(e.toks) {
		e.err = "token is not a valid binary operator in a preprocessor subexpression"
	}
	if e.err != "" {
		b.diags.error(catLexical, e.loc, "%s", e.err)
		return false
	}
	return v.v != 0
}

// resolveDefined replaces defined and __has_* operators before expansion.
func (b *builder) resolveDefined(toks []lexToken) []lexToken {
	var out []lexToken
	one := func(t lexToken, v bool) lexToken {
		s := "0"
		if v {
			s = "1"
		}
		return lexToken{kind: TokenLiteral, text: s, off: t.off, end: t.end}
	}
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.text {
		case "defined":
			j := i + 1
			paren := j < len(toks) && toks[j].text == "("
			if paren {
				j++
			}
			if j >= len(toks) {
				out = append(out, one(t, false))
				i = j
				continue
			}
			name := toks[j].text
			if paren && j+1 < len(toks) && toks[j+1].text == ")" {
				j++
			}
			_, ok := b.macros[name]
			out = append(out, one(t, ok))
			i = j
		case "__has_include", "__has_include_next", "__has_attribute", "__has_c_attribute",
			"__has_builtin", "__has_feature", "__has_extension", "__has_declspec_attribute":
			args, next, ok := collectArgs(toks, i+1)
			if !ok || len(args) == 0 {
				out = append(out, one(t, false))
				continue
			}
			out = append(out, one(t, b.hasCheck(t.text, args[0])))
			i = next
		default:
			out = append(out, t)
		}
	}
	return out
}

var knownAttributes = map[string]bool{
	"packed": true, "aligned": true, "unused": true, "used": true, "deprecated": true,
	"noreturn": true, "visibility": true, "const": true, "pure": true, "always_inline": true,
	"noinline": true, "warn_unused_result": true, "format": true, "nonnull": true,
	"section": true, "weak": true, "alias": true, "cleanup": true, "annotate": true,
	"fallthrough": true, "maybe_unused": true, "nodiscard": true,
}

func (b *builder) hasCheck(op string, arg []lexToken) bool {
	var sb strings.Builder
	for _, t := range arg {
		sb.WriteString(t.text)
	}
	s := sb.String()
	switch op {
	case "__has_include", "__has_include_next":
		angled := strings.HasPrefix(s, "<")
		name := strings.Trim(s, `<>"`)
		f, _ := b.findInclude(name, angled)
		return f != nil
	case "__has_attribute", "__has_c_attribute", "__has_declspec_attribute":
		return knownAttributes[strings.Trim(s, "_")]
	case "__has_builtin":
		return strings.HasPrefix(s, "__builtin_")
	}
	return false
}

func (e *ppEval) peek() string {
	if e.pos < len(e.toks) {
		return e.toks[e.pos].text
	}
	return ""
}

func (e *ppEval) fail(msg string) ppValue {
	if e.err == "" {
		e.err = msg
	}
	return ppValue{}
}

var ppPrecedence = map[string]int{
	"*": 10, "/": 10, "%": 10,
	"+": 9, "-": 9,
	"<<": 8, ">>": 8,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"==": 6, "!=": 6,
	"&": 5, "^": 4, "|": 3, "&&": 2, "||": 1,
}

// expr parses a conditional expression. live is false inside the
// unevaluated operand of &&, || and ?:.
func (e *ppEval) expr(live bool) ppValue {
	cond := e.binary(1, live)
	if e.peek() != "?" {
		if e.peek() == "," {
			e.pos++
			return e.expr(live)
		}
		return cond
	}
	e.pos++
	a := e.expr(live && cond.v != 0)
	if e.peek() != ":" {
		return e.fail("expected ':' in preprocessor expression")
	}
	e.pos++
	c := e.expr(live && cond.v == 0)
	r := c
	if cond.v != 0 {
		r = a
	}
	r.unsigned = a.unsigned || c.unsigned
	return r
}

func (e *ppEval) binary(minPrec int, live bool) ppValue {
	lhs := e.unary(live)
	for {
		op := e.peek()
		prec, ok := ppPrecedence[op]
		if !ok || prec < minPrec || e.err != "" {
			return lhs
		}
		e.pos++
		rhsLive := live
		switch op {
		case "&&":
			rhsLive = live && lhs.v != 0
		case "||":
			rhsLive = live && lhs.v == 0
		}
		rhs := e.binary(prec+1, rhsLive)
		lhs = e.apply(op, lhs, rhs, rhsLive)
	}
}

func boolValue(b bool) ppValue {
	if b {
		return ppValue{v: 1}
	}
	return ppValue{}
}

func (e *ppEval) apply(op string, a, b ppValue, live bool) ppValue {
	unsigned := a.unsigned || b.unsigned
	ua, ub := uint64(a.v), uint64(b.v)
	r := ppValue{unsigned: unsigned}
	switch op {
	case "*":
		r.v = a.v * b.v
	case "/", "%":
		if b.v == 0 {
			if live {
				e.fail("division by zero in preprocessor expression")
			}
			return r
		}
		switch {
		case unsigned && op == "/":
			r.v = int64(ua / ub)
		case unsigned:
			r.v = int64(ua % ub)
		case op == "/":
			r.v = a.v / b.v
		default:
			r.v = a.v % b.v
		}
	case "+":
		r.v = a.v + b.v
	case "-":
		r.v = a.v - b.v
	case "<<":
		r.v = a.v << uint64(b.v&63)
		r.unsigned = a.unsigned
	case ">>":
		if a.unsigned {
			r.v = int64(ua >> uint64(b.v&63))
		} else {
			r.v = a.v >> uint64(b.v&63)
		}
		r.unsigned = a.unsigned
	case "<", ">", "<=", ">=":
		var less, eq bool
		if unsigned {
			less, eq = ua < ub, ua == ub
		} else {
			less, eq = a.v < b.v, a.v == b.v
		}
		switch op {
		case "<":
			return boolValue(less)
		case ">":
			return boolValue(!less && !eq)
		case "<=":
			return boolValue(less || eq)
		}
		return boolValue(!less)
	case "==":
		return boolValue(a.v == b.v)
	case "!=":
		return boolValue(a.v != b.v)
	case "&":
		r.v = a.v & b.v
	case "^":
		r.v = a.v ^ b.v
	case "|":
		r.v = a.v | b.v
	case "&&":
		return boolValue(a.v != 0 && b.v != 0)
	case "||":
		return boolValue(a.v != 0 || b.v != 0)
	}
	return r
}

func (e *ppEval) unary(live bool) ppValue {
	if e.pos >= len(e.toks) {
		return e.fail("expected value in expression")
	}
	t := e.toks[e.pos]
	e.pos++
	switch t.text {
	case "(":
		v := e.expr(live)
		if e.peek() != ")" {
			return e.fail("expected ')' in preprocessor expression")
		}
		e.pos++
		return v
	case "+":
		return e.unary(live)
	case "-":
		v := e.unary(live)
		v.v = -v.v
		return v
	case "~":
		v := e.unary(live)
		v.v = ^v.v
		return v
	case "!":
		v := e.unary(live)
		return boolValue(v.v == 0)
	}
	if t.kind != TokenLiteral {
		return e.fail("invalid token at start of a preprocessor expression")
	}
	if strings.HasSuffix(t.text, "'") {
		v, ok := parseCharLiteral(t.text)
		if !ok {
			return e.fail("invalid character literal in preprocessor expression")
		}
		return ppValue{v: v}
	}
	if isFloatLiteral(t.text) {
		return e.fail("floating point literal in preprocessor expression")
	}
	lit, ok := parseIntLiteral(t.text)
	if !ok {
		return e.fail(fmt.Sprintf("invalid integer constant '%s' in preprocessor expression", t.text))
	}
	return ppValue{v: int64(lit.value), unsigned: lit.unsigned || lit.value > 1<<63-1}
}

// ppKind folds the list-specific conditional kinds tree-sitter uses inside
// field and enumerator lists onto the plain directive kinds.
func ppKind(n *syntax.Node) string {
	kind, _, _ := strings.Cut(n.Kind, "_in_")
	return kind
}

// directive handles a preprocessor item. each receives the items of taken
// conditional branches and included files. It reports false for items that
// are not directives.
func (b *builder) directive(n *syntax.Node, each func([]*syntax.Node)) bool {
	switch ppKind(n) {
	case "preproc_include":
		b.include(n, each)
	case "preproc_def", "preproc_function_def":
		b.define(n)
	case "preproc_call":
		b.ppCall(n)
	case "preproc_if", "preproc_ifdef":
		b.ppConditional(n, each)
	case "preproc_else", "preproc_elif", "preproc_elifdef":
	default:
		return false
	}
	return true
}

// branchItems returns the items of one conditional branch.
func branchItems(n *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, ch := range n.Children {
		if ch.Field == "" && (ch.Named || ch.Missing) {
			out = append(out, ch)
		}
	}
	return out
}

// ppConditional walks an #if chain: the first true branch is handed to each,
// the others are recorded as skipped ranges.
func (b *builder) ppConditional(n *syntax.Node, each func([]*syntax.Node)) {
	taken := false
	for br := n; br != nil; br = br.ChildByField("alternative") {
		cond := true
		if !taken {
			switch ppKind(br) {
			case "preproc_if", "preproc_elif":
				if c := br.ChildByField("condition"); c != nil {
					cond = b.ppCondition(c.StartByte, c.EndByte)
				}
			case "preproc_ifdef", "preproc_elifdef":
				name := br.ChildByField("name")
				_, defined := b.macros[b.src(name)]
				negate := len(br.Children) > 0 && strings.HasSuffix(br.Children[0].Kind, "ndef")
				cond = defined != negate
			}
		}
		items := branchItems(br)
		if !taken && cond {
			taken = true
			b.checkSyntax(items)
			each(items)
			continue
		}
		end := n.EndByte
		if alt := br.ChildByField("alternative"); alt != nil {
			end = alt.StartByte
		}
		b.skip(byteRange{br.StartByte, end})
		if b.flags.Has(FlagRetainExcludedConditionalBlocks) {
			each(items)
		}
	}
}

func (b *builder) skip(r byteRange) {
	for _, s := range b.file.skipped {
		if s == r {
			return
		}
	}
	b.file.skipped = append(b.file.skipped, r)
}

// ppCall handles #undef, #pragma, #error, #warning, #line and unknown
// directives.
func (b *builder) ppCall(n *syntax.Node) {
	dir := n.ChildByField("directive")
	if dir == nil {
		return
	}
	name := strings.TrimSpace(strings.TrimPrefix(b.src(dir), "#"))
	arg := ""
	var argNode *syntax.Node
	if argNode = n.ChildByField("argument"); argNode != nil {
		arg = strings.TrimSpace(b.src(argNode))
	}
	loc := b.pos(n)
	switch name {
	case "undef":
		m, ok := b.macros[arg]
		if ok && m.builtin {
			b.diags.warning("builtin-macro-redefined", true, false, catLexical, loc, "undefining builtin macro")
		}
		delete(b.macros, arg)
	case "error":
		b.diags.error(catLexical, loc, "%s", arg)
	case "warning":
		b.diags.warning("#warnings", true, false, catLexical, loc, "%s", arg)
	case "pragma":
		b.pragma(n, arg)
	case "line":
		b.lineDirective(n, arg)
	case "ident", "sccs", "assert", "unassert", "include_next", "import":
	default:
		b.diags.error(catLexical, loc, "invalid preprocessing directive")
	}
}

func (b *builder) pragma(n *syntax.Node, arg string) {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		return
	}
	switch {
	case fields[0] == "once":
		b.file.pragmaOnce = true
		if b.u.bufs[b.buf].depth == 0 && b.buf == b.mainBuf && !b.args.isHeader() {
			b.diags.warning("pragma-once-outside-header", true, false, catLexical, b.pos(n), "#pragma once in main file")
		}
	case len(fields) >= 3 && (fields[0] == "clang" || fields[0] == "GCC") && fields[1] == "diagnostic":
		b.diags.applyPragma(fields[2:])
	}
}

// lineDirective records #line N ["file"] for presumed locations.
func (b *builder) lineDirective(n *syntax.Node, arg string) {
	toks := b.expand(dropComments(lexString(arg, b.u.c23)), nil, false, 0)
	if len(toks) == 0 {
		b.diags.error(catLexical, b.pos(n), "#line directive requires a positive integer argument")
		return
	}
	lit, ok := parseIntLiteral(toks[0].text)
	if !ok || lit.value == 0 && b.args.stdVersion() > 0 {
		b.diags.error(catLexical, b.pos(n), "#line directive requires a positive integer argument")
		return
	}
	if b.file.included > 1 {
		return
	}
	d := lineDirective{off: n.EndByte, line: uint32(lit.value)}
	for d.off < uint32(len(b.file.contents)) && b.file.contents[d.off-1] != '\n' {
		d.off++
	}
	if len(toks) > 1 && strings.HasPrefix(toks[1].text, `"`) {
		if s, ok := unescape(literalBody(toks[1].text)); ok {
			d.file = s
		}
	}
	b.file.lineDirs = append(b.file.lineDirs, d)
}

// detectGuard finds a #pragma once or a classic include guard wrapping the
// whole file.
func detectGuard(f *fileInfo) {
	var items []*syntax.Node
	for _, ch := range f.syntax.Root.Children {
		if ch.Kind == "comment" || !ch.Named {
			continue
		}
		if ch.Kind == "preproc_call" {
			dir := ch.ChildByField("directive")
			arg := ch.ChildByField("argument")
			if dir != nil && arg != nil && strings.TrimSpace(dir.Text(f.contents)) == "#pragma" &&
				strings.TrimSpace(arg.Text(f.contents)) == "once" {
				f.pragmaOnce = true
				continue
			}
		}
		items = append(items, ch)
	}
	if len(items) != 1 || items[0].ChildByField("alternative") != nil {
		return
	}
	g := items[0]
	var name string
	switch g.Kind {
	case "preproc_ifdef":
		if len(g.Children) == 0 || g.Children[0].Kind != "#ifndef" {
			return
		}
		name = g.ChildByField("name").Text(f.contents)
	case "preproc_if":
		cond := g.ChildByField("condition")
		if cond == nil {
			return
		}
		toks := dropComments(lexC(f.contents, cond.StartByte, cond.EndByte, false))
		var texts []string
		for _, t := range toks {
			texts = append(texts, t.text)
		}
		switch s := strings.Join(texts, " "); {
		case len(texts) == 3 && texts[0] == "!" && texts[1] == "defined":
			name = texts[2]
		case len(texts) == 5 && strings.HasPrefix(s, "! defined (") && texts[4] == ")":
			name = texts[3]
		default:
			return
		}
	default:
		return
	}
	for _, ch := range branchItems(g) {
		if ch.Kind == "comment" {
			continue
		}
		if ch.Kind == "preproc_def" && ch.ChildByField("name").Text(f.contents) == name {
			f.guard = name
		}
		return
	}
}
