package clang

import "math"

// evalValue is the result of folding an expression.
type evalValue struct {
	kind     EvalResultKind
	i        int64
	unsigned bool
	f        float64
	s        string
}

func (v evalValue) truthy() bool {
	if v.kind == EvalFloat {
		return v.f != 0
	}
	return v.i != 0
}

func (v evalValue) float() float64 {
	switch {
	case v.kind == EvalFloat:
		return v.f
	case v.unsigned:
		return float64(uint64(v.i))
	}
	return float64(v.i)
}

// convertValue converts v to type t, truncating integers to t's width.
func (u *unit) convertValue(v evalValue, t typeID) (evalValue, bool) {
	if v.kind != EvalInt && v.kind != EvalFloat {
		return v, false
	}
	switch {
	case u.kindOf(t) == TypeBool:
		return evalValue{kind: EvalInt, i: boolInt(v.truthy())}, true
	case u.isInteger(t):
		k := u.kindOf(t)
		if k == TypeEnum {
			k = u.kindOf(u.enumIntegerType(t))
		}
		out := evalValue{kind: EvalInt, i: v.i, unsigned: u.isUnsigned(t)}
		if v.kind == EvalFloat {
			if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
				return v, false
			}
			out.i = int64(v.f)
			if v.f >= 1<<63 {
				out.i = int64(uint64(v.f))
			}
		}
		if bits := u.sizeBits(k); bits > 0 && bits < 64 {
			mask := int64(1)<<uint(bits) - 1
			out.i &= mask
			if !out.unsigned && out.i&(int64(1)<<uint(bits-1)) != 0 {
				out.i |= ^mask
			}
		}
		return out, true
	case u.isArithmetic(t):
		return evalValue{kind: EvalFloat, f: v.float()}, true
	case u.kindOf(t) == TypePointer && v.kind == EvalInt:
		return evalValue{kind: EvalInt, i: v.i, unsigned: true}, true
	}
	return v, false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// eval folds e. strict limits folding to integer constant expressions;
// otherwise const variables with constant initializers and string
// literals are folded too.
func (u *unit) eval(e int32, strict bool) (evalValue, bool) {
	if e < 0 {
		return evalValue{}, false
	}
	n := &u.nodes[e]
	if n.typ == invalidType && n.kind != CursorVarDecl {
		return evalValue{}, false
	}
	switch n.kind {
	case CursorIntegerLiteral, CursorCharacterLiteral, CursorBoolLiteralExpr:
		return evalValue{kind: EvalInt, i: n.intVal, unsigned: u.isUnsigned(n.typ)}, true
	case CursorFloatingLiteral:
		if strict {
			return evalValue{}, false
		}
		return evalValue{kind: EvalFloat, f: n.fltVal}, true
	case CursorStringLiteral:
		if strict {
			return evalValue{}, false
		}
		return evalValue{kind: EvalStrLiteral, s: n.strVal}, true
	case CursorParenExpr:
		if len(n.children) != 1 {
			return evalValue{}, false
		}
		return u.eval(n.children[0], strict)
	case CursorUnexposedExpr:
		switch {
		case n.has(flagHasValue):
			return evalValue{kind: EvalInt, i: n.intVal, unsigned: u.isUnsigned(n.typ)}, true
		case n.has(flagImplicit) && len(n.children) == 1:
			v, ok := u.eval(n.children[0], strict)
			if !ok {
				return v, false
			}
			if v.kind == EvalStrLiteral {
				return v, !strict
			}
			return u.convertValue(v, n.typ)
		case len(n.children) == 1 && n.strVal == "" && n.name == "":
			return u.eval(n.children[0], strict)
		}
		return evalValue{}, false
	case CursorUnaryExpr:
		if !n.has(flagHasValue) {
			return evalValue{}, false
		}
		return evalValue{kind: EvalInt, i: n.intVal, unsigned: true}, true
	case CursorDeclRefExpr:
		if n.ref < 0 {
			return evalValue{}, false
		}
		d := &u.nodes[n.ref]
		switch d.kind {
		case CursorEnumConstantDecl:
			return evalValue{kind: EvalInt, i: d.intVal, unsigned: u.isUnsigned(d.typ)}, true
		case CursorVarDecl:
			if strict || u.ty(u.canonicalType(d.typ)).quals&qualConst == 0 {
				return evalValue{}, false
			}
			return u.eval(n.ref, strict)
		}
		return evalValue{}, false
	case CursorVarDecl:
		init := u.varInit(e)
		if init < 0 {
			return evalValue{}, false
		}
		v, ok := u.eval(init, strict)
		if !ok || v.kind == EvalStrLiteral {
			return v, ok
		}
		return u.convertValue(v, n.typ)
	case CursorCStyleCastExpr:
		if len(n.children) == 0 || u.isVoid(n.typ) {
			return evalValue{}, false
		}
		v, ok := u.eval(n.children[len(n.children)-1], strict)
		if !ok {
			return v, false
		}
		if strict && v.kind == EvalFloat && !u.isInteger(n.typ) {
			return evalValue{}, false
		}
		return u.convertValue(v, n.typ)
	case CursorUnaryOperator:
		return u.evalUnary(n, strict)
	case CursorBinaryOperator:
		return u.evalBinary(n, strict)
	case CursorConditionalOp:
		if len(n.children) != 3 {
			return evalValue{}, false
		}
		c, ok := u.eval(n.children[0], strict)
		if !ok {
			return c, false
		}
		if c.truthy() {
			return u.eval(n.children[1], strict)
		}
		return u.eval(n.children[2], strict)
	case CursorGenericSelection:
		if n.intVal <= 0 || int(n.intVal) >= len(n.children) {
			return evalValue{}, false
		}
		return u.eval(n.children[n.intVal], strict)
	}
	return evalValue{}, false
}

// varInit returns the initializer expression of a variable declaration.
func (u *unit) varInit(decl int32) int32 {
	ch := u.nodes[decl].children
	if len(ch) == 0 {
		return -1
	}
	last := ch[len(ch)-1]
	k := u.nodes[last].kind
	if k < CursorUnexposedExpr || k >= CursorUnexposedStmt {
		return -1
	}
	return last
}

func (u *unit) evalUnary(n *node, strict bool) (evalValue, bool) {
	if len(n.children) != 1 {
		return evalValue{}, false
	}
	v, ok := u.eval(n.children[0], strict)
	if !ok || v.kind == EvalStrLiteral {
		return evalValue{}, false
	}
	switch n.unOp {
	case UnaryPlus, UnaryExtension:
		return v, true
	case UnaryMinus:
		if v.kind == EvalFloat {
			return evalValue{kind: EvalFloat, f: -v.f}, true
		}
		return u.convertValue(evalValue{kind: EvalInt, i: -v.i, unsigned: v.unsigned}, n.typ)
	case UnaryNot:
		if v.kind != EvalInt {
			return evalValue{}, false
		}
		return u.convertValue(evalValue{kind: EvalInt, i: ^v.i, unsigned: v.unsigned}, n.typ)
	case UnaryLNot:
		return evalValue{kind: EvalInt, i: boolInt(!v.truthy())}, true
	}
	return evalValue{}, false
}

func (u *unit) evalBinary(n *node, strict bool) (evalValue, bool) {
	if len(n.children) != 2 || n.binOp.IsAssignment() {
		return evalValue{}, false
	}
	l, ok := u.eval(n.children[0], strict)
	if !ok || l.kind == EvalStrLiteral {
		return evalValue{}, false
	}
	switch n.binOp {
	case BinaryLAnd:
		if !l.truthy() {
			return evalValue{kind: EvalInt}, true
		}
	case BinaryLOr:
		if l.truthy() {
			return evalValue{kind: EvalInt, i: 1}, true
		}
	case BinaryComma:
		if strict {
			return evalValue{}, false
		}
		return u.eval(n.children[1], strict)
	}
	r, ok := u.eval(n.children[1], strict)
	if !ok || r.kind == EvalStrLiteral {
		return evalValue{}, false
	}
	switch n.binOp {
	case BinaryLAnd, BinaryLOr:
		return evalValue{kind: EvalInt, i: boolInt(r.truthy())}, true
	}

	if l.kind == EvalFloat || r.kind == EvalFloat {
		a, b := l.float(), r.float()
		var f float64
		switch n.binOp {
		case BinaryAdd:
			f = a + b
		case BinarySub:
			f = a - b
		case BinaryMul:
			f = a * b
		case BinaryDiv:
			if b == 0 {
				return evalValue{}, false
			}
			f = a / b
		case BinaryLT:
			return evalValue{kind: EvalInt, i: boolInt(a < b)}, true
		case BinaryGT:
			return evalValue{kind: EvalInt, i: boolInt(a > b)}, true
		case BinaryLE:
			return evalValue{kind: EvalInt, i: boolInt(a <= b)}, true
		case BinaryGE:
			return evalValue{kind: EvalInt, i: boolInt(a >= b)}, true
		case BinaryEQ:
			return evalValue{kind: EvalInt, i: boolInt(a == b)}, true
		case BinaryNE:
			return evalValue{kind: EvalInt, i: boolInt(a != b)}, true
		default:
			return evalValue{}, false
		}
		return evalValue{kind: EvalFloat, f: f}, true
	}

	unsigned := l.unsigned || r.unsigned
	a, b := l.i, r.i
	ua, ub := uint64(a), uint64(b)
	var out int64
	switch n.binOp {
	case BinaryAdd:
		out = a + b
	case BinarySub:
		out = a - b
	case BinaryMul:
		out = a * b
	case BinaryDiv, BinaryRem:
		if b == 0 {
			return evalValue{}, false
		}
		switch {
		case unsigned && n.binOp == BinaryDiv:
			out = int64(ua / ub)
		case unsigned:
			out = int64(ua % ub)
		case b == -1:
			if n.binOp == BinaryDiv {
				out = -a
			}
		case n.binOp == BinaryDiv:
			out = a / b
		default:
			out = a % b
		}
	case BinaryShl:
		if b < 0 || b >= 64 {
			return evalValue{}, false
		}
		out = a << uint(b)
		unsigned = l.unsigned
	case BinaryShr:
		if b < 0 || b >= 64 {
			return evalValue{}, false
		}
		if l.unsigned {
			out = int64(ua >> uint(b))
		} else {
			out = a >> uint(b)
		}
		unsigned = l.unsigned
	case BinaryAnd:
		out = a & b
	case BinaryXor:
		out = a ^ b
	case BinaryOr:
		out = a | b
	case BinaryLT, BinaryGT, BinaryLE, BinaryGE:
		var less, eq bool
		if unsigned {
			less, eq = ua < ub, ua == ub
		} else {
			less, eq = a < b, a == b
		}
		var res bool
		switch n.binOp {
		case BinaryLT:
			res = less
		case BinaryGT:
			res = !less && !eq
		case BinaryLE:
			res = less || eq
		default:
			res = !less
		}
		return evalValue{kind: EvalInt, i: boolInt(res)}, true
	case BinaryEQ:
		return evalValue{kind: EvalInt, i: boolInt(a == b)}, true
	case BinaryNE:
		return evalValue{kind: EvalInt, i: boolInt(a != b)}, true
	default:
		return evalValue{}, false
	}
	if u.kindOf(n.typ) == TypePointer {
		return evalValue{}, false
	}
	return u.convertValue(evalValue{kind: EvalInt, i: out, unsigned: unsigned}, n.typ)
}

// constInt folds e as an integer constant expression.
func (b *builder) constInt(e int32) (int64, bool) {
	v, ok := b.u.eval(e, true)
	if !ok || v.kind != EvalInt {
		return 0, false
	}
	return v.i, true
}

// EvalResult is the folded value of an expression or variable initializer.
type EvalResult struct {
	kind     EvalResultKind
	i        int64
	unsigned bool
	f        float64
	s        string
}

func (r EvalResult) Kind() EvalResultKind { return r.kind }

// AsInt returns the value truncated to an int.
func (r EvalResult) AsInt() int { return int(int32(r.i)) }

func (r EvalResult) AsLongLong() int64 { return r.i }

func (r EvalResult) IsUnsignedInt() bool { return r.kind == EvalInt && r.unsigned }

func (r EvalResult) AsUnsigned() uint64 { return uint64(r.i) }

func (r EvalResult) AsDouble() float64 { return r.f }

func (r EvalResult) AsStr() string { return r.s }
