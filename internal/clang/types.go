package clang

import (
	"fmt"
	"strconv"
	"strings"
)

type typeID int32

const invalidType typeID = 0

type qual uint8

const (
	qualConst qual = 1 << iota
	qualVolatile
	qualRestrict
)

// typeInfo is one hash-consed type of a unit.
type typeInfo struct {
	kind     TypeKind
	quals    qual
	elem     typeID
	params   []typeID
	variadic bool
	count    int64
	decl     int32
	ent      int32
	keyword  string
}

func (t *typeInfo) key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d|%d|%d|%d|%d|%d|%s|%t|", t.kind, t.quals, t.elem, t.count, t.decl, t.ent, t.keyword, t.variadic)
	for _, p := range t.params {
		sb.WriteString(strconv.Itoa(int(p)))
		sb.WriteByte(',')
	}
	return sb.String()
}

func (u *unit) intern(t typeInfo) typeID {
	k := t.key()
	if id, ok := u.typeKeys[k]; ok {
		return id
	}
	u.types = append(u.types, t)
	id := typeID(len(u.types) - 1)
	u.typeKeys[k] = id
	return id
}

func (u *unit) ty(id typeID) *typeInfo {
	if id < 0 || int(id) >= len(u.types) {
		return &u.types[0]
	}
	return &u.types[id]
}

func (u *unit) builtin(kind TypeKind) typeID {
	if id, ok := u.builtins[kind]; ok {
		return id
	}
	id := u.intern(typeInfo{kind: kind, decl: -1, ent: -1, count: -1})
	u.builtins[kind] = id
	return id
}

func (u *unit) pointerTo(elem typeID) typeID {
	return u.intern(typeInfo{kind: TypePointer, elem: elem, decl: -1, ent: -1, count: -1})
}

// arrayOf builds an array type. count -1 is an incomplete array and -2 a
// variable length array.
func (u *unit) arrayOf(elem typeID, count int64) typeID {
	kind := TypeConstantArray
	switch {
	case count == -1:
		kind = TypeIncompleteArray
	case count < -1:
		kind, count = TypeVariableArray, -1
	}
	return u.intern(typeInfo{kind: kind, elem: elem, count: count, decl: -1, ent: -1})
}

func (u *unit) functionOf(result typeID, params []typeID, variadic, proto bool) typeID {
	kind := TypeFunctionNoProto
	if proto {
		kind = TypeFunctionProto
	} else {
		params, variadic = nil, false
	}
	return u.intern(typeInfo{kind: kind, elem: result, params: params, variadic: variadic, decl: -1, ent: -1, count: -1})
}

func (u *unit) recordType(kind CursorKind, ent int32, decl int32) typeID {
	tk := TypeRecord
	if kind == CursorEnumDecl {
		tk = TypeEnum
	}
	if ent >= 0 {
		decl = u.ents[ent].decls[0]
	}
	return u.intern(typeInfo{kind: tk, ent: ent, decl: decl, count: -1})
}

func (u *unit) typedefType(decl int32, underlying typeID) typeID {
	return u.intern(typeInfo{kind: TypeTypedef, decl: decl, elem: underlying, ent: -1, count: -1})
}

func (u *unit) elaborated(named typeID, keyword string) typeID {
	return u.intern(typeInfo{kind: TypeElaborated, elem: named, keyword: keyword, decl: -1, ent: -1, count: -1})
}

// qualified returns t with q added to its qualifiers.
func (u *unit) qualified(t typeID, q qual) typeID {
	if q == 0 || t == invalidType {
		return t
	}
	info := *u.ty(t)
	if info.quals&q == q {
		return t
	}
	info.quals |= q
	return u.intern(info)
}

func (u *unit) unqualified(t typeID) typeID {
	info := *u.ty(t)
	if info.quals == 0 {
		return t
	}
	info.quals = 0
	return u.intern(info)
}

// canonicalType strips typedef and elaborated sugar at every level.
func (u *unit) canonicalType(t typeID) typeID {
	info := *u.ty(t)
	switch info.kind {
	case TypeTypedef, TypeElaborated:
		return u.qualified(u.canonicalType(info.elem), info.quals)
	case TypePointer, TypeConstantArray, TypeIncompleteArray, TypeVariableArray, TypeVector, TypeComplex, TypeAtomic:
		info.elem = u.canonicalType(info.elem)
		return u.intern(info)
	case TypeFunctionProto, TypeFunctionNoProto:
		info.elem = u.canonicalType(info.elem)
		params := make([]typeID, len(info.params))
		for i, p := range info.params {
			params[i] = u.canonicalType(p)
		}
		info.params = params
		return u.intern(info)
	}
	return t
}

// desugar strips top-level typedef and elaborated sugar, keeping qualifiers.
func (u *unit) desugar(t typeID) typeID {
	for {
		info := u.ty(t)
		if info.kind != TypeTypedef && info.kind != TypeElaborated {
			return t
		}
		t = u.qualified(info.elem, info.quals)
	}
}

func (u *unit) kindOf(t typeID) TypeKind { return u.ty(u.desugar(t)).kind }

func (u *unit) isInteger(t typeID) bool {
	k := u.kindOf(t)
	return (k >= TypeBool && k <= TypeInt128) || k == TypeEnum
}

func (u *unit) isArithmetic(t typeID) bool {
	k := u.kindOf(t)
	return u.isInteger(t) || (k >= TypeFloat && k <= TypeLongDouble)
}

func (u *unit) isScalar(t typeID) bool {
	k := u.kindOf(t)
	return u.isArithmetic(t) || k == TypePointer || k == TypeNullPtr
}

func (u *unit) isRecord(t typeID) bool { return u.kindOf(t) == TypeRecord }

func (u *unit) isVoid(t typeID) bool { return u.kindOf(t) == TypeVoid }

func (u *unit) isFunction(t typeID) bool {
	k := u.kindOf(t)
	return k == TypeFunctionProto || k == TypeFunctionNoProto
}

func (u *unit) isArray(t typeID) bool {
	switch u.kindOf(t) {
	case TypeConstantArray, TypeIncompleteArray, TypeVariableArray:
		return true
	}
	return false
}

func (u *unit) isUnsigned(t typeID) bool {
	switch k := u.kindOf(t); k {
	case TypeBool, TypeCharU, TypeUChar, TypeChar16, TypeChar32, TypeUShort, TypeUInt, TypeULong, TypeULongLong, TypeUInt128:
		return true
	case TypeEnum:
		return u.isUnsigned(u.enumIntegerType(u.desugar(t)))
	case TypePointer:
		return true
	}
	return false
}

// pointee returns the element type of a pointer, or invalid.
func (u *unit) pointee(t typeID) typeID {
	d := u.ty(u.desugar(t))
	if d.kind == TypePointer {
		return d.elem
	}
	return invalidType
}

// decay converts arrays and functions to pointers.
func (u *unit) decay(t typeID) typeID {
	d := u.ty(u.desugar(t))
	switch d.kind {
	case TypeConstantArray, TypeIncompleteArray, TypeVariableArray:
		return u.pointerTo(d.elem)
	case TypeFunctionProto, TypeFunctionNoProto:
		return u.pointerTo(t)
	}
	return t
}

// tagDecl returns the defining (or first) declaration of a record or
// enum type.
func (u *unit) tagDecl(t typeID) int32 {
	d := u.ty(u.desugar(t))
	if d.kind != TypeRecord && d.kind != TypeEnum {
		return -1
	}
	if d.ent >= 0 {
		if def := u.ents[d.ent].def; def >= 0 {
			return def
		}
		return u.ents[d.ent].decls[0]
	}
	return d.decl
}

// isComplete reports whether objects of type t have a known size.
func (u *unit) isComplete(t typeID) bool {
	d := u.ty(u.desugar(t))
	switch d.kind {
	case TypeVoid, TypeIncompleteArray, TypeInvalid:
		return false
	case TypeRecord, TypeEnum:
		return d.ent >= 0 && u.ents[d.ent].def >= 0
	case TypeConstantArray:
		return u.isComplete(d.elem)
	}
	return true
}

func (u *unit) enumIntegerType(t typeID) typeID {
	decl := u.tagDecl(t)
	if decl < 0 {
		return u.builtin(TypeUInt)
	}
	if it := u.nodes[decl].aux; it != invalidType {
		return it
	}
	return u.builtin(TypeUInt)
}

// integer ranks for the usual arithmetic conversions.
func (u *unit) rank(k TypeKind) int {
	switch k {
	case TypeBool:
		return 1
	case TypeCharU, TypeCharS, TypeSChar, TypeUChar:
		return 2
	case TypeShort, TypeUShort, TypeChar16:
		return 3
	case TypeInt, TypeUInt, TypeChar32, TypeWChar:
		return 4
	case TypeLong, TypeULong:
		return 5
	case TypeLongLong, TypeULongLong:
		return 6
	case TypeInt128, TypeUInt128:
		return 7
	}
	return 4
}

// promote applies the integer promotions.
func (u *unit) promote(t typeID) typeID {
	c := u.unqualified(u.desugar(t))
	k := u.ty(c).kind
	if k == TypeEnum {
		c = u.enumIntegerType(c)
		k = u.ty(c).kind
	}
	if !u.isInteger(c) {
		return c
	}
	if u.rank(k) < 4 {
		return u.builtin(TypeInt)
	}
	return c
}

// arithmeticResult applies the usual arithmetic conversions.
func (u *unit) arithmeticResult(a, b typeID) typeID {
	ka, kb := u.kindOf(a), u.kindOf(b)
	for _, f := range []TypeKind{TypeLongDouble, TypeDouble, TypeFloat} {
		if ka == f || kb == f {
			return u.builtin(f)
		}
	}
	pa, pb := u.promote(a), u.promote(b)
	ka, kb = u.ty(pa).kind, u.ty(pb).kind
	if ka == kb {
		return pa
	}
	ua, ub := u.isUnsigned(pa), u.isUnsigned(pb)
	ra, rb := u.rank(ka), u.rank(kb)
	switch {
	case ua == ub:
		if ra >= rb {
			return pa
		}
		return pb
	case ua && ra >= rb:
		return pa
	case ub && rb >= ra:
		return pb
	case !ua && u.sizeBits(ka) > u.sizeBits(kb):
		return pa
	case !ub && u.sizeBits(kb) > u.sizeBits(ka):
		return pb
	case ua:
		return u.builtin(unsignedOf(kb))
	default:
		return u.builtin(unsignedOf(ka))
	}
}

func unsignedOf(k TypeKind) TypeKind {
	switch k {
	case TypeCharS, TypeSChar:
		return TypeUChar
	case TypeShort:
		return TypeUShort
	case TypeInt:
		return TypeUInt
	case TypeLong:
		return TypeULong
	case TypeLongLong:
		return TypeULongLong
	case TypeInt128:
		return TypeUInt128
	}
	return k
}

// sameType compares two types of the same unit after canonicalization,
// ignoring top-level qualifiers when loose is set.
func (u *unit) sameType(a, b typeID, loose bool) bool {
	ca, cb := u.canonicalType(a), u.canonicalType(b)
	if loose {
		ca, cb = u.unqualified(ca), u.unqualified(cb)
	}
	return ca == cb
}

// compatibleFunctions reports whether two function types may declare the
// same function: identical, or one of them has no prototype.
func (u *unit) compatibleFunctions(a, b typeID) bool {
	ca, cb := u.ty(u.canonicalType(a)), u.ty(u.canonicalType(b))
	if ca.kind == TypeFunctionNoProto || cb.kind == TypeFunctionNoProto {
		return u.sameType(ca.elem, cb.elem, true)
	}
	return u.sameType(a, b, false)
}

func qualPrefix(q qual) string {
	var parts []string
	if q&qualConst != 0 {
		parts = append(parts, "const")
	}
	if q&qualVolatile != 0 {
		parts = append(parts, "volatile")
	}
	if q&qualRestrict != 0 {
		parts = append(parts, "restrict")
	}
	return strings.Join(parts, " ")
}

// spelling prints t the way clang's type printer does.
func (u *unit) spelling(t typeID) string {
	return u.declare(t, "")
}

// declare prints t around the declarator text inner, e.g. "int (*fp)(int)".
func (u *unit) declare(t typeID, inner string) string {
	info := u.ty(t)
	switch info.kind {
	case TypePointer:
		s := "*"
		if q := qualPrefix(info.quals); q != "" {
			s += q
			if inner != "" {
				s += " "
			}
		}
		s += inner
		if ek := u.ty(info.elem).kind; ek == TypeFunctionProto || ek == TypeFunctionNoProto ||
			ek == TypeConstantArray || ek == TypeIncompleteArray || ek == TypeVariableArray {
			s = "(" + s + ")"
		}
		return u.declare(info.elem, s)
	case TypeConstantArray:
		return u.declare(info.elem, inner+"["+strconv.FormatInt(info.count, 10)+"]")
	case TypeIncompleteArray:
		return u.declare(info.elem, inner+"[]")
	case TypeVariableArray:
		return u.declare(info.elem, inner+"[*]")
	case TypeFunctionProto, TypeFunctionNoProto:
		var ps []string
		for _, p := range info.params {
			ps = append(ps, u.spelling(p))
		}
		if info.variadic {
			ps = append(ps, "...")
		}
		if info.kind == TypeFunctionProto && len(ps) == 0 {
			ps = append(ps, "void")
		}
		return u.declare(info.elem, inner+"("+strings.Join(ps, ", ")+")")
	}

	base := u.baseName(info)
	if q := qualPrefix(info.quals); q != "" {
		base = q + " " + base
	}
	switch {
	case inner == "":
		return base
	case strings.HasPrefix(inner, "["):
		return base + inner
	}
	return base + " " + inner
}

// baseName prints a non-derived type without qualifiers.
func (u *unit) baseName(info *typeInfo) string {
	switch info.kind {
	case TypeTypedef:
		if info.decl >= 0 {
			return u.nodes[info.decl].name
		}
	case TypeElaborated:
		named := u.ty(info.elem)
		return u.baseName(named)
	case TypeRecord, TypeEnum:
		decl := info.decl
		if info.ent >= 0 {
			decl = u.ents[info.ent].decls[0]
		}
		if decl < 0 {
			return "<invalid>"
		}
		n := &u.nodes[decl]
		kw := tagKeyword(n.kind)
		if n.name == "" {
			return fmt.Sprintf("%s (unnamed %s at %s)", kw, kw, u.presumedString(n.loc))
		}
		return kw + " " + n.name
	case TypeInvalid:
		return ""
	case TypeComplex:
		return "_Complex " + u.spelling(info.elem)
	case TypeAtomic:
		return "_Atomic(" + u.spelling(info.elem) + ")"
	}
	if s := info.kind.Spelling(); s != "" {
		return s
	}
	return info.kind.String()
}

func tagKeyword(k CursorKind) string {
	switch k {
	case CursorUnionDecl:
		return "union"
	case CursorEnumDecl:
		return "enum"
	}
	return "struct"
}

// presumedString formats a position as file:line:col.
func (u *unit) presumedString(p srcPos) string {
	f := u.fileOf(p)
	if f == nil {
		return "<invalid loc>"
	}
	line, col := f.lineCol(p.off)
	return fmt.Sprintf("%s:%d:%d", f.name, line, col)
}
