package clang

import "strings"

// targetInfo describes the data model of the compilation target.
type targetInfo struct {
	triple       string
	arch         string
	pointerWidth int
}

const defaultTriple = "x86_64-pc-linux-gnu"

func newTargetInfo(a *compileArgs) targetInfo {
	triple := defaultTriple
	if a.target != "" {
		triple = a.target
	}
	arch, rest, _ := strings.Cut(triple, "-")
	if a.m32 && arch == "x86_64" {
		arch = "i386"
		triple = arch + "-" + rest
	}
	t := targetInfo{triple: triple, arch: arch, pointerWidth: 64}
	switch arch {
	case "i386", "i486", "i586", "i686", "arm", "armv7", "thumb", "wasm32", "riscv32", "mips", "mipsel", "ppc", "x86":
		t.pointerWidth = 32
	}
	return t
}

func (t targetInfo) windows() bool { return strings.Contains(t.triple, "windows") }

// lp64 reports the LP64 data model (64-bit long and pointers).
func (t targetInfo) lp64() bool { return t.pointerWidth == 64 && !t.windows() }

func (t targetInfo) x86() bool {
	switch t.arch {
	case "i386", "i486", "i586", "i686", "x86":
		return true
	}
	return false
}

// sizeBits returns the width of a builtin type.
func (t targetInfo) sizeBits(k TypeKind) int64 {
	switch k {
	case TypeBool, TypeCharU, TypeUChar, TypeCharS, TypeSChar, TypeVoid:
		return 8
	case TypeShort, TypeUShort, TypeChar16:
		return 16
	case TypeInt, TypeUInt, TypeChar32, TypeWChar, TypeFloat:
		return 32
	case TypeLong, TypeULong:
		if t.lp64() {
			return 64
		}
		return 32
	case TypeLongLong, TypeULongLong, TypeDouble:
		return 64
	case TypeLongDouble:
		switch {
		case t.x86():
			return 96
		case t.windows():
			return 64
		}
		return 128
	case TypeInt128, TypeUInt128:
		return 128
	case TypePointer, TypeNullPtr:
		return int64(t.pointerWidth)
	}
	return 32
}

// alignBits returns the ABI alignment of a builtin type.
func (t targetInfo) alignBits(k TypeKind) int64 {
	if t.x86() {
		switch k {
		case TypeLongLong, TypeULongLong, TypeDouble, TypeLongDouble:
			return 32
		}
	}
	return t.sizeBits(k)
}

func (u *unit) sizeBits(k TypeKind) int64 { return u.target.sizeBits(k) }

// recordLayout is the computed layout of a struct or union definition.
type recordLayout struct {
	size    int64
	align   int64
	offsets map[int32]int64
}

func roundUp(v, align int64) int64 {
	if align <= 0 {
		return v
	}
	return (v + align - 1) / align * align
}

// layoutOf returns the size and alignment of t in bits.
func (u *unit) layoutOf(t typeID) (size, align int64, code TypeLayoutError) {
	d := u.ty(u.desugar(t))
	switch d.kind {
	case TypeInvalid:
		return 0, 0, LayoutErrorInvalid
	case TypeVoid:
		return 0, 0, LayoutErrorIncomplete
	case TypeFunctionProto, TypeFunctionNoProto:
		return 8, 32, 0
	case TypeConstantArray:
		es, ea, c := u.layoutOf(d.elem)
		if c != 0 {
			return 0, 0, c
		}
		return es * d.count, ea, 0
	case TypeIncompleteArray:
		return 0, 0, LayoutErrorIncomplete
	case TypeVariableArray:
		_, ea, c := u.layoutOf(d.elem)
		if c != 0 {
			return 0, 0, c
		}
		return 0, ea, LayoutErrorNotConstantSize
	case TypeRecord:
		l, c := u.recordLayout(u.tagDecl(t))
		if c != 0 {
			return 0, 0, c
		}
		return l.size, l.align, 0
	case TypeEnum:
		if !u.isComplete(t) {
			return 0, 0, LayoutErrorIncomplete
		}
		return u.layoutOf(u.enumIntegerType(t))
	case TypeComplex:
		es, ea, c := u.layoutOf(d.elem)
		return es * 2, ea, c
	case TypeAtomic:
		return u.layoutOf(d.elem)
	}
	return u.target.sizeBits(d.kind), u.target.alignBits(d.kind), 0
}

// recordLayout lays out a record the way the System V ABI does.
func (u *unit) recordLayout(decl int32) (*recordLayout, TypeLayoutError) {
	def := u.definition(decl)
	if def < 0 {
		return nil, LayoutErrorIncomplete
	}
	if l, ok := u.layouts[def]; ok {
		return l, 0
	}
	rec := &u.nodes[def]
	union := rec.kind == CursorUnionDecl
	packed := rec.has(flagPacked)
	l := &recordLayout{align: 8, offsets: map[int32]int64{}}

	var offset int64
	for _, ch := range rec.children {
		m := &u.nodes[ch]
		isField := m.kind == CursorFieldDecl
		if !isField && !m.has(flagAnonMember) {
			continue
		}
		size, align, code := u.layoutOf(m.typ)
		if code == LayoutErrorIncomplete && isField && u.kindOf(m.typ) == TypeIncompleteArray {
			_, align, code = u.layoutOf(u.ty(u.desugar(m.typ)).elem)
			size = 0
		}
		if code != 0 {
			return nil, code
		}
		if packed {
			align = 8
		}
		if m.align > 0 && m.align*8 > align {
			align = m.align * 8
		}

		var at int64
		switch {
		case isField && m.has(flagBitField):
			width := m.bitWidth
			if width == 0 {
				offset = roundUp(offset, align)
				continue
			}
			if !packed && offset%align+width > size {
				offset = roundUp(offset, align)
			}
			at = offset
			if m.name != "" && align > l.align {
				l.align = align
			}
			if union {
				at = 0
				size = width
			} else {
				offset += width
			}
		default:
			if align > l.align {
				l.align = align
			}
			if union {
				at = 0
			} else {
				offset = roundUp(offset, align)
				at = offset
				offset += size
			}
		}
		if union && size > offset {
			offset = size
		}
		l.offsets[ch] = at
		if !isField {
			inner, _ := u.recordLayout(ch)
			if inner != nil {
				for f, off := range inner.offsets {
					l.offsets[f] = at + off
				}
			}
		}
	}
	if rec.align > 0 && rec.align*8 > l.align {
		l.align = rec.align * 8
	}
	l.size = roundUp(offset, l.align)
	u.layouts[def] = l
	return l, 0
}

// lookupField finds a member by name, looking through anonymous members.
func (u *unit) lookupField(rec int32, name string) int32 {
	def := u.definition(rec)
	if def < 0 {
		return -1
	}
	for _, ch := range u.nodes[def].children {
		m := &u.nodes[ch]
		switch {
		case m.kind == CursorFieldDecl && m.name == name:
			return ch
		case m.has(flagAnonMember):
			if f := u.lookupField(ch, name); f >= 0 {
				return f
			}
		}
	}
	return -1
}
