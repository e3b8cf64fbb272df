package clang

import (
	"strconv"
	"strings"
)

// PrintingPolicy controls PrettyPrinted. Unknown properties read as zero.
type PrintingPolicy struct {
	values map[PrintingPolicyProperty]uint
}

// NewPrintingPolicy returns clang's default policy for C.
func NewPrintingPolicy() *PrintingPolicy {
	return &PrintingPolicy{values: map[PrintingPolicyProperty]uint{
		PolicyIndentation:          4,
		PolicyIncludeTagDefinition: 1,
		PolicyBool:                 0,
		PolicyRestrict:             1,
		PolicyUnderscoreAlignof:    1,
		PolicyIncludeNewlines:      1,
	}}
}

func terseDeclPolicy() *PrintingPolicy {
	p := NewPrintingPolicy()
	p.Set(PolicyTerseOutput, 1)
	p.Set(PolicyPolishForDeclaration, 1)
	return p
}

func (p *PrintingPolicy) Get(prop PrintingPolicyProperty) uint { return p.values[prop] }

func (p *PrintingPolicy) Set(prop PrintingPolicyProperty, v uint) { p.values[prop] = v }

func (p *PrintingPolicy) on(prop PrintingPolicyProperty) bool { return p.values[prop] != 0 }

// PrintingPolicy returns the default policy for the cursor's unit.
func (c Cursor) PrintingPolicy() (*PrintingPolicy, error) {
	if _, _, err := c.node(); err != nil {
		return nil, err
	}
	return NewPrintingPolicy(), nil
}

// PrettyPrinted prints a declaration as C source. Expressions and
// statements print as written.
func (c Cursor) PrettyPrinted(p *PrintingPolicy) (string, error) {
	u, n, err := c.node()
	if err != nil {
		return "", err
	}
	if p == nil {
		p = NewPrintingPolicy()
	}
	if n.kind.IsDeclaration() || n.kind == CursorMacroDefinition {
		return u.printDecl(c.id, p), nil
	}
	return u.text(n.begin, n.end), nil
}

func (u *unit) printDecl(id int32, p *PrintingPolicy) string {
	var sb strings.Builder
	u.writeDecl(&sb, id, p, 0)
	return sb.String()
}

func storagePrefix(s StorageClass) string {
	switch s {
	case StorageExtern:
		return "extern "
	case StorageStatic:
		return "static "
	case StorageRegister:
		return "register "
	case StorageAuto:
		return "auto "
	}
	return ""
}

func (u *unit) writeDecl(sb *strings.Builder, id int32, p *PrintingPolicy, depth int) {
	n := &u.nodes[id]
	indent := strings.Repeat(" ", int(p.Get(PolicyIndentation))*depth)
	switch n.kind {
	case CursorFunctionDecl:
		if !p.on(PolicySuppressSpecifiers) {
			sb.WriteString(storagePrefix(n.storage))
			if n.has(flagInline) {
				sb.WriteString("inline ")
			}
		}
		sb.WriteString(u.functionDeclarator(id))
		if !p.on(PolicyTerseOutput) && u.definition(id) == id {
			for _, ch := range n.children {
				if b := &u.nodes[ch]; b.kind == CursorCompoundStmt {
					sb.WriteString(" " + u.text(b.begin, b.end))
				}
			}
		}
	case CursorVarDecl, CursorParmDecl, CursorFieldDecl:
		if !p.on(PolicySuppressSpecifiers) {
			sb.WriteString(storagePrefix(n.storage))
		}
		sb.WriteString(u.declare(n.typ, n.name))
		if n.has(flagBitField) {
			sb.WriteString(" : " + strconv.FormatInt(n.bitWidth, 10))
		}
		if init := u.varInit(id); init >= 0 && n.kind == CursorVarDecl && !p.on(PolicySuppressInitializers) {
			sb.WriteString(" = " + u.text(u.nodes[init].begin, u.nodes[init].end))
		}
	case CursorTypedefDecl:
		sb.WriteString("typedef ")
		sb.WriteString(u.declare(n.aux, n.name))
	case CursorStructDecl, CursorUnionDecl, CursorEnumDecl:
		kw := tagKeyword(n.kind)
		sb.WriteString(kw)
		if n.name != "" {
			sb.WriteString(" " + n.name)
		}
		if !n.has(flagDefinition) || !p.on(PolicyIncludeTagDefinition) || p.on(PolicyTerseOutput) {
			return
		}
		sb.WriteString(" {")
		first := true
		for _, ch := range n.children {
			m := &u.nodes[ch]
			if m.lexParent != id || !(m.kind.IsDeclaration()) {
				continue
			}
			if n.kind == CursorEnumDecl {
				if !first {
					sb.WriteString(",")
				}
				first = false
			}
			sb.WriteString("\n" + indent + strings.Repeat(" ", int(p.Get(PolicyIndentation))))
			u.writeDecl(sb, ch, p, depth+1)
			if n.kind != CursorEnumDecl {
				sb.WriteString(";")
			}
		}
		sb.WriteString("\n" + indent + "}")
	case CursorEnumConstantDecl:
		sb.WriteString(n.name)
		if len(n.children) > 0 {
			e := u.nodes[n.children[len(n.children)-1]]
			sb.WriteString(" = " + u.text(e.begin, e.end))
		}
	case CursorMacroDefinition:
		sb.WriteString("#define " + n.name)
		if n.has(flagFnLike) {
			sb.WriteString("(" + strings.Join(n.params, ", ") + ")")
		}
		if n.body != "" {
			sb.WriteString(" " + n.body)
		}
	default:
		sb.WriteString(u.text(n.begin, n.end))
	}
}

// functionDeclarator prints a function declaration with the parameter
// names it was written with.
func (u *unit) functionDeclarator(fn int32) string {
	n := &u.nodes[fn]
	info := u.ty(u.desugar(n.typ))
	if info.kind != TypeFunctionProto && info.kind != TypeFunctionNoProto {
		return u.declare(n.typ, n.name)
	}
	var names []string
	for _, ch := range n.children {
		if u.nodes[ch].kind == CursorParmDecl && u.nodes[ch].semParent == fn {
			names = append(names, u.nodes[ch].name)
		}
	}
	var ps []string
	for i, t := range info.params {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		ps = append(ps, u.declare(t, name))
	}
	if info.variadic {
		ps = append(ps, "...")
	}
	if info.kind == TypeFunctionProto && len(ps) == 0 {
		ps = append(ps, "void")
	}
	return u.declare(info.elem, n.name+"("+strings.Join(ps, ", ")+")")
}
