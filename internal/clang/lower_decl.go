package clang

import (
	"sort"
	"strings"

	"github.com/mvp-joe/cxgraph/internal/syntax"
)

// declSpec is the lowered declaration-specifier sequence shared by every
// declarator of one declaration.
type declSpec struct {
	typ      typeID
	begin    srcPos
	storage  StorageClass
	typedef  bool
	inline   bool
	noreturn bool
	tls      TLSKind
	quals    qual
	attrs    []attrSpec
	invalid  bool

	// tag is a tag declaration written in the specifiers; owned tags are
	// definitions or forward declarations and become children of each
	// declarator.
	tag      int32
	tagOwned bool

	// ref is the declaration a TypeRef cursor points at, or -1.
	ref     int32
	refName string
	refPos  srcPos
	refEnd  srcPos
	refType typeID
}

// declInfo is the result of applying one declarator to a base type.
type declInfo struct {
	name  string
	loc   srcPos
	end   srcPos
	typ   typeID
	attrs []attrSpec
	// params are the ParmDecls of the function declarator around the name.
	params   []int32
	funcDecl bool
	// inner holds the parameter and array-size cursors in source order.
	inner []int32
}

// attrSpec is one attribute written in a declaration.
type attrSpec struct {
	name  string
	args  []*syntax.Node
	begin srcPos
	end   srcPos
}

// attrName strips the reserved __x__ spelling of an attribute.
func attrName(s string) string {
	if i := strings.LastIndex(s, "::"); i >= 0 {
		s = s[i+2:]
	}
	if strings.HasPrefix(s, "__") && strings.HasSuffix(s, "__") && len(s) > 4 {
		s = s[2 : len(s)-2]
	}
	return s
}

// declNode creates a declaration in the current context.
func (b *builder) declNode(kind CursorKind, name string, loc, begin, end srcPos) int32 {
	id := b.u.newNode(kind, name, loc, begin, end)
	n := &b.u.nodes[id]
	n.semParent, n.lexParent = b.semCtx(), b.ctx
	n.storage = StorageNone
	n.file = b.u.fileIDOf(loc)
	return id
}

// semCtx is the declaration context for ordinary declarations; records do
// not form one in C.
func (b *builder) semCtx() int32 {
	c := b.ctx
	for c > rootNode {
		switch b.u.nodes[c].kind {
		case CursorStructDecl, CursorUnionDecl, CursorEnumDecl:
			c = b.u.nodes[c].semParent
		default:
			return c
		}
	}
	return rootNode
}

func hasDeclarators(n *syntax.Node) bool {
	for _, ch := range n.Children {
		if ch.Field == "declarator" || ch.Kind == "bitfield_clause" {
			return true
		}
	}
	return false
}

// declSpec lowers the specifiers of n. Tags defined by them are appended
// to parent.
func (b *builder) declSpec(n *syntax.Node, parent int32) *declSpec {
	ds := &declSpec{tag: -1, ref: -1, begin: b.pos(n), storage: StorageNone}
	standalone := !hasDeclarators(n) && n.Kind != "parameter_declaration" && n.Kind != "type_descriptor"
	var typeNode *syntax.Node
	for _, ch := range n.Children {
		switch {
		case ch.Field == "type":
			typeNode = ch
		case ch.Field != "":
		case ch.Kind == "storage_class_specifier":
			b.storageClass(ds, ch)
		case ch.Kind == "type_qualifier":
			b.typeQualifier(ds, ch)
		case ch.Kind == "attribute_specifier", ch.Kind == "attribute_declaration":
			ds.attrs = append(ds.attrs, b.attributes(ch)...)
		case ch.Kind == "typedef":
			ds.typedef = true
		}
	}
	if typeNode == nil {
		ds.typ = b.u.builtin(TypeInt)
		if !ds.invalid && n.Kind != "ERROR" {
			b.diags.groupError("implicit-int", catSemantic, ds.begin,
				"type specifier missing, defaults to 'int'; ISO C99 and later do not support implicit int")
		}
	} else {
		b.typeSpecifier(ds, typeNode, parent, standalone)
	}
	ds.typ = b.u.qualified(ds.typ, ds.quals)
	return ds
}

func (b *builder) storageClass(ds *declSpec, n *syntax.Node) {
	set := func(sc StorageClass) {
		if ds.storage != StorageNone && ds.storage != sc {
			b.diags.error(catSemantic, b.pos(n), "cannot combine with previous '%s' declaration specifier", ds.storage.String())
			return
		}
		ds.storage = sc
	}
	switch text := b.src(n); text {
	case "extern":
		set(StorageExtern)
	case "static":
		set(StorageStatic)
	case "auto":
		set(StorageAuto)
	case "register":
		set(StorageRegister)
	case "inline", "__inline", "__inline__", "__forceinline":
		ds.inline = true
	case "thread_local", "_Thread_local", "__thread":
		ds.tls = TLSStatic
	case "constexpr":
		ds.quals |= qualConst
	}
}

func (b *builder) typeQualifier(ds *declSpec, n *syntax.Node) {
	if a := n.ChildOfKind("alignas_qualifier"); a != nil {
		ds.attrs = append(ds.attrs, attrSpec{name: "aligned", args: a.NamedChildren(), begin: b.pos(a), end: b.endPos(a)})
		return
	}
	switch b.src(n) {
	case "const", "constexpr":
		ds.quals |= qualConst
	case "volatile":
		ds.quals |= qualVolatile
	case "restrict", "__restrict", "__restrict__":
		ds.quals |= qualRestrict
	case "_Noreturn", "noreturn":
		ds.noreturn = true
	}
}

// qualifiersOf collects the type qualifiers written directly under n.
func (b *builder) qualifiersOf(n *syntax.Node) qual {
	var ds declSpec
	for _, ch := range n.Children {
		if ch.Kind == "type_qualifier" {
			b.typeQualifier(&ds, ch)
		}
	}
	return ds.quals
}

var primitiveKinds = map[string]TypeKind{
	"void": TypeVoid, "int": TypeInt, "float": TypeFloat, "double": TypeDouble,
	"_Bool": TypeBool, "__int128": TypeInt128, "__int128_t": TypeInt128, "__uint128_t": TypeUInt128,
}

func (b *builder) charKind() TypeKind {
	switch b.u.target.arch {
	case "aarch64", "arm64", "arm", "armv7", "ppc", "ppc64", "ppc64le", "riscv32", "riscv64", "s390x":
		if !strings.Contains(b.u.target.triple, "apple") {
			return TypeCharU
		}
	}
	return TypeCharS
}

func (b *builder) typeSpecifier(ds *declSpec, n *syntax.Node, parent int32, standalone bool) {
	switch n.Kind {
	case "primitive_type", "type_identifier":
		b.namedType(ds, n, b.src(n))
	case "sized_type_specifier":
		ds.typ = b.sizedType(ds, n)
	case "struct_specifier", "union_specifier", "enum_specifier":
		b.tagSpecifier(ds, n, parent, standalone)
	case "macro_type_specifier":
		if td := n.ChildByField("type"); td != nil {
			t, _ := b.typeName(td)
			ds.typ = t
			return
		}
		ds.typ = b.u.builtin(TypeInt)
	default:
		ds.typ, ds.invalid = b.u.builtin(TypeInt), true
	}
}

// namedType resolves a single-word type name: keywords, typedefs and
// object-like macros expanding to a type.
func (b *builder) namedType(ds *declSpec, n *syntax.Node, name string) {
	u := b.u
	if k, ok := primitiveKinds[name]; ok {
		ds.typ = u.builtin(k)
		return
	}
	switch {
	case name == "char":
		ds.typ = u.builtin(b.charKind())
		return
	case name == "bool" && u.c23:
		ds.typ = u.builtin(TypeBool)
		return
	}
	if d := b.sc.lookup(name); d >= 0 && u.nodes[d].kind == CursorTypedefDecl {
		b.markUsed(d)
		ds.typ = u.elaborated(u.nodes[d].typ, "")
		ds.ref, ds.refName, ds.refType = d, name, u.nodes[d].typ
		ds.refPos, ds.refEnd = b.pos(n), b.endPos(n)
		return
	}
	if m := b.macros[name]; m != nil && !m.fnLike {
		toks := b.expand(b.lexHere(n.StartByte, n.EndByte), nil, true, 0)
		p := b.tokenParser(toks, b.pos(n), b.endPos(n))
		if t, ok := p.typeName(); ok && p.done() {
			ds.typ = t
			return
		}
	}
	if name == "__builtin_va_list" {
		ds.typ = b.vaList()
		return
	}
	b.diags.error(catSemantic, b.pos(n), "unknown type name '%s'", name)
	ds.typ, ds.invalid = u.builtin(TypeInt), true
}

// vaList returns the implicit __builtin_va_list typedef.
func (b *builder) vaList() typeID {
	u := b.u
	if d, ok := b.implicit["__builtin_va_list"]; ok {
		return u.nodes[d].typ
	}
	d := u.newNode(CursorTypedefDecl, "__builtin_va_list", noPos, noPos, noPos)
	n := &u.nodes[d]
	n.flags |= flagImplicit
	n.semParent, n.lexParent = rootNode, rootNode
	n.aux = u.pointerTo(u.builtin(b.charKind()))
	n.typ = u.typedefType(d, n.aux)
	u.newEntity(d)
	b.implicit["__builtin_va_list"] = d
	return n.typ
}

func (b *builder) sizedType(ds *declSpec, n *syntax.Node) typeID {
	var signed, unsigned bool
	var short, long int
	base := ""
	for _, ch := range n.Children {
		switch {
		case ch.Field == "type":
			base = b.src(ch)
		case ch.Kind == "type_qualifier":
			b.typeQualifier(ds, ch)
		default:
			switch b.src(ch) {
			case "signed", "__signed", "__signed__":
				signed = true
			case "unsigned":
				unsigned = true
			case "short":
				short++
			case "long":
				long++
			case "int", "char", "double":
				base = b.src(ch)
			}
		}
	}
	u := b.u
	if signed && unsigned {
		b.diags.error(catSemantic, b.pos(n), "cannot combine with previous 'signed' declaration specifier")
	}
	k := TypeInt
	switch base {
	case "char":
		switch {
		case unsigned:
			k = TypeUChar
		case signed:
			k = TypeSChar
		default:
			k = b.charKind()
		}
		return u.builtin(k)
	case "double":
		if long > 0 {
			return u.builtin(TypeLongDouble)
		}
		return u.builtin(TypeDouble)
	case "__int128":
		if unsigned {
			return u.builtin(TypeUInt128)
		}
		return u.builtin(TypeInt128)
	}
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
	return u.builtin(k)
}

// tagSpecifier lowers a struct, union or enum specifier.
func (b *builder) tagSpecifier(ds *declSpec, n *syntax.Node, parent int32, standalone bool) {
	u := b.u
	kind := CursorStructDecl
	switch n.Kind {
	case "union_specifier":
		kind = CursorUnionDecl
	case "enum_specifier":
		kind = CursorEnumDecl
	}
	kw := tagKeyword(kind)
	nameNode := n.ChildByField("name")
	name := ""
	if nameNode != nil && !nameNode.Missing {
		name = b.src(nameNode)
	}
	body := n.ChildByField("body")
	var attrs []attrSpec
	for _, ch := range n.Children {
		if ch.Kind == "attribute_specifier" || ch.Kind == "attribute_declaration" {
			attrs = append(attrs, b.attributes(ch)...)
		}
	}

	var decl int32
	switch {
	case body != nil || (standalone && name != ""):
		decl = b.declareTag(kind, name, nameNode, n, body != nil)
		ds.tag, ds.tagOwned = decl, true
		u.addChild(parent, decl)
		b.applyAttrs(decl, attrs)
		if body != nil {
			b.tagBody(decl, body, n)
		}
	case name == "":
		ds.typ, ds.invalid = u.builtin(TypeInt), true
		return
	default:
		decl = b.referenceTag(kind, name, nameNode, n)
		ds.ref, ds.refName = decl, kw+" "+name
		ds.refPos, ds.refEnd = b.pos(nameNode), b.endPos(nameNode)
		ds.refType = u.nodes[decl].typ
	}
	ds.typ = u.elaborated(u.nodes[decl].typ, kw)
}

// declareTag creates a tag declaration in the current scope, linking it to
// an earlier declaration of the same tag there.
func (b *builder) declareTag(kind CursorKind, name string, nameNode, spec *syntax.Node, defining bool) int32 {
	u := b.u
	loc := b.pos(spec)
	if nameNode != nil && name != "" {
		loc = b.pos(nameNode)
	}
	decl := b.declNode(kind, name, loc, b.pos(spec), b.endPos(spec))
	linked := false
	if prev, ok := b.sc.tags[name]; ok && name != "" {
		p := &u.nodes[prev]
		switch {
		case p.kind != kind:
			e := b.diags.error(catSemantic, loc, "use of '%s' with tag type that does not match previous declaration", name)
			b.diags.note(e, p.loc, "previous use is here")
		case defining && u.definition(prev) >= 0:
			e := b.diags.error(catSemantic, loc, "redefinition of '%s'", name)
			b.diags.note(e, u.nodes[u.definition(prev)].loc, "previous definition is here")
		default:
			u.redeclare(prev, decl)
			linked = true
		}
	}
	if !linked {
		u.newEntity(decl)
		if b.sc.kind == scopePrototype {
			b.diags.warning("visibility", true, false, catSemantic, loc,
				"declaration of '%s' will not be visible outside of this function", tagKeyword(kind)+" "+name)
		}
	}
	if name == "" {
		u.nodes[decl].flags |= flagAnonymous
	} else {
		b.sc.tags[name] = decl
	}
	u.nodes[decl].typ = u.recordType(kind, u.nodes[decl].ent, decl)
	return decl
}

// referenceTag resolves an elaborated type specifier without a body. An
// unknown tag is declared implicitly in the current scope without becoming
// a child cursor.
func (b *builder) referenceTag(kind CursorKind, name string, nameNode, spec *syntax.Node) int32 {
	u := b.u
	if prev := b.sc.lookupTag(name); prev >= 0 {
		if p := &u.nodes[prev]; p.kind != kind {
			e := b.diags.error(catSemantic, b.pos(nameNode), "use of '%s' with tag type that does not match previous declaration", name)
			b.diags.note(e, p.loc, "previous use is here")
		}
		return prev
	}
	decl := b.declareTag(kind, name, nameNode, spec, false)
	u.nodes[decl].flags |= flagHidden
	return decl
}

// tagBody lowers the members of a struct, union or enum definition.
func (b *builder) tagBody(decl int32, body, spec *syntax.Node) {
	saved := b.ctx
	b.ctx = decl
	if b.u.nodes[decl].kind == CursorEnumDecl {
		b.enumBody(decl, body, spec)
	} else {
		members := map[string]int32{}
		var each func([]*syntax.Node)
		each = func(items []*syntax.Node) {
			for _, it := range items {
				switch {
				case it.Kind == "field_declaration":
					b.fieldDeclaration(decl, it, members)
				case b.directive(it, each):
				}
			}
		}
		each(body.Children)
		b.checkFlexibleArray(decl)
	}
	b.ctx = saved
	b.u.markDefinition(decl)
}

func (b *builder) fieldDeclaration(rec int32, n *syntax.Node, members map[string]int32) {
	u := b.u
	ds := b.declSpec(n, rec)
	if !hasDeclarators(n) {
		if ds.tag >= 0 && u.nodes[ds.tag].name == "" && u.nodes[ds.tag].kind != CursorEnumDecl {
			tag := &u.nodes[ds.tag]
			tag.flags |= flagAnonMember
			for _, ch := range tag.children {
				if m := &u.nodes[ch]; m.kind == CursorFieldDecl && m.name != "" {
					b.checkDuplicateMember(m.name, ch, members)
				}
			}
			return
		}
		if ds.tag < 0 || u.nodes[ds.tag].kind != CursorEnumDecl {
			b.diags.warning("missing-declarations", true, false, catSemantic, ds.begin, "declaration does not declare anything")
		}
		return
	}

	last := int32(-1)
	for _, ch := range n.Children {
		switch {
		case ch.Field == "declarator":
			info := b.declarator(ds.typ, ch)
			last = b.fieldDecl(rec, ds, info, n, members)
		case ch.Kind == "bitfield_clause":
			if last < 0 {
				last = b.fieldDecl(rec, ds, &declInfo{typ: ds.typ, loc: b.pos(ch), end: b.endPos(ch)}, n, members)
			}
			b.bitField(last, ch)
			last = -1
		}
	}
}

func (b *builder) checkDuplicateMember(name string, decl int32, members map[string]int32) {
	if prev, ok := members[name]; ok {
		e := b.diags.error(catSemantic, b.u.nodes[decl].loc, "duplicate member '%s'", name)
		b.diags.note(e, b.u.nodes[prev].loc, "previous declaration is here")
		return
	}
	members[name] = decl
}

func (b *builder) fieldDecl(rec int32, ds *declSpec, info *declInfo, n *syntax.Node, members map[string]int32) int32 {
	u := b.u
	loc := info.loc
	if !loc.valid() {
		loc = ds.begin
	}
	id := b.declNode(CursorFieldDecl, info.name, loc, ds.begin, info.end)
	f := &u.nodes[id]
	f.typ = info.typ
	f.semParent, f.lexParent = rec, rec
	b.declChildren(id, ds, info)
	u.addChild(rec, id)
	if info.name != "" {
		b.checkDuplicateMember(info.name, id, members)
	}
	switch {
	case ds.invalid:
	case u.isFunction(info.typ):
		b.diags.error(catSemantic, loc, "field '%s' declared as a function", info.name)
	case u.kindOf(info.typ) == TypeIncompleteArray:
	case !u.isComplete(info.typ):
		b.diags.error(catSemantic, loc, "field has incomplete type '%s'", u.spelling(info.typ))
	}
	return id
}

func (b *builder) bitField(field int32, clause *syntax.Node) {
	u := b.u
	expr := clause.FirstNamedChild()
	if expr == nil {
		return
	}
	w := b.expr(expr)
	u.addChild(field, w)
	f := &u.nodes[field]
	f.flags |= flagBitField
	name := "anonymous bit-field"
	if f.name != "" {
		name = "bit-field '" + f.name + "'"
	}
	if !u.isInteger(f.typ) {
		b.diags.error(catSemantic, f.loc, "%s has non-integral type '%s'", name, u.spelling(f.typ))
		return
	}
	width, ok := b.constInt(w)
	switch {
	case !ok:
		b.diags.error(catSemantic, b.pos(expr), "expression is not an integer constant expression")
	case width < 0:
		b.diags.error(catSemantic, b.pos(expr), "%s has negative width (%d)", name, width)
	case width == 0 && f.name != "":
		b.diags.error(catSemantic, b.pos(expr), "named bit-field '%s' has zero width", f.name)
	default:
		size, _, _ := u.layoutOf(f.typ)
		if width > size {
			b.diags.error(catSemantic, b.pos(expr), "width of %s (%d bits) exceeds the width of its type (%d bits)", name, width, size)
			width = size
		}
		f.bitWidth = width
	}
}

// checkFlexibleArray reports incomplete array members that are not last.
func (b *builder) checkFlexibleArray(rec int32) {
	u := b.u
	var fields []int32
	for _, ch := range u.nodes[rec].children {
		if u.nodes[ch].kind == CursorFieldDecl {
			fields = append(fields, ch)
		}
	}
	for i, f := range fields {
		n := &u.nodes[f]
		if u.kindOf(n.typ) != TypeIncompleteArray {
			continue
		}
		switch {
		case i != len(fields)-1:
			b.diags.error(catSemantic, n.loc, "flexible array member '%s' with type '%s' is not at the end of %s",
				n.name, u.spelling(n.typ), tagKeyword(u.nodes[rec].kind))
		case len(fields) == 1 && u.nodes[rec].kind == CursorStructDecl:
			b.diags.error(catSemantic, n.loc, "flexible array member '%s' not allowed in otherwise empty struct", n.name)
		}
	}
}

func (b *builder) enumBody(decl int32, body, spec *syntax.Node) {
	u := b.u
	fixed := invalidType
	if ut := spec.ChildByField("underlying_type"); ut != nil {
		t, _ := b.typeName(ut)
		fixed = t
		u.nodes[decl].aux = t
	}
	next, min, max := int64(0), int64(0), int64(0)
	seen := false
	var each func([]*syntax.Node)
	each = func(items []*syntax.Node) {
		for _, it := range items {
			if it.Kind != "enumerator" {
				b.directive(it, each)
				continue
			}
			nameNode := it.ChildByField("name")
			if nameNode == nil || nameNode.Missing {
				continue
			}
			name := b.src(nameNode)
			id := b.declNode(CursorEnumConstantDecl, name, b.pos(nameNode), b.pos(it), b.endPos(it))
			c := &u.nodes[id]
			c.semParent, c.lexParent = decl, decl
			if v := it.ChildByField("value"); v != nil {
				e := b.expr(v)
				u.addChild(id, e)
				if val, ok := b.constInt(e); ok {
					next = val
				} else if e >= 0 && u.nodes[e].typ != invalidType {
					b.diags.error(catSemantic, b.pos(v), "expression is not an integer constant expression")
				}
			}
			c = &u.nodes[id]
			c.intVal = next
			c.flags |= flagHasValue
			c.typ = u.builtin(TypeInt)
			if next > 2147483647 || next < -2147483648 {
				c.typ = u.builtin(TypeLong)
				if !u.target.lp64() {
					c.typ = u.builtin(TypeLongLong)
				}
			}
			if fixed != invalidType {
				c.typ = u.nodes[decl].typ
			}
			if !seen || next < min {
				min = next
			}
			if !seen || next > max {
				max = next
			}
			seen = true
			next++

			if prev, ok := b.sc.ordinary[name]; ok {
				if !b.checkRedeclaration(prev, id) {
					u.newEntity(id)
				}
			} else {
				u.newEntity(id)
			}
			b.sc.declare(name, id)
			u.markDefinition(id)
			u.addChild(decl, id)
		}
	}
	each(body.Children)
	if fixed == invalidType {
		u.nodes[decl].aux = b.enumIntegerKind(min, max)
	}
}

// enumIntegerKind picks the integer type compatible with an enumeration
// holding values in [min, max].
func (b *builder) enumIntegerKind(min, max int64) typeID {
	u := b.u
	switch {
	case min >= 0 && max <= 4294967295:
		return u.builtin(TypeUInt)
	case min >= -2147483648 && max <= 2147483647:
		return u.builtin(TypeInt)
	case min >= 0:
		if u.target.lp64() {
			return u.builtin(TypeULong)
		}
		return u.builtin(TypeULongLong)
	}
	if u.target.lp64() {
		return u.builtin(TypeLong)
	}
	return u.builtin(TypeLongLong)
}

// declarator applies a declarator to base, outermost operator first.
func (b *builder) declarator(base typeID, d *syntax.Node) *declInfo {
	info := &declInfo{typ: base, loc: noPos, end: b.endPos(d)}
	b.applyDeclarator(info, base, d)
	sort.SliceStable(info.inner, func(i, j int) bool {
		return b.u.comparePos(b.u.nodes[info.inner[i]].begin, b.u.nodes[info.inner[j]].begin) < 0
	})
	return info
}

// namesDirectly reports whether d is the declared name, possibly in
// parentheses.
func namesDirectly(d *syntax.Node) bool {
	for d != nil {
		switch d.Kind {
		case "identifier", "field_identifier", "type_identifier":
			return true
		case "parenthesized_declarator", "attributed_declarator":
			d = innerDeclarator(d)
		default:
			return false
		}
	}
	return false
}

func innerDeclarator(d *syntax.Node) *syntax.Node {
	if in := d.ChildByField("declarator"); in != nil {
		return in
	}
	for _, ch := range d.Children {
		if ch.Named && ch.Kind != "attribute_specifier" && ch.Kind != "attribute_declaration" &&
			ch.Kind != "type_qualifier" && ch.Kind != "comment" && ch.Kind != "ms_call_modifier" {
			return ch
		}
	}
	return nil
}

func (b *builder) applyDeclarator(info *declInfo, t typeID, d *syntax.Node) {
	u := b.u
	if d == nil {
		info.typ = t
		return
	}
	for _, ch := range d.Children {
		if ch.Kind == "attribute_specifier" || ch.Kind == "attribute_declaration" {
			info.attrs = append(info.attrs, b.attributes(ch)...)
		}
	}
	switch d.Kind {
	case "identifier", "field_identifier", "type_identifier", "primitive_type":
		info.name, info.loc, info.typ = b.src(d), b.pos(d), t
	case "pointer_declarator", "abstract_pointer_declarator":
		b.applyDeclarator(info, u.qualified(u.pointerTo(t), b.qualifiersOf(d)), d.ChildByField("declarator"))
	case "array_declarator", "abstract_array_declarator":
		count := int64(-1)
		if size := d.ChildByField("size"); size != nil {
			count = b.arraySize(info, size)
		} else if d.HasChildOfKind("*") {
			count = -2
		}
		if !u.isComplete(t) && !u.isFunction(t) && u.kindOf(t) != TypeInvalid {
			b.diags.error(catSemantic, b.pos(d), "array has incomplete element type '%s'", u.spelling(t))
		}
		b.applyDeclarator(info, u.qualified(u.arrayOf(t, count), b.qualifiersOf(d)), d.ChildByField("declarator"))
	case "function_declarator", "abstract_function_declarator":
		params, types, variadic, proto := b.parameters(d.ChildByField("parameters"))
		info.inner = append(info.inner, params...)
		switch {
		case u.isArray(t):
			b.diags.error(catSemantic, b.pos(d), "function cannot return array type '%s'", u.spelling(t))
		case u.isFunction(t):
			b.diags.error(catSemantic, b.pos(d), "function cannot return function type '%s'", u.spelling(t))
		}
		inner := d.ChildByField("declarator")
		if namesDirectly(inner) {
			info.params, info.funcDecl = params, true
		}
		b.applyDeclarator(info, u.functionOf(t, types, variadic, proto), inner)
	case "parenthesized_declarator", "abstract_parenthesized_declarator", "attributed_declarator":
		b.applyDeclarator(info, t, innerDeclarator(d))
	default:
		info.typ = t
	}
}

// arraySize evaluates an array bound. Non-constant bounds make a VLA.
func (b *builder) arraySize(info *declInfo, size *syntax.Node) int64 {
	e := b.expr(size)
	if e < 0 {
		return -1
	}
	info.inner = append(info.inner, e)
	u := b.u
	if !u.isInteger(u.nodes[e].typ) {
		if u.nodes[e].typ != invalidType {
			b.diags.error(catSemantic, b.pos(size), "size of array has non-integer type '%s'", u.spelling(u.nodes[e].typ))
		}
		return -1
	}
	v, ok := b.constInt(e)
	switch {
	case !ok:
		if b.sc.kind == scopeFile {
			b.diags.error(catSemantic, b.pos(size), "variable length array declaration not allowed at file scope")
			return -1
		}
		return -2
	case v < 0:
		b.diags.error(catSemantic, b.pos(size), "array size is negative")
		return -1
	}
	return v
}

// parameters lowers a parameter list in a prototype scope.
func (b *builder) parameters(list *syntax.Node) (params []int32, types []typeID, variadic, proto bool) {
	u := b.u
	if list == nil {
		return nil, nil, false, false
	}
	proto = u.c23
	b.pushScope(scopePrototype)
	defer b.popScope()
	seen := map[string]int32{}
	for _, p := range list.Children {
		switch p.Kind {
		case "variadic_parameter", "...":
			variadic, proto = true, true
		case "identifier":
			id := b.declNode(CursorParmDecl, b.src(p), b.pos(p), b.pos(p), b.endPos(p))
			u.nodes[id].typ = u.builtin(TypeInt)
			u.newEntity(id)
			params = append(params, id)
			proto = false
		case "parameter_declaration":
			proto = true
			ds := b.declSpec(p, -1)
			d := p.ChildByField("declarator")
			if d == nil && u.kindOf(ds.typ) == TypeVoid && len(list.NamedChildren()) == 1 {
				continue
			}
			info := b.declarator(ds.typ, d)
			t := info.typ
			switch {
			case u.isArray(t):
				t = u.qualified(u.pointerTo(u.ty(u.desugar(t)).elem), u.ty(t).quals)
			case u.isFunction(t):
				t = u.pointerTo(t)
			case u.isVoid(t):
				b.diags.error(catSemantic, b.pos(p), "'void' must be the first and only parameter if specified")
			}
			if ds.storage != StorageNone && ds.storage != StorageRegister {
				b.diags.error(catSemantic, ds.begin, "invalid storage class specifier in function declarator")
			}
			loc := info.loc
			if !loc.valid() {
				loc = b.pos(p)
			}
			id := b.declNode(CursorParmDecl, info.name, loc, b.pos(p), b.endPos(p))
			n := &u.nodes[id]
			n.typ = t
			if ds.storage == StorageRegister {
				n.storage = StorageRegister
			}
			b.declChildren(id, ds, info)
			u.newEntity(id)
			if info.name != "" {
				if prev, ok := seen[info.name]; ok {
					e := b.diags.error(catSemantic, loc, "redefinition of parameter '%s'", info.name)
					b.diags.note(e, u.nodes[prev].loc, "previous declaration is here")
				} else {
					seen[info.name] = id
					b.sc.declare(info.name, id)
				}
			}
			params = append(params, id)
		}
	}
	for _, p := range params {
		types = append(types, u.nodes[p].typ)
	}
	return params, types, variadic, proto
}

// typeName lowers a type_descriptor (casts, sizeof, compound literals).
func (b *builder) typeName(td *syntax.Node) (typeID, *declSpec) {
	if td.Kind != "type_descriptor" {
		ds := &declSpec{tag: -1, ref: -1, begin: b.pos(td), storage: StorageNone}
		b.typeSpecifier(ds, td, -1, false)
		return ds.typ, ds
	}
	ds := b.declSpec(td, -1)
	info := b.declarator(ds.typ, td.ChildByField("declarator"))
	return info.typ, ds
}

// typeRef creates the TypeRef cursor for a specifier's named type.
func (b *builder) typeRef(ds *declSpec) int32 {
	if ds == nil || ds.ref < 0 {
		return -1
	}
	id := b.u.newNode(CursorTypeRef, ds.refName, ds.refPos, ds.refPos, ds.refEnd)
	n := &b.u.nodes[id]
	n.ref, n.typ = ds.ref, ds.refType
	return id
}

// declChildren attaches attributes, the specifier's tag or TypeRef, and the
// declarator's inner cursors to decl.
func (b *builder) declChildren(decl int32, ds *declSpec, info *declInfo) {
	u := b.u
	b.applyAttrs(decl, ds.attrs)
	b.applyAttrs(decl, info.attrs)
	n := &u.nodes[decl]
	if ds.noreturn {
		n.flags |= flagNoReturn
	}
	if ds.tagOwned {
		u.addChild(decl, ds.tag)
	} else {
		u.addChild(decl, b.typeRef(ds))
	}
	for _, in := range info.inner {
		u.addChild(decl, in)
	}
}

// attributes decodes one attribute specifier into its attributes.
func (b *builder) attributes(n *syntax.Node) []attrSpec {
	var out []attrSpec
	var walk func(*syntax.Node)
	walk = func(item *syntax.Node) {
		switch item.Kind {
		case "identifier":
			out = append(out, attrSpec{name: attrName(b.src(item)), begin: b.pos(item), end: b.endPos(item)})
		case "call_expression":
			fn := item.ChildByField("function")
			if fn == nil {
				return
			}
			a := attrSpec{name: attrName(b.src(fn)), begin: b.pos(item), end: b.endPos(item)}
			if args := item.ChildByField("arguments"); args != nil {
				a.args = args.NamedChildren()
			}
			out = append(out, a)
		case "attribute":
			nm := item.ChildByField("name")
			if nm == nil {
				return
			}
			a := attrSpec{name: attrName(b.src(nm)), begin: b.pos(item), end: b.endPos(item)}
			if args := item.ChildByField("arguments"); args != nil {
				a.args = args.NamedChildren()
			}
			out = append(out, a)
		case "argument_list", "attribute_specifier", "attribute_declaration", "parenthesized_expression":
			for _, ch := range item.NamedChildren() {
				walk(ch)
			}
		}
	}
	walk(n)
	return out
}

// attrInt evaluates an integer attribute argument.
func (b *builder) attrInt(arg *syntax.Node) (int64, bool) {
	toks := b.expand(b.lexHere(arg.StartByte, arg.EndByte), nil, false, 0)
	p := b.tokenParser(toks, b.pos(arg), b.endPos(arg))
	e := p.expr()
	if e < 0 || !p.done() {
		return 0, false
	}
	return b.constInt(e)
}

func (b *builder) attrString(arg *syntax.Node) string {
	if arg.Kind == "string_literal" || arg.Kind == "concatenated_string" {
		s, _ := unescape(literalBody(b.src(arg)))
		return s
	}
	return b.src(arg)
}

// unexposedAttrs are attributes recognised without a dedicated cursor.
var unexposedAttrs = map[string]bool{
	"always_inline": true, "noinline": true, "format": true, "format_arg": true, "nonnull": true, "section": true,
	"weak": true, "alias": true, "cleanup": true, "constructor": true, "destructor": true, "malloc": true,
	"returns_nonnull": true, "sentinel": true, "fallthrough": true, "nothrow": true, "leaf": true, "cold": true,
	"hot": true, "artificial": true, "gnu_inline": true, "mode": true, "may_alias": true, "transparent_union": true,
	"vector_size": true, "access": true, "alloc_size": true, "warning": true, "error": true,
	"no_instrument_function": true, "regparm": true, "stdcall": true, "cdecl": true, "fastcall": true,
	"ms_abi": true, "sysv_abi": true, "naked": true, "optimize": true, "target": true, "copy": true,
	"flatten": true, "retain": true, "nocommon": true, "common": true, "tls_model": true, "weakref": true,
	"externally_visible": true, "noclone": true, "noipa": true, "no_sanitize": true, "no_stack_protector": true,
	"overloadable": true, "enable_if": true, "diagnose_if": true, "swift_name": true, "availability": true,
	"objc_boxable": true, "returns_twice": true, "alloc_align": true, "assume_aligned": true, "counted_by": true,
	"nodebug": true, "reproducible": true, "unsequenced": true,
}

// applyAttrs turns attributes into attribute cursors on decl.
func (b *builder) applyAttrs(decl int32, attrs []attrSpec) {
	u := b.u
	for _, a := range attrs {
		kind := CursorUnexposedAttr
		name := a.name
		n := &u.nodes[decl]
		switch a.name {
		case "packed":
			kind = CursorPackedAttr
			n.flags |= flagPacked
		case "aligned", "_Alignas", "alignas":
			kind = CursorAlignedAttr
			align := int64(16)
			switch {
			case len(a.args) == 0:
			case a.args[0].Kind == "type_descriptor":
				t, _ := b.typeName(a.args[0])
				_, al, _ := u.layoutOf(t)
				align = al / 8
			default:
				if v, ok := b.attrInt(a.args[0]); ok {
					align = v
				}
			}
			if align <= 0 || align&(align-1) != 0 {
				b.diags.error(catSemantic, a.begin, "requested alignment is not a power of 2")
				continue
			}
			n = &u.nodes[decl]
			if align > n.align {
				n.align = align
			}
		case "visibility":
			kind = CursorVisibilityAttr
			if len(a.args) > 0 {
				name = b.attrString(a.args[0])
			}
			switch name {
			case "hidden", "internal":
				n.visibility = VisibilityHidden
			case "protected":
				n.visibility = VisibilityProtected
			default:
				n.visibility = VisibilityDefault
			}
		case "deprecated":
			n.availability = AvailabilityDeprecated
		case "unavailable":
			n.availability = AvailabilityNotAvailable
		case "noreturn", "_Noreturn":
			n.flags |= flagNoReturn
		case "const":
			kind = CursorConstAttr
		case "pure":
			kind = CursorPureAttr
		case "warn_unused_result", "nodiscard":
			kind = CursorWarnUnusedResult
			n.flags |= flagWarnUnused
		case "annotate":
			kind = CursorAnnotateAttr
			if len(a.args) > 0 {
				name = b.attrString(a.args[0])
			}
		case "unused", "maybe_unused", "used":
			n.flags |= flagUsed
		default:
			if !unexposedAttrs[a.name] {
				b.diags.warning("unknown-attributes", true, false, catSemantic, a.begin, "unknown attribute '%s' ignored", a.name)
				continue
			}
		}
		id := u.newNode(kind, name, a.begin, a.begin, a.end)
		u.nodes[id].semParent, u.nodes[id].lexParent = decl, decl
		u.addChild(decl, id)
	}
}

// standaloneTag lowers "struct S {...};" and "struct S;".
func (b *builder) standaloneTag(n *syntax.Node, parent int32) {
	ds := &declSpec{tag: -1, ref: -1, begin: b.pos(n), storage: StorageNone}
	b.tagSpecifier(ds, n, parent, true)
}

// declaration lowers a declaration and appends its cursors to parent.
func (b *builder) declaration(n *syntax.Node, parent int32) []int32 {
	ds := b.declSpec(n, parent)
	var out []int32
	for _, d := range n.ChildrenByField("declarator") {
		var value *syntax.Node
		end := b.endPos(d)
		if d.Kind == "init_declarator" {
			value = d.ChildByField("value")
			d = d.ChildByField("declarator")
		}
		info := b.declarator(ds.typ, d)
		info.end = end
		var id int32
		switch {
		case ds.typedef:
			id = b.typedefDecl(ds, info)
		case b.u.isFunction(info.typ):
			id = b.functionDecl(ds, info)
			if value != nil {
				b.diags.error(catSemantic, info.loc, "illegal initializer (only variables can be initialized)")
			}
		default:
			id = b.varDecl(ds, info, value)
		}
		b.u.addChild(parent, id)
		out = append(out, id)
	}
	if len(out) == 0 && ds.tag < 0 && !ds.invalid {
		b.diags.warning("missing-declarations", true, false, catSemantic, ds.begin, "declaration does not declare anything")
	}
	return out
}

// typeDefinition lowers a typedef.
func (b *builder) typeDefinition(n *syntax.Node, parent int32) {
	ds := b.declSpec(n, parent)
	ds.typedef = true
	for _, d := range n.ChildrenByField("declarator") {
		info := b.declarator(ds.typ, d)
		b.u.addChild(parent, b.typedefDecl(ds, info))
	}
}

func (b *builder) typedefDecl(ds *declSpec, info *declInfo) int32 {
	u := b.u
	id := b.declNode(CursorTypedefDecl, info.name, info.loc, ds.begin, info.end)
	u.nodes[id].aux = info.typ
	if prev, ok := b.sc.ordinary[info.name]; ok {
		if !b.checkRedeclaration(prev, id) {
			u.newEntity(id)
		}
	} else {
		u.newEntity(id)
	}
	u.nodes[id].typ = u.typedefType(u.canonical(id), info.typ)
	b.sc.declare(info.name, id)
	b.declChildren(id, ds, info)
	return id
}

// functionDecl creates a function declaration and links it to earlier
// declarations of the same function.
func (b *builder) functionDecl(ds *declSpec, info *declInfo) int32 {
	u := b.u
	id := b.declNode(CursorFunctionDecl, info.name, info.loc, ds.begin, info.end)
	fn := &u.nodes[id]
	fn.typ = info.typ
	fn.storage = ds.storage
	ft := u.ty(u.desugar(info.typ))
	if ds.inline {
		fn.flags |= flagInline
	}
	if ft.variadic {
		fn.flags |= flagVariadic
	}
	if ft.kind == TypeFunctionProto {
		fn.flags |= flagProto
	}
	if noreturnLibrary[info.name] {
		fn.flags |= flagNoReturn
	}
	switch ds.storage {
	case StorageAuto, StorageRegister:
		b.diags.error(catSemantic, ds.begin, "illegal storage class on function")
	case StorageStatic:
		if b.sc.kind != scopeFile {
			b.diags.error(catSemantic, ds.begin, "function declared in block scope cannot have 'static' storage class")
		}
	}
	if b.sc.kind != scopeFile {
		fn.semParent = rootNode
	}
	for _, p := range info.params {
		u.nodes[p].semParent, u.nodes[p].lexParent = id, id
	}

	prev := int32(-1)
	if p, ok := b.sc.ordinary[info.name]; ok {
		prev = p
	} else if p, ok := b.fileScope.ordinary[info.name]; ok && b.sc.kind != scopeFile {
		prev = p
	}
	if prev >= 0 && b.checkRedeclaration(prev, id) {
		first := &u.nodes[u.canonical(id)]
		if ds.storage == StorageStatic && first.storage != StorageStatic && !first.has(flagImplicit) {
			e := b.diags.error(catSemantic, info.loc, "static declaration of '%s' follows non-static declaration", info.name)
			b.diags.note(e, u.nodes[prev].loc, "previous declaration is here")
		}
		if u.nodes[prev].has(flagNoReturn) {
			u.nodes[id].flags |= flagNoReturn
		}
	} else {
		u.newEntity(id)
		b.checkLibraryRedeclaration(id)
	}
	b.sc.declare(info.name, id)
	b.declChildren(id, ds, info)
	return id
}

// varDecl creates a variable declaration and lowers its initializer.
func (b *builder) varDecl(ds *declSpec, info *declInfo, value *syntax.Node) int32 {
	u := b.u
	id := b.declNode(CursorVarDecl, info.name, info.loc, ds.begin, info.end)
	v := &u.nodes[id]
	v.typ, v.storage, v.tls = info.typ, ds.storage, ds.tls
	fileScope := b.sc.kind == scopeFile
	extern := ds.storage == StorageExtern
	if !fileScope && extern {
		v.semParent = rootNode
	}
	if fileScope && (ds.storage == StorageAuto || ds.storage == StorageRegister) {
		b.diags.error(catSemantic, ds.begin, "illegal storage class on file-scoped variable")
	}

	prev := int32(-1)
	if p, ok := b.sc.ordinary[info.name]; ok {
		prev = p
	} else if p, ok := b.fileScope.ordinary[info.name]; ok && extern && !fileScope {
		prev = p
	}
	if prev >= 0 && b.checkRedeclaration(prev, id) {
		if def := u.definition(prev); value != nil && fileScope && def >= 0 && !u.nodes[def].has(flagTentative) {
			e := b.diags.error(catSemantic, info.loc, "redefinition of '%s'", info.name)
			b.diags.note(e, u.nodes[def].loc, "previous definition is here")
		}
	} else {
		u.newEntity(id)
	}
	b.sc.declare(info.name, id)
	b.declChildren(id, ds, info)

	switch {
	case value != nil:
		switch {
		case extern && !fileScope:
			b.diags.error(catSemantic, info.loc, "declaration of block scope identifier with linkage cannot have an initializer")
		case extern:
			b.diags.warning("extern-initializer", true, false, catSemantic, info.loc, "'extern' variable has an initializer")
		}
		init, t := b.initializer(value, u.nodes[id].typ)
		u.nodes[id].typ = t
		u.addChild(id, init)
		u.markDefinition(id)
	case fileScope && !extern:
		u.nodes[id].flags |= flagTentative
		u.markDefinition(id)
	case !fileScope && !extern:
		u.markDefinition(id)
	}
	v = &u.nodes[id]
	if !extern && !ds.invalid && (!fileScope || value != nil) && !u.isComplete(v.typ) && u.kindOf(v.typ) != TypeVariableArray {
		if u.kindOf(v.typ) == TypeIncompleteArray && !fileScope {
			b.diags.error(catSemantic, info.loc, "definition of variable with array type needs an explicit size or an initializer")
		} else if u.kindOf(v.typ) != TypeIncompleteArray {
			b.diags.error(catSemantic, info.loc, "variable has incomplete type '%s'", u.spelling(v.typ))
		}
	}
	if !fileScope && !extern && b.fn != nil {
		b.fn.locals = append(b.fn.locals, id)
	}
	return id
}

// functionDefinition lowers a function with its body.
func (b *builder) functionDefinition(n *syntax.Node, parent int32) {
	u := b.u
	ds := b.declSpec(n, parent)
	info := b.declarator(ds.typ, n.ChildByField("declarator"))
	info.end = b.endPos(n)
	if !u.isFunction(info.typ) || !info.funcDecl {
		b.diags.error(catSemantic, b.pos(n), "expected ';' after top level declarator")
		u.addChild(parent, b.varDecl(ds, info, nil))
		return
	}
	b.oldStyleParams(n, info)

	id := b.functionDecl(ds, info)
	if def := u.definition(id); def >= 0 && def != id {
		e := b.diags.error(catSemantic, info.loc, "redefinition of '%s'", info.name)
		b.diags.note(e, u.nodes[def].loc, "previous definition is here")
	}
	u.markDefinition(id)
	if u.nodes[u.canonical(id)].storage == StorageStatic || ds.storage == StorageStatic {
		b.statics = append(b.statics, id)
	}
	u.addChild(parent, id)

	body := n.ChildByField("body")
	if body == nil || b.skipBody() {
		return
	}
	for _, p := range info.params {
		if pn := &u.nodes[p]; pn.name == "" && !u.c23 && u.kindOf(pn.typ) != TypeVoid {
			b.diags.warning("c23-extensions", true, false, catSemantic, pn.loc,
				"omitting the parameter name in a function definition is a C23 extension")
		}
	}
	savedFn, savedCtx := b.fn, b.ctx
	b.ctx = id
	b.fn = &funcState{
		decl:   id,
		name:   info.name,
		result: u.ty(u.desugar(info.typ)).elem,
		labels: map[string]label{},
	}
	b.fn.scope = b.pushScope(scopeFunction)
	for _, p := range info.params {
		b.sc.declare(u.nodes[p].name, p)
	}
	stmt := b.compound(body, true)
	u.addChild(id, stmt)
	b.finishFunction(id, stmt, srcPos{b.buf, body.EndByte - 1})
	b.popScope()
	b.fn, b.ctx = savedFn, savedCtx
}

func (b *builder) skipBody() bool {
	if b.flags.Has(FlagSkipFunctionBodies) {
		return true
	}
	return b.flags.Has(FlagLimitSkipFunctionBodiesToPreamble) && !b.inMainFile()
}

// oldStyleParams applies K&R parameter declarations to identifier-list
// parameters.
func (b *builder) oldStyleParams(n *syntax.Node, info *declInfo) {
	u := b.u
	for _, ch := range n.Children {
		if ch.Kind != "declaration" {
			continue
		}
		ds := b.declSpec(ch, -1)
		for _, d := range ch.ChildrenByField("declarator") {
			pi := b.declarator(ds.typ, d)
			found := false
			for _, p := range info.params {
				if u.nodes[p].name == pi.name {
					u.nodes[p].typ = pi.typ
					u.nodes[p].end = b.endPos(ch)
					b.declChildren(p, ds, pi)
					found = true
				}
			}
			if !found {
				b.diags.error(catSemantic, pi.loc, "parameter named '%s' is missing", pi.name)
			}
		}
	}
}

// finishFunction resolves labels and runs end-of-body checks.
func (b *builder) finishFunction(fn, body int32, closing srcPos) {
	u := b.u
	for _, g := range b.fn.gotos {
		ref := &u.nodes[g]
		l, ok := b.fn.labels[ref.name]
		if !ok {
			b.diags.error(catSemantic, ref.loc, "use of undeclared label '%s'", ref.name)
			continue
		}
		ref.ref = l.stmt
		u.nodes[l.stmt].flags |= flagUsed
	}
	for name, l := range b.fn.labels {
		if !u.nodes[l.stmt].has(flagUsed) {
			b.diags.warning("unused-label", false, true, catSemantic, l.pos, "unused label '%s'", name)
		}
	}
	b.checkUnusedLocals()
	b.checkReturn(fn, body, closing)
}
