package clang

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Cursor is a handle to a node of a translation unit. The zero value is
// not valid; use NullCursor.
type Cursor struct {
	tu  *TranslationUnit
	gen uint64
	id  int32
}

// NullCursor returns the cursor that points nowhere. Its kind is
// CursorInvalidFile.
func NullCursor() Cursor { return Cursor{id: -1} }

func (t *TranslationUnit) cursor(gen uint64, id int32) Cursor {
	if id < 0 {
		return NullCursor()
	}
	return Cursor{tu: t, gen: gen, id: id}
}

func (c Cursor) IsNull() bool { return c.tu == nil || c.id < 0 }

func (c Cursor) derive(id int32) Cursor { return c.tu.cursor(c.gen, id) }

// node resolves the cursor, failing for null and stale handles.
func (c Cursor) node() (*unit, *node, error) {
	if c.IsNull() {
		return nil, nil, invalidHandle("null cursor")
	}
	u, err := c.tu.check(c.gen)
	if err != nil {
		return nil, nil, err
	}
	return u, &u.nodes[c.id], nil
}

// Equal reports whether both cursors name the same node of the same
// generation. Null cursors are equal to each other.
func (c Cursor) Equal(o Cursor) bool {
	if c.IsNull() || o.IsNull() {
		return c.IsNull() && o.IsNull()
	}
	return c.tu == o.tu && c.gen == o.gen && c.id == o.id
}

// Hash is stable for the lifetime of a generation.
func (c Cursor) Hash() uint64 {
	if c.IsNull() {
		return 0
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%s/%d/%d", c.tu.index.id, c.gen, c.id)
	fmt.Fprintf(h, "/%p", c.tu)
	return h.Sum64()
}

// Kind returns CursorInvalidFile for the null cursor.
func (c Cursor) Kind() (CursorKind, error) {
	if c.IsNull() {
		return CursorInvalidFile, nil
	}
	_, n, err := c.node()
	if err != nil {
		return CursorInvalidCode, err
	}
	return n.kind, nil
}

// Spelling is the declared or referenced name, the literal text, or the
// main file name for the translation unit cursor.
func (c Cursor) Spelling() (string, error) {
	if c.IsNull() {
		return "", nil
	}
	_, n, err := c.node()
	if err != nil {
		return "", err
	}
	return n.name, nil
}

// DisplayName adds the parameter types to function names.
func (c Cursor) DisplayName() (string, error) {
	u, n, err := c.node()
	if err != nil {
		return "", err
	}
	if n.kind != CursorFunctionDecl {
		return n.name, nil
	}
	fn := u.ty(u.desugar(n.typ))
	var ps []string
	for _, p := range fn.params {
		ps = append(ps, u.spelling(p))
	}
	if fn.variadic {
		ps = append(ps, "...")
	}
	return n.name + "(" + strings.Join(ps, ", ") + ")", nil
}

func (c Cursor) Location() (SourceLocation, error) {
	if c.IsNull() {
		return NullLocation(), nil
	}
	_, n, err := c.node()
	if err != nil {
		return NullLocation(), err
	}
	return c.tu.location(c.gen, n.loc, n.spell), nil
}

// Extent is the half-open source range covered by the cursor.
func (c Cursor) Extent() (SourceRange, error) {
	if c.IsNull() {
		return NullRange(), nil
	}
	_, n, err := c.node()
	if err != nil {
		return NullRange(), err
	}
	return c.tu.sourceRange(c.gen, n.begin, n.end), nil
}

func (c Cursor) Type() (Type, error) {
	_, n, err := c.node()
	if err != nil {
		return Type{}, err
	}
	return c.tu.typ(c.gen, n.typ), nil
}

// ResultType returns the return type of a function declaration.
func (c Cursor) ResultType() (Type, error) {
	u, n, err := c.node()
	if err != nil {
		return Type{}, err
	}
	if !u.isFunction(n.typ) {
		return c.tu.typ(c.gen, invalidType), nil
	}
	return c.tu.typ(c.gen, u.ty(u.desugar(n.typ)).elem), nil
}

func (c Cursor) TypedefUnderlyingType() (Type, error) {
	_, n, err := c.node()
	if err != nil {
		return Type{}, err
	}
	if n.kind != CursorTypedefDecl {
		return c.tu.typ(c.gen, invalidType), nil
	}
	return c.tu.typ(c.gen, n.aux), nil
}

func (c Cursor) EnumIntegerType() (Type, error) {
	_, n, err := c.node()
	if err != nil {
		return Type{}, err
	}
	if n.kind != CursorEnumDecl {
		return c.tu.typ(c.gen, invalidType), nil
	}
	return c.tu.typ(c.gen, n.aux), nil
}

func (c Cursor) enumConstant() (*node, error) {
	_, n, err := c.node()
	if err != nil {
		return nil, err
	}
	if n.kind != CursorEnumConstantDecl {
		return nil, unsupported("enum value of %s cursor", n.kind)
	}
	return n, nil
}

// EnumValue returns the value of an enum constant.
func (c Cursor) EnumValue() (int64, error) {
	n, err := c.enumConstant()
	if err != nil {
		return 0, err
	}
	return n.intVal, nil
}

func (c Cursor) EnumUnsignedValue() (uint64, error) {
	n, err := c.enumConstant()
	if err != nil {
		return 0, err
	}
	return uint64(n.intVal), nil
}

// FieldBitWidth returns -1 for anything but a bit-field.
func (c Cursor) FieldBitWidth() (int64, error) {
	_, n, err := c.node()
	if err != nil {
		return -1, err
	}
	if !n.has(flagBitField) {
		return -1, nil
	}
	return n.bitWidth, nil
}

func (c Cursor) flag(f nodeFlags) (bool, error) {
	_, n, err := c.node()
	if err != nil {
		return false, err
	}
	return n.has(f), nil
}

func (c Cursor) IsBitField() (bool, error) { return c.flag(flagBitField) }

// IsAnonymous reports a tag declared without a name.
func (c Cursor) IsAnonymous() (bool, error) { return c.flag(flagAnonymous) }

// IsAnonymousRecordDecl reports an unnamed struct or union used as a
// member whose fields are accessed through the parent.
func (c Cursor) IsAnonymousRecordDecl() (bool, error) { return c.flag(flagAnonMember) }

func (c Cursor) IsInline() (bool, error) { return c.flag(flagInline) }

func (c Cursor) IsDefinition() (bool, error) { return c.flag(flagDefinition) }

func (c Cursor) IsMacroFunctionLike() (bool, error) { return c.flag(flagFnLike) }

func (c Cursor) IsMacroBuiltin() (bool, error) { return c.flag(flagBuiltin) }

// IsImplicit reports a node that has no spelling in the source.
func (c Cursor) IsImplicit() (bool, error) { return c.flag(flagImplicit) }

func (c Cursor) arguments() (*unit, []int32, bool, error) {
	u, n, err := c.node()
	if err != nil {
		return nil, nil, false, err
	}
	switch n.kind {
	case CursorFunctionDecl:
		var out []int32
		for _, ch := range n.children {
			if u.nodes[ch].kind == CursorParmDecl && u.nodes[ch].semParent == c.id {
				out = append(out, ch)
			}
		}
		return u, out, true, nil
	case CursorCallExpr:
		if len(n.children) == 0 {
			return u, nil, true, nil
		}
		return u, n.children[1:], true, nil
	}
	return u, nil, false, nil
}

// NumArguments returns the parameters of a function or the arguments of
// a call, -1 for other kinds.
func (c Cursor) NumArguments() (int, error) {
	_, args, ok, err := c.arguments()
	if err != nil || !ok {
		return -1, err
	}
	return len(args), nil
}

func (c Cursor) Argument(i int) (Cursor, error) {
	_, args, _, err := c.arguments()
	if err != nil {
		return NullCursor(), err
	}
	if i < 0 || i >= len(args) {
		return NullCursor(), nil
	}
	return c.derive(args[i]), nil
}

// IsVariadic reports a variadic function declaration.
func (c Cursor) IsVariadic() (bool, error) {
	u, n, err := c.node()
	if err != nil {
		return false, err
	}
	if n.has(flagVariadic) {
		return true, nil
	}
	return u.isFunction(n.typ) && n.kind == CursorFunctionDecl && u.ty(u.desugar(n.typ)).variadic, nil
}

func (c Cursor) StorageClass() (StorageClass, error) {
	_, n, err := c.node()
	if err != nil {
		return StorageInvalid, err
	}
	if n.kind != CursorVarDecl && n.kind != CursorFunctionDecl && n.kind != CursorParmDecl {
		return StorageInvalid, nil
	}
	if n.storage == StorageInvalid {
		return StorageNone, nil
	}
	return n.storage, nil
}

// Linkage follows C's rules: file-scope and block-scope extern names link
// externally unless their first declaration is static.
func (c Cursor) Linkage() (LinkageKind, error) {
	u, n, err := c.node()
	if err != nil {
		return LinkageInvalid, err
	}
	switch {
	case !n.kind.IsDeclaration():
		return LinkageInvalid, nil
	case n.kind != CursorVarDecl && n.kind != CursorFunctionDecl:
		return LinkageNoLinkage, nil
	case n.semParent != rootNode:
		return LinkageNoLinkage, nil
	}
	for _, d := range u.redecls(c.id) {
		if u.nodes[d].storage == StorageStatic && u.nodes[d].lexParent == rootNode {
			return LinkageInternal, nil
		}
	}
	return LinkageExternal, nil
}

// redecls returns every declaration of decl's entity.
func (u *unit) redecls(decl int32) []int32 {
	if ent := u.nodes[decl].ent; ent >= 0 {
		return u.ents[ent].decls
	}
	return []int32{decl}
}

func (c Cursor) Visibility() (VisibilityKind, error) {
	l, err := c.Linkage()
	if err != nil || l != LinkageExternal {
		return VisibilityInvalid, err
	}
	_, n, _ := c.node()
	if n.visibility == VisibilityInvalid {
		return VisibilityDefault, nil
	}
	return n.visibility, nil
}

func (c Cursor) Availability() (AvailabilityKind, error) {
	_, n, err := c.node()
	if err != nil {
		return AvailabilityAvailable, err
	}
	return n.availability, nil
}

// Language is C for every declaration.
func (c Cursor) Language() (LanguageKind, error) {
	_, n, err := c.node()
	if err != nil {
		return LanguageInvalid, err
	}
	if !n.kind.IsDeclaration() {
		return LanguageInvalid, nil
	}
	return LanguageC, nil
}

func (c Cursor) TLSKind() (TLSKind, error) {
	_, n, err := c.node()
	if err != nil {
		return TLSNone, err
	}
	return n.tls, nil
}

// SemanticParent differs from LexicalParent for tags defined inside a
// record body and for block-scope extern declarations.
func (c Cursor) SemanticParent() (Cursor, error) {
	_, n, err := c.node()
	if err != nil {
		return NullCursor(), err
	}
	return c.derive(n.semParent), nil
}

func (c Cursor) LexicalParent() (Cursor, error) {
	_, n, err := c.node()
	if err != nil {
		return NullCursor(), err
	}
	return c.derive(n.lexParent), nil
}

// TranslationUnit returns the owning unit.
func (c Cursor) TranslationUnit() (*TranslationUnit, error) {
	if _, _, err := c.node(); err != nil {
		return nil, err
	}
	return c.tu, nil
}

// Canonical returns the first declaration of the cursor's entity. It is
// idempotent.
func (c Cursor) Canonical() (Cursor, error) {
	u, _, err := c.node()
	if err != nil {
		return NullCursor(), err
	}
	return c.derive(u.canonical(c.id)), nil
}

// Definition returns the defining declaration of a declaration or of the
// entity a reference names; the null cursor when the unit has none.
func (c Cursor) Definition() (Cursor, error) {
	u, n, err := c.node()
	if err != nil {
		return NullCursor(), err
	}
	decl := c.id
	if !n.kind.IsDeclaration() && n.kind != CursorMacroDefinition {
		decl = n.ref
	}
	if decl < 0 {
		return NullCursor(), nil
	}
	if u.nodes[decl].kind == CursorMacroDefinition {
		return c.derive(decl), nil
	}
	return c.derive(u.definition(decl)), nil
}

// Referenced returns the declaration a reference, expression or macro
// expansion names. Declarations reference themselves.
func (c Cursor) Referenced() (Cursor, error) {
	_, n, err := c.node()
	if err != nil {
		return NullCursor(), err
	}
	if n.kind.IsDeclaration() || n.kind == CursorMacroDefinition {
		return c, nil
	}
	return c.derive(n.ref), nil
}

// IncludedFile returns the file an inclusion directive brought in.
func (c Cursor) IncludedFile() (File, error) {
	_, n, err := c.node()
	if err != nil {
		return File{id: -1}, err
	}
	if n.kind != CursorInclusionDirective || n.file < 0 {
		return File{id: -1}, nil
	}
	return File{tu: c.tu, gen: c.gen, id: n.file}, nil
}

// BinaryOperator returns the operator of a binary or compound assignment
// cursor.
func (c Cursor) BinaryOperator() (BinaryOperatorKind, error) {
	_, n, err := c.node()
	if err != nil {
		return BinaryInvalid, err
	}
	if n.kind != CursorBinaryOperator && n.kind != CursorCompoundAssignOp {
		return BinaryInvalid, nil
	}
	return n.binOp, nil
}

func (c Cursor) UnaryOperator() (UnaryOperatorKind, error) {
	_, n, err := c.node()
	if err != nil {
		return UnaryInvalid, err
	}
	if n.kind != CursorUnaryOperator {
		return UnaryInvalid, nil
	}
	return n.unOp, nil
}

// OffsetOfField returns the bit offset of a field in its record.
func (c Cursor) OffsetOfField() (int64, error) {
	u, n, err := c.node()
	if err != nil {
		return 0, err
	}
	if n.kind != CursorFieldDecl {
		return 0, &LayoutError{Code: LayoutErrorInvalidFieldName, Type: n.name}
	}
	rec := n.semParent
	for rec >= 0 && u.nodes[rec].has(flagAnonMember) {
		p := u.nodes[rec].lexParent
		if p < 0 || (u.nodes[p].kind != CursorStructDecl && u.nodes[p].kind != CursorUnionDecl) {
			break
		}
		rec = p
	}
	l, code := u.recordLayout(rec)
	if code != 0 {
		return 0, &LayoutError{Code: code, Type: u.nodes[rec].name}
	}
	off, ok := l.offsets[c.id]
	if !ok {
		return 0, &LayoutError{Code: LayoutErrorInvalidFieldName, Type: u.nodes[rec].name}
	}
	return off, nil
}

// IsDeclaration and the other kind predicates mirror CursorKind.
func (c Cursor) IsDeclaration() bool { return c.kindOrInvalid().IsDeclaration() }

func (c Cursor) IsReference() bool { return c.kindOrInvalid().IsReference() }

func (c Cursor) IsExpression() bool { return c.kindOrInvalid().IsExpression() }

func (c Cursor) IsStatement() bool { return c.kindOrInvalid().IsStatement() }

func (c Cursor) IsAttribute() bool { return c.kindOrInvalid().IsAttribute() }

func (c Cursor) IsPreprocessing() bool { return c.kindOrInvalid().IsPreprocessing() }

func (c Cursor) IsUnexposed() bool { return c.kindOrInvalid().IsUnexposed() }

func (c Cursor) IsTranslationUnit() bool { return c.kindOrInvalid().IsTranslationUnit() }

func (c Cursor) IsInvalid() bool { return c.kindOrInvalid().IsInvalid() }

func (c Cursor) kindOrInvalid() CursorKind {
	k, err := c.Kind()
	if err != nil {
		return CursorInvalidCode
	}
	return k
}

func (c Cursor) String() string {
	if c.IsNull() {
		return "<null cursor>"
	}
	_, n, err := c.node()
	if err != nil {
		return "<invalid cursor>"
	}
	return fmt.Sprintf("%s %q", n.kind, n.name)
}
