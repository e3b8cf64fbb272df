package clang

// Type is a handle to a type of a translation unit. Types are hash-consed
// per unit, so two handles of one unit are equal exactly when their ids
// are.
type Type struct {
	tu  *TranslationUnit
	gen uint64
	id  typeID
}

func (t *TranslationUnit) typ(gen uint64, id typeID) Type {
	return Type{tu: t, gen: gen, id: id}
}

func (t Type) info() (*unit, *typeInfo, error) {
	if t.tu == nil {
		return nil, nil, invalidHandle("null type")
	}
	u, err := t.tu.check(t.gen)
	if err != nil {
		return nil, nil, err
	}
	return u, u.ty(t.id), nil
}

func (t Type) derive(id typeID) Type { return Type{tu: t.tu, gen: t.gen, id: id} }

// Kind returns TypeInvalid for the null type.
func (t Type) Kind() (TypeKind, error) {
	if t.tu == nil {
		return TypeInvalid, nil
	}
	_, info, err := t.info()
	if err != nil {
		return TypeInvalid, err
	}
	return info.kind, nil
}

func (t Type) Spelling() (string, error) {
	if t.tu == nil {
		return "", nil
	}
	u, _, err := t.info()
	if err != nil {
		return "", err
	}
	return u.spelling(t.id), nil
}

// Canonical strips typedef and elaborated sugar at every level.
func (t Type) Canonical() (Type, error) {
	u, _, err := t.info()
	if err != nil {
		return t, err
	}
	return t.derive(u.canonicalType(t.id)), nil
}

func (t Type) quals() (qual, error) {
	u, _, err := t.info()
	if err != nil {
		return 0, err
	}
	var q qual
	for id := t.id; ; {
		info := u.ty(id)
		q |= info.quals
		if info.kind != TypeTypedef && info.kind != TypeElaborated {
			return q, nil
		}
		id = info.elem
	}
}

func (t Type) IsConstQualified() (bool, error) {
	q, err := t.quals()
	return q&qualConst != 0, err
}

func (t Type) IsVolatileQualified() (bool, error) {
	q, err := t.quals()
	return q&qualVolatile != 0, err
}

func (t Type) IsRestrictQualified() (bool, error) {
	q, err := t.quals()
	return q&qualRestrict != 0, err
}

// PointeeType returns the invalid type for non-pointers.
func (t Type) PointeeType() (Type, error) {
	u, _, err := t.info()
	if err != nil {
		return t, err
	}
	return t.derive(u.pointee(t.id)), nil
}

// ElementType returns the element of arrays, vectors and complex types.
func (t Type) ElementType() (Type, error) {
	u, _, err := t.info()
	if err != nil {
		return t, err
	}
	d := u.ty(u.desugar(t.id))
	switch d.kind {
	case TypeConstantArray, TypeIncompleteArray, TypeVariableArray, TypeVector, TypeComplex:
		return t.derive(d.elem), nil
	}
	return t.derive(invalidType), nil
}

// NumElements returns the element count of constant arrays and vectors,
// -1 otherwise.
func (t Type) NumElements() (int64, error) {
	u, _, err := t.info()
	if err != nil {
		return -1, err
	}
	d := u.ty(u.desugar(t.id))
	switch d.kind {
	case TypeConstantArray, TypeVector:
		return d.count, nil
	}
	return -1, nil
}

// ArraySize is NumElements restricted to constant arrays.
func (t Type) ArraySize() (int64, error) {
	u, _, err := t.info()
	if err != nil {
		return -1, err
	}
	if d := u.ty(u.desugar(t.id)); d.kind == TypeConstantArray {
		return d.count, nil
	}
	return -1, nil
}

func (t Type) function() (*unit, *typeInfo, error) {
	u, _, err := t.info()
	if err != nil {
		return nil, nil, err
	}
	d := u.ty(u.desugar(t.id))
	if d.kind != TypeFunctionProto && d.kind != TypeFunctionNoProto {
		return u, nil, nil
	}
	return u, d, nil
}

// ResultType returns the invalid type for non-function types.
func (t Type) ResultType() (Type, error) {
	_, fn, err := t.function()
	if err != nil || fn == nil {
		return t.derive(invalidType), err
	}
	return t.derive(fn.elem), nil
}

// NumArgTypes returns -1 for non-function types.
func (t Type) NumArgTypes() (int, error) {
	_, fn, err := t.function()
	if err != nil || fn == nil {
		return -1, err
	}
	return len(fn.params), nil
}

func (t Type) ArgType(i int) (Type, error) {
	_, fn, err := t.function()
	if err != nil {
		return t, err
	}
	if fn == nil || i < 0 || i >= len(fn.params) {
		return t.derive(invalidType), nil
	}
	return t.derive(fn.params[i]), nil
}

func (t Type) IsVariadic() (bool, error) {
	_, fn, err := t.function()
	if err != nil || fn == nil {
		return false, err
	}
	return fn.variadic, nil
}

// CallingConv returns CallingConvC for function types.
func (t Type) CallingConv() (CallingConv, error) {
	_, fn, err := t.function()
	if err != nil {
		return CallingConvInvalid, err
	}
	if fn == nil {
		return CallingConvInvalid, nil
	}
	return CallingConvC, nil
}

// Declaration returns the declaration of a tag or typedef type.
func (t Type) Declaration() (Cursor, error) {
	u, info, err := t.info()
	if err != nil {
		return NullCursor(), err
	}
	decl := int32(-1)
	switch info.kind {
	case TypeTypedef:
		decl = info.decl
	case TypeElaborated:
		return t.derive(info.elem).Declaration()
	case TypeRecord, TypeEnum:
		decl = u.tagDecl(t.id)
	}
	return t.tu.cursor(t.gen, decl), nil
}

// TypedefName returns the name of a typedef type, looking through an
// elaborated sugar node, and empty otherwise.
func (t Type) TypedefName() (string, error) {
	u, info, err := t.info()
	if err != nil {
		return "", err
	}
	if info.kind == TypeElaborated {
		return t.derive(info.elem).TypedefName()
	}
	if info.kind != TypeTypedef || info.decl < 0 {
		return "", nil
	}
	return u.nodes[info.decl].name, nil
}

// NamedType returns the type an elaborated type names.
func (t Type) NamedType() (Type, error) {
	_, info, err := t.info()
	if err != nil {
		return t, err
	}
	if info.kind != TypeElaborated {
		return t.derive(invalidType), nil
	}
	return t.derive(info.elem), nil
}

// IsPOD reports plain old data; every complete C object type is.
func (t Type) IsPOD() (bool, error) {
	u, _, err := t.info()
	if err != nil {
		return false, err
	}
	switch u.kindOf(t.id) {
	case TypeInvalid, TypeVoid, TypeFunctionProto, TypeFunctionNoProto, TypeIncompleteArray:
		return false, nil
	}
	return u.isComplete(t.id), nil
}

// IsTransparentTagTypedef reports a typedef naming an anonymous tag, as in
// typedef struct { ... } S.
func (t Type) IsTransparentTagTypedef() (bool, error) {
	u, info, err := t.info()
	if err != nil {
		return false, err
	}
	if info.kind != TypeTypedef {
		return false, nil
	}
	d := u.ty(u.desugar(info.elem))
	if d.kind != TypeRecord && d.kind != TypeEnum {
		return false, nil
	}
	decl := u.tagDecl(info.elem)
	return decl >= 0 && u.nodes[decl].name == "", nil
}

func (t Type) layoutError(u *unit, code TypeLayoutError) error {
	return &LayoutError{Code: code, Type: u.spelling(t.id)}
}

// SizeOf returns the size in bytes.
func (t Type) SizeOf() (int64, error) {
	u, _, err := t.info()
	if err != nil {
		return 0, err
	}
	size, _, code := u.layoutOf(t.id)
	if code != 0 {
		return 0, t.layoutError(u, code)
	}
	return size / 8, nil
}

// AlignOf returns the alignment in bytes.
func (t Type) AlignOf() (int64, error) {
	u, _, err := t.info()
	if err != nil {
		return 0, err
	}
	_, align, code := u.layoutOf(t.id)
	if code != 0 && code != LayoutErrorNotConstantSize {
		return 0, t.layoutError(u, code)
	}
	return align / 8, nil
}

// OffsetOf returns the bit offset of a field of a record type, looking
// through anonymous members.
func (t Type) OffsetOf(field string) (int64, error) {
	u, _, err := t.info()
	if err != nil {
		return 0, err
	}
	if u.kindOf(t.id) != TypeRecord {
		return 0, t.layoutError(u, LayoutErrorInvalid)
	}
	decl := u.tagDecl(t.id)
	l, code := u.recordLayout(decl)
	if code != 0 {
		return 0, t.layoutError(u, code)
	}
	f := u.lookupField(decl, field)
	if f < 0 {
		return 0, t.layoutError(u, LayoutErrorInvalidFieldName)
	}
	return l.offsets[f], nil
}

// Fields returns the fields of a record type in declaration order.
func (t Type) Fields() ([]Cursor, error) {
	u, _, err := t.info()
	if err != nil {
		return nil, err
	}
	if u.kindOf(t.id) != TypeRecord {
		return nil, nil
	}
	def := u.definition(u.tagDecl(t.id))
	if def < 0 {
		return nil, nil
	}
	var out []Cursor
	for _, ch := range u.nodes[def].children {
		if u.nodes[ch].kind == CursorFieldDecl {
			out = append(out, t.tu.cursor(t.gen, ch))
		}
	}
	return out, nil
}

// Equal compares by id within one unit and structurally across units.
func (t Type) Equal(o Type) bool {
	if t.tu == nil || o.tu == nil {
		return t.tu == nil && o.tu == nil
	}
	ua, _, errA := t.info()
	ub, _, errB := o.info()
	if errA != nil || errB != nil {
		return false
	}
	if t.tu == o.tu {
		return t.id == o.id
	}
	return sameAcross(ua, t.id, ub, o.id)
}

// sameAcross compares types of two units by shape and names.
func sameAcross(ua *unit, a typeID, ub *unit, b typeID) bool {
	x, y := ua.ty(a), ub.ty(b)
	if x.kind != y.kind || x.quals != y.quals || x.count != y.count || x.variadic != y.variadic || len(x.params) != len(y.params) {
		return false
	}
	switch x.kind {
	case TypeRecord, TypeEnum:
		dx, dy := ua.tagDecl(a), ub.tagDecl(b)
		return dx >= 0 && dy >= 0 && ua.nodes[dx].name == ub.nodes[dy].name && ua.nodes[dx].name != ""
	case TypeTypedef:
		return x.decl >= 0 && y.decl >= 0 && ua.nodes[x.decl].name == ub.nodes[y.decl].name
	}
	if x.elem != invalidType || y.elem != invalidType {
		if !sameAcross(ua, x.elem, ub, y.elem) {
			return false
		}
	}
	for i := range x.params {
		if !sameAcross(ua, x.params[i], ub, y.params[i]) {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	s, err := t.Spelling()
	if err != nil {
		return "<invalid type>"
	}
	return s
}
