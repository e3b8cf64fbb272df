package clang

import (
	"fmt"
	"path/filepath"
	"strings"
)

// USR returns the Unified Symbol Resolution string of a declaration or of
// the declaration a reference names. Cursors that name nothing give "".
func (c Cursor) USR() (string, error) {
	u, n, err := c.node()
	if err != nil {
		return "", err
	}
	decl := c.id
	if !n.kind.IsDeclaration() && n.kind != CursorMacroDefinition {
		decl = n.ref
	}
	if decl < 0 {
		return "", nil
	}
	return u.usr(u.canonical(decl)), nil
}

// fileTag is the file name part USRs use for entities private to a file.
func (u *unit) fileTag(p srcPos) string {
	f := u.fileOf(p)
	if f == nil {
		return ""
	}
	return filepath.Base(f.name)
}

func (u *unit) usr(decl int32) string {
	n := &u.nodes[decl]
	switch n.kind {
	case CursorMacroDefinition:
		if n.has(flagBuiltin) || !n.loc.valid() {
			return "c:@macro@" + n.name
		}
		return fmt.Sprintf("c:%s@%d@macro@%s", u.fileTag(n.loc), n.loc.off, n.name)
	case CursorFunctionDecl:
		if u.internal(decl) {
			return fmt.Sprintf("c:%s@F@%s", u.fileTag(n.loc), n.name)
		}
		return "c:@F@" + n.name
	case CursorVarDecl:
		if n.semParent == rootNode {
			if u.internal(decl) {
				return fmt.Sprintf("c:%s@%s", u.fileTag(n.loc), n.name)
			}
			return "c:@" + n.name
		}
		return u.localUSR(decl)
	case CursorParmDecl:
		return u.localUSR(decl)
	case CursorTypedefDecl:
		return fmt.Sprintf("c:%s@T@%s", u.fileTag(n.loc), n.name)
	case CursorStructDecl, CursorUnionDecl, CursorEnumDecl:
		return "c:" + u.tagUSR(decl)
	case CursorFieldDecl:
		if n.semParent < 0 {
			return ""
		}
		return "c:" + u.tagUSR(n.semParent) + "@FI@" + n.name
	case CursorEnumConstantDecl:
		if n.semParent < 0 {
			return ""
		}
		parent := &u.nodes[n.semParent]
		if parent.name == "" {
			return "c:@Ea@" + n.name
		}
		return "c:" + u.tagUSR(n.semParent) + "@" + n.name
	}
	return ""
}

// internal reports a file-scope name whose first declaration is static.
func (u *unit) internal(decl int32) bool {
	for _, d := range u.redecls(decl) {
		if u.nodes[d].storage == StorageStatic && u.nodes[d].lexParent == rootNode {
			return true
		}
	}
	return false
}

// localUSR encodes a block-scope entity by its file offset and enclosing
// function.
func (u *unit) localUSR(decl int32) string {
	n := &u.nodes[decl]
	var sb strings.Builder
	fmt.Fprintf(&sb, "c:%s@%d", u.fileTag(n.begin), n.begin.off)
	for p := n.semParent; p >= 0 && p != rootNode; p = u.nodes[p].semParent {
		if u.nodes[p].kind == CursorFunctionDecl {
			sb.WriteString("@F@" + u.nodes[p].name)
			break
		}
	}
	sb.WriteString("@" + n.name)
	return sb.String()
}

// tagUSR encodes a struct, union or enum without the "c:" prefix.
func (u *unit) tagUSR(decl int32) string {
	decl = u.canonical(decl)
	n := &u.nodes[decl]
	letter := "S"
	switch n.kind {
	case CursorUnionDecl:
		letter = "U"
	case CursorEnumDecl:
		letter = "E"
	}
	prefix := ""
	if p := n.semParent; p >= 0 && p != rootNode {
		if k := u.nodes[p].kind; k == CursorStructDecl || k == CursorUnionDecl {
			prefix = u.tagUSR(p)
		}
	}
	if n.name != "" {
		return prefix + "@" + letter + "@" + n.name
	}
	if td := u.typedefFor(decl); td >= 0 {
		return prefix + "@" + letter + "A@" + u.nodes[td].name
	}
	return fmt.Sprintf("%s@%s@%s@%d", prefix, letter, u.fileTag(n.loc), n.loc.off)
}

// typedefFor finds a typedef naming an anonymous tag.
func (u *unit) typedefFor(tag int32) int32 {
	for id := range u.nodes {
		n := &u.nodes[id]
		if n.kind != CursorTypedefDecl {
			continue
		}
		if d := u.tagDecl(n.aux); d >= 0 && u.canonical(d) == tag {
			return int32(id)
		}
	}
	return -1
}

// ObjCClassUSR builds the USR of an Objective-C class.
func ObjCClassUSR(class string) string { return "c:objc(cs)" + class }

// ObjCCategoryUSR builds the USR of a category of a class.
func ObjCCategoryUSR(class, category string) string {
	return "c:objc(cy)" + class + "@" + category
}

func ObjCProtocolUSR(protocol string) string { return "c:objc(pl)" + protocol }

// ObjCIvarUSR appends an instance variable to a class USR.
func ObjCIvarUSR(name, classUSR string) string { return classUSR + "@" + name }

// ObjCPropertyUSR appends a property to a class USR.
func ObjCPropertyUSR(name, classUSR string) string { return classUSR + "(py)" + name }

// ObjCMethodUSR appends an instance or class method to a class USR.
func ObjCMethodUSR(name string, instance bool, classUSR string) string {
	if instance {
		return classUSR + "(im)" + name
	}
	return classUSR + "(cm)" + name
}
