// Package syntax drives the tree-sitter C grammar and converts its concrete
// syntax tree into a plain Go tree that outlives the native parser.
//
// The clang engine never touches tree-sitter types directly: every file is
// parsed once, copied into Node values and the native tree is closed right
// away, so parsed files can be cached and shared between translation units.
package syntax

import (
	"crypto/sha256"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

// Point is a zero-based row/column (byte) position.
type Point struct {
	Row    uint32
	Column uint32
}

// Node is a copied tree-sitter node.
type Node struct {
	Kind      string
	Field     string // field name in the parent, "" if none
	Named     bool
	Missing   bool
	Error     bool
	Extra     bool
	StartByte uint32
	EndByte   uint32
	Start     Point
	End       Point
	Parent    *Node
	Children  []*Node
}

// File is a parsed source buffer.
type File struct {
	Path   string
	Source []byte
	Hash   [sha256.Size]byte
	Root   *Node
	// HasError reports whether the tree contains ERROR or MISSING nodes.
	HasError bool
	// NodeCount is the number of copied nodes, used for resource accounting.
	NodeCount int
}

var language = sitter.NewLanguage(c.Language())

// Parse parses C source. The returned File does not reference native memory.
func Parse(path string, source []byte) (*File, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set C language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse c file: %s", path)
	}
	defer tree.Close()

	f := &File{
		Path:   path,
		Source: source,
		Hash:   sha256.Sum256(source),
	}

	cursor := tree.Walk()
	defer cursor.Close()
	f.Root = copyTree(cursor, nil, f)
	return f, nil
}

// copyTree copies the subtree under the cursor's current node.
func copyTree(cursor *sitter.TreeCursor, parent *Node, f *File) *Node {
	tn := cursor.Node()
	n := &Node{
		Kind:      tn.Kind(),
		Field:     cursor.FieldName(),
		Named:     tn.IsNamed(),
		Missing:   tn.IsMissing(),
		Error:     tn.IsError(),
		Extra:     tn.IsExtra(),
		StartByte: uint32(tn.StartByte()),
		EndByte:   uint32(tn.EndByte()),
		Start:     Point{Row: uint32(tn.StartPosition().Row), Column: uint32(tn.StartPosition().Column)},
		End:       Point{Row: uint32(tn.EndPosition().Row), Column: uint32(tn.EndPosition().Column)},
		Parent:    parent,
	}
	f.NodeCount++
	if n.Missing || n.Error {
		f.HasError = true
	}

	if cursor.GotoFirstChild() {
		for {
			n.Children = append(n.Children, copyTree(cursor, n, f))
			if !cursor.GotoNextSibling() {
				break
			}
		}
		cursor.GotoParent()
	}
	return n
}

// Text returns the source text covered by n.
func (n *Node) Text(source []byte) string {
	if n == nil || int(n.EndByte) > len(source) || n.StartByte > n.EndByte {
		return ""
	}
	return string(source[n.StartByte:n.EndByte])
}

// ChildByField returns the first child carrying the given field name.
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, ch := range n.Children {
		if ch.Field == field {
			return ch
		}
	}
	return nil
}

// ChildrenByField returns every child carrying the given field name.
func (n *Node) ChildrenByField(field string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, ch := range n.Children {
		if ch.Field == field {
			out = append(out, ch)
		}
	}
	return out
}

// NamedChildren returns the named children of n.
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, ch := range n.Children {
		if ch.Named {
			out = append(out, ch)
		}
	}
	return out
}

// FirstNamedChild returns the first named, non-extra child.
func (n *Node) FirstNamedChild() *Node {
	if n == nil {
		return nil
	}
	for _, ch := range n.Children {
		if ch.Named && !ch.Extra {
			return ch
		}
	}
	return nil
}

// ChildOfKind returns the first direct child of the given kind.
func (n *Node) ChildOfKind(kind string) *Node {
	if n == nil {
		return nil
	}
	for _, ch := range n.Children {
		if ch.Kind == kind {
			return ch
		}
	}
	return nil
}

// HasChildOfKind reports whether any direct child has the given kind.
func (n *Node) HasChildOfKind(kind string) bool {
	return n.ChildOfKind(kind) != nil
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, ch := range n.Children {
		Walk(ch, fn)
	}
}

// Leaves returns the token-level nodes of n in source order. String, char
// and system include literals are reported as single leaves.
func Leaves(n *Node) []*Node {
	var out []*Node
	Walk(n, func(x *Node) bool {
		if x.Missing {
			return false
		}
		switch x.Kind {
		case "string_literal", "char_literal", "system_lib_string", "comment", "preproc_arg":
			out = append(out, x)
			return false
		}
		if len(x.Children) == 0 {
			if x.EndByte > x.StartByte {
				out = append(out, x)
			}
			return false
		}
		return true
	})
	return out
}
