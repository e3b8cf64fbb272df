package clang

// Visitor is called for each cursor of a traversal with its parent.
type Visitor func(cursor, parent Cursor) ChildVisitResult

// Traverse walks the children of root depth-first in pre-order, siblings
// in source order. Recurse descends into the cursor, Continue moves to the
// next sibling and Break stops the walk; any other value counts as Break.
// broke reports whether the walk stopped early.
//
// The unit may not be reparsed, suspended or disposed while a traversal
// runs. A generation change observed mid-walk stops it with
// ErrInvalidHandle.
func Traverse(root Cursor, visit Visitor) (broke bool, err error) {
	u, _, err := root.node()
	if err != nil {
		return false, err
	}
	t := root.tu
	t.traversing++
	defer func() { t.traversing-- }()
	return walk(u, root, visit)
}

func walk(u *unit, parent Cursor, visit Visitor) (bool, error) {
	for _, ch := range u.children(parent.id) {
		if parent.tu.gen != parent.gen || parent.tu.u != u {
			return true, invalidHandle("translation unit changed during traversal")
		}
		c := parent.derive(ch)
		switch visit(c, parent) {
		case ChildVisitContinue:
		case ChildVisitRecurse:
			broke, err := walk(u, c, visit)
			if broke || err != nil {
				return broke, err
			}
		default:
			return true, nil
		}
	}
	return false, nil
}

func (u *unit) children(id int32) []int32 { return u.nodes[id].children }

// VisitChildren is Traverse rooted at c.
func (c Cursor) VisitChildren(visit Visitor) (bool, error) {
	return Traverse(c, visit)
}

// Children returns the direct children of c.
func (c Cursor) Children() ([]Cursor, error) {
	var out []Cursor
	_, err := Traverse(c, func(ch, _ Cursor) ChildVisitResult {
		out = append(out, ch)
		return ChildVisitContinue
	})
	return out, err
}

// Walk visits c and all its descendants in pre-order.
func (c Cursor) Walk(fn func(Cursor) bool) error {
	if !fn(c) {
		return nil
	}
	_, err := Traverse(c, func(ch, _ Cursor) ChildVisitResult {
		if !fn(ch) {
			return ChildVisitContinue
		}
		return ChildVisitRecurse
	})
	return err
}
