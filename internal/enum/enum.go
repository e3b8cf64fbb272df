// Package enum provides closed, bidirectional name↔value tables used for
// every symbolic constant set exposed by cxgraph (cursor kinds, type kinds,
// diagnostic severities, translation unit flags and so on).
//
// A Table is array backed: members keep their registration order, lookups by
// name and by value are map backed, and OR-able flag sets are supported via
// Mask and Unmask.
package enum

import (
	"fmt"
	"sort"
	"strings"
)

// Field is a single member of a Table.
type Field struct {
	Name  string
	Value int64
}

// Table is an immutable name↔value mapping.
type Table struct {
	name    string
	fields  []Field
	byName  map[string]int
	byValue map[int64]int
}

// New builds a table. When several names share a value (aliases such as
// first_decl/unexposed_decl), Symbol returns the first registered name.
// Duplicate names panic since tables are built from static declarations.
func New(name string, fields ...Field) *Table {
	t := &Table{
		name:    name,
		fields:  make([]Field, 0, len(fields)),
		byName:  make(map[string]int, len(fields)),
		byValue: make(map[int64]int, len(fields)),
	}
	for _, f := range fields {
		if _, dup := t.byName[f.Name]; dup {
			panic(fmt.Sprintf("enum %s: duplicate member %q", name, f.Name))
		}
		t.byName[f.Name] = len(t.fields)
		if _, ok := t.byValue[f.Value]; !ok {
			t.byValue[f.Value] = len(t.fields)
		}
		t.fields = append(t.fields, f)
	}
	return t
}

// Name returns the table name, e.g. "CursorKind".
func (t *Table) Name() string { return t.name }

// Len returns the number of members.
func (t *Table) Len() int { return len(t.fields) }

// Fields returns a copy of the members in registration order.
func (t *Table) Fields() []Field {
	out := make([]Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// Names returns member names in registration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.fields))
	for i, f := range t.fields {
		out[i] = f.Name
	}
	return out
}

// Values returns member values in registration order.
func (t *Table) Values() []int64 {
	out := make([]int64, len(t.fields))
	for i, f := range t.fields {
		out[i] = f.Value
	}
	return out
}

// Value returns the value registered for name.
func (t *Table) Value(name string) (int64, bool) {
	i, ok := t.byName[name]
	if !ok {
		return 0, false
	}
	return t.fields[i].Value, true
}

// Symbol returns the first name registered for value.
func (t *Table) Symbol(value int64) (string, bool) {
	i, ok := t.byValue[value]
	if !ok {
		return "", false
	}
	return t.fields[i].Name, true
}

// Mask ORs together the values of the given names. Unknown names contribute 0.
func (t *Table) Mask(names ...string) int64 {
	var mask int64
	for _, n := range names {
		if v, ok := t.Value(n); ok {
			mask |= v
		}
	}
	return mask
}

// Unmask returns the names of all non-zero members fully contained in mask,
// in ascending value order. Aliases are reported once.
func (t *Table) Unmask(mask int64) []string {
	seen := make(map[int64]bool)
	var hits []Field
	for _, f := range t.fields {
		if f.Value == 0 || seen[f.Value] {
			continue
		}
		if mask&f.Value == f.Value {
			seen[f.Value] = true
			hits = append(hits, f)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Value < hits[j].Value })
	names := make([]string, len(hits))
	for i, f := range hits {
		names[i] = f.Name
	}
	return names
}

// String renders the table as "Name{a: 0, b: 1}".
func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString(t.name)
	sb.WriteByte('{')
	for i, f := range t.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %d", f.Name, f.Value)
	}
	sb.WriteByte('}')
	return sb.String()
}
