package clang

import (
	"sort"
	"time"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/cxgraph/internal/comment"
	"github.com/mvp-joe/cxgraph/internal/syntax"
)

// srcPos is a position inside one inclusion of a file.
type srcPos struct {
	buf int32
	off uint32
}

var noPos = srcPos{buf: -1}

func (p srcPos) valid() bool { return p.buf >= 0 }

// lineDirective records a #line directive effective from off onwards.
type lineDirective struct {
	off  uint32
	line uint32
	file string
}

// byteRange is a half-open byte range inside one file.
type byteRange struct {
	begin uint32
	end   uint32
}

// fileInfo is a file entry; it is shared by every inclusion of the file.
type fileInfo struct {
	id         int32
	name       string
	key        string
	contents   []byte
	lines      []uint32
	modTime    time.Time
	system     bool
	unsaved    bool
	syntax     *syntax.File
	pragmaOnce bool
	guard      string
	lineDirs   []lineDirective
	skipped    []byteRange
	included   int
}

func newFileInfo(id int32, name, key string, contents []byte) *fileInfo {
	f := &fileInfo{id: id, name: name, key: key, contents: contents}
	f.lines = append(f.lines, 0)
	for i, b := range contents {
		if b == '\n' {
			f.lines = append(f.lines, uint32(i+1))
		}
	}
	return f
}

// lineCol converts an offset into 1-based line and column numbers.
func (f *fileInfo) lineCol(off uint32) (uint32, uint32) {
	i := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	return uint32(i + 1), off - f.lines[i] + 1
}

// offset converts a 1-based line and column into an offset.
func (f *fileInfo) offset(line, col uint32) (uint32, bool) {
	if line == 0 || col == 0 || int(line) > len(f.lines) {
		return 0, false
	}
	off := f.lines[line-1] + col - 1
	lineEnd := uint32(len(f.contents))
	if int(line) < len(f.lines) {
		lineEnd = f.lines[line]
	}
	if off > lineEnd {
		return 0, false
	}
	return off, true
}

// buffer is one inclusion of a file. Its chain orders positions across
// the whole unit: positions compare by chain then offset.
type buffer struct {
	file       int32
	parent     int32
	includeOff uint32
	depth      int
	chain      []uint32
}

type nodeFlags uint32

const (
	flagDefinition nodeFlags = 1 << iota
	flagInline
	flagVariadic
	flagImplicit
	flagAnonymous
	flagBitField
	flagUsed
	flagFnLike
	flagBuiltin
	flagTentative
	flagNoReturn
	flagArrow
	flagPostfix
	flagProto
	flagUnsigned
	flagHasValue
	flagHidden
	flagPacked
	flagAnonMember
	flagWarnUnused
	flagInvalid
)

// node is an arena slot backing a Cursor.
type node struct {
	kind      CursorKind
	name      string
	loc       srcPos
	spell     srcPos
	begin     srcPos
	end       srcPos
	semParent int32
	lexParent int32
	children  []int32
	typ       typeID
	aux       typeID
	ref       int32
	ent       int32
	flags     nodeFlags

	storage      StorageClass
	visibility   VisibilityKind
	availability AvailabilityKind
	tls          TLSKind

	bitWidth int64
	align    int64
	intVal   int64
	fltVal   float64
	strVal   string
	binOp    BinaryOperatorKind
	unOp     UnaryOperatorKind
	file     int32
	comment  int32
	params   []string
	body     string
}

func (n *node) has(f nodeFlags) bool { return n.flags&f != 0 }

// entity groups the redeclarations of one declared thing.
type entity struct {
	decls []int32
	def   int32
}

// rawComment is a (possibly merged) comment attached to a declaration.
type rawComment struct {
	buf    int32
	begin  uint32
	end    uint32
	text   string
	parsed *comment.Node
}

// macroSummary is a macro still defined at the end of the unit.
type macroSummary struct {
	name    string
	params  []string
	fnLike  bool
	builtin bool
	pos     srcPos
	def     int32
}

// inclusion records one #include for Inclusions and IncludeOrder.
type inclusion struct {
	file      int32
	buf       int32
	directive int32
}

// unit is the arena built by one parse. Reparse builds a new unit and
// swaps it in, so a unit is immutable once published.
type unit struct {
	files      []*fileInfo
	fileByKey  map[string]int32
	bufs       []buffer
	mainFile   int32
	nodes      []node
	ents       []entity
	types      []typeInfo
	typeKeys   map[string]typeID
	builtins   map[TypeKind]typeID
	diags      []*diagRecord
	comments   []rawComment
	inclusions []inclusion
	includes   graph.Graph[string, string]
	macroCount int
	headerDirs int
	unsavedSz  int
	target     targetInfo
	c23        bool
	completion []CompletionResult
	macros     []macroSummary
	layouts    map[int32]*recordLayout
}

const rootNode int32 = 0

func newUnit(target targetInfo, c23 bool) *unit {
	u := &unit{
		fileByKey: map[string]int32{},
		typeKeys:  map[string]typeID{},
		builtins:  map[TypeKind]typeID{},
		includes:  graph.New(graph.StringHash, graph.Directed()),
		layouts:   map[int32]*recordLayout{},
		mainFile:  -1,
		target:    target,
		c23:       c23,
	}
	u.types = append(u.types, typeInfo{kind: TypeInvalid, decl: -1, ent: -1})
	u.nodes = append(u.nodes, node{
		kind:      CursorTranslationUnit,
		loc:       noPos,
		spell:     noPos,
		begin:     noPos,
		end:       noPos,
		semParent: -1,
		lexParent: -1,
		ref:       -1,
		ent:       -1,
		file:      -1,
		comment:   -1,
	})
	return u
}

func (u *unit) newNode(kind CursorKind, name string, loc, begin, end srcPos) int32 {
	u.nodes = append(u.nodes, node{
		kind:      kind,
		name:      name,
		loc:       loc,
		spell:     loc,
		begin:     begin,
		end:       end,
		semParent: -1,
		lexParent: -1,
		ref:       -1,
		ent:       -1,
		file:      -1,
		comment:   -1,
	})
	return int32(len(u.nodes) - 1)
}

// addChild appends child to parent's children. A node may appear under
// more than one parent (tag definitions owned by a declarator).
func (u *unit) addChild(parent, child int32) {
	if parent < 0 || child < 0 {
		return
	}
	u.nodes[parent].children = append(u.nodes[parent].children, child)
}

func (u *unit) newEntity(decl int32) int32 {
	u.ents = append(u.ents, entity{decls: []int32{decl}, def: -1})
	id := int32(len(u.ents) - 1)
	u.nodes[decl].ent = id
	return id
}

func (u *unit) redeclare(prev, decl int32) {
	ent := u.nodes[prev].ent
	if ent < 0 {
		ent = u.newEntity(prev)
	}
	u.nodes[decl].ent = ent
	u.ents[ent].decls = append(u.ents[ent].decls, decl)
}

func (u *unit) markDefinition(decl int32) {
	u.nodes[decl].flags |= flagDefinition
	if ent := u.nodes[decl].ent; ent >= 0 {
		e := &u.ents[ent]
		if e.def < 0 || u.nodes[e.def].has(flagTentative) {
			e.def = decl
		}
	}
}

// canonical returns the first declaration of decl's entity.
func (u *unit) canonical(decl int32) int32 {
	if decl < 0 {
		return -1
	}
	if ent := u.nodes[decl].ent; ent >= 0 {
		return u.ents[ent].decls[0]
	}
	return decl
}

// definition returns the defining declaration of decl's entity, or -1.
func (u *unit) definition(decl int32) int32 {
	if decl < 0 {
		return -1
	}
	n := &u.nodes[decl]
	if n.ent < 0 {
		if n.has(flagDefinition) {
			return decl
		}
		return -1
	}
	return u.ents[n.ent].def
}

func (u *unit) fileOf(p srcPos) *fileInfo {
	if !p.valid() || int(p.buf) >= len(u.bufs) {
		return nil
	}
	return u.files[u.bufs[p.buf].file]
}

func (u *unit) fileIDOf(p srcPos) int32 {
	if !p.valid() || int(p.buf) >= len(u.bufs) {
		return -1
	}
	return u.bufs[p.buf].file
}

// comparePos orders two positions in translation order.
func (u *unit) comparePos(a, b srcPos) int {
	switch {
	case !a.valid() && !b.valid():
		return 0
	case !a.valid():
		return -1
	case !b.valid():
		return 1
	}
	ka, kb := u.bufs[a.buf].chain, u.bufs[b.buf].chain
	for i := 0; i <= len(ka) && i <= len(kb); i++ {
		va, vb := a.off, b.off
		if i < len(ka) {
			va = ka[i]
		}
		if i < len(kb) {
			vb = kb[i]
		}
		if va != vb {
			if va < vb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ka) < len(kb):
		return -1
	case len(ka) > len(kb):
		return 1
	}
	return 0
}

// text returns the source between two positions of the same buffer.
func (u *unit) text(begin, end srcPos) string {
	f := u.fileOf(begin)
	if f == nil || begin.buf != end.buf || end.off < begin.off || int(end.off) > len(f.contents) {
		return ""
	}
	return string(f.contents[begin.off:end.off])
}

// sortChildren orders the children of n by begin position, keeping the
// emission order of ties.
func (u *unit) sortChildren(n int32) {
	ch := u.nodes[n].children
	sort.SliceStable(ch, func(i, j int) bool {
		return u.comparePos(u.nodes[ch[i]].begin, u.nodes[ch[j]].begin) < 0
	})
}
