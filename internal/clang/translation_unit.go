package clang

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"
)

// TranslationUnit is one parsed source file with everything it includes.
type TranslationUnit struct {
	index   *Index
	args    []string
	cargs   *compileArgs
	flags   TranslationUnitFlags
	unsaved []UnsavedFile

	u          *unit
	gen        uint64
	suspended  bool
	closed     bool
	traversing int
}

// DefaultOptions returns the parse flags libclang recommends for editing.
func DefaultOptions() TranslationUnitFlags {
	return FlagDetailedPreprocessingRecord
}

// DefaultReparseOptions returns the reparse flags. libclang defines none.
func DefaultReparseOptions(*TranslationUnit) ReparseFlags { return 0 }

// DefaultSaveOptions returns the save flags. libclang defines none.
func DefaultSaveOptions(*TranslationUnit) SaveTranslationUnitFlags { return 0 }

// build runs one parse under crash recovery.
func (t *TranslationUnit) build(unsaved []UnsavedFile, flags TranslationUnitFlags) (*unit, error) {
	var u *unit
	err := guard(t.cargs.source, t.args, t.index.invocationPath(), func() error {
		var err error
		u, err = build(t.index, t.cargs, unsaved, flags)
		return err
	})
	return u, err
}

// check returns the arena when a handle of generation gen is still usable.
func (t *TranslationUnit) check(gen uint64) (*unit, error) {
	switch {
	case t == nil:
		return nil, invalidHandle("nil translation unit")
	case t.closed:
		return nil, invalidHandle("translation unit disposed")
	case t.suspended || t.u == nil:
		return nil, invalidHandle("translation unit suspended")
	case gen != t.gen:
		return nil, invalidHandle("handle from generation %d used after reparse (now %d)", gen, t.gen)
	}
	return t.u, nil
}

func (t *TranslationUnit) live() (*unit, error) {
	if t == nil {
		return nil, invalidHandle("nil translation unit")
	}
	return t.check(t.gen)
}

// Generation increments on every successful reparse.
func (t *TranslationUnit) Generation() uint64 { return t.gen }

// Flags returns the flags of the last parse.
func (t *TranslationUnit) Flags() TranslationUnitFlags { return t.flags }

// Arguments returns the command line the unit was parsed with.
func (t *TranslationUnit) Arguments() []string { return append([]string(nil), t.args...) }

// Reparse rebuilds the unit. On failure the previous AST stays live and
// handles keep working; on success every earlier handle becomes invalid.
func (t *TranslationUnit) Reparse(unsaved []UnsavedFile, _ ReparseFlags) error {
	if t == nil || t.closed {
		return invalidHandle("translation unit disposed")
	}
	if t.traversing > 0 {
		return unsupported("reparse during traversal")
	}
	u, err := t.build(unsaved, t.flags)
	if err != nil {
		return err
	}
	t.u = u
	t.unsaved = append([]UnsavedFile(nil), unsaved...)
	t.suspended = false
	t.gen++
	t.display()
	return nil
}

// Suspend releases the AST. Only Reparse and Close are valid afterwards.
func (t *TranslationUnit) Suspend() error {
	if t == nil || t.closed {
		return invalidHandle("translation unit disposed")
	}
	if t.traversing > 0 {
		return unsupported("suspend during traversal")
	}
	t.u = nil
	t.suspended = true
	t.gen++
	return nil
}

// Close disposes the unit. Closing twice is a no-op.
func (t *TranslationUnit) Close() error {
	if t == nil || t.closed {
		return nil
	}
	if t.traversing > 0 {
		return unsupported("dispose during traversal")
	}
	t.index.unregister(t)
	t.dispose()
	return nil
}

func (t *TranslationUnit) dispose() {
	t.u = nil
	t.closed = true
	t.gen++
}

// Spelling returns the main file name.
func (t *TranslationUnit) Spelling() (string, error) {
	u, err := t.live()
	if err != nil {
		return "", err
	}
	return u.nodes[rootNode].name, nil
}

// Cursor returns the translation unit cursor.
func (t *TranslationUnit) Cursor() (Cursor, error) {
	if _, err := t.live(); err != nil {
		return NullCursor(), err
	}
	return Cursor{tu: t, gen: t.gen, id: rootNode}, nil
}

// Diagnostics returns the top-level diagnostics in source order.
func (t *TranslationUnit) Diagnostics() (DiagnosticSet, error) {
	u, err := t.live()
	if err != nil {
		return nil, err
	}
	return t.diagnosticSet(t.gen, u.diags), nil
}

// TargetInfo describes the compilation target.
type TargetInfo struct {
	Triple       string
	PointerWidth int
}

func (t *TranslationUnit) TargetInfo() (TargetInfo, error) {
	u, err := t.live()
	if err != nil {
		return TargetInfo{}, err
	}
	return TargetInfo{Triple: u.target.triple, PointerWidth: u.target.pointerWidth}, nil
}

func (t *TranslationUnit) file(id int32) File {
	return File{tu: t, gen: t.gen, id: id}
}

// MainFile returns the file the unit was parsed from.
func (t *TranslationUnit) MainFile() (File, error) {
	u, err := t.live()
	if err != nil {
		return File{id: -1}, err
	}
	return t.file(u.mainFile), nil
}

// File looks a file of the unit up by name. The second result is false
// when the unit never loaded it.
func (t *TranslationUnit) File(name string) (File, bool, error) {
	u, err := t.live()
	if err != nil {
		return File{id: -1}, false, err
	}
	if id, ok := u.fileByKey[unsavedKey(name)]; ok {
		return t.file(id), true, nil
	}
	for _, f := range u.files {
		if f.name == name {
			return t.file(f.id), true, nil
		}
	}
	return File{id: -1}, false, nil
}

// Files returns every file the unit loaded, main file first.
func (t *TranslationUnit) Files() ([]File, error) {
	u, err := t.live()
	if err != nil {
		return nil, err
	}
	out := []File{t.file(u.mainFile)}
	for _, f := range u.files {
		if f.id != u.mainFile {
			out = append(out, t.file(f.id))
		}
	}
	return out, nil
}

// firstBuffer returns the first inclusion of a file.
func (u *unit) firstBuffer(file int32) int32 {
	for i, b := range u.bufs {
		if b.file == file {
			return int32(i)
		}
	}
	return -1
}

// Location returns the location at a 1-based line and column of file.
// Positions outside the file give the null location.
func (t *TranslationUnit) Location(f File, line, col uint32) (SourceLocation, error) {
	fi, err := t.fileOf(f)
	if err != nil {
		return NullLocation(), err
	}
	off, ok := fi.offset(line, col)
	if !ok {
		return NullLocation(), nil
	}
	return t.location(t.gen, srcPos{t.u.firstBuffer(fi.id), off}, noPos), nil
}

// LocationForOffset returns the location at a byte offset of file.
func (t *TranslationUnit) LocationForOffset(f File, off uint32) (SourceLocation, error) {
	fi, err := t.fileOf(f)
	if err != nil {
		return NullLocation(), err
	}
	if int(off) > len(fi.contents) {
		return NullLocation(), nil
	}
	return t.location(t.gen, srcPos{t.u.firstBuffer(fi.id), off}, noPos), nil
}

func (t *TranslationUnit) fileOf(f File) (*fileInfo, error) {
	if _, err := t.live(); err != nil {
		return nil, err
	}
	if f.tu != t {
		return nil, invalidArgument("file belongs to another translation unit")
	}
	return f.info()
}

// Inclusions calls visit for the main file and for every included file,
// passing the stack of #include locations from innermost to outermost.
func (t *TranslationUnit) Inclusions(visit func(f File, stack []SourceLocation)) error {
	u, err := t.live()
	if err != nil {
		return err
	}
	visit(t.file(u.mainFile), nil)
	for _, inc := range u.inclusions {
		var stack []SourceLocation
		for b := inc.buf; b >= 0 && u.bufs[b].parent >= 0; b = u.bufs[b].parent {
			stack = append(stack, t.location(t.gen, srcPos{u.bufs[b].parent, u.bufs[b].includeOff}, noPos))
		}
		visit(t.file(inc.file), stack)
	}
	return nil
}

// IsFileMultipleIncludeGuarded reports a #pragma once or include guard.
func (t *TranslationUnit) IsFileMultipleIncludeGuarded(f File) (bool, error) {
	fi, err := t.fileOf(f)
	if err != nil {
		return false, err
	}
	return fi.pragmaOnce || fi.guard != "", nil
}

func (t *TranslationUnit) skipped(fi *fileInfo) []SourceRange {
	buf := t.u.firstBuffer(fi.id)
	out := make([]SourceRange, 0, len(fi.skipped))
	for _, r := range fi.skipped {
		out = append(out, t.sourceRange(t.gen, srcPos{buf, r.begin}, srcPos{buf, r.end}))
	}
	return out
}

// SkippedRanges returns the preprocessor-excluded ranges of a file.
func (t *TranslationUnit) SkippedRanges(f File) ([]SourceRange, error) {
	fi, err := t.fileOf(f)
	if err != nil {
		return nil, err
	}
	return t.skipped(fi), nil
}

// AllSkippedRanges returns the excluded ranges of every file.
func (t *TranslationUnit) AllSkippedRanges() ([]SourceRange, error) {
	u, err := t.live()
	if err != nil {
		return nil, err
	}
	var out []SourceRange
	for _, fi := range u.files {
		out = append(out, t.skipped(fi)...)
	}
	return out, nil
}

// CursorAt returns the innermost cursor whose extent contains loc, or the
// translation unit cursor when no declaration covers it.
func (t *TranslationUnit) CursorAt(loc SourceLocation) (Cursor, error) {
	u, err := t.live()
	if err != nil {
		return NullCursor(), err
	}
	if loc.IsNull() {
		return NullCursor(), nil
	}
	if loc.tu != t || loc.gen != t.gen {
		return NullCursor(), invalidHandle("location from another unit or generation")
	}
	return Cursor{tu: t, gen: t.gen, id: u.innermost(rootNode, loc.pos)}, nil
}

func (u *unit) covers(id int32, p srcPos) bool {
	n := &u.nodes[id]
	if !n.begin.valid() || !n.end.valid() || n.begin.buf != p.buf || n.end.buf != p.buf {
		return false
	}
	return n.begin.off <= p.off && p.off < n.end.off
}

// innermost descends from id to the deepest child covering p.
func (u *unit) innermost(id int32, p srcPos) int32 {
	for {
		next := int32(-1)
		for _, ch := range u.nodes[id].children {
			if u.covers(ch, p) {
				next = ch
			}
		}
		if next < 0 {
			return id
		}
		id = next
	}
}

// IncludeOrder returns the files of the unit ordered so that every file
// comes after the files it includes. It fails on include cycles.
func (t *TranslationUnit) IncludeOrder() ([]string, error) {
	u, err := t.live()
	if err != nil {
		return nil, err
	}
	order, err := graph.StableTopologicalSort(u.includes, func(a, b string) bool { return a < b })
	if err != nil {
		if errors.Is(err, graph.ErrVertexNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: include graph: %v", ErrUnsupportedOperation, err)
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	if len(order) == 0 {
		order = []string{u.files[u.mainFile].name}
	}
	return order, nil
}

// IncludeCycles returns each include cycle of the unit as a file list.
func (t *TranslationUnit) IncludeCycles() ([][]string, error) {
	u, err := t.live()
	if err != nil {
		return nil, err
	}
	sccs, err := graph.StronglyConnectedComponents(u.includes)
	if err != nil {
		return nil, err
	}
	var out [][]string
	for _, c := range sccs {
		if len(c) > 1 {
			sort.Strings(c)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.Join(out[i], ",") < strings.Join(out[j], ",") })
	return out, nil
}
