package clang

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
	"time"
)

// LocationKind selects which flavor of a location Position decodes.
type LocationKind int

const (
	// LocationExpansion is where the text was expanded (macro use site).
	LocationExpansion LocationKind = iota
	// LocationSpelling is where the characters were written (macro body).
	LocationSpelling
	// LocationPresumed honors #line directives.
	LocationPresumed
	// LocationFile is the file position of the expansion location.
	LocationFile
)

func (k LocationKind) String() string {
	switch k {
	case LocationSpelling:
		return "spelling"
	case LocationPresumed:
		return "presumed"
	case LocationFile:
		return "file"
	}
	return "expansion"
}

// UnsavedFile supplies in-memory contents for a path.
type UnsavedFile struct {
	Filename string
	Contents []byte
}

// unsavedKey normalizes paths the same way file lookups do.
func unsavedKey(name string) string {
	if abs, err := filepath.Abs(name); err == nil {
		return abs
	}
	return filepath.Clean(name)
}

// File is a source file of a translation unit.
type File struct {
	tu  *TranslationUnit
	gen uint64
	id  int32
}

// FileUniqueID identifies a file independently of the path used to reach it.
type FileUniqueID [3]uint64

func (f File) IsNull() bool { return f.tu == nil || f.id < 0 }

func (f File) info() (*fileInfo, error) {
	if f.IsNull() {
		return nil, invalidHandle("null file")
	}
	u, err := f.tu.check(f.gen)
	if err != nil {
		return nil, err
	}
	return u.files[f.id], nil
}

// Name returns the path the file was found under.
func (f File) Name() (string, error) {
	fi, err := f.info()
	if err != nil {
		return "", err
	}
	return fi.name, nil
}

// Contents returns the bytes the unit was parsed from.
func (f File) Contents() ([]byte, error) {
	fi, err := f.info()
	if err != nil {
		return nil, err
	}
	return fi.contents, nil
}

// ModTime returns the modification time; zero for unsaved files.
func (f File) ModTime() (time.Time, error) {
	fi, err := f.info()
	if err != nil {
		return time.Time{}, err
	}
	return fi.modTime, nil
}

func (f File) UniqueID() (FileUniqueID, error) {
	fi, err := f.info()
	if err != nil {
		return FileUniqueID{}, err
	}
	h := fnv.New64a()
	h.Write([]byte(fi.key))
	return FileUniqueID{h.Sum64(), uint64(len(fi.contents)), uint64(fi.modTime.Unix())}, nil
}

// IsGuarded reports whether the file is protected by #pragma once or an
// include guard.
func (f File) IsGuarded() (bool, error) {
	fi, err := f.info()
	if err != nil {
		return false, err
	}
	return fi.pragmaOnce || fi.guard != "", nil
}

// Equal reports whether two handles name the same file. Files of different
// units compare by resolved path.
func (f File) Equal(o File) bool {
	if f.IsNull() || o.IsNull() {
		return f.IsNull() && o.IsNull()
	}
	if f.tu == o.tu {
		return f.id == o.id
	}
	a, errA := f.info()
	b, errB := o.info()
	return errA == nil && errB == nil && a.key == b.key
}

// SourceLocation is a position inside a translation unit.
type SourceLocation struct {
	tu    *TranslationUnit
	gen   uint64
	pos   srcPos
	spell srcPos
}

// NullLocation returns the location that points nowhere.
func NullLocation() SourceLocation {
	return SourceLocation{pos: noPos, spell: noPos}
}

func (t *TranslationUnit) location(gen uint64, p, spell srcPos) SourceLocation {
	if !p.valid() {
		return NullLocation()
	}
	if !spell.valid() {
		spell = p
	}
	return SourceLocation{tu: t, gen: gen, pos: p, spell: spell}
}

func (l SourceLocation) IsNull() bool { return l.tu == nil || !l.pos.valid() }

// Position is a decoded location.
type Position struct {
	File     File
	Filename string
	Line     uint32
	Column   uint32
	Offset   uint32
}

// Position decodes the location. The null location decodes to zeros.
func (l SourceLocation) Position(kind LocationKind) (Position, error) {
	if l.IsNull() {
		return Position{File: File{id: -1}}, nil
	}
	u, err := l.tu.check(l.gen)
	if err != nil {
		return Position{}, err
	}
	p := l.pos
	if kind == LocationSpelling {
		p = l.spell
	}
	fi := u.fileOf(p)
	if fi == nil {
		return Position{File: File{id: -1}}, nil
	}
	line, col := fi.lineCol(p.off)
	pos := Position{
		File:     File{tu: l.tu, gen: l.gen, id: fi.id},
		Filename: fi.name,
		Line:     line,
		Column:   col,
		Offset:   p.off,
	}
	if kind == LocationPresumed {
		pos.Filename, pos.Line = fi.presumed(p.off, line)
	}
	return pos, nil
}

// presumed applies #line directives to an offset.
func (f *fileInfo) presumed(off, line uint32) (string, uint32) {
	name := f.name
	var last *lineDirective
	for i := range f.lineDirs {
		d := &f.lineDirs[i]
		if d.off > off {
			break
		}
		if d.file != "" {
			name = d.file
		}
		last = d
	}
	if last == nil {
		return name, line
	}
	dirLine, _ := f.lineCol(last.off)
	return name, last.line + line - dirLine
}

func (l SourceLocation) IsInSystemHeader() (bool, error) {
	if l.IsNull() {
		return false, nil
	}
	u, err := l.tu.check(l.gen)
	if err != nil {
		return false, err
	}
	fi := u.fileOf(l.pos)
	return fi != nil && fi.system, nil
}

func (l SourceLocation) IsFromMainFile() (bool, error) {
	if l.IsNull() {
		return false, nil
	}
	u, err := l.tu.check(l.gen)
	if err != nil {
		return false, err
	}
	return u.fileIDOf(l.pos) == u.mainFile, nil
}

// IsBefore reports whether l precedes o in translation order.
func (l SourceLocation) IsBefore(o SourceLocation) (bool, error) {
	if l.IsNull() || o.IsNull() {
		return false, invalidHandle("null location")
	}
	if l.tu != o.tu {
		return false, invalidArgument("locations belong to different translation units")
	}
	u, err := l.tu.check(l.gen)
	if err != nil {
		return false, err
	}
	if _, err := o.tu.check(o.gen); err != nil {
		return false, err
	}
	return u.comparePos(l.pos, o.pos) < 0, nil
}

func (l SourceLocation) Equal(o SourceLocation) bool {
	if l.IsNull() || o.IsNull() {
		return l.IsNull() && o.IsNull()
	}
	return l.tu == o.tu && l.gen == o.gen && l.pos == o.pos
}

func (l SourceLocation) String() string {
	p, err := l.Position(LocationExpansion)
	if err != nil || l.IsNull() || p.Filename == "" {
		return "<invalid loc>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// SourceRange is a half-open range between two locations of one buffer.
type SourceRange struct {
	tu    *TranslationUnit
	gen   uint64
	begin srcPos
	end   srcPos
}

// NullRange returns the empty range that points nowhere.
func NullRange() SourceRange {
	return SourceRange{begin: noPos, end: noPos}
}

func (t *TranslationUnit) sourceRange(gen uint64, begin, end srcPos) SourceRange {
	if !begin.valid() {
		return NullRange()
	}
	if !end.valid() {
		end = begin
	}
	return SourceRange{tu: t, gen: gen, begin: begin, end: end}
}

// NewRange builds a range from two locations of the same unit.
func NewRange(begin, end SourceLocation) (SourceRange, error) {
	if begin.IsNull() || end.IsNull() {
		return NullRange(), nil
	}
	if begin.tu != end.tu || begin.gen != end.gen {
		return NullRange(), invalidArgument("range ends belong to different translation units")
	}
	return SourceRange{tu: begin.tu, gen: begin.gen, begin: begin.pos, end: end.pos}, nil
}

func (r SourceRange) IsNull() bool { return r.tu == nil || !r.begin.valid() }

func (r SourceRange) IsEmpty() bool { return r.begin == r.end }

func (r SourceRange) Begin() SourceLocation {
	if r.IsNull() {
		return NullLocation()
	}
	return SourceLocation{tu: r.tu, gen: r.gen, pos: r.begin, spell: r.begin}
}

func (r SourceRange) End() SourceLocation {
	if r.IsNull() {
		return NullLocation()
	}
	return SourceLocation{tu: r.tu, gen: r.gen, pos: r.end, spell: r.end}
}

// Contains reports whether loc lies inside r. Handles from another unit or
// generation are never contained.
func (r SourceRange) Contains(loc SourceLocation) bool {
	if r.IsNull() || loc.IsNull() || r.tu != loc.tu || r.gen != loc.gen {
		return false
	}
	u, err := r.tu.check(r.gen)
	if err != nil {
		return false
	}
	if u.comparePos(loc.pos, r.begin) < 0 {
		return false
	}
	if r.IsEmpty() {
		return loc.pos == r.begin
	}
	return u.comparePos(loc.pos, r.end) < 0
}

func (r SourceRange) Equal(o SourceRange) bool {
	if r.IsNull() || o.IsNull() {
		return r.IsNull() && o.IsNull()
	}
	return r.tu == o.tu && r.gen == o.gen && r.begin == o.begin && r.end == o.end
}

func (r SourceRange) String() string {
	if r.IsNull() {
		return "<invalid range>"
	}
	b, errB := r.Begin().Position(LocationExpansion)
	e, errE := r.End().Position(LocationExpansion)
	if errB != nil || errE != nil {
		return "<invalid range>"
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", b.Filename, b.Line, b.Column, e.Line, e.Column)
}

// FixIt is a suggested edit. An empty range inserts, an empty replacement
// deletes.
type FixIt struct {
	Range       SourceRange
	Replacement string
}

func (f FixIt) IsInsertion() bool { return f.Range.IsEmpty() }

func (f FixIt) IsRemoval() bool { return f.Replacement == "" && !f.Range.IsEmpty() }
