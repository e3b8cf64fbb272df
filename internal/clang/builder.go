package clang

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mvp-joe/cxgraph/internal/syntax"
	"github.com/mvp-joe/cxgraph/internal/vfs"
)

const maxIncludeDepth = 200

// builder runs the preprocessor and lowers tree-sitter trees into a unit in
// one pass over the translation unit.
type builder struct {
	index    *Index
	args     *compileArgs
	flags    TranslationUnitFlags
	unsaved  map[string][]byte
	overlays []*vfs.Overlay
	u        *unit
	diags    *collector
	macros   map[string]*macro
	now      time.Time
	counter  int64

	buf     int32
	file    *fileInfo
	mainBuf int32
	roots   uint32

	sc        *scope
	fileScope *scope
	ctx       int32
	fn        *funcState
	implicit  map[string]int32
	statics   []int32
	comments  map[int32][]commentSpan
}

func newBuilder(ix *Index, a *compileArgs, unsaved []UnsavedFile, flags TranslationUnitFlags) *builder {
	u := newUnit(newTargetInfo(a), a.stdVersion() >= 202311)
	b := &builder{
		index:    ix,
		args:     a,
		flags:    flags,
		unsaved:  map[string][]byte{},
		u:        u,
		diags:    newCollector(u, a, flags),
		macros:   map[string]*macro{},
		now:      time.Now(),
		buf:      -1,
		mainBuf:  -1,
		ctx:      rootNode,
		implicit: map[string]int32{},
		comments: map[int32][]commentSpan{},
	}
	for _, f := range unsaved {
		b.unsaved[unsavedKey(f.Filename)] = f.Contents
	}
	b.fileScope = newScope(nil, scopeFile)
	b.sc = b.fileScope
	return b
}

// build produces the unit for one parse. Diagnostics never fail a build;
// only an unreadable main file does.
func build(ix *Index, a *compileArgs, unsaved []UnsavedFile, flags TranslationUnitFlags) (*unit, error) {
	b := newBuilder(ix, a, unsaved, flags)
	u := b.u
	b.loadOverlays()
	b.predefine()
	u.headerDirs = len(a.quoteDirs) + len(a.includeDirs) + len(a.systemDirs)

	main, err := b.load(a.source, false)
	if err != nil {
		return nil, &ParseError{
			Code:   ErrorFailure,
			Source: a.source,
			Err:    fmt.Errorf("%w: %v", ErrInvalidArgument, err),
		}
	}
	u.mainFile = main.id
	u.nodes[rootNode].name = a.source
	u.nodes[rootNode].file = main.id

	for _, name := range a.forced {
		f, _ := b.findInclude(name, false)
		if f == nil {
			b.diags.fatalError(catLexical, noPos, "'%s' file not found", name)
			continue
		}
		id := b.enterFile(f, 0, b.topLevel)
		u.inclusions = append(u.inclusions, inclusion{file: f.id, buf: id, directive: -1})
	}
	b.mainBuf = int32(len(u.bufs))
	b.enterFile(main, 0, b.topLevel)
	u.nodes[rootNode].begin = srcPos{b.mainBuf, 0}
	u.nodes[rootNode].end = srcPos{b.mainBuf, uint32(len(main.contents))}
	b.finish()
	return u, nil
}

func (b *builder) detailed() bool { return b.flags.Has(FlagDetailedPreprocessingRecord) }

func (b *builder) pos(n *syntax.Node) srcPos {
	if n == nil {
		return noPos
	}
	return srcPos{b.buf, n.StartByte}
}

func (b *builder) endPos(n *syntax.Node) srcPos {
	if n == nil {
		return noPos
	}
	return srcPos{b.buf, n.EndByte}
}

func (b *builder) src(n *syntax.Node) string { return n.Text(b.file.contents) }

func (b *builder) inMainFile() bool { return b.file != nil && b.file.id == b.u.mainFile }

func (b *builder) loadOverlays() {
	for _, path := range b.args.vfsOverlays {
		o, err := vfs.Load(path)
		if err != nil {
			b.diags.fatalError(catLexical, noPos, "invalid virtual filesystem overlay file '%s'", path)
			continue
		}
		b.overlays = append(b.overlays, o)
	}
}

// load reads a file through the unsaved files, the VFS overlays and the
// disk, in that order. Files are loaded once per unit.
func (b *builder) load(path string, system bool) (*fileInfo, error) {
	key := unsavedKey(path)
	if id, ok := b.u.fileByKey[key]; ok {
		return b.u.files[id], nil
	}
	var (
		contents []byte
		modTime  time.Time
	)
	contents, unsaved := b.unsaved[key]
	if !unsaved {
		real := key
		for _, o := range b.overlays {
			if r, ok := o.Resolve(key); ok {
				real = r
				break
			}
		}
		st, err := os.Stat(real)
		if err != nil {
			return nil, err
		}
		if st.IsDir() {
			return nil, fmt.Errorf("%s is a directory", real)
		}
		if contents, err = os.ReadFile(real); err != nil {
			return nil, err
		}
		modTime = st.ModTime()
	}
	f := newFileInfo(int32(len(b.u.files)), path, key, contents)
	f.modTime = modTime
	f.system = system
	f.unsaved = unsaved
	b.u.files = append(b.u.files, f)
	b.u.fileByKey[key] = f.id
	if unsaved {
		b.u.unsavedSz += len(contents)
	}
	return f, nil
}

type searchDir struct {
	path   string
	system bool
}

// findInclude resolves an #include name. Quoted names search the includer's
// directory and -iquote first; both forms then search -I and -isystem.
func (b *builder) findInclude(name string, angled bool) (*fileInfo, string) {
	if filepath.IsAbs(name) {
		f, err := b.load(name, false)
		if err != nil {
			return nil, ""
		}
		return f, name
	}
	var dirs []searchDir
	if !angled {
		if b.file != nil {
			dirs = append(dirs, searchDir{filepath.Dir(b.file.name), b.file.system})
		} else {
			dirs = append(dirs, searchDir{".", false})
		}
		for _, d := range b.args.quoteDirs {
			dirs = append(dirs, searchDir{d, false})
		}
	}
	for _, d := range b.args.includeDirs {
		dirs = append(dirs, searchDir{d, false})
	}
	for _, d := range b.args.systemDirs {
		dirs = append(dirs, searchDir{d, true})
	}
	for _, d := range dirs {
		p := filepath.Join(d.path, name)
		if f, err := b.load(p, d.system); err == nil {
			return f, p
		}
	}
	return nil, ""
}

func (b *builder) usePreamble(f *fileInfo) bool {
	return b.flags.Has(FlagPrecompiledPreamble) && b.index != nil && b.index.preamble != nil && f.id != b.u.mainFile
}

func (b *builder) parse(f *fileInfo) error {
	if f.syntax != nil {
		return nil
	}
	var (
		tree *syntax.File
		err  error
	)
	if b.usePreamble(f) {
		tree, err = b.index.preamble.Parse(f.key, f.contents)
	} else {
		tree, err = syntax.Parse(f.name, f.contents)
	}
	if err != nil {
		return err
	}
	f.syntax = tree
	detectGuard(f)
	return nil
}

// enterFile pushes a buffer for one inclusion of f and hands its top-level
// items to each. It returns the new buffer.
func (b *builder) enterFile(f *fileInfo, includeOff uint32, each func([]*syntax.Node)) int32 {
	buf := buffer{file: f.id, parent: b.buf, includeOff: includeOff}
	if b.buf < 0 {
		buf.chain = []uint32{b.roots}
		b.roots++
	} else {
		p := b.u.bufs[b.buf]
		buf.depth = p.depth + 1
		buf.chain = append(append([]uint32(nil), p.chain...), includeOff)
	}
	b.u.bufs = append(b.u.bufs, buf)
	id := int32(len(b.u.bufs) - 1)

	if err := b.parse(f); err != nil {
		b.diags.fatalError(catLexical, noPos, "could not parse '%s': %v", f.name, err)
		return id
	}
	savedBuf, savedFile := b.buf, b.file
	b.buf, b.file = id, f
	f.included++
	items := f.syntax.Root.Children
	b.checkSyntax(items)
	b.collectComments(f, id)
	each(items)
	b.buf, b.file = savedBuf, savedFile
	return id
}

// includeName decodes the operand of #include, expanding macros when it is
// not a literal header name.
func (b *builder) includeName(path *syntax.Node) (name string, angled, ok bool) {
	switch path.Kind {
	case "string_literal":
		return literalBody(b.src(path)), false, true
	case "system_lib_string":
		s := b.src(path)
		return s[1 : len(s)-1], true, true
	}
	toks := b.expand(dropComments(lexC(b.file.contents, path.StartByte, path.EndByte, b.u.c23)), nil, true, 0)
	switch {
	case len(toks) == 1 && strings.HasPrefix(toks[0].text, `"`):
		return literalBody(toks[0].text), false, true
	case len(toks) >= 2 && toks[0].text == "<" && toks[len(toks)-1].text == ">":
		var sb strings.Builder
		for _, t := range toks[1 : len(toks)-1] {
			sb.WriteString(t.text)
		}
		return sb.String(), true, true
	}
	return "", false, false
}

func (b *builder) include(n *syntax.Node, each func([]*syntax.Node)) {
	path := n.ChildByField("path")
	if path == nil || path.Missing {
		return
	}
	name, angled, ok := b.includeName(path)
	loc := b.pos(n)
	dir := int32(-1)
	if b.detailed() {
		dir = b.u.newNode(CursorInclusionDirective, name, loc, loc, b.endPos(path))
		d := &b.u.nodes[dir]
		d.semParent, d.lexParent = rootNode, rootNode
		b.u.addChild(rootNode, dir)
	}
	if !ok {
		b.diags.error(catLexical, b.pos(path), "expected \"FILENAME\" or <FILENAME>")
		return
	}
	if b.flags.Has(FlagSingleFileParse) {
		return
	}
	if b.u.bufs[b.buf].depth+1 >= maxIncludeDepth {
		b.diags.error(catLexical, b.pos(path), "#include nested too deeply")
		return
	}
	f, _ := b.findInclude(name, angled)
	if f == nil {
		b.diags.fatalError(catLexical, b.pos(path), "'%s' file not found", name)
		return
	}
	if dir >= 0 {
		b.u.nodes[dir].file = f.id
	}
	b.u.includes.AddVertex(b.file.name)
	b.u.includes.AddVertex(f.name)
	_ = b.u.includes.AddEdge(b.file.name, f.name)

	if f.syntax != nil {
		if f.pragmaOnce {
			return
		}
		if _, guarded := b.macros[f.guard]; f.guard != "" && guarded {
			return
		}
	}
	id := b.enterFile(f, n.StartByte, each)
	b.u.inclusions = append(b.u.inclusions, inclusion{file: f.id, buf: id, directive: dir})
}

// atFileScope reports whether a syntax node sits outside any function body.
func atFileScope(n *syntax.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		switch p.Kind {
		case "compound_statement", "function_definition", "field_declaration_list", "parameter_list":
			return false
		}
	}
	return true
}

// checkSyntax reports ERROR and MISSING nodes of items, leaving nested
// conditional blocks to be checked when they are taken.
func (b *builder) checkSyntax(items []*syntax.Node) {
	for _, it := range items {
		syntax.Walk(it, func(n *syntax.Node) bool {
			switch {
			case n.Missing:
				b.reportMissing(n)
				return false
			case n.Kind == "ERROR":
				b.reportError(n)
				return false
			case ppKind(n) == "preproc_if" || ppKind(n) == "preproc_ifdef":
				return false
			}
			return true
		})
	}
}

func (b *builder) reportMissing(n *syntax.Node) {
	off := n.StartByte
	for off > 0 && strings.IndexByte(" \t\r\n", b.file.contents[off-1]) >= 0 {
		off--
	}
	at := srcPos{b.buf, off}
	if n.Named {
		msg := "expected expression"
		switch n.Kind {
		case "identifier", "type_identifier", "field_identifier", "statement_identifier":
			msg = "expected identifier"
		case "primitive_type":
			msg = "expected a type"
		}
		b.diags.error(catParse, at, "%s", msg)
		return
	}
	msg := fmt.Sprintf("expected '%s'", n.Kind)
	if n.Kind == ";" && n.Parent != nil {
		switch p := n.Parent; p.Kind {
		case "declaration", "type_definition":
			if atFileScope(p) {
				msg = "expected ';' after top level declarator"
			} else {
				msg = "expected ';' at end of declaration"
			}
		case "expression_statement":
			msg = "expected ';' after expression"
		case "return_statement":
			msg = "expected ';' after return statement"
		case "break_statement":
			msg = "expected ';' after break statement"
		case "continue_statement":
			msg = "expected ';' after continue statement"
		case "goto_statement":
			msg = "expected ';' after goto statement"
		case "do_statement":
			msg = "expected ';' after do/while statement"
		case "field_declaration":
			msg = "expected ';' at end of declaration list"
		default:
			if prev := previousSibling(n); prev != nil {
				switch prev.Kind {
				case "struct_specifier":
					msg = "expected ';' after struct"
				case "union_specifier":
					msg = "expected ';' after union"
				case "enum_specifier":
					msg = "expected ';' after enum"
				}
			}
		}
	}
	b.diags.error(catParse, at, "%s", msg).addFixit(at, at, n.Kind)
}

func previousSibling(n *syntax.Node) *syntax.Node {
	if n.Parent == nil {
		return nil
	}
	var prev *syntax.Node
	for _, ch := range n.Parent.Children {
		if ch == n {
			return prev
		}
		if ch.Kind != "comment" {
			prev = ch
		}
	}
	return nil
}

func (b *builder) reportError(n *syntax.Node) {
	at := b.pos(n)
	text := strings.TrimSpace(b.src(n))
	p := n.Parent
	msg := "expected expression"
	switch {
	case p == nil || p.Kind == "translation_unit" || strings.HasPrefix(p.Kind, "preproc_") && atFileScope(p):
		msg = "expected identifier or '('"
		if text == "}" {
			msg = "extraneous closing brace ('}')"
		}
	case p.Kind == "field_declaration_list":
		msg = "expected member name or ';' after declaration specifiers"
	case p.Kind == "parameter_list":
		msg = "expected parameter declarator"
	case p.Kind == "enumerator_list":
		msg = "expected identifier"
	}
	b.diags.error(catParse, at, "%s", msg).addRange(at, b.endPos(n))
}

// topLevel lowers file-scope items.
func (b *builder) topLevel(items []*syntax.Node) {
	for _, n := range items {
		if !n.Named {
			continue
		}
		switch n.Kind {
		case "comment", "ERROR":
		case "function_definition":
			b.functionDefinition(n, rootNode)
		case "declaration":
			b.declaration(n, rootNode)
		case "type_definition":
			b.typeDefinition(n, rootNode)
		case "struct_specifier", "union_specifier", "enum_specifier":
			b.standaloneTag(n, rootNode)
		case "linkage_specification":
			if body := n.ChildByField("body"); body != nil {
				if body.Kind == "declaration_list" {
					b.topLevel(body.Children)
				} else {
					b.topLevel([]*syntax.Node{body})
				}
			}
		case "expression_statement":
			if !b.staticAssert(n, rootNode) {
				b.diags.error(catParse, b.pos(n), "expected identifier or '('")
			}
		default:
			if b.directive(n, b.topLevel) {
				continue
			}
			if strings.HasSuffix(n.Kind, "_statement") {
				b.diags.error(catParse, b.pos(n), "expected identifier or '('")
			}
		}
	}
}

// finish runs end-of-unit checks and orders the unit.
func (b *builder) finish() {
	u := b.u
	if !b.flags.Has(FlagIncomplete) {
		for _, fn := range b.statics {
			n := &u.nodes[fn]
			def := u.definition(fn)
			if def != fn || u.used(fn) || n.has(flagInline) {
				continue
			}
			b.diags.warning("unused-function", false, true, catSemantic, n.loc, "unused function '%s'", n.name)
		}
	}
	if b.index != nil && b.index.excludePCH && b.flags.Has(FlagPrecompiledPreamble) {
		root := &u.nodes[rootNode]
		kept := root.children[:0]
		for _, ch := range root.children {
			if u.fileIDOf(u.nodes[ch].loc) == u.mainFile {
				kept = append(kept, ch)
			}
		}
		root.children = kept
	}
	b.attachComments()
	for _, m := range b.macros {
		pos := noPos
		if m.buf >= 0 {
			pos = srcPos{m.buf, m.namePos}
		}
		params := m.params
		if m.variadic {
			params = append(append([]string(nil), params...), "...")
		}
		u.macros = append(u.macros, macroSummary{name: m.name, params: params, fnLike: m.fnLike, builtin: m.builtin, pos: pos, def: m.def})
	}
	sort.Slice(u.macros, func(i, j int) bool { return u.macros[i].name < u.macros[j].name })
	u.sortChildren(rootNode)
	u.diags = b.diags.sorted()
}

// used reports whether any declaration of decl's entity was referenced.
func (u *unit) used(decl int32) bool {
	if ent := u.nodes[decl].ent; ent >= 0 {
		for _, d := range u.ents[ent].decls {
			if u.nodes[d].has(flagUsed) {
				return true
			}
		}
		return false
	}
	return u.nodes[decl].has(flagUsed)
}
