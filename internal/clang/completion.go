package clang

import (
	"sort"
	"strings"
)

// Fixed priorities; lower sorts first.
const (
	priorityLocal    = 34
	priorityMember   = 35
	priorityKeyword  = 40
	priorityDecl     = 50
	priorityConstant = 65
	priorityMacro    = 70
)

// CompletionChunk is one piece of a completion string.
type CompletionChunk struct {
	Kind CompletionChunkKind
	Text string
}

// CompletionString describes how a completion is inserted and shown.
type CompletionString struct {
	Chunks       []CompletionChunk
	Priority     int
	Availability AvailabilityKind
	BriefComment string
	Parent       string
}

// TypedText returns the text the user types to select the result.
func (s CompletionString) TypedText() string {
	for _, c := range s.Chunks {
		if c.Kind == ChunkTypedText {
			return c.Text
		}
	}
	return ""
}

func (s CompletionString) String() string {
	var sb strings.Builder
	for _, c := range s.Chunks {
		switch c.Kind {
		case ChunkResultType:
			sb.WriteString(c.Text + " ")
		case ChunkComma:
			sb.WriteString(", ")
		case ChunkPlaceholder:
			sb.WriteString("<#" + c.Text + "#>")
		default:
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

// CompletionResult is one code completion candidate.
type CompletionResult struct {
	Kind   CursorKind
	String CompletionString
}

// CodeCompleteResults is the outcome of CodeComplete.
type CodeCompleteResults struct {
	Results []CompletionResult
	// Contexts describes which kinds of entities fit at the point.
	Contexts CompletionContext
	// ContainerKind is the record kind for member access completions.
	ContainerKind CursorKind
	// Prefix is the partial identifier before the completion point.
	Prefix string

	unit *TranslationUnit
}

// Diagnostics returns the diagnostics of the parse run for completion.
func (r *CodeCompleteResults) Diagnostics() (DiagnosticSet, error) {
	if r.unit == nil {
		return nil, nil
	}
	return r.unit.Diagnostics()
}

// Filter returns the results whose typed text starts with prefix.
func (r *CodeCompleteResults) Filter(prefix string) []CompletionResult {
	var out []CompletionResult
	for _, res := range r.Results {
		if strings.HasPrefix(res.String.TypedText(), prefix) {
			out = append(out, res)
		}
	}
	return out
}

// CodeComplete reparses the unit with unsaved and lists what may be
// written at line and column of filename. Results are sorted by priority
// then typed text; ranking beyond the per-kind priorities is not done.
func (t *TranslationUnit) CodeComplete(filename string, line, col uint32, unsaved []UnsavedFile, flags CodeCompleteFlags) (*CodeCompleteResults, error) {
	if _, err := t.live(); err != nil {
		return nil, err
	}
	merged := map[string]UnsavedFile{}
	for _, f := range t.unsaved {
		merged[unsavedKey(f.Filename)] = f
	}
	for _, f := range unsaved {
		merged[unsavedKey(f.Filename)] = f
	}
	files := make([]UnsavedFile, 0, len(merged))
	for _, f := range merged {
		files = append(files, f)
	}
	cu, err := t.build(files, t.flags|FlagDetailedPreprocessingRecord|FlagKeepGoing)
	if err != nil {
		return nil, err
	}
	scratch := &TranslationUnit{index: t.index, args: t.args, cargs: t.cargs, flags: t.flags, u: cu, gen: 1}
	res := &CodeCompleteResults{unit: scratch}

	id, ok := cu.fileByKey[unsavedKey(filename)]
	if !ok {
		return nil, invalidArgument("%s is not part of the translation unit", filename)
	}
	fi := cu.files[id]
	off, ok := fi.offset(line, col)
	if !ok {
		return nil, invalidArgument("%s:%d:%d is outside the file", filename, line, col)
	}
	point := srcPos{cu.firstBuffer(id), off}

	start := off
	for start > 0 && isIdentChar(fi.contents[start-1]) {
		start--
	}
	res.Prefix = string(fi.contents[start:off])
	before := strings.TrimRight(string(fi.contents[:start]), " \t\r\n")
	brief := flags&CompleteIncludeBriefComments != 0 || t.flags.Has(FlagIncludeBriefCommentsInCodeCompletion)

	c := &completer{u: cu, point: point, brief: brief}
	c.collectVisible()
	switch {
	case strings.HasSuffix(before, "->"), strings.HasSuffix(before, "."):
		arrow := strings.HasSuffix(before, "->")
		base := strings.TrimSuffix(strings.TrimSuffix(before, "->"), ".")
		res.Contexts = ContextDotMemberAccess
		if arrow {
			res.Contexts = ContextArrowMemberAccess
		}
		res.ContainerKind, res.Results = c.members(trailingIdent(base), arrow)
	default:
		res.Contexts = ContextAnyType | ContextAnyValue | ContextStructTag | ContextUnionTag | ContextEnumTag
		res.Results = c.values()
		if flags&CompleteIncludeMacros != 0 {
			res.Contexts |= ContextMacroName
			res.Results = append(res.Results, c.macros()...)
		}
		res.Results = append(res.Results, keywordResults(cu.c23)...)
	}
	sortResults(res.Results)

	if t.flags.Has(FlagCacheCompletionResults) && res.Contexts&ContextAnyValue != 0 {
		var global []CompletionResult
		for _, r := range res.Results {
			if r.String.Priority != priorityLocal {
				global = append(global, r)
			}
		}
		t.u.completion = global
	}
	return res, nil
}

func sortResults(rs []CompletionResult) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].String.Priority != rs[j].String.Priority {
			return rs[i].String.Priority < rs[j].String.Priority
		}
		return rs[i].String.TypedText() < rs[j].String.TypedText()
	})
}

func trailingIdent(s string) string {
	i := len(s)
	for i > 0 && isIdentChar(s[i-1]) {
		i--
	}
	return s[i:]
}

// completer gathers the declarations visible at a point.
type completer struct {
	u       *unit
	point   srcPos
	brief   bool
	visible map[string]int32
	local   map[int32]bool
}

func (c *completer) before(p srcPos) bool { return c.u.comparePos(p, c.point) < 0 }

func (c *completer) collectVisible() {
	u := c.u
	c.visible = map[string]int32{}
	c.local = map[int32]bool{}
	for _, id := range u.nodes[rootNode].children {
		n := &u.nodes[id]
		if !c.before(n.loc) {
			continue
		}
		c.addDecl(id)
		if u.covers(id, c.point) && n.kind == CursorFunctionDecl {
			c.collectLocals(id)
		}
	}
}

func (c *completer) addDecl(id int32) {
	u := c.u
	n := &u.nodes[id]
	switch n.kind {
	case CursorFunctionDecl, CursorVarDecl, CursorTypedefDecl, CursorParmDecl:
		if n.name != "" && !n.has(flagImplicit) {
			c.visible[n.name] = id
		}
	case CursorStructDecl, CursorUnionDecl, CursorEnumDecl:
		if n.name != "" {
			c.visible[tagKeyword(n.kind)+" "+n.name] = id
		}
		if n.kind == CursorEnumDecl {
			for _, ch := range n.children {
				if u.nodes[ch].kind == CursorEnumConstantDecl {
					c.visible[u.nodes[ch].name] = ch
				}
			}
		}
	}
	for _, ch := range n.children {
		if k := u.nodes[ch].kind; (k == CursorStructDecl || k == CursorUnionDecl || k == CursorEnumDecl) && u.nodes[ch].lexParent == id && n.kind != CursorFunctionDecl {
			c.addDecl(ch)
		}
	}
}

// collectLocals adds the parameters of fn and the locals declared before
// the point in the blocks enclosing it.
func (c *completer) collectLocals(fn int32) {
	u := c.u
	var visit func(id int32)
	visit = func(id int32) {
		for _, ch := range u.nodes[id].children {
			n := &u.nodes[ch]
			switch {
			case n.kind == CursorParmDecl && id == fn:
				c.addDecl(ch)
				c.local[ch] = true
			case n.kind == CursorDeclStmt && c.before(n.begin):
				for _, d := range n.children {
					c.addDecl(d)
					c.local[d] = true
				}
			case n.kind.IsStatement() && u.covers(ch, c.point):
				visit(ch)
			}
		}
	}
	visit(fn)
}

func (c *completer) values() []CompletionResult {
	out := make([]CompletionResult, 0, len(c.visible))
	for _, id := range c.visible {
		prio := priorityDecl
		switch {
		case c.local[id]:
			prio = priorityLocal
		case c.u.nodes[id].kind == CursorEnumConstantDecl:
			prio = priorityConstant
		}
		out = append(out, CompletionResult{Kind: c.u.nodes[id].kind, String: c.u.completionString(id, prio, c.brief)})
	}
	return out
}

// members lists the fields of the record the named variable refers to.
func (c *completer) members(base string, arrow bool) (CursorKind, []CompletionResult) {
	u := c.u
	decl, ok := c.visible[base]
	if !ok {
		return CursorInvalidCode, nil
	}
	t := u.nodes[decl].typ
	if arrow {
		t = u.pointee(u.decay(t))
	}
	rec := u.tagDecl(t)
	if rec < 0 {
		return CursorInvalidCode, nil
	}
	def := u.definition(rec)
	if def < 0 {
		return u.nodes[rec].kind, nil
	}
	var out []CompletionResult
	var add func(r int32)
	add = func(r int32) {
		for _, ch := range u.nodes[r].children {
			m := &u.nodes[ch]
			switch {
			case m.kind == CursorFieldDecl && m.name != "":
				s := u.completionString(ch, priorityMember, c.brief)
				s.Parent = u.nodes[def].name
				out = append(out, CompletionResult{Kind: CursorFieldDecl, String: s})
			case m.has(flagAnonMember):
				add(ch)
			}
		}
	}
	add(def)
	return u.nodes[def].kind, out
}

func (c *completer) macros() []CompletionResult {
	var out []CompletionResult
	for _, m := range c.u.macros {
		if m.pos.valid() && !c.before(m.pos) {
			continue
		}
		chunks := []CompletionChunk{{ChunkTypedText, m.name}}
		if m.fnLike {
			chunks = append(chunks, CompletionChunk{ChunkLeftParen, "("})
			for i, p := range m.params {
				if i > 0 {
					chunks = append(chunks, CompletionChunk{ChunkComma, ", "})
				}
				chunks = append(chunks, CompletionChunk{ChunkPlaceholder, p})
			}
			chunks = append(chunks, CompletionChunk{ChunkRightParen, ")"})
		}
		out = append(out, CompletionResult{
			Kind:   CursorMacroDefinition,
			String: CompletionString{Chunks: chunks, Priority: priorityMacro},
		})
	}
	return out
}

func keywordResults(c23 bool) []CompletionResult {
	var out []CompletionResult
	add := func(kw string) {
		if strings.HasPrefix(kw, "__") {
			return
		}
		out = append(out, CompletionResult{
			Kind:   CursorNotImplemented,
			String: CompletionString{Chunks: []CompletionChunk{{ChunkTypedText, kw}}, Priority: priorityKeyword},
		})
	}
	for kw := range keywords {
		add(kw)
	}
	if c23 {
		for kw := range c23Keywords {
			add(kw)
		}
	}
	return out
}

// completionString builds the completion string of a declaration.
func (u *unit) completionString(id int32, priority int, brief bool) CompletionString {
	n := &u.nodes[id]
	s := CompletionString{Priority: priority, Availability: n.availability}
	if n.availability == AvailabilityDeprecated {
		s.Priority += 20
	}
	if brief {
		if d := u.commentOf(id); d >= 0 {
			s.BriefComment = u.parsedComment(d).Brief()
		}
	}
	switch n.kind {
	case CursorFunctionDecl:
		fn := u.ty(u.desugar(n.typ))
		s.Chunks = append(s.Chunks,
			CompletionChunk{ChunkResultType, u.spelling(fn.elem)},
			CompletionChunk{ChunkTypedText, n.name},
			CompletionChunk{ChunkLeftParen, "("})
		var names []string
		for _, ch := range n.children {
			if u.nodes[ch].kind == CursorParmDecl && u.nodes[ch].semParent == id {
				names = append(names, u.nodes[ch].name)
			}
		}
		for i, p := range fn.params {
			if i > 0 {
				s.Chunks = append(s.Chunks, CompletionChunk{ChunkComma, ", "})
			}
			name := ""
			if i < len(names) {
				name = names[i]
			}
			s.Chunks = append(s.Chunks, CompletionChunk{ChunkPlaceholder, u.declare(p, name)})
		}
		if fn.variadic {
			if len(fn.params) > 0 {
				s.Chunks = append(s.Chunks, CompletionChunk{ChunkComma, ", "})
			}
			s.Chunks = append(s.Chunks, CompletionChunk{ChunkPlaceholder, "..."})
		}
		s.Chunks = append(s.Chunks, CompletionChunk{ChunkRightParen, ")"})
	case CursorVarDecl, CursorParmDecl, CursorFieldDecl:
		s.Chunks = append(s.Chunks,
			CompletionChunk{ChunkResultType, u.spelling(n.typ)},
			CompletionChunk{ChunkTypedText, n.name})
	case CursorEnumConstantDecl:
		s.Chunks = append(s.Chunks,
			CompletionChunk{ChunkResultType, u.spelling(n.typ)},
			CompletionChunk{ChunkTypedText, n.name})
	case CursorStructDecl, CursorUnionDecl, CursorEnumDecl:
		s.Chunks = append(s.Chunks,
			CompletionChunk{ChunkText, tagKeyword(n.kind) + " "},
			CompletionChunk{ChunkTypedText, n.name})
	default:
		s.Chunks = append(s.Chunks, CompletionChunk{ChunkTypedText, n.name})
	}
	return s
}

// CompletionString returns the completion string a declaration would
// produce.
func (c Cursor) CompletionString() (CompletionString, error) {
	u, n, err := c.node()
	if err != nil {
		return CompletionString{}, err
	}
	if !n.kind.IsDeclaration() {
		return CompletionString{}, nil
	}
	return u.completionString(c.id, priorityDecl, true), nil
}
