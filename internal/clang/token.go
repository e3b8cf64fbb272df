package clang

// Token is a lexical token of a translation unit.
type Token struct {
	tu    *TranslationUnit
	gen   uint64
	kind  TokenKind
	text  string
	begin srcPos
	end   srcPos
}

func (t Token) Kind() TokenKind { return t.kind }

func (t Token) Spelling() string { return t.text }

func (t Token) Location() SourceLocation { return t.tu.location(t.gen, t.begin, noPos) }

func (t Token) Extent() SourceRange { return t.tu.sourceRange(t.gen, t.begin, t.end) }

// Tokenize lexes the source covered by r. Both ends must lie in the same
// inclusion of a file.
func (t *TranslationUnit) Tokenize(r SourceRange) ([]Token, error) {
	u, err := t.live()
	if err != nil {
		return nil, err
	}
	if r.IsNull() {
		return nil, nil
	}
	if r.tu != t || r.gen != t.gen {
		return nil, invalidHandle("range from another unit or generation")
	}
	if r.begin.buf != r.end.buf {
		return nil, invalidArgument("range spans more than one file")
	}
	f := u.fileOf(r.begin)
	end := r.end.off
	if int(end) > len(f.contents) {
		end = uint32(len(f.contents))
	}
	raw := lexC(f.contents, r.begin.off, end, u.c23)
	out := make([]Token, 0, len(raw))
	for _, tok := range raw {
		out = append(out, Token{
			tu:    t,
			gen:   t.gen,
			kind:  tok.kind,
			text:  tok.text,
			begin: srcPos{r.begin.buf, tok.off},
			end:   srcPos{r.begin.buf, tok.end},
		})
	}
	return out, nil
}

// TokenizeFile lexes a whole file of the unit.
func (t *TranslationUnit) TokenizeFile(f File) ([]Token, error) {
	fi, err := t.fileOf(f)
	if err != nil {
		return nil, err
	}
	buf := t.u.firstBuffer(fi.id)
	return t.Tokenize(t.sourceRange(t.gen, srcPos{buf, 0}, srcPos{buf, uint32(len(fi.contents))}))
}

// AnnotateTokens maps each token to the innermost cursor covering it. A
// token outside every declaration maps to the translation unit cursor.
func (t *TranslationUnit) AnnotateTokens(tokens []Token) ([]Cursor, error) {
	u, err := t.live()
	if err != nil {
		return nil, err
	}
	out := make([]Cursor, len(tokens))
	for i, tok := range tokens {
		if tok.tu != t || tok.gen != t.gen {
			return nil, invalidHandle("token from another unit or generation")
		}
		out[i] = t.cursor(t.gen, u.innermost(rootNode, tok.begin))
	}
	return out, nil
}
