package clang

import (
	"strconv"
	"strings"
)

// lexToken is a raw token produced by lexC.
type lexToken struct {
	kind TokenKind
	text string
	off  uint32
	end  uint32
	// spaceBefore is set when whitespace or a comment precedes the token.
	spaceBefore bool
	// origin is the buffer off and end refer to, plus one; zero for
	// tokens synthesized by the preprocessor.
	origin int32
}

var keywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true, "continue": true,
	"default": true, "do": true, "double": true, "else": true, "enum": true, "extern": true,
	"float": true, "for": true, "goto": true, "if": true, "inline": true, "int": true,
	"long": true, "register": true, "restrict": true, "return": true, "short": true,
	"signed": true, "sizeof": true, "static": true, "struct": true, "switch": true,
	"typedef": true, "union": true, "unsigned": true, "void": true, "volatile": true,
	"while": true, "_Alignas": true, "_Alignof": true, "_Atomic": true, "_Bool": true,
	"_Complex": true, "_Generic": true, "_Imaginary": true, "_Noreturn": true,
	"_Static_assert": true, "_Thread_local": true, "__attribute__": true, "__asm__": true,
	"asm": true, "__inline__": true, "__inline": true, "__restrict": true, "__restrict__": true,
	"__typeof__": true, "typeof": true, "__extension__": true, "__thread": true,
	"__volatile__": true, "__const": true, "__alignof__": true, "__builtin_va_arg": true,
	"__builtin_offsetof": true,
}

var c23Keywords = map[string]bool{
	"alignas": true, "alignof": true, "bool": true, "constexpr": true, "false": true,
	"nullptr": true, "static_assert": true, "thread_local": true, "true": true,
	"typeof_unqual": true,
}

func isKeyword(s string, c23 bool) bool {
	return keywords[s] || (c23 && c23Keywords[s])
}

var punctuators = []string{
	"%:%:", "...", "<<=", ">>=",
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||", "*=", "/=", "%=",
	"+=", "-=", "&=", "^=", "|=", "##", "<:", ":>", "<%", "%>", "%:",
}

func isIdentStart(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}

func isIdentChar(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// lexC splits src[begin:end] into raw tokens, comments included.
func lexC(src []byte, begin, end uint32, c23 bool) []lexToken {
	if int(end) > len(src) {
		end = uint32(len(src))
	}
	var out []lexToken
	i := begin
	space := false
	for i < end {
		ch := src[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v':
			i++
			space = true
			continue
		case ch == '\\' && i+1 < end && (src[i+1] == '\n' || src[i+1] == '\r'):
			i += 2
			if i < end && src[i-1] == '\r' && src[i] == '\n' {
				i++
			}
			continue
		}

		start := i
		kind := TokenPunctuation
		switch {
		case ch == '/' && i+1 < end && src[i+1] == '/':
			for i < end && src[i] != '\n' {
				i++
			}
			kind = TokenComment
		case ch == '/' && i+1 < end && src[i+1] == '*':
			i += 2
			for i < end && !(src[i] == '*' && i+1 < end && src[i+1] == '/') {
				i++
			}
			i += 2
			if i > end {
				i = end
			}
			kind = TokenComment
		case ch == '"' || ch == '\'':
			i = skipQuoted(src, i, end)
			kind = TokenLiteral
		case isIdentStart(ch):
			for i < end && isIdentChar(src[i]) {
				i++
			}
			word := string(src[start:i])
			if i < end && (src[i] == '"' || src[i] == '\'') && isEncodingPrefix(word) {
				i = skipQuoted(src, i, end)
				kind = TokenLiteral
			} else if isKeyword(word, c23) {
				kind = TokenKeyword
			} else {
				kind = TokenIdentifier
			}
		case isDigit(ch) || (ch == '.' && i+1 < end && isDigit(src[i+1])):
			i++
			for i < end {
				c := src[i]
				if (c == '+' || c == '-') && strings.ContainsRune("eEpP", rune(src[i-1])) {
					i++
					continue
				}
				if isIdentChar(c) || c == '.' || c == '\'' {
					i++
					continue
				}
				break
			}
			kind = TokenLiteral
		default:
			i++
			for _, p := range punctuators {
				if int(start)+len(p) <= int(end) && string(src[start:int(start)+len(p)]) == p {
					i = start + uint32(len(p))
					break
				}
			}
		}
		out = append(out, lexToken{
			kind:        kind,
			text:        string(src[start:i]),
			off:         start,
			end:         i,
			spaceBefore: space,
		})
		space = kind == TokenComment
	}
	return out
}

func isEncodingPrefix(s string) bool {
	return s == "L" || s == "u" || s == "U" || s == "u8"
}

func skipQuoted(src []byte, i, end uint32) uint32 {
	quote := src[i]
	i++
	for i < end && src[i] != quote && src[i] != '\n' {
		if src[i] == '\\' && i+1 < end {
			i++
		}
		i++
	}
	if i < end && src[i] == quote {
		i++
	}
	return i
}

// lexString lexes a standalone fragment such as a macro body.
func lexString(s string, c23 bool) []lexToken {
	return lexC([]byte(s), 0, uint32(len(s)), c23)
}

// dropComments filters comment tokens out of toks.
func dropComments(toks []lexToken) []lexToken {
	out := toks[:0:0]
	for _, t := range toks {
		if t.kind != TokenComment {
			out = append(out, t)
		}
	}
	return out
}

// intLiteral is a decoded integer constant.
type intLiteral struct {
	value    uint64
	unsigned bool
	longs    int // 0, 1 (l) or 2 (ll)
	decimal  bool
}

// parseIntLiteral decodes a C integer literal with its suffix.
func parseIntLiteral(text string) (intLiteral, bool) {
	var lit intLiteral
	text = strings.ReplaceAll(text, "'", "")
	body := text
	for len(body) > 0 {
		last := body[len(body)-1]
		if last == 'u' || last == 'U' {
			lit.unsigned = true
		} else if last == 'l' || last == 'L' {
			lit.longs++
		} else {
			break
		}
		body = body[:len(body)-1]
	}
	if lit.longs > 2 || body == "" {
		return lit, false
	}

	base := 10
	digits := body
	switch {
	case strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X"):
		base, digits = 16, body[2:]
	case strings.HasPrefix(body, "0b") || strings.HasPrefix(body, "0B"):
		base, digits = 2, body[2:]
	case len(body) > 1 && body[0] == '0':
		base, digits = 8, body[1:]
	}
	if digits == "" {
		return lit, false
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return lit, false
	}
	lit.value = v
	lit.decimal = base == 10
	return lit, true
}

// isFloatLiteral reports whether a pp-number is a floating constant.
func isFloatLiteral(text string) bool {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		return strings.ContainsAny(text, ".pP")
	}
	return strings.ContainsAny(text, ".eE")
}

// parseFloatLiteral decodes a floating constant and its type.
func parseFloatLiteral(text string) (float64, TypeKind, bool) {
	text = strings.ReplaceAll(text, "'", "")
	kind := TypeDouble
	switch {
	case strings.HasSuffix(text, "f") || strings.HasSuffix(text, "F"):
		kind = TypeFloat
		text = text[:len(text)-1]
	case strings.HasSuffix(text, "l") || strings.HasSuffix(text, "L"):
		kind = TypeLongDouble
		text = text[:len(text)-1]
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, kind, false
	}
	return v, kind, true
}

// unescape decodes the body of a string or character literal.
func unescape(body string) (string, bool) {
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return sb.String(), false
		}
		switch e := body[i]; e {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case 'e':
			sb.WriteByte(0x1b)
		case '\\', '\'', '"', '?':
			sb.WriteByte(e)
		case 'x':
			j := i + 1
			for j < len(body) && strings.IndexByte("0123456789abcdefABCDEF", body[j]) >= 0 {
				j++
			}
			v, err := strconv.ParseUint(body[i+1:j], 16, 8)
			if err != nil {
				return sb.String(), false
			}
			sb.WriteByte(byte(v))
			i = j - 1
		default:
			if e >= '0' && e <= '7' {
				j := i
				for j < len(body) && j < i+3 && body[j] >= '0' && body[j] <= '7' {
					j++
				}
				v, _ := strconv.ParseUint(body[i:j], 8, 16)
				sb.WriteByte(byte(v))
				i = j - 1
				continue
			}
			sb.WriteByte(e)
		}
	}
	return sb.String(), true
}

// literalBody strips the encoding prefix and quotes from a literal.
func literalBody(text string) string {
	text = strings.TrimLeft(text, "LuU8")
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return ""
}

// parseCharLiteral returns the value of a character constant.
func parseCharLiteral(text string) (int64, bool) {
	s, ok := unescape(literalBody(text))
	if !ok || s == "" {
		return 0, false
	}
	if len(s) == 1 {
		return int64(int8(s[0])), true
	}
	// multi-character constants pack big-endian like clang.
	var v int64
	for i := 0; i < len(s) && i < 4; i++ {
		v = v<<8 | int64(s[i])
	}
	return int64(int32(v)), true
}
