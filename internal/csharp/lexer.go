package csharp

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokPunct
	tokString
	tokChar
	tokNumber
)

type token struct {
	kind     tokenKind
	text     string
	span     syntax.Span
	verbatim bool // @identifier, never a keyword
}

func (t token) is(text string) bool {
	return (t.kind == tokPunct || (t.kind == tokIdent && !t.verbatim)) && t.text == text
}

type lexer struct {
	src       []byte
	pos       int
	lineStart bool
	tokens    []token
	trivia    []syntax.Trivia
	errs      []lexError
}

type lexError struct {
	off uint32
	msg string
}

func lex(src []byte) *lexer {
	lx := &lexer{src: src, lineStart: true}
	lx.run()
	return lx
}

func (lx *lexer) off(i int) uint32 {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		return ^uint32(0)
	}
	return v
}

func (lx *lexer) span(start, end int) syntax.Span {
	return syntax.Span{Start: lx.off(start), End: lx.off(end)}
}

func (lx *lexer) errorf(at int, format string, args ...any) {
	lx.errs = append(lx.errs, lexError{off: lx.off(at), msg: fmt.Sprintf(format, args...)})
}

func (lx *lexer) peek(n int) byte {
	if lx.pos+n < len(lx.src) {
		return lx.src[lx.pos+n]
	}
	return 0
}

func (lx *lexer) run() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\n':
			lx.pos++
			lx.lineStart = true
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			lx.pos++
		case c == 0xEF && lx.peek(1) == 0xBB && lx.peek(2) == 0xBF:
			lx.pos += 3
		case c == '#' && lx.lineStart:
			lx.directive()
		case c == '/' && lx.peek(1) == '/':
			lx.lineComment()
		case c == '/' && lx.peek(1) == '*':
			lx.blockComment()
		default:
			lx.lineStart = false
			lx.token()
		}
	}
	lx.tokens = append(lx.tokens, token{kind: tokEOF, span: lx.span(len(lx.src), len(lx.src))})
}

func (lx *lexer) toEOL() int {
	end := lx.pos
	for end < len(lx.src) && lx.src[end] != '\n' {
		end++
	}
	if end > lx.pos && lx.src[end-1] == '\r' {
		return end - 1
	}
	return end
}

func (lx *lexer) directive() {
	start := lx.pos
	end := lx.toEOL()
	lx.trivia = append(lx.trivia, syntax.Trivia{
		Kind: syntax.TriviaDirective,
		Span: lx.span(start, end),
		Text: string(lx.src[start:end]),
	})
	lx.pos = end
}

func (lx *lexer) lineComment() {
	start := lx.pos
	end := lx.toEOL()
	lx.trivia = append(lx.trivia, syntax.Trivia{
		Kind: syntax.TriviaLineComment,
		Span: lx.span(start, end),
		Text: string(lx.src[start:end]),
	})
	lx.pos = end
}

func (lx *lexer) blockComment() {
	start := lx.pos
	lx.pos += 2
	for lx.pos < len(lx.src) && !(lx.src[lx.pos] == '*' && lx.peek(1) == '/') {
		lx.pos++
	}
	if lx.pos >= len(lx.src) {
		lx.errorf(start, "unterminated block comment")
	} else {
		lx.pos += 2
	}
	lx.trivia = append(lx.trivia, syntax.Trivia{
		Kind: syntax.TriviaBlockComment,
		Span: lx.span(start, lx.pos),
		Text: string(lx.src[start:lx.pos]),
	})
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (lx *lexer) emit(kind tokenKind, start int) {
	lx.tokens = append(lx.tokens, token{
		kind: kind,
		text: string(lx.src[start:lx.pos]),
		span: lx.span(start, lx.pos),
	})
}

func (lx *lexer) token() {
	start := lx.pos
	c := lx.src[lx.pos]

	switch {
	case c == '@' && lx.peek(1) == '"':
		lx.pos++
		lx.verbatimString(start)
	case c == '@' && (lx.peek(1) == '$') && lx.peek(2) == '"':
		lx.pos += 2
		lx.verbatimString(start)
	case (c == '$' && lx.peek(1) == '@' && lx.peek(2) == '"'):
		lx.pos += 2
		lx.verbatimString(start)
	case c == '@' && isIdentStart(lx.peek(1)):
		lx.pos++
		for lx.pos < len(lx.src) && isIdentPart(lx.src[lx.pos]) {
			lx.pos++
		}
		lx.tokens = append(lx.tokens, token{
			kind:     tokIdent,
			text:     string(lx.src[start+1 : lx.pos]),
			span:     lx.span(start, lx.pos),
			verbatim: true,
		})
	case isIdentStart(c):
		for lx.pos < len(lx.src) && isIdentPart(lx.src[lx.pos]) {
			lx.pos++
		}
		lx.emit(tokIdent, start)
	case c >= '0' && c <= '9':
		for lx.pos < len(lx.src) && (isIdentPart(lx.src[lx.pos]) || lx.src[lx.pos] == '.') {
			if lx.src[lx.pos] == '.' && !(lx.peek(1) >= '0' && lx.peek(1) <= '9') {
				break
			}
			lx.pos++
		}
		lx.emit(tokNumber, start)
	case c == '$' && lx.peek(1) == '"':
		lx.pos++
		lx.quoted(start, true)
	case c == '"':
		lx.quoted(start, false)
	case c == '\'':
		lx.charLit(start)
	case c == ':' && lx.peek(1) == ':':
		lx.pos += 2
		lx.emit(tokPunct, start)
	case c == '=' && lx.peek(1) == '>':
		lx.pos += 2
		lx.emit(tokPunct, start)
	default:
		lx.pos++
		lx.emit(tokPunct, start)
	}
}

// quoted scans a regular, interpolated or raw string literal starting at the
// opening quote under lx.pos.
func (lx *lexer) quoted(start int, interpolated bool) {
	quotes := 0
	for lx.pos+quotes < len(lx.src) && lx.src[lx.pos+quotes] == '"' {
		quotes++
	}
	if quotes >= 3 {
		lx.rawString(start, quotes)
		return
	}

	lx.pos++
	depth := 0
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\\' && depth == 0:
			lx.pos += 2
			continue
		case c == '\n' && depth == 0:
			lx.errorf(start, "unterminated string literal")
			lx.emit(tokString, start)
			return
		case c == '"' && depth == 0:
			lx.pos++
			lx.emit(tokString, start)
			return
		case interpolated && c == '{' && lx.peek(1) == '{' && depth == 0:
			lx.pos += 2
			continue
		case interpolated && c == '{':
			depth++
		case interpolated && c == '}' && depth > 0:
			depth--
		case depth > 0 && c == '"':
			nested := len(lx.tokens)
			lx.quoted(lx.pos, false)
			lx.tokens = lx.tokens[:nested]
			continue
		}
		lx.pos++
	}
	lx.errorf(start, "unterminated string literal")
	lx.emit(tokString, start)
}

func (lx *lexer) rawString(start, quotes int) {
	lx.pos += quotes
	for lx.pos < len(lx.src) {
		if lx.src[lx.pos] == '"' {
			n := 0
			for lx.pos+n < len(lx.src) && lx.src[lx.pos+n] == '"' {
				n++
			}
			lx.pos += n
			if n >= quotes {
				lx.emit(tokString, start)
				return
			}
			continue
		}
		lx.pos++
	}
	lx.errorf(start, "unterminated raw string literal")
	lx.emit(tokString, start)
}

func (lx *lexer) verbatimString(start int) {
	lx.pos++ // opening quote
	for lx.pos < len(lx.src) {
		if lx.src[lx.pos] == '"' {
			if lx.peek(1) == '"' {
				lx.pos += 2
				continue
			}
			lx.pos++
			lx.emit(tokString, start)
			return
		}
		lx.pos++
	}
	lx.errorf(start, "unterminated verbatim string literal")
	lx.emit(tokString, start)
}

func (lx *lexer) charLit(start int) {
	lx.pos++
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '\'' && lx.src[lx.pos] != '\n' {
		if lx.src[lx.pos] == '\\' {
			lx.pos++
		}
		lx.pos++
	}
	if lx.pos < len(lx.src) && lx.src[lx.pos] == '\'' {
		lx.pos++
	} else {
		lx.errorf(start, "unterminated character literal")
	}
	lx.emit(tokChar, start)
}
