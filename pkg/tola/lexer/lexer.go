// Package lexer implements a hand-written lexer: a stateful reader over
// the source runes producing a lazy token stream, with escape-sequence
// and Unicode codepoint decoding and error-tolerant recovery on invalid
// characters.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tola-lang/tola/pkg/tola/diag"
	"github.com/tola-lang/tola/pkg/tola/token"
	"github.com/tola-lang/tola/pkg/util/source"
)

// Lexer reads tokens from a single source file. It never blocks and never
// panics on malformed input; malformed input produces diagnostics and an
// Invalid token so callers can keep going.
type Lexer struct {
	file *source.File
	src  []rune
	pos  int

	// Diagnostics accumulates lex errors in the order encountered.
	Diagnostics []diag.Diagnostic
}

// New constructs a lexer over file's contents.
func New(file *source.File) *Lexer {
	return &Lexer{file: file, src: file.Contents()}
}

func (l *Lexer) span(start, end int) source.Span {
	return source.NewSpan(start, end)
}

func (l *Lexer) error(start, end int, reason string) {
	l.Diagnostics = append(l.Diagnostics, diag.New(l.file, l.span(start, end), reason))
}

func (l *Lexer) peek() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}

	return l.src[l.pos], true
}

func (l *Lexer) peekAt(offset int) (rune, bool) {
	idx := l.pos + offset
	if idx >= len(l.src) {
		return 0, false
	}

	return l.src[idx], true
}

// Next returns the next token, skipping whitespace, comments, and invalid
// tokens.
func (l *Lexer) Next() token.Token {
	for {
		t := l.NextRaw()
		switch t.Kind {
		case token.Whitespace, token.Comment, token.Invalid:
			continue
		default:
			return t
		}
	}
}

// NextRaw returns the next token including whitespace, comment, and
// invalid tokens.
func (l *Lexer) NextRaw() token.Token {
	start := l.pos

	r, ok := l.peek()
	if !ok {
		return token.Token{Kind: token.Eof, Span: l.span(start, start)}
	}

	switch {
	case unicode.IsSpace(r):
		return l.lexWhitespace(start)
	case r == '#':
		return l.lexComment(start)
	case r >= '0' && r <= '9':
		return l.lexNumber(start)
	case r == 'c' && peekIs(l, 1, '"'):
		l.pos++
		return l.lexString(start, true)
	case isIdentStart(r):
		return l.lexIdentifier(start)
	case r == '"':
		return l.lexString(start, false)
	default:
		if tok, ok := l.lexPunctuation(start); ok {
			return tok
		}

		l.pos++
		l.error(start, l.pos, "invalid character")

		return token.Token{Kind: token.Invalid, Text: string(r), Raw: string(r), Span: l.span(start, l.pos)}
	}
}

func peekIs(l *Lexer, offset int, want rune) bool {
	r, ok := l.peekAt(offset)
	return ok && r == want
}

func (l *Lexer) lexWhitespace(start int) token.Token {
	for {
		r, ok := l.peek()
		if !ok || !unicode.IsSpace(r) {
			break
		}

		l.pos++
	}

	text := string(l.src[start:l.pos])

	return token.Token{Kind: token.Whitespace, Text: text, Raw: text, Span: l.span(start, l.pos)}
}

func (l *Lexer) lexComment(start int) token.Token {
	for {
		r, ok := l.peek()
		if !ok || r == '\n' {
			break
		}

		l.pos++
	}

	text := string(l.src[start:l.pos])

	return token.Token{Kind: token.Comment, Text: text, Raw: text, Span: l.span(start, l.pos)}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func (l *Lexer) lexIdentifier(start int) token.Token {
	for {
		r, ok := l.peek()
		if !ok || !isIdentCont(r) {
			break
		}

		l.pos++
	}

	text := string(l.src[start:l.pos])
	span := l.span(start, l.pos)

	if kw, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: kw, Text: text, Raw: text, Span: span}
	}

	return token.Token{Kind: token.Identifier, Text: text, Raw: text, Span: span}
}

// lexNumber scans a number literal: maximal ASCII-digit run; a '.'
// followed by at least one digit transitions the token to a float; "1."
// with no trailing digits produces a float with an empty fractional part
// (the parser may reject this).
func (l *Lexer) lexNumber(start int) token.Token {
	for {
		r, ok := l.peek()
		if !ok || r < '0' || r > '9' {
			break
		}

		l.pos++
	}

	isFloat := false

	if r, ok := l.peek(); ok && r == '.' {
		if next, ok := l.peekAt(1); ok && next >= '0' && next <= '9' {
			isFloat = true
			l.pos++ // consume '.'

			for {
				r, ok := l.peek()
				if !ok || r < '0' || r > '9' {
					break
				}

				l.pos++
			}
		} else if !ok || !(next >= '0' && next <= '9') {
			// "1." with no trailing digit: still a float, empty fractional.
			isFloat = true
			l.pos++
		}
	}

	text := string(l.src[start:l.pos])
	kind := token.Integer

	if isFloat {
		kind = token.Float
	}

	return token.Token{Kind: kind, Text: text, Raw: text, Span: l.span(start, l.pos)}
}

// lexString implements string/escape-sequence handling. start is the
// index of the opening quote (or 'c' for a C-string); the opening quote
// itself has already been peeked but not consumed when isC is true the
// leading 'c' has already been consumed by the caller.
func (l *Lexer) lexString(start int, isC bool) token.Token {
	quoteIdx := l.pos
	l.pos++ // consume opening '"'

	var decoded strings.Builder

	terminated := false

	for {
		r, ok := l.peek()
		if !ok {
			break
		}

		if r == '"' {
			l.pos++
			terminated = true

			break
		}

		if r == '\\' {
			l.decodeEscape(&decoded)
			continue
		}

		decoded.WriteRune(r)
		l.pos++
	}

	if !terminated {
		l.error(quoteIdx, l.pos, "unterminated string literal")
	}

	raw := string(l.src[start:l.pos])
	kind := token.String
	content := decoded.String()

	if isC {
		kind = token.CString
		content += "\x00"
	}

	return token.Token{Kind: kind, Text: content, Raw: raw, Span: l.span(start, l.pos)}
}

// decodeEscape consumes a backslash escape sequence starting at l.pos
// (which points at the '\') and writes its decoded content to out.
func (l *Lexer) decodeEscape(out *strings.Builder) {
	backslash := l.pos
	l.pos++ // consume '\'

	r, ok := l.peek()
	if !ok {
		l.error(backslash, l.pos, "unterminated escape sequence")
		return
	}

	switch r {
	case '0':
		out.WriteByte(0)
		l.pos++
	case 'n':
		out.WriteByte('\n')
		l.pos++
	case 'r':
		out.WriteByte('\r')
		l.pos++
	case 't':
		out.WriteByte('\t')
		l.pos++
	case '\n':
		// Line continuation: emit nothing.
		l.pos++
	case 'u':
		l.pos++
		l.decodeUnicodeEscape(backslash, out)
	default:
		// Any other escaped character is passed through literally.
		out.WriteRune(r)
		l.pos++
	}
}

// decodeUnicodeEscape decodes a `\u{<hex>}` sequence. l.pos is positioned
// just after the 'u'.
func (l *Lexer) decodeUnicodeEscape(backslash int, out *strings.Builder) {
	if r, ok := l.peek(); !ok || r != '{' {
		l.error(backslash, l.pos, "malformed unicode escape: expected `{`")
		out.WriteRune(unicode.ReplacementChar)

		return
	}

	l.pos++ // consume '{'

	hexStart := l.pos

	for {
		r, ok := l.peek()
		if !ok || r == '}' {
			break
		}

		l.pos++
	}

	if _, ok := l.peek(); !ok {
		l.error(backslash, l.pos, "unterminated unicode escape: missing closing `}`")
		out.WriteRune(unicode.ReplacementChar)

		return
	}

	hexDigits := string(l.src[hexStart:l.pos])
	l.pos++ // consume '}'

	value, ok := parseHex(hexDigits)
	if !ok || value > uint32(unicode.MaxRune) || !utf8.ValidRune(rune(value)) {
		l.error(backslash, l.pos, "invalid unicode escape value")
		out.WriteRune(unicode.ReplacementChar)

		return
	}

	out.WriteRune(rune(value))
}

func parseHex(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}

	var v uint32

	for _, r := range s {
		var d uint32

		switch {
		case r >= '0' && r <= '9':
			d = uint32(r - '0')
		case r >= 'a' && r <= 'f':
			d = uint32(r-'a') + 10
		case r >= 'A' && r <= 'F':
			d = uint32(r-'A') + 10
		default:
			return 0, false
		}

		v = v*16 + d
	}

	return v, true
}

// multiByteOps is checked before single-byte punctuation, longest first
// within each starting byte so that e.g. `==` is not lexed as two `=`.
var multiByteOps = []struct {
	text string
	kind token.Kind
}{
	{"::", token.ColonColon},
	{"&&", token.AmpAmp},
	{"||", token.PipePipe},
	{"==", token.EqEq},
	{"!=", token.BangEq},
	{"<=", token.LessEq},
	{">=", token.GreaterEq},
	{"+=", token.PlusEq},
	{"-=", token.MinusEq},
	{"*=", token.StarEq},
	{"/=", token.SlashEq},
	{"%=", token.PercentEq},
}

var singleByteOps = map[rune]token.Kind{
	'{': token.LBrace, '}': token.RBrace,
	'[': token.LBracket, ']': token.RBracket,
	'(': token.LParen, ')': token.RParen,
	'=': token.Equals, '+': token.Plus, '-': token.Minus,
	'*': token.Star, '/': token.Slash, '%': token.Percent,
	'<': token.Less, '>': token.Greater, '!': token.Bang,
	':': token.Colon, ',': token.Comma, ';': token.Semicolon,
	'.': token.Dot, '&': token.Amp,
}

func (l *Lexer) lexPunctuation(start int) (token.Token, bool) {
	for _, op := range multiByteOps {
		if l.matchesAt(start, op.text) {
			l.pos = start + len([]rune(op.text))
			return token.Token{Kind: op.kind, Text: op.text, Raw: op.text, Span: l.span(start, l.pos)}, true
		}
	}

	r := l.src[start]
	if kind, ok := singleByteOps[r]; ok {
		l.pos = start + 1
		text := string(r)

		return token.Token{Kind: kind, Text: text, Raw: text, Span: l.span(start, l.pos)}, true
	}

	return token.Token{}, false
}

func (l *Lexer) matchesAt(start int, text string) bool {
	runes := []rune(text)
	if start+len(runes) > len(l.src) {
		return false
	}

	for i, r := range runes {
		if l.src[start+i] != r {
			return false
		}
	}

	return true
}
