package lexer

import (
	"testing"

	"github.com/tola-lang/tola/pkg/tola/token"
	"github.com/tola-lang/tola/pkg/util/assert"
	"github.com/tola-lang/tola/pkg/util/source"
)

func allRaw(t *testing.T, src string) (string, []token.Token) {
	t.Helper()

	file := source.NewSourceFile("t.tola", []byte(src))
	lx := New(file)

	var (
		out string
		toks []token.Token
	)

	for {
		tok := lx.NextRaw()
		out += tok.Raw
		toks = append(toks, tok)

		if tok.Kind == token.Eof {
			break
		}
	}

	return out, toks
}

func TestLexerRoundTrip(t *testing.T) {
	src := "fun add(a u32, b u32): u32 { return a + b; } # trailing comment\n"
	out, _ := allRaw(t, src)
	assert.Equal(t, src, out)
}

func TestLexerKeywordsAndIdentifiers(t *testing.T) {
	file := source.NewSourceFile("t.tola", []byte("pub fun foo"))
	lx := New(file)

	assert.Equal(t, token.KwPub, lx.Next().Kind)
	assert.Equal(t, token.KwFun, lx.Next().Kind)

	idTok := lx.Next()
	assert.Equal(t, token.Identifier, idTok.Kind)
	assert.Equal(t, "foo", idTok.Text)
}

func TestLexerMultiByteOperators(t *testing.T) {
	file := source.NewSourceFile("t.tola", []byte("== != <= >= && || :: += "))
	lx := New(file)

	want := []token.Kind{
		token.EqEq, token.BangEq, token.LessEq, token.GreaterEq,
		token.AmpAmp, token.PipePipe, token.ColonColon, token.PlusEq,
	}

	for _, w := range want {
		assert.Equal(t, w, lx.Next().Kind)
	}
}

func TestLexerNumberLiteralsAndFloatTransition(t *testing.T) {
	file := source.NewSourceFile("t.tola", []byte("123 1.5 1. "))
	lx := New(file)

	intTok := lx.Next()
	assert.Equal(t, token.Integer, intTok.Kind)
	assert.Equal(t, "123", intTok.Text)

	floatTok := lx.Next()
	assert.Equal(t, token.Float, floatTok.Kind)
	assert.Equal(t, "1.5", floatTok.Text)

	bareDotTok := lx.Next()
	assert.Equal(t, token.Float, bareDotTok.Kind)
	assert.Equal(t, "1.", bareDotTok.Text)
}

func TestLexerCStringUnicodeEscape(t *testing.T) {
	file := source.NewSourceFile("t.tola", []byte(`c"Cookie\n\u{1F602}"`))
	lx := New(file)

	tok := lx.Next()
	assert.Equal(t, token.CString, tok.Kind)
	assert.Equal(t, "Cookie\n\U0001F602\x00", tok.Text)
	assert.Equal(t, 0, len(lx.Diagnostics))
}

func TestLexerUnterminatedString(t *testing.T) {
	file := source.NewSourceFile("t.tola", []byte(`"abc`))
	lx := New(file)

	tok := lx.Next()
	assert.Equal(t, token.String, tok.Kind)
	assert.Equal(t, 1, len(lx.Diagnostics))
}

func TestLexerInvalidCharacterRecovers(t *testing.T) {
	file := source.NewSourceFile("t.tola", []byte("a ? b"))
	lx := New(file)

	assert.Equal(t, token.Identifier, lx.Next().Kind)

	bad := lx.NextRaw()
	// Next() skips whitespace/invalid, so NextRaw is called directly to
	// observe each of them.
	assert.Equal(t, token.Whitespace, bad.Kind)

	invalid := lx.NextRaw()
	assert.Equal(t, token.Invalid, invalid.Kind)
	assert.Equal(t, 1, len(lx.Diagnostics))

	ws := lx.NextRaw()
	assert.Equal(t, token.Whitespace, ws.Kind)

	idB := lx.NextRaw()
	assert.Equal(t, token.Identifier, idB.Kind)
	assert.Equal(t, "b", idB.Text)
}

func TestLexerMalformedUnicodeEscapeMissingBrace(t *testing.T) {
	file := source.NewSourceFile("t.tola", []byte(`"\u41"`))
	lx := New(file)

	tok := lx.Next()
	assert.Equal(t, token.String, tok.Kind)
	assert.True(t, len(lx.Diagnostics) >= 1)
}
