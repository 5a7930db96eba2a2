// Package token defines the lexical token kinds produced by pkg/tola/lexer.
package token

import "github.com/tola-lang/tola/pkg/util/source"

// Kind identifies a token's lexical class.
type Kind uint8

const (
	// Invalid marks a byte the lexer could not classify; the lexer has
	// already emitted a diagnostic for it.
	Invalid Kind = iota
	Eof
	Whitespace
	Comment

	Integer
	Float
	String
	CString
	Identifier

	// Brackets and punctuation.
	LBrace
	RBrace
	LBracket
	RBracket
	LParen
	RParen
	Equals
	Plus
	Minus
	Star
	Slash
	Percent
	Less
	Greater
	Bang
	Colon
	Comma
	Semicolon
	Dot
	Amp

	// Multi-byte operators.
	PlusEq
	MinusEq
	StarEq
	SlashEq
	PercentEq
	LessEq
	GreaterEq
	EqEq
	BangEq
	AmpAmp
	PipePipe
	ColonColon

	// Keywords.
	KwPub
	KwExt
	KwExp
	KwMod
	KwUse
	KwStruct
	KwFun
	KwVar
	KwEnum
	KwInterface
	KwIf
	KwElse
	KwLoop
	KwWhile
	KwReturn
	KwContinue
	KwBreak
	KwAs
	KwSizeof
	KwConst
	KwTrue
	KwFalse
	KwUnit
	KwU8
	KwU16
	KwU32
	KwU64
	KwS8
	KwS16
	KwS32
	KwS64
	KwF32
	KwF64
	KwUsize
	KwBool
)

// keywords maps lexeme text to its keyword kind. Populated once; shared
// read-only across all lexer instances.
var keywords = map[string]Kind{
	"pub": KwPub, "ext": KwExt, "exp": KwExp, "mod": KwMod, "use": KwUse,
	"struct": KwStruct, "fun": KwFun, "var": KwVar, "enum": KwEnum,
	"interface": KwInterface, "if": KwIf, "else": KwElse, "loop": KwLoop,
	"while": KwWhile, "return": KwReturn, "continue": KwContinue,
	"break": KwBreak, "as": KwAs, "sizeof": KwSizeof, "const": KwConst,
	"true": KwTrue, "false": KwFalse, "unit": KwUnit,
	"u8": KwU8, "u16": KwU16, "u32": KwU32, "u64": KwU64, "usize": KwUsize,
	"s8": KwS8, "s16": KwS16, "s32": KwS32, "s64": KwS64,
	"f32": KwF32, "f64": KwF64, "bool": KwBool,
}

// LookupKeyword returns the keyword kind for lexeme and true, or (Invalid,
// false) if lexeme is not a keyword (and is therefore a plain identifier).
func LookupKeyword(lexeme string) (Kind, bool) {
	k, ok := keywords[lexeme]
	return k, ok
}

// Token is a single lexical unit: a kind, its raw or decoded text
// content, and the source range it was read from.
type Token struct {
	Kind Kind
	// Text holds the raw lexeme for most kinds; for String/CString it
	// holds the escape-decoded content instead.
	Text string
	// Raw holds the exact source text consumed for this token, before any
	// escape decoding. For every kind except String/CString this equals
	// Text. Concatenating Raw across every NextRaw() token reproduces the
	// original source text exactly.
	Raw  string
	Span source.Span
}

// String renders a short human-readable display of the token, used for
// diagnostic messages such as `"unexpected <current-display>"`.
func (t Token) String() string {
	switch t.Kind {
	case Eof:
		return "end of file"
	case Identifier:
		return "identifier `" + t.Text + "`"
	case Integer:
		return "integer `" + t.Text + "`"
	case Float:
		return "float `" + t.Text + "`"
	case String:
		return "string literal"
	case CString:
		return "c-string literal"
	case Invalid:
		return "invalid token"
	default:
		if disp, ok := displayText[t.Kind]; ok {
			return "`" + disp + "`"
		}

		return "token"
	}
}

// displayText gives the literal surface form for fixed-text token kinds,
// used both by String() above and by the parser's error messages.
var displayText = map[Kind]string{
	LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]", LParen: "(", RParen: ")",
	Equals: "=", Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Less: "<", Greater: ">", Bang: "!", Colon: ":", Comma: ",", Semicolon: ";",
	Dot: ".", Amp: "&",
	PlusEq: "+=", MinusEq: "-=", StarEq: "*=", SlashEq: "/=", PercentEq: "%=",
	LessEq: "<=", GreaterEq: ">=", EqEq: "==", BangEq: "!=", AmpAmp: "&&",
	PipePipe: "||", ColonColon: "::",
	KwPub: "pub", KwExt: "ext", KwExp: "exp", KwMod: "mod", KwUse: "use",
	KwStruct: "struct", KwFun: "fun", KwVar: "var", KwEnum: "enum",
	KwInterface: "interface", KwIf: "if", KwElse: "else", KwLoop: "loop",
	KwWhile: "while", KwReturn: "return", KwContinue: "continue",
	KwBreak: "break", KwAs: "as", KwSizeof: "sizeof", KwConst: "const",
	KwTrue: "true", KwFalse: "false", KwUnit: "unit",
	KwU8: "u8", KwU16: "u16", KwU32: "u32", KwU64: "u64", KwUsize: "usize",
	KwS8: "s8", KwS16: "s16", KwS32: "s32", KwS64: "s64",
	KwF32: "f32", KwF64: "f64", KwBool: "bool",
}

// DisplayText returns the fixed surface text for a punctuation/keyword
// kind, or "" if k has no fixed text (identifiers, literals, Eof...).
func DisplayText(k Kind) string {
	return displayText[k]
}
