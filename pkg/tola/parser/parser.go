// Package parser implements a Pratt-style recursive-descent parser:
// single-token lookahead, precedence-correct expressions, and panic-mode
// error recovery.
package parser

import (
	"fmt"

	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/diag"
	"github.com/tola-lang/tola/pkg/tola/intern"
	"github.com/tola-lang/tola/pkg/tola/lexer"
	"github.com/tola-lang/tola/pkg/tola/token"
	"github.com/tola-lang/tola/pkg/util/source"
)

// Parser turns a single file's token stream into an AST. It never blocks
// and always returns a result: unexpected input produces a diagnostic and
// an ast.Invalid node rather than aborting.
type Parser struct {
	lx      *lexer.Lexer
	srcFile *source.File
	file    *ast.File
	spans   *source.Map[ast.NodeID]

	strs  *intern.Strings
	paths *intern.Paths

	cur     token.Token
	last    token.Token
	hasLast bool

	// Diagnostics accumulates lex and parse errors, in order.
	Diagnostics []diag.Diagnostic
}

// New constructs a parser over srcFile, interning identifiers/paths into
// the given (shared, compiler-lifetime) interners.
func New(srcFile *source.File, strs *intern.Strings, paths *intern.Paths) *Parser {
	lx := lexer.New(srcFile)
	p := &Parser{
		lx:      lx,
		srcFile: srcFile,
		file:    ast.NewFile(srcFile.Filename()),
		spans:   source.NewSourceMap[ast.NodeID](*srcFile),
		strs:    strs,
		paths:   paths,
	}
	p.cur = lx.Next()

	return p
}

// ParseFile parses every top-level item until end of file and returns the
// resulting AST and its node-to-span mapping. Lexer diagnostics are always
// included ahead of parser diagnostics, in the order the lexer produced
// them.
func (p *Parser) ParseFile() (*ast.File, *source.Map[ast.NodeID]) {
	var decls []ast.NodeID

	for {
		for p.at(token.Semicolon) {
			p.advance()
		}

		if p.at(token.Eof) {
			break
		}

		item := p.parseTopLevelItem()
		decls = append(decls, item)

		if p.file.Get(item).Kind == ast.Invalid && p.at(token.RBrace) {
			p.advance()
		}
	}

	p.file.SetChildren(rootID, decls)
	p.Diagnostics = append(p.lx.Diagnostics, p.Diagnostics...)

	return p.file, p.spans
}

const rootID = ast.NodeID(0)

// --- token-cursor helpers ---------------------------------------------

func (p *Parser) at(k token.Kind) bool {
	return p.cur.Kind == k
}

// advance consumes the current token, returning it, and fetches the next
// significant token (whitespace/comments/invalid already filtered by
// lexer.Next).
func (p *Parser) advance() token.Token {
	t := p.cur
	p.last = t
	p.hasLast = true
	p.cur = p.lx.Next()

	return t
}

// expect consumes the current token if it has kind k, else records a
// diagnostic and returns ok=false without consuming anything.
func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}

	p.unexpected()

	return token.Token{}, false
}

// unexpected records an `"unexpected <current-display>[ after
// <last-display>]"` diagnostic.
func (p *Parser) unexpected() {
	msg := fmt.Sprintf("unexpected %s", p.cur.String())
	if p.hasLast {
		msg = fmt.Sprintf("%s after %s", msg, p.last.String())
	}

	p.Diagnostics = append(p.Diagnostics, diag.New(p.srcFile, p.cur.Span, msg))
}

// recover performs panic-mode recovery: advance until `;`, `}`, or EOF is
// reached, then stop without consuming it. The synchronising token is
// left for the caller's own loop (parseBlock's statement loop, or the
// top-level item loop) to consume, the same way it would have consumed
// that token on a clean parse.
func (p *Parser) recover() {
	for {
		switch p.cur.Kind {
		case token.Semicolon, token.RBrace, token.Eof:
			return
		default:
			p.advance()
		}
	}
}

// invalid records an "unexpected token" diagnostic, recovers, and returns
// a fresh ast.Invalid node spanning from start to the recovery point.
func (p *Parser) invalid(start token.Token) ast.NodeID {
	p.unexpected()
	p.recover()

	return p.node(ast.Invalid, start, p.last.Span)
}

// --- node construction --------------------------------------------------

// node allocates a node of kind k, records its span (from the start of
// `from` to the end of `to`, or an empty span at `from` when `to` ends
// before `from` starts), and returns its ID.
func (p *Parser) node(k ast.Kind, from token.Token, to source.Span) ast.NodeID {
	id := p.file.New(k)

	end := to.End()
	if end < from.Span.Start() {
		end = from.Span.Start()
	}

	p.spans.Put(id, source.NewSpan(from.Span.Start(), end))

	return id
}

func (p *Parser) internString(s string) intern.StringIdx {
	return p.strs.Intern(s)
}

func (p *Parser) setStringValue(id ast.NodeID, s string) {
	p.file.SetValue(id, ast.Value{Kind: ast.ValueString, String: p.internString(s)})
}

func (p *Parser) setPathValue(id ast.NodeID, path intern.PathIdx) {
	p.file.SetValue(id, ast.Value{Kind: ast.ValuePath, Path: path})
}
