package parser

import (
	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/intern"
	"github.com/tola-lang/tola/pkg/tola/token"
)

// primitiveTypeKeywords maps a primitive-type keyword token kind to its
// canonical surface text, used as the TypePrimitive node's string value.
var primitiveTypeKeywords = map[token.Kind]string{
	token.KwU8: "u8", token.KwU16: "u16", token.KwU32: "u32", token.KwU64: "u64",
	token.KwUsize: "usize",
	token.KwS8:    "s8", token.KwS16: "s16", token.KwS32: "s32", token.KwS64: "s64",
	token.KwF32: "f32", token.KwF64: "f64",
	token.KwUnit: "unit", token.KwBool: "bool",
}

// parseType parses a type expression: a primitive keyword, a pointer
// (`*T` mutable, `*const T` const-qualified), or a (possibly
// template-instantiated) named struct type.
func (p *Parser) parseType() ast.NodeID {
	start := p.cur

	if p.at(token.Star) {
		p.advance()

		isConst := false
		if p.at(token.KwConst) {
			p.advance()

			isConst = true
		}

		pointee := p.parseType()
		kind := ast.TypePointer

		if isConst {
			kind = ast.TypePointerConst
		}

		id := p.node(kind, start, p.last.Span)
		p.file.SetChildren(id, []ast.NodeID{pointee})

		return id
	}

	if text, ok := primitiveTypeKeywords[p.cur.Kind]; ok {
		p.advance()

		id := p.node(ast.TypePrimitive, start, start.Span)
		p.setStringValue(id, text)

		return id
	}

	if p.at(token.Identifier) {
		path := p.parseQualifiedPathSegments()
		id := p.node(ast.TypeName, start, p.last.Span)
		p.setPathValue(id, path)

		if p.at(token.LBracket) {
			args := p.parseTemplateArgList()
			p.file.SetChildren(id, []ast.NodeID{args})
		}

		return id
	}

	return p.invalid(start)
}

// parseQualifiedPathSegments parses `Ident (:: Ident)*` and interns the
// resulting path, without constructing any AST node of its own.
func (p *Parser) parseQualifiedPathSegments() intern.PathIdx {
	var segments []intern.StringIdx

	first, _ := p.expect(token.Identifier)
	segments = append(segments, p.internString(first.Text))

	for p.at(token.ColonColon) {
		p.advance()

		seg, ok := p.expect(token.Identifier)
		if !ok {
			break
		}

		segments = append(segments, p.internString(seg.Text))
	}

	return p.paths.Intern(segments)
}

// parseTemplateArgList parses `[ Type (, Type)* ]` into a TemplateArgList
// node whose children are the parsed type expressions.
func (p *Parser) parseTemplateArgList() ast.NodeID {
	start := p.cur

	p.expectOrInvalid(token.LBracket)

	var args []ast.NodeID

	for !p.at(token.RBracket) && !p.at(token.Eof) {
		args = append(args, p.parseType())

		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}

	p.expectOrInvalid(token.RBracket)

	id := p.node(ast.TemplateArgList, start, p.last.Span)
	p.file.SetChildren(id, args)

	return id
}

// expectOrInvalid consumes k if present; otherwise it records a
// diagnostic without entering full panic-mode recovery (used inside list
// grammars where the caller's own loop bounds already limit damage).
func (p *Parser) expectOrInvalid(k token.Kind) {
	if p.at(k) {
		p.advance()
		return
	}

	p.unexpected()
}

// expectStmtEnd consumes a terminating `;`; on failure it records the
// usual diagnostic and performs full panic-mode recovery, since a missing
// statement terminator would otherwise cascade into the next statement
//.
func (p *Parser) expectStmtEnd() {
	if p.at(token.Semicolon) {
		p.advance()
		return
	}

	p.unexpected()
	p.recover()
}
