package parser

import (
	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/token"
)

// looseLimit is passed to the outermost parseExpr call: one looser than
// the weakest real operator (logical or/and, precedence 8), so every
// operator in the table is eligible.
const looseLimit = 9

// asCastPrecedence is `as`'s binding power.
const asCastPrecedence = 3

// binaryOp describes one infix operator's precedence and AST kind.
type binaryOp struct {
	prec int
	kind ast.Kind
}

// infixOps is the binary-operator precedence table, excluding `as`
// (handled specially since its right-hand side is a type, not an
// expression).
var infixOps = map[token.Kind]binaryOp{
	token.Star:    {4, ast.Multiply},
	token.Slash:   {4, ast.Divide},
	token.Percent: {4, ast.Remainder},
	token.Plus:    {5, ast.Add},
	token.Minus:   {5, ast.Subtract},
	token.Less:      {6, ast.Less},
	token.LessEq:    {6, ast.LessEq},
	token.Greater:   {6, ast.Greater},
	token.GreaterEq: {6, ast.GreaterEq},
	token.EqEq:   {7, ast.Eq},
	token.BangEq: {7, ast.NotEq},
	token.AmpAmp:   {8, ast.LogicalAnd},
	token.PipePipe: {8, ast.LogicalOr},
}

// unaryOps maps a prefix-operator token to its AST kind.
var unaryOps = map[token.Kind]ast.Kind{
	token.Minus: ast.Negate,
	token.Bang:  ast.LogicalNot,
	token.Amp:   ast.AddressOf,
	token.Star:  ast.Deref,
}

// parseExpr parses an expression accepting infix operators whose
// precedence is strictly less than maxPrec.
func (p *Parser) parseExpr(maxPrec int) ast.NodeID {
	start := p.cur
	left := p.parseUnary()

	for {
		if p.at(token.KwAs) && asCastPrecedence < maxPrec {
			p.advance()

			ty := p.parseType()
			id := p.node(ast.AsCast, start, p.last.Span)
			p.file.SetChildren(id, []ast.NodeID{left, ty})
			left = id

			continue
		}

		op, ok := infixOps[p.cur.Kind]
		if !ok || op.prec >= maxPrec {
			break
		}

		p.advance()

		right := p.parseExpr(op.prec)
		id := p.node(op.kind, start, p.last.Span)
		p.file.SetChildren(id, []ast.NodeID{left, right})
		left = id
	}

	return left
}

// parseUnary parses an optional chain of prefix operators (each binds
// tighter than any infix operator or `as`) around a postfix expression.
func (p *Parser) parseUnary() ast.NodeID {
	start := p.cur

	if kind, ok := unaryOps[p.cur.Kind]; ok {
		p.advance()

		operand := p.parseUnary()
		id := p.node(kind, start, p.last.Span)
		p.file.SetChildren(id, []ast.NodeID{operand})

		return id
	}

	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any number of call
// or field-access suffixes, which bind tighter than any prefix or infix
// operator.
func (p *Parser) parsePostfix() ast.NodeID {
	start := p.cur
	expr := p.parsePrimary()

	for {
		switch {
		case p.at(token.LParen):
			expr = p.parseCall(start, expr)
		case p.at(token.Dot):
			expr = p.parseFieldAccess(start, expr)
		default:
			return expr
		}
	}
}

func (p *Parser) parseCall(start token.Token, callee ast.NodeID) ast.NodeID {
	p.advance() // '('

	var args []ast.NodeID

	for !p.at(token.RParen) && !p.at(token.Eof) {
		args = append(args, p.parseExpr(looseLimit))

		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}

	p.expectOrInvalid(token.RParen)

	argList := p.node(ast.ArgList, start, p.last.Span)
	p.file.SetChildren(argList, args)

	id := p.node(ast.Call, start, p.last.Span)
	p.file.SetChildren(id, []ast.NodeID{callee, argList})

	return id
}

func (p *Parser) parseFieldAccess(start token.Token, receiver ast.NodeID) ast.NodeID {
	p.advance() // '.'

	name, ok := p.expect(token.Identifier)
	if !ok {
		return receiver
	}

	id := p.node(ast.FieldAccess, start, p.last.Span)
	p.setStringValue(id, name.Text)
	p.file.SetChildren(id, []ast.NodeID{receiver})

	return id
}

// parsePrimary parses a literal, a parenthesised expression, `sizeof`, or
// a (possibly template-instantiated, possibly qualified) path reference.
func (p *Parser) parsePrimary() ast.NodeID {
	start := p.cur

	switch {
	case p.at(token.Integer):
		p.advance()

		id := p.node(ast.IntegerLit, start, start.Span)
		p.setStringValue(id, start.Text)

		return id

	case p.at(token.Float):
		p.advance()

		id := p.node(ast.FloatLit, start, start.Span)
		p.setStringValue(id, start.Text)

		return id

	case p.at(token.String):
		p.advance()

		id := p.node(ast.StringLit, start, start.Span)
		p.setStringValue(id, start.Text)

		return id

	case p.at(token.CString):
		p.advance()

		id := p.node(ast.CStringLit, start, start.Span)
		p.setStringValue(id, start.Text)

		return id

	case p.at(token.KwTrue):
		p.advance()
		return p.node(ast.TrueLit, start, start.Span)

	case p.at(token.KwFalse):
		p.advance()
		return p.node(ast.FalseLit, start, start.Span)

	case p.at(token.KwSizeof):
		p.advance()
		p.expectOrInvalid(token.LParen)

		ty := p.parseType()

		p.expectOrInvalid(token.RParen)

		id := p.node(ast.SizeofExpr, start, p.last.Span)
		p.file.SetChildren(id, []ast.NodeID{ty})

		return id

	case p.at(token.LParen):
		p.advance()

		inner := p.parseExpr(looseLimit)

		p.expectOrInvalid(token.RParen)

		return inner

	case p.at(token.Identifier):
		return p.parsePathOrNamespaceAccess(start)

	default:
		return p.invalid(start)
	}
}

// parsePathOrNamespaceAccess parses a qualified-name reference
// (`a::b::c`) and, if followed by `[`, wraps it into a NamespaceAccess
// node carrying explicit template arguments.
func (p *Parser) parsePathOrNamespaceAccess(start token.Token) ast.NodeID {
	path := p.parseQualifiedPathSegments()

	id := p.node(ast.PathAccess, start, p.last.Span)
	p.setPathValue(id, path)

	if p.at(token.LBracket) {
		args := p.parseTemplateArgList()
		nsID := p.node(ast.NamespaceAccess, start, p.last.Span)
		p.setPathValue(nsID, path)
		p.file.SetChildren(nsID, []ast.NodeID{args})

		return nsID
	}

	return id
}
