package parser

import (
	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/diag"
	"github.com/tola-lang/tola/pkg/tola/token"
)

// assignOps maps an assignment operator token to its display text, stored
// as the AssignStmt node's string value.
var assignOps = map[token.Kind]string{
	token.Equals:    "=",
	token.PlusEq:    "+=",
	token.MinusEq:   "-=",
	token.StarEq:    "*=",
	token.SlashEq:   "/=",
	token.PercentEq: "%=",
}

// parseBlock parses `{ stmt* }`.
func (p *Parser) parseBlock() ast.NodeID {
	start := p.cur

	p.expectOrInvalid(token.LBrace)

	var stmts []ast.NodeID

	for {
		for p.at(token.Semicolon) {
			p.advance()
		}

		if p.at(token.RBrace) || p.at(token.Eof) {
			break
		}

		stmts = append(stmts, p.parseStatement())
	}

	p.expectOrInvalid(token.RBrace)

	id := p.node(ast.Block, start, p.last.Span)
	p.file.SetChildren(id, stmts)

	return id
}

// parseStatement parses one block-scope statement. Module-scope
// declarations (types, functions, `mod`, `use`) are forbidden here;
// local `var`/`const` declarations are accepted.
func (p *Parser) parseStatement() ast.NodeID {
	start := p.cur

	switch p.cur.Kind {
	case token.KwReturn:
		return p.parseReturnStmt(start)
	case token.KwContinue:
		p.advance()
		p.expectStmtEnd()

		return p.node(ast.ContinueStmt, start, p.last.Span)
	case token.KwBreak:
		p.advance()
		p.expectStmtEnd()

		return p.node(ast.BreakStmt, start, p.last.Span)
	case token.KwIf:
		return p.parseIfStmt(start)
	case token.KwLoop:
		return p.parseLoopStmt(start)
	case token.KwWhile:
		return p.parseWhileStmt(start)
	case token.KwVar:
		return p.parseVarDecl(start, nil, false, false)
	case token.KwConst:
		return p.parseVarDecl(start, nil, true, false)
	case token.KwMod, token.KwUse, token.KwStruct, token.KwEnum,
		token.KwInterface, token.KwFun, token.KwPub, token.KwExt, token.KwExp:
		p.Diagnostics = append(p.Diagnostics, diag.New(p.srcFile, start.Span,
			"declarations are not permitted inside a block"))
		p.recover()

		return p.node(ast.Invalid, start, p.last.Span)
	default:
		return p.parseAssignOrExprStmt(start)
	}
}

// parseReturnStmt parses `return [expr];`.
func (p *Parser) parseReturnStmt(start token.Token) ast.NodeID {
	p.advance() // 'return'

	var children []ast.NodeID

	if !p.at(token.Semicolon) {
		children = append(children, p.parseExpr(looseLimit))
	}

	p.expectStmtEnd()

	id := p.node(ast.ReturnStmt, start, p.last.Span)
	p.file.SetChildren(id, children)

	return id
}

// parseIfStmt parses `if expr block [else (block | if-stmt)]`, wrapping
// an `else if` in a synthetic one-element block.
func (p *Parser) parseIfStmt(start token.Token) ast.NodeID {
	p.advance() // 'if'

	cond := p.parseExpr(looseLimit)
	thenBlock := p.parseBlock()

	children := []ast.NodeID{cond, thenBlock}

	if p.at(token.KwElse) {
		elseStart := p.cur
		p.advance()

		if p.at(token.KwIf) {
			nested := p.parseIfStmt(p.cur)
			wrapper := p.node(ast.Block, elseStart, p.last.Span)
			p.file.SetChildren(wrapper, []ast.NodeID{nested})
			children = append(children, wrapper)
		} else {
			children = append(children, p.parseBlock())
		}
	}

	id := p.node(ast.IfStmt, start, p.last.Span)
	p.file.SetChildren(id, children)

	return id
}

// parseLoopStmt parses `loop block` (unconditional loop).
func (p *Parser) parseLoopStmt(start token.Token) ast.NodeID {
	p.advance() // 'loop'

	body := p.parseBlock()

	id := p.node(ast.LoopStmt, start, p.last.Span)
	p.file.SetChildren(id, []ast.NodeID{body})

	return id
}

// parseWhileStmt parses `while expr block`.
func (p *Parser) parseWhileStmt(start token.Token) ast.NodeID {
	p.advance() // 'while'

	cond := p.parseExpr(looseLimit)
	body := p.parseBlock()

	id := p.node(ast.WhileStmt, start, p.last.Span)
	p.file.SetChildren(id, []ast.NodeID{cond, body})

	return id
}

// parseAssignOrExprStmt parses an expression statement, promoting it to
// an AssignStmt if followed by an assignment operator.
func (p *Parser) parseAssignOrExprStmt(start token.Token) ast.NodeID {
	lhs := p.parseExpr(looseLimit)

	if opText, ok := assignOps[p.cur.Kind]; ok {
		p.advance()

		rhs := p.parseExpr(looseLimit)

		p.expectStmtEnd()

		id := p.node(ast.AssignStmt, start, p.last.Span)
		p.setStringValue(id, opText)
		p.file.SetChildren(id, []ast.NodeID{lhs, rhs})

		return id
	}

	p.expectStmtEnd()

	id := p.node(ast.ExprStmt, start, p.last.Span)
	p.file.SetChildren(id, []ast.NodeID{lhs})

	return id
}
