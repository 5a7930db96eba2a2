package parser

import (
	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/diag"
	"github.com/tola-lang/tola/pkg/tola/intern"
	"github.com/tola-lang/tola/pkg/tola/token"
)

// parseTopLevelItem parses one module-scope item: an optional modifier
// prefix followed by `mod`, `use`, or a declaration.
func (p *Parser) parseTopLevelItem() ast.NodeID {
	start := p.cur
	mods := p.parseModifiers()

	switch p.cur.Kind {
	case token.KwMod:
		return p.parseModuleDecl(start)
	case token.KwUse:
		return p.parseUsageDecl(start)
	case token.KwStruct:
		return p.parseStructDecl(start, mods)
	case token.KwEnum:
		return p.parseEnumDecl(start, mods)
	case token.KwInterface:
		return p.parseInterfaceDecl(start, mods)
	case token.KwFun:
		return p.parseFunctionDecl(start, mods)
	case token.KwVar:
		return p.parseVarDecl(start, mods, false, true)
	case token.KwConst:
		return p.parseVarDecl(start, mods, true, true)
	default:
		return p.invalid(start)
	}
}

// parseModifiers consumes any run of `pub`/`ext`/`exp` keywords, returning
// one marker node per modifier in source order.
func (p *Parser) parseModifiers() []ast.NodeID {
	var nodes []ast.NodeID

	for {
		var kind ast.Kind

		switch p.cur.Kind {
		case token.KwPub:
			kind = ast.IsPublic
		case token.KwExt:
			kind = ast.IsExternal
		case token.KwExp:
			kind = ast.IsExported
		default:
			return nodes
		}

		tok := p.advance()
		nodes = append(nodes, p.node(kind, tok, tok.Span))
	}
}

func (p *Parser) hasMarker(nodes []ast.NodeID, kind ast.Kind) bool {
	for _, id := range nodes {
		if p.file.Get(id).Kind == kind {
			return true
		}
	}

	return false
}

// checkExportedTemplateArgs records a diagnostic if mods marks the
// declaration `exp` and templateArgs is non-empty: an exported symbol
// may not be template-parametric, since there is no unmangled name to
// export a family of instantiations under.
func (p *Parser) checkExportedTemplateArgs(mods []ast.NodeID, templateArgs ast.NodeID) {
	if p.hasMarker(mods, ast.IsExported) && len(p.file.Get(templateArgs).Children) > 0 {
		span := p.spans.Get(templateArgs)
		p.Diagnostics = append(p.Diagnostics, diag.New(p.srcFile, span,
			"exported symbol may not specify template arguments"))
	}
}

// parseModuleDecl parses `mod path;`.
func (p *Parser) parseModuleDecl(start token.Token) ast.NodeID {
	p.advance() // 'mod'

	path := p.parseQualifiedPathSegments()
	p.expectStmtEnd()

	id := p.node(ast.ModuleDecl, start, p.last.Span)
	p.setPathValue(id, path)

	return id
}

// parseUsageDecl parses `use <use-path-expr> (, <use-path-expr>)* ;`,
// combinatorially expanding any parenthesised group in each use-path-expr
// into its own UsedPath child.
func (p *Parser) parseUsageDecl(start token.Token) ast.NodeID {
	p.advance() // 'use'

	var usedPaths []ast.NodeID

	for {
		groupStart := p.cur

		for _, seq := range p.parseUsePathGroups() {
			segments := make([]intern.StringIdx, len(seq))
			for i, s := range seq {
				segments[i] = p.internString(s)
			}

			pathIdx := p.paths.Intern(segments)
			upID := p.node(ast.UsedPath, groupStart, p.last.Span)
			p.setPathValue(upID, pathIdx)
			usedPaths = append(usedPaths, upID)
		}

		if p.at(token.Comma) {
			p.advance()
			continue
		}

		break
	}

	p.expectStmtEnd()

	id := p.node(ast.UsageDecl, start, p.last.Span)
	p.file.SetChildren(id, usedPaths)

	return id
}

// parseUsePathGroups parses one `::`-separated use-path expression,
// returning the cartesian product of every parenthesised alternation it
// contains (a path with no groups returns a single-element result).
func (p *Parser) parseUsePathGroups() [][]string {
	sequences := [][]string{{}}
	first := true

	for {
		if !first {
			if p.at(token.ColonColon) {
				p.advance()
			} else {
				break
			}
		}

		first = false

		var alternatives []string

		if p.at(token.LParen) {
			p.advance()

			for !p.at(token.RParen) && !p.at(token.Eof) {
				alternatives = append(alternatives, p.useSegment())

				if p.at(token.Comma) {
					p.advance()
				} else {
					break
				}
			}

			p.expectOrInvalid(token.RParen)
		} else {
			alternatives = []string{p.useSegment()}
		}

		sequences = cartesianAppend(sequences, alternatives)
	}

	return sequences
}

// useSegment consumes one path segment: an identifier, or the wildcard
// segment `*`.
func (p *Parser) useSegment() string {
	if p.at(token.Star) {
		p.advance()
		return intern.WildcardSegment
	}

	tok, ok := p.expect(token.Identifier)
	if !ok {
		return ""
	}

	return tok.Text
}

func cartesianAppend(seqs [][]string, alts []string) [][]string {
	out := make([][]string, 0, len(seqs)*len(alts))

	for _, s := range seqs {
		for _, a := range alts {
			ns := make([]string, len(s)+1)
			copy(ns, s)
			ns[len(s)] = a
			out = append(out, ns)
		}
	}

	return out
}

// parseTemplateArgListDef parses `[ Ident (, Ident)* ]` as a declaration's
// template parameter list.
func (p *Parser) parseTemplateArgListDef() ast.NodeID {
	start := p.cur

	p.advance() // '['

	var params []ast.NodeID

	for !p.at(token.RBracket) && !p.at(token.Eof) {
		nameTok, ok := p.expect(token.Identifier)
		if !ok {
			break
		}

		pid := p.node(ast.TemplateParam, nameTok, nameTok.Span)
		p.setStringValue(pid, nameTok.Text)
		params = append(params, pid)

		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}

	p.expectOrInvalid(token.RBracket)

	id := p.node(ast.TemplateArgListDef, start, p.last.Span)
	p.file.SetChildren(id, params)

	return id
}

// emptyTemplateArgListDef synthesizes an empty template-argument-list
// node so that FunctionDecl/StructDecl always carry one, whether or not
// `[...]` was written.
func (p *Parser) emptyTemplateArgListDef() ast.NodeID {
	return p.node(ast.TemplateArgListDef, p.cur, p.cur.Span)
}

// parseParamArgList parses `( name Type (, name Type)* )`.
func (p *Parser) parseParamArgList() ast.NodeID {
	start := p.cur

	p.expectOrInvalid(token.LParen)

	var params []ast.NodeID

	for !p.at(token.RParen) && !p.at(token.Eof) {
		nameTok, ok := p.expect(token.Identifier)
		if !ok {
			break
		}

		ty := p.parseType()
		pid := p.node(ast.ParamDecl, nameTok, p.last.Span)
		p.setStringValue(pid, nameTok.Text)
		p.file.SetChildren(pid, []ast.NodeID{ty})
		params = append(params, pid)

		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}

	p.expectOrInvalid(token.RParen)

	id := p.node(ast.ParamArgList, start, p.last.Span)
	p.file.SetChildren(id, params)

	return id
}

// parseFunctionDecl parses `fun name [T-args] ( params ) [: ret] { body }`
// (or, if `ext`, without a body).
func (p *Parser) parseFunctionDecl(start token.Token, mods []ast.NodeID) ast.NodeID {
	p.advance() // 'fun'

	nameTok, _ := p.expect(token.Identifier)

	var templateArgs ast.NodeID
	if p.at(token.LBracket) {
		templateArgs = p.parseTemplateArgListDef()
	} else {
		templateArgs = p.emptyTemplateArgListDef()
	}

	p.checkExportedTemplateArgs(mods, templateArgs)

	params := p.parseParamArgList()

	var retType ast.NodeID
	if p.at(token.Colon) {
		p.advance()

		retType = p.parseType()
	} else {
		retType = p.node(ast.TypePrimitive, p.cur, p.cur.Span)
		p.setStringValue(retType, "unit")
	}

	children := append([]ast.NodeID{}, mods...)
	children = append(children, templateArgs, params, retType)

	if p.hasMarker(mods, ast.IsExternal) {
		p.expectStmtEnd()
	} else {
		children = append(children, p.parseBlock())
	}

	id := p.node(ast.FunctionDecl, start, p.last.Span)
	p.setStringValue(id, nameTok.Text)
	p.file.SetChildren(id, children)

	return id
}

// parseVarDecl parses `var`/`const name type [= expr];`. When
// moduleScope is true, a missing initialiser is a diagnostic unless the
// declaration is `ext`; inside a block, initialisers are always optional.
// The type checker records only each local's type; it does not track
// whether a local has been initialised before it is read.
func (p *Parser) parseVarDecl(start token.Token, mods []ast.NodeID, isConstant, moduleScope bool) ast.NodeID {
	p.advance() // 'var' or 'const'

	nameTok, _ := p.expect(token.Identifier)
	ty := p.parseType()

	children := append([]ast.NodeID{}, mods...)

	if isConstant {
		children = append(children, p.node(ast.IsConstant, start, start.Span))
	}

	children = append(children, ty)

	hasInit := false

	if p.at(token.Equals) {
		p.advance()

		init := p.parseExpr(looseLimit)
		children = append(children, init)
		hasInit = true
	}

	if moduleScope && !hasInit && !p.hasMarker(mods, ast.IsExternal) {
		p.Diagnostics = append(p.Diagnostics, diag.New(p.srcFile, nameTok.Span,
			"missing initialiser for module-scope declaration"))
	}

	p.expectStmtEnd()

	id := p.node(ast.VariableDecl, start, p.last.Span)
	p.setStringValue(id, nameTok.Text)
	p.file.SetChildren(id, children)

	return id
}

// parseStructDecl parses `struct name [T-args] ( field-list ) [: iface,...]`.
// The interface list is accepted syntactically but reported as not yet
// implemented by the type checker rather than the parser.
func (p *Parser) parseStructDecl(start token.Token, mods []ast.NodeID) ast.NodeID {
	p.advance() // 'struct'

	nameTok, _ := p.expect(token.Identifier)

	var templateArgs ast.NodeID
	if p.at(token.LBracket) {
		templateArgs = p.parseTemplateArgListDef()
	} else {
		templateArgs = p.emptyTemplateArgListDef()
	}

	p.checkExportedTemplateArgs(mods, templateArgs)

	fields := p.parseParamArgList()

	ifaceStart := p.cur

	var ifaces []ast.NodeID

	if p.at(token.Colon) {
		p.advance()

		for {
			ifaces = append(ifaces, p.parseType())

			if p.at(token.Comma) {
				p.advance()
			} else {
				break
			}
		}
	}

	ifaceList := p.node(ast.ArgList, ifaceStart, p.last.Span)
	p.file.SetChildren(ifaceList, ifaces)

	p.expectStmtEnd()

	children := append([]ast.NodeID{}, mods...)
	children = append(children, templateArgs, fields, ifaceList)

	id := p.node(ast.StructDecl, start, p.last.Span)
	p.setStringValue(id, nameTok.Text)
	p.file.SetChildren(id, children)

	return id
}

// parseEnumDecl parses `enum name [T-args] { variant (, variant)* }`.
// Full enum semantics are reserved; the parser records the syntax so a
// later type-checker version can extend it, and the current checker
// reports "not yet implemented".
func (p *Parser) parseEnumDecl(start token.Token, mods []ast.NodeID) ast.NodeID {
	p.advance() // 'enum'

	nameTok, _ := p.expect(token.Identifier)

	var templateArgs ast.NodeID
	if p.at(token.LBracket) {
		templateArgs = p.parseTemplateArgListDef()
	} else {
		templateArgs = p.emptyTemplateArgListDef()
	}

	p.checkExportedTemplateArgs(mods, templateArgs)

	p.expectOrInvalid(token.LBrace)

	var variants []ast.NodeID

	for !p.at(token.RBrace) && !p.at(token.Eof) {
		variantTok, ok := p.expect(token.Identifier)
		if !ok {
			break
		}

		vid := p.node(ast.EnumVariantDecl, variantTok, variantTok.Span)
		p.setStringValue(vid, variantTok.Text)
		variants = append(variants, vid)

		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}

	p.expectOrInvalid(token.RBrace)

	children := append([]ast.NodeID{}, mods...)
	children = append(children, templateArgs)
	children = append(children, variants...)

	id := p.node(ast.EnumDecl, start, p.last.Span)
	p.setStringValue(id, nameTok.Text)
	p.file.SetChildren(id, children)

	return id
}

// parseInterfaceDecl parses `interface name [T-args] { ... }`, skipping
// the (not yet specified) method-signature body verbatim via balanced
// brace matching.
func (p *Parser) parseInterfaceDecl(start token.Token, mods []ast.NodeID) ast.NodeID {
	p.advance() // 'interface'

	nameTok, _ := p.expect(token.Identifier)

	var templateArgs ast.NodeID
	if p.at(token.LBracket) {
		templateArgs = p.parseTemplateArgListDef()
	} else {
		templateArgs = p.emptyTemplateArgListDef()
	}

	p.checkExportedTemplateArgs(mods, templateArgs)

	p.expectOrInvalid(token.LBrace)
	p.skipBalanced()

	children := append([]ast.NodeID{}, mods...)
	children = append(children, templateArgs)

	id := p.node(ast.InterfaceDecl, start, p.last.Span)
	p.setStringValue(id, nameTok.Text)
	p.file.SetChildren(id, children)

	return id
}

// skipBalanced consumes tokens up to and including the matching `}` for a
// `{` already consumed by the caller.
func (p *Parser) skipBalanced() {
	depth := 1

	for depth > 0 {
		switch p.cur.Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		case token.Eof:
			return
		}

		p.advance()
	}
}
