// Package check implements the bidirectional type checker:
// expected-type propagation for literals and calls, match_types
// unification via pkg/tola/intern, and on-demand template
// monomorphisation. It runs after pkg/tola/resolve has built the symbol
// table and expanded every use-qualified reference.
package check

import (
	"fmt"
	"sort"

	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/diag"
	"github.com/tola-lang/tola/pkg/tola/intern"
	"github.com/tola-lang/tola/pkg/tola/resolve"
	"github.com/tola-lang/tola/pkg/util"
	"github.com/tola-lang/tola/pkg/util/source"
)

// Checker owns the shared state for one type-checking run: the symbol
// table built by resolve, the type interner, and the accumulated
// diagnostics.
type Checker struct {
	Table   *resolve.Table
	Types   *intern.Types
	Strings *intern.Strings
	Paths   *intern.Paths

	Diagnostics []diag.Diagnostic
}

// NewChecker constructs a checker over an already-resolved symbol table.
func NewChecker(table *resolve.Table, types *intern.Types) *Checker {
	return &Checker{
		Table:   table,
		Types:   types,
		Strings: table.Strings,
		Paths:   table.Paths,
	}
}

// CheckAll type-checks every registered symbol, in an order sorted by
// interned path index so that repeated runs over the same table emit
// diagnostics in the same order regardless of Go's map iteration order.
func (c *Checker) CheckAll() {
	paths := make([]intern.PathIdx, 0, len(c.Table.Symbols))

	for p := range c.Table.Symbols {
		paths = append(paths, p)
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	for _, p := range paths {
		c.checkSymbol(c.Table.Symbols[p])
	}
}

func (c *Checker) checkSymbol(sym *resolve.Symbol) {
	decl := sym.File.Get(sym.Decl)

	switch decl.Kind {
	case ast.FunctionDecl:
		c.checkFunction(sym, sym.Decl)
	case ast.VariableDecl:
		c.checkTopLevelVariable(sym, sym.Decl)
	case ast.StructDecl:
		c.checkStructFields(sym)
	case ast.EnumDecl, ast.InterfaceDecl:
		// Full enum/interface semantics are reserved; the parser accepts the syntax, the checker
		// reports that it cannot type-check the declaration body yet.
		c.reportNotYetImplemented(sym)
	}
}

func (c *Checker) reportNotYetImplemented(sym *resolve.Symbol) {
	c.Diagnostics = append(c.Diagnostics, diag.New(sym.SrcFile, sym.Spans.Get(sym.Decl),
		"this declaration kind is not yet supported by the type checker"))
}

// functionShape locates a FunctionDecl's structural children.
func functionShape(file *ast.File, decl ast.Node) (params, retType, body ast.NodeID, hasBody bool) {
	children := decl.Children
	paramsIdx := -1

	for i, ch := range children {
		if file.Get(ch).Kind == ast.ParamArgList {
			paramsIdx = i
			break
		}
	}

	if paramsIdx < 0 || paramsIdx+1 >= len(children) {
		return 0, 0, 0, false
	}

	params = children[paramsIdx]
	retType = children[paramsIdx+1]

	if paramsIdx+2 < len(children) {
		body = children[paramsIdx+2]
		hasBody = true
	}

	return params, retType, body, hasBody
}

func (c *Checker) checkFunction(sym *resolve.Symbol, id ast.NodeID) {
	file := sym.File
	n := file.Get(id)

	params, retTypeNode, bodyID, hasBody := functionShape(file, n)

	locals := make(map[intern.StringIdx]intern.TypeIdx)

	for _, pd := range file.Get(params).Children {
		pn := file.Get(pd)
		locals[pn.StringValue()] = c.resolveType(file, pn.Children[0])
	}

	retType := c.resolveType(file, retTypeNode)

	if !hasBody {
		return // `ext` declaration: no body to check.
	}

	ctx := &funcContext{
		checker:    c,
		file:       file,
		srcFile:    sym.SrcFile,
		spans:      sym.Spans,
		locals:     locals,
		returnType: retType,
	}

	ctx.checkBlock(bodyID)
}

func (c *Checker) checkStructFields(sym *resolve.Symbol) {
	file := sym.File
	n := file.Get(sym.Decl)

	var fields ast.NodeID

	for _, ch := range n.Children {
		if file.Get(ch).Kind == ast.ParamArgList {
			fields = ch
			break
		}
	}

	for _, fd := range file.Get(fields).Children {
		c.resolveType(file, file.Get(fd).Children[0])
	}

	for _, ch := range n.Children {
		if cn := file.Get(ch); cn.Kind == ast.ArgList && len(cn.Children) > 0 {
			c.Diagnostics = append(c.Diagnostics, diag.New(sym.SrcFile, sym.Spans.Get(ch),
				"interface lists are not yet supported by the type checker"))
		}
	}
}

func declValueType(file *ast.File, decl ast.Node) ast.NodeID {
	for _, ch := range decl.Children {
		switch file.Get(ch).Kind {
		case ast.IsPublic, ast.IsExternal, ast.IsExported, ast.IsConstant:
			continue
		default:
			return ch
		}
	}

	return 0
}

func (c *Checker) checkTopLevelVariable(sym *resolve.Symbol, id ast.NodeID) {
	file := sym.File
	n := file.Get(id)

	typeNode := declValueType(file, n)
	declType := c.resolveType(file, typeNode)

	// An initialiser, if present, is the next non-marker child after the
	// type node.
	var initNode ast.NodeID

	seenType := false

	for _, ch := range n.Children {
		k := file.Get(ch).Kind
		if k == ast.IsPublic || k == ast.IsExternal || k == ast.IsExported || k == ast.IsConstant {
			continue
		}

		if !seenType {
			seenType = true
			continue
		}

		initNode = ch

		break
	}

	if initNode != 0 {
		ctx := &funcContext{checker: c, file: file, srcFile: sym.SrcFile, spans: sym.Spans, locals: map[intern.StringIdx]intern.TypeIdx{}}
		ctx.checkExpr(initNode, util.Some(declType))
	}
}

// symbolValueType returns the declared type of a VariableDecl symbol
// referenced as a value; referencing a function or type symbol as a bare
// value (function pointers) is reserved.
func (c *Checker) symbolValueType(sym *resolve.Symbol) intern.TypeIdx {
	decl := sym.File.Get(sym.Decl)

	if decl.Kind != ast.VariableDecl {
		return c.Types.Primitive(intern.KindUnknown)
	}

	return c.resolveType(sym.File, declValueType(sym.File, decl))
}

func (c *Checker) unknownIdentifier(srcFile *source.File, spans *source.Map[ast.NodeID], id ast.NodeID, path intern.PathIdx) {
	c.Diagnostics = append(c.Diagnostics, diag.New(srcFile, spans.Get(id),
		fmt.Sprintf("unknown identifier `%s`", c.Paths.String(path))))
}
