package check

import (
	"fmt"

	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/diag"
	"github.com/tola-lang/tola/pkg/tola/intern"
	"github.com/tola-lang/tola/pkg/tola/resolve"
	"github.com/tola-lang/tola/pkg/util"
	"github.com/tola-lang/tola/pkg/util/source"
)

// funcContext carries the per-symbol state threaded through statement and
// expression checking: the enclosing file, its diagnostic anchors, the
// local-variable scope in effect, and the function's declared return
// type.
type funcContext struct {
	checker    *Checker
	file       *ast.File
	srcFile    *source.File
	spans      *source.Map[ast.NodeID]
	locals     map[intern.StringIdx]intern.TypeIdx
	returnType intern.TypeIdx
}

func (ctx *funcContext) clone() *funcContext {
	locals := make(map[intern.StringIdx]intern.TypeIdx, len(ctx.locals))

	for k, v := range ctx.locals {
		locals[k] = v
	}

	return &funcContext{
		checker:    ctx.checker,
		file:       ctx.file,
		srcFile:    ctx.srcFile,
		spans:      ctx.spans,
		locals:     locals,
		returnType: ctx.returnType,
	}
}

// checkBlock checks every statement of the block at id in a scope cloned
// from ctx, so a local declared here is not visible after the block ends
//.
func (ctx *funcContext) checkBlock(id ast.NodeID) {
	scope := ctx.clone()

	for _, s := range ctx.file.Get(id).Children {
		scope.checkStmt(s)
	}
}

func (ctx *funcContext) checkStmt(id ast.NodeID) {
	n := ctx.file.Get(id)
	c := ctx.checker
	boolT := c.Types.Primitive(intern.KindBoolean)

	switch n.Kind {
	case ast.ReturnStmt:
		if len(n.Children) > 0 {
			ctx.checkExpr(n.Children[0], util.Some(ctx.returnType))
		}

	case ast.ContinueStmt, ast.BreakStmt, ast.Invalid:
		// Nothing to check.

	case ast.IfStmt:
		ctx.checkExpr(n.Children[0], util.Some(boolT))
		ctx.checkBlock(n.Children[1])

		if len(n.Children) > 2 {
			ctx.checkBlock(n.Children[2])
		}

	case ast.LoopStmt:
		ctx.checkBlock(n.Children[0])

	case ast.WhileStmt:
		ctx.checkExpr(n.Children[0], util.Some(boolT))
		ctx.checkBlock(n.Children[1])

	case ast.Block:
		ctx.checkBlock(id)

	case ast.VariableDecl:
		ctx.checkLocalVariable(n)

	case ast.AssignStmt:
		lhsTy := ctx.checkExpr(n.Children[0], util.None[intern.TypeIdx]())
		ctx.checkExpr(n.Children[1], util.Some(lhsTy))

	case ast.ExprStmt:
		ctx.checkExpr(n.Children[0], util.None[intern.TypeIdx]())
	}
}

func (ctx *funcContext) checkLocalVariable(n ast.Node) {
	typeNode := declValueType(ctx.file, n)
	ty := ctx.checker.resolveType(ctx.file, typeNode)

	var initNode ast.NodeID

	seenType := false

	for _, ch := range n.Children {
		k := ctx.file.Get(ch).Kind
		if k == ast.IsConstant {
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
		ctx.checkExpr(initNode, util.Some(ty))
	}

	ctx.locals[n.StringValue()] = ty
}

// checkExpr synthesises (or, when expected holds a value, checks against)
// id's type and records the result on the node.
func (ctx *funcContext) checkExpr(id ast.NodeID, expected util.Option[intern.TypeIdx]) intern.TypeIdx {
	n := ctx.file.Get(id)
	c := ctx.checker

	var result intern.TypeIdx

	switch n.Kind {
	case ast.IntegerLit:
		result = c.Types.Primitive(intern.KindIntegerLiteral)

	case ast.FloatLit:
		result = c.Types.Primitive(intern.KindFloatLiteral)

	case ast.TrueLit, ast.FalseLit:
		result = c.Types.Primitive(intern.KindBoolean)

	case ast.StringLit, ast.CStringLit:
		result = c.Types.Pointer(true, c.Types.Primitive(intern.KindU8))

	case ast.PathAccess, ast.NamespaceAccess:
		result = ctx.checkPathAccess(id, n)

	case ast.Call:
		result = ctx.checkCall(id, n)

	case ast.FieldAccess:
		ctx.checkExpr(n.Children[0], util.None[intern.TypeIdx]())
		result = c.Types.Primitive(intern.KindUnknown)

	case ast.AsCast:
		ctx.checkExpr(n.Children[0], util.None[intern.TypeIdx]())
		result = c.resolveType(ctx.file, n.Children[1])

	case ast.SizeofExpr:
		c.resolveType(ctx.file, n.Children[0])
		result = c.Types.Primitive(intern.KindUsize)

	case ast.Negate:
		result = ctx.checkExpr(n.Children[0], expected)

	case ast.LogicalNot:
		boolT := c.Types.Primitive(intern.KindBoolean)
		ctx.checkExpr(n.Children[0], util.Some(boolT))
		result = boolT

	case ast.AddressOf:
		inner := ctx.checkExpr(n.Children[0], util.None[intern.TypeIdx]())
		result = c.Types.Pointer(false, inner)

	case ast.Deref:
		inner := ctx.checkExpr(n.Children[0], util.None[intern.TypeIdx]())

		if t := c.Types.Get(inner); t.Kind == intern.KindPointer {
			result = t.Pointee
		} else {
			result = c.Types.Primitive(intern.KindUnknown)
		}

	case ast.Add, ast.Subtract, ast.Multiply, ast.Divide, ast.Remainder:
		lhs := ctx.checkExpr(n.Children[0], expected)
		rhs := ctx.checkExpr(n.Children[1], expected)
		result = ctx.unify(id, lhs, rhs)

	case ast.Less, ast.LessEq, ast.Greater, ast.GreaterEq, ast.Eq, ast.NotEq:
		lhs := ctx.checkExpr(n.Children[0], util.None[intern.TypeIdx]())
		ctx.checkExpr(n.Children[1], util.Some(lhs))
		result = c.Types.Primitive(intern.KindBoolean)

	case ast.LogicalAnd, ast.LogicalOr:
		boolT := c.Types.Primitive(intern.KindBoolean)
		ctx.checkExpr(n.Children[0], util.Some(boolT))
		ctx.checkExpr(n.Children[1], util.Some(boolT))
		result = boolT

	default:
		result = c.Types.Primitive(intern.KindUnknown)
	}

	// The final step of bidirectional checking: an explicit cast fixes its
	// own type and is never checked against the caller's expectation;
	// every other expression's synthesised type is unified against it here,
	// so a literal passed where a sized type is expected absorbs that type
	// and a genuine mismatch is reported exactly once, at its use site.
	if n.Kind != ast.AsCast && expected.HasValue() {
		result = ctx.unify(id, result, expected.Unwrap())
	}

	ctx.file.SetResultType(id, result)

	return result
}

func (ctx *funcContext) unify(id ast.NodeID, a, b intern.TypeIdx) intern.TypeIdx {
	result, ok := ctx.checker.Types.Unify(a, b)
	if !ok {
		ctx.checker.Diagnostics = append(ctx.checker.Diagnostics, diag.New(ctx.srcFile, ctx.spans.Get(id), "type mismatch"))
	}

	return result
}

func (ctx *funcContext) checkPathAccess(id ast.NodeID, n ast.Node) intern.TypeIdx {
	c := ctx.checker
	path := n.PathValue()
	segs := c.Paths.Segments(path)

	if len(segs) == 1 {
		if ty, ok := ctx.locals[segs[0]]; ok {
			return ty
		}
	}

	if sym, ok := c.Table.Symbols[path]; ok {
		return c.symbolValueType(sym)
	}

	c.unknownIdentifier(ctx.srcFile, ctx.spans, id, path)

	return c.Types.Primitive(intern.KindUnknown)
}

func (ctx *funcContext) checkCall(id ast.NodeID, n ast.Node) intern.TypeIdx {
	c := ctx.checker
	calleeID := n.Children[0]
	argListID := n.Children[1]
	args := ctx.file.Get(argListID).Children

	callee := ctx.file.Get(calleeID)

	if callee.Kind != ast.PathAccess && callee.Kind != ast.NamespaceAccess {
		// Function-pointer call: reserved.
		ctx.checkExpr(calleeID, util.None[intern.TypeIdx]())
		ctx.checkArgsUntyped(args)

		return c.Types.Primitive(intern.KindUnknown)
	}

	path := callee.PathValue()
	segs := c.Paths.Segments(path)

	if len(segs) == 1 {
		if _, ok := ctx.locals[segs[0]]; ok {
			// A local of function-pointer type: reserved.
			ctx.checkArgsUntyped(args)
			return c.Types.Primitive(intern.KindUnknown)
		}
	}

	sym, ok := c.Table.Symbols[path]
	if !ok || sym.File.Get(sym.Decl).Kind != ast.FunctionDecl {
		c.unknownIdentifier(ctx.srcFile, ctx.spans, calleeID, path)
		ctx.checkArgsUntyped(args)

		return c.Types.Primitive(intern.KindUnknown)
	}

	templateArgs := ctx.resolveCallTemplateArgs(sym, callee, args)

	declID := c.monomorphise(sym, templateArgs)
	decl := sym.File.Get(declID)

	paramsID, retTypeNode, _, _ := functionShape(sym.File, decl)
	params := sym.File.Get(paramsID).Children

	if len(args) != len(params) {
		c.Diagnostics = append(c.Diagnostics, diag.New(ctx.srcFile, ctx.spans.Get(id),
			fmt.Sprintf("expected %d argument(s), found %d", len(params), len(args))))
	}

	checked := len(args)
	if len(params) < checked {
		checked = len(params)
	}

	for i := 0; i < checked; i++ {
		paramTy := c.resolveType(sym.File, sym.File.Get(params[i]).Children[0])
		ctx.checkExpr(args[i], util.Some(paramTy))
	}

	for i := checked; i < len(args); i++ {
		ctx.checkExpr(args[i], util.None[intern.TypeIdx]())
	}

	return c.resolveType(sym.File, retTypeNode)
}

func (ctx *funcContext) checkArgsUntyped(args []ast.NodeID) {
	for _, a := range args {
		ctx.checkExpr(a, util.None[intern.TypeIdx]())
	}
}

// resolveCallTemplateArgs returns the concrete type for each of sym's
// template parameters at this call site: explicit arguments from a
// NamespaceAccess callee take priority, otherwise each parameter is
// inferred from the first argument whose declared parameter type names it
//.
func (ctx *funcContext) resolveCallTemplateArgs(sym *resolve.Symbol, callee ast.Node, args []ast.NodeID) []intern.TypeIdx {
	c := ctx.checker

	if len(sym.TemplateParams) == 0 {
		return nil
	}

	if callee.Kind == ast.NamespaceAccess {
		explicit := sym.File.Get(callee.Children[0]).Children
		out := make([]intern.TypeIdx, len(sym.TemplateParams))

		for i := range out {
			if i < len(explicit) {
				out[i] = c.resolveType(sym.File, explicit[i])
			} else {
				out[i] = c.Types.Primitive(intern.KindUnknown)
			}
		}

		return out
	}

	return ctx.inferTemplateArgs(sym, args)
}

func (ctx *funcContext) inferTemplateArgs(sym *resolve.Symbol, args []ast.NodeID) []intern.TypeIdx {
	c := ctx.checker
	bound := make(map[intern.StringIdx]intern.TypeIdx)

	paramsID, _, _, _ := functionShape(sym.File, sym.File.Get(sym.Decl))
	params := sym.File.Get(paramsID).Children

	n := len(args)
	if len(params) < n {
		n = len(params)
	}

	for i := 0; i < n; i++ {
		pn := sym.File.Get(params[i])
		typeNode := sym.File.Get(pn.Children[0])

		if typeNode.Kind != ast.TypeName {
			continue
		}

		tsegs := c.Paths.Segments(typeNode.PathValue())
		if len(tsegs) != 1 {
			continue
		}

		if _, isParam := templateParamIndex(sym, tsegs[0]); !isParam {
			continue
		}

		argTy := ctx.checkExpr(args[i], util.None[intern.TypeIdx]())

		if _, bound2 := bound[tsegs[0]]; !bound2 {
			bound[tsegs[0]] = argTy
		}
	}

	result := make([]intern.TypeIdx, len(sym.TemplateParams))

	for i, p := range sym.TemplateParams {
		if ty, ok := bound[p]; ok {
			result[i] = ty
		} else {
			result[i] = c.Types.Primitive(intern.KindUnknown)
		}
	}

	return result
}

func templateParamIndex(sym *resolve.Symbol, name intern.StringIdx) (int, bool) {
	for i, p := range sym.TemplateParams {
		if p == name {
			return i, true
		}
	}

	return 0, false
}
