package parser

import (
	"testing"

	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/intern"
	"github.com/tola-lang/tola/pkg/util/assert"
	"github.com/tola-lang/tola/pkg/util/source"
)

func parse(t *testing.T, src string) (*Parser, *ast.File) {
	t.Helper()

	file := source.NewSourceFile("t.tola", []byte(src))
	strs := intern.NewStrings()
	paths := intern.NewPaths(strs)
	p := New(file, strs, paths)
	astFile, _ := p.ParseFile()

	return p, astFile
}

func TestParseSimpleFunction(t *testing.T) {
	p, f := parse(t, `fun add(a u32, b u32): u32 { return a + b; }`)

	assert.Equal(t, 0, len(p.Diagnostics))

	decls := f.Declarations()
	assert.Equal(t, 1, len(decls))
	assert.Equal(t, ast.FunctionDecl, f.Get(decls[0]).Kind)
}

func TestParseBinaryPrecedence(t *testing.T) {
	// a + b * c should parse as a + (b * c): Add node's second child is a
	// Multiply node.
	p, f := parse(t, `fun f() { return a + b * c; }`)
	assert.Equal(t, 0, len(p.Diagnostics))

	fn := f.Get(f.Declarations()[0])
	body := f.Get(fn.Children[len(fn.Children)-1])
	ret := f.Get(body.Children[0])
	addExpr := f.Get(ret.Children[0])

	assert.Equal(t, ast.Add, addExpr.Kind)

	rhs := f.Get(addExpr.Children[1])
	assert.Equal(t, ast.Multiply, rhs.Kind)
}

func TestParseAsCastTighterThanMultiplicative(t *testing.T) {
	// a * b as u32 parses as a * (b as u32): the Multiply node's right
	// child is the as-cast.
	_, f := parse(t, `fun f() { return a * b as u32; }`)

	fn := f.Get(f.Declarations()[0])
	body := f.Get(fn.Children[len(fn.Children)-1])
	ret := f.Get(body.Children[0])
	mul := f.Get(ret.Children[0])

	assert.Equal(t, ast.Multiply, mul.Kind)

	rhs := f.Get(mul.Children[1])
	assert.Equal(t, ast.AsCast, rhs.Kind)
}

func TestParseExportedTemplateDiagnostic(t *testing.T) {
	p, _ := parse(t, `pub exp fun add[T](a T, b T): T { return a + b; }`)

	assert.Equal(t, 1, len(p.Diagnostics))
}

func TestParseMissingInitialiserDiagnostic(t *testing.T) {
	p, _ := parse(t, `var x u8; var y u8 = 5; ext var z u8; ext var w u8 = 5;`)

	assert.Equal(t, 1, len(p.Diagnostics))
}

func TestParseUnexpectedTokenRecovery(t *testing.T) {
	p, f := parse(t, `fun main() { lmfao?lol }`)

	// The lexer drops the invalid `?` token, so the parser sees
	// `lmfao` `lol` `}`: `lmfao` parses as an expression statement, then
	// `lol` is the unexpected token that triggers recovery. Recovery
	// stops at (without consuming) the block's closing brace, so there
	// is exactly one diagnostic, not a cascade.
	assert.Equal(t, 1, len(p.Diagnostics))

	fn := f.Get(f.Declarations()[0])
	body := f.Get(fn.Children[len(fn.Children)-1])
	assert.Equal(t, 1, len(body.Children))
	assert.Equal(t, ast.ExprStmt, f.Get(body.Children[0]).Kind)
}

func TestParseGarbageTerminates(t *testing.T) {
	p, _ := parse(t, `??? ) ) } { { fun fun ; ; mod mod :::`)

	assert.True(t, len(p.Diagnostics) > 0)
}

func TestParseUsagePathWildcard(t *testing.T) {
	_, f := parse(t, `use foo::*;`)

	decl := f.Get(f.Declarations()[0])
	assert.Equal(t, ast.UsageDecl, decl.Kind)
	assert.Equal(t, 1, len(decl.Children))
}

func TestParseUsagePathGroupExpansion(t *testing.T) {
	p, f := parse(t, `use a::(b, c)::(d, e);`)
	assert.Equal(t, 0, len(p.Diagnostics))

	decl := f.Get(f.Declarations()[0])
	assert.Equal(t, ast.UsageDecl, decl.Kind)
	assert.Equal(t, 4, len(decl.Children))
}

func TestParseStructDecl(t *testing.T) {
	p, f := parse(t, `struct Point(x u32, y u32);`)
	assert.Equal(t, 0, len(p.Diagnostics))

	decl := f.Get(f.Declarations()[0])
	assert.Equal(t, ast.StructDecl, decl.Kind)
}

func TestParseExportedTemplateStructDiagnostic(t *testing.T) {
	p, _ := parse(t, `pub exp struct Box[T](value T);`)
	assert.Equal(t, 1, len(p.Diagnostics))
}

func TestParseIfElseIfWraps(t *testing.T) {
	p, f := parse(t, `fun f() { if a { return 1; } else if b { return 2; } }`)
	assert.Equal(t, 0, len(p.Diagnostics))

	fn := f.Get(f.Declarations()[0])
	body := f.Get(fn.Children[len(fn.Children)-1])
	ifStmt := f.Get(body.Children[0])

	assert.Equal(t, ast.IfStmt, ifStmt.Kind)
	assert.Equal(t, 3, len(ifStmt.Children))

	wrapper := f.Get(ifStmt.Children[2])
	assert.Equal(t, ast.Block, wrapper.Kind)
	assert.Equal(t, 1, len(wrapper.Children))
	assert.Equal(t, ast.IfStmt, f.Get(wrapper.Children[0]).Kind)
}
