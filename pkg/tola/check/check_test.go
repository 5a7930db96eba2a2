package check

import (
	"testing"

	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/diag"
	"github.com/tola-lang/tola/pkg/tola/intern"
	"github.com/tola-lang/tola/pkg/tola/parser"
	"github.com/tola-lang/tola/pkg/tola/resolve"
	"github.com/tola-lang/tola/pkg/util/assert"
	"github.com/tola-lang/tola/pkg/util/source"
)

// buildChecker parses src, runs both resolve passes, and returns a ready
// Checker plus the parsed file so a test can inspect result types after
// calling CheckAll.
func buildChecker(t *testing.T, src string) (*Checker, *ast.File) {
	t.Helper()

	srcFile := source.NewSourceFile("t.tola", []byte(src))
	strs := intern.NewStrings()
	paths := intern.NewPaths(strs)
	p := parser.New(srcFile, strs, paths)
	file, spans := p.ParseFile()

	assert.Equal(t, 0, len(p.Diagnostics))

	table := resolve.NewTable(strs, paths)

	var diags []diag.Diagnostic

	resolve.BuildFile(table, srcFile, file, spans, &diags)
	assert.Equal(t, 0, len(diags))

	resolve.ExpandFile(table, file)

	c := NewChecker(table, intern.NewTypes())
	c.CheckAll()

	return c, file
}

// TestCheckArithmeticUnifiesLiterals exercises integer-literal unification
// with a sized parameter type across a binary operator.
func TestCheckArithmeticUnifiesLiterals(t *testing.T) {
	c, file := buildChecker(t, `fun add(a u32, b u32): u32 { return a + 1; }`)

	assert.Equal(t, 0, len(c.Diagnostics))

	sym := c.Table.Symbols[c.Paths.InternNames("add")]
	body := file.Get(sym.Decl).Children[len(file.Get(sym.Decl).Children)-1]
	retStmt := file.Get(body).Children[0]
	addExpr := file.Get(retStmt).Children[0]

	resultType := file.Get(addExpr).ResultType
	assert.Equal(t, c.Types.Primitive(intern.KindU32), resultType)
}

// TestCheckArgumentArityMismatch exercises the call-site arity check.
func TestCheckArgumentArityMismatch(t *testing.T) {
	c, _ := buildChecker(t, `fun add(a u32, b u32): u32 { return a + b; } fun main() { add(1); }`)

	assert.True(t, len(c.Diagnostics) >= 1)
}

// TestCheckArgumentTypeMismatch exercises a type mismatch between a
// parameter's declared type and an argument's literal class.
func TestCheckArgumentTypeMismatch(t *testing.T) {
	c, _ := buildChecker(t, `fun identity(a bool): bool { return a; } fun main() { identity(1); }`)

	found := false

	for _, d := range c.Diagnostics {
		if d.Reason == "type mismatch" {
			found = true
		}
	}

	assert.True(t, found)
}

// TestCheckCallReturnType exercises that a call expression's synthesised
// type is the callee's declared return type.
func TestCheckCallReturnType(t *testing.T) {
	c, file := buildChecker(t, `fun one(): u32 { return 1; } fun main(): u32 { return one(); }`)

	assert.Equal(t, 0, len(c.Diagnostics))

	sym := c.Table.Symbols[c.Paths.InternNames("main")]
	body := file.Get(sym.Decl).Children[len(file.Get(sym.Decl).Children)-1]
	retStmt := file.Get(body).Children[0]
	callExpr := file.Get(retStmt).Children[0]

	assert.Equal(t, c.Types.Primitive(intern.KindU32), file.Get(callExpr).ResultType)
}

// TestCheckTemplateMonomorphisation exercises template-argument inference
// from a call's argument and the monomorphisation cache.
func TestCheckTemplateMonomorphisation(t *testing.T) {
	c, file := buildChecker(t, `fun identity[T](a T): T { return a; } fun main(): u32 { return identity(5 as u32); }`)

	assert.Equal(t, 0, len(c.Diagnostics))

	sym := c.Table.Symbols[c.Paths.InternNames("identity")]
	assert.Equal(t, 1, len(sym.TemplateParams))
	assert.Equal(t, 1, len(sym.Monomorphisations))

	mainSym := c.Table.Symbols[c.Paths.InternNames("main")]
	body := file.Get(mainSym.Decl).Children[len(file.Get(mainSym.Decl).Children)-1]
	retStmt := file.Get(body).Children[0]
	callExpr := file.Get(retStmt).Children[0]

	assert.Equal(t, c.Types.Primitive(intern.KindU32), file.Get(callExpr).ResultType)
}

// TestCheckUnknownIdentifier exercises that a reference to an undeclared
// name is reported rather than silently treated as Unknown.
func TestCheckUnknownIdentifier(t *testing.T) {
	c, _ := buildChecker(t, `fun main() { missing(); }`)

	assert.True(t, len(c.Diagnostics) >= 1)
}

// TestCheckStructFieldType exercises struct-field type resolution and a
// pointer-to-struct return type.
func TestCheckStructFieldType(t *testing.T) {
	c, _ := buildChecker(t, `struct Point(x u32, y u32); fun origin(): *const Point { return (0 as *const Point); }`)

	assert.Equal(t, 0, len(c.Diagnostics))
}

// TestCheckEnumNotYetImplemented exercises the reserved-declaration-kind
// diagnostic.
func TestCheckEnumNotYetImplemented(t *testing.T) {
	c, _ := buildChecker(t, `enum Color { Red, Green, Blue }`)

	assert.Equal(t, 1, len(c.Diagnostics))
}
