package resolve

import (
	"testing"

	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/diag"
	"github.com/tola-lang/tola/pkg/tola/intern"
	"github.com/tola-lang/tola/pkg/tola/parser"
	"github.com/tola-lang/tola/pkg/util/assert"
	"github.com/tola-lang/tola/pkg/util/source"
)

func parseFile(t *testing.T, src string) (*source.File, *ast.File, *source.Map[ast.NodeID], *intern.Strings, *intern.Paths) {
	t.Helper()

	srcFile := source.NewSourceFile("t.tola", []byte(src))
	strs := intern.NewStrings()
	paths := intern.NewPaths(strs)
	p := parser.New(srcFile, strs, paths)
	file, spans := p.ParseFile()

	assert.Equal(t, 0, len(p.Diagnostics))

	return srcFile, file, spans, strs, paths
}

func TestBuildFileDuplicateSymbol(t *testing.T) {
	srcFile, file, spans, strs, paths := parseFile(t,
		`mod foo; fun add(a u32, b u32): u32 { return a + b; } fun add(a s32, b s32): s32 { return a + b; }`)

	table := NewTable(strs, paths)

	var diags []diag.Diagnostic

	BuildFile(table, srcFile, file, spans, &diags)

	assert.Equal(t, 1, len(diags))
	assert.True(t, len(table.Symbols) == 1)
}

func TestExpandFileWildcardAndShadowing(t *testing.T) {
	srcFile, file, spans, strs, paths := parseFile(t,
		`mod foo; fun x() {} fun y() {} mod bar; use foo::*; fun main() { const x u32 = 5; x(); y(); }`)

	table := NewTable(strs, paths)

	var diags []diag.Diagnostic

	BuildFile(table, srcFile, file, spans, &diags)
	assert.Equal(t, 0, len(diags))

	ExpandFile(table, file)

	mainSym, ok := table.Symbols[paths.InternNames("bar", "main")]
	assert.True(t, ok)

	body := file.Get(mainSym.Decl).Children[len(file.Get(mainSym.Decl).Children)-1]
	stmts := file.Get(body).Children

	// stmts[0] = const x; stmts[1] = x(); stmts[2] = y();
	xCallCallee := file.Get(file.Get(stmts[1]).Children[0]).Children[0]
	yCallCallee := file.Get(file.Get(stmts[2]).Children[0]).Children[0]

	xPath := file.Get(xCallCallee).PathValue()
	yPath := file.Get(yCallCallee).PathValue()

	// x() is NOT rewritten: shadowed by the local constant.
	assert.Equal(t, paths.InternNames("x"), xPath)
	// y() IS canonicalised via the wildcard use.
	assert.Equal(t, paths.InternNames("foo", "y"), yPath)
}

// TestSymbolTableDeterminism exercises invariant 5: inserting the same
// parse tree twice (into two fresh tables) yields identical symbol maps.
func TestSymbolTableDeterminism(t *testing.T) {
	src := `mod foo; fun add(a u32, b u32): u32 { return a + b; } pub fun sub(a u32, b u32): u32 { return a - b; }`

	srcFile1, file1, spans1, strs1, paths1 := parseFile(t, src)
	table1 := NewTable(strs1, paths1)

	var diags1 []diag.Diagnostic

	BuildFile(table1, srcFile1, file1, spans1, &diags1)

	srcFile2, file2, spans2, strs2, paths2 := parseFile(t, src)
	table2 := NewTable(strs2, paths2)

	var diags2 []diag.Diagnostic

	BuildFile(table2, srcFile2, file2, spans2, &diags2)

	assert.Equal(t, len(table1.Symbols), len(table2.Symbols))

	for q1, sym1 := range table1.Symbols {
		q2 := paths2.InternNames(pathSegmentsAsStrings(strs1, paths1, q1)...)
		sym2, ok := table2.Symbols[q2]

		assert.True(t, ok)
		assert.Equal(t, sym1.IsPublic, sym2.IsPublic)
	}
}

func pathSegmentsAsStrings(strs *intern.Strings, paths *intern.Paths, idx intern.PathIdx) []string {
	segs := paths.Segments(idx)
	out := make([]string, len(segs))

	for i, s := range segs {
		out[i] = strs.Lookup(s)
	}

	return out
}

// TestExpandFileIdempotent exercises invariant 6: re-running expansion
// after it has already run produces no further changes.
func TestExpandFileIdempotent(t *testing.T) {
	srcFile, file, spans, strs, paths := parseFile(t,
		`mod foo; fun y() {} mod bar; use foo::*; fun main() { y(); }`)

	table := NewTable(strs, paths)

	var diags []diag.Diagnostic

	BuildFile(table, srcFile, file, spans, &diags)
	ExpandFile(table, file)

	mainSym := table.Symbols[paths.InternNames("bar", "main")]
	body := file.Get(mainSym.Decl).Children[len(file.Get(mainSym.Decl).Children)-1]
	callExpr := file.Get(file.Get(body).Children[0]).Children[0]
	callee := file.Get(callExpr).Children[0]
	firstPass := file.Get(callee).PathValue()

	ExpandFile(table, file)

	secondPass := file.Get(callee).PathValue()

	assert.Equal(t, firstPass, secondPass)
}
