package resolve

import (
	"sort"

	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/intern"
)

// ExpandFile rewrites every unqualified path reference in file's
// declaration bodies into a fully-qualified path, using the file's `use`
// clauses and its current module, while leaving local variable references
// untouched. It re-walks file's top-level nodes independently of
// BuildFile's pass.
func ExpandFile(table *Table, file *ast.File) {
	currentMod := table.Paths.Intern(nil)
	uses := make(map[intern.StringIdx]intern.PathIdx)

	for _, id := range file.Declarations() {
		n := file.Get(id)

		switch {
		case n.Kind == ast.ModuleDecl:
			// The uses map is intentionally NOT reset here: every `use`
			// accumulated earlier in the file remains visible after a
			// `mod` boundary.
			currentMod = n.PathValue()

		case n.Kind == ast.UsageDecl:
			absorbUsageDecl(table, file, uses, n)

		case isSymbolDecl(n.Kind):
			expandDecl(table, file, uses, currentMod, id, n)
		}
	}
}

// absorbUsageDecl wildcard-expands every UsedPath child of a UsageDecl and
// inserts `last-segment-of(q) -> q` into uses for each concrete expansion
// q.
func absorbUsageDecl(table *Table, file *ast.File, uses map[intern.StringIdx]intern.PathIdx, n ast.Node) {
	for _, upID := range n.Children {
		pattern := file.Get(upID).PathValue()

		for _, q := range expandWildcard(table, pattern) {
			segs := table.Paths.Segments(q)
			if len(segs) == 0 {
				continue
			}

			uses[segs[len(segs)-1]] = q
		}
	}
}

// expandWildcard implements wildcard expansion: a pattern
// with no `*` segment expands to itself; otherwise every symbol path of
// the same length matching the pattern's non-wildcard segments is
// returned, in a stable (ascending index) order.
func expandWildcard(table *Table, pattern intern.PathIdx) []intern.PathIdx {
	if !table.Paths.HasWildcard(pattern) {
		return []intern.PathIdx{pattern}
	}

	var matches []intern.PathIdx

	for q := range table.Symbols {
		if table.Paths.MatchesWildcard(pattern, q) {
			matches = append(matches, q)
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i] < matches[j] })

	return matches
}

// expandDecl rewrites the body of one named declaration: a FunctionDecl
// seeds `visible` with its parameter names; other
// declaration kinds (struct/enum/interface/variable) have no locals of
// their own.
func expandDecl(table *Table, file *ast.File, uses map[intern.StringIdx]intern.PathIdx,
	currentMod intern.PathIdx, id ast.NodeID, n ast.Node) {
	declID := id
	if sym, ok := table.Symbols[table.Paths.Extend(currentMod, table.Strings.Lookup(n.StringValue()))]; ok {
		declID = sym.Decl
	}

	decl := file.Get(declID)
	visible := make(map[intern.StringIdx]bool)

	if decl.Kind == ast.FunctionDecl {
		for _, c := range decl.Children {
			if cn := file.Get(c); cn.Kind == ast.ParamArgList {
				for _, pd := range cn.Children {
					visible[file.Get(pd).StringValue()] = true
				}
			}
		}
	}

	for _, c := range decl.Children {
		rewriteNode(table, file, uses, visible, c)
	}
}

// rewriteNode rewrites references over an AST node: PathAccess and
// NamespaceAccess nodes are canonicalised; a Block
// introduces a cloned scope in which each VariableDecl's name becomes
// visible to its later siblings only.
func rewriteNode(table *Table, file *ast.File, uses map[intern.StringIdx]intern.PathIdx,
	visible map[intern.StringIdx]bool, id ast.NodeID) {
	n := file.Get(id)

	if n.Kind == ast.PathAccess || n.Kind == ast.NamespaceAccess {
		rewriteReference(table, file, uses, visible, id, n)
	}

	if n.Kind == ast.TypeName {
		rewriteTypeReference(table, file, uses, id, n)
	}

	if n.Kind == ast.Block {
		scope := cloneVisible(visible)

		for _, c := range n.Children {
			rewriteNode(table, file, uses, scope, c)

			if cn := file.Get(c); cn.Kind == ast.VariableDecl {
				scope[cn.StringValue()] = true
			}
		}

		return
	}

	for _, c := range n.Children {
		rewriteNode(table, file, uses, visible, c)
	}
}

func rewriteReference(table *Table, file *ast.File, uses map[intern.StringIdx]intern.PathIdx,
	visible map[intern.StringIdx]bool, id ast.NodeID, n ast.Node) {
	rel := n.PathValue()
	segs := table.Paths.Segments(rel)

	if len(segs) == 0 {
		return
	}

	if len(segs) == 1 && visible[segs[0]] {
		return // local reference: left alone.
	}

	qualifiedBase, ok := uses[segs[0]]
	if !ok {
		return // left as-is: root-module-relative.
	}

	baseSegs := table.Paths.Segments(qualifiedBase)
	newSegs := make([]intern.StringIdx, 0, len(baseSegs)+len(segs)-1)
	newSegs = append(newSegs, baseSegs...)
	newSegs = append(newSegs, segs[1:]...)

	canonical := table.Paths.Intern(newSegs)
	file.SetValue(id, ast.Value{Kind: ast.ValuePath, Path: canonical})
}

// rewriteTypeReference applies the same use-alias canonicalisation as
// rewriteReference to a TypeName node. Types have no local-variable
// shadowing, so unlike expression references there is no visible set to
// consult.
func rewriteTypeReference(table *Table, file *ast.File, uses map[intern.StringIdx]intern.PathIdx, id ast.NodeID, n ast.Node) {
	rel := n.PathValue()
	segs := table.Paths.Segments(rel)

	if len(segs) == 0 {
		return
	}

	qualifiedBase, ok := uses[segs[0]]
	if !ok {
		return
	}

	baseSegs := table.Paths.Segments(qualifiedBase)
	newSegs := make([]intern.StringIdx, 0, len(baseSegs)+len(segs)-1)
	newSegs = append(newSegs, baseSegs...)
	newSegs = append(newSegs, segs[1:]...)

	canonical := table.Paths.Intern(newSegs)
	file.SetValue(id, ast.Value{Kind: ast.ValuePath, Path: canonical})
}

func cloneVisible(v map[intern.StringIdx]bool) map[intern.StringIdx]bool {
	c := make(map[intern.StringIdx]bool, len(v))
	for k := range v {
		c[k] = true
	}

	return c
}
