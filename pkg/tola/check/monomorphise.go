package check

import (
	"strconv"
	"strings"

	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/intern"
	"github.com/tola-lang/tola/pkg/tola/resolve"
)

// monomorphise returns the declaration AST for sym specialised to args
//. A cache hit returns the previously cloned declaration; a miss
// clones the declaration into the same file arena, substituting every
// TypeName whose path names one of sym's template parameters with a
// synthetic ResolvedType node carrying the concrete type directly, and
// caches the clone by the argument tuple's canonical key.
func (c *Checker) monomorphise(sym *resolve.Symbol, args []intern.TypeIdx) ast.NodeID {
	if len(sym.TemplateParams) == 0 {
		return sym.Decl
	}

	key := monoKey(args)

	if cached, ok := sym.Monomorphisations[key]; ok {
		return cached
	}

	subst := make(map[intern.StringIdx]intern.TypeIdx, len(sym.TemplateParams))

	for i, p := range sym.TemplateParams {
		if i < len(args) {
			subst[p] = args[i]
		}
	}

	cloned := c.cloneWithSubstitution(sym.File, sym.Decl, subst)
	sym.Monomorphisations[key] = cloned

	return cloned
}

func monoKey(args []intern.TypeIdx) string {
	parts := make([]string, len(args))

	for i, a := range args {
		parts[i] = strconv.Itoa(int(a))
	}

	return strings.Join(parts, ",")
}

// cloneWithSubstitution deep-copies the subtree rooted at id into file's
// arena. A TypeName with a single unqualified segment matching a key of
// subst becomes a ResolvedType node carrying the bound concrete type;
// every other node is copied structurally.
func (c *Checker) cloneWithSubstitution(file *ast.File, id ast.NodeID, subst map[intern.StringIdx]intern.TypeIdx) ast.NodeID {
	n := file.Get(id)

	if n.Kind == ast.TypeName && n.Value.Kind == ast.ValuePath {
		segs := c.Paths.Segments(n.Value.Path)

		if len(segs) == 1 {
			if t, ok := subst[segs[0]]; ok {
				newID := file.New(ast.ResolvedType)
				file.SetResultType(newID, t)

				return newID
			}
		}
	}

	children := make([]ast.NodeID, len(n.Children))

	for i, ch := range n.Children {
		children[i] = c.cloneWithSubstitution(file, ch, subst)
	}

	newID := file.New(n.Kind)
	file.SetValue(newID, n.Value)
	file.SetChildren(newID, children)

	return newID
}
